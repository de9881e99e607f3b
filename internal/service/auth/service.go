package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ayursutra/clinic-api/internal/model"
	"github.com/ayursutra/clinic-api/internal/repository"
	"github.com/ayursutra/clinic-api/pkg/auth"
	apperrors "github.com/ayursutra/clinic-api/pkg/errors"
	"github.com/ayursutra/clinic-api/pkg/metrics"
	"github.com/ayursutra/clinic-api/pkg/security"
	"github.com/ayursutra/clinic-api/pkg/validator"
)

const resetTokenExpiry = 1 * time.Hour

const (
	msgRegisterRequired   = "Name, email, and password are required"
	msgLoginRequired      = "Email and password are required"
	msgEmailRequired      = "Email address is required"
	msgResetRequired      = "Token and password are required"
	msgPasswordTooShort   = "Password must be at least 6 characters long"
	msgPasswordTooLong    = "Password must be at most 72 bytes long"
	msgDuplicateEmail     = "Practitioner with this email already exists"
	msgInvalidCredentials = "Invalid credentials"
	msgInvalidResetToken  = "Invalid or expired reset token"
)

// Notifier sends the emails triggered by the auth flow.
type Notifier interface {
	Welcome(ctx context.Context, p *model.Practitioner) model.SendResult
	PasswordReset(ctx context.Context, to, token string) model.SendResult
	Go(fn func(ctx context.Context))
}

type Service struct {
	repo      repository.PractitionerRepository
	jwtSvc    auth.JWTService
	hasher    security.PasswordHasher
	validator validator.Validator
	notifier  Notifier
	metrics   *metrics.Metrics
	logger    zerolog.Logger
	now       func() time.Time

	dummyOnce sync.Once
	dummyHash string
}

func NewService(
	repo repository.PractitionerRepository,
	jwtSvc auth.JWTService,
	hasher security.PasswordHasher,
	v validator.Validator,
	notifier Notifier,
	m *metrics.Metrics,
	logger zerolog.Logger,
) *Service {
	return &Service{
		repo:      repo,
		jwtSvc:    jwtSvc,
		hasher:    hasher,
		validator: v,
		notifier:  notifier,
		metrics:   m,
		logger:    logger.With().Str("component", "auth").Logger(),
		now:       time.Now,
	}
}

func (s *Service) Register(ctx context.Context, req *model.RegisterRequest) (*model.AuthResult, error) {
	if err := s.validate(req, msgRegisterRequired); err != nil {
		s.record("register", false)
		return nil, err
	}
	if err := checkPasswordLength(req.Password); err != nil {
		s.record("register", false)
		return nil, err
	}

	existing, err := s.repo.GetByEmail(ctx, req.Email)
	switch {
	case err == nil && existing != nil:
		s.record("register", false)
		return nil, apperrors.DuplicateUser(msgDuplicateEmail)
	case err != nil && !errors.Is(err, repository.ErrNotFound):
		return nil, apperrors.Internal(fmt.Errorf("failed to look up practitioner: %w", err))
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, apperrors.Internal(fmt.Errorf("failed to hash password: %w", err))
	}

	practitioner := &model.Practitioner{
		Base:         model.NewBase(s.now()),
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		ClinicName:   req.ClinicName,
	}
	if err := s.repo.Create(ctx, practitioner); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			s.record("register", false)
			return nil, apperrors.DuplicateUser(msgDuplicateEmail)
		}
		return nil, apperrors.Internal(fmt.Errorf("failed to create practitioner: %w", err))
	}

	token, err := s.jwtSvc.Issue(practitioner.ID.String(), practitioner.Email)
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	welcome := *practitioner
	s.notifier.Go(func(ctx context.Context) {
		s.notifier.Welcome(ctx, &welcome)
	})

	s.record("register", true)
	s.logger.Info().Str("practitioner_id", practitioner.ID.String()).Msg("Practitioner registered")
	return &model.AuthResult{Practitioner: practitioner, Token: token}, nil
}

func (s *Service) Login(ctx context.Context, req *model.LoginRequest) (*model.AuthResult, error) {
	if err := s.validate(req, msgLoginRequired); err != nil {
		s.record("login", false)
		return nil, err
	}

	practitioner, err := s.repo.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// Pay the same hashing cost as a wrong password.
			_ = s.hasher.Compare(s.unknownUserHash(), req.Password)
			s.record("login", false)
			return nil, apperrors.Authentication(msgInvalidCredentials)
		}
		return nil, apperrors.Internal(fmt.Errorf("failed to look up practitioner: %w", err))
	}

	if err := s.hasher.Compare(practitioner.PasswordHash, req.Password); err != nil {
		s.record("login", false)
		return nil, apperrors.Authentication(msgInvalidCredentials)
	}

	token, err := s.jwtSvc.Issue(practitioner.ID.String(), practitioner.Email)
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	s.record("login", true)
	return &model.AuthResult{Practitioner: practitioner, Token: token}, nil
}

// Authenticate verifies a bearer token. Malformed, forged, revoked and
// expired tokens fail alike.
func (s *Service) Authenticate(token string) (*auth.Claims, error) {
	if token == "" {
		return nil, apperrors.AuthenticationRequired()
	}
	claims, err := s.jwtSvc.Verify(token)
	if err != nil {
		s.record("verify", false)
		return nil, apperrors.InvalidToken(err)
	}
	return claims, nil
}

func (s *Service) GetProfile(ctx context.Context, token string) (*model.Practitioner, error) {
	claims, err := s.Authenticate(token)
	if err != nil {
		return nil, err
	}
	return s.GetPractitioner(ctx, claims.PractitionerID)
}

// GetPractitioner loads a practitioner by id. An authenticated caller may
// only load their own record.
func (s *Service) GetPractitioner(ctx context.Context, id string) (*model.Practitioner, error) {
	if !auth.OwnedBy(ctx, id) {
		return nil, apperrors.Forbidden()
	}
	practitionerID, err := uuid.Parse(id)
	if err != nil {
		return nil, apperrors.NotFound("Practitioner")
	}

	practitioner, err := s.repo.GetByID(ctx, practitionerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("Practitioner")
		}
		return nil, apperrors.Internal(fmt.Errorf("failed to get practitioner: %w", err))
	}
	return practitioner, nil
}

// Logout revokes the presented token until it would have expired.
func (s *Service) Logout(token string) error {
	claims, err := s.Authenticate(token)
	if err != nil {
		return err
	}
	s.jwtSvc.Revoke(claims)
	s.record("logout", true)
	return nil
}

// RequestPasswordReset stores a fresh reset token for a known email and
// mails the link in the background. Unknown emails succeed silently.
func (s *Service) RequestPasswordReset(ctx context.Context, req *model.PasswordResetRequest) error {
	if err := s.validate(req, msgEmailRequired); err != nil {
		return err
	}

	practitioner, err := s.repo.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.record("reset_request", false)
			return nil
		}
		return apperrors.Internal(fmt.Errorf("failed to look up practitioner: %w", err))
	}

	token, digest, err := security.NewResetToken()
	if err != nil {
		return apperrors.Internal(err)
	}
	if err := s.repo.UpdateResetToken(ctx, practitioner.ID, digest, s.now().Add(resetTokenExpiry)); err != nil {
		return apperrors.Internal(fmt.Errorf("failed to store reset token: %w", err))
	}

	to := practitioner.Email
	s.notifier.Go(func(ctx context.Context) {
		s.notifier.PasswordReset(ctx, to, token)
	})

	s.record("reset_request", true)
	s.logger.Info().Str("practitioner_id", practitioner.ID.String()).Msg("Password reset requested")
	return nil
}

// ResetPassword redeems a reset token. Tokens are single use and existing
// bearer tokens stay valid.
func (s *Service) ResetPassword(ctx context.Context, req *model.ResetPasswordRequest) error {
	if err := s.validate(req, msgResetRequired); err != nil {
		s.record("reset", false)
		return err
	}
	if err := checkPasswordLength(req.Password); err != nil {
		s.record("reset", false)
		return err
	}

	now := s.now()
	digest := security.HashToken(req.Token)

	stored, err := s.repo.GetResetToken(ctx, digest)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.record("reset", false)
			return apperrors.Authentication(msgInvalidResetToken)
		}
		return apperrors.Internal(fmt.Errorf("failed to get reset token: %w", err))
	}
	if !stored.Usable(now) {
		s.record("reset", false)
		return apperrors.Authentication(msgInvalidResetToken)
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return apperrors.Internal(fmt.Errorf("failed to hash password: %w", err))
	}

	if err := s.repo.ResetPassword(ctx, stored.PractitionerID, digest, hash, now); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.record("reset", false)
			return apperrors.Authentication(msgInvalidResetToken)
		}
		return apperrors.Internal(fmt.Errorf("failed to reset password: %w", err))
	}

	s.record("reset", true)
	s.logger.Info().Str("practitioner_id", stored.PractitionerID.String()).Msg("Password reset completed")
	return nil
}

// validate reports missing fields with the operation's message and a short
// password with the shared one.
func (s *Service) validate(req interface{}, requiredMsg string) error {
	err := s.validator.Validate(req)
	if err == nil {
		return nil
	}

	var verr *validator.Error
	if !errors.As(err, &verr) {
		return apperrors.Internal(err)
	}
	for _, f := range verr.Fields {
		if f.Tag == "required" {
			return apperrors.Validation(requiredMsg)
		}
	}
	if verr.Has("password", "min") {
		return apperrors.Validation(msgPasswordTooShort)
	}
	return apperrors.Validation(verr.Error())
}

// checkPasswordLength rejects passwords bcrypt cannot hash. The limit is in
// bytes, so multi-byte characters count more than once.
func checkPasswordLength(password string) error {
	if len(password) > security.MaxPasswordBytes {
		return apperrors.Validation(msgPasswordTooLong)
	}
	return nil
}

// unknownUserHash is compared against when the email is not registered.
func (s *Service) unknownUserHash() string {
	s.dummyOnce.Do(func() {
		hash, err := s.hasher.Hash(uuid.NewString())
		if err != nil {
			s.logger.Error().Err(err).Msg("Failed to build placeholder password hash")
			return
		}
		s.dummyHash = hash
	})
	return s.dummyHash
}

func (s *Service) record(operation string, ok bool) {
	s.metrics.AuthAttempts.WithLabelValues(operation, metrics.Outcome(ok)).Inc()
}
