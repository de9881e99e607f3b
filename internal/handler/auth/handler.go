package auth

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/ayursutra/clinic-api/internal/handler"
	"github.com/ayursutra/clinic-api/internal/model"
)

type Service interface {
	Register(ctx context.Context, req *model.RegisterRequest) (*model.AuthResult, error)
	Login(ctx context.Context, req *model.LoginRequest) (*model.AuthResult, error)
	GetProfile(ctx context.Context, token string) (*model.Practitioner, error)
	Logout(token string) error
	ResetPassword(ctx context.Context, req *model.ResetPasswordRequest) error
}

type Handler struct {
	svc Service
}

func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	practitioner := r.Group("/practitioner")
	{
		practitioner.POST("/register", h.Register)
		practitioner.POST("/login", h.Login)
		practitioner.GET("/profile", h.Profile)
		practitioner.POST("/logout", h.Logout)
		practitioner.POST("/reset-password", h.ResetPassword)
	}
}

func (h *Handler) Register(c *gin.Context) {
	var req model.RegisterRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	result, err := h.svc.Register(c.Request.Context(), &req)
	if err != nil {
		handler.Fail(c, err)
		return
	}

	handler.Created(c, gin.H{
		"message":      "Practitioner registered successfully",
		"practitioner": result.Practitioner,
		"token":        result.Token,
	})
}

func (h *Handler) Login(c *gin.Context) {
	var req model.LoginRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	result, err := h.svc.Login(c.Request.Context(), &req)
	if err != nil {
		handler.Fail(c, err)
		return
	}

	handler.OK(c, gin.H{
		"message":      "Login successful",
		"practitioner": result.Practitioner,
		"token":        result.Token,
	})
}

func (h *Handler) Profile(c *gin.Context) {
	practitioner, err := h.svc.GetProfile(c.Request.Context(), handler.BearerToken(c))
	if err != nil {
		handler.Fail(c, err)
		return
	}

	handler.OK(c, gin.H{"practitioner": practitioner})
}

func (h *Handler) Logout(c *gin.Context) {
	if err := h.svc.Logout(handler.BearerToken(c)); err != nil {
		handler.Fail(c, err)
		return
	}

	handler.Message(c, "Logged out successfully")
}

func (h *Handler) ResetPassword(c *gin.Context) {
	var req model.ResetPasswordRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	if err := h.svc.ResetPassword(c.Request.Context(), &req); err != nil {
		handler.Fail(c, err)
		return
	}

	handler.Message(c, "Password has been reset successfully")
}
