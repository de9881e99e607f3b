package auth

import "context"

type practitionerKey struct{}

// WithPractitioner records the authenticated practitioner on ctx.
func WithPractitioner(ctx context.Context, practitionerID string) context.Context {
	return context.WithValue(ctx, practitionerKey{}, practitionerID)
}

// PractitionerFromContext returns the authenticated practitioner, if any.
func PractitionerFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(practitionerKey{}).(string)
	return id, ok && id != ""
}

// OwnedBy reports whether a record owned by practitionerID may be accessed
// with ctx. Unauthenticated contexts are not restricted.
func OwnedBy(ctx context.Context, practitionerID string) bool {
	id, ok := PractitionerFromContext(ctx)
	return !ok || id == practitionerID
}
