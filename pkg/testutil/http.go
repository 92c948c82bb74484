package testutil

import (
	"context"
	"net/http"

	id "bloodbank/pkg/domain"
	"bloodbank/pkg/requestcontext"
)

// WithUser adds an authenticated user ID and role to the request context,
// simulating what the auth middleware does for authenticated requests.
// An invalid user ID is silently ignored.
func WithUser(req *http.Request, userID string, role id.Role) *http.Request {
	ctx := req.Context()
	if parsed, err := id.ParseUserID(userID); err == nil {
		ctx = requestcontext.WithUserID(ctx, parsed)
	}
	if role != "" {
		ctx = requestcontext.WithRole(ctx, role)
	}
	return req.WithContext(ctx)
}

// WithContextValue adds an arbitrary key-value pair to the request context.
func WithContextValue(req *http.Request, key, value any) *http.Request {
	ctx := context.WithValue(req.Context(), key, value)
	return req.WithContext(ctx)
}
