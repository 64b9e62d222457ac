package testutil

import (
	"net/http"

	id "contactbook/pkg/domain"
	"contactbook/pkg/requestcontext"
)

// WithAccount marks req as authenticated the way RequireAuth does, so handler
// tests can skip token minting.
func WithAccount(req *http.Request, userID id.UserID, email string) *http.Request {
	return req.WithContext(requestcontext.WithAccount(req.Context(), userID, email))
}
