package testutil

import (
	"context"
	"net/http"

	authmw "github.com/Rafadormi/105-dirvigisan-perobal/pkg/platform/middleware/auth"
	"github.com/Rafadormi/105-dirvigisan-perobal/pkg/requestcontext"
)

// WithOperator sets the actor and role the auth middleware would record for a
// valid operator token. Service tests use it to act as a signed-in inspector.
func WithOperator(ctx context.Context, operatorID, role string) context.Context {
	ctx = requestcontext.WithActor(ctx, operatorID)
	return context.WithValue(ctx, authmw.ContextKeyRole, role)
}

// WithBearer sets the Authorization header used by routes behind RequireAuth.
func WithBearer(req *http.Request, token string) *http.Request {
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}
