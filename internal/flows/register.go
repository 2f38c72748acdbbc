package flows

import (
	"context"
	"net/http"
)

// Registration is the sign-up wire payload.
type Registration struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

// RunSignUp registers a new account. The server signs the account in as part
// of registration, so the response carries the same payload as sign-in.
func RunSignUp(ctx context.Context, reg Registration, deps Deps) Result {
	resp, err := deps.Transport.Send(ctx, http.MethodPost, deps.Routes.Register, reg, nil)
	if err != nil {
		deps.Log.Debug().Err(err).Str("email", reg.Email).Msg("sign-up failed")
		return failureResult(err)
	}
	return storeAuthPayload(ctx, resp, deps)
}
