package flows

import (
	"context"
	"net/http"

	"github.com/ravenhq/ravenauth/session"
	"github.com/ravenhq/ravenauth/transport"
)

// Credentials is the sign-in wire payload.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// authPayload is the data shape the sign-in, register and current-user
// endpoints all return. Token is absent on current-user responses.
type authPayload struct {
	User  *session.User `json:"user"`
	Token string        `json:"token,omitempty"`
}

// RunSignIn posts credentials, stores the returned opaque credential and
// returns the authenticated user.
func RunSignIn(ctx context.Context, creds Credentials, deps Deps) Result {
	resp, err := deps.Transport.Send(ctx, http.MethodPost, deps.Routes.SignIn, creds, nil)
	if err != nil {
		deps.Log.Debug().Err(err).Str("email", creds.Email).Msg("sign-in failed")
		return failureResult(err)
	}
	return storeAuthPayload(ctx, resp, deps)
}

// storeAuthPayload decodes a {user, token} payload, persists the credential
// when one is present and returns the user. Shared by sign-in and register.
func storeAuthPayload(ctx context.Context, resp *transport.Response, deps Deps) Result {
	var payload authPayload
	if err := resp.DecodeData(&payload); err != nil {
		return failureResult(err)
	}
	if payload.User == nil {
		return Result{
			Failure: FailureUnexpected,
			Err:     &transport.UnexpectedError{Message: "response carried no user"},
			Message: unexpectedMessage,
		}
	}
	if payload.Token != "" {
		if err := deps.Creds.Set(ctx, payload.Token); err != nil {
			return Result{
				Failure: FailureUnexpected,
				Err:     &transport.UnexpectedError{Message: "storing credential", Err: err},
				Message: unexpectedMessage,
			}
		}
	}
	return Result{User: payload.User}
}
