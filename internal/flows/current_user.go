package flows

import (
	"context"
	"net/http"

	"github.com/ravenhq/ravenauth/transport"
)

// RunCurrentUser probes the server for the session's user. A 401 here is a
// normal "not signed in" answer, not an error condition; callers inspect
// Result.Failure for FailureUnauthorized to tell the two apart.
func RunCurrentUser(ctx context.Context, deps Deps) Result {
	resp, err := deps.Transport.Send(ctx, http.MethodGet, deps.Routes.CurrentUser, nil, nil)
	if err != nil {
		return failureResult(err)
	}

	var payload authPayload
	if err := resp.DecodeData(&payload); err != nil {
		return failureResult(err)
	}
	if payload.User == nil {
		return Result{
			Failure: FailureUnexpected,
			Err:     &transport.UnexpectedError{Message: "session probe carried no user"},
			Message: unexpectedMessage,
		}
	}
	return Result{User: payload.User}
}
