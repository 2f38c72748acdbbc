package flows

import (
	"context"
	"net/http"

	"github.com/ravenhq/ravenauth/transport"
)

// RunRefresh explicitly rotates the credential. The transport already rotates
// on 401 by itself; this is for callers that want to refresh ahead of need.
func RunRefresh(ctx context.Context, deps Deps) Result {
	resp, err := deps.Transport.Send(ctx, http.MethodPost, deps.Routes.Refresh, nil, nil)
	if err != nil {
		return failureResult(err)
	}

	var payload struct {
		Token string `json:"token"`
	}
	if err := resp.DecodeData(&payload); err != nil {
		return failureResult(err)
	}
	if payload.Token == "" {
		return Result{
			Failure: FailureUnexpected,
			Err:     &transport.UnexpectedError{Message: "refresh response carried no token"},
			Message: unexpectedMessage,
		}
	}
	if err := deps.Creds.Set(ctx, payload.Token); err != nil {
		return Result{
			Failure: FailureUnexpected,
			Err:     &transport.UnexpectedError{Message: "storing rotated credential", Err: err},
			Message: unexpectedMessage,
		}
	}
	return Result{}
}
