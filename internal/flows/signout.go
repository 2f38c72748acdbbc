package flows

import (
	"context"
	"net/http"
)

// RunSignOut tells the server to end the session and then clears the local
// credential. The local clear happens even when the server call fails; the
// remote failure is still reported so callers can surface it.
func RunSignOut(ctx context.Context, deps Deps) Result {
	_, err := deps.Transport.Send(ctx, http.MethodPost, deps.Routes.SignOut, nil, nil)

	if clearErr := deps.Creds.Clear(ctx); clearErr != nil {
		deps.Log.Warn().Err(clearErr).Msg("clearing credential after sign-out")
	}

	if err != nil {
		deps.Log.Debug().Err(err).Msg("remote sign-out failed, local session cleared anyway")
		return failureResult(err)
	}
	return Result{}
}
