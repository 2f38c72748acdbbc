package flows

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/ravenhq/ravenauth/credstore"
	"github.com/ravenhq/ravenauth/transport"
)

// TransportClient is the slice of the transport surface the flows need.
type TransportClient interface {
	Send(ctx context.Context, method, path string, body any, params transport.Params) (*transport.Response, error)
}

// Routes carries the server paths each flow posts to.
type Routes struct {
	SignIn         string
	Register       string
	SignOut        string
	Refresh        string
	CurrentUser    string
	ForgotPassword string
	ResetPassword  string
	ChangePassword string
}

// Deps carries everything a flow needs to run.
type Deps struct {
	Transport TransportClient
	Creds     credstore.Store
	Routes    Routes
	Log       zerolog.Logger
}
