package ravenauth

import "github.com/ravenhq/ravenauth/internal/flows"

// Auth endpoint names under /api/<version>/auth/.
const (
	routeLogin          = "login"
	routeRegister       = "register"
	routeLogout         = "logout"
	routeRefresh        = "refresh-token"
	routeCurrentUser    = "current-user"
	routeForgotPassword = "forgot-password"
	routeResetPassword  = "reset-password"
	routeChangePassword = "change-password"
)

// newRoutes expands the versioned auth paths. version is "v1" unless
// configured otherwise.
func newRoutes(version string) flows.Routes {
	base := "/api/" + version + "/auth/"
	return flows.Routes{
		SignIn:         base + routeLogin,
		Register:       base + routeRegister,
		SignOut:        base + routeLogout,
		Refresh:        base + routeRefresh,
		CurrentUser:    base + routeCurrentUser,
		ForgotPassword: base + routeForgotPassword,
		ResetPassword:  base + routeResetPassword,
		ChangePassword: base + routeChangePassword,
	}
}
