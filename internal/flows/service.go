package flows

import "context"

// Service binds Deps once so callers don't thread them through every run.
type Service struct {
	deps Deps
}

// NewService wraps deps into a Service.
func NewService(deps Deps) Service {
	return Service{deps: deps}
}

func (s Service) SignIn(ctx context.Context, creds Credentials) Result {
	return RunSignIn(ctx, creds, s.deps)
}

func (s Service) SignUp(ctx context.Context, reg Registration) Result {
	return RunSignUp(ctx, reg, s.deps)
}

func (s Service) SignOut(ctx context.Context) Result {
	return RunSignOut(ctx, s.deps)
}

func (s Service) CurrentUser(ctx context.Context) Result {
	return RunCurrentUser(ctx, s.deps)
}

func (s Service) Refresh(ctx context.Context) Result {
	return RunRefresh(ctx, s.deps)
}

func (s Service) ForgotPassword(ctx context.Context, email string) Result {
	return RunForgotPassword(ctx, email, s.deps)
}

func (s Service) ResetPassword(ctx context.Context, reset PasswordReset) Result {
	return RunResetPassword(ctx, reset, s.deps)
}

func (s Service) ChangePassword(ctx context.Context, change PasswordChange) Result {
	return RunChangePassword(ctx, change, s.deps)
}
