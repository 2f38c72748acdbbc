package ravenauth

import (
	"fmt"

	"github.com/ravenhq/ravenauth/internal/events"
	"github.com/ravenhq/ravenauth/session"
)

// User and State are the session package's types re-exported for callers
// that only import the root package.
type (
	User  = session.User
	State = session.State
)

// Event and Sink re-export the audit event surface. Register a sink with
// [Builder.WithEventSink] to receive one event per auth operation.
type (
	Event = events.Event
	Sink  = events.Sink
)

// AuthMode names the auth form a request belongs to.
type AuthMode string

const (
	ModeLogin          AuthMode = "login"
	ModeRegister       AuthMode = "register"
	ModeForgotPassword AuthMode = "forgot-password"
	ModeResetPassword  AuthMode = "reset-password"
	ModeChangePassword AuthMode = "change-password"
)

// invalidRequest builds a validation failure carrying the request's mode, so
// a shell driving several forms can tell which one was rejected.
func invalidRequest(mode AuthMode, reason string) error {
	return fmt.Errorf("%w: %s: %s", ErrInvalidRequest, mode, reason)
}

// LoginRequest carries sign-in input.
type LoginRequest struct {
	Email    string
	Password string
}

func (LoginRequest) Mode() AuthMode { return ModeLogin }

// Validate checks the request before it is sent.
func (r LoginRequest) Validate() error {
	if r.Email == "" {
		return invalidRequest(r.Mode(), "email required")
	}
	if r.Password == "" {
		return invalidRequest(r.Mode(), "password required")
	}
	return nil
}

// RegisterRequest carries sign-up input.
type RegisterRequest struct {
	Email    string
	Password string
	Name     string
}

func (RegisterRequest) Mode() AuthMode { return ModeRegister }

// Validate checks the request before it is sent.
func (r RegisterRequest) Validate() error {
	if r.Email == "" {
		return invalidRequest(r.Mode(), "email required")
	}
	if r.Password == "" {
		return invalidRequest(r.Mode(), "password required")
	}
	if r.Name == "" {
		return invalidRequest(r.Mode(), "name required")
	}
	return nil
}

// ForgotPasswordRequest starts a mailed password reset.
type ForgotPasswordRequest struct {
	Email string
}

func (ForgotPasswordRequest) Mode() AuthMode { return ModeForgotPassword }

// Validate checks the request before it is sent.
func (r ForgotPasswordRequest) Validate() error {
	if r.Email == "" {
		return invalidRequest(r.Mode(), "email required")
	}
	return nil
}

// ResetPasswordRequest completes a mailed password reset.
type ResetPasswordRequest struct {
	Token           string
	Password        string
	ConfirmPassword string
}

func (ResetPasswordRequest) Mode() AuthMode { return ModeResetPassword }

// Validate checks the request before it is sent.
func (r ResetPasswordRequest) Validate() error {
	if r.Token == "" {
		return invalidRequest(r.Mode(), "reset token required")
	}
	if r.Password == "" {
		return invalidRequest(r.Mode(), "password required")
	}
	if r.Password != r.ConfirmPassword {
		return invalidRequest(r.Mode(), "passwords do not match")
	}
	return nil
}

// ChangePasswordRequest changes the signed-in user's password.
type ChangePasswordRequest struct {
	CurrentPassword    string
	NewPassword        string
	ConfirmNewPassword string
}

func (ChangePasswordRequest) Mode() AuthMode { return ModeChangePassword }

// Validate checks the request before it is sent.
func (r ChangePasswordRequest) Validate() error {
	if r.CurrentPassword == "" {
		return invalidRequest(r.Mode(), "current password required")
	}
	if r.NewPassword == "" {
		return invalidRequest(r.Mode(), "new password required")
	}
	if r.NewPassword != r.ConfirmNewPassword {
		return invalidRequest(r.Mode(), "passwords do not match")
	}
	if r.NewPassword == r.CurrentPassword {
		return invalidRequest(r.Mode(), "new password must be different from current password")
	}
	return nil
}
