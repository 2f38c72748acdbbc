package flows

import (
	"context"
	"net/http"
)

// PasswordReset is the reset-password wire payload. Token comes from the
// link the server mailed out.
type PasswordReset struct {
	Token           string `json:"token"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

// PasswordChange is the change-password wire payload for a signed-in user.
type PasswordChange struct {
	CurrentPassword    string `json:"currentPassword"`
	NewPassword        string `json:"newPassword"`
	ConfirmNewPassword string `json:"confirmNewPassword"`
}

// RunForgotPassword asks the server to start a reset for the given email.
// The server answers success whether or not the account exists.
func RunForgotPassword(ctx context.Context, email string, deps Deps) Result {
	body := struct {
		Email string `json:"email"`
	}{Email: email}

	resp, err := deps.Transport.Send(ctx, http.MethodPost, deps.Routes.ForgotPassword, body, nil)
	if err != nil {
		return failureResult(err)
	}
	return Result{Message: resp.Envelope.Message}
}

// RunResetPassword completes a mailed reset with a new password.
func RunResetPassword(ctx context.Context, reset PasswordReset, deps Deps) Result {
	resp, err := deps.Transport.Send(ctx, http.MethodPost, deps.Routes.ResetPassword, reset, nil)
	if err != nil {
		return failureResult(err)
	}
	return Result{Message: resp.Envelope.Message}
}

// RunChangePassword changes the signed-in user's password.
func RunChangePassword(ctx context.Context, change PasswordChange, deps Deps) Result {
	resp, err := deps.Transport.Send(ctx, http.MethodPost, deps.Routes.ChangePassword, change, nil)
	if err != nil {
		return failureResult(err)
	}
	return Result{Message: resp.Envelope.Message}
}
