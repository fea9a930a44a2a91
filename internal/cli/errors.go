package cli

import (
	"errors"

	"github.com/spf13/cobra"

	apperrors "github.com/applytrack/applytrack/internal/errors"
)

// userError carries the message shown to the user while keeping the cause
// reachable through errors.Is and errors.As.
type userError struct {
	msg string
	err error
}

func (e *userError) Error() string { return e.msg }

func (e *userError) Unwrap() error { return e.err }

// presentError translates err into what the user should read. An
// unauthorized response clears the stored token unless the token came from
// --token or the failure was a login attempt.
func presentError(cmd *cobra.Command, err error) error {
	var appErr *apperrors.Error
	if !errors.As(err, &appErr) {
		if masked := masker.Mask(err.Error()); masked != err.Error() {
			return &userError{msg: masked, err: err}
		}
		return err
	}

	msg := userMessage(appErr)
	if appErr.Kind == apperrors.KindUnauthorized && !isLoginFailure(appErr) {
		clearStoredToken(cmd)
	}
	return &userError{msg: masker.Mask(msg), err: err}
}

func userMessage(e *apperrors.Error) string {
	switch e.Kind {
	case apperrors.KindDomain:
		return "Validation error: " + e.Message
	case apperrors.KindValidation:
		return "Invalid input: " + e.Message
	case apperrors.KindUnauthorized:
		if isLoginFailure(e) {
			return e.Message
		}
		return "Session expired, run `applytrack session login`"
	case apperrors.KindForbidden:
		return "Access denied: " + e.Message
	case apperrors.KindNotFound:
		return e.Message
	case apperrors.KindInfrastructure:
		return "Server error: " + e.Message
	case apperrors.KindConfig:
		return "Configuration error: " + apperrors.RedactError(e).Error()
	case apperrors.KindCanceled:
		return "Operation canceled"
	default:
		return apperrors.RedactError(e).Error()
	}
}

func isLoginFailure(e *apperrors.Error) bool {
	return e.Op == "api.Login"
}

func clearStoredToken(cmd *cobra.Command) {
	if tokenFlag != "" {
		return
	}
	a := currentApp()
	if a == nil {
		return
	}
	if err := a.TokenStore().Remove(); err != nil {
		logger.Debug("failed to clear stored token", "error", err)
		return
	}
	if cmd != nil {
		logger.Debug("cleared stored token after unauthorized response", "command", cmd.CommandPath())
	}
}
