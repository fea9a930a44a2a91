package cli

import (
	apperrors "github.com/applytrack/applytrack/internal/errors"
)

// Process exit codes. Scripts can tell a rejected edit from an expired
// session or a missing position without parsing stderr.
const (
	ExitOK           = 0
	ExitFailure      = 1
	ExitInvalidInput = 2
	ExitUnauthorized = 3
	ExitNotFound     = 4
	ExitConfig       = 78
	ExitCanceled     = 130
)

// ExitCode maps an error returned by ExecuteContext to a process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	switch apperrors.GetKind(err) {
	case apperrors.KindDomain, apperrors.KindValidation:
		return ExitInvalidInput
	case apperrors.KindUnauthorized, apperrors.KindForbidden:
		return ExitUnauthorized
	case apperrors.KindNotFound:
		return ExitNotFound
	case apperrors.KindConfig:
		return ExitConfig
	case apperrors.KindCanceled:
		return ExitCanceled
	default:
		return ExitFailure
	}
}
