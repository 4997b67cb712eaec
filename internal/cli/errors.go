package cli

import "errors"

// ErrUsage matches every error caused by invalid flags, config or input
// documents. cmd/oas2client exits with status 2 for them.
var ErrUsage = errors.New("cli usage error")

type usageError struct {
	msg string
}

func newUsageError(msg string) error {
	return usageError{msg: msg}
}

func (e usageError) Error() string {
	return e.msg
}

func (e usageError) Is(target error) bool {
	return target == ErrUsage
}
