package streamio

import (
	"errors"
	"fmt"
	"net"
	"os"
)

// ErrTransfer matches every read or write failure reported by this package.
var ErrTransfer = errors.New("transfer failed")

// ErrTimeout matches transfer failures caused by an expired deadline.
var ErrTimeout = errors.New("transfer timed out")

// TransferError reports a failed read or write. Reaching the end of a stream
// is never reported as a TransferError.
type TransferError struct {
	Op  string
	Err error
}

func (e *TransferError) Error() string {
	if e.Timeout() {
		return fmt.Sprintf("%s: timeout: %s", e.Op, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Err)
}

func (e *TransferError) Unwrap() error {
	return e.Err
}

// Timeout reports whether the failure was caused by an idle timeout or an
// expired deadline rather than a hard connection error.
func (e *TransferError) Timeout() bool {
	if errors.Is(e.Err, os.ErrDeadlineExceeded) {
		return true
	}

	var ne net.Error
	return errors.As(e.Err, &ne) && ne.Timeout()
}

// Is makes errors.Is(err, ErrTransfer) and errors.Is(err, ErrTimeout) work.
func (e *TransferError) Is(target error) bool {
	switch target {
	case ErrTransfer:
		return true
	case ErrTimeout:
		return e.Timeout()
	}
	return false
}

// IsTimeout reports whether err is a TransferError caused by a timeout.
func IsTimeout(err error) bool {
	return errors.Is(err, ErrTimeout)
}
