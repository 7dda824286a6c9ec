package error

import (
	"fmt"
	"net/http"
)

// SessionFatalError is raised once the reconnect ceiling is reached. The
// process is expected to exit and be restarted by its supervisor.
type SessionFatalError struct {
	Attempts int
	Reason   string
}

func (err SessionFatalError) Error() string {
	return fmt.Sprintf("session unrecoverable after %d reconnect attempts: %s", err.Attempts, err.Reason)
}

func (err SessionFatalError) ErrCode() string {
	return "SESSION_FATAL"
}

func (err SessionFatalError) StatusCode() int {
	return http.StatusServiceUnavailable
}

// DeliveryFailureError is returned when an outbound send failed while the
// session was ready. The message is dropped.
type DeliveryFailureError struct {
	Destination string
	Cause       error
}

func (err *DeliveryFailureError) Error() string {
	return fmt.Sprintf("delivery to %s failed: %v", err.Destination, err.Cause)
}

func (err *DeliveryFailureError) Unwrap() error {
	return err.Cause
}

func (err *DeliveryFailureError) ErrCode() string {
	return "DELIVERY_FAILURE"
}

func (err *DeliveryFailureError) StatusCode() int {
	return http.StatusBadGateway
}
