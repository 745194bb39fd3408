package reminder

import (
	"errors"
	"fmt"
)

// Conversational error kinds. They are returned together with the reply that
// explains them to the user; callers only log them.
var (
	ErrFormat         = errors.New("malformed input")
	ErrPastDate       = errors.New("date is in the past")
	ErrAlreadyHandled = errors.New("reminder already handled")
	ErrUnknownAction  = errors.New("unknown action")
)

// errNotDue makes the sweep's UpdateSchedule callback skip a record without writing.
var errNotDue = errors.New("not due")

// DeliveryError is a push that did not reach one subscriber.
type DeliveryError struct {
	SubscriberID  string
	MedicationKey string
	Err           error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("deliver %s reminder to %s: %v", e.MedicationKey, e.SubscriberID, e.Err)
}

func (e *DeliveryError) Unwrap() error { return e.Err }

// IsConversational reports whether err is one of the recoverable kinds that
// only need a reply to the user.
func IsConversational(err error) bool {
	return errors.Is(err, ErrFormat) ||
		errors.Is(err, ErrPastDate) ||
		errors.Is(err, ErrAlreadyHandled) ||
		errors.Is(err, ErrUnknownAction)
}
