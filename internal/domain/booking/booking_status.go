package booking

import "fmt"

// BookingStatus represents the service-side state of a booking.
type BookingStatus string

const (
	StatusPending    BookingStatus = "pending"
	StatusConfirmed  BookingStatus = "confirmed"
	StatusInProgress BookingStatus = "in_progress"
	StatusCompleted  BookingStatus = "completed"
	StatusCancelled  BookingStatus = "cancelled"
)

// PaymentStatus represents the payment-side state of a booking.
type PaymentStatus string

const (
	PaymentUnpaid   PaymentStatus = "unpaid"
	PaymentPaid     PaymentStatus = "paid"
	PaymentFailed   PaymentStatus = "failed"
	PaymentRefunded PaymentStatus = "refunded"
)

// Actor identifies who is requesting a lifecycle transition.
type Actor string

const (
	ActorCustomer      Actor = "customer"
	ActorAdmin         Actor = "admin"
	ActorPaymentSystem Actor = "payment_system"
)

// Event is a lifecycle event applied to a booking.
type Event string

const (
	EventPaymentSucceeded Event = "payment_succeeded"
	EventPaymentFailed    Event = "payment_failed"
	EventRetryPayment     Event = "retry_payment"
	EventStartService     Event = "start_service"
	EventFinishService    Event = "finish_service"
	EventCancel           Event = "cancel"
)

// Events lists every lifecycle event, in table order.
var Events = []Event{
	EventPaymentSucceeded,
	EventPaymentFailed,
	EventRetryPayment,
	EventStartService,
	EventFinishService,
	EventCancel,
}

// stateKey is a (status, paymentStatus) pair, the unit the state machine runs over.
type stateKey struct {
	status  BookingStatus
	payment PaymentStatus
}

func (k stateKey) String() string {
	return fmt.Sprintf("%s/%s", k.status, k.payment)
}

// paymentPreserved marks a transition that keeps the current payment status
// (cancellation does not touch money; refunds are confirmed separately).
const paymentPreserved PaymentStatus = ""

// transitionRule names the target state and the actors allowed to drive it.
type transitionRule struct {
	to     stateKey
	actors []Actor
}

// transitions is the single source of truth for every legal lifecycle
// transition. A payment success auto-advances straight to confirmed/paid;
// the transient pending/paid state is never observable. Terminal states
// (completed, cancelled) have no entries, so every event fails there.
var transitions = map[stateKey]map[Event]transitionRule{
	{StatusPending, PaymentUnpaid}: {
		EventPaymentSucceeded: {to: stateKey{StatusConfirmed, PaymentPaid}, actors: []Actor{ActorPaymentSystem}},
		EventPaymentFailed:    {to: stateKey{StatusPending, PaymentFailed}, actors: []Actor{ActorPaymentSystem}},
		EventCancel:           {to: stateKey{StatusCancelled, paymentPreserved}, actors: []Actor{ActorCustomer, ActorAdmin}},
	},
	{StatusPending, PaymentFailed}: {
		EventRetryPayment: {to: stateKey{StatusPending, PaymentUnpaid}, actors: []Actor{ActorCustomer}},
		EventCancel:       {to: stateKey{StatusCancelled, paymentPreserved}, actors: []Actor{ActorCustomer, ActorAdmin}},
	},
	{StatusConfirmed, PaymentPaid}: {
		EventStartService: {to: stateKey{StatusInProgress, PaymentPaid}, actors: []Actor{ActorAdmin}},
		EventCancel:       {to: stateKey{StatusCancelled, paymentPreserved}, actors: []Actor{ActorCustomer, ActorAdmin}},
	},
	{StatusInProgress, PaymentPaid}: {
		EventFinishService: {to: stateKey{StatusCompleted, PaymentPaid}, actors: []Actor{ActorAdmin}},
		EventCancel:        {to: stateKey{StatusCancelled, paymentPreserved}, actors: []Actor{ActorCustomer, ActorAdmin}},
	},
}

// nextState looks up the rule for applying ev in the given state.
func nextState(from stateKey, ev Event) (transitionRule, bool) {
	rules, ok := transitions[from]
	if !ok {
		return transitionRule{}, false
	}
	rule, ok := rules[ev]
	return rule, ok
}

// allowedActor reports whether the actor may drive the transition.
func (r transitionRule) allowedActor(actor Actor) bool {
	for _, a := range r.actors {
		if a == actor {
			return true
		}
	}
	return false
}

// IsValid returns true if the status is a recognized booking status.
func (s BookingStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusInProgress, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// IsTerminal returns true if no lifecycle event is accepted from this status.
func (s BookingStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// String returns the string representation of the status.
func (s BookingStatus) String() string {
	return string(s)
}

// IsValid returns true if the payment status is recognized.
func (p PaymentStatus) IsValid() bool {
	switch p {
	case PaymentUnpaid, PaymentPaid, PaymentFailed, PaymentRefunded:
		return true
	}
	return false
}

// String returns the string representation of the payment status.
func (p PaymentStatus) String() string {
	return string(p)
}

// ParseBookingStatus converts a string to a BookingStatus, returning an error if invalid.
func ParseBookingStatus(s string) (BookingStatus, error) {
	status := BookingStatus(s)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid booking status: %s", s)
	}
	return status, nil
}

// ParsePaymentStatus converts a string to a PaymentStatus, returning an error if invalid.
func ParsePaymentStatus(s string) (PaymentStatus, error) {
	status := PaymentStatus(s)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid payment status: %s", s)
	}
	return status, nil
}
