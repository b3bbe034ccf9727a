package domain

// transitions is the complete set of legal moves. Cancellation is only
// possible before the food is ready.
var transitions = map[Status][]Status{
	StatusPending:   {StatusPreparing, StatusCancelled},
	StatusPreparing: {StatusReady, StatusCancelled},
	StatusReady:     {StatusServed},
	StatusServed:    {},
	StatusCancelled: {},
}

// ValidateTransition is a pure check of from -> to. The returned
// *TransitionError has no OrderID; stores fill it in.
func ValidateTransition(from, to Status) error {
	for _, allowed := range transitions[from] {
		if allowed == to {
			return nil
		}
	}
	return &TransitionError{From: from, To: to}
}

// AllowedTransitions lists the statuses reachable from from in one move.
func AllowedTransitions(from Status) []Status {
	return append([]Status(nil), transitions[from]...)
}
