package domain

// rideTransitions is the static table of permitted ride status transitions.
// A transition absent from the table is rejected; COMPLETED and CANCELLED
// have no outgoing edges.
var rideTransitions = map[RideStatus][]RideStatus{
	RideStatusRequested:      {RideStatusMatched, RideStatusCancelled},
	RideStatusMatched:        {RideStatusDriverEnRoute, RideStatusCancelled},
	RideStatusDriverEnRoute:  {RideStatusTripStarted, RideStatusCancelled},
	RideStatusTripStarted:    {RideStatusTripPaused, RideStatusTripEnded},
	RideStatusTripPaused:     {RideStatusTripStarted},
	RideStatusTripEnded:      {RideStatusPaymentPending},
	RideStatusPaymentPending: {RideStatusCompleted, RideStatusPaymentFailed},
	RideStatusPaymentFailed:  {RideStatusPaymentPending},
	RideStatusCompleted:      {},
	RideStatusCancelled:      {},
}

// CanTransition reports whether a ride may move from one status to another.
func CanTransition(from, to RideStatus) bool {
	for _, next := range rideTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether a ride status has no outgoing transitions.
func IsTerminal(s RideStatus) bool {
	return len(rideTransitions[s]) == 0
}

// PreTrip reports whether a ride status precedes the trip being underway.
// Cancellation is only permitted from these states.
func PreTrip(s RideStatus) bool {
	switch s {
	case RideStatusRequested, RideStatusMatched, RideStatusDriverEnRoute:
		return true
	}
	return false
}
