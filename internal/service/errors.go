package service

import "errors"

var (
	// ErrNoDriverAvailable is returned when matching exhausts its candidates.
	ErrNoDriverAvailable = errors.New("no driver available")

	// ErrInvalidRiderID is returned when rider ID is empty.
	ErrInvalidRiderID = errors.New("invalid rider id")

	// ErrInvalidRideID is returned when ride ID is empty.
	ErrInvalidRideID = errors.New("invalid ride id")

	// ErrInvalidDriverID is returned when driver ID is empty.
	ErrInvalidDriverID = errors.New("invalid driver id")

	// ErrInvalidTripID is returned when trip ID is empty.
	ErrInvalidTripID = errors.New("invalid trip id")

	// ErrInvalidPaymentID is returned when payment ID is empty.
	ErrInvalidPaymentID = errors.New("invalid payment id")

	// ErrInvalidPickupLocation is returned when pickup coordinates are out of range.
	ErrInvalidPickupLocation = errors.New("invalid pickup location")

	// ErrInvalidDestinationLocation is returned when destination coordinates are out of range.
	ErrInvalidDestinationLocation = errors.New("invalid destination location")

	// ErrInvalidLocation is returned when ping coordinates are out of range.
	ErrInvalidLocation = errors.New("invalid location")

	// ErrInvalidDriverProfile is returned when registration is missing name
	// or phone.
	ErrInvalidDriverProfile = errors.New("name and phone are required")

	// ErrInvalidTier is returned when the tier is not one of the known classes.
	ErrInvalidTier = errors.New("invalid tier")

	// ErrInvalidPaymentMethod is returned when the payment method is unknown.
	ErrInvalidPaymentMethod = errors.New("invalid payment method")

	// ErrInvalidDriverStatus is returned when the requested driver status is
	// not reachable through the API.
	ErrInvalidDriverStatus = errors.New("invalid driver status")

	// ErrDriverOnTrip is returned when a driver tries to change availability
	// while assigned to an active trip.
	ErrDriverOnTrip = errors.New("driver is on a trip")

	// ErrPhoneAlreadyRegistered is returned when a driver registers with a
	// phone number already in use.
	ErrPhoneAlreadyRegistered = errors.New("phone already registered")

	// ErrInvalidStateTransition is returned when a lifecycle operation is
	// requested from a state that does not permit it.
	ErrInvalidStateTransition = errors.New("invalid state transition")

	// ErrDriverNotAssignedToRide is returned when a driver acts on a ride
	// assigned to someone else.
	ErrDriverNotAssignedToRide = errors.New("driver not assigned to this ride")

	// ErrNotRideOwner is returned when a rider acts on a ride they did not
	// request.
	ErrNotRideOwner = errors.New("ride belongs to another rider")

	// ErrRideAlreadyCancelled is returned when cancelling a cancelled ride.
	ErrRideAlreadyCancelled = errors.New("ride already cancelled")

	// ErrRideCannotBeCancelled is returned when the ride has progressed past
	// the point of cancellation.
	ErrRideCannotBeCancelled = errors.New("ride cannot be cancelled in current state")

	// ErrTripNotActive is returned when pausing a trip that is not running.
	ErrTripNotActive = errors.New("trip not active")

	// ErrTripNotPaused is returned when resuming a trip that is not paused.
	ErrTripNotPaused = errors.New("trip not paused")

	// ErrTripAlreadyEnded is returned when acting on a completed trip.
	ErrTripAlreadyEnded = errors.New("trip already ended")

	// ErrPaymentNotDue is returned when paying for a ride that is not in
	// PAYMENT_PENDING or PAYMENT_FAILED.
	ErrPaymentNotDue = errors.New("payment not due for this ride")

	// ErrAmountOutOfRange is returned when the charged amount disagrees with
	// the computed fare beyond tolerance.
	ErrAmountOutOfRange = errors.New("amount outside acceptable fare range")

	// ErrPaymentProvider is returned when the payment provider fails after
	// all retries.
	ErrPaymentProvider = errors.New("payment provider unavailable")
)
