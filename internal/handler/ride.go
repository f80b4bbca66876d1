package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/man2412/Ride-Hailing-Platform/internal/middleware"
	"github.com/man2412/Ride-Hailing-Platform/internal/service"
)

// RideHandler handles HTTP requests for rides.
type RideHandler struct {
	rideService *service.RideService
}

// NewRideHandler creates a new RideHandler.
func NewRideHandler(rideService *service.RideService) *RideHandler {
	return &RideHandler{rideService: rideService}
}

// CreateRideRequest is the HTTP request body for creating a ride.
type CreateRideRequest struct {
	PickupLat     float64 `json:"pickup_lat"`
	PickupLng     float64 `json:"pickup_lng"`
	DestLat       float64 `json:"dest_lat"`
	DestLng       float64 `json:"dest_lng"`
	Tier          string  `json:"tier,omitempty"`
	PaymentMethod string  `json:"payment_method,omitempty"`
}

// EstimatedFare is the quoted fare band.
type EstimatedFare struct {
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
	Currency string  `json:"currency"`
}

// CreateRideResponse is the HTTP response for creating a ride.
type CreateRideResponse struct {
	ID              string        `json:"id"`
	Status          string        `json:"status"`
	SurgeMultiplier float64       `json:"surge_multiplier"`
	EstimatedFare   EstimatedFare `json:"estimated_fare"`
	CreatedAt       time.Time     `json:"created_at"`
}

// CreateRide handles POST /v1/rides
func (h *RideHandler) CreateRide(c *gin.Context) {
	var req CreateRideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c)
		return
	}

	result, err := h.rideService.CreateRide(c.Request.Context(), service.CreateRideRequest{
		RiderID:        middleware.SubjectID(c),
		PickupLat:      req.PickupLat,
		PickupLng:      req.PickupLng,
		DestLat:        req.DestLat,
		DestLng:        req.DestLng,
		Tier:           req.Tier,
		PaymentMethod:  req.PaymentMethod,
		IdempotencyKey: c.GetHeader("Idempotency-Key"),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, CreateRideResponse{
		ID:              result.Ride.ID,
		Status:          string(result.Ride.Status),
		SurgeMultiplier: result.Ride.SurgeMultiplier,
		EstimatedFare: EstimatedFare{
			Min:      result.EstimatedFare.Min,
			Max:      result.EstimatedFare.Max,
			Currency: result.EstimatedFare.Currency,
		},
		CreatedAt: result.Ride.CreatedAt,
	})
}

// GetRide handles GET /v1/rides/:id
func (h *RideHandler) GetRide(c *gin.Context) {
	view, err := h.rideService.GetRideStatus(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, view)
}

// CancelRideResponse is the HTTP response for cancelling a ride.
type CancelRideResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// CancelRide handles POST /v1/rides/:id/cancel
func (h *RideHandler) CancelRide(c *gin.Context) {
	ride, err := h.rideService.CancelRide(c.Request.Context(), c.Param("id"), middleware.SubjectID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, CancelRideResponse{
		ID:     ride.ID,
		Status: string(ride.Status),
	})
}
