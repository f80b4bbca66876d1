package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/man2412/Ride-Hailing-Platform/internal/domain"
	"github.com/man2412/Ride-Hailing-Platform/internal/middleware"
	"github.com/man2412/Ride-Hailing-Platform/internal/service"
)

// TripHandler handles HTTP requests for trips.
type TripHandler struct {
	tripService *service.TripService
}

// NewTripHandler creates a new TripHandler.
func NewTripHandler(tripService *service.TripService) *TripHandler {
	return &TripHandler{tripService: tripService}
}

// TripResponse is the HTTP representation of a trip.
type TripResponse struct {
	ID          string  `json:"id"`
	RideID      string  `json:"ride_id"`
	Status      string  `json:"status"`
	PausedTotal float64 `json:"paused_total_seconds"`
}

func toTripResponse(trip *domain.Trip) TripResponse {
	return TripResponse{
		ID:          trip.ID,
		RideID:      trip.RideID,
		Status:      string(trip.Status),
		PausedTotal: trip.TotalPaused.Seconds(),
	}
}

// Start handles POST /v1/trips/:id/start
func (h *TripHandler) Start(c *gin.Context) {
	trip, err := h.tripService.Start(c.Request.Context(), c.Param("id"), middleware.SubjectID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toTripResponse(trip))
}

// Pause handles POST /v1/trips/:id/pause
func (h *TripHandler) Pause(c *gin.Context) {
	trip, err := h.tripService.Pause(c.Request.Context(), c.Param("id"), middleware.SubjectID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toTripResponse(trip))
}

// Resume handles POST /v1/trips/:id/resume
func (h *TripHandler) Resume(c *gin.Context) {
	trip, err := h.tripService.Resume(c.Request.Context(), c.Param("id"), middleware.SubjectID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toTripResponse(trip))
}

// EndTripRequest is the HTTP request body for ending a trip.
type EndTripRequest struct {
	FinalLat float64 `json:"final_lat"`
	FinalLng float64 `json:"final_lng"`
}

// EndTripResponse is the HTTP response for a completed trip.
type EndTripResponse struct {
	TripID        string  `json:"trip_id"`
	DistanceKM    float64 `json:"distance_km"`
	BaseFare      float64 `json:"base_fare"`
	SurgeFare     float64 `json:"surge_fare"`
	TotalFare     float64 `json:"total_fare"`
	PaymentStatus string  `json:"payment_status"`
}

// End handles POST /v1/trips/:id/end
func (h *TripHandler) End(c *gin.Context) {
	var req EndTripRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c)
		return
	}

	result, err := h.tripService.End(c.Request.Context(), c.Param("id"), middleware.SubjectID(c), req.FinalLat, req.FinalLng)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, EndTripResponse{
		TripID:        result.Trip.ID,
		DistanceKM:    result.Trip.DistanceKM,
		BaseFare:      result.Fare.BaseFare,
		SurgeFare:     result.Fare.SurgeFare,
		TotalFare:     result.Fare.TotalFare,
		PaymentStatus: string(result.PaymentStatus),
	})
}
