package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/man2412/Ride-Hailing-Platform/internal/domain"
	"github.com/man2412/Ride-Hailing-Platform/internal/middleware"
	"github.com/man2412/Ride-Hailing-Platform/internal/service"
)

// DriverHandler handles HTTP requests for drivers.
type DriverHandler struct {
	driverService   *service.DriverService
	locationService *service.LocationService
	tripService     *service.TripService
	authSecret      string
	tokenExpiry     time.Duration
}

// NewDriverHandler creates a new DriverHandler.
func NewDriverHandler(
	driverService *service.DriverService,
	locationService *service.LocationService,
	tripService *service.TripService,
	authSecret string,
	tokenExpiry time.Duration,
) *DriverHandler {
	return &DriverHandler{
		driverService:   driverService,
		locationService: locationService,
		tripService:     tripService,
		authSecret:      authSecret,
		tokenExpiry:     tokenExpiry,
	}
}

// RegisterDriverRequest is the HTTP request body for registering a driver.
type RegisterDriverRequest struct {
	Name  string `json:"name" binding:"required,min=2,max=255"`
	Phone string `json:"phone" binding:"required,min=10,max=20"`
	Tier  string `json:"tier,omitempty"`
}

// DriverResponse is the HTTP representation of a driver.
type DriverResponse struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Phone  string `json:"phone"`
	Tier   string `json:"tier"`
	Status string `json:"status"`
}

// RegisterDriverResponse adds the access token minted at registration.
type RegisterDriverResponse struct {
	DriverResponse
	AccessToken string `json:"access_token"`
}

func toDriverResponse(driver *domain.Driver) DriverResponse {
	return DriverResponse{
		ID:     driver.ID,
		Name:   driver.Name,
		Phone:  driver.Phone,
		Tier:   string(driver.Tier),
		Status: string(driver.Status),
	}
}

// Register handles POST /v1/drivers
func (h *DriverHandler) Register(c *gin.Context) {
	var req RegisterDriverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c)
		return
	}

	driver, err := h.driverService.Register(c.Request.Context(), service.RegisterDriverRequest{
		Name:  req.Name,
		Phone: req.Phone,
		Tier:  req.Tier,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	token, err := middleware.CreateAccessToken(h.authSecret, driver.ID, h.tokenExpiry)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, RegisterDriverResponse{
		DriverResponse: toDriverResponse(driver),
		AccessToken:    token,
	})
}

// Get handles GET /v1/drivers/:id
func (h *DriverHandler) Get(c *gin.Context) {
	driver, err := h.driverService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toDriverResponse(driver))
}

// UpdateStatus handles PATCH /v1/drivers/:id/status?new_status=...
func (h *DriverHandler) UpdateStatus(c *gin.Context) {
	driverID := c.Param("id")
	if middleware.SubjectID(c) != driverID {
		respondError(c, service.ErrDriverNotAssignedToRide)
		return
	}

	newStatus := c.Query("new_status")
	if newStatus == "" {
		respondError(c, service.ErrInvalidDriverStatus)
		return
	}

	driver, err := h.driverService.UpdateStatus(c.Request.Context(), driverID, domain.DriverStatus(newStatus))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toDriverResponse(driver))
}

// UpdateLocationRequest is the HTTP request body for a location ping.
type UpdateLocationRequest struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// UpdateLocation handles POST /v1/drivers/:id/location
func (h *DriverHandler) UpdateLocation(c *gin.Context) {
	driverID := c.Param("id")
	if middleware.SubjectID(c) != driverID {
		respondError(c, service.ErrDriverNotAssignedToRide)
		return
	}

	var req UpdateLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c)
		return
	}

	if err := h.locationService.Ingest(c.Request.Context(), driverID, req.Lat, req.Lng); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// AcceptRequest is the HTTP request body for accepting a ride.
type AcceptRequest struct {
	RideID string `json:"ride_id"`
}

// AcceptResponse is the HTTP response for a successful acceptance.
type AcceptResponse struct {
	TripID string `json:"trip_id"`
	Status string `json:"status"`
}

// Accept handles POST /v1/drivers/:id/accept
func (h *DriverHandler) Accept(c *gin.Context) {
	driverID := c.Param("id")
	if middleware.SubjectID(c) != driverID {
		respondError(c, service.ErrDriverNotAssignedToRide)
		return
	}

	var req AcceptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c)
		return
	}

	trip, err := h.tripService.Accept(c.Request.Context(), req.RideID, driverID)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, AcceptResponse{
		TripID: trip.ID,
		Status: string(domain.RideStatusDriverEnRoute),
	})
}
