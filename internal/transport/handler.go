package transport

import (
	"errors"
	"net/http"

	"github.com/Trevolee01/Bui-transport/internal/auth"
	"github.com/Trevolee01/Bui-transport/internal/user"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type Handler struct {
	service  Service
	userRepo user.Repository
}

func NewHandler(db *sqlx.DB) *Handler {
	return &Handler{
		service:  NewService(NewRepository(db)),
		userRepo: user.NewRepository(db),
	}
}

func (h *Handler) organizerFromContext(c *gin.Context) (*user.OrganizerProfile, bool) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return nil, false
	}

	profile, err := h.userRepo.GetOrganizerProfile(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusForbidden, gin.H{"error": "Organizer profile not found"})
		return nil, false
	}

	return profile, true
}

// CreateRoute godoc
// @Summary      Create transport route
// @Tags         routes
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request  body      CreateRouteRequest  true  "Route data"
// @Success      201      {object}  TransportOption
// @Failure      400      {object}  gin.H
// @Failure      403      {object}  gin.H
// @Router       /organizer/routes [post]
func (h *Handler) CreateRoute(c *gin.Context) {
	organizer, ok := h.organizerFromContext(c)
	if !ok {
		return
	}

	var req CreateRouteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	route, err := h.service.CreateRoute(c.Request.Context(), organizer, req)
	if err != nil {
		switch {
		case errors.Is(err, ErrRouteNotAvailable):
			c.JSON(http.StatusForbidden, gin.H{"error": "Organizer is not approved"})
		case errors.Is(err, ErrInvalidSchedule), errors.Is(err, ErrInvalidDay), errors.Is(err, ErrInvalidPrice):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create route"})
		}
		return
	}

	c.JSON(http.StatusCreated, route)
}

// UpdateRoute godoc
// @Summary      Update transport route
// @Tags         routes
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        routeID  path      string              true  "Route ID"
// @Param        request  body      UpdateRouteRequest  true  "Fields to update"
// @Success      200      {object}  TransportOption
// @Failure      400      {object}  gin.H
// @Failure      403      {object}  gin.H
// @Failure      404      {object}  gin.H
// @Router       /organizer/routes/{routeID} [patch]
func (h *Handler) UpdateRoute(c *gin.Context) {
	organizer, ok := h.organizerFromContext(c)
	if !ok {
		return
	}

	routeID, err := uuid.Parse(c.Param("routeID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid route ID"})
		return
	}

	var req UpdateRouteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	route, err := h.service.UpdateRoute(c.Request.Context(), organizer, routeID, req)
	if err != nil {
		switch {
		case errors.Is(err, ErrRouteNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Route not found"})
		case errors.Is(err, ErrNotRouteOwner):
			c.JSON(http.StatusForbidden, gin.H{"error": "You can only edit your own routes"})
		case errors.Is(err, ErrInvalidSchedule), errors.Is(err, ErrInvalidDay), errors.Is(err, ErrInvalidPrice):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update route"})
		}
		return
	}

	c.JSON(http.StatusOK, route)
}

// ListRoutes godoc
// @Summary      List active routes
// @Tags         routes
// @Security     BearerAuth
// @Produce      json
// @Param        departure    query     string  false  "Filter by departure location"
// @Param        destination  query     string  false  "Filter by destination"
// @Success      200          {array}   TransportOption
// @Failure      500          {object}  gin.H
// @Router       /routes [get]
func (h *Handler) ListRoutes(c *gin.Context) {
	routes, err := h.service.ListRoutes(c.Request.Context(), c.Query("departure"), c.Query("destination"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch routes"})
		return
	}

	c.JSON(http.StatusOK, routes)
}

// GetRoute godoc
// @Summary      Get route by ID
// @Tags         routes
// @Security     BearerAuth
// @Produce      json
// @Param        routeID  path      string  true  "Route ID"
// @Success      200      {object}  TransportOption
// @Failure      404      {object}  gin.H
// @Router       /routes/{routeID} [get]
func (h *Handler) GetRoute(c *gin.Context) {
	routeID, err := uuid.Parse(c.Param("routeID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid route ID"})
		return
	}

	route, err := h.service.GetRoute(c.Request.Context(), routeID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Route not found"})
		return
	}

	c.JSON(http.StatusOK, route)
}

// ListOwnRoutes godoc
// @Summary      List organizer's own routes
// @Tags         routes
// @Security     BearerAuth
// @Produce      json
// @Success      200  {array}   TransportOption
// @Failure      403  {object}  gin.H
// @Router       /organizer/routes [get]
func (h *Handler) ListOwnRoutes(c *gin.Context) {
	organizer, ok := h.organizerFromContext(c)
	if !ok {
		return
	}

	routes, err := h.service.ListOwnRoutes(c.Request.Context(), organizer)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch routes"})
		return
	}

	c.JSON(http.StatusOK, routes)
}

// CreateTripUpdate godoc
// @Summary      Publish a trip update
// @Tags         routes
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        routeID  path      string                   true  "Route ID"
// @Param        request  body      CreateTripUpdateRequest  true  "Update data"
// @Success      201      {object}  TripUpdate
// @Failure      400      {object}  gin.H
// @Failure      403      {object}  gin.H
// @Router       /organizer/routes/{routeID}/updates [post]
func (h *Handler) CreateTripUpdate(c *gin.Context) {
	organizer, ok := h.organizerFromContext(c)
	if !ok {
		return
	}

	routeID, err := uuid.Parse(c.Param("routeID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid route ID"})
		return
	}

	var req CreateTripUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	update, err := h.service.CreateTripUpdate(c.Request.Context(), organizer, routeID, req)
	if err != nil {
		switch {
		case errors.Is(err, ErrRouteNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Route not found"})
		case errors.Is(err, ErrNotRouteOwner):
			c.JSON(http.StatusForbidden, gin.H{"error": "You can only publish updates for your own routes"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create trip update"})
		}
		return
	}

	c.JSON(http.StatusCreated, update)
}

// ListTripUpdates godoc
// @Summary      List trip updates for a route
// @Tags         routes
// @Security     BearerAuth
// @Produce      json
// @Param        routeID  path      string  true  "Route ID"
// @Success      200      {array}   TripUpdate
// @Failure      400      {object}  gin.H
// @Router       /routes/{routeID}/updates [get]
func (h *Handler) ListTripUpdates(c *gin.Context) {
	routeID, err := uuid.Parse(c.Param("routeID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid route ID"})
		return
	}

	updates, err := h.service.ListTripUpdates(c.Request.Context(), routeID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch trip updates"})
		return
	}

	c.JSON(http.StatusOK, updates)
}

// CreateReview godoc
// @Summary      Review a transport route
// @Tags         routes
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        routeID  path      string               true  "Route ID"
// @Param        request  body      CreateReviewRequest  true  "Review data"
// @Success      201      {object}  Review
// @Failure      400      {object}  gin.H
// @Failure      409      {object}  gin.H
// @Router       /routes/{routeID}/reviews [post]
func (h *Handler) CreateReview(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	routeID, err := uuid.Parse(c.Param("routeID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid route ID"})
		return
	}

	var req CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	review, err := h.service.CreateReview(c.Request.Context(), userID, routeID, req)
	if err != nil {
		switch {
		case errors.Is(err, ErrRouteNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Route not found"})
		case errors.Is(err, ErrDuplicateReview):
			c.JSON(http.StatusConflict, gin.H{"error": "You already reviewed this booking"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create review"})
		}
		return
	}

	c.JSON(http.StatusCreated, review)
}

// ListReviews godoc
// @Summary      List reviews for a route
// @Tags         routes
// @Security     BearerAuth
// @Produce      json
// @Param        routeID  path      string  true  "Route ID"
// @Success      200      {array}   Review
// @Failure      400      {object}  gin.H
// @Router       /routes/{routeID}/reviews [get]
func (h *Handler) ListReviews(c *gin.Context) {
	routeID, err := uuid.Parse(c.Param("routeID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid route ID"})
		return
	}

	reviews, err := h.service.ListReviews(c.Request.Context(), routeID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch reviews"})
		return
	}

	c.JSON(http.StatusOK, reviews)
}
