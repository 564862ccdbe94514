package booking

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/Trevolee01/Bui-transport/internal/auth"
	"github.com/Trevolee01/Bui-transport/internal/notification"
	"github.com/Trevolee01/Bui-transport/internal/transport"
	"github.com/Trevolee01/Bui-transport/internal/user"
)

type Handler struct {
	service  Service
	userRepo user.Repository
}

func NewHandler(db *sqlx.DB, transportRepo transport.Repository, wallet WalletLedger, notifications *notification.Service, feePercent decimal.Decimal) *Handler {
	repo := NewRepository(db, transportRepo, wallet)
	return &Handler{
		service:  NewService(repo, transportRepo, notifications, feePercent),
		userRepo: user.NewRepository(db),
	}
}

func (h *Handler) studentFromContext(c *gin.Context) (*user.StudentProfile, bool) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return nil, false
	}

	profile, err := h.userRepo.GetStudentProfile(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusForbidden, gin.H{"error": "Student profile not found"})
		return nil, false
	}

	return profile, true
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

func (h *Handler) actorFromContext(c *gin.Context) (user.Actor, bool) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return user.Actor{}, false
	}

	role, _ := auth.GetUserRole(c)
	actor := user.Actor{UserID: userID, Role: role}
	switch actor.Role {
	case auth.RoleStudent:
		profile, err := h.userRepo.GetStudentProfile(c.Request.Context(), userID)
		if err != nil {
			c.JSON(http.StatusForbidden, gin.H{"error": "Student profile not found"})
			return user.Actor{}, false
		}
		actor.Student = profile
	case auth.RoleOrganizer:
		profile, err := h.userRepo.GetOrganizerProfile(c.Request.Context(), userID)
		if err != nil {
			c.JSON(http.StatusForbidden, gin.H{"error": "Organizer profile not found"})
			return user.Actor{}, false
		}
		actor.Organizer = profile
	}

	return actor, true
}

func bookingIDParam(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid booking ID"})
		return uuid.Nil, false
	}
	return id, true
}

// CreateBooking godoc
// @Summary      Book seats on a transport route
// @Tags         bookings
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request  body      CreateBookingRequest  true  "Booking data"
// @Success      201      {object}  Booking
// @Failure      400      {object}  gin.H
// @Failure      409      {object}  gin.H
// @Router       /bookings [post]
func (h *Handler) CreateBooking(c *gin.Context) {
	student, ok := h.studentFromContext(c)
	if !ok {
		return
	}

	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	b, err := h.service.CreateBooking(c.Request.Context(), student, req)
	if err != nil {
		var capErr *transport.CapacityError
		switch {
		case errors.As(err, &capErr):
			c.JSON(http.StatusConflict, gin.H{"error": capErr.Error()})
		case errors.Is(err, transport.ErrRouteNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Transport option not found"})
		case errors.Is(err, transport.ErrRouteNotAvailable):
			c.JSON(http.StatusConflict, gin.H{"error": "Transport option is not available for booking"})
		case errors.Is(err, ErrInvalidDate), errors.Is(err, ErrDateInPast),
			errors.Is(err, ErrNotOperatingDay), errors.Is(err, ErrInvalidSeatCount):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create booking"})
		}
		return
	}

	c.JSON(http.StatusCreated, b)
}

// GetBooking godoc
// @Summary      Get a booking by ID
// @Tags         bookings
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Booking ID"
// @Success      200  {object}  Booking
// @Failure      404  {object}  gin.H
// @Router       /bookings/{id} [get]
func (h *Handler) GetBooking(c *gin.Context) {
	actor, ok := h.actorFromContext(c)
	if !ok {
		return
	}
	id, ok := bookingIDParam(c)
	if !ok {
		return
	}

	b, err := h.service.GetBooking(c.Request.Context(), actor, id)
	if err != nil {
		switch {
		case errors.Is(err, ErrBookingNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Booking not found"})
		case errors.Is(err, ErrNotBookingOwner):
			c.JSON(http.StatusForbidden, gin.H{"error": "You do not have access to this booking"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch booking"})
		}
		return
	}

	c.JSON(http.StatusOK, b)
}

// ListMyBookings godoc
// @Summary      List the authenticated student's bookings
// @Tags         bookings
// @Security     BearerAuth
// @Produce      json
// @Success      200  {array}  Booking
// @Router       /bookings [get]
func (h *Handler) ListMyBookings(c *gin.Context) {
	student, ok := h.studentFromContext(c)
	if !ok {
		return
	}

	bookings, err := h.service.ListStudentBookings(c.Request.Context(), student)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch bookings"})
		return
	}

	c.JSON(http.StatusOK, bookings)
}

// ListOrganizerBookings godoc
// @Summary      List bookings on the organizer's routes
// @Tags         bookings
// @Security     BearerAuth
// @Produce      json
// @Success      200  {array}  Booking
// @Router       /organizer/bookings [get]
func (h *Handler) ListOrganizerBookings(c *gin.Context) {
	organizer, ok := h.organizerFromContext(c)
	if !ok {
		return
	}

	bookings, err := h.service.ListOrganizerBookings(c.Request.Context(), organizer)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch bookings"})
		return
	}

	c.JSON(http.StatusOK, bookings)
}

// ConfirmBooking godoc
// @Summary      Confirm a pending booking
// @Tags         bookings
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Booking ID"
// @Success      200  {object}  Booking
// @Failure      409  {object}  gin.H
// @Router       /organizer/bookings/{id}/confirm [post]
func (h *Handler) ConfirmBooking(c *gin.Context) {
	h.organizerTransition(c, h.service.ConfirmBooking)
}

// CompleteBooking godoc
// @Summary      Mark a confirmed booking completed
// @Tags         bookings
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Booking ID"
// @Success      200  {object}  Booking
// @Failure      409  {object}  gin.H
// @Router       /organizer/bookings/{id}/complete [post]
func (h *Handler) CompleteBooking(c *gin.Context) {
	h.organizerTransition(c, h.service.CompleteBooking)
}

func (h *Handler) organizerTransition(c *gin.Context, fn func(ctx context.Context, organizer *user.OrganizerProfile, id uuid.UUID) (*Booking, error)) {
	organizer, ok := h.organizerFromContext(c)
	if !ok {
		return
	}
	id, ok := bookingIDParam(c)
	if !ok {
		return
	}

	b, err := fn(c.Request.Context(), organizer, id)
	if err != nil {
		var transitionErr *InvalidTransitionError
		switch {
		case errors.Is(err, ErrBookingNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Booking not found"})
		case errors.Is(err, ErrNotBookingOwner):
			c.JSON(http.StatusForbidden, gin.H{"error": "Booking is not on one of your routes"})
		case errors.As(err, &transitionErr):
			c.JSON(http.StatusConflict, gin.H{"error": transitionErr.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update booking"})
		}
		return
	}

	c.JSON(http.StatusOK, b)
}

// CancelBooking godoc
// @Summary      Cancel a booking
// @Tags         bookings
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Booking ID"
// @Success      200  {object}  Booking
// @Failure      409  {object}  gin.H
// @Router       /bookings/{id}/cancel [post]
func (h *Handler) CancelBooking(c *gin.Context) {
	student, ok := h.studentFromContext(c)
	if !ok {
		return
	}
	id, ok := bookingIDParam(c)
	if !ok {
		return
	}

	b, err := h.service.CancelBooking(c.Request.Context(), student, id)
	if err != nil {
		var transitionErr *InvalidTransitionError
		switch {
		case errors.Is(err, ErrBookingNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Booking not found"})
		case errors.Is(err, ErrNotBookingOwner):
			c.JSON(http.StatusForbidden, gin.H{"error": "You can only cancel your own bookings"})
		case errors.As(err, &transitionErr):
			c.JSON(http.StatusConflict, gin.H{"error": transitionErr.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to cancel booking"})
		}
		return
	}

	c.JSON(http.StatusOK, b)
}

// RequestRefund godoc
// @Summary      Request a refund for a paid booking
// @Tags         refunds
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request  body      RefundRequestCreate  true  "Refund request data"
// @Success      201      {object}  RefundRequest
// @Failure      400      {object}  gin.H
// @Failure      409      {object}  gin.H
// @Router       /refunds [post]
func (h *Handler) RequestRefund(c *gin.Context) {
	student, ok := h.studentFromContext(c)
	if !ok {
		return
	}

	var req RefundRequestCreate
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rr, err := h.service.RequestRefund(c.Request.Context(), student, req)
	if err != nil {
		switch {
		case errors.Is(err, ErrBookingNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Booking not found"})
		case errors.Is(err, ErrNotBookingOwner):
			c.JSON(http.StatusForbidden, gin.H{"error": "You can only request refunds on your own bookings"})
		case errors.Is(err, ErrNotEligible), errors.Is(err, ErrInvalidAmount):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, ErrDuplicateRefundRequest):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create refund request"})
		}
		return
	}

	c.JSON(http.StatusCreated, rr)
}

// ListRefundRequests godoc
// @Summary      List refund requests visible to the caller
// @Tags         refunds
// @Security     BearerAuth
// @Produce      json
// @Success      200  {array}  RefundRequest
// @Router       /refunds [get]
func (h *Handler) ListRefundRequests(c *gin.Context) {
	actor, ok := h.actorFromContext(c)
	if !ok {
		return
	}

	requests, err := h.service.ListRefundRequests(c.Request.Context(), actor)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch refund requests"})
		return
	}

	c.JSON(http.StatusOK, requests)
}

// GetRefundRequest godoc
// @Summary      Get a refund request by ID
// @Tags         refunds
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Refund request ID"
// @Success      200  {object}  RefundRequest
// @Failure      404  {object}  gin.H
// @Router       /refunds/{id} [get]
func (h *Handler) GetRefundRequest(c *gin.Context) {
	actor, ok := h.actorFromContext(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid refund request ID"})
		return
	}

	rr, err := h.service.GetRefundRequest(c.Request.Context(), actor, id)
	if err != nil {
		switch {
		case errors.Is(err, ErrRefundRequestNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Refund request not found"})
		case errors.Is(err, ErrNotBookingOwner):
			c.JSON(http.StatusForbidden, gin.H{"error": "You do not have access to this refund request"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch refund request"})
		}
		return
	}

	c.JSON(http.StatusOK, rr)
}

// DecideRefundRequest godoc
// @Summary      Approve, reject or process a refund request
// @Tags         refunds
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                 true  "Refund request ID"
// @Param        request  body      RefundDecisionRequest  true  "Decision"
// @Success      200      {object}  RefundRequest
// @Failure      409      {object}  gin.H
// @Router       /admin/refunds/{id} [patch]
func (h *Handler) DecideRefundRequest(c *gin.Context) {
	adminID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid refund request ID"})
		return
	}

	var req RefundDecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rr, err := h.service.ProcessRefundDecision(c.Request.Context(), adminID, id, req)
	if err != nil {
		var transitionErr *InvalidTransitionError
		switch {
		case errors.Is(err, ErrRefundRequestNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Refund request not found"})
		case errors.Is(err, ErrInvalidDecision):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.As(err, &transitionErr):
			c.JSON(http.StatusConflict, gin.H{"error": transitionErr.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process refund decision"})
		}
		return
	}

	c.JSON(http.StatusOK, rr)
}

// GetMyStats godoc
// @Summary      Booking statistics for the authenticated student
// @Tags         bookings
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  BookingStats
// @Router       /bookings/stats [get]
func (h *Handler) GetMyStats(c *gin.Context) {
	student, ok := h.studentFromContext(c)
	if !ok {
		return
	}

	stats, err := h.service.GetStudentStats(c.Request.Context(), student)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch booking stats"})
		return
	}

	c.JSON(http.StatusOK, stats)
}
