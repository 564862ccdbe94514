package payment

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/Trevolee01/Bui-transport/internal/auth"
	"github.com/Trevolee01/Bui-transport/internal/booking"
	"github.com/Trevolee01/Bui-transport/internal/notification"
	"github.com/Trevolee01/Bui-transport/internal/transport"
	"github.com/Trevolee01/Bui-transport/internal/user"
)

type Handler struct {
	service  Service
	userRepo user.Repository
	currency string
}

func NewHandler(db *sqlx.DB, bookingRepo booking.Repository, transportRepo transport.Repository, gateway Gateway, notifications *notification.Service, minTopUp decimal.Decimal, currency string) *Handler {
	repo := NewRepository(db)
	return &Handler{
		service:  NewService(repo, bookingRepo, transportRepo, gateway, notifications, minTopUp),
		userRepo: user.NewRepository(db),
		currency: currency,
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

func paginationParams(c *gin.Context) (limit, offset int) {
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))
	return limit, offset
}

// TopUpWallet godoc
// @Summary      Top up the student wallet
// @Tags         wallet
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request  body      TopUpRequest  true  "Top-up data"
// @Success      200      {object}  Transaction
// @Failure      400      {object}  gin.H
// @Router       /wallet/topup [post]
func (h *Handler) TopUpWallet(c *gin.Context) {
	student, ok := h.studentFromContext(c)
	if !ok {
		return
	}

	var req TopUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	tx, err := h.service.TopUpWallet(c.Request.Context(), student, req)
	if err != nil {
		var minErr *MinTopUpError
		switch {
		case errors.Is(err, ErrInvalidAmount):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.As(err, &minErr):
			c.JSON(http.StatusBadRequest, gin.H{"error": minErr.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to top up wallet"})
		}
		return
	}

	c.JSON(http.StatusOK, tx)
}

// RecordPayment godoc
// @Summary      Pay for a booking
// @Tags         payments
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request  body      RecordPaymentRequest  true  "Payment data"
// @Success      200      {object}  Transaction
// @Failure      402      {object}  gin.H
// @Failure      409      {object}  gin.H
// @Router       /payments [post]
func (h *Handler) RecordPayment(c *gin.Context) {
	student, ok := h.studentFromContext(c)
	if !ok {
		return
	}

	var req RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	tx, err := h.service.RecordPayment(c.Request.Context(), student, req)
	if err != nil {
		var fundsErr *InsufficientFundsError
		switch {
		case errors.Is(err, booking.ErrBookingNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Booking not found"})
		case errors.Is(err, booking.ErrNotBookingOwner):
			c.JSON(http.StatusForbidden, gin.H{"error": "You can only pay for your own bookings"})
		case errors.Is(err, ErrAlreadyPaid):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		case errors.As(err, &fundsErr):
			c.JSON(http.StatusPaymentRequired, gin.H{"error": fundsErr.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record payment"})
		}
		return
	}

	c.JSON(http.StatusOK, tx)
}

// GetWallet godoc
// @Summary      Wallet balance for the authenticated student
// @Tags         wallet
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  WalletSummary
// @Router       /wallet [get]
func (h *Handler) GetWallet(c *gin.Context) {
	student, ok := h.studentFromContext(c)
	if !ok {
		return
	}

	summary, err := h.service.GetWallet(c.Request.Context(), student, h.currency)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch wallet"})
		return
	}

	c.JSON(http.StatusOK, summary)
}

// ListWalletTransactions godoc
// @Summary      Wallet ledger for the authenticated student
// @Tags         wallet
// @Security     BearerAuth
// @Produce      json
// @Param        limit   query     int  false  "Page size"
// @Param        offset  query     int  false  "Page offset"
// @Success      200     {array}   WalletTransaction
// @Router       /wallet/transactions [get]
func (h *Handler) ListWalletTransactions(c *gin.Context) {
	student, ok := h.studentFromContext(c)
	if !ok {
		return
	}

	limit, offset := paginationParams(c)
	entries, err := h.service.ListWalletTransactions(c.Request.Context(), student, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch wallet transactions"})
		return
	}

	c.JSON(http.StatusOK, entries)
}

// ListMyTransactions godoc
// @Summary      Payment transactions for the authenticated student
// @Tags         payments
// @Security     BearerAuth
// @Produce      json
// @Success      200  {array}  Transaction
// @Router       /payments [get]
func (h *Handler) ListMyTransactions(c *gin.Context) {
	student, ok := h.studentFromContext(c)
	if !ok {
		return
	}

	transactions, err := h.service.ListMyTransactions(c.Request.Context(), student)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch transactions"})
		return
	}

	c.JSON(http.StatusOK, transactions)
}

// GetTransaction godoc
// @Summary      Get a transaction by ID
// @Tags         payments
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Transaction ID"
// @Success      200  {object}  Transaction
// @Failure      404  {object}  gin.H
// @Router       /payments/{id} [get]
func (h *Handler) GetTransaction(c *gin.Context) {
	student, ok := h.studentFromContext(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid transaction ID"})
		return
	}

	tx, err := h.service.GetTransaction(c.Request.Context(), student, id)
	if err != nil {
		switch {
		case errors.Is(err, ErrTransactionNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Transaction not found"})
		case errors.Is(err, ErrNotTransactionOwner):
			c.JSON(http.StatusForbidden, gin.H{"error": "You do not have access to this transaction"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch transaction"})
		}
		return
	}

	c.JSON(http.StatusOK, tx)
}

// ListAllTransactions godoc
// @Summary      All transactions (admin)
// @Tags         payments
// @Security     BearerAuth
// @Produce      json
// @Param        limit   query     int  false  "Page size"
// @Param        offset  query     int  false  "Page offset"
// @Success      200     {array}   Transaction
// @Router       /admin/transactions [get]
func (h *Handler) ListAllTransactions(c *gin.Context) {
	limit, offset := paginationParams(c)
	transactions, err := h.service.ListAllTransactions(c.Request.Context(), limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch transactions"})
		return
	}

	c.JSON(http.StatusOK, transactions)
}

// AddPaymentMethod godoc
// @Summary      Save a payment method
// @Tags         payments
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request  body      CreatePaymentMethodRequest  true  "Payment method data"
// @Success      201      {object}  PaymentMethod
// @Router       /payment-methods [post]
func (h *Handler) AddPaymentMethod(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req CreatePaymentMethodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	pm, err := h.service.AddPaymentMethod(c.Request.Context(), userID, req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save payment method"})
		return
	}

	c.JSON(http.StatusCreated, pm)
}

// ListPaymentMethods godoc
// @Summary      List saved payment methods
// @Tags         payments
// @Security     BearerAuth
// @Produce      json
// @Success      200  {array}  PaymentMethod
// @Router       /payment-methods [get]
func (h *Handler) ListPaymentMethods(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	methods, err := h.service.ListPaymentMethods(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch payment methods"})
		return
	}

	c.JSON(http.StatusOK, methods)
}

// RemovePaymentMethod godoc
// @Summary      Delete a saved payment method
// @Tags         payments
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Payment method ID"
// @Success      200  {object}  gin.H
// @Failure      404  {object}  gin.H
// @Router       /payment-methods/{id} [delete]
func (h *Handler) RemovePaymentMethod(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid payment method ID"})
		return
	}

	if err := h.service.RemovePaymentMethod(c.Request.Context(), userID, id); err != nil {
		if errors.Is(err, ErrPaymentMethodNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Payment method not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete payment method"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Payment method deleted"})
}
