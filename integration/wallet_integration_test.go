package booking_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Trevolee01/Bui-transport/internal/auth"
	"github.com/Trevolee01/Bui-transport/internal/booking"
	"github.com/Trevolee01/Bui-transport/internal/notification"
	"github.com/Trevolee01/Bui-transport/internal/payment"
	"github.com/Trevolee01/Bui-transport/internal/transport"
)

func newWalletRouter(db *sqlx.DB) (*gin.Engine, *notification.Service) {
	gin.SetMode(gin.TestMode)

	notifications := notification.New("localhost:6379")
	transportRepo := transport.NewRepository(db)
	paymentRepo := payment.NewRepository(db)
	bookingRepo := booking.NewRepository(db, transportRepo, paymentRepo)

	bookingHandler := booking.NewHandler(db, transportRepo, paymentRepo, notifications, decimal.NewFromInt(5))
	paymentHandler := payment.NewHandler(db, bookingRepo, transportRepo, payment.NewSandboxGateway(), notifications, decimal.NewFromInt(100), "NGN")

	router := gin.New()
	authed := router.Group("/", auth.AuthMiddleware("test-secret"))
	authed.POST("/bookings", bookingHandler.CreateBooking)
	authed.POST("/wallet/topup", paymentHandler.TopUpWallet)
	authed.POST("/payments", paymentHandler.RecordPayment)
	authed.GET("/wallet", paymentHandler.GetWallet)

	return router, notifications
}

func postJSON(t *testing.T, router *gin.Engine, token, path string, body interface{}) *httptest.ResponseRecorder {
	data, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest("POST", path, bytes.NewReader(data))
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestWalletLifecycleIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	db := setupTestDB(t)
	defer db.Close()

	router, notifications := newWalletRouter(db)
	defer notifications.Close()

	cleanDatabase(t, db)

	studentUserID, studentProfileID := createTestStudent(t, db, "wallet@campus.edu", "0")
	_, organizerProfileID := createTestOrganizer(t, db, "shuttle@campus.edu", "approved")
	routeID := createTestRoute(t, db, organizerProfileID, "400.00", 10)

	token := generateTestToken(studentUserID, "wallet@campus.edu", auth.RoleStudent)

	t.Run("Top-up below minimum is rejected", func(t *testing.T) {
		w := postJSON(t, router, token, "/wallet/topup", map[string]string{
			"amount":         "50",
			"payment_method": "card",
		})

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Top-up credits the wallet with a ledger snapshot", func(t *testing.T) {
		w := postJSON(t, router, token, "/wallet/topup", map[string]string{
			"amount":         "1500.00",
			"payment_method": "card",
		})

		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var balance decimal.Decimal
		require.NoError(t, db.Get(&balance,
			"SELECT wallet_balance FROM student_profiles WHERE id = $1", studentProfileID))
		assert.True(t, balance.Equal(decimal.RequireFromString("1500.00")), balance.String())

		var ledger struct {
			BalanceBefore decimal.Decimal `db:"balance_before"`
			BalanceAfter  decimal.Decimal `db:"balance_after"`
			Type          string          `db:"transaction_type"`
		}
		require.NoError(t, db.Get(&ledger, `
			SELECT balance_before, balance_after, transaction_type
			FROM wallet_transactions
			WHERE student_profile_id = $1
			ORDER BY created_at DESC LIMIT 1
		`, studentProfileID))
		assert.Equal(t, "credit", ledger.Type)
		assert.True(t, ledger.BalanceBefore.Equal(decimal.Zero))
		assert.True(t, ledger.BalanceAfter.Equal(decimal.RequireFromString("1500.00")))
	})

	t.Run("Wallet payment debits the booking total", func(t *testing.T) {
		bookingDate := time.Now().AddDate(0, 0, 3).Format("2006-01-02")

		w := postJSON(t, router, token, "/bookings", map[string]interface{}{
			"transport_option_id": routeID,
			"booking_date":        bookingDate,
			"seats_booked":        2,
			"payment_method":      "wallet",
		})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		var created booking.Booking
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

		payW := postJSON(t, router, token, "/payments", map[string]interface{}{
			"booking_id": created.ID,
		})
		require.Equal(t, http.StatusOK, payW.Code, payW.Body.String())

		var tx payment.Transaction
		require.NoError(t, json.Unmarshal(payW.Body.Bytes(), &tx))
		assert.Equal(t, payment.TxSuccess, tx.Status)

		var balance decimal.Decimal
		require.NoError(t, db.Get(&balance,
			"SELECT wallet_balance FROM student_profiles WHERE id = $1", studentProfileID))
		// 1500 - 2 * 400
		assert.True(t, balance.Equal(decimal.RequireFromString("700.00")), balance.String())

		var paymentStatus string
		require.NoError(t, db.Get(&paymentStatus,
			"SELECT payment_status FROM bookings WHERE id = $1", created.ID))
		assert.Equal(t, booking.PaymentPaid, paymentStatus)
	})

	t.Run("Paying the same booking twice conflicts", func(t *testing.T) {
		var bookingID uuid.UUID
		require.NoError(t, db.Get(&bookingID,
			"SELECT id FROM bookings WHERE student_profile_id = $1 LIMIT 1", studentProfileID))

		w := postJSON(t, router, token, "/payments", map[string]interface{}{
			"booking_id": bookingID,
		})

		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("Insufficient wallet balance returns 402 and marks payment failed", func(t *testing.T) {
		bookingDate := time.Now().AddDate(0, 0, 3).Format("2006-01-02")

		w := postJSON(t, router, token, "/bookings", map[string]interface{}{
			"transport_option_id": routeID,
			"booking_date":        bookingDate,
			"seats_booked":        5,
			"payment_method":      "wallet",
		})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		var created booking.Booking
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

		// 5 * 400 = 2000 against a 700 balance
		payW := postJSON(t, router, token, "/payments", map[string]interface{}{
			"booking_id": created.ID,
		})
		assert.Equal(t, http.StatusPaymentRequired, payW.Code)

		var paymentStatus string
		require.NoError(t, db.Get(&paymentStatus,
			"SELECT payment_status FROM bookings WHERE id = $1", created.ID))
		assert.Equal(t, booking.PaymentFailed, paymentStatus)
	})
}
