package payment

import (
	"context"
	"fmt"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/Trevolee01/Bui-transport/internal/booking"
)

func setupMock(t *testing.T) (Repository, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	sqlxDB := sqlx.NewDb(db, "sqlmock")
	repo := NewRepository(sqlxDB)

	closer := func() {
		sqlxDB.Close()
	}

	return repo, mock, closer
}

const balanceSelect = "SELECT wallet_balance FROM student_profiles WHERE id = $1 FOR UPDATE"

func TestSettleTopUpWritesLedgerSnapshot(t *testing.T) {
	repo, mock, close := setupMock(t)
	defer close()

	studentID := uuid.New()
	txID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(balanceSelect)).
		WithArgs(studentID).
		WillReturnRows(sqlmock.NewRows([]string{"wallet_balance"}).AddRow("250.00"))
	mock.ExpectExec("INSERT INTO wallet_transactions").
		WithArgs(studentID, LedgerCredit, decimal.RequireFromString("100.00"), decimal.RequireFromString("250.00"), decimal.RequireFromString("350.00"), RefTopUp, &txID, "Wallet top-up via card").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE student_profiles SET wallet_balance = $1, updated_at = NOW() WHERE id = $2")).
		WithArgs(decimal.RequireFromString("350.00"), studentID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("UPDATE transactions SET status").
		WithArgs(TxSuccess, nil, nil, txID, TxPending).
		WillReturnRows(txRow(txID, TypeWalletTopUp, TxSuccess))
	mock.ExpectCommit()

	settled, err := repo.SettleTopUp(context.Background(), txID, studentID,
		decimal.RequireFromString("100.00"), nil, nil, "Wallet top-up via card")
	require.NoError(t, err)
	require.Equal(t, TxSuccess, settled.Status)
	require.NoError(t, mock.ExpectationsWereMet())
}

// An insufficient balance rolls back the whole settlement: no ledger row,
// no status flip, no booking update.
func TestSettleBookingPaymentInsufficientFunds(t *testing.T) {
	repo, mock, close := setupMock(t)
	defer close()

	studentID := uuid.New()
	txID := uuid.New()
	bookingID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(balanceSelect)).
		WithArgs(studentID).
		WillReturnRows(sqlmock.NewRows([]string{"wallet_balance"}).AddRow("40.00"))
	mock.ExpectRollback()

	_, err := repo.SettleBookingPayment(context.Background(), txID, bookingID, studentID,
		decimal.RequireFromString("100.00"), true, nil, nil)

	var fundsErr *InsufficientFundsError
	require.ErrorAs(t, err, &fundsErr)
	require.True(t, fundsErr.Balance.Equal(decimal.RequireFromString("40.00")))
	require.True(t, fundsErr.Amount.Equal(decimal.RequireFromString("100.00")))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSettleBookingPaymentExactBalance(t *testing.T) {
	repo, mock, close := setupMock(t)
	defer close()

	studentID := uuid.New()
	txID := uuid.New()
	bookingID := uuid.New()
	description := fmt.Sprintf("Payment for booking %s", bookingID)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(balanceSelect)).
		WithArgs(studentID).
		WillReturnRows(sqlmock.NewRows([]string{"wallet_balance"}).AddRow("100.00"))
	mock.ExpectExec("INSERT INTO wallet_transactions").
		WithArgs(studentID, LedgerDebit, decimal.RequireFromString("100.00"), decimal.RequireFromString("100.00"), decimal.RequireFromString("0.00"), RefBooking, &bookingID, description).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE student_profiles SET wallet_balance").
		WithArgs(decimal.RequireFromString("0.00"), studentID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("UPDATE transactions SET status").
		WithArgs(TxSuccess, nil, nil, txID, TxPending).
		WillReturnRows(txRow(txID, TypePayment, TxSuccess))
	mock.ExpectExec("UPDATE bookings SET payment_status").
		WithArgs(booking.PaymentPaid, bookingID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	settled, err := repo.SettleBookingPayment(context.Background(), txID, bookingID, studentID,
		decimal.RequireFromString("100.00"), true, nil, nil)
	require.NoError(t, err)
	require.Equal(t, TxSuccess, settled.Status)
	require.NoError(t, mock.ExpectationsWereMet())
}

var txCols = []string{
	"id", "transaction_type", "amount", "status", "payment_reference",
	"student_profile_id", "organizer_id", "booking_id", "payment_method",
	"external_reference", "gateway_response", "created_at", "updated_at",
}

func txRow(id uuid.UUID, txType, status string) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows(txCols).AddRow(
		id.String(), txType, "500.00", status, uuid.New().String(),
		uuid.New().String(), nil, nil, "card",
		nil, nil, now, now,
	)
}

func TestCreateTransactionStartsPending(t *testing.T) {
	repo, mock, close := setupMock(t)
	defer close()

	txID := uuid.New()
	mock.ExpectQuery("INSERT INTO transactions").
		WillReturnRows(txRow(txID, TypeWalletTopUp, TxPending))

	tx, err := repo.CreateTransaction(context.Background(), &Transaction{
		TransactionType:  TypeWalletTopUp,
		Amount:           decimal.RequireFromString("500.00"),
		StudentProfileID: uuid.New(),
		PaymentMethod:    "card",
	})
	require.NoError(t, err)
	require.Equal(t, TxPending, tx.Status)
}

func TestSetTransactionStatusGuardsTerminalStates(t *testing.T) {
	repo, mock, close := setupMock(t)
	defer close()

	txID := uuid.New()

	// guard matches nothing: the transaction already settled
	mock.ExpectQuery("UPDATE transactions SET status").
		WillReturnRows(sqlmock.NewRows(txCols))
	mock.ExpectQuery("SELECT .+ FROM transactions WHERE id").
		WithArgs(txID).
		WillReturnRows(txRow(txID, TypePayment, TxSuccess))

	_, err := repo.SetTransactionStatus(context.Background(), txID, TxFailed, nil, nil)

	var transitionErr *booking.InvalidTransitionError
	require.ErrorAs(t, err, &transitionErr)
	require.Equal(t, TxSuccess, transitionErr.From)
	require.Equal(t, TxFailed, transitionErr.To)
}

func TestTransactionTransitions(t *testing.T) {
	require.True(t, CanTransitionTransaction(TxPending, TxSuccess))
	require.True(t, CanTransitionTransaction(TxPending, TxFailed))
	require.True(t, CanTransitionTransaction(TxPending, TxCancelled))
	require.False(t, CanTransitionTransaction(TxSuccess, TxFailed))
	require.False(t, CanTransitionTransaction(TxFailed, TxPending))
	require.False(t, CanTransitionTransaction(TxCancelled, TxSuccess))
}
