package payment

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/Trevolee01/Bui-transport/internal/booking"
)

const transactionColumns = `id, transaction_type, amount, status, payment_reference,
	student_profile_id, organizer_id, booking_id, payment_method,
	external_reference, gateway_response, created_at, updated_at`

const walletTxColumns = `id, student_profile_id, transaction_type, amount,
	balance_before, balance_after, reference_type, reference_id, description, created_at`

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

// creditOrDebitTx moves money on a student wallet inside the caller's
// transaction. The profile row lock serializes concurrent movements; the
// ledger row records the before/after snapshots the balance was derived from.
func (r *repository) creditOrDebitTx(ctx context.Context, tx *sqlx.Tx, studentProfileID uuid.UUID, amount decimal.Decimal, entryType, referenceType string, referenceID *uuid.UUID, description string) error {
	var before decimal.Decimal
	err := tx.QueryRowxContext(ctx,
		`SELECT wallet_balance FROM student_profiles WHERE id = $1 FOR UPDATE`,
		studentProfileID,
	).Scan(&before)
	if err != nil {
		return err
	}

	var after decimal.Decimal
	switch entryType {
	case LedgerCredit:
		after = before.Add(amount)
	case LedgerDebit:
		if before.LessThan(amount) {
			return &InsufficientFundsError{Balance: before, Amount: amount}
		}
		after = before.Sub(amount)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO wallet_transactions
			(student_profile_id, transaction_type, amount, balance_before, balance_after,
			 reference_type, reference_id, description)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, studentProfileID, entryType, amount, before, after, referenceType, referenceID, description)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE student_profiles
		SET wallet_balance = $1, updated_at = NOW()
		WHERE id = $2
	`, after, studentProfileID)
	return err
}

func (r *repository) CreditTx(ctx context.Context, tx *sqlx.Tx, studentProfileID uuid.UUID, amount decimal.Decimal, referenceType string, referenceID uuid.UUID, description string) error {
	return r.creditOrDebitTx(ctx, tx, studentProfileID, amount, LedgerCredit, referenceType, &referenceID, description)
}

func (r *repository) DebitTx(ctx context.Context, tx *sqlx.Tx, studentProfileID uuid.UUID, amount decimal.Decimal, referenceType string, referenceID uuid.UUID, description string) error {
	return r.creditOrDebitTx(ctx, tx, studentProfileID, amount, LedgerDebit, referenceType, &referenceID, description)
}

// SettleTopUp finalizes a charged top-up: the ledger credit and the
// transaction's success flip commit as one unit, so the wallet never moves
// without the transaction row agreeing.
func (r *repository) SettleTopUp(ctx context.Context, txID, studentProfileID uuid.UUID, amount decimal.Decimal, externalRef, gatewayResponse *string, description string) (*Transaction, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if err := r.CreditTx(ctx, tx, studentProfileID, amount, RefTopUp, txID, description); err != nil {
		return nil, err
	}

	settled, err := r.setStatus(ctx, tx, txID, TxSuccess, externalRef, gatewayResponse)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return settled, nil
}

// SettleBookingPayment finalizes a booking payment: the wallet debit (for
// wallet payments), the transaction's success flip and the booking's paid
// flag commit as one unit.
func (r *repository) SettleBookingPayment(ctx context.Context, txID, bookingID, studentProfileID uuid.UUID, amount decimal.Decimal, fromWallet bool, externalRef, gatewayResponse *string) (*Transaction, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if fromWallet {
		description := fmt.Sprintf("Payment for booking %s", bookingID)
		if err := r.DebitTx(ctx, tx, studentProfileID, amount, RefBooking, bookingID, description); err != nil {
			return nil, err
		}
	}

	settled, err := r.setStatus(ctx, tx, txID, TxSuccess, externalRef, gatewayResponse)
	if err != nil {
		return nil, err
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE bookings
		SET payment_status = $1, updated_at = NOW()
		WHERE id = $2
	`, booking.PaymentPaid, bookingID)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return settled, nil
}

// InsertRefundTransactionTx records the money-movement row for a processed
// refund inside the caller's transaction.
func (r *repository) InsertRefundTransactionTx(ctx context.Context, tx *sqlx.Tx, studentProfileID uuid.UUID, organizerID, bookingID uuid.UUID, amount decimal.Decimal) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO transactions
			(transaction_type, amount, status, payment_reference, student_profile_id,
			 organizer_id, booking_id, payment_method)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, TypeRefund, amount, TxSuccess, uuid.New(), studentProfileID, organizerID, bookingID, "wallet")
	return err
}

func (r *repository) CreateTransaction(ctx context.Context, t *Transaction) (*Transaction, error) {
	query := `
		INSERT INTO transactions
			(transaction_type, amount, status, payment_reference, student_profile_id,
			 organizer_id, booking_id, payment_method)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + transactionColumns

	var created Transaction
	err := r.db.QueryRowxContext(ctx, query,
		t.TransactionType, t.Amount, TxPending, uuid.New(), t.StudentProfileID,
		t.OrganizerID, t.BookingID, t.PaymentMethod,
	).StructScan(&created)
	if err != nil {
		return nil, err
	}

	return &created, nil
}

// SetTransactionStatus finalizes a pending transaction. The guard on the
// pending status keeps terminal states immutable under concurrent writers.
func (r *repository) SetTransactionStatus(ctx context.Context, id uuid.UUID, status string, externalRef, gatewayResponse *string) (*Transaction, error) {
	return r.setStatus(ctx, r.db, id, status, externalRef, gatewayResponse)
}

func (r *repository) setStatus(ctx context.Context, q sqlx.QueryerContext, id uuid.UUID, status string, externalRef, gatewayResponse *string) (*Transaction, error) {
	query := `
		UPDATE transactions
		SET status = $1,
		    external_reference = COALESCE($2, external_reference),
		    gateway_response = COALESCE($3, gateway_response),
		    updated_at = NOW()
		WHERE id = $4 AND status = $5
		RETURNING ` + transactionColumns

	var t Transaction
	err := q.QueryRowxContext(ctx, query, status, externalRef, gatewayResponse, id, TxPending).StructScan(&t)
	if err == nil {
		return &t, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	current, lookupErr := r.GetTransactionByID(ctx, id)
	if lookupErr != nil {
		return nil, lookupErr
	}
	return nil, &booking.InvalidTransitionError{Entity: "transaction", From: current.Status, To: status}
}

func (r *repository) GetTransactionByID(ctx context.Context, id uuid.UUID) (*Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE id = $1`

	var t Transaction
	err := r.db.GetContext(ctx, &t, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTransactionNotFound
		}
		return nil, err
	}

	return &t, nil
}

func (r *repository) ListTransactionsByStudent(ctx context.Context, studentProfileID uuid.UUID) ([]Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE student_profile_id = $1
		ORDER BY created_at DESC
	`

	var transactions []Transaction
	err := r.db.SelectContext(ctx, &transactions, query, studentProfileID)
	if err != nil {
		return nil, err
	}

	return transactions, nil
}

func (r *repository) ListAllTransactions(ctx context.Context, limit, offset int) ([]Transaction, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`

	var transactions []Transaction
	err := r.db.SelectContext(ctx, &transactions, query, limit, offset)
	if err != nil {
		return nil, err
	}

	return transactions, nil
}

func (r *repository) ListWalletTransactions(ctx context.Context, studentProfileID uuid.UUID, limit, offset int) ([]WalletTransaction, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT ` + walletTxColumns + `
		FROM wallet_transactions
		WHERE student_profile_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	var entries []WalletTransaction
	err := r.db.SelectContext(ctx, &entries, query, studentProfileID, limit, offset)
	if err != nil {
		return nil, err
	}

	return entries, nil
}

func (r *repository) GetWalletBalance(ctx context.Context, studentProfileID uuid.UUID) (decimal.Decimal, error) {
	var balance decimal.Decimal
	err := r.db.GetContext(ctx, &balance,
		`SELECT wallet_balance FROM student_profiles WHERE id = $1`, studentProfileID)
	if err != nil {
		return decimal.Zero, err
	}
	return balance, nil
}

func (r *repository) CreatePaymentMethod(ctx context.Context, pm *PaymentMethod) (*PaymentMethod, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if pm.IsDefault {
		_, err = tx.ExecContext(ctx,
			`UPDATE payment_methods SET is_default = FALSE WHERE user_id = $1`, pm.UserID)
		if err != nil {
			return nil, err
		}
	}

	query := `
		INSERT INTO payment_methods (user_id, method_type, provider, account_number, account_name, is_default)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, user_id, method_type, provider, account_number, account_name, is_default, created_at
	`

	var created PaymentMethod
	err = tx.QueryRowxContext(ctx, query,
		pm.UserID, pm.MethodType, pm.Provider, pm.AccountNumber, pm.AccountName, pm.IsDefault,
	).StructScan(&created)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return &created, nil
}

func (r *repository) ListPaymentMethods(ctx context.Context, userID uuid.UUID) ([]PaymentMethod, error) {
	query := `
		SELECT id, user_id, method_type, provider, account_number, account_name, is_default, created_at
		FROM payment_methods
		WHERE user_id = $1
		ORDER BY is_default DESC, created_at DESC
	`

	var methods []PaymentMethod
	err := r.db.SelectContext(ctx, &methods, query, userID)
	if err != nil {
		return nil, err
	}

	return methods, nil
}

func (r *repository) DeletePaymentMethod(ctx context.Context, userID, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM payment_methods WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrPaymentMethodNotFound
	}

	return nil
}
