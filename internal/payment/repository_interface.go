package payment

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

// Repository covers the wallet ledger, the transaction log and saved
// payment methods. The Tx variants compose into transactions owned by
// other packages.
type Repository interface {
	CreditTx(ctx context.Context, tx *sqlx.Tx, studentProfileID uuid.UUID, amount decimal.Decimal, referenceType string, referenceID uuid.UUID, description string) error
	DebitTx(ctx context.Context, tx *sqlx.Tx, studentProfileID uuid.UUID, amount decimal.Decimal, referenceType string, referenceID uuid.UUID, description string) error
	InsertRefundTransactionTx(ctx context.Context, tx *sqlx.Tx, studentProfileID uuid.UUID, organizerID, bookingID uuid.UUID, amount decimal.Decimal) error

	// Settle methods commit the money movement and the transaction's final
	// status in one database transaction.
	SettleTopUp(ctx context.Context, txID, studentProfileID uuid.UUID, amount decimal.Decimal, externalRef, gatewayResponse *string, description string) (*Transaction, error)
	SettleBookingPayment(ctx context.Context, txID, bookingID, studentProfileID uuid.UUID, amount decimal.Decimal, fromWallet bool, externalRef, gatewayResponse *string) (*Transaction, error)

	CreateTransaction(ctx context.Context, t *Transaction) (*Transaction, error)
	SetTransactionStatus(ctx context.Context, id uuid.UUID, status string, externalRef, gatewayResponse *string) (*Transaction, error)
	GetTransactionByID(ctx context.Context, id uuid.UUID) (*Transaction, error)
	ListTransactionsByStudent(ctx context.Context, studentProfileID uuid.UUID) ([]Transaction, error)
	ListAllTransactions(ctx context.Context, limit, offset int) ([]Transaction, error)

	ListWalletTransactions(ctx context.Context, studentProfileID uuid.UUID, limit, offset int) ([]WalletTransaction, error)
	GetWalletBalance(ctx context.Context, studentProfileID uuid.UUID) (decimal.Decimal, error)

	CreatePaymentMethod(ctx context.Context, pm *PaymentMethod) (*PaymentMethod, error)
	ListPaymentMethods(ctx context.Context, userID uuid.UUID) ([]PaymentMethod, error)
	DeletePaymentMethod(ctx context.Context, userID, id uuid.UUID) error
}
