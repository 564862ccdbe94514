package payment

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Transaction statuses. Pending is the only non-terminal state.
const (
	TxPending   = "pending"
	TxSuccess   = "success"
	TxFailed    = "failed"
	TxCancelled = "cancelled"
)

// Transaction types.
const (
	TypePayment     = "payment"
	TypeRefund      = "refund"
	TypeWalletTopUp = "wallet_topup"
	TypePayout      = "payout"
)

// Wallet ledger entry types and reference types.
const (
	LedgerCredit = "credit"
	LedgerDebit  = "debit"

	RefBooking = "booking"
	RefRefund  = "refund"
	RefTopUp   = "topup"
)

var transactionTransitions = map[string][]string{
	TxPending:   {TxSuccess, TxFailed, TxCancelled},
	TxSuccess:   {},
	TxFailed:    {},
	TxCancelled: {},
}

// CanTransitionTransaction reports whether a transaction may move between
// the two statuses.
func CanTransitionTransaction(from, to string) bool {
	for _, allowed := range transactionTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

type Transaction struct {
	ID                uuid.UUID       `db:"id" json:"id"`
	TransactionType   string          `db:"transaction_type" json:"transaction_type"`
	Amount            decimal.Decimal `db:"amount" json:"amount"`
	Status            string          `db:"status" json:"status"`
	PaymentReference  uuid.UUID       `db:"payment_reference" json:"payment_reference"`
	StudentProfileID  uuid.UUID       `db:"student_profile_id" json:"student_profile_id"`
	OrganizerID       *uuid.UUID      `db:"organizer_id" json:"organizer_id,omitempty"`
	BookingID         *uuid.UUID      `db:"booking_id" json:"booking_id,omitempty"`
	PaymentMethod     string          `db:"payment_method" json:"payment_method"`
	ExternalReference *string         `db:"external_reference" json:"external_reference,omitempty"`
	GatewayResponse   *string         `db:"gateway_response" json:"gateway_response,omitempty"`
	CreatedAt         time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time       `db:"updated_at" json:"updated_at"`
}

// WalletTransaction is one row of the append-only wallet ledger. The
// before/after snapshots make every balance change auditable without
// replaying the whole ledger.
type WalletTransaction struct {
	ID               uuid.UUID       `db:"id" json:"id"`
	StudentProfileID uuid.UUID       `db:"student_profile_id" json:"student_profile_id"`
	TransactionType  string          `db:"transaction_type" json:"transaction_type"`
	Amount           decimal.Decimal `db:"amount" json:"amount"`
	BalanceBefore    decimal.Decimal `db:"balance_before" json:"balance_before"`
	BalanceAfter     decimal.Decimal `db:"balance_after" json:"balance_after"`
	ReferenceType    string          `db:"reference_type" json:"reference_type"`
	ReferenceID      *uuid.UUID      `db:"reference_id" json:"reference_id,omitempty"`
	Description      string          `db:"description" json:"description"`
	CreatedAt        time.Time       `db:"created_at" json:"created_at"`
}

// PaymentMethod is a saved external payment instrument.
type PaymentMethod struct {
	ID            uuid.UUID `db:"id" json:"id"`
	UserID        uuid.UUID `db:"user_id" json:"user_id"`
	MethodType    string    `db:"method_type" json:"method_type"`
	Provider      string    `db:"provider" json:"provider"`
	AccountNumber string    `db:"account_number" json:"account_number"`
	AccountName   string    `db:"account_name" json:"account_name"`
	IsDefault     bool      `db:"is_default" json:"is_default"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}

type WalletSummary struct {
	Balance  decimal.Decimal `json:"balance"`
	Currency string          `json:"currency"`
}

type TopUpRequest struct {
	Amount        string `json:"amount" binding:"required"`
	PaymentMethod string `json:"payment_method" binding:"required,oneof=mobile_money bank_transfer card"`
}

type RecordPaymentRequest struct {
	BookingID uuid.UUID `json:"booking_id" binding:"required"`
}

type CreatePaymentMethodRequest struct {
	MethodType    string `json:"method_type" binding:"required,oneof=mobile_money bank_transfer card"`
	Provider      string `json:"provider" binding:"required"`
	AccountNumber string `json:"account_number" binding:"required"`
	AccountName   string `json:"account_name" binding:"required"`
	IsDefault     bool   `json:"is_default"`
}
