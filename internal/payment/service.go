package payment

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Trevolee01/Bui-transport/internal/booking"
	"github.com/Trevolee01/Bui-transport/internal/logger"
	"github.com/Trevolee01/Bui-transport/internal/metrics"
	"github.com/Trevolee01/Bui-transport/internal/notification"
	"github.com/Trevolee01/Bui-transport/internal/transport"
	"github.com/Trevolee01/Bui-transport/internal/user"
)

type Service interface {
	TopUpWallet(ctx context.Context, student *user.StudentProfile, req TopUpRequest) (*Transaction, error)
	RecordPayment(ctx context.Context, student *user.StudentProfile, req RecordPaymentRequest) (*Transaction, error)
	GetWallet(ctx context.Context, student *user.StudentProfile, currency string) (*WalletSummary, error)
	ListWalletTransactions(ctx context.Context, student *user.StudentProfile, limit, offset int) ([]WalletTransaction, error)
	ListMyTransactions(ctx context.Context, student *user.StudentProfile) ([]Transaction, error)
	ListAllTransactions(ctx context.Context, limit, offset int) ([]Transaction, error)
	GetTransaction(ctx context.Context, student *user.StudentProfile, id uuid.UUID) (*Transaction, error)
	AddPaymentMethod(ctx context.Context, userID uuid.UUID, req CreatePaymentMethodRequest) (*PaymentMethod, error)
	ListPaymentMethods(ctx context.Context, userID uuid.UUID) ([]PaymentMethod, error)
	RemovePaymentMethod(ctx context.Context, userID, id uuid.UUID) error
}

type service struct {
	repo          Repository
	bookingRepo   booking.Repository
	transportRepo transport.Repository
	gateway       Gateway
	notifications *notification.Service
	minTopUp      decimal.Decimal
}

func NewService(repo Repository, bookingRepo booking.Repository, transportRepo transport.Repository, gateway Gateway, notifications *notification.Service, minTopUp decimal.Decimal) Service {
	return &service{
		repo:          repo,
		bookingRepo:   bookingRepo,
		transportRepo: transportRepo,
		gateway:       gateway,
		notifications: notifications,
		minTopUp:      minTopUp,
	}
}

// TopUpWallet charges an external payment method and credits the wallet.
// The transaction is created pending first so a gateway failure leaves an
// auditable failed row and an untouched wallet.
func (s *service) TopUpWallet(ctx context.Context, student *user.StudentProfile, req TopUpRequest) (*Transaction, error) {
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil || amount.LessThanOrEqual(decimal.Zero) {
		return nil, ErrInvalidAmount
	}
	if amount.LessThan(s.minTopUp) {
		return nil, &MinTopUpError{Minimum: s.minTopUp}
	}

	tx, err := s.repo.CreateTransaction(ctx, &Transaction{
		TransactionType:  TypeWalletTopUp,
		Amount:           amount,
		StudentProfileID: student.ID,
		PaymentMethod:    req.PaymentMethod,
	})
	if err != nil {
		return nil, err
	}

	externalRef, response, err := s.gateway.Charge(ctx, amount, req.PaymentMethod, tx.PaymentReference)
	if err != nil {
		return s.failTransaction(ctx, tx.ID, TypeWalletTopUp, nil, err)
	}

	description := fmt.Sprintf("Wallet top-up via %s", req.PaymentMethod)
	final, err := s.repo.SettleTopUp(ctx, tx.ID, student.ID, amount, &externalRef, &response, description)
	if err != nil {
		return s.failTransaction(ctx, tx.ID, TypeWalletTopUp, nil, err)
	}

	metrics.RecordWalletTopUp()
	metrics.RecordTransaction(TypeWalletTopUp, TxSuccess)
	logger.Infof("Wallet top-up %s: student %s credited %s", final.ID, student.ID, amount)

	s.notifications.Publish(ctx, notification.EventWalletTopUp, student.UserID.String(), map[string]interface{}{
		"transaction_id": final.ID.String(),
		"amount":         amount.String(),
	})

	return final, nil
}

// RecordPayment settles a booking: wallet payments debit the ledger,
// external methods go through the gateway. A failure marks both the
// transaction and the booking failed; seats are not touched either way.
func (s *service) RecordPayment(ctx context.Context, student *user.StudentProfile, req RecordPaymentRequest) (*Transaction, error) {
	b, err := s.bookingRepo.GetBookingByID(ctx, req.BookingID)
	if err != nil {
		return nil, err
	}
	if b.StudentProfileID != student.ID {
		return nil, booking.ErrNotBookingOwner
	}
	if b.PaymentStatus == booking.PaymentPaid {
		return nil, ErrAlreadyPaid
	}

	route, err := s.transportRepo.GetRouteByID(ctx, b.TransportOptionID)
	if err != nil {
		return nil, err
	}

	tx, err := s.repo.CreateTransaction(ctx, &Transaction{
		TransactionType:  TypePayment,
		Amount:           b.TotalAmount,
		StudentProfileID: student.ID,
		OrganizerID:      &route.OrganizerID,
		BookingID:        &b.ID,
		PaymentMethod:    b.PaymentMethod,
	})
	if err != nil {
		return nil, err
	}

	var externalRef, response *string
	fromWallet := b.PaymentMethod == "wallet"
	if !fromWallet {
		ref, resp, err := s.gateway.Charge(ctx, b.TotalAmount, b.PaymentMethod, tx.PaymentReference)
		if err != nil {
			return s.failPayment(ctx, tx.ID, b.ID, err)
		}
		externalRef, response = &ref, &resp
	}

	// The debit, the transaction's success flip and the booking's paid flag
	// commit together; an insufficient balance rolls all of it back.
	final, err := s.repo.SettleBookingPayment(ctx, tx.ID, b.ID, student.ID, b.TotalAmount, fromWallet, externalRef, response)
	if err != nil {
		return s.failPayment(ctx, tx.ID, b.ID, err)
	}

	metrics.RecordTransaction(TypePayment, TxSuccess)
	logger.Infof("Payment %s recorded: booking %s, %s via %s", final.ID, b.ID, b.TotalAmount, b.PaymentMethod)

	s.notifications.Publish(ctx, notification.EventPaymentRecorded, student.UserID.String(), map[string]interface{}{
		"transaction_id": final.ID.String(),
		"booking_id":     b.ID.String(),
		"amount":         b.TotalAmount.String(),
	})

	return final, nil
}

func (s *service) failTransaction(ctx context.Context, txID uuid.UUID, txType string, response *string, cause error) (*Transaction, error) {
	msg := cause.Error()
	if response == nil {
		response = &msg
	}
	if _, err := s.repo.SetTransactionStatus(ctx, txID, TxFailed, nil, response); err != nil {
		logger.Errorf("Failed to mark transaction %s failed: %v", txID, err)
	}
	metrics.RecordTransaction(txType, TxFailed)
	return nil, cause
}

func (s *service) failPayment(ctx context.Context, txID, bookingID uuid.UUID, cause error) (*Transaction, error) {
	if _, err := s.bookingRepo.SetPaymentStatus(ctx, bookingID, booking.PaymentFailed); err != nil {
		logger.Errorf("Failed to mark booking %s payment failed: %v", bookingID, err)
	}
	return s.failTransaction(ctx, txID, TypePayment, nil, cause)
}

func (s *service) GetWallet(ctx context.Context, student *user.StudentProfile, currency string) (*WalletSummary, error) {
	balance, err := s.repo.GetWalletBalance(ctx, student.ID)
	if err != nil {
		return nil, err
	}
	return &WalletSummary{Balance: balance, Currency: currency}, nil
}

func (s *service) ListWalletTransactions(ctx context.Context, student *user.StudentProfile, limit, offset int) ([]WalletTransaction, error) {
	return s.repo.ListWalletTransactions(ctx, student.ID, limit, offset)
}

func (s *service) ListMyTransactions(ctx context.Context, student *user.StudentProfile) ([]Transaction, error) {
	return s.repo.ListTransactionsByStudent(ctx, student.ID)
}

func (s *service) ListAllTransactions(ctx context.Context, limit, offset int) ([]Transaction, error) {
	return s.repo.ListAllTransactions(ctx, limit, offset)
}

func (s *service) GetTransaction(ctx context.Context, student *user.StudentProfile, id uuid.UUID) (*Transaction, error) {
	t, err := s.repo.GetTransactionByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if t.StudentProfileID != student.ID {
		return nil, ErrNotTransactionOwner
	}
	return t, nil
}

func (s *service) AddPaymentMethod(ctx context.Context, userID uuid.UUID, req CreatePaymentMethodRequest) (*PaymentMethod, error) {
	return s.repo.CreatePaymentMethod(ctx, &PaymentMethod{
		UserID:        userID,
		MethodType:    req.MethodType,
		Provider:      req.Provider,
		AccountNumber: req.AccountNumber,
		AccountName:   req.AccountName,
		IsDefault:     req.IsDefault,
	})
}

func (s *service) ListPaymentMethods(ctx context.Context, userID uuid.UUID) ([]PaymentMethod, error) {
	return s.repo.ListPaymentMethods(ctx, userID)
}

func (s *service) RemovePaymentMethod(ctx context.Context, userID, id uuid.UUID) error {
	return s.repo.DeletePaymentMethod(ctx, userID, id)
}
