package payment

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Gateway charges an external payment instrument. Implementations wrap a
// real provider; the returned reference is the provider's transaction id.
type Gateway interface {
	Charge(ctx context.Context, amount decimal.Decimal, method string, reference uuid.UUID) (externalRef string, response string, err error)
}

// SandboxGateway approves every charge. It stands in for a provider
// integration in development and tests.
type SandboxGateway struct{}

func NewSandboxGateway() *SandboxGateway {
	return &SandboxGateway{}
}

func (g *SandboxGateway) Charge(ctx context.Context, amount decimal.Decimal, method string, reference uuid.UUID) (string, string, error) {
	externalRef := fmt.Sprintf("sandbox-%s", reference)
	response := fmt.Sprintf(`{"status":"approved","method":%q,"amount":%q}`, method, amount.String())
	return externalRef, response, nil
}
