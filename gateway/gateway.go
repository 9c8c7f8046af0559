package gateway

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// InitializeResult is what the provider returns for a new transaction.
type InitializeResult struct {
	AuthorizationURL string
	AccessCode       string
	Reference        string
}

// ChargeResult reports the outcome of charging a saved authorization.
type ChargeResult struct {
	Succeeded        bool
	GatewayReference string
	FailureReason    string
}

// Client is the payment provider surface the rest of the app depends on.
// Amounts cross this boundary in major currency units; the implementation is
// the single place converting to the gateway's minor units.
type Client interface {
	Initialize(ctx context.Context, email string, amount decimal.Decimal, reference string, metadata map[string]string) (*InitializeResult, error)
	ChargeAuthorization(ctx context.Context, authCode, email string, amount decimal.Decimal, reference string) (*ChargeResult, error)
	VerifySignature(rawBody []byte, signatureHeader string) bool
}

// GatewayError distinguishes a decline from a transport problem. Transient
// errors (network failure, 5xx) may be retried; declines are terminal for
// the attempt.
type GatewayError struct {
	Code      string
	Message   string
	Transient bool
}

func (e *GatewayError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("gateway: %s (%s)", e.Message, e.Code)
	}
	return "gateway: " + e.Message
}

// IsTransient reports whether err is a retryable gateway error.
func IsTransient(err error) bool {
	var ge *GatewayError
	return errors.As(err, &ge) && ge.Transient
}

// ToMinorUnits converts a major-unit amount to the gateway's integer minor
// units (e.g. 100.00 -> 10000).
func ToMinorUnits(amount decimal.Decimal) int64 {
	return amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}

// ToMajorUnits converts a gateway minor-unit amount back (10000 -> 100.00).
func ToMajorUnits(minor int64) decimal.Decimal {
	return decimal.New(minor, -2)
}
