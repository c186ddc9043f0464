package payment

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"profile-nft-backend/internal/sui"
)

// ErrMissingDigest is returned when no transaction digest was supplied.
var ErrMissingDigest = errors.New("payment transaction digest is required")

// ErrVerificationFailed is returned when the transaction exists but does not
// prove a payment: non-success status or no PaymentReceived event.
var ErrVerificationFailed = errors.New("payment verification failed")

// paymentEventFragment matches the contract's payment confirmation event by
// type substring, as the contract collaborator does not version its schema.
const paymentEventFragment = "PaymentReceived"

// Receipt is the proof that a payment transaction was confirmed on-chain.
// It is consumed once by the image producer gateway and never persisted.
type Receipt struct {
	Digest   string
	Verified bool
}

// Ledger is the read-only slice of the Sui client the verifier needs.
type Ledger interface {
	GetTransactionBlock(ctx context.Context, digest string) (*sui.TransactionBlock, error)
}

type Verifier struct {
	ledger Ledger
}

func NewVerifier(ledger Ledger) *Verifier {
	return &Verifier{ledger: ledger}
}

// Verify confirms the payment transaction succeeded and emitted the payment
// confirmation event. The fee transfer itself already happened when the
// wallet submitted the transaction; this is a read-only check.
func (v *Verifier) Verify(ctx context.Context, digest string) (*Receipt, error) {
	if digest == "" {
		return nil, ErrMissingDigest
	}

	tx, err := v.ledger.GetTransactionBlock(ctx, digest)
	if err != nil {
		return nil, fmt.Errorf("failed to query payment transaction: %w", err)
	}

	if tx.Effects == nil || tx.Effects.Status.Status != "success" {
		status := "unknown"
		if tx.Effects != nil {
			status = tx.Effects.Status.Status
		}
		return nil, fmt.Errorf("%w: transaction status %q", ErrVerificationFailed, status)
	}

	for _, event := range tx.Events {
		if strings.Contains(event.Type, paymentEventFragment) {
			return &Receipt{Digest: digest, Verified: true}, nil
		}
	}

	return nil, fmt.Errorf("%w: no payment event found in transaction", ErrVerificationFailed)
}
