package sui

import (
	"context"
	"crypto/ed25519"
	"encoding/base64"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/blake2b"
)

const defaultGasBudget = 100_000_000 // 0.1 SUI

// ed25519 scheme flag, prepended to serialized public keys and signatures.
const ed25519Flag byte = 0x00

// Executor signs and executes a transaction intent, returning the digest.
// The upload session takes one of these so tests can substitute a fake.
type Executor interface {
	SignAndExecute(ctx context.Context, intent *TransactionIntent) (string, error)
}

// Signer holds the service's ed25519 key and executes single-move-call
// intents through the fullnode. Wallet-owned flows (payment, mint) never go
// through here; their intents are returned to the client unsigned.
type Signer struct {
	client     *Client
	privateKey ed25519.PrivateKey
	address    string
	gasBudget  uint64
}

// NewSigner derives a signer from a hex-encoded 32-byte ed25519 seed.
func NewSigner(client *Client, seedHex string) (*Signer, error) {
	seed, err := hex.DecodeString(seedHex)
	if err != nil {
		return nil, fmt.Errorf("invalid signer seed: %w", err)
	}
	if len(seed) != ed25519.SeedSize {
		return nil, fmt.Errorf("signer seed must be %d bytes, got %d", ed25519.SeedSize, len(seed))
	}

	privateKey := ed25519.NewKeyFromSeed(seed)
	publicKey := privateKey.Public().(ed25519.PublicKey)

	// Sui address: blake2b-256 over flag byte || public key.
	hash := blake2b.Sum256(append([]byte{ed25519Flag}, publicKey...))

	return &Signer{
		client:     client,
		privateKey: privateKey,
		address:    "0x" + hex.EncodeToString(hash[:]),
		gasBudget:  defaultGasBudget,
	}, nil
}

func (s *Signer) Address() string {
	return s.address
}

// SignAndExecute builds transaction bytes for the intent's move call, signs
// them with the service key, and submits them for execution.
func (s *Signer) SignAndExecute(ctx context.Context, intent *TransactionIntent) (string, error) {
	if s == nil {
		return "", fmt.Errorf("service signer not configured")
	}

	call, ok := intent.SingleMoveCall()
	if !ok {
		return "", fmt.Errorf("intent requires wallet signing: not a single move call")
	}

	txBytes, err := s.client.MoveCallTxBytes(ctx, s.address, call, s.gasBudget)
	if err != nil {
		return "", err
	}

	signature, err := s.sign(txBytes)
	if err != nil {
		return "", err
	}

	result, err := s.client.ExecuteTransactionBlock(ctx, txBytes, signature)
	if err != nil {
		return "", err
	}

	return result.Digest, nil
}

// sign produces a Sui serialized signature (flag || sig || pubkey, base64)
// over the blake2b-256 digest of the transaction-data intent message.
func (s *Signer) sign(txBytesB64 string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(txBytesB64)
	if err != nil {
		return "", fmt.Errorf("invalid txBytes encoding: %w", err)
	}

	// Intent message: scope=TransactionData(0), version=0, app=Sui(0).
	message := append([]byte{0, 0, 0}, raw...)
	digest := blake2b.Sum256(message)

	sig := ed25519.Sign(s.privateKey, digest[:])
	publicKey := s.privateKey.Public().(ed25519.PublicKey)

	serialized := make([]byte, 0, 1+len(sig)+len(publicKey))
	serialized = append(serialized, ed25519Flag)
	serialized = append(serialized, sig...)
	serialized = append(serialized, publicKey...)

	return base64.StdEncoding.EncodeToString(serialized), nil
}
