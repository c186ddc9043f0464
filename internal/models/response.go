package models

import (
	"profile-nft-backend/internal/nft"
	"profile-nft-backend/internal/sui"
	"profile-nft-backend/internal/walrus"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

type HealthResponse struct {
	Status string `json:"status"`
}

// TransactionResponse carries an unsigned transaction intent for the
// caller's wallet to sign and execute.
type TransactionResponse struct {
	Transaction *sui.TransactionIntent `json:"transaction"`
}

type PaymentInfoResponse struct {
	AmountMist uint64 `json:"amount_mist"`
	AmountSui  string `json:"amount_sui"`
}

type GenerateImageResponse struct {
	// Image is a base64 data URL ready for display.
	Image     string `json:"image"`
	MediaType string `json:"media_type"`
	SizeBytes int    `json:"size_bytes"`
}

type UploadSessionResponse struct {
	SessionID      string              `json:"session_id"`
	Stage          string              `json:"stage"`
	ErrorMessage   string              `json:"error_message,omitempty"`
	RegisterDigest string              `json:"register_digest,omitempty"`
	CanRegister    bool                `json:"can_register"`
	CanRelay       bool                `json:"can_relay"`
	CanCertify     bool                `json:"can_certify"`
	Certified      bool                `json:"certified"`
	Locator        *walrus.BlobLocator `json:"locator,omitempty"`
	BlobURL        string              `json:"blob_url,omitempty"`
}

// CostResponse formats a cost estimate for display. Unknown costs render as
// the "---" placeholder rather than an error.
type CostResponse struct {
	StorageCost string `json:"storage_cost"`
	WriteCost   string `json:"write_cost"`
	TotalCost   string `json:"total_cost"`
	Known       bool   `json:"known"`
}

type NFTListResponse struct {
	NFTs []nft.Record `json:"nfts"`
}

type BalanceResponse struct {
	Address      string `json:"address"`
	TotalBalance string `json:"total_balance"`
}

type RunPipelineResponse struct {
	SessionID       string                 `json:"session_id"`
	BlobURL         string                 `json:"blob_url"`
	Locator         *walrus.BlobLocator    `json:"locator"`
	MintTransaction *sui.TransactionIntent `json:"mint_transaction"`
}
