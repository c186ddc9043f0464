package models

type GenerateImageRequest struct {
	// Prompt describes the profile picture to generate.
	Prompt string `json:"prompt" example:"a neon cat"`
	// PaymentTxDigest is the digest of the generation fee transaction the
	// caller's wallet already submitted. Verified on-chain before generation.
	PaymentTxDigest string `json:"payment_tx_digest"`
}

type CreateUploadRequest struct {
	// Image is the generated image as a base64 data URL or raw base64.
	Image string `json:"image"`
	// Identifier names the stored file. Defaults to profile-nft.png.
	Identifier string `json:"identifier,omitempty"`
}

type RegisterUploadRequest struct {
	// Epochs is the storage duration. Defaults to the configured value.
	Epochs int `json:"epochs,omitempty"`
}

type MintTransactionRequest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	// BlobURL is the certified blob's aggregator URL.
	BlobURL string `json:"blob_url"`
}

type TransferTransactionRequest struct {
	NftID     string `json:"nft_id"`
	Recipient string `json:"recipient"`
}

type RunPipelineRequest struct {
	Prompt          string `json:"prompt"`
	PaymentTxDigest string `json:"payment_tx_digest"`
	Name            string `json:"name"`
	Description     string `json:"description,omitempty"`
	Epochs          int    `json:"epochs,omitempty"`
}
