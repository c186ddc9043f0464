package services

import (
	"context"
	"fmt"
	"log"

	"profile-nft-backend/internal/aigen"
	"profile-nft-backend/internal/payment"
	"profile-nft-backend/internal/sui"
	"profile-nft-backend/internal/walrus"
)

type PaymentVerifier interface {
	Verify(ctx context.Context, digest string) (*payment.Receipt, error)
}

type ImageGenerator interface {
	GenerateImage(ctx context.Context, prompt string, receipt *payment.Receipt) (*aigen.Image, error)
}

// Pipeline drives the whole generate-to-mint flow for an automated caller:
// verify payment, generate the image, walk the upload session through its
// stages with the service signer, and build the mint transaction for the
// caller's wallet.
type Pipeline struct {
	verifier      PaymentVerifier
	generator     ImageGenerator
	registry      *walrus.Registry
	storage       walrus.Storage
	signer        sui.Executor
	packageID     string
	aggregatorURL string
	defaultEpochs int
}

func NewPipeline(
	verifier PaymentVerifier,
	generator ImageGenerator,
	registry *walrus.Registry,
	storage walrus.Storage,
	signer sui.Executor,
	packageID, aggregatorURL string,
	defaultEpochs int,
) *Pipeline {
	return &Pipeline{
		verifier:      verifier,
		generator:     generator,
		registry:      registry,
		storage:       storage,
		signer:        signer,
		packageID:     packageID,
		aggregatorURL: aggregatorURL,
		defaultEpochs: defaultEpochs,
	}
}

// PipelineResult carries the certified blob location and the unsigned mint
// transaction. On a stage failure the partially-advanced session is still
// present so the caller can resume it through the upload endpoints instead
// of paying for completed stages again.
type PipelineResult struct {
	Session         *walrus.UploadSession
	BlobURL         string
	Locator         *walrus.BlobLocator
	MintTransaction *sui.TransactionIntent
}

func (p *Pipeline) Run(ctx context.Context, prompt, paymentDigest, owner, name, description string, epochs int) (*PipelineResult, error) {
	receipt, err := p.verifier.Verify(ctx, paymentDigest)
	if err != nil {
		return nil, err
	}

	image, err := p.generator.GenerateImage(ctx, prompt, receipt)
	if err != nil {
		return nil, err
	}
	log.Printf("pipeline: generated %d byte %s image for payment %s", len(image.Bytes), image.MediaType, paymentDigest)

	if epochs <= 0 {
		epochs = p.defaultEpochs
	}

	session := p.registry.Create(p.storage)
	result := &PipelineResult{Session: session}

	if err := session.Encode(image.Bytes, "", image.MediaType); err != nil {
		return result, err
	}
	if err := session.Register(ctx, p.signer, owner, epochs); err != nil {
		return result, err
	}
	if err := session.RelayUpload(ctx); err != nil {
		return result, err
	}

	locator, err := session.Certify(ctx, p.signer)
	if err != nil {
		return result, err
	}
	log.Printf("pipeline: session %s certified blob %s", session.ID, locator.BlobID)

	blobURL := walrus.BuildBlobURL(p.aggregatorURL, *locator)
	mintTx, err := sui.BuildMintTransaction(p.packageID, name, description, blobURL)
	if err != nil {
		return result, fmt.Errorf("failed to build mint transaction: %w", err)
	}

	result.Locator = locator
	result.BlobURL = blobURL
	result.MintTransaction = mintTx

	// A completed run has nothing left to resume; the session is discarded.
	// Failed runs keep theirs registered for stage-by-stage resumption.
	p.registry.Delete(session.ID)

	return result, nil
}
