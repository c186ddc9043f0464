package walrus

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"profile-nft-backend/internal/sui"
)

// EncodedBlob is the opaque handle produced by encoding. It carries
// everything register, upload and certify need.
type EncodedBlob struct {
	BlobID      string
	Identifier  string
	ContentType string
	Contents    []byte
	Size        int

	// patches recorded from the relay's store acknowledgement.
	patches []PatchInfo
}

// PatchInfo is one stored file: a quilt patch id plus the underlying blob id.
type PatchInfo struct {
	ID     string `json:"id"`
	BlobID string `json:"blobId"`
}

// ClientConfig carries the storage collaborator endpoints and the on-chain
// walrus system references used to build register/certify transactions.
type ClientConfig struct {
	RelayURL      string
	AggregatorURL string
	PackageID     string
	SystemID      string
	TipMaxMist    uint64
}

type Client struct {
	cfg        ClientConfig
	httpClient *http.Client
}

func NewClient(cfg ClientConfig) *Client {
	return &Client{
		cfg: cfg,
		httpClient: &http.Client{
			// Relay uploads forward bytes to storage nodes and can be slow.
			Timeout: 10 * time.Minute,
		},
	}
}

// Encode prepares contents for upload. Encoding is local: the blob id is the
// content address and no network is touched, so failed encodes are cheap to
// retry.
func (c *Client) Encode(contents []byte, identifier, contentType string) (*EncodedBlob, error) {
	if len(contents) == 0 {
		return nil, fmt.Errorf("cannot encode empty contents")
	}
	if identifier == "" {
		identifier = "profile-nft.png"
	}
	if contentType == "" {
		contentType = "image/png"
	}

	hash := sha256.Sum256(contents)
	blobID := base64.RawURLEncoding.EncodeToString(hash[:])

	return &EncodedBlob{
		BlobID:      blobID,
		Identifier:  identifier,
		ContentType: contentType,
		Contents:    contents,
		Size:        len(contents),
	}, nil
}

// RegisterTransaction builds the on-chain registration call for the blob.
// Execution and gas are the signer's responsibility.
func (c *Client) RegisterTransaction(blob *EncodedBlob, epochs int, owner string) *sui.TransactionIntent {
	return &sui.TransactionIntent{
		Commands: []sui.Command{
			{
				Kind: sui.CmdMoveCall,
				MoveCall: &sui.MoveCall{
					Target: fmt.Sprintf("%s::system::register_blob", c.cfg.PackageID),
					Arguments: []sui.Argument{
						{Kind: sui.ArgObject, Value: c.cfg.SystemID},
						{Kind: sui.ArgPure, Value: blob.BlobID},
						{Kind: sui.ArgPure, Value: fmt.Sprintf("%d", blob.Size)},
						{Kind: sui.ArgPure, Value: fmt.Sprintf("%d", epochs)},
						{Kind: sui.ArgPure, Value: owner},
					},
				},
			},
		},
	}
}

// CertifyTransaction builds the on-chain call that finalizes availability.
func (c *Client) CertifyTransaction(blob *EncodedBlob) *sui.TransactionIntent {
	return &sui.TransactionIntent{
		Commands: []sui.Command{
			{
				Kind: sui.CmdMoveCall,
				MoveCall: &sui.MoveCall{
					Target: fmt.Sprintf("%s::system::certify_blob", c.cfg.PackageID),
					Arguments: []sui.Argument{
						{Kind: sui.ArgObject, Value: c.cfg.SystemID},
						{Kind: sui.ArgPure, Value: blob.BlobID},
					},
				},
			},
		},
	}
}

// relayStoreResponse covers both the quilt store shape and the legacy
// single-shot publisher shapes.
type relayStoreResponse struct {
	StoredQuiltBlobs []struct {
		Identifier   string `json:"identifier"`
		QuiltPatchID string `json:"quiltPatchId"`
	} `json:"storedQuiltBlobs,omitempty"`
	NewlyCreated *struct {
		BlobObject struct {
			BlobID string `json:"blobId"`
		} `json:"blobObject"`
	} `json:"newlyCreated,omitempty"`
	AlreadyCertified *struct {
		BlobID string `json:"blobId"`
	} `json:"alreadyCertified,omitempty"`
}

// Upload sends the encoded bytes to the upload relay, referencing the
// registration digest so the relay can verify the reservation. The digest is
// reused as-is on retry; upload never re-registers.
func (c *Client) Upload(ctx context.Context, blob *EncodedBlob, registerDigest string) error {
	if registerDigest == "" {
		return fmt.Errorf("register digest is required")
	}

	endpoint := fmt.Sprintf("%s/v1/blob-upload-relay/blobs/%s?tx_digest=%s",
		strings.TrimSuffix(c.cfg.RelayURL, "/"), blob.BlobID, url.QueryEscape(registerDigest))
	req, err := http.NewRequestWithContext(ctx, "PUT", endpoint, bytes.NewReader(blob.Contents))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/octet-stream")
	req.Header.Set("X-Walrus-Tip-Max", fmt.Sprintf("%d", c.cfg.TipMaxMist))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("relay upload failed: status %d, body: %s", resp.StatusCode, string(body))
	}

	var result relayStoreResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return fmt.Errorf("failed to decode response: %w, body: %s", err, string(body))
	}

	blob.patches = blob.patches[:0]
	for _, stored := range result.StoredQuiltBlobs {
		blob.patches = append(blob.patches, PatchInfo{ID: stored.QuiltPatchID, BlobID: blob.BlobID})
	}
	if len(blob.patches) == 0 {
		if result.NewlyCreated != nil && result.NewlyCreated.BlobObject.BlobID != "" {
			blob.patches = append(blob.patches, PatchInfo{BlobID: result.NewlyCreated.BlobObject.BlobID})
		} else if result.AlreadyCertified != nil && result.AlreadyCertified.BlobID != "" {
			blob.patches = append(blob.patches, PatchInfo{BlobID: result.AlreadyCertified.BlobID})
		}
	}

	return nil
}

// ListPatches reports the stored files for an uploaded blob, from the
// relay's store acknowledgement. A blob stored through the legacy
// single-shot path yields one entry with no patch id.
func (c *Client) ListPatches(ctx context.Context, blob *EncodedBlob) ([]PatchInfo, error) {
	if len(blob.patches) > 0 {
		return blob.patches, nil
	}
	if blob.BlobID == "" {
		return nil, fmt.Errorf("blob has not been uploaded")
	}
	return []PatchInfo{{BlobID: blob.BlobID}}, nil
}

// ResolveBlobID derives the raw blob id behind a quilt patch from the
// aggregator. Used as the secondary lookup for legacy records whose stored
// URL lacks the blob id component.
func (c *Client) ResolveBlobID(ctx context.Context, patchID string) (string, error) {
	endpoint := fmt.Sprintf("%s/v1/blobs/by-quilt-patch-id/%s",
		strings.TrimSuffix(c.cfg.AggregatorURL, "/"), patchID)
	req, err := http.NewRequestWithContext(ctx, "HEAD", endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("failed to resolve patch: status %d", resp.StatusCode)
	}

	blobID := resp.Header.Get("X-Walrus-Blob-Id")
	if blobID == "" {
		return "", fmt.Errorf("aggregator did not report a blob id for patch %s", patchID)
	}

	return blobID, nil
}

type priceQuoteResponse struct {
	StorageCost string `json:"storageCost"`
	WriteCost   string `json:"writeCost"`
	TotalCost   string `json:"totalCost"`
}

// PriceQuote asks the relay's pricing endpoint what storing size bytes for
// the given number of epochs costs, in FROST.
func (c *Client) PriceQuote(ctx context.Context, size int64, epochs int) (*CostBreakdown, error) {
	endpoint := fmt.Sprintf("%s/v1/cost?size=%d&epochs=%d",
		strings.TrimSuffix(c.cfg.RelayURL, "/"), size, epochs)
	req, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("failed to get price quote: status %d, body: %s", resp.StatusCode, string(body))
	}

	var result priceQuoteResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	storageCost, err := decimal.NewFromString(result.StorageCost)
	if err != nil {
		return nil, fmt.Errorf("invalid storage cost %q: %w", result.StorageCost, err)
	}
	writeCost, err := decimal.NewFromString(result.WriteCost)
	if err != nil {
		return nil, fmt.Errorf("invalid write cost %q: %w", result.WriteCost, err)
	}
	totalCost, err := decimal.NewFromString(result.TotalCost)
	if err != nil {
		return nil, fmt.Errorf("invalid total cost %q: %w", result.TotalCost, err)
	}

	return &CostBreakdown{
		StorageCost: storageCost,
		WriteCost:   writeCost,
		TotalCost:   totalCost,
		Known:       true,
	}, nil
}
