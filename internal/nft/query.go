package nft

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"

	"profile-nft-backend/internal/sui"
	"profile-nft-backend/internal/walrus"
)

// ErrQuery marks transport or ledger failure while listing NFTs. An owner
// with no NFTs is an empty list, not an error.
var ErrQuery = errors.New("nft query failed")

// Record is the display projection of an on-chain ProfileNFT object. It is
// recreated on every query; nothing here is persisted.
type Record struct {
	ObjectID    string `json:"object_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	ImageURL    string `json:"image_url"`
	Creator     string `json:"creator"`
	CreatedAt   uint64 `json:"created_at"`
}

// Ledger is the read-only slice of the Sui client the query needs.
type Ledger interface {
	GetOwnedObjects(ctx context.Context, owner, structType string) ([]sui.ObjectData, error)
}

// PatchResolver derives a raw blob id from a quilt patch id. Used only for
// legacy records whose stored URL is missing the blob id component.
type PatchResolver interface {
	ResolveBlobID(ctx context.Context, patchID string) (string, error)
}

type Service struct {
	ledger        Ledger
	resolver      PatchResolver
	packageID     string
	aggregatorURL string
}

func NewService(ledger Ledger, resolver PatchResolver, packageID, aggregatorURL string) *Service {
	return &Service{
		ledger:        ledger,
		resolver:      resolver,
		packageID:     packageID,
		aggregatorURL: aggregatorURL,
	}
}

func (s *Service) structType() string {
	return fmt.Sprintf("%s::profile_nft::ProfileNFT", s.packageID)
}

// ListOwned returns the owner's ProfileNFTs, newest first, with no
// duplicate object ids.
func (s *Service) ListOwned(ctx context.Context, owner string) ([]Record, error) {
	objects, err := s.ledger.GetOwnedObjects(ctx, owner, s.structType())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrQuery, err)
	}

	records := make([]Record, 0, len(objects))
	seen := make(map[string]bool, len(objects))
	for _, obj := range objects {
		if obj.Content == nil || obj.Content.Fields == nil {
			continue
		}
		if seen[obj.ObjectID] {
			continue
		}
		seen[obj.ObjectID] = true

		fields := obj.Content.Fields
		record := Record{
			ObjectID:    obj.ObjectID,
			Name:        stringField(fields, "name"),
			Description: stringField(fields, "description"),
			ImageURL:    s.normalizeImageURL(ctx, stringField(fields, "image_url")),
			Creator:     stringField(fields, "creator"),
			CreatedAt:   uintField(fields, "created_at"),
		}
		records = append(records, record)
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].CreatedAt > records[j].CreatedAt
	})

	return records, nil
}

// normalizeImageURL repairs legacy URLs stored by the earlier on-chain
// schema, which carried a patch id but no blob id. The stored URL is kept
// untouched when the secondary lookup cannot help.
func (s *Service) normalizeImageURL(ctx context.Context, imageURL string) string {
	if imageURL == "" {
		return imageURL
	}

	locator := walrus.ParseBlobURL(imageURL)
	if locator.BlobID != "" || locator.PatchID == "" || s.resolver == nil {
		return imageURL
	}

	blobID, err := s.resolver.ResolveBlobID(ctx, locator.PatchID)
	if err != nil {
		return imageURL
	}

	locator.BlobID = blobID
	return walrus.BuildBlobURL(s.aggregatorURL, locator)
}

func stringField(fields map[string]interface{}, key string) string {
	if value, ok := fields[key].(string); ok {
		return value
	}
	return ""
}

func uintField(fields map[string]interface{}, key string) uint64 {
	switch value := fields[key].(type) {
	case string:
		parsed, err := strconv.ParseUint(value, 10, 64)
		if err == nil {
			return parsed
		}
	case float64:
		if value >= 0 {
			return uint64(value)
		}
	}
	return 0
}
