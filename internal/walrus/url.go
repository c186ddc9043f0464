package walrus

import (
	"fmt"
	"net/url"
	"strings"
)

// BlobLocator addresses a stored file. PatchID references the file within a
// quilt; BlobID references the underlying raw blob. Older records carry only
// a raw blob id with no patch wrapper.
type BlobLocator struct {
	PatchID string `json:"patch_id"`
	BlobID  string `json:"blob_id"`
}

// BuildBlobURL derives the aggregator URL for a locator. A locator without a
// patch id produces the legacy raw-blob form.
func BuildBlobURL(aggregatorURL string, loc BlobLocator) string {
	base := strings.TrimSuffix(aggregatorURL, "/")
	if loc.PatchID == "" {
		return fmt.Sprintf("%s/v1/blobs/%s", base, loc.BlobID)
	}
	return fmt.Sprintf("%s/v1/blobs/by-quilt-patch-id/%s?blobId=%s", base, loc.PatchID, url.QueryEscape(loc.BlobID))
}

// ParseBlobURL extracts the locator from an aggregator URL. Legacy URLs
// carrying only a raw blob id parse to a locator with an empty patch id;
// parsing never fails.
func ParseBlobURL(rawURL string) BlobLocator {
	parts := strings.SplitN(rawURL, "/by-quilt-patch-id/", 2)
	if len(parts) == 2 {
		pathAndQuery := parts[1]
		patchID := pathAndQuery
		blobID := ""
		if idx := strings.Index(pathAndQuery, "?"); idx >= 0 {
			patchID = pathAndQuery[:idx]
			if values, err := url.ParseQuery(pathAndQuery[idx+1:]); err == nil {
				blobID = values.Get("blobId")
			}
		}
		return BlobLocator{PatchID: patchID, BlobID: blobID}
	}

	// Legacy form: .../v1/blobs/{blobId} or a bare blob id.
	trimmed := rawURL
	if idx := strings.Index(trimmed, "?"); idx >= 0 {
		trimmed = trimmed[:idx]
	}
	trimmed = strings.TrimSuffix(trimmed, "/")
	if idx := strings.LastIndex(trimmed, "/"); idx >= 0 {
		trimmed = trimmed[idx+1:]
	}
	return BlobLocator{BlobID: trimmed}
}
