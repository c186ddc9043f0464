package walrus_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"profile-nft-backend/internal/walrus"
)

const aggregator = "https://aggregator.testnet.walrus.space"

func TestBuildBlobURL_QuiltPatch(t *testing.T) {
	url := walrus.BuildBlobURL(aggregator, walrus.BlobLocator{PatchID: "p1", BlobID: "b1"})
	assert.Equal(t, aggregator+"/v1/blobs/by-quilt-patch-id/p1?blobId=b1", url)
}

func TestBuildBlobURL_LegacyRawBlob(t *testing.T) {
	url := walrus.BuildBlobURL(aggregator, walrus.BlobLocator{BlobID: "raw-blob"})
	assert.Equal(t, aggregator+"/v1/blobs/raw-blob", url)
}

func TestParseBlobURL_RoundTrip(t *testing.T) {
	loc := walrus.BlobLocator{PatchID: "p1", BlobID: "b1"}
	parsed := walrus.ParseBlobURL(walrus.BuildBlobURL(aggregator, loc))
	assert.Equal(t, loc, parsed)
}

func TestParseBlobURL_LegacyURL(t *testing.T) {
	parsed := walrus.ParseBlobURL(aggregator + "/v1/blobs/legacy-id")
	assert.Equal(t, walrus.BlobLocator{PatchID: "", BlobID: "legacy-id"}, parsed)
}

func TestParseBlobURL_BareBlobID(t *testing.T) {
	parsed := walrus.ParseBlobURL("bare-blob-id")
	assert.Equal(t, walrus.BlobLocator{BlobID: "bare-blob-id"}, parsed)
}

func TestParseBlobURL_PatchWithoutBlobQuery(t *testing.T) {
	parsed := walrus.ParseBlobURL(aggregator + "/v1/blobs/by-quilt-patch-id/p2")
	assert.Equal(t, walrus.BlobLocator{PatchID: "p2", BlobID: ""}, parsed)
}
