package nft_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"profile-nft-backend/internal/nft"
	"profile-nft-backend/internal/sui"
)

const aggregator = "https://aggregator.testnet.walrus.space"

type fakeLedger struct {
	objects []sui.ObjectData
	err     error
}

func (f *fakeLedger) GetOwnedObjects(ctx context.Context, owner, structType string) ([]sui.ObjectData, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.objects, nil
}

type fakeResolver struct {
	blobID string
	err    error
	calls  int
}

func (f *fakeResolver) ResolveBlobID(ctx context.Context, patchID string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.blobID, nil
}

func nftObject(objectID, name, imageURL string, createdAt string) sui.ObjectData {
	return sui.ObjectData{
		ObjectID: objectID,
		Type:     "0xpkg::profile_nft::ProfileNFT",
		Content: &sui.ObjectContent{
			DataType: "moveObject",
			Fields: map[string]interface{}{
				"name":        name,
				"description": "desc",
				"image_url":   imageURL,
				"creator":     "0xCREATOR",
				"created_at":  createdAt,
			},
		},
	}
}

func TestListOwned_SortedNewestFirstWithoutDuplicates(t *testing.T) {
	ledger := &fakeLedger{objects: []sui.ObjectData{
		nftObject("0x1", "oldest", aggregator+"/v1/blobs/b1", "100"),
		nftObject("0x2", "newest", aggregator+"/v1/blobs/b2", "300"),
		nftObject("0x3", "middle", aggregator+"/v1/blobs/b3", "200"),
		nftObject("0x2", "newest-dup", aggregator+"/v1/blobs/b2", "300"),
	}}
	service := nft.NewService(ledger, nil, "0xpkg", aggregator)

	records, err := service.ListOwned(context.Background(), "0xOWNER")
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, []string{"0x2", "0x3", "0x1"}, []string{records[0].ObjectID, records[1].ObjectID, records[2].ObjectID})
	assert.Equal(t, uint64(300), records[0].CreatedAt)
	assert.Equal(t, "newest", records[0].Name)
}

func TestListOwned_EmptyOwnerHasEmptyList(t *testing.T) {
	service := nft.NewService(&fakeLedger{}, nil, "0xpkg", aggregator)

	records, err := service.ListOwned(context.Background(), "0xOWNER")
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestListOwned_TransportErrorIsQueryError(t *testing.T) {
	service := nft.NewService(&fakeLedger{err: errors.New("connection refused")}, nil, "0xpkg", aggregator)

	_, err := service.ListOwned(context.Background(), "0xOWNER")
	assert.ErrorIs(t, err, nft.ErrQuery)
}

func TestListOwned_LegacyURLGetsBlobIDFromResolver(t *testing.T) {
	// Legacy schema: the stored URL has a patch id but no blobId component.
	legacyURL := aggregator + "/v1/blobs/by-quilt-patch-id/p1"
	ledger := &fakeLedger{objects: []sui.ObjectData{
		nftObject("0x1", "legacy", legacyURL, "100"),
	}}
	resolver := &fakeResolver{blobID: "resolved-blob"}
	service := nft.NewService(ledger, resolver, "0xpkg", aggregator)

	records, err := service.ListOwned(context.Background(), "0xOWNER")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, aggregator+"/v1/blobs/by-quilt-patch-id/p1?blobId=resolved-blob", records[0].ImageURL)
	assert.Equal(t, 1, resolver.calls)
}

func TestListOwned_ResolverFailureKeepsStoredURL(t *testing.T) {
	legacyURL := aggregator + "/v1/blobs/by-quilt-patch-id/p1"
	ledger := &fakeLedger{objects: []sui.ObjectData{
		nftObject("0x1", "legacy", legacyURL, "100"),
	}}
	resolver := &fakeResolver{err: errors.New("aggregator down")}
	service := nft.NewService(ledger, resolver, "0xpkg", aggregator)

	records, err := service.ListOwned(context.Background(), "0xOWNER")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, legacyURL, records[0].ImageURL)
}

func TestListOwned_ModernURLSkipsResolver(t *testing.T) {
	modernURL := aggregator + "/v1/blobs/by-quilt-patch-id/p1?blobId=b1"
	ledger := &fakeLedger{objects: []sui.ObjectData{
		nftObject("0x1", "modern", modernURL, "100"),
	}}
	resolver := &fakeResolver{blobID: "should-not-be-used"}
	service := nft.NewService(ledger, resolver, "0xpkg", aggregator)

	records, err := service.ListOwned(context.Background(), "0xOWNER")
	require.NoError(t, err)
	assert.Equal(t, modernURL, records[0].ImageURL)
	assert.Equal(t, 0, resolver.calls)
}

func TestListOwned_SkipsObjectsWithoutContent(t *testing.T) {
	ledger := &fakeLedger{objects: []sui.ObjectData{
		{ObjectID: "0xNOCONTENT"},
		nftObject("0x1", "ok", aggregator+"/v1/blobs/b1", "100"),
	}}
	service := nft.NewService(ledger, nil, "0xpkg", aggregator)

	records, err := service.ListOwned(context.Background(), "0xOWNER")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "0x1", records[0].ObjectID)
}
