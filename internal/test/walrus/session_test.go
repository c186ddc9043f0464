package walrus_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"profile-nft-backend/internal/sui"
	"profile-nft-backend/internal/walrus"
)

type fakeStorage struct {
	encodeErr  error
	uploadErr  error
	patches    []walrus.PatchInfo
	patchesErr error

	encodeCalls   int
	registerCalls int
	uploadCalls   int
	certifyCalls  int

	lastUploadDigest string
}

func (f *fakeStorage) Encode(contents []byte, identifier, contentType string) (*walrus.EncodedBlob, error) {
	f.encodeCalls++
	if f.encodeErr != nil {
		return nil, f.encodeErr
	}
	return &walrus.EncodedBlob{
		BlobID:      "blob-1",
		Identifier:  identifier,
		ContentType: contentType,
		Contents:    contents,
		Size:        len(contents),
	}, nil
}

func (f *fakeStorage) RegisterTransaction(blob *walrus.EncodedBlob, epochs int, owner string) *sui.TransactionIntent {
	f.registerCalls++
	return &sui.TransactionIntent{
		Commands: []sui.Command{{
			Kind: sui.CmdMoveCall,
			MoveCall: &sui.MoveCall{
				Target: "0xwalrus::system::register_blob",
				Arguments: []sui.Argument{
					{Kind: sui.ArgPure, Value: blob.BlobID},
					{Kind: sui.ArgPure, Value: fmt.Sprintf("%d", epochs)},
					{Kind: sui.ArgPure, Value: owner},
				},
			},
		}},
	}
}

func (f *fakeStorage) Upload(ctx context.Context, blob *walrus.EncodedBlob, registerDigest string) error {
	f.uploadCalls++
	f.lastUploadDigest = registerDigest
	return f.uploadErr
}

func (f *fakeStorage) CertifyTransaction(blob *walrus.EncodedBlob) *sui.TransactionIntent {
	f.certifyCalls++
	return &sui.TransactionIntent{
		Commands: []sui.Command{{
			Kind:     sui.CmdMoveCall,
			MoveCall: &sui.MoveCall{Target: "0xwalrus::system::certify_blob"},
		}},
	}
}

func (f *fakeStorage) ListPatches(ctx context.Context, blob *walrus.EncodedBlob) ([]walrus.PatchInfo, error) {
	if f.patchesErr != nil {
		return nil, f.patchesErr
	}
	if f.patches != nil {
		return f.patches, nil
	}
	return []walrus.PatchInfo{{ID: "patch-1", BlobID: blob.BlobID}}, nil
}

type fakeExecutor struct {
	digest string
	err    error
	calls  int
}

func (f *fakeExecutor) SignAndExecute(ctx context.Context, intent *sui.TransactionIntent) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.digest, nil
}

func TestSession_FullSuccessPath(t *testing.T) {
	storage := &fakeStorage{}
	exec := &fakeExecutor{digest: "0xREG"}
	session := walrus.NewSession(storage)

	assert.Equal(t, walrus.StageIdle, session.Stage())
	assert.False(t, session.CanRegister())

	require.NoError(t, session.Encode([]byte("image-bytes"), "profile-nft.png", "image/png"))
	assert.Equal(t, walrus.StageReadyToRegister, session.Stage())
	assert.True(t, session.CanRegister())
	assert.Empty(t, session.RegisterDigest())

	require.NoError(t, session.Register(context.Background(), exec, "0xOWNER", 1))
	assert.Equal(t, walrus.StageReadyToRelay, session.Stage())
	assert.True(t, session.CanRelay())
	assert.Equal(t, "0xREG", session.RegisterDigest())
	assert.Nil(t, session.Locator())

	require.NoError(t, session.RelayUpload(context.Background()))
	assert.Equal(t, walrus.StageReadyToCertify, session.Stage())
	assert.True(t, session.CanCertify())
	assert.Equal(t, "0xREG", storage.lastUploadDigest)

	locator, err := session.Certify(context.Background(), exec)
	require.NoError(t, err)
	assert.Equal(t, walrus.StageCertified, session.Stage())
	assert.True(t, session.IsCertified())
	require.NotNil(t, locator)
	assert.Equal(t, "patch-1", locator.PatchID)
	assert.Equal(t, "blob-1", locator.BlobID)

	assert.Equal(t, 1, storage.registerCalls)
	assert.Equal(t, 1, storage.uploadCalls)
	assert.Equal(t, 2, exec.calls) // register + certify
}

func TestSession_EncodeFailureReturnsToIdle(t *testing.T) {
	storage := &fakeStorage{encodeErr: errors.New("boom")}
	session := walrus.NewSession(storage)

	err := session.Encode([]byte("x"), "", "")
	require.Error(t, err)
	assert.ErrorIs(t, err, walrus.ErrEncoding)
	assert.Equal(t, walrus.StageIdle, session.Stage())
	assert.Equal(t, "boom", session.ErrorMessage())
}

func TestSession_RegisterFailureClearsDigest(t *testing.T) {
	storage := &fakeStorage{}
	session := walrus.NewSession(storage)
	require.NoError(t, session.Encode([]byte("x"), "", ""))

	exec := &fakeExecutor{err: errors.New("gas too low")}
	err := session.Register(context.Background(), exec, "0xOWNER", 1)
	require.Error(t, err)
	assert.ErrorIs(t, err, walrus.ErrRegistration)
	assert.Equal(t, walrus.StageReadyToRegister, session.Stage())
	assert.Empty(t, session.RegisterDigest())
	assert.Equal(t, "gas too low", session.ErrorMessage())

	// The stage is retryable in place.
	exec.err = nil
	exec.digest = "0xREG2"
	require.NoError(t, session.Register(context.Background(), exec, "0xOWNER", 1))
	assert.Equal(t, walrus.StageReadyToRelay, session.Stage())
	assert.Equal(t, "0xREG2", session.RegisterDigest())
}

func TestSession_RelayFailureRetainsDigest(t *testing.T) {
	storage := &fakeStorage{uploadErr: errors.New("relay timeout")}
	exec := &fakeExecutor{digest: "0xREG"}
	session := walrus.NewSession(storage)
	require.NoError(t, session.Encode([]byte("x"), "", ""))
	require.NoError(t, session.Register(context.Background(), exec, "0xOWNER", 1))

	err := session.RelayUpload(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, walrus.ErrRelayUpload)
	assert.Equal(t, walrus.StageReadyToRelay, session.Stage())
	assert.Equal(t, "0xREG", session.RegisterDigest())
	assert.Equal(t, "relay timeout", session.ErrorMessage())

	// Retry succeeds with the same digest and no second registration.
	storage.uploadErr = nil
	require.NoError(t, session.RelayUpload(context.Background()))
	assert.Equal(t, walrus.StageReadyToCertify, session.Stage())
	assert.Equal(t, "0xREG", storage.lastUploadDigest)
	assert.Equal(t, 1, storage.registerCalls)
	assert.Empty(t, session.ErrorMessage())
}

func TestSession_CertifyFailureFallsBackOneStage(t *testing.T) {
	storage := &fakeStorage{}
	exec := &fakeExecutor{digest: "0xREG"}
	session := walrus.NewSession(storage)
	require.NoError(t, session.Encode([]byte("x"), "", ""))
	require.NoError(t, session.Register(context.Background(), exec, "0xOWNER", 1))
	require.NoError(t, session.RelayUpload(context.Background()))

	failing := &fakeExecutor{err: errors.New("chain rejected")}
	_, err := session.Certify(context.Background(), failing)
	require.Error(t, err)
	assert.ErrorIs(t, err, walrus.ErrCertification)
	assert.Equal(t, walrus.StageReadyToCertify, session.Stage())
	assert.Nil(t, session.Locator())
	assert.Equal(t, "0xREG", session.RegisterDigest())
}

func TestSession_CertifyWithNoStoredFiles(t *testing.T) {
	storage := &fakeStorage{patches: []walrus.PatchInfo{}}
	exec := &fakeExecutor{digest: "0xREG"}
	session := walrus.NewSession(storage)
	require.NoError(t, session.Encode([]byte("x"), "", ""))
	require.NoError(t, session.Register(context.Background(), exec, "0xOWNER", 1))
	require.NoError(t, session.RelayUpload(context.Background()))

	_, err := session.Certify(context.Background(), exec)
	require.Error(t, err)
	assert.ErrorIs(t, err, walrus.ErrCertification)
	assert.Equal(t, walrus.StageReadyToCertify, session.Stage())
}

func TestSession_StageOrderViolations(t *testing.T) {
	storage := &fakeStorage{}
	exec := &fakeExecutor{digest: "0xREG"}
	session := walrus.NewSession(storage)

	// Nothing can run from idle except encode.
	assert.ErrorIs(t, session.Register(context.Background(), exec, "0xOWNER", 1), walrus.ErrStageOrder)
	assert.ErrorIs(t, session.RelayUpload(context.Background()), walrus.ErrStageOrder)
	_, err := session.Certify(context.Background(), exec)
	assert.ErrorIs(t, err, walrus.ErrStageOrder)

	// A session cannot skip forward: after encode only register is legal.
	require.NoError(t, session.Encode([]byte("x"), "", ""))
	assert.ErrorIs(t, session.RelayUpload(context.Background()), walrus.ErrStageOrder)
	_, err = session.Certify(context.Background(), exec)
	assert.ErrorIs(t, err, walrus.ErrStageOrder)

	// Encode is not re-runnable once the session has left idle.
	assert.ErrorIs(t, session.Encode([]byte("x"), "", ""), walrus.ErrStageOrder)

	// Collaborators were never touched by rejected calls.
	assert.Equal(t, 0, storage.registerCalls)
	assert.Equal(t, 0, storage.uploadCalls)
	assert.Equal(t, 0, exec.calls)
}

func TestSession_ResetDiscardsEverything(t *testing.T) {
	storage := &fakeStorage{}
	exec := &fakeExecutor{digest: "0xREG"}
	session := walrus.NewSession(storage)
	require.NoError(t, session.Encode([]byte("x"), "", ""))
	require.NoError(t, session.Register(context.Background(), exec, "0xOWNER", 1))

	session.Reset()
	assert.Equal(t, walrus.StageIdle, session.Stage())
	assert.Empty(t, session.RegisterDigest())
	assert.Nil(t, session.Locator())
	assert.Empty(t, session.ErrorMessage())

	// A reset session starts over from encode.
	require.NoError(t, session.Encode([]byte("y"), "", ""))
	assert.Equal(t, walrus.StageReadyToRegister, session.Stage())
}

func TestRegistry_CreateGetDelete(t *testing.T) {
	registry := walrus.NewRegistry()
	storage := &fakeStorage{}

	session := registry.Create(storage)
	found, ok := registry.Get(session.ID)
	require.True(t, ok)
	assert.Same(t, session, found)

	registry.Delete(session.ID)
	_, ok = registry.Get(session.ID)
	assert.False(t, ok)
}
