package walrus

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"profile-nft-backend/internal/sui"
)

// Stage is the upload session's position in the encode → register → relay →
// certify pipeline.
type Stage int

const (
	StageIdle Stage = iota
	StageEncoding
	StageReadyToRegister
	StageRegistering
	StageReadyToRelay
	StageRelaying
	StageReadyToCertify
	StageCertifying
	StageCertified
)

func (s Stage) String() string {
	switch s {
	case StageIdle:
		return "idle"
	case StageEncoding:
		return "encoding"
	case StageReadyToRegister:
		return "ready_to_register"
	case StageRegistering:
		return "registering"
	case StageReadyToRelay:
		return "ready_to_relay"
	case StageRelaying:
		return "relaying"
	case StageReadyToCertify:
		return "ready_to_certify"
	case StageCertifying:
		return "certifying"
	case StageCertified:
		return "certified"
	default:
		return "unknown"
	}
}

var (
	// ErrStageOrder is a caller-contract violation: a stage action was
	// invoked while the session was not in the corresponding ready state.
	ErrStageOrder = errors.New("upload stage not ready")

	ErrEncoding      = errors.New("encoding failed")
	ErrRegistration  = errors.New("registration failed")
	ErrRelayUpload   = errors.New("relay upload failed")
	ErrCertification = errors.New("certification failed")
)

// Storage is the slice of the storage collaborator the session drives.
type Storage interface {
	Encode(contents []byte, identifier, contentType string) (*EncodedBlob, error)
	RegisterTransaction(blob *EncodedBlob, epochs int, owner string) *sui.TransactionIntent
	Upload(ctx context.Context, blob *EncodedBlob, registerDigest string) error
	CertifyTransaction(blob *EncodedBlob) *sui.TransactionIntent
	ListPatches(ctx context.Context, blob *EncodedBlob) ([]PatchInfo, error)
}

// UploadSession drives one blob through the four-stage upload. Transitions
// are strictly forward on success; a failing stage falls back exactly one
// stage so completed work (most importantly the paid registration) is never
// discarded. Failures are never auto-retried; retry is caller-initiated.
//
// The session is single-flight by contract: the caller must await the
// resolution of a stage action before invoking the next one. There is no
// internal locking.
type UploadSession struct {
	ID uuid.UUID

	storage        Storage
	stage          Stage
	blob           *EncodedBlob
	registerDigest string
	locator        *BlobLocator
	errMsg         string
}

func NewSession(storage Storage) *UploadSession {
	return &UploadSession{
		ID:      uuid.New(),
		storage: storage,
		stage:   StageIdle,
	}
}

func (s *UploadSession) Stage() Stage           { return s.stage }
func (s *UploadSession) ErrorMessage() string   { return s.errMsg }
func (s *UploadSession) RegisterDigest() string { return s.registerDigest }

// Locator is set only once the session is certified.
func (s *UploadSession) Locator() *BlobLocator { return s.locator }

// Readiness predicates, pure over the current stage. A driving caller gates
// on these instead of duplicating the state table.
func (s *UploadSession) CanRegister() bool { return s.stage == StageReadyToRegister }
func (s *UploadSession) CanRelay() bool    { return s.stage == StageReadyToRelay }
func (s *UploadSession) CanCertify() bool  { return s.stage == StageReadyToCertify }
func (s *UploadSession) IsCertified() bool { return s.stage == StageCertified }

// Encode runs the local encoding stage. Failure returns the session to Idle.
func (s *UploadSession) Encode(contents []byte, identifier, contentType string) error {
	if s.stage != StageIdle {
		return fmt.Errorf("%w: encode requires idle, session is %s", ErrStageOrder, s.stage)
	}

	s.stage = StageEncoding
	s.errMsg = ""

	blob, err := s.storage.Encode(contents, identifier, contentType)
	if err != nil {
		s.stage = StageIdle
		s.errMsg = err.Error()
		return fmt.Errorf("%w: %v", ErrEncoding, err)
	}

	s.blob = blob
	s.stage = StageReadyToRegister
	return nil
}

// Register executes the on-chain registration. On failure the digest is
// cleared and the session returns to ReadyToRegister.
func (s *UploadSession) Register(ctx context.Context, exec sui.Executor, owner string, epochs int) error {
	if s.stage != StageReadyToRegister {
		return fmt.Errorf("%w: register requires ready_to_register, session is %s", ErrStageOrder, s.stage)
	}

	s.stage = StageRegistering
	s.errMsg = ""

	intent := s.storage.RegisterTransaction(s.blob, epochs, owner)
	digest, err := exec.SignAndExecute(ctx, intent)
	if err != nil {
		s.registerDigest = ""
		s.stage = StageReadyToRegister
		s.errMsg = err.Error()
		return fmt.Errorf("%w: %v", ErrRegistration, err)
	}

	s.registerDigest = digest
	s.stage = StageReadyToRelay
	return nil
}

// RelayUpload sends the encoded bytes to the upload relay. On failure the
// registration digest is retained: the upload is retryable without paying
// for registration again.
func (s *UploadSession) RelayUpload(ctx context.Context) error {
	if s.stage != StageReadyToRelay {
		return fmt.Errorf("%w: relay requires ready_to_relay, session is %s", ErrStageOrder, s.stage)
	}

	s.stage = StageRelaying
	s.errMsg = ""

	if err := s.storage.Upload(ctx, s.blob, s.registerDigest); err != nil {
		s.stage = StageReadyToRelay
		s.errMsg = err.Error()
		return fmt.Errorf("%w: %v", ErrRelayUpload, err)
	}

	s.stage = StageReadyToCertify
	return nil
}

// Certify executes the on-chain certification and resolves the locator of
// the stored file. On failure the session returns to ReadyToCertify.
func (s *UploadSession) Certify(ctx context.Context, exec sui.Executor) (*BlobLocator, error) {
	if s.stage != StageReadyToCertify {
		return nil, fmt.Errorf("%w: certify requires ready_to_certify, session is %s", ErrStageOrder, s.stage)
	}

	s.stage = StageCertifying
	s.errMsg = ""

	intent := s.storage.CertifyTransaction(s.blob)
	if _, err := exec.SignAndExecute(ctx, intent); err != nil {
		s.stage = StageReadyToCertify
		s.errMsg = err.Error()
		return nil, fmt.Errorf("%w: %v", ErrCertification, err)
	}

	patches, err := s.storage.ListPatches(ctx, s.blob)
	if err != nil {
		s.stage = StageReadyToCertify
		s.errMsg = err.Error()
		return nil, fmt.Errorf("%w: %v", ErrCertification, err)
	}
	if len(patches) == 0 {
		s.stage = StageReadyToCertify
		s.errMsg = "no files were uploaded"
		return nil, fmt.Errorf("%w: no files were uploaded", ErrCertification)
	}

	s.locator = &BlobLocator{PatchID: patches[0].ID, BlobID: patches[0].BlobID}
	s.stage = StageCertified
	return s.locator, nil
}

// Reset returns the session to Idle, discarding the encoded payload, the
// registration digest and the locator. Only explicit cancellation calls
// this; failing stages never do. An already-registered blob becomes a
// dangling on-chain registration, which is acceptable.
func (s *UploadSession) Reset() {
	s.stage = StageIdle
	s.blob = nil
	s.registerDigest = ""
	s.locator = nil
	s.errMsg = ""
}
