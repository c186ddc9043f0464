package handlers

import (
	"encoding/base64"
	"errors"
	"net/http"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"profile-nft-backend/internal/middleware"
	"profile-nft-backend/internal/models"
	"profile-nft-backend/internal/sui"
	"profile-nft-backend/internal/walrus"
)

var dataURLPattern = regexp.MustCompile(`^data:([^;]+);base64,`)

// decodeImageData accepts a base64 data URL or raw base64 and returns the
// payload bytes plus the media type.
func decodeImageData(image string) ([]byte, string, error) {
	mediaType := "image/png"
	payload := image
	if match := dataURLPattern.FindStringSubmatch(image); match != nil {
		mediaType = match[1]
		payload = image[len(match[0]):]
	}

	data, err := base64.StdEncoding.DecodeString(strings.TrimSpace(payload))
	if err != nil {
		return nil, "", err
	}
	return data, mediaType, nil
}

type UploadHandler struct {
	registry      *walrus.Registry
	storage       walrus.Storage
	signer        sui.Executor
	aggregatorURL string
	defaultEpochs int
}

func NewUploadHandler(registry *walrus.Registry, storage walrus.Storage, signer sui.Executor, aggregatorURL string, defaultEpochs int) *UploadHandler {
	return &UploadHandler{
		registry:      registry,
		storage:       storage,
		signer:        signer,
		aggregatorURL: aggregatorURL,
		defaultEpochs: defaultEpochs,
	}
}

func (h *UploadHandler) sessionResponse(session *walrus.UploadSession) models.UploadSessionResponse {
	resp := models.UploadSessionResponse{
		SessionID:      session.ID.String(),
		Stage:          session.Stage().String(),
		ErrorMessage:   session.ErrorMessage(),
		RegisterDigest: session.RegisterDigest(),
		CanRegister:    session.CanRegister(),
		CanRelay:       session.CanRelay(),
		CanCertify:     session.CanCertify(),
		Certified:      session.IsCertified(),
	}
	if locator := session.Locator(); locator != nil {
		resp.Locator = locator
		resp.BlobURL = walrus.BuildBlobURL(h.aggregatorURL, *locator)
	}
	return resp
}

func (h *UploadHandler) lookup(c *gin.Context) (*walrus.UploadSession, bool) {
	id, err := uuid.Parse(c.Param("session_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid session id"})
		return nil, false
	}
	session, ok := h.registry.Get(id)
	if !ok {
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "upload session not found"})
		return nil, false
	}
	return session, true
}

// stageError maps state-machine failures onto HTTP codes. Stage-ordering
// violations are caller bugs, not retryable upstream failures.
func (h *UploadHandler) stageError(c *gin.Context, session *walrus.UploadSession, err error) {
	if errors.Is(err, walrus.ErrStageOrder) {
		c.JSON(http.StatusConflict, models.ErrorResponse{
			Error:   "stage not ready",
			Message: err.Error(),
		})
		return
	}
	c.JSON(http.StatusBadGateway, models.ErrorResponse{
		Error:   "upload stage failed",
		Message: err.Error(),
	})
}

// Create godoc
// @Summary     Create an upload session and encode the image
// @Description Starts a new upload session for a generated image and runs the local encoding stage. On success the session is ready to register.
// @Tags        uploads
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       request body models.CreateUploadRequest true "Image payload"
// @Success     201 {object} models.UploadSessionResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     500 {object} models.ErrorResponse
// @Router      /uploads [post]
func (h *UploadHandler) Create(c *gin.Context) {
	var req models.CreateUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid request body",
			Message: err.Error(),
		})
		return
	}
	if req.Image == "" {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "image is required"})
		return
	}

	data, mediaType, err := decodeImageData(req.Image)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid image encoding",
			Message: err.Error(),
		})
		return
	}

	session := h.registry.Create(h.storage)
	if err := session.Encode(data, req.Identifier, mediaType); err != nil {
		h.registry.Delete(session.ID)
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "encoding failed",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusCreated, h.sessionResponse(session))
}

// Get godoc
// @Summary     Upload session status
// @Tags        uploads
// @Produce     json
// @Security    Bearer
// @Param       session_id path string true "Session ID"
// @Success     200 {object} models.UploadSessionResponse
// @Failure     404 {object} models.ErrorResponse
// @Router      /uploads/{session_id} [get]
func (h *UploadHandler) Get(c *gin.Context) {
	session, ok := h.lookup(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, h.sessionResponse(session))
}

// Register godoc
// @Summary     Register the blob on-chain
// @Description Executes the registration transaction with the service signer. A failed registration returns the session to ready_to_register with the digest cleared.
// @Tags        uploads
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       session_id path string true "Session ID"
// @Param       request body models.RegisterUploadRequest false "Storage epochs"
// @Success     200 {object} models.UploadSessionResponse
// @Failure     409 {object} models.ErrorResponse
// @Failure     502 {object} models.ErrorResponse
// @Router      /uploads/{session_id}/register [post]
func (h *UploadHandler) Register(c *gin.Context) {
	session, ok := h.lookup(c)
	if !ok {
		return
	}

	owner, exists := c.Get(middleware.WalletAddressKey)
	if !exists {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: "wallet address not found"})
		return
	}

	// Body is optional; a missing or empty body falls back to defaults.
	var req models.RegisterUploadRequest
	_ = c.ShouldBindJSON(&req)
	epochs := req.Epochs
	if epochs <= 0 {
		epochs = h.defaultEpochs
	}

	if err := session.Register(c.Request.Context(), h.signer, owner.(string), epochs); err != nil {
		h.stageError(c, session, err)
		return
	}

	c.JSON(http.StatusOK, h.sessionResponse(session))
}

// Relay godoc
// @Summary     Upload the encoded blob through the relay
// @Description Sends the encoded bytes to the upload relay using the registration digest. A failed relay keeps the digest so the upload can be retried without re-registering.
// @Tags        uploads
// @Produce     json
// @Security    Bearer
// @Param       session_id path string true "Session ID"
// @Success     200 {object} models.UploadSessionResponse
// @Failure     409 {object} models.ErrorResponse
// @Failure     502 {object} models.ErrorResponse
// @Router      /uploads/{session_id}/relay [post]
func (h *UploadHandler) Relay(c *gin.Context) {
	session, ok := h.lookup(c)
	if !ok {
		return
	}

	if err := session.RelayUpload(c.Request.Context()); err != nil {
		h.stageError(c, session, err)
		return
	}

	c.JSON(http.StatusOK, h.sessionResponse(session))
}

// Certify godoc
// @Summary     Certify the uploaded blob on-chain
// @Description Executes the certification transaction and resolves the blob locator. On success the session is certified and carries the blob URL for minting.
// @Tags        uploads
// @Produce     json
// @Security    Bearer
// @Param       session_id path string true "Session ID"
// @Success     200 {object} models.UploadSessionResponse
// @Failure     409 {object} models.ErrorResponse
// @Failure     502 {object} models.ErrorResponse
// @Router      /uploads/{session_id}/certify [post]
func (h *UploadHandler) Certify(c *gin.Context) {
	session, ok := h.lookup(c)
	if !ok {
		return
	}

	if _, err := session.Certify(c.Request.Context(), h.signer); err != nil {
		h.stageError(c, session, err)
		return
	}

	c.JSON(http.StatusOK, h.sessionResponse(session))
}

// Cancel godoc
// @Summary     Cancel an upload session
// @Description Resets and discards the session. An already-registered blob is left as a dangling on-chain registration.
// @Tags        uploads
// @Security    Bearer
// @Param       session_id path string true "Session ID"
// @Success     204
// @Failure     404 {object} models.ErrorResponse
// @Router      /uploads/{session_id} [delete]
func (h *UploadHandler) Cancel(c *gin.Context) {
	session, ok := h.lookup(c)
	if !ok {
		return
	}

	session.Reset()
	h.registry.Delete(session.ID)
	c.Status(http.StatusNoContent)
}
