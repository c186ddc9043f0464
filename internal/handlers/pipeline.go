package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"profile-nft-backend/internal/aigen"
	"profile-nft-backend/internal/models"
	"profile-nft-backend/internal/payment"
	"profile-nft-backend/internal/services"
)

type PipelineHandler struct {
	pipeline *services.Pipeline
}

func NewPipelineHandler(pipeline *services.Pipeline) *PipelineHandler {
	return &PipelineHandler{pipeline: pipeline}
}

// Run godoc
// @Summary     Run the full generate-to-mint pipeline
// @Description Verifies payment, generates the image, drives the upload session through encode, register, relay and certify, and returns the unsigned mint transaction. On a stage failure the response names the session so the caller can resume it stage by stage.
// @Tags        pipeline
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       request body models.RunPipelineRequest true "Prompt, payment digest and NFT metadata"
// @Success     200 {object} models.RunPipelineResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     402 {object} models.ErrorResponse
// @Failure     502 {object} models.ErrorResponse
// @Router      /pipeline/run [post]
func (h *PipelineHandler) Run(c *gin.Context) {
	var req models.RunPipelineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid request body",
			Message: err.Error(),
		})
		return
	}
	if req.Name == "" {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "name is required"})
		return
	}

	owner, ok := walletAddress(c)
	if !ok {
		return
	}

	result, err := h.pipeline.Run(c.Request.Context(), req.Prompt, req.PaymentTxDigest, owner, req.Name, req.Description, req.Epochs)
	if err != nil {
		switch {
		case errors.Is(err, payment.ErrMissingDigest), errors.Is(err, aigen.ErrEmptyPrompt):
			c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid request", Message: err.Error()})
		case errors.Is(err, payment.ErrVerificationFailed), errors.Is(err, aigen.ErrUnverifiedPayment):
			c.JSON(http.StatusPaymentRequired, models.ErrorResponse{Error: "payment verification failed", Message: err.Error()})
		default:
			resp := models.ErrorResponse{Error: "pipeline stage failed", Message: err.Error()}
			if result != nil && result.Session != nil {
				// The session survives the failure; completed stages can be
				// resumed through the upload endpoints.
				resp.Message = "session " + result.Session.ID.String() + ": " + err.Error()
			}
			c.JSON(http.StatusBadGateway, resp)
		}
		return
	}

	c.JSON(http.StatusOK, models.RunPipelineResponse{
		SessionID:       result.Session.ID.String(),
		BlobURL:         result.BlobURL,
		Locator:         result.Locator,
		MintTransaction: result.MintTransaction,
	})
}
