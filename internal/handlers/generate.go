package handlers

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"profile-nft-backend/internal/aigen"
	"profile-nft-backend/internal/models"
	"profile-nft-backend/internal/payment"
)

// PaymentVerifier confirms a payment digest on-chain.
type PaymentVerifier interface {
	Verify(ctx context.Context, digest string) (*payment.Receipt, error)
}

// ImageGenerator produces an image for a verified payment.
type ImageGenerator interface {
	GenerateImage(ctx context.Context, prompt string, receipt *payment.Receipt) (*aigen.Image, error)
}

type GenerateHandler struct {
	verifier  PaymentVerifier
	generator ImageGenerator
}

func NewGenerateHandler(verifier PaymentVerifier, generator ImageGenerator) *GenerateHandler {
	return &GenerateHandler{
		verifier:  verifier,
		generator: generator,
	}
}

// Generate godoc
// @Summary     Generate a profile image
// @Description Verifies the payment transaction on-chain, then generates an image for the prompt. Generation never runs on an unverified payment.
// @Tags        images
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       request body models.GenerateImageRequest true "Prompt and payment digest"
// @Success     200 {object} models.GenerateImageResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     402 {object} models.ErrorResponse
// @Failure     502 {object} models.ErrorResponse
// @Router      /images/generate [post]
func (h *GenerateHandler) Generate(c *gin.Context) {
	var req models.GenerateImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid request body",
			Message: err.Error(),
		})
		return
	}

	receipt, err := h.verifier.Verify(c.Request.Context(), req.PaymentTxDigest)
	if err != nil {
		if errors.Is(err, payment.ErrMissingDigest) {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Error:   "missing payment digest",
				Message: err.Error(),
			})
			return
		}
		if errors.Is(err, payment.ErrVerificationFailed) {
			c.JSON(http.StatusPaymentRequired, models.ErrorResponse{
				Error:   "payment verification failed",
				Message: err.Error(),
			})
			return
		}
		c.JSON(http.StatusBadGateway, models.ErrorResponse{
			Error:   "failed to verify payment",
			Message: err.Error(),
		})
		return
	}

	image, err := h.generator.GenerateImage(c.Request.Context(), req.Prompt, receipt)
	if err != nil {
		switch {
		case errors.Is(err, aigen.ErrEmptyPrompt):
			c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "prompt is required"})
		case errors.Is(err, aigen.ErrUnverifiedPayment):
			c.JSON(http.StatusPaymentRequired, models.ErrorResponse{Error: "payment not verified"})
		case errors.Is(err, aigen.ErrNoImage):
			c.JSON(http.StatusBadGateway, models.ErrorResponse{
				Error:   "no image generated",
				Message: "the model returned no image output, please retry",
			})
		default:
			c.JSON(http.StatusBadGateway, models.ErrorResponse{
				Error:   "image generation failed",
				Message: err.Error(),
			})
		}
		return
	}

	c.JSON(http.StatusOK, models.GenerateImageResponse{
		Image:     fmt.Sprintf("data:%s;base64,%s", image.MediaType, base64.StdEncoding.EncodeToString(image.Bytes)),
		MediaType: image.MediaType,
		SizeBytes: len(image.Bytes),
	})
}
