package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"profile-nft-backend/internal/config"
	"profile-nft-backend/internal/models"
	"profile-nft-backend/internal/sui"
)

type PaymentHandler struct {
	cfg *config.Config
}

func NewPaymentHandler(cfg *config.Config) *PaymentHandler {
	return &PaymentHandler{cfg: cfg}
}

// BuildTransaction godoc
// @Summary     Build the generation payment transaction
// @Description Returns an unsigned transaction that splits the generation fee from gas and calls pay_for_generation. The caller's wallet signs and executes it.
// @Tags        payment
// @Produce     json
// @Security    Bearer
// @Success     200 {object} models.TransactionResponse
// @Router      /payment/transaction [post]
func (h *PaymentHandler) BuildTransaction(c *gin.Context) {
	intent := sui.BuildPaymentTransaction(h.cfg.ContractPackageID, h.cfg.PaymentConfigID, h.cfg.PaymentAmountMist)
	c.JSON(http.StatusOK, models.TransactionResponse{Transaction: intent})
}

// Info godoc
// @Summary     Payment fee amounts
// @Tags        payment
// @Produce     json
// @Security    Bearer
// @Success     200 {object} models.PaymentInfoResponse
// @Router      /payment/info [get]
func (h *PaymentHandler) Info(c *gin.Context) {
	c.JSON(http.StatusOK, models.PaymentInfoResponse{
		AmountMist: h.cfg.PaymentAmountMist,
		AmountSui:  sui.MistToSui(h.cfg.PaymentAmountMist).String(),
	})
}
