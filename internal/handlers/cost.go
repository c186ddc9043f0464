package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"profile-nft-backend/internal/models"
	"profile-nft-backend/internal/walrus"
)

// unknownCostPlaceholder renders the unknown sentinel for display.
const unknownCostPlaceholder = "---"

type CostHandler struct {
	estimator     *walrus.Estimator
	defaultEpochs int
}

func NewCostHandler(estimator *walrus.Estimator, defaultEpochs int) *CostHandler {
	return &CostHandler{
		estimator:     estimator,
		defaultEpochs: defaultEpochs,
	}
}

// Estimate godoc
// @Summary     Estimate storage cost
// @Description Returns the storage, write and total cost in FROST for storing size bytes over the given epochs. Non-positive inputs yield the unknown placeholder, not an error.
// @Tags        storage
// @Produce     json
// @Security    Bearer
// @Param       size query int true "Payload size in bytes"
// @Param       epochs query int false "Storage epochs (defaults to the configured value)"
// @Success     200 {object} models.CostResponse
// @Failure     502 {object} models.ErrorResponse
// @Router      /storage/cost [get]
func (h *CostHandler) Estimate(c *gin.Context) {
	size, err := strconv.ParseInt(c.Query("size"), 10, 64)
	if err != nil {
		size = 0
	}
	epochs, err := strconv.Atoi(c.Query("epochs"))
	if err != nil {
		epochs = h.defaultEpochs
	}

	breakdown, err := h.estimator.Estimate(c.Request.Context(), size, epochs)
	if err != nil {
		c.JSON(http.StatusBadGateway, models.ErrorResponse{
			Error:   "failed to estimate cost",
			Message: err.Error(),
		})
		return
	}

	if !breakdown.Known {
		c.JSON(http.StatusOK, models.CostResponse{
			StorageCost: unknownCostPlaceholder,
			WriteCost:   unknownCostPlaceholder,
			TotalCost:   unknownCostPlaceholder,
		})
		return
	}

	c.JSON(http.StatusOK, models.CostResponse{
		StorageCost: breakdown.StorageCost.String(),
		WriteCost:   breakdown.WriteCost.String(),
		TotalCost:   breakdown.TotalCost.String(),
		Known:       true,
	})
}
