package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"profile-nft-backend/internal/middleware"
	"profile-nft-backend/internal/models"
	"profile-nft-backend/internal/nft"
	"profile-nft-backend/internal/sui"
)

// NFTLister returns an owner's ProfileNFT records.
type NFTLister interface {
	ListOwned(ctx context.Context, owner string) ([]nft.Record, error)
}

// BalanceReader reads an address's SUI balance.
type BalanceReader interface {
	GetBalance(ctx context.Context, owner string) (*sui.Balance, error)
}

type NFTHandler struct {
	lister    NFTLister
	balances  BalanceReader
	packageID string
}

func NewNFTHandler(lister NFTLister, balances BalanceReader, packageID string) *NFTHandler {
	return &NFTHandler{
		lister:    lister,
		balances:  balances,
		packageID: packageID,
	}
}

func walletAddress(c *gin.Context) (string, bool) {
	address, exists := c.Get(middleware.WalletAddressKey)
	if !exists {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: "wallet address not found"})
		return "", false
	}
	return address.(string), true
}

// List godoc
// @Summary     List owned ProfileNFTs
// @Description Returns the authenticated wallet's ProfileNFTs, newest first.
// @Tags        nfts
// @Produce     json
// @Security    Bearer
// @Success     200 {object} models.NFTListResponse
// @Failure     502 {object} models.ErrorResponse
// @Router      /nfts [get]
func (h *NFTHandler) List(c *gin.Context) {
	owner, ok := walletAddress(c)
	if !ok {
		return
	}

	records, err := h.lister.ListOwned(c.Request.Context(), owner)
	if err != nil {
		if errors.Is(err, nft.ErrQuery) {
			c.JSON(http.StatusBadGateway, models.ErrorResponse{
				Error:   "failed to query nfts",
				Message: err.Error(),
			})
			return
		}
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to list nfts",
			Message: err.Error(),
		})
		return
	}

	if records == nil {
		records = []nft.Record{}
	}
	c.JSON(http.StatusOK, models.NFTListResponse{NFTs: records})
}

// MintTransaction godoc
// @Summary     Build the mint transaction
// @Description Returns an unsigned mint_nft transaction referencing the certified blob URL. The caller's wallet signs and executes it.
// @Tags        nfts
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       request body models.MintTransactionRequest true "NFT name, description and blob URL"
// @Success     200 {object} models.TransactionResponse
// @Failure     400 {object} models.ErrorResponse
// @Router      /nfts/mint-transaction [post]
func (h *NFTHandler) MintTransaction(c *gin.Context) {
	var req models.MintTransactionRequest
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
	if req.BlobURL == "" {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "blob_url is required"})
		return
	}

	intent, err := sui.BuildMintTransaction(h.packageID, req.Name, req.Description, req.BlobURL)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "failed to build mint transaction",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, models.TransactionResponse{Transaction: intent})
}

// TransferTransaction godoc
// @Summary     Build an NFT transfer transaction
// @Tags        nfts
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       request body models.TransferTransactionRequest true "NFT id and recipient"
// @Success     200 {object} models.TransactionResponse
// @Failure     400 {object} models.ErrorResponse
// @Router      /nfts/transfer-transaction [post]
func (h *NFTHandler) TransferTransaction(c *gin.Context) {
	var req models.TransferTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid request body",
			Message: err.Error(),
		})
		return
	}

	intent, err := sui.BuildTransferTransaction(h.packageID, req.NftID, req.Recipient)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "failed to build transfer transaction",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, models.TransactionResponse{Transaction: intent})
}

// Balance godoc
// @Summary     Wallet SUI balance
// @Tags        wallet
// @Produce     json
// @Security    Bearer
// @Success     200 {object} models.BalanceResponse
// @Failure     502 {object} models.ErrorResponse
// @Router      /wallet/balance [get]
func (h *NFTHandler) Balance(c *gin.Context) {
	owner, ok := walletAddress(c)
	if !ok {
		return
	}

	balance, err := h.balances.GetBalance(c.Request.Context(), owner)
	if err != nil {
		c.JSON(http.StatusBadGateway, models.ErrorResponse{
			Error:   "failed to query balance",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, models.BalanceResponse{
		Address:      owner,
		TotalBalance: balance.TotalBalance,
	})
}
