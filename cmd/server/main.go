// @title           Profile NFT Backend API
// @version         1.0.0
// @description     Backend API for the pay-to-generate profile NFT flow: verifies generation payments on Sui, generates AI profile images, drives blob uploads to Walrus through encode/register/relay/certify, and builds mint transactions for the caller's wallet.

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey Bearer
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token. The token's sub claim is the wallet address.

package main

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"profile-nft-backend/internal/aigen"
	"profile-nft-backend/internal/config"
	"profile-nft-backend/internal/handlers"
	"profile-nft-backend/internal/middleware"
	"profile-nft-backend/internal/nft"
	"profile-nft-backend/internal/payment"
	"profile-nft-backend/internal/services"
	"profile-nft-backend/internal/sui"
	"profile-nft-backend/internal/walrus"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Set Gin mode
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Ledger client and service signer
	suiClient := sui.NewClient(cfg.SuiRPCURL)

	var signer *sui.Signer
	if cfg.ServiceSignerSeed != "" {
		signer, err = sui.NewSigner(suiClient, cfg.ServiceSignerSeed)
		if err != nil {
			log.Fatalf("Failed to initialize service signer: %v", err)
		}
		log.Printf("Service signer address: %s", signer.Address())
	} else {
		log.Println("Warning: SERVICE_SIGNER_SEED not set. Register and certify stages will not work.")
	}

	// Storage collaborator
	walrusClient := walrus.NewClient(walrus.ClientConfig{
		RelayURL:      cfg.WalrusRelayURL,
		AggregatorURL: cfg.WalrusAggregatorURL,
		PackageID:     cfg.WalrusPackageID,
		SystemID:      cfg.WalrusSystemID,
		TipMaxMist:    cfg.UploadTipMaxMist,
	})
	estimator := walrus.NewEstimator(walrusClient)
	registry := walrus.NewRegistry()

	// Payment verification and image generation
	verifier := payment.NewVerifier(suiClient)
	generator := aigen.NewClient(cfg.AIGatewayBaseURL, cfg.AIGatewayAPIKey, cfg.AIImageModel)

	// NFT query projection
	nftService := nft.NewService(suiClient, walrusClient, cfg.ContractPackageID, cfg.WalrusAggregatorURL)

	// End-to-end pipeline
	pipeline := services.NewPipeline(verifier, generator, registry, walrusClient, signer,
		cfg.ContractPackageID, cfg.WalrusAggregatorURL, cfg.DefaultStorageEpochs)

	// Handlers
	paymentHandler := handlers.NewPaymentHandler(cfg)
	generateHandler := handlers.NewGenerateHandler(verifier, generator)
	uploadHandler := handlers.NewUploadHandler(registry, walrusClient, signer, cfg.WalrusAggregatorURL, cfg.DefaultStorageEpochs)
	costHandler := handlers.NewCostHandler(estimator, cfg.DefaultStorageEpochs)
	nftHandler := handlers.NewNFTHandler(nftService, suiClient, cfg.ContractPackageID)
	pipelineHandler := handlers.NewPipelineHandler(pipeline)

	// Setup router
	router := gin.Default()

	// Health check (no auth)
	router.GET("/health", handlers.HealthHandler)

	// API routes
	api := router.Group("/api/v1")
	api.Use(middleware.AuthMiddleware(cfg))

	// Payment
	api.POST("/payment/transaction", paymentHandler.BuildTransaction)
	api.GET("/payment/info", paymentHandler.Info)

	// Image generation
	api.POST("/images/generate", generateHandler.Generate)

	// Storage cost
	api.GET("/storage/cost", costHandler.Estimate)

	// Upload session stages
	api.POST("/uploads", uploadHandler.Create)
	api.GET("/uploads/:session_id", uploadHandler.Get)
	api.POST("/uploads/:session_id/register", uploadHandler.Register)
	api.POST("/uploads/:session_id/relay", uploadHandler.Relay)
	api.POST("/uploads/:session_id/certify", uploadHandler.Certify)
	api.DELETE("/uploads/:session_id", uploadHandler.Cancel)

	// NFTs and wallet
	api.GET("/nfts", nftHandler.List)
	api.POST("/nfts/mint-transaction", nftHandler.MintTransaction)
	api.POST("/nfts/transfer-transaction", nftHandler.TransferTransaction)
	api.GET("/wallet/balance", nftHandler.Balance)

	// One-shot pipeline
	api.POST("/pipeline/run", pipelineHandler.Run)

	// Start server
	port := cfg.Port
	if port == "" {
		port = "8080"
	}

	log.Printf("Server starting on port %s", port)
	if err := http.ListenAndServe(":"+port, router); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
