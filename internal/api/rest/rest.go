package rest

import (
	"github.com/gin-gonic/gin"

	"github.com/evrlink/evrlink-mirror/internal/api/middleware"
)

// SetupRoutes configures all REST API routes
func SetupRoutes(router *gin.Engine, handler Handler, authCfg middleware.AuthConfig) {
	// Health check endpoint (no auth, no version prefix)
	router.GET("/health", handler.HealthCheck)

	walletAuth := middleware.JWTAuth(authCfg)

	v1 := router.Group("/api/v1")
	{
		// Backgrounds
		v1.GET("/backgrounds", handler.ListBackgrounds)
		v1.GET("/backgrounds/categories", handler.GetCategories)
		v1.GET("/backgrounds/:id", handler.GetBackground)
		v1.POST("/backgrounds", walletAuth, handler.MintBackground)

		// Gift cards
		v1.GET("/gift-cards", handler.ListGiftCards)
		v1.GET("/gift-cards/:id", handler.GetGiftCard)
		v1.POST("/gift-cards", walletAuth, handler.CreateGiftCard)
		v1.POST("/gift-cards/:id/buy", walletAuth, handler.BuyGiftCard)
		v1.POST("/gift-cards/:id/secret", walletAuth, handler.SetSecretKey)
		v1.POST("/gift-cards/:id/claim", walletAuth, handler.ClaimGiftCard)
		v1.POST("/gift-cards/:id/transfer", walletAuth, handler.TransferGiftCard)

		// Users
		v1.PUT("/users/me", walletAuth, handler.UpdateProfile)
		v1.GET("/users/:address", handler.GetUser)
		v1.GET("/users/:address/transactions", handler.GetUserTransactions)
		v1.GET("/leaderboards/:board", handler.GetLeaderboard)

		// Changes endpoint (public read access)
		v1.GET("/changes", handler.GetChanges)

		// Operations
		v1.GET("/operations/:tx_hash", handler.GetOperation)
		v1.POST("/operations/:tx_hash/reconcile", middleware.APIKeyAuth(authCfg), handler.ReconcileOperation)
	}
}
