package rest

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/evrlink/evrlink-mirror/internal/api/middleware"
	"github.com/evrlink/evrlink-mirror/internal/api/shared/dto"
	"github.com/evrlink/evrlink-mirror/internal/query"
	"github.com/evrlink/evrlink-mirror/internal/reconciler"
	"github.com/evrlink/evrlink-mirror/internal/store"
)

// Handler defines the interface for REST API handlers
type Handler interface {
	// ListBackgrounds lists backgrounds
	// GET /api/v1/backgrounds?category=<category>&artist=<address>&limit=<limit>&offset=<offset>
	ListBackgrounds(c *gin.Context)
	// GetCategories lists background categories
	// GET /api/v1/backgrounds/categories
	GetCategories(c *gin.Context)
	// GetBackground retrieves a single background
	// GET /api/v1/backgrounds/:id
	GetBackground(c *gin.Context)
	// MintBackground mints a background owned by the caller
	// POST /api/v1/backgrounds
	MintBackground(c *gin.Context)

	// ListGiftCards searches gift cards
	// GET /api/v1/gift-cards?category=&min_price=&max_price=&owner=&creator=&claimable=&q=&sort=&order=&limit=&offset=
	ListGiftCards(c *gin.Context)
	// GetGiftCard retrieves a single gift card with its background and transactions
	// GET /api/v1/gift-cards/:id
	GetGiftCard(c *gin.Context)
	// CreateGiftCard creates a gift card from a background
	// POST /api/v1/gift-cards
	CreateGiftCard(c *gin.Context)
	// BuyGiftCard buys a listed gift card
	// POST /api/v1/gift-cards/:id/buy
	BuyGiftCard(c *gin.Context)
	// SetSecretKey locks a gift card behind a secret
	// POST /api/v1/gift-cards/:id/secret
	SetSecretKey(c *gin.Context)
	// ClaimGiftCard claims a gift card with its secret
	// POST /api/v1/gift-cards/:id/claim
	ClaimGiftCard(c *gin.Context)
	// TransferGiftCard transfers a gift card to a recipient
	// POST /api/v1/gift-cards/:id/transfer
	TransferGiftCard(c *gin.Context)

	// GetUser retrieves the profile and statistics of an address
	// GET /api/v1/users/:address
	GetUser(c *gin.Context)
	// GetUserTransactions lists the transactions of an address
	// GET /api/v1/users/:address/transactions?limit=<limit>&offset=<offset>
	GetUserTransactions(c *gin.Context)
	// UpdateProfile updates the caller's profile
	// PUT /api/v1/users/me
	UpdateProfile(c *gin.Context)
	// GetLeaderboard retrieves a leaderboard
	// GET /api/v1/leaderboards/:board?limit=<limit>
	GetLeaderboard(c *gin.Context)

	// GetChanges retrieves journal entries after an anchor, in ascending order
	// GET /api/v1/changes?anchor=<id>&limit=<limit>
	GetChanges(c *gin.Context)

	// GetOperation retrieves the pending marker of a transaction
	// GET /api/v1/operations/:tx_hash
	GetOperation(c *gin.Context)
	// ReconcileOperation drives an unresolved operation to a terminal state
	// POST /api/v1/operations/:tx_hash/reconcile
	ReconcileOperation(c *gin.Context)

	// HealthCheck returns the health status of the API
	// GET /health
	HealthCheck(c *gin.Context)
}

// handler implements the Handler interface
type handler struct {
	debug      bool
	facade     query.Facade
	reconciler reconciler.Service
}

// NewHandler creates a new REST API handler
func NewHandler(debug bool, facade query.Facade, svc reconciler.Service) Handler {
	return &handler{
		debug:      debug,
		facade:     facade,
		reconciler: svc,
	}
}

// ListBackgrounds lists backgrounds
func (h *handler) ListBackgrounds(c *gin.Context) {
	params, err := ParseListBackgroundsQuery(c)
	if err != nil {
		respondValidationError(c, err.Error())
		return
	}

	response, err := h.facade.ListBackgrounds(c.Request.Context(), params.Category, params.Artist, &params.Limit, &params.Offset)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// GetCategories lists background categories
func (h *handler) GetCategories(c *gin.Context) {
	response, err := h.facade.GetCategories(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// GetBackground retrieves a single background
func (h *handler) GetBackground(c *gin.Context) {
	id, err := query.ParseID(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	response, err := h.facade.GetBackground(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	if response == nil {
		respondNotFound(c, fmt.Sprintf("Background %d not found", id))
		return
	}

	c.JSON(http.StatusOK, response)
}

// MintBackground mints a background owned by the caller
func (h *handler) MintBackground(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}

	var req dto.MintBackgroundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, fmt.Sprintf("Invalid request body: %v", err))
		return
	}
	if err := req.Validate(); err != nil {
		respondError(c, err)
		return
	}

	result, err := h.reconciler.MintBackground(c.Request.Context(), reconciler.MintBackgroundInput{
		Caller:   caller,
		ImageRef: req.ImageRef,
		Category: req.Category,
		Price:    req.PriceWei(),
	})
	h.respondResult(c, result, err, http.StatusCreated)
}

// ListGiftCards searches gift cards
func (h *handler) ListGiftCards(c *gin.Context) {
	params, err := ParseListGiftCardsQuery(c)
	if err != nil {
		respondValidationError(c, err.Error())
		return
	}
	if err := params.Validate(); err != nil {
		respondError(c, err)
		return
	}

	response, err := h.facade.ListGiftCards(c.Request.Context(), params.Search())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// GetGiftCard retrieves a single gift card
func (h *handler) GetGiftCard(c *gin.Context) {
	id, err := query.ParseID(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	response, err := h.facade.GetGiftCard(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	if response == nil {
		respondNotFound(c, fmt.Sprintf("Gift card %d not found", id))
		return
	}

	c.JSON(http.StatusOK, response)
}

// CreateGiftCard creates a gift card from a background
func (h *handler) CreateGiftCard(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}

	var req dto.CreateGiftCardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, fmt.Sprintf("Invalid request body: %v", err))
		return
	}
	if err := req.Validate(); err != nil {
		respondError(c, err)
		return
	}

	result, err := h.reconciler.CreateGiftCard(c.Request.Context(), reconciler.CreateGiftCardInput{
		Caller:       caller,
		BackgroundID: req.BackgroundID,
		Price:        req.PriceWei(),
		Message:      req.Message,
	})
	h.respondResult(c, result, err, http.StatusCreated)
}

// BuyGiftCard buys a listed gift card
func (h *handler) BuyGiftCard(c *gin.Context) {
	caller, id, ok := h.callerAndID(c)
	if !ok {
		return
	}

	var req dto.BuyGiftCardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, fmt.Sprintf("Invalid request body: %v", err))
		return
	}
	if err := req.Validate(); err != nil {
		respondError(c, err)
		return
	}

	result, err := h.reconciler.BuyGiftCard(c.Request.Context(), reconciler.BuyGiftCardInput{
		Caller:     caller,
		GiftCardID: id,
		Message:    req.Message,
		Value:      req.ValueWei(),
	})
	h.respondResult(c, result, err, http.StatusOK)
}

// SetSecretKey locks a gift card behind a secret
func (h *handler) SetSecretKey(c *gin.Context) {
	h.secretOperation(c, h.reconciler.SetSecretKey)
}

// ClaimGiftCard claims a gift card with its secret
func (h *handler) ClaimGiftCard(c *gin.Context) {
	h.secretOperation(c, h.reconciler.ClaimGiftCard)
}

// TransferGiftCard transfers a gift card to a recipient
func (h *handler) TransferGiftCard(c *gin.Context) {
	caller, id, ok := h.callerAndID(c)
	if !ok {
		return
	}

	var req dto.TransferGiftCardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, fmt.Sprintf("Invalid request body: %v", err))
		return
	}
	if err := req.Validate(); err != nil {
		respondError(c, err)
		return
	}

	result, err := h.reconciler.TransferGiftCard(c.Request.Context(), reconciler.TransferGiftCardInput{
		Caller:     caller,
		GiftCardID: id,
		Recipient:  req.Recipient,
	})
	h.respondResult(c, result, err, http.StatusOK)
}

// GetUser retrieves the profile and statistics of an address
func (h *handler) GetUser(c *gin.Context) {
	address := c.Param("address")
	response, err := h.facade.GetUser(c.Request.Context(), address)
	if err != nil {
		respondError(c, err)
		return
	}
	if response == nil {
		respondNotFound(c, fmt.Sprintf("User %s not found", address))
		return
	}

	c.JSON(http.StatusOK, response)
}

// GetUserTransactions lists the transactions of an address
func (h *handler) GetUserTransactions(c *gin.Context) {
	var params PaginationQueryParams
	if err := c.ShouldBindQuery(&params); err != nil {
		respondValidationError(c, err.Error())
		return
	}
	params.capLimit()

	response, err := h.facade.GetUserTransactions(c.Request.Context(), c.Param("address"), &params.Limit, &params.Offset)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// UpdateProfile updates the caller's profile
func (h *handler) UpdateProfile(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}

	var req dto.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, fmt.Sprintf("Invalid request body: %v", err))
		return
	}
	if err := req.Validate(); err != nil {
		respondError(c, err)
		return
	}

	response, err := h.facade.UpdateProfile(c.Request.Context(), caller, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// GetLeaderboard retrieves a leaderboard
func (h *handler) GetLeaderboard(c *gin.Context) {
	var params struct {
		Limit *int `form:"limit"`
	}
	if err := c.ShouldBindQuery(&params); err != nil {
		respondValidationError(c, err.Error())
		return
	}

	board := store.LeaderboardType(strings.ToLower(c.Param("board")))
	response, err := h.facade.GetLeaderboard(c.Request.Context(), board, params.Limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// GetChanges retrieves journal entries after an anchor
func (h *handler) GetChanges(c *gin.Context) {
	params, err := ParseGetChangesQuery(c)
	if err != nil {
		respondValidationError(c, err.Error())
		return
	}

	response, err := h.facade.GetChanges(c.Request.Context(), params.Anchor, &params.Limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// GetOperation retrieves the pending marker of a transaction
func (h *handler) GetOperation(c *gin.Context) {
	txHash := c.Param("tx_hash")
	response, err := h.facade.GetOperation(c.Request.Context(), txHash)
	if err != nil {
		respondError(c, err)
		return
	}
	if response == nil {
		respondNotFound(c, fmt.Sprintf("Operation %s not found", txHash))
		return
	}

	c.JSON(http.StatusOK, response)
}

// ReconcileOperation drives an unresolved operation to a terminal state
func (h *handler) ReconcileOperation(c *gin.Context) {
	op, err := h.reconciler.ResolveOperation(c.Request.Context(), c.Param("tx_hash"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.MapOperationToDTO(op))
}

// HealthCheck returns the health status of the API
func (h *handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "evrlink-mirror-api",
	})
}

func (h *handler) secretOperation(c *gin.Context, op func(ctx context.Context, input reconciler.SecretInput) (*reconciler.Result, error)) {
	caller, id, ok := h.callerAndID(c)
	if !ok {
		return
	}

	var req dto.SecretRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, fmt.Sprintf("Invalid request body: %v", err))
		return
	}
	if err := req.Validate(); err != nil {
		respondError(c, err)
		return
	}

	result, err := op(c.Request.Context(), reconciler.SecretInput{
		Caller:     caller,
		GiftCardID: id,
		Secret:     req.Secret,
	})
	h.respondResult(c, result, err, http.StatusOK)
}

// respondResult writes the outcome of a mutation. A transaction confirmed on the
// ledger whose mirror write is still pending is reported as accepted.
func (h *handler) respondResult(c *gin.Context, result *reconciler.Result, err error, confirmedStatus int) {
	if err != nil {
		respondError(c, err)
		return
	}

	status := confirmedStatus
	if result.Status == reconciler.StatusProcessing {
		status = http.StatusAccepted
	}
	c.JSON(status, dto.MapResultToDTO(result))
}

func (h *handler) caller(c *gin.Context) (string, bool) {
	caller, ok := middleware.CallerAddress(c)
	if !ok {
		respondUnauthorized(c, "A wallet token is required")
		return "", false
	}
	return caller, true
}

func (h *handler) callerAndID(c *gin.Context) (string, uint64, bool) {
	caller, ok := h.caller(c)
	if !ok {
		return "", 0, false
	}
	id, err := query.ParseID(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return "", 0, false
	}
	return caller, id, true
}
