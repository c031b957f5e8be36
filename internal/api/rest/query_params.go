package rest

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/evrlink/evrlink-mirror/internal/api/shared/constants"
	apierrors "github.com/evrlink/evrlink-mirror/internal/api/shared/errors"
	"github.com/evrlink/evrlink-mirror/internal/api/shared/types"
	"github.com/evrlink/evrlink-mirror/internal/query"
	"github.com/evrlink/evrlink-mirror/internal/store/schema"
	internalTypes "github.com/evrlink/evrlink-mirror/internal/types"
)

// PaginationQueryParams holds limit/offset query parameters
type PaginationQueryParams struct {
	Limit  int    `form:"limit,default=20"`
	Offset uint64 `form:"offset,default=0"`
}

// ListBackgroundsQueryParams holds query parameters for GET /backgrounds
type ListBackgroundsQueryParams struct {
	Category string `form:"category"`
	Artist   string `form:"artist"`
	PaginationQueryParams
}

// ParseListBackgroundsQuery parses query parameters for GET /backgrounds
func ParseListBackgroundsQuery(c *gin.Context) (*ListBackgroundsQueryParams, error) {
	var params ListBackgroundsQueryParams
	if err := c.ShouldBindQuery(&params); err != nil {
		return nil, err
	}
	params.capLimit()
	return &params, nil
}

// ListGiftCardsQueryParams holds query parameters for GET /gift-cards
type ListGiftCardsQueryParams struct {
	Category  string               `form:"category"`
	MinPrice  string               `form:"min_price"` // decimal ether
	MaxPrice  string               `form:"max_price"` // decimal ether
	Owner     string               `form:"owner"`
	Creator   string               `form:"creator"`
	Claimable *bool                `form:"claimable"`
	Text      string               `form:"q"`
	Sort      types.GiftCardSortBy `form:"sort,default=id"`
	Order     types.Order          `form:"order,default=desc"`
	PaginationQueryParams
}

// ParseListGiftCardsQuery parses query parameters for GET /gift-cards
func ParseListGiftCardsQuery(c *gin.Context) (*ListGiftCardsQueryParams, error) {
	var params ListGiftCardsQueryParams
	if err := c.ShouldBindQuery(&params); err != nil {
		return nil, err
	}
	params.capLimit()

	if !params.Order.Valid() {
		params.Order = types.OrderDesc
	}
	return &params, nil
}

// Validate validates the query parameters
func (p *ListGiftCardsQueryParams) Validate() error {
	if !p.Sort.Valid() {
		return apierrors.NewValidationError(fmt.Sprintf("unsupported sort: %s", p.Sort))
	}
	if p.MinPrice != "" {
		if _, err := internalTypes.ParseEther(p.MinPrice); err != nil {
			return apierrors.NewValidationError(fmt.Sprintf("min_price: %v", err))
		}
	}
	if p.MaxPrice != "" {
		if _, err := internalTypes.ParseEther(p.MaxPrice); err != nil {
			return apierrors.NewValidationError(fmt.Sprintf("max_price: %v", err))
		}
	}
	return nil
}

// Search converts the query parameters to a facade search
func (p *ListGiftCardsQueryParams) Search() query.GiftCardSearch {
	search := query.GiftCardSearch{
		Category:  p.Category,
		Owner:     p.Owner,
		Creator:   p.Creator,
		Claimable: p.Claimable,
		Text:      p.Text,
		SortBy:    p.Sort,
		Order:     p.Order,
		Limit:     &p.Limit,
		Offset:    &p.Offset,
	}
	if p.MinPrice != "" {
		wei, _ := internalTypes.ParseEther(p.MinPrice)
		v := schema.NewWei(wei)
		search.MinPrice = &v
	}
	if p.MaxPrice != "" {
		wei, _ := internalTypes.ParseEther(p.MaxPrice)
		v := schema.NewWei(wei)
		search.MaxPrice = &v
	}
	return search
}

// GetChangesQueryParams holds query parameters for GET /changes
type GetChangesQueryParams struct {
	Anchor *uint64 `form:"anchor"` // Only return changes with ID greater than the anchor
	Limit  int     `form:"limit,default=50"`
}

// ParseGetChangesQuery parses query parameters for GET /changes
func ParseGetChangesQuery(c *gin.Context) (*GetChangesQueryParams, error) {
	var params GetChangesQueryParams
	if err := c.ShouldBindQuery(&params); err != nil {
		return nil, err
	}

	// Cap limit
	if params.Limit > constants.MAX_PAGE_SIZE {
		params.Limit = constants.MAX_PAGE_SIZE
	}
	return &params, nil
}

func (p *PaginationQueryParams) capLimit() {
	if p.Limit > constants.MAX_PAGE_SIZE {
		p.Limit = constants.MAX_PAGE_SIZE
	}
}
