package types

// Order enumeration for sorting
type Order string

const (
	OrderAsc  Order = "asc"
	OrderDesc Order = "desc"
)

func (o Order) Desc() bool {
	return o == OrderDesc
}

func (o Order) Asc() bool {
	return o == OrderAsc
}

// Valid checks if an order is valid
func (o Order) Valid() bool {
	return o == OrderAsc || o == OrderDesc
}

// GiftCardSortBy enumeration for gift card listings
type GiftCardSortBy string

const (
	GiftCardSortByID      GiftCardSortBy = "id"
	GiftCardSortByPrice   GiftCardSortBy = "price"
	GiftCardSortByCreated GiftCardSortBy = "created"
)

// Valid checks if a sort key is valid
func (s GiftCardSortBy) Valid() bool {
	return s == GiftCardSortByID || s == GiftCardSortByPrice || s == GiftCardSortByCreated
}
