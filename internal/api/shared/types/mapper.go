package types

import (
	"github.com/evrlink/evrlink-mirror/internal/store"
)

// ToStoreGiftCardSort converts API GiftCardSortBy to store GiftCardSort
func ToStoreGiftCardSort(sortBy GiftCardSortBy) store.GiftCardSort {
	switch sortBy {
	case GiftCardSortByPrice:
		return store.GiftCardSortPrice
	case GiftCardSortByCreated:
		return store.GiftCardSortCreated
	default:
		return store.GiftCardSortID
	}
}
