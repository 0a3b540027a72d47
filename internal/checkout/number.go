package checkout

import "strconv"

// OrderNumber derives the order number from the basket id.
func OrderNumber(basketID uint64, offset int64) string {
	return strconv.FormatUint(basketID+uint64(offset), 10)
}
