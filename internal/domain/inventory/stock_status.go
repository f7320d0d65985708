package inventory

// StockStatus classifies on-hand stock against the low-stock threshold
type StockStatus string

const (
	StockStatusInStock    StockStatus = "in_stock"
	StockStatusLowStock   StockStatus = "low_stock"
	StockStatusOutOfStock StockStatus = "out_of_stock"
)

// String returns the string representation of StockStatus
func (s StockStatus) String() string {
	return string(s)
}

// ClassifyStock maps an on-hand quantity and a threshold to a stock status.
// Zero on hand is out_of_stock regardless of the threshold; stock equal to
// the threshold is still low_stock, only strictly above counts as in_stock.
func ClassifyStock(currentStock, minStockLevel int64) StockStatus {
	if currentStock <= 0 {
		return StockStatusOutOfStock
	}
	if currentStock <= minStockLevel {
		return StockStatusLowStock
	}
	return StockStatusInStock
}
