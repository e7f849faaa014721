package stock

const (
	StatusActive     = "active"
	StatusLowStock   = "low_stock"
	StatusOutOfStock = "out_of_stock"

	DefaultLowStockThreshold = 20
)

// Classify maps a quantity to its status. A non-positive threshold falls
// back to DefaultLowStockThreshold.
func Classify(quantity, threshold int) string {
	if threshold <= 0 {
		threshold = DefaultLowStockThreshold
	}
	switch {
	case quantity <= 0:
		return StatusOutOfStock
	case quantity < threshold:
		return StatusLowStock
	default:
		return StatusActive
	}
}

// ValidStatus reports whether s is a status filter value.
func ValidStatus(s string) bool {
	return s == StatusActive || s == StatusLowStock || s == StatusOutOfStock
}

// Summary counts items per status.
type Summary struct {
	Total      int `json:"total"`
	Active     int `json:"active"`
	LowStock   int `json:"low_stock"`
	OutOfStock int `json:"out_of_stock"`
}

func (s *Summary) Add(status string) {
	s.Total++
	switch status {
	case StatusActive:
		s.Active++
	case StatusLowStock:
		s.LowStock++
	case StatusOutOfStock:
		s.OutOfStock++
	}
}
