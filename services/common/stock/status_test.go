package stock

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name      string
		quantity  int
		threshold int
		want      string
	}{
		{"negative", -3, 20, StatusOutOfStock},
		{"zero", 0, 20, StatusOutOfStock},
		{"one", 1, 20, StatusLowStock},
		{"just below", 19, 20, StatusLowStock},
		{"at threshold", 20, 20, StatusActive},
		{"custom threshold", 5, 5, StatusActive},
		{"default threshold", 10, 0, StatusLowStock},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.quantity, tt.threshold))
		})
	}
}

func TestSummary(t *testing.T) {
	var s Summary
	for _, q := range []int{0, 3, 50, 25, -1} {
		s.Add(Classify(q, 20))
	}
	assert.Equal(t, Summary{Total: 5, Active: 2, LowStock: 1, OutOfStock: 2}, s)
	assert.True(t, ValidStatus("low_stock"))
	assert.False(t, ValidStatus("Low Stock"))
}
