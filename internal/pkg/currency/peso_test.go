package currency

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestFormatPeso(t *testing.T) {
	tests := []struct {
		amount string
		want   string
	}{
		{"0", "₱0"},
		{"225", "₱225"},
		{"1234.5", "₱1,234.5"},
		{"70.256", "₱70.26"},
		{"1500000", "₱1,500,000"},
	}

	for _, tt := range tests {
		t.Run(tt.amount, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatPeso(decimal.RequireFromString(tt.amount)))
		})
	}
}
