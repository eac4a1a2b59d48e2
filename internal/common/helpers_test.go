package common

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		amount string
		want   string
	}{
		{"1", "1 монета"},
		{"2", "2 монеты"},
		{"150", "150 монет"},
		{"75.5", "75.5 монет"},
	}
	for _, tt := range tests {
		if got := FormatAmount(decimal.RequireFromString(tt.amount)); got != tt.want {
			t.Errorf("FormatAmount(%s) = %q, want %q", tt.amount, got, tt.want)
		}
	}
}
