package exchange

import (
	"testing"

	"github.com/shopspring/decimal"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestWeightedAverage(t *testing.T) {
	tests := []struct {
		name      string
		oldAvg    string
		oldShares int64
		price     string
		newShares int64
		want      string
	}{
		{"равные объёмы", "100", 10, "200", 10, "150"},
		{"докупка по той же цене", "50", 5, "50", 3, "50"},
		{"перевес старой позиции", "100", 90, "200", 10, "110"},
		{"одна акция к одной", "10", 1, "20", 1, "15"},
		{"округление до копеек", "100", 1, "100.01", 2, "100.01"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := weightedAverage(d(tt.oldAvg), tt.oldShares, d(tt.price), tt.newShares)
			if !got.Equal(d(tt.want)) {
				t.Errorf("weightedAverage(%s, %d, %s, %d) = %s, want %s",
					tt.oldAvg, tt.oldShares, tt.price, tt.newShares, got, tt.want)
			}
		})
	}
}

// Средняя цена после докупки всегда лежит между старой средней и ценой сделки.
func TestWeightedAverageBounds(t *testing.T) {
	oldAvg := d("80")
	price := d("120")
	got := weightedAverage(oldAvg, 7, price, 13)
	if got.LessThan(oldAvg) || got.GreaterThan(price) {
		t.Errorf("средняя %s вне диапазона [%s, %s]", got, oldAvg, price)
	}
}
