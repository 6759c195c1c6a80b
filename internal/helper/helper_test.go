package helper

import (
	"testing"
	"time"

	"signal_bot/internal/models"
)

func TestIntervals(t *testing.T) {
	tests := []struct {
		tf      string
		seconds int64
		bar     string
	}{
		{"5m", 300, "5m"},
		{"15m", 900, "15m"},
		{"60m", 3600, "1h"},
		{"1h", 3600, "1h"},
		{"240m", 14400, "4h"},
		{"3m", 900, "3m"},
	}

	for _, tt := range tests {
		t.Run(tt.tf, func(t *testing.T) {
			if got := IntervalSeconds(tt.tf); got != tt.seconds {
				t.Fatalf("IntervalSeconds(%s)=%d, expected %d", tt.tf, got, tt.seconds)
			}
			if got := ExchangeInterval(tt.tf); got != tt.bar {
				t.Fatalf("ExchangeInterval(%s)=%s, expected %s", tt.tf, got, tt.bar)
			}
		})
	}

	if IntervalDuration("60m") != time.Hour {
		t.Fatalf("IntervalDuration(60m)=%v", IntervalDuration("60m"))
	}
}

func TestNormSymbol(t *testing.T) {
	if got := NormSymbol(" btc ", models.MarketContract); got != "BTCUSDT" {
		t.Fatalf("got %s", got)
	}
	if got := NormSymbol("ethusdt", models.MarketContract); got != "ETHUSDT" {
		t.Fatalf("got %s", got)
	}
	if got := NormSymbol("btc", models.MarketSpot); got != "BTC" {
		t.Fatalf("got %s", got)
	}
}

func TestRounding(t *testing.T) {
	if got := RoundQty(100.0 / 3.0).String(); got != "33.333" {
		t.Fatalf("RoundQty=%s", got)
	}
	if got := RoundPrice(105.000049).StringFixed(4); got != "105.0000" {
		t.Fatalf("RoundPrice=%s", got)
	}
	if got := RoundPrice(98).StringFixed(4); got != "98.0000" {
		t.Fatalf("RoundPrice=%s", got)
	}
}
