package helper

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"signal_bot/internal/models"
)

const defaultIntervalSeconds = 900

type interval struct {
	bar     string // интервал в формате биржи
	seconds int64
}

var intervals = map[string]interval{
	"5m":   {bar: "5m", seconds: 300},
	"15m":  {bar: "15m", seconds: 900},
	"60m":  {bar: "1h", seconds: 3600},
	"240m": {bar: "4h", seconds: 14400},
}

func NormTF(raw string) string {
	s := strings.TrimSpace(strings.ToLower(raw))
	switch s {
	case "1h":
		return "60m"
	case "4h":
		return "240m"
	default:
		return s
	}
}

// IntervalSeconds длина свечи; неизвестный интервал считаем 15m.
func IntervalSeconds(tf string) int64 {
	if iv, ok := intervals[NormTF(tf)]; ok {
		return iv.seconds
	}
	return defaultIntervalSeconds
}

func IntervalDuration(tf string) time.Duration {
	return time.Duration(IntervalSeconds(tf)) * time.Second
}

// ExchangeInterval переводит наш интервал в параметр interval для klines.
func ExchangeInterval(tf string) string {
	if iv, ok := intervals[NormTF(tf)]; ok {
		return iv.bar
	}
	return tf
}

func KnownInterval(tf string) bool {
	_, ok := intervals[NormTF(tf)]
	return ok
}

// NormSymbol для контрактов добавляет USDT, если его нет.
func NormSymbol(symbol string, market models.MarketKind) string {
	s := strings.ToUpper(strings.TrimSpace(symbol))
	if market == models.MarketContract && !strings.HasSuffix(s, "USDT") {
		s += "USDT"
	}
	return s
}

// RoundQty количество с точностью 3 знака.
func RoundQty(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v).Round(3)
}

// RoundPrice триггер-цена с точностью 4 знака.
func RoundPrice(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v).Round(4)
}
