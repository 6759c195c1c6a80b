package service

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"signal_bot/internal/helper"
	"signal_bot/internal/models"

	"github.com/bytedance/sonic"
)

// Klines свечи от старых к новым. Публичный эндпоинт, без подписи.
func (c *Client) Klines(
	ctx context.Context,
	symbol, interval string,
	market models.MarketKind,
	limit int,
) ([]models.Kline, error) {
	futures := market == models.MarketContract
	endpoint := "/api/v3/klines"
	if futures {
		endpoint = "/fapi/v1/klines"
	}

	params := url.Values{}
	params.Set("symbol", helper.NormSymbol(symbol, market))
	params.Set("interval", helper.ExchangeInterval(interval))
	params.Set("limit", strconv.Itoa(limit))

	data, err := c.Public(ctx, endpoint, params, futures)
	if err != nil {
		return nil, err
	}
	return parseKlines(data)
}

func parseKlines(data []byte) ([]models.Kline, error) {
	var rows [][]any
	if err := sonic.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("klines decode: %w", err)
	}

	out := make([]models.Kline, 0, len(rows))
	for i, row := range rows {
		if len(row) < 7 {
			return nil, fmt.Errorf("klines row %d: %d fields", i, len(row))
		}
		k := models.Kline{
			OpenTime:  int64(num(row[0])),
			Open:      num(row[1]),
			High:      num(row[2]),
			Low:       num(row[3]),
			Close:     num(row[4]),
			Volume:    num(row[5]),
			CloseTime: int64(num(row[6])),
		}
		out = append(out, k)
	}
	return out, nil
}

func num(v any) float64 {
	switch x := v.(type) {
	case float64:
		return x
	case string:
		f, _ := strconv.ParseFloat(x, 64)
		return f
	case int64:
		return float64(x)
	}
	return 0
}
