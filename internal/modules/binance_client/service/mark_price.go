package service

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/bytedance/sonic"
)

// MarkPrice текущая mark price фьючерса.
func (c *Client) MarkPrice(ctx context.Context, symbol string) (float64, error) {
	params := url.Values{}
	params.Set("symbol", symbol)

	data, err := c.Public(ctx, "/fapi/v1/premiumIndex", params, true)
	if err != nil {
		return 0, err
	}

	var r struct {
		Symbol    string `json:"symbol"`
		MarkPrice string `json:"markPrice"`
	}
	if err := sonic.Unmarshal(data, &r); err != nil {
		return 0, fmt.Errorf("MarkPrice decode: %w; body=%s", err, string(data))
	}
	px, err := strconv.ParseFloat(r.MarkPrice, 64)
	if err != nil || px <= 0 {
		return 0, fmt.Errorf("MarkPrice: bad price %q for %s", r.MarkPrice, symbol)
	}
	return px, nil
}
