package service

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"signal_bot/internal/models"

	"github.com/bytedance/sonic"
)

type PositionRisk struct {
	Symbol           string `json:"symbol"`
	PositionSide     string `json:"positionSide"`
	PositionAmt      string `json:"positionAmt"`
	EntryPrice       string `json:"entryPrice"`
	MarkPrice        string `json:"markPrice"`
	UnRealizedProfit string `json:"unRealizedProfit"`
	Leverage         string `json:"leverage"`
}

// Positions ненулевые позиции аккаунта.
func (c *Client) Positions(ctx context.Context, creds models.Credentials) ([]models.ExchangePosition, error) {
	data, err := c.Request(ctx, http.MethodGet, "/fapi/v2/positionRisk", nil, creds, true)
	if err != nil {
		return nil, err
	}

	var rows []PositionRisk
	if err := sonic.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("Positions decode: %w; body=%s", err, string(data))
	}

	out := make([]models.ExchangePosition, 0, len(rows))
	for _, r := range rows {
		amt := parseFloat(r.PositionAmt)
		if amt == 0 {
			continue
		}
		lev, _ := strconv.Atoi(r.Leverage)
		out = append(out, models.ExchangePosition{
			Symbol:           r.Symbol,
			Side:             sideOf(r.PositionSide, amt),
			Leverage:         lev,
			Quantity:         amt,
			EntryPrice:       parseFloat(r.EntryPrice),
			MarkPrice:        parseFloat(r.MarkPrice),
			UnrealizedProfit: parseFloat(r.UnRealizedProfit),
		})
	}
	return out, nil
}

// sideOf в one-way режиме (BOTH или пусто) сторону даёт знак количества.
func sideOf(positionSide string, amt float64) models.PositionSide {
	switch positionSide {
	case "LONG":
		return models.PositionLong
	case "SHORT":
		return models.PositionShort
	}
	if amt > 0 {
		return models.PositionLong
	}
	return models.PositionShort
}

func parseFloat(s string) float64 {
	f, _ := strconv.ParseFloat(s, 64)
	return f
}
