package service

import (
	"context"

	"signal_bot/internal/models"
	"signal_bot/pkg/logger"
)

// RefreshPositions целиком заменяет снапшот владельца, без merge.
func (m *Manager) RefreshPositions(ctx context.Context, ownerID int64, creds models.Credentials) (map[string]models.ExchangePosition, error) {
	if creds.Empty() {
		return nil, ErrNoCredentials
	}

	positions, err := m.ex.Positions(ctx, creds)
	if err != nil {
		return nil, err
	}

	next := make(map[string]models.ExchangePosition, len(positions))
	for _, p := range positions {
		if p.Quantity == 0 {
			continue
		}
		// в hedge-режиме по символу может прийти LONG и SHORT, оставляем больший
		if prev, ok := next[p.Symbol]; ok {
			logger.Warn("positions owner=%d %s: both %s and %s reported, hedge mode is not supported",
				ownerID, p.Symbol, prev.Side, p.Side)
			if prev.AbsQuantity() >= p.AbsQuantity() {
				continue
			}
		}
		next[p.Symbol] = p
	}

	m.mu.Lock()
	m.positions[ownerID] = next
	m.mu.Unlock()

	out := make(map[string]models.ExchangePosition, len(next))
	for k, v := range next {
		out[k] = v
	}
	return out, nil
}
