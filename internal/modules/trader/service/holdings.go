package service

import (
	"context"
	"sort"

	"signal_bot/internal/models"
)

type Holdings struct {
	System []models.ExchangePosition // открыты ботом
	Other  []models.ExchangePosition // открыты вручную
	Ledger map[string][]models.SystemPosition
}

// Holdings делит живые позиции на системные и прочие по журналу.
func (m *Manager) Holdings(ctx context.Context, ownerID int64, creds models.Credentials) (*Holdings, error) {
	positions, err := m.RefreshPositions(ctx, ownerID, creds)
	if err != nil {
		return nil, err
	}
	ledger, err := m.ledger.Positions(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	h := &Holdings{Ledger: ledger}
	for sym, p := range positions {
		if len(ledger[sym]) > 0 {
			h.System = append(h.System, p)
		} else {
			h.Other = append(h.Other, p)
		}
	}
	sort.Slice(h.System, func(i, j int) bool { return h.System[i].Symbol < h.System[j].Symbol })
	sort.Slice(h.Other, func(i, j int) bool { return h.Other[i].Symbol < h.Other[j].Symbol })
	return h, nil
}
