package service

import (
	"context"
	"errors"
	"time"

	"signal_bot/internal/models"
)

var ErrNotFound = errors.New("profile not found")

// Store хранилище профилей. Update выполняет read-modify-write атомарно для владельца.
type Store interface {
	Get(ctx context.Context, ownerID int64) (*models.Profile, error)
	List(ctx context.Context) ([]*models.Profile, error)
	Save(ctx context.Context, p *models.Profile) error
	Delete(ctx context.Context, ownerID int64) error
	Update(ctx context.Context, ownerID int64, fn func(p *models.Profile) error) error
}

// Ledger журнал позиций, открытых ботом.
type Ledger struct {
	store Store
	now   func() time.Time
}

func NewLedger(store Store) *Ledger {
	return &Ledger{store: store, now: time.Now}
}

func (l *Ledger) Append(ctx context.Context, ownerID int64, symbol string, pos models.SystemPosition) error {
	if pos.OpenedAt.IsZero() {
		pos.OpenedAt = l.now()
	}
	return l.store.Update(ctx, ownerID, func(p *models.Profile) error {
		p.SystemPositions[symbol] = append(p.SystemPositions[symbol], pos)
		return nil
	})
}

func (l *Ledger) Remove(ctx context.Context, ownerID int64, symbol string) error {
	return l.store.Update(ctx, ownerID, func(p *models.Profile) error {
		delete(p.SystemPositions, symbol)
		return nil
	})
}

func (l *Ledger) Positions(ctx context.Context, ownerID int64) (map[string][]models.SystemPosition, error) {
	p, err := l.store.Get(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return p.SystemPositions, nil
}
