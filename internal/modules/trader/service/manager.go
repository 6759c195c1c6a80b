package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"signal_bot/internal/models"
	binance "signal_bot/internal/modules/binance_client/service"
)

var (
	ErrNoCredentials = errors.New("binance API credentials are not configured")
	ErrNoPosition    = errors.New("no open position")
	ErrZeroQuantity  = errors.New("order quantity rounds to zero")
)

type Exchange interface {
	SetLeverage(ctx context.Context, creds models.Credentials, symbol string, leverage int) error
	MarkPrice(ctx context.Context, symbol string) (float64, error)
	SyncTime(ctx context.Context) error
	PlaceOrder(ctx context.Context, creds models.Credentials, req binance.OrderRequest) (*binance.OrderResponse, error)
	Positions(ctx context.Context, creds models.Credentials) ([]models.ExchangePosition, error)
}

type Ledger interface {
	Append(ctx context.Context, ownerID int64, symbol string, pos models.SystemPosition) error
	Remove(ctx context.Context, ownerID int64, symbol string) error
	Positions(ctx context.Context, ownerID int64) (map[string][]models.SystemPosition, error)
}

// Manager открывает/закрывает позиции и держит последний снапшот позиций по владельцам.
type Manager struct {
	ex     Exchange
	ledger Ledger
	now    func() time.Time

	mu        sync.RWMutex
	positions map[int64]map[string]models.ExchangePosition // ownerID -> symbol -> позиция

	locksMu sync.Mutex
	locks   map[string]*sync.Mutex // owner:symbol
}

func New(ex Exchange, ledger Ledger) *Manager {
	return &Manager{
		ex:        ex,
		ledger:    ledger,
		now:       time.Now,
		positions: make(map[int64]map[string]models.ExchangePosition),
		locks:     make(map[string]*sync.Mutex),
	}
}

// Lock сериализует операции по (владелец, символ): разворот по сигналу и ручное закрытие.
func (m *Manager) Lock(ownerID int64, symbol string) func() {
	key := fmt.Sprintf("%d:%s", ownerID, symbol)

	m.locksMu.Lock()
	l, ok := m.locks[key]
	if !ok {
		l = &sync.Mutex{}
		m.locks[key] = l
	}
	m.locksMu.Unlock()

	l.Lock()
	return l.Unlock
}

// ForgetOwner сбрасывает снапшот позиций удалённого владельца.
func (m *Manager) ForgetOwner(ownerID int64) {
	m.mu.Lock()
	delete(m.positions, ownerID)
	m.mu.Unlock()
}

func (m *Manager) forget(ownerID int64, symbol string) {
	m.mu.Lock()
	delete(m.positions[ownerID], symbol)
	m.mu.Unlock()
}
