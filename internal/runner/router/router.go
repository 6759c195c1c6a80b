package router

import (
	"context"

	"signal_bot/internal/helper"
	"signal_bot/internal/models"
	binance "signal_bot/internal/modules/binance_client/service"
	"signal_bot/internal/modules/config"
	profiles "signal_bot/internal/modules/profiles/service"
	trader "signal_bot/internal/modules/trader/service"
	"signal_bot/internal/notify"
	"signal_bot/pkg/logger"
)

type ProfileSource interface {
	Get(ctx context.Context, ownerID int64) (*models.Profile, error)
}

// KlineFetcher прямой доступ к свечам, мимо кеша.
type KlineFetcher interface {
	Klines(ctx context.Context, symbol, interval string, market models.MarketKind, limit int) ([]models.Kline, error)
}

type Trader interface {
	RefreshPositions(ctx context.Context, ownerID int64, creds models.Credentials) (map[string]models.ExchangePosition, error)
	Open(ctx context.Context, req trader.OpenRequest) (*trader.OpenResult, error)
	Close(ctx context.Context, ownerID int64, creds models.Credentials, symbol string) error
	Protect(ctx context.Context, req trader.ProtectRequest) trader.ProtectResult
	Lock(ownerID int64, symbol string) func()
}

// Router решает, торговать ли по сигналу, и ведёт разворот позиции.
type Router struct {
	cfg    config.Monitor
	store  ProfileSource
	klines KlineFetcher
	trader Trader
	n      notify.Notifier
}

func New(cfg config.Monitor, store ProfileSource, klines KlineFetcher, t Trader, n notify.Notifier) *Router {
	return &Router{
		cfg:    cfg,
		store:  store,
		klines: klines,
		trader: t,
		n:      n,
	}
}

func NewRouter(
	cfg *config.Config,
	store profiles.Store,
	client *binance.Client,
	m *trader.Manager,
	n notify.Notifier,
) *Router {
	return New(cfg.Monitor, store, client, m, n)
}

// OnSignal точка входа из детектора. Профиль читаем заново: настройки могли поменяться.
func (r *Router) OnSignal(ctx context.Context, sig models.Signal) {
	p, err := r.store.Get(ctx, sig.OwnerID)
	if err != nil {
		logger.Error("router: load profile %d: %v", sig.OwnerID, err)
		return
	}

	at, ok := Eligible(p, sig)
	if !ok {
		return
	}

	if p.AutoTrade.Mode == models.TradeModeMAMACD {
		confirmed, err := r.confirmMACD(ctx, sig)
		if err != nil {
			logger.Warn("router: macd confirm %s: %v", sig.Symbol, err)
			return
		}
		if !confirmed {
			logger.Info("router: %s %s not confirmed by MACD", sig.Symbol, sig.Type)
			return
		}
	}

	// тот же замок берёт ручной /close
	unlock := r.trader.Lock(sig.OwnerID, helper.NormSymbol(sig.Symbol, models.MarketContract))
	defer unlock()

	r.execute(ctx, p, at, sig)
}

// Eligible проверяет автоторговлю, ключи, режим и наличие символа в настройках.
func Eligible(p *models.Profile, sig models.Signal) (models.AutoTradeConfig, bool) {
	if p == nil || !p.AutoTrade.Enabled || p.Credentials.Empty() {
		return models.AutoTradeConfig{}, false
	}
	// торгуем только фьючерсы
	if sig.Market != models.MarketContract {
		return models.AutoTradeConfig{}, false
	}
	if !Accepts(p.AutoTrade.Mode, sig.Monitor) {
		return models.AutoTradeConfig{}, false
	}

	if at, ok := p.AutoTrade.ForSymbol(sig.Symbol); ok {
		return at, true
	}
	return p.AutoTrade.ForSymbol(helper.NormSymbol(sig.Symbol, models.MarketContract))
}

// Accepts какие сигналы слушает режим. ma_macd реагирует на MA, MACD только подтверждает.
func Accepts(mode models.TradeMode, monitor models.MonitorKind) bool {
	switch mode {
	case models.TradeModeMA, models.TradeModeMAMACD:
		return monitor == models.MonitorMA
	case models.TradeModeMACD:
		return monitor == models.MonitorMACD
	}
	return false
}
