package models

import (
	"strings"
)

// ProfileVersion текущая версия формата профиля.
const ProfileVersion = 2

type MarketKind string

const (
	MarketSpot     MarketKind = "spot"
	MarketContract MarketKind = "contract"
)

type MonitorKind string

const (
	MonitorPrice MonitorKind = "price"
	MonitorMACD  MonitorKind = "macd"
	MonitorMA    MonitorKind = "ma"
)

type TradeMode string

const (
	TradeModeNone   TradeMode = ""
	TradeModeMA     TradeMode = "ma"
	TradeModeMACD   TradeMode = "macd"
	TradeModeMAMACD TradeMode = "ma_macd"
)

// WatchEntry одна отслеживаемая пара.
type WatchEntry struct {
	Symbol    string      `json:"symbol"`
	Market    MarketKind  `json:"type"`
	Monitor   MonitorKind `json:"monitor"`
	Interval  string      `json:"interval,omitempty"`  // только для price
	Threshold float64     `json:"threshold,omitempty"` // только для price, %
}

type Monitors struct {
	Price bool `json:"price"`
	MACD  bool `json:"macd"`
	MA    bool `json:"ma"`
}

func (m Monitors) Enabled(kind MonitorKind) bool {
	switch kind {
	case MonitorPrice:
		return m.Price
	case MonitorMACD:
		return m.MACD
	case MonitorMA:
		return m.MA
	}
	return false
}

// AutoTradeConfig настройки автоторговли по символу.
type AutoTradeConfig struct {
	Symbol   string  `json:"symbol"`
	Leverage int     `json:"leverage"`
	Amount   float64 `json:"amount"` // notional, USDT
	TP       float64 `json:"tp"`     // %, 0 = выкл
	SL       float64 `json:"sl"`     // %, 0 = выкл
}

type AutoTrade struct {
	Enabled bool              `json:"enabled"`
	Mode    TradeMode         `json:"mode"`
	Symbols []AutoTradeConfig `json:"symbols"`
}

func (a AutoTrade) ForSymbol(symbol string) (AutoTradeConfig, bool) {
	for _, s := range a.Symbols {
		if strings.EqualFold(s.Symbol, symbol) {
			return s, true
		}
	}
	return AutoTradeConfig{}, false
}

type Credentials struct {
	Key    string `json:"key"`
	Secret string `json:"secret"`
}

func (c Credentials) Empty() bool { return c.Key == "" || c.Secret == "" }

// Profile хранит данные пользователя.
type Profile struct {
	Version int   `json:"version"`
	OwnerID int64 `json:"owner_id"` // Telegram chat/user ID

	Active    bool         `json:"active"`
	Watches   []WatchEntry `json:"symbols"`
	Monitors  Monitors     `json:"monitors"`
	AutoTrade AutoTrade    `json:"auto_trading"`

	Credentials Credentials `json:"binance_api"`

	// symbol -> позиции, открытые ботом
	SystemPositions map[string][]SystemPosition `json:"system_positions"`
}

func NewProfile(ownerID int64) *Profile {
	p := &Profile{OwnerID: ownerID}
	p.Normalize()
	return p
}

// Normalize приводит запись из хранилища к текущему формату.
func (p *Profile) Normalize() {
	if p.SystemPositions == nil {
		p.SystemPositions = make(map[string][]SystemPosition)
	}

	for i := range p.Watches {
		w := &p.Watches[i]
		w.Symbol = strings.ToUpper(strings.TrimSpace(w.Symbol))
		switch strings.ToLower(string(w.Market)) {
		case "futures", "contract":
			w.Market = MarketContract
		default:
			w.Market = MarketSpot
		}
		if w.Monitor == "" {
			w.Monitor = MonitorPrice
		}
		if w.Monitor == MonitorPrice && w.Interval == "" {
			w.Interval = "15m"
		}
	}

	for i := range p.AutoTrade.Symbols {
		p.AutoTrade.Symbols[i].Symbol = strings.ToUpper(strings.TrimSpace(p.AutoTrade.Symbols[i].Symbol))
	}

	p.Version = ProfileVersion
}
