package models

import "time"

type CrossState string

const (
	CrossNone   CrossState = "none"
	CrossGolden CrossState = "golden"
	CrossDead   CrossState = "dead"
)

// Side как на бирже: "BUY"/"SELL".
type Side string

const (
	SideNone Side = ""
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

func (s Side) Opposite() Side {
	if s == SideBuy {
		return SideSell
	}
	return SideBuy
}

// Signal пересечение, найденное детектором.
type Signal struct {
	OwnerID int64
	Symbol  string
	Market  MarketKind
	Type    CrossState  // golden | dead
	Monitor MonitorKind // macd | ma
	Price   float64
	At      time.Time
}

// Side направление позиции для сигнала.
func (s Signal) Side() PositionSide {
	if s.Type == CrossGolden {
		return PositionLong
	}
	return PositionShort
}

type Kline struct {
	OpenTime  int64
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    float64
	CloseTime int64
}

func Closes(klines []Kline) []float64 {
	out := make([]float64, len(klines))
	for i, k := range klines {
		out[i] = k.Close
	}
	return out
}
