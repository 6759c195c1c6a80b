package models

import "time"

type PositionSide string

const (
	PositionLong  PositionSide = "LONG"
	PositionShort PositionSide = "SHORT"
)

// OrderSide закрывающая/открывающая сторона ордера на бирже.
func (s PositionSide) OrderSide() Side {
	if s == PositionShort {
		return SideSell
	}
	return SideBuy
}

func (s PositionSide) Opposite() PositionSide {
	if s == PositionLong {
		return PositionShort
	}
	return PositionLong
}

// SystemPosition запись о позиции, открытой ботом.
type SystemPosition struct {
	OrderID    int64        `json:"order_id"`
	Side       PositionSide `json:"side"`
	Quantity   float64      `json:"quantity"`
	EntryPrice float64      `json:"entry_price"`
	Leverage   int          `json:"leverage"`
	Amount     float64      `json:"amount"`
	OpenedAt   time.Time    `json:"timestamp"`
}

// ExchangePosition снапшот позиции с биржи.
type ExchangePosition struct {
	Symbol           string
	Side             PositionSide
	Leverage         int
	Quantity         float64 // со знаком
	EntryPrice       float64
	MarkPrice        float64
	UnrealizedProfit float64
}

func (p ExchangePosition) AbsQuantity() float64 {
	if p.Quantity < 0 {
		return -p.Quantity
	}
	return p.Quantity
}
