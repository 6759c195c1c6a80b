package service

import (
	"sync"

	"signal_bot/internal/models"
)

type Key struct {
	OwnerID int64
	Symbol  string
	Market  models.MarketKind
	Kind    models.MonitorKind // macd | ma
}

// Point последние две точки пары рядов A (macd/fast) и B (signal/slow).
type Point struct {
	PrevA, PrevB float64
	CurA, CurB   float64
}

// Detect чистое определение пересечения по двум точкам.
func Detect(p Point) models.CrossState {
	switch {
	case p.PrevA <= p.PrevB && p.CurA > p.CurB:
		return models.CrossGolden
	case p.PrevA >= p.PrevB && p.CurA < p.CurB:
		return models.CrossDead
	}
	return models.CrossNone
}

// Engine хранит последнее состояние пересечения по ключу, только в памяти.
type Engine struct {
	mu     sync.Mutex
	states map[Key]models.CrossState
}

func New() *Engine {
	return &Engine{states: make(map[Key]models.CrossState)}
}

// Observe возвращает новое состояние и true, если сигнал надо отправить.
func (e *Engine) Observe(key Key, p Point) (models.CrossState, bool) {
	next := Detect(p)
	if next == models.CrossNone {
		return models.CrossNone, false
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	prev, ok := e.states[key]
	if !ok {
		prev = models.CrossNone
	}
	if prev == next {
		return next, false
	}
	e.states[key] = next
	return next, true
}

func (e *Engine) State(key Key) models.CrossState {
	e.mu.Lock()
	defer e.mu.Unlock()
	if s, ok := e.states[key]; ok {
		return s
	}
	return models.CrossNone
}

// Forget убирает состояния владельца.
func (e *Engine) Forget(ownerID int64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for k := range e.states {
		if k.OwnerID == ownerID {
			delete(e.states, k)
		}
	}
}
