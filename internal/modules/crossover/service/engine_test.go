package service

import (
	"testing"

	"signal_bot/internal/models"
)

func TestDetect(t *testing.T) {
	tests := []struct {
		name string
		p    Point
		want models.CrossState
	}{
		{"upward cross", Point{PrevA: 1, PrevB: 2, CurA: 3, CurB: 2}, models.CrossGolden},
		{"upward from touch", Point{PrevA: 2, PrevB: 2, CurA: 3, CurB: 2}, models.CrossGolden},
		{"downward cross", Point{PrevA: 3, PrevB: 2, CurA: 1, CurB: 2}, models.CrossDead},
		{"downward from touch", Point{PrevA: 2, PrevB: 2, CurA: 1, CurB: 2}, models.CrossDead},
		{"still above", Point{PrevA: 3, PrevB: 2, CurA: 4, CurB: 2}, models.CrossNone},
		{"still below", Point{PrevA: 1, PrevB: 2, CurA: 0, CurB: 2}, models.CrossNone},
		{"touching now", Point{PrevA: 1, PrevB: 2, CurA: 2, CurB: 2}, models.CrossNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Detect(tt.p); got != tt.want {
				t.Fatalf("Detect(%+v)=%s, expected %s", tt.p, got, tt.want)
			}
		})
	}
}

func TestObserveEdgeTriggered(t *testing.T) {
	e := New()
	key := Key{OwnerID: 1, Symbol: "BTCUSDT", Market: models.MarketContract, Kind: models.MonitorMACD}
	up := Point{PrevA: 1, PrevB: 2, CurA: 3, CurB: 2}

	state, fired := e.Observe(key, up)
	if !fired || state != models.CrossGolden {
		t.Fatalf("first cross: state=%s fired=%v", state, fired)
	}

	// тот же финальный срез ещё раз
	if _, fired := e.Observe(key, up); fired {
		t.Fatal("repeated observation fired again")
	}
	if _, fired := e.Observe(key, Point{PrevA: 3, PrevB: 2, CurA: 4, CurB: 2}); fired {
		t.Fatal("no-cross observation fired")
	}
	if e.State(key) != models.CrossGolden {
		t.Fatalf("state=%s", e.State(key))
	}

	state, fired = e.Observe(key, Point{PrevA: 4, PrevB: 2, CurA: 1, CurB: 2})
	if !fired || state != models.CrossDead {
		t.Fatalf("reverse cross: state=%s fired=%v", state, fired)
	}
}

func TestObserveKeysIndependent(t *testing.T) {
	e := New()
	up := Point{PrevA: 1, PrevB: 2, CurA: 3, CurB: 2}

	macd := Key{OwnerID: 1, Symbol: "BTCUSDT", Market: models.MarketSpot, Kind: models.MonitorMACD}
	ma := Key{OwnerID: 1, Symbol: "BTCUSDT", Market: models.MarketSpot, Kind: models.MonitorMA}
	other := Key{OwnerID: 2, Symbol: "BTCUSDT", Market: models.MarketSpot, Kind: models.MonitorMACD}

	for _, k := range []Key{macd, ma, other} {
		if _, fired := e.Observe(k, up); !fired {
			t.Fatalf("key %+v did not fire", k)
		}
	}

	e.Forget(1)
	if e.State(macd) != models.CrossNone || e.State(other) != models.CrossGolden {
		t.Fatalf("Forget(1) wrong: macd=%s other=%s", e.State(macd), e.State(other))
	}
}
