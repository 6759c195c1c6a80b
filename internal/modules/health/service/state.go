package service

import (
	"sync/atomic"
	"time"

	"signal_bot/internal/runner"
)

type Scheduler interface {
	Status() runner.Status
}

type Clock interface {
	Offset() int64
	LastSync() time.Time
}

type State struct {
	ready     atomic.Bool
	startedAt time.Time

	scheduler Scheduler
	clock     Clock
}

func NewState(s Scheduler, c Clock) *State {
	return &State{startedAt: time.Now(), scheduler: s, clock: c}
}

func (s *State) SetReady(v bool) { s.ready.Store(v) }
func (s *State) Ready() bool     { return s.ready.Load() }

func (s *State) Uptime() time.Duration { return time.Since(s.startedAt) }

// Snapshot отдаётся в /healthz.
type Snapshot struct {
	Ready         bool  `json:"ready"`
	UptimeSec     int64 `json:"uptimeSec"`
	LastPassUnix  int64 `json:"lastPassUnix"`
	LastTasks     int   `json:"lastTasks"`
	HighFrequency bool  `json:"highFrequency"`
	Marks         int   `json:"marks"`
	ClockOffsetMs int64 `json:"clockOffsetMs"`
	LastSyncUnix  int64 `json:"lastSyncUnix"`
}

func (s *State) Snapshot() Snapshot {
	st := s.scheduler.Status()
	return Snapshot{
		Ready:         s.Ready(),
		UptimeSec:     int64(s.Uptime().Seconds()),
		LastPassUnix:  unix(st.LastPass),
		LastTasks:     st.LastTasks,
		HighFrequency: st.HighFrequency,
		Marks:         st.Marks,
		ClockOffsetMs: s.clock.Offset(),
		LastSyncUnix:  unix(s.clock.LastSync()),
	}
}

func unix(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.Unix()
}
