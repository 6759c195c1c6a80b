package notify

import (
	"context"

	"signal_bot/pkg/logger"
)

// Notifier отправка сообщения владельцу. Best-effort: ошибки логирует сам отправитель.
type Notifier interface {
	Notify(ctx context.Context, ownerID int64, text string)
}

// Stdout — заглушка, всё пишет в лог.
type Stdout struct{}

func NewStdout() *Stdout { return &Stdout{} }

func (s *Stdout) Notify(ctx context.Context, ownerID int64, text string) {
	logger.Info("notify owner=%d: %s", ownerID, text)
}

// Recorder складывает сообщения в память, для тестов.
type Recorder struct {
	ch chan Message
}

type Message struct {
	OwnerID int64
	Text    string
}

func NewRecorder(size int) *Recorder {
	return &Recorder{ch: make(chan Message, size)}
}

func (r *Recorder) Notify(ctx context.Context, ownerID int64, text string) {
	select {
	case r.ch <- Message{OwnerID: ownerID, Text: text}:
	default:
	}
}

// Drain забирает всё накопленное.
func (r *Recorder) Drain() []Message {
	var out []Message
	for {
		select {
		case m := <-r.ch:
			out = append(out, m)
		default:
			return out
		}
	}
}
