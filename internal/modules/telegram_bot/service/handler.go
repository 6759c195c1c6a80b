package service

import (
	"context"
	"errors"
	"strings"

	"signal_bot/internal/helper"
	"signal_bot/internal/models"
	binance "signal_bot/internal/modules/binance_client/service"
	profiles "signal_bot/internal/modules/profiles/service"
	"signal_bot/pkg/logger"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func (t *Telegram) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	msg := update.Message
	if msg == nil || !msg.IsCommand() {
		return
	}
	chatID := msg.Chat.ID
	if !t.allowed(chatID) {
		logger.Warn("telegram: chat %d not allowed", chatID)
		return
	}

	var (
		reply string
		err   error
	)
	switch msg.Command() {
	case "start":
		reply, err = t.setActive(ctx, chatID, true)
	case "stop":
		reply, err = t.setActive(ctx, chatID, false)
	case "status":
		reply, err = t.status(ctx, chatID)
	case "close":
		reply, err = t.closePosition(ctx, chatID, msg.CommandArguments())
	case "delete":
		reply, err = t.removeProfile(ctx, chatID)
	default:
		reply = helpText
	}
	if err != nil {
		logger.Error("telegram /%s chat=%d: %v", msg.Command(), chatID, err)
		reply = "❗️ " + binance.Reason(err)
	}
	t.Notify(ctx, chatID, reply)
}

const helpText = "Команды:\n/start — включить мониторинг\n/stop — выключить\n/status — настройки и позиции\n/close SYMBOL — закрыть позицию\n/delete — удалить профиль"

// setActive создаёт профиль при первом /start.
func (t *Telegram) setActive(ctx context.Context, chatID int64, active bool) (string, error) {
	err := t.store.Update(ctx, chatID, func(p *models.Profile) error {
		p.Active = active
		return nil
	})
	if errors.Is(err, profiles.ErrNotFound) {
		p := models.NewProfile(chatID)
		p.Active = active
		err = t.store.Save(ctx, p)
	}
	if err != nil {
		return "", err
	}
	if active {
		return "▶️ Мониторинг включён", nil
	}
	return "⏹ Мониторинг выключен", nil
}

func (t *Telegram) status(ctx context.Context, chatID int64) (string, error) {
	p, err := t.store.Get(ctx, chatID)
	if errors.Is(err, profiles.ErrNotFound) {
		return "Профиль не найден, отправь /start", nil
	}
	if err != nil {
		return "", err
	}

	text := formatProfile(p, t.cfg.Monitor.DefaultInterval)
	if p.Credentials.Empty() {
		return text + "\n\n🔑 API-ключи Binance не заданы", nil
	}

	h, err := t.trader.Holdings(ctx, chatID, p.Credentials)
	if err != nil {
		return text + "\n\n⚠️ Позиции недоступны: " + binance.Reason(err), nil
	}
	return text + "\n\n" + formatHoldings(h), nil
}

func (t *Telegram) closePosition(ctx context.Context, chatID int64, args string) (string, error) {
	symbol := strings.TrimSpace(args)
	if symbol == "" {
		return "Укажи символ: /close BTCUSDT", nil
	}
	symbol = helper.NormSymbol(symbol, models.MarketContract)

	p, err := t.store.Get(ctx, chatID)
	if err != nil {
		return "", err
	}
	unlock := t.trader.Lock(chatID, symbol)
	defer unlock()

	if err := t.trader.Close(ctx, chatID, p.Credentials, symbol); err != nil {
		return "", err
	}
	return "✅ " + symbol + ": позиция закрыта", nil
}

// removeProfile удаляет профиль и всё, что держится в памяти по владельцу.
// Журнал позиций живёт в профиле и уходит вместе с ним.
func (t *Telegram) removeProfile(ctx context.Context, chatID int64) (string, error) {
	err := t.store.Delete(ctx, chatID)
	if errors.Is(err, profiles.ErrNotFound) {
		return "Профиль не найден", nil
	}
	if err != nil {
		return "", err
	}
	t.engine.Forget(chatID)
	t.trader.ForgetOwner(chatID)
	return "🗑 Профиль удалён, мониторинг остановлен", nil
}
