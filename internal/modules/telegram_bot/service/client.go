package service

import (
	"context"
	"slices"

	"signal_bot/internal/models"
	"signal_bot/internal/modules/config"
	profiles "signal_bot/internal/modules/profiles/service"
	trader "signal_bot/internal/modules/trader/service"
	"signal_bot/pkg/logger"

	tgbot "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type Trader interface {
	Holdings(ctx context.Context, ownerID int64, creds models.Credentials) (*trader.Holdings, error)
	Close(ctx context.Context, ownerID int64, creds models.Credentials, symbol string) error
	Lock(ownerID int64, symbol string) func()
	ForgetOwner(ownerID int64)
}

// Forgetter состояние пересечений владельца.
type Forgetter interface {
	Forget(ownerID int64)
}

// Telegram отправка уведомлений и несколько служебных команд.
type Telegram struct {
	bot    *tgbot.BotAPI
	cfg    *config.Config
	store  profiles.Store
	trader Trader
	engine Forgetter
}

func NewTelegram(cfg *config.Config, store profiles.Store, t Trader, engine Forgetter) (*Telegram, error) {
	b, err := tgbot.NewBotAPI(cfg.Telegram.Token)
	if err != nil {
		return nil, err
	}
	logger.Info("telegram authorized as @%s", b.Self.UserName)

	return &Telegram{
		bot:    b,
		cfg:    cfg,
		store:  store,
		trader: t,
		engine: engine,
	}, nil
}

func (t *Telegram) Send(ctx context.Context, chatID int64, msg string) (tgbot.Message, error) {
	return t.bot.Send(tgbot.NewMessage(chatID, msg))
}

// Notify best-effort: ошибку только логируем.
func (t *Telegram) Notify(ctx context.Context, ownerID int64, text string) {
	if _, err := t.Send(ctx, ownerID, text); err != nil {
		logger.Error("telegram send to %d: %v", ownerID, err)
	}
}

// allowed пустой список chat_ids пускает всех.
func (t *Telegram) allowed(chatID int64) bool {
	return len(t.cfg.Telegram.ChatIDs) == 0 || slices.Contains(t.cfg.Telegram.ChatIDs, chatID)
}

// Start ...
func (t *Telegram) Start(ctx context.Context) {
	u := tgbot.NewUpdate(0)
	u.Timeout = 30
	updates := t.bot.GetUpdatesChan(u)
	go func() {
		for update := range updates {
			t.handleUpdate(ctx, update)
		}
	}()
}

func (t *Telegram) Stop() {
	t.bot.StopReceivingUpdates()
}
