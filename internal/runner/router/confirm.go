package router

import (
	"context"
	"fmt"

	"signal_bot/internal/helper"
	"signal_bot/internal/indicator"
	"signal_bot/internal/models"
)

// confirmMACD свежая проверка MACD > signal на дефолтном интервале.
// Идёт напрямую в биржу: у MA-детекции тот же ключ кеша, и кеш вернул бы её же снапшот.
func (r *Router) confirmMACD(ctx context.Context, sig models.Signal) (bool, error) {
	klines, err := r.klines.Klines(ctx, sig.Symbol, helper.NormTF(r.cfg.DefaultInterval), sig.Market, r.cfg.CrossLimit)
	if err != nil {
		return false, err
	}
	closes := models.Closes(klines)
	if len(closes) < r.cfg.MACDMinRows {
		return false, fmt.Errorf("%s: %w", sig.Symbol, indicator.ErrInsufficientData)
	}

	res, err := indicator.MACD(closes, indicator.MACDFast, indicator.MACDSlow, indicator.MACDSignal)
	if err != nil {
		return false, err
	}
	_, line, ok := indicator.Last2(res.Line)
	if !ok {
		return false, indicator.ErrInsufficientData
	}
	_, signal, _ := indicator.Last2(res.Signal)
	return line > signal, nil
}
