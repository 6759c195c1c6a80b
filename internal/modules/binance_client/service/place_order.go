package service

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"signal_bot/internal/models"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type OrderType string

const (
	OrderMarket           OrderType = "MARKET"
	OrderStopMarket       OrderType = "STOP_MARKET"
	OrderTakeProfitMarket OrderType = "TAKE_PROFIT_MARKET"
)

type OrderRequest struct {
	Symbol        string
	Side          models.Side
	Type          OrderType
	Quantity      decimal.Decimal // не нужен при ClosePosition
	StopPrice     decimal.Decimal
	ReduceOnly    bool
	ClosePosition bool
}

type OrderResponse struct {
	Symbol        string `json:"symbol"`
	OrderID       int64  `json:"orderId"`
	ClientOrderID string `json:"clientOrderId"`
	Status        string `json:"status"`
	AvgPrice      string `json:"avgPrice"`
}

func (r OrderRequest) params() url.Values {
	p := url.Values{}
	p.Set("symbol", r.Symbol)
	p.Set("side", string(r.Side))
	p.Set("type", string(r.Type))
	if !r.ClosePosition && !r.Quantity.IsZero() {
		p.Set("quantity", r.Quantity.String())
	}
	if !r.StopPrice.IsZero() {
		p.Set("stopPrice", r.StopPrice.StringFixed(4))
	}
	if r.ReduceOnly {
		p.Set("reduceOnly", "true")
	}
	if r.ClosePosition {
		p.Set("closePosition", "true")
	}
	p.Set("newClientOrderId", "sb-"+uuid.NewString()[:24])
	return p
}

// PlaceOrder ордер на /fapi/v1/order.
func (c *Client) PlaceOrder(ctx context.Context, creds models.Credentials, req OrderRequest) (*OrderResponse, error) {
	data, err := c.Request(ctx, http.MethodPost, "/fapi/v1/order", req.params(), creds, true)
	if err != nil {
		return nil, err
	}

	var r OrderResponse
	if err := sonic.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("PlaceOrder decode: %w; body=%s", err, string(data))
	}
	return &r, nil
}
