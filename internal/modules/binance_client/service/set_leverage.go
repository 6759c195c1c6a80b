package service

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"signal_bot/internal/models"
)

func (c *Client) SetLeverage(ctx context.Context, creds models.Credentials, symbol string, leverage int) error {
	params := url.Values{}
	params.Set("symbol", symbol)
	params.Set("leverage", strconv.Itoa(leverage))

	_, err := c.Request(ctx, http.MethodPost, "/fapi/v1/leverage", params, creds, true)
	return err
}
