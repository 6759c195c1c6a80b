package service

import (
	"context"
	"fmt"

	"github.com/bytedance/sonic"
)

// ServerTime время биржи, мс.
func (c *Client) ServerTime(ctx context.Context) (int64, error) {
	data, err := c.Public(ctx, "/api/v3/time", nil, false)
	if err != nil {
		return 0, err
	}
	var r struct {
		ServerTime int64 `json:"serverTime"`
	}
	if err := sonic.Unmarshal(data, &r); err != nil {
		return 0, fmt.Errorf("ServerTime decode: %w; body=%s", err, string(data))
	}
	return r.ServerTime, nil
}
