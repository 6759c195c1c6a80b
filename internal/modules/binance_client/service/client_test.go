package service

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"signal_bot/internal/helper"
	"signal_bot/internal/models"
	"signal_bot/pkg/logger"
)

func TestMain(m *testing.M) {
	logger.InitNop()
	m.Run()
}

var testCreds = models.Credentials{Key: "key-1", Secret: "secret-1"}

func newTestClient(t *testing.T, h http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(Config{SpotURL: srv.URL, FuturesURL: srv.URL, Timeout: 2 * time.Second}, NewClock())
}

// verifySignature проверяет подпись так же, как это делает биржа.
func verifySignature(t *testing.T, raw string) url.Values {
	t.Helper()
	i := strings.LastIndex(raw, "&signature=")
	if i < 0 {
		t.Fatalf("no signature in %q", raw)
	}
	payload, sig := raw[:i], raw[i+len("&signature="):]
	if want := Sign(payload, testCreds.Secret); sig != want {
		t.Fatalf("signature=%s, expected %s", sig, want)
	}
	v, err := url.ParseQuery(payload)
	if err != nil {
		t.Fatal(err)
	}
	return v
}

func TestRequestSigned(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-MBX-APIKEY") != testCreds.Key {
			t.Errorf("api key header=%q", r.Header.Get("X-MBX-APIKEY"))
		}
		var raw string
		if r.Method == http.MethodGet {
			raw = r.URL.RawQuery
		} else {
			b, _ := io.ReadAll(r.Body)
			raw = string(b)
		}
		v := verifySignature(t, raw)
		if v.Get("timestamp") == "" || v.Get("symbol") != "BTCUSDT" {
			t.Errorf("params=%v", v)
		}
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))

	for _, method := range []string{http.MethodGet, http.MethodPost} {
		params := url.Values{}
		params.Set("symbol", "BTCUSDT")
		body, err := c.Request(context.Background(), method, "/fapi/v1/order", params, testCreds, true)
		if err != nil {
			t.Fatalf("%s: %v", method, err)
		}
		if string(body) != `{"ok":true}` {
			t.Fatalf("%s body=%s", method, body)
		}
	}
}

func TestRequestResyncOnce(t *testing.T) {
	var orders, syncs atomic.Int32
	serverNow := time.Now().Add(3 * time.Second).UnixMilli()

	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v3/time":
			syncs.Add(1)
			_, _ = w.Write([]byte(`{"serverTime":` + itoa(serverNow) + `}`))
		case "/fapi/v1/order":
			orders.Add(1)
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"code":-1021,"msg":"Timestamp for this request is outside of the recvWindow."}`))
		}
	}))

	_, err := c.Request(context.Background(), http.MethodPost, "/fapi/v1/order", url.Values{}, testCreds, true)
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Code != CodeTimestamp {
		t.Fatalf("err=%v, expected -1021 APIError", err)
	}
	if orders.Load() != 2 {
		t.Fatalf("order calls=%d, expected 2", orders.Load())
	}
	if syncs.Load() != 1 {
		t.Fatalf("time syncs=%d, expected 1", syncs.Load())
	}
	if off := c.Clock().Offset(); off < 2000 {
		t.Fatalf("offset=%d, expected about 3000", off)
	}
	if Classify(err) != KindTransient {
		t.Fatalf("Classify=%v", Classify(err))
	}
}

func TestRequestResyncThenSuccess(t *testing.T) {
	var orders atomic.Int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v3/time":
			_, _ = w.Write([]byte(`{"serverTime":` + itoa(time.Now().UnixMilli()) + `}`))
		default:
			if orders.Add(1) == 1 {
				w.WriteHeader(http.StatusBadRequest)
				_, _ = w.Write([]byte(`{"code":-1022,"msg":"Signature for this request is not valid."}`))
				return
			}
			_, _ = w.Write([]byte(`{"orderId":7}`))
		}
	}))

	body, err := c.Request(context.Background(), http.MethodPost, "/fapi/v1/order", url.Values{}, testCreds, true)
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if string(body) != `{"orderId":7}` || orders.Load() != 2 {
		t.Fatalf("body=%s calls=%d", body, orders.Load())
	}
}

func TestErrorDecoding(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   APIError
		kind   Kind
	}{
		{
			name:   "known code",
			status: http.StatusBadRequest,
			body:   `{"code":-2019,"msg":"Margin is insufficient."}`,
			want:   APIError{Code: -2019, Msg: "Margin is insufficient.", HTTPStatus: 400},
			kind:   KindRejected,
		},
		{
			name:   "raw body",
			status: http.StatusBadGateway,
			body:   `<html>bad gateway</html>`,
			want:   APIError{Msg: "<html>bad gateway</html>", HTTPStatus: 502},
			kind:   KindRejected,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			_, err := c.Request(context.Background(), http.MethodGet, "/fapi/v2/positionRisk", nil, testCreds, true)
			var apiErr *APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("err=%v, expected APIError", err)
			}
			if *apiErr != tt.want {
				t.Fatalf("got %+v, expected %+v", *apiErr, tt.want)
			}
			if Classify(err) != tt.kind {
				t.Fatalf("kind=%v, expected %v", Classify(err), tt.kind)
			}
		})
	}

	friendly := (&APIError{Code: -2019, Msg: "x"}).Friendly()
	if !strings.Contains(friendly, "margin is insufficient") {
		t.Fatalf("Friendly=%q", friendly)
	}
}

func TestNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	c := New(Config{SpotURL: srv.URL, FuturesURL: srv.URL, Timeout: time.Second}, NewClock())
	_, err := c.Public(context.Background(), "/api/v3/klines", nil, false)
	if Classify(err) != KindNetwork {
		t.Fatalf("err=%v kind=%v, expected network", err, Classify(err))
	}
}

func TestKlines(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/fapi/v1/klines" {
			t.Errorf("path=%s", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("symbol") != "BTCUSDT" || q.Get("interval") != "1h" || q.Get("limit") != "2" {
			t.Errorf("query=%v", q)
		}
		if r.Header.Get("X-MBX-APIKEY") != "" || q.Get("signature") != "" {
			t.Errorf("public endpoint must not be signed")
		}
		_, _ = w.Write([]byte(`[
			[1700000000000,"100.0","101.0","99.0","100.5","10",1700003599999,"0",1,"0","0","0"],
			[1700003600000,"100.5","105.0","100.0","104.0","12",1700007199999,"0",1,"0","0","0"]
		]`))
	}))

	ks, err := c.Klines(context.Background(), "btc", "60m", models.MarketContract, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(ks) != 2 || ks[0].Close != 100.5 || ks[1].Close != 104 || ks[1].OpenTime != 1700003600000 {
		t.Fatalf("klines=%+v", ks)
	}
}

func TestPositions(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[
			{"symbol":"BTCUSDT","positionSide":"BOTH","positionAmt":"-0.010","entryPrice":"30000","markPrice":"29900","unRealizedProfit":"1.0","leverage":"10"},
			{"symbol":"ETHUSDT","positionSide":"BOTH","positionAmt":"0.000","entryPrice":"0","markPrice":"2000","unRealizedProfit":"0","leverage":"5"},
			{"symbol":"SOLUSDT","positionSide":"LONG","positionAmt":"3","entryPrice":"20","markPrice":"21","unRealizedProfit":"3","leverage":"3"}
		]`))
	}))

	ps, err := c.Positions(context.Background(), testCreds)
	if err != nil {
		t.Fatal(err)
	}
	if len(ps) != 2 {
		t.Fatalf("positions=%+v, expected 2 non-zero", ps)
	}
	if ps[0].Side != models.PositionShort || ps[0].AbsQuantity() != 0.01 || ps[0].Leverage != 10 {
		t.Fatalf("btc=%+v", ps[0])
	}
	if ps[1].Side != models.PositionLong {
		t.Fatalf("sol=%+v", ps[1])
	}
}

func TestOrderParams(t *testing.T) {
	req := OrderRequest{
		Symbol:        "BTCUSDT",
		Side:          models.SideSell,
		Type:          OrderTakeProfitMarket,
		StopPrice:     helper.RoundPrice(105),
		ClosePosition: true,
	}
	p := req.params()
	if p.Get("stopPrice") != "105.0000" || p.Get("closePosition") != "true" || p.Get("quantity") != "" {
		t.Fatalf("params=%v", p)
	}
	if id := p.Get("newClientOrderId"); id == "" || len(id) > 36 {
		t.Fatalf("client order id=%q", id)
	}
}

func TestClockSync(t *testing.T) {
	base := time.UnixMilli(1_700_000_000_000)
	c := NewClockAt(func() time.Time { return base })
	err := c.Sync(context.Background(), func(ctx context.Context) (int64, error) {
		return base.UnixMilli() + 1500, nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if c.Offset() != 1500 || c.Now() != base.UnixMilli()+1500 {
		t.Fatalf("offset=%d now=%d", c.Offset(), c.Now())
	}
}

func itoa(v int64) string { return strconv.FormatInt(v, 10) }
