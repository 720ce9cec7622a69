package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/rickgao/compound-data/internal/market"
	"github.com/rickgao/compound-data/internal/writer"
)

type fakePinger struct{ err error }

func (f fakePinger) Ping(ctx context.Context) error { return f.err }

type fakeMarkets struct {
	markets []market.TokenMarket
	last    time.Time
	err     error
}

func (f fakeMarkets) Markets() []market.TokenMarket  { return f.markets }
func (f fakeMarkets) LastRefresh() time.Time         { return f.last }
func (f fakeMarkets) LastRefreshError() error        { return f.err }

type fakeSnapshots struct {
	rows []writer.SnapshotRow
	err  error
}

func (f fakeSnapshots) Latest(ctx context.Context) ([]writer.SnapshotRow, error) {
	return f.rows, f.err
}

func getJSON(t *testing.T, h http.Handler, path string) (int, map[string]any) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))

	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode %s: %v", path, err)
	}
	return rec.Code, body
}

func TestHealth(t *testing.T) {
	usdc := market.TokenMarket{
		MarketAddress:    common.HexToAddress("0x39aa39c021dfbae8fac545936693ac917d5e7563"),
		UnderlyingSymbol: "USDC",
	}

	tests := []struct {
		name       string
		db         fakePinger
		markets    fakeMarkets
		wantCode   int
		wantStatus string
	}{
		{
			name:       "healthy",
			markets:    fakeMarkets{markets: []market.TokenMarket{usdc}, last: time.Now()},
			wantCode:   http.StatusOK,
			wantStatus: "healthy",
		},
		{
			name:       "never refreshed",
			markets:    fakeMarkets{markets: []market.TokenMarket{usdc}},
			wantCode:   http.StatusOK,
			wantStatus: "degraded",
		},
		{
			name:       "swallowed refresh error",
			markets:    fakeMarkets{markets: []market.TokenMarket{usdc}, last: time.Now(), err: errors.New("execution reverted")},
			wantCode:   http.StatusOK,
			wantStatus: "degraded",
		},
		{
			name:       "database down",
			db:         fakePinger{err: errors.New("connection refused")},
			markets:    fakeMarkets{last: time.Now()},
			wantCode:   http.StatusServiceUnavailable,
			wantStatus: "unhealthy",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newRouter(tt.db, tt.markets, fakeSnapshots{}, nil)
			code, body := getJSON(t, h, "/health")
			if code != tt.wantCode {
				t.Errorf("code = %d, want %d", code, tt.wantCode)
			}
			if body["status"] != tt.wantStatus {
				t.Errorf("status = %v, want %s", body["status"], tt.wantStatus)
			}
		})
	}
}

func TestMarketsEndpoint(t *testing.T) {
	markets := fakeMarkets{markets: []market.TokenMarket{
		{MarketAddress: common.HexToAddress("0x39aa39c021dfbae8fac545936693ac917d5e7563"), UnderlyingSymbol: "USDC"},
		{MarketAddress: common.HexToAddress("0x5d3a536e4d6dbd6114cc1ead35777bab948e3643"), UnderlyingSymbol: "DAI"},
	}}

	h := newRouter(fakePinger{}, markets, fakeSnapshots{}, nil)
	code, body := getJSON(t, h, "/markets")
	if code != http.StatusOK {
		t.Fatalf("code = %d, want 200", code)
	}
	list, ok := body["markets"].([]any)
	if !ok || len(list) != 2 {
		t.Fatalf("markets = %v", body["markets"])
	}
	first := list[0].(map[string]any)
	if first["underlyingSymbol"] != "USDC" || first["marketTokenPrice"] != "0" {
		t.Errorf("first market = %v", first)
	}
}

func TestLatestEndpoint(t *testing.T) {
	snapshots := fakeSnapshots{rows: []writer.SnapshotRow{{UnderlyingSymbol: "USDC"}}}
	h := newRouter(fakePinger{}, fakeMarkets{}, snapshots, nil)

	code, body := getJSON(t, h, "/markets/latest")
	if code != http.StatusOK {
		t.Fatalf("code = %d, want 200", code)
	}
	if body["count"] != float64(1) {
		t.Errorf("count = %v, want 1", body["count"])
	}

	h = newRouter(fakePinger{}, fakeMarkets{}, fakeSnapshots{err: errors.New("query: timeout")}, nil)
	code, body = getJSON(t, h, "/markets/latest")
	if code != http.StatusInternalServerError {
		t.Errorf("code = %d, want 500", code)
	}
	if body["error"] != "query: timeout" {
		t.Errorf("error = %v", body["error"])
	}
}
