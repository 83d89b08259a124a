package polygon

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/ternarybob/alphalens/internal/common"
	"github.com/ternarybob/alphalens/internal/httpclient"
	"github.com/ternarybob/alphalens/internal/interfaces"
	"github.com/ternarybob/alphalens/internal/models"
)

var _ interfaces.MarketDataProvider = (*Provider)(nil)

// memCache is a map-backed ProviderCache for exercising the cache path.
type memCache struct {
	mu      sync.Mutex
	entries map[string]*models.CacheEntry
}

func newMemCache() *memCache {
	return &memCache{entries: make(map[string]*models.CacheEntry)}
}

func (c *memCache) Get(ctx context.Context, key string) (*models.CacheEntry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[key]
	if !ok || entry.Expired(time.Now().UTC()) {
		return nil, interfaces.ErrCacheMiss
	}
	return entry, nil
}

func (c *memCache) Set(ctx context.Context, entry *models.CacheEntry) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[entry.CacheKey] = entry
	return nil
}

func (c *memCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
	return nil
}

func (c *memCache) Sweep(ctx context.Context) (int, error) { return 0, nil }

func newTestProvider(t *testing.T, handler http.HandlerFunc) (*Provider, *memCache) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	logger := common.GetLogger()
	client := httpclient.New(logger, httpclient.WithMaxRetries(0))
	providerCache := newMemCache()
	p := New("test-key", client, providerCache, logger, WithBaseURL(server.URL))
	return p, providerCache
}

func aggsPayload(bars int) string {
	results := ""
	base := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	for i := 0; i < bars; i++ {
		if i > 0 {
			results += ","
		}
		ts := base.AddDate(0, 0, i).UnixMilli()
		results += fmt.Sprintf(`{"t":%d,"o":100.5,"h":102,"l":99,"c":%g,"v":1000000}`, ts, 101.0+float64(i))
	}
	return fmt.Sprintf(`{"status":"OK","results":[%s]}`, results)
}

func TestGetPriceHistory(t *testing.T) {
	p, _ := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("apiKey") != "test-key" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		fmt.Fprint(w, aggsPayload(3))
	})

	series, err := p.GetPriceHistory(context.Background(), "AAPL", 30)
	if err != nil {
		t.Fatalf("GetPriceHistory: %v", err)
	}
	if series.Len() != 3 {
		t.Errorf("bars = %d, want 3", series.Len())
	}
	if series.Dates[0] != "2024-01-02" {
		t.Errorf("first date = %s, want 2024-01-02", series.Dates[0])
	}
	if series.Closes[2] != 103.0 {
		t.Errorf("last close = %v, want 103.0", series.Closes[2])
	}
	if series.Volumes[0] != 1000000 {
		t.Errorf("volume = %d, want 1000000", series.Volumes[0])
	}
}

func TestGetPriceHistoryCacheHit(t *testing.T) {
	calls := 0
	p, _ := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		fmt.Fprint(w, aggsPayload(2))
	})

	ctx := context.Background()
	if _, err := p.GetPriceHistory(ctx, "AAPL", 30); err != nil {
		t.Fatalf("first fetch: %v", err)
	}
	if _, err := p.GetPriceHistory(ctx, "AAPL", 30); err != nil {
		t.Fatalf("second fetch: %v", err)
	}

	if calls != 1 {
		t.Errorf("HTTP calls = %d, want 1 (second request served from cache)", calls)
	}
}

func TestGetPriceHistoryAPIError(t *testing.T) {
	p, _ := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"status":"ERROR","error":"rate limit exceeded"}`)
	})

	_, err := p.GetPriceHistory(context.Background(), "AAPL", 30)
	var provErr *interfaces.ProviderError
	if !errors.As(err, &provErr) {
		t.Fatalf("err = %v, want *ProviderError", err)
	}
	if provErr.Provider != ProviderName {
		t.Errorf("Provider = %s, want %s", provErr.Provider, ProviderName)
	}
}

func TestGetPriceHistoryUnknownTicker(t *testing.T) {
	p, _ := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"status":"OK","results":[]}`)
	})

	_, err := p.GetPriceHistory(context.Background(), "ZZZZZ", 30)
	var invalidErr *interfaces.InvalidTickerError
	if !errors.As(err, &invalidErr) {
		t.Fatalf("err = %v, want *InvalidTickerError", err)
	}
	if invalidErr.Ticker != "ZZZZZ" {
		t.Errorf("Ticker = %s, want ZZZZZ", invalidErr.Ticker)
	}
}

func TestGetPriceHistoryServerFailure(t *testing.T) {
	p, _ := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := p.GetPriceHistory(context.Background(), "AAPL", 30)
	var provErr *interfaces.ProviderError
	if !errors.As(err, &provErr) {
		t.Fatalf("err = %v, want *ProviderError for 502", err)
	}
}

func TestGetCompanyInfo(t *testing.T) {
	p, _ := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"status":"OK","results":{"name":"Apple Inc.","sic_description":"Electronic Computers","primary_exchange":"XNAS"}}`)
	})

	info, err := p.GetCompanyInfo(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("GetCompanyInfo: %v", err)
	}
	if info.Name != "Apple Inc." || info.Industry != "Electronic Computers" {
		t.Errorf("info = %+v, want Apple Inc. / Electronic Computers", info)
	}
}

func TestGetCompanyInfoDegradesToPlaceholder(t *testing.T) {
	p, _ := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	info, err := p.GetCompanyInfo(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("GetCompanyInfo must never fail: %v", err)
	}
	if info.Name != "AAPL" {
		t.Errorf("placeholder name = %s, want AAPL", info.Name)
	}
}
