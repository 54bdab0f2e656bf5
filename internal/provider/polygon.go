package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"ta-enrich/internal/model"
	"ta-enrich/internal/saver"
)

const polygonBaseURL = "https://api.polygon.io"

// PolygonProvider fetches daily aggregates from the Polygon REST API.
type PolygonProvider struct {
	client  *http.Client
	apiKey  string
	baseURL string
	cache   packetCache
}

// NewPolygonProvider creates a Polygon-backed DataProvider.
func NewPolygonProvider(apiKey string) (*PolygonProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("POLYGON_API_KEY not set")
	}
	return &PolygonProvider{
		client:  newHTTPClient(),
		apiKey:  apiKey,
		baseURL: polygonBaseURL,
	}, nil
}

// newHTTPClient creates an HTTP client configured for Polygon requests.
func newHTTPClient() *http.Client {
	return &http.Client{
		Transport: &http.Transport{
			TLSHandshakeTimeout: 10 * time.Second,
			DisableKeepAlives:   true,
		},
		Timeout: 60 * time.Second,
	}
}

func (p *PolygonProvider) Name() string { return "Polygon" }

func (p *PolygonProvider) Close() error { return nil }

// SetPacketCache enables persisting each fetched window under dir.
func (p *PolygonProvider) SetPacketCache(dir string, ps saver.PacketSaver) {
	p.cache = packetCache{Dir: dir, Saver: ps}
}

// barRaw is a raw daily aggregate. Volume arrives as int, float or
// scientific notation depending on the endpoint, hence flexibleInt64.
type barRaw struct {
	Timestamp int64         `json:"t"` // Unix timestamp in milliseconds
	Open      float64       `json:"o"`
	High      float64       `json:"h"`
	Low       float64       `json:"l"`
	Close     float64       `json:"c"`
	Volume    flexibleInt64 `json:"v"`
}

func (br barRaw) toBar() model.Bar {
	return model.Bar{
		Timestamp: br.Timestamp,
		Open:      br.Open,
		High:      br.High,
		Low:       br.Low,
		Close:     br.Close,
		Volume:    br.Volume.Int64(),
	}
}

// aggregatesResponse is the Polygon aggregates envelope.
type aggregatesResponse struct {
	Ticker       string   `json:"ticker"`
	ResultsCount int      `json:"resultsCount"`
	Adjusted     bool     `json:"adjusted"`
	Results      []barRaw `json:"results"`
	Status       string   `json:"status"`
}

// flexibleInt64 parses int or float (scientific notation) to int64.
type flexibleInt64 int64

func (f *flexibleInt64) UnmarshalJSON(data []byte) error {
	var floatVal float64
	if err := json.Unmarshal(data, &floatVal); err == nil {
		*f = flexibleInt64(int64(floatVal))
		return nil
	}
	var intVal int64
	if err := json.Unmarshal(data, &intVal); err == nil {
		*f = flexibleInt64(intVal)
		return nil
	}
	return fmt.Errorf("cannot parse as int64: %s", string(data))
}

func (f flexibleInt64) Int64() int64 { return int64(f) }

// FetchDailyBars requests adjusted daily aggregates for [from, to). There
// are no retries: one failed call fails the request.
func (p *PolygonProvider) FetchDailyBars(ctx context.Context, ticker string, from, to time.Time) ([]model.Bar, error) {
	rawURL := fmt.Sprintf("%s/v2/aggs/ticker/%s/range/1/day/%s/%s",
		p.baseURL, url.PathEscape(ticker), from.Format("2006-01-02"), to.Format("2006-01-02"))
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse URL: %w", err)
	}
	q := u.Query()
	q.Set("adjusted", "true")
	q.Set("sort", "asc")
	q.Set("limit", strconv.Itoa(50000))
	q.Set("apiKey", p.apiKey)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("polygon fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("polygon: status %d: %s", resp.StatusCode, string(body))
	}

	var agg aggregatesResponse
	if err := json.NewDecoder(resp.Body).Decode(&agg); err != nil {
		return nil, fmt.Errorf("polygon decode: %w", err)
	}
	if agg.ResultsCount == 0 || len(agg.Results) == 0 {
		return nil, nil
	}

	bars := make([]model.Bar, 0, len(agg.Results))
	for _, r := range agg.Results {
		bars = append(bars, r.toBar())
	}
	p.cache.save(ticker, from, to, bars)
	return bars, nil
}
