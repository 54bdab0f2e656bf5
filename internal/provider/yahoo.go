package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"

	"ta-enrich/internal/model"
	"ta-enrich/internal/saver"
)

const yahooBaseURL = "https://query1.finance.yahoo.com"

// YahooProvider fetches daily bars from the Yahoo Finance v8 chart API.
type YahooProvider struct {
	client *resty.Client
	cache  packetCache
}

// NewYahooProvider creates a Yahoo-backed DataProvider.
func NewYahooProvider() *YahooProvider {
	client := resty.New().
		SetBaseURL(yahooBaseURL).
		SetTimeout(30 * time.Second).
		SetHeader("User-Agent", "Mozilla/5.0")
	return &YahooProvider{client: client}
}

func (p *YahooProvider) Name() string { return "Yahoo" }

func (p *YahooProvider) Close() error { return nil }

// SetPacketCache enables persisting each fetched window under dir.
func (p *YahooProvider) SetPacketCache(dir string, ps saver.PacketSaver) {
	p.cache = packetCache{Dir: dir, Saver: ps}
}

// yahooChart is the response structure from the Yahoo chart API. Null
// entries (holidays, suspensions) decode to nil pointers.
type yahooChart struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []*float64 `json:"open"`
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Close  []*float64 `json:"close"`
					Volume []*int64   `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// FetchDailyBars requests [from, to) daily bars. Unknown tickers and empty
// ranges yield an empty series; transport and schema problems are errors.
func (p *YahooProvider) FetchDailyBars(ctx context.Context, ticker string, from, to time.Time) ([]model.Bar, error) {
	resp, err := p.client.R().
		SetContext(ctx).
		SetPathParam("ticker", ticker).
		SetQueryParams(map[string]string{
			"interval": "1d",
			"period1":  strconv.FormatInt(from.Unix(), 10),
			"period2":  strconv.FormatInt(to.Unix(), 10),
		}).
		Get("/v8/finance/chart/{ticker}")
	if err != nil {
		return nil, fmt.Errorf("yahoo fetch: %w", err)
	}
	if resp.StatusCode() == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("yahoo: status %d: %s", resp.StatusCode(), resp.String())
	}

	var chart yahooChart
	if err := json.Unmarshal(resp.Body(), &chart); err != nil {
		return nil, fmt.Errorf("yahoo decode: %w", err)
	}
	if chart.Chart.Error != nil {
		return nil, fmt.Errorf("yahoo api error: %s", chart.Chart.Error.Description)
	}
	if len(chart.Chart.Result) == 0 || len(chart.Chart.Result[0].Timestamp) == 0 {
		return nil, nil
	}
	result := chart.Chart.Result[0]
	if len(result.Indicators.Quote) == 0 {
		return nil, fmt.Errorf("yahoo: response missing quote data for %s", ticker)
	}
	quote := result.Indicators.Quote[0]
	n := len(result.Timestamp)
	if len(quote.Open) != n || len(quote.High) != n || len(quote.Low) != n ||
		len(quote.Close) != n || len(quote.Volume) != n {
		return nil, fmt.Errorf("yahoo: incomplete OHLCV arrays for %s", ticker)
	}

	bars := make([]model.Bar, 0, n)
	for i, ts := range result.Timestamp {
		if quote.Open[i] == nil || quote.High[i] == nil || quote.Low[i] == nil ||
			quote.Close[i] == nil || quote.Volume[i] == nil {
			continue // null bars (holidays etc.)
		}
		bars = append(bars, model.Bar{
			Timestamp: ts * 1000,
			Open:      *quote.Open[i],
			High:      *quote.High[i],
			Low:       *quote.Low[i],
			Close:     *quote.Close[i],
			Volume:    *quote.Volume[i],
		})
	}
	sort.Slice(bars, func(i, j int) bool { return bars[i].Timestamp < bars[j].Timestamp })
	p.cache.save(ticker, from, to, bars)
	return bars, nil
}
