package enrich

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"ta-enrich/internal/model"
)

// LoadRequests reads the input table: one request per row, requiring at
// least "ticker" and "time" columns. Extra columns are ignored.
func LoadRequests(path string) ([]model.Request, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open input %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read input header: %w", err)
	}
	tickerIdx, timeIdx := -1, -1
	for i, h := range header {
		switch strings.ToLower(strings.TrimSpace(h)) {
		case "ticker":
			tickerIdx = i
		case "time":
			timeIdx = i
		}
	}
	if tickerIdx < 0 || timeIdx < 0 {
		return nil, fmt.Errorf("input %s: need ticker and time columns, got %v", path, header)
	}

	var reqs []model.Request
	line := 1
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read input: %w", err)
		}
		line++
		ticker := strings.ToUpper(strings.TrimSpace(rec[tickerIdx]))
		if ticker == "" {
			continue
		}
		t, ok := parseDate(rec[timeIdx])
		if !ok {
			return nil, fmt.Errorf("input line %d: cannot parse time %q", line, rec[timeIdx])
		}
		reqs = append(reqs, model.Request{Ticker: ticker, Date: t.UTC()})
	}
	return reqs, nil
}

// parseDate tries 2006-01-02, RFC3339, and unix seconds.
func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	if ts, err := strconv.ParseInt(s, 10, 64); err == nil && ts > 0 {
		return time.Unix(ts, 0), true
	}
	return time.Time{}, false
}
