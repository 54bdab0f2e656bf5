package model

import "time"

// Request is one enrichment unit: compute indicators for Ticker as of Date.
// One Request is produced per input row and never mutated.
type Request struct {
	Ticker string
	Date   time.Time
}

// Key identifies a request in progress files and run reports.
func (r Request) Key() string {
	return r.Ticker + "|" + r.Date.Format("2006-01-02")
}
