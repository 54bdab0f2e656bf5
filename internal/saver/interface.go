package saver

import (
	"strings"

	"ta-enrich/internal/model"
)

// PacketSaver persists one fetched window of bars to a file. Providers
// only depend on the interface; the concrete format is injected at
// startup.
type PacketSaver interface {
	Save(bars []model.Bar, path string) error
	Extension() string
}

// NewPacketSaver creates an implementation by format (csv, parquet, json).
// Returns nil if the format is not supported.
func NewPacketSaver(format string) PacketSaver {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "csv":
		return CSVSaver{}
	case "parquet":
		return ParquetSaver{}
	case "json":
		return JSONSaver{}
	default:
		return nil
	}
}
