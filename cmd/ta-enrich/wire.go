//go:build wireinject
// +build wireinject

package main

import (
	"ta-enrich/internal/app"

	"github.com/google/wire"
)

// InitializeApp builds App (Config + DataProvider + Driver) via Wire.
// Caller must call a.DP.Close() when done.
func InitializeApp(configPath string, ov app.Overrides) (*App, error) {
	wire.Build(
		app.ProvideConfig,
		app.ProvideProvider,
		app.ProvideWriter,
		app.ProvideDriver,
		wire.Struct(new(App), "Config", "DP", "Driver"),
	)
	return nil, nil
}
