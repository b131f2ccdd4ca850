package postgres

import (
	"log/slog"

	"github.com/leapstack-labs/leapviz/pkg/adapter"
)

func init() {
	adapter.Register(adapter.Registration{
		Name:    "postgres",
		Factory: func(logger *slog.Logger) adapter.Adapter { return New(logger) },
	})
}
