package main

import (
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"

	"github.com/fitora/fitora/internal/clock"
	"github.com/fitora/fitora/internal/config"
	"github.com/fitora/fitora/internal/invoice"
	"github.com/fitora/fitora/internal/lock"
	"github.com/fitora/fitora/internal/member"
	"github.com/fitora/fitora/internal/migration"
	"github.com/fitora/fitora/internal/observability/metrics"
	"github.com/fitora/fitora/internal/providers/storage"
	"github.com/fitora/fitora/internal/server"
	"github.com/fitora/fitora/internal/settings"
	"github.com/fitora/fitora/pkg/db"
	"github.com/fitora/fitora/pkg/log"
)

func main() {
	app := fx.New(
		config.Module,
		log.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		lock.Module,
		metrics.Module,
		migration.Module,

		settings.Module,
		member.Module,
		storage.Module,
		invoice.Module,

		server.Module,
		fx.Invoke(func(s *server.Server) {
			s.RegisterAPIRoutes()
		}),
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
