package migration

import (
	"go.uber.org/fx"
	"gorm.io/gorm"

	invoicedomain "github.com/fitora/fitora/internal/invoice/domain"
	memberdomain "github.com/fitora/fitora/internal/member/domain"
	sequencedomain "github.com/fitora/fitora/internal/sequence/domain"
	settingsdomain "github.com/fitora/fitora/internal/settings/domain"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB) error {
		// Versioned SQL migrations are written for postgres. Other
		// dialects (sqlite in tests, mysql) derive the schema from the
		// models instead.
		if conn.Dialector.Name() != "postgres" {
			return conn.AutoMigrate(
				&memberdomain.Member{},
				&settingsdomain.Setting{},
				&sequencedomain.DailySequence{},
				&invoicedomain.Invoice{},
			)
		}

		sqlDB, err := conn.DB()
		if err != nil {
			return err
		}
		return RunMigrations(sqlDB)
	}),
)
