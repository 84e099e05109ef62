package storage

import (
	"fmt"

	appconfig "github.com/fitora/fitora/internal/config"
	"go.uber.org/fx"
)

var Module = fx.Module("providers.storage",
	fx.Provide(NewProvider),
)

func NewProvider(cfg appconfig.Config) (Provider, error) {
	switch cfg.StorageType {
	case "s3":
		return NewS3(cfg)
	case "memory":
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unsupported storage type %q", cfg.StorageType)
	}
}
