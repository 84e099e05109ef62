package invoice

import (
	"github.com/fitora/fitora/internal/invoice/render"
	"github.com/fitora/fitora/internal/invoice/service"
	"github.com/fitora/fitora/internal/sequence"
	"go.uber.org/fx"
)

var Module = fx.Module("invoice.service",
	sequence.Module,
	fx.Provide(render.NewRenderer),
	fx.Provide(service.NewService),
)
