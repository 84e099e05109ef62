package sequence

import (
	"go.uber.org/fx"
)

var Module = fx.Module("sequence.store",
	fx.Provide(NewRepository),
)
