package member

import (
	"github.com/fitora/fitora/internal/member/repository"
	"go.uber.org/fx"
)

var Module = fx.Module("member.lookup",
	fx.Provide(repository.NewLookup),
)
