package risk

import (
	"github.com/ecomprotect/sentinel/internal/risk/service"
	"go.uber.org/fx"
)

var Module = fx.Module("risk.engine",
	fx.Provide(service.New),
)
