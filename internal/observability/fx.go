package observability

import "go.uber.org/fx"

// Module provides the risk workflow metrics.
var Module = fx.Module("observability",
	fx.Provide(New),
)
