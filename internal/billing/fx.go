package billing

import (
	"github.com/ecomprotect/sentinel/internal/billing/repository"
	"github.com/ecomprotect/sentinel/internal/billing/service"
	"go.uber.org/fx"
)

var Module = fx.Module("billing.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
