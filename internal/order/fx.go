package order

import (
	"github.com/ecomprotect/sentinel/internal/order/repository"
	"github.com/ecomprotect/sentinel/internal/order/service"
	"go.uber.org/fx"
)

var Module = fx.Module("order.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
