package reportcache

import (
	"github.com/ecomprotect/sentinel/internal/reportcache/repository"
	"github.com/ecomprotect/sentinel/internal/reportcache/service"
	"go.uber.org/fx"
)

var Module = fx.Module("reportcache.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
