package apiusage

import (
	"github.com/ecomprotect/sentinel/internal/apiusage/repository"
	"github.com/ecomprotect/sentinel/internal/apiusage/service"
	"go.uber.org/fx"
)

var Module = fx.Module("apiusage.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
