package exclusion

import (
	"github.com/ecomprotect/sentinel/internal/exclusion/repository"
	"github.com/ecomprotect/sentinel/internal/exclusion/service"
	"go.uber.org/fx"
)

var Module = fx.Module("exclusion.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
