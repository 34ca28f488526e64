package settings

import (
	"github.com/ecomprotect/sentinel/internal/settings/repository"
	"github.com/ecomprotect/sentinel/internal/settings/service"
	"go.uber.org/fx"
)

var Module = fx.Module("settings.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
