package store

import (
	"github.com/ecomprotect/sentinel/internal/store/repository"
	"github.com/ecomprotect/sentinel/internal/store/service"
	"go.uber.org/fx"
)

var Module = fx.Module("store.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
