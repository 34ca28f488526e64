package user

import (
	"github.com/ecomprotect/sentinel/internal/user/repository"
	"github.com/ecomprotect/sentinel/internal/user/service"
	"go.uber.org/fx"
)

var Module = fx.Module("user.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
