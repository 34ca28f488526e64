package authrecord

import (
	"github.com/ecomprotect/sentinel/internal/authrecord/repository"
	"github.com/ecomprotect/sentinel/internal/authrecord/service"
	"go.uber.org/fx"
)

var Module = fx.Module("authrecord.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
