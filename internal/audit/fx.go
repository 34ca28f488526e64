package audit

import (
	"github.com/ecomprotect/sentinel/internal/audit/repository"
	"github.com/ecomprotect/sentinel/internal/audit/service"
	"go.uber.org/fx"
)

var Module = fx.Module("audit.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
