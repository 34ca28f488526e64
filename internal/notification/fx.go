package notification

import (
	"github.com/ecomprotect/sentinel/internal/notification/repository"
	"github.com/ecomprotect/sentinel/internal/notification/service"
	"go.uber.org/fx"
)

var Module = fx.Module("notification.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
