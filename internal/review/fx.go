package review

import (
	"github.com/ecomprotect/sentinel/internal/review/repository"
	"github.com/ecomprotect/sentinel/internal/review/service"
	"go.uber.org/fx"
)

var Module = fx.Module("review.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
