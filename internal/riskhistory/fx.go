package riskhistory

import (
	"github.com/ecomprotect/sentinel/internal/riskhistory/repository"
	"github.com/ecomprotect/sentinel/internal/riskhistory/service"
	"go.uber.org/fx"
)

var Module = fx.Module("riskhistory.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
