package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/ecomprotect/sentinel/internal/apiusage"
	"github.com/ecomprotect/sentinel/internal/audit"
	"github.com/ecomprotect/sentinel/internal/authrecord"
	"github.com/ecomprotect/sentinel/internal/billing"
	"github.com/ecomprotect/sentinel/internal/clock"
	"github.com/ecomprotect/sentinel/internal/config"
	"github.com/ecomprotect/sentinel/internal/exclusion"
	"github.com/ecomprotect/sentinel/internal/logger"
	"github.com/ecomprotect/sentinel/internal/migration"
	"github.com/ecomprotect/sentinel/internal/notification"
	"github.com/ecomprotect/sentinel/internal/observability"
	"github.com/ecomprotect/sentinel/internal/order"
	"github.com/ecomprotect/sentinel/internal/ratelimit"
	"github.com/ecomprotect/sentinel/internal/redisconn"
	"github.com/ecomprotect/sentinel/internal/reportcache"
	"github.com/ecomprotect/sentinel/internal/review"
	"github.com/ecomprotect/sentinel/internal/risk"
	"github.com/ecomprotect/sentinel/internal/riskhistory"
	"github.com/ecomprotect/sentinel/internal/scheduler"
	"github.com/ecomprotect/sentinel/internal/server"
	"github.com/ecomprotect/sentinel/internal/settings"
	"github.com/ecomprotect/sentinel/internal/store"
	"github.com/ecomprotect/sentinel/internal/user"
	"github.com/ecomprotect/sentinel/pkg/db"
	"go.uber.org/fx"
)

func newSnowflakeNode(cfg config.Config) (*snowflake.Node, error) {
	return snowflake.NewNode(cfg.SnowflakeNodeID)
}

func main() {
	fx.New(
		config.Module,
		logger.Module,
		clock.Module,
		fx.Provide(newSnowflakeNode),
		db.Module,
		redisconn.Module,
		observability.Module,

		audit.Module,
		store.Module,
		user.Module,
		settings.Module,
		exclusion.Module,
		order.Module,
		riskhistory.Module,
		risk.Module,
		billing.Module,
		review.Module,
		notification.Module,
		apiusage.Module,
		authrecord.Module,
		reportcache.Module,
		ratelimit.Module,

		migration.Module,
		scheduler.Module,
		server.Module,
	).Run()
}
