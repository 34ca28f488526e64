package migration

import (
	"github.com/bwmarrin/snowflake"
	apiusagedomain "github.com/ecomprotect/sentinel/internal/apiusage/domain"
	auditdomain "github.com/ecomprotect/sentinel/internal/audit/domain"
	authrecorddomain "github.com/ecomprotect/sentinel/internal/authrecord/domain"
	billingdomain "github.com/ecomprotect/sentinel/internal/billing/domain"
	"github.com/ecomprotect/sentinel/internal/config"
	exclusiondomain "github.com/ecomprotect/sentinel/internal/exclusion/domain"
	notificationdomain "github.com/ecomprotect/sentinel/internal/notification/domain"
	orderdomain "github.com/ecomprotect/sentinel/internal/order/domain"
	"github.com/ecomprotect/sentinel/internal/ratelimit"
	reportcachedomain "github.com/ecomprotect/sentinel/internal/reportcache/domain"
	reviewdomain "github.com/ecomprotect/sentinel/internal/review/domain"
	riskhistorydomain "github.com/ecomprotect/sentinel/internal/riskhistory/domain"
	"github.com/ecomprotect/sentinel/internal/seed"
	settingsdomain "github.com/ecomprotect/sentinel/internal/settings/domain"
	storedomain "github.com/ecomprotect/sentinel/internal/store/domain"
	userdomain "github.com/ecomprotect/sentinel/internal/user/domain"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config, node *snowflake.Node) error {
		if cfg.DBType == "postgres" {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			if err := RunMigrations(sqlDB); err != nil {
				return err
			}
		} else {
			// Non-postgres databases are for local development and tests;
			// the model definitions carry enough schema for them.
			if err := conn.AutoMigrate(
				&storedomain.Store{},
				&userdomain.User{},
				&settingsdomain.StoreSettings{},
				&exclusiondomain.CustomerExclusion{},
				&orderdomain.Order{},
				&riskhistorydomain.CustomerRiskHistory{},
				&billingdomain.PackageSubscription{},
				&reviewdomain.ApplicationReview{},
				&notificationdomain.EmailNotification{},
				&auditdomain.AuditLog{},
				&authrecorddomain.Session{},
				&authrecorddomain.Account{},
				&authrecorddomain.Verification{},
				&authrecorddomain.MFAToken{},
				&ratelimit.ThrottleInsight{},
				&reportcachedomain.ReportCache{},
				&apiusagedomain.ApiUsage{},
			); err != nil {
				return err
			}
		}

		if cfg.BootstrapPlatformAdmin {
			return seed.EnsurePlatformAdmin(conn, node, cfg.PlatformAdminEmail, cfg.PlatformAdminPassword)
		}
		return nil
	}),
)
