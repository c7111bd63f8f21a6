package migrate

import (
	"context"
	"fmt"

	"github.com/jengamart/jengamart-backend/pkg/config"
	"github.com/jengamart/jengamart-backend/pkg/db"
	"github.com/jengamart/jengamart-backend/pkg/logger"
)

// MaybeRunDev applies pending migrations when the auto-migrate flag is set.
// Production deployments run cmd/migrate explicitly instead.
func MaybeRunDev(ctx context.Context, cfg *config.Config, logg *logger.Logger, client *db.Client) error {
	if cfg == nil || !cfg.DB.AutoMigrate {
		return nil
	}
	if client == nil {
		return fmt.Errorf("db client is required for auto-migrate")
	}

	sqlDB, err := client.DB().DB()
	if err != nil {
		return fmt.Errorf("getting sql db handle: %w", err)
	}

	if logg != nil {
		logg.Info(ctx, "auto-applying pending migrations")
	}
	return Run(ctx, sqlDB, DefaultDir, "up")
}
