package storefactory

import (
	"fmt"

	"convo/internal/config"
	"convo/internal/pkg/database"
	"convo/internal/pkg/mongodb"
	"convo/internal/repository"
	"convo/internal/repository/gormrepo"
	"convo/internal/repository/mongorepo"
)

// NewStore 根据配置创建存储实例
func NewStore(cfg *config.Config) (repository.Store, error) {
	if err := cfg.Database.Validate(&cfg.Mongo); err != nil {
		return nil, err
	}

	switch cfg.Database.Driver {
	case config.DriverSQLite, config.DriverPostgres:
		db, err := database.Open(&cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", cfg.Database.Driver, err)
		}
		return gormrepo.NewStore(db), nil
	case config.DriverMongo:
		client, err := mongodb.New(&cfg.Mongo)
		if err != nil {
			return nil, fmt.Errorf("connect mongo: %w", err)
		}
		return mongorepo.NewStore(client), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", cfg.Database.Driver)
	}
}
