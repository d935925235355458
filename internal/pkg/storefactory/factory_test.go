package storefactory

import (
	"context"
	"testing"

	"convo/internal/config"
)

func TestNewStore(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *config.Config
		wantErr bool
	}{
		{
			name: "sqlite in memory",
			cfg: &config.Config{
				Database: config.DatabaseConfig{Driver: config.DriverSQLite, DSN: ":memory:", MaxOpenConns: 1},
			},
		},
		{
			name: "postgres without dsn",
			cfg: &config.Config{
				Database: config.DatabaseConfig{Driver: config.DriverPostgres},
			},
			wantErr: true,
		},
		{
			name: "mongo without uri",
			cfg: &config.Config{
				Database: config.DatabaseConfig{Driver: config.DriverMongo},
			},
			wantErr: true,
		},
		{
			name: "unsupported driver",
			cfg: &config.Config{
				Database: config.DatabaseConfig{Driver: "invalid", DSN: "x"},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			store, err := NewStore(tt.cfg)

			if tt.wantErr {
				if err == nil {
					t.Errorf("NewStore() expected error, got nil")
				}
				if store != nil {
					t.Errorf("NewStore() expected nil store, got %v", store)
				}
				return
			}

			if err != nil {
				t.Fatalf("NewStore() unexpected error: %v", err)
			}
			defer store.Close(ctx)

			if err := store.Migrate(ctx); err != nil {
				t.Errorf("Migrate() unexpected error: %v", err)
			}
			if err := store.Ping(ctx); err != nil {
				t.Errorf("Ping() unexpected error: %v", err)
			}
		})
	}
}
