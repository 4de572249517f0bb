package di

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/aristath/itemsentinel/internal/config"
	"github.com/aristath/itemsentinel/internal/database"
)

// InitializeDatabases opens the market and portfolio databases and applies their schemas
func InitializeDatabases(cfg *config.Config, log zerolog.Logger) (*Container, error) {
	container := &Container{}

	// market.db - snapshots, price history, hero stats, scores
	marketDB, err := openDatabase(cfg, database.NameMarket, database.ProfileStandard)
	if err != nil {
		return nil, err
	}
	container.MarketDB = marketDB

	// portfolio.db - positions and history snapshots
	portfolioDB, err := openDatabase(cfg, database.NamePortfolio, database.ProfileLedger)
	if err != nil {
		_ = marketDB.Close()
		return nil, err
	}
	container.PortfolioDB = portfolioDB

	log.Info().
		Str("data_dir", cfg.DataDir).
		Msg("Databases initialized")

	return container, nil
}

func openDatabase(cfg *config.Config, name string, profile database.DatabaseProfile) (*database.DB, error) {
	db, err := database.New(database.Config{
		Path:    cfg.DatabasePath(name),
		Profile: profile,
		Name:    name,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize %s database: %w", name, err)
	}

	if err := db.Migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to migrate %s database: %w", name, err)
	}

	return db, nil
}
