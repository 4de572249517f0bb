package di

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/aristath/itemsentinel/internal/modules/herostats"
	"github.com/aristath/itemsentinel/internal/modules/market"
	"github.com/aristath/itemsentinel/internal/modules/portfolio"
	"github.com/aristath/itemsentinel/internal/modules/scoring"
)

// InitializeRepositories creates every repository on the container's databases
func InitializeRepositories(container *Container, log zerolog.Logger) error {
	if container == nil || container.MarketDB == nil || container.PortfolioDB == nil {
		return fmt.Errorf("databases must be initialized before repositories")
	}

	marketConn := container.MarketDB.Conn()
	container.MarketRepo = market.NewRepository(marketConn, log)
	container.HeroStatsRepo = herostats.NewRepository(marketConn, log)
	container.ScoreRepo = scoring.NewRepository(marketConn, log)

	portfolioConn := container.PortfolioDB.Conn()
	container.PositionRepo = portfolio.NewPositionRepository(portfolioConn, log)
	container.PortfolioHistRepo = portfolio.NewHistoryRepository(portfolioConn, log)

	log.Debug().Msg("Repositories initialized")
	return nil
}
