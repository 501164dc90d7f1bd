package entrypoint

import (
	"fmt"
	"log"

	"gorm.io/gorm/logger"

	"github.com/mrlokans/circulation/internal/audit"
	"github.com/mrlokans/circulation/internal/catalog"
	"github.com/mrlokans/circulation/internal/circulation"
	"github.com/mrlokans/circulation/internal/config"
	"github.com/mrlokans/circulation/internal/database"
	dbaudit "github.com/mrlokans/circulation/internal/database/audit"
	"github.com/mrlokans/circulation/internal/fines"
	"github.com/mrlokans/circulation/internal/ledger"
	"github.com/mrlokans/circulation/internal/membership"
)

// App holds the circulation services built on one database. The server and
// every CLI command open it the same way.
type App struct {
	DB          *database.Database
	Catalog     *catalog.Service
	Members     *membership.Service
	Ledger      *ledger.Service
	Audit       *audit.Service
	Circulation *circulation.Service
}

func NewApp(cfg *config.Config) (*App, error) {
	db, err := database.Open(database.Options{
		Path:             cfg.Database.Path,
		OperationTimeout: cfg.Database.OperationTimeout,
		BusyTimeout:      cfg.Database.BusyTimeout,
		LogLevel:         logger.Warn,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	books := catalog.NewService(db)
	members := membership.NewService(db, cfg.Auth.BcryptCost)
	loans := ledger.NewService(db, books, members, ledger.Options{
		LoanPeriodDays: cfg.Circulation.LoanPeriodDays,
		FineRate:       fines.Amount(cfg.Circulation.FineRatePerDay),
	})
	auditor := audit.NewService(dbaudit.NewRepository(db.DB))

	return &App{
		DB:      db,
		Catalog: books,
		Members: members,
		Ledger:  loans,
		Audit:   auditor,
		Circulation: circulation.NewService(circulation.Config{
			DB:      db,
			Catalog: books,
			Members: members,
			Ledger:  loans,
			Audit:   auditor,
		}),
	}, nil
}

// Close flushes pending audit events and closes the database.
func (a *App) Close() error {
	a.Audit.Wait()
	if err := a.DB.Close(); err != nil {
		log.Printf("Error closing database: %v", err)
		return err
	}
	return nil
}
