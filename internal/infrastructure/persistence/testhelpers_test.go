package persistence

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/ecsledger/backend/internal/domain/ledger"
	"github.com/ecsledger/backend/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupLedgerTestDB opens a private in-memory sqlite database with every
// ledger table migrated.
func setupLedgerTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(models.AllModels()...))
	return db
}

// newMockGormDB opens GORM on the postgres dialector over a sqlmock connection
func newMockGormDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})
	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return gormDB, mock, mockDB
}

type ledgerFixture struct {
	companies *GormCompanyRepository
	packages  *GormPackageRepository
	charges   *GormEntryRepository
	payments  *GormEntryRepository
	documents *GormDocumentRepository
}

func newLedgerFixture(db *gorm.DB) ledgerFixture {
	return ledgerFixture{
		companies: NewGormCompanyRepository(db),
		packages:  NewGormPackageRepository(db),
		charges:   NewGormChargeRepository(db),
		payments:  NewGormPaymentRepository(db),
		documents: NewGormDocumentRepository(db),
	}
}

func (f ledgerFixture) company(t *testing.T, name string, c ledger.Classification) *ledger.Company {
	t.Helper()
	company, err := ledger.NewCompany(name, c)
	require.NoError(t, err)
	require.NoError(t, f.companies.Create(context.Background(), company))
	return company
}

func (f ledgerFixture) pkg(t *testing.T, companyID uint64, description string) *ledger.Package {
	t.Helper()
	p, err := ledger.NewPackage(companyID, time.Now(), description)
	require.NoError(t, err)
	require.NoError(t, f.packages.Create(context.Background(), p))
	return p
}

func (f ledgerFixture) entry(t *testing.T, repo *GormEntryRepository, packageID uint64, amount int64) *ledger.Entry {
	t.Helper()
	e, err := ledger.NewEntry(repo.Kind(), packageID, "entry", decimal.NewFromInt(amount), time.Now())
	require.NoError(t, err)
	require.NoError(t, repo.Create(context.Background(), e))
	return e
}
