package ledger

import (
	"context"
	"time"

	"github.com/ecsledger/backend/internal/domain/ledger"
	"github.com/ecsledger/backend/internal/domain/shared"
	"github.com/ecsledger/backend/internal/infrastructure/telemetry"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// BalanceService computes balances from raw rows on every call. Review flags
// are never consulted and nothing is cached.
type BalanceService struct {
	charges    ledger.EntryRepository
	payments   ledger.EntryRepository
	companies  ledger.CompanyRepository
	propagator *Propagator
	metrics    Metrics
	logger     *zap.Logger
}

// NewBalanceService creates a new BalanceService
func NewBalanceService(
	charges ledger.EntryRepository,
	payments ledger.EntryRepository,
	companies ledger.CompanyRepository,
	propagator *Propagator,
	metrics Metrics,
	logger *zap.Logger,
) *BalanceService {
	if metrics == nil {
		metrics = NopMetrics{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BalanceService{
		charges:    charges,
		payments:   payments,
		companies:  companies,
		propagator: propagator,
		metrics:    metrics,
		logger:     logger,
	}
}

// PackageDue returns Σcharges − Σpayments for one package
func (s *BalanceService) PackageDue(ctx context.Context, packageID uint64) (*DueResponse, error) {
	if _, _, err := s.propagator.PackageChain(ctx, packageID); err != nil {
		return nil, err
	}
	charges, err := s.charges.SumByPackage(ctx, packageID)
	if err != nil {
		return nil, shared.NewStorageFailure("sum package charges", err)
	}
	payments, err := s.payments.SumByPackage(ctx, packageID)
	if err != nil {
		return nil, shared.NewStorageFailure("sum package payments", err)
	}
	return newDue("package", packageID, charges, payments), nil
}

// CompanyDue returns Σcharges − Σpayments across every package of a company
func (s *BalanceService) CompanyDue(ctx context.Context, companyID uint64) (*DueResponse, error) {
	if _, _, err := s.propagator.CompanyChain(ctx, companyID); err != nil {
		return nil, err
	}
	charges, err := s.charges.SumByCompany(ctx, companyID)
	if err != nil {
		return nil, shared.NewStorageFailure("sum company charges", err)
	}
	payments, err := s.payments.SumByCompany(ctx, companyID)
	if err != nil {
		return nil, shared.NewStorageFailure("sum company payments", err)
	}
	return newDue("company", companyID, charges, payments), nil
}

func newDue(scope string, id uint64, charges, payments decimal.Decimal) *DueResponse {
	return &DueResponse{
		Scope:    scope,
		ID:       id,
		Charges:  charges.InexactFloat64(),
		Payments: payments.InexactFloat64(),
		Due:      charges.Sub(payments).InexactFloat64(),
	}
}

// PortfolioStats runs the six sub-queries concurrently. The first failure
// cancels the rest and the call fails with no partial result.
func (s *BalanceService) PortfolioStats(ctx context.Context) (stats *PortfolioStats, err error) {
	start := time.Now()
	ctx, span := telemetry.StartServiceSpan(ctx, "balance", "portfolio_stats")
	defer func() {
		s.metrics.RecordStatsDuration(ctx, time.Since(start), err)
		telemetry.EndSpan(span, err)
	}()

	var (
		clients, vendors              int64
		clientCharges, clientPayments decimal.Decimal
		vendorCharges, vendorPayments decimal.Decimal
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		clients, err = s.companies.CountByClassification(gctx, ledger.ClassificationClient)
		return err
	})
	g.Go(func() (err error) {
		vendors, err = s.companies.CountByClassification(gctx, ledger.ClassificationVendor)
		return err
	})
	g.Go(func() (err error) {
		clientCharges, err = s.charges.SumByClassification(gctx, ledger.ClassificationClient)
		return err
	})
	g.Go(func() (err error) {
		clientPayments, err = s.payments.SumByClassification(gctx, ledger.ClassificationClient)
		return err
	})
	g.Go(func() (err error) {
		vendorCharges, err = s.charges.SumByClassification(gctx, ledger.ClassificationVendor)
		return err
	})
	g.Go(func() (err error) {
		vendorPayments, err = s.payments.SumByClassification(gctx, ledger.ClassificationVendor)
		return err
	})
	if err = g.Wait(); err != nil {
		s.logger.Error("Portfolio stats query failed", zap.Error(err))
		return nil, shared.NewStorageFailure("portfolio stats", err)
	}

	return &PortfolioStats{
		TotalClients:   clients,
		TotalVendors:   vendors,
		TotalClientDue: clientCharges.Sub(clientPayments).InexactFloat64(),
		TotalVendorDue: vendorCharges.Sub(vendorPayments).InexactFloat64(),
		EcsIncome:      clientPayments.Sub(vendorPayments).InexactFloat64(),
	}, nil
}
