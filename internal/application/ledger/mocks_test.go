package ledger

import (
	"context"
	"io"
	"strconv"
	"sync"
	"time"

	"github.com/ecsledger/backend/internal/domain/ledger"
	"github.com/ecsledger/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// ============================================================================
// Mocks
// ============================================================================

// MockCompanyRepository is a mock implementation of ledger.CompanyRepository
type MockCompanyRepository struct {
	mock.Mock
}

func (m *MockCompanyRepository) FindByID(ctx context.Context, id uint64) (*ledger.Company, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.Company), args.Error(1)
}

func (m *MockCompanyRepository) FindAll(ctx context.Context, filter shared.Filter) ([]ledger.Company, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]ledger.Company), args.Get(1).(int64), args.Error(2)
}

func (m *MockCompanyRepository) Create(ctx context.Context, company *ledger.Company) error {
	return m.Called(ctx, company).Error(0)
}

func (m *MockCompanyRepository) Update(ctx context.Context, company *ledger.Company) error {
	return m.Called(ctx, company).Error(0)
}

func (m *MockCompanyRepository) Delete(ctx context.Context, id uint64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockCompanyRepository) MarkNeedsReview(ctx context.Context, id uint64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockCompanyRepository) ClearNeedsReview(ctx context.Context, id uint64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockCompanyRepository) CountByClassification(ctx context.Context, c ledger.Classification) (int64, error) {
	args := m.Called(ctx, c)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCompanyRepository) HasChildren(ctx context.Context, id uint64) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

// MockPackageRepository is a mock implementation of ledger.PackageRepository
type MockPackageRepository struct {
	mock.Mock
}

func (m *MockPackageRepository) FindByID(ctx context.Context, id uint64) (*ledger.Package, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.Package), args.Error(1)
}

func (m *MockPackageRepository) FindByCompany(ctx context.Context, companyID uint64) ([]ledger.Package, error) {
	args := m.Called(ctx, companyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ledger.Package), args.Error(1)
}

func (m *MockPackageRepository) Create(ctx context.Context, pkg *ledger.Package) error {
	return m.Called(ctx, pkg).Error(0)
}

func (m *MockPackageRepository) Update(ctx context.Context, pkg *ledger.Package) error {
	return m.Called(ctx, pkg).Error(0)
}

func (m *MockPackageRepository) Delete(ctx context.Context, id uint64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockPackageRepository) MarkNeedsReview(ctx context.Context, id uint64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockPackageRepository) ClearNeedsReview(ctx context.Context, id uint64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockPackageRepository) HasChildren(ctx context.Context, id uint64) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

// MockEntryRepository is a mock implementation of ledger.EntryRepository
type MockEntryRepository struct {
	mock.Mock
	kind ledger.EntryKind
}

func (m *MockEntryRepository) Kind() ledger.EntryKind {
	return m.kind
}

func (m *MockEntryRepository) FindByID(ctx context.Context, id uint64) (*ledger.Entry, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.Entry), args.Error(1)
}

func (m *MockEntryRepository) FindByPackage(ctx context.Context, packageID uint64) ([]ledger.Entry, error) {
	args := m.Called(ctx, packageID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ledger.Entry), args.Error(1)
}

func (m *MockEntryRepository) Create(ctx context.Context, entry *ledger.Entry) error {
	return m.Called(ctx, entry).Error(0)
}

func (m *MockEntryRepository) Update(ctx context.Context, id uint64, update ledger.EntryUpdate) error {
	return m.Called(ctx, id, update).Error(0)
}

func (m *MockEntryRepository) Delete(ctx context.Context, id uint64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockEntryRepository) SumByPackage(ctx context.Context, packageID uint64) (decimal.Decimal, error) {
	args := m.Called(ctx, packageID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockEntryRepository) SumByCompany(ctx context.Context, companyID uint64) (decimal.Decimal, error) {
	args := m.Called(ctx, companyID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockEntryRepository) SumByClassification(ctx context.Context, c ledger.Classification) (decimal.Decimal, error) {
	args := m.Called(ctx, c)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

// MockDocumentRepository is a mock implementation of ledger.DocumentRepository
type MockDocumentRepository struct {
	mock.Mock
}

func (m *MockDocumentRepository) FindByID(ctx context.Context, id uint64) (*ledger.Document, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.Document), args.Error(1)
}

func (m *MockDocumentRepository) FindByOwner(ctx context.Context, owner ledger.DocumentOwner) ([]ledger.Document, error) {
	args := m.Called(ctx, owner)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ledger.Document), args.Error(1)
}

func (m *MockDocumentRepository) Create(ctx context.Context, doc *ledger.Document) error {
	return m.Called(ctx, doc).Error(0)
}

func (m *MockDocumentRepository) Rename(ctx context.Context, id uint64, name string) error {
	return m.Called(ctx, id, name).Error(0)
}

func (m *MockDocumentRepository) Delete(ctx context.Context, id uint64) error {
	return m.Called(ctx, id).Error(0)
}

// MockObjectStorage is a mock implementation of ObjectStorage
type MockObjectStorage struct {
	mock.Mock
}

func (m *MockObjectStorage) Upload(ctx context.Context, key string, body io.Reader, size int64, contentType string) error {
	return m.Called(ctx, key, body, size, contentType).Error(0)
}

func (m *MockObjectStorage) DeleteObject(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

func (m *MockObjectStorage) PublicURL(key string) string {
	return "https://assets.example.com/" + key
}

func (m *MockObjectStorage) GenerateDownloadURL(ctx context.Context, key string, expiresIn time.Duration) (string, time.Time, error) {
	args := m.Called(ctx, key, expiresIn)
	return args.String(0), args.Get(1).(time.Time), args.Error(2)
}

// recordingMetrics captures metric events
type recordingMetrics struct {
	mu          sync.Mutex
	mutations   []string
	failures    []string
	statsCalls  int
	statsFailed int
}

func (r *recordingMetrics) RecordMutation(_ context.Context, kind, op string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.mutations = append(r.mutations, kind+":"+op)
}

func (r *recordingMetrics) RecordPropagationFailure(_ context.Context, kind, level string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failures = append(r.failures, kind+":"+level)
}

func (r *recordingMetrics) RecordStatsDuration(_ context.Context, _ time.Duration, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.statsCalls++
	if err != nil {
		r.statsFailed++
	}
}

// ============================================================================
// Fixtures
// ============================================================================

type fixture struct {
	companies *MockCompanyRepository
	packages  *MockPackageRepository
	charges   *MockEntryRepository
	payments  *MockEntryRepository
	documents *MockDocumentRepository
	storage   *MockObjectStorage
	metrics   *recordingMetrics
	prop      *Propagator
	// flagWrites records MarkNeedsReview calls in order, e.g. "package:10"
	flagWrites []string
}

func newFixture() *fixture {
	f := &fixture{
		companies: new(MockCompanyRepository),
		packages:  new(MockPackageRepository),
		charges:   &MockEntryRepository{kind: ledger.EntryKindCharge},
		payments:  &MockEntryRepository{kind: ledger.EntryKindPayment},
		documents: new(MockDocumentRepository),
		storage:   new(MockObjectStorage),
		metrics:   &recordingMetrics{},
	}
	f.prop = NewPropagator(f.packages, f.companies, f.metrics, nil)
	return f
}

func (f *fixture) withCompany(id uint64, c ledger.Classification) *ledger.Company {
	company := &ledger.Company{Name: "Acme", Classification: c}
	company.ID = id
	f.companies.On("FindByID", mock.Anything, id).Return(company, nil).Maybe()
	return company
}

func (f *fixture) withPackage(id, companyID uint64) *ledger.Package {
	pkg := &ledger.Package{CompanyID: companyID, Description: "Engagement", Date: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)}
	pkg.ID = id
	f.packages.On("FindByID", mock.Anything, id).Return(pkg, nil).Maybe()
	return pkg
}

func (f *fixture) expectPackageFlag(id uint64, err error) *mock.Call {
	return f.packages.On("MarkNeedsReview", mock.Anything, id).Return(err).Run(func(mock.Arguments) {
		f.flagWrites = append(f.flagWrites, "package:"+itoa(id))
	})
}

func (f *fixture) expectCompanyFlag(id uint64, err error) *mock.Call {
	return f.companies.On("MarkNeedsReview", mock.Anything, id).Return(err).Run(func(mock.Arguments) {
		f.flagWrites = append(f.flagWrites, "company:"+itoa(id))
	})
}

func itoa(n uint64) string {
	return strconv.FormatUint(n, 10)
}

func notFound(resource string, id uint64) error {
	return shared.NewNotFoundError(resource, id)
}
