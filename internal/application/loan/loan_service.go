package loan

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/psim/backend/internal/domain/catalog"
	"github.com/psim/backend/internal/domain/loan"
	"github.com/psim/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// LoanService tracks goods lent out for events. Loans sit beside the
// issuance ledger and never touch stock balances.
type LoanService struct {
	loanRepo       loan.Repository
	itemRepo       catalog.ItemRepository
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
	clock          func() time.Time
}

// NewLoanService creates a new LoanService
func NewLoanService(loanRepo loan.Repository, itemRepo catalog.ItemRepository, logger *zap.Logger) *LoanService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LoanService{
		loanRepo: loanRepo,
		itemRepo: itemRepo,
		logger:   logger,
		clock:    time.Now,
	}
}

// SetEventPublisher sets the publisher for LoanOverdue events
func (s *LoanService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetClock overrides the time source
func (s *LoanService) SetClock(clock func() time.Time) {
	if clock != nil {
		s.clock = clock
	}
}

// LoanOut records goods lent to a borrower
func (s *LoanService) LoanOut(ctx context.Context, req LoanOutRequest) (*LoanResponse, error) {
	now := s.clock()
	if _, err := s.itemRepo.FindByID(ctx, req.ItemID); err != nil {
		return nil, err
	}

	loanDate := now
	if req.LoanDate != nil {
		loanDate = *req.LoanDate
	}
	l, err := loan.NewLoanItem(req.ItemID, req.Quantity, loan.Borrower{
		GNo:       req.BorrowerGNo,
		Name:      req.BorrowerName,
		EventName: req.EventName,
	}, loanDate, req.DueDate, req.Remarks)
	if err != nil {
		return nil, err
	}
	if err := s.loanRepo.Create(ctx, l); err != nil {
		return nil, err
	}

	resp := ToLoanResponse(l, now)
	return &resp, nil
}

// ReturnLoan closes an open loan on behalf of userID
func (s *LoanService) ReturnLoan(ctx context.Context, id uuid.UUID, userID string, req ReturnLoanRequest) (*LoanResponse, error) {
	l, err := s.loanRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	now := s.clock()
	if err := l.MarkReturned(now, userID); err != nil {
		return nil, err
	}
	if remarks := strings.TrimSpace(req.Remarks); remarks != "" {
		l.Remarks = remarks
	}
	if err := s.loanRepo.SaveWithLock(ctx, l); err != nil {
		return nil, err
	}

	resp := ToLoanResponse(l, now)
	return &resp, nil
}

// GetLoan retrieves a loan by ID
func (s *LoanService) GetLoan(ctx context.Context, id uuid.UUID) (*LoanResponse, error) {
	l, err := s.loanRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToLoanResponse(l, s.clock())
	return &resp, nil
}

// ListLoans lists loans, newest loan date first by default
func (s *LoanService) ListLoans(ctx context.Context, filter LoanListFilter) ([]LoanResponse, int64, error) {
	var status *loan.Status
	if filter.Status != "" {
		st := loan.Status(filter.Status)
		if !st.IsValid() {
			return nil, 0, shared.NewValidationError("unknown loan status %q", filter.Status)
		}
		status = &st
	}

	domainFilter := shared.DefaultFilter()
	domainFilter.OrderBy = "loan_date"
	domainFilter.Search = filter.Search
	if filter.Page > 0 {
		domainFilter.Page = filter.Page
	}
	if filter.PageSize > 0 {
		domainFilter.PageSize = filter.PageSize
	}
	if filter.OrderBy != "" {
		domainFilter.OrderBy = filter.OrderBy
	}
	if filter.OrderDir != "" {
		domainFilter.OrderDir = filter.OrderDir
	}
	if filter.BorrowerGNo != "" {
		domainFilter.Filters["borrower_g_no"] = filter.BorrowerGNo
	}
	if filter.ItemID != nil {
		domainFilter.Filters["item_id"] = *filter.ItemID
	}

	rows, total, err := s.loanRepo.FindAll(ctx, status, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	return toLoanResponses(rows, s.clock()), total, nil
}

// ListOverdue lists open loans past their due date
func (s *LoanService) ListOverdue(ctx context.Context) ([]LoanResponse, error) {
	now := s.clock()
	rows, err := s.loanRepo.FindOverdue(ctx, now)
	if err != nil {
		return nil, err
	}
	return toLoanResponses(rows, now), nil
}

// ScanOverdue publishes a LoanOverdue event for every open loan past its due
// date and returns how many were found. Run by the scheduler.
func (s *LoanService) ScanOverdue(ctx context.Context) (int, error) {
	rows, err := s.loanRepo.FindOverdue(ctx, s.clock())
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, nil
	}

	events := make([]shared.DomainEvent, len(rows))
	for i := range rows {
		events[i] = loan.NewLoanOverdueEvent(&rows[i])
	}
	if s.eventPublisher != nil {
		if err := s.eventPublisher.Publish(ctx, events...); err != nil {
			s.logger.Warn("failed to publish overdue loan events",
				zap.Int("count", len(events)),
				zap.Error(err),
			)
		}
	}
	return len(rows), nil
}
