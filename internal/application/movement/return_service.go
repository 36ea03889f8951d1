package movement

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/psim/backend/internal/domain/movement"
	"github.com/psim/backend/internal/domain/shared"
	"github.com/psim/backend/internal/domain/stock"
)

// ReturnService records LAR vouchers against issuance vouchers of either tier
type ReturnService struct {
	scope          TransactionScope
	ivRepo         movement.IssuanceVoucherRepository
	larRepo        movement.LARVoucherRepository
	movementRepo   movement.ItemMovementRepository
	eventPublisher shared.EventPublisher
	metrics        MetricsRecorder
	clock          Clock
	location       *time.Location
}

// NewReturnService creates a new ReturnService
func NewReturnService(
	scope TransactionScope,
	ivRepo movement.IssuanceVoucherRepository,
	larRepo movement.LARVoucherRepository,
	movementRepo movement.ItemMovementRepository,
) *ReturnService {
	return &ReturnService{
		scope:        scope,
		ivRepo:       ivRepo,
		larRepo:      larRepo,
		movementRepo: movementRepo,
		clock:        time.Now,
		location:     time.UTC,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *ReturnService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetMetrics sets the metrics recorder
func (s *ReturnService) SetMetrics(m MetricsRecorder) {
	s.metrics = m
}

// SetClock overrides the time source and the zone voucher dates are taken in
func (s *ReturnService) SetClock(clock Clock, loc *time.Location) {
	if clock != nil {
		s.clock = clock
	}
	if loc != nil {
		s.location = loc
	}
}

func (s *ReturnService) now() time.Time {
	return s.clock().In(s.location)
}

// ReturnFromDistrict returns goods from a district store back to HQ
func (s *ReturnService) ReturnFromDistrict(ctx context.Context, req ReturnRequest) (*LARVoucherResponse, error) {
	return s.createReturn(ctx, movement.TierHQ, req)
}

// ReturnFromOffice returns goods from an internal office back to its district store
func (s *ReturnService) ReturnFromOffice(ctx context.Context, req ReturnRequest) (*LARVoucherResponse, error) {
	return s.createReturn(ctx, movement.TierDistrict, req)
}

// returnLine is the summed request against one original movement
type returnLine struct {
	movementID uuid.UUID
	quantity   int64
	original   *movement.ItemMovement
}

// mergeReturnLines validates line shape and sums quantities per movement,
// keeping first-seen order.
func mergeReturnLines(lines []ReturnLineRequest) ([]*returnLine, error) {
	if len(lines) == 0 {
		return nil, shared.NewValidationError("at least one return line is required")
	}
	byID := make(map[uuid.UUID]*returnLine, len(lines))
	merged := make([]*returnLine, 0, len(lines))
	for _, l := range lines {
		if l.OriginalMovementID == uuid.Nil {
			return nil, shared.NewValidationError("original movement is required on every line")
		}
		if l.Quantity <= 0 {
			return nil, shared.NewValidationError("quantity must be positive for movement %s, got %d", l.OriginalMovementID, l.Quantity)
		}
		if rl, ok := byID[l.OriginalMovementID]; ok {
			rl.quantity += l.Quantity
			continue
		}
		rl := &returnLine{movementID: l.OriginalMovementID, quantity: l.Quantity}
		byID[l.OriginalMovementID] = rl
		merged = append(merged, rl)
	}
	return merged, nil
}

func (s *ReturnService) createReturn(ctx context.Context, tier movement.Tier, req ReturnRequest) (*LARVoucherResponse, error) {
	if strings.TrimSpace(req.ReturnedByUserID) == "" {
		return nil, shared.NewValidationError("returning user is required")
	}
	lines, err := mergeReturnLines(req.Lines)
	if err != nil {
		return nil, err
	}
	iv, err := s.ivRepo.FindByID(ctx, req.VoucherID)
	if err != nil {
		return nil, err
	}
	if iv.Tier != tier {
		return nil, shared.NewNotFoundError("IssuanceVoucher", req.VoucherID)
	}

	var (
		lar     *movement.LARVoucher
		created []*movement.ItemMovement
		units   int64
		events  eventCollector
	)
	err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		events.reset()
		if err := s.loadOriginals(ctx, repos, iv, lines); err != nil {
			return err
		}

		// Source-tier rows receive the goods; HQ returns also drain the district.
		targets := make([]stockTarget, len(lines))
		for i, l := range lines {
			t, err := s.loadTarget(ctx, repos, tier, iv, l)
			if err != nil {
				return err
			}
			targets[i] = t
		}

		returnDate := s.now()
		if req.ReturnDate != nil && !req.ReturnDate.IsZero() {
			returnDate = req.ReturnDate.In(s.location)
		}
		number, err := movement.NextVoucherNumber(ctx, repos.VoucherSequencer(), movement.PrefixLAR, returnDate)
		if err != nil {
			return err
		}
		v, err := movement.NewLARVoucher(number, returnDate, iv, req.ReturnedByUserID, req.Remarks)
		if err != nil {
			return err
		}
		if err := repos.LARVoucherRepo().Create(ctx, v); err != nil {
			return err
		}

		out := make([]*movement.ItemMovement, 0, len(lines))
		units = 0
		for i, l := range lines {
			mv, err := movement.NewReturnMovement(v, l.original, l.quantity)
			if err != nil {
				return err
			}
			if err := l.original.RecordReturn(l.quantity); err != nil {
				return err
			}
			if err := repos.MovementRepo().SaveWithLock(ctx, l.original); err != nil {
				return err
			}
			if err := targets[i].apply(ctx, repos, l.quantity); err != nil {
				return err
			}
			out = append(out, mv)
			units += l.quantity
		}
		if err := repos.MovementRepo().CreateBatch(ctx, out); err != nil {
			return err
		}
		events.collect(v)
		lar, created = v, out
		return nil
	})
	if err != nil {
		return nil, err
	}

	events.publish(ctx, s.eventPublisher)
	if s.metrics != nil {
		s.metrics.RecordReturn(ctx, string(tier), len(created), units)
	}
	resp := ToLARVoucherResponse(lar, derefMovements(created))
	return &resp, nil
}

// loadOriginals resolves every line's movement and checks it can take the return
func (s *ReturnService) loadOriginals(ctx context.Context, repos TransactionalRepositories, iv *movement.IssuanceVoucher, lines []*returnLine) error {
	ids := make([]uuid.UUID, len(lines))
	for i, l := range lines {
		ids[i] = l.movementID
	}
	found, err := repos.MovementRepo().FindByIDs(ctx, ids)
	if err != nil {
		return err
	}
	byID := make(map[uuid.UUID]*movement.ItemMovement, len(found))
	for i := range found {
		byID[found[i].ID] = &found[i]
	}

	for _, l := range lines {
		m, ok := byID[l.movementID]
		if !ok {
			return shared.NewNotFoundError("ItemMovement", l.movementID)
		}
		if m.IssuanceVoucherID == nil || *m.IssuanceVoucherID != iv.ID {
			return shared.NewValidationError("movement %s does not belong to voucher %s", m.ID, iv.IVNumber)
		}
		if !m.MovementType.IsIssue() {
			return shared.NewValidationError("movement %s is not an issue movement", m.ID)
		}
		if !m.IsReturnable {
			return shared.NewValidationError("movement %s is consumable and cannot be returned", m.ID)
		}
		if remaining := m.RemainingReturnable(); l.quantity > remaining {
			return shared.NewValidationError("return of %d exceeds outstanding %d for movement %s",
				l.quantity, remaining, m.ID)
		}
		l.original = m
	}
	return nil
}

// stockTarget holds the rows a return line moves stock into. On the HQ tier
// hq gains what district loses.
type stockTarget struct {
	hq       *stock.HQStock
	district *stock.DistrictStock
}

func (s *ReturnService) loadTarget(ctx context.Context, repos TransactionalRepositories, tier movement.Tier, iv *movement.IssuanceVoucher, l *returnLine) (stockTarget, error) {
	itemID := l.original.ItemID
	ds, err := repos.DistrictStockRepo().FindByDistrictAndItem(ctx, iv.DistrictID(), itemID)
	if err != nil {
		if shared.IsNotFound(err) {
			return stockTarget{}, shared.NewValidationError("district holds no stock of item %s", itemID)
		}
		return stockTarget{}, err
	}
	if tier == movement.TierDistrict {
		return stockTarget{district: ds}, nil
	}

	if ds.Quantity < l.quantity {
		return stockTarget{}, shared.NewValidationError("district holds %d of item %s, cannot return %d",
			ds.Quantity, itemID, l.quantity)
	}
	hq, err := repos.HQStockRepo().FindByItem(ctx, itemID)
	if err != nil {
		return stockTarget{}, err
	}
	return stockTarget{hq: hq, district: ds}, nil
}

// apply moves q units into the source tier of the return
func (t stockTarget) apply(ctx context.Context, repos TransactionalRepositories, q int64) error {
	if t.hq == nil {
		if err := t.district.Increase(q); err != nil {
			return err
		}
		return repos.DistrictStockRepo().SaveWithLock(ctx, t.district)
	}
	if err := t.hq.Increase(q); err != nil {
		return err
	}
	if err := repos.HQStockRepo().SaveWithLock(ctx, t.hq); err != nil {
		return err
	}
	if err := t.district.Decrease(q); err != nil {
		return err
	}
	return repos.DistrictStockRepo().SaveWithLock(ctx, t.district)
}

// GetReturnVoucher returns a LAR of tier with its lines
func (s *ReturnService) GetReturnVoucher(ctx context.Context, tier movement.Tier, id uuid.UUID) (*LARVoucherResponse, error) {
	v, err := s.larRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if v.Tier != tier {
		return nil, shared.NewNotFoundError("LARVoucher", id)
	}
	lines, err := s.movementRepo.FindByLARVoucher(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToLARVoucherResponse(v, lines)
	return &resp, nil
}

// ListReturnVouchers lists LARs of tier, optionally only those against ivID
func (s *ReturnService) ListReturnVouchers(ctx context.Context, tier movement.Tier, ivID *uuid.UUID, filter shared.Filter) ([]LARVoucherResponse, int64, error) {
	vouchers, total, err := s.larRepo.FindAll(ctx, tier, ivID, filter)
	if err != nil {
		return nil, 0, err
	}
	out := make([]LARVoucherResponse, len(vouchers))
	for i := range vouchers {
		out[i] = ToLARVoucherResponse(&vouchers[i], nil)
	}
	return out, total, nil
}
