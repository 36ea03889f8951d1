package movement

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/psim/backend/internal/domain/catalog"
	"github.com/psim/backend/internal/domain/movement"
	"github.com/psim/backend/internal/domain/shared"
	"github.com/psim/backend/internal/domain/stock"
)

// Clock returns the current time
type Clock func() time.Time

// IssuanceService creates issuance vouchers for both tiers: HQ to District and
// District to an internal office.
type IssuanceService struct {
	scope          TransactionScope
	itemRepo       catalog.ItemRepository
	districtRepo   catalog.DistrictRepository
	staffRepo      catalog.StaffRepository
	ivRepo         movement.IssuanceVoucherRepository
	movementRepo   movement.ItemMovementRepository
	eventPublisher shared.EventPublisher
	metrics        MetricsRecorder
	clock          Clock
	location       *time.Location
}

// NewIssuanceService creates a new IssuanceService
func NewIssuanceService(
	scope TransactionScope,
	itemRepo catalog.ItemRepository,
	districtRepo catalog.DistrictRepository,
	staffRepo catalog.StaffRepository,
	ivRepo movement.IssuanceVoucherRepository,
	movementRepo movement.ItemMovementRepository,
) *IssuanceService {
	return &IssuanceService{
		scope:        scope,
		itemRepo:     itemRepo,
		districtRepo: districtRepo,
		staffRepo:    staffRepo,
		ivRepo:       ivRepo,
		movementRepo: movementRepo,
		clock:        time.Now,
		location:     time.UTC,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *IssuanceService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetMetrics sets the metrics recorder
func (s *IssuanceService) SetMetrics(m MetricsRecorder) {
	s.metrics = m
}

// SetClock overrides the time source and the zone voucher dates are taken in
func (s *IssuanceService) SetClock(clock Clock, loc *time.Location) {
	if clock != nil {
		s.clock = clock
	}
	if loc != nil {
		s.location = loc
	}
}

func (s *IssuanceService) now() time.Time {
	return s.clock().In(s.location)
}

// hqLine is a validated HQ to District line with the rows it will touch
type hqLine struct {
	req      IssueLineRequest
	hq       *stock.HQStock
	district *stock.DistrictStock
}

// IssueToDistrict moves goods from HQ into a district store under one IV.
// Every line is validated before the first write; any later failure rolls the
// whole voucher back.
func (s *IssuanceService) IssueToDistrict(ctx context.Context, req IssueToDistrictRequest) (*IssuanceVoucherResponse, error) {
	if err := s.validateHeader(ctx, req.IssuedByUserID, req.Lines); err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.ReceivingStaffGNo) == "" {
		return nil, shared.NewValidationError("receiving staff GNo is required")
	}
	if _, err := s.districtRepo.FindByID(ctx, req.DistrictID); err != nil {
		return nil, err
	}
	exists, err := s.staffRepo.ExistsByGNo(ctx, req.ReceivingStaffGNo)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, shared.NewNotFoundError("Staff", req.ReceivingStaffGNo)
	}

	var (
		voucher   *movement.IssuanceVoucher
		movements []*movement.ItemMovement
		units     int64
		events    eventCollector
	)
	err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		events.reset()

		lines := make([]hqLine, 0, len(req.Lines))
		for _, l := range req.Lines {
			hq, err := repos.HQStockRepo().FindByItem(ctx, l.ItemID)
			if err != nil {
				if shared.IsNotFound(err) {
					return shared.NewValidationError("item %s has no HQ stock", l.ItemID)
				}
				return err
			}
			if l.Quantity > hq.Quantity {
				return shared.NewValidationError("insufficient HQ stock for item %s: available %d, requested %d",
					l.ItemID, hq.Quantity, l.Quantity)
			}
			ds, err := repos.DistrictStockRepo().FindByDistrictAndItem(ctx, req.DistrictID, l.ItemID)
			if err != nil && !shared.IsNotFound(err) {
				return err
			}
			if ds != nil {
				if err := ds.Accepts(hq.MetricID, l.IsReturnable); err != nil {
					return err
				}
			}
			lines = append(lines, hqLine{req: l, hq: hq, district: ds})
		}

		issued := s.issueDate(req.IssueDate)
		number, err := movement.NextVoucherNumber(ctx, repos.VoucherSequencer(), movement.PrefixIV, issued)
		if err != nil {
			return err
		}
		v, err := movement.NewHQIssuanceVoucher(number, issued, req.DistrictID, movement.IssuanceDetails{
			IssuedByUserID:    req.IssuedByUserID,
			ReceivingStaffGNo: req.ReceivingStaffGNo,
			ApprovedBy:        req.ApprovedBy,
			ApprovalReference: req.ApprovalReference,
			Remarks:           req.Remarks,
		})
		if err != nil {
			return err
		}
		if err := repos.IssuanceVoucherRepo().Create(ctx, v); err != nil {
			return err
		}

		created := make([]*movement.ItemMovement, 0, len(lines))
		units = 0
		for _, l := range lines {
			mv, err := movement.NewIssueMovement(v, l.req.ItemID, l.hq.MetricID, l.req.Quantity, l.req.IsReturnable)
			if err != nil {
				return err
			}
			if err := l.hq.Decrease(l.req.Quantity); err != nil {
				return err
			}
			if err := repos.HQStockRepo().SaveWithLock(ctx, l.hq); err != nil {
				return err
			}
			if l.district == nil {
				ds, err := stock.NewDistrictStock(req.DistrictID, l.req.ItemID, l.hq.MetricID, l.req.Quantity, l.req.IsReturnable)
				if err != nil {
					return err
				}
				if err := repos.DistrictStockRepo().Create(ctx, ds); err != nil {
					return err
				}
			} else {
				if err := l.district.Increase(l.req.Quantity); err != nil {
					return err
				}
				if err := repos.DistrictStockRepo().SaveWithLock(ctx, l.district); err != nil {
					return err
				}
			}
			events.collect(l.hq)
			created = append(created, mv)
			units += l.req.Quantity
		}
		if err := repos.MovementRepo().CreateBatch(ctx, created); err != nil {
			return err
		}
		events.collect(v)
		voucher, movements = v, created
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.afterCommit(ctx, movement.TierHQ, &events, len(movements), units)
	resp := ToIssuanceVoucherResponse(voucher, derefMovements(movements))
	return &resp, nil
}

// districtLine is a validated District to Office line
type districtLine struct {
	req      IssueLineRequest
	district *stock.DistrictStock
}

// IssueToOffice moves goods from a district store to an internal office under
// one IV. Offices hold no stock; only the district balance is decremented.
func (s *IssuanceService) IssueToOffice(ctx context.Context, req IssueToOfficeRequest) (*IssuanceVoucherResponse, error) {
	if err := s.validateHeader(ctx, req.IssuedByUserID, req.Lines); err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.ReceivingOffice) == "" {
		return nil, shared.NewValidationError("receiving office is required")
	}
	if _, err := s.districtRepo.FindByID(ctx, req.SourceDistrictID); err != nil {
		return nil, err
	}

	var (
		voucher   *movement.IssuanceVoucher
		movements []*movement.ItemMovement
		units     int64
		events    eventCollector
	)
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		events.reset()

		lines := make([]districtLine, 0, len(req.Lines))
		for _, l := range req.Lines {
			ds, err := repos.DistrictStockRepo().FindByDistrictAndItem(ctx, req.SourceDistrictID, l.ItemID)
			if err != nil {
				if shared.IsNotFound(err) {
					return shared.NewValidationError("item %s has no stock in district %s", l.ItemID, req.SourceDistrictID)
				}
				return err
			}
			if err := ds.CheckCategory(l.IsReturnable); err != nil {
				return err
			}
			if l.Quantity > ds.Quantity {
				return shared.NewValidationError("insufficient district stock for item %s: available %d, requested %d",
					l.ItemID, ds.Quantity, l.Quantity)
			}
			lines = append(lines, districtLine{req: l, district: ds})
		}

		issued := s.issueDate(req.IssueDate)
		number, err := movement.NextVoucherNumber(ctx, repos.VoucherSequencer(), movement.PrefixIV, issued)
		if err != nil {
			return err
		}
		v, err := movement.NewDistrictIssuanceVoucher(number, issued, req.SourceDistrictID, req.ReceivingOffice,
			movement.IssuanceDetails{
				IssuedByUserID:    req.IssuedByUserID,
				ReceivingStaffGNo: req.ReceivingStaffGNo,
				ApprovedBy:        req.ApprovedBy,
				ApprovalReference: req.ApprovalReference,
				Remarks:           req.Remarks,
			})
		if err != nil {
			return err
		}
		if err := repos.IssuanceVoucherRepo().Create(ctx, v); err != nil {
			return err
		}

		created := make([]*movement.ItemMovement, 0, len(lines))
		units = 0
		for _, l := range lines {
			mv, err := movement.NewIssueMovement(v, l.req.ItemID, l.district.MetricID, l.req.Quantity, l.district.IsReturnable)
			if err != nil {
				return err
			}
			if err := l.district.Decrease(l.req.Quantity); err != nil {
				return err
			}
			if err := repos.DistrictStockRepo().SaveWithLock(ctx, l.district); err != nil {
				return err
			}
			created = append(created, mv)
			units += l.req.Quantity
		}
		if err := repos.MovementRepo().CreateBatch(ctx, created); err != nil {
			return err
		}
		events.collect(v)
		voucher, movements = v, created
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.afterCommit(ctx, movement.TierDistrict, &events, len(movements), units)
	resp := ToIssuanceVoucherResponse(voucher, derefMovements(movements))
	return &resp, nil
}

// GetIssuanceVoucher returns an IV of tier with its lines
func (s *IssuanceService) GetIssuanceVoucher(ctx context.Context, tier movement.Tier, id uuid.UUID) (*IssuanceVoucherResponse, error) {
	v, err := s.ivRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if v.Tier != tier {
		return nil, shared.NewNotFoundError("IssuanceVoucher", id)
	}
	lines, err := s.movementRepo.FindByIssuanceVoucher(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToIssuanceVoucherResponse(v, lines)
	return &resp, nil
}

// ListIssuanceVouchers lists IVs of tier without their lines
func (s *IssuanceService) ListIssuanceVouchers(ctx context.Context, tier movement.Tier, filter shared.Filter) ([]IssuanceVoucherResponse, int64, error) {
	vouchers, total, err := s.ivRepo.FindAll(ctx, tier, filter)
	if err != nil {
		return nil, 0, err
	}
	out := make([]IssuanceVoucherResponse, len(vouchers))
	for i := range vouchers {
		out[i] = ToIssuanceVoucherResponse(&vouchers[i], nil)
	}
	return out, total, nil
}

// validateHeader checks line shape and item existence before any transaction starts
func (s *IssuanceService) validateHeader(ctx context.Context, issuedBy string, lines []IssueLineRequest) error {
	if strings.TrimSpace(issuedBy) == "" {
		return shared.NewValidationError("issuing user is required")
	}
	if len(lines) == 0 {
		return shared.NewValidationError("at least one item line is required")
	}
	seen := make(map[uuid.UUID]struct{}, len(lines))
	ids := make([]uuid.UUID, 0, len(lines))
	for _, l := range lines {
		if l.ItemID == uuid.Nil {
			return shared.NewValidationError("item is required on every line")
		}
		if l.Quantity <= 0 {
			return shared.NewValidationError("quantity must be positive for item %s, got %d", l.ItemID, l.Quantity)
		}
		if _, dup := seen[l.ItemID]; dup {
			return shared.NewValidationError("item %s appears on more than one line", l.ItemID)
		}
		seen[l.ItemID] = struct{}{}
		ids = append(ids, l.ItemID)
	}

	items, err := s.itemRepo.FindByIDs(ctx, ids)
	if err != nil {
		return err
	}
	found := make(map[uuid.UUID]struct{}, len(items))
	for _, it := range items {
		found[it.ID] = struct{}{}
	}
	for _, id := range ids {
		if _, ok := found[id]; !ok {
			return shared.NewNotFoundError("Item", id)
		}
	}
	return nil
}

// issueDate is the voucher date, in the ledger timezone. The IV number is
// counted on this day so a back-dated voucher carries its own date.
func (s *IssuanceService) issueDate(requested *time.Time) time.Time {
	if requested != nil && !requested.IsZero() {
		return requested.In(s.location)
	}
	return s.now()
}

func (s *IssuanceService) afterCommit(ctx context.Context, tier movement.Tier, events *eventCollector, lines int, units int64) {
	events.publish(ctx, s.eventPublisher)
	if s.metrics != nil {
		s.metrics.RecordIssuance(ctx, string(tier), lines, units)
	}
}
