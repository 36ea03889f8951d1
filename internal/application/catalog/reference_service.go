package catalog

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/psim/backend/internal/domain/catalog"
	"github.com/psim/backend/internal/domain/shared"
)

// ReferenceService maintains districts, metrics and staff
type ReferenceService struct {
	districtRepo catalog.DistrictRepository
	metricRepo   catalog.MetricRepository
	staffRepo    catalog.StaffRepository
}

// NewReferenceService creates a new ReferenceService
func NewReferenceService(
	districtRepo catalog.DistrictRepository,
	metricRepo catalog.MetricRepository,
	staffRepo catalog.StaffRepository,
) *ReferenceService {
	return &ReferenceService{
		districtRepo: districtRepo,
		metricRepo:   metricRepo,
		staffRepo:    staffRepo,
	}
}

// CreateDistrict registers a district store
func (s *ReferenceService) CreateDistrict(ctx context.Context, req CreateDistrictRequest) (*DistrictResponse, error) {
	d, err := catalog.NewDistrict(req.Code, req.Name)
	if err != nil {
		return nil, err
	}
	if err := s.districtRepo.Create(ctx, d); err != nil {
		return nil, err
	}
	resp := toDistrictResponse(d)
	return &resp, nil
}

// GetDistrict retrieves a district by ID
func (s *ReferenceService) GetDistrict(ctx context.Context, id uuid.UUID) (*DistrictResponse, error) {
	d, err := s.districtRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := toDistrictResponse(d)
	return &resp, nil
}

// ListDistricts lists districts ordered by code
func (s *ReferenceService) ListDistricts(ctx context.Context, filter ListFilter) ([]DistrictResponse, int64, error) {
	rows, total, err := s.districtRepo.FindAll(ctx, filter.ToDomain("code"))
	if err != nil {
		return nil, 0, err
	}
	out := make([]DistrictResponse, len(rows))
	for i := range rows {
		out[i] = toDistrictResponse(&rows[i])
	}
	return out, total, nil
}

// CreateMetric registers a unit of measure
func (s *ReferenceService) CreateMetric(ctx context.Context, req CreateMetricRequest) (*MetricResponse, error) {
	m, err := catalog.NewMetric(req.Code, req.Name)
	if err != nil {
		return nil, err
	}
	if err := s.metricRepo.Create(ctx, m); err != nil {
		return nil, err
	}
	resp := toMetricResponse(m)
	return &resp, nil
}

// ListMetrics lists every metric
func (s *ReferenceService) ListMetrics(ctx context.Context) ([]MetricResponse, error) {
	rows, err := s.metricRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]MetricResponse, len(rows))
	for i := range rows {
		out[i] = toMetricResponse(&rows[i])
	}
	return out, nil
}

// RegisterStaff registers a staff member. GNo must be unique.
func (s *ReferenceService) RegisterStaff(ctx context.Context, req RegisterStaffRequest) (*StaffResponse, error) {
	staff, err := catalog.NewStaff(req.GNo, req.Name, req.Rank, req.DistrictID)
	if err != nil {
		return nil, err
	}
	if staff.DistrictID != nil {
		if _, err := s.districtRepo.FindByID(ctx, *staff.DistrictID); err != nil {
			return nil, err
		}
	}

	exists, err := s.staffRepo.ExistsByGNo(ctx, staff.GNo)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError(shared.CodeAlreadyExists, "Staff with this GNo already exists")
	}

	if err := s.staffRepo.Create(ctx, staff); err != nil {
		return nil, err
	}
	resp := toStaffResponse(staff)
	return &resp, nil
}

// GetStaffByGNo retrieves a staff member by GNo
func (s *ReferenceService) GetStaffByGNo(ctx context.Context, gNo string) (*StaffResponse, error) {
	staff, err := s.staffRepo.FindByGNo(ctx, strings.TrimSpace(gNo))
	if err != nil {
		return nil, err
	}
	resp := toStaffResponse(staff)
	return &resp, nil
}

// ListStaff lists staff ordered by GNo
func (s *ReferenceService) ListStaff(ctx context.Context, filter ListFilter) ([]StaffResponse, int64, error) {
	rows, total, err := s.staffRepo.FindAll(ctx, filter.ToDomain("g_no"))
	if err != nil {
		return nil, 0, err
	}
	out := make([]StaffResponse, len(rows))
	for i := range rows {
		out[i] = toStaffResponse(&rows[i])
	}
	return out, total, nil
}
