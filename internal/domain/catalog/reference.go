package catalog

import (
	"strings"

	"github.com/google/uuid"
	"github.com/psim/backend/internal/domain/shared"
)

// District is a district store that receives goods from HQ
type District struct {
	shared.BaseEntity
	Code string
	Name string
}

// NewDistrict creates a district
func NewDistrict(code, name string) (*District, error) {
	code, name = strings.TrimSpace(code), strings.TrimSpace(name)
	if code == "" {
		return nil, shared.NewValidationError("district code cannot be empty")
	}
	if name == "" {
		return nil, shared.NewValidationError("district name cannot be empty")
	}
	return &District{BaseEntity: shared.NewBaseEntity(), Code: strings.ToUpper(code), Name: name}, nil
}

// Metric is a unit of measure (pcs, box, litre)
type Metric struct {
	shared.BaseEntity
	Code string
	Name string
}

// NewMetric creates a metric
func NewMetric(code, name string) (*Metric, error) {
	code, name = strings.TrimSpace(code), strings.TrimSpace(name)
	if code == "" {
		return nil, shared.NewValidationError("metric code cannot be empty")
	}
	if name == "" {
		return nil, shared.NewValidationError("metric name cannot be empty")
	}
	return &Metric{BaseEntity: shared.NewBaseEntity(), Code: strings.ToLower(code), Name: name}, nil
}

// Staff is a police officer identified by their GNo
type Staff struct {
	shared.BaseEntity
	GNo        string
	Name       string
	Rank       string
	DistrictID *uuid.UUID
}

// NewStaff creates a staff record
func NewStaff(gNo, name, rank string, districtID *uuid.UUID) (*Staff, error) {
	gNo = strings.TrimSpace(gNo)
	if gNo == "" {
		return nil, shared.NewValidationError("staff GNo cannot be empty")
	}
	if strings.TrimSpace(name) == "" {
		return nil, shared.NewValidationError("staff name cannot be empty")
	}
	return &Staff{
		BaseEntity: shared.NewBaseEntity(),
		GNo:        gNo,
		Name:       strings.TrimSpace(name),
		Rank:       strings.TrimSpace(rank),
		DistrictID: districtID,
	}, nil
}
