package movement

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/psim/backend/internal/domain/shared"
)

// IssuanceVoucher (IV) records one batch of goods leaving a store. It is never
// edited after creation.
type IssuanceVoucher struct {
	shared.BaseAggregateRoot
	Tier              Tier
	IVNumber          string
	IssueDate         time.Time
	IssuedByUserID    string
	ReceivingStaffGNo string
	// ReceivingDistrictID is set on HQ vouchers
	ReceivingDistrictID *uuid.UUID
	// SourceDistrictID and ReceivingOffice are set on district vouchers
	SourceDistrictID  *uuid.UUID
	ReceivingOffice   string
	ApprovedBy        string
	ApprovalReference string
	Remarks           string
}

// IssuanceDetails carries the receiver and approval metadata of a voucher
type IssuanceDetails struct {
	IssuedByUserID    string
	ReceivingStaffGNo string
	ApprovedBy        string
	ApprovalReference string
	Remarks           string
}

func (d IssuanceDetails) validate() error {
	if strings.TrimSpace(d.IssuedByUserID) == "" {
		return shared.NewValidationError("issuing user is required")
	}
	return nil
}

// NewHQIssuanceVoucher creates an HQ to District voucher
func NewHQIssuanceVoucher(ivNumber string, issueDate time.Time, districtID uuid.UUID, d IssuanceDetails) (*IssuanceVoucher, error) {
	if err := d.validate(); err != nil {
		return nil, err
	}
	if districtID == uuid.Nil {
		return nil, shared.NewValidationError("receiving district is required")
	}
	if strings.TrimSpace(d.ReceivingStaffGNo) == "" {
		return nil, shared.NewValidationError("receiving staff GNo is required")
	}
	v, err := newIssuanceVoucher(TierHQ, ivNumber, issueDate, d)
	if err != nil {
		return nil, err
	}
	v.ReceivingDistrictID = &districtID
	v.AddDomainEvent(NewIssuanceVoucherCreatedEvent(v))
	return v, nil
}

// NewDistrictIssuanceVoucher creates a District to Office voucher. Offices are
// not stock tracked so only the office name is kept.
func NewDistrictIssuanceVoucher(ivNumber string, issueDate time.Time, sourceDistrictID uuid.UUID, office string, d IssuanceDetails) (*IssuanceVoucher, error) {
	if err := d.validate(); err != nil {
		return nil, err
	}
	if sourceDistrictID == uuid.Nil {
		return nil, shared.NewValidationError("source district is required")
	}
	office = strings.TrimSpace(office)
	if office == "" {
		return nil, shared.NewValidationError("receiving office is required")
	}
	v, err := newIssuanceVoucher(TierDistrict, ivNumber, issueDate, d)
	if err != nil {
		return nil, err
	}
	v.SourceDistrictID = &sourceDistrictID
	v.ReceivingOffice = office
	v.AddDomainEvent(NewIssuanceVoucherCreatedEvent(v))
	return v, nil
}

func newIssuanceVoucher(tier Tier, ivNumber string, issueDate time.Time, d IssuanceDetails) (*IssuanceVoucher, error) {
	n, err := ParseVoucherNumber(ivNumber)
	if err != nil {
		return nil, err
	}
	if n.Prefix != PrefixIV {
		return nil, shared.NewValidationError("issuance voucher number must start with %s", PrefixIV)
	}
	return &IssuanceVoucher{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Tier:              tier,
		IVNumber:          ivNumber,
		IssueDate:         issueDate,
		IssuedByUserID:    strings.TrimSpace(d.IssuedByUserID),
		ReceivingStaffGNo: strings.TrimSpace(d.ReceivingStaffGNo),
		ApprovedBy:        d.ApprovedBy,
		ApprovalReference: d.ApprovalReference,
		Remarks:           d.Remarks,
	}, nil
}

// DistrictID returns the district whose stock the voucher's goods sit in after
// issue: the receiving district for HQ vouchers, the source district otherwise.
func (v *IssuanceVoucher) DistrictID() uuid.UUID {
	if v.Tier == TierHQ && v.ReceivingDistrictID != nil {
		return *v.ReceivingDistrictID
	}
	if v.SourceDistrictID != nil {
		return *v.SourceDistrictID
	}
	return uuid.Nil
}

// LARVoucher records goods coming back against an issuance voucher
type LARVoucher struct {
	shared.BaseAggregateRoot
	Tier             Tier
	LARNumber        string
	ReturnDate       time.Time
	ReturnedByUserID string
	IVIDRef          uuid.UUID
	DistrictID       uuid.UUID
	Remarks          string
}

// NewLARVoucher creates a return voucher against iv
func NewLARVoucher(larNumber string, returnDate time.Time, iv *IssuanceVoucher, returnedBy, remarks string) (*LARVoucher, error) {
	if iv == nil {
		return nil, shared.NewValidationError("original issuance voucher is required")
	}
	if strings.TrimSpace(returnedBy) == "" {
		return nil, shared.NewValidationError("returning user is required")
	}
	n, err := ParseVoucherNumber(larNumber)
	if err != nil {
		return nil, err
	}
	if n.Prefix != PrefixLAR {
		return nil, shared.NewValidationError("return voucher number must start with %s", PrefixLAR)
	}
	v := &LARVoucher{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Tier:              iv.Tier,
		LARNumber:         larNumber,
		ReturnDate:        returnDate,
		ReturnedByUserID:  strings.TrimSpace(returnedBy),
		IVIDRef:           iv.ID,
		DistrictID:        iv.DistrictID(),
		Remarks:           remarks,
	}
	v.AddDomainEvent(NewLARVoucherCreatedEvent(v))
	return v, nil
}
