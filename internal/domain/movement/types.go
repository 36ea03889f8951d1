package movement

// Aggregate type constants
const (
	AggregateTypeIssuanceVoucher = "IssuanceVoucher"
	AggregateTypeLARVoucher      = "LARVoucher"
	AggregateTypeItemMovement    = "ItemMovement"
)

// Tier identifies which store a voucher and its movements belong to
type Tier string

const (
	// TierHQ covers HQ to District movements
	TierHQ Tier = "HQ"
	// TierDistrict covers District to Office movements
	TierDistrict Tier = "DISTRICT"
)

// IsValid reports whether t is a known tier
func (t Tier) IsValid() bool {
	return t == TierHQ || t == TierDistrict
}

// IssueType returns the issue movement type of the tier
func (t Tier) IssueType() MovementType {
	if t == TierDistrict {
		return MovementTypeIssueToInternal
	}
	return MovementTypeIssueToDistrict
}

// ReturnType returns the return movement type of the tier
func (t Tier) ReturnType() MovementType {
	if t == TierDistrict {
		return MovementTypeReturnFromInternal
	}
	return MovementTypeReturnFromDistrict
}

// MovementType is the kind of stock movement
type MovementType string

const (
	MovementTypeIssueToDistrict    MovementType = "Issue_To_District"
	MovementTypeReturnFromDistrict MovementType = "Return_From_District"
	MovementTypeIssueToInternal    MovementType = "Issue_To_Internal"
	MovementTypeReturnFromInternal MovementType = "Return_From_Internal"
)

// IsValid reports whether m is a known movement type
func (m MovementType) IsValid() bool {
	return m.IsIssue() || m.IsReturn()
}

// IsIssue reports whether m moves goods out of the source tier
func (m MovementType) IsIssue() bool {
	return m == MovementTypeIssueToDistrict || m == MovementTypeIssueToInternal
}

// IsReturn reports whether m brings goods back to the source tier
func (m MovementType) IsReturn() bool {
	return m == MovementTypeReturnFromDistrict || m == MovementTypeReturnFromInternal
}

// Tier returns the tier m belongs to
func (m MovementType) Tier() Tier {
	switch m {
	case MovementTypeIssueToInternal, MovementTypeReturnFromInternal:
		return TierDistrict
	default:
		return TierHQ
	}
}
