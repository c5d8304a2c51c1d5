package entities

// Membership types for a filled position. The fills_position edge property is
// authoritative when present; the position entity's own membership_type
// property acts as the default for future holders.
const (
	MembershipMandatory = "mandatory"
	MembershipOptional  = "optional"
)

// CapabilityPrefix is the property-key prefix marking boolean capability
// flags on a position entity (can_manage_agenda, can_record_decisions, ...).
const CapabilityPrefix = "can_"

// PositionView is the typed view of a position inside an organizational unit,
// including vacancy: a vacant position has HolderID nil and empty holder
// fields. Vacancy is meaningful — a mandatory position with no holder is a
// data-integrity signal.
type PositionView struct {
	PositionID     int64  `json:"position_id"`
	Name           string `json:"name"`
	Label          string `json:"label"`
	MembershipType string `json:"membership_type"`
	HolderID       *int64 `json:"holder_id,omitempty"`
	HolderName     string `json:"holder_name,omitempty"`
	HolderLabel    string `json:"holder_label,omitempty"`
}

// Filled reports whether the position currently has a holder.
func (v *PositionView) Filled() bool {
	return v.HolderID != nil
}
