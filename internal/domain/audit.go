package domain

import "time"

// Audit action kinds.
const (
	ActionTransfer      = "transfer"
	ActionTopUp         = "top_up"
	ActionWithdraw      = "withdraw"
	ActionDisburse      = "disburse"
	ActionAdmissionFee  = "admission_fee"
	ActionSchoolFee     = "school_fee"
	ActionEscrowHold    = "escrow_hold"
	ActionEscrowRelease = "escrow_release"
	ActionEscrowCancel  = "escrow_cancel"
	ActionReceiptStatus = "receipt_status"
	ActionSetPin        = "set_pin"
	ActionRequestReset  = "request_pin_reset"
	ActionApproveReset  = "approve_pin_reset"
	ActionSetPolicy     = "set_policy"
	ActionEntryStatus   = "entry_status"
	ActionRegister      = "register_profile"
)

// AuditRecord is one traceability record of a state-changing operation.
type AuditRecord struct {
	ID        string         `json:"id"`
	ActorID   string         `json:"actor_id"`
	ActorName string         `json:"actor_name"`
	Kind      string         `json:"kind"`
	Metadata  map[string]any `json:"metadata"`
	CreatedAt time.Time      `json:"created_at"`
}
