package models

// Mode is the conversation FSM state of one chat.
type Mode string

const (
	ModeNormal             Mode = "normal"
	ModeAwaitingDate       Mode = "awaiting_date"
	ModeAwaitingDelayCount Mode = "awaiting_delay_count"
)

// ConversationState stores the transient FSM state of one subscriber.
// MedicationKey is set only while Mode is ModeAwaitingDate.
type ConversationState struct {
	Mode          Mode   `db:"mode"           json:"mode"`
	MedicationKey string `db:"medication_key" json:"medication_key,omitempty"`
}

func NormalState() ConversationState {
	return ConversationState{Mode: ModeNormal}
}

func AwaitingDate(key string) ConversationState {
	return ConversationState{Mode: ModeAwaitingDate, MedicationKey: key}
}
