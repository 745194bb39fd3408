package models

// Button actions carried in callback payloads.
const (
	ActionUpdateReminder = "update_reminder"
	ActionDoneMedicine   = "done_medicine"
	ActionDelayMedicine  = "delay_medicine"
)

// Action is the structured payload of a button press.
type Action struct {
	Action        string `json:"action"`
	MedicationKey string `json:"medication_key"`
}

type ReplyKind string

const (
	ReplyText             ReplyKind = "text"
	ReplyConfirmPrompt    ReplyKind = "confirm_prompt"
	ReplyChooseMedication ReplyKind = "choose_medication"
)

// Reply is a channel-neutral outbound message. Renderers turn it into platform markup.
type Reply struct {
	Kind          ReplyKind    `json:"kind"`
	Body          string       `json:"body"`
	MedicationKey string       `json:"medication_key,omitempty"` // confirm_prompt
	Choices       []Medication `json:"choices,omitempty"`        // choose_medication
}

func TextReply(body string) Reply {
	return Reply{Kind: ReplyText, Body: body}
}
