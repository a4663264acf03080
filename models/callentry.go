package models

// CallEntry holds one billable on-call visit as captured by the client.
// TotalFee is computed once at entry creation and is authoritative from then
// on, so historical entries keep the rate they were billed at.
type CallEntry struct {
	ID          string  `json:"id"`
	Date        string  `json:"date"` // YYYY-MM-DD
	CallFrom    string  `json:"callFrom"`
	CallTime    string  `json:"callTime"` // HH:MM
	ArrivalTime string  `json:"arrivalTime,omitempty"`
	CallType    string  `json:"callType"`
	ManualHours float64 `json:"manualHours,omitempty"`
	FixedCharge float64 `json:"fixedCharge,omitempty"`
	TotalFee    float64 `json:"totalFee"`
	CreatedAt   string  `json:"createdAt"`
	UpdatedAt   string  `json:"updatedAt"`
}

// HasFixedCharge reports whether the entry bills a flat fee. A positive fixed
// charge makes any hourly input inert.
func (e CallEntry) HasFixedCharge() bool {
	return e.FixedCharge > 0
}
