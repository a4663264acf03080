// Package billing holds the fee and hours rules for on-call visits and the
// aggregation used to build invoices. Everything in here is pure: the stored
// fee on an entry is computed once at capture time and never recomputed.
package billing

// HourlyRate is the standard charge for one hour of on-call work.
const HourlyRate = 55.55

// The two flat call-out fees a visit can be billed at instead of hours.
const (
	FixedChargeStandard = 75
	FixedChargeReduced  = 30
)

// ComputeFee returns the fee for a visit. A positive fixed charge wins
// outright; otherwise positive manual hours are billed at the hourly rate;
// otherwise the visit defaults to exactly one billable hour.
func ComputeFee(manualHours, fixedCharge float64) float64 {
	if fixedCharge > 0 {
		return fixedCharge
	}
	if manualHours > 0 {
		return manualHours * HourlyRate
	}
	return HourlyRate
}

// ComputeHours returns the billable hours for a visit: zero under a fixed
// charge, the manual hours when positive, else the one-hour default.
func ComputeHours(manualHours, fixedCharge float64) float64 {
	if fixedCharge > 0 {
		return 0
	}
	if manualHours > 0 {
		return manualHours
	}
	return 1
}
