package models

// DoctorInfo holds the biller identity fields rendered on invoices.
type DoctorInfo struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
}

// AppSettings is the client-side settings singleton, replaced wholesale on
// every save.
type AppSettings struct {
	HourlyRate float64    `json:"hourlyRate"`
	DoctorInfo DoctorInfo `json:"doctorInfo"`
}

// DefaultSettings returns the settings used before the user has saved any.
func DefaultSettings() AppSettings {
	return AppSettings{
		HourlyRate: 55.55,
		DoctorInfo: DoctorInfo{
			Name:    "Dr. [Your Name]",
			Address: "[Your Address]",
			Phone:   "[Your Phone]",
			Email:   "[Your Email]",
		},
	}
}
