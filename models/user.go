package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role is the authorization tag carried by every user row and token claim.
type Role string

// The two roles the service knows about.
const (
	RoleUser      Role = "user"
	RoleSuperuser Role = "superuser"
)

// IsSuperuser is the single authorization predicate used by role-gated
// endpoints.
func (r Role) IsSuperuser() bool {
	return r == RoleSuperuser
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleSuperuser
}

// User holds the structure for the user collection in mongo
type User struct {
	ID            primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Username      string             `json:"username" bson:"username"`
	Password      string             `json:"password,omitempty" bson:"password"`
	Role          Role               `json:"role" bson:"role"`
	Rate          float64            `json:"rate" bson:"rate"`
	CompanyName   string             `json:"companyName" bson:"companyName"`
	InvoiceNumber string             `json:"invoiceNumber" bson:"invoiceNumber"`
	InvoiceToInfo string             `json:"invoiceToInfo" bson:"invoiceToInfo"`
	PerHourRate   float64            `json:"perHourRate" bson:"perHourRate"`
	PerCallRate   float64            `json:"perCallRate" bson:"perCallRate"`
	CreatedAt     interface{}        `json:"createdAt" bson:"createdAt"`
	UpdatedAt     interface{}        `json:"updatedAt" bson:"updatedAt"`
}

// PublicUser is the wire view of a user with the password hash stripped.
type PublicUser struct {
	ID            string      `json:"id"`
	Username      string      `json:"username"`
	Role          Role        `json:"role"`
	Rate          float64     `json:"rate"`
	CompanyName   string      `json:"companyName,omitempty"`
	InvoiceNumber string      `json:"invoiceNumber,omitempty"`
	InvoiceToInfo string      `json:"invoiceToInfo,omitempty"`
	PerHourRate   float64     `json:"perHourRate"`
	PerCallRate   float64     `json:"perCallRate"`
	CreatedAt     interface{} `json:"createdAt,omitempty"`
	UpdatedAt     interface{} `json:"updatedAt,omitempty"`
}

// Public strips the password hash off a user row for responses.
func (u User) Public() PublicUser {
	return PublicUser{
		ID:            u.ID.Hex(),
		Username:      u.Username,
		Role:          u.Role,
		Rate:          u.Rate,
		CompanyName:   u.CompanyName,
		InvoiceNumber: u.InvoiceNumber,
		InvoiceToInfo: u.InvoiceToInfo,
		PerHourRate:   u.PerHourRate,
		PerCallRate:   u.PerCallRate,
		CreatedAt:     u.CreatedAt,
		UpdatedAt:     u.UpdatedAt,
	}
}

// Summary is the compact user view returned by login, register and the
// user listing: id, username, role and rate only.
func (u User) Summary() PublicUser {
	return PublicUser{
		ID:       u.ID.Hex(),
		Username: u.Username,
		Role:     u.Role,
		Rate:     u.Rate,
	}
}
