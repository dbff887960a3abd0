package clients

import (
	"fmt"
	"strings"
	"time"

	"github.com/wims-erp/wims/internal/shared"
)

// Client is a party a salesman sells to. One canonical field per concept;
// legacy aliases are accepted only by the input adapter below.
type Client struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	Email         string     `json:"email,omitempty"`
	Phone         string     `json:"phone,omitempty"`
	Address       string     `json:"address,omitempty"`
	ContactPerson string     `json:"contactPerson,omitempty"`
	GSTNumber     string     `json:"gstNumber,omitempty"`
	City          string     `json:"city,omitempty"`
	Area          string     `json:"area,omitempty"`
	CreatedBy     string     `json:"createdBy,omitempty"`
	OrderCount    int        `json:"orderCount"`
	LastUsed      *time.Time `json:"lastUsed,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
}

// ClientInput accepts the historical field aliases
// (clientName/name/partyName, contactNumber/phone) used by older
// dashboard payloads. Normalize collapses them to the canonical record.
type ClientInput struct {
	ClientName    string `json:"clientName"`
	Name          string `json:"name"`
	PartyName     string `json:"partyName"`
	Email         string `json:"email" validate:"omitempty,email"`
	ContactNumber string `json:"contactNumber"`
	Phone         string `json:"phone"`
	Address       string `json:"address"`
	ContactPerson string `json:"contactPerson"`
	GSTNumber     string `json:"gstNumber"`
	City          string `json:"city"`
	Area          string `json:"area"`
}

// Normalize collapses aliases and enforces the single required field:
// a client name under any of its aliases.
func (in ClientInput) Normalize() (Client, error) {
	name := firstNonEmpty(in.ClientName, in.Name, in.PartyName)
	if name == "" {
		return Client{}, fmt.Errorf("%w: client name is required", shared.ErrValidation)
	}
	return Client{
		Name:          name,
		Email:         strings.TrimSpace(in.Email),
		Phone:         firstNonEmpty(in.ContactNumber, in.Phone),
		Address:       strings.TrimSpace(in.Address),
		ContactPerson: strings.TrimSpace(in.ContactPerson),
		GSTNumber:     strings.TrimSpace(in.GSTNumber),
		City:          strings.TrimSpace(in.City),
		Area:          strings.TrimSpace(in.Area),
	}, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
