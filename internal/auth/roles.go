package auth

import "github.com/havirkesht/backend/internal/models"

type RoleID = uint

const (
	RoleAdmin RoleID = 1
	RoleUser  RoleID = 2
)

type Capability int

const (
	CapAdminister Capability = iota + 1
)

// Capabilities maps a role to what it may do. Built once at startup.
type Capabilities map[RoleID]map[Capability]bool

func DefaultCapabilities() Capabilities {
	return Capabilities{
		RoleAdmin: {CapAdminister: true},
		RoleUser:  {},
	}
}

func (c Capabilities) Can(role RoleID, want Capability) bool {
	return c[role][want]
}

// SeedRoles lists the rows the roles table must contain.
func SeedRoles() []models.Role {
	return []models.Role{
		{ID: RoleAdmin, Name: "admin"},
		{ID: RoleUser, Name: "user"},
	}
}
