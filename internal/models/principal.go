package models

import (
	"github.com/gocql/gocql"
)

// Rôles reconnus par le backend
const (
	RoleAdmin         = "admin"
	RoleBoutiqueAdmin = "boutique_admin"
	RoleUser          = "user"
)

// Principal est l'acteur authentifié (ou anonyme) d'une requête.
// Les rôles et les boutiques assignées sont toujours portés explicitement,
// jamais déduits d'un état ambiant.
type Principal struct {
	ID                string       `json:"user_id"`
	Email             string       `json:"email"`
	Name              string       `json:"name,omitempty"`
	Roles             []string     `json:"roles"`
	AssignedBoutiques []gocql.UUID `json:"assigned_boutiques,omitempty"`
}

func (p Principal) IsAnonymous() bool {
	return p.ID == ""
}

func (p Principal) HasRole(role string) bool {
	for _, r := range p.Roles {
		if r == role {
			return true
		}
	}
	return false
}

func (p Principal) IsAdmin() bool {
	return p.HasRole(RoleAdmin)
}

func (p Principal) IsBoutiqueAdmin() bool {
	return p.HasRole(RoleBoutiqueAdmin)
}

// HasBoutique vérifie qu'une boutique fait partie du périmètre assigné.
// Un admin global n'en a pas besoin : il passe par IsAdmin().
func (p Principal) HasBoutique(id gocql.UUID) bool {
	for _, b := range p.AssignedBoutiques {
		if b == id {
			return true
		}
	}
	return false
}
