package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gocql/gocql"

	"vitrine_back_end/internal/auth"
	"vitrine_back_end/internal/models"
)

// PrincipalStore implémente auth.PrincipalStore sur le keyspace users.
// Les rôles et le périmètre boutique vivent sur la ligne utilisateur :
// une seule écriture les met à jour ensemble, pas de fenêtre incohérente.
type PrincipalStore struct{}

func NewPrincipalStore() *PrincipalStore {
	return &PrincipalStore{}
}

func (s *PrincipalStore) GetByEmail(ctx context.Context, email string) (*models.Principal, error) {
	session, err := GetUsersSession()
	if err != nil {
		return nil, err
	}

	var userID string
	if err := session.Query(`SELECT user_id FROM users_by_email WHERE email = ?`, email).
		WithContext(ctx).Scan(&userID); err != nil {
		if errors.Is(err, gocql.ErrNotFound) {
			return nil, auth.ErrPrincipalNotFound
		}
		return nil, fmt.Errorf("lecture user_id pour %s: %w", email, err)
	}
	return s.GetByID(ctx, userID)
}

func (s *PrincipalStore) GetByID(ctx context.Context, userID string) (*models.Principal, error) {
	session, err := GetUsersSession()
	if err != nil {
		return nil, err
	}

	p := models.Principal{ID: userID}
	if err := session.Query(
		`SELECT email, name, roles, boutique_ids FROM users WHERE user_id = ?`, userID,
	).WithContext(ctx).Scan(&p.Email, &p.Name, &p.Roles, &p.AssignedBoutiques); err != nil {
		if errors.Is(err, gocql.ErrNotFound) {
			return nil, auth.ErrPrincipalNotFound
		}
		return nil, fmt.Errorf("lecture utilisateur %s: %w", userID, err)
	}
	return &p, nil
}

// SaveRoleAssignment écrit rôles et périmètre en une seule mutation
func (s *PrincipalStore) SaveRoleAssignment(ctx context.Context, p *models.Principal) error {
	session, err := GetUsersSession()
	if err != nil {
		return err
	}

	return session.Query(
		`UPDATE users SET roles = ?, boutique_ids = ?, updated_at = ? WHERE user_id = ?`,
		p.Roles, p.AssignedBoutiques, time.Now(), p.ID,
	).WithContext(ctx).Exec()
}
