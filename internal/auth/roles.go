package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gocql/gocql"

	"vitrine_back_end/internal/models"
)

var (
	ErrPrincipalNotFound = errors.New("utilisateur introuvable")
	ErrInvalidRole       = errors.New("rôle inconnu")
)

// UnknownBoutiquesError : au moins un id de boutique n'existe pas.
// L'assignation est tout-ou-rien, on ne pose jamais un sous-ensemble.
type UnknownBoutiquesError struct {
	Missing []gocql.UUID
}

func (e *UnknownBoutiquesError) Error() string {
	return fmt.Sprintf("boutiques inconnues: %v", e.Missing)
}

// PrincipalStore charge et persiste les métadonnées de rôle d'un principal.
// SaveRoleAssignment doit écrire rôles et périmètre en une seule mutation.
type PrincipalStore interface {
	GetByEmail(ctx context.Context, email string) (*models.Principal, error)
	SaveRoleAssignment(ctx context.Context, p *models.Principal) error
}

// BoutiqueStore valide l'existence des boutiques référencées
type BoutiqueStore interface {
	MissingBoutiques(ctx context.Context, ids []gocql.UUID) ([]gocql.UUID, error)
}

// RoleService gère l'attribution des rôles et des périmètres boutique.
// Invariant maintenu à chaque mutation commitée : périmètre non vide ⇔
// rôle boutique_admin présent (sauf promotion explicite sans boutique,
// qui donne un admin de rien en attendant son périmètre).
type RoleService struct {
	principals PrincipalStore
	boutiques  BoutiqueStore
	opTimeout  time.Duration
	invalidate func(userID string)
}

func NewRoleService(principals PrincipalStore, boutiques BoutiqueStore, invalidate func(userID string)) *RoleService {
	return &RoleService{
		principals: principals,
		boutiques:  boutiques,
		opTimeout:  5 * time.Second,
		invalidate: invalidate,
	}
}

// SetRole change le rôle d'un utilisateur (user ou boutique_admin).
// Rétrograder en user vide le périmètre boutique dans la même écriture :
// pas de fenêtre où un utilisateur rétrogradé garde un accès périmé.
func (s *RoleService) SetRole(ctx context.Context, actor models.Principal, email, role string) (*models.Principal, error) {
	if d := EvaluateGlobal(actor, ActionManageRoles); !d.Allowed {
		return nil, &DeniedError{Reason: d.Reason}
	}

	ctx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()

	p, err := s.principals.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	switch role {
	case models.RoleUser:
		p.Roles = removeRole(p.Roles, models.RoleBoutiqueAdmin)
		p.Roles = ensureRole(p.Roles, models.RoleUser)
		p.AssignedBoutiques = nil
	case models.RoleBoutiqueAdmin:
		// Le rôle seul n'ouvre aucune boutique : le périmètre
		// s'assigne séparément via AssignBoutiques.
		p.Roles = ensureRole(p.Roles, models.RoleBoutiqueAdmin)
		p.Roles = ensureRole(p.Roles, models.RoleUser)
	default:
		return nil, fmt.Errorf("%w: %s", ErrInvalidRole, role)
	}

	if err := s.principals.SaveRoleAssignment(ctx, p); err != nil {
		return nil, fmt.Errorf("échec persistance rôle pour %s: %w", email, err)
	}
	if s.invalidate != nil {
		s.invalidate(p.ID)
	}
	return p, nil
}

// AssignBoutiques remplace (jamais fusionne) le périmètre boutique d'un
// utilisateur. Tous les ids doivent exister, sinon l'appel entier échoue.
// Périmètre non vide → boutique_admin garanti ; vide → retour à user.
func (s *RoleService) AssignBoutiques(ctx context.Context, actor models.Principal, email string, ids []gocql.UUID) (*models.Principal, error) {
	if d := EvaluateGlobal(actor, ActionAssignBoutiques); !d.Allowed {
		return nil, &DeniedError{Reason: d.Reason}
	}

	ctx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()

	p, err := s.principals.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	ids = dedupe(ids)
	if len(ids) > 0 {
		missing, err := s.boutiques.MissingBoutiques(ctx, ids)
		if err != nil {
			return nil, fmt.Errorf("échec validation boutiques: %w", err)
		}
		if len(missing) > 0 {
			return nil, &UnknownBoutiquesError{Missing: missing}
		}
	}

	p.AssignedBoutiques = ids
	if len(ids) > 0 {
		p.Roles = ensureRole(p.Roles, models.RoleBoutiqueAdmin)
	} else {
		p.Roles = removeRole(p.Roles, models.RoleBoutiqueAdmin)
		p.Roles = ensureRole(p.Roles, models.RoleUser)
	}

	if err := s.principals.SaveRoleAssignment(ctx, p); err != nil {
		return nil, fmt.Errorf("échec persistance périmètre pour %s: %w", email, err)
	}
	if s.invalidate != nil {
		s.invalidate(p.ID)
	}
	return p, nil
}

func ensureRole(roles []string, role string) []string {
	for _, r := range roles {
		if r == role {
			return roles
		}
	}
	return append(roles, role)
}

func removeRole(roles []string, role string) []string {
	out := roles[:0]
	for _, r := range roles {
		if r != role {
			out = append(out, r)
		}
	}
	return out
}

func dedupe(ids []gocql.UUID) []gocql.UUID {
	seen := make(map[gocql.UUID]bool, len(ids))
	out := make([]gocql.UUID, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
