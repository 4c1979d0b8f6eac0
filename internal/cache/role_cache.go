package cache

import (
	"context"
	"encoding/json"
	"time"

	"vitrine_back_end/internal/database"
	"vitrine_back_end/internal/models"
)

const (
	// Cache les métadonnées de rôle pendant 5 min : évite une lecture
	// ScyllaDB à chaque requête authentifiée
	PrincipalCacheTTL = 5 * time.Minute

	principalKeyPrefix = "principal:"
)

// GetPrincipalFromCache retourne le principal mis en cache, ou false
func GetPrincipalFromCache(userID string) (*models.Principal, bool) {
	ctx := context.Background()

	raw, err := database.Redis.Get(ctx, principalKeyPrefix+userID).Bytes()
	if err != nil {
		return nil, false
	}

	var p models.Principal
	if err := json.Unmarshal(raw, &p); err != nil {
		// Entrée corrompue : on la purge et on repart de la base
		database.Redis.Del(ctx, principalKeyPrefix+userID)
		return nil, false
	}
	return &p, true
}

// SetPrincipalInCache met en cache les métadonnées de rôle d'un principal
func SetPrincipalInCache(p *models.Principal) {
	ctx := context.Background()

	raw, err := json.Marshal(p)
	if err != nil {
		return
	}
	database.Redis.Set(ctx, principalKeyPrefix+p.ID, raw, PrincipalCacheTTL)
}

// InvalidatePrincipalCache purge le cache après une mutation de rôle ou
// de périmètre boutique : la prochaine requête relit la base
func InvalidatePrincipalCache(userID string) {
	ctx := context.Background()
	database.Redis.Del(ctx, principalKeyPrefix+userID)
}
