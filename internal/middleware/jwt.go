package middleware

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"vitrine_back_end/internal/cache"
	"vitrine_back_end/internal/database"
	"vitrine_back_end/internal/models"
)

var jwtSecret = []byte(os.Getenv("JWT_SECRET"))

const principalContextKey = "principal"

func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")

		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Token manquant"})
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			log.Printf("❌ Format Authorization invalide: %v parties", len(parts))
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Format Authorization invalide"})
			c.Abort()
			return
		}

		token, err := jwt.Parse(parts[1], func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("méthode de signature inattendue: %v", token.Header["alg"])
			}
			return jwtSecret, nil
		})
		if err != nil {
			log.Printf("❌ Erreur parsing JWT: %v", err)
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Token invalide"})
			c.Abort()
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok || !token.Valid {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Token invalide"})
			c.Abort()
			return
		}

		// Vérifier l'expiration
		if exp, ok := claims["exp"].(float64); ok {
			if time.Now().Unix() > int64(exp) {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "Token expiré"})
				c.Abort()
				return
			}
		}

		userID, ok := claims["user_id"].(string)
		if !ok || userID == "" {
			log.Printf("❌ user_id manquant ou invalide dans claims: %+v", claims)
			c.JSON(http.StatusUnauthorized, gin.H{"error": "user_id manquant"})
			c.Abort()
			return
		}

		// Les rôles et le périmètre boutique sont relus côté serveur
		// (cache puis base), jamais pris au mot du token : un token émis
		// avant une rétrogradation resterait sinon porteur de droits.
		principal, err := loadPrincipal(userID)
		if err != nil {
			log.Printf("❌ Impossible de charger le principal %s: %v", userID, err)
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Utilisateur inconnu"})
			c.Abort()
			return
		}

		c.Set(principalContextKey, *principal)
		c.Set("user_id", principal.ID)
		c.Set("email", principal.Email)

		c.Next()
	}
}

// loadPrincipal lit le cache redis puis la base
func loadPrincipal(userID string) (*models.Principal, error) {
	if p, ok := cache.GetPrincipalFromCache(userID); ok {
		return p, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	store := database.NewPrincipalStore()
	p, err := store.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	cache.SetPrincipalInCache(p)
	return p, nil
}

// CurrentPrincipal extrait le principal typé du contexte gin. Retourne un
// principal anonyme si le middleware n'est pas passé : la politique d'accès
// refusera d'elle-même.
func CurrentPrincipal(c *gin.Context) models.Principal {
	v, exists := c.Get(principalContextKey)
	if !exists {
		return models.Principal{}
	}
	p, ok := v.(models.Principal)
	if !ok {
		return models.Principal{}
	}
	return p
}
