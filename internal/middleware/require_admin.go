package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RequireAdmin vérifie que l'utilisateur a le rôle "admin".
// Les services revérifient de leur côté via la politique d'accès ;
// ce middleware coupe juste court avant d'instancier quoi que ce soit.
func RequireAdmin(c *gin.Context) {
	principal := CurrentPrincipal(c)
	if !principal.IsAdmin() {
		c.JSON(http.StatusForbidden, gin.H{"error": "Accès réservé aux administrateurs"})
		c.Abort()
		return
	}
	c.Next()
}
