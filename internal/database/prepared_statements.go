package database

import (
	"log"
	"sync"

	"github.com/gocql/gocql"
)

var (
	// Prepared statements pour les requêtes fréquentes
	stmtGetUserIDByEmail *gocql.Query
	stmtGetPrincipal     *gocql.Query

	preparedOnce sync.Once
)

// InitPreparedStatements initialise les prepared statements
func InitPreparedStatements() {
	preparedOnce.Do(func() {
		session, err := GetUsersSession()
		if err != nil {
			log.Printf("⚠️ Impossible d'initialiser les prepared statements: %v", err)
			return
		}

		// Requête pour récupérer user_id par email
		stmtGetUserIDByEmail = session.Query("SELECT user_id FROM users_by_email WHERE email = ?")

		// Requête chargée à chaque requête authentifiée : rôles + périmètre
		stmtGetPrincipal = session.Query("SELECT email, name, roles, boutique_ids FROM users WHERE user_id = ?")

		log.Println("✅ Prepared statements initialisés")
	})
}

func GetPreparedGetUserIDByEmail() *gocql.Query {
	return stmtGetUserIDByEmail
}

func GetPreparedGetPrincipal() *gocql.Query {
	return stmtGetPrincipal
}
