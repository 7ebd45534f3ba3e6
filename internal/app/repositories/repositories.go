package repositories

import (
	"github.com/yigit/hackfest/internal/db"
)

// Repositories holds all the repository instances
type Repositories struct {
	RegistrationStore RegistrationStore
}

// NewRepositories initializes the Postgres-backed repositories
func NewRepositories(database *db.PostgresDB) *Repositories {
	return &Repositories{
		RegistrationStore: NewPostgresRegistrationStore(database),
	}
}

// NewMemoryRepositories initializes in-memory repositories
func NewMemoryRepositories() *Repositories {
	return &Repositories{
		RegistrationStore: NewMemoryRegistrationStore(),
	}
}
