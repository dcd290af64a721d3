// Package repomanager provides a concrete RepositoryManager for PostgreSQL,
// wiring together the repository constructors.
package repomanager

import (
	"github.com/dmitrijs2005/geophoto/internal/dbx"
	"github.com/dmitrijs2005/geophoto/internal/server/repositories/photos"
	"github.com/dmitrijs2005/geophoto/internal/server/repositories/quota"
	"github.com/dmitrijs2005/geophoto/internal/server/repositories/users"
)

// PostgresRepositoryManager vends PostgreSQL-backed repository implementations.
type PostgresRepositoryManager struct{}

// NewPostgresRepositoryManager constructs a PostgreSQL-backed RepositoryManager.
func NewPostgresRepositoryManager() *PostgresRepositoryManager {
	return &PostgresRepositoryManager{}
}

// Users returns a users.Repository bound to the provided DBTX.
func (m *PostgresRepositoryManager) Users(db dbx.DBTX) users.Repository {
	return users.NewPostgresRepository(db)
}

// Photos returns a photos.Repository bound to the provided DBTX.
func (m *PostgresRepositoryManager) Photos(db dbx.DBTX) photos.Repository {
	return photos.NewPostgresRepository(db)
}

// Quota returns a quota.Ledger bound to the provided DBTX.
func (m *PostgresRepositoryManager) Quota(db dbx.DBTX) quota.Ledger {
	return quota.NewPostgresLedger(db)
}
