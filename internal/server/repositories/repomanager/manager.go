package repomanager

import (
	"github.com/dmitrijs2005/geophoto/internal/dbx"
	"github.com/dmitrijs2005/geophoto/internal/server/repositories/photos"
	"github.com/dmitrijs2005/geophoto/internal/server/repositories/quota"
	"github.com/dmitrijs2005/geophoto/internal/server/repositories/users"
)

// RepositoryManager vends repositories bound to a DBTX, so services can run
// a group of repository calls either directly on the pool or inside one
// transaction.
type RepositoryManager interface {
	Users(db dbx.DBTX) users.Repository
	Photos(db dbx.DBTX) photos.Repository
	Quota(db dbx.DBTX) quota.Ledger
}
