package recon

import (
	"netkb/internal/database"
)

// Read accessors consumed by reporting tooling. All of them return an
// empty slice, never an error, when nothing matches. Filter terms follow
// the repository priority: existing id, then keyword/type filter, then
// case-insensitive substring, then full scan.

func (e *Engine) GetHosts(filterTerm, domain string) ([]database.Host, error) {
	return database.NewHostRepo(e.db).Find(filterTerm, domain)
}

func (e *Engine) GetDomainControllers(domain string) ([]database.Host, error) {
	return database.NewHostRepo(e.db).DomainControllers(domain)
}

func (e *Engine) GetCredentials(filterTerm, secretType string) ([]database.Credential, error) {
	return database.NewCredentialRepo(e.db).Find(filterTerm, secretType)
}

// GetUser returns credentials for an exact (domain, username) pair,
// any secret type, domain normalized before matching.
func (e *Engine) GetUser(domain, username string) ([]database.Credential, error) {
	return database.NewCredentialRepo(e.db).FindByUser(NormalizeDomain(domain), username)
}

func (e *Engine) GetGroups(filterTerm string) ([]database.Group, error) {
	return database.NewGroupRepo(e.db).Find(filterTerm)
}

// GetGroup resolves a group by its candidate key.
func (e *Engine) GetGroup(domain, name string) ([]database.Group, error) {
	return database.NewGroupRepo(e.db).FindByKey(NormalizeDomain(domain), name)
}

func (e *Engine) GetShares(filterTerm string) ([]database.Share, error) {
	return database.NewShareRepo(e.db).Find(filterTerm)
}

func (e *Engine) GetSharesByAccess(perms string, shareID *uint) ([]database.Share, error) {
	return database.NewShareRepo(e.db).FindByAccess(perms, shareID)
}

func (e *Engine) GetCredentialsWithShareAccess(hostID uint, shareName, perms string) ([]uint, error) {
	return database.NewShareRepo(e.db).CredentialsWithAccess(hostID, shareName, perms)
}

func (e *Engine) GetAdminRelations(credentialID, hostID *uint) ([]database.AdminRelation, error) {
	return database.NewAdminRelationRepo(e.db).Find(credentialID, hostID)
}

func (e *Engine) GetGroupRelations(credentialID, groupID *uint) ([]database.GroupRelation, error) {
	return database.NewGroupRelationRepo(e.db).Find(credentialID, groupID)
}

func (e *Engine) GetLoginRelations(credentialID, hostID *uint) ([]database.LoginRelation, error) {
	return database.NewLoginRelationRepo(e.db).Find(credentialID, hostID)
}
