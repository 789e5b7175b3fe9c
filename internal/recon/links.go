package recon

import (
	"errors"

	"netkb/internal/database"

	"gorm.io/gorm"
)

// CredentialSelector picks credentials for a relation link: either a
// single row by ID, or every row matching the exact
// (secret type, domain, username, secret) tuple.
type CredentialSelector struct {
	ID         *uint
	SecretType string
	Domain     string
	Username   string
	Secret     string
}

// LinkOptions bounds selector fan-out. Without AllowFanOut a selector
// resolving to more than one credential or host aborts with
// ErrAmbiguousSelector instead of linking the whole Cartesian product.
type LinkOptions struct {
	AllowFanOut bool
}

// LinkAdmin records "credential has admin rights on host" for every
// resolved (credential, host) pair not already linked. Hosts are matched
// by IP substring. Returns the number of links inserted.
func (e *Engine) LinkAdmin(sel CredentialSelector, hostFilter string, opts LinkOptions) (int, error) {
	var created int
	err := e.db.Transaction(func(tx *gorm.DB) error {
		creds, hosts, err := e.resolvePairs(tx, sel, hostFilter, opts)
		if err != nil {
			return err
		}

		rels := database.NewAdminRelationRepo(tx)
		for _, c := range creds {
			for _, h := range hosts {
				exists, err := rels.Exists(c.ID, h.ID)
				if err != nil {
					return err
				}
				if exists {
					continue
				}
				if err := rels.Create(&database.AdminRelation{CredentialID: c.ID, HostID: h.ID}); err != nil {
					return err
				}
				created++
				e.log.Debug().Uint("credential_id", c.ID).Uint("host_id", h.ID).Msg("admin link created")
			}
		}
		return nil
	})
	return created, err
}

// LinkLogin records an observed interactive session, with the same
// selector resolution and dedupe discipline as LinkAdmin.
func (e *Engine) LinkLogin(sel CredentialSelector, hostFilter string, opts LinkOptions) (int, error) {
	var created int
	err := e.db.Transaction(func(tx *gorm.DB) error {
		creds, hosts, err := e.resolvePairs(tx, sel, hostFilter, opts)
		if err != nil {
			return err
		}

		rels := database.NewLoginRelationRepo(tx)
		for _, c := range creds {
			for _, h := range hosts {
				exists, err := rels.Exists(c.ID, h.ID)
				if err != nil {
					return err
				}
				if exists {
					continue
				}
				if err := rels.Create(&database.LoginRelation{CredentialID: c.ID, HostID: h.ID}); err != nil {
					return err
				}
				created++
				e.log.Debug().Uint("credential_id", c.ID).Uint("host_id", h.ID).Msg("login link created")
			}
		}
		return nil
	})
	return created, err
}

// resolvePairs resolves the credential selector and the host IP filter.
// Either side resolving to nothing yields empty slices (the link call
// becomes a no-op); resolving to several without fan-out is an error.
func (e *Engine) resolvePairs(tx *gorm.DB, sel CredentialSelector, hostFilter string, opts LinkOptions) ([]database.Credential, []database.Host, error) {
	credRepo := database.NewCredentialRepo(tx)
	hostRepo := database.NewHostRepo(tx)

	var creds []database.Credential
	if sel.ID != nil {
		c, err := credRepo.GetByID(*sel.ID)
		if err == nil {
			creds = []database.Credential{*c}
		} else if !errors.Is(err, database.ErrNotFound) {
			return nil, nil, err
		}
	} else {
		var err error
		creds, err = credRepo.FindExact(sel.SecretType, NormalizeDomain(sel.Domain), sel.Username, sel.Secret)
		if err != nil {
			return nil, nil, err
		}
	}

	hosts, err := hostRepo.FindByIPSubstring(hostFilter)
	if err != nil {
		return nil, nil, err
	}

	if !opts.AllowFanOut && (len(creds) > 1 || len(hosts) > 1) {
		e.log.Debug().Int("credentials", len(creds)).Int("hosts", len(hosts)).
			Msg("link aborted: ambiguous selector")
		return nil, nil, ErrAmbiguousSelector
	}
	return creds, hosts, nil
}

// UnlinkAdminByCredential deletes every admin relation referencing any
// of the given credential ids.
func (e *Engine) UnlinkAdminByCredential(ids []uint) error {
	return database.NewAdminRelationRepo(e.db).DeleteByCredentials(ids)
}

// UnlinkAdminByHost deletes every admin relation referencing any of the
// given host ids.
func (e *Engine) UnlinkAdminByHost(ids []uint) error {
	return database.NewAdminRelationRepo(e.db).DeleteByHosts(ids)
}

// LinkGroup links a credential into a group. Dangling references make
// the call a silent no-op; an existing link is left as-is.
func (e *Engine) LinkGroup(credentialID, groupID uint) (bool, error) {
	var created bool
	err := e.db.Transaction(func(tx *gorm.DB) error {
		credOK, err := database.NewCredentialRepo(tx).Exists(credentialID)
		if err != nil {
			return err
		}
		groupOK, err := database.NewGroupRepo(tx).Exists(groupID)
		if err != nil {
			return err
		}
		if !credOK || !groupOK {
			e.log.Debug().Uint("credential_id", credentialID).Uint("group_id", groupID).
				Msg("group link rejected: dangling reference")
			return nil
		}

		rels := database.NewGroupRelationRepo(tx)
		exists, err := rels.Exists(credentialID, groupID)
		if err != nil || exists {
			return err
		}
		if err := rels.Create(&database.GroupRelation{CredentialID: credentialID, GroupID: groupID}); err != nil {
			return err
		}
		created = true
		return nil
	})
	return created, err
}

// UnlinkGroup deletes group relations by credential and/or group id.
func (e *Engine) UnlinkGroup(credentialID, groupID *uint) error {
	return database.NewGroupRelationRepo(e.db).Delete(credentialID, groupID)
}

// AddShare records a share enumeration result. Re-reporting the same
// (host, credential, name) refreshes remark and access flags in place.
// Dangling host or credential references are silent no-ops.
func (e *Engine) AddShare(hostID uint, credentialID *uint, name, remark string, readable, writable bool) (uint, error) {
	if name == "" {
		return 0, ErrValidation
	}

	var id uint
	err := e.db.Transaction(func(tx *gorm.DB) error {
		hostOK, err := database.NewHostRepo(tx).Exists(hostID)
		if err != nil {
			return err
		}
		if !hostOK {
			e.log.Debug().Uint("host_id", hostID).Msg("share rejected: unknown host")
			return nil
		}
		if credentialID != nil {
			credOK, err := database.NewCredentialRepo(tx).Exists(*credentialID)
			if err != nil {
				return err
			}
			if !credOK {
				e.log.Debug().Uint("credential_id", *credentialID).Msg("share rejected: unknown credential")
				return nil
			}
		}

		s := database.Share{
			HostID:       hostID,
			CredentialID: credentialID,
			Name:         name,
			Remark:       remark,
			Readable:     readable,
			Writable:     writable,
		}
		if err := database.NewShareRepo(tx).Upsert(&s); err != nil {
			return err
		}
		id = s.ID
		return nil
	})
	return id, err
}
