// Package recon reconciles scan observations into the knowledgebase:
// it decides whether an incoming host, credential, or group is a
// duplicate of something already stored, a partial update of an existing
// row, or a brand-new entity, and dedupes relation links before insert.
package recon

import (
	"strings"
	"time"

	"netkb/internal/database"
	"netkb/internal/logger"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// Engine applies reconciliation rules on top of the entity store. Each
// operation runs its existence check and write inside one transaction,
// so the check-then-act sequence observes a single snapshot.
type Engine struct {
	db  *gorm.DB
	log zerolog.Logger
}

func New(db *gorm.DB) *Engine {
	return &Engine{db: db, log: logger.Recon}
}

// NormalizeDomain reduces a domain to its short NetBIOS-style form:
// everything before the first dot, uppercased. "corp.local" and "CORP"
// both normalize to "CORP".
func NormalizeDomain(domain string) string {
	short, _, _ := strings.Cut(domain, ".")
	return strings.ToUpper(short)
}

// HostObservation is one sighting of a host. Nil fields were not probed
// in this observation and never overwrite stored values.
type HostObservation struct {
	IP         string
	Hostname   *string
	Domain     *string
	OS         *string
	SMBv1      *bool
	Signing    *bool
	Spooler    *bool
	Zerologon  *bool
	PetitPotam *bool
	IsDC       *bool
}

// ReportHost upserts a host keyed on IP. A new IP inserts a full row;
// a known IP merges only the non-nil observation fields into every
// matching row, last observation winning per field, never per row.
// Returns the id of the row created or last updated.
func (e *Engine) ReportHost(obs HostObservation) (uint, error) {
	if obs.IP == "" {
		return 0, ErrValidation
	}

	var id uint
	err := e.db.Transaction(func(tx *gorm.DB) error {
		hosts := database.NewHostRepo(tx)

		existing, err := hosts.FindByIP(obs.IP)
		if err != nil {
			return err
		}

		if len(existing) == 0 {
			h := database.Host{
				IP:         obs.IP,
				IsDC:       obs.IsDC,
				SMBv1:      obs.SMBv1,
				Signing:    obs.Signing,
				Spooler:    obs.Spooler,
				Zerologon:  obs.Zerologon,
				PetitPotam: obs.PetitPotam,
			}
			if obs.Hostname != nil {
				h.Hostname = *obs.Hostname
			}
			if obs.Domain != nil {
				h.Domain = NormalizeDomain(*obs.Domain)
			}
			if obs.OS != nil {
				h.OS = *obs.OS
			}
			if err := hosts.Create(&h); err != nil {
				return err
			}
			id = h.ID
			e.log.Debug().Str("ip", obs.IP).Uint("id", id).Msg("host created")
			return nil
		}

		// IP is unique in practice, but tolerate duplicates by merging
		// the observation into every match.
		for i := range existing {
			h := &existing[i]
			mergeHost(h, obs)
			if err := hosts.Save(h); err != nil {
				return err
			}
			id = h.ID
		}
		e.log.Debug().Str("ip", obs.IP).Int("matches", len(existing)).Uint("id", id).Msg("host merged")
		return nil
	})
	return id, err
}

// mergeHost overwrites only the fields the observation actually carries.
func mergeHost(h *database.Host, obs HostObservation) {
	if obs.Hostname != nil {
		h.Hostname = *obs.Hostname
	}
	if obs.Domain != nil {
		h.Domain = NormalizeDomain(*obs.Domain)
	}
	if obs.OS != nil {
		h.OS = *obs.OS
	}
	if obs.SMBv1 != nil {
		h.SMBv1 = obs.SMBv1
	}
	if obs.Signing != nil {
		h.Signing = obs.Signing
	}
	if obs.Spooler != nil {
		h.Spooler = obs.Spooler
	}
	if obs.Zerologon != nil {
		h.Zerologon = obs.Zerologon
	}
	if obs.PetitPotam != nil {
		h.PetitPotam = obs.PetitPotam
	}
	if obs.IsDC != nil {
		h.IsDC = obs.IsDC
	}
}

// ReportCredential records a captured credential. A dangling groupID or
// pillagedFrom reference makes the whole call a silent no-op (id 0, nil
// error). A new (domain, username, type) inserts; existing matches are
// completed in place only when they are bare placeholders; rows that
// already carry a secret are never overwritten.
func (e *Engine) ReportCredential(secretType, domain, username, secret string, groupID, pillagedFrom *uint) (uint, error) {
	if username == "" {
		return 0, ErrValidation
	}
	domain = NormalizeDomain(domain)

	var id uint
	err := e.db.Transaction(func(tx *gorm.DB) error {
		creds := database.NewCredentialRepo(tx)
		groups := database.NewGroupRepo(tx)
		hosts := database.NewHostRepo(tx)
		grels := database.NewGroupRelationRepo(tx)

		if groupID != nil {
			ok, err := groups.Exists(*groupID)
			if err != nil {
				return err
			}
			if !ok {
				e.log.Debug().Uint("group_id", *groupID).Msg("credential rejected: unknown group")
				return nil
			}
		}
		if pillagedFrom != nil {
			ok, err := hosts.Exists(*pillagedFrom)
			if err != nil {
				return err
			}
			if !ok {
				e.log.Debug().Uint("host_id", *pillagedFrom).Msg("credential rejected: unknown pillage host")
				return nil
			}
		}

		matches, err := creds.FindByKey(domain, username, secretType)
		if err != nil {
			return err
		}
		if len(matches) == 0 && secretType != "" {
			// A placeholder stores an empty secret type, so it never
			// matches the candidate key of a typed report. Pull it in
			// here so the username gets completed instead of duplicated.
			sameUser, err := creds.FindByUser(domain, username)
			if err != nil {
				return err
			}
			for _, c := range sameUser {
				if c.IsBarePlaceholder() {
					matches = append(matches, c)
				}
			}
		}

		if len(matches) == 0 {
			c := database.Credential{
				Domain:             domain,
				Username:           username,
				Secret:             secret,
				SecretType:         secretType,
				PillagedFromHostID: pillagedFrom,
			}
			if err := creds.Create(&c); err != nil {
				return err
			}
			id = c.ID
			if groupID != nil {
				// New row, no prior link can exist.
				if err := grels.Create(&database.GroupRelation{CredentialID: id, GroupID: *groupID}); err != nil {
					return err
				}
			}
			e.log.Debug().Str("domain", domain).Str("username", username).
				Str("secret_type", secretType).Uint("id", id).Msg("credential created")
			return nil
		}

		// Only bare placeholders are completed; populated rows are left
		// untouched and no extra row is created for the new secret.
		for i := range matches {
			c := &matches[i]
			if !c.IsBarePlaceholder() {
				continue
			}
			c.Secret = secret
			c.SecretType = secretType
			c.PillagedFromHostID = pillagedFrom
			if err := creds.Save(c); err != nil {
				return err
			}
			id = c.ID
			if groupID != nil {
				if err := linkGroupIfMissing(grels, id, *groupID); err != nil {
					return err
				}
			}
		}
		e.log.Debug().Str("domain", domain).Str("username", username).
			Str("secret_type", secretType).Uint("id", id).Msg("credential reconciled")
		return nil
	})
	return id, err
}

// ReportUser records a username-only placeholder. If the user is already
// known under any secret type, the existing row is kept as-is; either way
// a group membership is linked when groupID is given.
func (e *Engine) ReportUser(domain, username string, groupID *uint) (uint, error) {
	if username == "" {
		return 0, ErrValidation
	}
	domain = NormalizeDomain(domain)

	var id uint
	err := e.db.Transaction(func(tx *gorm.DB) error {
		creds := database.NewCredentialRepo(tx)
		groups := database.NewGroupRepo(tx)
		grels := database.NewGroupRelationRepo(tx)

		if groupID != nil {
			ok, err := groups.Exists(*groupID)
			if err != nil {
				return err
			}
			if !ok {
				e.log.Debug().Uint("group_id", *groupID).Msg("user rejected: unknown group")
				return nil
			}
		}

		matches, err := creds.FindByUser(domain, username)
		if err != nil {
			return err
		}

		if len(matches) == 0 {
			c := database.Credential{Domain: domain, Username: username}
			if err := creds.Create(&c); err != nil {
				return err
			}
			id = c.ID
			e.log.Debug().Str("domain", domain).Str("username", username).Uint("id", id).Msg("user placeholder created")
		} else {
			id = matches[0].ID
		}

		if groupID != nil {
			if err := linkGroupIfMissing(grels, id, *groupID); err != nil {
				return err
			}
		}
		return nil
	})
	return id, err
}

// ReportGroup upserts a group keyed on (domain, name). The member count
// and its query timestamp are only touched when a count is supplied.
// Returns the id of the row created or last updated.
func (e *Engine) ReportGroup(domain, name string, adMemberCount *int) (uint, error) {
	if name == "" {
		return 0, ErrValidation
	}
	domain = NormalizeDomain(domain)

	var id uint
	err := e.db.Transaction(func(tx *gorm.DB) error {
		groups := database.NewGroupRepo(tx)

		matches, err := groups.FindByKey(domain, name)
		if err != nil {
			return err
		}

		if len(matches) == 0 {
			g := database.Group{Domain: domain, Name: name}
			if adMemberCount != nil {
				g.ADMemberCount = adMemberCount
				now := time.Now().UTC()
				g.LastQueriedAt = &now
			}
			if err := groups.Create(&g); err != nil {
				return err
			}
			id = g.ID
			e.log.Debug().Str("domain", domain).Str("name", name).Uint("id", id).Msg("group created")
			return nil
		}

		for i := range matches {
			g := &matches[i]
			g.Domain = domain
			g.Name = name
			if adMemberCount != nil {
				g.ADMemberCount = adMemberCount
				now := time.Now().UTC()
				g.LastQueriedAt = &now
			}
			if err := groups.Save(g); err != nil {
				return err
			}
			id = g.ID
		}
		e.log.Debug().Str("domain", domain).Str("name", name).Uint("id", id).Msg("group reconciled")
		return nil
	})
	return id, err
}

// RemoveCredentials deletes credentials by id. Explicit administrative
// operation; scan flow never deletes.
func (e *Engine) RemoveCredentials(ids []uint) error {
	return database.NewCredentialRepo(e.db).Delete(ids)
}

func linkGroupIfMissing(grels *database.GroupRelationRepo, credentialID, groupID uint) error {
	exists, err := grels.Exists(credentialID, groupID)
	if err != nil || exists {
		return err
	}
	return grels.Create(&database.GroupRelation{CredentialID: credentialID, GroupID: groupID})
}
