package database

import (
	"time"
)

// Secret types stored on a Credential. An empty SecretType together with an
// empty Secret marks a bare placeholder: a username we know about but have
// not captured a secret for yet.
const (
	SecretTypeHash      = "hash"
	SecretTypePlaintext = "plaintext"
)

// Host is a machine seen during a scan. The boolean capability and
// vulnerability flags are tri-state: nil means never probed.
type Host struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	IP         string    `gorm:"index;not null" json:"ip"`
	Hostname   string    `gorm:"index" json:"hostname"`
	Domain     string    `gorm:"index" json:"domain"`
	OS         string    `json:"os"`
	IsDC       *bool     `gorm:"column:is_dc" json:"is_dc,omitempty"`
	SMBv1      *bool     `gorm:"column:smbv1" json:"smbv1,omitempty"`
	Signing    *bool     `json:"signing,omitempty"`
	Spooler    *bool     `json:"spooler,omitempty"`
	Zerologon  *bool     `json:"zerologon,omitempty"`
	PetitPotam *bool     `gorm:"column:petitpotam" json:"petitpotam,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Credential is an account observed or captured during a scan. Candidate
// key is (domain, username, secret_type), compared case-insensitively.
type Credential struct {
	ID                 uint      `gorm:"primaryKey" json:"id"`
	Domain             string    `gorm:"index" json:"domain"`
	Username           string    `gorm:"index" json:"username"`
	Secret             string    `json:"secret"`
	SecretType         string    `gorm:"index" json:"secret_type"`
	PillagedFromHostID *uint     `gorm:"index" json:"pillaged_from_host_id,omitempty"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// IsBarePlaceholder reports whether the row carries a username only: no
// secret, no secret type, no pillage source. Only such rows may be
// completed in place by reconciliation.
func (c *Credential) IsBarePlaceholder() bool {
	return c.Secret == "" && c.SecretType == "" && c.PillagedFromHostID == nil
}

// Group is an AD group. ADMemberCount and LastQueriedAt are only set once
// the group has actually been enumerated against the directory.
type Group struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	Domain        string     `gorm:"index" json:"domain"`
	Name          string     `gorm:"index" json:"name"`
	ADMemberCount *int       `gorm:"column:ad_member_count" json:"ad_member_count,omitempty"`
	LastQueriedAt *time.Time `json:"last_queried_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// AdminRelation records that a credential has administrative access on a host.
type AdminRelation struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	CredentialID uint      `gorm:"uniqueIndex:idx_admin_pair;not null" json:"credential_id"`
	HostID       uint      `gorm:"uniqueIndex:idx_admin_pair;not null" json:"host_id"`
	CreatedAt    time.Time `json:"created_at"`
}

// GroupRelation records group membership of a credential.
type GroupRelation struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	CredentialID uint      `gorm:"uniqueIndex:idx_group_pair;not null" json:"credential_id"`
	GroupID      uint      `gorm:"uniqueIndex:idx_group_pair;not null" json:"group_id"`
	CreatedAt    time.Time `json:"created_at"`
}

// LoginRelation records an observed interactive session of a credential on a host.
type LoginRelation struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	CredentialID uint      `gorm:"uniqueIndex:idx_login_pair;not null" json:"credential_id"`
	HostID       uint      `gorm:"uniqueIndex:idx_login_pair;not null" json:"host_id"`
	CreatedAt    time.Time `json:"created_at"`
}

// Share is an SMB share enumerated on a host, optionally tied to the
// credential whose access was tested. Unique on (host, credential, name).
type Share struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	HostID       uint      `gorm:"uniqueIndex:idx_share_key;not null" json:"host_id"`
	CredentialID *uint     `gorm:"uniqueIndex:idx_share_key" json:"credential_id,omitempty"`
	Name         string    `gorm:"uniqueIndex:idx_share_key;not null" json:"name"`
	Remark       string    `json:"remark"`
	Readable     bool      `gorm:"default:false" json:"readable"`
	Writable     bool      `gorm:"default:false" json:"writable"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
