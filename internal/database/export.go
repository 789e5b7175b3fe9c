package database

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"netkb/internal/logger"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Snapshot is a full JSON dump of the knowledgebase, used by
// administrative tooling to hand findings to reporting pipelines.
type Snapshot struct {
	ID             string          `json:"id"`
	ExportedAt     time.Time       `json:"exported_at"`
	Hosts          []Host          `json:"hosts"`
	Credentials    []Credential    `json:"credentials"`
	Groups         []Group         `json:"groups"`
	AdminRelations []AdminRelation `json:"admin_relations"`
	GroupRelations []GroupRelation `json:"group_relations"`
	LoginRelations []LoginRelation `json:"login_relations"`
	Shares         []Share         `json:"shares"`
}

// Export writes a snapshot of every table to dir and returns the file path.
// The read runs in one transaction so the dump is internally consistent.
func Export(db *gorm.DB, dir string) (string, error) {
	snap := Snapshot{
		ID:         uuid.NewString(),
		ExportedAt: time.Now().UTC(),
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		for _, dst := range []any{
			&snap.Hosts,
			&snap.Credentials,
			&snap.Groups,
			&snap.AdminRelations,
			&snap.GroupRelations,
			&snap.LoginRelations,
			&snap.Shares,
		} {
			if err := tx.Order("id").Find(dst).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to read knowledgebase: %w", err)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create export directory: %w", err)
	}

	name := fmt.Sprintf("netkb_%s_%s.json", snap.ExportedAt.Format("20060102_150405"), snap.ID[:8])
	path := filepath.Join(dir, name)

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o600); err != nil {
		return "", err
	}

	logger.DB.Info().Str("path", path).
		Int("hosts", len(snap.Hosts)).
		Int("credentials", len(snap.Credentials)).
		Msg("knowledgebase exported")
	return path, nil
}
