// Package reliability snapshots the SQLite databases and ships them to cloud storage.
package reliability

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/rs/zerolog"

	"github.com/aristath/itemsentinel/internal/database"
)

// BackupService writes consistent copies of the live databases
type BackupService struct {
	databases map[string]*database.DB
	log       zerolog.Logger
}

// NewBackupService creates a backup service over the named databases
func NewBackupService(databases map[string]*database.DB, log zerolog.Logger) *BackupService {
	return &BackupService{
		databases: databases,
		log:       log.With().Str("service", "backup").Logger(),
	}
}

// DatabaseNames returns the names of the databases that can be backed up, sorted
func (s *BackupService) DatabaseNames() []string {
	names := make([]string, 0, len(s.databases))
	for name, db := range s.databases {
		if db != nil {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// Snapshot writes a compacted copy of one database to dst and verifies the copy.
// An existing file at dst is replaced.
func (s *BackupService) Snapshot(ctx context.Context, name, dst string) error {
	db, ok := s.databases[name]
	if !ok || db == nil {
		return fmt.Errorf("unknown database: %s", name)
	}

	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return fmt.Errorf("failed to create backup directory: %w", err)
	}
	// VACUUM INTO refuses to overwrite
	if err := os.Remove(dst); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove stale backup %s: %w", dst, err)
	}

	if err := db.VacuumInto(ctx, dst); err != nil {
		return err
	}

	if err := verifyBackup(ctx, dst); err != nil {
		_ = os.Remove(dst)
		return fmt.Errorf("backup of %s failed verification: %w", name, err)
	}

	s.log.Debug().Str("database", name).Str("path", dst).Msg("Database snapshot written")
	return nil
}

// SnapshotAll writes every database into dir as <name>.db and returns the written paths
func (s *BackupService) SnapshotAll(ctx context.Context, dir string) (map[string]string, error) {
	paths := make(map[string]string, len(s.databases))
	for _, name := range s.DatabaseNames() {
		dst := filepath.Join(dir, name+".db")
		if err := s.Snapshot(ctx, name, dst); err != nil {
			return nil, fmt.Errorf("failed to backup %s: %w", name, err)
		}
		paths[name] = dst
	}
	return paths, nil
}

// verifyBackup opens a backup file read-only and runs SQLite's integrity check
func verifyBackup(ctx context.Context, path string) error {
	conn, err := sql.Open("sqlite", "file:"+path+"?mode=ro")
	if err != nil {
		return fmt.Errorf("failed to open backup: %w", err)
	}
	defer conn.Close()

	var result string
	if err := conn.QueryRowContext(ctx, "PRAGMA integrity_check").Scan(&result); err != nil {
		return fmt.Errorf("integrity check failed: %w", err)
	}
	if result != "ok" {
		return fmt.Errorf("integrity check returned: %s", result)
	}
	return nil
}
