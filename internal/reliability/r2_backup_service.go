package reliability

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/itemsentinel/internal/events"
)

const (
	backupPrefix        = "itemsentinel-backup-"
	backupSuffix        = ".tar.gz"
	backupTimeLayout    = "2006-01-02-150405"
	metadataFilename    = "backup-metadata.json"
	backupFormatVersion = "1"
)

// EventPublisher is the slice of the event bus the backup service needs
type EventPublisher interface {
	Emit(module string, data events.EventData)
}

// R2BackupService manages cloud backups to Cloudflare R2
type R2BackupService struct {
	store         ObjectStore
	backupService *BackupService
	events        EventPublisher
	stagingDir    string
	now           func() time.Time
	log           zerolog.Logger
}

// BackupMetadata is stored next to the databases inside every archive
type BackupMetadata struct {
	Timestamp time.Time          `json:"timestamp"`
	Version   string             `json:"version"`
	Databases []DatabaseMetadata `json:"databases"`
}

// DatabaseMetadata describes a single database in the backup
type DatabaseMetadata struct {
	Name      string `json:"name"`
	Filename  string `json:"filename"`
	SizeBytes int64  `json:"size_bytes"`
	Checksum  string `json:"checksum"`
}

// BackupInfo represents a backup stored in the bucket
type BackupInfo struct {
	Filename  string    `json:"filename"`
	Timestamp time.Time `json:"timestamp"`
	SizeBytes int64     `json:"size_bytes"`
	AgeHours  int64     `json:"age_hours"`
}

// NewR2BackupService creates a new R2 backup service. publisher may be nil.
func NewR2BackupService(
	store ObjectStore,
	backupService *BackupService,
	publisher EventPublisher,
	dataDir string,
	log zerolog.Logger,
) *R2BackupService {
	return &R2BackupService{
		store:         store,
		backupService: backupService,
		events:        publisher,
		stagingDir:    filepath.Join(dataDir, "r2-staging"),
		now:           time.Now,
		log:           log.With().Str("service", "r2_backup").Logger(),
	}
}

// CreateAndUpload snapshots every database, archives the snapshots with their metadata and
// uploads the archive
func (s *R2BackupService) CreateAndUpload(ctx context.Context) (*BackupInfo, error) {
	s.log.Info().Msg("Starting R2 backup")
	startTime := time.Now()

	if err := os.MkdirAll(s.stagingDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create staging directory: %w", err)
	}
	defer os.RemoveAll(s.stagingDir)

	timestamp := s.now().UTC().Truncate(time.Second)
	archiveName := backupPrefix + timestamp.Format(backupTimeLayout) + backupSuffix
	archivePath := filepath.Join(s.stagingDir, archiveName)

	snapshotDir := filepath.Join(s.stagingDir, "databases")
	paths, err := s.backupService.SnapshotAll(ctx, snapshotDir)
	if err != nil {
		return nil, err
	}

	metadata, err := buildMetadata(timestamp, paths)
	if err != nil {
		return nil, err
	}

	metadataPath := filepath.Join(snapshotDir, metadataFilename)
	if err := writeMetadata(metadataPath, metadata); err != nil {
		return nil, fmt.Errorf("failed to write metadata: %w", err)
	}

	files := make([]string, 0, len(metadata.Databases)+1)
	for _, db := range metadata.Databases {
		files = append(files, db.Filename)
	}
	files = append(files, metadataFilename)

	if err := createArchive(archivePath, snapshotDir, files); err != nil {
		return nil, fmt.Errorf("failed to create archive: %w", err)
	}

	archive, err := os.Open(archivePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open archive: %w", err)
	}
	defer archive.Close()

	info, err := archive.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat archive: %w", err)
	}

	if err := s.store.Upload(ctx, archiveName, archive, info.Size()); err != nil {
		return nil, fmt.Errorf("failed to upload to r2: %w", err)
	}

	s.log.Info().
		Dur("duration_ms", time.Since(startTime)).
		Str("archive", archiveName).
		Int64("size_bytes", info.Size()).
		Msg("R2 backup completed successfully")

	return &BackupInfo{Filename: archiveName, Timestamp: timestamp, SizeBytes: info.Size()}, nil
}

// ListBackups lists the backups stored in the bucket, newest first
func (s *R2BackupService) ListBackups(ctx context.Context) ([]BackupInfo, error) {
	objects, err := s.store.List(ctx, backupPrefix)
	if err != nil {
		return nil, fmt.Errorf("failed to list r2 backups: %w", err)
	}

	now := s.now()
	backups := make([]BackupInfo, 0, len(objects))
	for _, obj := range objects {
		timestamp, ok := parseBackupTime(obj.Key)
		if !ok {
			s.log.Warn().Str("filename", obj.Key).Msg("Skipping object with unexpected name")
			continue
		}

		backups = append(backups, BackupInfo{
			Filename:  obj.Key,
			Timestamp: timestamp,
			SizeBytes: obj.Size,
			AgeHours:  int64(now.Sub(timestamp).Hours()),
		})
	}

	sort.Slice(backups, func(i, j int) bool {
		return backups[i].Timestamp.After(backups[j].Timestamp)
	})

	return backups, nil
}

// Prune deletes all but the keep newest backups and returns how many were deleted.
// A failed delete is logged and skipped.
func (s *R2BackupService) Prune(ctx context.Context, keep int) (int, error) {
	if keep < 1 {
		keep = 1
	}

	backups, err := s.ListBackups(ctx)
	if err != nil {
		return 0, err
	}
	if len(backups) <= keep {
		return 0, nil
	}

	deleted := 0
	for _, backup := range backups[keep:] {
		if err := s.store.Delete(ctx, backup.Filename); err != nil {
			s.log.Error().Err(err).Str("filename", backup.Filename).Msg("Failed to delete old backup")
			continue
		}
		s.log.Info().Str("filename", backup.Filename).Time("timestamp", backup.Timestamp).Msg("Deleted old backup")
		deleted++
	}

	return deleted, nil
}

func (s *R2BackupService) publish(info *BackupInfo, pruned int) {
	if s.events == nil {
		return
	}
	s.events.Emit("reliability", &events.BackupCompletedData{
		Archive:   info.Filename,
		SizeBytes: info.SizeBytes,
		Pruned:    pruned,
	})
}

func parseBackupTime(key string) (time.Time, bool) {
	if !strings.HasPrefix(key, backupPrefix) || !strings.HasSuffix(key, backupSuffix) {
		return time.Time{}, false
	}
	raw := strings.TrimSuffix(strings.TrimPrefix(key, backupPrefix), backupSuffix)
	timestamp, err := time.Parse(backupTimeLayout, raw)
	if err != nil {
		return time.Time{}, false
	}
	return timestamp, true
}

func buildMetadata(timestamp time.Time, paths map[string]string) (BackupMetadata, error) {
	metadata := BackupMetadata{
		Timestamp: timestamp,
		Version:   backupFormatVersion,
		Databases: make([]DatabaseMetadata, 0, len(paths)),
	}

	names := make([]string, 0, len(paths))
	for name := range paths {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		path := paths[name]
		info, err := os.Stat(path)
		if err != nil {
			return BackupMetadata{}, fmt.Errorf("failed to stat %s backup: %w", name, err)
		}
		checksum, err := calculateChecksum(path)
		if err != nil {
			return BackupMetadata{}, fmt.Errorf("failed to calculate checksum for %s: %w", name, err)
		}
		metadata.Databases = append(metadata.Databases, DatabaseMetadata{
			Name:      name,
			Filename:  filepath.Base(path),
			SizeBytes: info.Size(),
			Checksum:  checksum,
		})
	}

	return metadata, nil
}

// calculateChecksum returns the SHA256 of a file as "sha256:<hex>"
func calculateChecksum(filePath string) (string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return "", err
	}
	defer file.Close()

	hash := sha256.New()
	if _, err := io.Copy(hash, file); err != nil {
		return "", err
	}

	return fmt.Sprintf("sha256:%x", hash.Sum(nil)), nil
}

func writeMetadata(path string, metadata BackupMetadata) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	return encoder.Encode(metadata)
}

// createArchive writes the named files of sourceDir into a tar.gz at archivePath
func createArchive(archivePath, sourceDir string, filenames []string) (err error) {
	archiveFile, err := os.Create(archivePath)
	if err != nil {
		return fmt.Errorf("failed to create archive file: %w", err)
	}
	defer func() {
		if closeErr := archiveFile.Close(); err == nil {
			err = closeErr
		}
	}()

	gzipWriter := gzip.NewWriter(archiveFile)
	tarWriter := tar.NewWriter(gzipWriter)

	for _, filename := range filenames {
		if err := addFileToArchive(tarWriter, filepath.Join(sourceDir, filename), filename); err != nil {
			return fmt.Errorf("failed to add %s to archive: %w", filename, err)
		}
	}

	if err := tarWriter.Close(); err != nil {
		return err
	}
	return gzipWriter.Close()
}

func addFileToArchive(tarWriter *tar.Writer, filePath, nameInArchive string) error {
	file, err := os.Open(filePath)
	if err != nil {
		return err
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return err
	}

	header := &tar.Header{
		Name:    nameInArchive,
		Size:    info.Size(),
		Mode:    int64(info.Mode().Perm()),
		ModTime: info.ModTime(),
	}
	if err := tarWriter.WriteHeader(header); err != nil {
		return err
	}

	_, err = io.Copy(tarWriter, file)
	return err
}
