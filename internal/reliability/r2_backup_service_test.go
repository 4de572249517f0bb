package reliability

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"context"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/itemsentinel/internal/database"
	"github.com/aristath/itemsentinel/internal/events"
	testutil "github.com/aristath/itemsentinel/internal/testing"
)

// memoryStore is an in-memory ObjectStore
type memoryStore struct {
	mu        sync.Mutex
	objects   map[string][]byte
	failKeys  map[string]bool
	uploadErr error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{objects: make(map[string][]byte), failKeys: make(map[string]bool)}
}

func (m *memoryStore) Upload(ctx context.Context, key string, body io.Reader, size int64) error {
	if m.uploadErr != nil {
		return m.uploadErr
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	if int64(len(data)) != size {
		return fmt.Errorf("size mismatch: %d != %d", len(data), size)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = data
	return nil
}

func (m *memoryStore) List(ctx context.Context, prefix string) ([]ObjectInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []ObjectInfo
	for key, data := range m.objects {
		if strings.HasPrefix(key, prefix) {
			out = append(out, ObjectInfo{Key: key, Size: int64(len(data))})
		}
	}
	return out, nil
}

func (m *memoryStore) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failKeys[key] {
		return errors.New("access denied")
	}
	delete(m.objects, key)
	return nil
}

func (m *memoryStore) keys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	keys := make([]string, 0, len(m.objects))
	for k := range m.objects {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

type recordingPublisher struct {
	events []events.EventData
}

func (p *recordingPublisher) Emit(module string, data events.EventData) {
	p.events = append(p.events, data)
}

func newBackupFixture(t *testing.T) *BackupService {
	market := testutil.NewTestDB(t, database.NameMarket)
	portfolio := testutil.NewTestDB(t, database.NamePortfolio)

	_, err := market.Conn().Exec(`INSERT INTO price_history (item_id, price, recorded_at) VALUES ('hook', 12.5, 1)`)
	require.NoError(t, err)

	return NewBackupService(map[string]*database.DB{
		database.NameMarket:    market,
		database.NamePortfolio: portfolio,
	}, zerolog.Nop())
}

// readArchive returns every file in a tar.gz keyed by name
func readArchive(t *testing.T, data []byte) map[string][]byte {
	t.Helper()
	gz, err := gzip.NewReader(bytes.NewReader(data))
	require.NoError(t, err)
	tr := tar.NewReader(gz)

	files := make(map[string][]byte)
	for {
		header, err := tr.Next()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		content, err := io.ReadAll(tr)
		require.NoError(t, err)
		files[header.Name] = content
	}
	return files
}

func TestBackupService_Snapshot(t *testing.T) {
	backups := newBackupFixture(t)
	dir := t.TempDir()

	assert.Equal(t, []string{"market", "portfolio"}, backups.DatabaseNames())

	dst := dir + "/market.db"
	require.NoError(t, backups.Snapshot(context.Background(), "market", dst))
	// a second snapshot replaces the first
	require.NoError(t, backups.Snapshot(context.Background(), "market", dst))

	assert.Error(t, backups.Snapshot(context.Background(), "ledger", dir+"/ledger.db"))
}

func TestR2BackupService_CreateAndUpload(t *testing.T) {
	store := newMemoryStore()
	service := NewR2BackupService(store, newBackupFixture(t), nil, t.TempDir(), zerolog.Nop())
	service.now = func() time.Time { return time.Date(2026, 3, 1, 3, 30, 0, 0, time.UTC) }

	info, err := service.CreateAndUpload(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "itemsentinel-backup-2026-03-01-033000.tar.gz", info.Filename)
	assert.Positive(t, info.SizeBytes)

	require.Equal(t, []string{info.Filename}, store.keys())
	files := readArchive(t, store.objects[info.Filename])
	require.Contains(t, files, "market.db")
	require.Contains(t, files, "portfolio.db")
	require.Contains(t, files, "backup-metadata.json")

	var metadata BackupMetadata
	require.NoError(t, json.Unmarshal(files["backup-metadata.json"], &metadata))
	require.Len(t, metadata.Databases, 2)
	assert.Equal(t, "market", metadata.Databases[0].Name)

	for _, db := range metadata.Databases {
		content := files[db.Filename]
		assert.Equal(t, int64(len(content)), db.SizeBytes)
		assert.Equal(t, fmt.Sprintf("sha256:%x", sha256.Sum256(content)), db.Checksum)
	}
}

func TestR2BackupService_UploadFailure(t *testing.T) {
	store := newMemoryStore()
	store.uploadErr = errors.New("bucket gone")
	service := NewR2BackupService(store, newBackupFixture(t), nil, t.TempDir(), zerolog.Nop())

	_, err := service.CreateAndUpload(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bucket gone")
}

func TestR2BackupService_ListAndPrune(t *testing.T) {
	store := newMemoryStore()
	for _, key := range []string{
		"itemsentinel-backup-2026-03-01-033000.tar.gz",
		"itemsentinel-backup-2026-03-03-033000.tar.gz",
		"itemsentinel-backup-2026-03-02-033000.tar.gz",
		"itemsentinel-backup-2026-02-28-033000.tar.gz",
		"itemsentinel-backup-garbage.tar.gz",
	} {
		store.objects[key] = []byte("x")
	}
	store.failKeys["itemsentinel-backup-2026-02-28-033000.tar.gz"] = true

	service := NewR2BackupService(store, nil, nil, t.TempDir(), zerolog.Nop())
	service.now = func() time.Time { return time.Date(2026, 3, 3, 15, 30, 0, 0, time.UTC) }

	backups, err := service.ListBackups(context.Background())
	require.NoError(t, err)
	require.Len(t, backups, 4)
	assert.Equal(t, "itemsentinel-backup-2026-03-03-033000.tar.gz", backups[0].Filename)
	assert.Equal(t, int64(12), backups[0].AgeHours)
	assert.Equal(t, "itemsentinel-backup-2026-02-28-033000.tar.gz", backups[3].Filename)

	deleted, err := service.Prune(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, 1, deleted, "the failing delete is skipped")
	assert.Equal(t, []string{
		"itemsentinel-backup-2026-02-28-033000.tar.gz",
		"itemsentinel-backup-2026-03-02-033000.tar.gz",
		"itemsentinel-backup-2026-03-03-033000.tar.gz",
		"itemsentinel-backup-garbage.tar.gz",
	}, store.keys())

	deleted, err = service.Prune(context.Background(), 10)
	require.NoError(t, err)
	assert.Zero(t, deleted)
}

func TestR2BackupJob(t *testing.T) {
	store := newMemoryStore()
	store.objects["itemsentinel-backup-2020-01-01-000000.tar.gz"] = []byte("old")
	publisher := &recordingPublisher{}
	service := NewR2BackupService(store, newBackupFixture(t), publisher, t.TempDir(), zerolog.Nop())

	job := NewR2BackupJob(service, 1, 0, zerolog.Nop())
	assert.Equal(t, "r2_backup", job.Name())
	require.NoError(t, job.Run())

	keys := store.keys()
	require.Len(t, keys, 1)
	assert.NotEqual(t, "itemsentinel-backup-2020-01-01-000000.tar.gz", keys[0])

	require.Len(t, publisher.events, 1)
	completed, ok := publisher.events[0].(*events.BackupCompletedData)
	require.True(t, ok)
	assert.Equal(t, keys[0], completed.Archive)
	assert.Equal(t, 1, completed.Pruned)
}
