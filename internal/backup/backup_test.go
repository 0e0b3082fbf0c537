package backup

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/dukerupert/homeeasy/internal/database"
	"github.com/dukerupert/homeeasy/internal/store"
)

// mockS3Client implements objectStore for testing.
type mockS3Client struct {
	mu      sync.Mutex
	objects map[string][]byte
	putErr  error
}

func newMockS3() *mockS3Client {
	return &mockS3Client{objects: make(map[string][]byte)}
}

func (m *mockS3Client) PutObject(_ context.Context, input *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if m.putErr != nil {
		return nil, m.putErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	data, _ := io.ReadAll(input.Body)
	m.objects[*input.Key] = data
	return &s3.PutObjectOutput{}, nil
}

func (m *mockS3Client) GetObject(_ context.Context, input *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[*input.Key]
	if !ok {
		return nil, &s3NotFound{}
	}
	return &s3.GetObjectOutput{
		Body: io.NopCloser(bytes.NewReader(data)),
	}, nil
}

type s3NotFound struct{}

func (e *s3NotFound) Error() string { return "NoSuchKey" }

func fixedClock() time.Time {
	return time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC)
}

func TestS3ConfigEnabled(t *testing.T) {
	if (S3Config{Bucket: "crm"}).Enabled() {
		t.Error("bucket without credentials should be disabled")
	}
	if !(S3Config{Bucket: "crm", AccessKey: "a", SecretKey: "s"}).Enabled() {
		t.Error("bucket with credentials should be enabled")
	}
	if _, err := NewArchiver(S3Config{}, nil); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("err = %v, want ErrNotConfigured", err)
	}
}

func TestSnapshotAndRestore(t *testing.T) {
	dir := t.TempDir()
	conn, err := database.Open(database.DriverSQLite, filepath.Join(dir, "crm.db"), nil)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer conn.Close()

	ctx := context.Background()
	c, err := store.NewClientStore(conn).Create(ctx, "Jane Smith", "alex")
	if err != nil {
		t.Fatalf("create client: %v", err)
	}

	mock := newMockS3()
	a := newArchiver(mock, "crm-backups", "nightly", nil)
	a.now = fixedClock

	key, size, err := a.Snapshot(ctx, conn.DB, "pw")
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if key != "nightly/homeeasy-2025-06-01T093000Z.db.enc" {
		t.Errorf("key = %q", key)
	}
	if size != int64(len(mock.objects[key])) || size == 0 {
		t.Errorf("size = %d, stored %d bytes", size, len(mock.objects[key]))
	}
	if bytes.Contains(mock.objects[key], []byte("Jane Smith")) {
		t.Error("uploaded archive is not encrypted")
	}

	dst := filepath.Join(dir, "restored.db")
	if err := a.Restore(ctx, key, "pw", dst); err != nil {
		t.Fatalf("restore: %v", err)
	}

	restored, err := database.Open(database.DriverSQLite, dst, nil)
	if err != nil {
		t.Fatalf("open restored: %v", err)
	}
	defer restored.Close()
	got, err := store.NewClientStore(restored).GetByID(ctx, c.ID)
	if err != nil {
		t.Fatalf("get client: %v", err)
	}
	if got == nil || got.FullName != "Jane Smith" {
		t.Errorf("restored client = %+v", got)
	}
}

func TestRestoreErrors(t *testing.T) {
	dir := t.TempDir()
	mock := newMockS3()
	a := newArchiver(mock, "crm-backups", "", nil)
	ctx := context.Background()

	if err := a.Restore(ctx, "missing.db.enc", "pw", filepath.Join(dir, "a.db")); err == nil {
		t.Error("expected error for missing object")
	}

	archive, err := Seal([]byte("not a database"), "pw")
	if err != nil {
		t.Fatalf("seal: %v", err)
	}
	mock.objects["junk.db.enc"] = archive

	if err := a.Restore(ctx, "junk.db.enc", "wrong", filepath.Join(dir, "b.db")); err == nil || !strings.Contains(err.Error(), "decrypt") {
		t.Errorf("wrong passphrase err = %v", err)
	}
	dst := filepath.Join(dir, "c.db")
	if err := a.Restore(ctx, "junk.db.enc", "pw", dst); err == nil {
		t.Error("expected integrity failure for a non-database archive")
	}
	if _, err := os.Stat(dst); !os.IsNotExist(err) {
		t.Error("failed restore should not leave the target behind")
	}

	existing := filepath.Join(dir, "existing.db")
	if err := os.WriteFile(existing, nil, 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := a.Restore(ctx, "junk.db.enc", "pw", existing); err == nil {
		t.Error("expected refusal to overwrite an existing file")
	}
}

func TestSnapshotUploadFailure(t *testing.T) {
	conn, err := database.Open(database.DriverSQLite, filepath.Join(t.TempDir(), "crm.db"), nil)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer conn.Close()

	mock := newMockS3()
	mock.putErr = errors.New("bucket gone")
	a := newArchiver(mock, "crm-backups", "", nil)
	if _, _, err := a.Snapshot(context.Background(), conn.DB, "pw"); err == nil || !strings.Contains(err.Error(), "bucket gone") {
		t.Errorf("err = %v, want upload failure", err)
	}
}
