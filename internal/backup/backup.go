// Package backup archives encrypted snapshots of the SQLite roster database
// to S3-compatible storage and restores them.
package backup

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	_ "modernc.org/sqlite"
)

// objectStore is the slice of the S3 client the archiver uses.
type objectStore interface {
	PutObject(ctx context.Context, input *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, input *s3.GetObjectInput, opts ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Config holds S3-compatible storage settings.
type S3Config struct {
	Endpoint  string `yaml:"endpoint"`
	Bucket    string `yaml:"bucket"`
	Region    string `yaml:"region"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Prefix    string `yaml:"prefix"`
}

// Enabled reports whether enough is configured to reach a bucket.
func (c S3Config) Enabled() bool {
	return c.Bucket != "" && c.AccessKey != "" && c.SecretKey != ""
}

var ErrNotConfigured = errors.New("backup not configured: S3 bucket and credentials required")

func newS3Client(cfg S3Config) *s3.Client {
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}
	opts := s3.Options{
		Region:       region,
		Credentials:  credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		UsePathStyle: true,
	}
	if cfg.Endpoint != "" {
		opts.BaseEndpoint = aws.String(cfg.Endpoint)
	}
	return s3.New(opts)
}

type Archiver struct {
	client objectStore
	bucket string
	prefix string
	logger *slog.Logger
	now    func() time.Time
}

func NewArchiver(cfg S3Config, logger *slog.Logger) (*Archiver, error) {
	if !cfg.Enabled() {
		return nil, ErrNotConfigured
	}
	return newArchiver(newS3Client(cfg), cfg.Bucket, cfg.Prefix, logger), nil
}

func newArchiver(client objectStore, bucket, prefix string, logger *slog.Logger) *Archiver {
	if logger == nil {
		logger = slog.Default()
	}
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return &Archiver{
		client: client,
		bucket: bucket,
		prefix: prefix,
		logger: logger.With("component", "backup"),
		now:    time.Now,
	}
}

// Snapshot copies db with VACUUM INTO, encrypts the copy and uploads it.
// It returns the object key and the archive size.
func (a *Archiver) Snapshot(ctx context.Context, db *sql.DB, passphrase string) (string, int64, error) {
	dir, err := os.MkdirTemp("", "homeeasy-backup-")
	if err != nil {
		return "", 0, fmt.Errorf("create temp dir: %w", err)
	}
	defer os.RemoveAll(dir)

	copyPath := filepath.Join(dir, "snapshot.db")
	if _, err := db.ExecContext(ctx, "VACUUM INTO "+quote(copyPath)); err != nil {
		return "", 0, fmt.Errorf("snapshot database: %w", err)
	}
	plaintext, err := os.ReadFile(copyPath)
	if err != nil {
		return "", 0, fmt.Errorf("read snapshot: %w", err)
	}
	archive, err := Seal(plaintext, passphrase)
	if err != nil {
		return "", 0, fmt.Errorf("encrypt snapshot: %w", err)
	}

	key := fmt.Sprintf("%shomeeasy-%s.db.enc", a.prefix, a.now().UTC().Format("2006-01-02T150405Z"))
	size := int64(len(archive))
	_, err = a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(a.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(archive),
		ContentLength: aws.Int64(size),
	})
	if err != nil {
		return "", 0, fmt.Errorf("upload to s3: %w", err)
	}

	a.logger.Info("snapshot uploaded", "key", key, "bytes", size)
	return key, size, nil
}

// Restore downloads and decrypts the archive at key, checks its integrity
// and writes it to dst. dst must not already exist.
func (a *Archiver) Restore(ctx context.Context, key, passphrase, dst string) error {
	if _, err := os.Stat(dst); err == nil {
		return fmt.Errorf("restore target %s already exists", dst)
	}

	result, err := a.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("download from s3: %w", err)
	}
	archive, err := io.ReadAll(result.Body)
	result.Body.Close()
	if err != nil {
		return fmt.Errorf("read archive: %w", err)
	}

	plaintext, err := Open(archive, passphrase)
	if err != nil {
		return fmt.Errorf("decrypt archive: %w", err)
	}

	tmp := dst + ".restore"
	if err := os.WriteFile(tmp, plaintext, 0o600); err != nil {
		return fmt.Errorf("write restored db: %w", err)
	}
	if err := checkIntegrity(ctx, tmp); err != nil {
		os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, dst); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("move restored db: %w", err)
	}

	a.logger.Info("snapshot restored", "key", key, "path", dst)
	return nil
}

func checkIntegrity(ctx context.Context, path string) error {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("open restored db: %w", err)
	}
	defer db.Close()

	var result string
	if err := db.QueryRowContext(ctx, "PRAGMA integrity_check").Scan(&result); err != nil {
		return fmt.Errorf("integrity check: %w", err)
	}
	if result != "ok" {
		return fmt.Errorf("integrity check failed: %s", result)
	}
	return nil
}

func quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
