package pipeline

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path"
	"path/filepath"
)

// Emitter stores one encoded output and returns where it went.
type Emitter interface {
	Emit(ctx context.Context, relPath string, data []byte) (string, error)
	Describe() string
}

// LocalEmitter writes outputs under Dir.
type LocalEmitter struct {
	Dir string
}

func (e LocalEmitter) Emit(_ context.Context, relPath string, data []byte) (string, error) {
	dst := filepath.Join(e.Dir, filepath.FromSlash(relPath))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	if err := os.WriteFile(dst, data, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", relPath, err)
	}
	return dst, nil
}

func (e LocalEmitter) Describe() string { return "dir " + e.Dir }

// ObjectStore is the subset of the storage client the emitter needs.
type ObjectStore interface {
	Bucket() string
	PutIfAbsent(ctx context.Context, key string, data []byte, contentType string) (bool, error)
}

// ObjectStoreEmitter uploads outputs to a bucket under Prefix. Output names
// are content-addressed, so objects that already exist are not re-uploaded.
type ObjectStoreEmitter struct {
	Store  ObjectStore
	Prefix string
}

func (e ObjectStoreEmitter) Emit(ctx context.Context, relPath string, data []byte) (string, error) {
	key := path.Join(e.Prefix, relPath)
	if _, err := e.Store.PutIfAbsent(ctx, key, data, contentType(relPath)); err != nil {
		return "", err
	}
	return fmt.Sprintf("s3://%s/%s", e.Store.Bucket(), key), nil
}

func (e ObjectStoreEmitter) Describe() string {
	return fmt.Sprintf("bucket %s/%s", e.Store.Bucket(), e.Prefix)
}

func contentType(name string) string {
	if t := mime.TypeByExtension(path.Ext(name)); t != "" {
		return t
	}
	return "application/octet-stream"
}
