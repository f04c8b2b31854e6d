// Package storage contains the object-store abstraction for document files,
// sidecar metadata, and verification artifacts (S3-compatible backends).
// Implementations rely on streaming I/O; only the tamper gate ever needs a
// local copy, via DownloadTemp.
package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

// PutObjectOptions define optional parameters for uploading objects.
// Size should be the exact number of bytes if known; if unknown, set to -1
// and the implementation will buffer/chunk as supported by the backend.
type PutObjectOptions struct {
	Size        int64
	ContentType string
	Metadata    map[string]string
}

// ObjectInfo contains basic information about an object in storage.
type ObjectInfo struct {
	Key          string
	Size         int64
	ETag         string
	ContentType  string
	LastModified time.Time
	Metadata     map[string]string
}

// Storage is a reusable, S3-compatible object storage client interface.
type Storage interface {
	// Put uploads an object under the given key using the provided reader and options.
	Put(ctx context.Context, key string, r io.Reader, opt PutObjectOptions) (ObjectInfo, error)
	// Get retrieves an object's content as a streaming reader alongside its info.
	Get(ctx context.Context, key string) (io.ReadCloser, ObjectInfo, error)
	// Delete removes an object by key.
	Delete(ctx context.Context, key string) error
	// PresignGet returns a time-limited URL that can be used to download the object without credentials.
	PresignGet(ctx context.Context, key string, expiry time.Duration) (string, error)
}

// GetJSON fetches an object and decodes it into out.
func GetJSON(ctx context.Context, s Storage, key string, out any) error {
	rc, _, err := s.Get(ctx, key)
	if err != nil {
		return fmt.Errorf("get %s: %w", key, err)
	}
	defer rc.Close()
	if err := json.NewDecoder(rc).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	return nil
}

// PutJSON marshals v and uploads it under key.
func PutJSON(ctx context.Context, s Storage, key string, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	_, err = s.Put(ctx, key, bytes.NewReader(b), PutObjectOptions{
		Size:        int64(len(b)),
		ContentType: "application/json",
	})
	if err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}
	return nil
}

// GetJSONRetry fetches JSON with a few attempts, for sidecar metadata that
// may land slightly after the document it describes.
func GetJSONRetry(ctx context.Context, s Storage, key string, out any, attempts int, delay time.Duration) error {
	var err error
	for i := 0; i < attempts; i++ {
		if err = GetJSON(ctx, s, key, out); err == nil {
			return nil
		}
		if i < attempts-1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}
	return err
}

// DownloadTemp copies an object to a temporary local file and returns its
// path with a cleanup func. The caller must always invoke cleanup.
func DownloadTemp(ctx context.Context, s Storage, key string) (string, func(), error) {
	rc, _, err := s.Get(ctx, key)
	if err != nil {
		return "", nil, fmt.Errorf("get %s: %w", key, err)
	}
	defer rc.Close()

	dir, err := os.MkdirTemp("", "docverify-*")
	if err != nil {
		return "", nil, fmt.Errorf("temp dir: %w", err)
	}
	cleanup := func() { os.RemoveAll(dir) }

	path := filepath.Join(dir, filepath.Base(key))
	f, err := os.Create(path)
	if err != nil {
		cleanup()
		return "", nil, fmt.Errorf("create temp file: %w", err)
	}
	if _, err := io.Copy(f, rc); err != nil {
		f.Close()
		cleanup()
		return "", nil, fmt.Errorf("download %s: %w", key, err)
	}
	if err := f.Close(); err != nil {
		cleanup()
		return "", nil, fmt.Errorf("close temp file: %w", err)
	}
	return path, cleanup, nil
}
