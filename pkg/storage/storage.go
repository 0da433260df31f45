package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Stdio is the path that stands for stdin or stdout
const Stdio = "-"

// Storage reads and writes named objects under a base location.
// Supports both local filesystem and S3
type Storage interface {
	// Open opens an object for reading
	Open(ctx context.Context, name string) (io.ReadCloser, error)

	// Create opens an object for writing. Data is committed on Close.
	Create(ctx context.Context, name string) (io.WriteCloser, error)

	// Exists checks if an object exists
	Exists(ctx context.Context, name string) (bool, error)
}

// LocalStorage implements Storage for local filesystem
type LocalStorage struct {
	basePath string
}

// NewLocalStorage creates a new local storage backend
func NewLocalStorage(basePath string) *LocalStorage {
	return &LocalStorage{basePath: basePath}
}

func (s *LocalStorage) path(name string) string {
	if s.basePath == "" || filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(s.basePath, name)
}

func (s *LocalStorage) Open(_ context.Context, name string) (io.ReadCloser, error) {
	f, err := os.Open(s.path(name))
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", name, err)
	}
	return f, nil
}

func (s *LocalStorage) Create(_ context.Context, name string) (io.WriteCloser, error) {
	fullPath := s.path(name)
	// Ensure directory exists
	if dir := filepath.Dir(fullPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	f, err := os.Create(fullPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", name, err)
	}
	return f, nil
}

func (s *LocalStorage) Exists(_ context.Context, name string) (bool, error) {
	_, err := os.Stat(s.path(name))
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

// S3URI represents a parsed S3 URI
type S3URI struct {
	Bucket string
	Key    string
}

// ParseS3URI parses an S3 URI like s3://bucket/path/to/object
func ParseS3URI(uri string) (*S3URI, error) {
	if !IsS3URI(uri) {
		return nil, fmt.Errorf("invalid S3 URI %q: must start with s3://", uri)
	}

	parts := strings.SplitN(strings.TrimPrefix(uri, "s3://"), "/", 2)
	if parts[0] == "" {
		return nil, fmt.Errorf("invalid S3 URI %q: missing bucket name", uri)
	}

	u := &S3URI{Bucket: parts[0]}
	if len(parts) == 2 {
		u.Key = parts[1]
	}
	return u, nil
}

// IsS3URI checks if a path is an S3 URI
func IsS3URI(path string) bool {
	return strings.HasPrefix(path, "s3://")
}

// S3Storage implements Storage for AWS S3
type S3Storage struct {
	bucket   string
	prefix   string
	client   *s3.Client
	uploader *manager.Uploader
}

// NewS3Storage creates a new S3 storage backend.
// uri should be in format: s3://bucket/prefix
func NewS3Storage(ctx context.Context, uri string) (*S3Storage, error) {
	u, err := ParseS3URI(uri)
	if err != nil {
		return nil, err
	}

	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(cfg)
	uploader := manager.NewUploader(client, func(u *manager.Uploader) {
		u.PartSize = 10 * 1024 * 1024
		u.Concurrency = 3
	})

	return &S3Storage{
		bucket:   u.Bucket,
		prefix:   strings.TrimSuffix(u.Key, "/"),
		client:   client,
		uploader: uploader,
	}, nil
}

func (s *S3Storage) key(name string) string {
	if s.prefix == "" {
		return name
	}
	if name == "" {
		return s.prefix
	}
	return s.prefix + "/" + name
}

func (s *S3Storage) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	key := s.key(name)
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to download s3://%s/%s: %w", s.bucket, key, err)
	}
	return out.Body, nil
}

// Create streams writes through a pipe into a multipart upload.
// Close waits for the upload and returns its error.
func (s *S3Storage) Create(ctx context.Context, name string) (io.WriteCloser, error) {
	key := s.key(name)
	pr, pw := io.Pipe()
	w := &s3Upload{pw: pw, done: make(chan error, 1)}

	go func() {
		_, err := s.uploader.Upload(ctx, &s3.PutObjectInput{
			Bucket: aws.String(s.bucket),
			Key:    aws.String(key),
			Body:   pr,
		})
		if err != nil {
			err = fmt.Errorf("failed to upload to s3://%s/%s: %w", s.bucket, key, err)
		}
		pr.CloseWithError(err)
		w.done <- err
	}()

	return w, nil
}

func (s *S3Storage) Exists(ctx context.Context, name string) (bool, error) {
	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(name)),
	})
	if err != nil {
		if strings.Contains(err.Error(), "NotFound") || strings.Contains(err.Error(), "404") {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

type s3Upload struct {
	pw   *io.PipeWriter
	done chan error
}

func (w *s3Upload) Write(p []byte) (int, error) {
	return w.pw.Write(p)
}

func (w *s3Upload) Close() error {
	w.pw.Close()
	return <-w.done
}

// NewStorage creates the appropriate storage backend based on path
func NewStorage(ctx context.Context, path string) (Storage, error) {
	if IsS3URI(path) {
		return NewS3Storage(ctx, path)
	}
	return NewLocalStorage(""), nil
}

// backend returns the storage holding a single object path and the name of
// the object within it. An S3 URI becomes a storage rooted at the object key.
func backend(ctx context.Context, path string) (Storage, string, error) {
	s, err := NewStorage(ctx, path)
	if err != nil {
		return nil, "", err
	}
	if IsS3URI(path) {
		return s, "", nil
	}
	return s, path, nil
}

// Open opens a single input by path: "-" for stdin, an s3:// URI, or a
// local file. Compressed inputs are decompressed transparently.
func Open(ctx context.Context, path string) (io.ReadCloser, error) {
	var raw io.ReadCloser
	if path == Stdio {
		raw = io.NopCloser(os.Stdin)
	} else {
		s, name, err := backend(ctx, path)
		if err != nil {
			return nil, err
		}
		if raw, err = s.Open(ctx, name); err != nil {
			return nil, err
		}
	}

	r, err := NewDecompressor(raw, path)
	if err != nil {
		raw.Close()
		return nil, err
	}
	return r, nil
}

// Create opens a single output by path: "-" for stdout, an s3:// URI, or a
// local file. Paths ending in .zst or .gz are compressed.
func Create(ctx context.Context, path string) (io.WriteCloser, error) {
	var raw io.WriteCloser
	if path == Stdio || path == "" {
		raw = nopWriteCloser{os.Stdout}
	} else {
		s, name, err := backend(ctx, path)
		if err != nil {
			return nil, err
		}
		if raw, err = s.Create(ctx, name); err != nil {
			return nil, err
		}
	}

	w, err := NewCompressor(raw, path)
	if err != nil {
		raw.Close()
		return nil, err
	}
	return w, nil
}

// Exists reports whether a single object path exists. Stdio always exists.
func Exists(ctx context.Context, path string) (bool, error) {
	if path == Stdio || path == "" {
		return true, nil
	}
	s, name, err := backend(ctx, path)
	if err != nil {
		return false, err
	}
	return s.Exists(ctx, name)
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }
