// Package files manages CMS uploads kept in the object store.
package files

import (
	"context"
	"io"
	"path"
	"sort"
	"strconv"
	"strings"
	"time"

	"dutyfree/internal/domain"
	"dutyfree/internal/storage/objects"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	// ListLimit caps how many files List returns.
	ListLimit = 100
	// MaxUploadSize is the largest accepted upload in bytes.
	MaxUploadSize = 10 << 20

	scanLimit = 1000
)

type bucket interface {
	List(ctx context.Context, limit int) ([]objects.Object, error)
	Put(ctx context.Context, key, contentType string, body io.Reader, size int64) error
	Delete(ctx context.Context, key string) error
	PublicURL(key string) string
}

type Service struct {
	bucket bucket
	logger *zap.Logger
	now    func() time.Time
	suffix func() string
}

func New(b bucket, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		bucket: b,
		logger: logger.Named("files"),
		now:    time.Now,
		suffix: func() string { return strings.ReplaceAll(uuid.NewString(), "-", "")[:10] },
	}
}

// List returns the newest uploads first.
func (s *Service) List(ctx context.Context) ([]domain.StoredFile, error) {
	objs, err := s.bucket.List(ctx, scanLimit)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(objs, func(i, j int) bool {
		if objs[i].LastModified != objs[j].LastModified {
			return objs[i].LastModified > objs[j].LastModified
		}
		return objs[i].Key > objs[j].Key
	})
	if len(objs) > ListLimit {
		objs = objs[:ListLimit]
	}
	result := make([]domain.StoredFile, 0, len(objs))
	for _, o := range objs {
		result = append(result, domain.StoredFile{
			Name:      o.Key,
			URL:       s.bucket.PublicURL(o.Key),
			Size:      o.Size,
			CreatedAt: time.UnixMilli(o.LastModified).UTC(),
		})
	}
	return result, nil
}

// ObjectName builds the stored name for an upload: <unix ms>-<suffix>.<ext>.
func ObjectName(original string, at time.Time, suffix string) string {
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(original), "."))
	if ext == "" {
		ext = "bin"
	}
	return strconv.FormatInt(at.UnixMilli(), 10) + "-" + suffix + "." + ext
}

// Upload stores body under a generated name and returns its public location.
func (s *Service) Upload(ctx context.Context, original, contentType string, body io.Reader, size int64) (*domain.StoredFile, error) {
	if size <= 0 {
		return nil, domain.Validation("file is empty")
	}
	if size > MaxUploadSize {
		return nil, domain.Validation("file exceeds 10 MB")
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	now := s.now()
	key := ObjectName(original, now, s.suffix())
	if err := s.bucket.Put(ctx, key, contentType, body, size); err != nil {
		return nil, err
	}
	s.logger.Info("file uploaded", zap.String("name", key), zap.String("original", original))
	return &domain.StoredFile{Name: key, URL: s.bucket.PublicURL(key), Size: size, CreatedAt: now.UTC()}, nil
}

// Delete removes a stored file by name. Names with path separators are rejected.
func (s *Service) Delete(ctx context.Context, name string) error {
	name = strings.TrimSpace(name)
	if name == "" || strings.ContainsAny(name, `/\`) {
		return domain.Validation("invalid file name")
	}
	return s.bucket.Delete(ctx, name)
}
