package files

import (
	"bytes"
	"context"
	"io"
	"testing"
	"time"

	"dutyfree/internal/domain"
	"dutyfree/internal/storage/objects"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBucket struct {
	objects   []objects.Object
	lastKey   string
	lastType  string
	lastBody  []byte
	deleted   []string
	listLimit int
}

func (b *fakeBucket) List(_ context.Context, limit int) ([]objects.Object, error) {
	b.listLimit = limit
	return append([]objects.Object(nil), b.objects...), nil
}

func (b *fakeBucket) Put(_ context.Context, key, contentType string, body io.Reader, _ int64) error {
	b.lastKey, b.lastType = key, contentType
	data, err := io.ReadAll(body)
	b.lastBody = data
	return err
}

func (b *fakeBucket) Delete(_ context.Context, key string) error {
	b.deleted = append(b.deleted, key)
	return nil
}

func (b *fakeBucket) PublicURL(key string) string {
	return "https://cdn.example/cms-uploads/" + key
}

func TestObjectName(t *testing.T) {
	at := time.UnixMilli(1760000000123)
	assert.Equal(t, "1760000000123-abc.png", ObjectName("Logo.PNG", at, "abc"))
	assert.Equal(t, "1760000000123-abc.bin", ObjectName("README", at, "abc"))
}

func TestList_NewestFirstCapped(t *testing.T) {
	b := &fakeBucket{}
	for i := 0; i < ListLimit+5; i++ {
		b.objects = append(b.objects, objects.Object{Key: "k", LastModified: int64(i)})
	}
	b.objects[3] = objects.Object{Key: "newest.jpg", Size: 12, LastModified: 10_000}

	files, err := New(b, nil).List(context.Background())
	require.NoError(t, err)
	require.Len(t, files, ListLimit)
	assert.Equal(t, "newest.jpg", files[0].Name)
	assert.Equal(t, "https://cdn.example/cms-uploads/newest.jpg", files[0].URL)
	assert.Equal(t, int64(12), files[0].Size)
	assert.Greater(t, b.listLimit, ListLimit)
}

func TestUpload(t *testing.T) {
	b := &fakeBucket{}
	svc := New(b, nil)
	svc.now = func() time.Time { return time.UnixMilli(1760000000123) }
	svc.suffix = func() string { return "x1y2" }

	f, err := svc.Upload(context.Background(), "banner.jpg", "image/jpeg", bytes.NewReader([]byte("jpeg")), 4)
	require.NoError(t, err)
	assert.Equal(t, "1760000000123-x1y2.jpg", f.Name)
	assert.Equal(t, "https://cdn.example/cms-uploads/1760000000123-x1y2.jpg", f.URL)
	assert.Equal(t, "image/jpeg", b.lastType)
	assert.Equal(t, []byte("jpeg"), b.lastBody)

	_, err = svc.Upload(context.Background(), "empty.jpg", "", bytes.NewReader(nil), 0)
	assert.ErrorIs(t, err, domain.ErrValidation)
	_, err = svc.Upload(context.Background(), "huge.jpg", "", bytes.NewReader(nil), MaxUploadSize+1)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestDelete_RejectsPaths(t *testing.T) {
	b := &fakeBucket{}
	svc := New(b, nil)

	assert.ErrorIs(t, svc.Delete(context.Background(), "../secret"), domain.ErrValidation)
	assert.ErrorIs(t, svc.Delete(context.Background(), " "), domain.ErrValidation)
	require.NoError(t, svc.Delete(context.Background(), "1760000000123-x1y2.jpg"))
	assert.Equal(t, []string{"1760000000123-x1y2.jpg"}, b.deleted)
}
