package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAPI struct {
	bucketExists bool
	madeBucket   bool
	objects      map[string][]byte
	putErr       error
	removeErr    error
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{bucketExists: true, objects: map[string][]byte{}}
}

func (f *fakeAPI) BucketExists(ctx context.Context, bucket string) (bool, error) {
	return f.bucketExists, nil
}

func (f *fakeAPI) MakeBucket(ctx context.Context, bucket string, opts minio.MakeBucketOptions) error {
	f.madeBucket = true
	f.bucketExists = true
	return nil
}

func (f *fakeAPI) PutObject(ctx context.Context, bucket, key string, r io.Reader, size int64, opts minio.PutObjectOptions) (minio.UploadInfo, error) {
	if f.putErr != nil {
		return minio.UploadInfo{}, f.putErr
	}
	data, _ := io.ReadAll(r)
	f.objects[key] = data
	return minio.UploadInfo{Key: key, Size: int64(len(data))}, nil
}

func (f *fakeAPI) RemoveObject(ctx context.Context, bucket, key string, opts minio.RemoveObjectOptions) error {
	if f.removeErr != nil {
		return f.removeErr
	}
	delete(f.objects, key)
	return nil
}

func (f *fakeAPI) StatObject(ctx context.Context, bucket, key string, opts minio.StatObjectOptions) (minio.ObjectInfo, error) {
	if _, ok := f.objects[key]; !ok {
		return minio.ObjectInfo{}, minio.ErrorResponse{Code: "NoSuchKey"}
	}
	return minio.ObjectInfo{Key: key}, nil
}

func newTestStore(t *testing.T, api *fakeAPI) *Store {
	s, err := newWithAPI(context.Background(), api, Config{
		Endpoint: "localhost:9000",
		Bucket:   "recipes",
	})
	require.NoError(t, err)
	return s
}

func TestNewCreatesMissingBucket(t *testing.T) {
	api := newFakeAPI()
	api.bucketExists = false
	newTestStore(t, api)
	assert.True(t, api.madeBucket)
}

func TestUploadReturnsPublicURL(t *testing.T) {
	api := newFakeAPI()
	s := newTestStore(t, api)

	url, err := s.Upload(context.Background(), "recipes/1.jpg", bytes.NewReader([]byte("img")), 3, "image/jpeg")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:9000/recipes/recipes/1.jpg", url)
	assert.Equal(t, []byte("img"), api.objects["recipes/1.jpg"])
}

func TestDeleteAndExists(t *testing.T) {
	api := newFakeAPI()
	s := newTestStore(t, api)
	ctx := context.Background()

	_, err := s.Upload(ctx, "k", bytes.NewReader([]byte("x")), 1, "image/png")
	require.NoError(t, err)

	ok, err := s.Exists(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, s.Delete(ctx, "k"))

	ok, err = s.Exists(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestUploadError(t *testing.T) {
	api := newFakeAPI()
	api.putErr = errors.New("boom")
	s := newTestStore(t, api)

	_, err := s.Upload(context.Background(), "k", bytes.NewReader(nil), 0, "")
	assert.Error(t, err)
}

func TestPublicBaseURLOverride(t *testing.T) {
	s, err := newWithAPI(context.Background(), newFakeAPI(), Config{
		Endpoint:      "minio:9000",
		Bucket:        "recipes",
		PublicBaseURL: "https://cdn.example.com/recipes/",
	})
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/recipes/img/5.jpg", s.URL("img/5.jpg"))
}
