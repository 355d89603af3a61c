package storage_test

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"stash-pricer/core/storage"
	"stash-pricer/core/storage/mocks"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// failingReader fails the first read the way a lazy minio object does.
type failingReader struct{ err error }

func (r failingReader) Read([]byte) (int, error) { return 0, r.err }
func (r failingReader) Close() error { return nil }

func TestEnsureBucket(t *testing.T) {
	ctx := context.Background()

	t.Run("Exists", func(t *testing.T) {
		m := new(mocks.Client)
		m.On("BucketExists", ctx, "b").Return(true, nil)
		require.NoError(t, storage.EnsureBucket(ctx, m, "b", ""))
		m.AssertNotCalled(t, "MakeBucket", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Create", func(t *testing.T) {
		m := new(mocks.Client)
		m.On("BucketExists", ctx, "b").Return(false, nil)
		m.On("MakeBucket", ctx, "b", minio.MakeBucketOptions{Region: "eu"}).Return(nil)
		require.NoError(t, storage.EnsureBucket(ctx, m, "b", "eu"))
		m.AssertExpectations(t)
	})

	t.Run("Error", func(t *testing.T) {
		m := new(mocks.Client)
		m.On("BucketExists", ctx, "b").Return(false, errors.New("down"))
		assert.ErrorContains(t, storage.EnsureBucket(ctx, m, "b", ""), "down")
	})
}

func TestPutJSON(t *testing.T) {
	ctx := context.Background()
	m := new(mocks.Client)

	var uploaded string
	m.On("PutObject", ctx, "b", "doc.json", mock.Anything, int64(7), mock.Anything).
		Run(func(args mock.Arguments) {
			data, _ := io.ReadAll(args.Get(3).(io.Reader))
			uploaded = string(data)
		}).
		Return(minio.UploadInfo{}, nil)

	require.NoError(t, storage.PutJSON(ctx, m, "b", "doc.json", map[string]int{"a": 1}))
	assert.Equal(t, `{"a":1}`, uploaded)
}

func TestGetJSON(t *testing.T) {
	ctx := context.Background()
	noSuchKey := minio.ErrorResponse{Code: "NoSuchKey"}

	t.Run("Decode", func(t *testing.T) {
		m := new(mocks.Client)
		m.On("GetObject", ctx, "b", "doc.json", mock.Anything).
			Return(io.NopCloser(strings.NewReader(`{"a":2}`)), nil)

		var out map[string]int
		require.NoError(t, storage.GetJSON(ctx, m, "b", "doc.json", &out))
		assert.Equal(t, 2, out["a"])
	})

	t.Run("MissingOnOpen", func(t *testing.T) {
		m := new(mocks.Client)
		m.On("GetObject", ctx, "b", "doc.json", mock.Anything).Return(nil, noSuchKey)

		var out map[string]int
		err := storage.GetJSON(ctx, m, "b", "doc.json", &out)
		assert.ErrorIs(t, err, storage.ErrObjectNotFound)
		assert.True(t, storage.IsNotFound(err))
	})

	t.Run("MissingOnRead", func(t *testing.T) {
		m := new(mocks.Client)
		m.On("GetObject", ctx, "b", "doc.json", mock.Anything).Return(failingReader{err: noSuchKey}, nil)

		var out map[string]int
		err := storage.GetJSON(ctx, m, "b", "doc.json", &out)
		assert.ErrorIs(t, err, storage.ErrObjectNotFound)
	})

	t.Run("OtherError", func(t *testing.T) {
		m := new(mocks.Client)
		m.On("GetObject", ctx, "b", "doc.json", mock.Anything).Return(failingReader{err: errors.New("reset")}, nil)

		var out map[string]int
		err := storage.GetJSON(ctx, m, "b", "doc.json", &out)
		assert.Error(t, err)
		assert.False(t, storage.IsNotFound(err))
	})
}
