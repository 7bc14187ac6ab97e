package services

import (
	"context"
	"errors"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cppla/lostfound/config"
)

func readStored(t *testing.T, s Storage, url string) string {
	t.Helper()
	rc, err := s.Open(context.Background(), strings.TrimPrefix(url, UploadURLPrefix))
	require.NoError(t, err)
	defer rc.Close()
	b, err := io.ReadAll(rc)
	require.NoError(t, err)
	return string(b)
}

func TestStoreDuplicateNamesGetDistinctURLs(t *testing.T) {
	storage := NewLocalStorage(t.TempDir())
	h := NewUploadHandler(storage, 0, zap.NewNop())

	urls, err := h.Store(context.Background(), fileHeaders(t,
		upload{name: "photo.png", data: []byte("first")},
		upload{name: "photo.png", data: []byte("second")},
	))
	require.NoError(t, err)
	require.Len(t, urls, 2)
	assert.NotEqual(t, urls[0], urls[1])
	for _, u := range urls {
		assert.True(t, strings.HasPrefix(u, UploadURLPrefix))
		assert.True(t, strings.HasSuffix(u, "_photo.png"))
		token := strings.SplitN(strings.TrimPrefix(u, UploadURLPrefix), "_", 2)[0]
		assert.Len(t, token, 32)
	}
	assert.Equal(t, "first", readStored(t, storage, urls[0]))
	assert.Equal(t, "second", readStored(t, storage, urls[1]))
}

func TestStoreSkipsDisallowedExtensions(t *testing.T) {
	dir := t.TempDir()
	h := NewUploadHandler(NewLocalStorage(dir), 0, zap.NewNop())

	urls, err := h.Store(context.Background(), fileHeaders(t,
		upload{name: "virus.exe", data: []byte("MZ")},
		upload{name: "a.GIF", data: []byte("gif")},
		upload{name: "noext", data: []byte("?")},
		upload{name: "b.jpeg", data: []byte("jpeg")},
	))
	require.NoError(t, err)
	require.Len(t, urls, 2)
	assert.True(t, strings.HasSuffix(urls[0], "_a.gif"))
	assert.True(t, strings.HasSuffix(urls[1], "_b.jpeg"))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestStoreEmptyInputReturnsEmptySlice(t *testing.T) {
	h := NewUploadHandler(NewLocalStorage(t.TempDir()), 0, zap.NewNop())

	urls, err := h.Store(context.Background(), nil)
	require.NoError(t, err)
	assert.NotNil(t, urls)
	assert.Empty(t, urls)

	urls, err = h.Store(context.Background(), fileHeaders(t, upload{name: "x.exe", data: []byte("1")}))
	require.NoError(t, err)
	assert.NotNil(t, urls)
	assert.Empty(t, urls)
}

func TestStoreRejectsOversizedFilesBeforeWriting(t *testing.T) {
	dir := t.TempDir()
	h := NewUploadHandler(NewLocalStorage(dir), 4, zap.NewNop())

	_, err := h.Store(context.Background(), fileHeaders(t,
		upload{name: "ok.png", data: []byte("tiny")},
		upload{name: "big.png", data: []byte("far too large")},
	))
	assert.ErrorIs(t, err, ErrValidation)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

type failingStorage struct {
	Storage
	saves  int
	failAt int
}

func (s *failingStorage) Save(ctx context.Context, name string, r io.Reader, size int64, ct string) error {
	s.saves++
	if s.saves == s.failAt {
		return errors.New("disk full")
	}
	return s.Storage.Save(ctx, name, r, size, ct)
}

func TestStoreWriteFailureIsStorageError(t *testing.T) {
	storage := &failingStorage{Storage: NewLocalStorage(t.TempDir()), failAt: 2}
	h := NewUploadHandler(storage, 0, zap.NewNop())

	urls, err := h.Store(context.Background(), fileHeaders(t,
		upload{name: "a.png", data: []byte("a")},
		upload{name: "b.png", data: []byte("b")},
	))
	assert.Nil(t, urls)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrStorage)
	assert.Contains(t, err.Error(), "disk full")
}

func TestSplitUploadName(t *testing.T) {
	cases := []struct {
		in, stem, ext string
	}{
		{"photo.PNG", "photo", ".png"},
		{`C:\Users\kim\my photo.jpg`, "my_photo", ".jpg"},
		{"../../etc/passwd.png", "passwd", ".png"},
		{"사진.gif", "image", ".gif"},
		{".png", "image", ".png"},
		{"a;rm -rf.jpeg", "arm_-rf", ".jpeg"},
	}
	for _, c := range cases {
		stem, ext := splitUploadName(c.in)
		assert.Equal(t, c.stem, stem, c.in)
		assert.Equal(t, c.ext, ext, c.in)
	}
}

func TestIsUploadName(t *testing.T) {
	assert.True(t, IsUploadName("0123abcd_photo.png"))
	assert.False(t, IsUploadName(""))
	assert.False(t, IsUploadName("../secret"))
	assert.False(t, IsUploadName(".hidden"))
}

func TestLocalStorageOpenMissing(t *testing.T) {
	_, err := NewLocalStorage(t.TempDir()).Open(context.Background(), "nope.png")
	assert.ErrorIs(t, err, ErrObjectNotFound)
}

func TestNewStoragePicksBackend(t *testing.T) {
	var cfg config.AppConfig
	cfg.UploadDir = t.TempDir()

	s, err := NewStorage(context.Background(), cfg)
	require.NoError(t, err)
	assert.IsType(t, &LocalStorage{}, s)

	cfg.UploadBackend = "ftp"
	_, err = NewStorage(context.Background(), cfg)
	assert.Error(t, err)
}
