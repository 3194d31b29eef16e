package fsstorage

import (
	"bytes"
	"context"
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/denismitr/stockresizer/internal/storage"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStorage(t *testing.T) *LocalStorage {
	t.Helper()

	lg := logrus.New()
	lg.Out = ioutil.Discard

	ls, err := New(t.TempDir(), lg)
	require.NoError(t, err)

	return ls
}

func writeFile(t *testing.T, ls *LocalStorage, key, content string) {
	t.Helper()

	path := filepath.Join(ls.Root(), filepath.FromSlash(key))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, ioutil.WriteFile(path, []byte(content), 0644))
}

func TestLocalStorage_PutOpenExists(t *testing.T) {
	ls := newTestStorage(t)
	ctx := context.Background()

	exists, err := ls.Exists(ctx, "processed/100x90/fjord.jpg")
	require.NoError(t, err)
	assert.False(t, exists)

	item, err := ls.Put(ctx, "processed/100x90/fjord.jpg", strings.NewReader("resized bytes"))
	require.NoError(t, err)
	assert.Equal(t, "processed/100x90/fjord.jpg", item.Key)
	assert.Equal(t, int64(len("resized bytes")), item.Size)
	assert.FileExists(t, filepath.Join(ls.Root(), "processed", "100x90", "fjord.jpg"))

	exists, err = ls.Exists(ctx, "processed/100x90/fjord.jpg")
	require.NoError(t, err)
	assert.True(t, exists)

	rc, opened, err := ls.Open(ctx, "processed/100x90/fjord.jpg")
	require.NoError(t, err)
	defer rc.Close()

	content, err := ioutil.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "resized bytes", string(content))
	assert.Equal(t, item.Size, opened.Size)
}

func TestLocalStorage_Open_NotFound(t *testing.T) {
	ls := newTestStorage(t)

	_, _, err := ls.Open(context.Background(), "full/missing.jpg")
	assert.True(t, errors.Is(err, storage.ErrNotFound))

	writeFile(t, ls, "processed/10x10/a.jpg", "x")
	_, _, err = ls.Open(context.Background(), "processed/10x10")
	assert.True(t, errors.Is(err, storage.ErrNotFound))
}

func TestLocalStorage_InvalidKeys(t *testing.T) {
	ls := newTestStorage(t)
	ctx := context.Background()

	invalidKeys := []string{"", "../outside.jpg", "full/../../outside.jpg", "/etc/passwd"}

	for _, k := range invalidKeys {
		t.Run(fmt.Sprintf("invalid key %q", k), func(t *testing.T) {
			_, err := ls.Exists(ctx, k)
			assert.True(t, errors.Is(err, storage.ErrInvalidKey))

			_, err = ls.Put(ctx, k, strings.NewReader("x"))
			assert.True(t, errors.Is(err, storage.ErrInvalidKey))
		})
	}
}

func TestLocalStorage_Put_Overwrite(t *testing.T) {
	ls := newTestStorage(t)
	ctx := context.Background()

	_, err := ls.Put(ctx, "processed/1x1/a.png", strings.NewReader("first version"))
	require.NoError(t, err)

	_, err = ls.Put(ctx, "processed/1x1/a.png", strings.NewReader("second"))
	require.NoError(t, err)

	content, err := ioutil.ReadFile(filepath.Join(ls.Root(), "processed", "1x1", "a.png"))
	require.NoError(t, err)
	assert.Equal(t, "second", string(content))
}

func TestLocalStorage_Put_Concurrent(t *testing.T) {
	ls := newTestStorage(t)
	ctx := context.Background()

	const writers = 16
	payload := bytes.Repeat([]byte("0123456789"), 100000)

	var wg sync.WaitGroup
	errs := make(chan error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := ls.Put(ctx, "processed/640x480/big.jpg", bytes.NewReader(payload)); err != nil {
				errs <- err
			}
		}()
	}

	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}

	content, err := ioutil.ReadFile(filepath.Join(ls.Root(), "processed", "640x480", "big.jpg"))
	require.NoError(t, err)
	assert.Equal(t, len(payload), len(content))

	items, err := ls.List(ctx, "processed")
	require.NoError(t, err)
	assert.Len(t, items, 1, "no temp files may be left behind")
}

func TestLocalStorage_List(t *testing.T) {
	ls := newTestStorage(t)
	ctx := context.Background()

	writeFile(t, ls, "full/fjord.jpg", "o")
	writeFile(t, ls, "processed/100x90/fjord.jpg", "a")
	writeFile(t, ls, "processed/20x20/fjord.jpg", "b")
	writeFile(t, ls, "processed/20x20/.fjord.jpg123", "pending")

	items, err := ls.List(ctx, "processed")
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "processed/100x90/fjord.jpg", items[0].Key)
	assert.Equal(t, "processed/20x20/fjord.jpg", items[1].Key)

	all, err := ls.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	none, err := ls.List(ctx, "processed/1x1")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestLocalStorage_Remove(t *testing.T) {
	ls := newTestStorage(t)
	ctx := context.Background()

	writeFile(t, ls, "processed/100x90/fjord.jpg", "a")

	require.NoError(t, ls.Remove(ctx, "processed/100x90/fjord.jpg"))
	assert.NoDirExists(t, filepath.Join(ls.Root(), "processed", "100x90"))

	assert.NoError(t, ls.Remove(ctx, "processed/100x90/fjord.jpg"), "removal is idempotent")
}

func TestLocalStorage_RemovePrefix(t *testing.T) {
	ls := newTestStorage(t)
	ctx := context.Background()

	writeFile(t, ls, "full/fjord.jpg", "o")
	writeFile(t, ls, "processed/100x90/fjord.jpg", "a")
	writeFile(t, ls, "processed/100x90/palmtunnel.jpg", "b")
	writeFile(t, ls, "processed/20x20/fjord.jpg", "c")

	n, err := ls.RemovePrefix(ctx, "processed/100x90")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.NoDirExists(t, filepath.Join(ls.Root(), "processed", "100x90"))
	assert.FileExists(t, filepath.Join(ls.Root(), "processed", "20x20", "fjord.jpg"))
	assert.FileExists(t, filepath.Join(ls.Root(), "full", "fjord.jpg"))

	_, err = ls.RemovePrefix(ctx, "")
	assert.True(t, errors.Is(err, storage.ErrInvalidKey))
}
