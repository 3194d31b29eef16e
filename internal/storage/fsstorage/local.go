package fsstorage

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/denismitr/stockresizer/internal/storage"
	"github.com/google/renameio/v2"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const (
	dirPerm  = 0755
	filePerm = 0644
)

// LocalStorage keeps the store layout on the local disk under root
type LocalStorage struct {
	root   string
	logger *logrus.Logger
}

func New(root string, logger *logrus.Logger) (*LocalStorage, error) {
	if root == "" {
		return nil, errors.New("images root directory is required")
	}

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, errors.Wrapf(err, "could not resolve images root %s", root)
	}

	if logger == nil {
		logger = logrus.New()
	}

	return &LocalStorage{root: absRoot, logger: logger}, nil
}

func (ls *LocalStorage) Root() string {
	return ls.root
}

func (ls *LocalStorage) Exists(ctx context.Context, key string) (bool, error) {
	path, err := ls.fullPath(key)
	if err != nil {
		return false, err
	}

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}

		return false, errors.Wrapf(storage.ErrStorageFailed, "could not stat %s: %v", key, err)
	}

	return !info.IsDir(), nil
}

func (ls *LocalStorage) Open(ctx context.Context, key string) (io.ReadCloser, *storage.Item, error) {
	path, err := ls.fullPath(key)
	if err != nil {
		return nil, nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, errors.Wrapf(storage.ErrNotFound, "file %s does not exist", key)
		}

		return nil, nil, errors.Wrapf(storage.ErrStorageFailed, "could not open %s: %v", key, err)
	}

	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, nil, errors.Wrapf(storage.ErrStorageFailed, "could not stat %s: %v", key, err)
	}

	if info.IsDir() {
		_ = f.Close()
		return nil, nil, errors.Wrapf(storage.ErrNotFound, "%s is a directory", key)
	}

	return f, ls.item(key, path, info), nil
}

// Put writes into a temporary file next to the destination and renames it
// into place, so the canonical path holds either nothing or the complete file
func (ls *LocalStorage) Put(ctx context.Context, key string, source io.Reader) (*storage.Item, error) {
	path, err := ls.fullPath(key)
	if err != nil {
		return nil, err
	}

	// MkdirAll treats a directory created concurrently by another writer as success
	if err := os.MkdirAll(filepath.Dir(path), dirPerm); err != nil {
		return nil, errors.Wrapf(storage.ErrStorageFailed, "could not create directory for %s: %v", key, err)
	}

	pf, err := renameio.NewPendingFile(path, renameio.WithPermissions(filePerm))
	if err != nil {
		return nil, errors.Wrapf(storage.ErrStorageFailed, "could not create temp file for %s: %v", key, err)
	}
	defer func() {
		if err := pf.Cleanup(); err != nil {
			ls.logger.WithField("key", key).Warnf("could not clean up temp file: %v", err)
		}
	}()

	if _, err := io.Copy(pf, source); err != nil {
		return nil, errors.Wrapf(storage.ErrStorageFailed, "could not write %s: %v", key, err)
	}

	if err := pf.CloseAtomicallyReplace(); err != nil {
		return nil, errors.Wrapf(storage.ErrStorageFailed, "could not move %s into place: %v", key, err)
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, errors.Wrapf(storage.ErrStorageFailed, "could not stat %s after write: %v", key, err)
	}

	return ls.item(key, path, info), nil
}

func (ls *LocalStorage) List(ctx context.Context, prefix string) ([]storage.Item, error) {
	dir := ls.root
	if prefix != "" {
		var err error
		if dir, err = ls.fullPath(prefix); err != nil {
			return nil, err
		}
	}

	var items []storage.Item
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}

			return err
		}

		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		// pending renameio files are hidden
		if strings.HasPrefix(info.Name(), ".") && path != dir {
			if info.IsDir() {
				return filepath.SkipDir
			}

			return nil
		}

		if info.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(ls.root, path)
		if err != nil {
			return err
		}

		items = append(items, *ls.item(filepath.ToSlash(rel), path, info))
		return nil
	})

	if err != nil {
		return nil, errors.Wrapf(storage.ErrStorageFailed, "could not list %s: %v", prefix, err)
	}

	sort.Slice(items, func(i, j int) bool { return items[i].Key < items[j].Key })

	return items, nil
}

func (ls *LocalStorage) Remove(ctx context.Context, key string) error {
	path, err := ls.fullPath(key)
	if err != nil {
		return err
	}

	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}

		return errors.Wrapf(storage.ErrStorageFailed, "could not remove %s: %v", key, err)
	}

	ls.removeEmptyDir(filepath.Dir(path))

	return nil
}

func (ls *LocalStorage) RemovePrefix(ctx context.Context, prefix string) (int, error) {
	if prefix == "" {
		return 0, errors.Wrap(storage.ErrInvalidKey, "refusing to remove the whole store")
	}

	path, err := ls.fullPath(prefix)
	if err != nil {
		return 0, err
	}

	items, err := ls.List(ctx, prefix)
	if err != nil {
		return 0, err
	}

	if err := os.RemoveAll(path); err != nil {
		return 0, errors.Wrapf(storage.ErrStorageFailed, "could not remove %s: %v", prefix, err)
	}

	return len(items), nil
}

func (ls *LocalStorage) removeEmptyDir(dir string) {
	if dir == ls.root || !strings.HasPrefix(dir, ls.root) {
		return
	}

	entries, err := os.ReadDir(dir)
	if err != nil || len(entries) != 0 {
		return
	}

	if err := os.Remove(dir); err != nil && !os.IsNotExist(err) {
		ls.logger.WithField("dir", dir).Warnf("could not remove empty directory: %v", err)
	}
}

func (ls *LocalStorage) fullPath(key string) (string, error) {
	if key == "" {
		return "", errors.Wrap(storage.ErrInvalidKey, "key is empty")
	}

	cleaned := filepath.Clean(filepath.FromSlash(key))
	if filepath.IsAbs(cleaned) || cleaned == ".." || strings.HasPrefix(cleaned, ".."+string(filepath.Separator)) {
		return "", errors.Wrapf(storage.ErrInvalidKey, "key %s escapes the images root", key)
	}

	path := filepath.Join(ls.root, cleaned)
	if path != ls.root && !strings.HasPrefix(path, ls.root+string(filepath.Separator)) {
		return "", errors.Wrapf(storage.ErrInvalidKey, "key %s escapes the images root", key)
	}

	return path, nil
}

func (ls *LocalStorage) item(key, path string, info os.FileInfo) *storage.Item {
	return &storage.Item{
		Key:     key,
		Path:    path,
		Size:    info.Size(),
		ModTime: info.ModTime(),
	}
}
