package memory

import (
	"bytes"
	"context"
	"io"
	"sync"

	"github.com/RubachokBoss/thesisflow/internal/repository"
)

type object struct {
	data        []byte
	contentType string
}

// FileStorage is a repository.FileStorage kept in memory.
type FileStorage struct {
	mu      sync.RWMutex
	objects map[string]object
}

func NewFileStorage() *FileStorage {
	return &FileStorage{objects: make(map[string]object)}
}

func (f *FileStorage) Upload(ctx context.Context, key string, data io.Reader, size int64, contentType string) error {
	buf, err := io.ReadAll(data)
	if err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[key] = object{data: buf, contentType: contentType}
	return nil
}

func (f *FileStorage) Download(ctx context.Context, key string) (io.ReadCloser, int64, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	obj, ok := f.objects[key]
	if !ok {
		return nil, 0, repository.ErrFileNotFound
	}
	return io.NopCloser(bytes.NewReader(obj.data)), int64(len(obj.data)), nil
}

func (f *FileStorage) Delete(ctx context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, key)
	return nil
}

// Len reports how many objects are stored.
func (f *FileStorage) Len() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.objects)
}
