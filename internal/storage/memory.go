package storage

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"sync"
)

type memoryObject struct {
	data        []byte
	contentType string
}

// Memory is an in-process Storage for local development and tests.
type Memory struct {
	mu      sync.RWMutex
	objects map[string]memoryObject
	baseURL string
}

// NewMemory returns an empty in-memory store whose public URLs start with baseURL.
func NewMemory(baseURL string) *Memory {
	return &Memory{objects: make(map[string]memoryObject), baseURL: baseURL}
}

var _ Storage = (*Memory)(nil)

func (m *Memory) Put(ctx context.Context, key string, r io.Reader, opt PutObjectOptions) (ObjectInfo, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return ObjectInfo{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.objects[key]; ok {
		return ObjectInfo{}, fmt.Errorf("%w: %s", ErrObjectExists, key)
	}
	m.objects[key] = memoryObject{data: data, contentType: opt.ContentType}

	sum := md5.Sum(data)
	return ObjectInfo{
		Key:         key,
		Size:        int64(len(data)),
		ETag:        hex.EncodeToString(sum[:]),
		ContentType: opt.ContentType,
	}, nil
}

func (m *Memory) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	return nil
}

func (m *Memory) PublicURL(key string) string {
	return m.baseURL + "/object/public/memory/" + escapeKey(key)
}

// Has reports whether an object is stored under key.
func (m *Memory) Has(key string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.objects[key]
	return ok
}

// Len returns the number of stored objects.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.objects)
}
