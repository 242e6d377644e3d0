package services

import (
	"context"
	"errors"
	"sync"

	"gorm.io/gorm"

	"github.com/tbourn/go-contact-backend/internal/repo"
)

// ----- Fake storage repo -----

type memRepo struct {
	mu   sync.Mutex
	data map[string]string

	getErr error
	setErr error
	rmErr  error

	// failReads makes the next n GetItem calls fail.
	failReads int

	sets int
}

func newMemRepo() *memRepo { return &memRepo{data: map[string]string{}} }

func memKey(ns, key string) string { return ns + "\x00" + key }

func (r *memRepo) GetItem(ctx context.Context, db *gorm.DB, ns, key string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.getErr != nil {
		return "", r.getErr
	}
	if r.failReads > 0 {
		r.failReads--
		return "", errors.New("connection reset")
	}
	v, ok := r.data[memKey(ns, key)]
	if !ok {
		return "", repo.ErrNotFound
	}
	return v, nil
}

func (r *memRepo) SetItem(ctx context.Context, db *gorm.DB, ns, key, value string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sets++
	if r.setErr != nil {
		return r.setErr
	}
	r.data[memKey(ns, key)] = value
	return nil
}

func (r *memRepo) RemoveItem(ctx context.Context, db *gorm.DB, ns, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.rmErr != nil {
		return r.rmErr
	}
	delete(r.data, memKey(ns, key))
	return nil
}

func (r *memRepo) raw(ns, key string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.data[memKey(ns, key)]
	return v, ok
}

func (r *memRepo) put(ns, key, value string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data[memKey(ns, key)] = value
}

// ----- Real repo shim (package functions -> StorageRepo) -----

type gormRepo struct{}

func (gormRepo) GetItem(ctx context.Context, db *gorm.DB, ns, key string) (string, error) {
	return repo.GetItem(ctx, db, ns, key)
}

func (gormRepo) SetItem(ctx context.Context, db *gorm.DB, ns, key, value string) error {
	return repo.SetItem(ctx, db, ns, key, value)
}

func (gormRepo) RemoveItem(ctx context.Context, db *gorm.DB, ns, key string) error {
	return repo.RemoveItem(ctx, db, ns, key)
}
