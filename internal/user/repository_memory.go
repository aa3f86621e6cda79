package user

import (
	"context"
	"sync"
	"time"
)

// MemoryRepository keeps users in process memory. It backs the "memory"
// storage driver and the service tests.
type MemoryRepository struct {
	mu      sync.RWMutex
	users   []*User
	byID    map[string]*User
	byEmail map[string]*User
	byName  map[string]*User
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		byID:    make(map[string]*User),
		byEmail: make(map[string]*User),
		byName:  make(map[string]*User),
	}
}

func (r *MemoryRepository) Create(_ context.Context, u *User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[u.UserID]; ok {
		return ErrUserExists
	}
	if _, ok := r.byEmail[u.Email]; ok {
		return ErrUserExists
	}
	if _, ok := r.byName[u.UserName]; ok {
		return ErrUserExists
	}

	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	stored := *u
	r.users = append(r.users, &stored)
	r.byID[stored.UserID] = &stored
	r.byEmail[stored.Email] = &stored
	r.byName[stored.UserName] = &stored
	return nil
}

func (r *MemoryRepository) GetByID(_ context.Context, userID string) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byID[userID]
	if !ok {
		return nil, ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *MemoryRepository) GetByEmail(_ context.Context, email string) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byEmail[email]
	if !ok {
		return nil, ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *MemoryRepository) ExistsByEmailOrUserName(_ context.Context, email, userName string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, byEmail := r.byEmail[email]
	_, byName := r.byName[userName]
	return byEmail || byName, nil
}

func (r *MemoryRepository) UpdateImage(_ context.Context, userID, publicID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byID[userID]
	if !ok {
		return ErrUserNotFound
	}
	id := publicID
	u.ImagePublicID = &id
	return nil
}

func (r *MemoryRepository) Count(_ context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.users)), nil
}

func (r *MemoryRepository) ListExcluding(_ context.Context, excludeUserID string, offset, limit int) ([]Summary, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	summaries := make([]Summary, 0, limit)
	skipped := 0
	for _, u := range r.users {
		if u.UserID == excludeUserID {
			continue
		}
		if skipped < offset {
			skipped++
			continue
		}
		if len(summaries) == limit {
			break
		}
		summaries = append(summaries, u.Summary())
	}
	return summaries, nil
}
