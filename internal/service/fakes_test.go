package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"sso-backend/internal/domain"
	"sso-backend/internal/repository"
)

type fakeUserRepo struct {
	mu      sync.Mutex
	nextID  int64
	byEmail map[string]*domain.User
	order   []string

	findErr error
	// when set, CreateLocal/CreateExternal report a duplicate after inserting
	// this user, simulating a concurrent writer.
	raceWith *domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{byEmail: make(map[string]*domain.User)}
}

func (r *fakeUserRepo) Init(context.Context) error { return nil }

func (r *fakeUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findErr != nil {
		return nil, r.findErr
	}
	u, ok := r.byEmail[email]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) CreateLocal(_ context.Context, email, passwordHash, fullName string) (*domain.User, error) {
	return r.insert(domain.User{Email: email, PasswordHash: passwordHash, FullName: fullName, Provider: domain.ProviderLocal})
}

func (r *fakeUserRepo) CreateExternal(_ context.Context, email, fullName string, provider domain.Provider) (*domain.User, error) {
	return r.insert(domain.User{Email: email, FullName: fullName, Provider: provider})
}

func (r *fakeUserRepo) List(_ context.Context, skip, limit int) ([]domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []domain.User{}
	for i := skip; i < len(r.order) && len(out) < limit; i++ {
		out = append(out, *r.byEmail[r.order[i]])
	}
	return out, nil
}

func (r *fakeUserRepo) insert(u domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.raceWith != nil {
		r.store(*r.raceWith)
		r.raceWith = nil
	}
	if _, ok := r.byEmail[u.Email]; ok {
		return nil, repository.ErrAlreadyExists
	}
	stored := r.store(u)
	cp := *stored
	return &cp, nil
}

func (r *fakeUserRepo) store(u domain.User) *domain.User {
	r.nextID++
	u.ID = r.nextID
	u.CreatedAt = time.Unix(0, 0).UTC()
	u.UpdatedAt = u.CreatedAt
	r.byEmail[u.Email] = &u
	r.order = append(r.order, u.Email)
	return &u
}

var errStoreDown = errors.New("store down")

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}
