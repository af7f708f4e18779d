// Package memory implements the repositories in process memory. It backs the
// "memory" store driver and the service and handler tests.
package memory

import (
	"bytes"
	"context"
	"sort"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/harentsoaR/medisync-api/internal/models"
	"github.com/harentsoaR/medisync-api/internal/repository"
)

type UserRepository struct {
	mu    sync.RWMutex
	users map[primitive.ObjectID]models.User
}

func NewUserRepository() *UserRepository {
	return &UserRepository{users: make(map[primitive.ObjectID]models.User)}
}

func (r *UserRepository) Create(_ context.Context, u *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.usernameTaken(u.Username, primitive.NilObjectID) {
		return repository.ErrDuplicate
	}
	u.ID = primitive.NewObjectID()
	r.users[u.ID] = *u
	return nil
}

func (r *UserRepository) GetByID(_ context.Context, id string) (*models.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, repository.ErrNotFound
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[oid]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (r *UserRepository) GetByUsername(_ context.Context, username string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if u.Username == username {
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *UserRepository) List(_ context.Context) ([]models.User, error) {
	return r.filter(func(models.User) bool { return true }), nil
}

func (r *UserRepository) ListByRole(_ context.Context, role models.Role) ([]models.User, error) {
	return r.filter(func(u models.User) bool { return u.Role == role }), nil
}

func (r *UserRepository) Update(_ context.Context, u *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[u.ID]; !ok {
		return repository.ErrNotFound
	}
	if r.usernameTaken(u.Username, u.ID) {
		return repository.ErrDuplicate
	}
	r.users[u.ID] = *u
	return nil
}

func (r *UserRepository) Delete(_ context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return repository.ErrNotFound
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[oid]; !ok {
		return repository.ErrNotFound
	}
	delete(r.users, oid)
	return nil
}

// usernameTaken must be called with mu held.
func (r *UserRepository) usernameTaken(username string, except primitive.ObjectID) bool {
	for id, u := range r.users {
		if id != except && u.Username == username {
			return true
		}
	}
	return false
}

func (r *UserRepository) filter(keep func(models.User) bool) []models.User {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.User, 0, len(r.users))
	for _, u := range r.users {
		if keep(u) {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return bytes.Compare(out[i].ID[:], out[j].ID[:]) < 0
	})
	return out
}
