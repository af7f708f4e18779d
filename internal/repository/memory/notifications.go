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

type NotificationRepository struct {
	mu            sync.RWMutex
	notifications map[primitive.ObjectID]models.Notification
}

func NewNotificationRepository() *NotificationRepository {
	return &NotificationRepository{notifications: make(map[primitive.ObjectID]models.Notification)}
}

func (r *NotificationRepository) Create(_ context.Context, n *models.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	n.ID = primitive.NewObjectID()
	r.notifications[n.ID] = *n
	return nil
}

func (r *NotificationRepository) GetByID(_ context.Context, id string) (*models.Notification, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, repository.ErrNotFound
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	n, ok := r.notifications[oid]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &n, nil
}

func (r *NotificationRepository) ListByRecipient(_ context.Context, recipientID string) ([]models.Notification, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.Notification, 0)
	for _, n := range r.notifications {
		if n.RecipientID == recipientID {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Timestamp.Equal(out[j].Timestamp) {
			return out[i].Timestamp.After(out[j].Timestamp)
		}
		return bytes.Compare(out[i].ID[:], out[j].ID[:]) > 0
	})
	return out, nil
}

func (r *NotificationRepository) MarkRead(_ context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return repository.ErrNotFound
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	n, ok := r.notifications[oid]
	if !ok {
		return repository.ErrNotFound
	}
	n.IsRead = true
	r.notifications[oid] = n
	return nil
}

// All returns every stored notification, newest first.
func (r *NotificationRepository) All() []models.Notification {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.Notification, 0, len(r.notifications))
	for _, n := range r.notifications {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool {
		return bytes.Compare(out[i].ID[:], out[j].ID[:]) > 0
	})
	return out
}
