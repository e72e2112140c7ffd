// Package memory provides process-local implementations of the repositories.
// It backs the "memory" storage driver and the test doubles in testutil.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/bimakw/portfolio-tracker/internal/domain/entities"
	"github.com/bimakw/portfolio-tracker/internal/domain/repositories"
)

var (
	_ repositories.HoldingRepository = (*HoldingRepo)(nil)
	_ repositories.HistoryRepository = (*HistoryRepo)(nil)
	_ repositories.UserRepository    = (*UserRepo)(nil)
	_ repositories.SessionRepository = (*SessionRepo)(nil)
)

// Store groups the in-memory repositories
type Store struct {
	Holdings *HoldingRepo
	History  *HistoryRepo
	Users    *UserRepo
	Sessions *SessionRepo
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{
		Holdings: NewHoldingRepo(),
		History:  NewHistoryRepo(),
		Users:    NewUserRepo(),
		Sessions: NewSessionRepo(),
	}
}

// HealthCheck always succeeds
func (s *Store) HealthCheck(ctx context.Context) error {
	return nil
}

type holdingKey struct {
	kind entities.HoldingKind
	id   string
}

// HoldingRepo keeps holdings in insertion order
type HoldingRepo struct {
	mu    sync.RWMutex
	order []holdingKey
	byKey map[holdingKey]entities.Holding
}

// NewHoldingRepo creates an empty holding repository
func NewHoldingRepo() *HoldingRepo {
	return &HoldingRepo{byKey: make(map[holdingKey]entities.Holding)}
}

func (r *HoldingRepo) Create(ctx context.Context, h *entities.Holding) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	k := holdingKey{kind: h.Kind, id: h.ID}
	if _, ok := r.byKey[k]; ok {
		return repositories.ErrDuplicate
	}
	r.byKey[k] = *h
	r.order = append(r.order, k)
	return nil
}

func (r *HoldingRepo) ListByOwner(ctx context.Context, ownerID string, kind entities.HoldingKind) ([]entities.Holding, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]entities.Holding, 0)
	for _, k := range r.order {
		h := r.byKey[k]
		if k.kind == kind && h.OwnerID == ownerID {
			result = append(result, h)
		}
	}
	return result, nil
}

func (r *HoldingRepo) GetByID(ctx context.Context, ownerID string, kind entities.HoldingKind, id string) (*entities.Holding, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	h, ok := r.byKey[holdingKey{kind: kind, id: id}]
	if !ok || h.OwnerID != ownerID {
		return nil, nil
	}
	return &h, nil
}

func (r *HoldingRepo) Delete(ctx context.Context, ownerID string, kind entities.HoldingKind, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	k := holdingKey{kind: kind, id: id}
	h, ok := r.byKey[k]
	if !ok || h.OwnerID != ownerID {
		return false, nil
	}

	delete(r.byKey, k)
	for i, o := range r.order {
		if o == k {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return true, nil
}

func (r *HoldingRepo) ListOwners(ctx context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]struct{})
	owners := make([]string, 0)
	for _, h := range r.byKey {
		if _, ok := seen[h.OwnerID]; ok {
			continue
		}
		seen[h.OwnerID] = struct{}{}
		owners = append(owners, h.OwnerID)
	}
	sort.Strings(owners)
	return owners, nil
}

// HistoryRepo keeps history records in insertion order
type HistoryRepo struct {
	mu      sync.RWMutex
	records []entities.HistoryRecord
}

// NewHistoryRepo creates an empty history repository
func NewHistoryRepo() *HistoryRepo {
	return &HistoryRepo{}
}

func (r *HistoryRepo) Create(ctx context.Context, rec *entities.HistoryRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.records {
		if existing.ID == rec.ID {
			return repositories.ErrDuplicate
		}
	}
	r.records = append(r.records, *rec)
	return nil
}

// ListByOwner sorts by timestamp descending; later inserts win ties
func (r *HistoryRepo) ListByOwner(ctx context.Context, ownerID string) ([]entities.HistoryRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]entities.HistoryRecord, 0)
	for i := len(r.records) - 1; i >= 0; i-- {
		if r.records[i].OwnerID == ownerID {
			result = append(result, r.records[i])
		}
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Timestamp.After(result[j].Timestamp)
	})
	return result, nil
}

// UserRepo keeps users keyed by id
type UserRepo struct {
	mu    sync.RWMutex
	users map[string]entities.User
}

// NewUserRepo creates an empty user repository
func NewUserRepo() *UserRepo {
	return &UserRepo{users: make(map[string]entities.User)}
}

func (r *UserRepo) GetByID(ctx context.Context, userID string) (*entities.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[userID]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*entities.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if u.Email == email {
			u := u
			return &u, nil
		}
	}
	return nil, nil
}

func (r *UserRepo) Create(ctx context.Context, user *entities.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.Email == user.Email || u.UserID == user.UserID {
			return repositories.ErrDuplicate
		}
	}
	r.users[user.UserID] = *user
	return nil
}

func (r *UserRepo) UpdateProfile(ctx context.Context, userID, name string, picture *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[userID]
	if !ok {
		return nil
	}
	u.Name = name
	u.Picture = picture
	r.users[userID] = u
	return nil
}

// SessionRepo keeps sessions keyed by token
type SessionRepo struct {
	mu       sync.RWMutex
	sessions map[string]entities.Session
}

// NewSessionRepo creates an empty session repository
func NewSessionRepo() *SessionRepo {
	return &SessionRepo{sessions: make(map[string]entities.Session)}
}

func (r *SessionRepo) Create(ctx context.Context, s *entities.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[s.Token]; ok {
		return repositories.ErrDuplicate
	}
	r.sessions[s.Token] = *s
	return nil
}

func (r *SessionRepo) GetByToken(ctx context.Context, token string) (*entities.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.sessions[token]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

func (r *SessionRepo) Delete(ctx context.Context, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.sessions, token)
	return nil
}
