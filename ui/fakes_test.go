package ui

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"autoficate/internal/errors"
	"autoficate/models"
)

// In-memory repositories backing the handler tests.

type memUserRepo struct {
	mu    sync.Mutex
	users []*models.User
}

func (r *memUserRepo) CreateUser(ctx context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *user
	r.users = append(r.users, &copied)
	return nil
}

func (r *memUserRepo) UpdateUser(ctx context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, u := range r.users {
		if u.ID == user.ID {
			copied := *user
			r.users[i] = &copied
			return nil
		}
	}
	return errors.NotFound("user not found")
}

func (r *memUserRepo) GetUserByCode(ctx context.Context, code string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.UniqueCode == code {
			copied := *u
			return &copied, nil
		}
	}
	return nil, errors.NotFound("user not found")
}

func (r *memUserRepo) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, errors.NotFound("user not found")
}

func (r *memUserRepo) ListUnregisteredByEmail(ctx context.Context, email string) ([]*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.User
	for _, u := range r.users {
		if strings.Contains(u.Email, email) && strings.HasSuffix(u.Email, models.UnregisteredSuffix) {
			copied := *u
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *memUserRepo) DeleteUser(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, u := range r.users {
		if u.ID.String() == id {
			r.users = append(r.users[:i], r.users[i+1:]...)
			return nil
		}
	}
	return errors.NotFound("user not found")
}

func (r *memUserRepo) CodeExists(ctx context.Context, code string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.UniqueCode == code {
			return true, nil
		}
	}
	return false, nil
}

type memSetRepo struct {
	mu     sync.Mutex
	sets   []*models.ItemSet
	nextID int64
}

func (r *memSetRepo) CreateItemSet(ctx context.Context, set *models.ItemSet) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	set.ID = r.nextID
	copied := *set
	copied.Items = append(models.StringList(nil), set.Items...)
	r.sets = append(r.sets, &copied)
	return nil
}

func (r *memSetRepo) UpdateItemSet(ctx context.Context, set *models.ItemSet) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, s := range r.sets {
		if s.ID == set.ID {
			copied := *set
			copied.Items = append(models.StringList(nil), set.Items...)
			r.sets[i] = &copied
			return nil
		}
	}
	return errors.NotFound("item set not found")
}

func (r *memSetRepo) GetItemSet(ctx context.Context, userCode, heading string) (*models.ItemSet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.sets {
		if s.UserCode == userCode && s.Heading == heading {
			copied := *s
			copied.Items = append(models.StringList(nil), s.Items...)
			return &copied, nil
		}
	}
	return nil, errors.NotFound("item set not found")
}

func (r *memSetRepo) ListItemSets(ctx context.Context, userCode string) ([]*models.ItemSet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.ItemSet
	for _, s := range r.sets {
		if s.UserCode == userCode {
			copied := *s
			copied.Items = append(models.StringList(nil), s.Items...)
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *memSetRepo) ListHeadings(ctx context.Context, userCode string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, s := range r.sets {
		if s.UserCode == userCode {
			out = append(out, s.Heading)
		}
	}
	return out, nil
}

func (r *memSetRepo) LatestItemSet(ctx context.Context, userCode string) (*models.ItemSet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var latest *models.ItemSet
	for _, s := range r.sets {
		if s.UserCode == userCode {
			latest = s
		}
	}
	if latest == nil {
		return nil, errors.NotFound("item set not found")
	}
	copied := *latest
	return &copied, nil
}

func (r *memSetRepo) DeleteItemSet(ctx context.Context, userCode, heading string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, s := range r.sets {
		if s.UserCode == userCode && s.Heading == heading {
			r.sets = append(r.sets[:i], r.sets[i+1:]...)
			return nil
		}
	}
	return errors.NotFound("item set not found")
}

func (r *memSetRepo) DeleteAllForUser(ctx context.Context, userCode string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.sets[:0]
	for _, s := range r.sets {
		if s.UserCode != userCode {
			kept = append(kept, s)
		}
	}
	r.sets = kept
	return nil
}

type memImageRepo struct {
	mu     sync.Mutex
	assets map[string]*models.ImageAsset
}

func newMemImageRepo() *memImageRepo {
	return &memImageRepo{assets: make(map[string]*models.ImageAsset)}
}

func (r *memImageRepo) UpsertImage(ctx context.Context, asset *models.ImageAsset) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *asset
	r.assets[asset.UserCode] = &copied
	return nil
}

func (r *memImageRepo) GetImage(ctx context.Context, userCode string) (*models.ImageAsset, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	asset, ok := r.assets[userCode]
	if !ok {
		return nil, errors.NotFound("image not found")
	}
	copied := *asset
	return &copied, nil
}

func (r *memImageRepo) DeleteImage(ctx context.Context, userCode string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.assets, userCode)
	return nil
}

func (r *memImageRepo) IncrementExports(ctx context.Context, userCode string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if asset, ok := r.assets[userCode]; ok {
		asset.Exports++
	}
	return nil
}

type memSessionRepo struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*models.Session
}

func newMemSessionRepo() *memSessionRepo {
	return &memSessionRepo{sessions: make(map[uuid.UUID]*models.Session)}
}

func (r *memSessionRepo) CreateSession(ctx context.Context, session *models.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *session
	r.sessions[session.ID] = &copied
	return nil
}

func (r *memSessionRepo) GetSession(ctx context.Context, id uuid.UUID) (*models.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	session, ok := r.sessions[id]
	if !ok {
		return nil, errors.NotFound("session not found")
	}
	copied := *session
	return &copied, nil
}

func (r *memSessionRepo) SaveSession(ctx context.Context, session *models.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[session.ID]; !ok {
		return errors.NotFound("session not found")
	}
	copied := *session
	r.sessions[session.ID] = &copied
	return nil
}

func (r *memSessionRepo) DeleteSession(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
	return nil
}

func (r *memSessionRepo) DeleteExpired(ctx context.Context, idleDays int) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cutoff := time.Now().UTC().AddDate(0, 0, -idleDays)
	var n int64
	for id, s := range r.sessions {
		if s.UpdatedAt.Before(cutoff) {
			delete(r.sessions, id)
			n++
		}
	}
	return n, nil
}

func (r *memSessionRepo) has(id uuid.UUID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.sessions[id]
	return ok
}
