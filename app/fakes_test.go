package app

import (
	"context"
	"strings"

	"autoficate/internal/errors"
	"autoficate/models"
)

// In-memory repositories for service tests.

type fakeMediaPurger struct {
	purged []string
}

func (p *fakeMediaPurger) PurgeMedia(ctx context.Context, userCode string) {
	p.purged = append(p.purged, userCode)
}

type fakeUserRepo struct {
	users []*models.User
}

func (r *fakeUserRepo) CreateUser(ctx context.Context, user *models.User) error {
	copied := *user
	r.users = append(r.users, &copied)
	return nil
}

func (r *fakeUserRepo) UpdateUser(ctx context.Context, user *models.User) error {
	for i, u := range r.users {
		if u.ID == user.ID {
			copied := *user
			r.users[i] = &copied
			return nil
		}
	}
	return errors.NotFound("user not found")
}

func (r *fakeUserRepo) GetUserByCode(ctx context.Context, code string) (*models.User, error) {
	for _, u := range r.users {
		if u.UniqueCode == code {
			copied := *u
			return &copied, nil
		}
	}
	return nil, errors.NotFound("user not found")
}

func (r *fakeUserRepo) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, errors.NotFound("user not found")
}

func (r *fakeUserRepo) ListUnregisteredByEmail(ctx context.Context, email string) ([]*models.User, error) {
	var out []*models.User
	for _, u := range r.users {
		if strings.Contains(u.Email, email) && strings.HasSuffix(u.Email, models.UnregisteredSuffix) {
			copied := *u
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *fakeUserRepo) DeleteUser(ctx context.Context, id string) error {
	for i, u := range r.users {
		if u.ID.String() == id {
			r.users = append(r.users[:i], r.users[i+1:]...)
			return nil
		}
	}
	return errors.NotFound("user not found")
}

func (r *fakeUserRepo) CodeExists(ctx context.Context, code string) (bool, error) {
	for _, u := range r.users {
		if u.UniqueCode == code {
			return true, nil
		}
	}
	return false, nil
}

type fakeSetRepo struct {
	sets   []*models.ItemSet
	nextID int64
}

func (r *fakeSetRepo) CreateItemSet(ctx context.Context, set *models.ItemSet) error {
	r.nextID++
	set.ID = r.nextID
	copied := *set
	copied.Items = append(models.StringList(nil), set.Items...)
	r.sets = append(r.sets, &copied)
	return nil
}

func (r *fakeSetRepo) UpdateItemSet(ctx context.Context, set *models.ItemSet) error {
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

func (r *fakeSetRepo) GetItemSet(ctx context.Context, userCode, heading string) (*models.ItemSet, error) {
	for _, s := range r.sets {
		if s.UserCode == userCode && s.Heading == heading {
			copied := *s
			copied.Items = append(models.StringList(nil), s.Items...)
			return &copied, nil
		}
	}
	return nil, errors.NotFound("item set not found")
}

func (r *fakeSetRepo) ListItemSets(ctx context.Context, userCode string) ([]*models.ItemSet, error) {
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

func (r *fakeSetRepo) ListHeadings(ctx context.Context, userCode string) ([]string, error) {
	var out []string
	for _, s := range r.sets {
		if s.UserCode == userCode {
			out = append(out, s.Heading)
		}
	}
	return out, nil
}

func (r *fakeSetRepo) LatestItemSet(ctx context.Context, userCode string) (*models.ItemSet, error) {
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

func (r *fakeSetRepo) DeleteItemSet(ctx context.Context, userCode, heading string) error {
	for i, s := range r.sets {
		if s.UserCode == userCode && s.Heading == heading {
			r.sets = append(r.sets[:i], r.sets[i+1:]...)
			return nil
		}
	}
	return errors.NotFound("item set not found")
}

func (r *fakeSetRepo) DeleteAllForUser(ctx context.Context, userCode string) error {
	kept := r.sets[:0]
	for _, s := range r.sets {
		if s.UserCode != userCode {
			kept = append(kept, s)
		}
	}
	r.sets = kept
	return nil
}

type fakeImageRepo struct {
	assets map[string]*models.ImageAsset
}

func newFakeImageRepo() *fakeImageRepo {
	return &fakeImageRepo{assets: make(map[string]*models.ImageAsset)}
}

func (r *fakeImageRepo) UpsertImage(ctx context.Context, asset *models.ImageAsset) error {
	copied := *asset
	r.assets[asset.UserCode] = &copied
	return nil
}

func (r *fakeImageRepo) GetImage(ctx context.Context, userCode string) (*models.ImageAsset, error) {
	asset, ok := r.assets[userCode]
	if !ok {
		return nil, errors.NotFound("image not found")
	}
	copied := *asset
	return &copied, nil
}

func (r *fakeImageRepo) DeleteImage(ctx context.Context, userCode string) error {
	delete(r.assets, userCode)
	return nil
}

func (r *fakeImageRepo) IncrementExports(ctx context.Context, userCode string) error {
	if asset, ok := r.assets[userCode]; ok {
		asset.Exports++
	}
	return nil
}
