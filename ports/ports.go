// Package ports declares the interfaces the application services
// depend on: persistence, blob storage and rendering.
package ports

import (
	"context"
	"image"
	"io"

	"autoficate/models"
)

// UserRepository persists accounts.
type UserRepository interface {
	CreateUser(ctx context.Context, user *models.User) error
	UpdateUser(ctx context.Context, user *models.User) error
	GetUserByCode(ctx context.Context, code string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	// ListUnregisteredByEmail finds placeholder accounts whose
	// decorated email embeds the given address.
	ListUnregisteredByEmail(ctx context.Context, email string) ([]*models.User, error)
	DeleteUser(ctx context.Context, id string) error
	CodeExists(ctx context.Context, code string) (bool, error)
}

// ItemSetRepository persists inspector headings and their value lists.
type ItemSetRepository interface {
	CreateItemSet(ctx context.Context, set *models.ItemSet) error
	UpdateItemSet(ctx context.Context, set *models.ItemSet) error
	GetItemSet(ctx context.Context, userCode, heading string) (*models.ItemSet, error)
	ListItemSets(ctx context.Context, userCode string) ([]*models.ItemSet, error)
	ListHeadings(ctx context.Context, userCode string) ([]string, error)
	LatestItemSet(ctx context.Context, userCode string) (*models.ItemSet, error)
	DeleteItemSet(ctx context.Context, userCode, heading string) error
	DeleteAllForUser(ctx context.Context, userCode string) error
}

// ImageRepository persists the uploaded base image per user.
type ImageRepository interface {
	UpsertImage(ctx context.Context, asset *models.ImageAsset) error
	GetImage(ctx context.Context, userCode string) (*models.ImageAsset, error)
	DeleteImage(ctx context.Context, userCode string) error
	IncrementExports(ctx context.Context, userCode string) error
}

// BlobStore abstracts where uploaded assets, previews and export
// bundles live. Keys use forward slashes; PublicURL maps a key to the
// URL the page can reference.
type BlobStore interface {
	Store(ctx context.Context, key string, r io.Reader) error
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	DeletePrefix(ctx context.Context, prefix string) error
	PublicURL(key string) string
}

// Renderer stamps item values onto a base image and encodes pages.
type Renderer interface {
	RenderPage(base image.Image, sets []*models.ItemSet, row int) (image.Image, error)
	Encode(w io.Writer, page image.Image, format string) error
}
