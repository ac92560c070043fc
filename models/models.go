// Package models holds the persistent records: users, per-heading item
// sets, and uploaded image assets.
package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// CodeAlphabet is the charset for 4-char user codes. Ambiguous glyphs
// are left out so codes survive being read aloud.
const CodeAlphabet = "bcfghklmopqrsuwxyz0123456789"

// User is an account. Name-only signups get a placeholder email of the
// form `<email>.<code>.unregistered` until they register fully.
type User struct {
	ID           uuid.UUID `db:"id"`
	Email        string    `db:"email"`
	FirstName    string    `db:"first_name"`
	LastName     string    `db:"last_name"`
	Username     string    `db:"username"`
	UniqueCode   string    `db:"unique_code"`
	PasswordHash string    `db:"password_hash"`
	IsActive     bool      `db:"is_active"`
	IsVerified   bool      `db:"is_verified"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

// UnregisteredSuffix marks placeholder accounts created by name-only
// signup.
const UnregisteredSuffix = ".unregistered"

// PlaceholderEmail builds the placeholder email for a name-only signup.
func PlaceholderEmail(email, code string) string {
	return fmt.Sprintf("%s.%s%s", email, code, UnregisteredSuffix)
}

// Registered reports whether the account completed a full signup.
func (u *User) Registered() bool {
	return !strings.HasSuffix(u.Email, UnregisteredSuffix)
}

// BareEmail strips the placeholder decoration, if any.
func (u *User) BareEmail() string {
	suffix := fmt.Sprintf(".%s%s", u.UniqueCode, UnregisteredSuffix)
	return strings.TrimSuffix(u.Email, suffix)
}

// StringList stores an ordered list of cell values as jsonb.
type StringList []string

// Value implements driver.Valuer.
func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		l = StringList{}
	}
	return json.Marshal(l)
}

// Scan implements sql.Scanner.
func (l *StringList) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*l = StringList{}
		return nil
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	default:
		return fmt.Errorf("cannot scan %T into StringList", src)
	}
}

// DefaultColor is the stored (alpha-first) color new headings get.
const DefaultColor = "#ffaa33ff"

// ItemSet is one inspector heading with its ordered values and the
// layout attributes used when stamping the values onto the base image.
// Color is stored alpha-first (AARRGGBB).
type ItemSet struct {
	ID        int64      `db:"id"`
	UserCode  string     `db:"user_code"`
	Heading   string     `db:"heading"`
	Items     StringList `db:"items"`
	PositionX int        `db:"position_x"`
	PositionY int        `db:"position_y"`
	FontSize  int        `db:"font_size"`
	FontName  string     `db:"font_name"`
	Color     string     `db:"color"`
	CreatedAt time.Time  `db:"created_at"`
}

// NewItemSet returns a blank heading with the layout defaults.
func NewItemSet(userCode string) *ItemSet {
	return &ItemSet{
		UserCode:  userCode,
		Heading:   "",
		Items:     StringList{},
		PositionX: 0,
		PositionY: 0,
		FontSize:  12,
		FontName:  "arial",
		Color:     DefaultColor,
		CreatedAt: time.Now().UTC(),
	}
}

// ImageAsset is the uploaded base image for a user plus the most recent
// rendered preview. A new upload replaces the prior asset.
type ImageAsset struct {
	ID         int64     `db:"id"`
	UserCode   string    `db:"user_code"`
	FileName   string    `db:"file_name"`
	URL        string    `db:"url"`
	PreviewURL string    `db:"preview_url"`
	Exports    int       `db:"exports"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`
}

// FormError carries a form-scoped validation failure for inline
// re-rendering. Basic is user-facing; Advanced keeps the cause.
type FormError struct {
	HasError bool
	Basic    string
	Advanced string
}

// NewFormError builds a populated FormError.
func NewFormError(basic string, cause error) FormError {
	fe := FormError{HasError: true, Basic: basic}
	if cause != nil {
		fe.Advanced = fmt.Sprintf("%T: %v", cause, cause)
	}
	return fe
}
