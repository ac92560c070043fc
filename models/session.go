package models

import (
	"time"

	"github.com/google/uuid"

	"autoficate/domain/flow"
)

// Session is the server-side session record. Flags mirror
// flow.SessionState; tri-state flags persist as smallints so "unset"
// survives a round trip.
type Session struct {
	ID        uuid.UUID `db:"id"`
	UserName  string    `db:"user_name"`
	UserCode  string    `db:"user_code"`
	NewUser   bool      `db:"new_user"`
	Verified  int16     `db:"is_verified"`
	Consent   int16     `db:"cookie_consent"`
	CookieSet bool      `db:"cookie_is_set"`

	CurrentHeader string `db:"current_header"`
	ExcelFileName string `db:"excel_file_name"`
	ImageFileName string `db:"image_file_name"`
	ImageURL      string `db:"image_url"`
	PreviewURL    string `db:"preview_url"`

	// Header-level database error surfaced on the next render, then
	// cleared.
	DBErrorBasic    string `db:"db_error_basic"`
	DBErrorAdvanced string `db:"db_error_advanced"`

	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// NewSession creates a fresh first-visit session.
func NewSession() *Session {
	now := time.Now().UTC()
	return &Session{
		ID:        uuid.New(),
		NewUser:   true,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// FlowState projects the record onto the flow controller's value type.
func (s *Session) FlowState() flow.SessionState {
	return flow.SessionState{
		UserName:      s.UserName,
		UserCode:      s.UserCode,
		NewUser:       s.NewUser,
		IsVerified:    flow.TriState(s.Verified),
		CookieConsent: flow.TriState(s.Consent),
		CookieIsSet:   s.CookieSet,
		CurrentHeader: s.CurrentHeader,
		ExcelFileName: s.ExcelFileName,
		ImageFileName: s.ImageFileName,
		ImageURL:      s.ImageURL,
		PreviewURL:    s.PreviewURL,
	}
}

// ApplyFlowState writes an evaluated flow state back onto the record.
// The per-request SetCookie flag is not persisted.
func (s *Session) ApplyFlowState(fs flow.SessionState) {
	s.UserName = fs.UserName
	s.UserCode = fs.UserCode
	s.NewUser = fs.NewUser
	s.Verified = int16(fs.IsVerified)
	s.Consent = int16(fs.CookieConsent)
	s.CookieSet = fs.CookieIsSet
	s.CurrentHeader = fs.CurrentHeader
	s.ExcelFileName = fs.ExcelFileName
	s.ImageFileName = fs.ImageFileName
	s.ImageURL = fs.ImageURL
	s.PreviewURL = fs.PreviewURL
	s.UpdatedAt = time.Now().UTC()
}

// SetDBError records a header-level error unless one is pending.
func (s *Session) SetDBError(basic, advanced string) {
	if s.DBErrorBasic != "" {
		return
	}
	s.DBErrorBasic = basic
	s.DBErrorAdvanced = advanced
}

// ClearDBError resets the header-level error after it was rendered.
func (s *Session) ClearDBError() {
	s.DBErrorBasic = ""
	s.DBErrorAdvanced = ""
}
