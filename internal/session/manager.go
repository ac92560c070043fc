// Package session loads and saves the server-side session for each
// request and manages the two cookies involved: the session id cookie
// and the consent-gated sealed identity cookie.
package session

import (
	"context"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"autoficate/models"
	"autoficate/ports"
)

const (
	// SIDCookie carries the server-side session id. It is transport
	// plumbing, not tracking, so it is not consent-gated.
	SIDCookie = "autoficate_sid"

	// IdentityCookie carries the sealed user code and is only ever set
	// after explicit consent.
	IdentityCookie = "autoficate-key"

	identityMaxAge = 180 * 24 * 60 * 60
)

// Manager resolves the session record for a request.
type Manager struct {
	sessions ports.SessionRepository
	sealer   *Sealer
}

// NewManager creates a session manager.
func NewManager(sessions ports.SessionRepository, sealer *Sealer) *Manager {
	return &Manager{sessions: sessions, sealer: sealer}
}

// Load returns the request's session, creating one on first visit.
func (m *Manager) Load(c *gin.Context) (*models.Session, error) {
	ctx := c.Request.Context()

	if sid, err := c.Cookie(SIDCookie); err == nil {
		if id, err := uuid.Parse(sid); err == nil {
			sess, err := m.sessions.GetSession(ctx, id)
			if err == nil {
				return sess, nil
			}
			log.Printf("[Session] stale session id %s: %v", id, err)
		}
	}

	sess := models.NewSession()
	if err := m.sessions.CreateSession(ctx, sess); err != nil {
		return nil, err
	}
	m.setSIDCookie(c, sess.ID)
	return sess, nil
}

// Save persists the session record.
func (m *Manager) Save(ctx context.Context, sess *models.Session) error {
	return m.sessions.SaveSession(ctx, sess)
}

// Reset deletes the session record and starts a successor under a new
// id. The identity cookie expires with the old session.
func (m *Manager) Reset(c *gin.Context, sess *models.Session) (*models.Session, error) {
	ctx := c.Request.Context()
	if err := m.sessions.DeleteSession(ctx, sess.ID); err != nil {
		return nil, err
	}
	c.SetCookie(IdentityCookie, "", -1, "/", "", false, true)

	fresh := models.NewSession()
	if err := m.sessions.CreateSession(ctx, fresh); err != nil {
		return nil, err
	}
	m.setSIDCookie(c, fresh.ID)
	return fresh, nil
}

// SetIdentityCookie seals the user code into the identity cookie.
// Callers must have checked consent first.
func (m *Manager) SetIdentityCookie(c *gin.Context, userCode string) (sealed string, err error) {
	sealed, err = m.sealer.Seal(userCode)
	if err != nil {
		return "", err
	}
	c.SetCookie(IdentityCookie, sealed, identityMaxAge, "/", "", false, true)
	return sealed, nil
}

// RecoverIdentity opens the identity cookie, if present, and returns
// the user code it carries.
func (m *Manager) RecoverIdentity(r *http.Request) (string, bool) {
	cookie, err := r.Cookie(IdentityCookie)
	if err != nil || cookie.Value == "" {
		return "", false
	}
	code, err := m.sealer.Open(cookie.Value)
	if err != nil {
		log.Printf("[Session] unreadable identity cookie: %v", err)
		return "", false
	}
	return code, true
}

func (m *Manager) setSIDCookie(c *gin.Context, id uuid.UUID) {
	c.SetCookie(SIDCookie, id.String(), 0, "/", "", false, true)
}
