package ui

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"autoficate/domain/flow"
	"autoficate/internal/errors"
	"autoficate/models"
)

// signupForm is the full-registration form, prefilled from the
// session's placeholder account when one exists.
type signupForm struct {
	FirstName string
	LastName  string
	Email     string
}

func (s *Server) getSignup(c *gin.Context) {
	sess, err := s.sessions.Load(c)
	if err != nil {
		c.String(http.StatusInternalServerError, "session unavailable")
		return
	}

	form := signupForm{}
	if sess.UserCode != "" {
		if user, err := s.accounts.GetByCode(c.Request.Context(), sess.UserCode); err == nil {
			form.FirstName = user.FirstName
			form.LastName = user.LastName
			form.Email = user.BareEmail()
		}
	}

	s.renderTemplate(c, "signup.html", gin.H{
		"Form":   form,
		"Errors": models.FormError{},
	})
}

func (s *Server) postSignup(c *gin.Context) {
	sess, err := s.sessions.Load(c)
	if err != nil {
		c.String(http.StatusInternalServerError, "session unavailable")
		return
	}
	ctx := c.Request.Context()

	form := signupForm{
		FirstName: c.PostForm("first_name"),
		LastName:  c.PostForm("last_name"),
		Email:     c.PostForm("user_email"),
	}
	fail := func(fe models.FormError) {
		s.renderTemplate(c, "signup.html", gin.H{"Form": form, "Errors": fe})
	}

	password := c.PostForm("password1")
	if password == "" || password != c.PostForm("password2") {
		fail(models.NewFormError("Passwords must match.", nil))
		return
	}

	user, err := s.accounts.Signup(ctx, sess.UserCode, form.FirstName, form.LastName, form.Email, password)
	if err != nil {
		fail(models.NewFormError(errors.UserMessage(err), err))
		return
	}

	sess.UserName = user.Username
	sess.UserCode = user.UniqueCode
	sess.NewUser = false
	sess.Verified = int16(flow.TriTrue)
	if flow.TriState(sess.Consent) == flow.TriTrue && !sess.CookieSet {
		if _, err := s.sessions.SetIdentityCookie(c, user.UniqueCode); err == nil {
			sess.CookieSet = true
		}
	}
	if err := s.sessions.Save(ctx, sess); err != nil {
		log.Printf("[Server] failed to save session after signup: %v", err)
	}

	c.Redirect(http.StatusFound, "/")
}
