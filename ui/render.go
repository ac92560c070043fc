package ui

import (
	"bytes"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"autoficate/app"
	"autoficate/domain/flow"
	"autoficate/models"
)

// renderIndex assembles the page context, persists the session and
// executes the index template. Template output is buffered so an
// execution error never leaks a half-written page.
func (s *Server) renderIndex(c *gin.Context, sess *models.Session, state flow.SessionState, panels flow.PanelSet, vd viewData) {
	ctx := c.Request.Context()

	// No current heading but stored data: fall back to the newest
	// heading so the item form comes up filled in.
	if state.UserCode != "" && state.CurrentHeader == "" && vd.ItemForm == nil {
		if latest, err := s.inspector.LatestSet(ctx, state.UserCode); err == nil && latest.Heading != "" {
			state.CurrentHeader = latest.Heading
			sess.CurrentHeader = latest.Heading
		}
	}

	var inspectorState *app.InspectorState
	if state.UserCode != "" {
		st, err := s.inspector.State(ctx, state.UserCode, state.CurrentHeader)
		if err != nil {
			sess.SetDBError("A database error occurred.", err.Error())
		} else {
			inspectorState = st
		}
	}
	if inspectorState == nil {
		inspectorState = &app.InspectorState{}
	}

	itemForm := vd.ItemForm
	if itemForm == nil && state.UserCode != "" && state.CurrentHeader != "" {
		if set, err := s.inspector.SelectHeading(ctx, state.UserCode, state.CurrentHeader); err == nil {
			itemForm = set
		}
	}
	if itemForm == nil {
		itemForm = models.NewItemSet(state.UserCode)
	}

	dbError := models.FormError{
		HasError: sess.DBErrorBasic != "",
		Basic:    sess.DBErrorBasic,
		Advanced: sess.DBErrorAdvanced,
	}
	sess.ClearDBError()
	if err := s.sessions.Save(ctx, sess); err != nil {
		log.Printf("[Server] failed to save session: %v", err)
	}

	data := gin.H{
		"Panels":    panelMap(panels),
		"Session":   sess,
		"State":     flow.StateOf(state).String(),
		"Inspector": inspectorState,
		"ItemForm":  itemForm,
		"Errors":    vd,
		"DBError":   dbError,
	}
	s.renderTemplate(c, "index.html", data)
}

func (s *Server) renderTemplate(c *gin.Context, name string, data interface{}) {
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		log.Printf("[Server] template error for %s: %v", name, err)
		c.String(http.StatusInternalServerError, "template rendering failed")
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}

func panelMap(ps flow.PanelSet) map[string]bool {
	out := make(map[string]bool, len(ps))
	for p, visible := range ps {
		out[string(p)] = visible
	}
	return out
}
