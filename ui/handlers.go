package ui

import (
	"context"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"autoficate/adapters/excel"
	"autoficate/app"
	"autoficate/domain/flow"
	"autoficate/internal/errors"
	"autoficate/models"
)

// viewData carries per-form errors and the item form to render with.
type viewData struct {
	NameSignupError models.FormError
	LoginError      models.FormError
	ItemFormError   models.FormError
	ExcelError      models.FormError
	ImageError      models.FormError
	InspectorError  models.FormError
	ExportError     models.FormError

	ItemForm *models.ItemSet
}

func (s *Server) getIndex(c *gin.Context) {
	sess, err := s.sessions.Load(c)
	if err != nil {
		c.String(http.StatusInternalServerError, "session unavailable")
		return
	}
	s.recoverIdentity(c, sess)

	state := s.hydrate(c.Request.Context(), sess)
	s.renderIndex(c, sess, state, flow.Panels(state), viewData{})
}

func (s *Server) postIndex(c *gin.Context) {
	sess, err := s.sessions.Load(c)
	if err != nil {
		c.String(http.StatusInternalServerError, "session unavailable")
		return
	}
	s.recoverIdentity(c, sess)

	ctx := c.Request.Context()
	state := s.hydrate(ctx, sess)

	if err := c.Request.ParseMultipartForm(32 << 20); err != nil && err != http.ErrNotMultipart {
		c.String(http.StatusBadRequest, "unreadable form")
		return
	}
	action := flow.ParseAction(c.Request.PostForm)

	var vd viewData
	done := s.resolve(c, sess, state, &action, &vd)
	if done {
		return
	}

	next, panels := flow.Evaluate(state, action)

	if next.SetCookie {
		if _, err := s.sessions.SetIdentityCookie(c, next.UserCode); err != nil {
			log.Printf("[Server] failed to seal identity cookie: %v", err)
		} else {
			next.CookieIsSet = true
		}
	}

	sess.ApplyFlowState(next)
	s.renderIndex(c, sess, next, panels, vd)
}

func (s *Server) getLogout(c *gin.Context) {
	sess, err := s.sessions.Load(c)
	if err != nil {
		c.Redirect(http.StatusFound, "/")
		return
	}

	if sess.UserCode != "" {
		s.inspector.PurgeCache(sess.UserCode)
	}

	// The signed-out state carries over to a successor session; the old
	// record is gone.
	next, _ := flow.Evaluate(sess.FlowState(), flow.Action{Kind: flow.ActionLogout})
	fresh, err := s.sessions.Reset(c, sess)
	if err != nil {
		log.Printf("[Server] failed to reset session on logout: %v", err)
		c.Redirect(http.StatusFound, "/")
		return
	}
	fresh.ApplyFlowState(next)
	if err := s.sessions.Save(c.Request.Context(), fresh); err != nil {
		log.Printf("[Server] failed to save session on logout: %v", err)
	}

	c.Redirect(http.StatusFound, "/")
}

// resolve performs the side effects an action needs and records the
// outcome on it. Returns true when the response was already written
// (export download).
func (s *Server) resolve(c *gin.Context, sess *models.Session, state flow.SessionState, action *flow.Action, vd *viewData) bool {
	ctx := c.Request.Context()

	switch action.Kind {
	case flow.ActionNameSignup:
		user, err := s.accounts.NameSignup(ctx,
			c.PostForm("first_name"), c.PostForm("last_name"), c.PostForm("user_email"))
		if err != nil {
			action.Failed = true
			vd.NameSignupError = models.NewFormError(errors.UserMessage(err), err)
			return false
		}
		action.UserName = user.Username
		action.UserCode = user.UniqueCode

	case flow.ActionLogin:
		user, err := s.accounts.Login(ctx, c.PostForm("user_email"), c.PostForm("password"))
		if err != nil {
			action.Failed = true
			vd.LoginError = models.NewFormError(loginMessage(err), err)
			return false
		}
		action.UserName = user.Username
		action.UserCode = user.UniqueCode
		if err := s.inspector.ReloadCache(ctx, user.UniqueCode); err != nil {
			sess.SetDBError(errors.UserMessage(err), err.Error())
		}

	case flow.ActionAddBlankHeading:
		set, err := s.inspector.AddBlankHeading(ctx, state.UserCode)
		if err != nil {
			action.Failed = true
			vd.ItemFormError = models.NewFormError(errors.UserMessage(err), err)
			return false
		}
		action.Header = set.Heading
		action.Headers = s.currentHeadings(ctx, sess, state.UserCode)
		vd.ItemForm = set

	case flow.ActionUpdateHeading:
		upd := app.HeadingUpdate{
			Heading:   c.PostForm("item_heading"),
			PositionX: formInt(c, "position_x"),
			PositionY: formInt(c, "position_y"),
			FontSize:  formInt(c, "font_size"),
			FontName:  c.PostForm("font_select"),
			Color:     c.PostForm("color"),
		}
		set, err := s.inspector.UpdateHeading(ctx, state.UserCode, state.CurrentHeader, upd)
		if err != nil {
			action.Failed = true
			vd.ItemFormError = models.NewFormError(errors.UserMessage(err), err)
			return false
		}
		action.Header = set.Heading
		action.Headers = s.currentHeadings(ctx, sess, state.UserCode)
		action.PreviewURL = s.tryPreview(ctx, sess, state.UserCode)
		vd.ItemForm = set

	case flow.ActionSelectHeading:
		set, err := s.inspector.SelectHeading(ctx, state.UserCode, action.Header)
		if err != nil {
			action.Failed = true
			sess.SetDBError(errors.UserMessage(err), err.Error())
			return false
		}
		vd.ItemForm = set

	case flow.ActionRemoveHeading:
		if err := s.inspector.RemoveHeading(ctx, state.UserCode, action.Header); err != nil {
			action.Failed = true
			sess.SetDBError(errors.UserMessage(err), err.Error())
			return false
		}
		action.Headers = s.currentHeadings(ctx, sess, state.UserCode)

	case flow.ActionLoadExcel:
		name, data, err := formFile(c, "excel_file")
		if err != nil {
			action.Failed = true
			vd.ExcelError = models.NewFormError("Please choose a spreadsheet file.", err)
			return false
		}
		table, err := excel.NewReader(name, data).ReadTable()
		if err != nil {
			action.Failed = true
			vd.ExcelError = models.NewFormError(errors.UserMessage(err), err)
			return false
		}
		headings, err := s.inspector.ImportTable(ctx, state.UserCode, table)
		if err != nil {
			action.Failed = true
			vd.ExcelError = models.NewFormError(errors.UserMessage(err), err)
			return false
		}
		action.ExcelFileName = name
		action.Headers = headings
		action.PreviewURL = s.tryPreview(ctx, sess, state.UserCode)

	case flow.ActionLoadImage:
		name, data, err := formFile(c, "image")
		if err != nil {
			action.Failed = true
			vd.ImageError = models.NewFormError("Please choose an image file.", err)
			return false
		}
		asset, err := s.exports.SaveBaseImage(ctx, state.UserCode, name, data)
		if err != nil {
			action.Failed = true
			vd.ImageError = models.NewFormError(errors.UserMessage(err), err)
			return false
		}
		action.ImageFileName = asset.FileName
		action.ImageURL = asset.URL
		action.PreviewURL = s.tryPreview(ctx, sess, state.UserCode)

	case flow.ActionUpdateInspectorData:
		existing := c.PostFormArray("inspector_data_item")
		additions := c.PostFormArray("inspector_data_item_new")
		location := c.PostForm("inspector_data_item_location")
		if _, err := s.inspector.UpdateData(ctx, state.UserCode, state.CurrentHeader, existing, additions, location); err != nil {
			action.Failed = true
			vd.InspectorError = models.NewFormError(errors.UserMessage(err), err)
			return false
		}
		action.PreviewURL = s.tryPreview(ctx, sess, state.UserCode)

	case flow.ActionLoadAllInspectorData:
		if _, err := s.inspector.LoadAll(ctx, state.UserCode, state.CurrentHeader); err != nil {
			action.Failed = true
			vd.InspectorError = models.NewFormError(errors.UserMessage(err), err)
			return false
		}

	case flow.ActionExportImages:
		bundle, name, err := s.exports.Export(ctx, state.UserCode, state.UserName, c.PostForm("export_format"))
		if err != nil {
			action.Failed = true
			vd.ExportError = models.NewFormError(errors.UserMessage(err), err)
			return false
		}
		if err := s.sessions.Save(ctx, sess); err != nil {
			log.Printf("[Server] failed to save session before download: %v", err)
		}
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
		c.Data(http.StatusOK, "application/zip", bundle)
		return true
	}

	return false
}

// hydrate projects the session onto a flow state and fills in the
// heading list, which lives in the cache and database rather than on
// the session row.
func (s *Server) hydrate(ctx context.Context, sess *models.Session) flow.SessionState {
	state := sess.FlowState()
	if state.UserCode != "" {
		state.InspectorHeader = s.currentHeadings(ctx, sess, state.UserCode)
	}
	return state
}

func (s *Server) currentHeadings(ctx context.Context, sess *models.Session, userCode string) []string {
	st, err := s.inspector.State(ctx, userCode, "")
	if err != nil {
		sess.SetDBError(errors.UserMessage(err), err.Error())
		return nil
	}
	return st.Headings
}

// tryPreview re-renders the first-row preview after an edit. Missing
// inputs (no base image yet) are not an error.
func (s *Server) tryPreview(ctx context.Context, sess *models.Session, userCode string) string {
	url, err := s.exports.Preview(ctx, userCode)
	if err != nil {
		if !errors.IsCode(err, errors.CodeNotFound) {
			sess.SetDBError(errors.UserMessage(err), err.Error())
		}
		return ""
	}
	return url
}

// recoverIdentity re-attaches a returning user from the sealed identity
// cookie. The cookie only exists when consent was granted.
func (s *Server) recoverIdentity(c *gin.Context, sess *models.Session) {
	if sess.UserCode != "" {
		return
	}
	code, ok := s.sessions.RecoverIdentity(c.Request)
	if !ok {
		return
	}
	user, err := s.accounts.GetByCode(c.Request.Context(), code)
	if err != nil {
		log.Printf("[Server] identity cookie names unknown user %s", code)
		return
	}

	sess.UserName = user.Username
	sess.UserCode = user.UniqueCode
	sess.NewUser = false
	sess.Consent = int16(flow.TriTrue)
	sess.CookieSet = true
	if user.IsVerified {
		sess.Verified = int16(flow.TriTrue)
	}
	log.Printf("[Server] recovered session identity for %s", code)
}

// loginMessage keeps the exact credential failure text on the form.
func loginMessage(err error) string {
	if errors.IsCode(err, errors.CodeValidationError) {
		return err.Error()
	}
	return errors.UserMessage(err)
}

func formInt(c *gin.Context, field string) int {
	v, err := strconv.Atoi(c.PostForm(field))
	if err != nil {
		return 0
	}
	return v
}

func formFile(c *gin.Context, field string) (string, []byte, error) {
	header, err := c.FormFile(field)
	if err != nil {
		return "", nil, err
	}
	f, err := header.Open()
	if err != nil {
		return "", nil, err
	}
	defer func(f multipart.File) { _ = f.Close() }(f)

	data, err := io.ReadAll(f)
	if err != nil {
		return "", nil, err
	}
	return header.Filename, data, nil
}
