// Package flow decides, per request, which form panels are visible and
// how the session flags move in response to a submitted action.
//
// The evaluation is a pure function over {state, action}: handlers
// resolve side effects (credential checks, uploads, persistence) first
// and feed the outcome into the Action, so the whole panel logic is
// unit-testable without a live request.
package flow

// TriState models flags that distinguish "never answered" from an
// explicit yes or no.
type TriState int

const (
	TriUnset TriState = iota
	TriTrue
	TriFalse
)

func (t TriState) String() string {
	switch t {
	case TriTrue:
		return "true"
	case TriFalse:
		return "false"
	default:
		return "unset"
	}
}

// TriFromBool lifts an explicit answer into a TriState.
func TriFromBool(b bool) TriState {
	if b {
		return TriTrue
	}
	return TriFalse
}

// Bool reports whether the flag is an explicit true.
func (t TriState) Bool() bool { return t == TriTrue }

// State names the coarse position a session is in. Exactly one of the
// signup, login and editing panel groups is shown per state.
type State int

const (
	Unauthenticated State = iota
	PendingConsent
	Signup
	Login
	Editing
)

func (s State) String() string {
	switch s {
	case PendingConsent:
		return "pending_consent"
	case Signup:
		return "signup"
	case Login:
		return "login"
	case Editing:
		return "editing"
	default:
		return "unauthenticated"
	}
}

// SessionState is the mutable per-session record the controller works
// on. It is a value: Evaluate returns a new one and never mutates its
// input.
type SessionState struct {
	UserName string
	UserCode string

	NewUser       bool
	IsVerified    TriState
	CookieConsent TriState
	CookieIsSet   bool

	// SetCookie asks the response to emit the sealed identity cookie.
	// Only honored when consent has been granted.
	SetCookie bool

	ExcelFileName string
	ImageFileName string
	ImageURL      string
	PreviewURL    string

	CurrentHeader   string
	InspectorHeader []string
}

// Panel identifies one optional block of the page.
type Panel string

const (
	PanelConsentPrompt Panel = "consent_prompt"
	PanelCookieSet     Panel = "cookie_set"
	PanelSignup        Panel = "signup"
	PanelLogin         Panel = "login"
	PanelItemEditor    Panel = "item_editor"
	PanelExcelUpload   Panel = "excel_upload"
	PanelImageUpload   Panel = "image_upload"
	PanelInspector     Panel = "inspector"
	PanelInspectorData Panel = "inspector_data"
	PanelNoData        Panel = "no_data"
	PanelPreview       Panel = "preview"
	PanelExport        Panel = "export"
	PanelLogout        Panel = "logout"
)

// PanelSet is the set of panels to render.
type PanelSet map[Panel]bool

// Has reports whether p is visible.
func (ps PanelSet) Has(p Panel) bool { return ps[p] }

// StateOf derives the named state from the session flags.
//
// Signup wins over everything else: a new user never sees the editing
// panels regardless of user_code. A returning user without an identity
// is asked for consent first, then to log in. Editing requires an
// identity plus either explicit verification or a returning user.
func StateOf(s SessionState) State {
	switch {
	case s.NewUser:
		return Signup
	case s.UserCode == "":
		if s.CookieConsent == TriUnset {
			return PendingConsent
		}
		return Login
	case s.IsVerified == TriTrue || !s.NewUser:
		return Editing
	default:
		return Unauthenticated
	}
}

// Panels computes the visible panel set for a session state.
func Panels(s SessionState) PanelSet {
	ps := make(PanelSet)

	// Consent is asked of returning users who never answered. It
	// overlays whichever primary panel group is active.
	if s.CookieConsent == TriUnset && !s.NewUser {
		ps[PanelConsentPrompt] = true
	}

	// The cookie-set block only renders when consent was granted and
	// this specific response was asked to set it.
	if s.CookieConsent == TriTrue && s.SetCookie {
		ps[PanelCookieSet] = true
	}

	switch StateOf(s) {
	case Signup:
		ps[PanelSignup] = true
	case Login, PendingConsent:
		ps[PanelLogin] = true
	case Editing:
		ps[PanelItemEditor] = true
		ps[PanelExcelUpload] = true
		ps[PanelImageUpload] = true
		ps[PanelInspector] = true
		ps[PanelExport] = true
		ps[PanelLogout] = true

		if len(s.InspectorHeader) == 0 {
			ps[PanelNoData] = true
		} else {
			ps[PanelInspectorData] = true
		}

		if s.ImageURL != "" || s.PreviewURL != "" {
			ps[PanelPreview] = true
		}
	}

	return ps
}

// Evaluate applies an action to a session state and returns the next
// state plus the panels to render for the response. Failed actions
// leave the state untouched so the error re-renders against the state
// the user submitted from.
func Evaluate(s SessionState, a Action) (SessionState, PanelSet) {
	next := apply(s, a)
	return next, Panels(next)
}

// apply is the transition table. One case per action kind.
func apply(s SessionState, a Action) SessionState {
	if a.Failed {
		return s
	}

	switch a.Kind {
	case ActionAllowCookies:
		s.CookieConsent = TriFromBool(a.Consent)
		if s.CookieConsent == TriTrue && s.UserCode != "" && !s.CookieIsSet {
			s.SetCookie = true
		}

	case ActionNameSignup:
		s.UserName = a.UserName
		s.UserCode = a.UserCode
		s.NewUser = false
		if s.CookieConsent == TriTrue && !s.CookieIsSet {
			s.SetCookie = true
		}

	case ActionLogin:
		s.UserName = a.UserName
		s.UserCode = a.UserCode
		s.IsVerified = TriTrue
		s.NewUser = false

	case ActionAddBlankHeading, ActionSelectHeading:
		s.CurrentHeader = a.Header
		if a.Headers != nil {
			s.InspectorHeader = a.Headers
		}

	case ActionUpdateHeading:
		s.CurrentHeader = a.Header
		s.InspectorHeader = a.Headers
		if a.PreviewURL != "" {
			s.PreviewURL = a.PreviewURL
		}

	case ActionRemoveHeading:
		if s.CurrentHeader == a.Header {
			s.CurrentHeader = ""
		}
		s.InspectorHeader = a.Headers

	case ActionLoadExcel:
		s.ExcelFileName = a.ExcelFileName
		s.InspectorHeader = a.Headers
		if len(a.Headers) > 0 {
			s.CurrentHeader = a.Headers[0]
		}
		if a.PreviewURL != "" {
			s.PreviewURL = a.PreviewURL
		}

	case ActionLoadImage:
		s.ImageFileName = a.ImageFileName
		s.ImageURL = a.ImageURL
		if a.PreviewURL != "" {
			s.PreviewURL = a.PreviewURL
		}

	case ActionUpdateInspectorData, ActionLoadAllInspectorData:
		if a.PreviewURL != "" {
			s.PreviewURL = a.PreviewURL
		}

	case ActionExportImages:
		// Export renders an artifact; session flags are untouched.

	case ActionLogout:
		s = SessionState{
			NewUser:       false,
			CookieConsent: s.CookieConsent,
			IsVerified:    TriFalse,
		}
	}

	return s
}
