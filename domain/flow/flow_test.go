package flow

import (
	"net/url"
	"testing"
)

func editingState() SessionState {
	return SessionState{
		UserName:        "Ada-Lovelace-b3x9",
		UserCode:        "b3x9",
		NewUser:         false,
		IsVerified:      TriTrue,
		CookieConsent:   TriTrue,
		InspectorHeader: []string{"Name", "Grade"},
	}
}

func TestStateOf(t *testing.T) {
	tests := []struct {
		name  string
		state SessionState
		want  State
	}{
		{
			name:  "new user is always signup",
			state: SessionState{NewUser: true},
			want:  Signup,
		},
		{
			name:  "new user with code is still signup",
			state: SessionState{NewUser: true, UserCode: "b3x9"},
			want:  Signup,
		},
		{
			name:  "returning without identity or consent",
			state: SessionState{NewUser: false},
			want:  PendingConsent,
		},
		{
			name:  "returning without identity, consent answered",
			state: SessionState{NewUser: false, CookieConsent: TriFalse},
			want:  Login,
		},
		{
			name:  "identity present, returning",
			state: SessionState{UserCode: "b3x9", CookieConsent: TriTrue},
			want:  Editing,
		},
		{
			name:  "identity present, verified",
			state: editingState(),
			want:  Editing,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StateOf(tt.state); got != tt.want {
				t.Errorf("StateOf() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestConsentPromptShownForReturningUsers(t *testing.T) {
	s := SessionState{NewUser: false, CookieConsent: TriUnset}
	ps := Panels(s)

	if !ps.Has(PanelConsentPrompt) {
		t.Error("consent prompt not shown for returning user with unset consent")
	}
	if ps.Has(PanelSignup) || ps.Has(PanelItemEditor) {
		t.Error("consent prompt displaced by signup/editing panels")
	}
	// The login panel remains underneath the prompt.
	if !ps.Has(PanelLogin) {
		t.Error("login panel missing under consent prompt")
	}
}

func TestAllowCookiesThenSetCookieBlock(t *testing.T) {
	s := editingState()
	s.CookieConsent = TriUnset

	next, _ := Evaluate(s, Action{Kind: ActionAllowCookies, Consent: true})
	if next.CookieConsent != TriTrue {
		t.Fatalf("CookieConsent = %v after allow_cookies=True, want true", next.CookieConsent)
	}
	if !next.SetCookie {
		t.Fatal("SetCookie not requested after consent with identity present")
	}

	if ps := Panels(next); !ps.Has(PanelCookieSet) {
		t.Error("cookie-set block not rendered with consent granted and set_cookie true")
	}

	// Denying consent never yields the cookie block.
	denied, ps := Evaluate(s, Action{Kind: ActionAllowCookies, Consent: false})
	if denied.CookieConsent != TriFalse {
		t.Errorf("CookieConsent = %v after allow_cookies=False, want false", denied.CookieConsent)
	}
	if ps.Has(PanelCookieSet) {
		t.Error("cookie-set block rendered without consent")
	}
}

func TestNewUserNeverSeesEditingPanels(t *testing.T) {
	states := []SessionState{
		{NewUser: true},
		{NewUser: true, UserCode: "b3x9"},
		{NewUser: true, UserCode: "b3x9", IsVerified: TriTrue, CookieConsent: TriTrue},
	}

	for _, s := range states {
		ps := Panels(s)
		if !ps.Has(PanelSignup) {
			t.Errorf("signup panel missing for %+v", s)
		}
		for _, p := range []Panel{PanelItemEditor, PanelExcelUpload, PanelImageUpload, PanelInspector, PanelExport, PanelLogout, PanelLogin} {
			if ps.Has(p) {
				t.Errorf("panel %s visible for new user %+v", p, s)
			}
		}
	}
}

func TestVerifiedReturningUserSeesAllEditingPanels(t *testing.T) {
	ps := Panels(editingState())

	for _, p := range []Panel{PanelItemEditor, PanelExcelUpload, PanelImageUpload, PanelInspector, PanelExport, PanelLogout} {
		if !ps.Has(p) {
			t.Errorf("editing panel %s not visible", p)
		}
	}
	if ps.Has(PanelSignup) || ps.Has(PanelLogin) {
		t.Error("signup/login visible alongside editing panels")
	}
}

func TestExactlyOnePrimaryPanelGroup(t *testing.T) {
	states := []SessionState{
		{NewUser: true},
		{NewUser: false, CookieConsent: TriFalse},
		editingState(),
	}

	for _, s := range states {
		ps := Panels(s)
		groups := 0
		if ps.Has(PanelSignup) {
			groups++
		}
		if ps.Has(PanelLogin) {
			groups++
		}
		if ps.Has(PanelItemEditor) {
			groups++
		}
		if groups != 1 {
			t.Errorf("state %+v shows %d primary panel groups, want 1", s, groups)
		}
	}
}

func TestRemoveLastHeadingYieldsNoData(t *testing.T) {
	s := editingState()
	s.InspectorHeader = []string{"Name"}
	s.CurrentHeader = "Name"

	next, ps := Evaluate(s, Action{Kind: ActionRemoveHeading, Header: "Name", Headers: []string{}})

	if len(next.InspectorHeader) != 0 {
		t.Fatalf("InspectorHeader = %v, want empty", next.InspectorHeader)
	}
	if next.CurrentHeader != "" {
		t.Errorf("CurrentHeader = %q after removing it, want empty", next.CurrentHeader)
	}
	if !ps.Has(PanelNoData) {
		t.Error("no-data placeholder not shown for empty heading list")
	}
	if ps.Has(PanelInspectorData) {
		t.Error("inspector data (and its Update Data action) shown with no headings")
	}
}

func TestFailedActionLeavesStateUntouched(t *testing.T) {
	s := editingState()
	next, _ := Evaluate(s, Action{Kind: ActionLogin, Failed: true, UserName: "x", UserCode: "zzzz"})

	if next.UserCode != s.UserCode || next.UserName != s.UserName {
		t.Errorf("failed login mutated identity: %+v", next)
	}
}

func TestLoginSuccessVerifies(t *testing.T) {
	s := SessionState{NewUser: false, CookieConsent: TriTrue}
	next, ps := Evaluate(s, Action{Kind: ActionLogin, UserName: "Ada-Lovelace-b3x9", UserCode: "b3x9"})

	if next.IsVerified != TriTrue {
		t.Errorf("IsVerified = %v after login, want true", next.IsVerified)
	}
	if !ps.Has(PanelItemEditor) {
		t.Error("editing panels not shown after login")
	}
}

func TestLogoutClearsIdentity(t *testing.T) {
	next, ps := Evaluate(editingState(), Action{Kind: ActionLogout})

	if next.UserCode != "" || next.UserName != "" {
		t.Errorf("logout kept identity: %+v", next)
	}
	if next.IsVerified == TriTrue {
		t.Error("logout kept verification")
	}
	if ps.Has(PanelItemEditor) {
		t.Error("editing panels shown after logout")
	}
}

func TestLoadExcelSelectsFirstHeader(t *testing.T) {
	next, _ := Evaluate(editingState(), Action{
		Kind:          ActionLoadExcel,
		ExcelFileName: "roster.xlsx",
		Headers:       []string{"Name", "Grade", "House"},
	})

	if next.CurrentHeader != "Name" {
		t.Errorf("CurrentHeader = %q, want Name", next.CurrentHeader)
	}
	if next.ExcelFileName != "roster.xlsx" {
		t.Errorf("ExcelFileName = %q", next.ExcelFileName)
	}
}

func TestPreviewPanelVisibility(t *testing.T) {
	s := editingState()
	if Panels(s).Has(PanelPreview) {
		t.Error("preview shown without any uploaded image")
	}

	s.ImageURL = "/media/main/b3x9/base.png"
	if !Panels(s).Has(PanelPreview) {
		t.Error("preview hidden with a base image uploaded")
	}

	s.ImageURL = ""
	s.PreviewURL = "/media/preview/b3x9/base.png"
	if !Panels(s).Has(PanelPreview) {
		t.Error("preview hidden with a rendered preview present")
	}
}

func TestParseAction(t *testing.T) {
	tests := []struct {
		name string
		form url.Values
		want ActionKind
	}{
		{"allow cookies", url.Values{"allow_cookies": {"True"}}, ActionAllowCookies},
		{"name signup", url.Values{"submit_name_signup": {"name_signup"}}, ActionNameSignup},
		{"login", url.Values{"login": {"login"}}, ActionLogin},
		{"add blank", url.Values{"submit_add": {"add_blank_item_heading"}}, ActionAddBlankHeading},
		{"update heading", url.Values{"submit_update": {"update_item_heading"}}, ActionUpdateHeading},
		{"select heading", url.Values{"inspector_header_item": {"Name"}}, ActionSelectHeading},
		{"remove heading", url.Values{"submit_remove": {"inspector_header_item_remove"}, "header_item": {"Name"}}, ActionRemoveHeading},
		{"load excel", url.Values{"submit": {"load_excel_submit"}}, ActionLoadExcel},
		{"load image", url.Values{"submit": {"load_image_submit"}}, ActionLoadImage},
		{"update data", url.Values{"submit": {"update_inspector_data"}}, ActionUpdateInspectorData},
		{"load all data", url.Values{"submit": {"load_all_inspector_data"}}, ActionLoadAllInspectorData},
		{"export", url.Values{"submit": {"export_images"}}, ActionExportImages},
		{"logout", url.Values{"logout": {"logout"}}, ActionLogout},
		{"unknown", url.Values{"whatever": {"x"}}, ActionNone},
		{"empty", url.Values{}, ActionNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseAction(tt.form)
			if got.Kind != tt.want {
				t.Errorf("ParseAction(%v) = %v, want %v", tt.form, got.Kind, tt.want)
			}
		})
	}

	a := ParseAction(url.Values{"allow_cookies": {"False"}})
	if a.Consent {
		t.Error("allow_cookies=False parsed as consent")
	}
	a = ParseAction(url.Values{"inspector_header_item": {"Grade"}})
	if a.Header != "Grade" {
		t.Errorf("selected header = %q, want Grade", a.Header)
	}
}
