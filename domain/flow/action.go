package flow

import "net/url"

// ActionKind enumerates the form actions the index page can submit.
type ActionKind int

const (
	ActionNone ActionKind = iota
	ActionAllowCookies
	ActionNameSignup
	ActionLogin
	ActionAddBlankHeading
	ActionUpdateHeading
	ActionSelectHeading
	ActionRemoveHeading
	ActionLoadExcel
	ActionLoadImage
	ActionUpdateInspectorData
	ActionLoadAllInspectorData
	ActionExportImages
	ActionLogout
)

func (k ActionKind) String() string {
	switch k {
	case ActionAllowCookies:
		return "allow_cookies"
	case ActionNameSignup:
		return "name_signup"
	case ActionLogin:
		return "login"
	case ActionAddBlankHeading:
		return "add_blank_item_heading"
	case ActionUpdateHeading:
		return "update_item_heading"
	case ActionSelectHeading:
		return "inspector_header_item"
	case ActionRemoveHeading:
		return "inspector_header_item_remove"
	case ActionLoadExcel:
		return "load_excel_submit"
	case ActionLoadImage:
		return "load_image_submit"
	case ActionUpdateInspectorData:
		return "update_inspector_data"
	case ActionLoadAllInspectorData:
		return "load_all_inspector_data"
	case ActionExportImages:
		return "export_images"
	case ActionLogout:
		return "logout"
	default:
		return "none"
	}
}

// Action is a parsed form submission plus the resolved outcome the
// handler attaches before evaluation. Failed marks a validation or
// lookup failure whose error re-renders inline without touching state.
type Action struct {
	Kind ActionKind

	// allow_cookies payload.
	Consent bool

	// Resolved identity for signup and login.
	UserName string
	UserCode string

	// Heading the action targeted and the refreshed heading list.
	Header  string
	Headers []string

	// Upload and render outcomes.
	ExcelFileName string
	ImageFileName string
	ImageURL      string
	PreviewURL    string

	Failed bool
}

// ParseAction maps the submitted name/value pairs onto an action kind.
// Submissions follow the `name=value` convention of the template: the
// button name selects the family, its value the concrete action.
func ParseAction(form url.Values) Action {
	switch {
	case form.Get("allow_cookies") != "":
		return Action{Kind: ActionAllowCookies, Consent: form.Get("allow_cookies") == "True"}

	case form.Get("submit_name_signup") == "name_signup":
		return Action{Kind: ActionNameSignup}

	case form.Get("login") == "login":
		return Action{Kind: ActionLogin}

	case form.Get("submit_add") == "add_blank_item_heading":
		return Action{Kind: ActionAddBlankHeading}

	case form.Get("submit_update") == "update_item_heading":
		return Action{Kind: ActionUpdateHeading}

	case form.Get("inspector_header_item") != "":
		return Action{Kind: ActionSelectHeading, Header: form.Get("inspector_header_item")}

	case form.Get("submit_remove") == "inspector_header_item_remove":
		return Action{Kind: ActionRemoveHeading, Header: form.Get("header_item")}

	case form.Get("submit") == "load_excel_submit":
		return Action{Kind: ActionLoadExcel}

	case form.Get("submit") == "load_image_submit":
		return Action{Kind: ActionLoadImage}

	case form.Get("submit") == "update_inspector_data":
		return Action{Kind: ActionUpdateInspectorData}

	case form.Get("submit") == "load_all_inspector_data":
		return Action{Kind: ActionLoadAllInspectorData}

	case form.Get("submit") == "export_images":
		return Action{Kind: ActionExportImages}

	case form.Get("logout") == "logout":
		return Action{Kind: ActionLogout}

	default:
		return Action{Kind: ActionNone}
	}
}
