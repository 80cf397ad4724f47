package types

// Action is a discrete notification fired toward the chrome layer.
type Action string

const (
	ActionNavigate        Action = "navigate"
	ActionSave            Action = "save"
	ActionForward         Action = "forward"
	ActionDelete          Action = "delete"
	ActionShowInFolder    Action = "show_in_folder"
	ActionCopy            Action = "copy"
	ActionOpenOverview    Action = "open_overview"
	ActionOpenContextMenu Action = "open_context_menu"
	ActionDropdown        Action = "dropdown"
	ActionClose           Action = "close"
	ActionToMessage       Action = "to_message"
	ActionShowSender      Action = "show_sender"
	ActionOpenDocument    Action = "open_document"
	ActionDownload        Action = "download"
)

// ActionEvent is an action together with the item it applies to.
type ActionEvent struct {
	Action Action       `json:"action" msgpack:"action"`
	Item   MediaItemRef `json:"item" msgpack:"item"`
	Scope  Scope        `json:"scope" msgpack:"scope"`
	// Delta is set for ActionNavigate.
	Delta int `json:"delta,omitempty" msgpack:"delta,omitempty"`
}
