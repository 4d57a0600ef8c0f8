package model

import "encoding/json"

// Action is an automation attached to a form.
type Action struct {
	ID          string          `json:"_id,omitempty"`
	MachineName string          `json:"machineName,omitempty"`
	Form        string          `json:"form,omitempty"`
	Title       string          `json:"title,omitempty"`
	Name        string          `json:"name,omitempty"`
	Condition   json.RawMessage `json:"condition,omitempty"`
	Settings    *ActionSettings `json:"settings,omitempty"`
	Priority    json.RawMessage `json:"priority,omitempty"`
	Method      []string        `json:"method"`
	Handler     []string        `json:"handler"`
	Deleted     any             `json:"deleted,omitempty"`
	Extra       map[string]any  `json:"-"`
	present     keySet
}

func (a Action) MarshalJSON() ([]byte, error) {
	type plain Action
	return mergeExtra(plain(a), a.present, a.Extra)
}

func (a *Action) UnmarshalJSON(data []byte) error {
	type plain Action
	var p plain
	extra, present, err := splitExtra(data, &p)
	if err != nil {
		return err
	}
	*a = Action(p)
	a.Extra = extra
	a.present = present
	return nil
}

// ActionSettings holds handler configuration. Role, Resource and Resources
// reference other entities and are rewritten on export.
type ActionSettings struct {
	Role      *string        `json:"role,omitempty"`
	Resource  *string        `json:"resource,omitempty"`
	Resources []string       `json:"resources"`
	Extra     map[string]any `json:"-"`
	present   keySet
}

func (s ActionSettings) MarshalJSON() ([]byte, error) {
	type plain ActionSettings
	return mergeExtra(plain(s), s.present, s.Extra)
}

func (s *ActionSettings) UnmarshalJSON(data []byte) error {
	type plain ActionSettings
	var p plain
	extra, present, err := splitExtra(data, &p)
	if err != nil {
		return err
	}
	*s = ActionSettings(p)
	s.Extra = extra
	s.present = present
	return nil
}
