package model

import "encoding/json"

// EveryoneRoleID is the reserved id of the Everyone role. It is never stored;
// access rules reference it to mean "all users, authenticated or not".
const EveryoneRoleID = "000000000000000000000000"

// EveryoneMachineName is the literal every reference to EveryoneRoleID
// exports as.
const EveryoneMachineName = "everyone"

// Role is an access role.
type Role struct {
	ID          string         `json:"_id,omitempty"`
	MachineName string         `json:"machineName,omitempty"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Admin       bool           `json:"admin"`
	Default     bool           `json:"default"`
	Deleted     any            `json:"deleted,omitempty"`
	Extra       map[string]any `json:"-"`
	present     keySet
}

// Everyone returns the sentinel role appended to every role export.
func Everyone() Role {
	return Role{
		ID:          EveryoneRoleID,
		MachineName: EveryoneMachineName,
		Title:       "Everyone",
	}
}

// IsEveryone reports whether the role is the Everyone sentinel.
func (r Role) IsEveryone() bool {
	return r.ID == EveryoneRoleID
}

func (r Role) MarshalJSON() ([]byte, error) {
	type plain Role
	return mergeExtra(plain(r), r.present, r.Extra)
}

func (r *Role) UnmarshalJSON(data []byte) error {
	type plain Role
	var p plain
	extra, present, err := splitExtra(data, &p)
	if err != nil {
		return err
	}
	*r = Role(p)
	r.Extra = extra
	r.present = present
	return nil
}

// AccessRule grants a permission type to a list of roles.
// Before export Roles holds ids; afterwards machine names or "everyone".
type AccessRule struct {
	Type    string         `json:"type"`
	Roles   []string       `json:"roles"`
	Extra   map[string]any `json:"-"`
	present keySet
}

func (a AccessRule) MarshalJSON() ([]byte, error) {
	type plain AccessRule
	if a.Roles == nil {
		a.Roles = []string{}
	}
	return mergeExtra(plain(a), a.present, a.Extra)
}

func (a *AccessRule) UnmarshalJSON(data []byte) error {
	type plain AccessRule
	var p plain
	extra, present, err := splitExtra(data, &p)
	if err != nil {
		return err
	}
	*a = AccessRule(p)
	a.Extra = extra
	a.present = present
	return nil
}

var (
	_ json.Marshaler   = Role{}
	_ json.Unmarshaler = (*Role)(nil)
)
