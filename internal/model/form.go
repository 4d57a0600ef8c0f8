package model

// Form types. The export section a form lands in is its type pluralized.
const (
	FormTypeForm     = "form"
	FormTypeResource = "resource"
)

// RevisionPolicy controls whether and how historical snapshots of a form are
// kept.
type RevisionPolicy string

const (
	RevisionsNone     RevisionPolicy = "none"
	RevisionsOriginal RevisionPolicy = "original" // Pinned by snapshot id
	RevisionsCurrent  RevisionPolicy = "current"  // Pinned by sequential version
)

// Enabled reports whether the policy retains snapshots.
// The empty policy is treated as "none".
func (p RevisionPolicy) Enabled() bool {
	return p != "" && p != RevisionsNone
}

// Form is a form or resource definition.
type Form struct {
	ID               string         `json:"_id,omitempty"`
	MachineName      string         `json:"machineName,omitempty"`
	Type             string         `json:"type,omitempty"`
	Title            string         `json:"title,omitempty"`
	Name             string         `json:"name,omitempty"`
	Path             string         `json:"path,omitempty"`
	Components       []*Component   `json:"components"`
	Access           []AccessRule   `json:"access"`
	SubmissionAccess []AccessRule   `json:"submissionAccess"`
	Revisions        RevisionPolicy `json:"revisions,omitempty"`
	Project          string         `json:"project,omitempty"`
	Deleted          any            `json:"deleted,omitempty"`
	Extra            map[string]any `json:"-"`
	present          keySet
}

// Section returns the output section name for the form: its type pluralized.
// Only resources get their own section; every other type lands in "forms".
func (f Form) Section() string {
	if f.Type == FormTypeResource {
		return FormTypeResource + "s"
	}
	return FormTypeForm + "s"
}

func (f Form) MarshalJSON() ([]byte, error) {
	type plain Form
	return mergeExtra(plain(f), f.present, f.Extra)
}

func (f *Form) UnmarshalJSON(data []byte) error {
	type plain Form
	var p plain
	extra, present, err := splitExtra(data, &p)
	if err != nil {
		return err
	}
	*f = Form(p)
	f.Extra = extra
	f.present = present
	return nil
}

// FormRevision is a historical snapshot of a form's exportable fields.
//
// Snapshots are addressed either by their own id / RevisionID (policy
// "original") or by (Project, Name, VID) (policy "current").
type FormRevision struct {
	ID               string         `json:"_id,omitempty"`
	FormID           string         `json:"_rid,omitempty"`
	VID              int64          `json:"_vid"`
	RevisionID       string         `json:"revisionId,omitempty"`
	Type             string         `json:"type,omitempty"`
	Name             string         `json:"name,omitempty"`
	Project          string         `json:"project,omitempty"`
	Access           []AccessRule   `json:"access"`
	SubmissionAccess []AccessRule   `json:"submissionAccess"`
	Deleted          any            `json:"deleted,omitempty"`
	Extra            map[string]any `json:"-"`
	present          keySet
}

// Section returns the output section of the form this snapshot belongs to.
func (r FormRevision) Section() string {
	return Form{Type: r.Type}.Section()
}

func (r FormRevision) MarshalJSON() ([]byte, error) {
	type plain FormRevision
	return mergeExtra(plain(r), r.present, r.Extra)
}

func (r *FormRevision) UnmarshalJSON(data []byte) error {
	type plain FormRevision
	var p plain
	extra, present, err := splitExtra(data, &p)
	if err != nil {
		return err
	}
	*r = FormRevision(p)
	r.Extra = extra
	r.present = present
	return nil
}
