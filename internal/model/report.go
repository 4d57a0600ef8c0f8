package model

// ReportingFormName is the machine name of the form whose submissions hold
// report configurations.
const ReportingFormName = "reportingui"

// Submission is a stored submission of the reporting form.
type Submission struct {
	ID      string         `json:"_id,omitempty"`
	Form    string         `json:"form,omitempty"`
	Data    *ReportData    `json:"data,omitempty"`
	Deleted any            `json:"deleted,omitempty"`
	Extra   map[string]any `json:"-"`
	present keySet
}

func (s Submission) MarshalJSON() ([]byte, error) {
	type plain Submission
	return mergeExtra(plain(s), s.present, s.Extra)
}

func (s *Submission) UnmarshalJSON(data []byte) error {
	type plain Submission
	var p plain
	extra, present, err := splitExtra(data, &p)
	if err != nil {
		return err
	}
	*s = Submission(p)
	s.Extra = extra
	s.present = present
	return nil
}

// ReportData is the data of a report configuration submission.
// Forms lists the ids of the forms the report reads.
type ReportData struct {
	Name    *string        `json:"name,omitempty"`
	Forms   []string       `json:"forms"`
	Extra   map[string]any `json:"-"`
	present keySet
}

// ReportName returns the report's name, empty when unset.
func (d *ReportData) ReportName() string {
	if d == nil || d.Name == nil {
		return ""
	}
	return *d.Name
}

func (d ReportData) MarshalJSON() ([]byte, error) {
	type plain ReportData
	return mergeExtra(plain(d), d.present, d.Extra)
}

func (d *ReportData) UnmarshalJSON(data []byte) error {
	type plain ReportData
	var p plain
	extra, present, err := splitExtra(data, &p)
	if err != nil {
		return err
	}
	*d = ReportData(p)
	d.Extra = extra
	d.present = present
	return nil
}
