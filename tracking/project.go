package tracking

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/relloyd/ctadmin/constants"
	"github.com/relloyd/ctadmin/helper"
	"github.com/robfig/cron/v3"
)

// Project is a change tracking configuration that links a source database to a target.
type Project struct {
	ID                 string    `json:"ct_project_id" yaml:"ct_project_id" errorTxt:"project id" mandatory:"yes"`
	SourceConnectionID string    `json:"source_connection_id" yaml:"source_connection_id" errorTxt:"source connection" mandatory:"yes"`
	SourceDatabase     string    `json:"one_c_database" yaml:"one_c_database" errorTxt:"source database" mandatory:"yes"`
	BIViewDatabase     string    `json:"biview_database,omitempty" yaml:"biview_database,omitempty"`
	ProjectType        int       `json:"biview_project_type" yaml:"biview_project_type" errorTxt:"project type" mandatory:"yes"`
	TrackingDatabase   string    `json:"ct_database" yaml:"ct_database" errorTxt:"change tracking database" mandatory:"yes"`
	TransferSourceData bool      `json:"transfer_source_data" yaml:"transfer_source_data"`
	TargetConnectionID string    `json:"target_connection_id" yaml:"target_connection_id" errorTxt:"target connection" mandatory:"yes"`
	TargetSchema       string    `json:"target_schema" yaml:"target_schema" errorTxt:"target schema" mandatory:"yes"`
	TargetType         string    `json:"target_type" yaml:"target_type" errorTxt:"target type" mandatory:"yes"`
	UpdateSchedule     *Schedule `json:"update_schedule,omitempty" yaml:"update_schedule,omitempty"`
	TransferSchedule   *Schedule `json:"transfer_schedule,omitempty" yaml:"transfer_schedule,omitempty"`
}

// Schedule describes when a pipeline runs: a standard 5-field cron expression and an optional start time.
type Schedule struct {
	Cron  string    `json:"cron" yaml:"cron" errorTxt:"schedule cron expression" mandatory:"yes"`
	Start time.Time `json:"start,omitempty" yaml:"start,omitempty"`
}

// UnmarshalJSON accepts start times in the format used by forms and the CLI as well as RFC3339.
// YAML files are converted to JSON before decoding so this covers them too.
func (s *Schedule) UnmarshalJSON(b []byte) error {
	var raw struct {
		Cron  string `json:"cron"`
		Start string `json:"start"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	t, err := ParseScheduleStart(raw.Start)
	if err != nil {
		return err
	}
	s.Cron = raw.Cron
	s.Start = t
	return nil
}

var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// ValidateCron returns an error if s is not a valid 5-field cron expression.
func ValidateCron(s string) error {
	if _, err := cronParser.Parse(strings.TrimSpace(s)); err != nil {
		return errors.Wrapf(err, "invalid cron expression %q", s)
	}
	return nil
}

// ParseScheduleStart parses the start time format used by forms and the CLI, e.g. 2021-03-01T06:30.
// RFC3339 is accepted too. An empty string is the zero time.
func ParseScheduleStart(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(constants.TimeFormatSchedule, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, errors.Errorf("invalid schedule start %q: use the format %v", s, constants.TimeFormatSchedule)
	}
	return t, nil
}

// Validate checks that all mandatory fields are populated, the enumerated fields hold known values and
// schedules parse.
// All problems are reported together.
func (p *Project) Validate() error {
	problems := helper.GetStructErrorTxt4UnsetFields(p)
	if p.ProjectType != 0 && p.ProjectType != constants.ProjectTypeOne && p.ProjectType != constants.ProjectTypeTwo {
		problems = append(problems, "project type (1 or 2)")
	}
	if p.TargetType != "" && p.TargetType != constants.TargetTypeOds && p.TargetType != constants.TargetTypeHods {
		problems = append(problems, "target type (ODS or HODS)")
	}
	for _, s := range []*Schedule{p.UpdateSchedule, p.TransferSchedule} {
		if s != nil && strings.TrimSpace(s.Cron) != "" {
			if err := ValidateCron(s.Cron); err != nil {
				problems = append(problems, err.Error())
			}
		}
	}
	if len(problems) > 0 {
		return errors.Errorf("please supply valid values for %v", strings.Join(problems, ", "))
	}
	return nil
}

// TrackedTable records one source table registered under a project.
type TrackedTable struct {
	ProjectID string `json:"ct_project_id" yaml:"ct_project_id"`
	TableName string `json:"table_name" yaml:"table_name"`
	Load      bool   `json:"load" yaml:"load"`
}
