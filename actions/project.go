package actions

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/relloyd/ctadmin/constants"
	"github.com/relloyd/ctadmin/tracking"
)

// ProjectConfig is used by the project actions.
// Project definitions come from ProjectFile when it is set, else from Project.
type ProjectConfig struct {
	Tracking         TrackingConfig
	ProjectId        string
	Project          tracking.Project
	ProjectFile      string
	OutputFormat     string
	Cascade          bool
	LogLevel         string
	StackDumpOnPanic bool
	Out              io.Writer
}

func (cfg *ProjectConfig) setup() (ProjectStore, error) {
	if cfg == nil {
		return nil, errors.New("nil pointer to project config supplied")
	}
	if cfg.Out == nil {
		cfg.Out = os.Stdout
	}
	if cfg.OutputFormat == "" {
		cfg.OutputFormat = constants.OutputFormatYaml
	}
	return newProjectStore(newLogger(cfg.LogLevel, cfg.StackDumpOnPanic), &cfg.Tracking)
}

func (cfg *ProjectConfig) getProject() (tracking.Project, error) {
	if cfg.ProjectFile == "" {
		return cfg.Project, nil
	}
	p := tracking.Project{}
	if err := unmarshalFile(cfg.ProjectFile, &p); err != nil {
		return p, errors.Wrapf(err, "unable to load project from file %q", cfg.ProjectFile)
	}
	return p, nil
}

func RunProjectList(cfg *ProjectConfig) error {
	s, err := cfg.setup()
	if err != nil {
		return err
	}
	p, err := s.ListOrdered(context.Background())
	if err != nil {
		return err
	}
	return writeOutput(p, cfg.Out, cfg.OutputFormat)
}

func RunProjectGet(cfg *ProjectConfig) error {
	s, err := cfg.setup()
	if err != nil {
		return err
	}
	p, err := s.Get(context.Background(), cfg.ProjectId)
	if err != nil {
		return err
	}
	return writeOutput(p, cfg.Out, cfg.OutputFormat)
}

func RunProjectAdd(cfg *ProjectConfig) error {
	s, err := cfg.setup()
	if err != nil {
		return err
	}
	p, err := cfg.getProject()
	if err != nil {
		return err
	}
	if err = s.Create(context.Background(), p); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(cfg.Out, "Project %q added\n", p.ID)
	return nil
}

// RunProjectUpdate rewrites project cfg.ProjectId.
// The new definition may rename the project; when it has no id the existing id is kept.
func RunProjectUpdate(cfg *ProjectConfig) error {
	s, err := cfg.setup()
	if err != nil {
		return err
	}
	p, err := cfg.getProject()
	if err != nil {
		return err
	}
	if p.ID == "" {
		p.ID = cfg.ProjectId
	}
	if err = s.Update(context.Background(), cfg.ProjectId, p); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(cfg.Out, "Project %q updated\n", p.ID)
	return nil
}

func RunProjectDelete(cfg *ProjectConfig) error {
	s, err := cfg.setup()
	if err != nil {
		return err
	}
	if err = s.Delete(context.Background(), cfg.ProjectId, tracking.DeleteOptions{Cascade: cfg.Cascade}); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(cfg.Out, "Project %q removed\n", cfg.ProjectId)
	return nil
}
