package cmd

import (
	"fmt"

	"github.com/relloyd/ctadmin/actions"
	"github.com/relloyd/ctadmin/constants"
	"github.com/relloyd/ctadmin/tracking"
	"github.com/spf13/cobra"
)

var projectCmd = &cobra.Command{
	Use:     "project",
	Aliases: []string{"projects"},
	Short:   "Manage change tracking projects",
	Long: `Create, view, change and remove change tracking projects.
A project links a source database to a target and holds the schedules used to load it.`,
}

var projectListCfg = actions.ProjectConfig{LogLevel: "error"}

var projectListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List all projects ordered by id",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runProjectList()
	},
}

var projectGetCfg = actions.ProjectConfig{LogLevel: "error"}

var projectGetCmd = &cobra.Command{
	Use:   "get",
	Short: "Print a project",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runProjectGet()
	},
}

var projectAddCfg = actions.ProjectConfig{LogLevel: "error"}
var projectAddFlags = projectFlags{}

var projectAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a project",
	Long: `Add a project using flags or a YAML/JSON file containing the project definition.
When a file is supplied the project flags are ignored.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runProjectAdd()
	},
}

var projectUpdateCfg = actions.ProjectConfig{LogLevel: "error"}
var projectUpdateFlags = projectFlags{}

var projectUpdateCmd = &cobra.Command{
	Use:   "update",
	Short: "Replace the definition of a project",
	Long: `Replace the definition of the project identified by flag --project.
Supply a new project id to rename the project. Tables already tracked keep the old id.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runProjectUpdate()
	},
}

var projectDeleteCfg = actions.ProjectConfig{LogLevel: "error"}

var projectDeleteCmd = &cobra.Command{
	Use:     "remove",
	Aliases: []string{"rm", "del", "delete"},
	Short:   "Remove a project",
	Long: `Remove a project. Tables tracked under the project are kept unless --cascade is set.
Removing a project that does not exist is not an error.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runProjectDelete()
	},
}

// projectFlags holds the flag values that cannot be bound directly to a tracking.Project.
type projectFlags struct {
	updateCron    string
	updateStart   string
	transferCron  string
	transferStart string
}

// apply copies the schedules into p.
func (f *projectFlags) apply(p *tracking.Project) error {
	var err error
	if p.UpdateSchedule, err = newSchedule(f.updateCron, f.updateStart); err != nil {
		return err
	}
	if p.TransferSchedule, err = newSchedule(f.transferCron, f.transferStart); err != nil {
		return err
	}
	return nil
}

// newSchedule returns nil if both cron and start are empty.
func newSchedule(cron string, start string) (*tracking.Schedule, error) {
	if cron == "" && start == "" {
		return nil, nil
	}
	t, err := tracking.ParseScheduleStart(start)
	if err != nil {
		return nil, err
	}
	return &tracking.Schedule{Cron: cron, Start: t}, nil
}

func runProjectList() error {
	setupProjectConfig(&projectListCfg)
	return actions.RunProjectList(&projectListCfg)
}

func runProjectGet() error {
	setupProjectConfig(&projectGetCfg)
	return actions.RunProjectGet(&projectGetCfg)
}

func runProjectAdd() error {
	setupProjectConfig(&projectAddCfg)
	if err := projectAddFlags.apply(&projectAddCfg.Project); err != nil {
		return err
	}
	return actions.RunProjectAdd(&projectAddCfg)
}

func runProjectUpdate() error {
	setupProjectConfig(&projectUpdateCfg)
	if err := projectUpdateFlags.apply(&projectUpdateCfg.Project); err != nil {
		return err
	}
	return actions.RunProjectUpdate(&projectUpdateCfg)
}

func runProjectDelete() error {
	setupProjectConfig(&projectDeleteCfg)
	return actions.RunProjectDelete(&projectDeleteCfg)
}

func setupProjectConfig(cfg *actions.ProjectConfig) {
	cfg.Tracking.Connections = getConnectionRegistry()
	cfg.StackDumpOnPanic = stackDumpOnPanic
}

// addProjectFieldFlags binds the fields of p to flags of c.
func addProjectFieldFlags(c *cobra.Command, p *tracking.Project, f *projectFlags) {
	switches.addFlag(c, &p.ID, "project-id", "", false, "")
	switches.addFlag(c, &p.SourceConnectionID, "source-connection", "", false, "")
	switches.addFlag(c, &p.SourceDatabase, "source-db", "", false, "")
	switches.addFlag(c, &p.BIViewDatabase, "biview-database", "", false, "")
	switches.addFlag(c, &p.ProjectType, "project-type", fmt.Sprintf("%v", constants.ProjectTypeOne), false, "")
	switches.addFlag(c, &p.TrackingDatabase, "ct-database", "", false, "")
	switches.addFlag(c, &p.TransferSourceData, "transfer-source-data", "false", false, "")
	switches.addFlag(c, &p.TargetConnectionID, "target-connection", "", false, "")
	switches.addFlag(c, &p.TargetSchema, "target-schema", "", false, "")
	switches.addFlag(c, &p.TargetType, "target-type", constants.TargetTypeOds, false, "")
	switches.addFlag(c, &f.updateCron, "update-cron", "", false, "")
	switches.addFlag(c, &f.updateStart, "update-start", "", false, "")
	switches.addFlag(c, &f.transferCron, "transfer-cron", "", false, "")
	switches.addFlag(c, &f.transferStart, "transfer-start", "", false, "")
}

func init() {
	rootCmd.AddCommand(projectCmd)
	projectCmd.AddCommand(projectListCmd, projectGetCmd, projectAddCmd, projectUpdateCmd, projectDeleteCmd)
	// List.
	projectListCmd.Flags().SortFlags = false
	switches.addFlag(projectListCmd, &projectListCfg.OutputFormat, "output", constants.OutputFormatYaml, false, " (yaml|json)")
	switches.addFlag(projectListCmd, &projectListCfg.LogLevel, "log-level", "error", false, "")
	addTrackingFlags(projectListCmd, &projectListCfg.Tracking)
	// Get.
	projectGetCmd.Flags().SortFlags = false
	switches.addFlag(projectGetCmd, &projectGetCfg.ProjectId, "project", "", true, "")
	switches.addFlag(projectGetCmd, &projectGetCfg.OutputFormat, "output", constants.OutputFormatYaml, false, " (yaml|json)")
	switches.addFlag(projectGetCmd, &projectGetCfg.LogLevel, "log-level", "error", false, "")
	addTrackingFlags(projectGetCmd, &projectGetCfg.Tracking)
	// Add.
	projectAddCmd.Flags().SortFlags = false
	projectAddCmd.SilenceUsage = true
	switches.addFlag(projectAddCmd, &projectAddCfg.ProjectFile, "file", "", false, "")
	addProjectFieldFlags(projectAddCmd, &projectAddCfg.Project, &projectAddFlags)
	switches.addFlag(projectAddCmd, &projectAddCfg.LogLevel, "log-level", "error", false, "")
	addTrackingFlags(projectAddCmd, &projectAddCfg.Tracking)
	// Update.
	projectUpdateCmd.Flags().SortFlags = false
	projectUpdateCmd.SilenceUsage = true
	switches.addFlag(projectUpdateCmd, &projectUpdateCfg.ProjectId, "project", "", true, "")
	switches.addFlag(projectUpdateCmd, &projectUpdateCfg.ProjectFile, "file", "", false, "")
	addProjectFieldFlags(projectUpdateCmd, &projectUpdateCfg.Project, &projectUpdateFlags)
	switches.addFlag(projectUpdateCmd, &projectUpdateCfg.LogLevel, "log-level", "error", false, "")
	addTrackingFlags(projectUpdateCmd, &projectUpdateCfg.Tracking)
	// Delete.
	projectDeleteCmd.Flags().SortFlags = false
	projectDeleteCmd.SilenceUsage = true
	switches.addFlag(projectDeleteCmd, &projectDeleteCfg.ProjectId, "project", "", true, "")
	switches.addFlag(projectDeleteCmd, &projectDeleteCfg.Cascade, "cascade", "false", false, "")
	switches.addFlag(projectDeleteCmd, &projectDeleteCfg.LogLevel, "log-level", "error", false, "")
	addTrackingFlags(projectDeleteCmd, &projectDeleteCfg.Tracking)
}
