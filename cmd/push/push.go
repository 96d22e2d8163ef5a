package push

import (
	"context"
	"fmt"

	"github.com/buger/goterm"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/mpdeploy/mpdeploy/cmd/util"
	"github.com/mpdeploy/mpdeploy/pkg/config"
	"github.com/mpdeploy/mpdeploy/pkg/deploy"
	"github.com/mpdeploy/mpdeploy/pkg/errors"
	"github.com/mpdeploy/mpdeploy/pkg/rshell"
)

// Mocked for unit testing.
var (
	parseUserConfig    = config.ParseUser
	parseProjectConfig = config.ParseProject
	listSourceFiles    = deploy.ListSourceFiles
	writeStamp         = deploy.WriteStamp
	removeStamp        = deploy.RemoveStamp
	runSteps           = deploy.Run
	newRunner          = func(cfg config.User) deploy.Runner { return rshell.New(cfg) }
)

// New creates a new `push` command.
func New() *cobra.Command {
	var projectDir string
	var stamp bool
	cmd := &cobra.Command{
		Use:   "push",
		Short: "Deploy the project's files to the board",
		Long: "Deploy the project's source files to the board's filesystem.\n" +
			"Stale files from earlier deployments are removed first, every\n" +
			"source file is copied over, and the remote directory is listed\n" +
			"so the result can be checked by eye.",
		Run: func(_ *cobra.Command, _ []string) {
			if err := run(projectDir, stamp); err != nil {
				util.HandleFatalError(err)
			}
		},
	}
	cmd.Flags().StringVar(&projectDir, "dir", ".",
		"The project directory containing "+config.ProjectConfigName+".")
	cmd.Flags().BoolVar(&stamp, "stamp", false,
		"Also upload a "+deploy.StampName+" recording the CLI version and git commit.")
	return cmd
}

func run(projectDir string, stamp bool) error {
	userConfig, err := parseUserConfig()
	if err != nil {
		return errors.WithContext(err, "parse user config")
	}

	project, err := parseProjectConfig(projectDir)
	if err != nil {
		return errors.WithContext(err, "parse project config")
	}

	files, remoteDirs, err := listSourceFiles(projectDir, project)
	if err != nil {
		return errors.WithContext(err, "list source files")
	}

	var stampPath string
	if stamp {
		stampPath, err = writeStamp(projectDir)
		if err != nil {
			return errors.WithContext(err, "write deploy stamp")
		}
		defer func() {
			if err := removeStamp(stampPath); err != nil {
				log.WithError(err).Debug("Failed to remove the temporary deploy stamp")
			}
		}()
	}

	steps := deploy.PushSteps(project, files, remoteDirs, stampPath)
	if err := runSteps(context.Background(), newRunner(userConfig), steps); err != nil {
		return err
	}

	fmt.Println(goterm.Color(
		fmt.Sprintf("Pushed %d files to %s.", len(files), project.RemoteDir),
		goterm.GREEN))
	return nil
}
