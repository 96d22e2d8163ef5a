package clean

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mpdeploy/mpdeploy/cmd/util"
	"github.com/mpdeploy/mpdeploy/pkg/config"
	"github.com/mpdeploy/mpdeploy/pkg/deploy"
	"github.com/mpdeploy/mpdeploy/pkg/errors"
	"github.com/mpdeploy/mpdeploy/pkg/rshell"
)

// New creates a new `clean` command.
func New() *cobra.Command {
	var projectDir string
	var force bool
	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Remove stale files from the board",
		Long: "Remove the project's configured stale files from the board\n" +
			"without deploying anything. Files that are already absent are\n" +
			"skipped.",
		Run: func(_ *cobra.Command, _ []string) {
			if err := run(projectDir, force); err != nil {
				util.HandleFatalError(err)
			}
		},
	}
	cmd.Flags().StringVar(&projectDir, "dir", ".",
		"The project directory containing "+config.ProjectConfigName+".")
	cmd.Flags().BoolVar(&force, "force", false,
		"Delete without prompting for confirmation.")
	return cmd
}

func run(projectDir string, force bool) error {
	userConfig, err := config.ParseUser()
	if err != nil {
		return errors.WithContext(err, "parse user config")
	}

	project, err := config.ParseProject(projectDir)
	if err != nil {
		return errors.WithContext(err, "parse project config")
	}

	if len(project.StaleFiles) == 0 {
		fmt.Println("No stale files are configured. Nothing to do.")
		return nil
	}

	if !force {
		shouldClean, err := util.PromptYesOrNo(fmt.Sprintf(
			"Remove %d files from the board at %s?",
			len(project.StaleFiles), userConfig.Port))
		if err != nil {
			return errors.WithContext(err, "prompt")
		}
		if !shouldClean {
			fmt.Println("Clean aborted.")
			return nil
		}
	}

	return deploy.Run(context.Background(), rshell.New(userConfig),
		deploy.CleanSteps(project))
}
