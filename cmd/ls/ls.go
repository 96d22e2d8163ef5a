package ls

import (
	"context"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/mpdeploy/mpdeploy/cmd/util"
	"github.com/mpdeploy/mpdeploy/pkg/config"
	"github.com/mpdeploy/mpdeploy/pkg/errors"
	"github.com/mpdeploy/mpdeploy/pkg/rshell"
)

// New creates a new `ls` command.
func New() *cobra.Command {
	var projectDir string
	cmd := &cobra.Command{
		Use:   "ls",
		Short: "List the project's remote directory on the board",
		Run: func(_ *cobra.Command, _ []string) {
			if err := run(projectDir); err != nil {
				util.HandleFatalError(err)
			}
		},
	}
	cmd.Flags().StringVar(&projectDir, "dir", ".",
		"The project directory containing "+config.ProjectConfigName+".")
	return cmd
}

func run(projectDir string) error {
	userConfig, err := config.ParseUser()
	if err != nil {
		return errors.WithContext(err, "parse user config")
	}

	remoteDir := config.DefaultRemoteDir
	if project, err := config.ParseProject(projectDir); err == nil {
		remoteDir = project.RemoteDir
	} else {
		log.WithError(err).Debugf(
			"No project config. Listing the default remote directory (%s)",
			remoteDir)
	}

	client := rshell.New(userConfig)
	return client.Run(context.Background(), rshell.ListDir(remoteDir)...)
}
