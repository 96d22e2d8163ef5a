package cmd

import (
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	cleanCmd "github.com/mpdeploy/mpdeploy/cmd/clean"
	configCmd "github.com/mpdeploy/mpdeploy/cmd/config"
	lsCmd "github.com/mpdeploy/mpdeploy/cmd/ls"
	pushCmd "github.com/mpdeploy/mpdeploy/cmd/push"
	"github.com/mpdeploy/mpdeploy/cmd/util"
	versionCmd "github.com/mpdeploy/mpdeploy/cmd/version"
	watchCmd "github.com/mpdeploy/mpdeploy/cmd/watch"
)

// verboseLogKey is the environment variable used to enable verbose logging.
// When it's set to `true`, Debug events are logged, rather than just Info and
// above.
const verboseLogKey = "MPDEPLOY_LOG_VERBOSE"

// Execute runs the main CLI process.
func Execute() {
	if os.Getenv(verboseLogKey) == "true" {
		log.SetLevel(log.DebugLevel)
	}

	rootCmd := &cobra.Command{
		Use:          "mpdeploy",
		SilenceUsage: true,

		// The call to rootCmd.Execute prints the error, so we silence errors
		// here to avoid double printing.
		SilenceErrors: true,
	}
	rootCmd.AddCommand(
		cleanCmd.New(),
		configCmd.New(),
		lsCmd.New(),
		pushCmd.New(),
		versionCmd.New(),
		watchCmd.New(),
	)

	if err := rootCmd.Execute(); err != nil {
		util.HandleFatalError(err)
	}
}
