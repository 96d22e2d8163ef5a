package version

import (
	"context"
	"fmt"

	goversion "github.com/hashicorp/go-version"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/mpdeploy/mpdeploy/cmd/util"
	"github.com/mpdeploy/mpdeploy/pkg/config"
	"github.com/mpdeploy/mpdeploy/pkg/rshell"
	"github.com/mpdeploy/mpdeploy/pkg/version"
)

// Mocked for unit testing.
var (
	parseUserConfig = config.ParseUser
	getToolVersion  = func(cfg config.User) (string, error) {
		return rshell.New(cfg).ToolVersion(context.Background())
	}
)

// New creates a new `version` command.
func New() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version of mpdeploy and the serial shell tool.",
		Run: func(_ *cobra.Command, _ []string) {
			if err := run(); err != nil {
				util.HandleFatalError(err)
			}
		},
	}
}

func run() error {
	fmt.Printf("mpdeploy version: %s\n", version.Version)

	userConfig, err := parseUserConfig()
	if err != nil {
		log.WithError(err).Debug(
			"Skipping the tool version check without a user config")
		return nil
	}

	toolVersion, err := getToolVersion(userConfig)
	if err != nil {
		log.WithError(err).Warnf(
			"Couldn't query %s for its version", userConfig.ToolPath)
		return nil
	}
	fmt.Printf("%s version: %s\n", userConfig.ToolPath, toolVersion)

	warnIfTooOld(userConfig.ToolPath, toolVersion)
	return nil
}

// warnIfTooOld compares the tool's version against the oldest release
// mpdeploy is known to work with. An unparseable version is only logged at
// debug level since some forks report arbitrary strings.
func warnIfTooOld(toolPath, toolVersion string) {
	parsed, err := goversion.NewVersion(toolVersion)
	if err != nil {
		log.WithError(err).Debugf("Couldn't parse tool version %q", toolVersion)
		return
	}

	minVersion := goversion.Must(goversion.NewVersion(version.MinToolVersion))
	if parsed.LessThan(minVersion) {
		log.Warnf("%s %s is older than the minimum supported version %s. "+
			"Pushes may fail in surprising ways. Please upgrade the tool.",
			toolPath, toolVersion, version.MinToolVersion)
	}
}
