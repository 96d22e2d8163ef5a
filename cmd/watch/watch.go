package watch

import (
	"context"
	"fmt"
	"time"

	"github.com/buger/goterm"
	"github.com/jonboulle/clockwork"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/mpdeploy/mpdeploy/cmd/util"
	"github.com/mpdeploy/mpdeploy/pkg/config"
	"github.com/mpdeploy/mpdeploy/pkg/deploy"
	"github.com/mpdeploy/mpdeploy/pkg/errors"
	"github.com/mpdeploy/mpdeploy/pkg/fswatch"
	"github.com/mpdeploy/mpdeploy/pkg/rshell"
)

// debounceInterval is how long to wait after a file change before pushing,
// so that a burst of editor writes triggers a single push rather than one
// per file.
const debounceInterval = 500 * time.Millisecond

// Mocked out for unit testing.
var clock clockwork.Clock = clockwork.NewRealClock()

// New creates a new `watch` command.
func New() *cobra.Command {
	var projectDir string
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Push to the board whenever local files change",
		Long: "Push once, then keep watching the project's source\n" +
			"directories and push again after every change. A failed push is\n" +
			"logged and retried on the next change.",
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

	project, err := config.ParseProject(projectDir)
	if err != nil {
		return errors.WithContext(err, "parse project config")
	}

	dirs, err := deploy.SourceDirs(projectDir, project)
	if err != nil {
		return errors.WithContext(err, "resolve source dirs")
	}

	events, err := fswatch.Watch(dirs)
	if err != nil {
		return errors.WithContext(err, "watch files")
	}

	runner := rshell.New(userConfig)
	pushOnce := func() error {
		// Re-enumerate on every push so files created after startup are
		// picked up.
		files, remoteDirs, err := deploy.ListSourceFiles(projectDir, project)
		if err != nil {
			return errors.WithContext(err, "list source files")
		}
		return deploy.Run(context.Background(), runner,
			deploy.PushSteps(project, files, remoteDirs, ""))
	}

	// Push once up front so the board is in a known state before we start
	// reacting to changes.
	if err := pushOnce(); err != nil {
		return err
	}
	fmt.Println(goterm.Color("Push complete. Watching for changes.", goterm.GREEN))

	watchLoop(events, pushOnce)
	return nil
}

// watchLoop runs one push per burst of file change events. It only returns
// when the event channel is closed.
func watchLoop(events <-chan struct{}, pushOnce func() error) {
	for range events {
		// Editors tend to fire several events per save. Wait for the burst
		// to settle, then drain whatever arrived in the meantime.
		clock.Sleep(debounceInterval)
		drain(events)

		if err := pushOnce(); err != nil {
			log.WithError(err).Error("Push failed. Waiting for the next change.")
			continue
		}
		fmt.Println(goterm.Color("Push complete. Watching for changes.", goterm.GREEN))
	}
}

func drain(events <-chan struct{}) {
	for {
		select {
		case <-events:
		default:
			return
		}
	}
}
