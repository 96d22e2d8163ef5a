// Package deploy builds and runs the command sequence that pushes a local
// project onto the board: best-effort deletion of stale remote files, remote
// directory creation, one copy per source file, and a final listing for
// manual verification.
package deploy

import (
	"context"
	"fmt"
	"path"

	log "github.com/sirupsen/logrus"

	"github.com/mpdeploy/mpdeploy/pkg/config"
	"github.com/mpdeploy/mpdeploy/pkg/errors"
	"github.com/mpdeploy/mpdeploy/pkg/rshell"
)

// Runner runs one command against the board. It's satisfied by
// rshell.Client; tests substitute a recorder.
type Runner interface {
	Run(ctx context.Context, command ...string) error
}

// A Step is one tool invocation within a push. Steps with IgnoreFailure set
// are best-effort: their failure is logged and the push continues.
type Step struct {
	Desc          string
	Command       []string
	IgnoreFailure bool
}

// CleanSteps returns the best-effort deletions of stale files from earlier
// deployments. The tool fails when a file is already absent, which is
// expected and tolerated.
func CleanSteps(cfg config.Project) []Step {
	var steps []Step
	for _, stale := range cfg.StaleFiles {
		steps = append(steps, Step{
			Desc:          fmt.Sprintf("remove %s", stale),
			Command:       rshell.RemoveFile(stale),
			IgnoreFailure: true,
		})
	}
	return steps
}

// PushSteps returns the full push sequence. `stampPath` is the local path of
// a deployment record to upload alongside the files; empty means none. The
// final listing always comes last so that it's only reached when every copy
// succeeded.
func PushSteps(cfg config.Project, files []SourceFile, remoteDirs []string,
	stampPath string) []Step {

	steps := CleanSteps(cfg)
	for _, dir := range remoteDirs {
		steps = append(steps, Step{
			Desc:    fmt.Sprintf("create %s", dir),
			Command: rshell.MakeDir(dir),
		})
	}
	for _, f := range files {
		steps = append(steps, Step{
			Desc:    fmt.Sprintf("copy %s to %s", f.LocalPath, f.RemotePath),
			Command: rshell.CopyFile(f.LocalPath, f.RemotePath),
		})
	}
	if stampPath != "" {
		remote := path.Join(cfg.RemoteDir, StampName)
		steps = append(steps, Step{
			Desc:    fmt.Sprintf("copy %s to %s", stampPath, remote),
			Command: rshell.CopyFile(stampPath, remote),
		})
	}
	steps = append(steps, Step{
		Desc:    fmt.Sprintf("list %s", cfg.RemoteDir),
		Command: rshell.ListDir(cfg.RemoteDir),
	})
	return steps
}

// Run executes the steps in order. The first failure of a step that isn't
// best-effort aborts the run; nothing after it is attempted.
func Run(ctx context.Context, runner Runner, steps []Step) error {
	for _, step := range steps {
		if err := runner.Run(ctx, step.Command...); err != nil {
			if step.IgnoreFailure {
				log.WithError(err).Warnf("Ignoring failure to %s", step.Desc)
				continue
			}
			return errors.WithContext(err, step.Desc)
		}
	}
	return nil
}
