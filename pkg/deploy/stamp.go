package deploy

import (
	"encoding/json"
	"time"

	"github.com/spf13/afero"
	git "gopkg.in/src-d/go-git.v4"

	"github.com/mpdeploy/mpdeploy/pkg/errors"
	"github.com/mpdeploy/mpdeploy/pkg/version"
)

// StampName is the remote filename of the deployment record.
const StampName = "deploy.json"

// A Stamp records what was deployed and when. It's uploaded alongside the
// source files so that the code on a board can later be matched back to a
// CLI version and commit.
type Stamp struct {
	Version    string    `json:"version"`
	Commit     string    `json:"commit,omitempty"`
	DeployedAt time.Time `json:"deployedAt"`
}

// Mocked out for unit testing.
var (
	now        = time.Now
	headCommit = headCommitImpl
)

// WriteStamp writes the deployment record to a temporary local file and
// returns its path. The commit hash is included when the project directory
// is inside a git work tree; anywhere else the field is simply omitted.
func WriteStamp(projectDir string) (string, error) {
	stamp := Stamp{
		Version:    version.Version,
		DeployedAt: now(),
	}
	if commit, err := headCommit(projectDir); err == nil {
		stamp.Commit = commit
	}

	contents, err := json.MarshalIndent(stamp, "", "  ")
	if err != nil {
		return "", errors.WithContext(err, "marshal")
	}

	f, err := afero.TempFile(fs, "", "mpdeploy-stamp")
	if err != nil {
		return "", errors.WithContext(err, "create temp file")
	}
	defer f.Close()

	if _, err := f.Write(contents); err != nil {
		return "", errors.WithContext(err, "write")
	}
	return f.Name(), nil
}

// RemoveStamp deletes the local temporary file created by WriteStamp. It's
// called once the push has finished with the file, whether or not the push
// succeeded.
func RemoveStamp(path string) error {
	return fs.Remove(path)
}

func headCommitImpl(projectDir string) (string, error) {
	repo, err := git.PlainOpenWithOptions(projectDir, &git.PlainOpenOptions{
		DetectDotGit: true,
	})
	if err != nil {
		return "", errors.WithContext(err, "open repo")
	}

	head, err := repo.Head()
	if err != nil {
		return "", errors.WithContext(err, "get head")
	}
	return head.Hash().String(), nil
}
