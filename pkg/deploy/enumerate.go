package deploy

import (
	"fmt"
	"os"
	"path"
	"path/filepath"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"github.com/mpdeploy/mpdeploy/pkg/config"
	"github.com/mpdeploy/mpdeploy/pkg/errors"
)

// A SourceFile pairs a file on the operator's machine with the remote path
// it deploys to.
type SourceFile struct {
	LocalPath  string
	RemotePath string
}

// ListSourceFiles enumerates the regular files directly inside each of the
// project's configured directories, in enumeration order. Directories are
// not recursed into. The first configured directory must exist; later ones
// are optional and skipped with a notice when absent.
// Returns the files and the remote directories that must exist before the
// files can be copied.
func ListSourceFiles(projectDir string, cfg config.Project) ([]SourceFile, []string, error) {
	var files []SourceFile
	var remoteDirs []string
	for i, dir := range cfg.Dirs {
		localDir, exists, err := statSourceDir(projectDir, dir, i > 0)
		if err != nil {
			return nil, nil, err
		}
		if !exists {
			continue
		}

		remoteDir := cfg.RemoteDir
		if dir != "." {
			remoteDir = path.Join(cfg.RemoteDir, filepath.ToSlash(dir))
			remoteDirs = append(remoteDirs, remoteDir)
		}

		entries, err := afero.ReadDir(fs, localDir)
		if err != nil {
			return nil, nil, errors.WithContext(err, "list directory")
		}
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			if entry.Mode()&os.ModeSymlink != 0 {
				// ReadDir doesn't follow symlinks. Resolve them so that
				// links to directories are skipped like directories, and
				// broken links never reach the copy step.
				fi, err := fs.Stat(filepath.Join(localDir, entry.Name()))
				if err != nil || fi.IsDir() {
					continue
				}
			}
			files = append(files, SourceFile{
				LocalPath:  filepath.Join(localDir, entry.Name()),
				RemotePath: path.Join(remoteDir, entry.Name()),
			})
		}
	}
	return files, remoteDirs, nil
}

// SourceDirs returns the project's source directories that exist on disk,
// resolved against the project directory. Missing optional directories are
// skipped, just like during enumeration.
func SourceDirs(projectDir string, cfg config.Project) ([]string, error) {
	var dirs []string
	for i, dir := range cfg.Dirs {
		localDir, exists, err := statSourceDir(projectDir, dir, i > 0)
		if err != nil {
			return nil, err
		}
		if exists {
			dirs = append(dirs, localDir)
		}
	}
	return dirs, nil
}

func statSourceDir(projectDir, dir string, optional bool) (string, bool, error) {
	localDir := dir
	if !filepath.IsAbs(dir) {
		localDir = filepath.Join(projectDir, dir)
	}

	fi, err := fs.Stat(localDir)
	if err != nil {
		if os.IsNotExist(err) {
			if !optional {
				return "", false, errors.FileNotFound{Path: localDir}
			}
			log.Infof("Skipping directory %q because it doesn't exist", localDir)
			return localDir, false, nil
		}
		return "", false, errors.WithContext(err, "stat")
	}
	if !fi.IsDir() {
		return "", false, errors.New(fmt.Sprintf("%q is not a directory", localDir))
	}
	return localDir, true, nil
}
