package fswatch

import (
	"fmt"
	"os"

	"github.com/fsnotify/fsnotify"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"github.com/mpdeploy/mpdeploy/pkg/errors"
)

var fs = afero.NewOsFs()

// Watch watches the given directories recursively. It sends an event on the
// returned channel whenever a file within the watched paths changes.
func Watch(dirs []string) (chan struct{}, error) {
	pathsToWatch, err := getPathsToWatch(dirs)
	if err != nil {
		return nil, errors.WithContext(err, "get paths")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.WithContext(err, "create watcher")
	}

	for _, path := range pathsToWatch {
		if err := watcher.Add(path); err != nil {
			// Close the watcher so that we release the file handlers for the
			// previously added paths.
			if err := watcher.Close(); err != nil {
				log.WithError(err).Warn("Failed to close file watcher")
			}

			return nil, errors.WithContext(err, fmt.Sprintf("watch %q", path))
		}
	}
	return combineUpdates(watcher.Events), nil
}

func combineUpdates(updates <-chan fsnotify.Event) chan struct{} {
	combined := make(chan struct{}, 1)
	go func() {
		for range updates {
			select {
			case combined <- struct{}{}:
			default:
			}
		}
	}()
	return combined
}

func getPathsToWatch(dirs []string) (paths []string, err error) {
	for _, dir := range dirs {
		fi, err := fs.Stat(dir)
		if err != nil {
			if os.IsNotExist(err) {
				return nil, errors.FileNotFound{Path: dir}
			}
			return nil, errors.WithContext(err, "stat")
		}

		if !fi.Mode().IsDir() {
			paths = append(paths, dir)
			continue
		}

		// Because fsnotify doesn't watch directories recursively, we walk
		// the directory's contents and add all subdirectories and files.
		err = afero.Walk(fs, dir, func(path string, fi os.FileInfo, err error) error {
			if err != nil {
				return errors.WithContext(err, "walk error")
			}
			paths = append(paths, path)
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	return paths, nil
}
