package fswatch

import (
	"sort"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"

	"github.com/mpdeploy/mpdeploy/pkg/errors"
)

func TestGetPathsToWatch(t *testing.T) {
	tests := []struct {
		name     string
		dirs     []string
		files    []string
		watch    []string
		expPaths []string
	}{
		{
			name:  "SingleDirectory",
			dirs:  []string{"/proj"},
			files: []string{"/proj/main.py", "/proj/server.py"},
			watch: []string{"/proj"},
			expPaths: []string{"/proj", "/proj/main.py",
				"/proj/server.py"},
		},
		{
			name:  "NestedDirectories",
			dirs:  []string{"/proj", "/proj/utils"},
			files: []string{"/proj/main.py", "/proj/utils/helpers.py"},
			watch: []string{"/proj"},
			expPaths: []string{"/proj", "/proj/main.py", "/proj/utils",
				"/proj/utils/helpers.py"},
		},
		{
			name:  "MultipleRoots",
			dirs:  []string{"/proj", "/proj/utils"},
			files: []string{"/proj/main.py", "/proj/utils/helpers.py"},
			watch: []string{"/proj/utils"},
			expPaths: []string{"/proj/utils", "/proj/utils/helpers.py"},
		},
	}

	for _, test := range tests {
		fs = afero.NewMemMapFs()
		for _, dir := range test.dirs {
			assert.NoError(t, fs.Mkdir(dir, 0755))
		}
		for _, file := range test.files {
			assert.NoError(t, afero.WriteFile(fs, file, []byte("testfile"), 0644))
		}

		paths, err := getPathsToWatch(test.watch)
		assert.NoError(t, err)

		// Sort for consistency.
		sort.Strings(test.expPaths)
		sort.Strings(paths)
		assert.Equal(t, test.expPaths, paths, test.name)
	}
}

func TestGetPathsToWatchMissingDir(t *testing.T) {
	fs = afero.NewMemMapFs()

	_, err := getPathsToWatch([]string{"/gone"})
	assert.Equal(t, errors.FileNotFound{Path: "/gone"}, err)
}

func TestCombineUpdates(t *testing.T) {
	t.Parallel()

	updates := make(chan fsnotify.Event, 1024)
	addEvents := func(num int) {
		for i := 0; i < num; i++ {
			updates <- fsnotify.Event{}
		}
	}

	// Seed with events.
	numUpdates := 100
	addEvents(numUpdates)
	combined := combineUpdates(updates)

	// Assert that the events are being combined.
	numCombined := countEvents(combined)
	assert.True(t, numCombined < numUpdates,
		"expected less combined events (%d) than %d", numCombined, numUpdates)

	// Add more events.
	addEvents(100)
	<-combined
}

func countEvents(c chan struct{}) (n int) {
	// Block until the first event.
	<-c
	n++

	// Count the number of events until there hasn't been any new events in
	// 500 milliseconds.
	for {
		select {
		case <-c:
			n++
		case <-time.After(500 * time.Millisecond):
			return n
		}
	}
}
