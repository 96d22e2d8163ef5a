package config

import (
	"path"
	"path/filepath"

	log "github.com/sirupsen/logrus"

	"github.com/mpdeploy/mpdeploy/pkg/errors"
)

const (
	// ProjectConfigName is the name of the project config file, relative to
	// the project directory.
	ProjectConfigName = "mpdeploy.yaml"

	// DefaultRemoteDir is where the shell tool exposes the board's
	// filesystem.
	DefaultRemoteDir = "/pyboard"

	// InitialProjectConfigVersion is the first version of the mpdeploy
	// project config. Config files that do not specify a version
	// will default to this version.
	InitialProjectConfigVersion = "v1alpha1"

	// SupportedProjectConfigVersion is the supported version of the
	// mpdeploy project config of the current mpdeploy binary.
	SupportedProjectConfigVersion = "v1alpha1"
)

// DefaultStaleFiles are the remote files removed before every push when the
// project config doesn't list its own. They cover the files earlier releases
// of the firmware deployed, so obsolete code can't linger next to the fresh
// copy.
var DefaultStaleFiles = []string{"main.py", "server.py", "index.html", "fc.py"}

// Project describes what gets pushed to the board: which local directories
// are deployed, where they land remotely, and which leftover files are
// cleared first.
type Project struct {
	Version   string `json:"version,omitempty"`
	Name      string `json:"name"` // Required.
	RemoteDir string `json:"remoteDir,omitempty"`

	// Dirs are the local directories whose files are deployed. The first
	// directory is required; the rest are optional and skipped when absent.
	Dirs []string `json:"dirs,omitempty"`

	// StaleFiles are remote paths deleted best-effort before every push.
	// Paths without a leading slash are taken relative to RemoteDir. An
	// explicitly empty list disables the deletion phase.
	StaleFiles []string `json:"staleFiles,omitempty"`

	// Only populated and consumed by mpdeploy. Never set by the user.
	path string
}

// GetPath returns the filepath that the project was parsed from. A getter
// method is used rather than making the field public so that it can't get set
// by the yaml Unmarshalling.
func (c Project) GetPath() string {
	return c.path
}

func (c Project) getVersion() string {
	return c.Version
}

// ParseProject parses the project configuration in the directory `dir`.
func ParseProject(dir string) (Project, error) {
	configPath := filepath.Join(dir, ProjectConfigName)
	config := Project{
		path:    configPath,
		Version: InitialProjectConfigVersion,
	}
	if err := parseConfig(configPath, &config, SupportedProjectConfigVersion); err != nil {
		return Project{}, errors.WithContext(err, "parse")
	}

	if config.Name == "" {
		absPath, err := filepath.Abs(dir)
		if err != nil {
			absPath = dir
			log.WithError(err).Debug("Failed to parse absolute path")
		}
		return Project{}, errors.NewFriendlyError(
			"The project defined in %q does not have a name set.\n"+
				"The name field in the project configuration is required.",
			filepath.Base(absPath))
	}

	if config.RemoteDir == "" {
		config.RemoteDir = DefaultRemoteDir
	}
	if len(config.Dirs) == 0 {
		config.Dirs = []string{"."}
	}
	if config.StaleFiles == nil {
		config.StaleFiles = append([]string{}, DefaultStaleFiles...)
	}

	for i, d := range config.Dirs {
		config.Dirs[i] = filepath.Clean(d)
	}
	for i, f := range config.StaleFiles {
		if !path.IsAbs(f) {
			f = path.Join(config.RemoteDir, f)
		}
		config.StaleFiles[i] = path.Clean(f)
	}

	return config, nil
}
