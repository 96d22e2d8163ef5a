package config

import (
	"github.com/ghodss/yaml"
	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/afero"

	"github.com/mpdeploy/mpdeploy/pkg/errors"
)

const (
	// UserConfigPath is the default path to the mpdeploy user config.
	UserConfigPath = "~/.mpdeploy.yaml"

	// DefaultBufferSize is the serial transfer buffer size used when the
	// user config doesn't set one.
	DefaultBufferSize = 512

	// DefaultToolPath is used when the user config doesn't name the serial
	// shell tool explicitly. It relies on the tool being on the PATH.
	DefaultToolPath = "rshell"

	// InitialUserConfigVersion is the first version of the mpdeploy
	// user config. Config files that do not specify a version
	// will default to this version.
	InitialUserConfigVersion = "v1alpha1"

	// SupportedUserConfigVersion is the supported version of the
	// mpdeploy user config of the current mpdeploy binary.
	SupportedUserConfigVersion = "v1alpha1"
)

// User contains machine-specific configuration: where the board is attached
// and how to invoke the serial shell tool.
type User struct {
	Version    string `json:"version,omitempty"`
	Port       string `json:"port"`
	BufferSize int    `json:"bufferSize,omitempty"`
	ToolPath   string `json:"toolPath,omitempty"`
}

func (u User) getVersion() string {
	return u.Version
}

// homedirExpand will be overridden in mock tests
var homedirExpand = homedir.Expand

// ParseUser attempts to parse the User config stored in the default path.
func ParseUser() (User, error) {
	path, err := GetUserConfigPath()
	if err != nil {
		return User{}, errors.WithContext(err, "expand config path")
	}

	config := User{Version: InitialUserConfigVersion}
	if err := parseConfig(path, &config, SupportedUserConfigVersion); err != nil {
		if _, ok := err.(errors.FileNotFound); ok {
			return User{}, errors.NewFriendlyError("The mpdeploy user config "+
				"file doesn't exist at %q. Please run `mpdeploy config` to "+
				"create the user config file.", path)
		}
		return User{}, errors.WithContext(err, "parse")
	}

	if config.Port == "" {
		return User{}, errors.MissingFieldError{Field: "port"}
	}
	if config.BufferSize == 0 {
		config.BufferSize = DefaultBufferSize
	}
	if config.ToolPath == "" {
		config.ToolPath = DefaultToolPath
	}

	config.ToolPath, err = homedirExpand(config.ToolPath)
	if err != nil {
		return User{}, errors.WithContext(err, "expand tool path")
	}
	return config, nil
}

// WriteUser writes the given user config to disk.
func WriteUser(cfg User) error {
	cfg.Version = SupportedUserConfigVersion
	path, err := GetUserConfigPath()
	if err != nil {
		return errors.WithContext(err, "expand config path")
	}

	yamlBytes, err := yaml.Marshal(cfg)
	if err != nil {
		return errors.WithContext(err, "marshal")
	}

	if err := afero.WriteFile(fs, path, yamlBytes, 0644); err != nil {
		return errors.WithContext(err, "write")
	}
	return nil
}

// GetUserConfigPath returns the path to the user's global mpdeploy
// configuration. This path is expanded, so it can be directly passed to file
// operations.
func GetUserConfigPath() (string, error) {
	return homedirExpand(UserConfigPath)
}
