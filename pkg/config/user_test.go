package config

import (
	"fmt"
	"testing"

	"github.com/ghodss/yaml"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"

	"github.com/mpdeploy/mpdeploy/pkg/errors"
)

func TestParseUser(t *testing.T) {
	out := "/home/test/.mpdeploy.yaml"
	homedirExpand = func(path string) (string, error) {
		if path == UserConfigPath {
			return out, nil
		}
		return path, nil
	}

	tests := []struct {
		name      string
		input     []byte
		expConfig User
		expError  error
	}{
		{
			name: "DefaultsApplied",
			input: mustMarshal(User{
				Port: "/dev/ttyUSB0",
			}),
			expConfig: User{
				Version:    InitialUserConfigVersion,
				Port:       "/dev/ttyUSB0",
				BufferSize: DefaultBufferSize,
				ToolPath:   DefaultToolPath,
			},
		},
		{
			name: "ExplicitValues",
			input: mustMarshal(User{
				Version:    SupportedUserConfigVersion,
				Port:       "/dev/ttyACM1",
				BufferSize: 128,
				ToolPath:   "/usr/local/bin/rshell",
			}),
			expConfig: User{
				Version:    SupportedUserConfigVersion,
				Port:       "/dev/ttyACM1",
				BufferSize: 128,
				ToolPath:   "/usr/local/bin/rshell",
			},
		},
		{
			name:     "MissingPort",
			input:    mustMarshal(User{BufferSize: 32}),
			expError: errors.MissingFieldError{Field: "port"},
		},
		{
			name: "IncorrectVersion",
			input: mustMarshal(User{
				Version: "incorrect_version",
				Port:    "/dev/ttyUSB0",
			}),
			expError: errors.WithContext(incompatibleVersionError{
				path:   out,
				exp:    SupportedUserConfigVersion,
				actual: "incorrect_version",
			}, "parse"),
		},
		{
			name: "ExtraFields",
			input: []byte(fmt.Sprintf(
				"version: %s\nport: /dev/ttyUSB0\nextra: fields",
				SupportedUserConfigVersion)),
			expError: errors.WithContext(
				errors.NewFriendlyError(parseConfigErrTemplate, out,
					errors.New("error unmarshaling JSON: while decoding JSON: "+
						`json: unknown field "extra"`)),
				"parse"),
		},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			fs = afero.NewMemMapFs()
			err := afero.WriteFile(fs, out, test.input, 0644)
			assert.NoError(t, err)

			config, err := ParseUser()
			assert.Equal(t, test.expConfig, config)
			assert.Equal(t, test.expError, err)
		})
	}
}

func TestParseUserMissingFile(t *testing.T) {
	homedirExpand = func(path string) (string, error) {
		if path == UserConfigPath {
			return "/home/test/.mpdeploy.yaml", nil
		}
		return path, nil
	}
	fs = afero.NewMemMapFs()

	_, err := ParseUser()
	assert.Error(t, err)
	_, friendly := err.(errors.FriendlyError)
	assert.True(t, friendly, "a missing user config should produce a friendly error")
}

func TestWriteUser(t *testing.T) {
	out := "/home/test/.mpdeploy.yaml"
	homedirExpand = func(path string) (string, error) {
		if path == UserConfigPath {
			return out, nil
		}
		return path, nil
	}
	fs = afero.NewMemMapFs()

	cfg := User{Port: "/dev/ttyUSB0", BufferSize: 256}
	assert.NoError(t, WriteUser(cfg))

	parsed, err := ParseUser()
	assert.NoError(t, err)
	assert.Equal(t, User{
		Version:    SupportedUserConfigVersion,
		Port:       "/dev/ttyUSB0",
		BufferSize: 256,
		ToolPath:   DefaultToolPath,
	}, parsed)
}

func mustMarshal(cfg interface{}) []byte {
	yamlBytes, err := yaml.Marshal(cfg)
	if err != nil {
		panic(fmt.Errorf("bad test input, unable to marshal to yaml: %s", err))
	}
	return yamlBytes
}
