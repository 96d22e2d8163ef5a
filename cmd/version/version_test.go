package version

import (
	"context"
	"testing"

	log "github.com/sirupsen/logrus"
	logrusTest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"

	"github.com/mpdeploy/mpdeploy/pkg/config"
	"github.com/mpdeploy/mpdeploy/pkg/errors"
	"github.com/mpdeploy/mpdeploy/pkg/rshell"
)

func TestRunToleratesUnreachableTool(t *testing.T) {
	parseUserConfig = func() (config.User, error) {
		return config.User{Port: "/dev/ttyUSB0", ToolPath: "rshell"}, nil
	}
	getToolVersion = func(config.User) (string, error) {
		return "", errors.New("exec: \"rshell\": executable file not found in $PATH")
	}
	defer func() {
		parseUserConfig = config.ParseUser
		getToolVersion = func(cfg config.User) (string, error) {
			return rshell.New(cfg).ToolVersion(context.Background())
		}
	}()

	hook := logrusTest.NewGlobal()
	assert.NoError(t, run())

	warned := false
	for _, entry := range hook.Entries {
		if entry.Level == log.WarnLevel {
			warned = true
		}
	}
	assert.True(t, warned)
}

func TestWarnIfTooOld(t *testing.T) {
	tests := []struct {
		name        string
		toolVersion string
		expWarning  bool
	}{
		{name: "TooOld", toolVersion: "0.0.21", expWarning: true},
		{name: "ExactMinimum", toolVersion: "0.0.26", expWarning: false},
		{name: "NewEnough", toolVersion: "0.0.31", expWarning: false},
		{name: "Unparseable", toolVersion: "definitely-not-a-version", expWarning: false},
	}

	hook := logrusTest.NewGlobal()
	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			hook.Reset()
			warnIfTooOld("rshell", test.toolVersion)

			warned := false
			for _, entry := range hook.Entries {
				if entry.Level == log.WarnLevel {
					warned = true
				}
			}
			assert.Equal(t, test.expWarning, warned)
		})
	}
}
