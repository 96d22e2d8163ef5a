package config

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/mpdeploy/mpdeploy/cmd/util"
	"github.com/mpdeploy/mpdeploy/pkg/config"
	"github.com/mpdeploy/mpdeploy/pkg/errors"
)

// Mocked for unit testing.
var (
	stdout          io.Writer = os.Stdout
	stdin           io.Reader = os.Stdin
	parseUserConfig           = config.ParseUser
	writeUserConfig           = config.WriteUser
	globPorts                 = filepath.Glob
)

// portGlobs are the device paths boards commonly show up at, used to guess a
// default serial port during interactive setup.
var portGlobs = []string{
	"/dev/ttyUSB*",
	"/dev/ttyACM*",
	"/dev/tty.usbserial*",
	"/dev/tty.usbmodem*",
	"/dev/cu.usbserial*",
	"/dev/cu.usbmodem*",
}

// New creates a new `config` command.
func New() *cobra.Command {
	var cliOpts config.User
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Setup the mpdeploy user configuration",
		Run: func(_ *cobra.Command, _ []string) {
			if err := SetupConfig(cliOpts); err != nil {
				err = errors.NewFriendlyError("Failed to setup configuration:\n%s", err)
				util.HandleFatalError(err)
			}
		},
	}
	cmd.Flags().StringVar(&cliOpts.Port, "port", "",
		"Set the serial port in the config. "+
			"Optional: If not set, `mpdeploy config` will interactively prompt.")
	cmd.Flags().IntVar(&cliOpts.BufferSize, "buffer-size", 0,
		"Set the serial transfer buffer size in the config. "+
			"Optional: If not set, the tool's default is used.")
	cmd.Flags().StringVar(&cliOpts.ToolPath, "tool-path", "",
		"Set the path to the serial shell tool in the config. "+
			"Optional: If not set, the tool is found on the PATH.")

	// Setup the commands for querying the contents of the user config.
	type getterSpec struct {
		use, short string
		fn         func(config.User) string
	}

	getters := []getterSpec{
		{
			use:   "get-port",
			short: "Get the currently configured serial port",
			fn:    func(cfg config.User) string { return cfg.Port },
		},
		{
			use:   "get-tool-path",
			short: "Get the currently configured serial shell tool",
			fn:    func(cfg config.User) string { return cfg.ToolPath },
		},
	}
	for _, getter := range getters {
		getter := getter
		cmd.AddCommand(&cobra.Command{
			Use:   getter.use,
			Short: getter.short,
			Run: func(_ *cobra.Command, _ []string) {
				cfg, err := parseUserConfig()
				if err != nil {
					err = errors.WithContext(err, "read config")
					util.HandleFatalError(err)
				}

				fmt.Fprintln(stdout, getter.fn(cfg))
			},
		})
	}

	return cmd
}

// SetupConfig generates the user config from the given command line options
// and writes it to disk.
func SetupConfig(cliOpts config.User) error {
	cfg, err := generateConfig(cliOpts)
	if err != nil {
		return errors.WithContext(err, "generate config")
	}

	if err := writeUserConfig(cfg); err != nil {
		return errors.WithContext(err, "write config")
	}

	path, err := config.GetUserConfigPath()
	if err != nil {
		return errors.WithContext(err, "get user config path")
	}

	fmt.Fprintf(stdout, "Wrote config to %s\n", path)
	return nil
}

func generateConfig(cliOpts config.User) (config.User, error) {
	currConfig, err := parseUserConfig()
	if err != nil {
		log.WithError(err).Debug("No existing user config. Starting fresh.")
		currConfig = config.User{}
	}

	cfg := cliOpts
	if cfg.Port == "" {
		cfg.Port, err = promptUser(
			"The serial port is the device file the board is attached to.",
			"Serial port", guessPort(), currConfig.Port)
		if err != nil {
			return config.User{}, errors.WithContext(err, "prompt for port")
		}
	}
	if cfg.Port == "" {
		return config.User{}, errors.MissingFieldError{Field: "port"}
	}

	if cfg.BufferSize == 0 {
		cfg.BufferSize = currConfig.BufferSize
	}
	if cfg.ToolPath == "" {
		cfg.ToolPath = currConfig.ToolPath
	}
	return cfg, nil
}

// guessPort returns the first device file that looks like an attached board,
// or empty if there isn't one.
func guessPort() string {
	for _, pattern := range portGlobs {
		matches, err := globPorts(pattern)
		if err != nil || len(matches) == 0 {
			continue
		}
		return matches[0]
	}
	return ""
}

func promptUser(helpString, prompt, defaultAnswer, currAnswer string) (string, error) {
	// Display a new line at the end to separate different fields to make it
	// look clearer.
	defer fmt.Fprintln(stdout)

	options := []string{}
	if defaultAnswer != "" {
		options = append(options, defaultAnswer)
	}
	if currAnswer != "" && currAnswer != defaultAnswer {
		options = append(options, currAnswer)
	}
	options = append(options, "(Enter manually)")

	fmt.Fprintln(stdout, helpString+"\n"+prompt+":")

	stdinReader := bufio.NewReader(stdin)

	if nOptions := len(options); nOptions > 1 {
		// defaultAnswer or currAnswer exists.
		fmt.Fprintln(stdout)
		for i, option := range options {
			if i == 0 {
				option = fmt.Sprintf("%s (recommended)", option)
			}
			fmt.Fprintf(stdout, "\t%d. %s\n", i+1, option)
		}
		fmt.Fprintln(stdout)

		for {
			fmt.Fprintf(stdout, "Please choose one [1-%d]: ", nOptions)
			choiceStr, err := stdinReader.ReadString('\n')
			if err != nil {
				return "", err
			}

			var choice int
			choiceStr = strings.TrimRight(choiceStr, "\n")

			// Default to the first choice if user doesn't enter anything.
			if choiceStr == "" {
				choice = 1
			} else {
				choice, err = strconv.Atoi(choiceStr)
				if err != nil || choice < 1 || choice > nOptions {
					// Try again if the input is invalid.
					continue
				}
			}

			if choice == nOptions {
				// Enter manually.
				break
			}

			return options[choice-1], nil
		}
	}

	fmt.Fprint(stdout, "Please enter manually: ")
	resp, err := stdinReader.ReadString('\n')
	if err != nil {
		return "", err
	}

	return strings.TrimRight(resp, "\n"), nil
}
