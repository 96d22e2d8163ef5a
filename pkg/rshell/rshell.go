// Package rshell drives the external serial shell tool that owns the actual
// board communication. Every operation is one subprocess invocation; the
// tool opens and closes the serial connection itself, so there is no session
// state on our side.
package rshell

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/mpdeploy/mpdeploy/pkg/config"
	"github.com/mpdeploy/mpdeploy/pkg/errors"
)

// Mocked out for unit testing.
var execCommand = exec.CommandContext

// Client invokes the serial shell tool with a fixed set of connection
// options.
type Client struct {
	ToolPath   string
	Port       string
	BufferSize int
}

// New creates a Client from the user config.
func New(cfg config.User) Client {
	return Client{
		ToolPath:   cfg.ToolPath,
		Port:       cfg.Port,
		BufferSize: cfg.BufferSize,
	}
}

func (c Client) args(command ...string) []string {
	args := []string{"-p", c.Port, "--buffer-size", strconv.Itoa(c.BufferSize)}
	return append(args, command...)
}

// Run executes a single tool command, echoing the full command line first.
// The subprocess inherits our stdout and stderr so that the tool's own
// output and error messages are surfaced verbatim. Blocks until the tool
// exits, and returns its failure unchanged.
func (c Client) Run(ctx context.Context, command ...string) error {
	args := c.args(command...)
	fmt.Printf("%s %s\n", c.ToolPath, strings.Join(args, " "))

	cmd := execCommand(ctx, c.ToolPath, args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

// ToolVersion returns the version string reported by the shell tool. The
// tool answers --version without opening the serial port, so this works
// even when no board is attached.
func (c Client) ToolVersion(ctx context.Context) (string, error) {
	out, err := execCommand(ctx, c.ToolPath, "--version").Output()
	if err != nil {
		return "", errors.WithContext(err, "run tool")
	}

	// Some releases print just the version, others prefix it with the tool
	// name.
	fields := strings.Fields(string(out))
	if len(fields) == 0 {
		return "", errors.New("tool printed an empty version")
	}
	return fields[len(fields)-1], nil
}

// The tool's own command language. Each helper returns the command portion
// of an invocation, to be passed to Run.

// RemoveFile deletes a file on the board.
func RemoveFile(path string) []string {
	return []string{"rm", path}
}

// MakeDir creates a directory on the board.
func MakeDir(path string) []string {
	return []string{"mkdir", path}
}

// CopyFile copies a local file to a path on the board.
func CopyFile(src, dst string) []string {
	return []string{"cp", src, dst}
}

// ListDir lists a directory on the board.
func ListDir(path string) []string {
	return []string{"ls", path}
}
