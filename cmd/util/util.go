package util

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"runtime/debug"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/mpdeploy/mpdeploy/pkg/errors"
)

// Mocked for unit testing.
var (
	stdout io.Writer = os.Stdout
	stdin  io.Reader = os.Stdin
	exit             = os.Exit
)

// friendlyError is implemented by errors that carry a message meant to be
// printed to the user as-is.
type friendlyError interface {
	FriendlyMessage() string
}

// HandleFatalError prints the given error and exits the process with a
// non-zero exit code.
func HandleFatalError(err error) {
	if friendly, ok := errors.RootCause(err).(friendlyError); ok {
		fmt.Fprintln(os.Stderr, friendly.FriendlyMessage())
	} else {
		log.Error(err)
	}
	exit(1)
}

// HandlePanic recovers from panics in the main goroutine so that we can log
// them before crashing.
func HandlePanic() {
	r := recover()
	if r == nil {
		return
	}

	log.WithField("stack", string(debug.Stack())).
		Errorf("Unexpected panic: %v", r)
	exit(1)
}

// PromptYesOrNo asks the user `question`, and returns their answer. It
// defaults to "no" when the user just hits enter.
func PromptYesOrNo(question string) (bool, error) {
	reader := bufio.NewReader(stdin)
	for {
		fmt.Fprintf(stdout, "%s (y/N) ", question)
		resp, err := reader.ReadString('\n')
		if err != nil {
			return false, err
		}

		switch strings.ToLower(strings.TrimSpace(resp)) {
		case "y", "yes":
			return true, nil
		case "", "n", "no":
			return false, nil
		}
	}
}
