package main

import (
	"github.com/mpdeploy/mpdeploy/cmd"
	"github.com/mpdeploy/mpdeploy/cmd/util"
)

func main() {
	defer util.HandlePanic()
	cmd.Execute()
}
