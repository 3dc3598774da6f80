package main

import (
	"os"

	"github.com/primalcurve/better-jamf-printer-policy/internal/cli"
	"github.com/primalcurve/better-jamf-printer-policy/internal/logger"
)

func main() {
	// instantiate logger
	l := logger.New()

	// run the policy action and surface its exit code to the policy runner
	code := cli.Execute()

	l.Close()
	os.Exit(code)
}
