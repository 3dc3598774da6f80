// Package printers wraps the CUPS administration utilities. It builds the
// lpadmin argument vectors for queue installation and removal and runs them.
package printers

import (
	"errors"
	"fmt"
	"log"
	"os/exec"
	"regexp"
	"strings"

	"github.com/primalcurve/better-jamf-printer-policy/internal/config"
)

// InstallationFailedError reports a non-zero lpadmin exit while installing a
// queue. Output is the utility's combined stdout/stderr, passed through
// without interpretation.
type InstallationFailedError struct {
	Name     string
	ExitCode int
	Output   string
}

func (e *InstallationFailedError) Error() string {
	return fmt.Sprintf("lpadmin could not install printer %q (exit code %d): %s", e.Name, e.ExitCode, strings.TrimSpace(e.Output))
}

// RemovalFailedError reports a failed queue removal, either because lpadmin
// returned non-zero or because the queue was not installed to begin with.
type RemovalFailedError struct {
	Name     string
	ExitCode int
	Output   string
}

func (e *RemovalFailedError) Error() string {
	return fmt.Sprintf("could not remove printer %q (exit code %d): %s", e.Name, e.ExitCode, strings.TrimSpace(e.Output))
}

// InstallArgs builds the lpadmin argument vector for an install action.
// The vector is a pure function of its inputs: -p first, one -o per option
// in supplied order, -E, -v, -P, and -D only when a description was given.
func InstallArgs(spec config.PrinterSpec, ppdPath string) []string {
	args := []string{"-p", spec.Name}
	for _, opt := range spec.Options {
		args = append(args, "-o", opt.String())
	}
	args = append(args, "-E", "-v", spec.DeviceURI, "-P", ppdPath)
	if spec.Description != "" {
		args = append(args, "-D", spec.Description)
	}
	return args
}

// RemoveArgs builds the lpadmin argument vector for a removal action.
func RemoveArgs(name string) []string {
	return []string{"-x", name}
}

// Install registers the queue with CUPS. ppdPath must point at the staged
// driver file. Blocks until lpadmin returns; no timeout is applied.
func Install(paths config.Paths, spec config.PrinterSpec, ppdPath string) error {
	args := InstallArgs(spec, ppdPath)
	log.Printf("[INFO]: installing printer %q, using command %s %s", spec.Name, paths.LPAdmin, strings.Join(args, " "))

	out, err := exec.Command(paths.LPAdmin, args...).CombinedOutput()
	if err != nil {
		return &InstallationFailedError{Name: spec.Name, ExitCode: exitCode(err), Output: string(out)}
	}

	log.Printf("[INFO]: lpadmin has installed printer %q", spec.Name)
	return nil
}

// Remove unregisters the queue from CUPS.
func Remove(paths config.Paths, name string) error {
	args := RemoveArgs(name)
	log.Printf("[INFO]: removing printer %q, using command %s %s", name, paths.LPAdmin, strings.Join(args, " "))

	out, err := exec.Command(paths.LPAdmin, args...).CombinedOutput()
	if err != nil {
		return &RemovalFailedError{Name: name, ExitCode: exitCode(err), Output: string(out)}
	}

	log.Printf("[INFO]: lpadmin has removed printer %q", name)
	return nil
}

// SetDefaultPrinter makes the queue the endpoint's default destination.
func SetDefaultPrinter(paths config.Paths, name string) error {
	out, err := exec.Command(paths.LPOptions, "-d", name).CombinedOutput()
	if err != nil {
		log.Printf("[ERROR]: could not set %q as default printer, reason: %v, output: %s", name, err, strings.TrimSpace(string(out)))
		return err
	}
	log.Printf("[INFO]: printer %q is now the default destination", name)
	return nil
}

var installedQueueRegex = regexp.MustCompile(`device for (.*): `)

// InstalledPrinters returns the names of the queues CUPS currently knows,
// parsed from lpstat -s output.
func InstalledPrinters(paths config.Paths) ([]string, error) {
	out, err := exec.Command(paths.LPStat, "-s").CombinedOutput()
	if err != nil {
		log.Printf("[ERROR]: could not list installed printers, reason: %v", err)
		return nil, fmt.Errorf("could not list installed printers: %w", err)
	}
	return parseInstalledPrinters(string(out)), nil
}

func parseInstalledPrinters(out string) []string {
	names := []string{}
	for _, match := range installedQueueRegex.FindAllStringSubmatch(out, -1) {
		names = append(names, match[1])
	}
	return names
}

func exitCode(err error) int {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}
