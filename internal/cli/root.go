// Package cli owns the command entrypoint: it receives the policy runner's
// positional parameters, drives the stage, build and execute steps, and maps
// each failure class to a distinct process exit code for the runner.
package cli

import (
	"errors"
	"fmt"
	"log"
	"os"
	"slices"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/primalcurve/better-jamf-printer-policy/internal/commands/jamf"
	"github.com/primalcurve/better-jamf-printer-policy/internal/commands/ppd"
	"github.com/primalcurve/better-jamf-printer-policy/internal/commands/printers"
	"github.com/primalcurve/better-jamf-printer-policy/internal/config"
)

// Exit codes reported to the policy runner, one per failure class.
const (
	ExitOK            = 0
	ExitInvalidParams = 1
	ExitMissingDriver = 2
	ExitStagingFailed = 3
	ExitInstallFailed = 4
	ExitRemovalFailed = 5
)

var configFile string

func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "printer-policy <mount> <endpoint> <user> <Add|Remove> <name> [options-csv] [device-uri] [ppd-path] [description] [ppd-event] [overwrite]",
		Short: "Installs or removes printer queues from policy parameters",
		Long: `printer-policy installs or removes a CUPS printer queue on a managed Mac.

It is meant to be executed by a Jamf policy, which passes its script
parameters positionally. The first three parameters (mount point, endpoint
name, username) are injected by Jamf and ignored.

Examples:
  printer-policy / mac01 jdoe Add Floor3-LaserA PageSize=Letter socket://10.1.2.3:9100/ /tmp/LaserA.ppd.gz "Floor 3 Copy Room" install_lasera_ppd overwrite
  printer-policy / mac01 jdoe Remove Floor3-LaserA`,
		Args:          cobra.RangeArgs(5, 11),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(args)
		},
	}

	cmd.Flags().StringVar(&configFile, "config", config.INI_CONFIG, "optional ini file overriding utility paths")
	return cmd
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	if err := NewRootCmd().Execute(); err != nil {
		log.Printf("[ERROR]: %v", err)
		return exitCodeFor(err)
	}
	return ExitOK
}

func run(args []string) error {
	runID := uuid.New().String()
	log.Printf("[INFO]: printer policy run %s has started", runID)

	paths := config.LoadPaths(configFile)

	params, err := config.FromPolicyArgs(args)
	if err != nil {
		jamf.NotifyError(paths, "")
		return err
	}

	switch params.Spec.Action {
	case config.ActionRemove:
		err = runRemove(paths, params)
	default:
		err = runInstall(paths, params)
	}

	if err != nil {
		jamf.NotifyError(paths, userMessage(err, params.Spec.Name))
		return err
	}

	log.Printf("[INFO]: printer policy run %s has finished", runID)
	return nil
}

func runInstall(paths config.Paths, params *config.RunParams) error {
	spec := params.Spec

	// The PPD package may not be on the endpoint yet. Trigger the delivery
	// policy once, then let the stager decide whether the driver is usable.
	if _, err := os.Stat(spec.PPDPath); err != nil && params.PolicyEvent != "" {
		if err := jamf.TriggerPolicy(paths, params.PolicyEvent); err != nil {
			log.Printf("[ERROR]: PPD delivery policy failed, reason: %v", err)
		}
	}

	staged, err := ppd.Stage(spec.PPDPath, paths.PPDDir, params.OverwritePPD)
	if err != nil {
		return err
	}

	if err := printers.Install(paths, spec, staged); err != nil {
		return err
	}

	if params.MakeDefault {
		// Best effort: the queue is installed either way.
		if err := printers.SetDefaultPrinter(paths, spec.Name); err != nil {
			log.Printf("[ERROR]: printer %q was installed but could not be made the default destination", spec.Name)
		}
	}

	log.Printf("[INFO]: the printer named %q was installed successfully", spec.Name)
	return nil
}

func runRemove(paths config.Paths, params *config.RunParams) error {
	name := params.Spec.Name

	installed, err := printers.InstalledPrinters(paths)
	if err != nil {
		return &printers.RemovalFailedError{Name: name, ExitCode: -1, Output: err.Error()}
	}

	if !slices.Contains(installed, name) {
		return &printers.RemovalFailedError{Name: name, ExitCode: -1, Output: "the printer is not installed"}
	}

	if err := printers.Remove(paths, name); err != nil {
		return err
	}

	log.Printf("[INFO]: the printer named %q has been removed", name)
	return nil
}

// exitCodeFor maps each failure class to its exit code so the policy runner
// can tell them apart.
func exitCodeFor(err error) int {
	var invalid *config.InvalidSpecError
	var missing *ppd.MissingDriverError
	var staging *ppd.StagingIOError
	var install *printers.InstallationFailedError
	var removal *printers.RemovalFailedError

	switch {
	case err == nil:
		return ExitOK
	case errors.As(err, &invalid):
		return ExitInvalidParams
	case errors.As(err, &missing):
		return ExitMissingDriver
	case errors.As(err, &staging):
		return ExitStagingFailed
	case errors.As(err, &install):
		return ExitInstallFailed
	case errors.As(err, &removal):
		return ExitRemovalFailed
	default:
		return ExitInvalidParams
	}
}

// userMessage builds the text shown in the jamfHelper dialog. Unlike the log,
// it is written for the person sitting at the Mac.
func userMessage(err error, name string) string {
	var missing *ppd.MissingDriverError
	var staging *ppd.StagingIOError
	var install *printers.InstallationFailedError
	var removal *printers.RemovalFailedError

	switch {
	case errors.As(err, &missing), errors.As(err, &staging):
		return fmt.Sprintf("The printer driver for %q could not be installed.\n\nPlease contact the Help Desk for further assistance.", name)
	case errors.As(err, &install):
		return fmt.Sprintf("The printer %q was not installed.\n\nPlease contact the Help Desk for further assistance.", name)
	case errors.As(err, &removal):
		return fmt.Sprintf("The printer %q was not removed.\n\nPlease contact the Help Desk for further assistance.", name)
	default:
		return ""
	}
}
