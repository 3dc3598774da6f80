// Package config turns the policy runner's parameters into a validated,
// immutable printer spec and holds the endpoint paths the run depends on.
package config

import (
	"fmt"
	"log"
	"os"
	"strings"

	"gopkg.in/ini.v1"
)

// INI_CONFIG is the optional override file for utility locations on
// non-standard images. Its absence is the normal case.
const INI_CONFIG = "/usr/local/etc/printer-policy.ini"

type Action int

const (
	ActionInstall Action = iota
	ActionRemove
)

func (a Action) String() string {
	if a == ActionRemove {
		return "remove"
	}
	return "install"
}

// QueueOption is one -o key=value pair for lpadmin. Options are kept as a
// slice so they reach the command line in the order the runner supplied them.
type QueueOption struct {
	Key   string
	Value string
}

func (o QueueOption) String() string {
	return o.Key + "=" + o.Value
}

// PrinterSpec describes one queue action. It is built once per run from the
// policy runner's parameters and never persisted.
type PrinterSpec struct {
	Name        string
	DeviceURI   string
	PPDPath     string
	Description string
	Options     []QueueOption
	Action      Action
}

// RunParams carries the printer spec plus runner-only parameters that steer the
// run but are not part of the lpadmin invocation itself.
type RunParams struct {
	Spec         PrinterSpec
	PolicyEvent  string
	OverwritePPD bool
	MakeDefault  bool
}

type InvalidSpecError struct {
	Reason string
}

func (e *InvalidSpecError) Error() string {
	return "invalid printer parameters: " + e.Reason
}

// Validate checks the per-action required fields.
func (s *PrinterSpec) Validate() error {
	if s.Name == "" {
		return &InvalidSpecError{Reason: "printer name is required"}
	}
	if s.Action == ActionInstall {
		if s.DeviceURI == "" {
			return &InvalidSpecError{Reason: "device URI is required to install a printer"}
		}
		if s.PPDPath == "" {
			return &InvalidSpecError{Reason: "PPD path is required to install a printer"}
		}
	}
	return nil
}

// FromPolicyArgs builds the run parameters from the positional parameters the
// policy runner passes to every script: three runner-injected values (mount
// point, endpoint name, user) that are ignored, then mode, printer name,
// options CSV, device URI, PPD path, description, PPD policy event and the
// overwrite selector. Trailing parameters may be omitted.
func FromPolicyArgs(args []string) (*RunParams, error) {
	if len(args) < 5 {
		return nil, &InvalidSpecError{Reason: fmt.Sprintf("expected at least 5 parameters, got %d", len(args))}
	}

	// args[0:3] are the runner's mount point, endpoint name and username.
	mode := args[3]
	params := RunParams{OverwritePPD: true}
	params.Spec.Name = strings.TrimSpace(args[4])

	switch strings.ToLower(mode) {
	case "add", "install":
		params.Spec.Action = ActionInstall
	case "remove":
		params.Spec.Action = ActionRemove
	default:
		return nil, &InvalidSpecError{Reason: fmt.Sprintf("unknown mode %q, expected Add or Remove", mode)}
	}

	rest := args[5:]
	get := func(i int) string {
		if i < len(rest) {
			return strings.TrimSpace(rest[i])
		}
		return ""
	}

	opts, makeDefault, err := ParseOptionsCSV(get(0))
	if err != nil {
		return nil, err
	}
	params.Spec.Options = opts
	params.MakeDefault = makeDefault
	params.Spec.DeviceURI = get(1)
	params.Spec.PPDPath = get(2)
	params.Spec.Description = get(3)
	params.PolicyEvent = get(4)
	if ow := get(5); ow != "" && !strings.EqualFold(ow, "overwrite") {
		params.OverwritePPD = false
	}

	if err := params.Spec.Validate(); err != nil {
		return nil, err
	}
	return &params, nil
}

// ParseOptionsCSV splits the runner's Key=Value,Key2=Value2 parameter into an
// ordered option list. Queues managed through policy are never shared, so
// printer-is-shared=false is always appended. The pseudo-option default=true
// is not an lpadmin option; it is extracted and reported separately.
func ParseOptionsCSV(csv string) ([]QueueOption, bool, error) {
	opts := []QueueOption{}
	makeDefault := false

	if csv != "" {
		for _, entry := range strings.Split(csv, ",") {
			entry = strings.TrimSpace(entry)
			if entry == "" {
				continue
			}
			key, value, found := strings.Cut(entry, "=")
			if !found || key == "" {
				return nil, false, &InvalidSpecError{Reason: fmt.Sprintf("malformed printer option %q, expected Key=Value", entry)}
			}
			if strings.EqualFold(key, "default") {
				makeDefault = strings.EqualFold(value, "true")
				continue
			}
			opts = append(opts, QueueOption{Key: key, Value: value})
		}
	}

	opts = append(opts, QueueOption{Key: "printer-is-shared", Value: "false"})
	return opts, makeDefault, nil
}

// Paths locates the endpoint binaries and the CUPS driver directory.
type Paths struct {
	LPAdmin    string
	LPStat     string
	LPOptions  string
	Jamf       string
	JamfHelper string
	Launchctl  string
	PPDDir     string
}

func DefaultPaths() Paths {
	return Paths{
		LPAdmin:    "/usr/sbin/lpadmin",
		LPStat:     "/usr/bin/lpstat",
		LPOptions:  "/usr/bin/lpoptions",
		Jamf:       "/usr/local/bin/jamf",
		JamfHelper: "/Library/Application Support/JAMF/bin/jamfHelper.app/Contents/MacOS/jamfHelper",
		Launchctl:  "/bin/launchctl",
		PPDDir:     "/Library/Printers/PPDs/Contents/Resources",
	}
}

// LoadPaths returns the default paths, overridden by the [Paths] section of
// the ini file when one exists.
func LoadPaths(configFile string) Paths {
	paths := DefaultPaths()

	if _, err := os.Stat(configFile); err != nil {
		return paths
	}

	cfg, err := ini.Load(configFile)
	if err != nil {
		log.Printf("[ERROR]: could not read config file %s, using default paths, reason: %v", configFile, err)
		return paths
	}

	section := cfg.Section("Paths")
	override := func(dst *string, key string) {
		if v := section.Key(key).String(); v != "" {
			*dst = v
		}
	}
	override(&paths.LPAdmin, "LPAdmin")
	override(&paths.LPStat, "LPStat")
	override(&paths.LPOptions, "LPOptions")
	override(&paths.Jamf, "Jamf")
	override(&paths.JamfHelper, "JamfHelper")
	override(&paths.Launchctl, "Launchctl")
	override(&paths.PPDDir, "PPDDir")
	return paths
}
