package printers

import (
	"slices"
	"testing"

	"github.com/primalcurve/better-jamf-printer-policy/internal/config"
)

func TestInstallArgs(t *testing.T) {
	tests := []struct {
		name    string
		spec    config.PrinterSpec
		ppdPath string
		want    []string
	}{
		{
			name: "full spec",
			spec: config.PrinterSpec{
				Name:        "Floor3-LaserA",
				DeviceURI:   "socket://10.1.2.3:9100/",
				Description: "Floor 3 Copy Room",
				Options:     []config.QueueOption{{Key: "PageSize", Value: "Letter"}},
				Action:      config.ActionInstall,
			},
			ppdPath: "/Library/Printers/PPDs/Contents/Resources/LaserA.ppd.gz",
			want: []string{
				"-p", "Floor3-LaserA",
				"-o", "PageSize=Letter",
				"-E",
				"-v", "socket://10.1.2.3:9100/",
				"-P", "/Library/Printers/PPDs/Contents/Resources/LaserA.ppd.gz",
				"-D", "Floor 3 Copy Room",
			},
		},
		{
			name: "empty description omits -D entirely",
			spec: config.PrinterSpec{
				Name:      "Lobby_Printer",
				DeviceURI: "lpd://10.0.0.5/queue",
				Action:    config.ActionInstall,
			},
			ppdPath: "/Library/Printers/PPDs/Contents/Resources/Lobby.ppd",
			want: []string{
				"-p", "Lobby_Printer",
				"-E",
				"-v", "lpd://10.0.0.5/queue",
				"-P", "/Library/Printers/PPDs/Contents/Resources/Lobby.ppd",
			},
		},
		{
			name: "options keep supplied order",
			spec: config.PrinterSpec{
				Name:      "Plotter",
				DeviceURI: "ipp://10.2.0.9/ipp/print",
				Options: []config.QueueOption{
					{Key: "PageSize", Value: "A3"},
					{Key: "Duplex", Value: "None"},
					{Key: "printer-is-shared", Value: "false"},
				},
				Action: config.ActionInstall,
			},
			ppdPath: "/Library/Printers/PPDs/Contents/Resources/Plotter.ppd",
			want: []string{
				"-p", "Plotter",
				"-o", "PageSize=A3",
				"-o", "Duplex=None",
				"-o", "printer-is-shared=false",
				"-E",
				"-v", "ipp://10.2.0.9/ipp/print",
				"-P", "/Library/Printers/PPDs/Contents/Resources/Plotter.ppd",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := InstallArgs(tt.spec, tt.ppdPath)
			if !slices.Equal(got, tt.want) {
				t.Errorf("InstallArgs() = %q; want %q", got, tt.want)
			}

			// The builder must be a pure function of its input.
			again := InstallArgs(tt.spec, tt.ppdPath)
			if !slices.Equal(got, again) {
				t.Errorf("InstallArgs() is not deterministic: %q vs %q", got, again)
			}

			if countFlag(got, "-p") != 1 || countFlag(got, "-E") != 1 || countFlag(got, "-v") != 1 || countFlag(got, "-P") != 1 {
				t.Errorf("InstallArgs() = %q; want exactly one -p, -E, -v and -P", got)
			}
			if countFlag(got, "-o") != len(tt.spec.Options) {
				t.Errorf("InstallArgs() has %d -o flags; want %d", countFlag(got, "-o"), len(tt.spec.Options))
			}
		})
	}
}

func TestRemoveArgs(t *testing.T) {
	got := RemoveArgs("Floor3-LaserA")
	want := []string{"-x", "Floor3-LaserA"}
	if !slices.Equal(got, want) {
		t.Errorf("RemoveArgs() = %q; want %q", got, want)
	}
	for _, flag := range []string{"-p", "-E", "-v", "-P", "-D", "-o"} {
		if slices.Contains(got, flag) {
			t.Errorf("RemoveArgs() contains install-only flag %s", flag)
		}
	}
}

func TestParseInstalledPrinters(t *testing.T) {
	out := "system default destination: Floor3-LaserA\n" +
		"device for Floor3-LaserA: socket://10.1.2.3:9100/\n" +
		"device for Lobby_Printer: lpd://10.0.0.5/queue\n"

	got := parseInstalledPrinters(out)
	want := []string{"Floor3-LaserA", "Lobby_Printer"}
	if !slices.Equal(got, want) {
		t.Errorf("parseInstalledPrinters() = %v; want %v", got, want)
	}

	if got := parseInstalledPrinters("no destinations added.\n"); len(got) != 0 {
		t.Errorf("parseInstalledPrinters() on empty listing = %v; want none", got)
	}
}

func countFlag(args []string, flag string) int {
	n := 0
	for _, a := range args {
		if a == flag {
			n++
		}
	}
	return n
}
