// Package runtime resolves the console user so commands can be run in the
// user's context with launchctl asuser.
package runtime

import (
	"os/exec"
	"os/user"
	"strings"
)

// GetConsoleUser returns the username that owns the console. An empty name
// means nobody is logged in at the console (or the login window is up).
func GetConsoleUser() (string, error) {
	cmd := "stat -f '%Su' /dev/console"
	out, err := exec.Command("bash", "-c", cmd).Output()
	if err != nil {
		return "", err
	}

	username := strings.TrimSpace(string(out))
	if username == "root" || username == "_mbsetupuser" || username == "loginwindow" {
		return "", nil
	}
	return username, nil
}

// GetConsoleUserUID returns the uid of the console user as a string, ready
// for launchctl asuser. Empty when nobody is at the console.
func GetConsoleUserUID() (string, error) {
	username, err := GetConsoleUser()
	if err != nil || username == "" {
		return "", err
	}

	u, err := user.Lookup(username)
	if err != nil {
		return "", err
	}
	return u.Uid, nil
}
