//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

import (
	"os"
	"slices"
	"strings"

	"github.com/mitchellh/go-ps"
)

// gameExecutables are process names of the game and common launchers.
//
//nolint:gochecknoglobals // Read-only lookup table.
var gameExecutables = []string{
	"java",
	"java.exe",
	"javaw",
	"javaw.exe",
	"minecraft-launcher",
	"minecraftlauncher.exe",
	"prismlauncher",
	"prismlauncher.exe",
	"multimc",
	"multimc.exe",
}

// ProcessLister returns the processes currently running.
type ProcessLister func() ([]ps.Process, error)

// RunningGameProcesses returns the names of running processes that look like
// the game or a launcher, excluding this process.
func RunningGameProcesses(list ProcessLister) ([]string, error) {
	if list == nil {
		list = ps.Processes
	}

	processList, err := list()
	if err != nil {
		return nil, err
	}

	thisProcessID := os.Getpid()

	var found []string

	for _, process := range processList {
		if process.Pid() == thisProcessID {
			continue
		}

		name := strings.ToLower(process.Executable())
		if !slices.Contains(gameExecutables, name) || slices.Contains(found, name) {
			continue
		}

		found = append(found, name)
	}

	slices.Sort(found)

	return found, nil
}
