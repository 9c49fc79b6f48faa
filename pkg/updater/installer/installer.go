// Package installer hands downloaded artifacts over to the platform's
// package installer and answers the unknown-sources permission query that
// gates the handoff.
package installer

import (
	"errors"
	"os/exec"
	"slices"

	log "github.com/sirupsen/logrus"
	"github.com/skratchdot/open-golang/open"
)

// Installer abstracts the OS package-install surface.
type Installer interface {
	// UnknownSourcesAllowed reports whether the OS permits installing
	// packages from unknown sources. known is false when the answer could
	// not be determined; in that case the install is attempted anyway.
	UnknownSourcesAllowed() (allowed, known bool)
	// Install hands the artifact at path to the platform installer. It does
	// not wait for installation to complete.
	Install(path string) error
	// OpenInstallSettings brings up the OS settings surface where the user
	// can grant the unknown-sources permission.
	OpenInstallSettings() error
}

// ExecInstaller invokes the platform installer through configured commands.
type ExecInstaller struct {
	// InstallCommand is the installer argv; the artifact path is appended.
	InstallCommand []string
	// ProbeCommand is an optional permission probe. Exit status 0 means
	// unknown-sources installs are allowed, any other exit status means
	// denied. When empty the permission state is reported as unknown.
	ProbeCommand []string
	// SettingsTarget is the URI or path opened to reach the settings surface.
	SettingsTarget string
}

func (e *ExecInstaller) UnknownSourcesAllowed() (allowed, known bool) {
	if len(e.ProbeCommand) == 0 {
		return false, false
	}
	err := exec.Command(e.ProbeCommand[0], e.ProbeCommand[1:]...).Run()
	if err == nil {
		return true, true
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return false, true
	}
	log.WithError(err).Warn("permission probe did not run, treating permission state as unknown")
	return false, false
}

func (e *ExecInstaller) Install(path string) error {
	if len(e.InstallCommand) == 0 {
		return errors.New("no install command configured")
	}
	args := append(slices.Clone(e.InstallCommand[1:]), path)
	cmd := exec.Command(e.InstallCommand[0], args...)
	if err := cmd.Start(); err != nil {
		return err
	}
	// the platform installer UI takes over from here
	go func() {
		if err := cmd.Wait(); err != nil {
			log.WithError(err).Warn("installer process exited with an error")
		}
	}()
	return nil
}

func (e *ExecInstaller) OpenInstallSettings() error {
	return open.Run(e.SettingsTarget)
}
