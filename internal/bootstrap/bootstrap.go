package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/webarc/mhtx/internal/errdefs"
)

// Candidate installer executables, in priority order.
var candidates = []string{"pip3", "pip"}

// Libraries for the Python post-processing helpers, in install order.
var packages = []string{
	"lxml",
	"beautifulsoup",
	"filemagic",
	"rjsmin",
	"csscompressor",
	"pillow",
}

// criticalPackage is the one library the helpers cannot run without. Its
// install failure aborts the whole run.
const criticalPackage = "beautifulsoup"

const versionMarker = "python 3"

var lookPath = exec.LookPath

var runCommand = func(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

type Bootstrapper struct {
	logChan chan<- string
}

func NewBootstrapper(logChan chan<- string) *Bootstrapper {
	return &Bootstrapper{
		logChan: logChan,
	}
}

// ResolveInstaller returns the path of the first candidate found on PATH.
func (b *Bootstrapper) ResolveInstaller() (string, error) {
	for _, name := range candidates {
		if path, err := lookPath(name); err == nil {
			return path, nil
		}
	}
	return "", errdefs.ErrInstallerNotFound
}

// checkVersion queries the installer's version string and verifies it is
// associated with a Python 3 interpreter.
func (b *Bootstrapper) checkVersion(ctx context.Context, installer string) error {
	output, err := runCommand(ctx, installer, "--version")
	if err != nil {
		return errdefs.NewCustomError(errdefs.ErrTypeWrongInterpreter,
			fmt.Sprintf("could not query installer version: %v", err))
	}
	version := strings.TrimSpace(string(output))
	b.log("installer version: " + version)
	if !strings.Contains(strings.ToLower(version), versionMarker) {
		return errdefs.NewCustomError(errdefs.ErrTypeWrongInterpreter,
			fmt.Sprintf("installer is not associated with python 3: %q", version))
	}
	return nil
}

// Run resolves the installer, validates it, and installs the helper
// libraries sequentially. A failure of the critical package aborts the run
// and carries the installer's exit status; other failures are logged and
// skipped.
func (b *Bootstrapper) Run(ctx context.Context) error {
	installer, err := b.ResolveInstaller()
	if err != nil {
		return err
	}
	b.log("using installer: " + installer)

	if err := b.checkVersion(ctx, installer); err != nil {
		return err
	}

	for _, pkg := range packages {
		b.log("installing " + pkg)
		output, err := runCommand(ctx, installer, "install", pkg)
		if err == nil {
			continue
		}
		if pkg == criticalPackage {
			if out := strings.TrimSpace(string(output)); out != "" {
				b.log(out)
			}
			return &errdefs.CustomError{
				Type:    errdefs.ErrTypeInstallFailed,
				Message: fmt.Sprintf("failed to install %s: %v", pkg, err),
				Code:    exitCode(err),
			}
		}
		b.log(fmt.Sprintf("warning: install of %s failed, continuing: %v", pkg, err))
	}

	b.log("bootstrap complete")
	return nil
}

func exitCode(err error) int {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && exitErr.ExitCode() > 0 {
		return exitErr.ExitCode()
	}
	return 1
}

func (b *Bootstrapper) log(message string) {
	if b.logChan != nil {
		b.logChan <- message
	}
}
