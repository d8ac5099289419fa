// Package setup installs and runs node-sonos-http-api, the bridge the sonos package
// talks to.
package setup

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/adrg/xdg"

	"vibify/internal/output"
)

const repoURL = "https://github.com/jishi/node-sonos-http-api.git"

// Runner executes an external command in dir. Tests replace it.
type Runner func(ctx context.Context, dir string, name string, args ...string) error

type Bridge struct {
	Dir    string
	Run    Runner
	Stdout io.Writer
	Stderr io.Writer
}

func NewBridge() *Bridge {
	b := &Bridge{Dir: InstallDir(), Stdout: os.Stdout, Stderr: os.Stderr}
	b.Run = b.exec
	return b
}

// InstallDir is where the bridge is cloned, under the XDG data home.
func InstallDir() string {
	return filepath.Join(xdg.DataHome, "vibify", "node-sonos-http-api")
}

func (b *Bridge) exec(ctx context.Context, dir string, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	cmd.Stdout = b.Stdout
	cmd.Stderr = b.Stderr
	cmd.Cancel = func() error { return cmd.Process.Signal(os.Interrupt) }
	return cmd.Run()
}

// Install clones the bridge, or pulls when a checkout already exists, then installs
// its node dependencies.
func (b *Bridge) Install(ctx context.Context, out *output.Output) error {
	if stat, err := os.Stat(b.Dir); err == nil && stat.IsDir() {
		out.Info("Updating " + b.Dir + "...")
		if err := b.Run(ctx, b.Dir, "git", "pull", "--ff-only"); err != nil {
			out.Warn("Could not pull updates, continuing with the existing checkout")
		}
	} else {
		if err := os.MkdirAll(filepath.Dir(b.Dir), 0o755); err != nil {
			return err
		}
		out.Info("Cloning node-sonos-http-api to " + b.Dir + "...")
		if err := b.Run(ctx, "", "git", "clone", "--depth", "1", repoURL, b.Dir); err != nil {
			return fmt.Errorf("clone bridge: %w", err)
		}
	}

	out.Info("Installing dependencies...")
	if err := b.Run(ctx, b.Dir, "npm", "install", "--omit=dev"); err != nil {
		return fmt.Errorf("npm install: %w", err)
	}
	return nil
}

// Serve runs the bridge in the foreground until ctx is cancelled.
func (b *Bridge) Serve(ctx context.Context, out *output.Output) error {
	out.Info("Starting node-sonos-http-api (Ctrl-C to stop)")
	err := b.Run(ctx, b.Dir, "node", "server.js")
	if ctx.Err() != nil {
		out.Warn("Bridge stopped")
		return ctx.Err()
	}
	return err
}

// PrintInstructions explains how to get the bridge running at url.
func PrintInstructions(out *output.Output, url string) {
	out.Error("Could not reach node-sonos-http-api at " + url)
	out.Print("Importing to Sonos needs the bridge running on your network.")
	out.Print("Set it up and start it with:")
	out.Print("  vibify bridge")
	out.Print("Or start an existing install:")
	out.Print("  cd " + InstallDir() + " && node server.js")
	out.Print("Point vibify elsewhere with SONOS_API_URL or [sonos] url in config.toml.")
}
