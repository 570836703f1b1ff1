/*
Copyright © 2026 James Lawson (jpl-au) <hello@caelisco.net>
*/

// init_extensions.go handles extension initialisation and command registration.
//
// Extensions register during init() but aren't initialised until the
// first command that needs records runs. The service is created once,
// shared across all extensions via the Context and closed by Execute.

package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/jpl-au/fermi/extension"
	"github.com/jpl-au/fermi/internal/collection"
	"github.com/jpl-au/fermi/internal/config"
	"github.com/jpl-au/fermi/internal/ferment"
)

// noStoreCommands lists commands that bypass automatic service creation.
// Built from bootstrap commands plus extension-declared storeless commands.
var noStoreCommands map[string]bool

// buildNoStoreCommands creates the set of commands that skip loading.
//
// Most commands need the record service, but help and configuration must
// work when the storage root is missing or misconfigured. Extensions add
// their own through the Storeless interface.
func buildNoStoreCommands() map[string]bool {
	cmds := map[string]bool{
		"help":       true,
		"completion": true,
	}

	for _, ext := range extension.All() {
		if s, ok := ext.(extension.Storeless); ok {
			for _, name := range s.NoStoreCommands() {
				cmds[name] = true
			}
		}
	}

	return cmds
}

var (
	extContext extension.Context
	extService *ferment.Service
	initOnce   sync.Once
	initErr    error
)

// loadConfig reads FERMI_CONFIG when set, otherwise the local or global
// config file.
func loadConfig() (*config.Config, error) {
	if p := os.Getenv("FERMI_CONFIG"); p != "" {
		return config.LoadFile(p)
	}
	return config.Load()
}

// initExtensions creates the record service and injects it into extensions.
//
// A storage root that cannot be created fails the command. Records that
// fail to load do not: they are reported on stderr and left for prune.
func initExtensions() error {
	initOnce.Do(func() {
		cfg, err := loadConfig()
		if err != nil {
			initErr = err
			return
		}
		provider := config.NewProvider(cfg)
		if r := Root(); r != "" {
			provider.SetRootOverride(r)
		}

		svc, err := ferment.New(context.Background(), provider, ferment.Options{Notify: notify})
		if err != nil {
			initErr = fmt.Errorf("open storage: %w", err)
			return
		}
		extService = svc

		extContext = extension.NewContext(svc, provider)
		svc.Collection().Subscribe(func(ch collection.Change) {
			if e, ok := extension.EventFromChange(ch); ok {
				extension.Dispatch(extContext, e)
			}
		})

		for _, ext := range extension.All() {
			if init, ok := ext.(extension.Initializable); ok {
				if err := init.Init(extContext); err != nil {
					initErr = fmt.Errorf("init extension %s: %w", ext.Name(), err)
					return
				}
			}
		}
	})
	return initErr
}

// notify prints load failures to stderr so stdout stays parseable.
// MutationFailed is not printed: every command waits on its writes and
// returns the failure itself.
func notify(n collection.Notice) {
	if n.Kind == collection.LoadFailed {
		fmt.Fprintf(os.Stderr, "warning: %d record(s) failed to load: %s\n  run 'fermi prune' to delete them\n",
			n.Count, strings.Join(n.IDs, ", "))
	}
}

// closeService waits for pending writes. Safe when no service was created.
func closeService() error {
	if extService == nil {
		return nil
	}
	return extService.Close()
}

var extensionsOnce sync.Once

// registerExtensions adds commands from all registered extensions.
// Called once before Execute runs.
func registerExtensions() {
	extensionsOnce.Do(func() {
		for _, ext := range extension.All() {
			for _, cmd := range ext.Commands() {
				rootCmd.AddCommand(cmd)
			}
		}
		noStoreCommands = buildNoStoreCommands()
	})
}
