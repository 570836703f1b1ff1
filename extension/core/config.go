// config.go implements the "fermi config" command.
//
// Config follows a cascade model similar to git: local config
// (.fermi/config.json) takes precedence over global (~/.fermi/config.json).
// The --local flag forces local config even if it doesn't exist yet.

package core

import (
	"fmt"
	"os"

	"github.com/jpl-au/fermi/cmd"
	"github.com/jpl-au/fermi/extension"
	"github.com/jpl-au/fermi/internal/config"
	"github.com/jpl-au/fermi/internal/log"
	"github.com/spf13/cobra"
)

func newConfigCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "config [key] [value]",
		Short: "View or set config values",
		Long: `View or set config values.

  fermi config                       # show config
  fermi config backups.max           # show one value
  fermi config backups.max 5         # set a value
  fermi config storage.root --unset  # back to the default

Keys:
  storage.root   absolute directory holding one folder per record
                 (default: <Documents>/fermi)
  backups.max    backups kept per record, 1-20 (default: 3)

Configuration locations:
  Global: ~/.fermi/config.json
  Local:  .fermi/config.json

Uses local config if it exists, otherwise global. FERMI_CONFIG names an
explicit file. Writes go to the same place reads come from.`,
		Args: cobra.MaximumNArgs(2),
		RunE: runConfig,
	}
	c.Flags().Bool(extension.FlagLocal, false, "Use local config (.fermi/config.json)")
	c.Flags().Bool(extension.FlagUnset, false, "Remove the key, restoring its default")
	return c
}

func runConfig(c *cobra.Command, args []string) error {
	forceLocal, _ := c.Flags().GetBool(extension.FlagLocal)
	unset, _ := c.Flags().GetBool(extension.FlagUnset)

	var cfg *config.Config
	var err error
	switch {
	case forceLocal:
		cfg, err = config.LoadScope(config.ScopeLocal)
	case os.Getenv("FERMI_CONFIG") != "":
		cfg, err = config.LoadFile(os.Getenv("FERMI_CONFIG"))
	default:
		cfg, err = config.Load()
	}
	if err != nil {
		return cmd.PrintJSONError(fmt.Errorf("config load: %w", err))
	}
	scope := cfg.Scope().String()

	if unset {
		if len(args) != 1 {
			return cmd.PrintJSONError(fmt.Errorf("--unset takes exactly one key"))
		}
		err := cfg.Unset(args[0])
		if err == nil {
			err = cfg.Save()
		}
		log.Event("core:config", "unset").Actor(cmd.Actor()).Detail("key", args[0]).Detail("scope", scope).Write(err)
		if err != nil {
			return cmd.PrintJSONError(fmt.Errorf("config unset %q: %w", args[0], err))
		}
		if cmd.JSON() {
			return cmd.PrintJSON(map[string]string{"key": args[0], "scope": scope})
		}
		fmt.Fprintf(cmd.Out(), "%s unset (%s)\n", args[0], scope)
		return nil
	}

	switch len(args) {
	case 0:
		all := cfg.All()
		log.Event("core:config", "list").Actor(cmd.Actor()).Write(nil)
		if cmd.JSON() {
			return cmd.PrintJSON(all)
		}
		for _, k := range config.ValidKeys() {
			fmt.Fprintf(cmd.Out(), "%s: %s\n", k, all[k])
		}

	case 1:
		v, err := cfg.Get(args[0])
		log.Event("core:config", "get").Actor(cmd.Actor()).Detail("key", args[0]).Write(err)
		if err != nil {
			return cmd.PrintJSONError(fmt.Errorf("config get %q: %w", args[0], err))
		}
		if cmd.JSON() {
			return cmd.PrintJSON(map[string]string{args[0]: v})
		}
		fmt.Fprintln(cmd.Out(), v)

	case 2:
		if err := cfg.Set(args[0], args[1]); err != nil {
			log.Event("core:config", "set").Actor(cmd.Actor()).Detail("key", args[0]).Write(err)
			return cmd.PrintJSONError(fmt.Errorf("config set %q: %w", args[0], err))
		}

		saveErr := cfg.Save()
		log.Event("core:config", "set").Actor(cmd.Actor()).Detail("key", args[0]).Detail("scope", scope).Write(saveErr)
		if saveErr != nil {
			return cmd.PrintJSONError(fmt.Errorf("config save: %w", saveErr))
		}
		if cmd.JSON() {
			return cmd.PrintJSON(map[string]string{"key": args[0], "value": args[1], "scope": scope})
		}
		fmt.Fprintf(cmd.Out(), "%s = %s (%s)\n", args[0], args[1], scope)
	}
	return nil
}
