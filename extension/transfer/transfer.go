// Package transfer provides the export and import commands, moving
// records between the store and plain YAML or JSON files.
package transfer

import (
	"fmt"
	"io"
	"strings"

	"github.com/jpl-au/fermi/cmd"
	"github.com/jpl-au/fermi/extension"
	"github.com/jpl-au/fermi/internal/exporter"
	"github.com/jpl-au/fermi/internal/importer"
	"github.com/jpl-au/fermi/internal/log"
	"github.com/jpl-au/fermi/internal/ls"
	"github.com/jpl-au/fermi/internal/record"
	"github.com/jpl-au/fermi/internal/service"
	"github.com/spf13/cobra"
)

func init() {
	extension.Register(&Extension{})
}

// Extension implements the transfer extension.
type Extension struct {
	svc service.Service
}

var (
	_ extension.Extension     = (*Extension)(nil)
	_ extension.Initializable = (*Extension)(nil)
)

// Name returns "transfer".
func (e *Extension) Name() string { return "transfer" }

// Init connects to the shared service.
func (e *Extension) Init(ctx extension.Context) error {
	e.svc = ctx.Service()
	return nil
}

// Commands returns export and import.
func (e *Extension) Commands() []*cobra.Command {
	return []*cobra.Command{
		e.newExportCmd(),
		e.newImportCmd(),
	}
}

// MCPTools returns nil.
func (e *Extension) MCPTools() []extension.MCPTool {
	return nil
}

func (e *Extension) newExportCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "export <dir>",
		Short: "Export records to YAML or JSON files",
		Long: `Write one file per record, named <id>.yaml or <id>.json, into dir.

  fermi export ./backup
  fermi export ./done --state completed --format json
  fermi export ./crock --where 'container == "Crock"'

Existing files are not overwritten unless --force is given.`,
		Args: cobra.ExactArgs(1),
		RunE: e.runExport,
	}
	c.Flags().StringP(extension.FlagFormat, "F", exporter.FormatYAML, "File format: yaml, json")
	c.Flags().BoolP(extension.FlagForce, "f", false, "Overwrite existing files")
	c.Flags().String(extension.FlagState, "", "Only records in this state")
	c.Flags().StringP(extension.FlagWhere, "w", "", "Only records matching the expression")

	_ = c.RegisterFlagCompletionFunc(extension.FlagFormat, func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{exporter.FormatYAML, exporter.FormatJSON}, cobra.ShellCompDirectiveNoFileComp
	})
	return c
}

func (e *Extension) runExport(c *cobra.Command, args []string) error {
	ctx := c.Context()
	dst := args[0]

	var opts exporter.Options
	opts.Format, _ = c.Flags().GetString(extension.FlagFormat)
	opts.Format = strings.ToLower(opts.Format)
	opts.Force, _ = c.Flags().GetBool(extension.FlagForce)
	state, _ := c.Flags().GetString(extension.FlagState)
	where, _ := c.Flags().GetString(extension.FlagWhere)

	spec, err := ls.Spec(ls.Options{State: record.State(state), Where: where, Sort: "createdAt", Today: cmd.TodayDate()})
	if err != nil {
		return cmd.PrintJSONError(fmt.Errorf("export: %w", err))
	}
	opts.Spec = spec

	w := cmd.Out()
	if cmd.JSON() {
		w = io.Discard
	}

	result, err := exporter.Run(ctx, w, e.svc, dst, opts)

	log.Event("transfer:export", "export").
		Actor(cmd.Actor()).
		Detail("dest", dst).
		Detail("format", opts.Format).
		Detail("count", result.Exported).
		Write(err)

	if err != nil {
		return cmd.PrintJSONError(fmt.Errorf("export to %q: %w", dst, err))
	}
	return cmd.PrintJSON(result)
}

func (e *Extension) newImportCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "import <path>",
		Short: "Import records from YAML or JSON files",
		Long: `Import a single .yaml, .yml or .json file, or every such file under a
directory. Each file must hold one record in the stored format; files that
do not are reported and skipped.

Records whose id already exists are refused unless --replace is given, in
which case they are updated (the previous version becomes backup 1).`,
		Args: cobra.ExactArgs(1),
		RunE: e.runImport,
	}
	c.Flags().Bool(extension.FlagReplace, false, "Replace records whose id already exists")
	c.Flags().Bool(extension.FlagIncludeHidden, false, "Include hidden files and directories")
	c.Flags().BoolP(extension.FlagDryRun, "n", false, "Parse and report without importing")
	return c
}

func (e *Extension) runImport(c *cobra.Command, args []string) error {
	ctx := c.Context()
	src := args[0]

	var opts importer.Options
	opts.Replace, _ = c.Flags().GetBool(extension.FlagReplace)
	opts.Hidden, _ = c.Flags().GetBool(extension.FlagIncludeHidden)
	opts.DryRun, _ = c.Flags().GetBool(extension.FlagDryRun)

	w := cmd.Out()
	if cmd.JSON() {
		w = io.Discard
	}

	result, err := importer.Run(ctx, w, e.svc, src, opts)

	log.Event("transfer:import", "import").
		Actor(cmd.Actor()).
		Detail("source", src).
		Detail("dry_run", opts.DryRun).
		Detail("count", result.Imported).
		Detail("failed", len(result.Failed)).
		Write(err)

	if err != nil {
		return cmd.PrintJSONError(fmt.Errorf("import from %q: %w", src, err))
	}
	if err := cmd.PrintJSON(result); err != nil {
		return err
	}
	if len(result.Failed) > 0 {
		if cmd.JSON() {
			return cmd.ErrReported
		}
		return fmt.Errorf("%d file(s) not imported", len(result.Failed))
	}
	return nil
}
