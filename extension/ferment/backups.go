// backups.go implements the commands over a record's backup slots:
// history, diff and restore.
//
// Every write rotates the previous data.json into backup_1.json, so slot
// 1 is the newest backup and slot 0 names the current file.

package ferment

import (
	"fmt"
	"io"

	"github.com/jpl-au/fermi/cmd"
	"github.com/jpl-au/fermi/extension"
	"github.com/jpl-au/fermi/internal/diff"
	"github.com/jpl-au/fermi/internal/history"
	"github.com/jpl-au/fermi/internal/log"
	"github.com/jpl-au/fermi/internal/revert"
	"github.com/spf13/cobra"
)

func (e *Extension) newHistoryCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "history <id>",
		Short: "List a record's backups",
		Long: `List the backups kept for a record, newest first. With --diff each
backup is compared with the revision that replaced it.`,
		Args: cobra.ExactArgs(1),
		RunE: e.runHistory,
	}
	c.Flags().IntP(extension.FlagLimit, "n", 0, "Limit number of backups shown")
	c.Flags().BoolP(extension.FlagDiff, "d", false, "Show diffs between revisions")
	c.Flags().Bool(extension.FlagRaw, false, "Output without colour")
	return c
}

func (e *Extension) runHistory(c *cobra.Command, args []string) error {
	ctx := c.Context()
	limit, _ := c.Flags().GetInt(extension.FlagLimit)
	showDiff, _ := c.Flags().GetBool(extension.FlagDiff)
	raw, _ := c.Flags().GetBool(extension.FlagRaw)

	if limit < 0 {
		return cmd.PrintJSONError(fmt.Errorf("limit must be >= 0, got %d", limit))
	}

	l := log.Event("ferment:history", "history").Actor(cmd.Actor()).Record(args[0])
	id, err := resolve(ctx, e.svc, args[0])
	if err != nil {
		l.Write(err)
		return cmd.PrintJSONError(fmt.Errorf("history %q: %w", args[0], err))
	}

	w := cmd.Out()
	if cmd.JSON() {
		w = io.Discard
	}
	opts := history.Options{
		Limit:    limit,
		ShowDiff: showDiff,
		Colour:   !raw && cmd.Terminal(),
	}

	result, err := history.Run(ctx, w, e.svc, id, opts)
	l.Record(id).Detail("count", len(result.Backups)).Write(err)
	if err != nil {
		return cmd.PrintJSONError(fmt.Errorf("history %q: %w", id, err))
	}
	return cmd.PrintJSON(result)
}

func (e *Extension) newDiffCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "diff <id>",
		Short: "Show differences between revisions",
		Long: `Show differences between two revisions of a record. Slot 0 is the
current file, 1 the newest backup.

Examples:
  fermi diff abc123              # backup 1 against the current file
  fermi diff abc123 --slots 3    # backup 3 against the current file
  fermi diff abc123 --slots 3:2  # backup 3 against backup 2`,
		Args: cobra.ExactArgs(1),
		RunE: e.runDiff,
	}
	c.Flags().StringP(extension.FlagSlots, "s", "", "Slot range from:to (default 1:0)")
	c.Flags().Bool(extension.FlagRaw, false, "Output without colour")
	return c
}

func (e *Extension) runDiff(c *cobra.Command, args []string) error {
	ctx := c.Context()
	slots, _ := c.Flags().GetString(extension.FlagSlots)
	raw, _ := c.Flags().GetBool(extension.FlagRaw)

	opts := diff.Options{From: 1, To: diff.Current}
	if slots != "" {
		var err error
		opts.From, opts.To, err = diff.ParseSlotRange(slots)
		if err != nil {
			return cmd.PrintJSONError(err)
		}
	}

	l := log.Event("ferment:diff", "diff").Actor(cmd.Actor()).Record(args[0]).Slot(opts.From)
	id, err := resolve(ctx, e.svc, args[0])
	if err != nil {
		l.Write(err)
		return cmd.PrintJSONError(fmt.Errorf("diff %q: %w", args[0], err))
	}

	w := cmd.Out()
	if cmd.JSON() {
		w = io.Discard
	}

	r, err := diff.Run(ctx, w, e.svc, id, opts, !raw && cmd.Terminal())
	l.Record(id).Write(err)
	if err != nil {
		return cmd.PrintJSONError(fmt.Errorf("diff %q: %w", id, err))
	}
	return cmd.PrintJSON(r)
}

func (e *Extension) newRestoreCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "restore <id>",
		Short: "Restore a record from a backup",
		Long: `Replace a record with one of its backups. The current version becomes
backup 1, so a restore can be undone with another "restore --backup 1".

A record that failed to load can be repaired the same way.`,
		Args: cobra.ExactArgs(1),
		RunE: e.runRestore,
	}
	c.Flags().IntP(extension.FlagBackup, "b", 1, "Backup slot to restore")
	return c
}

func (e *Extension) runRestore(c *cobra.Command, args []string) error {
	ctx := c.Context()
	slot, _ := c.Flags().GetInt(extension.FlagBackup)

	l := log.Event("ferment:restore", "update").Actor(cmd.Actor()).Record(args[0]).Slot(slot)
	id, err := resolve(ctx, e.svc, args[0])
	if err != nil {
		l.Write(err)
		return cmd.PrintJSONError(fmt.Errorf("restore %q: %w", args[0], err))
	}

	w := cmd.Out()
	if cmd.JSON() {
		w = io.Discard
	}

	result, err := revert.Run(ctx, w, e.svc, id, slot)
	l.Record(id).Write(err)
	if err != nil {
		return cmd.PrintJSONError(fmt.Errorf("restore %q: %w", id, err))
	}
	return cmd.PrintJSON(result)
}
