package cli

import (
	"bufio"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/rehber360/rehber360-desktop/internal/backup"
	"github.com/rehber360/rehber360-desktop/internal/config"
	"github.com/rehber360/rehber360-desktop/internal/pathutil"
)

// newBackupCmd creates the 'backup' command group.
func newBackupCmd() *cobra.Command {
	backupCmd := &cobra.Command{
		Use:   "backup",
		Short: "Manage database backups",
		Long: `Database backup commands.

Commands:
  create   - Back up the database now
  list     - List backups, newest first
  restore  - Replace the database with a backup
  select   - Pick a backup from the list and restore it
  prune    - Delete old backups beyond the retention limit
  delete   - Delete one backup
  run-due  - Run the scheduled backup if it is due`,
	}

	backupCmd.AddCommand(newBackupCreateCmd())
	backupCmd.AddCommand(newBackupListCmd())
	backupCmd.AddCommand(newBackupRestoreCmd())
	backupCmd.AddCommand(newBackupSelectCmd())
	backupCmd.AddCommand(newBackupPruneCmd())
	backupCmd.AddCommand(newBackupDeleteCmd())
	backupCmd.AddCommand(newBackupRunDueCmd())

	return backupCmd
}

func newBackupCreateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "create",
		Short: "Back up the database now",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, cleanup, err := newEngine()
			if err != nil {
				return err
			}
			defer cleanup()

			info, err := engine.Backups().Create(GetContext(), false)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Backup created: %s (%s)\n", info.Path, formatSize(info.Size))
			return nil
		},
	}
}

func newBackupListCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List backups, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, cleanup, err := newEngine()
			if err != nil {
				return err
			}
			defer cleanup()

			list, err := engine.Backups().List()
			if err != nil {
				return err
			}
			if asJSON {
				if list == nil {
					list = []backup.Info{}
				}
				return printJSON(cmd.OutOrStdout(), list)
			}
			if len(list) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "No backups in %s\n", engine.Backups().Directory())
				return nil
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tSIZE\tDATE")
			for _, b := range list {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", b.Name, formatSize(b.Size), b.Date.Format("2006-01-02 15:04"))
			}
			return tw.Flush()
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print as JSON")
	return cmd
}

func newBackupRestoreCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "restore <backup-file>",
		Short: "Replace the database with a backup",
		Long: `Replace the current database with a backup file.

The application should be closed first. The current database is kept
until the copy succeeds and put back if it fails.

Examples:
  rehber360 backup restore database-backup-2026-03-01T02-00-00-000Z.db
  rehber360 backup restore /media/usb/rehber360.db --yes`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, cleanup, err := newEngine()
			if err != nil {
				return err
			}
			defer cleanup()

			path := args[0]
			if !filepath.IsAbs(path) && filepath.Base(path) == path {
				path = filepath.Join(engine.Backups().Directory(), path)
			} else {
				path = pathutil.MustResolve(path)
			}
			if !yes {
				ok, err := confirm(cmd.InOrStdin(), cmd.OutOrStdout(),
					fmt.Sprintf("Replace %s with %s?", engine.Backups().DatabasePath(), path))
				if err != nil || !ok {
					fmt.Fprintln(cmd.OutOrStdout(), "Restore cancelled")
					return err
				}
			}
			if err := engine.Backups().Restore(path); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Database restored. Restart Rehber360 to load it.")
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")
	return cmd
}

func newBackupSelectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "select",
		Short: "Pick a backup from the list and restore it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, cleanup, err := newEngine()
			if err != nil {
				return err
			}
			defer cleanup()

			list, err := engine.Backups().List()
			if err != nil {
				return err
			}
			if len(list) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No backups found")
				return nil
			}

			in := bufio.NewReader(cmd.InOrStdin())
			out := cmd.OutOrStdout()
			chosen, err := chooseBackup(in, out, list)
			if err != nil {
				return err
			}
			ok, err := confirmLine(in, out,
				fmt.Sprintf("Replace %s with %s?", engine.Backups().DatabasePath(), chosen.Name))
			if err != nil || !ok {
				fmt.Fprintln(out, "Restore cancelled")
				return err
			}
			if err := engine.Backups().Restore(chosen.Path); err != nil {
				return err
			}
			fmt.Fprintln(out, "Database restored. Restart Rehber360 to load it.")
			return nil
		},
	}
}

// chooseBackup prints a numbered list and reads a choice. Empty input picks
// the newest backup.
func chooseBackup(r *bufio.Reader, out io.Writer, list []backup.Info) (backup.Info, error) {
	for i, b := range list {
		fmt.Fprintf(out, "%3d) %s  %s  %s\n", i+1, b.Date.Local().Format("2006-01-02 15:04"), formatSize(b.Size), b.Name)
	}
	answer, err := promptLine(r, out, "Backup number", "1")
	if err != nil {
		return backup.Info{}, err
	}
	n, err := strconv.Atoi(answer)
	if err != nil || n < 1 || n > len(list) {
		return backup.Info{}, fmt.Errorf("invalid choice %q: enter 1-%d", answer, len(list))
	}
	return list[n-1], nil
}

func newBackupPruneCmd() *cobra.Command {
	var keep int

	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete old backups beyond the retention limit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, cleanup, err := newEngine()
			if err != nil {
				return err
			}
			defer cleanup()

			if keep <= 0 {
				keep = engine.Settings().Backup().MaxBackups
			}
			removed, err := engine.Backups().Prune(keep)
			for _, name := range removed {
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", name)
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d backup(s) deleted, keeping %d\n", len(removed), keep)
			return nil
		},
	}

	cmd.Flags().IntVar(&keep, "keep", 0, "Number of backups to keep (default: maxBackups setting)")
	return cmd
}

func newBackupDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete one backup by file name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, cleanup, err := newEngine()
			if err != nil {
				return err
			}
			defer cleanup()

			if err := engine.Backups().Delete(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
			return nil
		},
	}
}

// newBackupRunDueCmd lets an OS scheduler (cron, Task Scheduler) drive
// automatic backups while the application is closed.
func newBackupRunDueCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run-due",
		Short: "Run the scheduled backup if it is due",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, cleanup, err := newEngine()
			if err != nil {
				return err
			}
			defer cleanup()

			if engine.Scheduler().RunDue(GetContext()) {
				fmt.Fprintln(cmd.OutOrStdout(), "Scheduled backup created")
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), "No backup due")
			}
			return nil
		},
	}
}

// newMigrateCmd creates the 'migrate' command group for databases left by
// earlier desktop builds.
func newMigrateCmd() *cobra.Command {
	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Import a database from an earlier desktop build",
	}

	migrateCmd.AddCommand(&cobra.Command{
		Use:   "detect",
		Short: "List legacy databases found on this machine",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			found := backup.DetectLegacy(config.LegacyDatabaseCandidates())
			if len(found) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No legacy database found")
				return nil
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "PATH\tSIZE\tMODIFIED\tSTATUS")
			for _, l := range found {
				status := "ok"
				if !l.Valid {
					status = l.Reason
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", l.Path, formatSize(l.Size), l.ModTime.Format("2006-01-02 15:04"), status)
			}
			return tw.Flush()
		},
	})

	migrateCmd.AddCommand(&cobra.Command{
		Use:   "run [legacy-db]",
		Short: "Import a legacy database (default: the first valid one found)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var path string
			if len(args) == 1 {
				path = pathutil.MustResolve(args[0])
			} else {
				legacy, ok := backup.FirstValidLegacy(config.LegacyDatabaseCandidates())
				if !ok {
					return fmt.Errorf("no legacy database found")
				}
				path = legacy.Path
			}

			engine, cleanup, err := newEngine()
			if err != nil {
				return err
			}
			defer cleanup()

			report, err := engine.Migrator().Migrate(GetContext(), path)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), report)
		},
	})

	return migrateCmd
}
