package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rehber360/rehber360-desktop/internal/progress"
)

// newUpdateCmd creates the 'update' command group.
func newUpdateCmd() *cobra.Command {
	updateCmd := &cobra.Command{
		Use:   "update",
		Short: "Check for and download application updates",
	}

	updateCmd.AddCommand(&cobra.Command{
		Use:   "check",
		Short: "Check the release feed for a newer version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, cleanup, err := newEngine()
			if err != nil {
				return err
			}
			defer cleanup()

			out := cmd.OutOrStdout()
			result := engine.Updater().Check(GetContext(), true)
			if result.Error != "" {
				return fmt.Errorf("update check failed: %s", result.Error)
			}
			if !result.HasUpdate {
				fmt.Fprintf(out, "Rehber360 %s is up to date\n", result.CurrentVersion)
				return nil
			}
			fmt.Fprintf(out, "Update available: %s (current %s)\n", result.LatestVersion, result.CurrentVersion)
			if result.ReleaseURL != "" {
				fmt.Fprintf(out, "Release notes: %s\n", result.ReleaseURL)
			}
			if result.AssetName == "" {
				fmt.Fprintln(out, "No installer is published for this platform")
			}
			return nil
		},
	})

	var install bool
	downloadCmd := &cobra.Command{
		Use:   "download",
		Short: "Download the installer of the available update",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, cleanup, err := newEngine()
			if err != nil {
				return err
			}
			defer cleanup()

			u := engine.Updater()
			result := u.Check(GetContext(), true)
			if result.Error != "" {
				return fmt.Errorf("update check failed: %s", result.Error)
			}
			if !result.HasUpdate {
				fmt.Fprintf(cmd.OutOrStdout(), "Rehber360 %s is up to date\n", result.CurrentVersion)
				return nil
			}

			reporter := progress.NewReporter()
			path, err := u.Download(GetContext(), progress.Callback(reporter, "Downloading "+result.AssetName))
			if err != nil {
				reporter.Error(err)
				return err
			}
			reporter.Finish()
			fmt.Fprintf(cmd.OutOrStdout(), "Downloaded %s\n", path)

			if install {
				return u.QuitAndInstall()
			}
			return nil
		},
	}
	downloadCmd.Flags().BoolVar(&install, "install", false, "Launch the installer after downloading")
	updateCmd.AddCommand(downloadCmd)

	return updateCmd
}
