package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rehber360/rehber360-desktop/internal/store"
)

// ErrUnknownSetting is returned by applySetting for an unsupported key.
var ErrUnknownSetting = errors.New("unknown setting")

// settingKeys lists the keys accepted by 'settings set'.
var settingKeys = []string{
	"theme", "language",
	"minimizeToTray", "startMinimized", "autoStart",
	"notifications.riskStudents", "notifications.missingData",
	"notifications.dailyReports", "notifications.systemUpdates",
	"backup.autoBackup", "backup.backupFrequency", "backup.backupTime", "backup.maxBackups",
	"aiProvider.provider", "aiProvider.model", "aiProvider.apiKey",
}

// newSettingsCmd creates the 'settings' command group.
func newSettingsCmd() *cobra.Command {
	settingsCmd := &cobra.Command{
		Use:   "settings",
		Short: "View and change application settings",
		Long: `Application settings (the same document the settings page edits).

Commands:
  show   - Print all settings as JSON
  set    - Change one setting
  reset  - Restore every setting to its default
  path   - Show the settings file path`,
	}

	settingsCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print all settings as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, cleanup, err := newEngine()
			if err != nil {
				return err
			}
			defer cleanup()

			s := engine.Settings().Get()
			if s.AIProvider.APIKey != "" {
				s.AIProvider.APIKey = "********"
			}
			return printJSON(cmd.OutOrStdout(), s)
		},
	})

	settingsCmd.AddCommand(&cobra.Command{
		Use:   "set <key> <value>",
		Short: "Change one setting",
		Long: `Change one setting. Values are validated before saving.

Keys:
  ` + strings.Join(settingKeys, "\n  ") + `

Examples:
  rehber360 settings set theme dark
  rehber360 settings set backup.backupTime 03:30
  rehber360 settings set notifications.dailyReports true`,
		Args:      cobra.ExactArgs(2),
		ValidArgs: settingKeys,
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, cleanup, err := newEngine()
			if err != nil {
				return err
			}
			defer cleanup()

			probe := engine.Settings().Get()
			if err := applySetting(&probe, args[0], args[1]); err != nil {
				return err
			}
			err = engine.Settings().Update(settingSection(args[0]), func(s *store.StoreSchema) {
				_ = applySetting(s, args[0], args[1])
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s = %s\n", args[0], args[1])
			return nil
		},
	})

	settingsCmd.AddCommand(&cobra.Command{
		Use:   "reset",
		Short: "Restore every setting to its default",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, cleanup, err := newEngine()
			if err != nil {
				return err
			}
			defer cleanup()

			if err := engine.Settings().Reset(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Settings reset to defaults")
			return nil
		},
	})

	settingsCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show the settings file path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, cleanup, err := newEngine()
			if err != nil {
				return err
			}
			defer cleanup()

			fmt.Fprintln(cmd.OutOrStdout(), engine.Settings().Path())
			return nil
		},
	})

	return settingsCmd
}

// settingSection returns the settings-changed section for key.
func settingSection(key string) string {
	switch prefix := strings.SplitN(key, ".", 2)[0]; prefix {
	case "theme":
		return store.SectionAppearance
	case "notifications":
		return store.SectionNotifications
	case "backup":
		return store.SectionBackup
	case "aiProvider":
		return store.SectionAIProvider
	default:
		return store.SectionGeneral
	}
}

// applySetting sets key on s from its string form. Validation of the
// resulting document is left to the store.
func applySetting(s *store.StoreSchema, key, value string) error {
	parseBool := func() (bool, error) {
		b, err := strconv.ParseBool(value)
		if err != nil {
			return false, fmt.Errorf("%s must be true or false", key)
		}
		return b, nil
	}

	var err error
	switch key {
	case "theme":
		s.Theme = value
	case "language":
		s.Language = value
	case "minimizeToTray":
		s.MinimizeToTray, err = parseBool()
	case "startMinimized":
		s.StartMinimized, err = parseBool()
	case "autoStart":
		s.AutoStart, err = parseBool()
	case "notifications.riskStudents":
		s.Notifications.RiskStudents, err = parseBool()
	case "notifications.missingData":
		s.Notifications.MissingData, err = parseBool()
	case "notifications.dailyReports":
		s.Notifications.DailyReports, err = parseBool()
	case "notifications.systemUpdates":
		s.Notifications.SystemUpdates, err = parseBool()
	case "backup.autoBackup":
		s.Backup.AutoBackup, err = parseBool()
	case "backup.backupFrequency":
		s.Backup.BackupFrequency = value
	case "backup.backupTime":
		s.Backup.BackupTime = value
	case "backup.maxBackups":
		n, convErr := strconv.Atoi(value)
		if convErr != nil {
			return fmt.Errorf("%s must be a number", key)
		}
		s.Backup.MaxBackups = n
	case "aiProvider.provider":
		s.AIProvider.Provider = value
	case "aiProvider.model":
		s.AIProvider.Model = value
	case "aiProvider.apiKey":
		s.AIProvider.APIKey = value
	default:
		return fmt.Errorf("%w: %s", ErrUnknownSetting, key)
	}
	return err
}
