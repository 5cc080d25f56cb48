package commands

import (
	"context"
	"errors"

	"github.com/rehber360/rehber360-desktop/internal/backup"
	"github.com/rehber360/rehber360-desktop/internal/dialogs"
	"github.com/rehber360/rehber360-desktop/internal/notify"
	"github.com/rehber360/rehber360-desktop/internal/store"
	"github.com/rehber360/rehber360-desktop/internal/transport"
	"github.com/rehber360/rehber360-desktop/internal/version"
)

// Shell-local command names.
const (
	CmdSendNativeNotification = "send_native_notification"
	CmdOpenFileInExplorer     = "open_file_in_explorer"
	CmdGetSettings            = "get_settings"
	CmdSaveSettings           = "save_settings"
	CmdUpdateAIProvider       = "update_ai_provider"
	CmdGetAppVersion          = "get_app_version"
	CmdGetPlatform            = "get_platform"
	CmdBackupDatabase         = "backup_database"
	CmdRestoreDatabase        = "restore_database"
	CmdListBackups            = "list_backups"
)

// ShellServices are the in-process services behind the local commands.
// A nil service leaves its commands unregistered.
type ShellServices struct {
	Settings *store.Store
	Notifier *notify.Notifier
	Shell    *dialogs.Shell
	Backups  *backup.Manager
}

// RegisterShellCommands registers the shell-local commands on r.
func RegisterShellCommands(r *Router, s ShellServices) {
	r.Register(CmdGetAppVersion, func(context.Context, Args) (any, error) {
		return version.Version, nil
	})
	r.Register(CmdGetPlatform, func(context.Context, Args) (any, error) {
		return version.Platform(), nil
	})

	if s.Notifier != nil {
		r.Register(CmdSendNativeNotification, func(_ context.Context, args Args) (any, error) {
			var opts notify.Options
			if err := args.Decode("", &opts); err != nil {
				return nil, err
			}
			if opts.Title == "" {
				return nil, Validationf("title is required")
			}
			native := s.Notifier.Show(opts)
			return map[string]bool{"native": native}, nil
		})
	}

	if s.Shell != nil {
		r.Register(CmdOpenFileInExplorer, func(_ context.Context, args Args) (any, error) {
			path, err := args.RequireString("path")
			if err != nil {
				return nil, err
			}
			if err := s.Shell.ShowItemInFolder(path); err != nil {
				return nil, &Error{Kind: transport.KindFile, Message: err.Error()}
			}
			return nil, nil
		})
	}

	if s.Settings != nil {
		registerSettings(r, s.Settings)
	}

	if s.Backups != nil {
		registerBackups(r, s.Backups)
	}
}

func registerSettings(r *Router, settings *store.Store) {
	r.Register(CmdGetSettings, func(context.Context, Args) (any, error) {
		return settings.Get(), nil
	})

	// save_settings merges the given fields onto the current settings.
	r.Register(CmdSaveSettings, func(_ context.Context, args Args) (any, error) {
		next := settings.Get()
		key := "settings"
		if _, ok := args[key]; !ok {
			key = ""
		}
		if err := args.Decode(key, &next); err != nil {
			return nil, err
		}
		if err := settings.Replace(next); err != nil {
			return nil, configError(err)
		}
		return settings.Get(), nil
	})

	r.Register(CmdUpdateAIProvider, func(_ context.Context, args Args) (any, error) {
		var ai store.AIProviderSettings
		if err := args.Decode("", &ai); err != nil {
			return nil, err
		}
		if ai.APIKey == "" {
			ai.APIKey = args.String("api_key")
		}
		if err := settings.SetAIProvider(ai); err != nil {
			return nil, configError(err)
		}
		return settings.AIProvider(), nil
	})
}

func registerBackups(r *Router, backups *backup.Manager) {
	r.Register(CmdBackupDatabase, func(ctx context.Context, _ Args) (any, error) {
		info, err := backups.Create(ctx, false)
		if err != nil {
			return nil, fileError(err)
		}
		return info, nil
	})

	r.Register(CmdRestoreDatabase, func(_ context.Context, args Args) (any, error) {
		path := args.String("backup_path")
		if path == "" {
			path = args.String("path")
		}
		if path == "" {
			return nil, Validationf("backup_path is required")
		}
		if err := backups.Restore(path); err != nil {
			return nil, fileError(err)
		}
		return nil, nil
	})

	r.Register(CmdListBackups, func(context.Context, Args) (any, error) {
		list, err := backups.List()
		if err != nil {
			return nil, fileError(err)
		}
		return list, nil
	})
}

func configError(err error) error {
	return &Error{Kind: transport.KindValidation, Message: err.Error()}
}

func fileError(err error) error {
	switch {
	case errors.Is(err, backup.ErrBackupNotFound), errors.Is(err, backup.ErrNoDatabase):
		return &Error{Kind: transport.KindNotFound, Message: err.Error()}
	case errors.Is(err, backup.ErrNotDatabase), errors.Is(err, backup.ErrInvalidName):
		return &Error{Kind: transport.KindValidation, Message: err.Error()}
	default:
		return &Error{Kind: transport.KindFile, Message: err.Error()}
	}
}
