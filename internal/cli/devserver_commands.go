package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/rehber360/rehber360-desktop/internal/devserver"
)

// newDevServerCmd creates the 'devserver' command.
func newDevServerCmd() *cobra.Command {
	var addr, origin string

	cmd := &cobra.Command{
		Use:   "devserver",
		Short: "Serve the command bridge over HTTP for browser development",
		Long: `Run the renderer in a normal browser (vite dev server) against the
real backend. API calls are accepted on /api/*, events are streamed on
/events (websocket), and /health reports readiness.

Only the configured origin may connect.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, cleanup, err := newEngine()
			if err != nil {
				return err
			}
			defer cleanup()

			cfg := engine.Config().DevServer
			if addr != "" {
				cfg.Addr = addr
			}
			if origin != "" {
				cfg.AllowedOrigin = origin
			}

			engine.Start(GetContext())
			srv := devserver.New(cfg, engine.Router(), engine.Events(), GetLogger().Component("devserver"))

			errC := make(chan error, 1)
			go func() { errC <- srv.ListenAndServe() }()

			select {
			case err := <-errC:
				return err
			case <-GetContext().Done():
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				return srv.Shutdown(ctx)
			}
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from config)")
	cmd.Flags().StringVar(&origin, "origin", "", "Allowed browser origin (default from config)")
	return cmd
}
