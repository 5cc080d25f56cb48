package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rehber360/rehber360-desktop/internal/transport"
)

// newMapCmd creates the 'map' command, which shows how an endpoint resolves
// to a native command without calling anything.
func newMapCmd() *cobra.Command {
	var body string

	cmd := &cobra.Command{
		Use:   "map <method> <endpoint>",
		Short: "Show the native command and arguments for an API endpoint",
		Long: `Resolve an API endpoint the way the native transport does.

Examples:
  rehber360 map GET /api/students
  rehber360 map GET "/api/students/42?include=notes"
  rehber360 map POST /api/students --data '{"name":"Ali"}'`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			method, endpoint := strings.ToUpper(args[0]), args[1]
			payload, err := parseJSONArg(body, cmd.InOrStdin(), os.ReadFile)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), map[string]any{
				"command": transport.EndpointToCommand(endpoint, method),
				"args":    transport.BuildCommandArgs(endpoint, payload),
			})
		},
	}

	cmd.Flags().StringVarP(&body, "data", "d", "", "JSON request body (@file or - for stdin)")
	return cmd
}

// newInvokeCmd creates the 'invoke' command.
func newInvokeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "invoke <command> [json-args]",
		Short: "Invoke a native command by name",
		Long: `Invoke a command on the local bridge. Shell commands (settings,
backups, notifications) are handled here; everything else is forwarded
to the backend.

Examples:
  rehber360 invoke get_app_version
  rehber360 invoke get_all_students '{"page":"2"}'`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var cmdArgs map[string]any
			if len(args) == 2 {
				v, err := parseJSONArg(args[1], cmd.InOrStdin(), os.ReadFile)
				if err != nil {
					return err
				}
				obj, ok := v.(map[string]any)
				if !ok {
					return fmt.Errorf("arguments must be a JSON object")
				}
				cmdArgs = obj
			}

			engine, cleanup, err := newEngine()
			if err != nil {
				return err
			}
			defer cleanup()

			result, err := engine.Router().Invoke(GetContext(), args[0], cmdArgs)
			if err != nil {
				return transport.NormalizeError(args[0], err)
			}
			return printJSON(cmd.OutOrStdout(), result)
		},
	}
	return cmd
}

// newRequestCmd creates the 'request' command.
func newRequestCmd() *cobra.Command {
	var body string

	cmd := &cobra.Command{
		Use:   "request <method> <endpoint>",
		Short: "Perform an API request through the configured transport",
		Long: `Perform a logical API call exactly as the renderer would.

Examples:
  rehber360 request GET /api/students
  rehber360 request PUT /api/students/42 --data @student.json
  rehber360 --transport http request GET /api/health`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			payload, err := parseJSONArg(body, cmd.InOrStdin(), os.ReadFile)
			if err != nil {
				return err
			}

			engine, cleanup, err := newEngine()
			if err != nil {
				return err
			}
			defer cleanup()

			method := strings.ToUpper(args[0])
			GetLogger().Debug().Str("transport", engine.Transport().Name()).Str("method", method).Str("endpoint", args[1]).Msg("Request")
			result, err := engine.Transport().Request(GetContext(), args[1], transport.RequestConfig{
				Method: method,
				Body:   payload,
			})
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), result)
		},
	}

	cmd.Flags().StringVarP(&body, "data", "d", "", "JSON request body (@file or - for stdin)")
	return cmd
}
