package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// printJSON writes v as indented JSON. Raw JSON is re-indented as-is.
func printJSON(w io.Writer, v any) error {
	if raw, ok := v.(json.RawMessage); ok {
		var buf bytes.Buffer
		if len(raw) == 0 {
			raw = json.RawMessage("null")
		}
		if err := json.Indent(&buf, raw, "", "  "); err != nil {
			return fmt.Errorf("backend returned invalid JSON: %w", err)
		}
		buf.WriteByte('\n')
		_, err := w.Write(buf.Bytes())
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// parseJSONArg decodes a JSON command-line argument. "@file" reads the file,
// "-" reads stdin.
func parseJSONArg(arg string, stdin io.Reader, readFile func(string) ([]byte, error)) (any, error) {
	arg = strings.TrimSpace(arg)
	var data []byte
	switch {
	case arg == "":
		return nil, nil
	case arg == "-":
		b, err := io.ReadAll(stdin)
		if err != nil {
			return nil, err
		}
		data = b
	case strings.HasPrefix(arg, "@"):
		b, err := readFile(arg[1:])
		if err != nil {
			return nil, err
		}
		data = b
	default:
		data = []byte(arg)
	}

	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	return v, nil
}

// formatSize renders a byte count for listings.
func formatSize(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(n)/float64(div), "KMGTPE"[exp])
}
