package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// confirm asks a yes/no question. Anything but y/yes/e/evet is no.
func confirm(in io.Reader, out io.Writer, question string) (bool, error) {
	return confirmLine(bufio.NewReader(in), out, question)
}

func confirmLine(r *bufio.Reader, out io.Writer, question string) (bool, error) {
	answer, err := promptLine(r, out, question+" [y/N]", "")
	if err != nil {
		return false, err
	}
	switch strings.ToLower(answer) {
	case "y", "yes", "e", "evet":
		return true, nil
	}
	return false, nil
}

// promptLine prints label and reads one line. An empty answer returns def.
func promptLine(r *bufio.Reader, out io.Writer, label, def string) (string, error) {
	if def != "" {
		fmt.Fprintf(out, "%s [%s]: ", label, def)
	} else {
		fmt.Fprintf(out, "%s: ", label)
	}
	line, err := r.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return def, nil
	}
	return line, nil
}

// promptPassword reads a password without echo when stdin is a terminal,
// and as a plain line otherwise (piped input in scripts).
func promptPassword(r *bufio.Reader, out io.Writer, label string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return promptLine(r, out, label, "")
	}
	fmt.Fprintf(out, "%s: ", label)
	b, err := term.ReadPassword(fd)
	fmt.Fprintln(out)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
