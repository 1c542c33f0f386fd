// Package extract runs the external tools gettextify delegates to: the code
// formatter applied to rewritten files and Django's makemessages, which
// creates or refreshes the .po catalogs before translation.
package extract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/codeskyblue/go-sh"
)

// DefaultFormatCommand is the formatter run on every rewritten file.
var DefaultFormatCommand = []string{"ruff", "format"}

// ToolError reports a non-zero exit (or a failed start) of an external tool.
type ToolError struct {
	Cmd    string
	Err    error
	Stderr string
}

func (e *ToolError) Error() string {
	msg := fmt.Sprintf("%s failed: %v", e.Cmd, e.Err)
	if e.Stderr != "" {
		msg += ": " + e.Stderr
	}
	return msg
}

func (e *ToolError) Unwrap() error { return e.Err }

// Formatter formats Python files in place.
type Formatter struct {
	// Command is the formatter argv; the file path is appended.
	Command []string
	// Dir is the working directory, usually the project root.
	Dir string
}

// NewFormatter returns a formatter running command, or the default when
// command is empty.
func NewFormatter(command []string, dir string) *Formatter {
	if len(command) == 0 {
		command = DefaultFormatCommand
	}
	return &Formatter{Command: command, Dir: dir}
}

// Format runs the formatter on path. Any failure is a *ToolError.
func (f *Formatter) Format(ctx context.Context, path string) error {
	argv := append(append([]string{}, f.Command...), path)
	return Run(ctx, f.Dir, argv)
}

// Makemessages invokes Django's catalog extraction with one -l flag per
// language code.
type Makemessages struct {
	// Command is the extraction argv, by default "python manage.py makemessages".
	Command []string
	Dir     string
}

// NewMakemessages builds the default extraction command for the given
// interpreter, or uses command verbatim when it is set.
func NewMakemessages(python string, command []string, dir string) *Makemessages {
	if len(command) == 0 {
		if python == "" {
			python = "python"
		}
		command = []string{python, "manage.py", "makemessages"}
	}
	return &Makemessages{Command: command, Dir: dir}
}

// Args returns the full argv for codes.
func (m *Makemessages) Args(codes []string) []string {
	argv := append([]string{}, m.Command...)
	for _, c := range codes {
		argv = append(argv, "-l", c)
	}
	return argv
}

// Run extracts messages for codes.
func (m *Makemessages) Run(ctx context.Context, codes []string) error {
	return Run(ctx, m.Dir, m.Args(codes))
}

// Run executes argv in dir and discards its stdout. A missing binary, a
// non-zero exit and an expired context are all reported as *ToolError.
func Run(ctx context.Context, dir string, argv []string) error {
	_, err := output(ctx, dir, argv)
	return err
}

// Output executes argv in dir and returns its stdout.
func Output(ctx context.Context, dir string, argv []string) ([]byte, error) {
	return output(ctx, dir, argv)
}

func output(ctx context.Context, dir string, argv []string) ([]byte, error) {
	if len(argv) == 0 {
		return nil, errors.New("empty command")
	}
	name := strings.Join(argv, " ")
	if err := ctx.Err(); err != nil {
		return nil, &ToolError{Cmd: name, Err: err}
	}
	if _, err := exec.LookPath(argv[0]); err != nil {
		return nil, &ToolError{Cmd: name, Err: fmt.Errorf("%s not found in PATH", argv[0])}
	}

	s := sh.NewSession()
	if dir != "" {
		s.SetDir(dir)
	}
	if deadline, ok := ctx.Deadline(); ok {
		s.SetTimeout(time.Until(deadline))
	}
	var stdout, stderr bytes.Buffer
	s.Stdout = &stdout
	s.Stderr = &stderr

	args := make([]interface{}, 0, len(argv)-1)
	for _, a := range argv[1:] {
		args = append(args, a)
	}
	if err := s.Command(argv[0], args...).Run(); err != nil {
		return stdout.Bytes(), &ToolError{Cmd: name, Err: err, Stderr: tail(stderr.String())}
	}
	return stdout.Bytes(), nil
}

// tail keeps the last few lines of a tool's stderr for error messages.
func tail(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	if len(lines) > 5 {
		lines = lines[len(lines)-5:]
	}
	return strings.Join(lines, "\n")
}
