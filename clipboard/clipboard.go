// Package clipboard copies text to the system clipboard by piping it to the
// first clipboard command available on the host.
package clipboard

import (
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/fwojciec/ragjudge"
)

var _ ragjudge.Clipboard = (*System)(nil)

// ErrUnavailable is returned when no clipboard command is installed.
var ErrUnavailable = errors.New("no clipboard command found")

// Command is a clipboard program that reads the content from stdin.
type Command struct {
	Name string
	Args []string
}

// DefaultCommands lists the clipboard programs tried, in order.
var DefaultCommands = []Command{
	{Name: "pbcopy"},
	{Name: "wl-copy"},
	{Name: "xclip", Args: []string{"-selection", "clipboard"}},
	{Name: "xsel", Args: []string{"--clipboard", "--input"}},
	{Name: "clip.exe"},
}

// System implements ragjudge.Clipboard with the host's clipboard commands.
type System struct {
	commands []Command
	lookPath func(string) (string, error)
}

// Option configures a System.
type Option func(*System)

// WithCommands replaces the commands tried.
func WithCommands(commands ...Command) Option {
	return func(s *System) {
		s.commands = commands
	}
}

// WithLookPath replaces the function used to find commands.
func WithLookPath(lookPath func(string) (string, error)) Option {
	return func(s *System) {
		s.lookPath = lookPath
	}
}

// NewSystem returns a System trying DefaultCommands.
func NewSystem(opts ...Option) *System {
	s := &System{
		commands: DefaultCommands,
		lookPath: exec.LookPath,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Copy writes content to the clipboard.
func (s *System) Copy(content string) error {
	for _, c := range s.commands {
		path, err := s.lookPath(c.Name)
		if err != nil {
			continue
		}
		cmd := exec.Command(path, c.Args...)
		cmd.Stdin = strings.NewReader(content)
		if out, err := cmd.CombinedOutput(); err != nil {
			if msg := strings.TrimSpace(string(out)); msg != "" {
				return fmt.Errorf("%s: %w: %s", c.Name, err, msg)
			}
			return fmt.Errorf("%s: %w", c.Name, err)
		}
		return nil
	}
	return ErrUnavailable
}
