package console

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// ErrNonInteractive is returned when an answer is requested in auto mode.
var ErrNonInteractive = errors.New("input is not available in non-interactive mode")

// Transition describes a pending version change of one mod.
type Transition struct {
	// ID is the catalog identifier of the mod.
	ID string
	// From is the installed version; empty when nothing verified is installed.
	From string
	// To is the version that would be installed.
	To string
}

// String renders the transition as "id: from -> to".
func (t Transition) String() string {
	return fmt.Sprintf("%s: %s -> %s", t.ID, orNone(t.From), t.To)
}

// Interactor is the notification and confirmation capability the
// reconciliation engine depends on.
type Interactor interface {
	// Announce tells the user a newer release exists.
	Announce(t Transition)
	// Confirm asks whether to apply the transition.
	Confirm(t Transition) (bool, error)
	// Ask reads a free-form answer to question.
	Ask(question string) (string, error)
}

// styles groups the lipgloss styles used for console output.
type styles struct {
	id   lipgloss.Style
	from lipgloss.Style
	to   lipgloss.Style
	ask  lipgloss.Style
}

func newStyles(out io.Writer) styles {
	renderer := lipgloss.NewRenderer(out)

	return styles{
		id:   renderer.NewStyle().Bold(true),
		from: renderer.NewStyle().Foreground(lipgloss.Color("1")),
		to:   renderer.NewStyle().Foreground(lipgloss.Color("2")).Bold(true),
		ask:  renderer.NewStyle().Foreground(lipgloss.Color("6")),
	}
}

func (s styles) announcement(t Transition) string {
	return fmt.Sprintf("New update available for %s from %s -> %s",
		s.id.Render(t.ID), s.from.Render(orNone(t.From)), s.to.Render(t.To))
}

// Terminal is the interactive Interactor reading answers line by line.
type Terminal struct {
	in     *bufio.Reader
	out    io.Writer
	styles styles
}

// NewTerminal creates a Terminal reading from in and writing to out.
func NewTerminal(in io.Reader, out io.Writer) *Terminal {
	return &Terminal{
		in:     bufio.NewReader(in),
		out:    out,
		styles: newStyles(out),
	}
}

// Announce implements Interactor.
func (t *Terminal) Announce(tr Transition) {
	_, _ = fmt.Fprintln(t.out, t.styles.announcement(tr))
}

// Confirm implements Interactor. Anything but "n" or "no" counts as yes,
// so a bare Enter accepts the update.
func (t *Terminal) Confirm(tr Transition) (bool, error) {
	answer, err := t.prompt(fmt.Sprintf("Would you like to update %s [Y/n]?: ", tr.ID))
	if err != nil {
		return false, err
	}

	switch strings.ToLower(answer) {
	case "n", "no":
		return false, nil
	default:
		return true, nil
	}
}

// Ask implements Interactor.
func (t *Terminal) Ask(question string) (string, error) {
	return t.prompt(question)
}

func (t *Terminal) prompt(question string) (string, error) {
	_, _ = fmt.Fprint(t.out, t.styles.ask.Render(question))

	line, err := t.in.ReadString('\n')
	if err != nil && (!errors.Is(err, io.EOF) || line == "") {
		return "", fmt.Errorf("read answer: %w", err)
	}

	return strings.TrimSpace(line), nil
}

// Auto is the non-interactive Interactor: it prints announcements and
// accepts every update.
type Auto struct {
	out    io.Writer
	styles styles
}

// NewAuto creates an Auto writing announcements to out; nil discards them.
func NewAuto(out io.Writer) *Auto {
	if out == nil {
		out = io.Discard
	}

	return &Auto{
		out:    out,
		styles: newStyles(out),
	}
}

// Announce implements Interactor.
func (a *Auto) Announce(tr Transition) {
	_, _ = fmt.Fprintln(a.out, a.styles.announcement(tr))
}

// Confirm implements Interactor.
func (a *Auto) Confirm(Transition) (bool, error) {
	return true, nil
}

// Ask implements Interactor.
func (a *Auto) Ask(string) (string, error) {
	return "", ErrNonInteractive
}

func orNone(version string) string {
	if version == "" {
		return "(none)"
	}

	return version
}
