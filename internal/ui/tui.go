package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// defaultVisibleItems is the list height before the first WindowSizeMsg.
const defaultVisibleItems = 10

// TUIPicker is the interactive single-choice list.
type TUIPicker struct {
	cfg PickConfig
}

// NewTUIPicker creates a TUI picker.
func NewTUIPicker(cfg PickConfig) *TUIPicker {
	return &TUIPicker{cfg: cfg}
}

// Pick implements Picker.
func (p *TUIPicker) Pick(ctx context.Context, options []string) (string, bool, error) {
	model := newPickModel(options, p.cfg.Placeholder, GetStyles(p.cfg.NoColor))

	var opts []tea.ProgramOption
	opts = append(opts, tea.WithContext(ctx))
	if p.cfg.Input != nil {
		opts = append(opts, tea.WithInput(p.cfg.Input))
	}
	if p.cfg.Output != nil {
		opts = append(opts, tea.WithOutput(p.cfg.Output))
	}

	final, err := tea.NewProgram(model, opts...).Run()
	if err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return "", false, ctx.Err()
		}
		return "", false, fmt.Errorf("run picker: %w", err)
	}

	m, ok := final.(*pickModel)
	if !ok || !m.picked {
		return "", false, nil
	}
	return m.choice, true, nil
}

// pickModel is the bubbletea model for the quick pick.
//
// Keys: up/down and ctrl+p/ctrl+n always move. j/k move while the filter is
// not focused. "/" focuses the filter; typing any other printable key also
// starts filtering. enter picks, esc leaves the filter or cancels, ctrl+c
// cancels.
type pickModel struct {
	options  []string
	filtered []int
	cursor   int
	offset   int
	height   int
	width    int

	filter    textinput.Model
	filtering bool

	header string
	styles Styles

	picked    bool
	cancelled bool
	choice    string
}

func newPickModel(options []string, header string, styles Styles) *pickModel {
	ti := textinput.New()
	ti.Prompt = "/ "
	ti.Placeholder = "filter"
	ti.CharLimit = 256

	if header == "" {
		header = DefaultPlaceholder
	}

	m := &pickModel{
		options: options,
		filter:  ti,
		header:  header,
		styles:  styles,
		height:  defaultVisibleItems,
		width:   80,
	}
	m.applyFilter()
	return m
}

// Init implements tea.Model.
func (m *pickModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *pickModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		// header, filter line, hint line and a margin
		m.height = msg.Height - 4
		if m.height < 1 {
			m.height = 1
		}
		m.clampOffset()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *pickModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		m.cancelled = true
		return m, tea.Quit
	case tea.KeyEnter:
		if len(m.filtered) == 0 {
			return m, nil
		}
		m.choice = m.options[m.filtered[m.cursor]]
		m.picked = true
		return m, tea.Quit
	case tea.KeyEsc:
		if m.filtering {
			m.filtering = false
			m.filter.Blur()
			return m, nil
		}
		m.cancelled = true
		return m, tea.Quit
	case tea.KeyUp, tea.KeyCtrlP:
		m.move(-1)
		return m, nil
	case tea.KeyDown, tea.KeyCtrlN:
		m.move(1)
		return m, nil
	}

	if !m.filtering {
		switch msg.String() {
		case "k":
			m.move(-1)
			return m, nil
		case "j":
			m.move(1)
			return m, nil
		case "/":
			m.filtering = true
			return m, m.filter.Focus()
		}
		if msg.Type != tea.KeyRunes {
			return m, nil
		}
		m.filtering = true
		cmd := m.filter.Focus()
		var inputCmd tea.Cmd
		m.filter, inputCmd = m.filter.Update(msg)
		m.applyFilter()
		return m, tea.Batch(cmd, inputCmd)
	}

	var cmd tea.Cmd
	m.filter, cmd = m.filter.Update(msg)
	m.applyFilter()
	return m, cmd
}

// applyFilter recomputes the visible options from the filter text. Matching
// is a case-insensitive substring test.
func (m *pickModel) applyFilter() {
	query := strings.ToLower(strings.TrimSpace(m.filter.Value()))
	m.filtered = m.filtered[:0]
	for i, opt := range m.options {
		if query == "" || strings.Contains(strings.ToLower(opt), query) {
			m.filtered = append(m.filtered, i)
		}
	}
	if m.cursor >= len(m.filtered) {
		m.cursor = len(m.filtered) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	m.clampOffset()
}

func (m *pickModel) move(delta int) {
	if len(m.filtered) == 0 {
		return
	}
	m.cursor += delta
	if m.cursor < 0 {
		m.cursor = 0
	}
	if m.cursor >= len(m.filtered) {
		m.cursor = len(m.filtered) - 1
	}
	m.clampOffset()
}

// clampOffset scrolls so the cursor stays inside the visible window.
func (m *pickModel) clampOffset() {
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+m.height {
		m.offset = m.cursor - m.height + 1
	}
	if m.offset < 0 {
		m.offset = 0
	}
}

// View implements tea.Model.
func (m *pickModel) View() string {
	if m.picked || m.cancelled {
		return ""
	}

	var b strings.Builder
	b.WriteString(m.styles.Header.Render(m.header))
	b.WriteString("\n")

	if m.filtering || m.filter.Value() != "" {
		b.WriteString(m.filter.View())
		b.WriteString("\n")
	}

	if len(m.filtered) == 0 {
		b.WriteString(m.styles.Dim.Render("  no matching paths"))
		b.WriteString("\n")
	}

	end := m.offset + m.height
	if end > len(m.filtered) {
		end = len(m.filtered)
	}
	for i := m.offset; i < end; i++ {
		opt := truncate(m.options[m.filtered[i]], m.width-4)
		if i == m.cursor {
			b.WriteString(m.styles.Cursor.Render("> "))
			b.WriteString(m.styles.Selected.Render(opt))
		} else {
			b.WriteString("  ")
			b.WriteString(m.styles.Item.Render(opt))
		}
		b.WriteString("\n")
	}

	hint := fmt.Sprintf("%d/%d  ↑/↓ move  / filter  enter select  esc cancel",
		len(m.filtered), len(m.options))
	b.WriteString(m.styles.Dim.Render(hint))
	return b.String()
}

// truncate shortens s to maxLen runes, marking the cut with "...".
func truncate(s string, maxLen int) string {
	r := []rune(s)
	if maxLen <= 3 || len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen-3]) + "..."
}

var _ Picker = (*TUIPicker)(nil)
var _ Picker = (*PlainPicker)(nil)
