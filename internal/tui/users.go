package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/hay-kot/pear/internal/core/styles"
)

// UserPanelAction is what the user chose in the users panel.
type UserPanelAction int

const (
	UserPanelNone UserPanelAction = iota
	UserPanelAdd
	UserPanelRemove
)

// UserPanelResult holds one roster change.
type UserPanelResult struct {
	Action UserPanelAction
	Name   string
}

// UserPanel lists the roster and adds or removes names. It stays open after
// each change; the model feeds it the new roster with SetUsers.
type UserPanel struct {
	users     []string
	cursor    int
	input     textinput.Model
	adding    bool
	cancelled bool
	result    *UserPanelResult
}

// NewUserPanel creates a users panel.
func NewUserPanel(users []string) *UserPanel {
	p := &UserPanel{input: textinput.New()}
	p.input.Prompt = ""
	p.input.Placeholder = "Name"
	p.input.CharLimit = 80
	p.SetUsers(users)
	return p
}

// SetUsers replaces the listed roster and clamps the cursor.
func (p *UserPanel) SetUsers(users []string) {
	p.users = users
	p.cursor = min(p.cursor, max(len(users)-1, 0))
}

// TakeResult returns the pending result and clears it.
func (p *UserPanel) TakeResult() *UserPanelResult {
	r := p.result
	p.result = nil
	return r
}

// Update handles key events for the panel.
func (p *UserPanel) Update(msg tea.Msg) (*UserPanel, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return p, nil
	}

	if p.adding {
		switch keyMsg.String() {
		case "esc":
			p.adding = false
			p.input.Blur()
			return p, nil
		case "enter":
			name := strings.TrimSpace(p.input.Value())
			if name != "" {
				p.result = &UserPanelResult{Action: UserPanelAdd, Name: name}
			}
			p.input.SetValue("")
			return p, nil
		}
		var cmd tea.Cmd
		p.input, cmd = p.input.Update(msg)
		return p, cmd
	}

	switch keyMsg.String() {
	case "esc", "q", "u":
		p.cancelled = true
	case "a", "n":
		p.adding = true
		p.input.SetValue("")
		return p, p.input.Focus()
	case "d", "delete":
		if len(p.users) > 0 {
			p.result = &UserPanelResult{Action: UserPanelRemove, Name: p.users[p.cursor]}
		}
	case "up", "k":
		if p.cursor > 0 {
			p.cursor--
		}
	case "down", "j":
		if p.cursor < len(p.users)-1 {
			p.cursor++
		}
	}

	return p, nil
}

// Cancelled returns true if the user closed the panel.
func (p *UserPanel) Cancelled() bool {
	return p.cancelled
}

// View renders the panel.
func (p *UserPanel) View(th styles.Theme, icons styles.Icons) string {
	parts := []string{th.PanelTitle.Render(icons.User + " Users")}

	if len(p.users) == 0 {
		parts = append(parts, th.Meta.Render("No users yet"))
	}
	for i, name := range p.users {
		marker := "  "
		if i == p.cursor && !p.adding {
			marker = th.Cursor.Render("> ")
		}
		parts = append(parts, marker+th.Task.Render(name))
	}

	help := "a add  d remove  esc close"
	if p.adding {
		parts = append(parts, "", th.InputActive.Render(p.input.View()))
		help = "enter add  esc back"
	}
	parts = append(parts, th.Help.Render(help))

	return th.Panel.Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
}
