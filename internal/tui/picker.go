package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/hay-kot/pear/internal/core/background"
	"github.com/hay-kot/pear/internal/core/styles"
)

// PickerAction is what the user chose in the background picker.
type PickerAction int

const (
	PickerNone        PickerAction = iota
	PickerSelect                   // enter on a catalog entry
	PickerColor                    // custom hex submitted
	PickerImage                    // image path submitted
	PickerRemoveImage              // x
)

// PickerResult holds the outcome of the picker.
type PickerResult struct {
	Action     PickerAction
	Descriptor background.Descriptor
	Value      string // hex or path
}

type pickerInput int

const (
	inputNone pickerInput = iota
	inputColor
	inputImage
)

var pickerKinds = []background.Kind{
	background.KindColor,
	background.KindGradient,
	background.KindPattern,
	background.KindPhoto,
}

// BackgroundPicker browses the catalog one kind at a time and takes a custom
// color or an image path.
type BackgroundPicker struct {
	kind      int
	cursor    int
	items     []background.Descriptor
	current   background.State
	input     textinput.Model
	inputMode pickerInput
	cancelled bool
	result    *PickerResult
}

// NewBackgroundPicker opens on the kind of the current descriptor.
func NewBackgroundPicker(current background.State) *BackgroundPicker {
	p := &BackgroundPicker{current: current, input: textinput.New()}
	p.input.Prompt = ""

	for i, k := range pickerKinds {
		if k == current.Descriptor.Kind {
			p.kind = i
		}
	}
	p.load()
	for i, d := range p.items {
		if d == current.Descriptor {
			p.cursor = i
		}
	}
	return p
}

func (p *BackgroundPicker) load() {
	p.items = background.Catalog(pickerKinds[p.kind])
	p.cursor = 0
}

// Update handles key events for the picker.
func (p *BackgroundPicker) Update(msg tea.Msg) (*BackgroundPicker, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return p, nil
	}

	if p.inputMode != inputNone {
		return p.updateInput(keyMsg)
	}

	switch keyMsg.String() {
	case "esc", "q", "b":
		p.cancelled = true
	case "enter", " ":
		if len(p.items) > 0 {
			p.result = &PickerResult{Action: PickerSelect, Descriptor: p.items[p.cursor]}
		}
	case "up", "k":
		if p.cursor > 0 {
			p.cursor--
		}
	case "down", "j":
		if p.cursor < len(p.items)-1 {
			p.cursor++
		}
	case "tab", "right", "l":
		p.kind = (p.kind + 1) % len(pickerKinds)
		p.load()
	case "shift+tab", "left", "h":
		p.kind = (p.kind + len(pickerKinds) - 1) % len(pickerKinds)
		p.load()
	case "c":
		return p, p.startInput(inputColor, "#RRGGBB")
	case "i":
		return p, p.startInput(inputImage, "path to an image file")
	case "x":
		if p.current.UploadedImage != nil {
			p.result = &PickerResult{Action: PickerRemoveImage}
		}
	}

	return p, nil
}

func (p *BackgroundPicker) startInput(mode pickerInput, placeholder string) tea.Cmd {
	p.inputMode = mode
	p.input.SetValue("")
	p.input.Placeholder = placeholder
	return p.input.Focus()
}

func (p *BackgroundPicker) updateInput(msg tea.KeyMsg) (*BackgroundPicker, tea.Cmd) {
	switch msg.String() {
	case "esc":
		p.CloseInput()
		return p, nil
	case "enter":
		value := strings.TrimSpace(p.input.Value())
		if value == "" {
			return p, nil
		}
		action := PickerColor
		if p.inputMode == inputImage {
			action = PickerImage
		}
		p.result = &PickerResult{Action: action, Value: value}
		return p, nil
	}

	var cmd tea.Cmd
	p.input, cmd = p.input.Update(msg)
	return p, cmd
}

// Cancelled returns true if the user closed the picker.
func (p *BackgroundPicker) Cancelled() bool {
	return p.cancelled
}

// TakeResult returns the pending result and clears it.
func (p *BackgroundPicker) TakeResult() *PickerResult {
	r := p.result
	p.result = nil
	return r
}

// SetCurrent updates the active background shown by the picker.
func (p *BackgroundPicker) SetCurrent(bg background.State) {
	p.current = bg
}

// CloseInput leaves the color or image prompt.
func (p *BackgroundPicker) CloseInput() {
	p.inputMode = inputNone
	p.input.Blur()
}

// View renders the picker.
func (p *BackgroundPicker) View(th styles.Theme, icons styles.Icons) string {
	tabs := make([]string, 0, len(pickerKinds))
	for i, k := range pickerKinds {
		label := string(k)
		if i == p.kind {
			tabs = append(tabs, th.Cursor.Render("["+label+"]"))
		} else {
			tabs = append(tabs, th.Meta.Render(" "+label+" "))
		}
	}

	rows := make([]string, 0, len(p.items))
	for i, d := range p.items {
		marker := "  "
		if i == p.cursor {
			marker = th.Cursor.Render("> ")
		}
		active := ""
		if d == p.current.Descriptor {
			active = th.Meta.Render(" (active)")
		}
		rows = append(rows, marker+th.SwatchFor(d)+active)
	}

	parts := []string{
		th.PanelTitle.Render(icons.Palette + " Background"),
		strings.Join(tabs, " "),
		"",
		strings.Join(rows, "\n"),
	}

	if p.current.UploadedImage != nil {
		parts = append(parts, "", th.Meta.Render(icons.Image+" an uploaded image covers this selection"))
	}

	switch p.inputMode {
	case inputColor:
		parts = append(parts, "", th.InputActive.Render(th.Meta.Render("Custom color")+"\n"+p.input.View()))
	case inputImage:
		parts = append(parts, "", th.InputActive.Render(th.Meta.Render("Image file")+"\n"+p.input.View()))
	}

	help := "←/→ kind  ↑/↓ choose  enter select  c color  i image  esc close"
	if p.current.UploadedImage != nil {
		help = "←/→ kind  ↑/↓ choose  enter select  c color  i image  x remove image  esc close"
	}
	if p.inputMode != inputNone {
		help = "enter apply  esc back"
	}
	parts = append(parts, th.Help.Render(help))

	return th.Panel.Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
}
