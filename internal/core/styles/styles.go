// Package styles provides shared lipgloss styles for CLI and TUI components.
// Styles are derived from the active background so text keeps its contrast.
package styles

import (
	"regexp"

	glamouransi "github.com/charmbracelet/glamour/ansi"
	glamourstyles "github.com/charmbracelet/glamour/styles"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/hay-kot/pear/internal/core/background"
	"github.com/hay-kot/pear/internal/core/task"
)

// Palette defines a minimal semantic theme palette.
type Palette struct {
	Primary    lipgloss.Color
	Foreground lipgloss.Color
	Muted      lipgloss.Color
	Background lipgloss.Color
	Surface    lipgloss.Color
	Success    lipgloss.Color
	Warning    lipgloss.Color
	Error      lipgloss.Color
}

// Built-in palettes. Light text for dark backgrounds and the reverse.
var (
	DarkPalette = Palette{
		Primary:    lipgloss.Color("#7aa2f7"),
		Foreground: lipgloss.Color("#F5F5F7"),
		Muted:      lipgloss.Color("#A1A1AA"),
		Background: lipgloss.Color("#1d1d1f"),
		Surface:    lipgloss.Color("#3b4261"),
		Success:    lipgloss.Color("#9ece6a"),
		Warning:    lipgloss.Color("#e0af68"),
		Error:      lipgloss.Color("#f7768e"),
	}
	LightPalette = Palette{
		Primary:    lipgloss.Color("#0071E3"),
		Foreground: lipgloss.Color("#1d1d1f"),
		Muted:      lipgloss.Color("#6E6E73"),
		Background: lipgloss.Color("#FFFFFF"),
		Surface:    lipgloss.Color("#E9ECEF"),
		Success:    lipgloss.Color("#34C759"),
		Warning:    lipgloss.Color("#FF9500"),
		Error:      lipgloss.Color("#FF3B30"),
	}
)

// Theme holds the resolved styles for one background.
type Theme struct {
	Palette Palette
	Dark    bool
	Canvas  lipgloss.Color

	App         lipgloss.Style
	Title       lipgloss.Style
	Summary     lipgloss.Style
	Task        lipgloss.Style
	TaskDone    lipgloss.Style
	Overdue     lipgloss.Style
	Meta        lipgloss.Style
	Cursor      lipgloss.Style
	DragSource  lipgloss.Style
	DropTarget  lipgloss.Style
	Input       lipgloss.Style
	InputActive lipgloss.Style
	Status      lipgloss.Style
	Error       lipgloss.Style
	Help        lipgloss.Style
	Panel       lipgloss.Style
	PanelTitle  lipgloss.Style
	Swatch      lipgloss.Style
}

// New resolves a theme. mode is "light", "dark" or "auto"; auto follows the
// dark flag of bg.
func New(mode string, bg background.State) Theme {
	dark := bg.Dark()
	switch mode {
	case "light":
		dark = false
	case "dark":
		dark = true
	}

	p := LightPalette
	if dark {
		p = DarkPalette
	}

	canvas := CanvasColor(bg, p)

	t := Theme{Palette: p, Dark: dark, Canvas: canvas}

	base := lipgloss.NewStyle().Foreground(p.Foreground)
	t.App = base.Background(canvas).Padding(1, 2)
	t.Title = base.Bold(true)
	t.Summary = lipgloss.NewStyle().Foreground(p.Muted)
	t.Task = base
	t.TaskDone = lipgloss.NewStyle().Foreground(p.Muted).Strikethrough(true)
	t.Overdue = lipgloss.NewStyle().Foreground(p.Error).Bold(true)
	t.Meta = lipgloss.NewStyle().Foreground(p.Muted)
	t.Cursor = lipgloss.NewStyle().Foreground(p.Primary).Bold(true)
	t.DragSource = lipgloss.NewStyle().Foreground(p.Muted).Faint(true)
	t.DropTarget = lipgloss.NewStyle().
		Border(lipgloss.NormalBorder(), true, false, false, false).
		BorderForeground(p.Primary)
	t.Input = lipgloss.NewStyle().
		Border(lipgloss.ThickBorder(), false, false, false, true).
		BorderForeground(p.Muted).
		PaddingLeft(1)
	t.InputActive = t.Input.BorderForeground(p.Primary)
	t.Status = lipgloss.NewStyle().Foreground(p.Success)
	t.Error = lipgloss.NewStyle().Foreground(p.Error)
	t.Help = lipgloss.NewStyle().Foreground(p.Muted).MarginTop(1)
	t.Panel = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(p.Primary).
		Padding(0, 1)
	t.PanelTitle = base.Bold(true).MarginBottom(1)
	t.Swatch = lipgloss.NewStyle().Padding(0, 1)

	return t
}

// TypeBadge renders the label of a task type in its accent color.
func (t Theme) TypeBadge(typ task.Type) string {
	info := typ.Info()
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color(info.Color)).
		Bold(true).
		Render(info.Label)
}

// SwatchFor renders name over the canvas color of d.
func (t Theme) SwatchFor(d background.Descriptor) string {
	st := background.State{Descriptor: d}
	fg := LightPalette.Foreground
	if d.Dark {
		fg = DarkPalette.Foreground
	}
	return t.Swatch.
		Background(CanvasColor(st, t.Palette)).
		Foreground(fg).
		Render(d.Name)
}

var hexColor = regexp.MustCompile(`#[0-9A-Fa-f]{6}\b`)

// CanvasColor approximates bg as one terminal color. Gradients and patterns
// blend the colors they mention; photos and uploaded images fall back to the
// palette background.
func CanvasColor(bg background.State, fallback Palette) lipgloss.Color {
	if bg.UploadedImage != nil {
		return fallback.Background
	}

	d := bg.Descriptor
	switch d.Kind {
	case background.KindColor:
		if c, err := colorful.Hex(d.Value); err == nil {
			return lipgloss.Color(c.Hex())
		}
	case background.KindGradient, background.KindPattern:
		if c, ok := blend(hexColor.FindAllString(d.Value, -1)); ok {
			return lipgloss.Color(c.Hex())
		}
	}
	return fallback.Background
}

// blend averages colors in Lab space.
func blend(hexes []string) (colorful.Color, bool) {
	var (
		out colorful.Color
		n   int
	)
	for _, h := range hexes {
		c, err := colorful.Hex(h)
		if err != nil {
			continue
		}
		n++
		if n == 1 {
			out = c
			continue
		}
		out = out.BlendLab(c, 1/float64(n)).Clamped()
	}
	return out, n > 0
}

// GlamourStyle returns a Glamour style config matching the theme.
func (t Theme) GlamourStyle() glamouransi.StyleConfig {
	cfg := glamourstyles.LightStyleConfig
	if t.Dark {
		cfg = glamourstyles.DarkStyleConfig
	}

	fg := string(t.Palette.Foreground)
	primary := string(t.Palette.Primary)
	muted := string(t.Palette.Muted)

	cfg.Document.Color = &fg
	cfg.Paragraph.Color = &fg
	cfg.Heading.Color = &primary
	cfg.H1.Color = &fg
	cfg.H2.Color = &primary
	cfg.H3.Color = &primary
	cfg.BlockQuote.Color = &muted
	cfg.HorizontalRule.Color = &muted
	cfg.Item.Color = &fg
	cfg.Code.Color = &primary

	return cfg
}

// FormTheme returns a huh theme using the palette accents.
func (t Theme) FormTheme() *huh.Theme {
	ft := huh.ThemeBase()
	ft.Focused.Title = ft.Focused.Title.Foreground(t.Palette.Primary).Bold(true)
	ft.Focused.Description = ft.Focused.Description.Foreground(t.Palette.Muted)
	ft.Focused.SelectSelector = ft.Focused.SelectSelector.Foreground(t.Palette.Primary)
	ft.Focused.SelectedOption = ft.Focused.SelectedOption.Foreground(t.Palette.Success)
	ft.Focused.ErrorMessage = ft.Focused.ErrorMessage.Foreground(t.Palette.Error)
	ft.Focused.ErrorIndicator = ft.Focused.ErrorIndicator.Foreground(t.Palette.Error)
	ft.Blurred.Title = ft.Blurred.Title.Foreground(t.Palette.Muted)
	return ft
}
