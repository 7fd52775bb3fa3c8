package styles

// Tip: To find icons use https://github.com/loichyan/nerdfix

var (
	IconChecked   = "\uf14a" // nf-fa-check_square
	IconUnchecked = "\uf096" // nf-fa-square_o
	IconCalendar  = "\uf073" // nf-fa-calendar
	IconUser      = "\uf007" // nf-fa-user
	IconGrip      = "\u2630" // ☰
	IconImage     = "\uf03e" // nf-fa-image
	IconPalette   = "\uf1fc" // nf-fa-paint_brush
)

// ASCII fallbacks for terminals without a Nerd Font.
var (
	ASCIIChecked   = "[x]"
	ASCIIUnchecked = "[ ]"
	ASCIICalendar  = "@"
	ASCIIUser      = "~"
	ASCIIGrip      = "::"
	ASCIIImage     = "[img]"
	ASCIIPalette   = "*"
)

// Icons is the set of glyphs used by the TUI.
type Icons struct {
	Checked   string
	Unchecked string
	Calendar  string
	User      string
	Grip      string
	Image     string
	Palette   string
}

// IconSet returns Nerd Font icons, or ASCII fallbacks when nerd is false.
func IconSet(nerd bool) Icons {
	if !nerd {
		return Icons{ASCIIChecked, ASCIIUnchecked, ASCIICalendar, ASCIIUser, ASCIIGrip, ASCIIImage, ASCIIPalette}
	}
	return Icons{IconChecked, IconUnchecked, IconCalendar, IconUser, IconGrip, IconImage, IconPalette}
}
