package theme

import "github.com/charmbracelet/lipgloss/v2"

// Theme centralizes Lip Gloss styles for the Bubble Tea UI.
type Theme struct {
	Footer FooterTheme
	Panel  PanelTheme
	List   ListTheme
	Wheel  WheelTheme
}

// FooterTheme groups styles used by the bottom status/help bar.
type FooterTheme struct {
	Help   lipgloss.Style
	Status lipgloss.Style
	Error  lipgloss.Style
	Filter lipgloss.Style
}

// PanelTheme styles framed panels and headings.
type PanelTheme struct {
	Frame   lipgloss.Style
	Focused lipgloss.Style
	Title   lipgloss.Style
	Body    lipgloss.Style
}

// ListTheme styles rows of the media list.
type ListTheme struct {
	Cursor   lipgloss.Style
	Row      lipgloss.Style
	Selected lipgloss.Style
	Meta     lipgloss.Style
	Empty    lipgloss.Style
}

// WheelTheme styles the wheel pane.
type WheelTheme struct {
	Pointer lipgloss.Style
	Label   lipgloss.Style
	Winner  lipgloss.Style
	Detail  lipgloss.Style
	Empty   lipgloss.Style
}

// Default returns the built-in theme used across the UI.
func Default() Theme {
	frame := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1)

	return Theme{
		Footer: FooterTheme{
			Help:   lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
			Status: lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
			Error:  lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Bold(true),
			Filter: lipgloss.NewStyle().Foreground(lipgloss.Color("110")),
		},
		Panel: PanelTheme{
			Frame:   frame,
			Focused: frame.BorderForeground(lipgloss.Color("212")),
			Title:   lipgloss.NewStyle().Bold(true),
			Body:    lipgloss.NewStyle(),
		},
		List: ListTheme{
			Cursor:   lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true),
			Row:      lipgloss.NewStyle(),
			Selected: lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
			Meta:     lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
			Empty:    lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Italic(true),
		},
		Wheel: WheelTheme{
			Pointer: lipgloss.NewStyle().Foreground(lipgloss.Color("231")).Bold(true),
			Label:   lipgloss.NewStyle().Bold(true),
			Winner:  lipgloss.NewStyle().Foreground(lipgloss.Color("213")).Bold(true),
			Detail:  lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
			Empty:   lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Italic(true),
		},
	}
}
