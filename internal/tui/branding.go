package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

const AppName = "hackers"

// LogoLines is the block logo shown on the banner and the empty feed screen.
var LogoLines = []string{
	"██  ██  ▄▄▄   ▄▄▄▄ ██  ▄ ▄▄▄▄ ▄▄▄▄   ▄▄▄▄",
	"██▄▄██ ██▀██ ██▀   ██▄▀  ██▄▄ ██▄█▀ ▀█▄▄",
	"██▀▀██ ██▀██ ██▄   ██▀▄  ██▀▀ ██▀█▄    ██",
	"██  ██ ██ ██  ▀▀▀▀ ██  ▀ ▀▀▀▀ ▀▀  ▀ ▀▀▀▀",
}

const CompactLogo = `[Y] hackers`

var BannerColors = []lipgloss.Color{
	lipgloss.Color("#FF6600"),
	lipgloss.Color("#FF8533"),
	lipgloss.Color("#FFA366"),
	lipgloss.Color("#F6F6EF"),
}

// Palette is one set of theme colors.
type Palette struct {
	Primary    lipgloss.Color
	Secondary  lipgloss.Color
	Accent     lipgloss.Color
	Background lipgloss.Color
	Surface    lipgloss.Color
	Text       lipgloss.Color
	Muted      lipgloss.Color
	Highlight  lipgloss.Color
	Error      lipgloss.Color
	Success    lipgloss.Color
}

// The orange is the Hacker News header color; the rest follows the site's
// beige in light mode and a warm charcoal in dark mode.
var (
	DarkPalette = Palette{
		Primary:    lipgloss.Color("#FF6600"),
		Secondary:  lipgloss.Color("#FFA366"),
		Accent:     lipgloss.Color("#FFB380"),
		Background: lipgloss.Color("#1C1B19"),
		Surface:    lipgloss.Color("#2A2825"),
		Text:       lipgloss.Color("#EDEDE6"),
		Muted:      lipgloss.Color("#8F8B82"),
		Highlight:  lipgloss.Color("#FFD166"),
		Error:      lipgloss.Color("#EF4444"),
		Success:    lipgloss.Color("#10B981"),
	}

	LightPalette = Palette{
		Primary:    lipgloss.Color("#FF6600"),
		Secondary:  lipgloss.Color("#B34700"),
		Accent:     lipgloss.Color("#CC5200"),
		Background: lipgloss.Color("#F6F6EF"),
		Surface:    lipgloss.Color("#E8E6DA"),
		Text:       lipgloss.Color("#1C1B19"),
		Muted:      lipgloss.Color("#828282"),
		Highlight:  lipgloss.Color("#9A6700"),
		Error:      lipgloss.Color("#B91C1C"),
		Success:    lipgloss.Color("#047857"),
	}
)

var (
	PrimaryColor    lipgloss.Color
	SecondaryColor  lipgloss.Color
	AccentColor     lipgloss.Color
	BackgroundColor lipgloss.Color
	SurfaceColor    lipgloss.Color
	TextColor       lipgloss.Color
	MutedColor      lipgloss.Color
	HighlightColor  lipgloss.Color
	ErrorColor      lipgloss.Color
	SuccessColor    lipgloss.Color
)

var (
	LogoStyle          lipgloss.Style
	TitleStyle         lipgloss.Style
	HeaderStyle        lipgloss.Style
	HelpStyle          lipgloss.Style
	TimeStyle          lipgloss.Style
	BadgeStyle         lipgloss.Style
	ScoreStyle         lipgloss.Style
	SeparatorStyle     lipgloss.Style
	PaneBorderStyle    lipgloss.Style
	SelectedRowStyle   lipgloss.Style
	DisabledRowStyle   lipgloss.Style
	StatusInfoStyle    lipgloss.Style
	StatusSuccessStyle lipgloss.Style
	StatusWarnStyle    lipgloss.Style
	StatusErrorStyle   lipgloss.Style
)

func init() {
	ApplyTheme(true)
}

// ApplyTheme switches every color and style to the dark or light palette.
func ApplyTheme(dark bool) {
	p := LightPalette
	if dark {
		p = DarkPalette
	}

	PrimaryColor = p.Primary
	SecondaryColor = p.Secondary
	AccentColor = p.Accent
	BackgroundColor = p.Background
	SurfaceColor = p.Surface
	TextColor = p.Text
	MutedColor = p.Muted
	HighlightColor = p.Highlight
	ErrorColor = p.Error
	SuccessColor = p.Success

	LogoStyle = lipgloss.NewStyle().
		Foreground(PrimaryColor).
		Bold(true)

	TitleStyle = lipgloss.NewStyle().
		Foreground(BackgroundColor).
		Background(PrimaryColor).
		Bold(true).
		Padding(0, 1)

	HeaderStyle = lipgloss.NewStyle().
		Foreground(SecondaryColor).
		Bold(true)

	HelpStyle = lipgloss.NewStyle().
		Foreground(MutedColor).
		Italic(true)

	TimeStyle = lipgloss.NewStyle().
		Foreground(MutedColor).
		Faint(true)

	BadgeStyle = lipgloss.NewStyle().
		Foreground(TextColor).
		Background(SurfaceColor).
		Padding(0, 1)

	ScoreStyle = lipgloss.NewStyle().
		Foreground(HighlightColor)

	SeparatorStyle = lipgloss.NewStyle().
		Foreground(MutedColor)

	PaneBorderStyle = lipgloss.NewStyle().
		Border(lipgloss.NormalBorder(), false, false, false, true).
		BorderForeground(MutedColor).
		PaddingLeft(1)

	SelectedRowStyle = lipgloss.NewStyle().
		Foreground(BackgroundColor).
		Background(AccentColor).
		Bold(true)

	DisabledRowStyle = lipgloss.NewStyle().
		Foreground(MutedColor).
		Faint(true)

	StatusInfoStyle = lipgloss.NewStyle().
		Foreground(MutedColor)

	StatusSuccessStyle = lipgloss.NewStyle().
		Foreground(SuccessColor)

	StatusWarnStyle = lipgloss.NewStyle().
		Foreground(HighlightColor)

	StatusErrorStyle = lipgloss.NewStyle().
		Foreground(ErrorColor).
		Bold(true)
}

// GlamourStyle names the glamour standard style matching the theme.
func GlamourStyle(dark bool) string {
	if dark {
		return "dark"
	}
	return "light"
}

func GetWelcomeMessage() string {
	return GetCompactBanner("Loading the front page…")
}

func GetCompactBanner(message string) string {
	var coloredLines []string
	for _, line := range LogoLines {
		coloredLines = append(coloredLines, LogoStyle.Render(line))
	}

	logo := lipgloss.JoinVertical(lipgloss.Center, coloredLines...)

	return lipgloss.JoinVertical(
		lipgloss.Center,
		logo,
		"",
		HelpStyle.Render(message),
	)
}

func ShowBanner(version string) {
	lines := make([]string, len(LogoLines)+1)
	copy(lines, LogoLines)
	lines[len(LogoLines)] = ""

	versionTag := version
	if versionTag != "" && versionTag != "dev" {
		if versionTag[0] != 'v' && versionTag[0] != 'V' {
			versionTag = "v" + versionTag
		}
		lines = append(lines, fmt.Sprintf("Hacker News in your terminal %s", versionTag))
	} else {
		lines = append(lines, "Hacker News in your terminal")
	}

	var coloredLines []string
	for i, line := range lines {
		if line == "" {
			coloredLines = append(coloredLines, line)
			continue
		}
		style := lipgloss.NewStyle().
			Foreground(BannerColors[i%len(BannerColors)]).
			Bold(i < len(LogoLines))
		coloredLines = append(coloredLines, style.Render(line))
	}

	border := lipgloss.Border{
		Top:         "─",
		Bottom:      "─",
		Left:        "│",
		Right:       "│",
		TopLeft:     "┌",
		TopRight:    "┐",
		BottomLeft:  "└",
		BottomRight: "┘",
	}

	output := lipgloss.NewStyle().
		Border(border).
		BorderForeground(lipgloss.Color("#FF6600")).
		Padding(1, 3).
		MarginTop(1).
		Render(lipgloss.JoinVertical(lipgloss.Center, coloredLines...))

	fmt.Println(lipgloss.NewStyle().
		Width(70).
		Align(lipgloss.Center).
		Render(output))

	fmt.Println(lipgloss.NewStyle().
		Width(70).
		Align(lipgloss.Center).
		MarginBottom(1).
		Foreground(lipgloss.Color("#FF6600")).
		Render("▲ ▲ ▲"))
}
