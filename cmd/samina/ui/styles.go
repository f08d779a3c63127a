// Package ui provides the visual styling for the Samina terminal UI,
// with light/dark mode support.
package ui

import (
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Color palette. Indigo primary over slate neutrals, matching the Samina
// brand.
var (
	// Light Mode Colors (Default)
	LightBackground = lipgloss.Color("#f8fafc") // slate-50
	LightForeground = lipgloss.Color("#0f172a") // slate-900
	LightPrimary    = lipgloss.Color("#4f46e5") // indigo-600
	LightAccent     = lipgloss.Color("#6366f1") // indigo-500
	LightSecondary  = lipgloss.Color("#e2e8f0") // slate-200
	LightMuted      = lipgloss.Color("#94a3b8") // slate-400
	LightBorder     = lipgloss.Color("#e2e8f0") // slate-200
	LightCard       = lipgloss.Color("#ffffff") // white

	// Dark Mode Colors
	DarkBackground = lipgloss.Color("#0f172a") // slate-900
	DarkForeground = lipgloss.Color("#f1f5f9") // slate-100
	DarkPrimary    = lipgloss.Color("#818cf8") // indigo-400
	DarkAccent     = lipgloss.Color("#a5b4fc") // indigo-300
	DarkSecondary  = lipgloss.Color("#1e293b") // slate-800
	DarkMuted      = lipgloss.Color("#64748b") // slate-500
	DarkBorder     = lipgloss.Color("#334155") // slate-700
	DarkCard       = lipgloss.Color("#1e293b") // slate-800

	// Semantic Colors (same in both modes)
	Destructive = lipgloss.Color("#ef4444") // red-500
	Success     = lipgloss.Color("#22c55e") // green-500
	Warning     = lipgloss.Color("#f59e0b") // amber-500
	Info        = lipgloss.Color("#3b82f6") // blue-500

	// Heart color for like counts
	Like = lipgloss.Color("#f43f5e") // rose-500
)

// Theme holds the current color scheme
type Theme struct {
	Background lipgloss.Color
	Foreground lipgloss.Color
	Primary    lipgloss.Color
	Accent     lipgloss.Color
	Secondary  lipgloss.Color
	Muted      lipgloss.Color
	Border     lipgloss.Color
	Card       lipgloss.Color
	IsDark     bool
}

// LightTheme returns the light mode theme
func LightTheme() Theme {
	return Theme{
		Background: LightBackground,
		Foreground: LightForeground,
		Primary:    LightPrimary,
		Accent:     LightAccent,
		Secondary:  LightSecondary,
		Muted:      LightMuted,
		Border:     LightBorder,
		Card:       LightCard,
		IsDark:     false,
	}
}

// DarkTheme returns the dark mode theme
func DarkTheme() Theme {
	return Theme{
		Background: DarkBackground,
		Foreground: DarkForeground,
		Primary:    DarkPrimary,
		Accent:     DarkAccent,
		Secondary:  DarkSecondary,
		Muted:      DarkMuted,
		Border:     DarkBorder,
		Card:       DarkCard,
		IsDark:     true,
	}
}

// DetectTheme auto-detects based on terminal or returns light mode
func DetectTheme() Theme {
	// COLORFGBG is usually "foreground;background"; low background
	// indices indicate a dark terminal.
	colorTerm := os.Getenv("COLORFGBG")
	if colorTerm != "" {
		parts := strings.Split(colorTerm, ";")
		if len(parts) == 2 {
			if bgIdx, err := strconv.Atoi(parts[1]); err == nil {
				if (bgIdx >= 0 && bgIdx <= 6) || bgIdx == 8 {
					return DarkTheme()
				}
			}
		}
	}

	// Check for explicit dark mode preference
	if os.Getenv("SAMINA_DARK_MODE") == "1" {
		return DarkTheme()
	}

	return LightTheme()
}

// Styles holds all the styled components
type Styles struct {
	Theme Theme

	// Layout
	App     lipgloss.Style
	Header  lipgloss.Style
	Footer  lipgloss.Style
	Content lipgloss.Style
	Sidebar lipgloss.Style

	// Text
	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Body     lipgloss.Style
	Muted    lipgloss.Style
	Bold     lipgloss.Style

	// Feed
	Card         lipgloss.Style
	CardSelected lipgloss.Style
	Tab          lipgloss.Style
	TabActive    lipgloss.Style
	SearchBox    lipgloss.Style
	Badge        lipgloss.Style
	LikeCount    lipgloss.Style

	// Forms
	Prompt     lipgloss.Style
	FieldLabel lipgloss.Style
	Input      lipgloss.Style

	// Assistant
	UserMessage  lipgloss.Style
	ModelMessage lipgloss.Style

	// Status
	Success lipgloss.Style
	Error   lipgloss.Style
	Warning lipgloss.Style
	Info    lipgloss.Style

	// Components
	Spinner lipgloss.Style
	Divider lipgloss.Style
}

// NewStyles creates a new Styles instance with the given theme
func NewStyles(theme Theme) Styles {
	return Styles{
		Theme: theme,

		// Layout styles
		App: lipgloss.NewStyle().
			Background(theme.Background).
			Foreground(theme.Foreground),

		Header: lipgloss.NewStyle().
			Background(theme.Primary).
			Foreground(lipgloss.Color("#ffffff")).
			Padding(0, 2).
			Bold(true),

		Footer: lipgloss.NewStyle().
			Foreground(theme.Muted).
			Padding(0, 2),

		Content: lipgloss.NewStyle().
			Padding(1, 2),

		Sidebar: lipgloss.NewStyle().
			Padding(1, 2).
			BorderLeft(true).
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(theme.Border),

		// Text styles
		Title: lipgloss.NewStyle().
			Foreground(theme.Primary).
			Bold(true).
			MarginBottom(1),

		Subtitle: lipgloss.NewStyle().
			Foreground(theme.Muted).
			Italic(true),

		Body: lipgloss.NewStyle().
			Foreground(theme.Foreground),

		Muted: lipgloss.NewStyle().
			Foreground(theme.Muted),

		Bold: lipgloss.NewStyle().
			Foreground(theme.Foreground).
			Bold(true),

		// Feed styles
		Card: lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(theme.Border),

		CardSelected: lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(theme.Primary),

		Tab: lipgloss.NewStyle().
			Foreground(theme.Muted).
			Padding(0, 1),

		TabActive: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ffffff")).
			Background(theme.Primary).
			Padding(0, 1).
			Bold(true),

		SearchBox: lipgloss.NewStyle().
			Foreground(theme.Foreground).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(theme.Border),

		Badge: lipgloss.NewStyle().
			Background(theme.Accent).
			Foreground(lipgloss.Color("#ffffff")).
			Padding(0, 1).
			Bold(true),

		LikeCount: lipgloss.NewStyle().
			Foreground(Like).
			Bold(true),

		// Form styles
		Prompt: lipgloss.NewStyle().
			Foreground(theme.Accent).
			Bold(true),

		FieldLabel: lipgloss.NewStyle().
			Foreground(theme.Muted).
			Bold(true),

		Input: lipgloss.NewStyle().
			Foreground(theme.Foreground),

		// Assistant styles
		UserMessage: lipgloss.NewStyle().
			Foreground(theme.Foreground).
			PaddingLeft(2),

		ModelMessage: lipgloss.NewStyle().
			Foreground(theme.Foreground).
			PaddingLeft(2).
			BorderLeft(true).
			BorderStyle(lipgloss.ThickBorder()).
			BorderForeground(theme.Accent),

		// Status styles
		Success: lipgloss.NewStyle().
			Foreground(Success).
			Bold(true),

		Error: lipgloss.NewStyle().
			Foreground(Destructive).
			Bold(true),

		Warning: lipgloss.NewStyle().
			Foreground(Warning).
			Bold(true),

		Info: lipgloss.NewStyle().
			Foreground(Info),

		// Component styles
		Spinner: lipgloss.NewStyle().
			Foreground(theme.Accent),

		Divider: lipgloss.NewStyle().
			Foreground(theme.Border),
	}
}

// DefaultStyles returns styles with the detected theme
func DefaultStyles() Styles {
	return NewStyles(DetectTheme())
}

// Logo returns the Samina ASCII logo
func Logo(s Styles) string {
	logo := `
  ___  __ _ _ __ ___ (_)_ __   __ _
 / __|/ _` + "`" + ` | '_ ` + "`" + ` _ \| | '_ \ / _` + "`" + ` |
 \__ \ (_| | | | | | | | | | | (_| |
 |___/\__,_|_| |_| |_|_|_| |_|\__,_|
`
	return s.Title.Foreground(s.Theme.Primary).Render(logo)
}

// RenderDivider returns a horizontal divider
func (s Styles) RenderDivider(width int) string {
	return s.Divider.Render(strings.Repeat("─", width))
}
