package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Styles
var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(DeckGold).
			MarginBottom(1)

	SubtitleStyle = lipgloss.NewStyle().
			Foreground(DeckSilver).
			Italic(true)

	HeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(DeckAmber).
			MarginTop(1).
			MarginBottom(1)

	SuccessStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(DeckGreen)

	ErrorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(DeckRed)

	// Highlight style for important values
	HighlightStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(DeckGold)

	KeyStyle = lipgloss.NewStyle().
			Foreground(DeckSilver)

	ValueStyle = lipgloss.NewStyle().
			Bold(true)

	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(DeckAmber).
			Padding(1, 2).
			MarginTop(1).
			MarginBottom(1)
)

const (
	appTitle       = "Jivedeck 🎧"
	appDescription = "Two decks, one crossfader: beat-matched mixing with scriptable sliders in your terminal."
)

// PrintBanner prints the application banner
func PrintBanner() {
	fmt.Println(TitleStyle.Render(appTitle))
	fmt.Println(SubtitleStyle.Render(appDescription))
	fmt.Println()
}

// PrintVersion prints version information
func PrintVersion(version string) {
	fmt.Println(TitleStyle.Render(appTitle))
	fmt.Printf("%s %s\n", KeyStyle.Render("Version:"), ValueStyle.Render(version))
	fmt.Println()
}

// PrintError prints an error message
func PrintError(message string) {
	fmt.Fprintf(os.Stderr, "%s %s\n", ErrorStyle.Render("Error:"), message)
}

// PrintWarning prints a warning message
func PrintWarning(message string) {
	fmt.Printf("%s %s\n", HighlightStyle.Render("Warning:"), message)
}

// PrintSuccess prints a success message
func PrintSuccess(message string) {
	fmt.Printf("%s %s\n", SuccessStyle.Render("✓"), message)
}

// PrintInfo prints an informational message
func PrintInfo(key, value string) {
	fmt.Printf("%s %s\n", KeyStyle.Render(key+":"), ValueStyle.Render(value))
}

// PrintSection prints a section header
func PrintSection(title string) {
	fmt.Println(HeaderStyle.Render(title))
}

// PrintBox prints content in a styled box
func PrintBox(content string) {
	fmt.Println(BoxStyle.Render(content))
}

// Field is one labelled row of a summary box.
type Field struct {
	Key   string
	Value string
}

// PrintSummary prints a titled box of aligned key/value rows.
func PrintSummary(title string, fields []Field) {
	PrintBox(FormatSummary(title, fields))
}

// FormatSummary renders the content of a summary box.
func FormatSummary(title string, fields []Field) string {
	width := 0
	for _, f := range fields {
		width = max(width, len(f.Key)+1)
	}

	var b strings.Builder
	b.WriteString(SuccessStyle.Render(title))
	b.WriteString("\n")
	for _, f := range fields {
		b.WriteString("\n")
		b.WriteString(KeyStyle.Render(fmt.Sprintf("%-*s ", width, f.Key+":")))
		b.WriteString(ValueStyle.Render(f.Value))
	}
	return b.String()
}
