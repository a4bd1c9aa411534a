package cli

import "github.com/charmbracelet/lipgloss"

// Deck colour palette 🎧
// Shared with the console for consistent branding across CLI and TUI
var (
	DeckGold   = lipgloss.Color("#F8B31D") // Brand yellow
	DeckAmber  = lipgloss.Color("#FF8C00") // Deep orange
	DeckRed    = lipgloss.Color("#DC143C") // Crimson
	DeckGreen  = lipgloss.Color("#4A9B4A")
	DeckSilver = lipgloss.Color("#B8B8B8") // Subtle text
)
