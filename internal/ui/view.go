package ui

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/linuxmatters/jivedeck/internal/audio"
	"github.com/linuxmatters/jivedeck/internal/deck"
	"github.com/linuxmatters/jivedeck/internal/engine"
	"github.com/linuxmatters/jivedeck/internal/preset"
)

// Console palette
var (
	deckGold   = lipgloss.Color("#F8B31D")
	deckAmber  = lipgloss.Color("#FF8C00")
	deckRed    = lipgloss.Color("#DC143C")
	deckGreen  = lipgloss.Color("#4A9B4A")
	deckSlate  = lipgloss.Color("#4C566A")
	deckSilver = lipgloss.Color("#B8B8B8")
)

var blocks = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// Spectrum gradient from quiet to loud
var spectrumColors = []lipgloss.Color{
	lipgloss.Color("#5E81AC"),
	lipgloss.Color("#81A1C1"),
	lipgloss.Color("#88C0D0"),
	lipgloss.Color("#A3BE8C"),
	lipgloss.Color("#EBCB8B"),
	lipgloss.Color("#FFA500"),
	lipgloss.Color("#FF8C00"),
	lipgloss.Color("#F8B31D"),
}

var (
	labelStyle = lipgloss.NewStyle().Faint(true)
	valueStyle = lipgloss.NewStyle().Bold(true)
)

// View renders the console
func (m *Model) View() string {
	var s strings.Builder

	title := lipgloss.NewStyle().Bold(true).Foreground(deckGold).Render("Jivedeck 🎧")
	s.WriteString(title)
	if m.opts.Monitor != "" {
		s.WriteString(labelStyle.Render("  monitor " + m.opts.Monitor))
	}
	s.WriteString("\n\n")

	panels := make([]string, 0, len(m.frame.Decks))
	for i, dv := range m.frame.Decks {
		panels = append(panels, m.renderDeck(dv, i == m.selected))
	}
	s.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, panels...))
	s.WriteString("\n")

	s.WriteString(m.renderMixer())
	s.WriteString("\n\n")

	spectrumWidth := len(m.frame.Spectrum) * 2
	s.WriteString(labelStyle.Render("Master spectrum:"))
	s.WriteString("\n")
	s.WriteString(renderSpectrum(stretch(m.frame.Spectrum, spectrumWidth), spectrumWidth))
	s.WriteString("\n\n")

	s.WriteString(m.renderStatus())
	s.WriteString("\n")
	if m.prompt {
		s.WriteString(fmt.Sprintf("Load into deck %s: %s", m.deckID(), m.input.View()))
	} else {
		s.WriteString(m.help.View(keys))
	}

	return lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(deckAmber).
		Padding(1, 2).
		Render(s.String())
}

func (m *Model) renderDeck(dv engine.DeckView, selected bool) string {
	var s strings.Builder

	state := labelStyle.Render("■ stopped")
	if dv.State == deck.Playing {
		state = lipgloss.NewStyle().Foreground(deckGreen).Render("▶ playing")
	}
	s.WriteString(lipgloss.NewStyle().Bold(true).Foreground(deckGold).Render("DECK " + dv.ID))
	s.WriteString("  ")
	s.WriteString(state)
	if name := m.active[dv.ID]; name != "" {
		s.WriteString(labelStyle.Render("  [" + name + "]"))
	}
	s.WriteString("\n")

	if !dv.Loaded {
		s.WriteString(labelStyle.Render("No track loaded"))
		s.WriteString("\n")
	} else {
		s.WriteString(truncate(dv.Name, m.bar.Width))
		s.WriteString("\n")
		if peaks := m.waves[dv.ID]; len(peaks) > 0 {
			s.WriteString(renderWave(peaks, dv.Percent/100))
			s.WriteString("\n")
		}
	}

	s.WriteString(m.bar.ViewAs(dv.Percent / 100))
	s.WriteString("\n")
	s.WriteString(fmt.Sprintf("%s / %s  %s  %s\n",
		valueStyle.Render(deck.FormatTimeLive(dv.Position)),
		deck.FormatTime(dv.Duration),
		labelStyle.Render("-"+deck.FormatTime(dv.Remaining)),
		labelStyle.Render(fmt.Sprintf("%d%%", int(dv.Percent)))))

	bpm := "--"
	if dv.BPM > 0 {
		bpm = fmt.Sprintf("%d", dv.BPM)
	}
	s.WriteString(labelStyle.Render("Tempo "))
	s.WriteString(valueStyle.Render(fmt.Sprintf("%.2fx", dv.Tempo)))
	s.WriteString(labelStyle.Render("  BPM "))
	s.WriteString(valueStyle.Render(bpm))
	s.WriteString(labelStyle.Render("  Cue "))
	s.WriteString(valueStyle.Render(deck.FormatTime(dv.Cue)))
	s.WriteString("\n")

	s.WriteString(labelStyle.Render("Volume "))
	s.WriteString(valueStyle.Render(fmt.Sprintf("%3.0f", dv.Volume)))
	s.WriteString(labelStyle.Render(fmt.Sprintf("  gain %.2f", dv.Gain)))
	s.WriteString("\n")

	s.WriteString(renderEQ(dv.EQ, m.frame.Labels))

	border := deckSlate
	if selected {
		border = deckGold
	}
	return lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Padding(0, 1).
		Width(m.bar.Width + 4).
		Render(s.String())
}

func renderEQ(eq map[string]float64, labels preset.Labels) string {
	rows := []struct {
		label string
		band  string
	}{
		{labels.High, "high"},
		{labels.Mid, "mid"},
		{labels.Low, "low"},
	}

	var s strings.Builder
	for i, r := range rows {
		if i > 0 {
			s.WriteString("  ")
		}
		s.WriteString(labelStyle.Render(r.label + " "))
		s.WriteString(valueStyle.Render(fmt.Sprintf("%3.0f", eq[r.band])))
	}
	return s.String()
}

func (m *Model) renderMixer() string {
	f := m.frame

	var s strings.Builder
	s.WriteString(labelStyle.Render("A "))
	s.WriteString(renderFader(f.Crossfader, 21))
	s.WriteString(labelStyle.Render(" B"))
	s.WriteString(labelStyle.Render("   Master "))
	s.WriteString(valueStyle.Render(fmt.Sprintf("%3.0f", f.Master)))
	s.WriteString("\n")
	s.WriteString(renderEffect("Reverb", f.Reverb, f.ReverbOn))
	s.WriteString("   ")
	s.WriteString(renderEffect("Delay", f.Delay, f.DelayOn))
	return s.String()
}

func renderEffect(name string, v float64, on bool) string {
	state := lipgloss.NewStyle().Foreground(deckGreen).Render("ON ")
	if !on {
		state = lipgloss.NewStyle().Foreground(deckRed).Render("OFF")
	}
	return labelStyle.Render(name+" ") + state + " " + valueStyle.Render(fmt.Sprintf("%3.0f", v))
}

func (m *Model) renderStatus() string {
	style := lipgloss.NewStyle().Foreground(deckSilver)
	switch m.status.level {
	case levelOK:
		style = lipgloss.NewStyle().Foreground(deckGreen)
	case levelWarn:
		style = lipgloss.NewStyle().Foreground(deckAmber)
	case levelError:
		style = lipgloss.NewStyle().Foreground(deckRed).Bold(true)
	}
	return style.Render(m.status.text)
}

// renderFader draws a crossfader track with a marker at x in [0, 100].
func renderFader(x float64, width int) string {
	if width < 1 {
		return ""
	}
	pos := faderPosition(x, width)
	var s strings.Builder
	for i := 0; i < width; i++ {
		if i == pos {
			s.WriteString(lipgloss.NewStyle().Foreground(deckGold).Render("●"))
		} else {
			s.WriteRune('─')
		}
	}
	return s.String()
}

func faderPosition(x float64, width int) int {
	if math.IsNaN(x) {
		x = 0
	}
	x = max(0, min(x, 100))
	return int(math.Round(x / 100 * float64(width-1)))
}

// renderWave draws one row of waveform columns, the played part highlighted.
func renderWave(peaks []audio.Peak, played float64) string {
	playedCols := int(played * float64(len(peaks)))
	playedStyle := lipgloss.NewStyle().Foreground(deckGold)
	restStyle := lipgloss.NewStyle().Foreground(deckSlate)

	var s strings.Builder
	for i, p := range peaks {
		amp := max(math.Abs(p.Min), math.Abs(p.Max))
		r := string(blocks[blockIndex(amp)])
		if i < playedCols {
			s.WriteString(playedStyle.Render(r))
		} else {
			s.WriteString(restStyle.Render(r))
		}
	}
	return s.String()
}

// renderSpectrum draws bars in [0, 1] on two rows, eight steps per row.
func renderSpectrum(barHeights []float64, width int) string {
	if len(barHeights) == 0 || width == 0 {
		return ""
	}

	stride := len(barHeights) / width
	if stride == 0 {
		stride = 1
	}
	heights := make([]float64, 0, width)
	for i := 0; i < len(barHeights) && len(heights) < width; i += stride {
		heights = append(heights, max(0, min(barHeights[i], 1)))
	}

	var result strings.Builder
	for _, h := range heights {
		if h > 0.5 {
			result.WriteString(spectrumBlock(blockIndex((h-0.5)*2), h))
		} else {
			result.WriteString(" ")
		}
	}
	result.WriteString("\n")
	for _, h := range heights {
		idx := len(blocks) - 1
		if h < 0.5 {
			idx = blockIndex(h * 2)
		}
		result.WriteString(spectrumBlock(idx, h))
	}
	return result.String()
}

func spectrumBlock(idx int, h float64) string {
	colorIdx := min(int(h*float64(len(spectrumColors)-1)), len(spectrumColors)-1)
	return lipgloss.NewStyle().
		Foreground(spectrumColors[max(colorIdx, 0)]).
		Render(string(blocks[idx]))
}

// blockIndex maps a level in [0, 1] to an index into blocks.
func blockIndex(v float64) int {
	idx := int(v * float64(len(blocks)-1))
	return max(0, min(idx, len(blocks)-1))
}

// stretch repeats each bar so n bars fill width columns.
func stretch(bars []float64, width int) []float64 {
	if len(bars) == 0 || width <= len(bars) {
		return bars
	}
	out := make([]float64, width)
	for i := range out {
		out[i] = bars[i*len(bars)/width]
	}
	return out
}

func truncate(s string, width int) string {
	r := []rune(s)
	if width <= 1 || len(r) <= width {
		return s
	}
	return string(r[:width-1]) + "…"
}
