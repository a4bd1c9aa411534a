package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/alecthomas/kong"
)

type testCLI struct {
	Verbose bool `help:"Log more"`

	Play struct {
		Track string  `arg:"" help:"Track to play"`
		Tempo float64 `help:"Tempo ratio" default:"1.0"`
	} `cmd:"" help:"Play a track"`

	Serve struct {
		Port int `help:"Listen port" default:"3001"`
	} `cmd:"" help:"Run the service"`
}

func renderHelp(t *testing.T, args ...string) string {
	t.Helper()

	var out bytes.Buffer
	var c testCLI
	parser, err := kong.New(&c,
		kong.Name("jivedeck"),
		kong.Writers(&out, &out),
		kong.Exit(func(int) {}),
		kong.Help(StyledHelpPrinter(kong.HelpOptions{Compact: true})),
	)
	if err != nil {
		t.Fatalf("kong.New: %v", err)
	}
	_, _ = parser.Parse(append(args, "--help"))
	return out.String()
}

func TestHelpListsCommands(t *testing.T) {
	out := renderHelp(t)

	for _, want := range []string{"Jivedeck", "Commands:", "play", "Play a track", "serve", "--verbose", "jivedeck <command> [flags]"} {
		if !strings.Contains(out, want) {
			t.Errorf("root help missing %q:\n%s", want, out)
		}
	}
}

func TestHelpForCommand(t *testing.T) {
	out := renderHelp(t, "play")

	for _, want := range []string{"Play a track", "jivedeck play <track> [flags]", "Arguments:", "--tempo", "(default: 1.0)", "--verbose"} {
		if !strings.Contains(out, want) {
			t.Errorf("play help missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "--port") {
		t.Error("play help should not list serve flags")
	}
}

func TestFormatSummary(t *testing.T) {
	out := FormatSummary("Track analysed", []Field{
		{Key: "BPM", Value: "128"},
		{Key: "Duration", Value: "3:30"},
	})

	for _, want := range []string{"Track analysed", "BPM:", "128", "Duration:", "3:30"} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q:\n%s", want, out)
		}
	}
	if lines := strings.Count(out, "\n"); lines != 3 {
		t.Errorf("summary has %d newlines, want 3", lines)
	}
}
