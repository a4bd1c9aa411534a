package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/linuxmatters/jivedeck/internal/audio"
	"github.com/linuxmatters/jivedeck/internal/cli"
	"github.com/linuxmatters/jivedeck/internal/config"
	"github.com/linuxmatters/jivedeck/internal/deck"
	"github.com/linuxmatters/jivedeck/internal/engine"
	"github.com/linuxmatters/jivedeck/internal/output"
	"github.com/linuxmatters/jivedeck/internal/preset"
	"github.com/linuxmatters/jivedeck/internal/renderer"
	"github.com/linuxmatters/jivedeck/internal/stream"
	"github.com/linuxmatters/jivedeck/internal/ui"
)

// version is set via ldflags at build time
// Local dev builds: "dev"
// Release builds: git tag (e.g. "v0.1.0")
var version = "dev"

var CLI struct {
	Version bool `help:"Show version information"`

	Console  ConsoleCmd  `cmd:"" default:"withargs" help:"Open the two-deck console"`
	Serve    ServeCmd    `cmd:"" help:"Run the preset service"`
	BPM      BPMCmd      `cmd:"" name:"bpm" help:"Detect the tempo of audio files"`
	Waveform WaveformCmd `cmd:"" help:"Render a track's waveform to PNG"`
}

// ConsoleCmd runs the interactive console.
type ConsoleCmd struct {
	TrackA string `arg:"" name:"deck-a" help:"Track to load on deck A" optional:""`
	TrackB string `arg:"" name:"deck-b" help:"Track to load on deck B" optional:""`

	NoAudio       bool          `help:"Render without a sound device (clock runs from a timer)"`
	Monitor       string        `help:"Serve the master bus over WebRTC on this address, e.g. :8089" default:"${monitor}"`
	Record        string        `help:"Record the master bus to a WAV file" type:"path"`
	LogFile       string        `help:"Log file while the console owns the terminal" default:"${log_file}" type:"path"`
	ServerURL     string        `help:"Preset service URL" default:"${server_url}"`
	PresetTimeout time.Duration `help:"Preset service request timeout" default:"${preset_timeout}"`
	LocalPresets  string        `help:"Local preset store used when the service is unreachable" default:"${local_presets}" type:"path"`
	NoPresets     bool          `help:"Disable presets"`
}

// ServeCmd runs the preset HTTP service.
type ServeCmd struct {
	Port    int    `help:"Listen port" default:"${port}"`
	Presets string `help:"Preset store file" default:"${presets_file}" type:"path"`
}

// BPMCmd analyses files and prints their tempo.
type BPMCmd struct {
	Files []string `arg:"" name:"file" help:"WAV, MP3 or FLAC files" type:"existingfile"`
}

// WaveformCmd renders a waveform PNG.
type WaveformCmd struct {
	Input  string `arg:"" name:"input" help:"Audio file" type:"existingfile"`
	Output string `arg:"" name:"output" help:"Output PNG (default: input with .png)" optional:""`
	Width  int    `help:"Image width in pixels" default:"${wave_width}"`
	Height int    `help:"Image height in pixels" default:"${wave_height}"`
	Color  string `help:"Waveform colour as hex RGB" default:"${wave_color}"`
	Title  string `help:"Title drawn above the waveform (default: file name)"`
}

func main() {
	rt := config.Load()

	ctx := kong.Parse(&CLI,
		kong.Name("jivedeck"),
		kong.Description("Two-deck DJ console with scriptable sliders."),
		kong.Vars{
			"version":        version,
			"port":           strconv.Itoa(rt.Port),
			"presets_file":   rt.PresetsFile,
			"server_url":     rt.ServerURL,
			"preset_timeout": rt.PresetTimeout.String(),
			"local_presets":  rt.LocalPresets,
			"monitor":        rt.MonitorAddr,
			"log_file":       rt.LogFile,
			"wave_width":     strconv.Itoa(config.WaveformWidth),
			"wave_height":    strconv.Itoa(config.WaveformHeight),
			"wave_color":     fmt.Sprintf("%02X%02X%02X", config.WaveColorR, config.WaveColorG, config.WaveColorB),
		},
		kong.UsageOnError(),
		kong.Help(cli.StyledHelpPrinter(kong.HelpOptions{Compact: true})),
	)

	if CLI.Version {
		cli.PrintVersion(version)
		os.Exit(0)
	}

	if err := ctx.Run(); err != nil {
		cli.PrintError(err.Error())
		os.Exit(1)
	}
}

// Run opens the console until the user quits or a signal arrives.
func (c *ConsoleCmd) Run() error {
	logFile, err := tea.LogToFile(c.LogFile, "jivedeck")
	if err != nil {
		return fmt.Errorf("opening log file: %w", err)
	}
	defer logFile.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var tap *audio.SharedAudioBuffer
	if c.Monitor != "" || c.Record != "" {
		tap = audio.NewSharedAudioBuffer(config.SampleRate * config.Channels)
	}

	e, err := engine.New(engine.Options{SampleRate: config.SampleRate, Tap: tap})
	if err != nil {
		return err
	}

	sink := openSink(e, c.NoAudio)
	sink.Start()

	var recorder *audio.Recorder
	recordDone := make(chan error, 1)
	if c.Record != "" {
		recorder, err = audio.NewRecorder(c.Record, config.SampleRate, config.Channels)
		if err != nil {
			sink.Close()
			return err
		}
		tap.Attach(audio.ConsumerRecorder)
		go func() {
			recordDone <- recorder.Drain(tap, config.BlockFrames*config.Channels)
		}()
	}

	if c.Monitor != "" {
		monitor := stream.NewMonitor(tap)
		go func() {
			if err := monitor.Serve(ctx, c.Monitor); err != nil {
				log.Printf("monitor: %v", err)
			}
		}()
	}

	var presets *preset.Client
	if !c.NoPresets {
		presets = preset.NewClient(c.ServerURL, c.PresetTimeout, preset.NewLocalStore(c.LocalPresets))
	}

	model := ui.NewModel(e, ui.Options{
		Tracks:  map[string]string{"A": c.TrackA, "B": c.TrackB},
		Presets: presets,
		Monitor: c.Monitor,
	})
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	_, runErr := p.Run()
	if errors.Is(runErr, tea.ErrProgramKilled) {
		runErr = nil
	}

	stop()
	if err := sink.Close(); err != nil {
		log.Printf("closing output: %v", err)
	}
	if tap != nil {
		tap.Close()
	}

	if recorder != nil {
		drainErr := <-recordDone
		closeErr := recorder.Close()
		if err := errors.Join(drainErr, closeErr); err != nil {
			cli.PrintError(fmt.Sprintf("recording: %v", err))
		} else {
			secs := float64(recorder.Frames()) / config.SampleRate
			cli.PrintSuccess(fmt.Sprintf("Recorded %s to %s", deck.FormatTime(secs), c.Record))
		}
	}

	if runErr != nil {
		return fmt.Errorf("running console: %w", runErr)
	}
	return nil
}

// openSink prefers the sound device and falls back to the headless sink.
func openSink(e *engine.Engine, noAudio bool) output.Sink {
	if !noAudio {
		speaker, err := output.NewSpeaker(e, config.SampleRate)
		if err == nil {
			return speaker
		}
		log.Printf("audio device unavailable, rendering silently: %v", err)
	}
	return output.NewNullSink(e, config.SampleRate)
}

// Run serves the preset API until interrupted.
func (s *ServeCmd) Run() error {
	store, err := preset.NewStore(s.Presets)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.Port),
		Handler:           preset.NewServer(store),
		ReadHeaderTimeout: 10 * time.Second,
	}

	cli.PrintBanner()
	cli.PrintInfo("Presets", s.Presets)
	cli.PrintInfo("Listening", fmt.Sprintf("http://localhost:%d", s.Port))

	errc := make(chan error, 1)
	go func() {
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return fmt.Errorf("preset service: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	cli.PrintSuccess("Preset service stopped")
	return nil
}

// Run decodes each file and prints its tempo and levels.
func (b *BPMCmd) Run() error {
	var failed int
	for _, path := range b.Files {
		track, err := audio.DecodeFile(path)
		if err != nil {
			cli.PrintError(fmt.Sprintf("%s: %v", path, err))
			failed++
			continue
		}

		profile := audio.AnalyzeTrack(track)
		cli.PrintSummary(profile.Name, []cli.Field{
			{Key: "BPM", Value: strconv.Itoa(profile.BPM)},
			{Key: "Duration", Value: deck.FormatTime(profile.Duration)},
			{Key: "Format", Value: fmt.Sprintf("%d Hz, %d ch", profile.SampleRate, profile.Channels)},
			{Key: "Peak", Value: fmt.Sprintf("%.1f dBFS", audio.ToDBFS(profile.Peak))},
			{Key: "RMS", Value: fmt.Sprintf("%.1f dBFS", audio.ToDBFS(profile.RMS))},
		})
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d files could not be analysed", failed, len(b.Files))
	}
	return nil
}

// Run renders the waveform of one file.
func (w *WaveformCmd) Run() error {
	track, err := audio.DecodeFile(w.Input)
	if err != nil {
		return err
	}

	opts := renderer.DefaultOptions()
	opts.Height = w.Height
	if opts.Wave, err = renderer.ParseColor(w.Color); err != nil {
		return fmt.Errorf("invalid --color: %w", err)
	}
	opts.Title = w.Title
	if opts.Title == "" {
		opts.Title = track.Name
	}
	opts.Caption = fmt.Sprintf("%s · %d BPM", deck.FormatTime(track.Duration()), audio.DetectBPM(track.Channel(0), track.SampleRate))

	img, err := renderer.Waveform(audio.WaveformPeaks(track.Channel(0), w.Width), opts)
	if err != nil {
		return err
	}

	out := w.Output
	if out == "" {
		out = strings.TrimSuffix(w.Input, filepath.Ext(w.Input)) + ".png"
	}
	if err := renderer.SavePNG(img, out); err != nil {
		return err
	}
	cli.PrintSuccess(fmt.Sprintf("Waveform written to %s", out))
	return nil
}
