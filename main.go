package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/llehouerou/soundplay/internal/audio"
	"github.com/llehouerou/soundplay/internal/config"
	"github.com/llehouerou/soundplay/internal/errmsg"
	"github.com/llehouerou/soundplay/internal/icons"
	"github.com/llehouerou/soundplay/internal/input"
	"github.com/llehouerou/soundplay/internal/playback"
	"github.com/llehouerou/soundplay/internal/progress"
	"github.com/llehouerou/soundplay/internal/session"
	"github.com/llehouerou/soundplay/internal/sink"
	"github.com/llehouerou/soundplay/internal/state"
	"github.com/llehouerou/soundplay/internal/stderr"
)

const nerdFontsEnv = "SOUNDPLAY_NERD_FONTS"

type flags struct {
	duration   time.Duration
	total      time.Duration
	amplify    float64
	noProgress bool
	nerdFonts  bool
	raw        bool
	configPath string
	verbose    bool

	set  map[string]bool
	file string
}

func parseFlags(args []string) (*flags, error) {
	f := &flags{amplify: 1, set: make(map[string]bool)}

	fs := flag.NewFlagSet("soundplay", flag.ContinueOnError)
	fs.Usage = func() {
		out := fs.Output()
		_, _ = fmt.Fprintln(out, "usage: soundplay [flags] FILE")
		fs.PrintDefaults()
	}
	fs.DurationVar(&f.duration, "d", 0, "stop after this much audio (e.g. 30s)")
	fs.DurationVar(&f.duration, "duration", 0, "same as -d")
	fs.Float64Var(&f.amplify, "a", 1, "volume multiplier (0 = silent)")
	fs.Float64Var(&f.amplify, "amplify", 1, "same as -a")
	fs.BoolVar(&f.noProgress, "q", false, "do not draw the progress line")
	fs.BoolVar(&f.noProgress, "no-progress", false, "same as -q")
	fs.BoolVar(&f.nerdFonts, "nerd-fonts", false, "use Nerd Font glyphs")
	fs.DurationVar(&f.total, "total", 0, "known total duration when the file does not tell")
	fs.BoolVar(&f.raw, "raw", false, "write raw s16le PCM to stdout instead of the audio device")
	fs.StringVar(&f.configPath, "config", "", "config file path")
	fs.BoolVar(&f.verbose, "v", false, "print session info when done")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	fs.Visit(func(fl *flag.Flag) { f.set[fl.Name] = true })

	if fs.NArg() != 1 {
		fs.Usage()
		return nil, errors.New("expected exactly one FILE")
	}
	f.file = fs.Arg(0)

	if f.amplify < 0 {
		return nil, fmt.Errorf("invalid volume multiplier %v", f.amplify)
	}
	if f.duration < 0 || f.total < 0 {
		return nil, errors.New("durations must not be negative")
	}
	return f, nil
}

func (f *flags) volumeSet() bool { return f.set["a"] || f.set["amplify"] }

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	f, err := parseFlags(args)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	cfg, err := config.Load(f.configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, errmsg.Format(errmsg.OpConfigLoad, err))
		return 1
	}

	stdinTTY := input.IsTerminal(os.Stdin)
	stderrTTY := input.IsTerminal(os.Stderr)
	showProgress := !f.noProgress && stderrTTY

	// Audio libraries print to fd 2 directly; capture that so it cannot tear
	// the progress line.
	var messages <-chan string
	if showProgress {
		if err := stderr.Start(); err == nil {
			defer stderr.Stop()
			messages = stderr.Messages
		}
	}
	errOut := stderr.Original()

	var st state.Interface
	if cfg.RememberVolume || cfg.Resume {
		mgr, err := state.Open("")
		if err != nil {
			// Persistence is a convenience; play anyway.
			fmt.Fprintln(errOut, errmsg.Format(errmsg.OpStateOpen, err))
		} else {
			defer mgr.Close()
			st = mgr
		}
	}

	volume := cfg.InitialVolume()
	if f.volumeSet() {
		volume = f.amplify
	}

	opts := session.Options{
		Path:           f.file,
		Limit:          f.duration,
		Total:          f.total,
		Volume:         volume,
		VolumeSet:      f.volumeSet(),
		NoProgress:     f.noProgress,
		Threshold:      cfg.Threshold(),
		RenderInterval: cfg.RenderInterval(),
		SeekStep:       cfg.Seek(),
		VolumeStep:     cfg.VolumeStepPercent(),
		Icons:          icons.For(icons.Resolve(cfg.Icons, f.nerdFonts, os.Getenv(nerdFontsEnv))),
		RememberVolume: cfg.RememberVolume,
		Resume:         cfg.Resume,
		MPRIS:          cfg.MPRIS,
		Notify:         cfg.Notify,
	}

	env := session.Env{
		Stdin:     os.Stdin,
		Stderr:    errOut,
		StdinTTY:  stdinTTY,
		StderrTTY: stderrTTY,
		RawMode:   input.TerminalRawMode(os.Stdin),
		Width:     terminalWidth(errOut),
		Messages:  messages,
		Renderer:  lipgloss.NewRenderer(errOut),
		OpenSink:  sinkOpener(f.raw, os.Stdout, cfg.Buffer()),
		State:     st,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	final, err := session.New(opts, env).Run(ctx)
	if err != nil {
		fmt.Fprintln(errOut, errmsg.FormatWith(errmsg.OpFor(err), f.file, err))
		return 1
	}
	if f.verbose {
		printSummary(errOut, final)
	}
	return 0
}

func sinkOpener(raw bool, stdout io.Writer, buffer time.Duration) func(audio.Format) (playback.Sink, error) {
	if raw {
		return func(audio.Format) (playback.Sink, error) {
			return sink.NewRaw(stdout), nil
		}
	}
	return func(format audio.Format) (playback.Sink, error) {
		return sink.Open(format, sink.Options{Buffer: buffer})
	}
}

func terminalWidth(out *os.File) func() int {
	fd := int(out.Fd()) //nolint:gosec // fd fits in int
	return func() int {
		w, _, err := term.GetSize(fd)
		if err != nil {
			return 0
		}
		return w
	}
}

func printSummary(w io.Writer, s playback.Snapshot) {
	total := "unknown"
	if s.Total > 0 {
		total = progress.FormatTime(s.Total)
	}
	muted := ""
	if s.Muted {
		muted = ", muted"
	}
	_, _ = fmt.Fprintf(w, "%s at %s / %s (volume %d%%%s)\n",
		s.State, progress.FormatTime(s.Elapsed), total, int(s.Volume*100+0.5), muted)
}
