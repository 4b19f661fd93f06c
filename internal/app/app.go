// Package app wires configuration, adapters, and the pipeline behind the CLI
// commands.
package app

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/rbright/voxtrace/internal/audio"
	"github.com/rbright/voxtrace/internal/cli"
	"github.com/rbright/voxtrace/internal/config"
	"github.com/rbright/voxtrace/internal/doctor"
	"github.com/rbright/voxtrace/internal/embedding"
	"github.com/rbright/voxtrace/internal/logging"
	"github.com/rbright/voxtrace/internal/pipeline"
	"github.com/rbright/voxtrace/internal/segment"
	"github.com/rbright/voxtrace/internal/server"
	"github.com/rbright/voxtrace/internal/store"
	"github.com/rbright/voxtrace/internal/stt"
	"github.com/rbright/voxtrace/internal/vad"
	"github.com/rbright/voxtrace/internal/version"
)

type Runner struct {
	Stdout io.Writer
	Stderr io.Writer
	Logger *slog.Logger
}

func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	r := Runner{Stdout: stdout, Stderr: stderr}
	return r.Execute(ctx, args)
}

func (r Runner) Execute(ctx context.Context, args []string) int {
	parsed, err := cli.Parse(args)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n\n", err)
		fmt.Fprint(r.Stderr, cli.HelpText("voxtrace"))
		return 2
	}

	if parsed.ShowHelp {
		fmt.Fprint(r.Stdout, cli.HelpText("voxtrace"))
		return 0
	}

	if parsed.Command == cli.CommandVersion {
		fmt.Fprintln(r.Stdout, version.String())
		return 0
	}

	logRuntime, err := logging.New()
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: setup logging: %v\n", err)
		return 1
	}
	defer func() { _ = logRuntime.Close() }()

	logger := r.Logger
	if logger == nil {
		logger = logRuntime.Logger
	}

	cfgLoaded, err := config.Load(parsed.ConfigPath)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		logger.Error("load config failed", "error", err.Error())
		return 1
	}
	for _, w := range cfgLoaded.Warnings {
		msg := w.Message
		if w.Line > 0 {
			msg = fmt.Sprintf("line %d: %s", w.Line, w.Message)
		}
		fmt.Fprintf(r.Stderr, "warning: %s\n", msg)
		logger.Warn("config warning", "line", w.Line, "message", w.Message)
	}

	logger.Info("command start",
		"command", parsed.Command,
		"config", cfgLoaded.Path,
		"log", logRuntime.Path,
	)

	switch parsed.Command {
	case cli.CommandDoctor:
		report := doctor.Run(ctx, cfgLoaded)
		fmt.Fprintln(r.Stdout, report.String())
		if report.OK() {
			return 0
		}
		return 1
	case cli.CommandDevices:
		return r.commandDevices(ctx)
	case cli.CommandServe:
		return r.commandServe(ctx, cfgLoaded.Config, logger)
	case cli.CommandProcess:
		return r.commandProcess(ctx, cfgLoaded.Config, logger, parsed.Files)
	case cli.CommandListen:
		return r.commandListen(ctx, cfgLoaded.Config, logger)
	default:
		fmt.Fprintf(r.Stderr, "error: unsupported command %q\n", parsed.Command)
		return 2
	}
}

func (r Runner) commandDevices(ctx context.Context) int {
	devices, err := audio.ListDevices(ctx)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	if len(devices) == 0 {
		fmt.Fprintln(r.Stdout, "no audio devices found")
		return 1
	}

	for _, device := range devices {
		defaultMark := " "
		if device.Default {
			defaultMark = "*"
		}
		availability := "yes"
		if !device.Available {
			availability = "no"
		}
		muted := "no"
		if device.Muted {
			muted = "yes"
		}
		fmt.Fprintf(
			r.Stdout,
			"%s id=%s | description=%q | state=%s | available=%s | muted=%s\n",
			defaultMark,
			device.ID,
			device.Description,
			device.State,
			availability,
			muted,
		)
	}

	return 0
}

func (r Runner) commandServe(ctx context.Context, cfg config.Config, logger *slog.Logger) int {
	p, st, cleanup, err := buildPipeline(cfg, logger)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	defer cleanup()

	jobs := make(chan pipeline.Job, cfg.Pipeline.QueueDepth)
	workersDone := make(chan struct{})
	go func() {
		pipeline.RunWorkers(ctx, cfg.Pipeline.Workers, p, jobs)
		close(workersDone)
	}()

	srv := server.New(logger, cfg.Server.Addr, st, jobs)
	err = srv.Run(ctx)
	close(jobs)
	<-workersDone

	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	return 0
}

func (r Runner) commandProcess(ctx context.Context, cfg config.Config, logger *slog.Logger, files []string) int {
	p, _, cleanup, err := buildPipeline(cfg, logger)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	defer cleanup()

	exit := 0
	for _, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			fmt.Fprintf(r.Stderr, "error: read %s: %v\n", file, err)
			exit = 1
			continue
		}

		pcm, info, err := audio.DecodeWAV(data)
		if err != nil {
			fmt.Fprintf(r.Stderr, "error: decode %s: %v\n", file, err)
			exit = 1
			continue
		}
		buf, err := audio.Normalize(pcm, info)
		if err != nil {
			fmt.Fprintf(r.Stderr, "error: normalize %s: %v\n", file, err)
			exit = 1
			continue
		}

		outcomes, err := p.Process(ctx, buf)
		if printErr := r.printOutcomes(file, outcomes); printErr != nil {
			fmt.Fprintf(r.Stderr, "error: %v\n", printErr)
			exit = 1
		}
		if err != nil {
			fmt.Fprintf(r.Stderr, "error: process %s: %v\n", file, err)
			exit = 1
		}
	}
	return exit
}

func (r Runner) commandListen(ctx context.Context, cfg config.Config, logger *slog.Logger) int {
	p, _, cleanup, err := buildPipeline(cfg, logger)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	defer cleanup()

	selection, err := audio.SelectDevice(ctx, cfg.Audio.Input, cfg.Audio.Fallback)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	if selection.Warning != "" {
		fmt.Fprintf(r.Stderr, "warning: %s\n", selection.Warning)
	}

	capture, err := audio.StartCapture(ctx, selection.Device)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	defer capture.Close()

	fmt.Fprintf(r.Stdout, "listening on %s; press Ctrl-C to stop\n", selection.Device.ID)
	<-ctx.Done()

	if err := capture.Stop(); err != nil {
		fmt.Fprintf(r.Stderr, "error: stop capture: %v\n", err)
		return 1
	}

	buf := capture.Buffer()
	logger.Info("capture finished",
		"device", selection.Device.ID,
		"bytes_captured", capture.BytesCaptured(),
		"seconds", buf.Seconds())
	if len(buf) == 0 {
		fmt.Fprintln(r.Stderr, "no audio captured")
		return 1
	}

	if cfg.Debug.DumpAudio {
		if path, err := dumpCapture(buf); err == nil {
			logger.Info("capture dumped", "path", path)
		} else {
			logger.Warn("capture dump failed", "error", err.Error())
		}
	}

	// The interrupt that ends capture has cancelled ctx; processing gets its
	// own deadline.
	processCtx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	outcomes, err := p.Process(processCtx, buf)
	if printErr := r.printOutcomes("capture", outcomes); printErr != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", printErr)
		return 1
	}
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	return 0
}

// printOutcomes writes one JSON document per processed buffer.
func (r Runner) printOutcomes(source string, outcomes []pipeline.Outcome) error {
	doc := map[string]any{"source": source, "outcomes": outcomes}
	enc := json.NewEncoder(r.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode outcomes: %w", err)
	}
	return nil
}

// dumpCapture writes the captured buffer as WAV into the state directory.
func dumpCapture(buf audio.Buffer) (string, error) {
	dir := os.Getenv("XDG_STATE_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		dir = home + "/.local/state"
	}
	dir = dir + "/voxtrace/dumps"
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", err
	}
	path := fmt.Sprintf("%s/capture_%s.wav", dir, time.Now().UTC().Format("20060102T150405"))
	if err := os.WriteFile(path, audio.EncodeWAV(buf), 0o600); err != nil {
		return "", err
	}
	return path, nil
}

// buildPipeline materializes the store, archive, and adapters from config.
func buildPipeline(cfg config.Config, logger *slog.Logger) (*pipeline.Pipeline, *store.Store, func(), error) {
	st, err := store.Open(cfg.Store.Path)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("open store: %w", err)
	}

	arch, err := buildArchive(cfg.Archive)
	if err != nil {
		st.Close()
		return nil, nil, nil, err
	}

	classifier, err := vad.NewEnergy(cfg.VAD.Aggressiveness)
	if err != nil {
		st.Close()
		return nil, nil, nil, fmt.Errorf("build classifier: %w", err)
	}

	extractor, err := buildExtractor(cfg.Embedding)
	if err != nil {
		st.Close()
		return nil, nil, nil, err
	}

	transcriber := stt.NewWhisper(cfg.STT.URL, cfg.STT.Language,
		time.Duration(cfg.STT.TimeoutMS)*time.Millisecond)

	p := pipeline.New(logger, classifier, extractor, transcriber, arch, st, pipeline.Config{
		Segmenter: segment.Config{
			PaddingMS:     cfg.Segmenter.PaddingMS,
			MergeGapMS:    cfg.Segmenter.MergeGapMS,
			MinDurationMS: cfg.Segmenter.MinDurationMS,
			MaxDurationMS: cfg.Segmenter.MaxDurationMS,
			LongSpans:     segment.LongSpanPolicy(cfg.Segmenter.LongSpans),
		},
		Threshold:     cfg.Speaker.Threshold,
		RefreshWeight: cfg.Speaker.RefreshWeight,
		EmbedTimeout:  time.Duration(cfg.Embedding.TimeoutMS) * time.Millisecond,
		STTTimeout:    time.Duration(cfg.STT.TimeoutMS) * time.Millisecond,
	})

	cleanup := func() { _ = st.Close() }
	return p, st, cleanup, nil
}

func buildExtractor(cfg config.EmbeddingConfig) (embedding.Extractor, error) {
	timeout := time.Duration(cfg.TimeoutMS) * time.Millisecond
	switch embedding.Strategy(cfg.Strategy) {
	case embedding.StrategyModel:
		return embedding.NewHTTP(cfg.URL, cfg.Dimensions, timeout), nil
	case embedding.StrategySpectral:
		return embedding.NewSpectral(), nil
	case embedding.StrategyAuto:
		return embedding.WithFallback(
			embedding.NewHTTP(cfg.URL, cfg.Dimensions, timeout),
			embedding.NewSpectral(),
		), nil
	default:
		return nil, fmt.Errorf("unknown embedding strategy %q", cfg.Strategy)
	}
}
