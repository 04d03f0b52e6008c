// SPDX-License-Identifier: EPL-2.0

// Command ddpfx decodes an audio file, runs it through the post-processing
// effect and writes the result as a 16-bit WAV.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/ik5/ddpfx"
	"github.com/ik5/ddpfx/audio"
	"github.com/ik5/ddpfx/decoder"
	"github.com/ik5/ddpfx/effect"
	"github.com/ik5/ddpfx/engine"
	"github.com/ik5/ddpfx/formats/aiff"
	"github.com/ik5/ddpfx/formats/flac"
	"github.com/ik5/ddpfx/formats/mp3"
	"github.com/ik5/ddpfx/formats/vorbis"
	"github.com/ik5/ddpfx/formats/wav"
	"github.com/ik5/ddpfx/routing"
	"github.com/ik5/ddpfx/settings"
)

var version = "dev"

type options struct {
	in, out string
	device  string
	raw     string
	sink    string
	block   int
	bypass  bool
	dry     bool
	dumpIn  string
}

func main() {
	level := slog.LevelInfo
	if os.Getenv("DEBUG") != "" {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	var opts options
	flag.StringVar(&opts.in, "in", "", "input file (wav, mp3, ogg, aiff, flac)")
	flag.StringVar(&opts.out, "out", envOr("DDPFX_OUT", "out.wav"), "output WAV file")
	flag.StringVar(&opts.device, "device", envOr("DDPFX_DEVICE", "speaker"), "output device the effect is tuned for")
	flag.StringVar(&opts.raw, "raw", "", "read -in as raw 16-bit little-endian PCM of rate:channels (e.g. 48000:6) through the frame decode loop")
	flag.StringVar(&opts.sink, "sink", envOr("DDPFX_SINK", "speaker"), "sink the decode loop routes for (speaker, headset, hdmi2, hdmi6, hdmi8)")
	flag.IntVar(&opts.block, "block", ddpfx.DefaultBlockFrames, "frames per effect call")
	flag.BoolVar(&opts.bypass, "bypass", false, "route audio around the kernel")
	flag.BoolVar(&opts.dry, "dry", false, "leave the effect disabled")
	flag.StringVar(&opts.dumpIn, "dump-in", os.Getenv("DDPFX_DUMP_IN"), "also write the effect input to this WAV file")
	flag.Parse()

	if opts.in == "" {
		fmt.Fprintln(os.Stderr, "usage: ddpfx -in <file> [-raw rate:channels] [-out out.wav] [-device speaker]")
		flag.PrintDefaults()
		os.Exit(2)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("received signal, stopping", "signal", sig)
		cancel()
	}()

	slog.Info("ddpfx starting", "version", version, "in", opts.in, "out", opts.out, "device", opts.device)

	if err := run(ctx, opts); err != nil {
		slog.Error("processing failed", "error", err)
		os.Exit(1)
	}
}

func registry() *audio.Registry {
	reg := audio.NewRegistry()
	reg.Register("wav", wav.Decoder{})
	reg.Register("mp3", mp3.Decoder{})
	reg.Register("ogg", vorbis.Decoder{})
	reg.Register("aiff", aiff.Decoder{})
	reg.Register("aif", aiff.Decoder{})
	reg.Register("flac", flac.Decoder{})
	return reg
}

// openSource decodes the input file, through the registry by extension or
// through the frame decode loop when -raw is set.
func openSource(opts options, f *os.File) (audio.Source, error) {
	if opts.raw == "" {
		dec, err := registry().ForPath(opts.in)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", opts.in, err)
		}
		src, err := dec.Decode(f)
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", opts.in, err)
		}
		return src, nil
	}

	rate, channels, err := parseRaw(opts.raw)
	if err != nil {
		return nil, err
	}
	if routing.ParseEndpoint(opts.sink) == routing.EndpointInvalid {
		return nil, fmt.Errorf("unknown sink %q", opts.sink)
	}

	pcm, err := engine.NewPCMDecoder(rate, channels)
	if err != nil {
		return nil, err
	}
	src, err := decoder.NewSource(bufio.NewReader(f), pcm,
		decoder.WithEndpointSource(routing.NewStatic(opts.sink, !opts.dry)),
	)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", opts.in, err)
	}
	return src, nil
}

// parseRaw reads a rate:channels pair.
func parseRaw(v string) (int, int, error) {
	r, c, ok := strings.Cut(v, ":")
	if !ok {
		return 0, 0, fmt.Errorf("raw layout %q, want rate:channels", v)
	}
	rate, err := strconv.Atoi(r)
	if err != nil {
		return 0, 0, fmt.Errorf("raw sample rate: %w", err)
	}
	channels, err := strconv.Atoi(c)
	if err != nil {
		return 0, 0, fmt.Errorf("raw channels: %w", err)
	}
	return rate, channels, nil
}

func run(ctx context.Context, opts options) error {
	device, ok := settings.ParseDevice(opts.device)
	if !ok {
		return fmt.Errorf("unknown device %q", opts.device)
	}

	inFile, err := os.Open(opts.in)
	if err != nil {
		return err
	}
	defer inFile.Close()

	decoded, err := openSource(opts, inFile)
	if err != nil {
		return err
	}
	src, cfg, err := ddpfx.Conform(decoded)
	if err != nil {
		decoded.Close()
		return err
	}
	defer src.Close()

	slog.Info("input",
		"rate", decoded.SampleRate(),
		"channels", decoded.Channels(),
		"processed_rate", cfg.Input.SampleRate,
		"processed_channels", cfg.Input.Channels,
	)

	var effectOpts []effect.Option
	if opts.dumpIn != "" {
		dump, closeDump, err := createWAV(opts.dumpIn, cfg.Input.SampleRate, cfg.Input.Channels)
		if err != nil {
			return fmt.Errorf("input dump: %w", err)
		}
		defer closeDump()
		effectOpts = append(effectOpts, effect.WithDump(dump, nil))
	}

	e, err := effect.New(func() engine.Kernel { return engine.NewGainKernel(2) }, effectOpts...)
	if err != nil {
		return err
	}
	defer e.Close()

	if err := e.SetDevice(device); err != nil {
		return fmt.Errorf("set device: %w", err)
	}
	if err := e.SetConfig(cfg); err != nil {
		return fmt.Errorf("configure effect: %w", err)
	}
	if !opts.dry {
		e.Enable()
	}
	if opts.bypass {
		e.SetBypass(true, false)
	}

	w, closeOut, err := createWAV(opts.out, cfg.Output.SampleRate, cfg.Output.Channels)
	if err != nil {
		return err
	}

	start := time.Now()
	frames, err := ddpfx.Stream(ctx, e, src, w, opts.block)
	if cerr := closeOut(); err == nil {
		err = cerr
	}
	if err != nil {
		if errors.Is(err, context.Canceled) {
			slog.Warn("stopped early, output is truncated", "frames", frames)
		}
		return err
	}

	slog.Info("wrote",
		"path", opts.out,
		"frames", frames,
		"duration", time.Duration(frames)*time.Second/time.Duration(cfg.Output.SampleRate),
		"took", time.Since(start).Round(time.Millisecond),
	)
	return nil
}

// createWAV opens a WAV writer on path. The returned func finalises the
// header and closes the file.
func createWAV(path string, rate, channels int) (*wav.Writer, func() error, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, err
	}

	w, err := wav.NewWriter(f, rate, channels)
	if err != nil {
		f.Close()
		return nil, nil, err
	}

	return w, func() error {
		if err := w.Close(); err != nil {
			f.Close()
			return fmt.Errorf("%s: %w", path, err)
		}
		return f.Close()
	}, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
