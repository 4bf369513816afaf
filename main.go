// ABOUTME: Entry point for the Cadenza transport demo
// ABOUTME: Parses CLI flags and drives a tone or MP3 source through the timeline
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/Cadenza-Audio/cadenza-go/internal/engine"
	"github.com/Cadenza-Audio/cadenza-go/internal/remote"
	"github.com/Cadenza-Audio/cadenza-go/internal/source"
	"github.com/Cadenza-Audio/cadenza-go/internal/ui"
	"github.com/Cadenza-Audio/cadenza-go/internal/version"
	"github.com/google/uuid"
)

var (
	filePath   = flag.String("file", "", "MP3 file to play (default: 440Hz test tone)")
	frequency  = flag.Float64("freq", 440.0, "Test tone frequency in Hz")
	sampleRate = flag.Int("rate", 48000, "Sample rate for the test tone")
	loopStart  = flag.Int64("loop-start", 0, "Loop start in samples")
	loopDur    = flag.Int64("loop-dur", 0, "Loop duration in samples (0: no loop)")
	remotePort = flag.Int("remote-port", 0, "Port for remote transport control (0: disabled)")
	logFile    = flag.String("log-file", "cadenza.log", "Log file path")
	noTUI      = flag.Bool("no-tui", false, "Disable TUI, log to stderr and wait for signals")
)

func main() {
	flag.Parse()

	useTUI := !*noTUI
	if useTUI {
		// TUI mode: log only to file so the screen stays clean.
		f, err := os.OpenFile(*logFile, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
		if err != nil {
			log.Fatalf("error opening log file: %v", err)
		}
		defer func() { _ = f.Close() }()
		log.SetOutput(f)
	}

	log.Printf("%s %s starting", version.Product, version.Version)

	var src source.Source
	rate := *sampleRate
	if *filePath != "" {
		fileSrc, err := source.NewFileSource(*filePath)
		if err != nil {
			log.Fatalf("failed to load %s: %v", *filePath, err)
		}
		src = fileSrc
		rate = fileSrc.SampleRate()
		log.Printf("Loaded %s: %d samples at %dHz", *filePath, fileSrc.Duration(), rate)
	} else {
		src = source.NewToneSource(*frequency, rate)
		log.Printf("Using %.0fHz test tone at %dHz", *frequency, rate)
	}

	eng := engine.New(src, rate)
	if err := eng.Start(); err != nil {
		log.Fatalf("failed to start audio engine: %v", err)
	}
	defer eng.Close()

	tl := eng.Timeline()
	if *loopDur > 0 {
		tl.SetLoop(*loopStart, *loopDur)
	}

	if *remotePort != 0 {
		srv := remote.NewServer(tl)
		if err := srv.Listen(*remotePort); err != nil {
			log.Fatalf("failed to start remote control: %v", err)
		}
		defer srv.Close()
	}

	if useTUI {
		session := uuid.New().String()[:8]
		if err := ui.Run(tl, session); err != nil {
			log.Fatalf("TUI error: %v", err)
		}
		return
	}

	// Headless: start playback and wait for a signal.
	tl.Start()
	fmt.Println("Playing. Ctrl-C to stop.")

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	tl.Stop()
	log.Printf("Stopped at sample %d", tl.Position())
}
