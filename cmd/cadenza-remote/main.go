// ABOUTME: Headless transport daemon controlled over websocket
// ABOUTME: Advertises the control endpoint via mDNS and plays until signaled
package main

import (
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/Cadenza-Audio/cadenza-go/internal/engine"
	"github.com/Cadenza-Audio/cadenza-go/internal/remote"
	"github.com/Cadenza-Audio/cadenza-go/internal/source"
	"github.com/Cadenza-Audio/cadenza-go/internal/version"
)

func main() {
	filePath := flag.String("file", "", "MP3 file to play (default: 440Hz test tone)")
	sampleRate := flag.Int("rate", 48000, "Sample rate for the test tone")
	port := flag.Int("port", 8937, "Control port")
	flag.Parse()

	log.Printf("%s %s (remote daemon)", version.Product, version.Version)

	var src source.Source
	rate := *sampleRate
	if *filePath != "" {
		fileSrc, err := source.NewFileSource(*filePath)
		if err != nil {
			log.Fatalf("failed to load %s: %v", *filePath, err)
		}
		src = fileSrc
		rate = fileSrc.SampleRate()
	} else {
		src = source.NewToneSource(440, rate)
	}

	eng := engine.New(src, rate)
	if err := eng.Start(); err != nil {
		log.Fatalf("failed to start audio engine: %v", err)
	}
	defer eng.Close()

	srv := remote.NewServer(eng.Timeline())
	if err := srv.Listen(*port); err != nil {
		log.Fatalf("failed to start control server: %v", err)
	}
	defer srv.Close()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	log.Printf("Shutting down")
}
