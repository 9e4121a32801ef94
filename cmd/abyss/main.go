// abyss is a terminal deep-zoom tile viewer. It renders precomputed
// tile pyramids (and optionally live-rendered tiles from a backend)
// as true-color quadrant cells, with keyframe path playback.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/veyra/abyss/config"
	"github.com/veyra/abyss/dataset"
	"github.com/veyra/abyss/engine"
	"github.com/veyra/abyss/sound"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "abyss:", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		cfgFile   = flag.String("config", "", "config file (default: abyss.toml in . or ~/.config/abyss)")
		srcFlag   = flag.String("source", "", "dataset root: http(s) URL or local directory")
		backend   = flag.String("backend", "", "live-render backend URL (empty: live rendering off)")
		dsFlag    = flag.String("dataset", "", "dataset id to open")
		autoplay  = flag.Bool("autoplay", false, "start path playback once tiles load")
		soundFlag = flag.Bool("sound", false, "enable audio feedback cues")
	)
	flag.Parse()

	cfg, err := config.Load(*cfgFile)
	if err != nil {
		return err
	}
	if *srcFlag != "" {
		cfg.Source = *srcFlag
	}
	if *backend != "" {
		cfg.Backend = *backend
	}
	if *dsFlag != "" {
		cfg.Dataset = *dsFlag
	}
	if *autoplay {
		cfg.Autoplay = true
	}
	if *soundFlag {
		cfg.Sound = true
	}

	log := config.NewLogger(cfg)
	log.WithField("source", cfg.Source).WithField("backend", cfg.Backend).Info("starting")

	var src dataset.Source
	if strings.HasPrefix(cfg.Source, "http://") || strings.HasPrefix(cfg.Source, "https://") {
		src = dataset.NewHTTPSource(cfg.Source)
	} else {
		src = &dataset.DirSource{Root: cfg.Source}
	}

	var sounds *sound.Player
	if cfg.Sound {
		sounds, err = sound.NewPlayer()
		if err != nil {
			log.WithError(err).Warn("audio unavailable")
		}
		defer sounds.Close()
	}

	viewer, err := engine.NewViewer(log, engine.Options{
		Source:   src,
		Backend:  cfg.Backend,
		Dataset:  cfg.Dataset,
		Autoplay: cfg.Autoplay,
		Sounds:   sounds,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return viewer.Run(ctx)
}
