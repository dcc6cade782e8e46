package main

import (
	"errors"
	"os"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli"

	"github.com/valerio/go-loopa/loopa"
	"github.com/valerio/go-loopa/loopa/backend"
	"github.com/valerio/go-loopa/loopa/hw"
	"github.com/valerio/go-loopa/loopa/tui"
)

func main() {
	app := cli.NewApp()
	app.Name = "loopa"
	app.Description = "A beat-synchronized live looper and metronome"
	app.Usage = "loopa [options]"
	app.Version = "1.0.0"
	app.Flags = []cli.Flag{
		cli.Float64Flag{
			Name:  "bpm",
			Usage: "Tempo in beats per minute",
			Value: 120,
		},
		cli.BoolFlag{
			Name:  "headless",
			Usage: "Run without terminal UI or audio hardware",
		},
		cli.IntFlag{
			Name:  "blocks",
			Usage: "Number of audio blocks to run in headless mode (required for headless)",
		},
		cli.IntFlag{
			Name:  "block-size",
			Usage: "Frames per block in headless mode",
			Value: 512,
		},
		cli.IntFlag{
			Name:  "sample-rate",
			Usage: "Sample rate in headless mode",
			Value: 48000,
		},
		cli.IntFlag{
			Name:  "count-in",
			Usage: "Count-in length in beats for headless mode",
			Value: 4,
		},
		cli.BoolFlag{
			Name:  "wah",
			Usage: "Add a wah stage to the monitoring chain",
		},
		cli.BoolFlag{
			Name:  "reverb",
			Usage: "Add a reverb stage to the monitoring chain",
		},
		cli.StringFlag{
			Name:  "gpio-chip",
			Usage: "GPIO chip for buttons and LED grid (empty disables hardware)",
		},
		cli.BoolFlag{
			Name:  "verbose",
			Usage: "Enable debug logging",
		},
	}
	app.Action = run

	if err := app.Run(os.Args); err != nil {
		log.Error("loopa exited with error", "error", err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	if c.Bool("verbose") {
		log.SetLevel(log.DebugLevel)
	}

	mbpm := uint32(c.Float64("bpm") * 1000)
	if mbpm < loopa.MinMilliBPM || mbpm > loopa.MaxMilliBPM {
		return errors.New("bpm out of range (1 to 3000)")
	}

	ctl := loopa.NewControl()
	ctl.MilliBPM.Store(mbpm)

	cfg := loopa.Config{
		MonitorWah:    c.Bool("wah"),
		MonitorReverb: c.Bool("reverb"),
	}

	if c.Bool("headless") {
		cfg.SampleRate = c.Int("sample-rate")
		return runHeadless(c, ctl, cfg)
	}
	return runInteractive(c, ctl, cfg)
}

// runHeadless drives the engine through a fixed number of synthetic
// blocks: enable, count in, report the transport position as it advances.
func runHeadless(c *cli.Context, ctl *loopa.Control, cfg loopa.Config) error {
	blocks := c.Int("blocks")
	if blocks <= 0 {
		return errors.New("headless mode requires --blocks with a positive value")
	}
	blockSize := c.Int("block-size")
	if blockSize <= 0 {
		return errors.New("--block-size must be positive")
	}

	engine := loopa.New(ctl, cfg)
	driver := backend.NewHeadless(engine, blockSize)

	ctl.Enabled.Store(true)
	ctl.CountInLength.Store(uint32(c.Int("count-in")))
	ctl.CountIn.Store(true)

	log.Info("running headless",
		"blocks", blocks, "block_size", blockSize, "sample_rate", cfg.SampleRate)

	rolled := false
	for i := 0; i < blocks; i++ {
		driver.RunBlocks(1)

		select {
		case <-ctl.RollingStarted():
			rolled = true
			log.Info("count-in complete, transport rolling")
		default:
		}

		if i%100 == 0 {
			millibeat := ctl.CurrentMillibeat.Load()
			log.Debug("transport", "block", i, "beat", millibeat/1000, "subbeat", millibeat%1000)
		}
	}

	millibeat := ctl.CurrentMillibeat.Load()
	log.Info("headless run complete",
		"blocks", blocks, "beat", millibeat/1000, "rolling", rolled)
	return nil
}

// runInteractive opens the audio host, optionally attaches the GPIO
// collaborators, and hands control to the terminal UI.
func runInteractive(c *cli.Context, ctl *loopa.Control, cfg loopa.Config) error {
	audio := backend.NewPortAudio(ctl, cfg)
	if err := audio.Start(); err != nil {
		return err
	}
	defer func() {
		if err := audio.Stop(); err != nil {
			log.Error("audio shutdown failed", "error", err)
		}
	}()

	if chip := c.String("gpio-chip"); chip != "" {
		buttons := hw.NewButtons(chip)
		if err := buttons.Start(); err != nil {
			log.Warn("buttons unavailable", "error", err)
		} else {
			defer buttons.Stop()
			go forwardButtons(ctl, buttons)
		}

		grid := hw.NewLEDGrid(chip, ctl)
		if err := grid.Start(); err != nil {
			log.Warn("LED grid unavailable", "error", err)
		} else {
			defer grid.Stop()
		}
	}

	ui, err := tui.New(ctl)
	if err != nil {
		return err
	}
	return ui.Run()
}

// forwardButtons maps pad presses onto slot arming, the hardware
// equivalent of the UI's arm toggle.
func forwardButtons(ctl *loopa.Control, buttons *hw.Buttons) {
	for pad := range buttons.Pads() {
		if pad < 0 || pad >= loopa.NumSlots {
			continue
		}
		starting := &ctl.Slots[pad].Starting
		starting.Store(!starting.Load())
		log.Debug("pad toggled slot arming", "pad", pad)
	}
}
