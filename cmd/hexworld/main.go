package main

import (
	"io"
	"log"
	"os"
	"runtime"

	"github.com/urfave/cli/v2"
)

func main() {
	log.SetFlags(log.Ltime | log.Lmicroseconds)

	app := &cli.App{
		Name:        "hexworld",
		Usage:       "generate and stream a procedural hex world headlessly",
		Description: "deterministic hex world generator with a time-sliced chunk streamer",
		Flags: []cli.Flag{
			&cli.PathFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "YAML configuration file; built-in defaults when empty",
			},
			&cli.Int64Flag{
				Name:  "seed",
				Usage: "world seed, used when the config does not set one",
				Value: 42,
			},
			&cli.BoolFlag{
				Name:  "quiet",
				Usage: "silence diagnostic logging",
			},
		},
		Before: func(ctx *cli.Context) error {
			if ctx.Bool("quiet") {
				log.SetOutput(io.Discard)
			}
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:   "sample",
				Usage:  "print generator records around a hex as YAML",
				Action: commandSample,
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "q", Usage: "axial q of the center hex"},
					&cli.IntFlag{Name: "r", Usage: "axial r of the center hex"},
					&cli.IntFlag{Name: "radius", Usage: "hex distance around the center", Value: 0},
				},
			},
			{
				Name:   "stream",
				Usage:  "run the chunk streamer without a window and report scheduler stats",
				Action: commandStream,
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "wx", Usage: "start chunk x"},
					&cli.IntFlag{Name: "wy", Usage: "start chunk y"},
					&cli.StringSliceFlag{Name: "move", Usage: "relative chunk moves applied after settling, e.g. 1,0"},
					&cli.IntFlag{Name: "max-frames", Usage: "frame limit per settle", Value: 100000},
				},
			},
			{
				Name:   "survey",
				Usage:  "report land, water and biome coverage over an offset window",
				Action: commandSurvey,
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "size", Usage: "window side in hexes", Value: 256},
					&cli.IntFlag{Name: "stride", Usage: "sample every n-th hex", Value: 1},
					&cli.IntFlag{Name: "workers", Usage: "sampling goroutines", Value: runtime.NumCPU()},
				},
			},
			{
				Name:   "preview",
				Usage:  "stream a window and write a top-down PNG",
				Action: commandPreview,
				Flags: []cli.Flag{
					&cli.PathFlag{Name: "out", Aliases: []string{"o"}, Usage: "output PNG", Value: "hexworld.png"},
					&cli.IntFlag{Name: "wx", Usage: "center chunk x"},
					&cli.IntFlag{Name: "wy", Usage: "center chunk y"},
					&cli.IntFlag{Name: "width", Usage: "image width in pixels; 0 keeps native size"},
					&cli.BoolFlag{Name: "chunk-colors", Usage: "tint hexes by chunk"},
				},
			},
			{
				Name:   "config",
				Usage:  "print the effective configuration as YAML",
				Action: commandConfig,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.SetOutput(os.Stderr)
		log.Fatal(err)
	}
}
