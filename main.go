package main

import (
	"os"

	"github.com/anonymousomeone/mandelbrowser/cmd"
	"github.com/anonymousomeone/mandelbrowser/engine/config"
	"github.com/urfave/cli"
)

func main() {
	cli.VersionFlag = cli.BoolFlag{
		Name:  "version",
		Usage: "print only the version",
	}

	app := cli.NewApp()
	app.Name = "mandelbrowser"
	app.Usage = "explore the Mandelbrot set on the GPU"
	app.Version = "0.1.0"
	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "v",
			Usage: "enable verbose logging",
		},
		cli.BoolFlag{
			Name:  "vv",
			Usage: "enable even more verbose logging",
		},
	}
	app.Commands = []cli.Command{
		{
			Name:  "view",
			Usage: "open the interactive viewer",
			Description: `
Render the set in a window with a compute pass and present it every frame.

Controls: W/A/S/D pan, R/F or the mouse wheel zoom, E/Q raise or lower the
iteration budget, T resets the view and Esc quits.`,
			Flags: []cli.Flag{
				cli.IntFlag{
					Name:  "width",
					Value: config.DefaultWidth,
					Usage: "window width",
				},
				cli.IntFlag{
					Name:  "height",
					Value: config.DefaultHeight,
					Usage: "window height",
				},
				cli.Float64Flag{
					Name:  "pan-speed",
					Value: float64(config.DefaultPanSpeed),
					Usage: "pan distance per key press at natural scale",
				},
				cli.Float64Flag{
					Name:  "zoom-speed",
					Value: float64(config.DefaultZoomSpeed),
					Usage: "zoom delta multiplier",
				},
				cli.UintFlag{
					Name:  "base-iters",
					Value: uint(config.DefaultBaseIters),
					Usage: "starting iteration budget",
				},
				cli.Float64Flag{
					Name:  "fps-limit",
					Value: 0,
					Usage: "cap the frame rate (0 = uncapped)",
				},
				cli.BoolFlag{
					Name:  "no-vsync",
					Usage: "present without waiting for vertical blank",
				},
				cli.BoolFlag{
					Name:  "profile",
					Usage: "log FPS and memory statistics every second",
				},
				cli.BoolFlag{
					Name:  "fallback-adapter",
					Usage: "force the software (fallback) graphics adapter",
				},
			},
			Action: cmd.View,
		},
		{
			Name:  "snapshot",
			Usage: "render a view of the set to a PNG on the CPU",
			Description: `
Render the same escape-time image the viewer produces, without a GPU, and
write it to a PNG file. Rows are split into bands rendered by a worker pool.`,
			Flags: []cli.Flag{
				cli.Float64Flag{
					Name:  "center-x",
					Value: 0,
					Usage: "real part of the view center",
				},
				cli.Float64Flag{
					Name:  "center-y",
					Value: 0,
					Usage: "imaginary part of the view center",
				},
				cli.Float64Flag{
					Name:  "zoom",
					Value: 1,
					Usage: "magnification (at least 1)",
				},
				cli.UintFlag{
					Name:  "iters",
					Value: 0,
					Usage: "iteration budget (0 = the viewer's budget for this zoom)",
				},
				cli.UintFlag{
					Name:  "base-iters",
					Value: uint(config.DefaultBaseIters),
					Usage: "base iteration budget used when --iters is 0",
				},
				cli.IntFlag{
					Name:  "width",
					Value: config.DefaultWidth,
					Usage: "image width",
				},
				cli.IntFlag{
					Name:  "height",
					Value: config.DefaultHeight,
					Usage: "image height",
				},
				cli.IntFlag{
					Name:  "workers",
					Value: 0,
					Usage: "render workers (0 = one per CPU)",
				},
				cli.BoolFlag{
					Name:  "caption",
					Usage: "print the view parameters along the bottom edge",
				},
				cli.StringFlag{
					Name:  "out, o",
					Value: "mandelbrot.png",
					Usage: "image filename for the snapshot",
				},
			},
			Action: cmd.Snapshot,
		},
	}

	app.Run(os.Args)
}
