package cmd

import (
	"github.com/anonymousomeone/mandelbrowser/engine"
	"github.com/anonymousomeone/mandelbrowser/engine/config"
	"github.com/anonymousomeone/mandelbrowser/engine/renderer"
	"github.com/urfave/cli"
)

// viewConfig maps the view command flags onto a Config.
func viewConfig(ctx *cli.Context) config.Config {
	return config.New(
		config.WithSize(ctx.Int("width"), ctx.Int("height")),
		config.WithPanSpeed(float32(ctx.Float64("pan-speed"))),
		config.WithZoomSpeed(float32(ctx.Float64("zoom-speed"))),
		config.WithBaseIters(uint32(ctx.Uint("base-iters"))),
		config.WithVSync(!ctx.Bool("no-vsync")),
		config.WithProfiling(ctx.Bool("profile")),
		config.WithForceFallbackAdapter(ctx.Bool("fallback-adapter")),
	)
}

// View opens the interactive viewer and blocks until its window is closed.
func View(ctx *cli.Context) (err error) {
	setupLogging(ctx)

	cfg := viewConfig(ctx)
	if err := cfg.Validate(); err != nil {
		return cli.NewExitError(err.Error(), 2)
	}

	e, err := engine.NewEngine(
		engine.WithConfig(cfg),
		engine.WithRenderFrameLimit(ctx.Float64("fps-limit")),
	)
	if err != nil {
		logger.Error(err)
		return cli.NewExitError(err.Error(), 1)
	}
	logger.Noticef("controls: W/A/S/D pan, R/F or wheel zoom, E/Q iterations, T reset, Esc quit")

	defer func() {
		displayFrameStats(e.Stats())

		rec := recover()
		if rec == nil {
			return
		}
		frameErr, ok := rec.(*renderer.FrameError)
		if !ok {
			panic(rec)
		}
		logger.Errorf("render loop stopped: %v", frameErr)
		err = cli.NewExitError(frameErr.Error(), 1)
	}()

	e.Run()
	return nil
}
