package cmd

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os"
	"os/signal"

	"github.com/anonymousomeone/mandelbrowser/engine/camera"
	"github.com/anonymousomeone/mandelbrowser/engine/fractal"
	"github.com/anonymousomeone/mandelbrowser/engine/renderer"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/urfave/cli"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Padding around the caption text, in pixels.
const captionPadding = 4

// snapshotParams maps the snapshot command flags onto render parameters.
// Without --iters the budget is the one the viewer would start with at that zoom.
func snapshotParams(ctx *cli.Context) (fractal.Params, error) {
	cam := camera.Camera{
		Center: mgl32.Vec2{float32(ctx.Float64("center-x")), float32(ctx.Float64("center-y"))},
		Zoom:   float32(ctx.Float64("zoom")),
	}
	if cam.Zoom < camera.MinZoom {
		return fractal.Params{}, fmt.Errorf("zoom must be at least %v, got %v", camera.MinZoom, cam.Zoom)
	}

	iters := uint32(ctx.Uint("iters"))
	if iters == 0 {
		iters = renderer.RenderCameraFromCamera(cam, uint32(ctx.Uint("base-iters"))).MaxIters
	}

	params := fractal.Params{
		Center:   cam.Center,
		Zoom:     cam.Zoom,
		MaxIters: iters,
		Width:    ctx.Int("width"),
		Height:   ctx.Int("height"),
	}
	return params, params.Validate()
}

// Snapshot renders one view of the set on the CPU and writes it as a PNG.
func Snapshot(ctx *cli.Context) error {
	setupLogging(ctx)

	params, err := snapshotParams(ctx)
	if err != nil {
		return cli.NewExitError(err.Error(), 2)
	}

	renderCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	logger.Infof("rendering %dx%d snapshot with %d iterations", params.Width, params.Height, params.MaxIters)
	res, err := fractal.RenderImage(renderCtx, params, fractal.WithWorkers(ctx.Int("workers")))
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return cli.NewExitError("snapshot interrupted", 130)
		}
		return err
	}

	img := fractal.Flatten(res.Image)
	if ctx.Bool("caption") {
		drawCaption(img, captionText(params))
	}

	out := ctx.String("out")
	if err := writePNG(out, img); err != nil {
		logger.Error(err)
		return err
	}
	logger.Noticef("wrote snapshot to %s", out)

	displaySnapshotStats(params, res)
	return nil
}

func captionText(params fractal.Params) string {
	return fmt.Sprintf("center (%g, %g)  zoom %g  iterations %d",
		params.Center[0], params.Center[1], params.Zoom, params.MaxIters)
}

// drawCaption writes text on a translucent strip along the bottom edge of img.
func drawCaption(img draw.Image, text string) {
	face := basicfont.Face7x13
	metrics := face.Metrics()
	bounds := img.Bounds()

	stripHeight := metrics.Height.Ceil() + 2*captionPadding
	strip := image.Rect(bounds.Min.X, bounds.Max.Y-stripHeight, bounds.Max.X, bounds.Max.Y).Intersect(bounds)
	draw.Draw(img, strip, image.NewUniform(color.NRGBA{A: 0xa0}), image.Point{}, draw.Over)

	d := &font.Drawer{
		Dst:  img,
		Src:  image.White,
		Face: face,
		Dot:  fixed.P(bounds.Min.X+captionPadding, bounds.Max.Y-captionPadding-metrics.Descent.Ceil()),
	}
	d.DrawString(text)
}

func writePNG(path string, img image.Image) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = cerr
		}
	}()

	if err := png.Encode(f, img); err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return nil
}
