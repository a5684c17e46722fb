package fractal

import (
	"context"
	"errors"
	"fmt"
	"image"
	"runtime"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/anonymousomeone/mandelbrowser/log"
	"github.com/go-gl/mathgl/mgl32"
)

var logger = log.New("fractal")

// Params describes one image to render.
type Params struct {
	Center   mgl32.Vec2
	Zoom     float32
	MaxIters uint32
	Width    int
	Height   int
}

// Validate reports the first unusable field.
func (p Params) Validate() error {
	switch {
	case p.Width <= 0 || p.Height <= 0:
		return fmt.Errorf("image size must be positive, got %dx%d", p.Width, p.Height)
	case p.Zoom <= 0:
		return fmt.Errorf("zoom must be positive, got %v", p.Zoom)
	case p.MaxIters == 0:
		return errors.New("iteration budget must be positive")
	}
	return nil
}

// Result is a rendered canvas and what it took to produce it.
type Result struct {
	Image *image.NRGBA
	// Interior is the number of pixels that used the whole iteration budget.
	Interior int
	// TotalIterations is the sum of the iteration counts of every pixel.
	TotalIterations uint64
	Elapsed         time.Duration
	Workers         int
}

// MeanIterations returns the average iteration count per pixel.
func (r Result) MeanIterations() float64 {
	pixels := r.Image.Bounds().Dx() * r.Image.Bounds().Dy()
	if pixels == 0 {
		return 0
	}
	return float64(r.TotalIterations) / float64(pixels)
}

type renderOptions struct {
	workers    int
	bandHeight int
}

// RenderOption configures RenderImage.
type RenderOption func(*renderOptions)

// WithWorkers sets the number of pool workers. Values below one use one worker per CPU.
func WithWorkers(n int) RenderOption {
	return func(o *renderOptions) {
		o.workers = n
	}
}

// WithBandHeight sets how many rows one task renders.
func WithBandHeight(rows int) RenderOption {
	return func(o *renderOptions) {
		o.bandHeight = rows
	}
}

type bandStats struct {
	interior int
	total    uint64
}

// RenderImage renders params into an image on a worker pool, one task per band of rows.
// Every pixel gets exactly the texel the compute program would store for it.
//
// Parameters:
//   - ctx: cancels the remaining bands
//   - params: the view and image size
//   - opts: worker count and band height
//
// Returns:
//   - *Result: the image and statistics
//   - error: when params are invalid or ctx is cancelled
func RenderImage(ctx context.Context, params Params, opts ...RenderOption) (*Result, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	o := renderOptions{workers: runtime.NumCPU(), bandHeight: 8}
	for _, opt := range opts {
		opt(&o)
	}
	if o.workers < 1 {
		o.workers = runtime.NumCPU()
	}
	if o.bandHeight < 1 {
		o.bandHeight = 1
	}

	start := time.Now()
	img := image.NewNRGBA(image.Rect(0, 0, params.Width, params.Height))
	bands := (params.Height + o.bandHeight - 1) / o.bandHeight
	stats := make([]bandStats, bands)

	pool := worker.NewDynamicWorkerPool(o.workers, bands, time.Second)
	defer pool.Stop()

	// pool.Wait only returns once workers idle out, so a WaitGroup is the barrier.
	var wg sync.WaitGroup
	for band := 0; band < bands; band++ {
		y0 := band * o.bandHeight
		y1 := min(y0+o.bandHeight, params.Height)
		wg.Add(1)
		pool.SubmitTask(worker.Task{
			ID:      band,
			Payload: [2]int{y0, y1},
			Do: func() (any, error) {
				defer wg.Done()
				if err := ctx.Err(); err != nil {
					return nil, err
				}
				stats[band] = renderRows(img, params, y0, y1)
				return nil, nil
			},
		})
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res := &Result{Image: img, Elapsed: time.Since(start), Workers: o.workers}
	for _, s := range stats {
		res.Interior += s.interior
		res.TotalIterations += s.total
	}
	logger.Debugf("rendered %dx%d in %d bands on %d workers in %s", params.Width, params.Height, bands, o.workers, res.Elapsed)
	return res, nil
}

func renderRows(img *image.NRGBA, params Params, y0, y1 int) bandStats {
	var s bandStats
	for y := y0; y < y1; y++ {
		for x := 0; x < params.Width; x++ {
			c := PixelToComplex(x, y, params.Width, params.Height, params.Zoom, params.Center)
			it := Iterate(c, params.MaxIters)
			if it == params.MaxIters {
				s.interior++
			}
			s.total += uint64(it)
			img.SetNRGBA(x, y, Shade(it, params.MaxIters))
		}
	}
	return s
}

// Flatten returns a copy of img with every alpha set to opaque, which is how the viewer's
// opaque surface displays the canvas.
func Flatten(img *image.NRGBA) *image.NRGBA {
	out := image.NewNRGBA(img.Bounds())
	copy(out.Pix, img.Pix)
	for i := 3; i < len(out.Pix); i += 4 {
		out.Pix[i] = 0xff
	}
	return out
}
