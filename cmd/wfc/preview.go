package main

import (
	"context"
	"fmt"
	"image/color"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/spf13/cobra"

	"github.com/kestrelwave/wfc/internal/config"
	"github.com/kestrelwave/wfc/internal/grid"
	"github.com/kestrelwave/wfc/internal/imageio"
	"github.com/kestrelwave/wfc/internal/overlapping"
	"github.com/kestrelwave/wfc/internal/solver"
	"github.com/kestrelwave/wfc/internal/tiled"
	"github.com/kestrelwave/wfc/internal/wave"
)

// gridOutput is the common decoded-output type of both reducers
// (overlapping.Output and tiled.Output are the same type alias), letting
// the preview window drive either model's Driver without a type switch.
type gridOutput = *grid.Array2D[color.RGBA]

// colorer is the representative-color accessor both overlapping.Model and
// tiled.Model implement (SPEC_FULL §C.5), satisfied structurally.
type colorer interface {
	RepresentativeColor(p int) color.RGBA
}

const cellSizePx = 12

var previewSeed uint64
var previewName string

func init() {
	previewCmd := &cobra.Command{
		Use:   "preview <config.xml> <samples-dir>",
		Short: "Solve a WFC problem interactively in an Ebiten window",
		Args:  cobra.ExactArgs(2),
		RunE:  runPreview,
	}
	previewCmd.Flags().Uint64Var(&previewSeed, "seed", 1, "RNG seed")
	previewCmd.Flags().StringVar(&previewName, "name", "", "problem name to preview (default: first in the document)")
	rootCmd.AddCommand(previewCmd)
}

func runPreview(cmd *cobra.Command, args []string) error {
	cfgPath, samplesDir := args[0], args[1]

	f, err := os.Open(cfgPath)
	if err != nil {
		return fmt.Errorf("preview: %w", err)
	}
	defer f.Close()

	doc, err := config.ParseSamples(f)
	if err != nil {
		return fmt.Errorf("preview: %w", err)
	}

	driver, model, err := buildPreviewDriver(doc, samplesDir, previewName, previewSeed)
	if err != nil {
		return fmt.Errorf("preview: %w", err)
	}

	app := &previewApp{driver: driver, model: model}
	ebiten.SetWindowTitle("WFC Preview")
	ebiten.SetWindowSize(app.driver.Wave().Width()*cellSizePx, app.driver.Wave().Height()*cellSizePx)
	return ebiten.RunGame(app)
}

// buildPreviewDriver mirrors solveOverlapping/solveTiled in run.go, but
// returns the live Driver instead of running it to completion, so the
// preview window can call Observe() itself once per frame — the same
// "advance one step, redraw" shape as the teacher's App.Update/sim.Step.
func buildPreviewDriver(doc *config.SamplesDocument, samplesDir, name string, seed uint64) (*solver.Driver[gridOutput], colorer, error) {
	for _, spec := range doc.Overlapping {
		if name == "" || spec.Name == name {
			imgFile, err := os.Open(filepath.Join(samplesDir, spec.Name+".png"))
			if err != nil {
				return nil, nil, err
			}
			defer imgFile.Close()
			input, err := imageio.Decode(imgFile)
			if err != nil {
				return nil, nil, err
			}
			opts := overlapping.Options{
				N: spec.N, PeriodicInput: spec.PeriodicInput, PeriodicOutput: spec.Periodic,
				Symmetry: spec.Symmetry, Ground: spec.Ground, OutputHeight: spec.Height, OutputWidth: spec.Width,
			}
			model, err := overlapping.New(input, opts)
			if err != nil {
				return nil, nil, err
			}
			builder := &overlapping.Builder{Model: model}
			driver, err := builder.Build(seed)
			return driver, model, err
		}
	}
	for _, spec := range doc.SimpleTiled {
		if name == "" || spec.Name == name {
			setDir := filepath.Join(samplesDir, spec.Name)
			dataFile, err := os.Open(filepath.Join(setDir, "data.xml"))
			if err != nil {
				return nil, nil, err
			}
			defer dataFile.Close()
			tdoc, err := config.ParseTileSet(dataFile)
			if err != nil {
				return nil, nil, err
			}
			tiles, adjacencies, err := config.CompileTiles(tdoc, spec.Subset, tileImageLoader(setDir))
			if err != nil {
				return nil, nil, err
			}
			opts := tiled.Options{OutputHeight: spec.Height, OutputWidth: spec.Width, PeriodicOutput: spec.Periodic}
			model, err := tiled.New(tiles, adjacencies, opts)
			if err != nil {
				return nil, nil, err
			}
			builder := &tiled.Builder{Model: model}
			driver, err := builder.Build(seed)
			return driver, model, err
		}
	}
	return nil, nil, fmt.Errorf("no problem named %q in document", name)
}

// previewApp is the Ebiten game loop, adapted from the teacher's
// wavegen_variations/main.go App: SPACE single-steps, ENTER starts and ESC
// stops auto-run; there is no reset key. Unlike
// the teacher's hard-coded tile palette, cellColor here asks the model
// for a representative color per pattern rather than a fixed per-tile
// color table.
type previewApp struct {
	driver  *solver.Driver[gridOutput]
	model   colorer
	autoRun bool
	steps   int
}

func (a *previewApp) Update() error {
	if ebiten.IsKeyPressed(ebiten.KeySpace) && a.driver.State() == solver.Running {
		a.driver.Observe()
		a.steps++
	}
	if ebiten.IsKeyPressed(ebiten.KeyEnter) {
		a.autoRun = true
	}
	if ebiten.IsKeyPressed(ebiten.KeyEscape) {
		a.autoRun = false
	}
	if a.autoRun && a.driver.State() == solver.Running {
		for i := 0; i < 8 && a.driver.State() == solver.Running; i++ {
			a.driver.Observe()
			a.steps++
		}
	}
	if logger != nil && a.driver.State() != solver.Running {
		logger.LogAttrs(context.Background(), slog.LevelDebug, "preview settled", slog.Int("steps", a.steps))
	}
	return nil
}

func (a *previewApp) Draw(screen *ebiten.Image) {
	wv := a.driver.Wave()
	for y := 0; y < wv.Height(); y++ {
		for x := 0; x < wv.Width(); x++ {
			vector.FillRect(screen,
				float32(x*cellSizePx), float32(y*cellSizePx),
				float32(cellSizePx-1), float32(cellSizePx-1),
				a.cellColor(wv, y, x), false)
		}
	}

	status := "SPACE=step  ENTER=run  ESC=stop\n"
	status += fmt.Sprintf("steps=%d", a.steps)
	switch a.driver.State() {
	case solver.Failure:
		status += "  [CONTRADICTION]"
	case solver.Success:
		status += "  [DONE]"
	case solver.Running:
		if a.autoRun {
			status += "  [RUNNING]"
		}
	}
	ebitenutil.DebugPrint(screen, status)
}

// cellColor mirrors the teacher's Solver.CellColor: collapsed cells show
// the pattern's representative color, uncollapsed cells show an
// entropy-brightness ramp, and a contradicted cell shows the teacher's
// red marker.
func (a *previewApp) cellColor(wv *wave.Wave, y, x int) color.Color {
	n := wv.NPossible(y, x)
	if n == 0 {
		return color.RGBA{255, 0, 0, 255}
	}
	if n == 1 {
		p := -1
		wv.PossiblePatterns(y, x).Each(func(i int) bool { p = i; return false })
		return a.model.RepresentativeColor(p)
	}
	v := 40 + int(wv.Entropy(y, x)*30)
	if v > 220 {
		v = 220
	}
	if v < 40 {
		v = 40
	}
	return color.RGBA{uint8(v), uint8(v), uint8(v), 255}
}

func (a *previewApp) Layout(outsideW, outsideH int) (int, int) {
	wv := a.driver.Wave()
	return wv.Width() * cellSizePx, wv.Height() * cellSizePx
}
