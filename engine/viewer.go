package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/sirupsen/logrus"

	"github.com/veyra/abyss/dataset"
	"github.com/veyra/abyss/parameter"
	"github.com/veyra/abyss/render"
	"github.com/veyra/abyss/sched"
	"github.com/veyra/abyss/sound"
)

// Options configures a viewer session
type Options struct {
	// Source serves dataset objects (HTTP base or local directory)
	Source dataset.Source

	// Backend is the live-render server base URL; empty disables the
	// live lane and the status poller
	Backend string

	// Dataset preselects a dataset id; empty takes the index's first
	Dataset string

	// Autoplay starts path playback once all visible tiles load
	Autoplay bool

	Sounds *sound.Player
	Hook   LoopHook
}

// Viewer owns the terminal session: screen, frame ticker, worker
// channels, and the single-owner ViewerContext
type Viewer struct {
	log  *logrus.Logger
	ctx  *ViewerContext
	opts Options

	screen tcell.Screen
	fb     *render.Framebuffer
	grid   *render.CellGrid

	fetcher *dataset.StaticFetcher
	live    *dataset.LiveClient
	poller  *dataset.StatusPoller

	completions chan dataset.Completion
	statusCh    chan dataset.Status

	index *dataset.Index
}

// NewViewer wires the full pipeline: fetch workers, scheduler,
// orchestrator, context
func NewViewer(log *logrus.Logger, opts Options) (*Viewer, error) {
	if opts.Source == nil {
		return nil, errors.New("viewer needs a dataset source")
	}

	completions := make(chan dataset.Completion, parameter.CompletionChannelSize)
	fetcher, err := dataset.NewStaticFetcher(log, opts.Source, completions)
	if err != nil {
		return nil, fmt.Errorf("static fetcher: %w", err)
	}

	var live *dataset.LiveClient
	var liveDisp sched.Dispatcher
	var poller *dataset.StatusPoller
	if opts.Backend != "" {
		live = dataset.NewLiveClient(log, opts.Backend, completions)
		liveDisp = live
		poller = dataset.NewStatusPoller(log, opts.Backend)
	} else {
		liveDisp = dropDispatcher{completions}
	}

	sch := sched.New(log, fetcher, liveDisp)
	orch := render.NewOrchestrator(log, sch)
	vc := NewViewerContext(log, sch, orch)
	vc.LiveEnabled = opts.Backend != ""
	vc.AutoplayPending = opts.Autoplay
	vc.Sounds = opts.Sounds
	vc.Hook = opts.Hook

	return &Viewer{
		log:         log,
		ctx:         vc,
		opts:        opts,
		fetcher:     fetcher,
		live:        live,
		poller:      poller,
		completions: completions,
		statusCh:    make(chan dataset.Status, 1),
	}, nil
}

// Context exposes the viewer state for hooks and tests
func (vw *Viewer) Context() *ViewerContext {
	return vw.ctx
}

// dropDispatcher fails live requests immediately when no backend is
// configured. The manifest gate normally prevents these from existing
type dropDispatcher struct {
	out chan<- dataset.Completion
}

func (d dropDispatcher) Dispatch(req *sched.Request) {
	d.out <- dataset.Completion{ID: req.ID, Lane: sched.LaneLive, Outcome: dataset.OutcomeFailed}
}

// Run drives the session until quit or ctx cancellation
func (vw *Viewer) Run(ctx context.Context) error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("screen init: %w", err)
	}
	vw.screen = screen
	defer screen.Fini()

	wctx, cancel := context.WithCancel(ctx)
	defer cancel()

	vw.fetcher.Run(wctx)
	if vw.live != nil {
		vw.live.Run(wctx)
	}
	if vw.poller != nil {
		go vw.poller.Run(wctx, vw.statusCh)
	}

	if err := vw.loadIndex(wctx); err != nil {
		return err
	}
	if err := vw.switchDataset(wctx, vw.startIndex()); err != nil {
		return err
	}

	vw.handleResize()

	events := make(chan tcell.Event, 64)
	go func() {
		for {
			ev := screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case events <- ev:
			case <-wctx.Done():
				return
			}
		}
	}()

	ticker := time.NewTicker(parameter.FrameUpdateInterval)
	defer ticker.Stop()

	for {
		select {
		case <-wctx.Done():
			return nil

		case ev := <-events:
			switch tev := ev.(type) {
			case *tcell.EventKey:
				switch HandleKey(vw.ctx, tev) {
				case ActionQuit:
					return nil
				case ActionNextDataset:
					vw.cycleDataset(wctx, 1)
				case ActionPrevDataset:
					vw.cycleDataset(wctx, -1)
				}
			case *tcell.EventResize:
				screen.Sync()
				vw.handleResize()
			}

		case st := <-vw.statusCh:
			snapshot := st
			vw.ctx.Status = &snapshot

		case now := <-ticker.C:
			vw.drainCompletions()
			vw.ctx.Step(now)
			vw.draw(now)
		}
	}
}

// drainCompletions applies every pending worker result without blocking
func (vw *Viewer) drainCompletions() {
	for {
		select {
		case c := <-vw.completions:
			vw.ctx.HandleCompletion(c)
		default:
			return
		}
	}
}

// handleResize recomputes framebuffer and grid dimensions. The bottom
// terminal row is reserved for the status line; each remaining cell
// covers a 2x2 pixel quadrant block
func (vw *Viewer) handleResize() {
	cols, rows := vw.screen.Size()
	imgRows := rows - 1
	if imgRows < 1 {
		imgRows = 1
	}
	pxW, pxH := cols*2, imgRows*2
	vw.ctx.Resize(pxW, pxH)
	if vw.fb == nil {
		vw.fb = render.NewFramebuffer(pxW, pxH)
		vw.grid = render.NewCellGrid(cols, rows)
	} else {
		vw.fb.Resize(pxW, pxH)
		vw.grid.Resize(cols, rows)
	}
}

// draw composes the frame, overlays badges and the status line, and
// flushes changed cells
func (vw *Viewer) draw(now time.Time) {
	labels := vw.ctx.Orch.Compose(vw.ctx.Cam, vw.fb)
	vw.grid.FromFramebuffer(vw.fb)

	labelStyle := tcell.ColorYellow
	for _, lb := range labels {
		vw.grid.SetText(lb.X/2-len(lb.Text)/2, lb.Y/2, lb.Text, labelStyle, tcell.ColorBlack)
	}

	_, rows := vw.screen.Size()
	vw.grid.SetText(0, rows-1, vw.statusLine(now), tcell.ColorWhite, tcell.ColorDarkBlue)
	vw.grid.Flush(vw.screen)
}

// statusLine builds the bottom-row summary
func (vw *Viewer) statusLine(now time.Time) string {
	v := vw.ctx
	name := "-"
	if v.Config != nil {
		name = v.Config.ID
	}

	line := fmt.Sprintf(" %s  L%.2f", name, v.Cam.GlobalLevel)

	if v.Editor.Sampler().Playable() {
		state := "paused"
		if v.Clock.Running() {
			state = "playing"
		}
		line += fmt.Sprintf("  [%s %3.0f%%  kf %d/%d]",
			state, v.PlaybackProgress()*100, v.Editor.ActiveIndex()+1, v.Editor.Len())
	}

	if v.LiveEnabled {
		switch {
		case v.Status == nil || !v.Status.Up:
			line += "  backend unavailable"
		case v.Status.ActiveRenders > 0:
			line += fmt.Sprintf("  rendering %d", v.Status.ActiveRenders)
			if v.Status.Progress != "" {
				line += " (" + v.Status.Progress + ")"
			}
		}
	}

	if msg := v.StatusMessage(now); msg != "" {
		line += "  | " + msg
	}
	return line
}

// loadIndex fetches the dataset catalog
func (vw *Viewer) loadIndex(ctx context.Context) error {
	lctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	idx, err := dataset.LoadIndex(lctx, vw.opts.Source)
	if err != nil {
		return err
	}
	if len(idx.Datasets) == 0 {
		return errors.New("dataset index is empty")
	}
	vw.index = idx
	vw.ctx.Datasets = idx.Datasets
	return nil
}

// startIndex resolves the preselected dataset against the index
func (vw *Viewer) startIndex() int {
	if vw.opts.Dataset == "" {
		return 0
	}
	for i, e := range vw.index.Datasets {
		if e.ID == vw.opts.Dataset {
			return i
		}
	}
	vw.log.WithField("dataset", vw.opts.Dataset).Warn("requested dataset not in index")
	return 0
}

// cycleDataset moves to the neighboring dataset, wrapping around
func (vw *Viewer) cycleDataset(ctx context.Context, delta int) {
	n := len(vw.index.Datasets)
	if n < 2 {
		return
	}
	next := (vw.ctx.Active + delta + n) % n
	if err := vw.switchDataset(ctx, next); err != nil {
		vw.log.WithError(err).Warn("dataset switch failed")
		vw.ctx.SetStatus("dataset load failed: " + vw.index.Datasets[next].ID)
	}
}

// switchDataset loads and activates datasets[i]
func (vw *Viewer) switchDataset(ctx context.Context, i int) error {
	entry := vw.index.Datasets[i]
	lctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	cfg, err := dataset.LoadConfig(lctx, vw.opts.Source, entry.ID)
	if err != nil {
		return err
	}
	kfs, err := dataset.LoadPath(lctx, vw.opts.Source, cfg)
	if err != nil {
		return err
	}
	manifest, err := dataset.LoadManifest(lctx, vw.opts.Source, entry.ID)
	if err != nil && !errors.Is(err, dataset.ErrManifestMissing) {
		return err
	}

	vw.ctx.Active = i
	vw.ctx.ActivateDataset(cfg, kfs, manifest)
	vw.ctx.SetStatus("dataset: " + cfg.Name)
	return nil
}
