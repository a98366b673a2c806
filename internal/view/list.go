package view

import (
	"context"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/frdg/internal/domain/models"
	"github.com/mamadbah2/frdg/internal/query"
)

// Inventory is what the views need from the client-side inventory service.
type Inventory interface {
	Foods(ctx context.Context) ([]models.Food, error)
	Create(ctx context.Context, food models.NewFood) error
	Delete(ctx context.Context, id int64) error
	Cache() *query.Cache
}

// ListState is the lifecycle of the food list.
type ListState int

const (
	ListIdle ListState = iota
	ListLoading
	ListSuccess
	ListError
)

func (s ListState) String() string {
	switch s {
	case ListLoading:
		return "loading"
	case ListSuccess:
		return "success"
	case ListError:
		return "error"
	default:
		return "idle"
	}
}

// Options tunes a view.
type Options struct {
	// LoadingDelay is how long a load may run before the indicator appears.
	LoadingDelay time.Duration
	Styler       Styler
	Now          func() time.Time
	Logger       *zap.Logger
}

// DefaultLoadingDelay keeps quick loads from flashing the indicator.
const DefaultLoadingDelay = 500 * time.Millisecond

func (o Options) withDefaults() Options {
	if o.LoadingDelay <= 0 {
		o.LoadingDelay = DefaultLoadingDelay
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	return o
}

// ListView renders the food list and re-renders whenever the cached list
// changes while it is mounted.
type ListView struct {
	inv  Inventory
	out  *syncWriter
	opts Options

	mu             sync.Mutex
	state          ListState
	foods          []models.Food
	timer          *time.Timer
	indicatorShown bool
	mounted        bool
	unsubscribe    func()
}

// NewListView creates an unmounted list view writing to out.
func NewListView(inv Inventory, out io.Writer, opts Options) *ListView {
	return &ListView{
		inv:   inv,
		out:   newSyncWriter(out),
		opts:  opts.withDefaults(),
		state: ListIdle,
	}
}

// State returns the current list state.
func (v *ListView) State() ListState {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state
}

// Foods returns the foods of the last successful render.
func (v *ListView) Foods() []models.Food {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := make([]models.Food, len(v.foods))
	copy(out, v.foods)
	return out
}

// Mount enters the loading state, subscribes to the cached list and renders
// the first read. The returned error is the read failure, already rendered.
func (v *ListView) Mount(ctx context.Context) error {
	v.mu.Lock()
	v.state = ListLoading
	v.mounted = true
	v.indicatorShown = false
	v.timer = time.AfterFunc(v.opts.LoadingDelay, v.showIndicator)
	v.unsubscribe = v.inv.Cache().Subscribe(query.KeyFoodsList, v.onSnapshot)
	v.mu.Unlock()

	foods, err := v.inv.Foods(ctx)
	v.resolve(foods, err)
	return err
}

// Unmount stops the loading timer and the subscription. An in-flight read is
// left to finish on its own.
func (v *ListView) Unmount() {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.mounted = false
	v.stopTimerLocked()
	if v.unsubscribe != nil {
		v.unsubscribe()
		v.unsubscribe = nil
	}
}

func (v *ListView) showIndicator() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.mounted || v.state != ListLoading || v.indicatorShown {
		return
	}
	v.indicatorShown = true
	v.out.printf("%s\n", MessageLoading)
}

func (v *ListView) onSnapshot(snap query.Snapshot) {
	v.mu.Lock()
	defer v.mu.Unlock()

	// The first read is rendered by Mount; refreshes keep showing cached data
	// until their result arrives.
	if !v.mounted || v.state == ListLoading || v.state == ListIdle || snap.Fetching {
		return
	}

	switch snap.Status {
	case query.StatusSuccess:
		foods, ok := snap.Data.([]models.Food)
		if !ok {
			v.opts.Logger.Warn("unexpected cached value for food list")
			return
		}
		v.state = ListSuccess
		v.foods = foods
	case query.StatusError:
		v.state = ListError
	default:
		return
	}
	v.renderLocked()
}

func (v *ListView) resolve(foods []models.Food, err error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.stopTimerLocked()
	if err != nil {
		v.state = ListError
		v.opts.Logger.Debug("food list failed to load", zap.Error(err))
	} else {
		v.state = ListSuccess
		v.foods = foods
	}
	if v.mounted {
		v.renderLocked()
	}
}

func (v *ListView) stopTimerLocked() {
	if v.timer != nil {
		v.timer.Stop()
		v.timer = nil
	}
}

func (v *ListView) renderLocked() {
	switch v.state {
	case ListLoading:
		if v.indicatorShown {
			v.out.printf("%s\n", MessageLoading)
		}
	case ListError:
		v.out.printf("%s\n", MessageError)
	case ListSuccess:
		v.out.printf("%s", RenderFoods(v.foods, v.opts.Now(), v.opts.Styler))
	}
}

// RenderFoods formats one block per food: the severity-styled best-before
// line followed by the name and id.
func RenderFoods(foods []models.Food, now time.Time, styler Styler) string {
	if len(foods) == 0 {
		return MessageEmpty + "\n"
	}

	var b strings.Builder
	for _, f := range foods {
		severity := models.Classify(now, f.BestBeforeDate)
		b.WriteString(styler.Severity("Best Before: "+f.BestBeforeDate.Display(), severity))
		b.WriteString("\n")
		b.WriteString(styler.Bold(f.Name))
		b.WriteString("  #")
		b.WriteString(strconv.FormatInt(f.ID, 10))
		b.WriteString("\n\n")
	}
	return b.String()
}
