package popup

import (
	"errors"
	"fmt"
	"sync"

	"github.com/bobmcallan/vire-markets/internal/common"
	"github.com/bobmcallan/vire-markets/internal/models"
)

// State is the controller state.
type State string

const (
	StateIdle    State = "idle"
	StateShowing State = "showing"
)

var (
	// ErrUnknownZone is returned for a hover over a cell with no chart view.
	ErrUnknownZone = errors.New("unknown hover zone")
	// ErrNotHoverable is returned for rows without hover hooks: unknown
	// symbols and records carrying an error.
	ErrNotHoverable = errors.New("row has no popup")
)

// HoverEvent is a pointer entering a trigger zone.
type HoverEvent struct {
	Symbol   string      `json:"symbol"`
	Zone     models.Zone `json:"zone"`
	Anchor   Rect        `json:"anchor"`
	Popup    Size        `json:"popup"`
	Viewport Viewport    `json:"viewport"`
}

// Popup is the visible popup while Showing. Chart is nil when the view
// fell back to its "Data N/A" overlay.
type Popup struct {
	Symbol   string     `json:"symbol"`
	View     ViewKind   `json:"view"`
	Overlay  Overlay    `json:"overlay"`
	Chart    *ChartSpec `json:"chart,omitempty"`
	Position Point      `json:"position"`
}

// Controller is the popup state machine. At most one popup exists, and its
// chart handle is released before any other view is built.
type Controller struct {
	mu      sync.Mutex
	surface ChartSurface
	logger  *common.Logger

	state  State
	popup  *Popup
	handle ChartHandle
}

// NewController creates an idle controller drawing on surface.
func NewController(surface ChartSurface, logger *common.Logger) *Controller {
	return &Controller{
		surface: surface,
		logger:  logger,
		state:   StateIdle,
	}
}

// Hover tears down any current popup and shows the view for the zone.
// rec is the hovered row's record (nil when the symbol is unknown).
func (c *Controller) Hover(ev HoverEvent, rec *models.AssetRecord, shared *models.HistorySeries, theme models.Theme) (*Popup, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.teardown()

	kind, ok := ViewForZone(ev.Zone)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownZone, ev.Zone)
	}
	if rec == nil || rec.HasError() {
		return nil, fmt.Errorf("%w: %s", ErrNotHoverable, ev.Symbol)
	}

	popup := &Popup{
		Symbol:   rec.Name,
		View:     kind,
		Position: Position(ev.Anchor, ev.Popup, ev.Viewport),
	}

	spec, overlay, err := Build(kind, rec, shared, theme)
	popup.Overlay = overlay
	switch {
	case errors.Is(err, ErrChartData):
		c.logger.Debug().Str("symbol", rec.Name).Str("view", string(kind)).Str("reason", err.Error()).Msg("Chart data unavailable")
	case err != nil:
		return nil, err
	default:
		if drawErr := c.draw(spec); drawErr != nil {
			c.logger.Warn().Str("symbol", rec.Name).Str("view", string(kind)).Str("error", drawErr.Error()).Msg("Failed to draw chart")
			popup.Overlay = Overlay{Text: unavailableText(kind)}
		} else {
			popup.Chart = spec
		}
	}

	c.state = StateShowing
	c.popup = popup
	return popup, nil
}

// Leave hides the popup and releases the chart surface.
func (c *Controller) Leave() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.teardown()
}

// Current returns the visible popup.
func (c *Controller) Current() (*Popup, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.popup, c.state == StateShowing
}

// State returns the controller state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Controller) draw(spec *ChartSpec) error {
	handle, err := c.surface.Acquire()
	if err != nil {
		return err
	}
	if err := handle.Draw(spec); err != nil {
		handle.Release()
		return err
	}
	c.handle = handle
	return nil
}

// teardown must be called with mu held.
func (c *Controller) teardown() {
	if c.handle != nil {
		c.handle.Release()
		c.handle = nil
	}
	c.popup = nil
	c.state = StateIdle
}
