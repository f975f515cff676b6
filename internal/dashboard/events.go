package dashboard

import (
	"context"
	"fmt"

	"github.com/bobmcallan/vire-markets/internal/models"
	"github.com/bobmcallan/vire-markets/internal/popup"
)

// Sort applies a header click: the same column toggles direction, a new
// column sorts ascending. The collection is reordered and re-rendered
// without fetching.
func (c *Coordinator) Sort(column models.Column) (models.SortState, error) {
	if !column.Valid() {
		return models.SortState{}, fmt.Errorf("unknown sort column %q", column)
	}
	s := c.store.SelectSort(column)
	c.resort()
	c.render()
	c.logger.Debug().Str("column", string(s.Column)).Str("direction", string(s.Direction)).Msg("Sort applied")
	return s, nil
}

// SetPeriods stores new period selections. Empty fields keep their current
// value. The caller triggers the refresh.
func (c *Coordinator) SetPeriods(p models.FetchParams) (models.FetchParams, error) {
	cur := c.store.Params()
	if p.DrawdownPeriod != "" {
		if !models.IsValidPeriod(p.DrawdownPeriod) {
			return cur, fmt.Errorf("%w: drawdown_period %q", ErrInvalidPeriod, p.DrawdownPeriod)
		}
		cur.DrawdownPeriod = p.DrawdownPeriod
	}
	if p.ChangePeriod != "" {
		if !models.IsValidPeriod(p.ChangePeriod) {
			return cur, fmt.Errorf("%w: change_period %q", ErrInvalidPeriod, p.ChangePeriod)
		}
		cur.ChangePeriod = p.ChangePeriod
	}
	c.store.SetParams(cur)
	return cur, nil
}

// Hover shows the popup for a trigger zone on a row.
func (c *Coordinator) Hover(ctx context.Context, ev popup.HoverEvent) (*popup.Popup, error) {
	rec, _ := c.store.Record(ev.Symbol)
	return c.popups.Hover(ev, rec, c.store.SharedHistory(), c.themes.Get(ctx))
}

// Leave hides the popup.
func (c *Coordinator) Leave() {
	c.popups.Leave()
}

// Popup returns the visible popup, if any.
func (c *Coordinator) Popup() (*popup.Popup, bool) {
	return c.popups.Current()
}

// PopupState returns the popup controller state.
func (c *Coordinator) PopupState() popup.State {
	return c.popups.State()
}

// Chart builds a chart view for a record outside the hover state machine.
// The N/A overlay is returned when the view has no usable series.
func (c *Coordinator) Chart(ctx context.Context, symbol string, kind popup.ViewKind) (*popup.ChartSpec, popup.Overlay, error) {
	rec, ok := c.store.Record(symbol)
	if !ok {
		return nil, popup.Overlay{}, fmt.Errorf("unknown symbol %q", symbol)
	}
	if rec.HasError() {
		return nil, popup.Overlay{}, fmt.Errorf("%w: %s", popup.ErrNotHoverable, symbol)
	}
	return popup.Build(kind, rec, c.store.SharedHistory(), c.themes.Get(ctx))
}

// Theme returns the persisted theme.
func (c *Coordinator) Theme(ctx context.Context) models.Theme {
	return c.themes.Get(ctx)
}

// ToggleTheme flips the theme. Any open popup is hidden since its chart
// colours belong to the old theme.
func (c *Coordinator) ToggleTheme(ctx context.Context) models.Theme {
	t := c.themes.Toggle(ctx)
	c.popups.Leave()
	return t
}

// SetTheme stores an explicit theme and hides any open popup.
func (c *Coordinator) SetTheme(ctx context.Context, t models.Theme) error {
	if err := c.themes.Set(ctx, t); err != nil {
		return err
	}
	c.popups.Leave()
	return nil
}
