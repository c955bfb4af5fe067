package dashboard

import "github.com/spektr-org/nexus/engine"

// View is what the dashboard area shows. Exactly one of Message or the
// content fields is populated.
type View struct {
	State   State
	Role    string
	Message string // LoadingText or ErrorText; empty when content is shown

	Tiles   []engine.Tile
	Panels  []*engine.ChartConfig
	Actions *engine.TableData // nil when the payload has no actions
}

// HasContent reports whether the view carries a rendered payload.
func (v View) HasContent() bool {
	return v.State == StateLoaded
}

// View renders the current state. In Loaded the tiles, panels and actions
// keep server order.
func (c *Composer) View() View {
	c.mu.Lock()
	state, role, payload := c.state, c.role, c.payload
	c.mu.Unlock()

	v := View{State: state, Role: role}
	switch state {
	case StateLoading:
		v.Message = LoadingText
	case StateFailed:
		v.Message = ErrorText
	case StateLoaded:
		v.Tiles = engine.RenderKPIs(payload.KPIs)
		v.Panels = engine.RenderAll(payload.Charts, c.render...)
		v.Actions = engine.BuildActionTable(payload.Actions)
	}
	return v
}
