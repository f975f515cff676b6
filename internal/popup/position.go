package popup

// Default popup size used when the page has not measured the container.
const (
	DefaultPopupWidth  = 350.0
	DefaultPopupHeight = 200.0
	edgePadding        = 10.0
	cellGap            = 2.0
)

// Rect is an element's bounding box in viewport coordinates.
type Rect struct {
	Top    float64 `json:"top"`
	Left   float64 `json:"left"`
	Bottom float64 `json:"bottom"`
	Right  float64 `json:"right"`
}

// Size is the popup's measured size.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Viewport is the visible window and its scroll offset.
type Viewport struct {
	Width   float64 `json:"width"`
	Height  float64 `json:"height"`
	ScrollX float64 `json:"scroll_x"`
	ScrollY float64 `json:"scroll_y"`
}

// Point is a document-relative popup position.
type Point struct {
	Top  float64 `json:"top"`
	Left float64 `json:"left"`
}

// Position places the popup just below the cell. It flips above the cell
// when there is not enough room below and is kept inside the viewport with
// a fixed padding on every edge.
func Position(cell Rect, popup Size, vp Viewport) Point {
	w, h := popup.Width, popup.Height
	if w <= 0 {
		w = DefaultPopupWidth
	}
	if h <= 0 {
		h = DefaultPopupHeight
	}

	top := cell.Bottom + vp.ScrollY + cellGap
	left := cell.Left + vp.ScrollX

	if top+h > vp.Height+vp.ScrollY-edgePadding {
		top = cell.Top + vp.ScrollY - h - cellGap
	}
	if top < vp.ScrollY+edgePadding {
		top = vp.ScrollY + edgePadding
	}

	if left+w > vp.Width+vp.ScrollX-edgePadding {
		left = cell.Right + vp.ScrollX - w
		if left+w > vp.Width+vp.ScrollX-edgePadding {
			left = vp.Width + vp.ScrollX - w - edgePadding
		}
	}
	if left < vp.ScrollX+edgePadding {
		left = vp.ScrollX + edgePadding
	}

	return Point{Top: top, Left: left}
}
