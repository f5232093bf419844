package domain

const (
	ZoomMin     = 50
	ZoomMax     = 200
	ZoomStep    = 25
	ZoomDefault = 100
)

// ViewerAction is a control of the embedded document viewer.
type ViewerAction string

const (
	ViewerZoomIn     ViewerAction = "zoom-in"
	ViewerZoomOut    ViewerAction = "zoom-out"
	ViewerZoomReset  ViewerAction = "zoom-reset"
	ViewerNext       ViewerAction = "next"
	ViewerPrev       ViewerAction = "prev"
	ViewerFullscreen ViewerAction = "fullscreen"
	ViewerPrint      ViewerAction = "print"
)

// ViewerState is what the portal believes about a document viewer. The
// page count comes from the client; the embedded viewer may not expose it.
type ViewerState struct {
	Zoom       int  `json:"zoom"`
	Page       int  `json:"page"`
	TotalPages int  `json:"total_pages"`
	Fullscreen bool `json:"fullscreen"`
}

// NewViewerState is the state of a freshly opened document.
func NewViewerState() ViewerState {
	return ViewerState{Zoom: ZoomDefault, Page: 1}
}

// Scale is the CSS transform factor for the current zoom.
func (v ViewerState) Scale() float64 {
	return float64(v.Zoom) / 100
}

// Apply performs action and returns the new state. Actions that would leave
// the bounds are no-ops. Print does not change state.
func (v ViewerState) Apply(action ViewerAction) (ViewerState, error) {
	switch action {
	case ViewerZoomIn:
		if v.Zoom < ZoomMax {
			v.Zoom += ZoomStep
		}
	case ViewerZoomOut:
		if v.Zoom > ZoomMin {
			v.Zoom -= ZoomStep
		}
	case ViewerZoomReset:
		v.Zoom = ZoomDefault
	case ViewerNext:
		if v.Page < v.TotalPages {
			v.Page++
		}
	case ViewerPrev:
		if v.Page > 1 {
			v.Page--
		}
	case ViewerFullscreen:
		v.Fullscreen = !v.Fullscreen
	case ViewerPrint:
	default:
		return v, ErrUnknownViewerAction
	}
	return v, nil
}

// WithTotalPages records the page count reported by the client and keeps
// the current page in range.
func (v ViewerState) WithTotalPages(total int) ViewerState {
	if total < 0 {
		total = 0
	}
	v.TotalPages = total
	if v.Page > total && total > 0 {
		v.Page = total
	}
	if v.Page < 1 {
		v.Page = 1
	}
	return v
}

// KeyAction maps a keyboard shortcut to a viewer action.
func KeyAction(key string, ctrl bool) (ViewerAction, bool) {
	switch key {
	case "ArrowLeft":
		return ViewerPrev, true
	case "ArrowRight":
		return ViewerNext, true
	case "+", "=":
		return ViewerZoomIn, true
	case "-":
		return ViewerZoomOut, true
	case "0":
		return ViewerZoomReset, true
	case "f":
		return ViewerFullscreen, true
	case "p":
		if ctrl {
			return ViewerPrint, true
		}
	}
	return "", false
}

// Document is a PDF served behind a scope.
type Document struct {
	ID    string    `json:"id"`
	Title string    `json:"title"`
	URL   string    `json:"url"`
	Scope ScopeName `json:"scope"`
}
