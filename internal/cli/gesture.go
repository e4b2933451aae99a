package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/moduletree/pkg/errors"
	"github.com/matzehuels/moduletree/pkg/tree"
)

// gestureScript is a recorded input sequence replayed by `render --script`:
//
//	width = 800
//	height = 600
//
//	[[events]]
//	kind = "down"
//	x = 400
//	y = 155
//
//	[[events]]
//	kind = "up"
//	x = 400
//	y = 155
//
//	[[events]]
//	kind = "wheel"
//	delta = -100
//
// Pointer kinds are down, move, up and leave. Touch kinds are touchstart,
// touchmove, touchend and touchcancel and use id for the finger. The other
// kinds are wheel, zoomin, zoomout, home, resize (width and height), select
// and hover (module).
type gestureScript struct {
	Width  float64   `toml:"width"`
	Height float64   `toml:"height"`
	Events []gesture `toml:"events"`
}

type gesture struct {
	Kind   string  `toml:"kind"`
	X      float64 `toml:"x"`
	Y      float64 `toml:"y"`
	ID     int     `toml:"id"`
	Delta  float64 `toml:"delta"`
	Width  float64 `toml:"width"`
	Height float64 `toml:"height"`
	Module string  `toml:"module"`
}

var pointerKinds = map[string]tree.PointerKind{
	"down":  tree.PointerDown,
	"move":  tree.PointerMove,
	"up":    tree.PointerUp,
	"leave": tree.PointerLeave,
}

var touchKinds = map[string]tree.TouchKind{
	"touchstart":  tree.TouchStart,
	"touchmove":   tree.TouchMove,
	"touchend":    tree.TouchEnd,
	"touchcancel": tree.TouchCancel,
}

func readGestureFile(path string) (*gestureScript, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "gesture script %s", path)
	}
	defer f.Close()
	return readGestures(f)
}

func readGestures(r io.Reader) (*gestureScript, error) {
	var s gestureScript
	if _, err := toml.NewDecoder(r).Decode(&s); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode gesture script")
	}
	for i, ev := range s.Events {
		if err := ev.validate(); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "event %d", i)
		}
	}
	return &s, nil
}

func (g gesture) validate() error {
	if _, ok := pointerKinds[g.Kind]; ok {
		return nil
	}
	if _, ok := touchKinds[g.Kind]; ok {
		return nil
	}
	switch g.Kind {
	case "wheel", "zoomin", "zoomout", "home":
		return nil
	case "resize":
		if g.Width < 0 || g.Height < 0 {
			return fmt.Errorf("negative size %gx%g", g.Width, g.Height)
		}
		return nil
	case "select", "hover":
		return nil
	}
	return fmt.Errorf("unknown kind %q", g.Kind)
}

// replay feeds the events to c in order. Select on an unknown module fails
// the replay; every other event is applied as is.
func (s *gestureScript) replay(c *tree.Canvas) error {
	for i, ev := range s.Events {
		if k, ok := pointerKinds[ev.Kind]; ok {
			c.Pointer(tree.PointerEvent{Kind: k, X: ev.X, Y: ev.Y})
			continue
		}
		if k, ok := touchKinds[ev.Kind]; ok {
			c.Touch(tree.TouchEvent{Kind: k, ID: ev.ID, X: ev.X, Y: ev.Y})
			continue
		}
		switch ev.Kind {
		case "wheel":
			c.Wheel(ev.Delta)
		case "zoomin":
			c.ZoomIn()
		case "zoomout":
			c.ZoomOut()
		case "home":
			c.Home()
		case "resize":
			c.Resize(ev.Width, ev.Height)
		case "select":
			if err := c.Select(ev.Module); err != nil {
				return errors.Wrap(errors.ErrCodeInvalidInput, err, "event %d", i)
			}
		case "hover":
			// A pointer move over the module's center.
			if err := hoverModule(c, ev.Module); err != nil {
				return errors.Wrap(errors.ErrCodeInvalidInput, err, "event %d", i)
			}
		}
	}
	return nil
}
