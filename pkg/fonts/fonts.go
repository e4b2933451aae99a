// Package fonts provides the embedded font faces used by the canvas
// renderer.
//
// The Go font family ships inside golang.org/x/image, so no font files are
// read at runtime. Parsed fonts are shared process-wide. A font.Face keeps
// glyph caches and is not safe for concurrent use, so faces are cached per
// [Cache] and each Cache must stay on one goroutine at a time.
package fonts

import (
	"fmt"
	"math"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gomedium"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// Weight selects one of the embedded faces.
type Weight int

const (
	Regular Weight = iota
	Medium
	Bold
)

func (w Weight) String() string {
	switch w {
	case Regular:
		return "regular"
	case Medium:
		return "medium"
	case Bold:
		return "bold"
	}
	return fmt.Sprintf("weight(%d)", int(w))
}

var ttf = map[Weight][]byte{
	Regular: goregular.TTF,
	Medium:  gomedium.TTF,
	Bold:    gobold.TTF,
}

type faceKey struct {
	w    Weight
	size float64
}

var (
	parseMu sync.Mutex
	parsed  = map[Weight]*opentype.Font{}
)

func parse(w Weight) (*opentype.Font, error) {
	parseMu.Lock()
	defer parseMu.Unlock()
	if f, ok := parsed[w]; ok {
		return f, nil
	}
	data, known := ttf[w]
	if !known {
		return nil, fmt.Errorf("fonts: unknown %s", w)
	}
	f, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("fonts: parse %s: %w", w, err)
	}
	parsed[w] = f
	return f, nil
}

// roundSize rounds to a quarter pixel so that continuous zoom does not grow
// a cache without bound.
func roundSize(size float64) float64 { return math.Round(size*4) / 4 }

// Face returns a new face of the given weight at size pixels (72 DPI). The
// caller owns it.
func Face(w Weight, size float64) (font.Face, error) {
	size = roundSize(size)
	if size <= 0 {
		return nil, fmt.Errorf("fonts: invalid size %g", size)
	}
	f, err := parse(w)
	if err != nil {
		return nil, err
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("fonts: face %s %g: %w", w, size, err)
	}
	return face, nil
}

// Cache keeps one face per weight and quarter-pixel size. It is not safe
// for concurrent use.
type Cache struct {
	faces map[faceKey]font.Face
}

func NewCache() *Cache { return &Cache{faces: map[faceKey]font.Face{}} }

// Face is the cached form of the package-level Face.
func (c *Cache) Face(w Weight, size float64) (font.Face, error) {
	key := faceKey{w: w, size: roundSize(size)}
	if f, ok := c.faces[key]; ok {
		return f, nil
	}
	f, err := Face(w, size)
	if err != nil {
		return nil, err
	}
	c.faces[key] = f
	return f, nil
}

// MustFace is like Face but falls back to a fixed bitmap face on error.
func (c *Cache) MustFace(w Weight, size float64) font.Face {
	f, err := c.Face(w, size)
	if err != nil {
		return basicfont.Face7x13
	}
	return f
}

func (c *Cache) Len() int { return len(c.faces) }
