package keyboard

import "image"

// TouchArea is the tappable region of one key, in layer coordinates.
type TouchArea struct {
	Label          string
	X1, X2, Y1, Y2 int
}

// Contains reports whether (x, y) lies strictly inside the area.
func (a TouchArea) Contains(x, y int) bool {
	return x > a.X1 && x < a.X2 && y > a.Y1 && y < a.Y2
}

// Rect returns the area as a rectangle.
func (a TouchArea) Rect() image.Rectangle {
	return image.Rect(a.X1, a.Y1, a.X2, a.Y2)
}

// GetKeyForCoordinates returns the first area of the active layer that
// contains (x, y). Coordinates are relative to the keyboard's top-left
// corner.
func (k *Keyboard) GetKeyForCoordinates(x, y int) (TouchArea, bool) {
	l := k.layers[k.active]
	if l == nil {
		return TouchArea{}, false
	}
	for _, a := range l.Areas {
		if a.Contains(x, y) {
			return a, true
		}
	}
	return TouchArea{}, false
}

// GetCharForCoordinates returns the label of the key at (x, y), or "" when
// no key is there.
func (k *Keyboard) GetCharForCoordinates(x, y int) string {
	a, _ := k.GetKeyForCoordinates(x, y)
	return a.Label
}
