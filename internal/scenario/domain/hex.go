package domain

import "strconv"

// Hex is an axial board coordinate.
type Hex struct {
	Q int `json:"q"`
	R int `json:"r"`
}

// Key formats the hex as a stable map key.
func (h Hex) Key() string {
	return strconv.Itoa(h.Q) + "," + strconv.Itoa(h.R)
}

// Distance returns the hex grid distance between two coordinates.
func (h Hex) Distance(other Hex) int {
	dq := h.Q - other.Q
	dr := h.R - other.R
	ds := dq + dr
	return (abs(dq) + abs(dr) + abs(ds)) / 2
}

// Adjacent reports whether the other hex is exactly one step away.
func (h Hex) Adjacent(other Hex) bool {
	return h.Distance(other) == 1
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
