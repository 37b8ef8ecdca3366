package core

import (
	"encoding/json"
	"fmt"
)

// CommandKind identifies a path command variant.
type CommandKind string

const (
	MoveTo CommandKind = "M"
	LineTo CommandKind = "L"
	QuadTo CommandKind = "Q"
)

// Point is a coordinate pair.
type Point struct {
	X Number `json:"x"`
	Y Number `json:"y"`
}

// PathCommand is one outline command. MoveTo and LineTo use X and Y;
// QuadTo uses Begin and End.
type PathCommand struct {
	Kind  CommandKind
	X, Y  Number
	Begin Point
	End   Point
}

// Stroke is one drawing action: the rendered shape and the order in which a
// hand writes it.
type Stroke struct {
	Outline []PathCommand `json:"outline"`
	Track   []Point       `json:"track"`
}

type pointCommandJSON struct {
	Type CommandKind `json:"type"`
	X    Number      `json:"x"`
	Y    Number      `json:"y"`
}

type quadCommandJSON struct {
	Type  CommandKind `json:"type"`
	Begin Point       `json:"begin"`
	End   Point       `json:"end"`
}

func (c PathCommand) MarshalJSON() ([]byte, error) {
	switch c.Kind {
	case MoveTo, LineTo:
		return json.Marshal(pointCommandJSON{Type: c.Kind, X: c.X, Y: c.Y})
	case QuadTo:
		return json.Marshal(quadCommandJSON{Type: c.Kind, Begin: c.Begin, End: c.End})
	default:
		return nil, fmt.Errorf("unknown path command %q", c.Kind)
	}
}

func (c *PathCommand) UnmarshalJSON(data []byte) error {
	var probe struct {
		Type  CommandKind `json:"type"`
		X     Number      `json:"x"`
		Y     Number      `json:"y"`
		Begin Point       `json:"begin"`
		End   Point       `json:"end"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return err
	}
	switch probe.Type {
	case MoveTo, LineTo:
		*c = PathCommand{Kind: probe.Type, X: probe.X, Y: probe.Y}
	case QuadTo:
		*c = PathCommand{Kind: probe.Type, Begin: probe.Begin, End: probe.End}
	default:
		return fmt.Errorf("unknown path command %q", probe.Type)
	}
	return nil
}

func (s Stroke) MarshalJSON() ([]byte, error) {
	type plain Stroke
	out := plain(s)
	if out.Outline == nil {
		out.Outline = []PathCommand{}
	}
	if out.Track == nil {
		out.Track = []Point{}
	}
	return json.Marshal(out)
}
