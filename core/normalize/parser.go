package normalize

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"

	"golang.org/x/net/html/charset"

	"github.com/gaurav-prasanna/strokepipe/core"
)

// ErrMalformedRecord is returned when a raw record cannot be parsed.
var ErrMalformedRecord = errors.New("malformed record")

const (
	tagStroke  = "Stroke"
	tagOutline = "Outline"
	tagTrack   = "Track"
	tagMoveTo  = "MoveTo"
	tagLineTo  = "LineTo"
	tagQuadTo  = "QuadTo"
)

// element is a generic XML node that keeps children in document order.
type element struct {
	XMLName  xml.Name
	Attrs    []xml.Attr `xml:",any,attr"`
	Children []element  `xml:",any"`
}

func (e *element) attr(name string) (string, bool) {
	for _, a := range e.Attrs {
		if a.Name.Local == name {
			return a.Value, true
		}
	}
	return "", false
}

func (e *element) child(name string) *element {
	for i := range e.Children {
		if e.Children[i].XMLName.Local == name {
			return &e.Children[i]
		}
	}
	return nil
}

// Parser turns raw stroke XML into strokes.
type Parser struct{}

// NewParser creates a Parser.
func NewParser() *Parser {
	return &Parser{}
}

// Parse reads raw and returns its strokes in document order. A Stroke root
// is itself the only stroke; any other root contributes its direct Stroke
// children. The payload must be a single well-formed document.
func (p *Parser) Parse(raw []byte) ([]core.Stroke, error) {
	root, err := decodeRoot(raw)
	if err != nil {
		return nil, err
	}

	if root.XMLName.Local == tagStroke {
		s, err := parseStroke(root)
		if err != nil {
			return nil, err
		}
		return []core.Stroke{s}, nil
	}

	strokes := []core.Stroke{}
	for i := range root.Children {
		if root.Children[i].XMLName.Local != tagStroke {
			continue
		}
		s, err := parseStroke(&root.Children[i])
		if err != nil {
			return nil, err
		}
		strokes = append(strokes, s)
	}
	return strokes, nil
}

// decodeRoot decodes the single root element. Outside it only whitespace,
// comments, processing instructions and directives may appear.
func decodeRoot(raw []byte) (*element, error) {
	dec := xml.NewDecoder(bytes.NewReader(raw))
	// Declarations such as encoding="Big5" are transcoded to UTF-8.
	dec.CharsetReader = charset.NewReaderLabel
	var root *element
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformedRecord, err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if root != nil {
				return nil, fmt.Errorf("%w: second root element <%s>", ErrMalformedRecord, t.Name.Local)
			}
			var el element
			if err := dec.DecodeElement(&el, &t); err != nil {
				return nil, fmt.Errorf("%w: %w", ErrMalformedRecord, err)
			}
			root = &el
		case xml.CharData:
			if len(bytes.TrimSpace(t)) > 0 {
				return nil, fmt.Errorf("%w: text outside the root element", ErrMalformedRecord)
			}
		}
	}
	if root == nil {
		return nil, fmt.Errorf("%w: no element found", ErrMalformedRecord)
	}
	return root, nil
}

func parseStroke(el *element) (core.Stroke, error) {
	s := core.Stroke{Outline: []core.PathCommand{}, Track: []core.Point{}}

	if outline := el.child(tagOutline); outline != nil {
		for i := range outline.Children {
			cmd := &outline.Children[i]
			switch cmd.XMLName.Local {
			case tagMoveTo, tagLineTo:
				pt, err := parsePoint(cmd, "x", "y")
				if err != nil {
					return core.Stroke{}, err
				}
				kind := core.MoveTo
				if cmd.XMLName.Local == tagLineTo {
					kind = core.LineTo
				}
				s.Outline = append(s.Outline, core.PathCommand{Kind: kind, X: pt.X, Y: pt.Y})
			case tagQuadTo:
				begin, err := parsePoint(cmd, "x1", "y1")
				if err != nil {
					return core.Stroke{}, err
				}
				end, err := parsePoint(cmd, "x2", "y2")
				if err != nil {
					return core.Stroke{}, err
				}
				s.Outline = append(s.Outline, core.PathCommand{Kind: core.QuadTo, Begin: begin, End: end})
			}
		}
	}

	if track := el.child(tagTrack); track != nil {
		for i := range track.Children {
			if track.Children[i].XMLName.Local != tagMoveTo {
				continue
			}
			pt, err := parsePoint(&track.Children[i], "x", "y")
			if err != nil {
				return core.Stroke{}, err
			}
			s.Track = append(s.Track, pt)
		}
	}
	return s, nil
}

func parsePoint(el *element, xName, yName string) (core.Point, error) {
	x, err := coordinate(el, xName)
	if err != nil {
		return core.Point{}, err
	}
	y, err := coordinate(el, yName)
	if err != nil {
		return core.Point{}, err
	}
	return core.Point{X: x, Y: y}, nil
}

// coordinate reads a numeric attribute; absent attributes are 0.
func coordinate(el *element, name string) (core.Number, error) {
	v, ok := el.attr(name)
	if !ok {
		return core.Int(0), nil
	}
	n, err := core.ParseNumber(v)
	if err != nil {
		return core.Number{}, fmt.Errorf("%w: %s@%s: %w", ErrMalformedRecord, el.XMLName.Local, name, err)
	}
	return n, nil
}
