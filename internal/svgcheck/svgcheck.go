// Package svgcheck rejects drawings the CAD tool cannot import before any
// process is started.
package svgcheck

import (
	"errors"
	"fmt"
	"strings"

	"github.com/beevik/etree"
)

var (
	ErrEmpty   = errors.New("svg is empty")
	ErrNotSVG  = errors.New("document root is not an svg element")
	ErrNoShape = errors.New("svg contains no drawable elements")
)

// drawable lists the elements OpenSCAD's SVG import turns into geometry
var drawable = map[string]bool{
	"path":     true,
	"rect":     true,
	"circle":   true,
	"ellipse":  true,
	"line":     true,
	"polyline": true,
	"polygon":  true,
}

// Info describes the root element of a checked drawing
type Info struct {
	Width    string
	Height   string
	ViewBox  string
	Elements int // drawable elements anywhere in the tree
}

// Validate parses svg and returns its root attributes.
// It fails for empty input, malformed XML, a non-svg root or a drawing without shapes.
func Validate(svg string) (Info, error) {
	if strings.TrimSpace(svg) == "" {
		return Info{}, ErrEmpty
	}

	doc := etree.NewDocument()

	err := doc.ReadFromString(svg)
	if err != nil {
		return Info{}, fmt.Errorf("failed to parse svg: %w", err)
	}

	root := doc.Root()
	if root == nil || !strings.EqualFold(root.Tag, "svg") {
		return Info{}, ErrNotSVG
	}

	info := Info{
		Width:    root.SelectAttrValue("width", ""),
		Height:   root.SelectAttrValue("height", ""),
		ViewBox:  root.SelectAttrValue("viewBox", ""),
		Elements: countDrawable(root),
	}

	if info.Elements == 0 {
		return info, ErrNoShape
	}

	return info, nil
}

func countDrawable(el *etree.Element) int {
	n := 0
	if drawable[strings.ToLower(el.Tag)] {
		n++
	}

	for _, child := range el.ChildElements() {
		n += countDrawable(child)
	}

	return n
}
