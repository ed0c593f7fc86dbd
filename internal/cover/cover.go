// Aria - Playlist Generation Engine for Plex Media Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aria

// Package cover renders generated playlist posters: a 1000×1000 black PNG
// with the title wrapped and right-anchored in the top-right corner and the
// generation date in the bottom-left.
package cover

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"strings"
	"sync"
	"time"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

const (
	size       = 1000
	margin     = 48
	titleSize  = 72
	dateSize   = 40
	wrapWidth  = 15 // characters per title line
	lineHeight = 88
)

var (
	fontOnce   sync.Once
	boldFont   *opentype.Font
	fontErr    error
	facesMu    sync.Mutex
	facesBySiz = map[float64]font.Face{}
)

func face(pts float64) (font.Face, error) {
	fontOnce.Do(func() {
		boldFont, fontErr = opentype.Parse(gobold.TTF)
	})
	if fontErr != nil {
		return nil, fmt.Errorf("parse font: %w", fontErr)
	}
	facesMu.Lock()
	defer facesMu.Unlock()
	if f, ok := facesBySiz[pts]; ok {
		return f, nil
	}
	f, err := opentype.NewFace(boldFont, &opentype.FaceOptions{
		Size:    pts,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("create face: %w", err)
	}
	facesBySiz[pts] = f
	return f, nil
}

// Render produces the poster PNG for a playlist title generated at now.
func Render(title string, now time.Time) ([]byte, error) {
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.Black), image.Point{}, draw.Src)

	titleFace, err := face(titleSize)
	if err != nil {
		return nil, err
	}
	dateFace, err := face(dateSize)
	if err != nil {
		return nil, err
	}

	white := image.NewUniform(color.White)

	// Title: wrapped lines anchored to the right edge, stacked from the top.
	y := margin + titleSize
	for _, line := range wrap(title, wrapWidth) {
		d := &font.Drawer{Dst: img, Src: white, Face: titleFace}
		adv := d.MeasureString(line)
		d.Dot = fixed.Point26_6{
			X: fixed.I(size-margin) - adv,
			Y: fixed.I(y),
		}
		d.DrawString(line)
		y += lineHeight
	}

	// Date: bottom-left.
	d := &font.Drawer{
		Dst:  img,
		Src:  white,
		Face: dateFace,
		Dot:  fixed.Point26_6{X: fixed.I(margin), Y: fixed.I(size - margin)},
	}
	d.DrawString(now.Format("01/02/2006"))

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode poster: %w", err)
	}
	return buf.Bytes(), nil
}

// wrap word-wraps s into lines of at most width characters, hard-breaking
// words longer than a full line.
func wrap(s string, width int) []string {
	var lines []string
	var line string
	for _, word := range strings.Fields(s) {
		for len(word) > width {
			if line != "" {
				lines = append(lines, line)
				line = ""
			}
			lines = append(lines, word[:width])
			word = word[width:]
		}
		switch {
		case line == "":
			line = word
		case len(line)+1+len(word) <= width:
			line += " " + word
		default:
			lines = append(lines, line)
			line = word
		}
	}
	if line != "" {
		lines = append(lines, line)
	}
	if len(lines) == 0 {
		lines = []string{""}
	}
	return lines
}
