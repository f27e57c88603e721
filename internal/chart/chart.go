// Package chart renders the life-timeline image: a horizontal bar of lived
// days against a fixed 90-year horizon.
package chart

import (
	"bytes"
	"fmt"
	"time"

	"github.com/fogleman/gg"
	"golang.org/x/image/font/basicfont"
)

// LifeExpectancyYears is the fixed horizon of the life timeline.
const LifeExpectancyYears = 90

const (
	width   = 800
	height  = 200
	marginX = 40.0
	barY    = 90.0
	barH    = 50.0
)

// Renderer produces a PNG life-timeline for a birth date as of now.
type Renderer struct{}

// NewRenderer creates a renderer.
func NewRenderer() *Renderer {
	return &Renderer{}
}

// Render draws the lived/remaining bar and returns encoded PNG bytes.
func (r *Renderer) Render(birthDate, now time.Time) ([]byte, error) {
	horizonDays := float64(LifeExpectancyYears) * 365.25
	livedDays := now.Sub(birthDate).Hours() / 24
	if livedDays < 0 {
		livedDays = 0
	}
	if livedDays > horizonDays {
		livedDays = horizonDays
	}

	dc := gg.NewContext(width, height)
	dc.SetRGB(1, 1, 1)
	dc.Clear()

	barW := float64(width) - 2*marginX
	livedW := barW * livedDays / horizonDays

	// Remaining span first, lived span drawn on top of its left edge.
	dc.SetRGB255(211, 211, 211)
	dc.DrawRectangle(marginX, barY, barW, barH)
	dc.Fill()

	dc.SetRGB255(46, 139, 87)
	dc.DrawRectangle(marginX, barY, livedW, barH)
	dc.Fill()

	dc.SetRGB(0, 0, 0)
	dc.SetFontFace(basicfont.Face7x13)

	title := fmt.Sprintf("Life timeline: %d of %d years", yearsLived(birthDate, now), LifeExpectancyYears)
	dc.DrawStringAnchored(title, float64(width)/2, 50, 0.5, 0.5)

	dc.DrawStringAnchored("0", marginX, barY+barH+20, 0.5, 0.5)
	dc.DrawStringAnchored(fmt.Sprintf("%d", LifeExpectancyYears), marginX+barW, barY+barH+20, 0.5, 0.5)

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("encode chart: %w", err)
	}
	return buf.Bytes(), nil
}

func yearsLived(birthDate, now time.Time) int {
	years := now.Year() - birthDate.Year()
	anniversary := birthDate.AddDate(years, 0, 0)
	if anniversary.After(now) {
		years--
	}
	if years < 0 {
		years = 0
	}
	return years
}
