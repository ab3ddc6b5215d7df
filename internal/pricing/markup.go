package pricing

import "strconv"

// InvalidDisplay is the sentinel shown in place of a markup when the margin
// collapses the conversion (margin >= 100%). It is a display value, not an
// error.
const InvalidDisplay = "INVALID"

// MarkupFromMargin converts a margin percentage (0-100) to the equivalent
// price multiplier using the same algebra as the divisor method:
// markup = 1 / (1 - margin/100). Margins at or above 100 have no finite
// multiplier and report ok = false.
func MarkupFromMargin(margin float64) (float64, bool) {
	if margin >= 100 {
		return 0, false
	}
	if margin < 0 {
		margin = 0
	}
	return 1 / (1 - margin/100), true
}

// MarginFromMarkup is the inverse conversion. Multipliers below 1 would mean
// selling under cost, so they collapse to a margin of 0.
func MarginFromMarkup(markup float64) float64 {
	if markup < 1 {
		return 0
	}
	return (1 - 1/markup) * 100
}

// Converter keeps the two UI representations of the profit target in sync.
// Whichever field is being edited is the source of truth for the other; the
// stored margin only moves on a valid edit, so an invalid entry leaves the
// last good value in place.
type Converter struct {
	margin  float64
	invalid bool
}

// NewConverter starts from a stored margin, clamped into [0, 100).
func NewConverter(margin float64) *Converter {
	c := &Converter{}
	c.SetMargin(margin)
	return c
}

// SetMargin records a margin edit. Values >= 100 are rejected: the stored
// margin keeps its last valid value and the markup display turns INVALID.
func (c *Converter) SetMargin(v float64) {
	if v >= 100 {
		c.invalid = true
		return
	}
	if v < 0 {
		v = 0
	}
	c.margin = v
	c.invalid = false
}

// SetMarkup records a markup edit. Multipliers below 1 force the margin to 0.
func (c *Converter) SetMarkup(v float64) {
	c.margin = MarginFromMarkup(v)
	c.invalid = false
}

// Margin returns the stored margin percentage, always in [0, 100).
func (c *Converter) Margin() float64 {
	return c.margin
}

// Markup returns the multiplier for the stored margin; ok is false while the
// last margin edit was invalid.
func (c *Converter) Markup() (float64, bool) {
	if c.invalid {
		return 0, false
	}
	return MarkupFromMargin(c.margin)
}

// MarkupDisplay formats the multiplier for the UI, or the INVALID sentinel.
func (c *Converter) MarkupDisplay() string {
	markup, ok := c.Markup()
	if !ok {
		return InvalidDisplay
	}
	return strconv.FormatFloat(Round2(markup), 'f', 2, 64)
}
