// Package treeview drives the family-tree display. In the browser that is
// the family-chart library; elsewhere it is a focal-person card.
package treeview

import "time"

// Options configures the chart.
type Options struct {
	TransitionTime time.Duration // default 1s
	CardXSpacing   float64       // default 250
	CardYSpacing   float64       // default 150
	CardHeight     float64       // default 70
	// CardDisplay lists the data fields shown on a card, one slice per line.
	CardDisplay [][]string // default [["fn", "ln"]]

	// OnCardClick is called with the id of a clicked card (optional).
	OnCardClick func(id string)
}

// DefaultOptions returns the chart settings used when nothing is set.
func DefaultOptions() Options {
	return Options{
		TransitionTime: time.Second,
		CardXSpacing:   250,
		CardYSpacing:   150,
		CardHeight:     70,
		CardDisplay:    [][]string{{"fn", "ln"}},
	}
}

func (o *Options) withDefaults() Options {
	d := DefaultOptions()
	if o == nil {
		return d
	}
	if o.TransitionTime > 0 {
		d.TransitionTime = o.TransitionTime
	}
	if o.CardXSpacing != 0 {
		d.CardXSpacing = o.CardXSpacing
	}
	if o.CardYSpacing != 0 {
		d.CardYSpacing = o.CardYSpacing
	}
	if o.CardHeight != 0 {
		d.CardHeight = o.CardHeight
	}
	if len(o.CardDisplay) > 0 {
		d.CardDisplay = o.CardDisplay
	}
	d.OnCardClick = o.OnCardClick
	return d
}

// UpdateOptions controls one redraw.
type UpdateOptions struct {
	// Initial is handed to family-chart's updateTree. Selections from the
	// search widget set it from their animate flag.
	Initial bool
}
