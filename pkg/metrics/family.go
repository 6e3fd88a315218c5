package metrics

import "strings"

// Family selects how controller identity is extracted from a time series.
type Family int

const (
	// Controller metrics carry the owning controller in the system label metadata.
	Controller Family = iota
	// HorizontalAutoscaler metrics carry the scale target in their own labels.
	HorizontalAutoscaler
	// VerticalAutoscaler metrics carry the controller in the resource labels.
	VerticalAutoscaler
)

func (f Family) String() string {
	switch f {
	case HorizontalAutoscaler:
		return "hpa"
	case VerticalAutoscaler:
		return "vpa"
	default:
		return "controller"
	}
}

// FamilyOf classifies a metric by its registry name.
func FamilyOf(name string) Family {
	switch {
	case strings.Contains(name, "hpa"):
		return HorizontalAutoscaler
	case strings.Contains(name, "vpa"):
		return VerticalAutoscaler
	default:
		return Controller
	}
}
