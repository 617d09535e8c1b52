package models

import "time"

type Media struct {
	Path string
	Size int64
}

// Metadata is what the sorters need to know about a file: a zero CapturedAt
// or an empty Device means the value could not be extracted.
type Metadata struct {
	CapturedAt time.Time
	Device     string
}

func (m Metadata) HasCaptureTime() bool {
	return !m.CapturedAt.IsZero()
}

func (m Metadata) HasDevice() bool {
	return m.Device != ""
}

// Missing lists the human-readable names of the properties that are absent.
func (m Metadata) Missing() []string {
	var missing []string
	if !m.HasCaptureTime() {
		missing = append(missing, "creation date")
	}
	if !m.HasDevice() {
		missing = append(missing, "camera's model")
	}
	return missing
}

type Action int

const (
	Moved Action = iota
	Quarantined
	Disambiguated
	Skipped
	Untouched
)

func (a Action) String() string {
	switch a {
	case Moved:
		return "moved"
	case Quarantined:
		return "quarantined"
	case Disambiguated:
		return "disambiguated"
	case Skipped:
		return "skipped"
	case Untouched:
		return "untouched"
	default:
		return "unknown"
	}
}

type Outcome struct {
	Action Action
	Source string
	Target string
	Reason string
}
