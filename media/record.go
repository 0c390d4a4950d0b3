package media

// MediaRecord is the normalized result of reading one media file.
// Absent fields are nil. Timestamps and coordinates are the raw tag text.
type MediaRecord struct {
	TakenAt    *string     `json:"takenAt,omitempty"`
	Location   *Location   `json:"location,omitempty"`
	Duration   *float64    `json:"duration,omitempty"`
	Resolution *Resolution `json:"resolution,omitempty"`
}

type Location struct {
	Latitude  *string `json:"latitude,omitempty"`
	Longitude *string `json:"longitude,omitempty"`
}

// Complete reports whether both coordinates are known.
func (l *Location) Complete() bool {
	return l != nil && l.Latitude != nil && l.Longitude != nil
}

type Resolution struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// StreamInfo is what a stream inspection reports about playable media.
type StreamInfo struct {
	Duration float64
	Width    int
	Height   int
}

// Presented is the record as shown to callers: a location missing either
// coordinate is dropped, the same rule Render applies.
func (r MediaRecord) Presented() MediaRecord {
	if !r.Location.Complete() {
		r.Location = nil
	}
	return r
}
