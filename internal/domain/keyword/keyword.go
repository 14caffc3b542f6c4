// Package keyword holds the structured keyword metrics record shown by the keywords tool.
package keyword

import "strings"

// MaxPopularityScore is the score that fills the popularity ring.
const MaxPopularityScore = 55

// Volume is the coarse search volume bucket reported by the metrics service.
type Volume string

// Known volume buckets.
const (
	VolumeLow      Volume = "low"
	VolumeMedium   Volume = "medium"
	VolumeHigh     Volume = "high"
	VolumeVeryHigh Volume = "very high"
)

var volumePositions = map[Volume]int{
	VolumeLow:      20,
	VolumeMedium:   50,
	VolumeHigh:     75,
	VolumeVeryHigh: 95,
}

// Position maps the bucket case-insensitively to an indicator position in percent.
// Unknown buckets sit at 0.
func (v Volume) Position() int {
	return volumePositions[Volume(strings.ToLower(strings.TrimSpace(string(v))))]
}

// Known reports whether the bucket is one of the four recognised values.
func (v Volume) Known() bool {
	_, ok := volumePositions[Volume(strings.ToLower(strings.TrimSpace(string(v))))]
	return ok
}

// Metric is the keyword record returned by the metrics service.
type Metric struct {
	Keyword         string `json:"keyword"`
	PopularityScore int    `json:"popularity_score"`
	SearchVolume    Volume `json:"search_volume"`
}

// ScoreFraction returns the popularity score relative to MaxPopularityScore, clamped to [0, 1].
func (m Metric) ScoreFraction() float64 {
	return min(max(float64(m.PopularityScore)/MaxPopularityScore, 0), 1)
}
