package chi

import (
	"github.com/kailas-cloud/boostube/internal/domain/keyword"
	"github.com/kailas-cloud/boostube/internal/domain/state"
	"github.com/kailas-cloud/boostube/internal/domain/tool"
)

// Error response codes.
const (
	codeBadRequest       = "bad_request"
	codeUnauthorized     = "unauthorized"
	codeValidationFailed = "validation_failed"
	codeToolNotFound     = "tool_not_found"
	codePipelineClosed   = "pipeline_closed"
	codeInternalError    = "internal_error"
)

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type submitRequest struct {
	Input string `json:"input" validate:"max=2000"`
}

type hitRequest struct {
	X *float64 `json:"x" validate:"required"`
	Y *float64 `json:"y" validate:"required"`
}

type viewportRequest struct {
	Width  float64 `json:"width" validate:"gte=0,lte=16384"`
	Height float64 `json:"height" validate:"gte=0,lte=16384"`
}

type toolResponse struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Placeholder string `json:"placeholder"`
	Kind        string `json:"kind"`
	Particles   int    `json:"particles"`
	FrameMillis int64  `json:"frame_ms"`
}

type toolListResponse struct {
	Items []toolResponse `json:"items"`
}

type keywordResponse struct {
	Keyword         string  `json:"keyword"`
	PopularityScore int     `json:"popularity_score"`
	SearchVolume    string  `json:"search_volume"`
	ScoreFraction   float64 `json:"score_fraction"`
	VolumePosition  int     `json:"volume_position"`
}

type stateResponse struct {
	Tool       string           `json:"tool"`
	Kind       string           `json:"kind"`
	Generation uint64           `json:"generation"`
	Loading    bool             `json:"loading"`
	Items      []string         `json:"items,omitempty"`
	Keyword    *keywordResponse `json:"keyword,omitempty"`
	Message    string           `json:"message,omitempty"`
	Ignored    bool             `json:"ignored,omitempty"`
	Stale      bool             `json:"stale,omitempty"`
}

type hitResponse struct {
	Removed   int `json:"removed"`
	Remaining int `json:"remaining"`
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

func toolToResponse(t tool.Tool) toolResponse {
	return toolResponse{
		ID:          string(t.ID),
		Title:       t.Title,
		Description: t.Description,
		Placeholder: t.Placeholder,
		Kind:        string(t.Kind),
		Particles:   t.Preset.Count,
		FrameMillis: t.Preset.FrameInterval.Milliseconds(),
	}
}

func stateToResponse(id tool.ID, s state.State) stateResponse {
	resp := stateResponse{
		Tool:       string(id),
		Kind:       string(s.Kind()),
		Generation: s.Generation(),
		Loading:    s.Loading(),
		Items:      s.Items(),
		Message:    s.Message(),
	}
	if m, ok := s.Keyword(); ok {
		resp.Keyword = keywordToResponse(m)
	}
	return resp
}

func keywordToResponse(m keyword.Metric) *keywordResponse {
	return &keywordResponse{
		Keyword:         m.Keyword,
		PopularityScore: m.PopularityScore,
		SearchVolume:    string(m.SearchVolume),
		ScoreFraction:   m.ScoreFraction(),
		VolumePosition:  m.SearchVolume.Position(),
	}
}
