package openai

import (
	"context"
	"net/http"
	"slices"
)

// Moderation category names.
const (
	CategoryHate                  = "hate"
	CategoryHateThreatening       = "hate/threatening"
	CategoryHarassment            = "harassment"
	CategoryHarassmentThreatening = "harassment/threatening"
	CategorySelfHarm              = "self-harm"
	CategorySelfHarmIntent        = "self-harm/intent"
	CategorySelfHarmInstructions  = "self-harm/instructions"
	CategorySexual                = "sexual"
	CategorySexualMinors          = "sexual/minors"
	CategoryViolence              = "violence"
	CategoryViolenceGraphic       = "violence/graphic"
	CategoryIllicit               = "illicit"
	CategoryIllicitViolent        = "illicit/violent"
)

// ModerationRequest classifies one or more texts.
type ModerationRequest struct {
	Input []string
	Model string
}

// NewModerationRequest returns a request for the given texts.
func NewModerationRequest(input ...string) *ModerationRequest {
	return &ModerationRequest{Input: input}
}

// WithModel sets the moderation model.
func (r *ModerationRequest) WithModel(model string) *ModerationRequest {
	r.Model = model
	return r
}

type moderationRequestWire struct {
	Input any    `json:"input"`
	Model string `json:"model,omitzero"`
}

func (r *ModerationRequest) lower() (*moderationRequestWire, error) {
	if len(r.Input) == 0 || slices.Contains(r.Input, "") {
		return nil, configErrorf("moderation input is empty")
	}
	w := &moderationRequestWire{Model: r.Model}
	if len(r.Input) == 1 {
		w.Input = r.Input[0]
	} else {
		w.Input = r.Input
	}
	return w, nil
}

// ModerationResult is the verdict for one input.
type ModerationResult struct {
	Flagged        bool               `json:"flagged"`
	Categories     map[string]bool    `json:"categories"`
	CategoryScores map[string]float64 `json:"category_scores"`
}

// FlaggedCategories returns the flagged category names, sorted.
func (r *ModerationResult) FlaggedCategories() []string {
	var out []string
	for name, flagged := range r.Categories {
		if flagged {
			out = append(out, name)
		}
	}
	slices.Sort(out)
	return out
}

// ModerationResponse lists one result per input, in input order.
type ModerationResponse struct {
	ID      string              `json:"id"`
	Model   string              `json:"model"`
	Results []*ModerationResult `json:"results"`
}

// Flagged reports whether any input was flagged.
func (r *ModerationResponse) Flagged() bool {
	for _, res := range r.Results {
		if res.Flagged {
			return true
		}
	}
	return false
}

// ModerationsService classifies content.
type ModerationsService struct {
	client *Client
}

func newModerationsService(client *Client) *ModerationsService {
	return &ModerationsService{client: client}
}

// Create classifies the request inputs.
func (s *ModerationsService) Create(ctx context.Context, req *ModerationRequest) (*ModerationResponse, error) {
	body, err := req.lower()
	if err != nil {
		return nil, err
	}
	var resp ModerationResponse
	err = s.client.http.doJSON(ctx, &request{
		op:     "moderations.create",
		method: http.MethodPost,
		path:   "moderations",
		body:   body,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}
