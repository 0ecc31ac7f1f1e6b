// Package gemini provides a Generator that talks to the Gemini REST API directly.
package gemini

import (
	"context"
	"fmt"
	"strings"

	"github.com/germanamz/minirag/pkg/modeladapter"
	"github.com/germanamz/minirag/pkg/modeladapter/usage"
)

// DefaultBaseURL is the public Generative Language API endpoint.
const DefaultBaseURL = "https://generativelanguage.googleapis.com"

var _ modeladapter.Generator = (*Adapter)(nil)

// Adapter implements modeladapter.Generator for the Gemini REST API.
type Adapter struct {
	modeladapter.ModelAdapter
}

// New creates an Adapter configured for the Gemini API.
// The baseURL should be DefaultBaseURL (no trailing slash) outside of tests.
func New(baseURL, apiKey, model string) *Adapter {
	a := &Adapter{}
	a.BaseURL = strings.TrimRight(baseURL, "/")
	a.Auth = modeladapter.Auth{
		Key:    apiKey,
		Header: "x-goog-api-key",
	}
	a.Name = model
	a.MaxTokens = 8192

	return a
}

// Generate sends the prompt to generateContent and returns the first candidate's text.
func (a *Adapter) Generate(ctx context.Context, req modeladapter.Request) (modeladapter.Response, error) {
	path := fmt.Sprintf("/v1beta/models/%s:generateContent", a.Name)

	var resp apiResponse
	if err := a.PostJSON(ctx, path, a.buildRequest(req), &resp); err != nil {
		return modeladapter.Response{}, fmt.Errorf("gemini: %w", err)
	}

	if r := resp.PromptFeedback.BlockReason; r != "" {
		return modeladapter.Response{}, fmt.Errorf("gemini: prompt blocked: %s", r)
	}

	if len(resp.Candidates) == 0 {
		return modeladapter.Response{}, fmt.Errorf("gemini: empty candidates in response")
	}

	tc := usage.TokenCount{
		InputTokens:  resp.UsageMetadata.PromptTokenCount,
		OutputTokens: resp.UsageMetadata.CandidatesTokenCount,
	}
	a.Usage.Add(tc)

	model := resp.ModelVersion
	if model == "" {
		model = a.Name
	}

	cand := resp.Candidates[0]

	return modeladapter.Response{
		Text:         candidateText(cand),
		FinishReason: cand.FinishReason,
		Model:        model,
		Usage:        tc,
	}, nil
}

// --- request types ---

type apiRequest struct {
	Contents          []apiContent     `json:"contents"`
	SystemInstruction *apiContent      `json:"systemInstruction,omitempty"`
	GenerationConfig  generationConfig `json:"generationConfig"`
}

type apiContent struct {
	Role  string    `json:"role,omitempty"`
	Parts []apiPart `json:"parts"`
}

type apiPart struct {
	Text    string `json:"text,omitempty"`
	Thought bool   `json:"thought,omitempty"`
}

type generationConfig struct {
	Temperature     *float64 `json:"temperature,omitempty"`
	MaxOutputTokens int      `json:"maxOutputTokens,omitempty"`
}

// --- response types ---

type apiResponse struct {
	Candidates     []apiCandidate    `json:"candidates"`
	PromptFeedback apiPromptFeedback `json:"promptFeedback"`
	UsageMetadata  apiUsageMeta      `json:"usageMetadata"`
	ModelVersion   string            `json:"modelVersion"`
}

type apiCandidate struct {
	Content      apiContent `json:"content"`
	FinishReason string     `json:"finishReason"`
}

type apiPromptFeedback struct {
	BlockReason string `json:"blockReason"`
}

type apiUsageMeta struct {
	PromptTokenCount     int `json:"promptTokenCount"`
	CandidatesTokenCount int `json:"candidatesTokenCount"`
	TotalTokenCount      int `json:"totalTokenCount"`
}

func (a *Adapter) buildRequest(req modeladapter.Request) apiRequest {
	out := apiRequest{
		Contents: []apiContent{{
			Role:  "user",
			Parts: []apiPart{{Text: req.Prompt}},
		}},
		GenerationConfig: generationConfig{
			MaxOutputTokens: a.MaxTokens,
		},
	}

	if a.Temperature != nil {
		t := *a.Temperature
		out.GenerationConfig.Temperature = &t
	}

	if req.SystemPrompt != "" {
		out.SystemInstruction = &apiContent{
			Parts: []apiPart{{Text: req.SystemPrompt}},
		}
	}

	return out
}

// candidateText joins the non-thought text parts of a candidate.
func candidateText(c apiCandidate) string {
	var sb strings.Builder
	for _, p := range c.Content.Parts {
		if p.Thought {
			continue
		}
		sb.WriteString(p.Text)
	}
	return sb.String()
}
