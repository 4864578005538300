package feedbacksvc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/nexuslms/nexus/core"
)

const (
	geminiHost        = "https://generativelanguage.googleapis.com"
	geminiEndpointFmt = "/v1beta/models/%s:generateContent"

	promptFmt = `You are an expert instructor.
Assignment: %s
Description: %s
Student Submission: %s

Please provide constructive feedback for this student.
Focus on strengths and areas for improvement.
Keep it concise (under 100 words).`

	emptySuggestion = "Could not generate feedback."
	errSuggestion   = "Error communicating with AI service. Please try again manually."
)

type geminiService struct {
	host   string
	key    string
	model  string
	client *http.Client
	logger core.Logger
}

var _ core.FeedbackService = (*geminiService)(nil)

// NewGeminiService builds a feedback service backed by the Gemini REST
// API. When no API key is configured, the static placeholder service is
// returned instead.
func NewGeminiService(conf *core.Config, logger core.Logger) core.FeedbackService {
	if conf.Gemini.APIKey == "" {
		return NewStaticService()
	}
	return &geminiService{
		host:   geminiHost,
		key:    conf.Gemini.APIKey,
		model:  conf.Gemini.Model,
		client: &http.Client{Timeout: 30 * time.Second},
		logger: logger,
	}
}

type (
	geminiPart struct {
		Text string `json:"text"`
	}
	geminiContent struct {
		Parts []geminiPart `json:"parts"`
	}
	geminiRequest struct {
		Contents []geminiContent `json:"contents"`
	}
	geminiCandidate struct {
		Content geminiContent `json:"content"`
	}
	geminiResponse struct {
		Candidates []geminiCandidate `json:"candidates"`
	}
)

func (svc *geminiService) GenerateFeedback(ctx context.Context, assignmentTitle, assignmentDescription, submissionContent string) string {
	prompt := fmt.Sprintf(promptFmt, assignmentTitle, assignmentDescription, submissionContent)

	body, err := json.Marshal(geminiRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: prompt}}}},
	})
	if err != nil {
		svc.logger.Error(fmt.Sprintf("encoding feedback request: %v", err), err)
		return errSuggestion
	}

	url := svc.host + fmt.Sprintf(geminiEndpointFmt, svc.model) + "?key=" + svc.key
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		svc.logger.Error(fmt.Sprintf("building feedback request: %v", err), err)
		return errSuggestion
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := svc.client.Do(req)
	if err != nil {
		svc.logger.Error(fmt.Sprintf("calling feedback service: %v", err), err)
		return errSuggestion
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode >= http.StatusBadRequest {
		svc.logger.Error(fmt.Sprintf("feedback service - status: %d", res.StatusCode))
		return errSuggestion
	}

	var parsed geminiResponse
	if err = json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		svc.logger.Error(fmt.Sprintf("decoding feedback response: %v", err), err)
		return errSuggestion
	}
	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return emptySuggestion
	}
	if text := parsed.Candidates[0].Content.Parts[0].Text; text != "" {
		return text
	}
	return emptySuggestion
}
