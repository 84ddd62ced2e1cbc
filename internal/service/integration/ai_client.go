package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/RubachokBoss/thesisflow/internal/models"
	"github.com/rs/zerolog"
)

// ErrModelResponse is returned when the model answers with something that
// cannot be used.
var ErrModelResponse = errors.New("unusable model response")

type AIClient interface {
	Summarize(ctx context.Context, text string) (*models.SummaryResponse, error)
	CheckPlagiarism(ctx context.Context, text string) (*models.PlagiarismResponse, error)
}

type geminiClient struct {
	baseURL    string
	apiKey     string
	model      string
	retryCount int
	retryDelay time.Duration
	client     *http.Client
	logger     zerolog.Logger
}

func NewAIClient(baseURL, apiKey, model string, timeout time.Duration, retryCount int, retryDelay time.Duration, logger zerolog.Logger) AIClient {
	return &geminiClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		model:      model,
		retryCount: retryCount,
		retryDelay: retryDelay,
		client: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

const summarizePrompt = `You are an AI assistant tasked with summarizing student dissertation submissions for supervisors. Provide a concise summary of the following submission content as a list of bullet points.

Submission Content:
%s

Focus on the main points, key arguments, and research findings. The summary should be a list of bullet points, enabling the supervisor to quickly grasp the essence of the submission.

Respond with a JSON object {"summary": string, "progress": string} where summary holds the bullet points and progress is a brief message explaining that the summarization is complete.`

const plagiarismPrompt = `You are an expert in plagiarism detection.

You will be given a text, and you will determine whether it is likely plagiarized or not.

If the text is plagiarized, provide a detailed explanation of why you think so.

Respond with a JSON object {"isPlagiarized": boolean, "explanation": string, "score": number} where score is your confidence between 0 and 1 that the text is plagiarized.

Text: %s`

func (c *geminiClient) Summarize(ctx context.Context, text string) (*models.SummaryResponse, error) {
	var out models.SummaryResponse
	if err := c.generate(ctx, fmt.Sprintf(summarizePrompt, text), &out); err != nil {
		return nil, err
	}
	if strings.TrimSpace(out.Summary) == "" {
		return nil, fmt.Errorf("%w: empty summary", ErrModelResponse)
	}
	return &out, nil
}

func (c *geminiClient) CheckPlagiarism(ctx context.Context, text string) (*models.PlagiarismResponse, error) {
	var out models.PlagiarismResponse
	if err := c.generate(ctx, fmt.Sprintf(plagiarismPrompt, text), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

type generateRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generationConfig struct {
	ResponseMimeType string `json:"responseMimeType"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

// generate asks the model for a JSON answer and decodes it into out.
func (c *geminiClient) generate(ctx context.Context, prompt string, out interface{}) error {
	body, err := json.Marshal(generateRequest{
		Contents:         []content{{Role: "user", Parts: []part{{Text: prompt}}}},
		GenerationConfig: generationConfig{ResponseMimeType: "application/json"},
	})
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", c.baseURL, c.model)

	var lastErr error
	for i := 0; i <= c.retryCount; i++ {
		if i > 0 {
			c.logger.Warn().Int("attempt", i).Err(lastErr).Msg("Retrying model request")
			select {
			case <-ctx.Done():
				return fmt.Errorf("model request canceled: %w", ctx.Err())
			case <-time.After(c.retryDelay * time.Duration(i)):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("x-goog-api-key", c.apiKey)

		resp, err := c.client.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("failed to call model: %w", err)
			if ctx.Err() != nil {
				return lastErr
			}
			continue
		}

		respBody, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("failed to read response: %w", err)
			continue
		}

		if resp.StatusCode != http.StatusOK {
			lastErr = fmt.Errorf("model returned status %d: %s", resp.StatusCode, string(respBody))
			if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
				continue
			}
			return lastErr
		}

		return decodeCandidate(respBody, out)
	}

	return fmt.Errorf("model request failed after %d attempts: %w", c.retryCount+1, lastErr)
}

func decodeCandidate(body []byte, out interface{}) error {
	var resp generateResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return fmt.Errorf("%w: %v", ErrModelResponse, err)
	}
	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return fmt.Errorf("%w: no candidates", ErrModelResponse)
	}

	var text strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		text.WriteString(p.Text)
	}

	raw := strings.TrimSpace(text.String())
	raw = strings.TrimPrefix(raw, "```json")
	raw = strings.TrimPrefix(raw, "```")
	raw = strings.TrimSuffix(raw, "```")

	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), out); err != nil {
		return fmt.Errorf("%w: %v", ErrModelResponse, err)
	}
	return nil
}
