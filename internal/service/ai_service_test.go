package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/RubachokBoss/thesisflow/internal/models"
	"github.com/RubachokBoss/thesisflow/pkg/hash"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAIClient struct {
	calls int
	err   error
}

func (c *stubAIClient) Summarize(ctx context.Context, text string) (*models.SummaryResponse, error) {
	c.calls++
	if c.err != nil {
		return nil, c.err
	}
	return &models.SummaryResponse{Summary: "- " + text, Progress: "model says done"}, nil
}

func (c *stubAIClient) CheckPlagiarism(ctx context.Context, text string) (*models.PlagiarismResponse, error) {
	c.calls++
	if c.err != nil {
		return nil, c.err
	}
	return &models.PlagiarismResponse{IsPlagiarized: false, Explanation: "original"}, nil
}

type mapCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func (c *mapCache) Get(ctx context.Context, key string, out interface{}) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	raw, ok := c.data[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, out)
}

func (c *mapCache) Set(ctx context.Context, key string, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = raw
	return nil
}

func (c *mapCache) AcquireOnce(ctx context.Context, key string) bool { return true }
func (c *mapCache) Release(ctx context.Context, key string)          {}
func (c *mapCache) Close() error                                    { return nil }

func newAIService(t *testing.T, client *stubAIClient, withCache bool) AIService {
	t.Helper()
	hasher, err := hash.NewHasher(hash.SHA256)
	require.NoError(t, err)

	svc := &aiService{client: client, hasher: hasher, logger: zerolog.Nop()}
	if withCache {
		svc.cache = &mapCache{data: map[string][]byte{}}
	}
	return svc
}

var caller = Principal{UserID: "u1", Role: models.RoleStudent}

func TestAI_SummarizeSetsProgressAndCaches(t *testing.T) {
	ctx := context.Background()
	client := &stubAIClient{}
	svc := newAIService(t, client, true)

	out, err := svc.Summarize(ctx, caller, &models.TextRequest{Text: "chapter"})
	require.NoError(t, err)
	assert.Equal(t, "- chapter", out.Summary)
	assert.Equal(t, SummaryProgress, out.Progress)

	again, err := svc.Summarize(ctx, caller, &models.TextRequest{Text: "chapter"})
	require.NoError(t, err)
	assert.Equal(t, out, again)
	assert.Equal(t, 1, client.calls)
}

func TestAI_Plagiarism(t *testing.T) {
	svc := newAIService(t, &stubAIClient{}, false)

	out, err := svc.CheckPlagiarism(context.Background(), caller, &models.TextRequest{Text: "text"})
	require.NoError(t, err)
	assert.False(t, out.IsPlagiarized)
	assert.Equal(t, "original", out.Explanation)
}

func TestAI_Errors(t *testing.T) {
	ctx := context.Background()
	svc := newAIService(t, &stubAIClient{err: errors.New("quota exceeded")}, false)

	_, err := svc.Summarize(ctx, caller, &models.TextRequest{Text: " "})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Summarize(ctx, Principal{}, &models.TextRequest{Text: "x"})
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = svc.CheckPlagiarism(ctx, caller, &models.TextRequest{Text: "x"})
	assert.ErrorIs(t, err, ErrUpstreamFailure)
}
