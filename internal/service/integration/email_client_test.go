package integration

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/RubachokBoss/thesisflow/internal/models"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmailClient_Send(t *testing.T) {
	var payload map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v3/mail/send", r.URL.Path)
		assert.Equal(t, "Bearer sg-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		w.WriteHeader(http.StatusAccepted)
	}))
	defer server.Close()

	client := NewEmailClient("sg-key", server.URL, "ThesisFlow", "no-reply@example.com", zerolog.Nop())

	err := client.Send(context.Background(), &models.EmailNotificationEvent{
		ID:      "e1",
		ToEmail: "ada@example.com",
		ToName:  "Ada",
		Subject: "Due date set",
		Text:    "hello",
	})
	require.NoError(t, err)

	personalizations := payload["personalizations"].([]interface{})
	first := personalizations[0].(map[string]interface{})
	assert.Equal(t, "[ThesisFlow] Due date set", first["subject"])
}

func TestEmailClient_RejectedIsPermanent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	client := NewEmailClient("k", server.URL, "ThesisFlow", "no-reply@example.com", zerolog.Nop())

	err := client.Send(context.Background(), &models.EmailNotificationEvent{ToEmail: "x@example.com", Text: "t"})
	assert.ErrorIs(t, err, ErrPermanentDelivery)
}

func TestEmailClient_ServerErrorIsTransient(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewEmailClient("k", server.URL, "ThesisFlow", "no-reply@example.com", zerolog.Nop())

	err := client.Send(context.Background(), &models.EmailNotificationEvent{ToEmail: "x@example.com", Text: "t"})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrPermanentDelivery)
}
