package emails

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"setu-backend/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendReviewOutcome(t *testing.T) {
	var got BrevoSendRequest
	var apiKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		apiKey = r.Header.Get("api-key")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	c := &BrevoClient{APIKey: "k", Endpoint: srv.URL}
	err := c.SendReviewOutcome(context.Background(), "asha@example.in", "Asha", ReviewNotice{
		ProjectTitle:   "Hand pump <ward 3>",
		CheckpointName: "Foundation",
		Status:         domain.SubmissionRequiresRevision,
		ReviewNotes:    "Photo is blurred",
	})
	require.NoError(t, err)
	assert.Equal(t, "k", apiKey)
	assert.Equal(t, "Revision requested: Foundation", got.Subject)
	require.Len(t, got.To, 1)
	assert.Equal(t, "asha@example.in", got.To[0].Email)
	assert.Contains(t, got.HTMLContent, "Hand pump &lt;ward 3&gt;")
	assert.Contains(t, got.HTMLContent, "Photo is blurred")
	assert.Contains(t, got.HTMLContent, "submit fresh evidence")
}

func TestSend_NoAPIKeyIsNoop(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	c := &BrevoClient{Endpoint: srv.URL}
	require.NoError(t, c.SendWelcome(context.Background(), "a@b.in", "A", "viewer"))
	assert.False(t, called)
}

func TestSend_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := &BrevoClient{APIKey: "bad", Endpoint: srv.URL}
	err := c.SendWelcome(context.Background(), "a@b.in", "A", "employee")
	assert.EqualError(t, err, "brevo send failed: status 401")
}
