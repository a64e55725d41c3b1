package ocr

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sourabsb/tbi-hackathon/internal/common"
)

func testConfig(endpoint string) common.OCRConfig {
	return common.OCRConfig{
		Endpoint:        endpoint,
		APIKey:          "test-key",
		PollInterval:    time.Millisecond,
		PollMaxAttempts: 5,
		Timeout:         time.Second,
	}
}

func TestNewClientRejectsPlaceholderEndpoint(t *testing.T) {
	cfg := testConfig("https://" + common.EndpointPlaceholder + ".cognitiveservices.azure.com/")
	_, err := NewClient(cfg, nil)
	require.Error(t, err)
	assert.Equal(t, common.FailureEndpointConfig, common.ClassifyFailure(err))
}

func TestRecognizeTextPollsUntilSucceeded(t *testing.T) {
	var polls atomic.Int32
	mux := http.NewServeMux()
	var srv *httptest.Server
	mux.HandleFunc("POST /vision/v3.2/read/analyze", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.Header.Get("Ocp-Apim-Subscription-Key"))
		w.Header().Set("Operation-Location", srv.URL+"/vision/v3.2/read/analyzeResults/op-1")
		w.WriteHeader(http.StatusAccepted)
	})
	mux.HandleFunc("GET /vision/v3.2/read/analyzeResults/op-1", func(w http.ResponseWriter, r *http.Request) {
		if polls.Add(1) < 3 {
			fmt.Fprint(w, `{"status": "running"}`)
			return
		}
		fmt.Fprint(w, `{"status": "succeeded", "analyzeResult": {"readResults": [
			{"lines": [{"text": "STATEMENT OF FACTS"}, {"text": "Loading commenced 08:00"}]},
			{"lines": [{"text": "Loading completed 12:30"}]}
		]}}`)
	})
	srv = httptest.NewServer(mux)
	defer srv.Close()

	c, err := NewClient(testConfig(srv.URL), nil)
	require.NoError(t, err)

	text, err := c.RecognizeText(context.Background(), []byte("fake-image"), "sof.png")
	require.NoError(t, err)
	assert.Equal(t, "STATEMENT OF FACTS\nLoading commenced 08:00\nLoading completed 12:30\n", text)
	assert.EqualValues(t, 3, polls.Load())
}

func TestRecognizeTextFailedStatusYieldsEmptyText(t *testing.T) {
	mux := http.NewServeMux()
	var srv *httptest.Server
	mux.HandleFunc("POST /vision/v3.2/read/analyze", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Operation-Location", srv.URL+"/vision/v3.2/read/analyzeResults/op-1")
		w.WriteHeader(http.StatusAccepted)
	})
	mux.HandleFunc("GET /vision/v3.2/read/analyzeResults/op-1", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"status": "failed"}`)
	})
	srv = httptest.NewServer(mux)
	defer srv.Close()

	c, err := NewClient(testConfig(srv.URL), nil)
	require.NoError(t, err)

	text, err := c.RecognizeText(context.Background(), []byte("fake-image"), "sof.png")
	require.NoError(t, err, "unsuccessful recognition is not an error")
	assert.Empty(t, text)
}

func TestRecognizeTextPollCap(t *testing.T) {
	mux := http.NewServeMux()
	var srv *httptest.Server
	mux.HandleFunc("POST /vision/v3.2/read/analyze", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Operation-Location", srv.URL+"/vision/v3.2/read/analyzeResults/op-1")
		w.WriteHeader(http.StatusAccepted)
	})
	mux.HandleFunc("GET /vision/v3.2/read/analyzeResults/op-1", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"status": "running"}`)
	})
	srv = httptest.NewServer(mux)
	defer srv.Close()

	c, err := NewClient(testConfig(srv.URL), nil)
	require.NoError(t, err)

	_, err = c.RecognizeText(context.Background(), []byte("fake-image"), "sof.png")
	assert.True(t, errors.Is(err, ErrPollTimeout))
}

func TestRecognizeTextAuthFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c, err := NewClient(testConfig(srv.URL), nil)
	require.NoError(t, err)

	_, err = c.RecognizeText(context.Background(), []byte("fake-image"), "sof.png")
	require.Error(t, err)
	assert.Equal(t, common.FailureAuth, common.ClassifyFailure(err))
}
