package syndication

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/fishmad/grokstatev3-sub001/internal/auth"
	"github.com/fishmad/grokstatev3-sub001/internal/config"
	"github.com/fishmad/grokstatev3-sub001/internal/reaxml"
)

// MockTokenProvider
type MockTokenProvider struct {
	mock.Mock
}

func (m *MockTokenProvider) GetAccessToken(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func testDocument() *reaxml.Document {
	return &reaxml.Document{
		UniqueID: "42",
		Status:   "current",
		Headline: "Sunny family home",
	}
}

func testClientConfig(exportURL string) *config.Config {
	return &config.Config{
		ReaExportURL:   exportURL,
		ReaHTTPTimeout: 5 * time.Second,
	}
}

func TestSend_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok-1", r.Header.Get("Authorization"))
		assert.Equal(t, "application/xml", r.Header.Get("Content-Type"))
		body, _ := io.ReadAll(r.Body)
		assert.Contains(t, string(body), "<listing>")
		assert.Contains(t, string(body), "<uniqueID>42</uniqueID>")
		fmt.Fprint(w, `{"listing_id":"REA-1001"}`)
	}))
	defer srv.Close()

	tokens := new(MockTokenProvider)
	tokens.On("GetAccessToken", mock.Anything).Return("tok-1", nil)

	c := NewClient(testClientConfig(srv.URL), tokens)

	result, err := c.Send(context.Background(), testDocument())
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, http.StatusOK, result.StatusCode)
	assert.Contains(t, result.Body, "REA-1001")
	tokens.AssertExpectations(t)
}

func TestSend_NonOKStatusIsNotAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprint(w, `{"error":"upstream unavailable"}`)
	}))
	defer srv.Close()

	tokens := new(MockTokenProvider)
	tokens.On("GetAccessToken", mock.Anything).Return("tok-1", nil)

	c := NewClient(testClientConfig(srv.URL), tokens)

	result, err := c.Send(context.Background(), testDocument())
	require.NoError(t, err, "non-2xx is a failed outcome, never an error")
	assert.False(t, result.Success)
	assert.Equal(t, http.StatusInternalServerError, result.StatusCode)
	assert.Contains(t, result.Body, "upstream unavailable")
}

func TestSend_ConnectionFailureIsTransportError(t *testing.T) {
	tokens := new(MockTokenProvider)
	tokens.On("GetAccessToken", mock.Anything).Return("tok-1", nil)

	c := NewClient(testClientConfig("http://127.0.0.1:1"), tokens)

	result, err := c.Send(context.Background(), testDocument())
	assert.Nil(t, result)
	var terr *TransportError
	require.ErrorAs(t, err, &terr)
}

func TestSend_AuthErrorPropagates(t *testing.T) {
	tokens := new(MockTokenProvider)
	tokens.On("GetAccessToken", mock.Anything).Return("", &auth.AuthError{StatusCode: 401, Body: "bad credentials"})

	c := NewClient(testClientConfig("http://unused.example.com"), tokens)

	result, err := c.Send(context.Background(), testDocument())
	assert.Nil(t, result)
	var authErr *auth.AuthError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, 401, authErr.StatusCode)
}
