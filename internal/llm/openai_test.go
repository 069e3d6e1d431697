package llm

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/joestump/title-optimizer/internal/config"
)

// newTestClient points a Client at an httptest server running h.
func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	cfg := &config.Config{}
	cfg.LLM.APIKey = "sk-test"
	cfg.LLM.BaseURL = srv.URL + "/api/v1/"
	return New(cfg)
}

var blueShirt = TitleRequest{Title: "Blue Cotton T-Shirt", Category: "Fashion", Keywords: "organic,cotton,tee"}

func TestComplete_SendsFixedRequest(t *testing.T) {
	var (
		gotPath    string
		gotHeaders http.Header
		gotBody    chatRequest
	)
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotHeaders = r.Header.Clone()
		raw, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(raw, &gotBody); err != nil {
			t.Errorf("decode request body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"choices":[{"message":{"content":"Option 1: ..."}}]}`)
	})

	got, err := c.Complete(context.Background(), blueShirt)
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if got.Text != "Option 1: ..." || got.Empty {
		t.Errorf("completion = %+v, want Option 1: ...", got)
	}

	if gotPath != "/api/v1/chat/completions" {
		t.Errorf("path = %q, want /api/v1/chat/completions", gotPath)
	}
	if h := gotHeaders.Get("Authorization"); h != "Bearer sk-test" {
		t.Errorf("Authorization = %q", h)
	}
	if h := gotHeaders.Get("HTTP-Referer"); h != RefererHeader {
		t.Errorf("HTTP-Referer = %q", h)
	}
	if h := gotHeaders.Get("X-Title"); h != TitleHeader {
		t.Errorf("X-Title = %q", h)
	}
	if h := gotHeaders.Get("Content-Type"); h != "application/json" {
		t.Errorf("Content-Type = %q", h)
	}

	if gotBody.Model != config.DefaultModel {
		t.Errorf("model = %q, want %q", gotBody.Model, config.DefaultModel)
	}
	if gotBody.MaxTokens != 512 || gotBody.Temperature != 0.7 || gotBody.TopP != 0.9 {
		t.Errorf("sampling = %d/%v/%v, want 512/0.7/0.9", gotBody.MaxTokens, gotBody.Temperature, gotBody.TopP)
	}
	if len(gotBody.Messages) != 2 {
		t.Fatalf("messages = %d, want 2", len(gotBody.Messages))
	}
	if m := gotBody.Messages[0]; m.Role != "system" || m.Content != SystemPrompt {
		t.Errorf("system message = %+v", m)
	}
	user := gotBody.Messages[1]
	if user.Role != "user" {
		t.Errorf("second role = %q, want user", user.Role)
	}
	for _, want := range []string{"Blue Cotton T-Shirt", "Fashion", "organic,cotton,tee"} {
		if !strings.Contains(user.Content, want) {
			t.Errorf("user prompt missing %q", want)
		}
	}
}

func TestComplete_EmptyContentFallsBack(t *testing.T) {
	bodies := map[string]string{
		"no choices":    `{"choices":[]}`,
		"no message":    `{"choices":[{}]}`,
		"empty content": `{"choices":[{"message":{"content":""}}]}`,
		"null content":  `{"choices":[{"message":{"content":null}}]}`,
	}
	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				_, _ = io.WriteString(w, body)
			})
			got, err := c.Complete(context.Background(), blueShirt)
			if err != nil {
				t.Fatalf("Complete: %v", err)
			}
			if got.Text != NoResponseText || !got.Empty {
				t.Errorf("completion = %+v, want fallback", got)
			}
		})
	}
}

func TestComplete_StructuredUpstreamError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"error":{"message":"Invalid API key"}}`)
	})

	_, err := c.Complete(context.Background(), blueShirt)
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("err = %v, want *APIError", err)
	}
	if apiErr.StatusCode != http.StatusUnauthorized {
		t.Errorf("StatusCode = %d, want 401", apiErr.StatusCode)
	}
	if got := UserMessage(err); got != "Invalid API key" {
		t.Errorf("UserMessage = %q, want Invalid API key", got)
	}
}

func TestComplete_UnstructuredUpstreamError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	})

	_, err := c.Complete(context.Background(), blueShirt)
	if err == nil {
		t.Fatal("Complete succeeded, want error")
	}
	if got := UserMessage(err); got != "Request failed with status code 502" {
		t.Errorf("UserMessage = %q", got)
	}
}

func TestComplete_ErrorShapedSuccessBodyFallsBack(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"error":{"message":"Provider returned error"}}`)
	})

	got, err := c.Complete(context.Background(), blueShirt)
	if err != nil {
		t.Fatalf("Complete: %v, want the fallback completion", err)
	}
	if got.Text != NoResponseText || !got.Empty {
		t.Errorf("completion = %+v, want fallback", got)
	}
}

func TestComplete_UndecodableSuccessBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `<html>oops</html>`)
	})

	_, err := c.Complete(context.Background(), blueShirt)
	if err == nil || !strings.Contains(err.Error(), "decode response") {
		t.Errorf("err = %v, want decode response error", err)
	}
}

func TestComplete_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	cfg := &config.Config{}
	cfg.LLM.APIKey = "sk-test"
	cfg.LLM.BaseURL = url
	_, err := New(cfg).Complete(context.Background(), blueShirt)
	if err == nil {
		t.Fatal("Complete succeeded against a closed server")
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		t.Errorf("transport failure should not be an APIError: %v", err)
	}
	if got := UserMessage(err); got != err.Error() {
		t.Errorf("UserMessage = %q, want the error text %q", got, err.Error())
	}
}

func TestUserMessage_Nil(t *testing.T) {
	if got := UserMessage(nil); got != "" {
		t.Errorf("UserMessage(nil) = %q, want empty", got)
	}
}
