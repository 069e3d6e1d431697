package handler

import (
	"encoding/json"
	"fmt"
	"html/template"
	"log/slog"
	"mime"
	"net/http"
	"time"

	"github.com/joestump/title-optimizer/internal/llm"
	"github.com/joestump/title-optimizer/internal/logger"
	"github.com/joestump/title-optimizer/internal/metrics"
)

// maxBodyBytes bounds a submitted form or JSON body.
const maxBodyBytes = 1 << 20

// ResultPage is the data for result.html. Title and Text are written into the
// page as-is, without HTML escaping.
type ResultPage struct {
	BasePage
	Title template.HTML
	Text  template.HTML
}

// ErrorPage is the data for error.html. Message is written as-is.
type ErrorPage struct {
	BasePage
	Message template.HTML
}

// OptimizeHandler serves the title form and relays submissions to the completion API.
type OptimizeHandler struct {
	completer llm.Completer
}

// NewOptimizeHandler creates a new OptimizeHandler.
func NewOptimizeHandler(c llm.Completer) *OptimizeHandler {
	return &OptimizeHandler{completer: c}
}

// Form serves GET /.
func (h *OptimizeHandler) Form(w http.ResponseWriter, r *http.Request) {
	render(w, "form.html", newBasePage(r))
}

// Optimize serves POST /optimize. Success and failure both render with status
// 200; failures show the upstream message and a link back to the form.
func (h *OptimizeHandler) Optimize(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())
	base := newBasePage(r)

	req, err := decodeTitleRequest(w, r)
	if err != nil {
		log.Warn("optimize: bad request body", slog.Any("error", err))
		render(w, "error.html", ErrorPage{BasePage: base, Message: template.HTML(err.Error())})
		return
	}

	start := time.Now()
	completion, err := h.completer.Complete(r.Context(), req)
	metrics.CompletionDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.CompletionsTotal.WithLabelValues(metrics.OutcomeError).Inc()
		log.Error("optimize: completion API error", slog.Any("error", err))
		render(w, "error.html", ErrorPage{BasePage: base, Message: template.HTML(llm.UserMessage(err))})
		return
	}

	if completion.Empty {
		metrics.CompletionsTotal.WithLabelValues(metrics.OutcomeEmpty).Inc()
	} else {
		metrics.CompletionsTotal.WithLabelValues(metrics.OutcomeSuccess).Inc()
	}
	log.Debug("optimize: completion", slog.String("text", completion.Text))

	render(w, "result.html", ResultPage{
		BasePage: base,
		Title:    template.HTML(req.Title),
		Text:     template.HTML(completion.Text),
	})
}

// decodeTitleRequest reads title, category and keywords from a JSON body or
// from URL-encoded / multipart form fields. Absent fields are empty strings.
func decodeTitleRequest(w http.ResponseWriter, r *http.Request) (llm.TitleRequest, error) {
	var req llm.TitleRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "application/json":
		var fields map[string]any
		dec := json.NewDecoder(r.Body)
		dec.UseNumber()
		if err := dec.Decode(&fields); err != nil {
			return req, fmt.Errorf("invalid JSON body: %w", err)
		}
		req = llm.TitleRequest{
			Title:    jsonFieldString(fields["title"]),
			Category: jsonFieldString(fields["category"]),
			Keywords: jsonFieldString(fields["keywords"]),
		}
	case "multipart/form-data":
		if err := r.ParseMultipartForm(maxBodyBytes); err != nil {
			return req, fmt.Errorf("invalid form body: %w", err)
		}
		req = titleRequestFromForm(r)
	default:
		if err := r.ParseForm(); err != nil {
			return req, fmt.Errorf("invalid form body: %w", err)
		}
		req = titleRequestFromForm(r)
	}
	return req, nil
}

func titleRequestFromForm(r *http.Request) llm.TitleRequest {
	return llm.TitleRequest{
		Title:    r.PostFormValue("title"),
		Category: r.PostFormValue("category"),
		Keywords: r.PostFormValue("keywords"),
	}
}

// jsonFieldString formats a decoded JSON value for the prompt. Strings pass
// through, absent and null become "", numbers keep their literal text and
// arrays or objects are re-encoded as compact JSON.
func jsonFieldString(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	case json.Number:
		return v.String()
	case bool:
		return fmt.Sprint(v)
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprint(v)
		}
		return string(b)
	}
}
