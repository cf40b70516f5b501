package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/teemow/inboxsort/internal/classifier"
	"github.com/teemow/inboxsort/internal/email"
	"github.com/teemow/inboxsort/internal/gmail"
	"github.com/teemow/inboxsort/internal/logging"
)

// maxClassifyBody bounds the size of a classify request body.
const maxClassifyBody = 1 << 20

// Response messages, kept close to what the web client already displays.
const (
	msgMissingToken    = "missing access_token"
	msgInvalidCount    = "count must be a positive integer"
	msgFetchFailed     = "Error fetching emails"
	msgInvalidBody     = "request body must be a JSON object"
	msgMissingEmails   = "emails array is required in body"
	msgMissingKey      = "openaiKey is required in body"
	msgClassifyFailed  = "Classification failed"
	msgEmptyModelReply = "Model returned no text"
	msgMalformedReply  = "Failed to parse model response as JSON"
)

type errorResponse struct {
	Message string `json:"message"`
	Raw     string `json:"raw,omitempty"`
}

type fetchResponse struct {
	Emails []email.Record `json:"emails"`
}

type classifyRequest struct {
	Emails    json.RawMessage `json:"emails"`
	OpenAIKey string          `json:"openaiKey"`
}

type classifyResponse struct {
	Classified []email.Classified `json:"classified"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Message: message})
}

// handleFetch serves GET /emails/fetch.
func (a *api) handleFetch(w http.ResponseWriter, r *http.Request) {
	logger := logging.WithOperation(a.sc.Logger(), "http.fetch")

	q := r.URL.Query()
	token := q.Get("access_token")
	if token == "" {
		writeError(w, http.StatusBadRequest, msgMissingToken)
		return
	}

	count := a.sc.DefaultCount()
	if raw := q.Get("count"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, msgInvalidCount)
			return
		}
		count = n
	}

	records, err := a.sc.Fetcher().Fetch(r.Context(), token, count)
	if err != nil {
		if gmail.IsMissingToken(err) {
			writeError(w, http.StatusBadRequest, msgMissingToken)
			return
		}
		logger.Error("fetch failed",
			slog.String("token", logging.SanitizeToken(token)),
			logging.Err(err))
		writeError(w, http.StatusInternalServerError, msgFetchFailed)
		return
	}

	logger.Info("fetched emails", logging.Count(len(records)))
	writeJSON(w, http.StatusOK, fetchResponse{Emails: records})
}

// handleClassify serves POST /emails/classify.
func (a *api) handleClassify(w http.ResponseWriter, r *http.Request) {
	logger := logging.WithOperation(a.sc.Logger(), "http.classify")

	var req classifyRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxClassifyBody)).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		writeError(w, http.StatusBadRequest, msgInvalidBody)
		return
	}

	records, ok := decodeRecords(req.Emails)
	if !ok {
		writeError(w, http.StatusBadRequest, msgMissingEmails)
		return
	}
	if req.OpenAIKey == "" {
		writeError(w, http.StatusBadRequest, msgMissingKey)
		return
	}

	classified, err := a.sc.Classifier().Classify(r.Context(), records, req.OpenAIKey)
	if err != nil {
		status, body := classifyErrorResponse(err)
		if status >= http.StatusInternalServerError {
			logger.Error("classification failed", logging.Err(err))
		}
		writeJSON(w, status, body)
		return
	}

	logger.Info("classified emails", logging.Count(len(classified)))
	writeJSON(w, http.StatusOK, classifyResponse{Classified: classified})
}

// decodeRecords accepts only a JSON array of records. A missing or null
// value is rejected.
func decodeRecords(raw json.RawMessage) ([]email.Record, bool) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, false
	}
	var records []email.Record
	if err := json.Unmarshal(raw, &records); err != nil || records == nil {
		return nil, false
	}
	return records, true
}

// classifyErrorResponse maps classifier errors to a status and body. Caller
// mistakes are 400; everything else is 500 without upstream detail, except
// that unparseable model output is returned as raw.
func classifyErrorResponse(err error) (int, errorResponse) {
	var ce *classifier.Error
	if !errors.As(err, &ce) {
		return http.StatusInternalServerError, errorResponse{Message: msgClassifyFailed}
	}

	switch ce.Kind {
	case classifier.KindInvalidRequest:
		msg := ce.Error()
		if ce.Err != nil {
			msg = ce.Err.Error()
		}
		return http.StatusBadRequest, errorResponse{Message: msg}
	case classifier.KindEmptyModelResponse:
		return http.StatusInternalServerError, errorResponse{Message: msgEmptyModelReply}
	case classifier.KindMalformedModelOutput:
		return http.StatusInternalServerError, errorResponse{Message: msgMalformedReply, Raw: ce.Raw}
	default:
		return http.StatusInternalServerError, errorResponse{Message: msgClassifyFailed}
	}
}
