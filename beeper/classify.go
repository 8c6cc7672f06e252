package beeper

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strings"
)

// errorEnvelope is the error body returned by the API. Each field is decoded
// on its own so one malformed field does not discard the others.
type errorEnvelope struct {
	Error   json.RawMessage `json:"error"`
	Code    json.RawMessage `json:"code"`
	Details json.RawMessage `json:"details"`
}

// Classify maps a non-2xx status and its raw body to exactly one Error.
// It never fails: an unparsable body becomes the message verbatim.
func Classify(status int, body []byte) *Error {
	apiErr := &Error{
		Kind:   kindForStatus(status),
		Status: status,
	}

	var envelope errorEnvelope
	if err := json.Unmarshal(body, &envelope); err == nil {
		apiErr.Code = rawString(envelope.Code)
		apiErr.Details = rawDetails(envelope.Details)
		if msg := rawString(envelope.Error); msg != "" {
			apiErr.Message = msg
			return apiErr
		}
	}

	apiErr.Message = strings.TrimSpace(string(body))
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(status)
	}
	return apiErr
}

// rawString returns raw as a string when it holds a JSON string
func rawString(raw json.RawMessage) string {
	var s string
	if len(raw) == 0 || json.Unmarshal(raw, &s) != nil {
		return ""
	}
	return s
}

// rawDetails flattens a details object. String values are kept as is, any
// other value is kept as its compact JSON text.
func rawDetails(raw json.RawMessage) map[string]string {
	var fields map[string]json.RawMessage
	if len(raw) == 0 || json.Unmarshal(raw, &fields) != nil || len(fields) == 0 {
		return nil
	}

	details := make(map[string]string, len(fields))
	for key, value := range fields {
		var s string
		if json.Unmarshal(value, &s) == nil {
			details[key] = s
			continue
		}
		var compact bytes.Buffer
		if json.Compact(&compact, value) != nil {
			details[key] = string(value)
			continue
		}
		details[key] = compact.String()
	}
	return details
}

func kindForStatus(status int) ErrorKind {
	switch status {
	case http.StatusBadRequest:
		return KindBadRequest
	case http.StatusUnauthorized:
		return KindAuthentication
	case http.StatusForbidden:
		return KindPermissionDenied
	case http.StatusNotFound:
		return KindNotFound
	case http.StatusConflict:
		return KindConflict
	case http.StatusUnprocessableEntity:
		return KindUnprocessableEntity
	case http.StatusTooManyRequests:
		return KindRateLimit
	}
	if status >= 500 && status <= 599 {
		return KindInternalServer
	}
	return KindAPI
}
