package weather

import (
	"encoding/json"
	"fmt"
)

// Report is the decoded provider body. At most one of Current and Error is
// set; both nil means the body had neither in a usable shape.
type Report struct {
	Current *Conditions `json:"current"`
	Error   *APIError   `json:"error"`
}

type Conditions struct {
	TempC float64 `json:"temp_c"`
	TempF float64 `json:"temp_f"`
}

// APIError is the error object weatherapi.com returns alongside a 4xx status.
type APIError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("weather provider error %d: %s", e.Code, e.Message)
}

// Error codes documented by weatherapi.com.
const (
	CodeKeyNotProvided    = 1002
	CodeQueryMissing      = 1003
	CodeLocationNotFound  = 1006
	CodeKeyInvalid        = 2006
	CodeQuotaExceeded     = 2007
	CodeKeyDisabled       = 2008
	CodeNoAccessToContent = 2009
)

// IsKeyProblem reports codes that mean the bot's API key needs attention.
func (e *APIError) IsKeyProblem() bool {
	switch e.Code {
	case CodeKeyNotProvided, CodeKeyInvalid, CodeQuotaExceeded, CodeKeyDisabled, CodeNoAccessToContent:
		return true
	}
	return false
}

// IsLocationProblem reports codes that mean the query did not resolve.
func (e *APIError) IsLocationProblem() bool {
	return e.Code == CodeQueryMissing || e.Code == CodeLocationNotFound
}

// DecodeReport classifies a provider body. Only bodies that are not JSON at
// all fail; any other shape yields a Report, possibly empty. A usable
// "current" object wins over "error", and an "error" that is not an object
// still takes the error path with its raw text as the message.
func DecodeReport(body []byte) (Report, error) {
	var report Report
	if !json.Valid(body) {
		return report, fmt.Errorf("provider body is not json")
	}
	fields := map[string]json.RawMessage{}
	if err := json.Unmarshal(body, &fields); err != nil {
		return report, nil
	}

	if raw, ok := fields["current"]; ok {
		var current Conditions
		if err := json.Unmarshal(raw, &current); err == nil && isObject(raw) {
			report.Current = &current
			return report, nil
		}
	}
	if raw, ok := fields["error"]; ok {
		apiErr := &APIError{}
		if err := json.Unmarshal(raw, apiErr); err != nil || !isObject(raw) {
			apiErr = &APIError{Message: rawText(raw)}
		}
		report.Error = apiErr
	}
	return report, nil
}

func isObject(raw json.RawMessage) bool {
	for _, b := range raw {
		switch b {
		case ' ', '\t', '\n', '\r':
			continue
		}
		return b == '{'
	}
	return false
}

func rawText(raw json.RawMessage) string {
	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		return text
	}
	return string(raw)
}
