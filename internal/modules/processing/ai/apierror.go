package ai

import (
	"encoding/json"
	"regexp"
	"strings"
)

// APIErrorDetail is a best-effort structured view of a provider error.
type APIErrorDetail struct {
	Message         string   `json:"message"`
	Code            string   `json:"code,omitempty"`
	Parameter       string   `json:"parameter,omitempty"`
	SupportedValues []string `json:"supported_values,omitempty"`
}

var supportedValuesRe = regexp.MustCompile(`(?i)supported values(?: are)?:?\s*([^.]+)`)

// ParseAPIError extracts structure from a free-text or JSON provider error.
// It never fails: unparseable input falls back to a generic message.
func ParseAPIError(err error, rawResponse string) APIErrorDetail {
	detail := APIErrorDetail{Message: "AI generation failed"}

	var text string
	if err != nil {
		text = err.Error()
	}
	if strings.TrimSpace(rawResponse) != "" {
		text = rawResponse
	}
	if strings.TrimSpace(text) == "" {
		return detail
	}
	detail.Message = strings.TrimSpace(text)

	if parsed, ok := parseJSONError(text); ok {
		if parsed.Message != "" {
			detail.Message = parsed.Message
		}
		detail.Code = parsed.Code
		detail.Parameter = parsed.Parameter
	}

	if m := supportedValuesRe.FindStringSubmatch(detail.Message); len(m) == 2 {
		for _, v := range strings.Split(m[1], ",") {
			v = strings.Trim(strings.TrimSpace(v), `'"`+"`")
			v = strings.TrimSuffix(v, "and ")
			v = strings.TrimPrefix(v, "and ")
			v = strings.Trim(v, `'"`+"` ")
			if v != "" {
				detail.SupportedValues = append(detail.SupportedValues, v)
			}
		}
	}

	return detail
}

func parseJSONError(text string) (APIErrorDetail, bool) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return APIErrorDetail{}, false
	}

	var payload struct {
		Error *struct {
			Message string `json:"message"`
			Code    string `json:"code"`
			Type    string `json:"type"`
			Param   string `json:"param"`
		} `json:"error"`
		Message string `json:"message"`
		Code    string `json:"code"`
	}
	if err := json.Unmarshal([]byte(text[start:end+1]), &payload); err != nil {
		return APIErrorDetail{}, false
	}

	var detail APIErrorDetail
	if payload.Error != nil {
		detail.Message = strings.TrimSpace(payload.Error.Message)
		detail.Code = payload.Error.Code
		if detail.Code == "" {
			detail.Code = payload.Error.Type
		}
		detail.Parameter = payload.Error.Param
	} else {
		detail.Message = strings.TrimSpace(payload.Message)
		detail.Code = payload.Code
	}

	return detail, detail.Message != "" || detail.Code != ""
}
