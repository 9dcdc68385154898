package agents

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrNoJSONPayload reports model output that carried no extractable JSON
// payload. Agents treat it as "no findings", never as a run failure.
var ErrNoJSONPayload = errors.New("no JSON payload in response")

// ExtractJSONArray pulls the first plausible JSON string array out of
// free-form model output: the slice between the first '[' and the last
// ']', with control characters stripped.
func ExtractJSONArray(raw string) ([]string, error) {
	payload, err := extractArraySlice(raw)
	if err != nil {
		return nil, err
	}

	var items []string
	if err := json.Unmarshal(payload, &items); err != nil {
		return nil, fmt.Errorf("decode array payload: %w", err)
	}
	return items, nil
}

// extractArraySlice returns the bytes between the first '[' and the
// last ']', control characters stripped, without decoding them.
func extractArraySlice(raw string) ([]byte, error) {
	start := strings.IndexByte(raw, '[')
	end := strings.LastIndexByte(raw, ']')
	if start < 0 || end <= start {
		return nil, ErrNoJSONPayload
	}
	return []byte(stripControl(raw[start : end+1])), nil
}

// ExtractJSONObject pulls the first plausible JSON object out of
// free-form model output, validated but not decoded.
func ExtractJSONObject(raw string) (json.RawMessage, error) {
	start := strings.IndexByte(raw, '{')
	end := strings.LastIndexByte(raw, '}')
	if start < 0 || end <= start {
		return nil, ErrNoJSONPayload
	}

	payload := json.RawMessage(stripControl(raw[start : end+1]))
	if !json.Valid(payload) {
		return nil, fmt.Errorf("%w: object slice is not valid JSON", ErrNoJSONPayload)
	}
	return payload, nil
}

func stripControl(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r == '\n' || r == '\t':
			return ' '
		case r < 0x20:
			return -1
		}
		return r
	}, s)
}
