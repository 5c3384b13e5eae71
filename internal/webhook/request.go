package webhook

import (
	"errors"
	"fmt"

	"github.com/bytedance/sonic"
)

// ParseError is returned when a webhook request body cannot be decoded.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error: %v", e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

var errNotObject = errors.New("request is not a JSON object")

// requestJSON keeps numbers as json.Number so parameters pass through exactly.
var requestJSON = sonic.Config{
	EscapeHTML:       true,
	SortMapKeys:      true,
	CompactMarshaler: true,
	CopyString:       true,
	ValidateString:   true,
	UseNumber:        true,
}.Froze()

// ParseRequest decodes a CX webhook request. Missing fields default to empty
// values; only malformed JSON is an error.
func ParseRequest(data []byte) (*ParsedRequest, error) {
	var decoded any
	if err := requestJSON.Unmarshal(data, &decoded); err != nil {
		return nil, &ParseError{Err: err}
	}

	raw, ok := decoded.(map[string]any)
	if !ok {
		return nil, &ParseError{Err: errNotObject}
	}

	session := object(raw, "sessionInfo")

	params := object(session, "parameters")
	if params == nil {
		params = map[string]any{}
	}

	return &ParsedRequest{
		SessionID:   str(session, "session"),
		IntentName:  str(object(raw, "intentInfo"), "displayName"),
		Parameters:  params,
		CurrentPage: str(object(raw, "pageInfo"), "displayName"),
		Messages:    parseMessages(raw["messages"]),
		RawRequest:  raw,
	}, nil
}

func parseMessages(v any) []Message {
	list, _ := v.([]any)

	msgs := make([]Message, 0, len(list))
	for _, item := range list {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}

		if text, ok := m["text"]; ok {
			var lines any
			if t, ok := text.(map[string]any); ok {
				lines = t["text"]
			}
			msgs = append(msgs, Message{Type: "text", Content: lines})
		} else if payload, ok := m["payload"]; ok {
			msgs = append(msgs, Message{Type: "payload", Content: payload})
		}
	}

	return msgs
}

func object(m map[string]any, key string) map[string]any {
	v, _ := m[key].(map[string]any)
	return v
}

func str(m map[string]any, key string) string {
	v, _ := m[key].(string)
	return v
}
