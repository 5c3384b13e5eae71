package webhook

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseRequestErrors(t *testing.T) {
	for _, input := range []string{"not json", "", `{"sessionInfo":`, `[1,2]`, `"text"`} {
		req, err := ParseRequest([]byte(input))
		if err == nil {
			t.Errorf("ParseRequest(%q) = %+v, want error", input, req)
			continue
		}

		var perr *ParseError
		if !errors.As(err, &perr) {
			t.Errorf("ParseRequest(%q) error = %T, want *ParseError", input, err)
		}
	}
}

func TestParseRequestSessionOnly(t *testing.T) {
	req, err := ParseRequest([]byte(`{"sessionInfo":{"session":"s1","parameters":{"a":1}}}`))
	if err != nil {
		t.Fatalf("ParseRequest() error = %v", err)
	}

	if req.SessionID != "s1" {
		t.Errorf("SessionID = %q, want %q", req.SessionID, "s1")
	}
	if diff := cmp.Diff(map[string]any{"a": json.Number("1")}, req.Parameters); diff != "" {
		t.Errorf("Parameters mismatch (-want +got):\n%s", diff)
	}
	if req.CurrentPage != "" {
		t.Errorf("CurrentPage = %q, want empty", req.CurrentPage)
	}
	if req.IntentName != "" {
		t.Errorf("IntentName = %q, want empty", req.IntentName)
	}
	if len(req.Messages) != 0 {
		t.Errorf("Messages = %v, want none", req.Messages)
	}
}

func TestParseRequestDefaults(t *testing.T) {
	req, err := ParseRequest([]byte(`{}`))
	if err != nil {
		t.Fatalf("ParseRequest() error = %v", err)
	}

	want := &ParsedRequest{
		Parameters: map[string]any{},
		Messages:   []Message{},
		RawRequest: map[string]any{},
	}
	if diff := cmp.Diff(want, req); diff != "" {
		t.Errorf("ParseRequest({}) mismatch (-want +got):\n%s", diff)
	}
}

func TestParseRequestFull(t *testing.T) {
	body := `{
		"detectIntentResponseId": "r-1",
		"intentInfo": {"lastMatchedIntent": "projects/p/intents/i", "displayName": "order.status", "confidence": 0.9},
		"pageInfo": {"currentPage": "projects/p/pages/x", "displayName": "Order Status"},
		"sessionInfo": {"session": "projects/p/locations/l/agents/a/sessions/abc", "parameters": {"order_id": "A12", "rush": true}},
		"messages": [
			{"text": {"text": ["Looking that up", "One moment"]}},
			{"payload": {"kind": "card"}},
			{"liveAgentHandoff": {}},
			"junk"
		]
	}`

	req, err := ParseRequest([]byte(body))
	if err != nil {
		t.Fatalf("ParseRequest() error = %v", err)
	}

	if req.SessionID != "projects/p/locations/l/agents/a/sessions/abc" {
		t.Errorf("SessionID = %q", req.SessionID)
	}
	if req.IntentName != "order.status" {
		t.Errorf("IntentName = %q, want order.status", req.IntentName)
	}
	if req.CurrentPage != "Order Status" {
		t.Errorf("CurrentPage = %q, want Order Status", req.CurrentPage)
	}
	if diff := cmp.Diff(map[string]any{"order_id": "A12", "rush": true}, req.Parameters); diff != "" {
		t.Errorf("Parameters mismatch (-want +got):\n%s", diff)
	}

	wantMsgs := []Message{
		{Type: "text", Content: []any{"Looking that up", "One moment"}},
		{Type: "payload", Content: map[string]any{"kind": "card"}},
	}
	if diff := cmp.Diff(wantMsgs, req.Messages); diff != "" {
		t.Errorf("Messages mismatch (-want +got):\n%s", diff)
	}

	if req.RawRequest["detectIntentResponseId"] != "r-1" {
		t.Errorf("RawRequest does not hold the full request: %v", req.RawRequest)
	}
}

func TestParseRequestKeepsNumbersExact(t *testing.T) {
	body := `{"sessionInfo":{"parameters":{"id":9007199254740993,"ratio":0.1,"n":1}}}`

	req, err := ParseRequest([]byte(body))
	if err != nil {
		t.Fatalf("ParseRequest() error = %v", err)
	}

	want := map[string]any{
		"id":    json.Number("9007199254740993"),
		"ratio": json.Number("0.1"),
		"n":     json.Number("1"),
	}
	if diff := cmp.Diff(want, req.Parameters); diff != "" {
		t.Errorf("Parameters mismatch (-want +got):\n%s", diff)
	}

	raw := object(object(req.RawRequest, "sessionInfo"), "parameters")
	if diff := cmp.Diff(want, raw); diff != "" {
		t.Errorf("RawRequest parameters mismatch (-want +got):\n%s", diff)
	}

	out, err := json.Marshal(req)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if got := strings.Count(string(out), "9007199254740993"); got != 2 {
		t.Errorf("encoded request has %d exact ids, want 2: %s", got, out)
	}
}
