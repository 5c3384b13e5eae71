package cx

import (
	"strings"

	"cloud.google.com/go/dialogflow/cx/apiv3/cxpb"
	"github.com/bytedance/sonic"
	"google.golang.org/protobuf/encoding/prototext"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	MessageTypeText    = "text"
	MessageTypePayload = "payload"

	noIntent = "No intent"

	// endInteractionMarker is searched for in the text form of every response message.
	endInteractionMarker = "end_interaction"
)

type Message struct {
	Type    string `json:"type"`
	Content any    `json:"content"`
}

type IntentInfo struct {
	Name       string  `json:"name"`
	Confidence float32 `json:"confidence"`
}

// IntentResult is the flat form of a detect intent query result.
type IntentResult struct {
	Messages       []Message      `json:"messages"`
	Intent         *IntentInfo    `json:"intent"`
	Parameters     map[string]any `json:"parameters"`
	CurrentPage    string         `json:"current_page"`
	Transcript     string         `json:"transcript"`
	EndInteraction bool           `json:"end_interaction"`
}

type Match struct {
	Intent     string         `json:"intent"`
	Confidence float32        `json:"confidence"`
	Parameters map[string]any `json:"parameters"`
}

// MatchResult is the flat form of a match intent response.
type MatchResult struct {
	Matches     []Match `json:"matches"`
	CurrentPage string  `json:"current_page"`
}

// ExtractParameters converts session parameters into plain JSON values.
// Every key of params is present in the result.
func ExtractParameters(params *structpb.Struct) map[string]any {
	out := make(map[string]any, len(params.GetFields()))
	for key, value := range params.GetFields() {
		out[key] = extractValue(value)
	}

	return out
}

func extractValue(v *structpb.Value) any {
	switch kind := v.GetKind().(type) {
	case *structpb.Value_StringValue:
		return kind.StringValue
	case *structpb.Value_NumberValue:
		return kind.NumberValue
	case *structpb.Value_BoolValue:
		return kind.BoolValue
	case *structpb.Value_StructValue:
		return kind.StructValue.AsMap()
	default:
		text, err := sonic.ConfigStd.MarshalToString(v.AsInterface())
		if err != nil {
			return ""
		}
		return text
	}
}

// NormalizeQueryResult flattens the query result of a detect intent response.
func NormalizeQueryResult(qr *cxpb.QueryResult) *IntentResult {
	result := &IntentResult{
		Messages:    normalizeMessages(qr.GetResponseMessages()),
		Parameters:  ExtractParameters(qr.GetParameters()),
		CurrentPage: qr.GetCurrentPage().GetDisplayName(),
		Transcript:  qr.GetTranscript(),
	}

	for _, msg := range qr.GetResponseMessages() {
		if strings.Contains(prototext.Format(msg), endInteractionMarker) {
			result.EndInteraction = true
			break
		}
	}

	if match := qr.GetMatch(); match.GetIntent() != nil {
		result.Intent = &IntentInfo{
			Name:       match.GetIntent().GetDisplayName(),
			Confidence: match.GetConfidence(),
		}
	}

	return result
}

func normalizeMessages(msgs []*cxpb.ResponseMessage) []Message {
	out := make([]Message, 0, len(msgs))
	for _, msg := range msgs {
		switch {
		case msg.GetText() != nil:
			out = append(out, Message{
				Type:    MessageTypeText,
				Content: strings.Join(msg.GetText().GetText(), "\n"),
			})
		case msg.GetPayload() != nil:
			out = append(out, Message{
				Type:    MessageTypePayload,
				Content: msg.GetPayload().AsMap(),
			})
		}
	}

	return out
}

// NormalizeMatches flattens a match intent response, keeping the order of the candidates.
func NormalizeMatches(resp *cxpb.MatchIntentResponse) *MatchResult {
	result := &MatchResult{
		Matches:     make([]Match, 0, len(resp.GetMatches())),
		CurrentPage: resp.GetCurrentPage().GetDisplayName(),
	}

	for _, m := range resp.GetMatches() {
		name := noIntent
		if m.GetIntent() != nil {
			name = m.GetIntent().GetDisplayName()
		}

		result.Matches = append(result.Matches, Match{
			Intent:     name,
			Confidence: m.GetConfidence(),
			Parameters: ExtractParameters(m.GetParameters()),
		})
	}

	return result
}
