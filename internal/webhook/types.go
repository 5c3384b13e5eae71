package webhook

// Wire types of the Dialogflow CX fulfillment webhook.

type ResponseText struct {
	Text []any `json:"text"`
}

// ResponseMessage sets exactly one of Text and Payload. Payload points to the
// caller's value so that an explicit null is still written.
type ResponseMessage struct {
	Text    *ResponseText `json:"text,omitempty"`
	Payload *any          `json:"payload,omitempty"`
}

// FulfillmentResponse keeps Messages as a pointer so that an empty list is
// still written when the caller supplied one.
type FulfillmentResponse struct {
	Messages *[]ResponseMessage `json:"messages,omitempty"`
}

type SessionInfo struct {
	Parameters any `json:"parameters"`
}

// Response is the webhook reply. Targets are pointers for the same reason as
// ResponseMessage.Payload: a key given as null is written as null.
type Response struct {
	FulfillmentResponse FulfillmentResponse `json:"fulfillmentResponse"`
	SessionInfo         *SessionInfo        `json:"sessionInfo,omitempty"`
	TargetPage          *any                `json:"targetPage,omitempty"`
	TargetFlow          *any                `json:"targetFlow,omitempty"`
}

type Message struct {
	Type    string `json:"type"`
	Content any    `json:"content"`
}

// ParsedRequest holds the fields of a webhook request that fulfillment code
// usually needs, plus the whole decoded request.
type ParsedRequest struct {
	SessionID   string         `json:"session_id"`
	IntentName  string         `json:"intent_name"`
	Parameters  map[string]any `json:"parameters"`
	CurrentPage string         `json:"current_page"`
	Messages    []Message      `json:"messages"`
	RawRequest  map[string]any `json:"raw_request"`
}
