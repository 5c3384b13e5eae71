package webhook

// BuildResponse converts a simplified fulfillment description into a CX
// webhook response. Recognized keys are messages, parameter_updates,
// target_page and target_flow; anything else is ignored.
//
// A message is either a string, an object with "text" or an object with
// "payload". The text value is wrapped in a one element list as given.
// Messages of any other shape are dropped.
func BuildResponse(desc map[string]any) *Response {
	resp := &Response{}

	if raw, ok := desc["messages"]; ok {
		msgs := make([]ResponseMessage, 0)
		list, _ := raw.([]any)
		for _, m := range list {
			if msg, ok := buildMessage(m); ok {
				msgs = append(msgs, msg)
			}
		}
		resp.FulfillmentResponse.Messages = &msgs
	}

	if params, ok := desc["parameter_updates"]; ok {
		resp.SessionInfo = &SessionInfo{Parameters: params}
	}

	if page, ok := desc["target_page"]; ok {
		resp.TargetPage = &page
	}

	if flow, ok := desc["target_flow"]; ok {
		resp.TargetFlow = &flow
	}

	return resp
}

func buildMessage(m any) (ResponseMessage, bool) {
	switch v := m.(type) {
	case string:
		return ResponseMessage{Text: &ResponseText{Text: []any{v}}}, true
	case map[string]any:
		if text, ok := v["text"]; ok {
			return ResponseMessage{Text: &ResponseText{Text: []any{text}}}, true
		}
		if payload, ok := v["payload"]; ok {
			return ResponseMessage{Payload: &payload}, true
		}
	}

	return ResponseMessage{}, false
}
