package tools

import (
	"context"
	"strconv"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/YevheniiGera/dialogflow-cx-mcp/internal/cx"
	"github.com/YevheniiGera/dialogflow-cx-mcp/internal/webhook"
)

const errNotInitialized = "Dialogflow CX client not initialized. Call initialize_dialogflow first."

type InitializeInput struct {
	ProjectID       string `json:"project_id" jsonschema:"Google Cloud project ID"`
	Location        string `json:"location" jsonschema:"location of the agent, e.g. us-central1 or global"`
	AgentID         string `json:"agent_id" jsonschema:"ID of the Dialogflow CX agent"`
	CredentialsPath string `json:"credentials_path,omitempty" jsonschema:"path to a service account credentials file"`
}

type DetectIntentInput struct {
	Text         string `json:"text" jsonschema:"user input text"`
	SessionID    string `json:"session_id,omitempty" jsonschema:"session ID; a random UUID is generated when empty"`
	LanguageCode string `json:"language_code,omitempty" jsonschema:"language code, default en-US"`
}

type AudioFileInput struct {
	AudioFilePath   string `json:"audio_file_path" jsonschema:"path to the audio file"`
	SessionID       string `json:"session_id,omitempty" jsonschema:"session ID; a random UUID is generated when empty"`
	SampleRateHertz int    `json:"sample_rate_hertz,omitempty" jsonschema:"sample rate of the audio; read from the WAV header or 16000 when omitted"`
	AudioEncoding   string `json:"audio_encoding,omitempty" jsonschema:"audio encoding name, default AUDIO_ENCODING_LINEAR_16"`
	LanguageCode    string `json:"language_code,omitempty" jsonschema:"language code, default en-US"`
}

type AudioBase64Input struct {
	AudioBase64     string `json:"audio_base64" jsonschema:"base64 encoded audio content"`
	SessionID       string `json:"session_id,omitempty" jsonschema:"session ID; a random UUID is generated when empty"`
	SampleRateHertz int    `json:"sample_rate_hertz,omitempty" jsonschema:"sample rate of the audio; read from the WAV header or 16000 when omitted"`
	AudioEncoding   string `json:"audio_encoding,omitempty" jsonschema:"audio encoding name, default AUDIO_ENCODING_LINEAR_16"`
	LanguageCode    string `json:"language_code,omitempty" jsonschema:"language code, default en-US"`
}

type WebhookResponseInput struct {
	FulfillmentResponse map[string]any `json:"fulfillment_response" jsonschema:"messages, parameter_updates, target_page and target_flow of the reply"`
}

type WebhookRequestInput struct {
	RequestJSON string `json:"request_json" jsonschema:"JSON text of the webhook request"`
}

type EndInteractionInput struct {
	Response map[string]any `json:"response" jsonschema:"a result returned by detect_intent"`
}

type StatusOutput struct {
	Status string `json:"status"`
}

type ErrorOutput struct {
	Error string `json:"error"`
}

type IntentOutput struct {
	*cx.IntentResult
	SessionID string `json:"session_id"`
}

type MatchOutput struct {
	*cx.MatchResult
	SessionID string `json:"session_id"`
}

func (s *Server) register() {
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "initialize_dialogflow",
		Description: "Initialize the Dialogflow CX client for an agent.",
	}, s.initialize)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "detect_intent",
		Description: "Detect intent from text input.",
	}, s.detectIntent)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "detect_intent_from_audio",
		Description: "Detect intent from an audio file.",
	}, s.detectIntentFromAudio)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "detect_intent_from_base64",
		Description: "Detect intent from base64 encoded audio.",
	}, s.detectIntentFromBase64)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "match_intent",
		Description: "Match intent without affecting the session.",
	}, s.matchIntent)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "create_webhook_response",
		Description: "Create a response for a Dialogflow CX webhook request.",
	}, s.createWebhookResponse)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "parse_webhook_request",
		Description: "Parse a Dialogflow CX webhook request.",
	}, s.parseWebhookRequest)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "check_end_interaction",
		Description: "Check if a detect_intent result contains an end_interaction signal.",
	}, s.checkEndInteraction)
}

func failure(msg string) (*mcp.CallToolResult, any, error) {
	return nil, ErrorOutput{Error: msg}, nil
}

func (s *Server) initialize(ctx context.Context, _ *mcp.CallToolRequest, in InitializeInput) (*mcp.CallToolResult, any, error) {
	config := cx.AgentConfig{
		ProjectID:       in.ProjectID,
		Location:        in.Location,
		AgentID:         in.AgentID,
		CredentialsPath: in.CredentialsPath,
	}

	// The client outlives this call, and token sources keep the context
	// they were created with.
	agent, err := s.dial(context.WithoutCancel(ctx), config, s.logger)
	if err != nil {
		s.logger.Error("initialize failed", "agent", in.AgentID, "err", err)
		return failure("Error initializing Dialogflow CX client: " + err.Error())
	}

	s.SetAgent(agent)
	s.logger.Info("agent initialized", "project", in.ProjectID, "location", in.Location, "agent", in.AgentID)

	return nil, StatusOutput{Status: "Dialogflow CX client initialized for agent: " + in.AgentID}, nil
}

func (s *Server) detectIntent(ctx context.Context, _ *mcp.CallToolRequest, in DetectIntentInput) (*mcp.CallToolResult, any, error) {
	agent := s.currentAgent()
	if agent == nil {
		return failure(errNotInitialized)
	}

	sessionID := sessionOrNew(in.SessionID)

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	result, err := agent.DetectText(ctx, sessionID, in.Text, in.LanguageCode)
	if err != nil {
		s.logger.Warn("detect intent failed", "session", sessionID, "err", err)
		return failure("Error detecting intent: " + err.Error())
	}

	return nil, IntentOutput{IntentResult: result, SessionID: sessionID}, nil
}

func (s *Server) detectIntentFromAudio(ctx context.Context, _ *mcp.CallToolRequest, in AudioFileInput) (*mcp.CallToolResult, any, error) {
	const prefix = "Error detecting intent from audio: "

	agent := s.currentAgent()
	if agent == nil {
		return failure(errNotInitialized)
	}

	sessionID := sessionOrNew(in.SessionID)

	content, err := cx.ReadAudioFile(in.AudioFilePath)
	if err != nil {
		return failure(prefix + err.Error())
	}

	return s.detectAudio(ctx, agent, sessionID, content, in.AudioEncoding, in.SampleRateHertz, in.LanguageCode, prefix)
}

func (s *Server) detectIntentFromBase64(ctx context.Context, _ *mcp.CallToolRequest, in AudioBase64Input) (*mcp.CallToolResult, any, error) {
	const prefix = "Error detecting intent from base64 audio: "

	agent := s.currentAgent()
	if agent == nil {
		return failure(errNotInitialized)
	}

	sessionID := sessionOrNew(in.SessionID)

	content, err := cx.DecodeAudioBase64(in.AudioBase64)
	if err != nil {
		return failure(prefix + err.Error())
	}

	return s.detectAudio(ctx, agent, sessionID, content, in.AudioEncoding, in.SampleRateHertz, in.LanguageCode, prefix)
}

func (s *Server) detectAudio(ctx context.Context, agent *cx.Agent, sessionID string, content []byte, encoding string, sampleRate int, languageCode, errPrefix string) (*mcp.CallToolResult, any, error) {
	audio, err := cx.NewAudioInput(content, encoding, sampleRate)
	if err != nil {
		return failure(errPrefix + err.Error())
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	result, err := agent.DetectAudio(ctx, sessionID, audio, languageCode)
	if err != nil {
		s.logger.Warn("detect intent from audio failed", "session", sessionID, "err", err)
		return failure(errPrefix + err.Error())
	}

	return nil, IntentOutput{IntentResult: result, SessionID: sessionID}, nil
}

func (s *Server) matchIntent(ctx context.Context, _ *mcp.CallToolRequest, in DetectIntentInput) (*mcp.CallToolResult, any, error) {
	agent := s.currentAgent()
	if agent == nil {
		return failure(errNotInitialized)
	}

	sessionID := sessionOrNew(in.SessionID)

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	result, err := agent.MatchIntent(ctx, sessionID, in.Text, in.LanguageCode)
	if err != nil {
		s.logger.Warn("match intent failed", "session", sessionID, "err", err)
		return failure("Error matching intent: " + err.Error())
	}

	return nil, MatchOutput{MatchResult: result, SessionID: sessionID}, nil
}

func (s *Server) createWebhookResponse(_ context.Context, _ *mcp.CallToolRequest, in WebhookResponseInput) (*mcp.CallToolResult, any, error) {
	return nil, webhook.BuildResponse(in.FulfillmentResponse), nil
}

func (s *Server) parseWebhookRequest(_ context.Context, _ *mcp.CallToolRequest, in WebhookRequestInput) (*mcp.CallToolResult, any, error) {
	req, err := webhook.ParseRequest([]byte(in.RequestJSON))
	if err != nil {
		return failure(webhook.ErrorMessage(err))
	}

	return nil, req, nil
}

func (s *Server) checkEndInteraction(_ context.Context, _ *mcp.CallToolRequest, in EndInteractionInput) (*mcp.CallToolResult, any, error) {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: strconv.FormatBool(EndInteraction(in.Response))}},
	}, nil, nil
}

// EndInteraction reports the end_interaction flag of a detect intent result.
// A missing or non-boolean flag is false.
func EndInteraction(result map[string]any) bool {
	v, _ := result["end_interaction"].(bool)
	return v
}

func sessionOrNew(id string) string {
	if id == "" {
		return cx.NewSessionID()
	}

	return id
}
