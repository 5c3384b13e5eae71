package cx

import (
	"context"
	"errors"
	"fmt"
	"os"

	dialogflow "cloud.google.com/go/dialogflow/cx/apiv3"
	"cloud.google.com/go/dialogflow/cx/apiv3/cxpb"
	"github.com/charmbracelet/log"
	"github.com/googleapis/gax-go/v2"
	"google.golang.org/api/option"
	"google.golang.org/grpc/status"
)

const DefaultLanguageCode = "en-US"

// SessionsAPI is the subset of the CX sessions client used here.
// *dialogflow.SessionsClient satisfies it.
type SessionsAPI interface {
	DetectIntent(ctx context.Context, req *cxpb.DetectIntentRequest, opts ...gax.CallOption) (*cxpb.DetectIntentResponse, error)
	MatchIntent(ctx context.Context, req *cxpb.MatchIntentRequest, opts ...gax.CallOption) (*cxpb.MatchIntentResponse, error)
	Close() error
}

// Agent is a connection to one Dialogflow CX agent.
type Agent struct {
	config   AgentConfig
	sessions SessionsAPI
	logger   *log.Logger
}

func NewAgent(config AgentConfig, sessions SessionsAPI, logger *log.Logger) *Agent {
	return &Agent{
		config:   config,
		sessions: sessions,
		logger:   logger.With("agent", config.AgentID),
	}
}

// Dial opens a sessions client for the agent. A credentials path that does not
// exist falls back to application default credentials.
func Dial(ctx context.Context, config AgentConfig, logger *log.Logger) (*Agent, error) {
	opts := []option.ClientOption{option.WithEndpoint(config.Endpoint())}

	if config.CredentialsPath != "" {
		if _, err := os.Stat(config.CredentialsPath); err == nil {
			opts = append(opts, option.WithCredentialsFile(config.CredentialsPath))
		} else {
			logger.Warn("credentials file not found, using default credentials", "path", config.CredentialsPath)
		}
	}

	sessions, err := dialogflow.NewSessionsClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Dialogflow CX sessions client. %w", err)
	}

	return NewAgent(config, sessions, logger), nil
}

func (a *Agent) Config() AgentConfig {
	return a.config
}

// DetectText sends a text query in the given session.
func (a *Agent) DetectText(ctx context.Context, sessionID, text, languageCode string) (*IntentResult, error) {
	input := &cxpb.QueryInput{
		Input:        &cxpb.QueryInput_Text{Text: &cxpb.TextInput{Text: text}},
		LanguageCode: languageOrDefault(languageCode),
	}

	return a.detect(ctx, sessionID, input)
}

// DetectAudio sends a single utterance of audio in the given session.
func (a *Agent) DetectAudio(ctx context.Context, sessionID string, audio *AudioInput, languageCode string) (*IntentResult, error) {
	input := &cxpb.QueryInput{
		Input:        audio.queryInput(),
		LanguageCode: languageOrDefault(languageCode),
	}

	return a.detect(ctx, sessionID, input)
}

func (a *Agent) detect(ctx context.Context, sessionID string, input *cxpb.QueryInput) (*IntentResult, error) {
	req := &cxpb.DetectIntentRequest{
		Session:    a.config.SessionPath(sessionID),
		QueryInput: input,
	}

	a.logger.Debug("detect intent", "session", req.Session)

	resp, err := a.sessions.DetectIntent(ctx, req)
	if err != nil {
		return nil, remoteError(err)
	}

	return NormalizeQueryResult(resp.GetQueryResult()), nil
}

// MatchIntent returns the candidate intents for text without changing the session state.
func (a *Agent) MatchIntent(ctx context.Context, sessionID, text, languageCode string) (*MatchResult, error) {
	req := &cxpb.MatchIntentRequest{
		Session: a.config.SessionPath(sessionID),
		QueryInput: &cxpb.QueryInput{
			Input:        &cxpb.QueryInput_Text{Text: &cxpb.TextInput{Text: text}},
			LanguageCode: languageOrDefault(languageCode),
		},
	}

	a.logger.Debug("match intent", "session", req.Session)

	resp, err := a.sessions.MatchIntent(ctx, req)
	if err != nil {
		return nil, remoteError(err)
	}

	return NormalizeMatches(resp), nil
}

func (a *Agent) Close() error {
	if a.sessions == nil {
		return nil
	}

	return a.sessions.Close()
}

func languageOrDefault(code string) string {
	if code == "" {
		return DefaultLanguageCode
	}

	return code
}

// remoteError keeps the gRPC code and message of a failed call and drops the
// "rpc error:" prefix.
func remoteError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return err
	}

	st, ok := status.FromError(err)
	if !ok {
		return err
	}

	return fmt.Errorf("%s: %s", st.Code(), st.Message())
}
