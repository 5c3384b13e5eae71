package cx

import (
	"fmt"

	"github.com/google/uuid"
)

// AgentConfig identifies a Dialogflow CX agent.
type AgentConfig struct {
	ProjectID       string
	Location        string
	AgentID         string
	CredentialsPath string
}

func (c AgentConfig) AgentPath() string {
	return fmt.Sprintf("projects/%s/locations/%s/agents/%s", c.ProjectID, c.Location, c.AgentID)
}

// SessionPath returns the fully qualified session name for sessionID.
// A new random id is used when sessionID is empty.
func (c AgentConfig) SessionPath(sessionID string) string {
	if sessionID == "" {
		sessionID = NewSessionID()
	}

	return fmt.Sprintf("%s/sessions/%s", c.AgentPath(), sessionID)
}

// Endpoint returns the API endpoint serving the agent's location.
func (c AgentConfig) Endpoint() string {
	if c.Location == "" || c.Location == "global" {
		return "dialogflow.googleapis.com:443"
	}

	return fmt.Sprintf("%s-dialogflow.googleapis.com:443", c.Location)
}

func NewSessionID() string {
	return uuid.New().String()
}
