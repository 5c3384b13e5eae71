package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	"github.com/YevheniiGera/dialogflow-cx-mcp/internal/cx"
	"github.com/YevheniiGera/dialogflow-cx-mcp/internal/logging"
	"github.com/YevheniiGera/dialogflow-cx-mcp/internal/tools"
)

var (
	projectID       string
	location        string
	agentID         string
	credentialsPath string
	timeout         time.Duration
	verbose         bool
	logFormat       string
)

var rootCmd = &cobra.Command{
	Use:   "dialogflow-cx-mcp",
	Short: "Dialogflow CX intent detection as MCP tools",
	Long: `Serves a Dialogflow CX agent as Model Context Protocol tools on stdin/stdout.

The agent is set with the initialize_dialogflow tool, or at start-up when
--project and --agent (or DIALOGFLOW_PROJECT_ID and DIALOGFLOW_AGENT_ID) are given.
Logs are written to stderr.`,
	SilenceUsage: true,
	RunE:         runStdio,
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&projectID, "project", os.Getenv("DIALOGFLOW_PROJECT_ID"), "Google Cloud project ID")
	flags.StringVar(&location, "location", envOr("DIALOGFLOW_LOCATION", "global"), "location of the agent")
	flags.StringVar(&agentID, "agent", os.Getenv("DIALOGFLOW_AGENT_ID"), "Dialogflow CX agent ID")
	flags.StringVar(&credentialsPath, "credentials", os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"), "service account credentials file")
	flags.DurationVar(&timeout, "timeout", tools.DefaultTimeout, "timeout of each Dialogflow call")
	flags.BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	flags.StringVar(&logFormat, "log-format", "text", "log format: text or json")
}

func runStdio(cmd *cobra.Command, _ []string) error {
	logger, err := newLogger()
	if err != nil {
		return err
	}

	ctx := cmd.Context()

	server := tools.NewServer(tools.Options{
		Logger:  logger,
		Timeout: timeout,
	})

	if config, ok := agentConfig(projectID, location, agentID, credentialsPath); ok {
		agent, err := cx.Dial(ctx, config, logger)
		if err != nil {
			return err
		}
		server.SetAgent(agent)
		logger.Info("agent configured at start-up", "project", config.ProjectID, "location", config.Location, "agent", config.AgentID)
	}

	return server.Run(ctx, &mcp.StdioTransport{})
}

func newLogger() (*log.Logger, error) {
	return logging.New(os.Stderr, logging.Options{Verbose: verbose, Format: logFormat})
}

// agentConfig reports whether enough was given to dial an agent at start-up.
func agentConfig(project, loc, agent, credentials string) (cx.AgentConfig, bool) {
	if project == "" || agent == "" {
		return cx.AgentConfig{}, false
	}

	if loc == "" {
		loc = "global"
	}

	return cx.AgentConfig{
		ProjectID:       project,
		Location:        loc,
		AgentID:         agent,
		CredentialsPath: credentials,
	}, true
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return fallback
}
