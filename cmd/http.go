package cmd

import (
	"github.com/spf13/cobra"

	"github.com/YevheniiGera/dialogflow-cx-mcp/internal/webhook"
)

var listenAddr string

var httpCmd = &cobra.Command{
	Use:   "http",
	Short: "Serve the webhook helpers over HTTP",
	Long: `Serves the webhook request parser and response builder over HTTP:

  POST /webhook/parse   CX webhook request in, parsed request out
  POST /webhook/build   fulfillment description in, CX webhook response out
  GET  /healthz`,
	RunE: runHTTP,
}

func init() {
	httpCmd.Flags().StringVar(&listenAddr, "addr", envOr("WEBHOOK_LISTEN_ADDR", ":3000"), "listen address")
	rootCmd.AddCommand(httpCmd)
}

func runHTTP(cmd *cobra.Command, _ []string) error {
	logger, err := newLogger()
	if err != nil {
		return err
	}

	app := webhook.NewApp(logger)

	go func() {
		<-cmd.Context().Done()
		if err := app.Shutdown(); err != nil {
			logger.Error("shutdown failed", "err", err)
		}
	}()

	logger.Info("webhook helpers listening", "addr", listenAddr)

	return app.Listen(listenAddr)
}
