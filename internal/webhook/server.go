package webhook

import (
	"errors"

	"github.com/bytedance/sonic"
	"github.com/charmbracelet/log"
	"github.com/gofiber/fiber/v2"
)

// NewApp serves the webhook helpers over HTTP:
//
//	POST /webhook/parse  raw CX webhook request -> ParsedRequest
//	POST /webhook/build  fulfillment description -> Response
//	GET  /healthz
func NewApp(logger *log.Logger) *fiber.App {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		JSONEncoder:           sonic.Marshal,
		JSONDecoder:           requestJSON.Unmarshal,
	})

	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})

	app.Post("/webhook/parse", func(c *fiber.Ctx) error {
		req, err := ParseRequest(c.Body())
		if err != nil {
			logger.Warn("invalid webhook request", "err", err)
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": ErrorMessage(err)})
		}

		logger.Debug("parsed webhook request", "session", req.SessionID, "intent", req.IntentName)

		return c.JSON(req)
	})

	app.Post("/webhook/build", func(c *fiber.Ctx) error {
		desc := map[string]any{}
		if err := c.BodyParser(&desc); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}

		return c.JSON(BuildResponse(desc))
	})

	return app
}

// ErrorMessage formats err for the error field of a JSON reply.
func ErrorMessage(err error) string {
	var perr *ParseError
	if errors.As(err, &perr) {
		return "Error parsing webhook request: " + perr.Err.Error()
	}

	return err.Error()
}
