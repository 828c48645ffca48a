package analytics

import (
	"bytes"

	"github.com/gofiber/fiber/v2"
)

// NewServer serves a built report: the HTML page at /, machine-readable
// aggregates at /api/summary, and a health probe.
func NewServer(rep *Report) *fiber.App {
	app := fiber.New(fiber.Config{DisableStartupMessage: true})

	app.Get("/", func(c *fiber.Ctx) error {
		var buf bytes.Buffer
		if err := rep.Render(&buf); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
		return c.Send(buf.Bytes())
	})

	app.Get("/api/summary", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"income":       rep.Summary.Income,
			"outcome":      rep.Summary.Outcome,
			"balance":      rep.Summary.Balance(),
			"transactions": rep.Count,
			"categories":   rep.Categories,
		})
	})

	app.Get("/api/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	return app
}
