// Package server is the read-only HTTP view of the portfolio.
package server

import (
	"bytes"
	"context"
	"net/http"
	"time"

	"github.com/etnz/reserve"
	"github.com/etnz/reserve/date"
	"github.com/etnz/reserve/renderer"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/rs/zerolog"
)

// Source provides the report to display.
type Source interface {
	Report(ctx context.Context, period date.Period) *renderer.Report
}

// New returns the fiber application serving src.
//
// Routes:
//
//	GET /                   HTML report
//	GET /chart.png          price chart
//	GET /api/summary        snapshot
//	GET /api/transactions   transaction log
//	GET /api/prices         bucketed price series
//
// All routes accept ?period=daily|weekly. Any other method is refused.
func New(src Source, logger zerolog.Logger) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "rsv",
		DisableStartupMessage: true,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{"error": err.Error()})
		},
	})
	h := &handlers{src: src}

	app.Use(recover.New())
	app.Use(requestLogger(logger))
	app.Use(func(c *fiber.Ctx) error {
		if c.Method() != fiber.MethodGet && c.Method() != fiber.MethodHead {
			return fiber.NewError(fiber.StatusMethodNotAllowed, "read-only view")
		}
		return c.Next()
	})

	app.Get("/", h.page)
	app.Get("/chart.png", h.chart)
	api := app.Group("/api")
	api.Get("/summary", h.summary)
	api.Get("/transactions", h.transactions)
	api.Get("/prices", h.prices)
	return app
}

func requestLogger(logger zerolog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		logger.Debug().
			Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", c.Response().StatusCode()).
			Dur("elapsed", time.Since(start)).
			Msg("request")
		return err
	}
}

type handlers struct {
	src Source
}

func (h *handlers) report(c *fiber.Ctx) (*renderer.Report, error) {
	period, err := date.ParsePeriod(c.Query("period"))
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	return h.src.Report(c.UserContext(), period), nil
}

func (h *handlers) page(c *fiber.Ctx) error {
	r, err := h.report(c)
	if err != nil {
		return err
	}
	if len(r.Points) >= 2 {
		r.ChartURL = "/chart.png?period=" + r.Period.String()
	}
	page, err := renderer.HTML(r.Symbol+" Portfolio", renderer.RenderReport(r))
	if err != nil {
		return err
	}
	c.Type("html", "utf-8")
	return c.Send(page)
}

func (h *handlers) chart(c *fiber.Ctx) error {
	r, err := h.report(c)
	if err != nil {
		return err
	}
	if len(r.Points) < 2 {
		return fiber.NewError(fiber.StatusServiceUnavailable, "price history is not available yet")
	}
	var buf bytes.Buffer
	if err := renderer.Chart(&buf, r.Points, r.Symbol+" "+r.Period.String()); err != nil {
		return err
	}
	c.Set(fiber.HeaderContentType, "image/png")
	return c.Send(buf.Bytes())
}

func (h *handlers) summary(c *fiber.Ctx) error {
	r, err := h.report(c)
	if err != nil {
		return err
	}
	return c.JSON(r.Snapshot)
}

func (h *handlers) transactions(c *fiber.Ctx) error {
	r, err := h.report(c)
	if err != nil {
		return err
	}
	data, err := reserve.MarshalLedger(reserve.NewLedger(r.Transactions...))
	if err != nil {
		return err
	}
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.Send(data)
}

type pricePoint struct {
	Date  date.Date     `json:"date"`
	Price reserve.Money `json:"price"`
	Buys  int           `json:"buys"`
}

func (h *handlers) prices(c *fiber.Ctx) error {
	r, err := h.report(c)
	if err != nil {
		return err
	}
	if r.Loading {
		c.Status(http.StatusAccepted)
	}
	points := make([]pricePoint, 0, len(r.Points))
	for _, p := range r.Points {
		points = append(points, pricePoint{Date: p.Date, Price: p.Price, Buys: p.Buys})
	}
	return c.JSON(points)
}
