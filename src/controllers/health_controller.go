package controllers

import (
	"context"
	"sort"
	"time"

	"github.com/gofiber/fiber/v2"
)

// HealthCheck reports whether one dependency is reachable.
type HealthCheck func(ctx context.Context) error

type HealthController struct {
	checks map[string]HealthCheck
}

func NewHealthController(checks map[string]HealthCheck) *HealthController {
	return &HealthController{checks: checks}
}

func (c *HealthController) Route(app *fiber.App) {
	app.Get("/api/healthCheck", c.Health)
}

// Health godoc
// @Summary      Service health
// @Tags         health
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      503  {object}  map[string]interface{}
// @Router       /api/healthCheck [get]
func (c *HealthController) Health(ctx *fiber.Ctx) error {
	checkCtx, cancel := context.WithTimeout(ctx.UserContext(), 2*time.Second)
	defer cancel()

	names := make([]string, 0, len(c.checks))
	for name := range c.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	healthy := true
	dependencies := fiber.Map{}
	for _, name := range names {
		if err := c.checks[name](checkCtx); err != nil {
			healthy = false
			dependencies[name] = "unhealthy: " + err.Error()
			continue
		}
		dependencies[name] = "healthy"
	}

	status := fiber.StatusOK
	overall := "healthy"
	if !healthy {
		status = fiber.StatusServiceUnavailable
		overall = "unhealthy"
	}
	return ctx.Status(status).JSON(fiber.Map{
		"status":       overall,
		"service":      "go-restaurant-pos",
		"dependencies": dependencies,
	})
}
