package middleware

import (
	"go-restaurant-pos/src/infrastructure/log"
	"go-restaurant-pos/src/services/order/domain"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const CorrelationHeader = "X-Correlation-Id"

// AccessLog gives every request a correlation id and writes one log line per
// response. Handler errors are rendered here so the logged status is final.
func AccessLog(logger log.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		id := c.Get(CorrelationHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(CorrelationHeader, id)
		c.SetUserContext(logger.WithCorrelationID(c.UserContext(), id))

		if chainErr := c.Next(); chainErr != nil {
			if err := c.App().ErrorHandler(c, chainErr); err != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}

		role := ""
		if actor, ok := domain.ActorFromContext(c.UserContext()); ok {
			role = actor.String()
		}
		logger.Response(c.UserContext(), &log.Field{
			URL:            c.OriginalURL(),
			HostName:       c.Hostname(),
			HTTPStatusCode: c.Response().StatusCode(),
			Duration:       time.Since(start).Milliseconds(),
			HTTPMethod:     c.Method(),
			Role:           role,
			Message:        "Request completed",
			Extra:          map[string]any{"ClientIp": c.IP()},
		})
		return nil
	}
}
