package controllers

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"go-restaurant-pos/src/controllers/middleware"
	"go-restaurant-pos/src/infrastructure/log"
	"go-restaurant-pos/src/services/events"
	"go-restaurant-pos/src/services/notification"
	"slices"
	"time"

	"github.com/gofiber/fiber/v2"
)

const defaultHeartbeat = 15 * time.Second

// StreamController serves the live order feed as server-sent events.
type StreamController struct {
	hub        *notification.Hub
	logger     log.Logger
	bufferSize int
	heartbeat  time.Duration
}

func NewStreamController(hub *notification.Hub, logger log.Logger, bufferSize int) *StreamController {
	return &StreamController{
		hub:        hub,
		logger:     logger,
		bufferSize: bufferSize,
		heartbeat:  defaultHeartbeat,
	}
}

// Route must be called before OrderController.Route so that /stream is not
// matched as an order id.
func (s *StreamController) Route(app *fiber.App) {
	app.Get("/api/v1/orders/stream", middleware.Authenticate(), s.Stream)
}

// Stream godoc
// @Summary      Live order feed
// @Description  Server-sent events for every committed order change. Events published before the connection are not replayed.
// @Tags         orders
// @Produce      text/event-stream
// @Param        X-Staff-Role  header  string  true   "Staff role"  Enums(cashier, kitchen, admin)
// @Param        types         query   string  false  "Comma separated event types to receive"
// @Success      200  {string}  string  "event stream"
// @Failure      400  {object}  models.ErrorResponse
// @Failure      401  {object}  models.ErrorResponse
// @Router       /api/v1/orders/stream [get]
func (s *StreamController) Stream(c *fiber.Ctx) error {
	wanted := splitQuery(c.Query("types"))
	for _, eventType := range wanted {
		if !slices.Contains(events.Types, eventType) {
			return fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("unknown event type %q", eventType))
		}
	}

	session := notification.NewChannelSession(s.bufferSize)
	if err := s.hub.Subscribe(session); err != nil {
		return err
	}
	ctx := c.UserContext()
	s.logger.InfoWithExtra(ctx, "Viewer connected", map[string]any{"SessionId": session.ID()})

	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")
	c.Set("X-Accel-Buffering", "no")

	c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		defer func() {
			s.hub.Unsubscribe(session.ID())
			s.logger.InfoWithExtra(ctx, "Viewer disconnected", map[string]any{"SessionId": session.ID()})
		}()
		s.pump(ctx, w, session, wanted)
	})
	return nil
}

func (s *StreamController) pump(ctx context.Context, w *bufio.Writer, session *notification.ChannelSession, wanted []string) {
	ticker := time.NewTicker(s.heartbeat)
	defer ticker.Stop()

	if !writeFrame(w, "retry: 3000\n\n") {
		return
	}
	for {
		select {
		case <-session.Done():
			s.flushPending(ctx, w, session, wanted)
			return
		case <-ticker.C:
			if !writeFrame(w, ": heartbeat\n\n") {
				return
			}
		case event := <-session.Events():
			if !s.writeEvent(ctx, w, event, wanted) {
				return
			}
		}
	}
}

// flushPending writes whatever was buffered before the session closed.
func (s *StreamController) flushPending(ctx context.Context, w *bufio.Writer, session *notification.ChannelSession, wanted []string) {
	for {
		select {
		case event := <-session.Events():
			if !s.writeEvent(ctx, w, event, wanted) {
				return
			}
		default:
			return
		}
	}
}

func (s *StreamController) writeEvent(ctx context.Context, w *bufio.Writer, event events.OrderEvent, wanted []string) bool {
	if len(wanted) > 0 && !slices.Contains(wanted, event.Type) {
		return true
	}
	data, err := json.Marshal(event)
	if err != nil {
		s.logger.Exception(ctx, "Failed to encode order event", err)
		return true
	}
	return writeFrame(w, fmt.Sprintf("id: %d\nevent: %s\ndata: %s\n\n", event.Sequence, event.Type, data))
}

// writeFrame reports false once the client has gone away.
func writeFrame(w *bufio.Writer, frame string) bool {
	if _, err := w.WriteString(frame); err != nil {
		return false
	}
	return w.Flush() == nil
}
