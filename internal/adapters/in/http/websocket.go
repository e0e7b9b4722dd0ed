package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"dispatch/internal/core/application/notifier"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4 * 1024
	outboxSize     = 64
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The gateway in front of the service enforces origins.
	CheckOrigin: func(*http.Request) bool { return true },
}

// SubscribeRequest is a frame a client sends to widen the subscription of an
// open connection.
type SubscribeRequest struct {
	Subscribe string `json:"subscribe"`
}

// SubscribeResponse acknowledges or rejects a SubscribeRequest.
type SubscribeResponse struct {
	Subscribed string `json:"subscribed,omitempty"`
	Error      string `json:"error,omitempty"`
}

// Subscribe handles GET /api/v1/ws?filter=. It upgrades the connection and
// streams every matching event as a JSON text frame. A connection whose
// subscription is dropped is closed with code 1013; the client reconnects
// and rereads the entities it cares about.
func (s *Server) Subscribe(ctx echo.Context) error {
	actor := actorOf(ctx)

	filterExpr := ctx.QueryParam("filter")
	filter, err := subscriptionFilter(filterExpr, actor)
	if err != nil {
		return s.fail(ctx, err)
	}

	session, err := s.notifier.Connect(actor.ID().String())
	if err != nil {
		return s.fail(ctx, err)
	}
	defer session.Close()

	// One subscription per connection keeps a single ordered stream per
	// entity however many filters the client adds.
	filters := notifier.NewAnyOf(filter)
	sub, err := session.Subscribe(filters)
	if err != nil {
		return s.fail(ctx, err)
	}

	conn, err := upgrader.Upgrade(ctx.Response(), ctx.Request(), nil)
	if err != nil {
		// The upgrader has already answered the request.
		s.logger.Warn("websocket upgrade failed", "client_id", session.ClientID(), "error", err)
		return nil
	}

	client := newWSClient(conn, session, filters, actor, s.logger)
	client.logger.Info("websocket connected", "filter", filterExpr)

	go client.forward(sub)
	go client.writePump()
	client.readPump()

	client.logger.Info("websocket disconnected", "reason", context.Cause(client.ctx))
	return nil
}

// subscriptionFilter parses expr for actor. Drivers are limited to events
// concerning them and to their own conversations.
func subscriptionFilter(expr string, actor kernel.Actor) (notifier.Filter, error) {
	expr = strings.TrimSpace(expr)
	if actor.Role() == kernel.RoleDriver {
		if expr == "" {
			expr = "mine"
		}
		if expr != "mine" && !strings.HasPrefix(expr, "conversation:") {
			return nil, errs.NewForbiddenError(actor.Role().String(), "subscribe to "+expr)
		}
	}

	filter, err := notifier.ParseFilter(expr, actor.ID().String())
	if err != nil {
		return nil, errs.NewValueIsInvalidErrorWithCause("filter", err)
	}
	return filter, nil
}

type wsClient struct {
	conn    *websocket.Conn
	session *notifier.Session
	filters *notifier.AnyOf
	actor   kernel.Actor
	logger  *slog.Logger

	out    chan any
	ctx    context.Context
	cancel context.CancelCauseFunc
}

func newWSClient(
	conn *websocket.Conn,
	session *notifier.Session,
	filters *notifier.AnyOf,
	actor kernel.Actor,
	logger *slog.Logger,
) *wsClient {
	ctx, cancel := context.WithCancelCause(context.Background())
	return &wsClient{
		conn:    conn,
		session: session,
		filters: filters,
		actor:   actor,
		logger:  logger.With("client_id", session.ClientID()),
		out:     make(chan any, outboxSize),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// forward copies the subscription into the outbox. When the notifier ends
// the subscription the whole connection goes down with it.
func (c *wsClient) forward(sub *notifier.Subscription) {
	for e := range sub.Events() {
		select {
		case c.out <- e:
		case <-c.ctx.Done():
			return
		}
	}
	if err := sub.Err(); err != nil && !errors.Is(err, notifier.ErrSubscriptionClosed) {
		c.cancel(err)
	}
}

func (c *wsClient) send(frame any) {
	select {
	case c.out <- frame:
	case <-c.ctx.Done():
	}
}

// readPump handles subscribe frames and pongs until the peer goes away.
func (c *wsClient) readPump() {
	defer c.session.Close()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var req SubscribeRequest
		if err := c.conn.ReadJSON(&req); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Warn("websocket read failed", "error", err)
			}
			c.cancel(err)
			return
		}
		if c.ctx.Err() != nil {
			return
		}
		c.send(c.subscribe(req.Subscribe))
	}
}

func (c *wsClient) subscribe(expr string) SubscribeResponse {
	filter, err := subscriptionFilter(expr, c.actor)
	if err != nil {
		return SubscribeResponse{Error: err.Error()}
	}
	c.filters.Add(filter)
	return SubscribeResponse{Subscribed: expr}
}

// writePump owns every write to the connection.
func (c *wsClient) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case <-c.ctx.Done():
			c.close(context.Cause(c.ctx))
			return
		case frame := <-c.out:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(frame); err != nil {
				c.cancel(err)
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.cancel(err)
				return
			}
		}
	}
}

func (c *wsClient) close(cause error) {
	code := websocket.CloseNormalClosure
	switch {
	case errors.Is(cause, notifier.ErrSubscriberOverflow):
		code = websocket.CloseTryAgainLater
	case errors.Is(cause, notifier.ErrNotifierStopped):
		code = websocket.CloseGoingAway
	}
	msg := websocket.FormatCloseMessage(code, cause.Error())
	_ = c.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
}
