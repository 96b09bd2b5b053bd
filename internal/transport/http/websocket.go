package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/sprintsense/balance-service/internal/transport/ws"
	"github.com/sprintsense/balance-service/pkg/logger/sl"
)

// handleBalanceSocket subscribes the caller to live balance updates of a
// sprint. The client first receives the current metrics, then every
// balance_update broadcast for the sprint.
func (s *Server) handleBalanceSocket(w http.ResponseWriter, r *http.Request) {
	const op = "internal.transport.http.handleBalanceSocket"

	sprintID, err := sprintIDParam(r)
	if err != nil {
		s.handleServiceError(w, r, op, err)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// The upgrader has already replied with an HTTP error.
		s.log.Warn("websocket upgrade failed", slog.String("op", op), sl.Err(err))
		return
	}

	clientID := getRequestID(r.Context())
	if clientID == "" {
		clientID = uuid.NewString()
	}

	room := sprintID.String()
	client := ws.NewClient(clientID, conn, s.wsWriteTimeout)
	log := s.log.With(slog.String("op", op), slog.String("sprint_id", room), slog.String("client_id", clientID))

	// Join the room before the snapshot is computed so no update is lost in
	// between. Updates received meanwhile are written after initial_balance.
	client.Hold()

	if !s.hub.Register(room, client) {
		log.Warn("websocket hub is closed, dropping client")
		return
	}
	defer func() {
		s.hub.Unregister(room, client)
		_ = client.Close()
	}()

	s.configureReads(conn)

	metrics, err := s.balanceService.GetSprintBalance(r.Context(), sprintID)
	if err != nil {
		_, message := classifyError(err)
		log.Warn("initial balance failed", sl.Err(err))

		s.hub.Unregister(room, client)

		if sendErr := client.Release(ws.NewErrorMessage(message)); sendErr != nil {
			log.Debug("failed to report initial balance error", sl.Err(sendErr))
		}

		return
	}

	if err := client.Release(ws.Message{Type: ws.TypeInitialBalance, Data: metrics}); err != nil {
		log.Warn("failed to send initial balance", sl.Err(err))
		return
	}

	if s.wsPingPeriod > 0 {
		done := make(chan struct{})
		defer close(done)

		go s.keepAlive(log, client, done)
	}

	log.Info("websocket client subscribed")

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			var netErr net.Error

			switch {
			case websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway):
				log.Warn("websocket closed unexpectedly", sl.Err(err))
			case errors.As(err, &netErr) && netErr.Timeout():
				log.Info("websocket client timed out")
			default:
				log.Info("websocket client disconnected")
			}

			return
		}

		reply, broadcast := s.handleSocketMessage(r, log, sprintID, payload)

		if broadcast != nil {
			s.hub.Broadcast(room, *broadcast)
		}

		if reply != nil {
			if err := client.Send(*reply); err != nil {
				if !errors.Is(err, ws.ErrClientClosed) {
					log.Warn("failed to reply to websocket client", sl.Err(err))
				}

				return
			}
		}
	}
}

// configureReads bounds inbound frames and arms the read deadline that
// pongs extend.
func (s *Server) configureReads(conn *websocket.Conn) {
	if s.wsReadLimit > 0 {
		conn.SetReadLimit(s.wsReadLimit)
	}

	if s.wsPongWait <= 0 {
		return
	}

	_ = conn.SetReadDeadline(time.Now().Add(s.wsPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(s.wsPongWait))
	})
}

// keepAlive pings the client until done is closed. A failed ping closes
// the client, which ends its read loop.
func (s *Server) keepAlive(log *slog.Logger, client *ws.Client, done <-chan struct{}) {
	ticker := time.NewTicker(s.wsPingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if err := client.Ping(); err != nil {
				if !errors.Is(err, ws.ErrClientClosed) {
					log.Debug("websocket ping failed", sl.Err(err))
				}

				_ = client.Close()

				return
			}
		}
	}
}

// handleSocketMessage processes one client frame and returns the direct
// reply and the room broadcast it produces, either of which may be nil.
// Failures become error replies so the connection stays open.
func (s *Server) handleSocketMessage(
	r *http.Request,
	log *slog.Logger,
	sprintID uuid.UUID,
	payload []byte,
) (*ws.Message, *ws.Message) {
	var in ws.Inbound
	if err := json.Unmarshal(payload, &in); err != nil {
		msg := ws.NewErrorMessage("message must be a JSON object with a type field")
		return &msg, nil
	}

	switch in.Type {
	case ws.TypeRefresh:
		metrics, err := s.balanceService.RefreshSprintBalance(r.Context(), sprintID)
		if err != nil {
			_, message := classifyError(err)
			log.Warn("websocket refresh failed", sl.Err(err))

			msg := ws.NewErrorMessage(message)

			return &msg, nil
		}

		return nil, &ws.Message{Type: ws.TypeBalanceUpdate, Data: metrics}
	case ws.TypePing:
		return &ws.Message{Type: ws.TypePong}, nil
	default:
		msg := ws.NewErrorMessage(fmt.Sprintf("unknown message type %q", in.Type))
		return &msg, nil
	}
}
