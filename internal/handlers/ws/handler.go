package ws

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/KirkDiggler/trickroom/internal/common/logger"
	"github.com/KirkDiggler/trickroom/internal/common/uuid"
	"github.com/KirkDiggler/trickroom/internal/events"
	"github.com/KirkDiggler/trickroom/internal/services/game"
	"github.com/KirkDiggler/trickroom/internal/services/messaging"
)

// Handler serves the HTTP API and the websocket game protocol
type Handler struct {
	gameService    game.Service
	messenger      messaging.Service
	hub            *Hub
	uuid           uuid.UUID
	allowedOrigins []string
	allowAll       bool
	upgrader       websocket.Upgrader
	logger         *zap.Logger
}

// NewHandler creates a new handler
func NewHandler(cfg *Config) (*Handler, error) {
	if cfg == nil {
		return nil, ErrNilConfig
	}
	if cfg.GameService == nil {
		return nil, ErrNilGameService
	}
	if cfg.Messenger == nil {
		return nil, ErrNilMessenger
	}
	if cfg.Hub == nil {
		return nil, ErrNilHub
	}
	if cfg.UUID == nil {
		return nil, ErrNilUUID
	}
	if cfg.Logger == nil {
		return nil, ErrNilLogger
	}

	h := &Handler{
		gameService: cfg.GameService,
		messenger:   cfg.Messenger,
		hub:         cfg.Hub,
		uuid:        cfg.UUID,
		logger:      cfg.Logger,
	}
	for _, origin := range cfg.AllowedOrigins {
		if origin == "*" {
			h.allowAll = true
			continue
		}
		h.allowedOrigins = append(h.allowedOrigins, origin)
	}
	if len(h.allowedOrigins) == 0 {
		h.allowAll = true
	}

	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     h.checkOrigin,
	}

	return h, nil
}

// Router builds the gin engine with every route registered
func (h *Handler) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), logger.RequestLogger(h.logger))

	corsConfig := cors.Config{
		AllowMethods:  []string{"GET", "POST"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	if h.allowAll {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = h.allowedOrigins
	}
	router.Use(cors.New(corsConfig))

	router.GET("/healthz", h.healthz)
	router.POST("/api/sessions", h.createSession)
	router.GET("/api/sessions/:code/standings", h.getStandings)
	router.GET("/ws", h.serveWS)

	return router
}

func (h *Handler) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if h.allowAll || origin == "" {
		return true
	}
	for _, allowed := range h.allowedOrigins {
		if origin == allowed {
			return true
		}
	}
	return false
}

func (h *Handler) healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) createSession(c *gin.Context) {
	var req createSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.writeHTTPError(c, HandlerError("roomSize must be a positive integer"))
		return
	}

	out, err := h.gameService.CreateSession(c.Request.Context(), &game.CreateSessionInput{
		RoomSize: req.RoomSize,
	})
	if err != nil {
		h.writeHTTPError(c, err)
		return
	}

	c.JSON(http.StatusCreated, createSessionResponse{
		Code:       out.Code,
		AdminToken: out.AdminToken,
	})
}

func (h *Handler) getStandings(c *gin.Context) {
	out, err := h.gameService.GetStandings(c.Request.Context(), &game.GetStandingsInput{
		SessionCode: c.Param("code"),
	})
	if err != nil {
		h.writeHTTPError(c, err)
		return
	}

	c.JSON(http.StatusOK, standingsResponse{Current: out.Current, History: out.History})
}

func (h *Handler) writeHTTPError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	var handlerErr HandlerError
	switch {
	case errors.As(err, &handlerErr):
		status = http.StatusBadRequest
	default:
		switch game.Classify(err) {
		case game.ClassNotFound:
			status = http.StatusNotFound
		case game.ClassForbidden:
			status = http.StatusForbidden
		case game.ClassInvalidState:
			status = http.StatusConflict
		case game.ClassMalformedInput:
			status = http.StatusBadRequest
		}
	}

	if status == http.StatusInternalServerError {
		h.logger.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
	}

	c.JSON(status, h.errorPayload(c.Request.Context(), err))
}

// errorType maps an error to the failure reason clients are shown
func errorType(err error) messaging.ErrorType {
	var handlerErr HandlerError
	if errors.As(err, &handlerErr) {
		return messaging.ErrorTypeInvalidRequest
	}
	return game.ErrorType(err)
}

func (h *Handler) errorPayload(ctx context.Context, err error) events.ErrorPayload {
	kind := errorType(err)
	payload := events.ErrorPayload{Code: string(kind)}

	msg, msgErr := h.messenger.GetErrorMessage(ctx, &messaging.GetErrorMessageInput{ErrorType: kind})
	if msgErr == nil {
		payload.Reason = msg.Reason
		payload.Message = msg.Message
	} else {
		payload.Reason = err.Error()
	}
	return payload
}

func (h *Handler) serveWS(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// the upgrader has already written an HTTP error
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	cl := newClient(conn, h.uuid.NewUUID())
	h.logger.Debug("websocket connected", zap.String("handle", cl.handle))

	go cl.writePump()
	h.readPump(c.Request.Context(), cl)
}

// readPump handles frames until the connection drops, then releases the
// participant the connection was bound to
func (h *Handler) readPump(ctx context.Context, c *client) {
	defer func() {
		h.disconnect(c)
		close(c.send)
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Info("websocket closed unexpectedly",
					zap.String("handle", c.handle),
					zap.Error(err))
			}
			return
		}

		var in inboundFrame
		if err := json.Unmarshal(data, &in); err != nil {
			h.replyError(ctx, c, "", ErrMalformedFrame)
			continue
		}

		h.dispatch(ctx, c, in)
	}
}

func (h *Handler) disconnect(c *client) {
	h.hub.unbind(c)
	if !c.joined() {
		return
	}

	out, err := h.gameService.Disconnect(context.Background(), &game.DisconnectInput{
		SessionCode:   c.sessionCode,
		ParticipantID: c.participantID,
		Handle:        c.handle,
	})
	if err != nil {
		if !errors.Is(err, game.ErrSessionNotFound) {
			h.logger.Warn("failed to release participant",
				zap.String("session", c.sessionCode),
				zap.String("participant", c.participantID),
				zap.Error(err))
		}
		return
	}

	h.logger.Debug("websocket disconnected",
		zap.String("session", c.sessionCode),
		zap.String("participant", c.participantID),
		zap.Bool("removed", out.Removed))
}

// dispatch runs one request and answers it on the same connection
func (h *Handler) dispatch(ctx context.Context, c *client, in inboundFrame) {
	var (
		replyType string
		reply     any
		err       error
	)

	switch in.Type {
	case FrameJoin:
		replyType = FrameJoined
		reply, err = h.join(ctx, c, in.Data)
	case FrameJoinAdmin:
		replyType = FrameAdminJoined
		reply, err = h.joinAdmin(ctx, c, in.Data)
	default:
		if !c.joined() {
			if isKnownFrame(in.Type) {
				err = ErrNotJoined
			} else {
				err = ErrUnknownFrame
			}
			break
		}
		replyType, reply, err = h.dispatchJoined(ctx, c, in)
	}

	if err != nil {
		h.replyError(ctx, c, in.RequestID, err)
		return
	}
	h.reply(c, replyType, in.RequestID, reply)
}

func (h *Handler) dispatchJoined(ctx context.Context, c *client, in inboundFrame) (string, any, error) {
	switch in.Type {
	case FrameStart:
		out, err := h.gameService.StartSession(ctx, &game.StartSessionInput{
			SessionCode: c.sessionCode,
			AdminToken:  c.adminToken,
		})
		if err != nil {
			return "", nil, err
		}
		return FrameStarted, startedResponse{
			Started:    out.Started,
			Rooms:      out.Rooms,
			Unassigned: out.Unassigned,
		}, nil

	case FramePlayCard:
		var req playCardRequest
		if err := decode(in.Data, &req); err != nil {
			return "", nil, err
		}
		out, err := h.gameService.PlayCard(ctx, &game.PlayCardInput{
			SessionCode: c.sessionCode,
			PlayerID:    c.participantID,
			Card:        req.Card,
		})
		if err != nil {
			return "", nil, err
		}
		return FrameCardPlayed, cardPlayedResponse{
			Turn:          out.Turn,
			TrickComplete: out.TrickComplete,
			Voting:        out.Voting,
			Result:        out.Result,
		}, nil

	case FrameVote:
		var req voteRequest
		if err := decode(in.Data, &req); err != nil {
			return "", nil, err
		}
		out, err := h.gameService.CastVote(ctx, &game.CastVoteInput{
			SessionCode: c.sessionCode,
			VoterID:     c.participantID,
			ChosenID:    req.ChosenID,
		})
		if err != nil {
			return "", nil, err
		}
		return FrameVoteCast, voteCastResponse{
			Replaced: out.Replaced,
			Complete: out.Complete,
			Tally:    out.Tally,
			Result:   out.Result,
		}, nil

	case FrameReshuffle:
		out, err := h.gameService.Reshuffle(ctx, &game.ReshuffleInput{
			SessionCode: c.sessionCode,
			AdminToken:  c.adminToken,
		})
		if err != nil {
			return "", nil, err
		}
		return FrameReshuffled, reshuffledResponse{
			Archived:   out.Archived,
			Assignment: out.Assignment,
			Moves:      out.Moves,
			Rooms:      out.Rooms,
		}, nil

	case FrameResetRooms:
		var req resetRoomsRequest
		if err := decode(in.Data, &req); err != nil {
			return "", nil, err
		}
		out, err := h.gameService.ResetRooms(ctx, &game.ResetRoomsInput{
			SessionCode: c.sessionCode,
			AdminToken:  c.adminToken,
			Voting:      req.Voting,
		})
		if err != nil {
			return "", nil, err
		}
		return FrameRoomsReset, roomsResponse{Rooms: out.Rooms}, nil

	case FrameRoomState:
		var req roomStateRequest
		if err := decode(in.Data, &req); err != nil {
			return "", nil, err
		}
		out, err := h.gameService.GetRoomState(ctx, &game.GetRoomStateInput{
			SessionCode:   c.sessionCode,
			RoomID:        req.RoomID,
			ParticipantID: c.participantID,
		})
		if err != nil {
			return "", nil, err
		}
		return FrameRoomState, roomStateResponse{Room: out.Room, Hand: out.Hand}, nil

	case FrameStandings:
		out, err := h.gameService.GetStandings(ctx, &game.GetStandingsInput{
			SessionCode: c.sessionCode,
		})
		if err != nil {
			return "", nil, err
		}
		return FrameStandings, standingsResponse{Current: out.Current, History: out.History}, nil
	}

	return "", nil, ErrUnknownFrame
}

func (h *Handler) join(ctx context.Context, c *client, data json.RawMessage) (any, error) {
	var req joinRequest
	if err := decode(data, &req); err != nil {
		return nil, err
	}

	out, err := h.gameService.JoinSession(ctx, &game.JoinSessionInput{
		SessionCode: req.SessionCode,
		PlayerID:    req.PlayerID,
		Handle:      c.handle,
		Nickname:    req.Nickname,
	})
	if err != nil {
		return nil, err
	}

	h.hub.bind(c, req.SessionCode, out.Player.ID)
	c.adminToken = ""

	return joinedResponse{
		Player: out.Player,
		Roster: out.Roster,
		Room:   out.Room,
		Hand:   out.Hand,
	}, nil
}

func (h *Handler) joinAdmin(ctx context.Context, c *client, data json.RawMessage) (any, error) {
	var req joinAdminRequest
	if err := decode(data, &req); err != nil {
		return nil, err
	}

	out, err := h.gameService.JoinAsAdmin(ctx, &game.JoinAsAdminInput{
		SessionCode: req.SessionCode,
		AdminToken:  req.AdminToken,
		TeacherID:   req.TeacherID,
		Handle:      c.handle,
		Nickname:    req.Nickname,
	})
	if err != nil {
		return nil, err
	}

	h.hub.bind(c, req.SessionCode, out.Teacher.ID)
	c.adminToken = req.AdminToken

	return adminJoinedResponse{
		Teacher: out.Teacher,
		Roster:  out.Roster,
		Rooms:   out.Rooms,
	}, nil
}

func (h *Handler) reply(c *client, frameType, requestID string, data any) {
	msg, err := json.Marshal(outboundFrame{Type: frameType, RequestID: requestID, Data: data})
	if err != nil {
		h.logger.Error("failed to encode reply", zap.String("type", frameType), zap.Error(err))
		return
	}
	if !c.enqueue(msg) {
		h.logger.Warn("dropped reply for slow connection",
			zap.String("handle", c.handle),
			zap.String("type", frameType))
	}
}

func (h *Handler) replyError(ctx context.Context, c *client, requestID string, err error) {
	payload := h.errorPayload(ctx, err)
	if payload.Code == string(messaging.ErrorTypeInternal) {
		h.logger.Error("request failed",
			zap.String("session", c.sessionCode),
			zap.String("participant", c.participantID),
			zap.Error(err))
	}
	h.reply(c, string(events.KindError), requestID, payload)
}

func decode(data json.RawMessage, v any) error {
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return ErrMalformedFrame
	}
	return nil
}

func isKnownFrame(frameType string) bool {
	switch frameType {
	case FrameStart, FramePlayCard, FrameVote, FrameReshuffle,
		FrameResetRooms, FrameRoomState, FrameStandings:
		return true
	}
	return false
}
