package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"chatrelaygo/internal/auth"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 54 * time.Second // must be < pongWait
)

type WsServer struct {
	manager *SessionManager
	router  *Router
	tokens  *auth.TokenManager

	upgrader websocket.Upgrader
}

func NewWsServer(manager *SessionManager, tokens *auth.TokenManager, allowedOrigin string) *WsServer {
	srv := &WsServer{
		manager: manager,
		router:  NewRouter(),
		tokens:  tokens,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || origin == allowedOrigin
			},
		},
	}
	srv.registerHandlers() // ← all WS endpoints configured here
	return srv
}

// ---------------------------------------------------------------------------
//  Public: Gin entry-point
// ---------------------------------------------------------------------------

func (s *WsServer) Handle(ginCtx *gin.Context) {
	token := ginCtx.Query("token")
	if token == "" {
		// Browsers can't set headers on websocket dials, but other clients can.
		token = strings.TrimPrefix(ginCtx.GetHeader("Authorization"), "Bearer ")
	}
	authUser, err := s.tokens.Verify(token)
	if err != nil {
		ginCtx.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	rawConn, err := s.upgrader.Upgrade(ginCtx.Writer, ginCtx.Request, nil)
	if err != nil {
		zap.L().Warn("ws.accept", zap.Error(err))
		return
	}
	rawConn.SetReadLimit(512)

	// ─────────────────── Client connected ────────────────────────
	conn := &clientConn{rawConn: rawConn}
	sess := newSession(conn)
	zap.L().Debug("ws.connected", zap.String("session", sess.id), zap.String("user", authUser))

	go s.reader(authUser, sess, conn)
	go s.pinger(conn)
}

// ---------------------------------------------------------------------------
//  Private helpers
// ---------------------------------------------------------------------------

func (s *WsServer) registerHandlers() {
	// 🔹 join ----------------------------------------------------------------
	Register(
		s.router,
		"join",
		func(ctx context.Context, cc *ConnContext, req JoinRequest) (AckBody, error) {
			if req.Username == "" || req.Room == "" {
				return AckBody{}, ErrMissingFields
			}
			if req.Username != cc.AuthUser {
				zap.L().Debug("ws.join_username_mismatch",
					zap.String("claimed", req.Username),
					zap.String("token", cc.AuthUser))
			}
			return AckBody{}, s.manager.Join(ctx, cc.Session, req.Username, req.Room)
		},
	)

	// 🔹 sendMessage ---------------------------------------------------------
	Register(
		s.router,
		"sendMessage",
		func(ctx context.Context, cc *ConnContext, req SendMessageRequest) (AckBody, error) {
			return AckBody{}, s.manager.Send(ctx, cc.Session, req.Message)
		},
	)
}

// reader processes the connection's inbound events in arrival order. When it
// returns (clean close, network drop or protocol garbage) the deferred
// Disconnect runs exactly once per session.
func (s *WsServer) reader(authUser string, sess *Session, conn *clientConn) {
	defer func() {
		s.manager.Disconnect(context.Background(), sess)
		conn.close()
	}()

	_ = conn.rawConn.SetReadDeadline(time.Now().Add(pongWait))
	conn.rawConn.SetPongHandler(func(string) error {
		return conn.rawConn.SetReadDeadline(time.Now().Add(pongWait))
	})

	cc := &ConnContext{Session: sess, AuthUser: authUser, Server: s}

	for {
		_, raw, err := conn.rawConn.ReadMessage()
		if err != nil {
			return // client closed or errored
		}

		// Malformed frames never reach the session manager.
		var env Envelope
		if err := json.Unmarshal(raw, &env); err != nil || env.Event == "" {
			_ = conn.writeJSON(map[string]any{
				"event": "error",
				"body":  ErrorBody{Error: "malformed event"},
			})
			continue
		}

		ctx, cancel := context.WithTimeout(context.Background(), 1900*time.Millisecond)
		res, err := s.router.dispatch(ctx, cc, env)
		cancel()

		// ---- error -> {"event":"error", "body":{...}} ---------------
		if err != nil {
			_ = conn.writeJSON(map[string]any{
				"event": "error",
				"body":  ErrorBody{Error: err.Error()},
			})
			continue
		}

		// ---- success -> {"event":"<evt>-ack", "body":{...}} --------
		reply := map[string]any{"event": env.Event + "-ack"}
		if res != nil {
			reply["body"] = res
		}
		_ = conn.writeJSON(reply)
	}
}

func (s *WsServer) pinger(conn *clientConn) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for range ticker.C {
		if err := conn.write(websocket.PingMessage, nil); err != nil {
			conn.close()
			return
		}
	}
}
