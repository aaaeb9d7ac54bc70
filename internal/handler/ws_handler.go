package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"chefconnect/internal/middleware"
	"chefconnect/internal/realtime"
	"chefconnect/internal/repository"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

// 接続後このメッセージが来なければ切る
const authWait = 10 * time.Second

const (
	wsTypeAuth   = "AUTH"
	wsTypeAuthOK = "AUTH_OK"
)

type wsAuthMessage struct {
	Type   string `json:"type"`
	UserID string `json:"userId"`
	Token  string `json:"token"`
}

type wsAuthOK struct {
	Type string `json:"type"`
}

// GET /ws のプッシュ用接続
type WSHandler struct {
	secret   string
	registry *realtime.Registry
	users    repository.UserRepository
	logger   *logrus.Logger
	upgrader websocket.Upgrader
}

func NewWSHandler(secret string, registry *realtime.Registry, users repository.UserRepository, logger *logrus.Logger) *WSHandler {
	return &WSHandler{
		secret:   secret,
		registry: registry,
		users:    users,
		logger:   logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			//ブラウザ以外（モバイル）からも来るのでOriginは見ない。認証は最初のメッセージで行う
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

func (h *WSHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/ws", h.serve)
}

func (h *WSHandler) serve(c echo.Context) error {
	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		//Upgrade側でエラーレスポンスを書いている
		h.logger.WithError(err).Debug("websocket upgrade failed")
		return nil
	}

	userID, ok := h.authenticate(c, conn)
	if !ok {
		deadline := time.Now().Add(time.Second)
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "unauthorized"), deadline)
		conn.Close()
		return nil
	}

	//AUTH_OKはポンプ開始前に直接書く（通知より先に届くように）
	ack, _ := json.Marshal(wsAuthOK{Type: wsTypeAuthOK})
	conn.SetWriteDeadline(time.Now().Add(authWait))
	if err := conn.WriteMessage(websocket.TextMessage, ack); err != nil {
		conn.Close()
		return nil
	}

	ch := realtime.NewWSChannel(conn, h.logger)
	h.registry.Register(userID, ch)
	h.logger.WithField("user_id", userID).Debug("push channel registered")

	go ch.WritePump()
	ch.ReadPump()

	//切断。新しい接続に置き換わっていればUnregisterは何もしない
	h.registry.Unregister(ch)
	ch.Close()
	h.logger.WithField("user_id", userID).Debug("push channel closed")
	return nil
}

// 最初のメッセージ {"type":"AUTH","userId","token"} を検証する
func (h *WSHandler) authenticate(c echo.Context, conn *websocket.Conn) (string, bool) {
	conn.SetReadLimit(4 * 1024)
	conn.SetReadDeadline(time.Now().Add(authWait))

	_, raw, err := conn.ReadMessage()
	if err != nil {
		return "", false
	}

	var msg wsAuthMessage
	if err := json.Unmarshal(raw, &msg); err != nil || msg.Type != wsTypeAuth || msg.UserID == "" {
		return "", false
	}

	claims, err := middleware.ParseAccessToken(h.secret, msg.Token)
	if err != nil || claims.UserID != msg.UserID {
		return "", false
	}

	//HTTP側のTokenVersionGuardと同じ確認
	user, err := h.users.FindByID(c.Request().Context(), claims.UserID)
	if err != nil || user == nil || !user.IsActive || user.TokenVersion != claims.TokenVersion {
		return "", false
	}

	return claims.UserID, true
}
