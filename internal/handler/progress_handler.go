package handler

import (
	"os"

	"ai-docqa-be/internal/pkg/logger"
	"ai-docqa-be/internal/repository/specification"
	"ai-docqa-be/internal/repository/unitofwork"
	internalWS "ai-docqa-be/internal/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ProgressHandler upgrades clients onto the pipeline progress stream. The
// JWT rides in the "token" query parameter because browsers cannot set an
// Authorization header on a websocket handshake.
type ProgressHandler struct {
	hub        *internalWS.Hub
	uowFactory unitofwork.RepositoryFactory
	logger     logger.ILogger
}

func NewProgressHandler(hub *internalWS.Hub, uowFactory unitofwork.RepositoryFactory, log logger.ILogger) *ProgressHandler {
	return &ProgressHandler{
		hub:        hub,
		uowFactory: uowFactory,
		logger:     log,
	}
}

func (h *ProgressHandler) ServeWs(c *fiber.Ctx) error {
	// 1. Authenticate the handshake
	tokenStr := c.Query("token")
	if tokenStr == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Missing token"})
	}

	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		return []byte(os.Getenv("JWT_SECRET")), nil
	})
	if err != nil || !token.Valid {
		h.logger.Warn("ProgressHandler", "Invalid Token in WS Handshake", map[string]interface{}{"error": err})
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token claims"})
	}
	userIDStr, ok := claims["user_id"].(string)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Token missing user_id"})
	}
	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid user ID format in token"})
	}

	// 2. Verify the session belongs to the caller
	sessionID, err := uuid.Parse(c.Params("session_id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid session ID"})
	}

	uow := h.uowFactory.NewUnitOfWork(c.UserContext())
	session, err := uow.ChatSessionRepository().FindOne(c.UserContext(),
		specification.ByID{ID: sessionID},
		specification.UserOwnedBy{UserID: userID},
	)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	if session == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Session not found"})
	}

	// 3. Upgrade via Fiber WebSocket Middleware
	if websocket.IsWebSocketUpgrade(c) {
		sessionKey := sessionID.String()
		return websocket.New(func(conn *websocket.Conn) {
			h.logger.Info("ProgressHandler", "Starting WebSocket session", map[string]interface{}{"session_key": sessionKey})
			internalWS.ServeWs(h.hub, conn, sessionKey)
			h.logger.Info("ProgressHandler", "WebSocket session ended", map[string]interface{}{"session_key": sessionKey})
		})(c)
	}
	return fiber.ErrUpgradeRequired
}

// RegisterRoutes registers the progress stream route.
func (h *ProgressHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/ws/qa/:session_id", h.ServeWs)
}
