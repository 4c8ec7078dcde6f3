package handlers

import (
	"encoding/json"
	"log/slog"
	"strings"
	"sync"

	"github.com/arnold/okrmaster-api/internal/database"
	"github.com/arnold/okrmaster-api/internal/metrics"
	"github.com/arnold/okrmaster-api/internal/middleware"
	"github.com/arnold/okrmaster-api/internal/models"
	"github.com/arnold/okrmaster-api/internal/okr"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

// Event types sent over WebSocket
const (
	EventMemberJoined     = "member_joined"
	EventObjectiveCreated = "objective_created"
	EventObjectiveUpdated = "objective_updated"
	EventObjectiveDeleted = "objective_deleted"
	EventKeyResultUpdated = "key_result_updated"
	EventKeyResultAdopted = "key_result_adopted"
	EventCoachingAdded    = "coaching_added"
	EventCommentAdded     = "comment_added"
	EventCommentDeleted   = "comment_deleted"
	EventDirectoryUpdated = "directory_updated"
)

// WSEvent is the JSON message sent to connected clients
type WSEvent struct {
	Type           string      `json:"type"`
	OrganizationID string      `json:"organizationId"`
	ProfileID      string      `json:"profileId"`
	Data           interface{} `json:"data,omitempty"`
}

type messageWriter interface {
	WriteMessage(messageType int, data []byte) error
}

// connection wraps a websocket connection with its profile ID. Writes are
// serialized because the underlying connection allows a single writer.
type connection struct {
	mu        sync.Mutex
	conn      messageWriter
	profileID uuid.UUID
}

func (c *connection) write(msg []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteMessage(websocket.TextMessage, msg)
}

// Hub manages WebSocket connections per organization
type Hub struct {
	mu    sync.RWMutex
	rooms map[uuid.UUID]map[*connection]bool // organizationID -> set of connections
}

func NewHub() *Hub {
	return &Hub{rooms: make(map[uuid.UUID]map[*connection]bool)}
}

// Global hub instance
var WS = NewHub()

func (h *Hub) register(orgID uuid.UUID, conn *connection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.rooms[orgID] == nil {
		h.rooms[orgID] = make(map[*connection]bool)
	}
	h.rooms[orgID][conn] = true
	metrics.WSConnections.Inc()
	slog.Debug("ws register", "profile", conn.profileID, "organization", orgID, "total", len(h.rooms[orgID]))
}

func (h *Hub) unregister(orgID uuid.UUID, conn *connection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if conns, ok := h.rooms[orgID]; ok {
		if _, present := conns[conn]; !present {
			return
		}
		delete(conns, conn)
		metrics.WSConnections.Dec()
		slog.Debug("ws unregister", "profile", conn.profileID, "organization", orgID, "remaining", len(conns))
		if len(conns) == 0 {
			delete(h.rooms, orgID)
		}
	}
}

// Broadcast sends an event to the organization room, skipping the sender and
// every connection allow rejects. A nil allow admits everyone.
func (h *Hub) Broadcast(orgID, excludeProfileID uuid.UUID, event WSEvent, allow func(profileID uuid.UUID) bool) {
	h.mu.RLock()
	var targets []*connection
	for c := range h.rooms[orgID] {
		if c.profileID == excludeProfileID {
			continue
		}
		if allow != nil && !allow(c.profileID) {
			continue
		}
		targets = append(targets, c)
	}
	h.mu.RUnlock()

	if len(targets) == 0 {
		return
	}

	msg, err := json.Marshal(event)
	if err != nil {
		slog.Error("ws broadcast marshal", "error", err)
		return
	}

	slog.Debug("ws broadcast", "type", event.Type, "connections", len(targets), "organization", orgID)
	for _, c := range targets {
		if err := c.write(msg); err != nil {
			slog.Warn("ws write", "profile", c.profileID, "error", err)
		}
	}
}

// broadcastObjectiveEvent fans an event about ownerID's objective out to the
// members allowed to see that owner's objectives.
func broadcastObjectiveEvent(policy *okr.Policy, orgID, actorID, ownerID uuid.UUID, eventType string, data interface{}) {
	WS.Broadcast(orgID, actorID, WSEvent{
		Type:           eventType,
		OrganizationID: orgID.String(),
		ProfileID:      actorID.String(),
		Data:           data,
	}, func(profileID uuid.UUID) bool {
		return policy.CanView(profileID, ownerID)
	})
}

// WebSocketUpgrade is the middleware that checks the upgrade request and validates JWT
func WebSocketUpgrade() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}

		// Authenticate via query param: ?token=<jwt>
		tokenString := c.Query("token")
		if tokenString == "" {
			// Also check Authorization header for non-browser clients
			tokenString, _ = middleware.BearerToken(strings.TrimSpace(c.Get("Authorization")))
		}

		if tokenString == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Missing authentication token",
			})
		}

		claims, err := middleware.ParseToken(jwtSecret, tokenString)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid or expired token",
			})
		}

		var profile models.Profile
		if err := database.DB.Select("id", "organization_id").Where("id = ?", claims.ProfileID).First(&profile).Error; err != nil || profile.OrganizationID == nil {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "Create or join an organization first",
			})
		}

		c.Locals("profileId", profile.ID)
		c.Locals("organizationId", *profile.OrganizationID)
		return c.Next()
	}
}

// HandleWebSocket joins the caller to their organization's room
func HandleWebSocket(c *websocket.Conn) {
	profileID, ok := c.Locals("profileId").(uuid.UUID)
	if !ok {
		c.Close()
		return
	}
	orgID, ok := c.Locals("organizationId").(uuid.UUID)
	if !ok {
		c.Close()
		return
	}

	conn := &connection{conn: c, profileID: profileID}
	WS.register(orgID, conn)
	defer WS.unregister(orgID, conn)

	// Keep connection alive: read messages (client sends pings/keepalives)
	for {
		if _, _, err := c.ReadMessage(); err != nil {
			break
		}
	}
}
