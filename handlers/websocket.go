package handlers

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"farm-hub/cache"
	"farm-hub/services"
	"farm-hub/ws"
)

// connRole is the per-connection classification. A connection starts
// unclassified and is bound by its first meaningful message; a later message
// implying the other role is treated as malformed input, not honored.
type connRole int

const (
	roleUnclassified connRole = iota
	roleOwner
	roleFieldUnit
)

// WSHandler is the routing engine: it classifies every inbound frame,
// resolves ownership, runs the reading pipeline and forwards to the right
// live connection.
type WSHandler struct {
	registry  *ws.Registry
	store     *cache.HistoryStore
	evaluator *services.AlertEvaluator
	now       func() time.Time
}

func NewWSHandler(registry *ws.Registry, store *cache.HistoryStore, evaluator *services.AlertEvaluator, now func() time.Time) *WSHandler {
	if now == nil {
		now = time.Now
	}
	return &WSHandler{registry: registry, store: store, evaluator: evaluator, now: now}
}

var upgrader = websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}

// HandleWS upgrades the connection and runs its read loop. One goroutine per
// connection; all shared state lives behind the registry, buffer and
// evaluator locks, so handlers for different connections interleave safely.
func (h *WSHandler) HandleWS(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("websocket upgrade failed: %v", err)
		return
	}
	peer := ws.NewPeer(conn)

	role := roleUnclassified
	boundID := ""

	defer func() {
		h.registry.OnConnectionClosed(peer)
		_ = peer.Close()
	}()

	for {
		mt, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("connection closed by peer (%s)", boundID)
			} else {
				log.Printf("read error (%s): %v", boundID, err)
			}
			return
		}
		if mt != websocket.TextMessage {
			continue
		}

		msg, err := ws.Decode(raw)
		if err != nil {
			var decodeErr *ws.DecodeError
			if errors.As(err, &decodeErr) && err != ws.ErrUnknownType {
				log.Printf("dropping malformed message (%s): %v", boundID, err)
			}
			continue
		}

		switch m := msg.(type) {
		case ws.Register:
			if role == roleFieldUnit {
				log.Printf("dropping REGISTER from field-unit connection %s", boundID)
				continue
			}
			if role == roleOwner && boundID != m.UID {
				log.Printf("dropping REGISTER for %s on connection bound to owner %s", m.UID, boundID)
				continue
			}
			h.registry.RegisterOwnerConnection(m.UID, peer)
			role, boundID = roleOwner, m.UID
			log.Printf("owner session registered: %s", m.UID)

		case ws.SensorInfo:
			if role == roleOwner {
				log.Printf("dropping SENSOR_INFO from owner connection %s", boundID)
				continue
			}
			if role == roleFieldUnit && boundID != m.EspID {
				log.Printf("dropping SENSOR_INFO for %s on connection bound to unit %s", m.EspID, boundID)
				continue
			}
			role, boundID = roleFieldUnit, m.EspID
			h.handleSensorInfo(peer, m)

		case ws.MotionDetected:
			if role == roleOwner {
				log.Printf("dropping MOTION_DETECTED from owner connection %s", boundID)
				continue
			}
			if role == roleFieldUnit && boundID != m.EspID {
				log.Printf("dropping MOTION_DETECTED for %s on connection bound to unit %s", m.EspID, boundID)
				continue
			}
			role, boundID = roleFieldUnit, m.EspID
			h.handleMotion(m)

		case ws.Toggle:
			if role == roleFieldUnit {
				log.Printf("dropping %s from field-unit connection %s", m.Type, boundID)
				continue
			}
			if role == roleOwner && boundID != m.UID {
				log.Printf("dropping %s for owner %s on connection bound to %s", m.Type, m.UID, boundID)
				continue
			}
			role, boundID = roleOwner, m.UID
			h.forwardToUnit(m.UID, m.EspID, gin.H{"type": ws.StatusType(m.Type), "value": m.Value})

		case ws.SetACMode:
			if role == roleFieldUnit {
				log.Printf("dropping SET_AC_MODE from field-unit connection %s", boundID)
				continue
			}
			if role == roleOwner && boundID != m.UID {
				log.Printf("dropping SET_AC_MODE for owner %s on connection bound to %s", m.UID, boundID)
				continue
			}
			role, boundID = roleOwner, m.UID
			h.forwardToUnit(m.UID, m.EspID, gin.H{"type": ws.TypeSetFanMode, "mode": m.Mode})
		}
	}
}

// handleSensorInfo runs the reading pipeline: resolve ownership, announce
// thresholds once per connection, normalize, buffer, evaluate, forward to
// the owner session if one is live.
func (h *WSHandler) handleSensorInfo(peer *ws.Peer, m ws.SensorInfo) {
	uid, ok := h.registry.RegisterFieldUnitConnection(m.EspID, peer)
	if !ok {
		log.Printf("dropping reading from unowned field unit %s", m.EspID)
		return
	}

	if h.registry.NeedsThresholds(m.EspID) {
		payload := gin.H{"type": ws.TypeThresholds, "thresholds": services.DefaultThresholds()}
		if err := peer.SendJSON(payload); err != nil {
			log.Printf("thresholds push to %s failed: %v", m.EspID, err)
		} else {
			h.registry.MarkThresholdsSent(m.EspID)
		}
	}

	reading := services.Normalize(m.Value)
	reading.Timestamp = h.now().UnixMilli()
	h.store.Append(m.EspID, reading)

	var soilWet, pir *bool
	if v, sampled := services.BoolSample(m.Value, "soil_moisture"); sampled {
		soilWet = &v
	}
	if v, sampled := services.BoolSample(m.Value, "pir_status"); sampled {
		pir = &v
	}
	alerts := h.evaluator.Evaluate(m.EspID, &reading, soilWet, pir)

	ownerConn := h.registry.OwnerConn(uid)
	if ownerConn == nil || !ownerConn.Open() {
		return
	}
	if err := ownerConn.SendJSON(gin.H{"type": ws.TypeSensorInfo, "espId": m.EspID, "value": reading}); err != nil {
		log.Printf("forwarding reading from %s to owner %s failed: %v", m.EspID, uid, err)
		return
	}
	if len(alerts) > 0 {
		if err := ownerConn.SendJSON(gin.H{"type": ws.TypeAlert, "espId": m.EspID, "alerts": alerts}); err != nil {
			log.Printf("forwarding alerts from %s to owner %s failed: %v", m.EspID, uid, err)
		}
	}
}

// handleMotion forwards the push-style motion event as a synthesized alert,
// independent of the evaluator's polled pir handling.
func (h *WSHandler) handleMotion(m ws.MotionDetected) {
	if !m.Value {
		return
	}
	uid, ok := h.registry.ResolveOwnerOf(m.EspID)
	if !ok {
		log.Printf("dropping motion event from unowned field unit %s", m.EspID)
		return
	}
	ownerConn := h.registry.OwnerConn(uid)
	if ownerConn == nil || !ownerConn.Open() {
		log.Printf("owner %s offline, motion event from %s dropped", uid, m.EspID)
		return
	}
	if err := ownerConn.SendJSON(gin.H{"type": ws.TypeAlert, "espId": m.EspID, "alerts": []string{services.AlertMotion}}); err != nil {
		log.Printf("forwarding motion event from %s failed: %v", m.EspID, err)
	}
}

// forwardToUnit delivers a translated command to the target field unit.
// Delivery is best-effort: a missing or closed target connection is a
// warning, never an error back to the sender.
func (h *WSHandler) forwardToUnit(uid, espID string, payload gin.H) {
	target, ok := h.registry.UnitConn(uid, espID)
	if !ok || !target.Open() {
		log.Printf("field unit %s of owner %s not connected, command dropped", espID, uid)
		return
	}
	if err := target.SendJSON(payload); err != nil {
		log.Printf("command delivery to %s failed: %v", espID, err)
	}
}

// GetConnectedUnits GET /api/v1/units/connected
func (h *WSHandler) GetConnectedUnits(c *gin.Context) {
	units := h.registry.ConnectedUnits()
	c.JSON(http.StatusOK, gin.H{"units": units, "count": len(units)})
}
