package handlers

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"farm-hub/cache"
	"farm-hub/services"
	"farm-hub/ws"
)

type testHub struct {
	srv      *httptest.Server
	registry *ws.Registry
	store    *cache.HistoryStore
}

func newTestHub(t *testing.T) *testHub {
	gin.SetMode(gin.TestMode)

	registry := ws.NewRegistry()
	store := cache.NewHistoryStore(1000, 100)
	evaluator := services.NewAlertEvaluator(nil)
	handler := NewWSHandler(registry, store, evaluator, nil)

	router := gin.New()
	router.GET("/ws", handler.HandleWS)

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return &testHub{srv: srv, registry: registry, store: store}
}

func (h *testHub) dial(t *testing.T) *websocket.Conn {
	url := "ws" + strings.TrimPrefix(h.srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) map[string]interface{} {
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg map[string]interface{}
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func expectSilence(t *testing.T, conn *websocket.Conn) {
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(300*time.Millisecond)))
	var msg map[string]interface{}
	assert.Error(t, conn.ReadJSON(&msg))
}

// registerOwner sends REGISTER and waits until the registry holds the
// connection, so a device message sent right after cannot race past it.
func (h *testHub) registerOwner(t *testing.T, conn *websocket.Conn, uid string) {
	require.NoError(t, conn.WriteJSON(map[string]interface{}{"type": "REGISTER", "uid": uid}))
	require.Eventually(t, func() bool {
		return h.registry.OwnerConn(uid) != nil
	}, 2*time.Second, 10*time.Millisecond)
}

func TestReadingForwardedToOwnerWithAlert(t *testing.T) {
	hub := newTestHub(t)
	require.NoError(t, hub.registry.AttachFieldUnit("U1", "E1"))

	owner := hub.dial(t)
	hub.registerOwner(t, owner, "U1")

	device := hub.dial(t)
	require.NoError(t, device.WriteJSON(map[string]interface{}{
		"type":  "SENSOR_INFO",
		"espId": "E1",
		"value": map[string]interface{}{
			"temperature":   5,
			"humidity":      50,
			"soil_moisture": true,
			"gas_value":     10,
		},
	}))

	// the device gets its one-shot thresholds announcement
	thresholds := readMessage(t, device)
	assert.Equal(t, "THRESHOLDS", thresholds["type"])
	assert.Contains(t, thresholds["thresholds"], "TEMPERATURE_THRESHOLD")

	// the owner gets exactly one forwarded reading
	forwarded := readMessage(t, owner)
	assert.Equal(t, "SENSOR_INFO", forwarded["type"])
	assert.Equal(t, "E1", forwarded["espId"])
	value := forwarded["value"].(map[string]interface{})
	assert.Equal(t, float64(5), value["temperature"])
	assert.Equal(t, float64(50), value["soil_moisture"])

	// and one alert: 5 degrees is below the low band
	alert := readMessage(t, owner)
	assert.Equal(t, "ALERT", alert["type"])
	assert.Contains(t, alert["alerts"], "Temperature too low")

	expectSilence(t, owner)
}

func TestTogglePumpDeliveredToDevice(t *testing.T) {
	hub := newTestHub(t)
	require.NoError(t, hub.registry.AttachFieldUnit("U1", "E1"))

	owner := hub.dial(t)
	hub.registerOwner(t, owner, "U1")

	device := hub.dial(t)
	require.NoError(t, device.WriteJSON(map[string]interface{}{
		"type": "SENSOR_INFO", "esp_id": "E1", "value": map[string]interface{}{},
	}))
	readMessage(t, device) // thresholds
	readMessage(t, owner)  // forwarded reading

	require.NoError(t, owner.WriteJSON(map[string]interface{}{
		"type": "TOGGLE_PUMP", "uid": "U1", "espId": "E1", "value": true,
	}))
	cmd := readMessage(t, device)
	assert.Equal(t, "PUMP_STATUS", cmd["type"])
	assert.Equal(t, true, cmd["value"])
}

func TestToggleAgainstClosedDeviceWarnsOnly(t *testing.T) {
	hub := newTestHub(t)
	require.NoError(t, hub.registry.AttachFieldUnit("U1", "E1"))

	owner := hub.dial(t)
	hub.registerOwner(t, owner, "U1")

	device := hub.dial(t)
	require.NoError(t, device.WriteJSON(map[string]interface{}{
		"type": "SENSOR_INFO", "esp_id": "E1", "value": map[string]interface{}{},
	}))
	readMessage(t, device)
	readMessage(t, owner)

	require.NoError(t, device.Close())
	require.Eventually(t, func() bool {
		return len(hub.registry.ConnectedUnits()) == 0
	}, 2*time.Second, 10*time.Millisecond)

	// the command is dropped with a warning, nothing comes back to the owner
	require.NoError(t, owner.WriteJSON(map[string]interface{}{
		"type": "TOGGLE_PUMP", "uid": "U1", "espId": "E1", "value": true,
	}))
	expectSilence(t, owner)
}

func TestSetACModeTranslatesToFanMode(t *testing.T) {
	hub := newTestHub(t)
	require.NoError(t, hub.registry.AttachFieldUnit("U1", "E1"))

	device := hub.dial(t)
	require.NoError(t, device.WriteJSON(map[string]interface{}{
		"type": "SENSOR_INFO", "esp_id": "E1", "value": map[string]interface{}{},
	}))
	readMessage(t, device)

	owner := hub.dial(t)
	hub.registerOwner(t, owner, "U1")
	require.NoError(t, owner.WriteJSON(map[string]interface{}{
		"type": "SET_AC_MODE", "uid": "U1", "espId": "E1", "mode": true,
	}))

	cmd := readMessage(t, device)
	assert.Equal(t, "SET_FAN_MODE", cmd["type"])
	assert.Equal(t, true, cmd["mode"])
}

func TestMotionEventForwardedAsAlert(t *testing.T) {
	hub := newTestHub(t)
	require.NoError(t, hub.registry.AttachFieldUnit("U1", "E1"))

	owner := hub.dial(t)
	hub.registerOwner(t, owner, "U1")

	device := hub.dial(t)
	require.NoError(t, device.WriteJSON(map[string]interface{}{
		"type": "MOTION_DETECTED", "esp_id": "E1", "value": true,
	}))

	alert := readMessage(t, owner)
	assert.Equal(t, "ALERT", alert["type"])
	assert.Contains(t, alert["alerts"], "Motion detected")
}

func TestThresholdsSentOncePerConnection(t *testing.T) {
	hub := newTestHub(t)
	require.NoError(t, hub.registry.AttachFieldUnit("U1", "E1"))

	device := hub.dial(t)
	payload := map[string]interface{}{
		"type": "SENSOR_INFO", "esp_id": "E1", "value": map[string]interface{}{},
	}
	require.NoError(t, device.WriteJSON(payload))
	assert.Equal(t, "THRESHOLDS", readMessage(t, device)["type"])

	require.NoError(t, device.WriteJSON(payload))
	expectSilence(t, device)

	// a fresh connection is announced again
	require.NoError(t, device.Close())
	require.Eventually(t, func() bool {
		return len(hub.registry.ConnectedUnits()) == 0
	}, 2*time.Second, 10*time.Millisecond)

	device2 := hub.dial(t)
	require.NoError(t, device2.WriteJSON(payload))
	assert.Equal(t, "THRESHOLDS", readMessage(t, device2)["type"])
}

func TestUnownedReadingIsDropped(t *testing.T) {
	hub := newTestHub(t)

	device := hub.dial(t)
	require.NoError(t, device.WriteJSON(map[string]interface{}{
		"type": "SENSOR_INFO", "esp_id": "E9", "value": map[string]interface{}{"temperature": 20},
	}))

	expectSilence(t, device)
	_, ok := hub.store.Current("E9")
	assert.False(t, ok)
}

func TestMalformedMessageKeepsConnectionOpen(t *testing.T) {
	hub := newTestHub(t)
	require.NoError(t, hub.registry.AttachFieldUnit("U1", "E1"))

	device := hub.dial(t)
	require.NoError(t, device.WriteMessage(websocket.TextMessage, []byte(`{"type":`)))
	require.NoError(t, device.WriteJSON(map[string]interface{}{
		"type": "SENSOR_INFO", "esp_id": "E1", "value": map[string]interface{}{},
	}))

	// the connection survived the garbage frame
	assert.Equal(t, "THRESHOLDS", readMessage(t, device)["type"])
}

func TestOwnerConnectionCannotActAsFieldUnit(t *testing.T) {
	hub := newTestHub(t)
	require.NoError(t, hub.registry.AttachFieldUnit("U1", "E1"))

	owner := hub.dial(t)
	hub.registerOwner(t, owner, "U1")

	// a reading from an owner-bound connection is malformed input
	require.NoError(t, owner.WriteJSON(map[string]interface{}{
		"type": "SENSOR_INFO", "espId": "E1", "value": map[string]interface{}{"temperature": 20},
	}))

	time.Sleep(200 * time.Millisecond)
	_, ok := hub.store.Current("E1")
	assert.False(t, ok)
}

func TestReadingsForwardedInArrivalOrder(t *testing.T) {
	hub := newTestHub(t)
	require.NoError(t, hub.registry.AttachFieldUnit("U1", "E1"))

	owner := hub.dial(t)
	hub.registerOwner(t, owner, "U1")

	device := hub.dial(t)
	for i := 0; i < 5; i++ {
		require.NoError(t, device.WriteJSON(map[string]interface{}{
			"type": "SENSOR_INFO", "esp_id": "E1",
			"value": map[string]interface{}{"temperature": 20 + i},
		}))
	}
	readMessage(t, device) // thresholds

	for i := 0; i < 5; i++ {
		msg := readMessage(t, owner)
		require.Equal(t, "SENSOR_INFO", msg["type"])
		value := msg["value"].(map[string]interface{})
		assert.Equal(t, float64(20+i), value["temperature"], "reading %d out of order", i)
	}
}
