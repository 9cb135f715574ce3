package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devwatch/sentinel/pkg/config"
	"github.com/devwatch/sentinel/pkg/models"
)

func waitForClients(t *testing.T, hub *Hub, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for hub.ClientCount() != want {
		if time.Now().After(deadline) {
			t.Fatalf("hub never reached %d client(s), have %d", want, hub.ClientCount())
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestAlertStreamBroadcast(t *testing.T) {
	s, _ := newTestServer(t, func(cfg *config.Config) {
		cfg.EnableStream = true
	})

	ts := httptest.NewServer(s.Router())
	defer ts.Close()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/alerts"
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()
	defer resp.Body.Close()

	waitForClients(t, s.hub, 1)

	w := doJSON(t, s, http.MethodPost, "/api/log",
		hardwareLog("dev-ws", "New hardware attached", "SN-WS-1", "Stream Stick"), nil)
	require.Equal(t, http.StatusCreated, w.Code)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var msg StreamMessage
	require.NoError(t, conn.ReadJSON(&msg))

	assert.Equal(t, "alert", msg.Type)
	require.NotNil(t, msg.Alert)
	assert.Equal(t, models.AlertUnauthorizedUSB, msg.Alert.AlertType)
	assert.Equal(t, "dev-ws", msg.Alert.DeviceID)
}

func TestHubDropsClosedClients(t *testing.T) {
	s, _ := newTestServer(t, func(cfg *config.Config) {
		cfg.EnableStream = true
	})

	ts := httptest.NewServer(s.Router())
	defer ts.Close()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/alerts"
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer resp.Body.Close()

	waitForClients(t, s.hub, 1)

	require.NoError(t, conn.Close())
	waitForClients(t, s.hub, 0)

	// broadcasting with no clients must not panic or block
	s.hub.Broadcast(&models.Alert{DeviceID: "dev-ws", AlertType: models.AlertSecurity})
}
