// unit-sim is a field-unit simulator: it dials the hub's websocket, streams
// SENSOR_INFO once a second and reacts to actuator commands, so the relay
// can be exercised without hardware on the bench.
package main

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/gorilla/websocket"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205")).
			MarginBottom(1)

	onStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("42")).
		Bold(true)

	offStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	eventStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86"))
)

type sensorTickMsg struct{}

type serverMsg struct {
	Type       string          `json:"type"`
	Value      json.RawMessage `json:"value"`
	Mode       *bool           `json:"mode"`
	Thresholds json.RawMessage `json:"thresholds"`
}

type errMsg struct{ err error }

func (e errMsg) Error() string { return e.err.Error() }

type model struct {
	conn *websocket.Conn

	espID          string
	pump           bool
	fan            bool
	fanAuto        bool
	motionDetector bool

	thresholds string
	lastSent   string
	events     []string
	err        error
	quitting   bool
}

func initialModel(conn *websocket.Conn, espID string) model {
	return model{conn: conn, espID: espID}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(tickSensor(), readServer(m.conn))
}

func tickSensor() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return sensorTickMsg{}
	})
}

func readServer(conn *websocket.Conn) tea.Cmd {
	return func() tea.Msg {
		var msg serverMsg
		if err := conn.ReadJSON(&msg); err != nil {
			return errMsg{err}
		}
		return msg
	}
}

func (m model) sendSensorInfo() error {
	payload := map[string]interface{}{
		"type":   "SENSOR_INFO",
		"esp_id": m.espID,
		"value": map[string]interface{}{
			"gas_value":     rand.Intn(100),
			"humidity":      rand.Intn(100),
			"soil_moisture": rand.Intn(2) == 0,
			"temperature":   rand.Intn(40),
		},
	}
	return m.conn.WriteJSON(payload)
}

func (m model) sendMotion() error {
	if !m.motionDetector {
		return nil
	}
	// 10% chance of motion per tick, matching typical pir chatter
	if rand.Intn(10) != 0 {
		return nil
	}
	return m.conn.WriteJSON(map[string]interface{}{
		"type":   "MOTION_DETECTED",
		"esp_id": m.espID,
		"value":  true,
	})
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		}

	case sensorTickMsg:
		if err := m.sendSensorInfo(); err != nil {
			m.err = err
			return m, tea.Quit
		}
		if err := m.sendMotion(); err != nil {
			m.err = err
			return m, tea.Quit
		}
		m.lastSent = time.Now().Format("15:04:05")
		return m, tickSensor()

	case serverMsg:
		m.applyCommand(msg)
		return m, readServer(m.conn)

	case errMsg:
		m.err = msg.err
		return m, tea.Quit
	}
	return m, nil
}

func (m *model) applyCommand(msg serverMsg) {
	boolValue := func() bool {
		var v bool
		_ = json.Unmarshal(msg.Value, &v)
		return v
	}

	switch msg.Type {
	case "PUMP_STATUS":
		m.pump = boolValue()
		m.logEvent(fmt.Sprintf("pump %s", onOff(m.pump)))
	case "FAN_STATUS":
		m.fan = boolValue()
		m.logEvent(fmt.Sprintf("fan %s", onOff(m.fan)))
	case "MOTION_DETECTOR_STATUS":
		m.motionDetector = boolValue()
		m.logEvent(fmt.Sprintf("motion detector %s", onOff(m.motionDetector)))
	case "SET_FAN_MODE":
		if msg.Mode != nil {
			m.fanAuto = *msg.Mode
		}
		m.logEvent(fmt.Sprintf("fan mode auto=%v", m.fanAuto))
	case "THRESHOLDS":
		m.thresholds = string(msg.Thresholds)
		m.logEvent("thresholds received")
	}
}

func (m *model) logEvent(event string) {
	m.events = append(m.events, fmt.Sprintf("%s  %s", time.Now().Format("15:04:05"), event))
	if len(m.events) > 8 {
		m.events = m.events[len(m.events)-8:]
	}
}

func onOff(v bool) string {
	if v {
		return "ON"
	}
	return "OFF"
}

func (m model) View() string {
	if m.quitting {
		return "bye\n"
	}

	s := titleStyle.Render(fmt.Sprintf("Field unit simulator (%s)", m.espID)) + "\n"
	s += statusLine("Pump", m.pump)
	s += statusLine("Fan", m.fan)
	s += statusLine("Motion detector", m.motionDetector)
	s += statusLine("Fan auto mode", m.fanAuto)

	if m.thresholds != "" {
		s += "\nThresholds: " + m.thresholds + "\n"
	}
	if m.lastSent != "" {
		s += fmt.Sprintf("\nLast reading sent at %s\n", m.lastSent)
	}
	if len(m.events) > 0 {
		s += "\nEvents:\n"
		for _, e := range m.events {
			s += eventStyle.Render("  "+e) + "\n"
		}
	}
	if m.err != nil {
		s += "\n" + errorStyle.Render("error: "+m.err.Error()) + "\n"
	}
	s += "\npress q to quit\n"
	return s
}

func statusLine(name string, on bool) string {
	if on {
		return fmt.Sprintf("  %s: %s\n", name, onStyle.Render("ON"))
	}
	return fmt.Sprintf("  %s: %s\n", name, offStyle.Render("OFF"))
}

func main() {
	hubURL := os.Getenv("HUB_URL")
	if hubURL == "" {
		hubURL = "ws://localhost:3536/ws"
	}
	espID := os.Getenv("ESP_ID")
	if espID == "" {
		espID = "BGBYFDGI"
	}

	conn, _, err := websocket.DefaultDialer.Dial(hubURL, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "could not connect to %s: %v\n", hubURL, err)
		os.Exit(1)
	}
	defer conn.Close()

	p := tea.NewProgram(initialModel(conn, espID))
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
