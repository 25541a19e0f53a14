// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/Thermoquad/tirestat/pkg/radio"
	"github.com/Thermoquad/tirestat/pkg/tpms"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Event log entry
type eventLogEntry struct {
	timestamp time.Time
	message   string
	isError   bool // true for anomalies, false for info
}

// TUI model
type model struct {
	connInfo      string
	preset        radio.Preset
	hopState      string
	rssi          float64
	hasRSSI       bool
	showAll       bool
	stats         *tpms.Statistics
	sensors       table.Model
	eventLog      []eventLogEntry
	maxLogEntries int
	width         int
	height        int
	quitting      bool
	sourceErr     error
	sourceDone    bool
}

// Messages
type tickMsg time.Time
type readingMsg struct {
	reading   *tpms.Reading
	anomalies []tpms.ValidationError
}
type edgesMsg struct {
	count int
}
type radioMsg struct {
	frequency uint32
	rssi      float64
	hasRSSI   bool
	hopState  string
}
type sourceDoneMsg struct {
	err error
}

var sensorColumns = []table.Column{
	{Title: "Protocol", Width: 14},
	{Title: "ID", Width: 8},
	{Title: "Pressure", Width: 10},
	{Title: "Temp", Width: 6},
	{Title: "Battery", Width: 7},
	{Title: "Mode", Width: 12},
	{Title: "Avg ± σ", Width: 13},
	{Title: "Count", Width: 6},
	{Title: "Last", Width: 8},
}

func initialModel(connInfo string, preset radio.Preset, hopState string, showAll bool) model {
	t := table.New(
		table.WithColumns(sensorColumns),
		table.WithFocused(true),
		table.WithHeight(8),
	)

	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true).
		Foreground(lipgloss.Color("12"))
	styles.Selected = styles.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(styles)

	return model{
		connInfo:      connInfo,
		preset:        preset,
		hopState:      hopState,
		showAll:       showAll,
		stats:         tpms.NewStatistics(),
		sensors:       t,
		eventLog:      make([]eventLogEntry, 0),
		maxLogEntries: 100,
		width:         80,
		height:        24,
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(
		tickCmd(),
		tea.EnterAltScreen,
	)
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		case "r":
			m.stats.Reset()
			m.sensors.SetRows(nil)
			m.addLogEntry("Statistics reset", false)
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.sensors.SetHeight(max(3, min(12, m.height/3)))

	case tickMsg:
		m.stats.CalculateRates()
		m.refreshSensors()
		return m, tickCmd()

	case edgesMsg:
		m.stats.AddEdges(msg.count)

	case radioMsg:
		if msg.frequency != 0 && msg.frequency != m.preset.Frequency {
			m.preset.Frequency = msg.frequency
			if m.showAll {
				m.addLogEntry("Tuned to "+radio.FormatFrequency(msg.frequency)+" MHz", false)
			}
		}
		if msg.hasRSSI {
			m.rssi = msg.rssi
			m.hasRSSI = true
		}
		m.hopState = msg.hopState

	case readingMsg:
		r := msg.reading
		m.stats.Update(r, msg.anomalies)
		m.refreshSensors()

		if len(msg.anomalies) > 0 {
			for _, a := range msg.anomalies {
				m.addLogEntry(fmt.Sprintf("%s %08X: %s", r.Protocol, r.ID, a.Message), true)
			}
		} else if m.showAll {
			m.addLogEntry(fmt.Sprintf("%s %08X: %.2f bar, %s", r.Protocol, r.ID, r.Pressure, tpms.FormatTemperature(r)), false)
		}

	case sourceDoneMsg:
		m.sourceDone = true
		m.sourceErr = msg.err
		if msg.err != nil {
			m.addLogEntry(fmt.Sprintf("SOURCE ERROR: %v", msg.err), true)
		} else {
			m.addLogEntry("Source finished", false)
		}
	}

	var cmd tea.Cmd
	m.sensors, cmd = m.sensors.Update(msg)
	return m, cmd
}

func (m *model) addLogEntry(message string, isError bool) {
	entry := eventLogEntry{
		timestamp: time.Now(),
		message:   message,
		isError:   isError,
	}
	m.eventLog = append(m.eventLog, entry)

	// Keep only last N entries
	if len(m.eventLog) > m.maxLogEntries {
		m.eventLog = m.eventLog[len(m.eventLog)-m.maxLogEntries:]
	}
}

// refreshSensors rebuilds the sensor table from the statistics
func (m *model) refreshSensors() {
	sensors := m.stats.Sensors()
	rows := make([]table.Row, 0, len(sensors))
	for _, s := range sensors {
		rows = append(rows, sensorRow(s, time.Now()))
	}
	m.sensors.SetRows(rows)
}

func sensorRow(s *tpms.SensorStats, now time.Time) table.Row {
	r := s.Last
	mode := "-"
	if r.Status != nil {
		mode = r.Status.Mode()
	}
	mean, std := s.PressureMeanStdDev()

	return table.Row{
		s.Protocol,
		fmt.Sprintf("%08X", s.ID),
		fmt.Sprintf("%.2f bar", r.Pressure),
		tpms.FormatTemperature(r),
		r.Battery().String(),
		mode,
		fmt.Sprintf("%.2f ± %.2f", mean, std),
		fmt.Sprintf("%d", s.Count),
		formatAge(now.Sub(s.LastSeen)),
	}
}

// formatAge renders how long ago a sensor was heard, e.g. "42s", "3m10s"
func formatAge(d time.Duration) string {
	d = d.Truncate(time.Second)
	switch {
	case d < time.Minute:
		return fmt.Sprintf("%ds", int(d.Seconds()))
	case d < time.Hour:
		return fmt.Sprintf("%dm%02ds", int(d.Minutes()), int(d.Seconds())%60)
	default:
		return fmt.Sprintf("%dh%02dm", int(d.Hours()), int(d.Minutes())%60)
	}
}

func (m model) View() string {
	if m.quitting {
		return "Shutting down...\n"
	}

	// Styles
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("12")).
		Background(lipgloss.Color("235")).
		Padding(0, 1)

	headerStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241"))

	statsLabelStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("12")).
		Bold(true)

	statsValueStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("10"))

	errorStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("9")).
		Bold(true)

	warningStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("11"))

	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1)

	// Header
	var s strings.Builder
	s.WriteString(titleStyle.Render("TIRESTAT - TPMS MONITOR"))
	s.WriteString("\n")
	s.WriteString(headerStyle.Render(fmt.Sprintf("%s | Mode: %s | 'r' reset, 'q' quit",
		m.connInfo, func() string {
			if m.showAll {
				return "All readings"
			}
			return "Anomalies only"
		}())))
	s.WriteString("\n\n")

	// Radio status
	s.WriteString(statsLabelStyle.Render("Radio: "))
	s.WriteString(statsValueStyle.Render(m.preset.String()))
	s.WriteString(headerStyle.Render("   hopping " + m.hopState))
	if m.hasRSSI {
		rssi := fmt.Sprintf("   RSSI %.1f dBm", m.rssi)
		if m.rssi > radio.RSSIThreshold {
			s.WriteString(statsValueStyle.Render(rssi))
		} else {
			s.WriteString(headerStyle.Render(rssi))
		}
	}
	if m.sourceDone {
		s.WriteString(warningStyle.Render("   (source finished)"))
	}
	s.WriteString("\n\n")

	// Statistics
	var validPercent, anomalyPercent float64
	if m.stats.TotalReadings > 0 {
		validPercent = float64(m.stats.ValidReadings) * 100.0 / float64(m.stats.TotalReadings)
		anomalyPercent = float64(m.stats.AnomalousReadings) * 100.0 / float64(m.stats.TotalReadings)
	}

	statsContent := strings.Builder{}
	statsContent.WriteString(fmt.Sprintf("%s %s   %s %s   %s %s\n",
		statsLabelStyle.Render("Readings:"), statsValueStyle.Render(fmt.Sprintf("%d", m.stats.TotalReadings)),
		statsLabelStyle.Render("Valid:"), statsValueStyle.Render(fmt.Sprintf("%d (%.1f%%)", m.stats.ValidReadings, validPercent)),
		statsLabelStyle.Render("Anomalous:"), warningStyle.Render(fmt.Sprintf("%d (%.1f%%)", m.stats.AnomalousReadings, anomalyPercent)),
	))

	if m.stats.AnomalousReadings > 0 {
		statsContent.WriteString(headerStyle.Render(fmt.Sprintf("pressure: %d, temperature: %d, no temp: %d, battery low: %d, id zero: %d",
			m.stats.PressureRange, m.stats.TemperatureRange, m.stats.InvalidTemp, m.stats.BatteryLow, m.stats.IDZero)))
		statsContent.WriteString("\n")
	}

	statsContent.WriteString(fmt.Sprintf("%s %s   %s %s   %s %s",
		statsLabelStyle.Render("Edges:"), statsValueStyle.Render(fmt.Sprintf("%d", m.stats.TotalEdges)),
		statsLabelStyle.Render("Edge Rate:"), statsValueStyle.Render(fmt.Sprintf("%.0f/s", m.stats.EdgeRate)),
		statsLabelStyle.Render("Reading Rate:"), statsValueStyle.Render(fmt.Sprintf("%.2f/s", m.stats.ReadingRate)),
	))

	s.WriteString(boxStyle.Render(statsContent.String()))
	s.WriteString("\n\n")

	// Sensors
	s.WriteString(statsLabelStyle.Render(fmt.Sprintf("Sensors (%d):", len(m.sensors.Rows()))))
	s.WriteString("\n")
	s.WriteString(boxStyle.Render(m.sensors.View()))
	s.WriteString("\n\n")

	// Event log
	s.WriteString(statsLabelStyle.Render("Recent Events:"))
	s.WriteString("\n")

	logHeight := m.height - m.sensors.Height() - 17
	if logHeight < 3 {
		logHeight = 3
	}

	logContent := strings.Builder{}
	startIdx := len(m.eventLog) - logHeight
	if startIdx < 0 {
		startIdx = 0
	}

	if len(m.eventLog) == 0 {
		logContent.WriteString(headerStyle.Render("  (no events yet)"))
	} else {
		for i := startIdx; i < len(m.eventLog); i++ {
			entry := m.eventLog[i]
			timestamp := entry.timestamp.Format("01/02/06 15:04:05.000")
			if entry.isError {
				logContent.WriteString(fmt.Sprintf("%s %s\n",
					headerStyle.Render(timestamp),
					errorStyle.Render("✗ "+entry.message),
				))
			} else {
				logContent.WriteString(fmt.Sprintf("%s %s\n",
					headerStyle.Render(timestamp),
					warningStyle.Render("ℹ "+entry.message),
				))
			}
		}
	}

	s.WriteString(boxStyle.Width(m.width - 4).Render(logContent.String()))

	return s.String()
}
