package main

// This file implements the interactive OS shell using bubbletea.

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"geminios/cmd/geminios/ui"
	"geminios/internal/mirror"
	"geminios/internal/terminal"
)

type shellTab int

const (
	tabHome shellTab = iota
	tabChat
	tabTerm
	tabFiles
)

var tabNames = []string{"HOME", "CHAT", "TERM", "FILES"}

// Shell messages
type (
	chatDoneMsg struct{ err error }
	termDoneMsg struct{}
	briefingMsg struct {
		text string
		err  error
	}
	replaceMsg struct{ kind string }
	clockMsg   time.Time
)

type shellModel struct {
	rt *runtime

	tab       shellTab
	input     textinput.Model
	viewport  viewport.Model
	spinner   spinner.Model
	styles    ui.Styles
	renderer  *glamour.TermRenderer
	replaceCh chan string

	thinking bool
	briefing string
	now      time.Time
	width    int
	height   int
	ready    bool
	errText  string
}

func newShellModel(rt *runtime) shellModel {
	styles := ui.NewStyles(ui.ThemeFor(rt.cfg.UX.Theme))

	ti := textinput.New()
	ti.Placeholder = "Message the kernel..."
	ti.Focus()
	ti.CharLimit = 2048

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(ui.DarkAccent)

	vp := viewport.New(80, 20)

	renderer, _ := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(78),
	)

	replaceCh := make(chan string, 16)
	rt.mirror.OnReplace(func(kind string) {
		select {
		case replaceCh <- kind:
		default:
		}
	})

	return shellModel{
		rt:        rt,
		input:     ti,
		viewport:  vp,
		spinner:   sp,
		styles:    styles,
		renderer:  renderer,
		replaceCh: replaceCh,
		now:       time.Now(),
	}
}

// runShell boots the runtime and runs the interactive program.
func runShell() error {
	ctx := context.Background()

	rt, err := bootRuntime(ctx)
	if err != nil {
		return err
	}
	defer rt.close()

	model := newShellModel(rt)
	program := tea.NewProgram(model, tea.WithAltScreen())
	_, err = program.Run()
	return err
}

func (m shellModel) Init() tea.Cmd {
	return tea.Batch(
		textinput.Blink,
		m.spinner.Tick,
		m.loadBriefing(),
		m.waitReplace(),
		clockTick(),
	)
}

func clockTick() tea.Cmd {
	return tea.Tick(5*time.Second, func(t time.Time) tea.Msg {
		return clockMsg(t)
	})
}

// waitReplace turns mirror replacement callbacks into shell messages.
func (m shellModel) waitReplace() tea.Cmd {
	return func() tea.Msg {
		return replaceMsg{kind: <-m.replaceCh}
	}
}

func (m shellModel) loadBriefing() tea.Cmd {
	rt := m.rt
	return func() tea.Msg {
		text, err := rt.system.Briefing(context.Background())
		return briefingMsg{text: text, err: err}
	}
}

func (m shellModel) sendChat(text string) tea.Cmd {
	rt := m.rt
	return func() tea.Msg {
		_, err := rt.assistant.Send(context.Background(), text)
		return chatDoneMsg{err: err}
	}
}

func (m shellModel) runTermLine(line string) tea.Cmd {
	rt := m.rt
	return func() tea.Msg {
		rt.terminal.Run(context.Background(), line)
		return termDoneMsg{}
	}
}

func (m shellModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var (
		tiCmd tea.Cmd
		vpCmd tea.Cmd
		spCmd tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit

		case tea.KeyTab:
			m.tab = (m.tab + 1) % shellTab(len(tabNames))
			m.refresh()
			return m, nil

		case tea.KeyCtrlN:
			m.rt.notifs.Simulate()
			m.refresh()
			return m, nil

		case tea.KeyCtrlW:
			m.rt.state.ToggleWifi()
			return m, nil

		case tea.KeyEnter:
			line := strings.TrimSpace(m.input.Value())
			if line == "" || m.thinking {
				return m, nil
			}
			m.input.Reset()
			switch m.tab {
			case tabChat:
				m.thinking = true
				m.refresh()
				return m, m.sendChat(line)
			case tabTerm:
				m.thinking = true
				m.refresh()
				return m, m.runTermLine(line)
			}
			return m, nil

		default:
			m.input, tiCmd = m.input.Update(msg)
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		headerHeight := 3
		footerHeight := 2
		inputHeight := 2
		m.viewport = viewport.New(msg.Width-2, msg.Height-headerHeight-footerHeight-inputHeight)
		m.ready = true
		m.refresh()

	case chatDoneMsg:
		m.thinking = false
		if msg.err != nil {
			m.errText = msg.err.Error()
		}
		m.refresh()

	case termDoneMsg:
		m.thinking = false
		m.refresh()

	case briefingMsg:
		if msg.err == nil {
			m.briefing = msg.text
		}
		m.refresh()

	case replaceMsg:
		m.refresh()
		return m, m.waitReplace()

	case clockMsg:
		m.now = time.Time(msg)
		// Simulated telemetry drift.
		m.rt.state.SetLoad(5 + rand.Intn(60))
		if m.now.Unix()%60 < 5 {
			m.rt.state.SetBattery(m.rt.state.Battery() - 1)
		}
		m.refresh()
		return m, clockTick()

	case spinner.TickMsg:
		m.spinner, spCmd = m.spinner.Update(msg)
	}

	m.viewport, vpCmd = m.viewport.Update(msg)
	return m, tea.Batch(tiCmd, vpCmd, spCmd)
}

// refresh re-renders the active tab into the viewport.
func (m *shellModel) refresh() {
	if !m.ready {
		return
	}
	switch m.tab {
	case tabHome:
		m.viewport.SetContent(m.homeView())
	case tabChat:
		m.viewport.SetContent(m.chatView())
		m.viewport.GotoBottom()
	case tabTerm:
		m.viewport.SetContent(m.termView())
		m.viewport.GotoBottom()
	case tabFiles:
		m.viewport.SetContent(m.filesView())
	}
}

func (m *shellModel) homeView() string {
	var b strings.Builder

	b.WriteString(m.styles.FileName.Render(m.now.Format("15:04 Mon Jan 2")))
	b.WriteString("\n\n")
	if m.briefing != "" {
		b.WriteString(m.styles.AssistantMsg.Render(m.briefing))
		b.WriteString("\n\n")
	}

	notifs := m.rt.notifs.List()
	if len(notifs) == 0 {
		b.WriteString(m.styles.Help.Render("No notifications. Press ctrl+n to simulate one."))
	} else {
		for _, n := range notifs {
			b.WriteString(m.styles.UserMsg.Render(n.App))
			b.WriteString("  " + m.styles.Help.Render(n.Timestamp.Format("15:04")))
			b.WriteString("\n")
			if n.Insight != "" {
				b.WriteString("  " + n.Insight + "\n")
			} else {
				b.WriteString("  " + n.Content + "\n")
			}
		}
	}
	return b.String()
}

func (m *shellModel) chatView() string {
	var b strings.Builder
	for _, msg := range m.rt.mirror.Chat() {
		switch {
		case msg.IsSystemAction:
			b.WriteString(m.styles.SystemAction.Render(msg.Text))
			b.WriteString("\n")
		case msg.Role == mirror.RoleUser:
			b.WriteString(m.styles.UserMsg.Render("you> "))
			b.WriteString(msg.Text)
			b.WriteString("\n")
		default:
			rendered := msg.Text
			if m.renderer != nil {
				if out, err := m.renderer.Render(msg.Text); err == nil {
					rendered = strings.TrimRight(out, "\n")
				}
			}
			b.WriteString(rendered)
			b.WriteString("\n")
		}
	}
	if m.thinking {
		b.WriteString(m.spinner.View() + " thinking...\n")
	}
	return b.String()
}

func (m *shellModel) termView() string {
	var b strings.Builder
	for _, line := range m.rt.terminal.History() {
		if line.Type == terminal.LineInput {
			b.WriteString(m.styles.TermPrompt.Render("$ "))
			b.WriteString(m.styles.TermOutput.Render(line.Content))
		} else {
			b.WriteString(m.styles.TermOutput.Render(line.Content))
		}
		b.WriteString("\n")
	}
	if m.thinking {
		b.WriteString(m.spinner.View() + "\n")
	}
	return b.String()
}

func (m *shellModel) filesView() string {
	var b strings.Builder
	files := m.rt.mirror.Files()
	if len(files) == 0 {
		return m.styles.Help.Render("(empty)")
	}
	for _, f := range files {
		b.WriteString(m.styles.FileName.Render(f.Name))
		b.WriteString(m.styles.Help.Render(fmt.Sprintf("  %d bytes  %s", len(f.Content), f.Language)))
		b.WriteString("\n")
	}
	return b.String()
}

func (m shellModel) statusLine() string {
	wifi := "wifi:on"
	if !m.rt.state.Wifi() {
		wifi = "wifi:off"
	}
	status := fmt.Sprintf("%s  bat:%d%%  load:%d%%  notifs:%d  %s",
		wifi, m.rt.state.Battery(), m.rt.state.Load(),
		m.rt.notifs.Len(), m.now.Format("15:04"))
	if m.errText != "" {
		status += "  " + m.styles.Error.Render(m.errText)
	}
	return m.styles.StatusBar.Render(status)
}

func (m shellModel) tabBar() string {
	parts := make([]string, len(tabNames))
	for i, name := range tabNames {
		if shellTab(i) == m.tab {
			parts[i] = m.styles.ActiveTab.Render(name)
		} else {
			parts[i] = m.styles.Tab.Render(name)
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m shellModel) View() string {
	if !m.ready {
		return "booting..."
	}

	header := m.styles.Header.Render("Gemini OS  " + m.tabBar())
	help := m.styles.Help.Render("tab: switch | enter: send | ctrl+n: notify | ctrl+w: wifi | esc: quit")

	var input string
	if m.tab == tabChat || m.tab == tabTerm {
		input = m.input.View()
	} else {
		input = help
	}

	return fmt.Sprintf("%s\n%s\n%s\n%s",
		header,
		m.viewport.View(),
		input,
		m.statusLine(),
	)
}
