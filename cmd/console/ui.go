package main

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/jwebster45206/scene-engine/pkg/engine"
	"github.com/jwebster45206/scene-engine/pkg/grid"
	"github.com/jwebster45206/scene-engine/pkg/scene"
	"github.com/jwebster45206/scene-engine/pkg/session"
)

const PlaceHolderText = "Type a tile id (e.g. K7) or /help..."

type entryKind int

const (
	entryScene entryKind = iota
	entryClick
	entryResult
	entryInfo
	entryError
)

type logEntry struct {
	kind entryKind
	text string
}

// ConsoleUI is the BubbleTea model that runs the playtest UI.
// https://github.com/charmbracelet/bubbletea
type ConsoleUI struct {
	config       *ConsoleConfig
	client       *http.Client
	session      *session.Session
	current      *scene.Scene
	entries      []logEntry
	logViewport  viewport.Model
	metaViewport viewport.Model
	textarea     textarea.Model
	ready        bool
	width        int
	height       int
	err          error
	loading      bool

	// Starting scene selection state
	showSceneModal bool
	scenes         []*scene.Scene
	selectedScene  int
	loadingScenes  bool

	// Quit confirmation state
	showQuitModal bool

	// Progress bar state
	progressTick int

	// Bumped on every scene change so stale auto-advance timers are ignored.
	sceneSeq int
}

type scenesLoadedMsg struct {
	scenes []*scene.Scene
	err    error
}

type sessionStartedMsg struct {
	session *session.Session
	scene   *scene.Scene
	err     error
}

type clickResultMsg struct {
	tile   string
	result *scene.TransitionResult
	next   *scene.Scene
	err    error
}

type sceneLoadedMsg struct {
	scene  *scene.Scene
	reason string
	err    error
}

type autoAdvanceMsg struct {
	seq    int
	target scene.Key
}

type insightsMsg struct {
	insights *session.Insights
	err      error
}

type progressTickMsg struct{}

var (
	logPanelStyle = lipgloss.NewStyle().
			PaddingTop(2).
			PaddingBottom(1).
			PaddingLeft(3).
			PaddingRight(0)

	metaPanelStyle = lipgloss.NewStyle().
			PaddingTop(2).
			PaddingBottom(0).
			PaddingLeft(0).
			PaddingRight(2)

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")). // pink
			Bold(true)

	sceneStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("212")). // purple
			Bold(true)

	resultStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")) // green

	clickStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")) // teal

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")) // red

	loadingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")) // yellow

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // dark grey

	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(1, 2).
			Background(lipgloss.Color("235")).
			Foreground(lipgloss.Color("255"))

	modalTitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true).
			Align(lipgloss.Center)

	modalItemStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255"))

	modalSelectedItemStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("0")).
				Background(lipgloss.Color("205")).
				Bold(true)
)

var separatorStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("240")) // dark grey

var echoCaser = cases.Title(language.English)

func NewConsoleUI(cfg *ConsoleConfig, client *http.Client) ConsoleUI {
	ta := textarea.New()
	ta.Placeholder = PlaceHolderText
	ta.Focus()
	ta.Prompt = promptStyle.Render(":: ")
	ta.CharLimit = 64
	ta.SetWidth(50)
	ta.SetHeight(1)
	ta.ShowLineNumbers = false

	logVp := viewport.New(50, 20)
	logVp.MouseWheelEnabled = true

	metaVp := viewport.New(20, 20)

	return ConsoleUI{
		config:         cfg,
		client:         client,
		textarea:       ta,
		logViewport:    logVp,
		metaViewport:   metaVp,
		showSceneModal: true,
		loadingScenes:  true,
	}
}

// formatEcho turns an echo tag like "rabbit_followed" into "Rabbit Followed".
func formatEcho(echo string) string {
	return echoCaser.String(strings.ReplaceAll(echo, "_", " "))
}

// parseSceneKey reads "2.1" as scene 2, subscene 1.
func parseSceneKey(s string) (scene.Key, error) {
	sid, ssid, ok := strings.Cut(strings.TrimSpace(s), ".")
	if !ok {
		return scene.Key{}, fmt.Errorf("expected scene.subscene, got %q", s)
	}
	a, err1 := strconv.Atoi(sid)
	b, err2 := strconv.Atoi(ssid)
	if err1 != nil || err2 != nil || a < 1 || b < 1 {
		return scene.Key{}, fmt.Errorf("expected positive scene.subscene, got %q", s)
	}
	return scene.Key{SceneID: a, SubsceneID: b}, nil
}

// describeResult renders a transition result as one line of narration.
func describeResult(r scene.TransitionResult) string {
	var b strings.Builder
	switch {
	case r.IsNoOp():
		b.WriteString("Nothing happens.")
	case r.IsTwoPhase():
		fmt.Fprintf(&b, "You zoom into %s, then move to %s.", r.ZoomTo, r.Target())
	default:
		fmt.Fprintf(&b, "You move to %s.", r.Target())
	}

	msg := r.Message
	echo := r.Echo
	if r.IsTwoPhase() {
		if msg == "" {
			msg = r.NextAction.Message
		}
		echo = r.NextAction.Echo
	}
	if msg != "" {
		b.WriteString(" " + msg)
	}
	if echo != "" && echo != scene.EchoNoTransition {
		b.WriteString(" (" + formatEcho(echo) + ")")
	}
	return b.String()
}

func writeMetadata(sess *session.Session, s *scene.Scene) string {
	var content strings.Builder
	content.WriteString(titleStyle.Render("SESSION") + "\n\n")

	if sess != nil {
		id := sess.ID
		if len(id) > 8 {
			id = id[:8] + "..."
		}
		content.WriteString("Session ID:\n" + id + "\n\n")
	}

	if s != nil {
		content.WriteString("Scene:\n")
		content.WriteString(fmt.Sprintf("%s %s\n\n", s.Key(), s.Title()))
		content.WriteString("Background:\n" + string(s.BackgroundType()) + "\n\n")
		if s.GridConfig != nil {
			if rows, cols, err := s.GridConfig.Dimensions(); err == nil {
				content.WriteString(fmt.Sprintf("Grid:\n%d x %d (A1-%s)\n\n", rows, cols, grid.ToTileID(cols-1, rows-1)))
			}
		}
		if aa, ok := s.AutoAdvance(); ok {
			content.WriteString(fmt.Sprintf("Auto-advance:\n%s after %dms\n\n", aa.NextScene, aa.DelayMs))
		}
		if len(s.Choices) > 0 {
			content.WriteString("Exits:\n")
			for _, ch := range s.Choices {
				content.WriteString(fmt.Sprintf("• %s → %s\n", ch.Condition, ch.NextKey()))
			}
			content.WriteString("\n")
		}
	}

	content.WriteString("Commands:\n")
	content.WriteString("• Ctrl+C: Quit\n")
	content.WriteString("• Enter: Click\n")
	content.WriteString("• /help: Help\n")
	content.WriteString("• /copy: Copy ID\n")

	return content.String()
}

func (m *ConsoleUI) addEntry(kind entryKind, text string) {
	m.entries = append(m.entries, logEntry{kind: kind, text: text})
}

// writeLogContent rebuilds the log for the current viewport width.
func (m *ConsoleUI) writeLogContent() {
	width := m.logViewport.Width - 6 // Account for left(3) + right(3) padding
	if width < 10 {
		width = 10
	}

	var content strings.Builder
	content.WriteString(titleStyle.Render("SCENE ENGINE") + "\n\n")
	content.WriteString("Type a tile id and press Enter to click it.\n\n")
	content.WriteString(separatorStyle.Render(strings.Repeat("─", width)) + "\n\n")

	for _, e := range m.entries {
		text := wordwrap.String(e.text, width)
		switch e.kind {
		case entryScene:
			content.WriteString(sceneStyle.Render(text))
		case entryClick:
			content.WriteString(clickStyle.Render(text))
		case entryResult:
			content.WriteString(resultStyle.Render(text))
		case entryError:
			content.WriteString(errorStyle.Render(text))
		default:
			content.WriteString(text)
		}
		content.WriteString("\n\n")
	}

	if m.loading {
		content.WriteString(m.renderProgressBar())
	}

	m.logViewport.SetContent(content.String())
	m.logViewport.GotoBottom()
}

// enterScene makes s current, logs it and arms its auto-advance timer.
func (m *ConsoleUI) enterScene(s *scene.Scene) tea.Cmd {
	m.current = s
	m.sceneSeq++

	text := fmt.Sprintf("[%s] %s", s.Key(), s.Title())
	if s.Metadata != nil && s.Metadata.Description != "" {
		text += "\n" + s.Metadata.Description
	}
	m.addEntry(entryScene, text)
	m.metaViewport.SetContent(writeMetadata(m.session, m.current))

	aa, ok := s.AutoAdvance()
	if !ok {
		return nil
	}
	seq := m.sceneSeq
	return tea.Tick(time.Duration(aa.DelayMs)*time.Millisecond, func(time.Time) tea.Msg {
		return autoAdvanceMsg{seq: seq, target: aa.NextScene}
	})
}

func (m *ConsoleUI) resize() {
	logWidth := int(float64(m.width)*0.7) - 4
	metaWidth := m.width - logWidth - 6
	m.logViewport.Width = logWidth - 2
	m.logViewport.Height = m.height - 5
	m.metaViewport.Width = metaWidth - 2
	m.metaViewport.Height = m.height - 4
	m.textarea.SetWidth(logWidth - 4)
}

func (m ConsoleUI) Init() tea.Cmd {
	if m.showSceneModal {
		return m.loadScenes()
	}
	return textarea.Blink
}

func (m ConsoleUI) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.showQuitModal {
		return m.updateQuitModal(msg)
	}
	if m.showSceneModal {
		return m.updateSceneModal(msg)
	}

	var (
		tiCmd tea.Cmd
		vpCmd tea.Cmd
		mvCmd tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.MouseMsg:
		m.logViewport, vpCmd = m.logViewport.Update(msg)
		m.metaViewport, mvCmd = m.metaViewport.Update(msg)
		return m, tea.Batch(vpCmd, mvCmd)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		m.ready = true
		m.writeLogContent()
		m.metaViewport.SetContent(writeMetadata(m.session, m.current))

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.showQuitModal = true
			return m, nil
		case tea.KeyEnter:
			if m.loading {
				return m, nil
			}
			input := strings.TrimSpace(m.textarea.Value())
			m.textarea.Reset()
			if input == "" {
				return m, nil
			}
			if strings.HasPrefix(input, "/") {
				return m.handleCommand(input)
			}

			tile := strings.ToUpper(input)
			if !grid.IsTileID(tile) {
				m.addEntry(entryError, fmt.Sprintf("%q is not a tile id. Try something like K7.", input))
				m.writeLogContent()
				return m, nil
			}

			m.addEntry(entryClick, "You click "+tile+".")
			m.loading = true
			m.progressTick = 0
			m.writeLogContent()
			return m, tea.Batch(m.click(tile), progressTick())
		}

	case clickResultMsg:
		m.loading = false
		if msg.err != nil {
			m.addEntry(entryError, "Error: "+msg.err.Error())
			m.writeLogContent()
			return m, nil
		}
		m.addEntry(entryResult, describeResult(*msg.result))
		var cmd tea.Cmd
		if msg.next != nil {
			cmd = m.enterScene(msg.next)
		}
		m.writeLogContent()
		return m, cmd

	case sceneLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.addEntry(entryError, "Error: "+msg.err.Error())
			m.writeLogContent()
			return m, nil
		}
		if msg.reason != "" {
			m.addEntry(entryInfo, msg.reason)
		}
		cmd := m.enterScene(msg.scene)
		m.writeLogContent()
		return m, cmd

	case autoAdvanceMsg:
		if msg.seq != m.sceneSeq || m.loading {
			return m, nil
		}
		m.loading = true
		return m, m.loadScene(msg.target, "The scene moves on by itself ("+formatEcho(scene.EchoAutoAdvanceTriggered)+").")

	case insightsMsg:
		if msg.err != nil {
			m.addEntry(entryError, "Error: "+msg.err.Error())
		} else {
			in := msg.insights
			m.addEntry(entryInfo, fmt.Sprintf("Insights: %d clicks, %d zooms, %d scene changes. Visited: %s",
				in.TotalInteractions, in.ZoomActionCount, in.SceneTransitionCount, strings.Join(in.ScenesVisited, ", ")))
		}
		m.writeLogContent()
		return m, nil

	case progressTickMsg:
		if m.loading {
			m.progressTick++
			m.writeLogContent()
			return m, progressTick()
		}
	}

	m.textarea, tiCmd = m.textarea.Update(msg)
	m.logViewport, vpCmd = m.logViewport.Update(msg)
	m.metaViewport, mvCmd = m.metaViewport.Update(msg)

	return m, tea.Batch(tiCmd, vpCmd, mvCmd)
}

func (m ConsoleUI) handleCommand(input string) (tea.Model, tea.Cmd) {
	fields := strings.Fields(strings.ToLower(input))
	cmd, args := fields[0], fields[1:]

	switch cmd {
	case "/help":
		m.addEntry(entryInfo, `Commands:
• K7 - click a tile
• /jump 2.1 - go straight to a scene
• /scenes - pick a scene from the list
• /insights - summarize this session
• /copy - copy the session id
• Ctrl+C - Quit`)

	case "/jump":
		if len(args) != 1 {
			m.addEntry(entryError, "Usage: /jump 2.1")
			break
		}
		key, err := parseSceneKey(args[0])
		if err != nil {
			m.addEntry(entryError, err.Error())
			break
		}
		m.loading = true
		m.writeLogContent()
		return m, m.loadScene(key, "You jump to "+key.String()+".")

	case "/scenes":
		m.showSceneModal = true
		m.loadingScenes = true
		return m, m.loadScenes()

	case "/insights":
		if m.session == nil {
			break
		}
		return m, m.fetchInsights()

	case "/copy":
		if m.session == nil {
			break
		}
		if err := clipboard.WriteAll(m.session.ID); err != nil {
			m.addEntry(entryError, "Could not copy session id: "+err.Error())
		} else {
			m.addEntry(entryInfo, "Session id copied to clipboard.")
		}

	default:
		m.addEntry(entryError, "Unknown command "+cmd+". Try /help.")
	}

	m.writeLogContent()
	return m, nil
}

func (m ConsoleUI) click(tile string) tea.Cmd {
	from := m.current.Key()
	sessionID := m.session.ID
	return func() tea.Msg {
		r, err := sendClick(m.client, m.config.APIBaseURL, engine.Click{
			SessionID:  sessionID,
			SceneID:    from.SceneID,
			SubsceneID: from.SubsceneID,
			TileID:     tile,
			Action:     "click",
		})
		if err != nil {
			return clickResultMsg{tile: tile, err: err}
		}
		if r.IsNoOp() || r.Target() == from {
			return clickResultMsg{tile: tile, result: r}
		}
		next, err := getScene(m.client, m.config.APIBaseURL, r.Target())
		return clickResultMsg{tile: tile, result: r, next: next, err: err}
	}
}

func (m ConsoleUI) loadScene(key scene.Key, reason string) tea.Cmd {
	return func() tea.Msg {
		s, err := getScene(m.client, m.config.APIBaseURL, key)
		return sceneLoadedMsg{scene: s, reason: reason, err: err}
	}
}

func (m ConsoleUI) loadScenes() tea.Cmd {
	return func() tea.Msg {
		scenes, err := listScenes(m.client, m.config.APIBaseURL)
		return scenesLoadedMsg{scenes, err}
	}
}

func (m ConsoleUI) fetchInsights() tea.Cmd {
	sessionID := m.session.ID
	return func() tea.Msg {
		in, err := getInsights(m.client, m.config.APIBaseURL, sessionID)
		return insightsMsg{in, err}
	}
}

// begin starts a session if there is none yet and loads the chosen scene.
func (m ConsoleUI) begin(key scene.Key) tea.Cmd {
	existing := m.session
	return func() tea.Msg {
		sess := existing
		if sess == nil {
			var err error
			if sess, err = startSession(m.client, m.config.APIBaseURL); err != nil {
				return sessionStartedMsg{err: err}
			}
		}
		s, err := getScene(m.client, m.config.APIBaseURL, key)
		return sessionStartedMsg{session: sess, scene: s, err: err}
	}
}

func (m ConsoleUI) updateSceneModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case scenesLoadedMsg:
		m.loadingScenes = false
		if msg.err != nil {
			m.err = msg.err
		} else {
			m.scenes = msg.scenes
			if m.selectedScene >= len(m.scenes) {
				m.selectedScene = 0
			}
		}

	case sessionStartedMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.session = msg.session
		m.showSceneModal = false
		if m.width > 0 && m.height > 0 {
			m.resize()
		}
		cmd := m.enterScene(msg.scene)
		m.writeLogContent()
		m.textarea.Focus()
		m.ready = true
		return m, tea.Batch(textarea.Blink, cmd)

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyEsc {
			if m.loadingScenes {
				return m, tea.Quit
			}
			m.showQuitModal = true
			return m, nil
		}
		if m.loadingScenes || m.loading || m.err != nil {
			return m, nil
		}

		switch msg.Type {
		case tea.KeyUp:
			if m.selectedScene > 0 {
				m.selectedScene--
			}
		case tea.KeyDown:
			if m.selectedScene < len(m.scenes)-1 {
				m.selectedScene++
			}
		case tea.KeyEnter:
			if len(m.scenes) > 0 {
				m.loading = true
				return m, m.begin(m.scenes[m.selectedScene].Key())
			}
		}
	}

	return m, nil
}

func (m ConsoleUI) updateQuitModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc, tea.KeyEnter:
			return m, m.quit()
		default:
			switch msg.String() {
			case "y", "Y":
				return m, m.quit()
			case "n", "N":
				m.showQuitModal = false
				if m.showSceneModal {
					return m, nil
				}
				m.textarea.Focus()
				return m, textarea.Blink
			}
		}
	}

	return m, nil
}

// quit ends the session on the server, best-effort, then exits.
func (m ConsoleUI) quit() tea.Cmd {
	if m.session == nil {
		return tea.Quit
	}
	sessionID := m.session.ID
	return tea.Sequence(func() tea.Msg {
		_ = endSession(m.client, m.config.APIBaseURL, sessionID)
		return nil
	}, tea.Quit)
}

func (m ConsoleUI) renderQuitModal() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var content strings.Builder
	content.WriteString(modalTitleStyle.Render("Quit?"))
	content.WriteString("\n\n")
	content.WriteString("Are you sure you want to end this session?")
	content.WriteString("\n\n")
	content.WriteString(promptStyle.Render("Press Y to quit, N to continue, or Ctrl+C to force quit"))

	modal := modalStyle.Width(50).Render(content.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal, lipgloss.WithWhitespaceChars(" "))
}

func (m ConsoleUI) renderSceneModal() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var content strings.Builder

	switch {
	case m.loadingScenes:
		content.WriteString(modalTitleStyle.Render("Loading Scenes..."))
		content.WriteString("\n\n")
		content.WriteString(loadingStyle.Render("Please wait while we fetch the scene list..."))
	case m.err != nil:
		content.WriteString(modalTitleStyle.Render("Error"))
		content.WriteString("\n\n")
		content.WriteString(errorStyle.Render(fmt.Sprintf("Failed to start: %v", m.err)))
		content.WriteString("\n\n")
		content.WriteString("Press Ctrl+C to exit")
	case m.loading:
		content.WriteString(modalTitleStyle.Render("Starting Session..."))
		content.WriteString("\n\n")
		content.WriteString(loadingStyle.Render("Setting up your playtest..."))
	default:
		content.WriteString(modalTitleStyle.Render("Select a Starting Scene"))
		content.WriteString("\n\n")

		for i, s := range m.scenes {
			line := fmt.Sprintf("%s %s", s.Key(), s.Title())
			if i == m.selectedScene {
				content.WriteString(modalSelectedItemStyle.Render("▶ " + line))
			} else {
				content.WriteString(modalItemStyle.Render("  " + line))
			}
			content.WriteString("\n")
		}

		content.WriteString("\n")
		content.WriteString(promptStyle.Render("Use ↑/↓ to navigate, Enter to select, Ctrl+C to exit"))
	}

	modal := modalStyle.Width(60).Render(content.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal, lipgloss.WithWhitespaceChars(" "))
}

func (m ConsoleUI) View() string {
	if m.showQuitModal {
		return m.renderQuitModal()
	}
	if m.showSceneModal {
		return m.renderSceneModal()
	}
	if !m.ready {
		return "\n  Initializing..."
	}

	logWidth := int(float64(m.width)*0.7) - 4
	metaWidth := m.width - logWidth - 6

	logPanel := logPanelStyle.Width(logWidth).Height(m.height - 3).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			m.logViewport.View(),
			"",
			separatorStyle.Render(strings.Repeat("─", max(logWidth-4, 1))),
			m.textarea.View(),
		),
	)

	metaPanel := metaPanelStyle.Width(metaWidth).Height(m.height - 2).Render(
		m.metaViewport.View(),
	)

	return lipgloss.JoinHorizontal(lipgloss.Top, logPanel, metaPanel)
}

// renderProgressBar creates an animated progress bar for loading states
func (m ConsoleUI) renderProgressBar() string {
	usable := m.logViewport.Width - 6
	if usable <= 0 {
		usable = 30
	}
	if usable > 80 {
		usable = 80
	} else if usable < 10 {
		usable = 10
	}

	const totalFrames = 40
	frame := m.progressTick % totalFrames
	filled := (frame * usable) / totalFrames

	var bar strings.Builder
	for i := 0; i < usable; i++ {
		if i < filled {
			bar.WriteString("█")
		} else if i == filled && frame%4 < 2 {
			bar.WriteString("▓")
		} else {
			bar.WriteString("░")
		}
	}
	return separatorStyle.Render(bar.String())
}

// progressTick creates a command that sends a progress tick message
func progressTick() tea.Cmd {
	return tea.Tick(time.Millisecond*200, func(time.Time) tea.Msg {
		return progressTickMsg{}
	})
}
