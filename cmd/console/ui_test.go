package main

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/scene-engine/pkg/catalog"
	"github.com/jwebster45206/scene-engine/pkg/scene"
	"github.com/jwebster45206/scene-engine/pkg/session"
)

func TestFormatEcho(t *testing.T) {
	assert.Equal(t, "Rabbit Followed", formatEcho("rabbit_followed"))
	assert.Equal(t, "Auto Advance Triggered", formatEcho(scene.EchoAutoAdvanceTriggered))
}

func TestParseSceneKey(t *testing.T) {
	k, err := parseSceneKey(" 2.1 ")
	require.NoError(t, err)
	assert.Equal(t, scene.Key{SceneID: 2, SubsceneID: 1}, k)

	for _, bad := range []string{"2", "a.b", "0.1", "2.-1", ""} {
		_, err := parseSceneKey(bad)
		assert.Error(t, err, bad)
	}
}

func TestDescribeResult(t *testing.T) {
	here := scene.Key{SceneID: 2, SubsceneID: 1}
	assert.Equal(t, "Nothing happens.", describeResult(scene.NoTransition(here)))

	direct := scene.Direct(scene.Key{SceneID: 3, SubsceneID: 2}, "The corridor ends.", nil, "dead_end")
	assert.Equal(t, "You move to 3.2. The corridor ends. (Dead End)", describeResult(direct))

	zoom := scene.ZoomThen("K7", "", nil, scene.Direct(here, "Follow it.", nil, "rabbit_followed"))
	assert.Equal(t, "You zoom into K7, then move to 2.1. Follow it. (Rabbit Followed)", describeResult(zoom))
}

func TestWriteMetadata(t *testing.T) {
	s := catalog.Default().Get(5, 1)
	require.NotNil(t, s)
	out := writeMetadata(&session.Session{ID: "0123456789abcdef"}, s)
	assert.Contains(t, out, "01234567...")
	assert.Contains(t, out, "5.1")
	assert.Contains(t, out, "Auto-advance:")
	assert.Contains(t, out, "1.1 after 12000ms")
}

func TestConsoleUI_RejectsNonTileInput(t *testing.T) {
	m := NewConsoleUI(&ConsoleConfig{APIBaseURL: "http://localhost:0"}, nil)
	m.showSceneModal = false
	m.session = &session.Session{ID: "s1"}
	m.current = catalog.Default().Get(1, 2)
	m.textarea.SetValue("hello")

	model, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)
	ui := model.(ConsoleUI)
	require.NotEmpty(t, ui.entries)
	last := ui.entries[len(ui.entries)-1]
	assert.Equal(t, entryError, last.kind)
	assert.True(t, strings.Contains(last.text, "not a tile id"))
	assert.False(t, ui.loading)
}

func TestConsoleUI_StaleAutoAdvanceIgnored(t *testing.T) {
	m := NewConsoleUI(&ConsoleConfig{}, nil)
	m.showSceneModal = false
	m.sceneSeq = 3

	model, cmd := m.Update(autoAdvanceMsg{seq: 2, target: scene.Key{SceneID: 1, SubsceneID: 1}})
	assert.Nil(t, cmd)
	assert.False(t, model.(ConsoleUI).loading)
}
