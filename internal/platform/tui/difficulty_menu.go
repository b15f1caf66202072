package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/mergedrop/internal/config"
	"github.com/vovakirdan/mergedrop/internal/core"
)

type difficultyOption struct {
	preset config.DifficultyPreset
	label  string
	detail string
}

var difficultyOptions = []difficultyOption{
	{config.DifficultyEasy, "Easy", "8s grace at the line"},
	{config.DifficultyNormal, "Normal", "as configured"},
	{config.DifficultyHard, "Hard", "3s grace at the line, smaller openers"},
}

// DifficultyModel lets users pick a difficulty preset before a game.
type DifficultyModel struct {
	title     string
	cursor    int
	width     int
	keyMapper *KeyMapper
	selected  *config.DifficultyPreset
	quitting  bool
	back      bool
}

// NewDifficultyModel creates a selector with the cursor on current.
func NewDifficultyModel(title string, current config.DifficultyPreset, width int) DifficultyModel {
	m := DifficultyModel{title: title, width: width, keyMapper: NewKeyMapper()}
	for i, o := range difficultyOptions {
		if o.preset == current {
			m.cursor = i
		}
	}
	return m
}

// Init initializes the model.
func (m DifficultyModel) Init() tea.Cmd {
	return nil
}

// Update handles messages.
func (m DifficultyModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
	}
	return m, nil
}

func (m DifficultyModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.keyMapper.MapKeyToMenuAction(msg) {
	case MenuActionQuit:
		m.quitting = true
		return m, tea.Quit
	case MenuActionUp:
		if m.cursor > 0 {
			m.cursor--
		}
	case MenuActionDown:
		if m.cursor < len(difficultyOptions)-1 {
			m.cursor++
		}
	case MenuActionSelect:
		p := difficultyOptions[m.cursor].preset
		m.selected = &p
		return m, tea.Quit
	case MenuActionBack:
		m.back = true
		return m, tea.Quit
	}
	return m, nil
}

// View renders the selector.
func (m DifficultyModel) View() string {
	if m.quitting || m.back {
		return ""
	}

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(centerText(menuTitleStyle.Render(m.title), m.width))
	b.WriteString("\n\n")
	b.WriteString(centerText("Select difficulty:", m.width))
	b.WriteString("\n\n")

	for i, o := range difficultyOptions {
		cursor := "  "
		if i == m.cursor {
			cursor = menuCursor.Render("> ")
		}
		line := fmt.Sprintf("%s%-7s %s", cursor, o.label, menuDim.Render(o.detail))
		b.WriteString(centerText(line, m.width))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(centerText(menuDim.Render("Enter: Select  |  Esc: Back  |  Q: Quit"), m.width))
	return b.String()
}

// Selected returns the chosen preset, or nil if none was chosen.
func (m DifficultyModel) Selected() *config.DifficultyPreset {
	return m.selected
}

// IsQuitting returns true if user wants to quit.
func (m DifficultyModel) IsQuitting() bool {
	return m.quitting
}

// RunDifficultySelector shows the selector. It returns nil when the user
// backed out or quit.
func RunDifficultySelector(title string, current config.DifficultyPreset, cfg core.RuntimeConfig) (*config.DifficultyPreset, error) {
	p := tea.NewProgram(NewDifficultyModel(title, current, cfg.ScreenW), tea.WithAltScreen())

	finalModel, err := p.Run()
	if err != nil {
		return nil, err
	}
	m, ok := finalModel.(DifficultyModel)
	if !ok {
		return nil, nil
	}
	return m.Selected(), nil
}
