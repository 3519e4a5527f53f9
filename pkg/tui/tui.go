package tui

import (
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	textinput "github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/unowned-ai/memoirs/pkg/layout"
	"github.com/unowned-ai/memoirs/pkg/memoirs"
)

const (
	focusList  = iota // memoir list
	focusMedia        // media grid of the selected memoir
)

type model struct {
	svc        *memoirs.Service
	dbFilename string

	list        []memoirs.Memoir // store contents after the search filter
	query       string
	cursor      int // Index of selected memoir
	mediaCursor int // Index of selected media item
	expanded    bool

	columnFocus int
	width       int
	height      int
	err         error
	status      string

	quitting bool

	searching   bool
	searchInput textinput.Model

	deleting         bool
	deleteConfirmIdx int // 0 = "Yes" selected, 1 = "No"

	// Animation state
	marqueeOffset int
	marqueeTimer  int
}

// Initialize TUI model
func initModel(svc *memoirs.Service, db *sql.DB) model {
	_, file := getDbPragmaList(db)

	search := textinput.New()
	search.Placeholder = "Search titles and text"
	search.CharLimit = 256

	return model{
		svc:         svc,
		dbFilename:  filepath.Base(file),
		list:        []memoirs.Memoir{},
		searchInput: search,
	}
}

func tick() tea.Cmd {
	return tea.Tick(marqueeTickDuration, func(t time.Time) tea.Msg {
		return t
	})
}

func (m model) Init() tea.Cmd {
	return tea.Batch(listMemoirs(m.svc), tick())
}

// current returns the selected memoir.
func (m model) current() (memoirs.Memoir, bool) {
	if m.cursor < 0 || m.cursor >= len(m.list) {
		return memoirs.Memoir{}, false
	}
	return m.list[m.cursor], true
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case error:
		m.err = msg
		return m, nil

	case memoirsMsg:
		m.list = memoirs.Search(msg, memoirs.Query{Text: m.query})
		m.cursor = clamp(m.cursor, len(m.list))
		cur, ok := m.current()
		if !ok || len(cur.Media) == 0 {
			m.columnFocus = focusList
			m.mediaCursor = 0
		} else {
			m.mediaCursor = clamp(m.mediaCursor, len(cur.Media))
		}
		return m, nil

	case statusMsg:
		m.status = string(msg)
		return m, listMemoirs(m.svc)

	case tea.KeyMsg:
		if m.searching {
			return m.updateSearch(msg)
		}
		if m.deleting {
			return m.updateDelete(msg)
		}
		return m.updateRoot(msg)

	case time.Time:
		m.marqueeTimer++
		if m.marqueeTimer >= 10 {
			m.marqueeTimer = 0
			m.marqueeOffset++
		}
		return m, tick()
	}

	return m, nil
}

func (m model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		m.searching = false
		m.query = strings.TrimSpace(m.searchInput.Value())
		m.searchInput.Blur()
		m.cursor = 0
		return m, listMemoirs(m.svc)
	case tea.KeyEsc:
		m.searching = false
		m.query = ""
		m.searchInput.Reset()
		m.searchInput.Blur()
		return m, listMemoirs(m.svc)
	}

	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	return m, cmd
}

func (m model) updateDelete(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		m.deleteConfirmIdx = 0
	case "down", "j":
		m.deleteConfirmIdx = 1
	case "esc":
		m.deleting = false
	case "enter":
		m.deleting = false
		if m.deleteConfirmIdx != 0 {
			return m, nil
		}
		cur, ok := m.current()
		if !ok {
			return m, nil
		}
		if m.columnFocus == focusMedia && m.mediaCursor < len(cur.Media) {
			return m, removeMedia(m.svc, cur.ID, cur.Media[m.mediaCursor].ID)
		}
		return m, deleteMemoir(m.svc, cur.ID)
	}
	return m, nil
}

func (m model) updateRoot(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	cur, hasCurrent := m.current()

	switch msg.String() {
	case "q", "ctrl+c":
		m.quitting = true
		// Exit alt screen before quitting so the goodbye message displays
		return m, tea.Sequence(tea.ExitAltScreen, tea.Quit)

	case "up", "k":
		if m.columnFocus == focusList && m.cursor > 0 {
			m.cursor--
			m.mediaCursor = 0
			m.expanded = false
		} else if m.columnFocus == focusMedia && m.mediaCursor > 0 {
			m.mediaCursor--
		}

	case "down", "j":
		if m.columnFocus == focusList && m.cursor < len(m.list)-1 {
			m.cursor++
			m.mediaCursor = 0
			m.expanded = false
		} else if m.columnFocus == focusMedia && m.mediaCursor < len(cur.Media)-1 {
			m.mediaCursor++
		}

	case "right", "l":
		if hasCurrent && len(cur.Media) > 0 {
			m.columnFocus = focusMedia
		}

	case "left", "h":
		m.columnFocus = focusList

	case "e":
		m.expanded = !m.expanded

	case "b":
		if hasCurrent {
			return m, toggleBookmark(m.svc, cur.ID)
		}

	case "/":
		m.searching = true
		m.searchInput.SetValue(m.query)
		return m, m.searchInput.Focus()

	case "d":
		if hasCurrent {
			m.deleteConfirmIdx = 1
			m.deleting = true
		}
	}
	return m, nil
}

func clamp(i, n int) int {
	if i >= n {
		i = n - 1
	}
	if i < 0 {
		i = 0
	}
	return i
}

// Assembles the UI string for each frame
func (m model) View() string {
	if m.quitting {
		return "Closing the memoirs book... Changes saved.\n"
	}
	if m.err != nil {
		return fmt.Sprintf("Error: %v\n", m.err)
	}

	titleBar := titleStyle.Width(m.width).Render("Memoirs - local journal")
	leftWidth, rightWidth := m.columnWidths()
	panelHeight := m.height - 3

	leftPanel := lipgloss.NewStyle().
		Border(lipgloss.NormalBorder(), false, true, false, false).
		BorderForeground(lipgloss.Color(colorGray)).
		Padding(0, 2).
		Width(leftWidth).Height(panelHeight).
		Render(m.listView(leftWidth))

	rightPanel := lipgloss.NewStyle().Padding(0, 2).
		Width(rightWidth).Height(panelHeight).
		Render(m.detailView(rightWidth))

	columns := lipgloss.JoinHorizontal(lipgloss.Top, leftPanel, rightPanel)

	footerText := "\n↑/↓ navigate • →/← media • b bookmark • e expand • / search • d delete • q quit"
	if m.status != "" {
		footerText = "\n" + m.status + " •" + strings.TrimPrefix(footerText, "\n")
	}
	footerBar := footerStyle.Width(m.width).Render(footerText)

	return titleBar + "\n\n" + columns + footerBar
}

func (m model) listView(width int) string {
	var b strings.Builder

	subtitle := "  Memoirs"
	if m.query != "" {
		subtitle = fmt.Sprintf("  Memoirs matching %q", m.query)
	}
	b.WriteString(subtitleStyle.Width(width - bordersAndPaddingWidth).Render(subtitle))
	b.WriteString("\n\n")

	if m.searching {
		b.WriteString(m.searchInput.View() + "\n\n")
	}

	if len(m.list) == 0 {
		if m.query != "" {
			b.WriteString("Nothing matches. Press '/' to change the search.\n")
		} else {
			b.WriteString("No memoirs yet.\n")
		}
	}

	for i, memoir := range m.list {
		selected := i == m.cursor
		pointer := generateLinePointer(selected && m.columnFocus == focusList, 2)
		available := width - len(pointer) - bordersAndPaddingWidth - 2

		name := memoir.DisplayTitle()
		mark := " "
		if memoir.Bookmark {
			mark = bookmarkStyle.Render("*")
		}

		itemStyle := inactiveStyle
		if selected {
			itemStyle = selectedStyle
			name = m.marqueeText(name, available)
		} else {
			name = truncate(name, available)
		}
		name = lipgloss.NewStyle().MaxWidth(available).Render(name)
		b.WriteString(pointer + mark + itemStyle.Render(name) + "\n")
	}

	b.WriteString("\n")
	dbStatus := 0
	if m.dbFilename != "" && m.dbFilename != "." {
		dbStatus = 1
	}
	b.WriteString("Database file: " + TextStatusColorize(m.dbFilename, dbStatus) + "\n")
	return b.String()
}

func (m model) detailView(width int) string {
	var b strings.Builder

	if m.deleting {
		return m.confirmView(width)
	}

	cur, ok := m.current()
	if !ok {
		b.WriteString(subtitleStyle.Render("Memoir") + "\n\n")
		b.WriteString("Select a memoir to view details.")
		return b.String()
	}

	title := cur.DisplayTitle()
	if cur.Bookmark {
		title += " " + bookmarkStyle.Render("*")
	}
	b.WriteString(subtitleStyle.Width(width-bordersAndPaddingWidth).Render(title) + "\n\n")

	date := memoirs.Deref(cur.Date)
	if date == "" {
		date = "undated"
	}
	b.WriteString(labelStyle.Render("Date: ") + inactiveStyle.Render(date) + "\n")

	cats := make([]string, 0, len(memoirs.AllCategories))
	for _, c := range cur.Categories() {
		cats = append(cats, string(c))
	}
	catLine := "-"
	if len(cats) > 0 {
		catLine = strings.Join(cats, " ")
	}
	b.WriteString(labelStyle.Render("Categories: ") + categoryStyle.Render(catLine) + "\n\n")

	if text := memoirs.PlainText(memoirs.Deref(cur.Content)); text != "" {
		b.WriteString(inactiveStyle.Width(width-bordersAndPaddingWidth).Render(text) + "\n\n")
	}

	if len(cur.Media) == 0 {
		return b.String()
	}

	mode, expanded, selected := layout.Preview, m.expanded, -1
	if m.columnFocus == focusMedia {
		mode, expanded, selected = layout.Full, false, m.mediaCursor
	}
	grid := renderGrid(layout.Resolve(cur.Media, mode, expanded), width-bordersAndPaddingWidth, selected)
	style := gridStyle
	if m.columnFocus == focusMedia {
		style = gridFocus
	}
	b.WriteString(style.Render(grid) + "\n\n")

	if m.columnFocus == focusMedia {
		for i, a := range cur.Media {
			line := fmt.Sprintf("%d. %s %s", i+1, a.Type, filepath.Base(a.URI))
			if a.Duration != nil {
				line += " " + formatDuration(*a.Duration)
			}
			b.WriteString(generateLinePointer(i == m.mediaCursor, 2) + truncate(line, width-bordersAndPaddingWidth-2) + "\n")
		}
	}
	return b.String()
}

func (m model) confirmView(width int) string {
	var b strings.Builder
	cur, _ := m.current()

	subtitle, target := "Delete Memoir", cur.DisplayTitle()
	if m.columnFocus == focusMedia && m.mediaCursor < len(cur.Media) {
		subtitle = "Remove Media"
		target = fmt.Sprintf("%d. %s", m.mediaCursor+1, filepath.Base(cur.Media[m.mediaCursor].URI))
	}
	b.WriteString(subtitleStyle.Width(width-bordersAndPaddingWidth).Render(subtitle) + "\n\n")
	b.WriteString(textRedStyle.Render(target) + "\n\n")

	yesOpt, noOpt := "Yes", "No"
	if m.deleteConfirmIdx == 0 {
		yesOpt = dangerSelectedStyle.Render(" >" + yesOpt)
		noOpt = inactiveStyle.Render("  " + noOpt)
	} else {
		yesOpt = inactiveStyle.Render("  " + yesOpt)
		noOpt = selectedStyle.Render(" >" + noOpt)
	}
	b.WriteString(fmt.Sprintf("%s\n%s\n\n", yesOpt, noOpt))
	b.WriteString("(enter to confirm, esc to cancel, up/down to switch)")
	return b.String()
}

func formatDuration(seconds float64) string {
	d := time.Duration(seconds * float64(time.Second)).Round(time.Second)
	return fmt.Sprintf("%d:%02d", int(d.Minutes()), int(d.Seconds())%60)
}

// ShowTUI runs the interactive browser until the user quits.
func ShowTUI(svc *memoirs.Service, db *sql.DB) error {
	p := tea.NewProgram(initModel(svc, db), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
