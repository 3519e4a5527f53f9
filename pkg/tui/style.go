package tui

import (
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// UI styles and layout settings
// Color palette "Blue Moon" from https://gogh-co.github.io/Gogh/
const (
	colorGray     = "#353b52"
	colorWhite    = "#ffffff"
	colorGreen    = "#acfab4"
	colorGreenDim = "#b4c4b4"
	colorRed      = "#e61f44"
	colorRedDim   = "#d06178"
	colorPurple   = "#b9a3eb"
	colorBlue     = "#89ddff"
	colorYellow   = "#ffcb6b"

	marqueeTickDuration = time.Duration(time.Second / 20)

	bordersAndPaddingWidth = 4
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).
			Foreground(lipgloss.Color(colorBlue)).
			Background(lipgloss.Color(colorGray)).
			Padding(0, 2).Align(lipgloss.Center)
	subtitleStyle = lipgloss.NewStyle().Bold(true).
			Foreground(lipgloss.Color(colorBlue))
	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(colorGray)).
			Background(lipgloss.Color(colorGreen))
	dangerSelectedStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color(colorGray)).
				Background(lipgloss.Color(colorRed))
	inactiveStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(colorWhite))
	textRedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color(colorRed))
	labelStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color(colorBlue))
	categoryStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(colorPurple))
	bookmarkStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(colorYellow))
	gridStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color(colorGreenDim))
	gridFocus     = lipgloss.NewStyle().Foreground(lipgloss.Color(colorGreen)).Bold(true)

	footerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(colorGray))
)

// TextStatusColorize colors text by status: 0 unknown, 1 green, 2 red.
func TextStatusColorize(text string, status int) string {
	switch status {
	case 1:
		return lipgloss.NewStyle().Foreground(lipgloss.Color(colorGreenDim)).Render(text)
	case 2:
		return lipgloss.NewStyle().Foreground(lipgloss.Color(colorRedDim)).Render(text)
	default:
		return lipgloss.NewStyle().Foreground(lipgloss.Color(colorGray)).Render(text)
	}
}

// Generates pointer symbol when line in focus
func generateLinePointer(isPoint bool, length int) string {
	if isPoint {
		return ">" + strings.Repeat(" ", length-1)
	}
	return strings.Repeat(" ", length)
}

// marqueeText scrolls text that does not fit in availableWidth. It moves by
// rune and never returns more than availableWidth cells.
func (m model) marqueeText(text string, availableWidth int) string {
	if ansi.StringWidth(text) <= availableWidth {
		return text
	}
	runes := []rune(text)
	paddedText := []rune(text + "    " + text)
	offset := m.marqueeOffset % (len(runes) + bordersAndPaddingWidth)
	end := min(offset+availableWidth, len(paddedText))
	return ansi.Truncate(string(paddedText[offset:end]), availableWidth, "")
}

// truncate shortens text to width cells with a trailing "..".
func truncate(text string, width int) string {
	if width <= 3 || ansi.StringWidth(text) <= width {
		return text
	}
	return ansi.Truncate(text, width, "..")
}

// columnWidths splits the terminal between the list and the detail panel.
// The focused side gets the larger share.
func (m model) columnWidths() (int, int) {
	left := (m.width * 35) / 100
	if m.columnFocus == focusMedia {
		left = (m.width * 25) / 100
	}
	return left, m.width - left
}
