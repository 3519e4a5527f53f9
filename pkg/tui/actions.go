package tui

import (
	"context"
	"database/sql"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/unowned-ai/memoirs/pkg/memoirs"
)

// memoirsMsg carries a fresh copy of the store's list.
type memoirsMsg []memoirs.Memoir

// statusMsg is a one-line note for the footer.
type statusMsg string

// Read the memoir list from the store and return tea data
func listMemoirs(svc *memoirs.Service) tea.Cmd {
	return func() tea.Msg {
		return memoirsMsg(svc.Store().List())
	}
}

func toggleBookmark(svc *memoirs.Service, id string) tea.Cmd {
	return func() tea.Msg {
		m, ok := svc.ToggleBookmark(context.Background(), id)
		if !ok {
			return statusMsg("memoir no longer exists")
		}
		if m.Bookmark {
			return statusMsg("bookmarked " + m.DisplayTitle())
		}
		return statusMsg("removed bookmark from " + m.DisplayTitle())
	}
}

func deleteMemoir(svc *memoirs.Service, id string) tea.Cmd {
	return func() tea.Msg {
		if !svc.DeleteMemoir(context.Background(), id) {
			return statusMsg("memoir no longer exists")
		}
		return statusMsg("memoir deleted")
	}
}

func removeMedia(svc *memoirs.Service, memoirID, mediaID string) tea.Cmd {
	return func() tea.Msg {
		outcome, ok := svc.RemoveMedia(context.Background(), memoirID, mediaID)
		switch {
		case !ok:
			return statusMsg("media item no longer exists")
		case outcome == memoirs.OutcomeMemoirDeleted:
			return statusMsg("last item removed, memoir deleted")
		default:
			return statusMsg("media item removed")
		}
	}
}

// Get database name and file path
func getDbPragmaList(db *sql.DB) (string, string) {
	var name, file string
	if db == nil {
		return name, file
	}
	err := db.QueryRow(`PRAGMA database_list`).Scan(new(int), &name, &file)
	if err != nil {
		return name, file
	}
	return name, file
}
