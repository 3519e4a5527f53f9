package mcp

import (
	"context"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/unowned-ai/memoirs/pkg/layout"
	"github.com/unowned-ai/memoirs/pkg/media"
	"github.com/unowned-ai/memoirs/pkg/memoirs"
)

// RegisterPingTool registers the simple ping tool.
func RegisterPingTool(s *server.MCPServer) {
	pingTool := mcp.NewTool("ping",
		mcp.WithDescription("Responds with 'pong' to check if the Memoirs MCP server is alive."),
	)
	s.AddTool(pingTool, pingHandler)
}

func pingHandler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText("pong_memoirs"), nil
}

// RegisterListMemoirsTool registers the list_memoirs tool.
func RegisterListMemoirsTool(s *server.MCPServer, svc *memoirs.Service) {
	tool := mcp.NewTool("list_memoirs",
		mcp.WithDescription("Lists memoirs, newest first."),
		mcp.WithString("category", mcp.Description("Optional comma-separated categories the memoirs must all have: bookmark, photo, video, audio, text.")),
		mcp.WithNumber("limit", mcp.Description("Optional maximum number of memoirs to return.")),
	)
	s.AddTool(tool, listMemoirsHandler(svc))
}

func listMemoirsHandler(svc *memoirs.Service) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var q memoirs.Query
		if raw, ok := optString(request, "category"); ok {
			cats, err := parseCategories(*raw)
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			q.Categories = cats
		}

		list := memoirs.Search(svc.Store().List(), q)
		if limit := int(number(request, "limit", 0)); limit > 0 && limit < len(list) {
			list = list[:limit]
		}
		return jsonResult(list, "memoirs")
	}
}

// RegisterGetMemoirTool registers the get_memoir tool.
func RegisterGetMemoirTool(s *server.MCPServer, svc *memoirs.Service) {
	tool := mcp.NewTool("get_memoir",
		mcp.WithDescription("Retrieves a memoir by id, with its derived categories."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Id of the memoir.")),
	)
	s.AddTool(tool, getMemoirHandler(svc))
}

type memoirView struct {
	memoirs.Memoir
	Categories []memoirs.Category `json:"categories"`
}

func getMemoirHandler(svc *memoirs.Service) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, errResult := requiredString(request, "id")
		if errResult != nil {
			return errResult, nil
		}

		m, ok := svc.Store().Get(id)
		if !ok {
			return mcp.NewToolResultError(fmt.Sprintf("Memoir '%s' not found.", id)), nil
		}
		return jsonResult(memoirView{Memoir: m, Categories: m.Categories()}, "memoir")
	}
}

// RegisterCreateMemoirTool registers the create_memoir tool.
func RegisterCreateMemoirTool(s *server.MCPServer, svc *memoirs.Service) {
	tool := mcp.NewTool("create_memoir",
		mcp.WithDescription("Creates a new memoir. At least one of title, content or media should be given."),
		mcp.WithString("title", mcp.Description("Optional title.")),
		mcp.WithString("content", mcp.Description("Optional rich-text (HTML) content.")),
		mcp.WithString("date", mcp.Description("Optional nominal date, YYYY-MM-DD.")),
		mcp.WithString("media", mcp.Description("Optional JSON array of media items: [{\"uri\": \"file:///...\", \"type\": \"image|video|audio|livePhoto|pairedVideo\", \"duration\": 3.5}].")),
		mcp.WithBoolean("bookmark", mcp.Description("Optional initial bookmark flag.")),
		mcp.WithBoolean("title_visible", mcp.Description("Optional; defaults to true.")),
	)
	s.AddTool(tool, createMemoirHandler(svc))
}

func createMemoirHandler(svc *memoirs.Service) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var d memoirs.Draft
		d.Title, _ = optString(request, "title")
		d.Content, _ = optString(request, "content")
		d.Date, _ = optString(request, "date")
		d.TitleVisible, _ = optBool(request, "title_visible")
		if b, ok := optBool(request, "bookmark"); ok {
			d.Bookmark = *b
		}

		if raw, ok := optString(request, "media"); ok {
			list, err := parseMedia(*raw)
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			if len(list) > svc.AttachmentLimit() {
				return mcp.NewToolResultError(fmt.Sprintf("A memoir can hold at most %d media items, got %d.", svc.AttachmentLimit(), len(list))), nil
			}
			d.Media = list
		}

		m := svc.Create(ctx, d)
		return jsonResult(m, "memoir")
	}
}

// RegisterUpdateMemoirTool registers the update_memoir tool.
func RegisterUpdateMemoirTool(s *server.MCPServer, svc *memoirs.Service) {
	tool := mcp.NewTool("update_memoir",
		mcp.WithDescription("Updates fields of an existing memoir. Omitted fields are left unchanged."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Id of the memoir to update.")),
		mcp.WithString("title", mcp.Description("Optional new title.")),
		mcp.WithString("content", mcp.Description("Optional new rich-text content.")),
		mcp.WithString("date", mcp.Description("Optional new nominal date, YYYY-MM-DD.")),
		mcp.WithBoolean("title_visible", mcp.Description("Optional title visibility.")),
	)
	s.AddTool(tool, updateMemoirHandler(svc))
}

func updateMemoirHandler(svc *memoirs.Service) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, errResult := requiredString(request, "id")
		if errResult != nil {
			return errResult, nil
		}

		p := memoirs.Patch{ID: id}
		p.Title, _ = optString(request, "title")
		p.Content, _ = optString(request, "content")
		p.Date, _ = optString(request, "date")
		p.TitleVisible, _ = optBool(request, "title_visible")
		if p.Empty() {
			return mcp.NewToolResultError("No fields to update. Provide at least one of title, content, date, title_visible."), nil
		}

		m, ok := svc.Edit(ctx, p)
		if !ok {
			return mcp.NewToolResultError(fmt.Sprintf("Memoir '%s' not found.", id)), nil
		}
		return jsonResult(m, "memoir")
	}
}

// RegisterDeleteMemoirTool registers the delete_memoir tool.
func RegisterDeleteMemoirTool(s *server.MCPServer, svc *memoirs.Service) {
	tool := mcp.NewTool("delete_memoir",
		mcp.WithDescription("Deletes a memoir together with its media files."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Id of the memoir to delete.")),
	)
	s.AddTool(tool, deleteMemoirHandler(svc))
}

func deleteMemoirHandler(svc *memoirs.Service) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, errResult := requiredString(request, "id")
		if errResult != nil {
			return errResult, nil
		}
		if !svc.DeleteMemoir(ctx, id) {
			return mcp.NewToolResultError(fmt.Sprintf("Memoir '%s' not found.", id)), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("Memoir '%s' deleted.", id)), nil
	}
}

// RegisterRemoveMediaTool registers the remove_media tool.
func RegisterRemoveMediaTool(s *server.MCPServer, svc *memoirs.Service) {
	tool := mcp.NewTool("remove_media",
		mcp.WithDescription("Removes one media item from a memoir. If the memoir is left with no title, content or media it is deleted."),
		mcp.WithString("memoir_id", mcp.Required(), mcp.Description("Id of the memoir.")),
		mcp.WithString("media_id", mcp.Required(), mcp.Description("Id of the media item to remove.")),
	)
	s.AddTool(tool, removeMediaHandler(svc))
}

func removeMediaHandler(svc *memoirs.Service) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		memoirID, errResult := requiredString(request, "memoir_id")
		if errResult != nil {
			return errResult, nil
		}
		mediaID, errResult := requiredString(request, "media_id")
		if errResult != nil {
			return errResult, nil
		}

		outcome, ok := svc.RemoveMedia(ctx, memoirID, mediaID)
		if !ok {
			return mcp.NewToolResultError(fmt.Sprintf("Media '%s' not found on memoir '%s'.", mediaID, memoirID)), nil
		}
		return jsonResult(map[string]string{"memoir_id": memoirID, "media_id": mediaID, "outcome": outcome.String()}, "outcome")
	}
}

// RegisterAttachMediaTool registers the attach_media tool.
func RegisterAttachMediaTool(s *server.MCPServer, svc *memoirs.Service) {
	tool := mcp.NewTool("attach_media",
		mcp.WithDescription("Attaches media items to a memoir, up to the attachment limit."),
		mcp.WithString("memoir_id", mcp.Required(), mcp.Description("Id of the memoir.")),
		mcp.WithString("media", mcp.Required(), mcp.Description("JSON array of media items: [{\"uri\": \"...\", \"type\": \"image\"}].")),
		mcp.WithBoolean("replace_last", mcp.Description("When the limit would be exceeded, replace the last item with the first new one instead of failing.")),
	)
	s.AddTool(tool, attachMediaHandler(svc))
}

func attachMediaHandler(svc *memoirs.Service) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		memoirID, errResult := requiredString(request, "memoir_id")
		if errResult != nil {
			return errResult, nil
		}
		raw, errResult := requiredString(request, "media")
		if errResult != nil {
			return errResult, nil
		}
		picked, err := parseMedia(raw)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		var confirm memoirs.ConfirmFunc
		if replace, ok := optBool(request, "replace_last"); ok && *replace {
			confirm = func([]media.Asset, []media.Asset, int) memoirs.LimitDecision { return memoirs.ReplaceLast }
		}

		m, err := svc.AttachMedia(ctx, memoirID, picked, confirm)
		switch {
		case errors.Is(err, memoirs.ErrNotFound):
			return mcp.NewToolResultError(fmt.Sprintf("Memoir '%s' not found.", memoirID)), nil
		case errors.Is(err, memoirs.ErrAttachmentLimit):
			return mcp.NewToolResultError(fmt.Sprintf("A memoir can hold at most %d media items. Pass replace_last=true to replace the last one.", svc.AttachmentLimit())), nil
		case err != nil:
			return mcp.NewToolResultError(fmt.Sprintf("Failed to attach media: %v", err)), nil
		}
		return jsonResult(m, "memoir")
	}
}

// RegisterToggleBookmarkTool registers the toggle_bookmark tool.
func RegisterToggleBookmarkTool(s *server.MCPServer, svc *memoirs.Service) {
	tool := mcp.NewTool("toggle_bookmark",
		mcp.WithDescription("Flips the bookmark flag of a memoir."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Id of the memoir.")),
	)
	s.AddTool(tool, toggleBookmarkHandler(svc))
}

func toggleBookmarkHandler(svc *memoirs.Service) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, errResult := requiredString(request, "id")
		if errResult != nil {
			return errResult, nil
		}
		m, ok := svc.ToggleBookmark(ctx, id)
		if !ok {
			return mcp.NewToolResultError(fmt.Sprintf("Memoir '%s' not found.", id)), nil
		}
		return jsonResult(m, "memoir")
	}
}

// RegisterSearchMemoirsTool registers the search_memoirs tool.
func RegisterSearchMemoirsTool(s *server.MCPServer, svc *memoirs.Service) {
	tool := mcp.NewTool("search_memoirs",
		mcp.WithDescription("Searches memoirs by text, categories and date range."),
		mcp.WithString("query", mcp.Description("Case-insensitive text matched against titles and content.")),
		mcp.WithString("categories", mcp.Description("Optional comma-separated categories that must all match.")),
		mcp.WithString("from", mcp.Description("Optional earliest date, YYYY-MM-DD.")),
		mcp.WithString("to", mcp.Description("Optional latest date, YYYY-MM-DD.")),
	)
	s.AddTool(tool, searchMemoirsHandler(svc))
}

func searchMemoirsHandler(svc *memoirs.Service) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var q memoirs.Query
		if v, ok := optString(request, "query"); ok {
			q.Text = *v
		}
		if v, ok := optString(request, "from"); ok {
			q.From = *v
		}
		if v, ok := optString(request, "to"); ok {
			q.To = *v
		}
		if raw, ok := optString(request, "categories"); ok {
			cats, err := parseCategories(*raw)
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			q.Categories = cats
		}

		return jsonResult(memoirs.Search(svc.Store().List(), q), "memoirs")
	}
}

// RegisterResolveLayoutTool registers the resolve_layout tool.
func RegisterResolveLayoutTool(s *server.MCPServer, svc *memoirs.Service) {
	tool := mcp.NewTool("resolve_layout",
		mcp.WithDescription("Returns the media grid for a memoir (by id) or for a bare media count, optionally placed into a viewport width."),
		mcp.WithString("id", mcp.Description("Memoir id. Either id or count is required.")),
		mcp.WithNumber("count", mcp.Description("Number of media items, used when no id is given.")),
		mcp.WithString("mode", mcp.Description("'full' (editor, default) or 'preview' (list card).")),
		mcp.WithBoolean("expanded", mcp.Description("Preview only: show every item instead of the collapsed five.")),
		mcp.WithNumber("width", mcp.Description("Optional viewport width; when set the placed rectangles are returned too.")),
		mcp.WithNumber("gap", mcp.Description("Spacing between cells when placing (default 2).")),
	)
	s.AddTool(tool, resolveLayoutHandler(svc))
}

type layoutResult struct {
	Count int           `json:"count"`
	Mode  string        `json:"mode"`
	Tree  *layout.Tree  `json:"tree"`
	Frame *layout.Frame `json:"frame,omitempty"`
}

func resolveLayoutHandler(svc *memoirs.Service) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		mode := layout.Full
		if v, ok := optString(request, "mode"); ok {
			mode = layout.ParseMode(*v)
		}
		expanded := false
		if v, ok := optBool(request, "expanded"); ok {
			expanded = *v
		}

		count := -1
		if id, ok := optString(request, "id"); ok && *id != "" {
			m, found := svc.Store().Get(*id)
			if !found {
				return mcp.NewToolResultError(fmt.Sprintf("Memoir '%s' not found.", *id)), nil
			}
			count = len(m.Media)
		} else if n, ok := request.Params.Arguments["count"].(float64); ok {
			count = int(n)
		}
		if count < 0 {
			return mcp.NewToolResultError("Either 'id' or a non-negative 'count' is required."), nil
		}

		res := layoutResult{Count: count, Mode: mode.String(), Tree: layout.ResolveCount(count, mode, expanded)}
		if width := number(request, "width", 0); width > 0 {
			f := layout.Place(res.Tree, width, number(request, "gap", 2))
			res.Frame = &f
		}
		return jsonResult(res, "layout")
	}
}
