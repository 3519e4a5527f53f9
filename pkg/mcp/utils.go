package mcp

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/unowned-ai/memoirs/pkg/media"
	"github.com/unowned-ai/memoirs/pkg/memoirs"
)

// optString returns the named string argument and whether it was supplied.
func optString(request mcp.CallToolRequest, name string) (*string, bool) {
	v, ok := request.Params.Arguments[name].(string)
	if !ok {
		return nil, false
	}
	return &v, true
}

func optBool(request mcp.CallToolRequest, name string) (*bool, bool) {
	v, ok := request.Params.Arguments[name].(bool)
	if !ok {
		return nil, false
	}
	return &v, true
}

// number reads a JSON number argument, falling back to def.
func number(request mcp.CallToolRequest, name string, def float64) float64 {
	if v, ok := request.Params.Arguments[name].(float64); ok {
		return v
	}
	return def
}

func requiredString(request mcp.CallToolRequest, name string) (string, *mcp.CallToolResult) {
	v, ok := request.Params.Arguments[name].(string)
	if !ok || strings.TrimSpace(v) == "" {
		return "", mcp.NewToolResultError(fmt.Sprintf("'%s' parameter is required and must be a non-empty string.", name))
	}
	return v, nil
}

// parseMedia decodes the media argument: a JSON array of {uri, type, duration}.
func parseMedia(raw string) ([]media.Asset, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	var list []media.Asset
	if err := json.Unmarshal([]byte(raw), &list); err != nil {
		return nil, fmt.Errorf("'media' must be a JSON array of {\"uri\", \"type\", \"duration\"}: %w", err)
	}
	for i, a := range list {
		if a.URI == "" {
			return nil, fmt.Errorf("media item %d has no uri", i)
		}
		list[i].Type = media.ParseType(string(a.Type))
	}
	return list, nil
}

// parseCategories splits a comma-separated category list.
func parseCategories(raw string) ([]memoirs.Category, error) {
	var out []memoirs.Category
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		c, ok := memoirs.ParseCategory(part)
		if !ok {
			return nil, fmt.Errorf("unknown category '%s'", part)
		}
		out = append(out, c)
	}
	return out, nil
}

func jsonResult(v any, what string) (*mcp.CallToolResult, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to serialize %s to JSON: %v", what, err)), nil
	}
	return mcp.NewToolResultText(string(b)), nil
}
