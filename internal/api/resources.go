package api

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const defaultHistoryLimit = 50

// jsonResource packages a value as a single JSON resource content block.
func jsonResource(uri string, v interface{}) (*mcp.ReadResourceResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// parseHistoryLimit extracts the trailing {limit} segment of a
// promptforge://history/{limit} URI.
func parseHistoryLimit(uri string) int {
	idx := strings.LastIndex(uri, "/")
	if idx < 0 || idx == len(uri)-1 {
		return defaultHistoryLimit
	}
	limit, err := strconv.Atoi(uri[idx+1:])
	if err != nil || limit <= 0 {
		return defaultHistoryLimit
	}
	return limit
}
