package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/ziadkadry99/green-analyzer/internal/analysis"
)

func analysisKeys() []string {
	out := make([]string, len(analysis.AllKeys))
	for i, k := range analysis.AllKeys {
		out[i] = string(k)
	}
	return out
}

// getStateTool defines the get_state MCP tool.
var getStateTool = mcp.NewTool("get_state",
	mcp.WithDescription("Get the current wizard step, the questionnaire answers, which analyses are running and any error."),
)

// getAnalysisTool defines the get_analysis MCP tool.
var getAnalysisTool = mcp.NewTool("get_analysis",
	mcp.WithDescription("Get the markdown text and sources of one analysis, from the working session or from the latest run of a saved project."),
	mcp.WithString("key",
		mcp.Required(),
		mcp.Description("Analysis section"),
		mcp.Enum(analysisKeys()...),
	),
	mcp.WithString("project_id",
		mcp.Description("Saved project to read instead of the working session"),
	),
)

// listProjectsTool defines the list_projects MCP tool.
var listProjectsTool = mcp.NewTool("list_projects",
	mcp.WithDescription("List saved projects in creation order."),
)

// shareLinkTool defines the share_link MCP tool.
var shareLinkTool = mcp.NewTool("share_link",
	mcp.WithDescription("Build a read-only share link for the working session."),
)
