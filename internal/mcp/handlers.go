package mcp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/ziadkadry99/green-analyzer/internal/analysis"
	"github.com/ziadkadry99/green-analyzer/internal/projects"
	"github.com/ziadkadry99/green-analyzer/internal/report"
)

// handleGetState summarizes the working session.
func (s *Server) handleGetState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	st := s.ctrl.State()

	var sb strings.Builder
	label := "Unknown"
	if st.Step >= 1 && st.Step <= len(st.Steps) {
		label = st.Steps[st.Step-1]
	}
	fmt.Fprintf(&sb, "# Step %d of %d: %s\n\n", st.Step, len(st.Steps), label)
	if st.ActiveProjectID != "" {
		fmt.Fprintf(&sb, "Active project: %s\n", st.ActiveProjectID)
	}
	fmt.Fprintf(&sb, "Save status: %s\n", st.SaveStatus)
	if st.Error != "" {
		fmt.Fprintf(&sb, "Error: %s\n", st.Error)
	}

	var running, done []string
	for _, k := range analysis.AllKeys {
		if st.Loading[k] {
			running = append(running, string(k))
		}
		if st.Results.Text(k) != "" {
			done = append(done, string(k))
		}
	}
	if len(running) > 0 {
		fmt.Fprintf(&sb, "Running: %s\n", strings.Join(running, ", "))
	}
	if len(done) > 0 {
		fmt.Fprintf(&sb, "Completed: %s\n", strings.Join(done, ", "))
	}

	answers := report.Answers(st.Form)
	if len(answers) > 0 {
		sb.WriteString("\n## Answers\n\n")
		for _, a := range answers {
			fmt.Fprintf(&sb, "- **%s**: %s\n", a.Label, a.Value)
		}
	}
	return mcp.NewToolResultText(sb.String()), nil
}

// handleGetAnalysis returns one section with its sources.
func (s *Server) handleGetAnalysis(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	keyStr, err := request.RequireString("key")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: key"), nil
	}
	key := analysis.Key(keyStr)
	if !key.Valid() {
		return mcp.NewToolResultError(fmt.Sprintf("unknown analysis %q", keyStr)), nil
	}

	var content analysis.Content
	if id := request.GetString("project_id", ""); id != "" {
		p, err := s.projects.Get(id)
		if errors.Is(err, projects.ErrNotFound) {
			return mcp.NewToolResultError(fmt.Sprintf("project %q not found", id)), nil
		}
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to read project: %v", err)), nil
		}
		content = p.Latest().AnalysisResults[key]
	} else {
		content = s.ctrl.State().Results[key]
	}

	if strings.TrimSpace(content.Text) == "" {
		return mcp.NewToolResultText(fmt.Sprintf("The %s analysis has not been run yet.", key)), nil
	}

	var sb strings.Builder
	sb.WriteString(content.Text)
	if len(content.Sources) > 0 {
		sb.WriteString("\n\n## Sources\n\n")
		for i, c := range content.Sources {
			title := c.Title
			if title == "" {
				title = c.URI
			}
			fmt.Fprintf(&sb, "%d. [%s](%s)\n", i+1, title, c.URI)
		}
	}
	return mcp.NewToolResultText(sb.String()), nil
}

// handleListProjects lists saved projects.
func (s *Server) handleListProjects(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	list := s.projects.Summaries()
	if len(list) == 0 {
		return mcp.NewToolResultText("No saved projects."), nil
	}

	var sb strings.Builder
	sb.WriteString("| ID | Name | Location | Runs | Updated |\n|---|---|---|---|---|\n")
	for _, p := range list {
		fmt.Fprintf(&sb, "| %s | %s | %s | %d | %s |\n",
			p.ID, p.Name, p.Location, p.RunCount,
			time.UnixMilli(p.UpdatedAt).UTC().Format(time.RFC3339))
	}
	return mcp.NewToolResultText(sb.String()), nil
}

// handleShareLink builds a share link for the working session.
func (s *Server) handleShareLink(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	link, err := s.ctrl.ShareLink(s.shareBase)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to build share link: %v", err)), nil
	}
	return mcp.NewToolResultText(link), nil
}
