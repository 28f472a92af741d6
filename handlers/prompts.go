// ABOUTME: MCP prompt handlers for reusable outreach workflow templates
// ABOUTME: Builds prospect summaries and next-step suggestions from stored records
package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/leadbook/models"
	"github.com/harperreed/leadbook/people"
	"github.com/harperreed/leadbook/viz"
)

type PromptHandlers struct {
	store people.Store
}

func NewPromptHandlers(store people.Store) *PromptHandlers {
	return &PromptHandlers{store: store}
}

// GetPrompt generates the prompt message based on the template
func (h *PromptHandlers) GetPrompt(ctx context.Context, request *mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	arguments := request.Params.Arguments
	switch request.Params.Name {
	case "prospect-summary":
		return h.getProspectSummaryPrompt(ctx, arguments)
	case "outreach-suggestions":
		return h.getOutreachSuggestionsPrompt(ctx, arguments)
	default:
		return nil, fmt.Errorf("unknown prompt: %s", request.Params.Name)
	}
}

func (h *PromptHandlers) getProspectSummaryPrompt(ctx context.Context, args map[string]string) (*mcp.GetPromptResult, error) {
	id, ok := args["person_id"]
	if !ok || id == "" {
		return nil, fmt.Errorf("person_id is required")
	}

	p, err := h.store.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch person: %w", err)
	}

	var promptText strings.Builder
	promptText.WriteString("Please provide a short briefing on this prospect:\n\n")
	fmt.Fprintf(&promptText, "Name: %s\n", p.DisplayName())
	line := func(label string, v *string) {
		if s := models.Deref(v); s != "" {
			fmt.Fprintf(&promptText, "%s: %s\n", label, s)
		}
	}
	line("Headline", p.Headline)
	line("Position", p.CurrentPosition)
	line("Company", p.CurrentCompany)
	line("Location", p.Location)
	line("Email", p.Email)
	line("Profile", p.URL)
	if p.ConnectionDegree > 0 {
		fmt.Fprintf(&promptText, "Connection: %s\n", models.ConnectionLabel(p.ConnectionDegree))
	}
	fmt.Fprintf(&promptText, "Pipeline status: %s\n", p.Status)
	fmt.Fprintf(&promptText, "Engagement: %d\n", p.Engagement)
	if about := models.Deref(p.About); about != "" {
		fmt.Fprintf(&promptText, "\nAbout:\n%s\n", about)
	}

	promptText.WriteString("\nPlease provide:")
	promptText.WriteString("\n1. A brief summary of their role and background")
	promptText.WriteString("\n2. A suggested message for the next outreach stage")
	promptText.WriteString("\n3. Anything in their profile worth mentioning in that message")

	return textPrompt(fmt.Sprintf("Summary for prospect: %s", p.DisplayName()), promptText.String()), nil
}

func (h *PromptHandlers) getOutreachSuggestionsPrompt(ctx context.Context, args map[string]string) (*mcp.GetPromptResult, error) {
	all, err := h.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch people: %w", err)
	}

	status := models.ContactStatus(args["status"])
	if status != "" && !status.Valid() {
		return nil, fmt.Errorf("unknown status %q", status)
	}

	stats := viz.GenerateDashboardStats(all)

	var promptText strings.Builder
	promptText.WriteString("Current outreach pipeline:\n\n")
	for _, s := range stats.ByStatus {
		if s.Count > 0 {
			fmt.Fprintf(&promptText, "- %s: %d\n", s.Status, s.Count)
		}
	}

	promptText.WriteString("\nProspects waiting on a next step:\n")
	count := 0
	for _, p := range all {
		if p.Status.IsTerminal() || (status != "" && p.Status != status) {
			continue
		}
		fmt.Fprintf(&promptText, "- %s (%s, engagement %d)", p.DisplayName(), p.Status, p.Engagement)
		if c := models.Deref(p.CurrentCompany); c != "" {
			fmt.Fprintf(&promptText, " at %s", c)
		}
		promptText.WriteString("\n")
		count++
	}
	if count == 0 {
		promptText.WriteString("Nobody is waiting on a next step.\n")
	}

	promptText.WriteString("\nPlease:")
	promptText.WriteString("\n1. Prioritize which prospects to move forward first")
	promptText.WriteString("\n2. Suggest the next action for each")
	promptText.WriteString("\n3. Point out stages where prospects are piling up")

	return textPrompt("Outreach suggestions", promptText.String()), nil
}

func textPrompt(description, text string) *mcp.GetPromptResult {
	return &mcp.GetPromptResult{
		Description: description,
		Messages: []*mcp.PromptMessage{
			{
				Role:    "user",
				Content: &mcp.TextContent{Text: text},
			},
		},
	}
}
