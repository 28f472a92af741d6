// ABOUTME: Terminal dashboard statistics and rendering
// ABOUTME: Summarizes the outreach pipeline, network reach and engagement as ASCII
package viz

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/harperreed/leadbook/models"
)

type DashboardStats struct {
	Total     int `json:"total"`
	Connected int `json:"connected"`

	// ByStatus follows pipeline order and includes empty stages.
	ByStatus []StageCount `json:"byStatus"`

	// ByDegree counts records per connection degree.
	ByDegree map[int]int `json:"byDegree"`

	TotalEngagement int             `json:"totalEngagement"`
	TopEngaged      []models.Person `json:"topEngaged"`

	// Untouched counts records still at the first stage with no engagement.
	Untouched int `json:"untouched"`
}

type StageCount struct {
	Status models.ContactStatus `json:"status"`
	Count  int                  `json:"count"`
}

const topEngagedLimit = 5

// GenerateDashboardStats computes stats over the given records.
func GenerateDashboardStats(records []models.Person) *DashboardStats {
	stats := &DashboardStats{
		Total:    len(records),
		ByDegree: make(map[int]int),
	}

	counts := make(map[models.ContactStatus]int)
	for _, p := range records {
		counts[p.Status]++
		stats.ByDegree[p.ConnectionDegree]++
		stats.TotalEngagement += p.Engagement
		if p.Connected {
			stats.Connected++
		}
		if p.Status == models.StatusNotStarted && p.Engagement == 0 {
			stats.Untouched++
		}
	}

	for _, s := range models.AllStatuses() {
		stats.ByStatus = append(stats.ByStatus, StageCount{Status: s, Count: counts[s]})
	}

	engaged := slices.DeleteFunc(slices.Clone(records), func(p models.Person) bool { return p.Engagement == 0 })
	slices.SortStableFunc(engaged, func(a, b models.Person) int {
		return cmp.Compare(b.Engagement, a.Engagement)
	})
	if len(engaged) > topEngagedLimit {
		engaged = engaged[:topEngagedLimit]
	}
	stats.TopEngaged = engaged

	return stats
}

// StatsFromCounts builds pipeline-only stats from per-status counts.
func StatsFromCounts(counts map[models.ContactStatus]int) *DashboardStats {
	stats := &DashboardStats{ByDegree: make(map[int]int)}
	for _, s := range models.AllStatuses() {
		stats.ByStatus = append(stats.ByStatus, StageCount{Status: s, Count: counts[s]})
		stats.Total += counts[s]
	}
	return stats
}

func RenderDashboard(stats *DashboardStats) string {
	var out strings.Builder

	out.WriteString("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n")
	out.WriteString("  LEADBOOK DASHBOARD\n")
	out.WriteString("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n\n")

	out.WriteString("PIPELINE\n")
	out.WriteString(RenderPipeline(stats.ByStatus))
	out.WriteString("\n")

	out.WriteString("NETWORK\n")
	out.WriteString(fmt.Sprintf("  👥 %d people  🤝 %d connected  💬 %d total engagement\n",
		stats.Total, stats.Connected, stats.TotalEngagement))

	degrees := make([]int, 0, len(stats.ByDegree))
	for d := range stats.ByDegree {
		degrees = append(degrees, d)
	}
	slices.Sort(degrees)
	for _, d := range degrees {
		label := models.ConnectionLabel(d)
		if d == 0 {
			label = "out of network"
		}
		out.WriteString(fmt.Sprintf("  %-15s %d\n", label, stats.ByDegree[d]))
	}
	out.WriteString("\n")

	if len(stats.TopEngaged) > 0 {
		out.WriteString("MOST ENGAGED\n")
		for _, p := range stats.TopEngaged {
			out.WriteString(fmt.Sprintf("  %-30s %3d  %s\n", truncate(p.DisplayName(), 30), p.Engagement, p.Status))
		}
		out.WriteString("\n")
	}

	if stats.Untouched > 0 {
		out.WriteString("NEEDS ATTENTION\n")
		out.WriteString(fmt.Sprintf("  ⚠️  %d people not contacted yet\n", stats.Untouched))
	}

	return out.String()
}

// RenderPipeline draws one bar per stage, scaled to the largest stage.
func RenderPipeline(stages []StageCount) string {
	var out strings.Builder

	maxCount := 1
	for _, s := range stages {
		maxCount = max(maxCount, s.Count)
	}

	for _, s := range stages {
		barLength := (s.Count * 20) / maxCount
		bar := strings.Repeat("█", barLength) + strings.Repeat("░", 20-barLength)
		out.WriteString(fmt.Sprintf("  %-28s %s %3d\n", s.Status, bar, s.Count))
	}
	return out.String()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
