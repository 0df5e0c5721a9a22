// ABOUTME: MCP resource implementations for the wellness tracker.
// ABOUTME: Provides wellness://today and wellness://summary resources.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/harperreed/wellness/internal/models"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// summaryWindowDays is how far back wellness://summary averages metrics.
const summaryWindowDays = 30

func (s *Server) registerResources() {
	// wellness://today - factor status and check-ins for today
	s.mcpServer.AddResource(&mcp.Resource{
		URI:         "wellness://today",
		Name:        "Today's Wellness Log",
		Description: "Each active factor with today's status, plus today's wellbeing check-ins",
		MIMEType:    "application/json",
	}, s.handleTodayResource)

	// wellness://summary - streak dashboard and recent averages
	s.mcpServer.AddResource(&mcp.Resource{
		URI:         "wellness://summary",
		Name:        "Wellness Summary Dashboard",
		Description: "Streaks for every active factor and wellbeing averages over the last 30 days",
		MIMEType:    "application/json",
	}, s.handleSummaryResource)
}

// Resource handlers

type todayFactorView struct {
	Factor string `json:"factor"`
	Logged bool   `json:"logged"`
	Done   bool   `json:"done"`
}

func (s *Server) handleTodayResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	today := s.today()
	r := &models.DateRange{Start: &today, End: &today}

	factors, err := s.repo.ListFactors(false)
	if err != nil {
		return nil, fmt.Errorf("failed to list factors: %w", err)
	}
	entries, err := s.repo.ListFactorEntries(nil, r)
	if err != nil {
		return nil, fmt.Errorf("failed to list entries: %w", err)
	}
	done := make(map[string]bool, len(entries))
	for _, e := range entries {
		done[e.FactorID.String()] = e.Completed
	}

	status := make([]todayFactorView, 0, len(factors))
	pending := 0
	for _, f := range factors {
		completed, logged := done[f.ID.String()]
		if !logged {
			pending++
		}
		status = append(status, todayFactorView{Factor: f.Name, Logged: logged, Done: completed})
	}

	metrics, err := s.repo.ListMetricEntries(r, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to list check-ins: %w", err)
	}
	checkins := make([]moodView, 0, len(metrics))
	for _, m := range metrics {
		checkins = append(checkins, newMoodView(m))
	}

	result := map[string]interface{}{
		"date":     today.String(),
		"factors":  status,
		"checkins": checkins,
		"counts": map[string]int{
			"factors":  len(factors),
			"pending":  pending,
			"checkins": len(checkins),
		},
	}
	return jsonResource("wellness://today", result)
}

func (s *Server) handleSummaryResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	today := s.today()

	stats, err := s.insights.AllFactorStats(ctx, today, false)
	if err != nil {
		return nil, fmt.Errorf("failed to compute stats: %w", err)
	}
	streaks := make([]factorStatsView, 0, len(stats))
	for _, st := range stats {
		streaks = append(streaks, newFactorStatsView(st))
	}

	from := today.AddDays(-(summaryWindowDays - 1))
	summary, err := s.insights.MetricSummary(ctx, &models.DateRange{Start: &from, End: &today})
	if err != nil {
		return nil, fmt.Errorf("failed to summarize: %w", err)
	}

	result := map[string]interface{}{
		"generated_at": time.Now().Format(time.RFC3339),
		"as_of":        today.String(),
		"factors":      streaks,
		"averages":     newSummaryView(summary),
		"window_days":  summaryWindowDays,
	}
	return jsonResource("wellness://summary", result)
}

func jsonResource(uri string, v interface{}) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal result: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}
