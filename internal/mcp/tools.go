// ABOUTME: MCP tool implementations for logging factors and wellbeing entries.
// ABOUTME: Registers every wellness tool and handles the write and list tools.
package mcp

import (
	"context"
	"fmt"
	"time"

	"github.com/harperreed/wellness/internal/models"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func (s *Server) registerTools() {
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "add_factor",
		Description: "Create a lifestyle factor to track daily (exercise, meditation, alcohol, etc.)",
	}, s.handleAddFactor)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "list_factors",
		Description: "List tracked lifestyle factors",
	}, s.handleListFactors)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "log_factor",
		Description: "Log whether a factor was done on a date. Logging the same date again overwrites it.",
	}, s.handleLogFactor)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "add_mood",
		Description: "Record a wellbeing check-in: mood score plus optional energy, stress, anxiety, sleep and other scales",
	}, s.handleAddMood)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "list_mood",
		Description: "List recent wellbeing check-ins, most recent first",
	}, s.handleListMood)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "factor_stats",
		Description: "Completion rate, current streak and longest streak for one or all active factors",
	}, s.handleFactorStats)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "metric_summary",
		Description: "Average of every wellbeing field over a date range, ignoring missing values",
	}, s.handleMetricSummary)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "correlate",
		Description: "Pearson correlation between each active factor and one wellbeing field",
	}, s.handleCorrelate)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "correlation_matrix",
		Description: "Pairwise correlations between factors and wellbeing fields, with the strongest pairs",
	}, s.handleCorrelationMatrix)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "backfill",
		Description: "Record every unlogged day since the first entry as not completed for each active factor",
	}, s.handleBackfill)
}

// Tool input/output types

type addFactorInput struct {
	Name     string `json:"name" jsonschema:"Factor name"`
	Category string `json:"category,omitempty" jsonschema:"Category (default general)"`
}

type factorOutput struct {
	Factor  factorView `json:"factor"`
	Message string     `json:"message"`
}

type listFactorsInput struct {
	IncludeArchived bool `json:"include_archived,omitempty" jsonschema:"Include archived factors"`
}

type listFactorsOutput struct {
	Factors []factorView `json:"factors"`
	Count   int          `json:"count"`
}

type logFactorInput struct {
	Factor string `json:"factor" jsonschema:"Factor name or ID prefix"`
	Date   string `json:"date,omitempty" jsonschema:"Date as YYYY-MM-DD, defaults to today"`
	Missed bool   `json:"missed,omitempty" jsonschema:"Record the factor as not done"`
	Notes  string `json:"notes,omitempty" jsonschema:"Optional notes"`
}

type entryOutput struct {
	Entry   entryView `json:"entry"`
	Message string    `json:"message"`
}

type addMoodInput struct {
	MoodScore       float64  `json:"mood_score" jsonschema:"Overall mood score"`
	EnergyLevel     *float64 `json:"energy_level,omitempty" jsonschema:"Energy level"`
	StressLevel     *float64 `json:"stress_level,omitempty" jsonschema:"Stress level"`
	AnxietyLevel    *float64 `json:"anxiety_level,omitempty" jsonschema:"Anxiety level"`
	RuminationLevel *float64 `json:"rumination_level,omitempty" jsonschema:"Rumination level"`
	AngerLevel      *float64 `json:"anger_level,omitempty" jsonschema:"Anger level"`
	GeneralHealth   *float64 `json:"general_health,omitempty" jsonschema:"General health"`
	SleepQuality    *float64 `json:"sleep_quality,omitempty" jsonschema:"Sleep quality"`
	SweatingLevel   *float64 `json:"sweating_level,omitempty" jsonschema:"Sweating level"`
	LibidoLevel     *float64 `json:"libido_level,omitempty" jsonschema:"Libido level"`
	At              string   `json:"at,omitempty" jsonschema:"Timestamp (RFC 3339 or YYYY-MM-DD HH:MM), defaults to now"`
	Notes           string   `json:"notes,omitempty" jsonschema:"Optional notes"`
}

type moodOutput struct {
	Entry   moodView `json:"entry"`
	Message string   `json:"message"`
}

type listMoodInput struct {
	From  string `json:"from,omitempty" jsonschema:"Start date YYYY-MM-DD (inclusive)"`
	To    string `json:"to,omitempty" jsonschema:"End date YYYY-MM-DD (inclusive)"`
	Limit int    `json:"limit,omitempty" jsonschema:"Max results (default 20)"`
}

type listMoodOutput struct {
	Entries []moodView `json:"entries"`
	Count   int        `json:"count"`
}

// Tool handlers

func (s *Server) handleAddFactor(ctx context.Context, req *mcp.CallToolRequest, input addFactorInput) (*mcp.CallToolResult, factorOutput, error) {
	if input.Name == "" {
		return nil, factorOutput{}, fmt.Errorf("name is required")
	}

	f := models.NewFactor(input.Name).WithCategory(input.Category)
	if err := s.repo.CreateFactor(f); err != nil {
		return nil, factorOutput{}, fmt.Errorf("failed to create factor: %w", err)
	}

	return nil, factorOutput{
		Factor:  newFactorView(f),
		Message: fmt.Sprintf("Added factor %s (ID: %s)", f.Name, f.ID.String()[:8]),
	}, nil
}

func (s *Server) handleListFactors(ctx context.Context, req *mcp.CallToolRequest, input listFactorsInput) (*mcp.CallToolResult, listFactorsOutput, error) {
	factors, err := s.repo.ListFactors(input.IncludeArchived)
	if err != nil {
		return nil, listFactorsOutput{}, fmt.Errorf("failed to list factors: %w", err)
	}

	out := listFactorsOutput{Factors: make([]factorView, 0, len(factors)), Count: len(factors)}
	for _, f := range factors {
		out.Factors = append(out.Factors, newFactorView(f))
	}
	return nil, out, nil
}

func (s *Server) handleLogFactor(ctx context.Context, req *mcp.CallToolRequest, input logFactorInput) (*mcp.CallToolResult, entryOutput, error) {
	date, err := s.parseAsOf(input.Date)
	if err != nil {
		return nil, entryOutput{}, err
	}

	f, e, err := s.insights.LogFactor(input.Factor, date, !input.Missed, input.Notes)
	if err != nil {
		return nil, entryOutput{}, fmt.Errorf("failed to log factor: %w", err)
	}

	status := "done"
	if input.Missed {
		status = "missed"
	}
	return nil, entryOutput{
		Entry:   newEntryView(f.Name, e),
		Message: fmt.Sprintf("Logged %s as %s on %s", f.Name, status, date),
	}, nil
}

func (s *Server) handleAddMood(ctx context.Context, req *mcp.CallToolRequest, input addMoodInput) (*mcp.CallToolResult, moodOutput, error) {
	m := models.NewMetricEntry(input.MoodScore)
	m.EnergyLevel = input.EnergyLevel
	m.StressLevel = input.StressLevel
	m.AnxietyLevel = input.AnxietyLevel
	m.RuminationLevel = input.RuminationLevel
	m.AngerLevel = input.AngerLevel
	m.GeneralHealth = input.GeneralHealth
	m.SleepQuality = input.SleepQuality
	m.SweatingLevel = input.SweatingLevel
	m.LibidoLevel = input.LibidoLevel

	if input.At != "" {
		t, err := time.Parse(time.RFC3339, input.At)
		if err != nil {
			t, err = time.ParseInLocation("2006-01-02 15:04", input.At, time.Local)
		}
		if err != nil {
			return nil, moodOutput{}, fmt.Errorf("invalid timestamp %q", input.At)
		}
		m.WithTime(t)
	}
	if input.Notes != "" {
		m.WithNotes(input.Notes)
	}

	if err := s.repo.CreateMetricEntry(m); err != nil {
		return nil, moodOutput{}, fmt.Errorf("failed to create entry: %w", err)
	}

	return nil, moodOutput{
		Entry:   newMoodView(m),
		Message: fmt.Sprintf("Recorded mood %.1f on %s (ID: %s)", m.MoodScore, m.Date, m.ID.String()[:8]),
	}, nil
}

func (s *Server) handleListMood(ctx context.Context, req *mcp.CallToolRequest, input listMoodInput) (*mcp.CallToolResult, listMoodOutput, error) {
	if input.Limit <= 0 {
		input.Limit = 20
	}
	r, err := parseRange(input.From, input.To)
	if err != nil {
		return nil, listMoodOutput{}, err
	}

	entries, err := s.repo.ListMetricEntries(r, input.Limit)
	if err != nil {
		return nil, listMoodOutput{}, fmt.Errorf("failed to list entries: %w", err)
	}

	out := listMoodOutput{Entries: make([]moodView, 0, len(entries)), Count: len(entries)}
	for _, m := range entries {
		out.Entries = append(out.Entries, newMoodView(m))
	}
	return nil, out, nil
}
