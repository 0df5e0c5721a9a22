// ABOUTME: MCP tool handlers for streaks, metric averages, correlations, and backfill.
// ABOUTME: Delegates to the insights service and flattens results into views.
package mcp

import (
	"context"
	"fmt"

	"github.com/harperreed/wellness/internal/insights"
	"github.com/harperreed/wellness/internal/models"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type factorStatsInput struct {
	Factor          string `json:"factor,omitempty" jsonschema:"Factor name or ID prefix; omit for all active factors"`
	AsOf            string `json:"as_of,omitempty" jsonschema:"Reference date YYYY-MM-DD for the current streak, defaults to today"`
	IncludeArchived bool   `json:"include_archived,omitempty" jsonschema:"Include archived factors when listing all"`
}

type factorStatsOutput struct {
	AsOf  string            `json:"as_of"`
	Stats []factorStatsView `json:"stats"`
}

type metricSummaryInput struct {
	From string `json:"from,omitempty" jsonschema:"Start date YYYY-MM-DD (inclusive)"`
	To   string `json:"to,omitempty" jsonschema:"End date YYYY-MM-DD (inclusive)"`
}

type correlateInput struct {
	Field string `json:"field,omitempty" jsonschema:"Wellbeing field such as mood_score or stress_level (default mood_score)"`
	From  string `json:"from,omitempty" jsonschema:"Start date YYYY-MM-DD (inclusive)"`
	To    string `json:"to,omitempty" jsonschema:"End date YYYY-MM-DD (inclusive)"`
	AsOf  string `json:"as_of,omitempty" jsonschema:"Last date of factor history, defaults to today"`
}

type correlationView struct {
	Factor      string   `json:"factor"`
	Coefficient *float64 `json:"coefficient"`
	Samples     int      `json:"samples"`
}

type correlateOutput struct {
	Field        string            `json:"field"`
	Correlations []correlationView `json:"correlations"`
}

type correlationMatrixInput struct {
	Factors []string `json:"factors,omitempty" jsonschema:"Factor names or ID prefixes; omit for all active factors"`
	Fields  []string `json:"fields,omitempty" jsonschema:"Wellbeing fields; omit for all fields"`
	From    string   `json:"from,omitempty" jsonschema:"Start date YYYY-MM-DD (inclusive)"`
	To      string   `json:"to,omitempty" jsonschema:"End date YYYY-MM-DD (inclusive)"`
	AsOf    string   `json:"as_of,omitempty" jsonschema:"Last date of factor history, defaults to today"`
	Top     int      `json:"top,omitempty" jsonschema:"Number of strongest pairs to return (default 10)"`
}

type correlationMatrixOutput struct {
	Labels   []string     `json:"labels"`
	Values   [][]*float64 `json:"values"`
	TopPairs []pairView   `json:"top_pairs"`
}

type backfillInput struct {
	AsOf   string `json:"as_of,omitempty" jsonschema:"Last date to fill, defaults to today"`
	DryRun bool   `json:"dry_run,omitempty" jsonschema:"Count missing days without writing"`
}

type backfillFactorView struct {
	Factor   string `json:"factor"`
	Missing  int    `json:"missing"`
	Inserted int    `json:"inserted"`
}

type backfillOutput struct {
	From          string               `json:"from,omitempty"`
	To            string               `json:"to"`
	DryRun        bool                 `json:"dry_run"`
	TotalInserted int                  `json:"total_inserted"`
	Factors       []backfillFactorView `json:"factors"`
	Message       string               `json:"message"`
}

func (s *Server) handleFactorStats(ctx context.Context, req *mcp.CallToolRequest, input factorStatsInput) (*mcp.CallToolResult, factorStatsOutput, error) {
	asOf, err := s.parseAsOf(input.AsOf)
	if err != nil {
		return nil, factorStatsOutput{}, err
	}
	out := factorStatsOutput{AsOf: asOf.String()}

	if input.Factor != "" {
		st, err := s.insights.FactorStats(ctx, input.Factor, asOf)
		if err != nil {
			return nil, factorStatsOutput{}, fmt.Errorf("failed to compute stats: %w", err)
		}
		out.Stats = []factorStatsView{newFactorStatsView(*st)}
		return nil, out, nil
	}

	all, err := s.insights.AllFactorStats(ctx, asOf, input.IncludeArchived)
	if err != nil {
		return nil, factorStatsOutput{}, fmt.Errorf("failed to compute stats: %w", err)
	}
	out.Stats = make([]factorStatsView, 0, len(all))
	for _, st := range all {
		out.Stats = append(out.Stats, newFactorStatsView(st))
	}
	return nil, out, nil
}

func (s *Server) handleMetricSummary(ctx context.Context, req *mcp.CallToolRequest, input metricSummaryInput) (*mcp.CallToolResult, summaryView, error) {
	r, err := parseRange(input.From, input.To)
	if err != nil {
		return nil, summaryView{}, err
	}
	summary, err := s.insights.MetricSummary(ctx, r)
	if err != nil {
		return nil, summaryView{}, fmt.Errorf("failed to summarize: %w", err)
	}
	return nil, newSummaryView(summary), nil
}

func (s *Server) handleCorrelate(ctx context.Context, req *mcp.CallToolRequest, input correlateInput) (*mcp.CallToolResult, correlateOutput, error) {
	field := models.FieldMood
	if input.Field != "" {
		if !models.IsValidMetricField(input.Field) {
			return nil, correlateOutput{}, fmt.Errorf("unknown metric field: %s", input.Field)
		}
		field = models.MetricField(input.Field)
	}
	r, err := parseRange(input.From, input.To)
	if err != nil {
		return nil, correlateOutput{}, err
	}
	asOf, err := s.parseAsOf(input.AsOf)
	if err != nil {
		return nil, correlateOutput{}, err
	}

	results, err := s.insights.FactorCorrelations(ctx, field, r, asOf)
	if err != nil {
		return nil, correlateOutput{}, fmt.Errorf("failed to correlate: %w", err)
	}

	out := correlateOutput{Field: string(field), Correlations: make([]correlationView, 0, len(results))}
	for _, c := range results {
		out.Correlations = append(out.Correlations, correlationView{
			Factor:      c.FactorName,
			Coefficient: statPtr(c.Coefficient),
			Samples:     c.Samples,
		})
	}
	return nil, out, nil
}

func (s *Server) handleCorrelationMatrix(ctx context.Context, req *mcp.CallToolRequest, input correlationMatrixInput) (*mcp.CallToolResult, correlationMatrixOutput, error) {
	r, err := parseRange(input.From, input.To)
	if err != nil {
		return nil, correlationMatrixOutput{}, err
	}
	asOf, err := s.parseAsOf(input.AsOf)
	if err != nil {
		return nil, correlationMatrixOutput{}, err
	}
	if input.Top <= 0 {
		input.Top = 10
	}

	fields := make([]models.MetricField, 0, len(input.Fields))
	for _, f := range input.Fields {
		fields = append(fields, models.MetricField(f))
	}

	res, err := s.insights.CorrelationMatrix(ctx, insights.MatrixRequest{
		Factors: input.Factors,
		Fields:  fields,
		Range:   r,
		AsOf:    asOf,
		Top:     input.Top,
	})
	if err != nil {
		return nil, correlationMatrixOutput{}, fmt.Errorf("failed to build matrix: %w", err)
	}

	return nil, newMatrixOutput(res), nil
}

func newMatrixOutput(res *insights.MatrixResult) correlationMatrixOutput {
	out := correlationMatrixOutput{
		Labels:   res.Matrix.Labels,
		Values:   make([][]*float64, len(res.Matrix.Values)),
		TopPairs: make([]pairView, 0, len(res.TopPairs)),
	}
	for i, row := range res.Matrix.Values {
		out.Values[i] = make([]*float64, len(row))
		for j, cell := range row {
			out.Values[i][j] = statPtr(cell)
		}
	}
	for _, p := range res.TopPairs {
		out.TopPairs = append(out.TopPairs, pairView{A: p.A, B: p.B, Coefficient: statPtr(p.Coefficient)})
	}
	return out
}

func (s *Server) handleBackfill(ctx context.Context, req *mcp.CallToolRequest, input backfillInput) (*mcp.CallToolResult, backfillOutput, error) {
	asOf, err := s.parseAsOf(input.AsOf)
	if err != nil {
		return nil, backfillOutput{}, err
	}

	report, err := s.insights.Backfill(ctx, asOf, input.DryRun)
	if err != nil {
		return nil, backfillOutput{}, fmt.Errorf("failed to backfill: %w", err)
	}

	out := backfillOutput{
		From:          dateString(report.Start),
		To:            report.End.String(),
		DryRun:        report.DryRun,
		TotalInserted: report.TotalInserted,
		Factors:       make([]backfillFactorView, 0, len(report.Factors)),
	}
	missing := 0
	for _, f := range report.Factors {
		missing += f.Missing
		out.Factors = append(out.Factors, backfillFactorView{Factor: f.FactorName, Missing: f.Missing, Inserted: f.Inserted})
	}
	if report.DryRun {
		out.Message = fmt.Sprintf("Would fill %d missing days across %d factors", missing, len(report.Factors))
	} else {
		out.Message = fmt.Sprintf("Filled %d missing days across %d factors", report.TotalInserted, len(report.Factors))
	}
	return nil, out, nil
}
