// ABOUTME: Export and import functionality for wellness data.
// ABOUTME: Supports JSON, YAML, per-table CSV, and a ZIP bundle of the CSVs.
package storage

import (
	"archive/zip"
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/wellness/internal/models"
	"gopkg.in/yaml.v3"
)

// ExportData represents the full export format for wellness data.
type ExportData struct {
	Version       string                `json:"version" yaml:"version"`
	ExportedAt    time.Time             `json:"exported_at" yaml:"exported_at"`
	Tool          string                `json:"tool" yaml:"tool"`
	Factors       []*models.Factor      `json:"factors" yaml:"factors"`
	FactorEntries []*models.FactorEntry `json:"factor_entries" yaml:"factor_entries"`
	MetricEntries []*models.MetricEntry `json:"metric_entries" yaml:"metric_entries"`
}

// CSV table names, also used as file names inside the ZIP bundle.
const (
	TableFactors       = "factors"
	TableFactorEntries = "factor_entries"
	TableMetricEntries = "metric_entries"
)

// collectAll gathers every record from repo into an ExportData.
func collectAll(repo Repository) (*ExportData, error) {
	factors, err := repo.ListFactors(true)
	if err != nil {
		return nil, fmt.Errorf("list factors: %w", err)
	}
	entries, err := repo.ListFactorEntries(nil, nil)
	if err != nil {
		return nil, fmt.Errorf("list factor entries: %w", err)
	}
	metrics, err := repo.ListMetricEntries(nil, 0)
	if err != nil {
		return nil, fmt.Errorf("list metric entries: %w", err)
	}
	return &ExportData{
		Version:       "1.0",
		ExportedAt:    time.Now(),
		Tool:          "wellness",
		Factors:       factors,
		FactorEntries: entries,
		MetricEntries: metrics,
	}, nil
}

// importAll writes data into repo. Factor entries are upserted so a repeated
// import does not duplicate (factor, date) rows.
func importAll(repo Repository, data *ExportData) error {
	for _, f := range data.Factors {
		if err := repo.CreateFactor(f); err != nil {
			return fmt.Errorf("import factor: %w", err)
		}
	}
	for _, e := range data.FactorEntries {
		if err := repo.UpsertFactorEntry(e); err != nil {
			return fmt.Errorf("import factor entry: %w", err)
		}
	}
	for _, m := range data.MetricEntries {
		if err := repo.CreateMetricEntry(m); err != nil {
			return fmt.Errorf("import metric entry: %w", err)
		}
	}
	return nil
}

// GetAllData retrieves all data for export.
func (d *DB) GetAllData() (*ExportData, error) {
	return collectAll(d)
}

// ImportData imports data from an export file.
func (d *DB) ImportData(data *ExportData) error {
	return importAll(d, data)
}

// ExportJSON exports all data as JSON.
func ExportJSON(repo Repository) ([]byte, error) {
	data, err := repo.GetAllData()
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(data, "", "  ")
}

// ImportJSON parses a JSON export and imports it into repo.
func ImportJSON(repo Repository, raw []byte) error {
	var data ExportData
	if err := json.Unmarshal(raw, &data); err != nil {
		return fmt.Errorf("parse JSON: %w", err)
	}
	return repo.ImportData(&data)
}

// ExportYAML exports all data as YAML, with factor entries grouped under
// their factor's name.
func ExportYAML(repo Repository) ([]byte, error) {
	data, err := repo.GetAllData()
	if err != nil {
		return nil, err
	}

	names := make(map[uuid.UUID]string, len(data.Factors))
	for _, f := range data.Factors {
		names[f.ID] = f.Name
	}

	type yamlEntry struct {
		Date      string `yaml:"date"`
		Completed bool   `yaml:"completed"`
		Notes     string `yaml:"notes,omitempty"`
	}
	yamlData := struct {
		Version       string                 `yaml:"version"`
		ExportedAt    string                 `yaml:"exported_at"`
		Tool          string                 `yaml:"tool"`
		Factors       []*models.Factor       `yaml:"factors"`
		Entries       map[string][]yamlEntry `yaml:"entries"`
		MetricEntries []*models.MetricEntry  `yaml:"metric_entries"`
	}{
		Version:       data.Version,
		ExportedAt:    data.ExportedAt.Format(time.RFC3339),
		Tool:          data.Tool,
		Factors:       data.Factors,
		Entries:       make(map[string][]yamlEntry),
		MetricEntries: data.MetricEntries,
	}

	for _, e := range data.FactorEntries {
		ye := yamlEntry{Date: e.Date.String(), Completed: e.Completed}
		if e.Notes != nil {
			ye.Notes = *e.Notes
		}
		name := names[e.FactorID]
		yamlData.Entries[name] = append(yamlData.Entries[name], ye)
	}

	return yaml.Marshal(yamlData)
}

// ExportCSV writes one table as CSV to w.
func ExportCSV(repo Repository, table string, w io.Writer) error {
	data, err := repo.GetAllData()
	if err != nil {
		return err
	}
	return writeTableCSV(data, table, w)
}

// ExportZIP writes a ZIP archive holding one CSV per table.
func ExportZIP(repo Repository) ([]byte, error) {
	data, err := repo.GetAllData()
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, table := range []string{TableFactors, TableFactorEntries, TableMetricEntries} {
		f, err := zw.Create(table + ".csv")
		if err != nil {
			return nil, fmt.Errorf("create %s.csv: %w", table, err)
		}
		if err := writeTableCSV(data, table, f); err != nil {
			return nil, err
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("close zip: %w", err)
	}
	return buf.Bytes(), nil
}

func writeTableCSV(data *ExportData, table string, w io.Writer) error {
	cw := csv.NewWriter(w)

	switch table {
	case TableFactors:
		_ = cw.Write([]string{"id", "name", "category", "is_active", "created_at"})
		for _, f := range data.Factors {
			_ = cw.Write([]string{
				f.ID.String(), f.Name, f.Category,
				strconv.FormatBool(f.IsActive), f.CreatedAt.Format(time.RFC3339),
			})
		}
	case TableFactorEntries:
		names := make(map[uuid.UUID]string, len(data.Factors))
		for _, f := range data.Factors {
			names[f.ID] = f.Name
		}
		_ = cw.Write([]string{"id", "factor_id", "factor_name", "date", "completed", "notes", "created_at"})
		for _, e := range data.FactorEntries {
			_ = cw.Write([]string{
				e.ID.String(), e.FactorID.String(), names[e.FactorID], e.Date.String(),
				strconv.FormatBool(e.Completed), derefString(e.Notes), e.CreatedAt.Format(time.RFC3339),
			})
		}
	case TableMetricEntries:
		header := []string{"id", "date", "time"}
		for _, f := range models.AllMetricFields {
			header = append(header, string(f))
		}
		header = append(header, "notes", "created_at")
		_ = cw.Write(header)
		for _, m := range data.MetricEntries {
			row := []string{m.ID.String(), m.Date.String(), m.Time.Format(time.RFC3339)}
			for _, f := range models.AllMetricFields {
				if v, ok := m.Value(f); ok {
					row = append(row, strconv.FormatFloat(v, 'f', -1, 64))
				} else {
					row = append(row, "")
				}
			}
			row = append(row, derefString(m.Notes), m.CreatedAt.Format(time.RFC3339))
			_ = cw.Write(row)
		}
	default:
		return fmt.Errorf("unknown table: %s", table)
	}

	cw.Flush()
	return cw.Error()
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
