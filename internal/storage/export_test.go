// ABOUTME: Tests for export and import functionality.
// ABOUTME: Verifies JSON, YAML, per-table CSV, and ZIP export formats.
package storage

import (
	"archive/zip"
	"bytes"
	"encoding/csv"
	"encoding/json"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/harperreed/wellness/internal/models"
	"gopkg.in/yaml.v3"
)

// seedExportData adds one factor with two entries and one metric entry.
func seedExportData(t *testing.T, repo Repository) *models.Factor {
	t.Helper()
	f := mustCreateFactor(t, repo, "Exercise")
	if err := repo.UpsertFactorEntry(models.NewFactorEntry(f.ID, testDay, true).WithNotes("5k run")); err != nil {
		t.Fatalf("UpsertFactorEntry failed: %v", err)
	}
	if err := repo.UpsertFactorEntry(models.NewFactorEntry(f.ID, testDay.AddDays(1), false)); err != nil {
		t.Fatalf("UpsertFactorEntry failed: %v", err)
	}
	m := models.NewMetricEntry(7).
		WithTime(time.Date(2025, time.April, 10, 21, 0, 0, 0, time.UTC)).
		With(models.FieldEnergy, 5)
	if err := repo.CreateMetricEntry(m); err != nil {
		t.Fatalf("CreateMetricEntry failed: %v", err)
	}
	return f
}

func TestExportJSON(t *testing.T) {
	db := setupTestDB(t)
	seedExportData(t, db)

	data, err := ExportJSON(db)
	if err != nil {
		t.Fatalf("ExportJSON failed: %v", err)
	}

	var export ExportData
	if err := json.Unmarshal(data, &export); err != nil {
		t.Fatalf("Failed to parse JSON: %v", err)
	}

	if export.Version != "1.0" {
		t.Errorf("Expected version 1.0, got %s", export.Version)
	}
	if export.Tool != "wellness" {
		t.Errorf("Expected tool wellness, got %s", export.Tool)
	}
	if len(export.Factors) != 1 || len(export.FactorEntries) != 2 || len(export.MetricEntries) != 1 {
		t.Errorf("unexpected counts: %d factors, %d entries, %d metrics",
			len(export.Factors), len(export.FactorEntries), len(export.MetricEntries))
	}
	if !strings.Contains(string(data), `"date": "2025-04-10"`) {
		t.Error("dates should be exported as YYYY-MM-DD strings")
	}
}

func TestImportJSONRoundTrip(t *testing.T) {
	src := setupTestDB(t)
	seedExportData(t, src)

	data, err := ExportJSON(src)
	if err != nil {
		t.Fatalf("ExportJSON failed: %v", err)
	}

	dst := setupTestKV(t)
	if err := ImportJSON(dst, data); err != nil {
		t.Fatalf("ImportJSON failed: %v", err)
	}

	factors, _ := dst.ListFactors(true)
	entries, _ := dst.ListFactorEntries(nil, nil)
	metrics, _ := dst.ListMetricEntries(nil, 0)
	if len(factors) != 1 || len(entries) != 2 || len(metrics) != 1 {
		t.Fatalf("unexpected counts after import: %d/%d/%d", len(factors), len(entries), len(metrics))
	}
	if entries[0].Notes == nil || *entries[0].Notes != "5k run" {
		t.Error("notes lost in round trip")
	}
	if v, ok := metrics[0].Value(models.FieldEnergy); !ok || v != 5 {
		t.Errorf("energy = %v, %v", v, ok)
	}
	if _, ok := metrics[0].Value(models.FieldStress); ok {
		t.Error("stress should remain null")
	}
}

func TestImportJSONInvalid(t *testing.T) {
	db := setupTestDB(t)
	if err := ImportJSON(db, []byte("{not json")); err == nil {
		t.Error("expected parse error")
	}
}

func TestExportYAML(t *testing.T) {
	db := setupTestDB(t)
	seedExportData(t, db)

	data, err := ExportYAML(db)
	if err != nil {
		t.Fatalf("ExportYAML failed: %v", err)
	}

	var parsed map[string]interface{}
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		t.Fatalf("Failed to parse YAML: %v", err)
	}
	if parsed["tool"] != "wellness" {
		t.Errorf("Expected tool wellness, got %v", parsed["tool"])
	}

	entries, ok := parsed["entries"].(map[string]interface{})
	if !ok {
		t.Fatalf("entries missing or wrong type: %T", parsed["entries"])
	}
	exercise, ok := entries["Exercise"].([]interface{})
	if !ok || len(exercise) != 2 {
		t.Errorf("expected 2 entries grouped under Exercise, got %v", entries["Exercise"])
	}
}

func TestExportCSV(t *testing.T) {
	db := setupTestDB(t)
	seedExportData(t, db)

	var buf bytes.Buffer
	if err := ExportCSV(db, TableFactorEntries, &buf); err != nil {
		t.Fatalf("ExportCSV failed: %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("Failed to parse CSV: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected header + 2 rows, got %d", len(records))
	}
	if records[0][2] != "factor_name" || records[1][2] != "Exercise" {
		t.Errorf("factor name column wrong: %v", records[1])
	}
	if records[1][3] != "2025-04-10" || records[1][4] != "true" || records[1][5] != "5k run" {
		t.Errorf("unexpected row: %v", records[1])
	}
}

func TestExportCSVMetricNulls(t *testing.T) {
	db := setupTestDB(t)
	seedExportData(t, db)

	var buf bytes.Buffer
	if err := ExportCSV(db, TableMetricEntries, &buf); err != nil {
		t.Fatalf("ExportCSV failed: %v", err)
	}
	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("Failed to parse CSV: %v", err)
	}

	col := func(name string) int {
		for i, h := range records[0] {
			if h == name {
				return i
			}
		}
		t.Fatalf("column %s missing", name)
		return -1
	}
	row := records[1]
	if row[col("mood_score")] != "7" || row[col("energy_level")] != "5" {
		t.Errorf("unexpected values: %v", row)
	}
	if row[col("stress_level")] != "" {
		t.Errorf("null field should export empty, got %q", row[col("stress_level")])
	}
}

func TestExportCSVUnknownTable(t *testing.T) {
	db := setupTestDB(t)
	if err := ExportCSV(db, "habits", io.Discard); err == nil {
		t.Error("expected error for unknown table")
	}
}

func TestExportZIP(t *testing.T) {
	db := setupTestDB(t)
	seedExportData(t, db)

	data, err := ExportZIP(db)
	if err != nil {
		t.Fatalf("ExportZIP failed: %v", err)
	}

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("Failed to open zip: %v", err)
	}

	want := map[string]int{
		TableFactors + ".csv":       2,
		TableFactorEntries + ".csv": 3,
		TableMetricEntries + ".csv": 2,
	}
	if len(zr.File) != len(want) {
		t.Fatalf("expected %d files, got %d", len(want), len(zr.File))
	}
	for _, f := range zr.File {
		rows, ok := want[f.Name]
		if !ok {
			t.Errorf("unexpected file %s", f.Name)
			continue
		}
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("open %s: %v", f.Name, err)
		}
		records, err := csv.NewReader(rc).ReadAll()
		rc.Close()
		if err != nil {
			t.Fatalf("parse %s: %v", f.Name, err)
		}
		if len(records) != rows {
			t.Errorf("%s: expected %d rows, got %d", f.Name, rows, len(records))
		}
	}
}
