package rules_test

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/odense-rpa/grant-reminder/internal/rules"
)

// writeWorkbook builds a rule spreadsheet with one column per section.
func writeWorkbook(t *testing.T, columns map[string][]string) string {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	col := 'A'
	for header, items := range columns {
		if err := f.SetCellValue(sheet, fmt.Sprintf("%c1", col), header); err != nil {
			t.Fatalf("set header: %v", err)
		}
		for i, item := range items {
			if err := f.SetCellValue(sheet, fmt.Sprintf("%c%d", col, i+2), item); err != nil {
				t.Fatalf("set cell: %v", err)
			}
		}
		col++
	}

	path := filepath.Join(t.TempDir(), "Regler.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("save workbook: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeWorkbook(t, map[string][]string{
		rules.SectionOrganisations:     {"Organisation A", "Organisation B"},
		rules.SectionAcceptedStatuses:  {"Bevilliget", "Ændret"},
		rules.SectionExcludedSuppliers: {"Acme ApS"},
	})

	m, err := rules.Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	orgs := m.Organisations()
	if len(orgs) != 2 || orgs[0] != "Organisation A" || orgs[1] != "Organisation B" {
		t.Fatalf("unexpected organisations: %v", orgs)
	}

	statuses := m.AcceptedStatuses()
	if len(statuses) != 2 {
		t.Fatalf("expected 2 accepted statuses, got %v", statuses)
	}

	if !m.IsExcludedSupplier("Acme ApS") {
		t.Fatal("expected Acme ApS to be excluded")
	}
	if m.IsExcludedSupplier("Other ApS") {
		t.Fatal("did not expect Other ApS to be excluded")
	}
}

func TestLoad_TrimsBlankCells(t *testing.T) {
	path := writeWorkbook(t, map[string][]string{
		rules.SectionOrganisations:    {"  Organisation A  ", "", "Organisation B"},
		rules.SectionAcceptedStatuses: {"Bevilliget"},
	})

	m, err := rules.Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	orgs := m.Organisations()
	if len(orgs) != 2 || orgs[0] != "Organisation A" {
		t.Fatalf("expected trimmed, non-blank organisations, got %v", orgs)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := rules.Load(filepath.Join(t.TempDir(), "nope.xlsx")); err == nil {
		t.Fatal("expected an error for a missing file")
	}
}

func TestLoad_MissingSection(t *testing.T) {
	path := writeWorkbook(t, map[string][]string{
		rules.SectionOrganisations: {"Organisation A"},
	})

	if _, err := rules.Load(path); err == nil {
		t.Fatal("expected an error when a required section is missing")
	}
}

func TestIsExcludedSupplier_TrimsName(t *testing.T) {
	m := rules.New(
		[]string{"Organisation A"},
		[]string{"Bevilliget"},
		[]string{"Acme ApS"},
	)

	if !m.IsExcludedSupplier("  Acme ApS ") {
		t.Fatal("expected supplier match after trimming")
	}
}
