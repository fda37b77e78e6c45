package rules

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Worksheet section headers. Each header names a column; the non-blank
// cells below it form that section's list.
const (
	SectionOrganisations     = "Organisationer"
	SectionAcceptedStatuses  = "Status på indsats"
	SectionExcludedSuppliers = "Undtagne leverandører"
)

// Mapping is the rule configuration for one run: the organisations to scan,
// the workflow states considered modified enough to act on, and the
// suppliers whose grants are never actioned. Immutable after Load.
type Mapping struct {
	organisations     []string
	acceptedStatuses  []string
	excludedSuppliers map[string]struct{}
}

// New builds a Mapping directly from its three lists. Load is the
// production entry point; New exists for wiring tests without a spreadsheet.
func New(organisations, acceptedStatuses, excludedSuppliers []string) *Mapping {
	m := &Mapping{
		organisations:     organisations,
		acceptedStatuses:  acceptedStatuses,
		excludedSuppliers: make(map[string]struct{}, len(excludedSuppliers)),
	}
	for _, supplier := range excludedSuppliers {
		m.excludedSuppliers[supplier] = struct{}{}
	}
	return m
}

// Load parses the first worksheet of the rule spreadsheet. Either the full
// rule set loads or an error is returned; there is no partial application.
func Load(path string) (*Mapping, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open rule spreadsheet %q: %w", path, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("rule spreadsheet %q has no worksheets", path)
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read worksheet %q: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("worksheet %q is empty", sheets[0])
	}

	sections := parseSections(rows)

	m := New(
		sections[SectionOrganisations],
		sections[SectionAcceptedStatuses],
		sections[SectionExcludedSuppliers],
	)

	if len(m.organisations) == 0 {
		return nil, fmt.Errorf("section %q is missing or empty", SectionOrganisations)
	}
	if len(m.acceptedStatuses) == 0 {
		return nil, fmt.Errorf("section %q is missing or empty", SectionAcceptedStatuses)
	}

	return m, nil
}

// parseSections builds one list per header-row column from the non-blank,
// trimmed cells below it.
func parseSections(rows [][]string) map[string][]string {
	sections := make(map[string][]string)

	for col, header := range rows[0] {
		header = strings.TrimSpace(header)
		if header == "" {
			continue
		}
		var items []string
		for _, row := range rows[1:] {
			if col >= len(row) {
				continue
			}
			if cell := strings.TrimSpace(row[col]); cell != "" {
				items = append(items, cell)
			}
		}
		sections[header] = items
	}

	return sections
}

// Organisations returns the organisation names to scan, in worksheet order.
func (m *Mapping) Organisations() []string {
	return m.organisations
}

// AcceptedStatuses returns the workflow states that qualify a grant change.
func (m *Mapping) AcceptedStatuses() []string {
	return m.acceptedStatuses
}

// IsExcludedSupplier reports whether grants from the named supplier are
// excluded from task creation.
func (m *Mapping) IsExcludedSupplier(name string) bool {
	_, ok := m.excludedSuppliers[strings.TrimSpace(name)]
	return ok
}
