// Package catalog holds the fixed set of industry sector codes shown in the
// sector dropdown, and the state FIPS table.
package catalog

import (
	"fmt"

	"jobloss/internal/models"
)

// SectorCode identifies one selectable sector column.
type SectorCode string

// Default is the code selected when a view starts.
const Default SectorCode = "X01"

// Total is the code of the averaged job-loss index.
const Total SectorCode = models.ColJobLoss

// Sector pairs a code with its dropdown label.
type Sector struct {
	Code  SectorCode
	Label string
}

// sectors is in dropdown order.
var sectors = [...]Sector{
	{"X01", "Agriculture, Forestry, Fishing, and Hunting"},
	{"X02", "Mining, Quarrying, and Oil and Gas Extraction"},
	{"X03", "Utilities"},
	{"X04", "Construction"},
	{"X05", "Manufacturing"},
	{"X06", "Wholesale Trade"},
	{"X07", "Retail Trade"},
	{"X08", "Transportation and Warehousing"},
	{"X09", "Information"},
	{"X10", "Finance and Insurance"},
	{"X11", "Real Estate and Rental and Leasing"},
	{"X12", "Professional, Scientific, and Technical Services"},
	{"X13", "Management of Companies and Enterprises"},
	{"X14", "Administrative and Support and Waste Management and Remediation Services"},
	{"X15", "Educational Services"},
	{"X16", "Health Care and Social Assistance"},
	{"X17", "Arts, Entertainment, and Recreation"},
	{"X18", "Accommodation and Food Services"},
	{"X19", "Other Services (except Public Administration)"},
	{"X20", "Public Administration"},
	{Total, "Total Job Loss Index"},
}

var labels = func() map[SectorCode]string {
	m := make(map[SectorCode]string, len(sectors))
	for _, s := range sectors {
		m[s.Code] = s.Label
	}
	return m
}()

// UnknownSectorError reports a code outside the catalog.
type UnknownSectorError struct {
	Code string
}

func (e *UnknownSectorError) Error() string {
	return fmt.Sprintf("catalog: unknown sector %q", e.Code)
}

// LabelOf returns the display label of a sector code.
func LabelOf(code SectorCode) (string, error) {
	label, ok := labels[code]
	if !ok {
		return "", &UnknownSectorError{Code: string(code)}
	}
	return label, nil
}

// Parse validates a raw code coming from a UI event.
func Parse(raw string) (SectorCode, error) {
	code := SectorCode(raw)
	if _, ok := labels[code]; !ok {
		return "", &UnknownSectorError{Code: raw}
	}
	return code, nil
}

// AllCodes returns the codes in dropdown order.
func AllCodes() []SectorCode {
	codes := make([]SectorCode, len(sectors))
	for i, s := range sectors {
		codes[i] = s.Code
	}
	return codes
}

// Sectors returns the code/label pairs in dropdown order.
func Sectors() []Sector {
	out := make([]Sector, len(sectors))
	copy(out, sectors[:])
	return out
}

// Options returns the dropdown entries in their wire form.
func Options() []models.SectorOption {
	opts := make([]models.SectorOption, len(sectors))
	for i, s := range sectors {
		opts[i] = models.SectorOption{Code: string(s.Code), Label: s.Label}
	}
	return opts
}
