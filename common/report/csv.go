// Package report turns the record API's raw users export into the documents
// handed to people: a spreadsheet-friendly CSV and a printable PDF roster.
package report

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// BOM makes spreadsheet tools read the file as UTF-8.
const BOM = "\uFEFF"

// Column positions in the raw export.
const (
	colFullName = iota
	colRole
	colPosition
	colSalary
	colDepartment
	columnCount
)

// Labels are the header cells written above the data.
type Labels [columnCount]string

var (
	ThaiLabels    = Labels{"ชื่อ-นามสกุล", "ระดับสิทธิ์", "ตำแหน่งงาน", "เงินเดือน (฿)", "แผนก/ฝ่าย"}
	EnglishLabels = Labels{"Full name", "Role", "Position", "Salary (THB)", "Department"}
)

// LabelsFor picks the header language for locale.
func LabelsFor(locale language.Tag) Labels {
	base, _ := locale.Base()
	if base.String() == "th" {
		return ThaiLabels
	}
	return EnglishLabels
}

// Row is one employee line of the export. Cells are kept as text; Salary is
// the grouped rendition when the raw value was numeric.
type Row [columnCount]string

func (r Row) FullName() string   { return r[colFullName] }
func (r Row) Role() string       { return r[colRole] }
func (r Row) Position() string   { return r[colPosition] }
func (r Row) Salary() string     { return r[colSalary] }
func (r Row) Department() string { return r[colDepartment] }

// ErrEmpty is returned when the export holds no header line.
var ErrEmpty = errors.New("report: export is empty")

// Rows parses a raw export. The first record is the API's own header and is
// dropped. Blank lines are skipped, cells are trimmed, and numeric salaries
// are digit-grouped for locale.
func Rows(raw []byte, locale language.Tag) ([]Row, error) {
	r := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(raw, []byte(BOM))))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	r.TrimLeadingSpace = true

	p := message.NewPrinter(locale)
	var out []Row
	header := true
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("report: parse export: %w", err)
		}
		if header {
			header = false
			continue
		}
		if blank(rec) {
			continue
		}
		var row Row
		for i := 0; i < len(rec) && i < int(columnCount); i++ {
			row[i] = strings.TrimSpace(strings.ReplaceAll(rec[i], `"`, ""))
		}
		row[colSalary] = groupDigits(p, row[colSalary])
		out = append(out, row)
	}
	if header {
		return nil, ErrEmpty
	}
	return out, nil
}

func blank(rec []string) bool {
	for _, c := range rec {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// groupDigits formats s with locale digit grouping, leaving non-numbers as-is.
func groupDigits(p *message.Printer, s string) string {
	if s == "" {
		return s
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return s
	}
	return FormatAmount(p, d)
}

// FormatAmount renders d with the printer's digit grouping and at most two
// fraction digits, so 1500.5 prints as "1,500.5" in English.
func FormatAmount(p *message.Printer, d decimal.Decimal) string {
	return p.Sprint(number.Decimal(d.InexactFloat64(), number.MaxFractionDigits(2)))
}

// EnhanceCSV rewrites a raw export: UTF-8 BOM, the locale's header labels,
// grouped salaries, and every cell quoted.
func EnhanceCSV(raw []byte, locale language.Tag) ([]byte, error) {
	rows, err := Rows(raw, locale)
	if err != nil {
		return nil, err
	}
	labels := LabelsFor(locale)

	var b bytes.Buffer
	b.WriteString(BOM)
	writeQuoted(&b, labels[:])
	for _, row := range rows {
		writeQuoted(&b, row[:])
	}
	return b.Bytes(), nil
}

func writeQuoted(b *bytes.Buffer, cells []string) {
	for i, c := range cells {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteByte('"')
		b.WriteString(strings.ReplaceAll(c, `"`, `""`))
		b.WriteByte('"')
	}
	b.WriteByte('\n')
}

// Filename names a downloaded report issued at t.
func Filename(t time.Time, ext string) string {
	return "employee-report_" + t.Format("2006-01-02") + "." + ext
}
