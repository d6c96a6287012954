package report

import (
	"fmt"
	"time"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

var (
	colorPrimary = &props.Color{Red: 30, Green: 58, Blue: 138}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
)

// RosterMeta is printed in the roster header and footer.
type RosterMeta struct {
	Organization string
	IssuedBy     string
	IssuedAt     time.Time
	ReportID     string
}

// RosterPDF renders rows as an A4 roster. Header labels are always English
// since the built-in PDF fonts carry Latin glyphs only.
func RosterPDF(rows []Row, meta RosterMeta) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Employee roster", true).
		WithAuthor(meta.IssuedBy, true).
		Build()

	m := maroto.New(cfg)
	m.AddRows(titleRow(meta))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(headerRow(EnglishLabels))
	for _, r := range rows {
		m.AddRows(bodyRow(r))
	}
	m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3}))
	m.AddRows(footerRow(meta, len(rows)))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("report: render roster: %w", err)
	}
	return doc.GetBytes(), nil
}

func titleRow(meta RosterMeta) core.Row {
	org := meta.Organization
	if org == "" {
		org = "Organization"
	}
	return row.New(16).Add(
		col.New(8).Add(
			text.New(org, props.Text{Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1}),
			text.New("Employee roster", props.Text{Size: 9, Top: 9, Color: colorGray}),
		),
		col.New(4).Add(
			text.New(meta.IssuedAt.Format("2006-01-02 15:04 MST"), props.Text{Size: 8, Align: align.Right, Top: 2}),
			text.New("Issued by "+meta.IssuedBy, props.Text{Size: 8, Align: align.Right, Top: 8, Color: colorGray}),
		),
	)
}

var widths = [columnCount]int{4, 2, 2, 2, 2}

func headerRow(labels Labels) core.Row {
	cols := make([]core.Col, 0, columnCount)
	for i, l := range labels {
		a := align.Left
		if i == colSalary {
			a = align.Right
		}
		cols = append(cols, col.New(widths[i]).Add(text.New(l, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a, Color: colorPrimary, Top: 2,
		})))
	}
	return row.New(8).Add(cols...)
}

func bodyRow(r Row) core.Row {
	cols := make([]core.Col, 0, columnCount)
	for i, c := range r {
		a := align.Left
		if i == colSalary {
			a = align.Right
		}
		cols = append(cols, col.New(widths[i]).Add(text.New(c, props.Text{Size: 8, Align: a, Top: 1})))
	}
	return row.New(6).Add(cols...)
}

func footerRow(meta RosterMeta, count int) core.Row {
	return row.New(10).Add(
		col.New(6).Add(text.New(fmt.Sprintf("%d employees", count), props.Text{Size: 8, Top: 2, Color: colorGray})),
		col.New(6).Add(text.New("Report "+meta.ReportID, props.Text{Size: 7, Align: align.Right, Top: 2, Color: colorGray})),
	)
}
