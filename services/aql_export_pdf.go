package services

import (
	"fmt"
	"strconv"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/orientation"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

// ChartMeta carries the header lines printed above the AQL chart.
type ChartMeta struct {
	Title       string
	Author      string
	GeneratedOn string
}

// GenerateAQLChartPDF renders the code letter and sampling plan matrices as a
// landscape A4 chart.
func GenerateAQLChartPDF(meta ChartMeta, letters CodeLetterMatrix, plans SamplingPlanMatrix) ([]byte, error) {
	// Every AQL level takes two grid columns next to letter and sample size.
	gridSize := planGridLeadColumns + 2*len(plans.AQLLevels)
	if minSize := len(letters.Columns) + 2; gridSize < minSize {
		gridSize = minSize
	}

	cfg := config.NewBuilder().
		WithOrientation(orientation.Horizontal).
		WithPageSize(pagesize.A4).
		WithMaxGridSize(gridSize).
		WithLeftMargin(8).
		WithTopMargin(8).
		WithRightMargin(8).
		WithAuthor(meta.Author, false).
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
			Size:    7,
			Color:   &props.Color{Red: 120, Green: 120, Blue: 120},
		}).
		Build()

	m := maroto.New(cfg)

	addChartHeader(m, meta, gridSize)
	addCodeLetterTable(m, letters, gridSize)
	m.AddRows(row.New(6))
	addPlanTable(m, plans)

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}
	return doc.GetBytes(), nil
}

var (
	chartHeaderBg   = &props.Color{Red: 33, Green: 37, Blue: 41}
	chartHeaderCell = &props.Cell{BackgroundColor: chartHeaderBg}
	chartStripeCell = &props.Cell{BackgroundColor: &props.Color{Red: 245, Green: 245, Blue: 245}}
	chartHeaderText = props.Text{
		Size:  6,
		Style: fontstyle.Bold,
		Align: align.Center,
		Color: &props.Color{Red: 255, Green: 255, Blue: 255},
	}
	chartBodyText = props.Text{Size: 6, Align: align.Center}
)

func addChartHeader(m core.Maroto, meta ChartMeta, gridSize int) {
	half := gridSize / 2
	m.AddRows(
		row.New(10).Add(
			col.New(gridSize).Add(
				text.New(meta.Title, props.Text{
					Size:  14,
					Style: fontstyle.Bold,
					Align: align.Center,
				}),
			),
		),
		row.New(6).Add(
			col.New(half).Add(
				text.New("ANSI/ASQ Z1.4 single sampling, normal inspection", props.Text{
					Size:  8,
					Align: align.Left,
					Color: &props.Color{Red: 80, Green: 80, Blue: 80},
				}),
			),
			col.New(gridSize-half).Add(
				text.New(fmt.Sprintf("Generated on %s", meta.GeneratedOn), props.Text{
					Size:  8,
					Align: align.Right,
					Color: &props.Color{Red: 80, Green: 80, Blue: 80},
				}),
			),
		),
		row.New(4),
	)
}

// addCodeLetterTable lays the lot size column over two grid columns and each
// inspection level over one.
func addCodeLetterTable(m core.Maroto, lm CodeLetterMatrix, gridSize int) {
	header := []core.Col{col.New(2).Add(text.New("Lot Size", chartHeaderText)).WithStyle(chartHeaderCell)}
	for _, c := range lm.Columns {
		header = append(header, col.New(1).Add(
			text.New(fmt.Sprintf("%s %s", c.InspectionType, c.Level), chartHeaderText),
		).WithStyle(chartHeaderCell))
	}
	if pad := gridSize - 2 - len(lm.Columns); pad > 0 {
		header = append(header, col.New(pad))
	}
	m.AddRows(row.New(7).Add(header...))

	for i, r := range lm.Rows {
		cols := []core.Col{col.New(2).Add(text.New(r.BatchName, chartBodyText))}
		for _, letter := range r.Letters {
			cols = append(cols, col.New(1).Add(text.New(letter, chartBodyText)))
		}
		if i%2 == 1 {
			for j := range cols {
				cols[j] = cols[j].WithStyle(chartStripeCell)
			}
		}
		if pad := gridSize - 2 - len(lm.Columns); pad > 0 {
			cols = append(cols, col.New(pad))
		}
		m.AddRows(row.New(5).Add(cols...))
	}
}

func addPlanTable(m core.Maroto, pm SamplingPlanMatrix) {
	top := []core.Col{
		col.New(1).Add(text.New("Letter", chartHeaderText)).WithStyle(chartHeaderCell),
		col.New(1).Add(text.New("Size", chartHeaderText)).WithStyle(chartHeaderCell),
	}
	sub := []core.Col{
		col.New(1).WithStyle(chartHeaderCell),
		col.New(1).WithStyle(chartHeaderCell),
	}
	for _, level := range pm.AQLLevels {
		top = append(top, col.New(2).Add(text.New(FormatAQLLevel(level), chartHeaderText)).WithStyle(chartHeaderCell))
		sub = append(sub,
			col.New(1).Add(text.New("Ac", chartHeaderText)).WithStyle(chartHeaderCell),
			col.New(1).Add(text.New("Re", chartHeaderText)).WithStyle(chartHeaderCell),
		)
	}
	m.AddRows(row.New(6).Add(top...), row.New(5).Add(sub...))

	for i, r := range pm.Rows {
		cols := []core.Col{
			col.New(1).Add(text.New(r.SampleLetter, chartBodyText)),
			col.New(1).Add(text.New(strconv.Itoa(r.SampleSize), chartBodyText)),
		}
		for _, level := range pm.AQLLevels {
			ac, re := MissingLetter, MissingLetter
			if e, ok := r.Entry(level); ok {
				ac, re = strconv.Itoa(e.Ac), strconv.Itoa(e.Re)
			}
			cols = append(cols,
				col.New(1).Add(text.New(ac, chartBodyText)),
				col.New(1).Add(text.New(re, chartBodyText)),
			)
		}
		if i%2 == 1 {
			for j := range cols {
				cols[j] = cols[j].WithStyle(chartStripeCell)
			}
		}
		m.AddRows(row.New(5).Add(cols...))
	}
}
