package servicesync

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

const (
	excelReportSheet  = "Report"
	excelSummarySheet = "Summary"
)

var excelReportHeadings = []string{"Service ID", "Mobile Number", "Network", "Start Date", "End Date", "Status", "Field", "Source", "Target", "Detail"}

// ExcelReporter collects report rows in memory; WriteTo/SaveAs render them as
// an xlsx workbook once the run is over.
type ExcelReporter struct {
	rows    [][]any
	summary *Result
}

func NewExcelReporter() *ExcelReporter {
	return &ExcelReporter{}
}

func (r *ExcelReporter) add(src SourceService, status, field, source, target, detail string) {
	r.rows = append(r.rows, []any{src.ID, src.MobileNumber, src.Network, src.StartDate, src.EndDate, status, field, source, target, detail})
}

func (r *ExcelReporter) Fetched(int)        {}
func (r *ExcelReporter) SchemaFailed(error) {}

func (r *ExcelReporter) Discrepancies(src SourceService, discrepancies []Discrepancy) {
	for _, d := range discrepancies {
		r.add(src, "Discrepancy", d.Field, d.Source, d.Target, "")
	}
}

func (r *ExcelReporter) Missing(src SourceService) {
	r.add(src, "Missing", "", "", "", "")
}

func (r *ExcelReporter) Resolved(src SourceService) {
	r.add(src, "Resolved", "", "", "", "")
}

func (r *ExcelReporter) ResolveFailed(src SourceService, err error) {
	r.add(src, "Resolve Failed", "", "", "", err.Error())
}

func (r *ExcelReporter) Failure(src SourceService, err error) {
	r.add(src, "Error", "", "", "", err.Error())
}

func (r *ExcelReporter) Summary(result Result) {
	res := result
	r.summary = &res
}

// Rows returns the collected report rows without the heading row.
func (r *ExcelReporter) Rows() [][]any {
	return r.rows
}

func (r *ExcelReporter) build() (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", excelReportSheet); err != nil {
		return nil, err
	}

	if err := f.SetSheetRow(excelReportSheet, "A1", &excelReportHeadings); err != nil {
		return nil, err
	}
	for i, row := range r.rows {
		if err := f.SetSheetRow(excelReportSheet, fmt.Sprintf("A%d", i+2), &row); err != nil {
			return nil, err
		}
	}

	if r.summary != nil {
		if _, err := f.NewSheet(excelSummarySheet); err != nil {
			return nil, err
		}
		s := r.summary
		lines := [][]any{
			{"Run ID", s.RunID},
			{"Resolve", s.Resolve},
			{"Total services mapped", s.Processed},
			{"Total discrepancies/missing records found", s.Discrepant},
			{"Missing", s.Missing},
			{"Resolved", s.Resolved},
			{"Resolve failed", s.ResolveFailed},
			{"Mappings created", s.MappingsCreated},
			{"Mapping errors", s.MappingErrors},
			{"Lookup errors", s.LookupErrors},
		}
		for i, line := range lines {
			if err := f.SetSheetRow(excelSummarySheet, fmt.Sprintf("A%d", i+1), &line); err != nil {
				return nil, err
			}
		}
	}
	return f, nil
}

func (r *ExcelReporter) WriteTo(w io.Writer) (int64, error) {
	f, err := r.build()
	if err != nil {
		return 0, err
	}
	defer f.Close()
	return f.WriteTo(w)
}

func (r *ExcelReporter) SaveAs(path string) error {
	f, err := r.build()
	if err != nil {
		return err
	}
	defer f.Close()
	return f.SaveAs(path)
}
