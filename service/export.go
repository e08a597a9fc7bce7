package service

import (
	"Reconcile/models"
	"Reconcile/types"
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"

	"github.com/xuri/excelize/v2"
)

const (
	FormatXLSX = "xlsx"
	FormatCSV  = "csv"

	sheetSummary = "Summary"
	sheetMethod  = "By Method"
	sheetDaily   = "By Day"
)

// ExportFile 导出结果，handler 直接以附件形式写回
type ExportFile struct {
	Name        string
	ContentType string
	Data        []byte
}

type ExportService struct {
	Report IReportService
}

var _ IExportService = (*ExportService)(nil)

type IExportService interface {
	Export(ctx context.Context, rng types.DateRange, method models.PayMethod, format string) (*ExportFile, error)
}

func (s *ExportService) Export(ctx context.Context, rng types.DateRange, method models.PayMethod, format string) (*ExportFile, error) {
	if format == "" {
		format = FormatXLSX
	}
	if format != FormatXLSX && format != FormatCSV {
		return nil, fmt.Errorf("%w: unsupported export format %q", ErrValidation, format)
	}

	report, err := s.Report.Generate(ctx, rng, method)
	if err != nil {
		return nil, err
	}

	loc := s.Report.Location()
	name := fmt.Sprintf("reconciliation_%s_%s_%s.%s",
		report.MethodFilter,
		rng.Start.In(loc).Format("20060102"),
		rng.End.In(loc).Format("20060102"),
		format,
	)

	var data []byte
	var contentType string
	if format == FormatCSV {
		data, err = RenderCSV(report)
		contentType = "text/csv; charset=utf-8"
	} else {
		data, err = RenderXLSX(report)
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	if err != nil {
		return nil, fmt.Errorf("render %s: %w", format, err)
	}
	return &ExportFile{Name: name, ContentType: contentType, Data: data}, nil
}

func summaryRows(r *types.ReconciliationReport) [][]interface{} {
	s := r.Summary
	return [][]interface{}{
		{"Range", r.Range.Start.Format("2006-01-02 15:04:05"), r.Range.End.Format("2006-01-02 15:04:05")},
		{"Method", r.MethodFilter},
		{"Timezone", r.Timezone},
		{"Currency", r.Currency},
		{},
		{"Status", "Count", "Amount"},
		{"total", s.TotalCount, s.TotalAmount.String()},
		{"pending", s.Pending.Count, s.Pending.Amount.String()},
		{"completed", s.Completed.Count, s.Completed.Amount.String()},
		{"failed", s.Failed.Count, s.Failed.Amount.String()},
		{"refunded", s.Refunded.Count, s.Refunded.Amount.String()},
	}
}

func methodRows(r *types.ReconciliationReport) [][]interface{} {
	rows := [][]interface{}{{"Method", "Count", "Amount", "Success Rate (%)"}}
	for _, m := range r.MethodBreakdown {
		rows = append(rows, []interface{}{string(m.Method), m.Count, m.Amount.String(), m.SuccessRate})
	}
	return rows
}

func dailyRows(r *types.ReconciliationReport) [][]interface{} {
	rows := [][]interface{}{{"Date", "Count", "Amount", "Success Count", "Success Amount", "Failed Count", "Failed Amount"}}
	for _, d := range r.DailyBreakdown {
		rows = append(rows, []interface{}{
			d.Date, d.Count, d.Amount.String(),
			d.SuccessCount, d.SuccessAmount.String(),
			d.FailedCount, d.FailedAmount.String(),
		})
	}
	return rows
}

// RenderXLSX 三个工作表：汇总、按支付方式、按日
func RenderXLSX(r *types.ReconciliationReport) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetSummary); err != nil {
		return nil, err
	}
	sheets := []struct {
		name string
		rows [][]interface{}
	}{
		{sheetSummary, summaryRows(r)},
		{sheetMethod, methodRows(r)},
		{sheetDaily, dailyRows(r)},
	}
	for i, sh := range sheets {
		if i > 0 {
			if _, err := f.NewSheet(sh.name); err != nil {
				return nil, err
			}
		}
		for n, row := range sh.rows {
			if len(row) == 0 {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(1, n+1)
			if err != nil {
				return nil, err
			}
			if err := f.SetSheetRow(sh.name, cell, &row); err != nil {
				return nil, err
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// RenderCSV 三段内容以空行分隔
func RenderCSV(r *types.ReconciliationReport) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	sections := [][][]interface{}{summaryRows(r), methodRows(r), dailyRows(r)}
	for i, rows := range sections {
		if i > 0 {
			if err := w.Write(nil); err != nil {
				return nil, err
			}
		}
		for _, row := range rows {
			if err := w.Write(stringify(row)); err != nil {
				return nil, err
			}
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func stringify(row []interface{}) []string {
	out := make([]string, len(row))
	for i, v := range row {
		switch x := v.(type) {
		case string:
			out[i] = x
		case int64:
			out[i] = strconv.FormatInt(x, 10)
		case float64:
			out[i] = strconv.FormatFloat(x, 'f', 1, 64)
		default:
			out[i] = fmt.Sprint(x)
		}
	}
	return out
}
