package reports

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"
)

// ReportExporter renders report rows into downloadable bytes.
// Every method returns (data, filename, mime type, error).
type ReportExporter interface {
	ExportAttendees(format, eventName string, rows []AttendeeReportRow) ([]byte, string, string, error)
	ExportEventSummary(format string, rows []EventSummaryRow) ([]byte, string, string, error)
}

type reportExporter struct{}

func NewReportExporter() ReportExporter {
	return &reportExporter{}
}

//// ============================
/// ATTENDEE LIST EXPORTS
//// ============================

func (e *reportExporter) ExportAttendees(format, eventName string, rows []AttendeeReportRow) ([]byte, string, string, error) {
	timestamp := time.Now().Format("20060102_150405")

	switch format {
	case FormatCSV:
		data, err := e.exportAttendeesCSV(rows)
		if err != nil {
			return nil, "", "", err
		}
		return data, fmt.Sprintf("attendees_%s.csv", timestamp), "text/csv", nil

	case FormatExcel:
		data, err := e.exportAttendeesExcel(rows)
		if err != nil {
			return nil, "", "", err
		}
		return data, fmt.Sprintf("attendees_%s.xlsx", timestamp), "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", nil

	case FormatPDF:
		data, err := e.exportAttendeesPDF(eventName, rows)
		if err != nil {
			return nil, "", "", err
		}
		return data, fmt.Sprintf("attendees_%s.pdf", timestamp), "application/pdf", nil

	default:
		return nil, "", "", fmt.Errorf("unsupported format for attendee list: %s", format)
	}
}

func (e *reportExporter) exportAttendeesCSV(rows []AttendeeReportRow) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"User ID", "Full Name", "Email", "Phone", "Registered At"}
	if err := writer.Write(headers); err != nil {
		return nil, err
	}

	for _, r := range rows {
		record := []string{
			strconv.FormatUint(uint64(r.UserID), 10),
			r.FullName,
			r.Email,
			r.Phone,
			r.RegisteredAt.Format("2006-01-02 15:04:05"),
		}
		if err := writer.Write(record); err != nil {
			return nil, err
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

func (e *reportExporter) exportAttendeesExcel(rows []AttendeeReportRow) ([]byte, error) {
	f := excelize.NewFile()
	sheet := "Attendees"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return nil, err
	}
	f.DeleteSheet("Sheet1")
	f.SetActiveSheet(index)

	headers := []string{"User ID", "Full Name", "Email", "Phone", "Registered At"}
	for i, h := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, err
		}
		f.SetCellValue(sheet, cell, h)
	}

	for rIdx, r := range rows {
		row := rIdx + 2
		f.SetCellValue(sheet, fmt.Sprintf("A%d", row), r.UserID)
		f.SetCellValue(sheet, fmt.Sprintf("B%d", row), r.FullName)
		f.SetCellValue(sheet, fmt.Sprintf("C%d", row), r.Email)
		f.SetCellValue(sheet, fmt.Sprintf("D%d", row), r.Phone)
		f.SetCellValue(sheet, fmt.Sprintf("E%d", row), r.RegisteredAt.Format("2006-01-02 15:04:05"))
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

func (e *reportExporter) exportAttendeesPDF(eventName string, rows []AttendeeReportRow) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 12)
	pdf.Cell(40, 10, fmt.Sprintf("Attendee List - %s", eventName))
	pdf.Ln(10)

	pdf.SetFont("Arial", "B", 10)
	headers := []string{"ID", "Name", "Email", "Phone", "Registered At"}
	widths := []float64{15, 45, 60, 30, 40}

	for i, h := range headers {
		pdf.CellFormat(widths[i], 7, h, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 10)
	for _, r := range rows {
		pdf.CellFormat(widths[0], 6, fmt.Sprint(r.UserID), "1", 0, "C", false, 0, "")
		pdf.CellFormat(widths[1], 6, r.FullName, "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[2], 6, r.Email, "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[3], 6, r.Phone, "1", 0, "C", false, 0, "")
		pdf.CellFormat(widths[4], 6, r.RegisteredAt.Format("2006-01-02 15:04"), "1", 0, "C", false, 0, "")
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

//// ============================
/// EVENT SUMMARY EXPORTS
//// ============================

func (e *reportExporter) ExportEventSummary(format string, rows []EventSummaryRow) ([]byte, string, string, error) {
	timestamp := time.Now().Format("20060102_150405")

	switch format {
	case FormatCSV:
		data, err := e.exportEventSummaryCSV(rows)
		if err != nil {
			return nil, "", "", err
		}
		return data, fmt.Sprintf("event_summary_%s.csv", timestamp), "text/csv", nil

	case FormatExcel:
		data, err := e.exportEventSummaryExcel(rows)
		if err != nil {
			return nil, "", "", err
		}
		return data, fmt.Sprintf("event_summary_%s.xlsx", timestamp), "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", nil

	case FormatPDF:
		data, err := e.exportEventSummaryPDF(rows)
		if err != nil {
			return nil, "", "", err
		}
		return data, fmt.Sprintf("event_summary_%s.pdf", timestamp), "application/pdf", nil

	default:
		return nil, "", "", fmt.Errorf("unsupported format for event summary: %s", format)
	}
}

func (e *reportExporter) exportEventSummaryCSV(rows []EventSummaryRow) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Event ID", "Event Name", "Category", "Organizer", "Location", "Event Date", "Status", "Price", "Total Slots", "Attendees"}
	if err := writer.Write(headers); err != nil {
		return nil, err
	}

	for _, r := range rows {
		record := []string{
			strconv.FormatUint(uint64(r.EventID), 10),
			r.EventName,
			r.CategoryName,
			r.OrganizerName,
			r.Location,
			r.EventDate.Format("2006-01-02"),
			r.Status,
			strconv.FormatFloat(r.Price, 'f', 2, 64),
			strconv.Itoa(r.TotalSlots),
			strconv.Itoa(r.AttendeeCount),
		}
		if err := writer.Write(record); err != nil {
			return nil, err
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

func (e *reportExporter) exportEventSummaryExcel(rows []EventSummaryRow) ([]byte, error) {
	f := excelize.NewFile()
	sheet := "Event Summary"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return nil, err
	}
	f.DeleteSheet("Sheet1")
	f.SetActiveSheet(index)

	headers := []string{"Event ID", "Event Name", "Category", "Organizer", "Location", "Event Date", "Status", "Price", "Total Slots", "Attendees"}
	for i, h := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, err
		}
		f.SetCellValue(sheet, cell, h)
	}

	for rIdx, r := range rows {
		row := rIdx + 2
		f.SetCellValue(sheet, fmt.Sprintf("A%d", row), r.EventID)
		f.SetCellValue(sheet, fmt.Sprintf("B%d", row), r.EventName)
		f.SetCellValue(sheet, fmt.Sprintf("C%d", row), r.CategoryName)
		f.SetCellValue(sheet, fmt.Sprintf("D%d", row), r.OrganizerName)
		f.SetCellValue(sheet, fmt.Sprintf("E%d", row), r.Location)
		f.SetCellValue(sheet, fmt.Sprintf("F%d", row), r.EventDate.Format("2006-01-02"))
		f.SetCellValue(sheet, fmt.Sprintf("G%d", row), r.Status)
		f.SetCellValue(sheet, fmt.Sprintf("H%d", row), r.Price)
		f.SetCellValue(sheet, fmt.Sprintf("I%d", row), r.TotalSlots)
		f.SetCellValue(sheet, fmt.Sprintf("J%d", row), r.AttendeeCount)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

func (e *reportExporter) exportEventSummaryPDF(rows []EventSummaryRow) ([]byte, error) {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 12)
	pdf.Cell(40, 10, "Event Summary Report")
	pdf.Ln(10)

	pdf.SetFont("Arial", "B", 9)
	headers := []string{"ID", "Event", "Category", "Organizer", "Date", "Status", "Price", "Slots", "Attendees"}
	widths := []float64{15, 60, 35, 45, 25, 25, 20, 20, 25}

	for i, h := range headers {
		pdf.CellFormat(widths[i], 7, h, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 9)
	for _, r := range rows {
		pdf.CellFormat(widths[0], 6, fmt.Sprint(r.EventID), "1", 0, "C", false, 0, "")
		pdf.CellFormat(widths[1], 6, r.EventName, "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[2], 6, r.CategoryName, "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[3], 6, r.OrganizerName, "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[4], 6, r.EventDate.Format("2006-01-02"), "1", 0, "C", false, 0, "")
		pdf.CellFormat(widths[5], 6, r.Status, "1", 0, "C", false, 0, "")
		pdf.CellFormat(widths[6], 6, strconv.FormatFloat(r.Price, 'f', 2, 64), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[7], 6, strconv.Itoa(r.TotalSlots), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[8], 6, strconv.Itoa(r.AttendeeCount), "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}
