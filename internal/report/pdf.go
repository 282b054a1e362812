package report

import (
	"fmt"
	"io"
	"time"

	"github.com/jung-kurt/gofpdf"
)

// Generator renders the productivity report as PDF. With FontPath set to a
// TTF file the document uses that font, otherwise the core Helvetica.
type Generator struct {
	FontPath string
	fontName string
}

func NewGenerator(fontPath string) *Generator {
	g := &Generator{FontPath: fontPath, fontName: "Helvetica"}
	if fontPath != "" {
		g.fontName = "DejaVu"
	}
	return g
}

// Document is everything printed in a report.
type Document struct {
	Owner       string
	GeneratedAt time.Time
	Stats       Stats
	Summary     Summary
}

func (g *Generator) Render(w io.Writer, doc Document) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Your Productivity Report", false)
	pdf.SetAuthor("Blitzit", false)
	pdf.SetMargins(20, 20, 20)
	pdf.SetAutoPageBreak(true, 20)
	if g.FontPath != "" {
		pdf.AddUTF8Font(g.fontName, "", g.FontPath)
		pdf.AddUTF8Font(g.fontName, "B", g.FontPath)
	}
	pdf.AddPage()

	pdf.SetFont(g.fontName, "B", 18)
	pdf.CellFormat(0, 10, "Your Productivity Report", "", 1, "C", false, 0, "")
	pdf.SetFont(g.fontName, "", 11)
	pdf.CellFormat(0, 6, fmt.Sprintf("%s, %s", doc.Owner, doc.GeneratedAt.Format("02 Jan 2006 15:04")), "", 1, "C", false, 0, "")
	g.hr(pdf)

	g.sectionTitle(pdf, "Key stats")
	g.kvLine(pdf, "Tasks Completed", fmt.Sprint(doc.Summary.TotalDone))
	g.kvLine(pdf, "Tasks Pending", fmt.Sprint(doc.Summary.TotalPending))
	g.kvLine(pdf, "Overdue", fmt.Sprint(doc.Stats.OverdueTasks))
	g.kvLine(pdf, "Today", fmt.Sprint(doc.Stats.TodayTasks))
	g.kvLine(pdf, "This Week", fmt.Sprint(doc.Stats.ThisWeekTasks))
	g.kvLine(pdf, "Completion rate", fmt.Sprintf("%.2f%%", doc.Stats.CompletionRate))
	g.hr(pdf)

	g.sectionTitle(pdf, fmt.Sprintf("Completion Trend (Last %d Days)", TrendDays))
	if len(doc.Summary.CompletionTrend) == 0 {
		pdf.CellFormat(0, 6, fmt.Sprintf("No tasks completed in the last %d days.", TrendDays), "", 1, "L", false, 0, "")
	}
	for _, day := range doc.Summary.CompletionTrend {
		g.trendBar(pdf, day)
	}

	if err := pdf.Error(); err != nil {
		return fmt.Errorf("render report: %w", err)
	}
	return pdf.Output(w)
}

func (g *Generator) sectionTitle(pdf *gofpdf.Fpdf, s string) {
	pdf.SetFont(g.fontName, "B", 12)
	pdf.CellFormat(0, 7, s, "", 1, "L", false, 0, "")
	pdf.SetFont(g.fontName, "", 11)
}

func (g *Generator) kvLine(pdf *gofpdf.Fpdf, key, val string) {
	pdf.SetFont(g.fontName, "B", 11)
	pdf.CellFormat(45, 6, key+":", "", 0, "L", false, 0, "")
	pdf.SetFont(g.fontName, "", 11)
	pdf.CellFormat(0, 6, val, "", 1, "L", false, 0, "")
}

func (g *Generator) hr(pdf *gofpdf.Fpdf) {
	y := pdf.GetY() + 1.5
	pdf.SetLineWidth(0.2)
	pdf.Line(20, y, 190, y)
	pdf.SetY(y + 2)
}

// trendBar prints the day, one filled square per completion and the count.
func (g *Generator) trendBar(pdf *gofpdf.Fpdf, day DayCount) {
	const square, gap = 3.0, 1.0

	pdf.CellFormat(30, 6, day.Day, "", 0, "L", false, 0, "")
	x, y := pdf.GetXY()
	pdf.SetFillColor(0x90, 0x9d, 0xab)
	for i := range day.Count {
		pdf.Rect(x+float64(i)*(square+gap), y+1.5, square, square, "F")
	}
	pdf.SetX(x + float64(day.Count)*(square+gap) + 2)
	pdf.CellFormat(0, 6, fmt.Sprintf("(%d)", day.Count), "", 1, "L", false, 0, "")
}
