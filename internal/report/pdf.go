package report

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/jung-kurt/gofpdf"

	"senti_ttt/internal/domain/board"
	"senti_ttt/internal/domain/game"
)

var columns = []struct {
	title string
	width float64
}{
	{"Time (UTC)", 38},
	{"Player", 14},
	{"Move", 12},
	{"Source", 24},
	{"Suggested", 20},
	{"Board", 0},
}

// WriteDecisions renders records as an A4 PDF: a summary table followed by
// the board of every decision.
func WriteDecisions(w io.Writer, records []game.DecisionRecord, generatedAt time.Time) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Senti TicTacToe decisions", false)
	pdf.SetCreationDate(generatedAt)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 14)
	pdf.Cell(0, 10, "Senti TicTacToe AI decisions")
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 9)
	pdf.Cell(0, 6, fmt.Sprintf("Generated %s, %d entries", generatedAt.UTC().Format(time.RFC3339), len(records)))
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "B", 9)
	for i, c := range columns {
		ln := 0
		if i == len(columns)-1 {
			ln = 1
		}
		pdf.CellFormat(c.width, 7, c.title, "1", ln, "C", false, 0, "")
	}

	pdf.SetFont("Courier", "", 9)
	for _, r := range records {
		suggested := "-"
		if r.Suggested != nil {
			suggested = strconv.Itoa(*r.Suggested)
		}
		values := []string{
			r.CreatedAt.UTC().Format("2006-01-02 15:04:05"),
			r.Player,
			strconv.Itoa(r.Move),
			r.Source,
			suggested,
			r.Board,
		}
		for i, c := range columns {
			ln := 0
			if i == len(columns)-1 {
				ln = 1
			}
			pdf.CellFormat(c.width, 6, values[i], "1", ln, "L", false, 0, "")
		}
	}

	for _, r := range records {
		b, err := board.Parse(r.Board)
		if err != nil {
			continue
		}
		if pdf.GetY() > 250 {
			pdf.AddPage()
		}
		pdf.Ln(6)
		pdf.SetFont("Helvetica", "B", 9)
		pdf.Cell(0, 5, fmt.Sprintf("%s: %s plays %d (%s)", r.ID, r.Player, r.Move, r.Source))
		pdf.Ln(6)
		pdf.SetFont("Courier", "", 10)
		pdf.MultiCell(0, 4.5, b.String(), "", "L", false)
	}

	return pdf.Output(w)
}
