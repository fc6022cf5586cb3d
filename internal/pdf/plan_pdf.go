package pdf

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jung-kurt/gofpdf"

	"physioplan/internal/models"
)

// Generator renders a patient's exercise plan to a downloadable PDF.
type Generator interface {
	GeneratePlan(plan *models.Plan, sub *models.Submission) (string, error)
}

type PlanGenerator struct {
	RootDir  string // storage root, e.g. "./files"
	fontName string
}

func NewPlanGenerator(rootDir string) *PlanGenerator {
	return &PlanGenerator{
		RootDir:  filepath.Clean(rootDir),
		fontName: "Helvetica",
	}
}

// GeneratePlan writes the PDF under RootDir and returns the absolute path.
func (g *PlanGenerator) GeneratePlan(plan *models.Plan, sub *models.Submission) (string, error) {
	absPath, err := g.ensureTarget(fmt.Sprintf("plan_%s.pdf", plan.ID))
	if err != nil {
		return "", err
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Exercise plan", false)
	pdf.SetAuthor("PhysioPlan", false)
	pdf.SetMargins(20, 20, 20)
	pdf.SetAutoPageBreak(true, 20)
	pdf.AddPage()

	// ===== header
	pdf.SetFont(g.fontName, "B", 18)
	pdf.CellFormat(0, 10, "EXERCISE PLAN", "", 1, "C", false, 0, "")

	pdf.SetFont(g.fontName, "", 12)
	sub2 := fmt.Sprintf("Created %s", plan.CreatedAt.Format("02.01.2006"))
	pdf.CellFormat(0, 7, sub2, "", 1, "C", false, 0, "")
	g.hr(pdf)
	pdf.Ln(3)

	// ===== complaint
	if sub != nil {
		g.sectionTitle(pdf, "Complaint")
		g.kvLine(pdf, "Chief complaint", sub.ChiefComplaint)
		g.kvLine(pdf, "Pain severity", fmt.Sprintf("%d / 10", sub.Severity))
		if sub.AITriage != "" {
			g.kvLine(pdf, "Triage", sub.AITriage)
		}
		pdf.Ln(2)
		g.hr(pdf)
	}

	// ===== summary
	if plan.Summary != "" {
		g.sectionTitle(pdf, "Summary")
		pdf.SetFont(g.fontName, "", 11)
		pdf.MultiCell(0, 6, plan.Summary, "", "L", false)
		pdf.Ln(2)
		g.hr(pdf)
	}

	// ===== exercises
	g.sectionTitle(pdf, "Exercises")
	for i, item := range plan.Items {
		pdf.SetFont(g.fontName, "B", 11)
		pdf.CellFormat(0, 6, fmt.Sprintf("%d. %s", i+1, item.Name), "", 1, "L", false, 0, "")
		pdf.SetFont(g.fontName, "", 11)

		target := fmt.Sprintf("%d reps", item.Reps)
		if item.Type == models.ExerciseHold {
			target = fmt.Sprintf("%d s hold", item.HoldTime)
		}
		g.kvLine(pdf, "Target", fmt.Sprintf("%s x %d sets", target, item.Sets))
		if item.TargetArea != "" {
			g.kvLine(pdf, "Area", item.TargetArea)
		}
		if item.Frequency != "" {
			g.kvLine(pdf, "Frequency", item.Frequency)
		}
		g.kvLine(pdf, "Equipment", item.Equipment)
		if item.Precautions != "" {
			g.kvLine(pdf, "Precautions", item.Precautions)
		}
		if item.Description != "" {
			pdf.MultiCell(0, 6, item.Description, "", "L", false)
		}
		pdf.Ln(2)
	}
	g.hr(pdf)

	// ===== progress
	g.sectionTitle(pdf, "Progress")
	g.kvLine(pdf, "Completed", fmt.Sprintf("%d%%", plan.Progress))

	pdf.AliasNbPages("")
	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont(g.fontName, "", 10)
		pdf.CellFormat(0, 10,
			fmt.Sprintf("Page %d/{nb}", pdf.PageNo()),
			"", 0, "C", false, 0, "",
		)
	})

	if err := pdf.OutputFileAndClose(absPath); err != nil {
		return "", err
	}
	return absPath, nil
}

// ===== helpers =====

func (g *PlanGenerator) ensureTarget(filename string) (string, error) {
	if err := os.MkdirAll(g.RootDir, 0o755); err != nil {
		return "", fmt.Errorf("create files dir: %w", err)
	}
	filename = filepath.Base(filename)
	return filepath.Join(g.RootDir, filename), nil
}

func (g *PlanGenerator) sectionTitle(pdf *gofpdf.Fpdf, s string) {
	pdf.SetFont(g.fontName, "B", 12)
	pdf.CellFormat(0, 7, s, "", 1, "L", false, 0, "")
	pdf.SetFont(g.fontName, "", 11)
}

func (g *PlanGenerator) kvLine(pdf *gofpdf.Fpdf, key, val string) {
	pdf.SetFont(g.fontName, "B", 11)
	pdf.CellFormat(45, 6, key+":", "", 0, "L", false, 0, "")
	pdf.SetFont(g.fontName, "", 11)
	pdf.CellFormat(0, 6, val, "", 1, "L", false, 0, "")
}

func (g *PlanGenerator) hr(pdf *gofpdf.Fpdf) {
	y := pdf.GetY() + 1.5
	pdf.SetLineWidth(0.2)
	pdf.Line(20, y, 190, y)
	pdf.SetY(y + 2)
}
