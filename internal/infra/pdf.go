package infra

// pdf.go — Receipt generation for installment payments using go-pdf/fpdf.
// Generates A7-size thermal receipt-style documents with:
//   - Business name header
//   - Purchase number and payment timestamp
//   - Installment number, amount paid and payment method
//   - Remaining installment / credit balances
//
// The output file is saved to storagePath/recibo_{pago}.pdf.

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"
)

// ReciboPago carries everything the PDF needs, already resolved; the worker
// assembles it so this package stays free of repository dependencies.
type ReciboPago struct {
	PagoID           string
	Empresa          string
	NumeroCompra     int64
	Proveedor        string
	CuotaNumero      int
	Metodo           string
	Monto            decimal.Decimal
	SaldoCuota       decimal.Decimal
	SaldoCredito     decimal.Decimal
	FechaPago        time.Time
	IncluyoRecepcion bool
}

// GenerateReciboPDF writes a payment receipt and returns the absolute path.
func GenerateReciboPDF(r *ReciboPago, storagePath string) (string, error) {
	if err := os.MkdirAll(storagePath, 0755); err != nil {
		return "", fmt.Errorf("pdf: create storage dir: %w", err)
	}

	fileName := fmt.Sprintf("recibo_%s.pdf", r.PagoID)
	filePath := filepath.Join(storagePath, fileName)

	// A7 ≈ 74mm × 105mm — close to thermal receipt paper
	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           fpdf.SizeType{Wd: 74, Ht: 105},
	})
	pdf.SetMargins(4, 4, 4)
	pdf.AddPage()

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 8 // total margins = 8mm

	// ── Header ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(contentW, 7, r.Empresa, "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "", 8)
	pdf.CellFormat(contentW, 5, "Recibo de pago de cuota", "", 1, "C", false, 0, "")
	pdf.Ln(2)

	// ── Payment info ─────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 8)
	pdf.CellFormat(contentW, 5, fmt.Sprintf("Compra N° %d — Cuota %d", r.NumeroCompra, r.CuotaNumero), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 7)
	pdf.CellFormat(contentW, 4, r.FechaPago.Format("02/01/2006  15:04"), "", 1, "L", false, 0, "")
	pdf.CellFormat(contentW, 4, "Proveedor: "+r.Proveedor, "", 1, "L", false, 0, "")
	pdf.Ln(2)

	pdf.Line(4, pdf.GetY(), pageW-4, pdf.GetY())
	pdf.Ln(2)

	col1 := contentW * 0.6
	col2 := contentW * 0.4

	// ── Amounts ──────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(col1, 6, "PAGADO:", "", 0, "L", false, 0, "")
	pdf.CellFormat(col2, 6, "$"+r.Monto.StringFixed(2), "", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 7)
	pdf.CellFormat(col1, 4, "Metodo ("+r.Metodo+")", "", 1, "L", false, 0, "")
	pdf.CellFormat(col1, 4, "Saldo de la cuota:", "", 0, "L", false, 0, "")
	pdf.CellFormat(col2, 4, "$"+r.SaldoCuota.StringFixed(2), "", 1, "R", false, 0, "")
	pdf.CellFormat(col1, 4, "Saldo del credito:", "", 0, "L", false, 0, "")
	pdf.CellFormat(col2, 4, "$"+r.SaldoCredito.StringFixed(2), "", 1, "R", false, 0, "")

	if r.IncluyoRecepcion {
		pdf.Ln(2)
		pdf.SetFont("Helvetica", "I", 7)
		pdf.CellFormat(contentW, 4, "Incluye recepcion de mercaderia", "", 1, "L", false, 0, "")
	}

	// ── Footer ────────────────────────────────────────────────────────────────
	pdf.Ln(3)
	pdf.SetFont("Helvetica", "I", 7)
	pdf.CellFormat(contentW, 4, "Documento no fiscal", "", 1, "C", false, 0, "")

	if err := pdf.OutputFileAndClose(filePath); err != nil {
		return "", fmt.Errorf("pdf: write file: %w", err)
	}

	return filePath, nil
}
