package worker

// email_worker.go
// Processes receipt jobs from QueueEmail: resolves the payment, renders the
// PDF receipt and mails it. SMTP failures retry with exponential backoff;
// past the budget the job lands in the DLQ.

import (
	"context"
	"encoding/json"
	"fmt"

	"gestcom/internal/infra"
	"gestcom/internal/repository"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// EmailJobPayload is the job envelope sent to QueueEmail.
type EmailJobPayload struct {
	PagoID string `json:"pago_id"`
	Email  string `json:"email"`
}

type EmailWorker struct {
	creditoRepo    repository.CreditoRepository
	compraRepo     repository.CompraRepository
	mailer         *infra.Mailer
	rdb            *redis.Client
	pdfStoragePath string
	empresaNombre  string
}

func NewEmailWorker(
	creditoRepo repository.CreditoRepository,
	compraRepo repository.CompraRepository,
	mailer *infra.Mailer,
	rdb *redis.Client,
	pdfStoragePath string,
	empresaNombre string,
) *EmailWorker {
	return &EmailWorker{
		creditoRepo:    creditoRepo,
		compraRepo:     compraRepo,
		mailer:         mailer,
		rdb:            rdb,
		pdfStoragePath: pdfStoragePath,
		empresaNombre:  empresaNombre,
	}
}

// Process renders and sends the receipt for one payment.
func (w *EmailWorker) Process(ctx context.Context, raw json.RawMessage) {
	var payload EmailJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("email_worker: invalid payload")
		return
	}
	if payload.Email == "" {
		log.Warn().Msg("email_worker: empty email — skipping")
		return
	}

	recibo, err := w.armarRecibo(ctx, payload.PagoID)
	if err != nil {
		log.Error().Err(err).Str("pago_id", payload.PagoID).Msg("email_worker: failed to resolve payment")
		return
	}

	pdfPath, err := infra.GenerateReciboPDF(recibo, w.pdfStoragePath)
	if err != nil {
		log.Error().Err(err).Str("pago_id", payload.PagoID).Msg("email_worker: PDF generation failed")
		return
	}

	subject := fmt.Sprintf("Recibo de pago — Compra #%d cuota %d", recibo.NumeroCompra, recibo.CuotaNumero)
	body := fmt.Sprintf("Adjuntamos el recibo del pago registrado.\nMonto: $%s\nSaldo de la cuota: $%s",
		recibo.Monto.StringFixed(2), recibo.SaldoCuota.StringFixed(2))

	sendErr := withRetry(ctx, 3, func(attempt int) error {
		if err := w.mailer.SendRecibo(payload.Email, subject, body, pdfPath); err != nil {
			log.Warn().Err(err).Int("attempt", attempt+1).Str("to", payload.Email).
				Msg("email_worker: send attempt failed, retrying")
			return err
		}
		return nil
	})
	if sendErr != nil {
		SendToDLQ(ctx, w.rdb, QueueEmail, "email", raw,
			fmt.Sprintf("smtp send failed after retries: %s", sendErr.Error()), 3)
		return
	}

	log.Info().Str("to", payload.Email).Str("pago_id", payload.PagoID).Msg("email_worker: recibo sent")
}

// armarRecibo resuelve pago, cuota, crédito y compra en la proyección que
// necesita el PDF.
func (w *EmailWorker) armarRecibo(ctx context.Context, pagoIDStr string) (*infra.ReciboPago, error) {
	pagoID, err := uuid.Parse(pagoIDStr)
	if err != nil {
		return nil, fmt.Errorf("pago_id inválido: %s", pagoIDStr)
	}
	pago, err := w.creditoRepo.FindPagoByID(ctx, pagoID)
	if err != nil {
		return nil, fmt.Errorf("pago no encontrado: %w", err)
	}
	cuota, err := w.creditoRepo.FindCuotaByID(ctx, pago.CuotaID)
	if err != nil {
		return nil, fmt.Errorf("cuota no encontrada: %w", err)
	}

	recibo := &infra.ReciboPago{
		PagoID:           pago.ID.String(),
		Empresa:          w.empresaNombre,
		CuotaNumero:      cuota.Numero,
		Metodo:           pago.Metodo,
		Monto:            pago.Monto,
		SaldoCuota:       cuota.Saldo,
		FechaPago:        pago.FechaPago,
		IncluyoRecepcion: pago.RecepcionID != nil,
	}

	// Crédito y compra completan número de compra, proveedor y saldo global
	credito, err := w.creditoRepo.FindByID(ctx, cuota.CreditoID)
	if err != nil {
		return nil, fmt.Errorf("crédito no encontrado: %w", err)
	}
	recibo.SaldoCredito = credito.Saldo

	compra, err := w.compraRepo.FindByID(ctx, credito.CompraID)
	if err != nil {
		return nil, fmt.Errorf("compra no encontrada: %w", err)
	}
	recibo.NumeroCompra = compra.Numero
	if compra.Proveedor != nil {
		recibo.Proveedor = compra.Proveedor.RazonSocial
	}
	return recibo, nil
}
