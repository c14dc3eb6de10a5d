package service

import (
	"context"
	"errors"

	"gestcom/internal/model"
	"gestcom/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CanalPago es el destino resuelto de un egreso: caja para EFECTIVO,
// cuenta bancaria para todo otro método. Los campos son excluyentes.
type CanalPago struct {
	CajaID           *uuid.UUID
	CuentaBancariaID *uuid.UUID
}

// ResolverCanal valida la regla de exclusividad del canal: EFECTIVO exige
// caja_id y prohíbe cuenta_bancaria_id; cualquier otro método exige
// cuenta_bancaria_id y prohíbe caja_id.
func ResolverCanal(metodo string, cajaID, cuentaBancariaID *string) (*CanalPago, error) {
	if metodo == model.MetodoEfectivo {
		if cajaID == nil || *cajaID == "" {
			return nil, errors.New("el pago en efectivo requiere caja_id")
		}
		if cuentaBancariaID != nil && *cuentaBancariaID != "" {
			return nil, errors.New("el pago en efectivo no admite cuenta_bancaria_id")
		}
		id, err := uuid.Parse(*cajaID)
		if err != nil {
			return nil, errors.New("caja_id inválido")
		}
		return &CanalPago{CajaID: &id}, nil
	}

	if cuentaBancariaID == nil || *cuentaBancariaID == "" {
		return nil, errors.New("el método " + metodo + " requiere cuenta_bancaria_id")
	}
	if cajaID != nil && *cajaID != "" {
		return nil, errors.New("el método " + metodo + " no admite caja_id")
	}
	id, err := uuid.Parse(*cuentaBancariaID)
	if err != nil {
		return nil, errors.New("cuenta_bancaria_id inválido")
	}
	return &CanalPago{CuentaBancariaID: &id}, nil
}

func validarSucursal(ctx context.Context, repo repository.SucursalRepository, id uuid.UUID) error {
	if _, err := repo.FindByID(ctx, id); err != nil {
		return errors.New("la sucursal indicada no existe")
	}
	return nil
}

// ValidarDestino verifica contra el catálogo que la sucursal y el canal
// resuelto existan y estén activos. El libro financiero no declara FKs
// sobre cajas ni cuentas: un id colgado quedaría asentado para siempre.
func ValidarDestino(ctx context.Context, repo repository.SucursalRepository, sucursalID uuid.UUID, canal *CanalPago) error {
	if err := validarSucursal(ctx, repo, sucursalID); err != nil {
		return err
	}
	if canal.CajaID != nil {
		caja, err := repo.FindCajaByID(ctx, *canal.CajaID)
		if err != nil {
			return errors.New("la caja indicada no existe")
		}
		if !caja.Activo {
			return errors.New("la caja indicada está inactiva")
		}
	}
	if canal.CuentaBancariaID != nil {
		cuenta, err := repo.FindCuentaBancariaByID(ctx, *canal.CuentaBancariaID)
		if err != nil {
			return errors.New("la cuenta bancaria indicada no existe")
		}
		if !cuenta.Activo {
			return errors.New("la cuenta bancaria indicada está inactiva")
		}
	}
	return nil
}

// Deltas proyecta un egreso de monto sobre el canal: el canal usado recibe
// el monto negado, el otro queda en cero.
func (c *CanalPago) Deltas(monto decimal.Decimal) (deltaCaja, deltaBanco decimal.Decimal) {
	if c.CajaID != nil {
		return monto.Neg(), decimal.Zero
	}
	return decimal.Zero, monto.Neg()
}
