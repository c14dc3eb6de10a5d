package service

import (
	"context"
	"testing"

	"gestcom/internal/dto"
	"gestcom/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCostoUnitarioPresentacion(t *testing.T) {
	producto := &model.Producto{PrecioCosto: decimal.NewFromFloat(10.5)}

	// sin costo referencial: costo base x factor, redondeado a 2
	pres := &model.Presentacion{FactorConversion: decimal.NewFromInt(2)}
	assert.Equal(t, "21.00", CostoUnitarioPresentacion(pres, producto))

	// el costo referencial manda sobre el derivado
	referencial := decimal.NewFromFloat(19.99)
	pres.CostoReferencial = &referencial
	assert.Equal(t, "19.99", CostoUnitarioPresentacion(pres, producto))

	// sin referencial ni producto base: "0"
	pres.CostoReferencial = nil
	assert.Equal(t, "0", CostoUnitarioPresentacion(pres, nil))
}

func TestListarCandidatos(t *testing.T) {
	e := nuevoEntorno()
	svc := NewRequisicionService(newStubRequisicionRepo(), e.productoRepo)

	bajo := e.nuevoProducto("Servilletas", 3, 1) // mínimo 5, stock 1
	e.nuevoProducto("Velas", 2, 50)              // sobre el mínimo, no es candidato
	bajo.Presentaciones = []model.Presentacion{{
		ID:               uuid.New(),
		ProductoID:       bajo.ID,
		Nombre:           "Pack x10",
		FactorConversion: decimal.NewFromInt(10),
		Activo:           true,
	}}

	resp, err := svc.ListarCandidatos(context.Background(), dto.CandidatosFilter{})
	require.NoError(t, err)
	require.Len(t, resp.Candidatos, 1)

	c := resp.Candidatos[0]
	assert.Equal(t, "Servilletas", c.Nombre)
	assert.Equal(t, 4, c.Faltante)
	require.Len(t, c.Presentaciones, 1)
	assert.Equal(t, "30.00", c.Presentaciones[0].CostoUnitario)
}

func TestCrearRequisicion(t *testing.T) {
	e := nuevoEntorno()
	svc := NewRequisicionService(newStubRequisicionRepo(), e.productoRepo)

	prod := e.nuevoProducto("Escobas", 120, 0)
	prodID := prod.ID.String()

	resp, err := svc.CrearRequisicion(context.Background(), uuid.New(), dto.CrearRequisicionRequest{
		SucursalID:    uuid.New().String(),
		Observaciones: "reposición semanal",
		Lineas: []dto.RequisicionLineaRequest{
			{ProductoID: &prodID, CantidadSugerida: 12, PrecioCostoUnitario: strPtr("118.50")},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, model.RequisicionPendiente, resp.Estado)
	assert.Equal(t, "reposición semanal", resp.Observaciones)
	require.Len(t, resp.Lineas, 1)
	assert.Equal(t, 12, resp.Lineas[0].CantidadSugerida)
	require.NotNil(t, resp.Lineas[0].PrecioCostoUnitario)
	assert.Equal(t, "118.50", *resp.Lineas[0].PrecioCostoUnitario)

	// sin actualizar_costo el maestro no se toca
	assert.Equal(t, "120", prod.PrecioCosto.String())
}

func TestCrearRequisicionLineaAmbigua(t *testing.T) {
	e := nuevoEntorno()
	svc := NewRequisicionService(newStubRequisicionRepo(), e.productoRepo)

	prod := e.nuevoProducto("Trapos", 10, 0)
	pres := e.productoRepo.agregarPresentacion(&model.Presentacion{
		ProductoID:       prod.ID,
		Nombre:           "Docena",
		FactorConversion: decimal.NewFromInt(12),
		Activo:           true,
	})
	prodID, presID := prod.ID.String(), pres.ID.String()

	// ambos refs
	_, err := svc.CrearRequisicion(context.Background(), uuid.New(), dto.CrearRequisicionRequest{
		SucursalID: uuid.New().String(),
		Lineas: []dto.RequisicionLineaRequest{
			{ProductoID: &prodID, PresentacionID: &presID, CantidadSugerida: 1},
		},
	})
	assert.Error(t, err)

	// ninguno
	_, err = svc.CrearRequisicion(context.Background(), uuid.New(), dto.CrearRequisicionRequest{
		SucursalID: uuid.New().String(),
		Lineas: []dto.RequisicionLineaRequest{
			{CantidadSugerida: 1},
		},
	})
	assert.Error(t, err)
}

func TestCrearRequisicionProductoInexistente(t *testing.T) {
	e := nuevoEntorno()
	svc := NewRequisicionService(newStubRequisicionRepo(), e.productoRepo)

	fantasma := uuid.New().String()
	_, err := svc.CrearRequisicion(context.Background(), uuid.New(), dto.CrearRequisicionRequest{
		SucursalID: uuid.New().String(),
		Lineas: []dto.RequisicionLineaRequest{
			{ProductoID: &fantasma, CantidadSugerida: 1},
		},
	})
	assert.Error(t, err)
}

func TestCrearRequisicionActualizarCostoSinPrecio(t *testing.T) {
	e := nuevoEntorno()
	svc := NewRequisicionService(newStubRequisicionRepo(), e.productoRepo)

	prod := e.nuevoProducto("Esponjas", 5, 0)
	prodID := prod.ID.String()

	_, err := svc.CrearRequisicion(context.Background(), uuid.New(), dto.CrearRequisicionRequest{
		SucursalID: uuid.New().String(),
		Lineas: []dto.RequisicionLineaRequest{
			{ProductoID: &prodID, CantidadSugerida: 3, ActualizarCosto: true},
		},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "actualizar_costo")
}

func TestCrearRequisicionPropagaCostos(t *testing.T) {
	e := nuevoEntorno()
	svc := NewRequisicionService(newStubRequisicionRepo(), e.productoRepo)

	prod := e.nuevoProducto("Cloro", 100, 0)
	pres := e.productoRepo.agregarPresentacion(&model.Presentacion{
		ProductoID:       prod.ID,
		Nombre:           "Bidón x5",
		FactorConversion: decimal.NewFromInt(5),
		Activo:           true,
	})
	prodID, presID := prod.ID.String(), pres.ID.String()

	_, err := svc.CrearRequisicion(context.Background(), uuid.New(), dto.CrearRequisicionRequest{
		SucursalID: uuid.New().String(),
		Lineas: []dto.RequisicionLineaRequest{
			{ProductoID: &prodID, CantidadSugerida: 10, PrecioCostoUnitario: strPtr("95.00"), ActualizarCosto: true},
			{PresentacionID: &presID, CantidadSugerida: 2, PrecioCostoUnitario: strPtr("470.00"), ActualizarCosto: true},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "95.00", prod.PrecioCosto.StringFixed(2))
	require.NotNil(t, pres.CostoReferencial)
	assert.Equal(t, "470.00", pres.CostoReferencial.StringFixed(2))
}

func TestCrearRequisicionRechazaCostoNegativo(t *testing.T) {
	e := nuevoEntorno()
	svc := NewRequisicionService(newStubRequisicionRepo(), e.productoRepo)

	prod := e.nuevoProducto("Bolsas", 8, 0)
	prodID := prod.ID.String()

	_, err := svc.CrearRequisicion(context.Background(), uuid.New(), dto.CrearRequisicionRequest{
		SucursalID: uuid.New().String(),
		Lineas: []dto.RequisicionLineaRequest{
			{ProductoID: &prodID, CantidadSugerida: 1, PrecioCostoUnitario: strPtr("-10")},
		},
	})
	assert.Error(t, err)
}

func TestObtenerRequisicion(t *testing.T) {
	e := nuevoEntorno()
	repo := newStubRequisicionRepo()
	svc := NewRequisicionService(repo, e.productoRepo)

	prod := e.nuevoProducto("Papel", 6, 0)
	prodID := prod.ID.String()

	creada, err := svc.CrearRequisicion(context.Background(), uuid.New(), dto.CrearRequisicionRequest{
		SucursalID: uuid.New().String(),
		Lineas: []dto.RequisicionLineaRequest{
			{ProductoID: &prodID, CantidadSugerida: 4},
		},
	})
	require.NoError(t, err)

	id, err := uuid.Parse(creada.ID)
	require.NoError(t, err)
	resp, err := svc.ObtenerRequisicion(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, creada.ID, resp.ID)
	require.Len(t, resp.Lineas, 1)

	_, err = svc.ObtenerRequisicion(context.Background(), uuid.New())
	assert.Error(t, err)
}
