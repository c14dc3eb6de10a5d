package service

import (
	"time"

	"github.com/google/uuid"
)

// LineaPendiente es una línea de compra normalizada para el armado de una
// recepción: identifica el ítem y acota cuántas unidades quedan por recibir.
type LineaPendiente struct {
	DetalleID uuid.UUID
	Tipo      string
	RefID     uuid.UUID
	Pendiente int
}

// ItemSeleccion es la cantidad elegida para una línea, con su fecha de
// vencimiento opcional.
type ItemSeleccion struct {
	Cantidad         int
	FechaVencimiento *time.Time
}

// SeleccionRecepcion arma el conjunto de líneas a recibir contra una
// compra. Toda mutación pasa por aquí para sostener dos invariantes:
// ninguna cantidad supera el pendiente de su línea, y una cantidad que
// llega a cero saca la línea del conjunto (no deja entradas en cero).
type SeleccionRecepcion struct {
	pendientes map[uuid.UUID]LineaPendiente
	items      map[uuid.UUID]ItemSeleccion
}

// NuevaSeleccion crea una selección vacía sobre las líneas con pendiente
// positivo; las líneas ya completas no participan.
func NuevaSeleccion(lineas []LineaPendiente) *SeleccionRecepcion {
	s := &SeleccionRecepcion{
		pendientes: make(map[uuid.UUID]LineaPendiente, len(lineas)),
		items:      make(map[uuid.UUID]ItemSeleccion),
	}
	for _, l := range lineas {
		if l.Pendiente > 0 {
			s.pendientes[l.DetalleID] = l
		}
	}
	return s
}

// SetCantidad fija la cantidad de una línea, clampeada a [0, pendiente].
// Cero elimina la línea de la selección. Líneas desconocidas se ignoran.
func (s *SeleccionRecepcion) SetCantidad(detalleID uuid.UUID, cantidad int) {
	lin, ok := s.pendientes[detalleID]
	if !ok {
		return
	}
	if cantidad > lin.Pendiente {
		cantidad = lin.Pendiente
	}
	if cantidad <= 0 {
		delete(s.items, detalleID)
		return
	}
	item := s.items[detalleID]
	item.Cantidad = cantidad
	s.items[detalleID] = item
}

// SetFechaVencimiento anota la fecha de una línea ya seleccionada.
// Sin selección previa es un no-op: la fecha acompaña a una cantidad,
// no la crea.
func (s *SeleccionRecepcion) SetFechaVencimiento(detalleID uuid.UUID, fecha *time.Time) {
	item, ok := s.items[detalleID]
	if !ok {
		return
	}
	item.FechaVencimiento = fecha
	s.items[detalleID] = item
}

// RecibirTodoPendiente selecciona el pendiente completo de cada línea,
// preservando las fechas de vencimiento ya anotadas.
func (s *SeleccionRecepcion) RecibirTodoPendiente() {
	for id, lin := range s.pendientes {
		item := s.items[id]
		item.Cantidad = lin.Pendiente
		s.items[id] = item
	}
}

// Limpiar vacía la selección.
func (s *SeleccionRecepcion) Limpiar() {
	s.items = make(map[uuid.UUID]ItemSeleccion)
}

// InicializarSiVacia aplica RecibirTodoPendiente sólo cuando no hay nada
// seleccionado. Idempotente: llamadas repetidas no pisan ajustes manuales.
func (s *SeleccionRecepcion) InicializarSiVacia() {
	if len(s.items) == 0 {
		s.RecibirTodoPendiente()
	}
}

// Cantidad devuelve la cantidad seleccionada de una línea (0 si no está).
func (s *SeleccionRecepcion) Cantidad(detalleID uuid.UUID) int {
	return s.items[detalleID].Cantidad
}

// Vacia indica si no hay ninguna línea seleccionada.
func (s *SeleccionRecepcion) Vacia() bool { return len(s.items) == 0 }

// LineaConfirmada es el resultado de confirmar una línea seleccionada.
type LineaConfirmada struct {
	DetalleID        uuid.UUID
	Tipo             string
	RefID            uuid.UUID
	Cantidad         int
	FechaVencimiento *time.Time
}

// Confirmar materializa la selección: líneas con cantidad positiva más
// el veredicto fueTotal, verdadero sólo cuando lo seleccionado cubre el
// pendiente completo de todas las líneas.
func (s *SeleccionRecepcion) Confirmar() (lineas []LineaConfirmada, fueTotal bool) {
	fueTotal = true
	for id, lin := range s.pendientes {
		item := s.items[id]
		if item.Cantidad < lin.Pendiente {
			fueTotal = false
		}
		if item.Cantidad > 0 {
			lineas = append(lineas, LineaConfirmada{
				DetalleID:        id,
				Tipo:             lin.Tipo,
				RefID:            lin.RefID,
				Cantidad:         item.Cantidad,
				FechaVencimiento: item.FechaVencimiento,
			})
		}
	}
	if len(s.pendientes) == 0 {
		fueTotal = false
	}
	return lineas, fueTotal
}
