package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// Vistas cachea las proyecciones de lectura de una compra en Redis. Las
// tres vistas (compra, recepcionable, crédito) se derivan del mismo
// agregado, así que la invalidación es siempre conjunta: cualquier
// mutación de la compra pasa por InvalidarCompra y borra las tres claves,
// estén pobladas o no.
type Vistas struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewVistas(rdb *redis.Client, ttl time.Duration) *Vistas {
	return &Vistas{rdb: rdb, ttl: ttl}
}

func ClaveCompra(id uuid.UUID) string        { return "vista:compra:" + id.String() }
func ClaveRecepcionable(id uuid.UUID) string { return "vista:compra-recepcionable:" + id.String() }
func ClaveCredito(id uuid.UUID) string       { return "vista:credito-compra:" + id.String() }

// ClavesCompra devuelve el set completo de claves de vista de una compra.
func ClavesCompra(id uuid.UUID) []string {
	return []string{ClaveCompra(id), ClaveRecepcionable(id), ClaveCredito(id)}
}

// Get deserializa la vista cacheada en dest. Devuelve false en miss o si
// el payload está corrupto (en cuyo caso la clave se descarta).
func (v *Vistas) Get(ctx context.Context, clave string, dest interface{}) bool {
	if v == nil || v.rdb == nil {
		return false
	}
	raw, err := v.rdb.Get(ctx, clave).Bytes()
	if err != nil {
		return false
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		log.Warn().Str("clave", clave).Err(err).Msg("vista cacheada corrupta, descartando")
		v.rdb.Del(ctx, clave)
		return false
	}
	return true
}

// Set serializa y guarda la vista. Los errores de cache solo se loguean:
// la respuesta ya se construyó desde la base.
func (v *Vistas) Set(ctx context.Context, clave string, val interface{}) {
	if v == nil || v.rdb == nil {
		return
	}
	raw, err := json.Marshal(val)
	if err != nil {
		log.Warn().Str("clave", clave).Err(err).Msg("no se pudo serializar la vista")
		return
	}
	if err := v.rdb.Set(ctx, clave, raw, v.ttl).Err(); err != nil {
		log.Warn().Str("clave", clave).Err(err).Msg("no se pudo cachear la vista")
	}
}

// InvalidarCompra es el único punto de invalidación: borra las tres
// vistas de la compra en una sola llamada DEL.
func (v *Vistas) InvalidarCompra(ctx context.Context, compraID uuid.UUID) {
	if v == nil || v.rdb == nil {
		return
	}
	if err := v.rdb.Del(ctx, ClavesCompra(compraID)...).Err(); err != nil {
		log.Warn().Str("compra_id", compraID.String()).Err(err).Msg("no se pudieron invalidar las vistas")
	}
}
