package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type vistaPrueba struct {
	ID    string `json:"id"`
	Total string `json:"total"`
}

func nuevasVistas(t *testing.T) (*Vistas, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewVistas(rdb, 5*time.Minute), mr
}

func TestVistasSetGet(t *testing.T) {
	vistas, _ := nuevasVistas(t)
	ctx := context.Background()
	id := uuid.New()

	var miss vistaPrueba
	assert.False(t, vistas.Get(ctx, ClaveCompra(id), &miss))

	original := vistaPrueba{ID: id.String(), Total: "1500.00"}
	vistas.Set(ctx, ClaveCompra(id), original)

	var cargada vistaPrueba
	require.True(t, vistas.Get(ctx, ClaveCompra(id), &cargada))
	assert.Equal(t, original, cargada)
}

func TestVistasGetDescartaPayloadCorrupto(t *testing.T) {
	vistas, mr := nuevasVistas(t)
	ctx := context.Background()
	id := uuid.New()

	require.NoError(t, mr.Set(ClaveCompra(id), "{no es json"))

	var dest vistaPrueba
	assert.False(t, vistas.Get(ctx, ClaveCompra(id), &dest))
	// la clave corrupta se borra para que la próxima lectura repueble
	assert.False(t, mr.Exists(ClaveCompra(id)))
}

func TestVistasInvalidarCompra(t *testing.T) {
	vistas, mr := nuevasVistas(t)
	ctx := context.Background()
	id := uuid.New()
	otra := uuid.New()

	vistas.Set(ctx, ClaveCompra(id), vistaPrueba{ID: "a"})
	vistas.Set(ctx, ClaveRecepcionable(id), vistaPrueba{ID: "b"})
	vistas.Set(ctx, ClaveCredito(id), vistaPrueba{ID: "c"})
	vistas.Set(ctx, ClaveCompra(otra), vistaPrueba{ID: "d"})

	vistas.InvalidarCompra(ctx, id)

	for _, clave := range ClavesCompra(id) {
		assert.False(t, mr.Exists(clave), clave)
	}
	// las vistas de otras compras quedan intactas
	assert.True(t, mr.Exists(ClaveCompra(otra)))
}

func TestVistasNilSonNoOp(t *testing.T) {
	ctx := context.Background()
	var vistas *Vistas
	id := uuid.New()

	var dest vistaPrueba
	assert.False(t, vistas.Get(ctx, ClaveCompra(id), &dest))
	vistas.Set(ctx, ClaveCompra(id), vistaPrueba{})
	vistas.InvalidarCompra(ctx, id)
}
