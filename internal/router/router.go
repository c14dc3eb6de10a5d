package router

import (
	"time"

	"gestcom/internal/cache"
	"gestcom/internal/config"
	"gestcom/internal/handler"
	"gestcom/internal/infra"
	"gestcom/internal/middleware"
	"gestcom/internal/repository"
	"gestcom/internal/service"
	"gestcom/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, mailer *infra.Mailer) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(1000, time.Minute)) // 1000 req/min per IP

	// ── Infrastructure ───────────────────────────────────────────────────────
	vistas := cache.NewVistas(rdb, time.Duration(cfg.VistaTTLMinutes)*time.Minute)

	// ── Repositories ─────────────────────────────────────────────────────────
	usuarioRepo := repository.NewUsuarioRepository(db)
	proveedorRepo := repository.NewProveedorRepository(db)
	productoRepo := repository.NewProductoRepository(db)
	compraRepo := repository.NewCompraRepository(db)
	creditoRepo := repository.NewCreditoRepository(db)
	recepcionRepo := repository.NewRecepcionRepository(db)
	movFinRepo := repository.NewMovimientoFinancieroRepository(db)
	movStockRepo := repository.NewMovimientoStockRepository(db)
	requisicionRepo := repository.NewRequisicionRepository(db)
	sucursalRepo := repository.NewSucursalRepository(db)

	// Worker dispatcher — injected into services that enqueue async jobs
	dispatcher := worker.NewDispatcher(rdb)

	// ── Services ─────────────────────────────────────────────────────────────
	authSvc := service.NewAuthService(usuarioRepo, cfg)
	proveedorSvc := service.NewProveedorService(proveedorRepo)
	productoSvc := service.NewProductoService(productoRepo)
	compraSvc := service.NewCompraService(compraRepo, creditoRepo, productoRepo, vistas)
	recepcionSvc := service.NewRecepcionService(compraRepo, recepcionRepo, productoRepo, movStockRepo, movFinRepo, sucursalRepo, vistas)
	creditoSvc := service.NewCreditoService(compraRepo, creditoRepo, movFinRepo, sucursalRepo, recepcionSvc, vistas, dispatcher)
	costoSvc := service.NewCostoService(compraRepo, movFinRepo, sucursalRepo, vistas, dispatcher)
	requisicionSvc := service.NewRequisicionService(requisicionRepo, productoRepo)
	sucursalSvc := service.NewSucursalService(sucursalRepo)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	usuariosH := handler.NewUsuariosHandler(authSvc)
	proveedoresH := handler.NewProveedoresHandler(proveedorSvc)
	productosH := handler.NewProductosHandler(productoSvc)
	comprasH := handler.NewComprasHandler(compraSvc, recepcionSvc, costoSvc)
	creditosH := handler.NewCreditosHandler(creditoSvc)
	requisicionesH := handler.NewRequisicionesHandler(requisicionSvc)
	sucursalesH := handler.NewSucursalesHandler(sucursalSvc)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb, mailer))

	// Auth (public)
	auth := r.Group("/v1/auth")
	{
		auth.POST("/login", middleware.LoginRateLimiter(), authH.Login)
		auth.POST("/refresh", authH.Refresh)
	}

	// Protected routes
	jwtMW := middleware.JWTAuth(cfg.JWTSecret)
	v1 := r.Group("/v1", jwtMW)
	{
		// Roles: comprador, supervisor, administrador — declared per-endpoint
		lectura := middleware.RequireRole("comprador", "supervisor", "administrador")
		gestion := middleware.RequireRole("supervisor", "administrador")
		admin := middleware.RequireRole("administrador")

		// Compras: alta y consulta para todos los roles; la anulación
		// queda reservada a supervisión.
		v1.POST("/compras", lectura, comprasH.Crear)
		v1.GET("/compras", lectura, comprasH.Listar)
		v1.GET("/compras/:id", lectura, comprasH.Obtener)
		v1.GET("/compras/:id/parcial", lectura, comprasH.ObtenerParcial)
		v1.DELETE("/compras/:id", gestion, comprasH.Anular)

		// Recepciones
		v1.GET("/compras/:id/recepcionables", lectura, comprasH.Recepcionables)
		v1.POST("/compras/:id/recepciones-parciales", lectura, comprasH.RecepcionParcial)
		v1.POST("/compras/:id/recepcionar", lectura, comprasH.RecepcionTotal)

		// Costos asociados y libro de movimientos
		v1.POST("/compras/:id/costos-asociados", gestion, comprasH.RegistrarCosto)
		v1.GET("/compras/:id/movimientos", lectura, comprasH.Movimientos)

		// Créditos
		v1.GET("/compras/:id/credito", lectura, creditosH.Obtener)
		v1.POST("/pagos-creditos", gestion, creditosH.RegistrarPago)
		v1.POST("/pagos-creditos/reversa", gestion, creditosH.ReversarPago)

		// Requisiciones
		v1.GET("/requisiciones/candidatos", lectura, requisicionesH.Candidatos)
		v1.POST("/requisiciones", lectura, requisicionesH.Crear)
		v1.GET("/requisiciones", lectura, requisicionesH.Listar)
		v1.GET("/requisiciones/:id", lectura, requisicionesH.Obtener)

		// Productos — lectura general, escritura administrador
		v1.GET("/productos", lectura, productosH.Listar)
		v1.GET("/productos/:id", lectura, productosH.Obtener)
		prods := v1.Group("/productos", admin)
		{
			prods.POST("", productosH.Crear)
			prods.PUT("/:id", productosH.Actualizar)
			prods.DELETE("/:id", productosH.Desactivar)
			prods.PATCH("/:id/reactivar", productosH.Reactivar)
			prods.POST("/:id/presentaciones", productosH.CrearPresentacion)
			prods.PUT("/:id/presentaciones/:presentacionId", productosH.ActualizarPresentacion)
			prods.DELETE("/:id/presentaciones/:presentacionId", productosH.DesactivarPresentacion)
			prods.PATCH("/:id/presentaciones/:presentacionId/reactivar", productosH.ReactivarPresentacion)
		}

		// Catálogos de destino financiero
		v1.GET("/sucursales", lectura, sucursalesH.Listar)
		v1.GET("/sucursales/:id/cajas", lectura, sucursalesH.Cajas)
		v1.GET("/cuentas-bancarias", lectura, sucursalesH.CuentasBancarias)

		// Proveedores
		v1.GET("/proveedores", lectura, proveedoresH.Listar)
		v1.GET("/proveedores/:id", lectura, proveedoresH.Obtener)
		prov := v1.Group("/proveedores", admin)
		{
			prov.POST("", proveedoresH.Crear)
			prov.PUT("/:id", proveedoresH.Actualizar)
			prov.DELETE("/:id", proveedoresH.Desactivar)
		}

		usuarios := v1.Group("/usuarios", admin)
		{
			usuarios.POST("", usuariosH.Crear)
			usuarios.GET("", usuariosH.Listar)
			usuarios.PUT("/:id", usuariosH.Actualizar)
			usuarios.DELETE("/:id", usuariosH.Desactivar)
		}
	}

	// Swagger UI — only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
