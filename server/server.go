package server

import (
	"log"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"farm-hub/cache"
	"farm-hub/confs"
	"farm-hub/db"
	"farm-hub/handlers"
	httpHandler "farm-hub/handlers/http"
	"farm-hub/repositories"
	"farm-hub/services"
	"farm-hub/usecases"
	"farm-hub/ws"
)

type Server struct {
	app     *gin.Engine
	db      db.Database
	flusher *services.Flusher
}

func NewServer(database db.Database) *Server {
	return &Server{
		app: gin.Default(),
		db:  database,
	}
}

// Build wires every component and mounts the routes. Split from Start so
// tests can run the engine under httptest.
func (s *Server) Build() *gin.Engine {
	// Setup CORS middleware
	config := cors.DefaultConfig()
	config.AllowAllOrigins = true // Allow all origins for development
	config.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	config.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	s.app.Use(cors.New(config))

	s.app.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status": "OK",
		})
	})

	// Repositories over the durable store
	ownerRepo := repositories.NewOwnerPgRepository(s.db)
	zoneRepo := repositories.NewZonePgRepository(s.db)
	historyRepo := repositories.NewHistoryPgRepository(s.db)
	catalogRepo := repositories.NewCatalogPgRepository(s.db)

	// Ownership registry, seeded from the durable owner tree. Fails soft:
	// no data means an empty registry.
	registry := ws.NewRegistry()
	owners, err := ownerRepo.ReadOwnerTree()
	if err != nil {
		log.Printf("warning: could not load owner tree, starting empty: %v", err)
	} else {
		registry.Load(owners)
	}

	// In-memory history buffer and its periodic flush
	store := cache.NewHistoryStore(confs.MonthSamples(), confs.WeekSamples())
	s.flusher = services.NewFlusher(store, historyRepo, confs.FlushInterval())
	s.flusher.Start()

	evaluator := services.NewAlertEvaluator(nil)
	querySvc := services.NewHistoryQueryService(historyRepo, store)
	provisionUC := usecases.NewProvisionUseCase(zoneRepo, catalogRepo, registry)

	wsHandler := handlers.NewWSHandler(registry, store, evaluator, nil)
	bufferHandler := handlers.NewBufferHandler(store, s.flusher)
	zoneHandler := httpHandler.NewZoneHandler(provisionUC)
	historyHandler := httpHandler.NewHistoryHandler(querySvc)
	loginHandler := httpHandler.NewLoginHandler(s.db.GetDB())

	api := s.app.Group("/api/v1")
	{
		// Provisioning routes; zone and subzone lifecycle drives ownership
		zones := api.Group("/zones")
		{
			zones.POST("", zoneHandler.CreateZone)
			zones.DELETE("/:id", zoneHandler.DeleteZone)
			zones.POST("/:id/subzones", zoneHandler.CreateSubzone)
		}
		api.DELETE("/subzones/:id", zoneHandler.DeleteSubzone)
		api.GET("/owners/:uid/zones", zoneHandler.GetZones)

		// Historical pull endpoint
		api.GET("/history", historyHandler.GetHistory)

		// Auth routes
		auth := api.Group("/auth")
		{
			auth.POST("/login", loginHandler.Login)
		}

		// Operational endpoints
		api.GET("/units/connected", wsHandler.GetConnectedUnits)
		buffer := api.Group("/buffer")
		{
			buffer.POST("/flush", bufferHandler.Flush)
			buffer.GET("/stats", bufferHandler.Stats)
		}
	}

	s.app.GET("/ws", wsHandler.HandleWS)

	return s.app
}

func (s *Server) Start() {
	s.Build()
	if err := s.app.Run(confs.ListenAddr()); err != nil {
		panic(err)
	}
}
