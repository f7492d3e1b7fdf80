package api

import (
	"github.com/gin-gonic/gin"

	"github.com/rutvikswami/smartpark-complete/internal/api/handler"
	"github.com/rutvikswami/smartpark-complete/internal/api/middleware"
	"github.com/rutvikswami/smartpark-complete/internal/service"
)

func SetupRouter(
	as *service.AuthService,
	ps *service.ParkingService,
	rs *service.ReservationService,
	ss *service.StatusService,
	sm *service.StatusMonitor,
	ms *service.MonitorService,
	arbiter *service.ActivationArbiter,
	authMw *middleware.AuthMiddleware,
	wsManager *handler.WebSocketManager,
) *gin.Engine {
	r := gin.Default()
	r.Use(gin.Logger())
	r.Use(gin.Recovery())

	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	// WebSocket endpoint (không cần auth cho real-time connection)
	wsHandler := handler.NewWebSocketHandler(wsManager)
	r.GET("/ws", wsHandler.HandleWebSocket)

	authHandler := handler.NewAuthHandler(as)
	authRoutes := r.Group("/auth")
	{
		authRoutes.POST("/register", authHandler.Register)
		authRoutes.POST("/login", authHandler.Login)
	}

	// Đường ingest của vision monitor: claim mở, events cần token monitor.
	monitorHandler := handler.NewMonitorHandler(as, ms)
	monitorRoutes := r.Group("/monitor")
	{
		monitorRoutes.POST("/claim", monitorHandler.Claim)
		monitorRoutes.POST("/events", authMw.Authenticate(), authMw.AuthorizeRole("monitor"), monitorHandler.IngestEvent)
	}

	v1 := r.Group("/api/v1")
	v1.Use(authMw.Authenticate())
	{
		areaH := handler.NewParkingAreaHandler(ps, rs, arbiter)
		areaRoutes := v1.Group("/parking-areas")
		{
			areaRoutes.POST("", authMw.AuthorizeRole("admin"), areaH.CreateParkingArea)
			areaRoutes.GET("", areaH.GetAllParkingAreas)
			areaRoutes.GET("/markers", areaH.GetMarkers)
			areaRoutes.GET("/:id", areaH.GetParkingAreaByID)
			areaRoutes.PUT("/:id", authMw.AuthorizeRole("admin"), areaH.UpdateParkingArea)
			areaRoutes.DELETE("/:id", authMw.AuthorizeRole("admin"), areaH.DeleteParkingArea)

			areaRoutes.GET("/:id/slots", areaH.GetSlotsByArea)
			areaRoutes.GET("/:id/occupancy", areaH.GetOccupancy)
			areaRoutes.GET("/:id/active-reservations", authMw.AuthorizeRole("admin"), areaH.GetActiveReservations)
			areaRoutes.GET("/:id/predictions", areaH.GetLatestPredictions)
			areaRoutes.POST("/:id/activations", areaH.ActivateMarker)
		}

		slotH := handler.NewSlotHandler(ps)
		slotRoutes := v1.Group("/slots")
		{
			slotRoutes.POST("", authMw.AuthorizeRole("admin"), slotH.CreateSlot)
			slotRoutes.GET("/:id", slotH.GetSlotByID)
			slotRoutes.PUT("/:id", authMw.AuthorizeRole("admin"), slotH.UpdateSlotStatus)
			slotRoutes.DELETE("/:id", authMw.AuthorizeRole("admin"), slotH.DeleteSlot)
			slotRoutes.GET("/:id/predictions", slotH.GetPredictions)
		}

		reservationH := handler.NewReservationHandler(rs)
		reservationRoutes := v1.Group("/reservations")
		{
			reservationRoutes.POST("", reservationH.CreateReservation)
			reservationRoutes.GET("", reservationH.ListMyReservations)
			reservationRoutes.GET("/:id", reservationH.GetReservationByID)
			reservationRoutes.POST("/:id/cancel", reservationH.CancelReservation)
		}

		statusH := handler.NewSystemStatusHandler(ss, sm)
		statusRoutes := v1.Group("/system-status")
		{
			statusRoutes.GET("", authMw.AuthorizeRole("admin"), statusH.ListSystems)
			statusRoutes.GET("/:system_id", statusH.GetSystemHealth)
			statusRoutes.POST("/:system_id/watch", statusH.WatchSystem)
		}
	}
	return r
}
