package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	awsgo_config "github.com/aws/aws-sdk-go-v2/config" // Alias để tránh trùng tên
	"github.com/aws/aws-sdk-go-v2/service/sqs"

	"github.com/rutvikswami/smartpark-complete/internal/api"
	"github.com/rutvikswami/smartpark-complete/internal/api/handler"
	"github.com/rutvikswami/smartpark-complete/internal/api/middleware"
	"github.com/rutvikswami/smartpark-complete/internal/config"
	"github.com/rutvikswami/smartpark-complete/internal/domain"
	"github.com/rutvikswami/smartpark-complete/internal/monitor"
	"github.com/rutvikswami/smartpark-complete/internal/repository/postgresql"
	"github.com/rutvikswami/smartpark-complete/internal/service"
)

func main() {
	// 1. Load Configuration
	cfg := config.Load()
	log.Println("Cấu hình đã được tải.")

	// 2. Setup Database Connection
	db, err := postgresql.NewDB(cfg)
	if err != nil {
		log.Fatalf("Không thể kết nối database: %v", err)
	}
	defer db.Close()
	log.Println("Đã kết nối database thành công!")

	// 3. Khởi tạo AWS SDK Config + SQS client (chỉ khi có queue)
	var sqsClient *sqs.Client
	if cfg.SQSMonitorQueueURL != "" {
		awsSDKCfg, err := awsgo_config.LoadDefaultConfig(context.TODO(), awsgo_config.WithRegion(cfg.AWSRegion))
		if err != nil {
			log.Fatalf("Không thể tải AWS SDK config: %v", err)
		}
		log.Println("Đã tải AWS SDK config thành công cho region:", cfg.AWSRegion)
		sqsClient = sqs.NewFromConfig(awsSDKCfg)
	}

	// 4. Initialize Repositories
	userRepo := postgresql.NewPgUserRepository(db)
	areaRepo := postgresql.NewPgParkingAreaRepository(db)
	slotRepo := postgresql.NewPgSlotRepository(db)
	reservationRepo := postgresql.NewPgReservationRepository(db)
	predictionRepo := postgresql.NewPgPredictionRepository(db)
	statusRepo := postgresql.NewPgSystemStatusRepository(db)
	monitorEventsLogRepo := postgresql.NewPgMonitorEventsLogRepository(db)

	// 5. Init WebSocket manager
	webSocketManager := handler.NewWebSocketManager()
	go webSocketManager.Start()
	log.Println("WebSocket Manager đã được khởi động.")

	// 6. Initialize Services
	authService := service.NewAuthService(userRepo, areaRepo, cfg.JWTSecret, cfg.JWTExpirationHours)
	parkingService := service.NewParkingService(areaRepo, slotRepo, predictionRepo, cfg.MapProvider, cfg.MapZoom)
	reservationService := service.NewReservationService(reservationRepo, slotRepo)
	statusService := service.NewStatusService(statusRepo, cfg.StatusStaleAfter)
	statusMonitor := service.NewStatusMonitor(statusService, statusRepo, webSocketManager, cfg.StatusRederiveInterval)
	monitorService := service.NewMonitorService(parkingService, statusService, monitorEventsLogRepo)
	arbiter := service.NewActivationArbiter(cfg.MarkerActivationWindow)

	// 7. Initialize Auth Middleware
	authMiddleware := middleware.NewAuthMiddleware(authService)

	var wg sync.WaitGroup
	jobCtx, cancelJobs := context.WithCancel(context.Background())

	// 8. Khởi tạo và Chạy SQS Consumer
	if cfg.SQSMonitorQueueURL == "" {
		log.Println("CẢNH BÁO: SQS_MONITOR_QUEUE_URL chưa được cấu hình. SQS Consumer sẽ không chạy.")
	} else {
		sqsConsumer := monitor.NewSQSConsumer(sqsClient, cfg, monitorService)
		wg.Add(1)
		go func() {
			defer wg.Done()
			sqsConsumer.Start(jobCtx)
			log.Println("SQS Consumer đã dừng.")
		}()
	}

	// 9. Lắng nghe pg_notify và đẩy thay đổi xuống WebSocket; thay đổi
	// bảng system_status còn kích hoạt StatusMonitor nạp lại bản ghi.
	changeListener := postgresql.NewChangeListener(postgresql.DSN(cfg), func(change domain.ChangeNotification) {
		webSocketManager.Broadcast(domain.RealtimeMessage{
			Type:    domain.RealtimeTypeChange,
			Payload: change,
		})
		if change.Table == "system_status" {
			statusMonitor.Refresh()
		}
	})
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := changeListener.Start(jobCtx); err != nil {
			log.Printf("ChangeListener dừng với lỗi: %v", err)
		}
	}()

	// 10. Background jobs: phân loại lại trạng thái hệ thống, quét đặt
	// chỗ hết hạn, bơm kết quả phân xử marker xuống WebSocket.
	wg.Add(1)
	go func() {
		defer wg.Done()
		statusMonitor.Run(jobCtx)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		reservationService.RunExpirySweep(jobCtx, cfg.ReservationSweepInterval)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		for event := range arbiter.Events() {
			webSocketManager.Broadcast(domain.RealtimeMessage{
				Type:    domain.RealtimeTypeMarkerActivation,
				Payload: event,
			})
		}
	}()

	// 11. Setup HTTP Router
	router := api.SetupRouter(authService, parkingService, reservationService,
		statusService, statusMonitor, monitorService, arbiter, authMiddleware, webSocketManager)

	// 12. Start HTTP Server
	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: router,
	}

	go func() {
		log.Printf("Server đang chạy trên port %s", cfg.ServerPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Lỗi ListenAndServe(): %v", err)
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Đang tắt server...")

	cancelJobs()
	arbiter.Close()

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server buộc phải tắt: %v", err)
	}

	log.Println("Đang chờ các background job dừng (tối đa 5 giây)...")
	c := make(chan struct{})
	go func() {
		defer close(c)
		wg.Wait()
	}()
	select {
	case <-c:
		log.Println("Các background job đã dừng hoàn toàn.")
	case <-time.After(5 * time.Second):
		log.Println("Background job không dừng trong thời gian chờ.")
	}

	log.Println("Server đã tắt.")
}
