package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerPort string
	DBHost     string
	DBPort     int
	DBUser     string
	DBPassword string
	DBName     string
	DBSslMode  string

	AWSRegion          string
	SQSMonitorQueueURL string

	JWTSecret          string
	JWTExpirationHours time.Duration

	// Ngưỡng heartbeat cũ để hạ online xuống warning. 0 = tắt (giữ đúng
	// hành vi "online là healthy bất kể tuổi heartbeat").
	StatusStaleAfter time.Duration
	// Chu kỳ tính lại phân loại sức khỏe từ heartbeat đã cache (không fetch mới).
	StatusRederiveInterval time.Duration

	// Cửa sổ phân biệt một chạm (popup) với hai chạm (điều hướng) trên marker.
	MarkerActivationWindow time.Duration

	MapProvider string
	MapZoom     int

	// Chu kỳ quét đóng các đặt chỗ đã quá end_time.
	ReservationSweepInterval time.Duration
}

func Load() *Config {
	err := godotenv.Load()
	if err != nil && !os.IsNotExist(err) {
		log.Printf("Cảnh báo: Không thể tải file .env: %v", err)
	}

	dbPort, _ := strconv.Atoi(getEnv("DB_PORT", "5432"))
	jwtExpHours, _ := strconv.Atoi(getEnv("JWT_EXPIRATION_HOURS", "24"))
	staleAfterSec, _ := strconv.Atoi(getEnv("STATUS_STALE_AFTER_SECONDS", "0"))
	rederiveSec, _ := strconv.Atoi(getEnv("STATUS_REDERIVE_INTERVAL_SECONDS", "30"))
	activationMs, _ := strconv.Atoi(getEnv("MARKER_ACTIVATION_WINDOW_MS", "300"))
	mapZoom, _ := strconv.Atoi(getEnv("MAP_ZOOM", "17"))
	sweepSec, _ := strconv.Atoi(getEnv("RESERVATION_SWEEP_INTERVAL_SECONDS", "60"))

	return &Config{
		ServerPort: getEnv("SERVER_PORT", "8080"),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     dbPort,
		DBUser:     getEnv("DB_USER", "smartpark"),
		DBPassword: getEnv("DB_PASSWORD", "smartpark"),
		DBName:     getEnv("DB_NAME", "smartpark_db"),
		DBSslMode:  getEnv("DB_SSLMODE", "disable"),

		AWSRegion:          getEnv("AWS_REGION", "ap-south-1"),
		SQSMonitorQueueURL: getEnv("SQS_MONITOR_QUEUE_URL", ""),

		JWTSecret:          getEnv("JWT_SECRET", "smartpark-dev-secret-doi-khi-deploy"),
		JWTExpirationHours: time.Duration(jwtExpHours) * time.Hour,

		StatusStaleAfter:       time.Duration(staleAfterSec) * time.Second,
		StatusRederiveInterval: time.Duration(rederiveSec) * time.Second,

		MarkerActivationWindow: time.Duration(activationMs) * time.Millisecond,

		MapProvider: getEnv("MAP_PROVIDER", "https://www.google.com/maps"),
		MapZoom:     mapZoom,

		ReservationSweepInterval: time.Duration(sweepSec) * time.Second,
	}
}

func getEnv(key string, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	log.Printf("Biến môi trường '%s' không được đặt, sử dụng giá trị mặc định: '%s'", key, fallback)
	return fallback
}
