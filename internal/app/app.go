package app

import (
	"context"
	"os"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/anand05ms/Employee-tracker/internal/attendance"
	"github.com/anand05ms/Employee-tracker/internal/broadcast"
	"github.com/anand05ms/Employee-tracker/internal/geo"
	"github.com/anand05ms/Employee-tracker/internal/history"
	"github.com/anand05ms/Employee-tracker/internal/shared/connection"
)

// BuildApp wires infrastructure, modules, and routes onto the router
// and starts the background workers. The returned func stops the
// workers and flushes pending location samples.
func BuildApp(router *gin.Engine) (func(), error) {
	logger := zap.L().Named("app")

	gormDB, err := connection.ConnectGORMWithRetry(
		os.Getenv("DB_HOST"),
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_NAME"),
		os.Getenv("DB_PORT"),
		os.Getenv("DB_SSLMODE"),
		5,
	)
	if err != nil {
		return nil, err
	}
	logger.Info("database connection established")

	redisClient, err := connection.ConnectRedisWithRetry(os.Getenv("REDIS_ADDR"), 5)
	if err != nil {
		return nil, err
	}
	logger.Info("redis connection established")

	publisher := broadcast.NewNoopEventPublisher()
	if broker := os.Getenv("KAFKA_BROKER"); broker != "" {
		kafkaWriter, err := connection.ConnectKafkaWithRetry(broker, 5)
		if err != nil {
			return nil, err
		}
		publisher = broadcast.NewKafkaEventPublisher(kafkaWriter)
		logger.Info("kafka connection established", zap.String("broker", broker))
	} else {
		logger.Warn("KAFKA_BROKER not set, status events stay in-process")
	}

	office, tz, err := loadOfficeConfig()
	if err != nil {
		return nil, err
	}
	logger.Info("office geofence configured",
		zap.Float64("latitude", office.Center.Latitude),
		zap.Float64("longitude", office.Center.Longitude),
		zap.Float64("radius_m", office.RadiusMeters),
		zap.String("timezone", tz.String()),
	)

	store := attendance.NewStore()
	hub := broadcast.NewHub()
	historyRepo := history.NewRepository(gormDB)
	writer := history.NewWriter(historyRepo, redisClient)

	ctx, cancel := context.WithCancel(context.Background())

	go hub.Run(ctx)
	go writer.Run(ctx)
	go broadcast.RelayStatusEvents(ctx, hub, publisher, zap.L())
	go runJanitor(ctx, store, tz)

	engineCfg := attendance.EngineConfig{Office: office, Timezone: tz}
	if err := registerModules(router, gormDB, redisClient, store, hub, writer, historyRepo, engineCfg); err != nil {
		cancel()
		return nil, err
	}

	shutdown := func() {
		cancel()
		select {
		case <-writer.Done():
		case <-time.After(5 * time.Second):
			logger.Warn("history writer drain timed out")
		}
	}
	return shutdown, nil
}

func loadOfficeConfig() (geo.Office, *time.Location, error) {
	lat, err := strconv.ParseFloat(envOr("OFFICE_LAT", "12.9716"), 64)
	if err != nil {
		return geo.Office{}, nil, err
	}
	lng, err := strconv.ParseFloat(envOr("OFFICE_LNG", "77.5946"), 64)
	if err != nil {
		return geo.Office{}, nil, err
	}
	radius, err := strconv.ParseFloat(envOr("OFFICE_RADIUS_M", "200"), 64)
	if err != nil {
		return geo.Office{}, nil, err
	}
	tz, err := time.LoadLocation(envOr("OFFICE_TZ", "Asia/Kolkata"))
	if err != nil {
		return geo.Office{}, nil, err
	}
	office := geo.Office{
		Center:       geo.Point{Latitude: lat, Longitude: lng},
		RadiusMeters: radius,
	}
	return office, tz, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// runJanitor drops closed records of past days from the in-memory
// store once the day rolls over. The archive keeps the full history.
func runJanitor(ctx context.Context, store *attendance.Store, tz *time.Location) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			store.Purge(time.Now().In(tz).Format("2006-01-02"))
		}
	}
}
