//go:build integration

package main_test

import (
	"context"
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	kafkamodule "github.com/testcontainers/testcontainers-go/modules/kafka"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/arena-tix/service-booking/internal/adapter"
	"github.com/arena-tix/service-booking/internal/application"
	"github.com/arena-tix/service-booking/internal/events"
	"github.com/arena-tix/service-booking/internal/repository"
)

// testInfra holds shared test infrastructure.
type testInfra struct {
	DB           *gorm.DB
	KafkaBrokers []string
	Cleanup      func()
}

// bookingStack holds wired-up booking service components.
type bookingStack struct {
	Booking *application.BookingService
	Promos  *application.PromoService
	Reports *application.ReportService
	Cleanup func()
}

// catalogFixture is a seeded show with one priced region.
type catalogFixture struct {
	VenueID  uuid.UUID
	EventID  uuid.UUID
	ShowID   uuid.UUID
	RegionID uuid.UUID
}

// setupContainers starts PostgreSQL and Kafka testcontainers and returns a connected GORM DB.
func setupContainers(t *testing.T) *testInfra {
	t.Helper()
	ctx := context.Background()

	pgReq := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "test_booking",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}
	pgContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: pgReq,
		Started:          true,
	})
	require.NoError(t, err, "failed to start PostgreSQL container")

	pgHost, err := pgContainer.Host(ctx)
	require.NoError(t, err)
	pgPort, err := pgContainer.MappedPort(ctx, "5432")
	require.NoError(t, err)

	dsn := fmt.Sprintf("host=%s port=%s user=test password=test dbname=test_booking sslmode=disable", pgHost, pgPort.Port())

	// Poll until GORM can actually connect and ping.
	var db *gorm.DB
	require.Eventually(t, func() bool {
		var err error
		db, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
		if err != nil {
			return false
		}
		sqlDB, err := db.DB()
		if err != nil {
			return false
		}
		return sqlDB.Ping() == nil
	}, 30*time.Second, 1*time.Second, "PostgreSQL not ready for connections")

	require.NoError(t, db.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`).Error)
	require.NoError(t, db.AutoMigrate(repository.AllModels()...))

	kafkaContainer, err := kafkamodule.Run(ctx, "confluentinc/confluent-local:7.5.0")
	require.NoError(t, err, "failed to start Kafka container")

	kafkaBrokers, err := kafkaContainer.Brokers(ctx)
	require.NoError(t, err, "failed to get Kafka brokers")

	createTopics(t, kafkaBrokers, events.TopicReservationEvents)

	cleanup := func() {
		if err := kafkaContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate Kafka container: %v", err)
		}
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate PostgreSQL container: %v", err)
		}
	}

	return &testInfra{
		DB:           db,
		KafkaBrokers: kafkaBrokers,
		Cleanup:      cleanup,
	}
}

// setupBookingStack wires up the full booking service stack against the
// containers, with a canned FX provider.
func setupBookingStack(t *testing.T, db *gorm.DB, brokers []string) *bookingStack {
	t.Helper()
	logger, _ := zap.NewDevelopment()

	catalogRepo := repository.NewGormCatalogRepository(db)
	reservationRepo := repository.NewGormReservationRepository(db)
	promoRepo := repository.NewGormPromoRepository(db)
	store := repository.NewGormStore(db)

	mockFx := adapter.NewMockRateProvider(map[string]float64{
		"RSD->EUR": 0.00854,
	}, logger)

	producer := events.NewProducer(brokers, logger)

	bookingSvc := application.NewBookingService(
		catalogRepo, store, reservationRepo, promoRepo,
		mockFx, producer, "RSD", 5, logger,
	)
	promoSvc := application.NewPromoService(promoRepo, logger)
	reportSvc := application.NewReportService(reservationRepo, logger)

	return &bookingStack{
		Booking: bookingSvc,
		Promos:  promoSvc,
		Reports: reportSvc,
		Cleanup: func() { _ = producer.Close() },
	}
}

// seedCatalog inserts one venue, event, show and a priced region with the
// given capacity and unit price.
func seedCatalog(t *testing.T, db *gorm.DB, capacity int, unitPriceRsd int64) catalogFixture {
	t.Helper()

	fx := catalogFixture{
		VenueID:  uuid.New(),
		EventID:  uuid.New(),
		ShowID:   uuid.New(),
		RegionID: uuid.New(),
	}

	require.NoError(t, db.Create(&repository.VenueModel{
		ID: fx.VenueID, Name: "Stark Arena", City: "Belgrade",
	}).Error)
	require.NoError(t, db.Create(&repository.EventModel{
		ID: fx.EventID, Title: "World Tour", Artist: "The Headliners",
	}).Error)
	require.NoError(t, db.Create(&repository.ShowModel{
		ID: fx.ShowID, EventID: fx.EventID, VenueID: fx.VenueID,
		StartsAt: time.Now().Add(30 * 24 * time.Hour).UTC(),
	}).Error)
	require.NoError(t, db.Create(&repository.SeatingRegionModel{
		ID: fx.RegionID, VenueID: fx.VenueID, Name: "Floor", Capacity: capacity,
	}).Error)
	require.NoError(t, db.Create(&repository.ShowPriceModel{
		ShowID: fx.ShowID, RegionID: fx.RegionID, UnitPriceRsd: unitPriceRsd,
	}).Error)

	return fx
}

// seedCurrency inserts one enabled currency.
func seedCurrency(t *testing.T, db *gorm.DB, code, name string) {
	t.Helper()
	require.NoError(t, db.Create(&repository.CurrencyModel{
		Code: code, Name: name, IsEnabled: true,
	}).Error)
}

// seedPromo inserts an UNUSED promo code.
func seedPromo(t *testing.T, db *gorm.DB, code string, pct int) {
	t.Helper()
	require.NoError(t, db.Create(&repository.PromoCodeModel{
		ID: uuid.New(), Code: code, Status: "UNUSED", DiscountPct: pct,
		CreatedAt: time.Now().UTC(),
	}).Error)
}

// soldQty sums committed ACTIVE item quantity for a (show, region) pair.
func soldQty(t *testing.T, db *gorm.DB, showID, regionID uuid.UUID) int {
	t.Helper()
	var total int64
	err := db.Model(&repository.ReservationItemModel{}).
		Joins("JOIN reservations ON reservations.id = reservation_items.reservation_id").
		Where("reservations.show_id = ? AND reservation_items.region_id = ? AND reservations.status = ?",
			showID, regionID, "ACTIVE").
		Select("COALESCE(SUM(reservation_items.qty), 0)").
		Scan(&total).Error
	require.NoError(t, err)
	return int(total)
}

// consumeOneEvent reads from the reservation topic until it finds an event of the expected type.
func consumeOneEvent(t *testing.T, brokers []string, expectedType string, timeout time.Duration) events.CloudEvent {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	groupID := fmt.Sprintf("test-assert-%s", uuid.New().String()[:8])
	reader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     brokers,
		GroupID:     groupID,
		Topic:       events.TopicReservationEvents,
		MinBytes:    1,
		MaxBytes:    10e6,
		StartOffset: kafkago.FirstOffset,
	})
	defer func() { _ = reader.Close() }()

	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				t.Fatalf("timed out waiting for event type %q", expectedType)
			}
			continue
		}
		ce, err := events.ParseCloudEvent(msg.Value)
		if err != nil {
			continue
		}
		if ce.Type == expectedType {
			return ce
		}
	}
}

// createTopics pre-creates Kafka topics so producers don't fail with "Unknown Topic".
func createTopics(t *testing.T, brokers []string, topics ...string) {
	t.Helper()
	conn, err := kafkago.Dial("tcp", brokers[0])
	require.NoError(t, err, "failed to dial Kafka for topic creation")
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err, "failed to get Kafka controller")

	controllerConn, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, fmt.Sprintf("%d", controller.Port)))
	require.NoError(t, err, "failed to connect to Kafka controller")
	defer controllerConn.Close()

	topicConfigs := make([]kafkago.TopicConfig, len(topics))
	for i, topic := range topics {
		topicConfigs[i] = kafkago.TopicConfig{
			Topic:             topic,
			NumPartitions:     1,
			ReplicationFactor: 1,
		}
	}
	err = controllerConn.CreateTopics(topicConfigs...)
	require.NoError(t, err, "failed to create Kafka topics")

	// Give Kafka a moment to propagate topic metadata.
	time.Sleep(1 * time.Second)
}
