//go:build integration

package integration_test

import (
	"context"
	"io"
	"log/slog"
	"net"
	"strconv"
	"testing"
	"time"

	"github.com/couchcryptid/wine-survey/internal/adapter/store"
	"github.com/couchcryptid/wine-survey/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tckafka "github.com/testcontainers/testcontainers-go/modules/kafka"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// startKafka runs a single-node broker and returns its address.
func startKafka(ctx context.Context, t *testing.T) string {
	t.Helper()

	container, err := tckafka.Run(ctx, "confluentinc/confluent-local:7.5.0", tckafka.WithClusterID("wine-survey-test"))
	testcontainers.CleanupContainer(t, container)
	require.NoError(t, err, "start kafka container")

	brokers, err := container.Brokers(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, brokers)
	return brokers[0]
}

// createTopic creates a single-partition topic through the controller.
func createTopic(t *testing.T, broker, topic string) {
	t.Helper()

	conn, err := kafkago.Dial("tcp", broker)
	require.NoError(t, err)
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err)

	ctrl, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	require.NoError(t, err)
	defer ctrl.Close()

	require.NoError(t, ctrl.CreateTopics(kafkago.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	}))
}

// startPostgres runs PostgreSQL and returns a migrated store over it.
func startPostgres(ctx context.Context, t *testing.T) *store.Store {
	t.Helper()

	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("survey"),
		tcpostgres.WithUsername("survey"),
		tcpostgres.WithPassword("survey"),
		tcpostgres.BasicWaitStrategies(),
	)
	testcontainers.CleanupContainer(t, container)
	require.NoError(t, err, "start postgres container")

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	st, err := store.Open(dsn)
	require.NoError(t, err, "open store")
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func sampleResponse(id, postalCode, wineType string, at time.Time) *domain.SurveyResponse {
	return &domain.SurveyResponse{
		ID:                      id,
		AgeRange:                "36 – 45 anos",
		Gender:                  "Masculino",
		MaritalStatus:           "Casado(a)/em união estável",
		HouseholdSize:           "3",
		PostalCode:              postalCode,
		Frequency:               "Uma vez por semana",
		WineStyle:               domain.StringList{"Seco"},
		WineType:                domain.StringList{wineType},
		Classification:          "Vinhos finos",
		PriceRange:              "R$ 101 – R$ 200",
		AlcoholFreeWine:         "Não",
		GrapeVarieties:          "Cabernet Sauvignon, Malbec",
		TryNewVarieties:         "Sim",
		PreferredOrigins:        domain.StringList{"Chile", "Argentina"},
		PurchaseChannels:        domain.StringList{domain.PurchaseOutlet[0]},
		AttractiveFactors:       domain.StringList{"Menor preço"},
		WineEvents:              "Sim",
		CannedWines:             "Não conheço, mas quero conhecer",
		NaturalWines:            "Conheço e gosto",
		Name:                    "Rafael",
		Email:                   "rafael@example.com",
		Phone:                   "11977776666",
		CommunicationPreference: "Sim, pode me chamar no WhatsApp",
		CompletedAt:             at,
		CreatedAt:               at,
	}
}
