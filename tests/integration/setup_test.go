package integration

import (
	"context"
	"net/http"
	"os"
	"testing"

	"github.com/rs/zerolog"

	adaptershttp "github.com/iho/depositcore/internal/adapter/http"
	"github.com/iho/depositcore/internal/adapter/http/handler"
	"github.com/iho/depositcore/internal/adapter/repository/postgres"
	redisrepo "github.com/iho/depositcore/internal/adapter/repository/redis"
	infraredis "github.com/iho/depositcore/internal/infrastructure/redis"
	"github.com/iho/depositcore/internal/usecase"
	"github.com/iho/depositcore/tests/testutil"
)

// testServer wires the full service against the test database, the way
// cmd/server does.
type testServer struct {
	Router        http.Handler
	AccountUC     *usecase.AccountUseCase
	PostingUC     *usecase.PostingUseCase
	AccrualUC     *usecase.AccrualUseCase
	ApplicationUC *usecase.ApplicationUseCase
	Close         func()
}

func newTestServer(t *testing.T, testDB *testutil.TestDB) *testServer {
	t.Helper()

	ctx := context.Background()

	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		redisURL = "redis://localhost:6379"
	}
	redisClient, err := infraredis.NewClient(ctx, redisURL)
	if err != nil {
		t.Fatalf("failed to connect to redis: %v", err)
	}

	pool := testDB.Pool
	txManager := postgres.NewTxManager(pool)
	accountRepo := postgres.NewAccountRepository(pool)
	postingRepo := postgres.NewPostingRepository(pool)
	productRepo := postgres.NewProductRepository(pool, redisrepo.NewCache(redisClient), 0, zerolog.Nop())
	scheduleRepo := postgres.NewScheduleRepository(pool)
	calendarRepo := postgres.NewCalendarRepository(pool)
	outboxRepo := postgres.NewOutboxRepository(pool)
	idGen := postgres.NewULIDGenerator()

	accountUC := usecase.NewAccountUseCase(txManager, accountRepo, productRepo, postingRepo, scheduleRepo, calendarRepo, outboxRepo, idGen)
	postingUC := usecase.NewPostingUseCase(txManager, accountRepo, productRepo, postingRepo, calendarRepo, outboxRepo, idGen)
	accrualUC := usecase.NewAccrualUseCase(txManager, accountRepo, productRepo, postingRepo, idGen)
	applicationUC := usecase.NewApplicationUseCase(txManager, accountRepo, productRepo, postingRepo, scheduleRepo, calendarRepo, outboxRepo, idGen)

	router := adaptershttp.NewRouter(adaptershttp.RouterConfig{
		AccountHandler:   handler.NewAccountHandler(accountUC, outboxRepo),
		PostingHandler:   handler.NewPostingHandler(postingUC),
		InterestHandler:  handler.NewInterestHandler(accrualUC, applicationUC, scheduleRepo),
		HealthHandler:    handler.NewHealthHandler(pool, redisClient),
		IdempotencyStore: redisrepo.NewIdempotencyStore(redisClient),
		Logger:           zerolog.Nop(),
	})

	return &testServer{
		Router:        router,
		AccountUC:     accountUC,
		PostingUC:     postingUC,
		AccrualUC:     accrualUC,
		ApplicationUC: applicationUC,
		Close:         func() { redisClient.Close() },
	}
}
