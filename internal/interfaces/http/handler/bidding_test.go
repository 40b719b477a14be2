package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	appbidding "github.com/auctionhouse/backend/internal/application/bidding"
	"github.com/auctionhouse/backend/internal/domain/bidding"
	"github.com/auctionhouse/backend/internal/infrastructure/cache"
	infraevent "github.com/auctionhouse/backend/internal/infrastructure/event"
	"github.com/auctionhouse/backend/internal/infrastructure/lock"
	"github.com/auctionhouse/backend/internal/infrastructure/persistence"
	"github.com/auctionhouse/backend/internal/infrastructure/persistence/models"
	"github.com/auctionhouse/backend/internal/interfaces/http/dto"
	"github.com/auctionhouse/backend/internal/interfaces/http/middleware"
	"github.com/auctionhouse/backend/internal/interfaces/http/router"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type apiFixture struct {
	router   *gin.Engine
	auctions *persistence.GormAuctionRepository
	locker   *lock.MemoryAuctionLocker
}

func setupBiddingAPI(t *testing.T, cfg appbidding.EngineConfig) *apiFixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.AuctionModel{},
		&models.BidModel{},
		&models.AutoBidModel{},
		&models.OutboxEntryModel{},
	))

	publisher := infraevent.NewOutboxPublisher(infraevent.NewBiddingEventSerializer())
	scope := persistence.NewGormTransactionScope(db, publisher)
	locker := lock.NewMemoryAuctionLocker()
	results := cache.NewInMemoryResultStore()
	t.Cleanup(func() { _ = results.Close() })

	log := zap.NewNop()
	engine := appbidding.NewBidEngine(scope, locker, results, cfg, log)
	autoBids := appbidding.NewAutoBidService(scope, locker, cfg, log)
	queries := appbidding.NewBidQueryService(
		persistence.NewGormBidRepository(db),
		persistence.NewGormAuctionRepository(db),
	)

	g := gin.New()
	g.Use(middleware.RequestID())
	router.NewRouter(g).
		Register(NewBiddingHandler(engine, queries)).
		Register(NewAutoBidHandler(autoBids)).
		Setup()

	return &apiFixture{
		router:   g,
		auctions: persistence.NewGormAuctionRepository(db),
		locker:   locker,
	}
}

func (f *apiFixture) seedAuction(t *testing.T, reserve int64, closesIn time.Duration) *bidding.Auction {
	t.Helper()
	auction := bidding.NewAuction(decimal.NewFromInt(reserve), time.Now().Add(closesIn).UTC())
	require.NoError(t, f.auctions.Save(context.Background(), auction))
	return auction
}

func (f *apiFixture) do(method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func bidderHeaders(bidderID uuid.UUID) map[string]string {
	return map[string]string{"X-Bidder-ID": bidderID.String()}
}

type bidEnvelope struct {
	Success bool                 `json:"success"`
	Data    appbidding.BidResult `json:"data"`
	Error   *dto.ErrorInfo       `json:"error"`
}

type autoBidEnvelope struct {
	Success bool                      `json:"success"`
	Data    appbidding.AutoBidResponse `json:"data"`
	Error   *dto.ErrorInfo            `json:"error"`
}

func decodeJSON[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestPlaceBidEndpoint(t *testing.T) {
	f := setupBiddingAPI(t, appbidding.DefaultEngineConfig())
	auction := f.seedAuction(t, 100, time.Hour)
	bidder := uuid.New()

	t.Run("accepted bid", func(t *testing.T) {
		w := f.do("POST", "/api/v1/auctions/"+auction.ID.String()+"/bids",
			gin.H{"amount": "150"}, bidderHeaders(bidder))

		require.Equal(t, http.StatusOK, w.Code)
		resp := decodeJSON[bidEnvelope](t, w)
		assert.True(t, resp.Success)
		assert.Equal(t, bidding.BidStatusAccepted, resp.Data.Status)
		require.NotNil(t, resp.Data.CurrentHighBid)
		assert.True(t, resp.Data.CurrentHighBid.Equal(decimal.NewFromInt(150)))
	})

	t.Run("too-low bid is a result, not an error", func(t *testing.T) {
		w := f.do("POST", "/api/v1/auctions/"+auction.ID.String()+"/bids",
			gin.H{"amount": "151"}, bidderHeaders(uuid.New()))

		require.Equal(t, http.StatusOK, w.Code)
		resp := decodeJSON[bidEnvelope](t, w)
		assert.True(t, resp.Success)
		assert.Equal(t, bidding.BidStatusTooLow, resp.Data.Status)
		assert.NotEmpty(t, resp.Data.Reason)
	})

	t.Run("missing bidder header", func(t *testing.T) {
		w := f.do("POST", "/api/v1/auctions/"+auction.ID.String()+"/bids",
			gin.H{"amount": "200"}, nil)

		require.Equal(t, http.StatusBadRequest, w.Code)
		resp := decodeJSON[bidEnvelope](t, w)
		assert.False(t, resp.Success)
		assert.Equal(t, dto.ErrCodeBadRequest, resp.Error.Code)
	})

	t.Run("malformed auction id", func(t *testing.T) {
		w := f.do("POST", "/api/v1/auctions/not-a-uuid/bids",
			gin.H{"amount": "200"}, bidderHeaders(bidder))

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("unknown auction", func(t *testing.T) {
		w := f.do("POST", "/api/v1/auctions/"+uuid.NewString()+"/bids",
			gin.H{"amount": "200"}, bidderHeaders(bidder))

		require.Equal(t, http.StatusNotFound, w.Code)
		resp := decodeJSON[bidEnvelope](t, w)
		assert.Equal(t, dto.ErrCodeNotFound, resp.Error.Code)
	})

	t.Run("malformed body", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/api/v1/auctions/"+auction.ID.String()+"/bids",
			bytes.NewBufferString("{not json"))
		req.Header.Set("X-Bidder-ID", bidder.String())
		w := httptest.NewRecorder()
		f.router.ServeHTTP(w, req)

		require.Equal(t, http.StatusBadRequest, w.Code)
		resp := decodeJSON[bidEnvelope](t, w)
		assert.Equal(t, dto.ErrCodeInvalidJSON, resp.Error.Code)
	})
}

func TestPlaceBidIdempotencyHeader(t *testing.T) {
	f := setupBiddingAPI(t, appbidding.DefaultEngineConfig())
	auction := f.seedAuction(t, 0, time.Hour)
	bidder := uuid.New()

	headers := bidderHeaders(bidder)
	headers["Idempotency-Key"] = "client-token-001"

	first := decodeJSON[bidEnvelope](t, f.do("POST",
		"/api/v1/auctions/"+auction.ID.String()+"/bids", gin.H{"amount": "20"}, headers))
	second := decodeJSON[bidEnvelope](t, f.do("POST",
		"/api/v1/auctions/"+auction.ID.String()+"/bids", gin.H{"amount": "20"}, headers))

	assert.False(t, first.Data.Duplicate)
	assert.True(t, second.Data.Duplicate)
	assert.Equal(t, first.Data.BidID, second.Data.BidID)
}

func TestPlaceBidLockTimeout(t *testing.T) {
	cfg := appbidding.DefaultEngineConfig()
	cfg.LockWait = 50 * time.Millisecond
	cfg.LockRetryInterval = 10 * time.Millisecond

	f := setupBiddingAPI(t, cfg)
	auction := f.seedAuction(t, 0, time.Hour)

	// Hold the auction lock so the submission cannot take it
	handle, err := f.locker.Acquire(context.Background(), auction.ID, time.Minute, 0, time.Millisecond)
	require.NoError(t, err)
	defer func() { _ = handle.Release(context.Background()) }()

	w := f.do("POST", "/api/v1/auctions/"+auction.ID.String()+"/bids",
		gin.H{"amount": "20"}, bidderHeaders(uuid.New()))

	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
	resp := decodeJSON[bidEnvelope](t, w)
	assert.Equal(t, dto.ErrCodeLockTimeout, resp.Error.Code)
}

func TestAutoBidLockTimeout(t *testing.T) {
	cfg := appbidding.DefaultEngineConfig()
	cfg.LockWait = 50 * time.Millisecond
	cfg.LockRetryInterval = 10 * time.Millisecond

	f := setupBiddingAPI(t, cfg)
	auction := f.seedAuction(t, 0, time.Hour)
	bidder := uuid.New()

	created := f.do("POST", "/api/v1/auctions/"+auction.ID.String()+"/autobids",
		gin.H{"max_amount": "500"}, bidderHeaders(bidder))
	require.Equal(t, http.StatusCreated, created.Code)
	autoBidID := decodeJSON[autoBidEnvelope](t, created).Data.ID

	// Proxy writes queue behind the same per-auction lock as bids
	handle, err := f.locker.Acquire(context.Background(), auction.ID, time.Minute, 0, time.Millisecond)
	require.NoError(t, err)
	defer func() { _ = handle.Release(context.Background()) }()

	w := f.do("PATCH", "/api/v1/autobids/"+autoBidID.String(),
		gin.H{"max_amount": "200"}, bidderHeaders(bidder))
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
	assert.Equal(t, dto.ErrCodeLockTimeout, decodeJSON[autoBidEnvelope](t, w).Error.Code)

	w = f.do("POST", "/api/v1/auctions/"+auction.ID.String()+"/autobids",
		gin.H{"max_amount": "300"}, bidderHeaders(uuid.New()))
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, dto.ErrCodeLockTimeout, decodeJSON[autoBidEnvelope](t, w).Error.Code)
}

func TestGetAuctionStateEndpoint(t *testing.T) {
	f := setupBiddingAPI(t, appbidding.DefaultEngineConfig())
	auction := f.seedAuction(t, 100, time.Hour)
	bidder := uuid.New()

	f.do("POST", "/api/v1/auctions/"+auction.ID.String()+"/bids",
		gin.H{"amount": "150"}, bidderHeaders(bidder))

	w := f.do("GET", "/api/v1/auctions/"+auction.ID.String(), nil, nil)
	require.Equal(t, http.StatusOK, w.Code)

	type stateEnvelope struct {
		Success bool                            `json:"success"`
		Data    appbidding.AuctionStateResponse `json:"data"`
	}
	resp := decodeJSON[stateEnvelope](t, w)
	assert.Equal(t, auction.ID, resp.Data.AuctionID)
	require.NotNil(t, resp.Data.CurrentHighBid)
	assert.True(t, resp.Data.CurrentHighBid.Equal(decimal.NewFromInt(150)))
	assert.True(t, resp.Data.ReserveMet)
	assert.Equal(t, int64(1), resp.Data.BidCount)

	t.Run("unknown auction", func(t *testing.T) {
		w := f.do("GET", "/api/v1/auctions/"+uuid.NewString(), nil, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestGetBidsEndpoint(t *testing.T) {
	f := setupBiddingAPI(t, appbidding.DefaultEngineConfig())
	auction := f.seedAuction(t, 0, time.Hour)

	f.do("POST", "/api/v1/auctions/"+auction.ID.String()+"/bids",
		gin.H{"amount": "10"}, bidderHeaders(uuid.New()))
	f.do("POST", "/api/v1/auctions/"+auction.ID.String()+"/bids",
		gin.H{"amount": "20"}, bidderHeaders(uuid.New()))

	w := f.do("GET", "/api/v1/auctions/"+auction.ID.String()+"/bids", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)

	type listEnvelope struct {
		Success bool                    `json:"success"`
		Data    []appbidding.BidResponse `json:"data"`
	}
	resp := decodeJSON[listEnvelope](t, w)
	require.Len(t, resp.Data, 2)
	assert.True(t, resp.Data[0].Amount.Equal(decimal.NewFromInt(20)))
	assert.True(t, resp.Data[1].Amount.Equal(decimal.NewFromInt(10)))
}

func TestAutoBidEndpoints(t *testing.T) {
	f := setupBiddingAPI(t, appbidding.DefaultEngineConfig())
	auction := f.seedAuction(t, 0, time.Hour)
	alice := uuid.New()

	t.Run("register", func(t *testing.T) {
		w := f.do("POST", "/api/v1/auctions/"+auction.ID.String()+"/autobids",
			gin.H{"max_amount": "100"}, bidderHeaders(alice))

		require.Equal(t, http.StatusCreated, w.Code)
		resp := decodeJSON[autoBidEnvelope](t, w)
		assert.True(t, resp.Data.IsActive)
		assert.True(t, resp.Data.MaxAmount.Equal(decimal.NewFromInt(100)))
	})

	t.Run("second active registration for the same pair is refused", func(t *testing.T) {
		w := f.do("POST", "/api/v1/auctions/"+auction.ID.String()+"/autobids",
			gin.H{"max_amount": "200"}, bidderHeaders(alice))

		require.Equal(t, http.StatusConflict, w.Code)
		resp := decodeJSON[autoBidEnvelope](t, w)
		assert.Equal(t, dto.ErrCodeAutoBidExists, resp.Error.Code)
	})

	t.Run("counter-bid fires against a manual bid", func(t *testing.T) {
		w := f.do("POST", "/api/v1/auctions/"+auction.ID.String()+"/bids",
			gin.H{"amount": "60"}, bidderHeaders(uuid.New()))

		require.Equal(t, http.StatusOK, w.Code)
		resp := decodeJSON[bidEnvelope](t, w)
		assert.Equal(t, 1, resp.Data.AutoBidsTriggered)
		require.NotNil(t, resp.Data.CurrentHighBid)
		assert.True(t, resp.Data.CurrentHighBid.Equal(decimal.NewFromInt(65)))
	})

	t.Run("fetch own registration", func(t *testing.T) {
		w := f.do("GET", "/api/v1/auctions/"+auction.ID.String()+"/autobids/me",
			nil, bidderHeaders(alice))

		require.Equal(t, http.StatusOK, w.Code)
		resp := decodeJSON[autoBidEnvelope](t, w)
		assert.Equal(t, alice, resp.Data.BidderID)
	})

	t.Run("deactivate", func(t *testing.T) {
		get := decodeJSON[autoBidEnvelope](t, f.do("GET",
			"/api/v1/auctions/"+auction.ID.String()+"/autobids/me", nil, bidderHeaders(alice)))

		inactive := false
		w := f.do("PATCH", "/api/v1/autobids/"+get.Data.ID.String(),
			gin.H{"is_active": inactive}, bidderHeaders(alice))

		require.Equal(t, http.StatusOK, w.Code)
		resp := decodeJSON[autoBidEnvelope](t, w)
		assert.False(t, resp.Data.IsActive)

		// A deactivated registration no longer shows up as "mine"
		miss := f.do("GET", "/api/v1/auctions/"+auction.ID.String()+"/autobids/me",
			nil, bidderHeaders(alice))
		assert.Equal(t, http.StatusNotFound, miss.Code)
	})

	t.Run("empty update is refused", func(t *testing.T) {
		registered := decodeJSON[autoBidEnvelope](t, f.do("POST",
			"/api/v1/auctions/"+auction.ID.String()+"/autobids",
			gin.H{"max_amount": "50"}, bidderHeaders(uuid.New())))

		w := f.do("PATCH", "/api/v1/autobids/"+registered.Data.ID.String(),
			gin.H{}, nil)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("unknown registration", func(t *testing.T) {
		active := true
		w := f.do("PATCH", "/api/v1/autobids/"+uuid.NewString(),
			gin.H{"is_active": active}, nil)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
