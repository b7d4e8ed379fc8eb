package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MuayyedAlibrahim/Turkish-House-Price-Prediction/internal/analytics"
	"github.com/MuayyedAlibrahim/Turkish-House-Price-Prediction/internal/api/handlers"
	"github.com/MuayyedAlibrahim/Turkish-House-Price-Prediction/internal/contracts"
	"github.com/MuayyedAlibrahim/Turkish-House-Price-Prediction/internal/estimation"
	"github.com/MuayyedAlibrahim/Turkish-House-Price-Prediction/internal/modelconfig"
	"github.com/MuayyedAlibrahim/Turkish-House-Price-Prediction/internal/scheduler"
	"github.com/MuayyedAlibrahim/Turkish-House-Price-Prediction/pkg/config"
	"github.com/MuayyedAlibrahim/Turkish-House-Price-Prediction/pkg/logger"
)

func f(v float64) *float64 { return &v }

func listings() []contracts.RawListing {
	var out []contracts.RawListing
	places := []struct {
		province, district, neighborhood string
		base                             float64
	}{
		{"İstanbul", "Kadıköy", "Moda", 30_000},
		{"İstanbul", "Beşiktaş", "Levent", 40_000},
		{"Ankara", "Çankaya", "Bahçelievler", 15_000},
		{"İzmir", "Bornova", "Erzene", 18_000},
	}
	sellers := []string{"Sahibinden", "Emlak Ofisi"}
	for i := 0; i < 40; i++ {
		p := places[i%len(places)]
		area := 70 + float64(i%8)*10
		out = append(out, contracts.RawListing{
			Area:         f(area),
			RoomCount:    fmt.Sprintf("%d+1", 1+i%4),
			Province:     p.province,
			District:     p.district,
			Neighborhood: p.neighborhood,
			SellerType:   sellers[i%2],
			Price:        f(area * p.base),
		})
	}
	return out
}

type memLoader struct {
	rows []contracts.RawListing
	err  error
}

func (l *memLoader) Name() string { return "memory" }
func (l *memLoader) Load(ctx context.Context) ([]contracts.RawListing, error) {
	if l.err != nil {
		return nil, &contracts.DataLoadError{Source: l.Name(), Err: l.err}
	}
	return l.rows, nil
}

type testEnv struct {
	router  http.Handler
	service *estimation.Service
	loader  *memLoader
}

func newTestEnv(t *testing.T, trained bool, limiter Limiter) *testEnv {
	t.Helper()

	log := logger.New(&config.Config{Env: "development", LogLevel: "error"})
	mcfg := modelconfig.Default()
	mcfg.Forest.Trees = 10

	svc := estimation.NewService(mcfg.EstimationOptions(), zerolog.Nop())
	loader := &memLoader{rows: listings()}
	if trained {
		_, err := svc.Reload(context.Background(), loader)
		require.NoError(t, err)
	}

	stats := analytics.NewService(svc, nil, mcfg.AnalyticsSettings(), zerolog.Nop())
	router := NewRouter(Handlers{
		Estimate: handlers.NewEstimateHandler(svc, mcfg.SimilarOptions(), log),
		Model:    handlers.NewModelHandler(svc, loader, mcfg, nil, log),
		Stats:    handlers.NewStatsHandler(stats, log),
		Jobs:     handlers.NewJobsHandler(scheduler.New(log)),
		Stream:   handlers.NewModelStream(svc, log),
	}, limiter, false, log)

	return &testEnv{router: router, service: svc, loader: loader}
}

func (e *testEnv) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func validQuery() contracts.Query {
	return contracts.Query{
		Area: 100, RoomCount: "3+1", Province: "İstanbul", District: "Kadıköy",
		Neighborhood: "Moda", SellerType: "Sahibinden",
	}
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t, false, nil)
	rec := env.do(t, "GET", "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}

func TestEstimate(t *testing.T) {
	env := newTestEnv(t, true, nil)

	rec := env.do(t, "POST", "/api/estimate", validQuery())
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp handlers.EstimateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Greater(t, resp.Price, 0.0)
	assert.Equal(t, env.service.Current().Version(), resp.ModelVersion)
	assert.NotEmpty(t, resp.Similar)
	assert.LessOrEqual(t, len(resp.Similar), 5)
	for _, s := range resp.Similar {
		assert.Equal(t, "Moda", s.Neighborhood)
		assert.GreaterOrEqual(t, s.Area, 80.0)
		assert.LessOrEqual(t, s.Area, 120.0)
	}
}

func TestEstimate_UnseenProvince(t *testing.T) {
	env := newTestEnv(t, true, nil)

	q := validQuery()
	q.Province, q.District, q.Neighborhood = "Z", "Nowhere", "Unknown"
	rec := env.do(t, "POST", "/api/estimate", q)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp handlers.EstimateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Empty(t, resp.Similar)
	assert.NotNil(t, resp.Similar)
}

func TestEstimate_Errors(t *testing.T) {
	env := newTestEnv(t, true, nil)

	bad := validQuery()
	bad.RoomCount = "three"
	rec := env.do(t, "POST", "/api/estimate", bad)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `"field":"room_count"`)

	missing := validQuery()
	missing.Neighborhood = ""
	rec = env.do(t, "POST", "/api/estimate", missing)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req := httptest.NewRequest("POST", "/api/estimate", strings.NewReader("{not json"))
	rr := httptest.NewRecorder()
	env.router.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rec = env.do(t, "GET", "/api/estimate", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestMethodNotAllowed(t *testing.T) {
	tests := []struct {
		method string
		path   string
		want   int
	}{
		{"GET", "/api/estimate", http.StatusMethodNotAllowed},
		{"GET", "/api/model/refresh", http.StatusMethodNotAllowed},
		{"POST", "/api/stats/regions", http.StatusMethodNotAllowed},
		{"DELETE", "/api/options/provinces", http.StatusMethodNotAllowed},
		{"GET", "/api/nope", http.StatusNotFound},
		{"GET", "/nope", http.StatusNotFound},
	}

	for _, limiter := range []Limiter{nil, NewLocalLimiter(100, time.Minute)} {
		env := newTestEnv(t, false, limiter)
		for _, tt := range tests {
			t.Run(tt.method+" "+tt.path, func(t *testing.T) {
				assert.Equal(t, tt.want, env.do(t, tt.method, tt.path, nil).Code)
			})
		}
	}
}

func TestNoModel(t *testing.T) {
	env := newTestEnv(t, false, nil)

	for _, tc := range []struct{ method, path string }{
		{"POST", "/api/estimate"},
		{"GET", "/api/model"},
		{"GET", "/api/similar?province=A&district=B&area=100"},
		{"GET", "/api/stats/regions"},
		{"GET", "/api/options/provinces"},
	} {
		var body interface{}
		if tc.method == "POST" {
			body = validQuery()
		}
		rec := env.do(t, tc.method, tc.path, body)
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code, tc.path)
	}
}

func TestSimilar(t *testing.T) {
	env := newTestEnv(t, true, nil)

	rec := env.do(t, "GET", "/api/similar?province=Ankara&district=%C3%87ankaya&neighborhood=Bah%C3%A7elievler&area=100", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Similar []contracts.HouseRecord `json:"similar"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Similar)
	for i, s := range resp.Similar {
		assert.Equal(t, "Ankara", s.Province)
		if i > 0 {
			assert.LessOrEqual(t, resp.Similar[i-1].Price, s.Price)
		}
	}

	assert.Equal(t, http.StatusBadRequest, env.do(t, "GET", "/api/similar?province=Ankara&area=100", nil).Code)
	assert.Equal(t, http.StatusBadRequest, env.do(t, "GET", "/api/similar?province=Ankara&district=x&area=abc", nil).Code)
}

func TestModelInfoAndRefresh(t *testing.T) {
	env := newTestEnv(t, true, nil)

	rec := env.do(t, "GET", "/api/model?top=3", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var info handlers.ModelInfo
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &info))
	assert.Equal(t, env.service.Current().Version(), info.Version)
	assert.Equal(t, 40, info.Records)
	assert.Equal(t, "memory", info.Source)
	assert.Len(t, info.Importances, 3)
	require.NotNil(t, info.Config)
	assert.Equal(t, "house_price_rf", info.Config.ModelID)
	assert.Equal(t, info.Version, info.Config.DatasetVersion)

	assert.Equal(t, http.StatusBadRequest, env.do(t, "GET", "/api/model?top=0", nil).Code)

	// 데이터 변경 없음
	rec = env.do(t, "POST", "/api/model/refresh", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"changed":false`)

	env.loader.rows = listings()[:30]
	rec = env.do(t, "POST", "/api/model/refresh", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"changed":true`)
	assert.NotEqual(t, info.Version, env.service.Current().Version())

	env.loader.err = errors.New("disk gone")
	rec = env.do(t, "POST", "/api/model/refresh", nil)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.NotNil(t, env.service.Current(), "failed refresh keeps the model")
}

func TestStatsAndOptions(t *testing.T) {
	env := newTestEnv(t, true, nil)

	rec := env.do(t, "GET", "/api/stats/regions", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var regions []analytics.RegionStat
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &regions))
	require.Len(t, regions, 3)
	assert.Equal(t, "İstanbul", regions[0].Province)

	rec = env.do(t, "GET", "/api/stats/prices?bins=10", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var hist analytics.Histogram
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &hist))
	assert.Len(t, hist.Bins, 10)
	assert.Equal(t, 40, hist.Total)

	assert.Equal(t, http.StatusBadRequest, env.do(t, "GET", "/api/stats/prices?bins=-1", nil).Code)
	assert.Equal(t, http.StatusBadRequest, env.do(t, "GET", "/api/stats/scatter?n=x", nil).Code)

	rec = env.do(t, "GET", "/api/stats/scatter?n=5", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var points []analytics.Point
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &points))
	assert.Len(t, points, 5)

	var list []string
	rec = env.do(t, "GET", "/api/options/provinces", nil)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Equal(t, []string{"Ankara", "İstanbul", "İzmir"}, list)

	rec = env.do(t, "GET", "/api/options/districts?province=%C4%B0stanbul", nil)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Equal(t, []string{"Beşiktaş", "Kadıköy"}, list)

	rec = env.do(t, "GET", "/api/options/neighborhoods?province=%C4%B0stanbul&district=Kad%C4%B1k%C3%B6y", nil)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Equal(t, []string{"Moda"}, list)

	rec = env.do(t, "GET", "/api/options/seller-types", nil)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Equal(t, []string{"Emlak Ofisi", "Sahibinden"}, list)

	assert.Equal(t, http.StatusBadRequest, env.do(t, "GET", "/api/options/districts", nil).Code)
	assert.Equal(t, http.StatusBadRequest, env.do(t, "GET", "/api/options/neighborhoods?province=A", nil).Code)
}

func TestJobs(t *testing.T) {
	env := newTestEnv(t, false, nil)
	rec := env.do(t, "GET", "/api/jobs", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{}`, rec.Body.String())
}

func TestRateLimit(t *testing.T) {
	env := newTestEnv(t, true, NewLocalLimiter(2, time.Minute))

	assert.Equal(t, http.StatusOK, env.do(t, "GET", "/api/options/provinces", nil).Code)
	assert.Equal(t, http.StatusOK, env.do(t, "GET", "/api/options/provinces", nil).Code)

	rec := env.do(t, "GET", "/api/options/provinces", nil)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))

	// health는 제한 대상 아님
	assert.Equal(t, http.StatusOK, env.do(t, "GET", "/health", nil).Code)

	// 위조된 X-Forwarded-For로는 제한을 우회할 수 없음
	req := httptest.NewRequest("GET", "/api/options/provinces", nil)
	req.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	rr := httptest.NewRecorder()
	env.router.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)

	// 다른 클라이언트는 별도 버킷
	req = httptest.NewRequest("GET", "/api/options/provinces", nil)
	req.RemoteAddr = "203.0.113.9:5555"
	rr = httptest.NewRecorder()
	env.router.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestClientKey(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		forwarded  string
		trustProxy bool
		want       string
	}{
		{"remote addr", "198.51.100.7:4321", "", false, "198.51.100.7"},
		{"forwarded ignored by default", "198.51.100.7:4321", "203.0.113.9", false, "198.51.100.7"},
		{"forwarded first hop when trusted", "10.0.0.2:80", "203.0.113.9, 10.0.0.1", true, "203.0.113.9"},
		{"empty forwarded when trusted", "10.0.0.2:80", " ,10.0.0.1", true, "10.0.0.2"},
		{"remote addr without port", "198.51.100.7", "", false, "198.51.100.7"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/api/model", nil)
			req.RemoteAddr = tt.remoteAddr
			if tt.forwarded != "" {
				req.Header.Set("X-Forwarded-For", tt.forwarded)
			}
			assert.Equal(t, tt.want, clientKey(req, tt.trustProxy))
		})
	}
}

func TestRateLimit_TrustedProxy(t *testing.T) {
	log := logger.New(&config.Config{Env: "development", LogLevel: "error"})
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	handler := rateLimitMiddleware(NewLocalLimiter(1, time.Minute), true, log)(ok)

	send := func(forwarded string) int {
		req := httptest.NewRequest("GET", "/api/model", nil)
		req.Header.Set("X-Forwarded-For", forwarded)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Code
	}

	// 프록시 뒤에서는 같은 RemoteAddr라도 원 클라이언트별 버킷
	assert.Equal(t, http.StatusOK, send("203.0.113.9"))
	assert.Equal(t, http.StatusTooManyRequests, send("203.0.113.9"))
	assert.Equal(t, http.StatusOK, send("203.0.113.10"))
}

type failingLimiter struct{}

func (failingLimiter) Allow(ctx context.Context, client string) (bool, error) {
	return false, errors.New("redis down")
}
func (failingLimiter) Window() time.Duration { return time.Minute }

func TestRateLimit_FailOpen(t *testing.T) {
	env := newTestEnv(t, true, failingLimiter{})
	assert.Equal(t, http.StatusOK, env.do(t, "GET", "/api/options/provinces", nil).Code)
}

func TestNewLimiter(t *testing.T) {
	cfg := &config.Config{RateLimit: config.RateLimitConfig{Enabled: false}}
	assert.Nil(t, NewLimiter(cfg, nil))

	cfg.RateLimit = config.RateLimitConfig{Enabled: true, Requests: 10, Window: time.Minute}
	assert.IsType(t, &LocalLimiter{}, NewLimiter(cfg, nil))
}

func TestModelStream(t *testing.T) {
	env := newTestEnv(t, true, nil)
	server := httptest.NewServer(env.router)
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws/model"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	var ev estimation.ModelEvent
	require.NoError(t, conn.ReadJSON(&ev))
	first := env.service.Current().Version()
	assert.Equal(t, first, ev.Version)
	assert.Equal(t, 40, ev.Records)

	_, err = env.service.Refresh(context.Background(), listings()[:20])
	require.NoError(t, err)

	require.NoError(t, conn.ReadJSON(&ev))
	assert.Equal(t, first, ev.PreviousVersion)
	assert.Equal(t, env.service.Current().Version(), ev.Version)
	assert.Equal(t, 20, ev.Records)
}
