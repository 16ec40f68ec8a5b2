package rest_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/kasuganosora/modguard/api/rest"
	"github.com/kasuganosora/modguard/audit"
	"github.com/kasuganosora/modguard/config"
	"github.com/kasuganosora/modguard/middleware"
	"github.com/kasuganosora/modguard/model"
	"github.com/kasuganosora/modguard/notify"
	"github.com/kasuganosora/modguard/punish"
	"github.com/kasuganosora/modguard/scheduler"
	"github.com/kasuganosora/modguard/store"
	"github.com/kasuganosora/modguard/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type apiFixture struct {
	router http.Handler
	token  string
	db     *gorm.DB
	audit  *audit.Service
	sched  *scheduler.Scheduler
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("admin-key"), bcrypt.MinCost)
	require.NoError(t, err)
	cfg := &config.Config{
		Server: config.ServerConfig{Debug: true, Name: "lobby-1"},
		Security: config.SecurityConfig{
			AdminKeyHash:   string(hash),
			JWTSecret:      "test-secret",
			JWTTTL:         time.Hour,
			RateLimitRPS:   1000,
			RateLimitBurst: 1000,
		},
		Punish: config.PunishConfig{ReportCooldown: time.Minute},
	}

	db := testutil.SetupTestDB(t)
	st := store.New(db, zap.NewNop())
	c := testutil.SetupTestCache(t)
	pool := testutil.SetupTestPool(t)
	notifier, err := notify.New(config.NotifyConfig{LocalBuf: 16})
	require.NoError(t, err)
	auditSvc := audit.New(db, zap.NewNop())
	t.Cleanup(auditSvc.Stop)
	svc := punish.NewService(st, c, pool, notifier, auditSvc, cfg.Server.Name, zap.NewNop())
	sched := scheduler.New(zap.NewNop())
	t.Cleanup(sched.Stop)

	token, err := middleware.GenerateToken("staff-1", "mod", cfg.Security.JWTSecret, time.Hour)
	require.NoError(t, err)

	return &apiFixture{
		router: rest.NewRouter(cfg, svc, st, sched, zap.NewNop()),
		token:  token,
		db:     db,
		audit:  auditSvc,
		sched:  sched,
	}
}

func (fx *apiFixture) do(t *testing.T, method, path string, body interface{}, out interface{}) int {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Authorization", "Bearer "+fx.token)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	fx.router.ServeHTTP(w, req)
	if out != nil && w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), out), w.Body.String())
	}
	return w.Code
}

func TestStaffRoutesRequireToken(t *testing.T) {
	fx := newAPIFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/api/staff/punishments/count?category=ban", nil)
	w := httptest.NewRecorder()
	fx.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAdminTokenFlow(t *testing.T) {
	fx := newAPIFixture(t)

	body, _ := json.Marshal(map[string]string{"identity": "staff-9", "name": "newmod"})

	// Wrong admin key.
	req := httptest.NewRequest(http.MethodPost, "/api/admin/token", bytes.NewReader(body))
	req.Header.Set(middleware.AdminKeyHeader, "wrong")
	w := httptest.NewRecorder()
	fx.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Right key yields a usable staff token.
	req = httptest.NewRequest(http.MethodPost, "/api/admin/token", bytes.NewReader(body))
	req.Header.Set(middleware.AdminKeyHeader, "admin-key")
	w = httptest.NewRecorder()
	fx.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	claims, err := middleware.ParseToken(resp.Token, "test-secret")
	require.NoError(t, err)
	assert.Equal(t, "staff-9", claims.StaffIdentity)
}

func TestPunishmentLifecycleOverHTTP(t *testing.T) {
	fx := newAPIFixture(t)

	// Issue a ban.
	var created struct {
		ID             int64  `json:"id"`
		Type           string `json:"type"`
		IssuerIdentity string `json:"issuer_identity"`
		OriginServer   string `json:"origin_server"`
	}
	code := fx.do(t, http.MethodPost, "/api/staff/punishments", map[string]interface{}{
		"type":            "ban",
		"target_identity": "uuid-1",
		"target_name":     "alice",
		"reason":          "griefing",
	}, &created)
	require.Equal(t, http.StatusCreated, code)
	assert.NotZero(t, created.ID)
	assert.Equal(t, "ban", created.Type)
	assert.Equal(t, "staff-1", created.IssuerIdentity, "issuer comes from the JWT")
	assert.Equal(t, "lobby-1", created.OriginServer)

	// A second ban conflicts.
	code = fx.do(t, http.MethodPost, "/api/staff/punishments", map[string]interface{}{
		"type": "ban", "target_identity": "uuid-1",
	}, nil)
	assert.Equal(t, http.StatusConflict, code)

	// The point lookup sees it.
	var eff struct {
		Punished bool `json:"punished"`
	}
	code = fx.do(t, http.MethodGet, "/api/staff/punishments/effective?category=ban&identity=uuid-1", nil, &eff)
	require.Equal(t, http.StatusOK, code)
	assert.True(t, eff.Punished)

	// Fetch by ID.
	code = fx.do(t, http.MethodGet, fmt.Sprintf("/api/staff/punishments/id/%d", created.ID), nil, nil)
	assert.Equal(t, http.StatusOK, code)
	code = fx.do(t, http.MethodGet, "/api/staff/punishments/id/99999", nil, nil)
	assert.Equal(t, http.StatusNotFound, code)

	// Counts and listing.
	var count struct {
		Count int64 `json:"count"`
	}
	code = fx.do(t, http.MethodGet, "/api/staff/punishments/count?category=ban", nil, &count)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, int64(1), count.Count)

	var listing struct {
		Items []json.RawMessage `json:"items"`
		Total int64             `json:"total"`
	}
	code = fx.do(t, http.MethodGet, "/api/staff/punishments/active?category=ban", nil, &listing)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, int64(1), listing.Total)
	assert.Len(t, listing.Items, 1)

	// Revoke, then the lookup goes quiet.
	var revoked struct {
		Revoked bool `json:"revoked"`
	}
	code = fx.do(t, http.MethodPost, "/api/staff/punishments/revoke", map[string]string{
		"category": "ban", "target_identity": "uuid-1", "reason": "appealed",
	}, &revoked)
	require.Equal(t, http.StatusOK, code)
	assert.True(t, revoked.Revoked)

	code = fx.do(t, http.MethodGet, "/api/staff/punishments/effective?category=ban&identity=uuid-1", nil, &eff)
	require.Equal(t, http.StatusOK, code)
	assert.False(t, eff.Punished)

	// History keeps the removed row.
	var history struct {
		Count int `json:"count"`
	}
	code = fx.do(t, http.MethodGet, "/api/staff/players/uuid-1/history", nil, &history)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 1, history.Count)
}

func TestIssueValidationOverHTTP(t *testing.T) {
	fx := newAPIFixture(t)

	// Unknown type.
	code := fx.do(t, http.MethodPost, "/api/staff/punishments", map[string]string{
		"type": "banish", "target_identity": "uuid-2",
	}, nil)
	assert.Equal(t, http.StatusBadRequest, code)

	// No target at all.
	code = fx.do(t, http.MethodPost, "/api/staff/punishments", map[string]string{
		"type": "ban",
	}, nil)
	assert.Equal(t, http.StatusBadRequest, code)

	// Duration on a permanent type.
	code = fx.do(t, http.MethodPost, "/api/staff/punishments", map[string]interface{}{
		"type": "ban", "target_identity": "uuid-2", "duration_seconds": 3600,
	}, nil)
	assert.Equal(t, http.StatusBadRequest, code)

	// Missing body.
	code = fx.do(t, http.MethodPost, "/api/staff/punishments", nil, nil)
	assert.Equal(t, http.StatusBadRequest, code)

	// GetEffective without a key.
	code = fx.do(t, http.MethodGet, "/api/staff/punishments/effective?category=ban", nil, nil)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestPlayerEndpoints(t *testing.T) {
	fx := newAPIFixture(t)

	st := store.New(fx.db, zap.NewNop())
	_, err := st.TouchPlayer(context.Background(), "uuid-3", "carol", "10.0.0.3", time.Now().UTC().Truncate(time.Second))
	require.NoError(t, err)

	var player struct {
		Identity string  `json:"identity"`
		LastName string  `json:"last_name"`
		Points   float64 `json:"points"`
	}
	code := fx.do(t, http.MethodGet, "/api/staff/players/uuid-3", nil, &player)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "carol", player.LastName)

	code = fx.do(t, http.MethodGet, "/api/staff/players/missing", nil, nil)
	assert.Equal(t, http.StatusNotFound, code)

	// Name and address history.
	var names struct {
		Items []struct {
			Name string `json:"name"`
		} `json:"items"`
	}
	code = fx.do(t, http.MethodGet, "/api/staff/players/uuid-3/names", nil, &names)
	require.Equal(t, http.StatusOK, code)
	require.Len(t, names.Items, 1)
	assert.Equal(t, "carol", names.Items[0].Name)

	code = fx.do(t, http.MethodGet, "/api/staff/players/uuid-3/addresses", nil, nil)
	assert.Equal(t, http.StatusOK, code)

	// Exemption toggle and points adjustment round-trip through the store.
	code = fx.do(t, http.MethodPost, "/api/staff/players/uuid-3/exempt", map[string]bool{"exempt": true}, nil)
	assert.Equal(t, http.StatusOK, code)

	code = fx.do(t, http.MethodPost, "/api/staff/players/uuid-3/points", map[string]float64{"delta": 4}, nil)
	assert.Equal(t, http.StatusOK, code)

	code = fx.do(t, http.MethodGet, "/api/staff/players/uuid-3", nil, &player)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 4.0, player.Points)
}

func TestModerationEndpoints(t *testing.T) {
	fx := newAPIFixture(t)

	// Notes.
	var note struct {
		ID int64 `json:"id"`
	}
	code := fx.do(t, http.MethodPost, "/api/staff/notes", map[string]string{
		"target_identity": "uuid-4", "body": "watch this one",
	}, &note)
	require.Equal(t, http.StatusCreated, code)
	require.NotZero(t, note.ID)

	var notes struct {
		Items []json.RawMessage `json:"items"`
	}
	code = fx.do(t, http.MethodGet, "/api/staff/notes/uuid-4", nil, &notes)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, notes.Items, 1)

	code = fx.do(t, http.MethodDelete, fmt.Sprintf("/api/staff/notes/%d", note.ID), nil, nil)
	assert.Equal(t, http.StatusOK, code)
	code = fx.do(t, http.MethodDelete, fmt.Sprintf("/api/staff/notes/%d", note.ID), nil, nil)
	assert.Equal(t, http.StatusNotFound, code)

	// Reports.
	var report struct {
		ID     int64  `json:"id"`
		Status string `json:"status"`
	}
	code = fx.do(t, http.MethodPost, "/api/staff/reports", map[string]string{
		"target_identity": "uuid-5", "reporter_identity": "uuid-6", "reason": "speed hacks",
	}, &report)
	require.Equal(t, http.StatusCreated, code)
	assert.Equal(t, "pending", report.Status)

	code = fx.do(t, http.MethodPost, fmt.Sprintf("/api/staff/reports/%d/resolve", report.ID), map[string]string{
		"status": "accepted",
	}, nil)
	assert.Equal(t, http.StatusOK, code)

	// Already resolved.
	code = fx.do(t, http.MethodPost, fmt.Sprintf("/api/staff/reports/%d/resolve", report.ID), map[string]string{
		"status": "denied",
	}, nil)
	assert.Equal(t, http.StatusConflict, code)

	// Appeals need an existing punishment.
	code = fx.do(t, http.MethodPost, "/api/staff/appeals", map[string]interface{}{
		"punishment_id": 999, "appellant_identity": "uuid-5", "body": "unfair",
	}, nil)
	assert.Equal(t, http.StatusNotFound, code)

	var created struct {
		ID int64 `json:"id"`
	}
	code = fx.do(t, http.MethodPost, "/api/staff/punishments", map[string]string{
		"type": "ban", "target_identity": "uuid-5",
	}, &created)
	require.Equal(t, http.StatusCreated, code)

	var appeal struct {
		ID int64 `json:"id"`
	}
	code = fx.do(t, http.MethodPost, "/api/staff/appeals", map[string]interface{}{
		"punishment_id": created.ID, "appellant_identity": "uuid-5", "body": "unfair",
	}, &appeal)
	require.Equal(t, http.StatusCreated, code)

	code = fx.do(t, http.MethodPost, fmt.Sprintf("/api/staff/appeals/%d/decide", appeal.ID), map[string]string{
		"status": "denied", "reason": "evidence stands",
	}, nil)
	assert.Equal(t, http.StatusOK, code)
}

func TestReportCooldownOverHTTP(t *testing.T) {
	fx := newAPIFixture(t)

	body := map[string]string{
		"target_identity": "uuid-7", "reporter_identity": "uuid-8", "reason": "spam",
	}
	code := fx.do(t, http.MethodPost, "/api/staff/reports", body, nil)
	require.Equal(t, http.StatusCreated, code)

	// Same reporter is throttled, even against a different target.
	body["target_identity"] = "uuid-9"
	code = fx.do(t, http.MethodPost, "/api/staff/reports", body, nil)
	assert.Equal(t, http.StatusTooManyRequests, code)

	// A different reporter is not.
	body["reporter_identity"] = "uuid-10"
	code = fx.do(t, http.MethodPost, "/api/staff/reports", body, nil)
	assert.Equal(t, http.StatusCreated, code)
}

func TestAdminTaskControls(t *testing.T) {
	fx := newAPIFixture(t)
	fx.sched.AddTicker("noop-sweep", time.Hour, func() {})

	adminGet := func(path string, out interface{}) int {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.Header.Set(middleware.AdminKeyHeader, "admin-key")
		w := httptest.NewRecorder()
		fx.router.ServeHTTP(w, req)
		if out != nil && w.Body.Len() > 0 {
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), out))
		}
		return w.Code
	}
	adminPost := func(path string) int {
		req := httptest.NewRequest(http.MethodPost, path, nil)
		req.Header.Set(middleware.AdminKeyHeader, "admin-key")
		w := httptest.NewRecorder()
		fx.router.ServeHTTP(w, req)
		return w.Code
	}

	var listed struct {
		Items []string `json:"items"`
	}
	require.Equal(t, http.StatusOK, adminGet("/api/admin/tasks", &listed))
	assert.Contains(t, listed.Items, "noop-sweep")

	require.Equal(t, http.StatusOK, adminPost("/api/admin/tasks/noop-sweep/stop"))
	assert.Empty(t, fx.sched.ListTickers())

	// Stopping again is a 404.
	assert.Equal(t, http.StatusNotFound, adminPost("/api/admin/tasks/noop-sweep/stop"))
}

func TestAuditRowsCarryTraceOverHTTP(t *testing.T) {
	fx := newAPIFixture(t)

	var buf bytes.Buffer
	require.NoError(t, json.NewEncoder(&buf).Encode(map[string]string{
		"type": "ban", "target_identity": "uuid-20",
	}))
	req := httptest.NewRequest(http.MethodPost, "/api/staff/punishments", &buf)
	req.Header.Set("Authorization", "Bearer "+fx.token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(middleware.TraceIDHeader, "game-server-trace-1")
	w := httptest.NewRecorder()
	fx.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code)

	fx.audit.Stop()

	var rows []model.AuditLog
	require.NoError(t, fx.db.Find(&rows).Error)
	require.Len(t, rows, 1)
	assert.Equal(t, "game-server-trace-1", rows[0].TraceID)
	assert.NotEmpty(t, rows[0].IP)
}
