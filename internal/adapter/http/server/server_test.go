package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Temutjin2k/campus-ride/config"
	wshandler "github.com/Temutjin2k/campus-ride/internal/adapter/http/ws"
	"github.com/Temutjin2k/campus-ride/internal/adapter/memory"
	"github.com/Temutjin2k/campus-ride/internal/domain/models"
	"github.com/Temutjin2k/campus-ride/internal/domain/types"
	"github.com/Temutjin2k/campus-ride/internal/service/auth"
	"github.com/Temutjin2k/campus-ride/internal/service/calculator"
	"github.com/Temutjin2k/campus-ride/internal/service/location"
	"github.com/Temutjin2k/campus-ride/internal/service/matching"
	"github.com/Temutjin2k/campus-ride/internal/service/negotiation"
	"github.com/Temutjin2k/campus-ride/internal/service/notify"
	"github.com/Temutjin2k/campus-ride/pkg/logger"
	ws "github.com/Temutjin2k/campus-ride/pkg/wsHub"
	"github.com/google/uuid"
)

type testAPI struct {
	handler http.Handler
	tokens  *auth.TokenService
	svc     *matching.Service
	rider   uuid.UUID
	driver  uuid.UUID
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	log := logger.Discard()

	tx := memory.NewTxManager()
	driver := models.DriverProfile{ID: uuid.New(), Name: "Dana", Rating: 4.8, Verified: true}
	directory := memory.NewDriverDirectory(driver)
	registry := location.New(memory.NewPositionStore(), memory.NewSampleLog(), directory, tx, log)
	hub := ws.NewConnHub(log)
	notifier := notify.New(memory.NewNotificationStore(), nil, wshandler.NewNotificationHub(hub), log)

	svc := matching.New(matching.DefaultConfig(), matching.Deps{
		Requests:    memory.NewRequestStore(),
		Rides:       memory.NewRideStore(),
		Drivers:     directory,
		Locator:     registry,
		Negotiation: negotiation.New(memory.NewNegotiationStore(), tx, log),
		Calculator:  calculator.New(calculator.DefaultPlatformShare),
		Notifier:    notifier,
		TxManager:   tx,
	}, log)
	t.Cleanup(svc.Wait)

	tokens := auth.NewTokenService("test-secret", time.Hour, log)
	cfg := config.Config{Mode: types.MatchingService, Services: config.ServicesConfig{Matching: "0"}}

	api, err := New(cfg, Services{
		Auth:          tokens,
		Requests:      svc,
		Negotiations:  svc,
		Discovery:     svc,
		Locations:     registry,
		Notifications: notifier,
		Sessions:      wshandler.NewSession(hub, tokens, log),
	}, log)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	return &testAPI{handler: api.Handler(), tokens: tokens, svc: svc, rider: uuid.New(), driver: driver.ID}
}

func (a *testAPI) token(t *testing.T, id uuid.UUID, role types.UserRole) string {
	t.Helper()
	token, _, err := a.tokens.Issue(context.Background(), &models.User{ID: id, Role: role})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	return token
}

func (a *testAPI) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return v
}

func requestBody() map[string]any {
	return map[string]any{
		"origin":              "Main Library",
		"destination":         "Airport",
		"origin_coord":        map[string]float64{"latitude": 40.7128, "longitude": -74.0060},
		"departure_time":      time.Now().Add(2 * time.Hour).Format(time.RFC3339),
		"max_fare_per_person": 15,
		"passenger_count":     2,
	}
}

func TestAccessControl(t *testing.T) {
	api := newTestAPI(t)
	rider := api.token(t, api.rider, types.RiderRole)
	driver := api.token(t, api.driver, types.DriverRole)

	tests := []struct {
		name   string
		method string
		path   string
		token  string
		want   int
	}{
		{"health is public", http.MethodGet, "/health", "", http.StatusOK},
		{"anonymous submit", http.MethodPost, "/requests", "", http.StatusUnauthorized},
		{"garbage token", http.MethodPost, "/requests", "not-a-jwt", http.StatusUnauthorized},
		{"driver cannot submit", http.MethodPost, "/requests", driver, http.StatusForbidden},
		{"rider cannot post rides", http.MethodPost, "/rides", rider, http.StatusForbidden},
		{"rider cannot list pending", http.MethodGet, "/requests", rider, http.StatusForbidden},
		{"driver lists pending", http.MethodGet, "/requests", driver, http.StatusOK},
		{"any role reads notifications", http.MethodGet, "/notifications/unread-count", rider, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := api.do(t, tt.method, tt.path, tt.token, nil)
			if rec.Code != tt.want {
				t.Fatalf("%s %s = %d, want %d (%s)", tt.method, tt.path, rec.Code, tt.want, rec.Body.String())
			}
		})
	}
}

func TestRequestIDIsEchoed(t *testing.T) {
	api := newTestAPI(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "req-42")
	rec := httptest.NewRecorder()
	api.handler.ServeHTTP(rec, req)

	if got := rec.Header().Get("X-Request-ID"); got != "req-42" {
		t.Fatalf("X-Request-ID = %q, want req-42", got)
	}

	rec = api.do(t, http.MethodGet, "/health", "", nil)
	if _, err := uuid.Parse(rec.Header().Get("X-Request-ID")); err != nil {
		t.Fatalf("generated request id is not a uuid: %q", rec.Header().Get("X-Request-ID"))
	}
}

func TestSubmitValidation(t *testing.T) {
	api := newTestAPI(t)
	rider := api.token(t, api.rider, types.RiderRole)

	body := requestBody()
	delete(body, "max_fare_per_person")
	rec := api.do(t, http.MethodPost, "/requests", rider, body)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("missing fare = %d, want 422 (%s)", rec.Code, rec.Body.String())
	}

	body = requestBody()
	body["origin_coord"] = map[string]float64{"latitude": 91, "longitude": 0}
	rec = api.do(t, http.MethodPost, "/requests", rider, body)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("out of range coordinate = %d, want 422 (%s)", rec.Code, rec.Body.String())
	}
}

func TestHeartbeatRejectsOutOfRange(t *testing.T) {
	api := newTestAPI(t)
	driver := api.token(t, api.driver, types.DriverRole)

	rec := api.do(t, http.MethodPost, "/locations", driver, map[string]float64{"latitude": 95, "longitude": 10})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("heartbeat = %d, want 400 (%s)", rec.Code, rec.Body.String())
	}

	rec = api.do(t, http.MethodPost, "/locations", driver, map[string]float64{"latitude": 40.7128, "longitude": -74.0060})
	if rec.Code != http.StatusCreated && rec.Code != http.StatusOK {
		t.Fatalf("heartbeat = %d (%s)", rec.Code, rec.Body.String())
	}

	rider := api.token(t, api.rider, types.RiderRole)
	rec = api.do(t, http.MethodGet, "/drivers/nearby?lat=40.7128&lon=-74.0060", rider, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("nearby = %d (%s)", rec.Code, rec.Body.String())
	}
	if !bytes.Contains(rec.Body.Bytes(), []byte(api.driver.String())) {
		t.Fatalf("nearby drivers do not include the fresh driver: %s", rec.Body.String())
	}
}

func TestNegotiationFlow(t *testing.T) {
	api := newTestAPI(t)
	rider := api.token(t, api.rider, types.RiderRole)
	driver := api.token(t, api.driver, types.DriverRole)

	rec := api.do(t, http.MethodPost, "/requests", rider, requestBody())
	if rec.Code != http.StatusCreated {
		t.Fatalf("submit = %d (%s)", rec.Code, rec.Body.String())
	}
	req := decode[models.RideRequest](t, rec)

	rec = api.do(t, http.MethodPost, "/requests/"+req.ID.String()+"/negotiations", driver, map[string]any{"amount": 12})
	if rec.Code != http.StatusCreated {
		t.Fatalf("open = %d (%s)", rec.Code, rec.Body.String())
	}
	n := decode[models.Negotiation](t, rec)

	rec = api.do(t, http.MethodPost, "/requests/"+req.ID.String()+"/negotiations", driver, map[string]any{"amount": 11})
	if rec.Code != http.StatusConflict {
		t.Fatalf("duplicate open = %d, want 409", rec.Code)
	}

	base := "/negotiations/" + n.ID.String()

	rec = api.do(t, http.MethodPost, base+"/counter", driver, map[string]any{"amount": 11})
	if rec.Code != http.StatusConflict {
		t.Fatalf("same actor counter = %d, want 409", rec.Code)
	}

	outsider := api.token(t, uuid.New(), types.RiderRole)
	rec = api.do(t, http.MethodGet, base, outsider, nil)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("outsider get = %d, want 403", rec.Code)
	}

	rec = api.do(t, http.MethodPost, base+"/counter", rider, map[string]any{"amount": 10})
	if rec.Code != http.StatusOK {
		t.Fatalf("rider counter = %d (%s)", rec.Code, rec.Body.String())
	}

	rec = api.do(t, http.MethodPost, base+"/accept", driver, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("accept = %d (%s)", rec.Code, rec.Body.String())
	}
	accepted := decode[models.Negotiation](t, rec)
	if accepted.Status != types.NegotiationAccepted || accepted.AcceptedFare == nil || *accepted.AcceptedFare != 10 {
		t.Fatalf("accepted = %+v", accepted)
	}

	rec = api.do(t, http.MethodPost, base+"/reject", rider, nil)
	if rec.Code != http.StatusConflict {
		t.Fatalf("reject after accept = %d, want 409", rec.Code)
	}

	rec = api.do(t, http.MethodGet, "/requests/"+req.ID.String(), rider, nil)
	if got := decode[models.RideRequest](t, rec); got.Status != types.RequestMatched {
		t.Fatalf("request status = %s, want MATCHED", got.Status)
	}

	api.svc.Wait()
	rec = api.do(t, http.MethodGet, "/notifications/unread-count", driver, nil)
	count := decode[map[string]int](t, rec)
	if count["unread_count"] == 0 {
		t.Fatalf("driver has no unread notifications after the rider countered")
	}
}

func TestUnknownNegotiation(t *testing.T) {
	api := newTestAPI(t)
	rider := api.token(t, api.rider, types.RiderRole)

	rec := api.do(t, http.MethodGet, "/negotiations/"+uuid.NewString(), rider, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("get unknown = %d, want 404", rec.Code)
	}

	rec = api.do(t, http.MethodGet, "/negotiations/not-a-uuid", rider, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("get malformed id = %d, want 400", rec.Code)
	}
}
