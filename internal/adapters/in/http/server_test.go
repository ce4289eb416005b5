package http_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	handoffhttp "handoff/internal/adapters/in/http"
	"handoff/internal/adapters/in/http/api"
	"handoff/internal/adapters/out/postgres"
	"handoff/internal/adapters/out/postgres/sqlitetest"
	"handoff/internal/core/application/usecases/commands"
	"handoff/internal/core/application/usecases/queries"
	"handoff/internal/core/domain/model/kernel"
	"handoff/internal/pkg/clock"
	"handoff/internal/pkg/logger"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	jwtSecret       = "test-signing-secret"
	jwtIssuer       = "https://auth.example.com"
	schedulerSecret = "scheduler-secret"
)

var t0 = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

type uowFactoryFunc func() commands.UoW

func (f uowFactoryFunc) Create() commands.UoW { return f() }

type parcelUoWFactoryFunc func() commands.ParcelUoW

func (f parcelUoWFactoryFunc) Create() commands.ParcelUoW { return f() }

type readerFactoryFunc func() queries.Reader

func (f readerFactoryFunc) Create() queries.Reader { return f() }

type testAPI struct {
	t       *testing.T
	e       *echo.Echo
	clock   *clock.Manual
	vendor  kernel.UUID
	carrier kernel.UUID
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	clk := clock.NewManual(t0)
	store := postgres.NewGormUnitOfWorkFactory(sqlitetest.Open(t), clk)
	uows := uowFactoryFunc(func() commands.UoW { return store.Create() })

	h := handoffhttp.Handlers{
		CreateParcel:               commands.NewCreateParcelCommandHandler(parcelUoWFactoryFunc(func() commands.ParcelUoW { return store.Create() }), clk),
		VendorConfirmPackaging:     commands.NewVendorConfirmPackagingCommandHandler(uows, clk),
		ConfirmPickupByCode:        commands.NewConfirmPickupByCodeCommandHandler(uows, clk),
		ClientConfirmDelivery:      commands.NewClientConfirmDeliveryCommandHandler(uows, clk),
		ClientContestDelivery:      commands.NewClientContestDeliveryCommandHandler(uows, clk),
		AcceptMission:              commands.NewAcceptMissionCommandHandler(uows, clk),
		StartJourney:               commands.NewStartJourneyCommandHandler(uows, clk),
		ArriveAtPickup:             commands.NewArriveAtPickupCommandHandler(uows, clk),
		ConfirmPackaging:           commands.NewConfirmPackagingCommandHandler(uows, clk),
		PickupMission:              commands.NewPickupMissionCommandHandler(uows, clk),
		SubmitDeliveryProof:        commands.NewSubmitDeliveryProofCommandHandler(uows, clk),
		CancelMission:              commands.NewCancelMissionCommandHandler(uows, clk),
		SweepDeliveryConfirmations: commands.NewSweepDeliveryConfirmationsCommandHandler(uows, clk),
		GetDeliveryStatus:          queries.NewGetDeliveryStatusQueryHandler(readerFactoryFunc(func() queries.Reader { return store.Create() }), clk),
	}

	e := handoffhttp.NewRouter(handoffhttp.RouterOptions{
		Server:          handoffhttp.NewServer(h, clk, logger.Nop()),
		Log:             logger.Nop(),
		Gatherer:        prometheus.NewRegistry(),
		Auth:            handoffhttp.AuthConfig{Secret: jwtSecret, Issuer: jwtIssuer},
		SchedulerSecret: schedulerSecret,
		EchoLogLevel:    log.OFF,
	})

	return &testAPI{t: t, e: e, clock: clk, vendor: kernel.NewUUID(), carrier: kernel.NewUUID()}
}

func token(t *testing.T, subject string, secret string) string {
	t.Helper()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		Issuer:    jwtIssuer,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

// do sends body as JSON on behalf of actor. A zero actor sends no token.
func (a *testAPI) do(method, path string, actor kernel.UUID, body any) *httptest.ResponseRecorder {
	a.t.Helper()
	var payload bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&payload).Encode(body))
	}
	req := httptest.NewRequest(method, path, &payload)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if actor != (kernel.UUID{}) {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token(a.t, actor.String(), jwtSecret))
	}
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func ptr[T any](v T) *T { return &v }

func (a *testAPI) createParcel() api.Parcel {
	a.t.Helper()
	rec := a.do(http.MethodPost, "/api/v1/parcels", a.vendor, api.CreateParcelRequest{
		Pickup:  api.Place{Address: "Rue de Rivoli, 75001 Paris", Lat: ptr(48.8606), Lon: ptr(2.3376)},
		Dropoff: api.Place{Address: "Place de la Bastille, 75011 Paris", Lat: ptr(48.8532), Lon: ptr(2.3692)},
	})
	require.Equal(a.t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[api.Parcel](a.t, rec)
}

func (a *testAPI) accept(parcelID string) api.Transition {
	a.t.Helper()
	rec := a.do(http.MethodPost, "/api/v1/parcels/"+parcelID+"/accept", a.carrier, nil)
	require.Equal(a.t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[api.Transition](a.t, rec)
}

func (a *testAPI) packaged() (api.Parcel, api.Transition) {
	a.t.Helper()
	created := a.createParcel()
	accepted := a.accept(created.ID.String())
	missionPath := "/api/v1/missions/" + accepted.Mission.ID.String()

	rec := a.do(http.MethodPost, missionPath+"/packaging", a.carrier, api.PackagingRequest{PhotoURL: "https://cdn.example.com/p.jpg"})
	require.Equal(a.t, http.StatusOK, rec.Code, rec.Body.String())
	rec = a.do(http.MethodPost, "/api/v1/parcels/"+created.ID.String()+"/packaging/confirm", a.vendor, nil)
	require.Equal(a.t, http.StatusOK, rec.Code, rec.Body.String())
	return created, accepted
}

func Test_API_HandOffFlowAutoConfirmsAfterWindow(t *testing.T) {
	a := newTestAPI(t)

	created, accepted := a.packaged()
	assert.Equal(t, "PENDING", created.Status)
	assert.Len(t, created.PickupCode, kernel.PickupCodeLength)
	assert.Empty(t, accepted.Parcel.PickupCode, "carrier never sees the pickup code")
	parcelPath := "/api/v1/parcels/" + created.ID.String()
	missionPath := "/api/v1/missions/" + accepted.Mission.ID.String()

	wrong := "000000"
	if created.PickupCode == wrong {
		wrong = "111111"
	}
	rec := a.do(http.MethodPost, parcelPath+"/pickup/confirm-code", a.vendor, api.PickupCodeRequest{Code: wrong})
	assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())

	rec = a.do(http.MethodPost, parcelPath+"/pickup/confirm-code", a.vendor, api.PickupCodeRequest{Code: created.PickupCode})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "PICKED_UP", decode[api.Transition](t, rec).Mission.Status)

	a.clock.Advance(30 * time.Minute)
	rec = a.do(http.MethodPost, missionPath+"/delivery-proof", a.carrier, api.DeliveryProofRequest{ProofURL: "https://cdn.example.com/proof.jpg"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	proof := decode[api.Transition](t, rec)
	require.NotNil(t, proof.Mission.HoursRemaining)
	assert.Equal(t, 12, *proof.Mission.HoursRemaining)
	assert.Equal(t, "PICKED_UP", proof.Mission.Status)

	rec = a.do(http.MethodGet, parcelPath+"/delivery-status", a.vendor, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	status := decode[api.DeliveryStatus](t, rec)
	assert.Equal(t, "AWAITING_CONFIRMATION", status.Status)
	assert.Equal(t, 12, status.HoursRemaining)

	a.clock.Advance(13 * time.Hour)
	req := httptest.NewRequest(http.MethodPost, "/internal/sweeps/delivery-confirmations?batchSize=10", nil)
	req.Header.Set(handoffhttp.SchedulerSecretHeader, schedulerSecret)
	sweep := httptest.NewRecorder()
	a.e.ServeHTTP(sweep, req)
	require.Equal(t, http.StatusOK, sweep.Code, sweep.Body.String())
	report := decode[api.SweepReport](t, sweep)
	assert.Equal(t, 1, report.Processed)
	require.Len(t, report.Outcomes, 1)
	assert.Equal(t, accepted.Mission.ID, report.Outcomes[0].MissionID)

	rec = a.do(http.MethodGet, parcelPath+"/delivery-status", a.carrier, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "AUTO_CONFIRMED", decode[api.DeliveryStatus](t, rec).Status)

	rec = a.do(http.MethodPost, parcelPath+"/delivery/confirm", a.vendor, api.ConfirmDeliveryRequest{Rating: ptr(5)})
	assert.Equal(t, http.StatusConflict, rec.Code, rec.Body.String())
	assert.Contains(t, decode[api.Error](t, rec).Message, "AUTO_CONFIRMED")
}

func Test_API_VendorConfirmsAndRates(t *testing.T) {
	a := newTestAPI(t)
	_, accepted := a.packaged()
	missionPath := "/api/v1/missions/" + accepted.Mission.ID.String()
	parcelPath := "/api/v1/parcels/" + accepted.Parcel.ID.String()

	require.Equal(t, http.StatusOK, a.do(http.MethodPost, missionPath+"/pickup", a.carrier, nil).Code)
	require.Equal(t, http.StatusOK, a.do(http.MethodPost, missionPath+"/delivery-proof", a.carrier,
		api.DeliveryProofRequest{ProofURL: "https://cdn.example.com/proof.jpg"}).Code)

	rec := a.do(http.MethodPost, parcelPath+"/delivery/confirm", a.vendor, api.ConfirmDeliveryRequest{Rating: ptr(9)})
	assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())

	rec = a.do(http.MethodPost, parcelPath+"/delivery/confirm", a.vendor, api.ConfirmDeliveryRequest{Rating: ptr(4), Comment: "on time"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	confirmed := decode[api.Transition](t, rec)
	assert.Equal(t, "DELIVERED", confirmed.Mission.Status)
	assert.Equal(t, "DELIVERED", confirmed.Parcel.Status)
	require.NotNil(t, confirmed.Mission.Rating)
	assert.Equal(t, 4, *confirmed.Mission.Rating)
	assert.Nil(t, confirmed.Mission.HoursRemaining)
	assert.False(t, confirmed.Mission.AutoConfirmed)

	rec = a.do(http.MethodPost, parcelPath+"/delivery/contest", a.vendor, api.ContestDeliveryRequest{Reason: "too late"})
	assert.Equal(t, http.StatusConflict, rec.Code, rec.Body.String())
}

func Test_API_ErrorMapping(t *testing.T) {
	a := newTestAPI(t)
	_, accepted := a.packaged()
	missionPath := "/api/v1/missions/" + accepted.Mission.ID.String()

	tests := []struct {
		name   string
		method string
		path   string
		actor  kernel.UUID
		body   any
		status int
	}{
		{"no token", http.MethodPost, "/api/v1/parcels", kernel.UUID{}, nil, http.StatusUnauthorized},
		{"malformed id", http.MethodPost, "/api/v1/missions/not-a-uuid/arrive", a.carrier, nil, http.StatusBadRequest},
		{"invalid body", http.MethodPost, "/api/v1/parcels", a.vendor, map[string]any{"pickup": map[string]any{"address": "x"}}, http.StatusBadRequest},
		{"unknown parcel", http.MethodGet, "/api/v1/parcels/" + kernel.NewUUID().String() + "/delivery-status", a.vendor, nil, http.StatusNotFound},
		{"other carrier", http.MethodPost, missionPath + "/arrive", kernel.NewUUID(), nil, http.StatusForbidden},
		{"proof before pickup", http.MethodPost, missionPath + "/delivery-proof", a.carrier, api.DeliveryProofRequest{ProofURL: "https://cdn.example.com/proof.jpg"}, http.StatusUnprocessableEntity},
		{"second accept", http.MethodPost, "/api/v1/parcels/" + accepted.Parcel.ID.String() + "/accept", kernel.NewUUID(), nil, http.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := a.do(tt.method, tt.path, tt.actor, tt.body)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
			body := decode[api.Error](t, rec)
			assert.Equal(t, tt.status, body.Code)
			assert.NotEmpty(t, body.Message)
		})
	}
}

func Test_API_CancelBeforeDeparture(t *testing.T) {
	a := newTestAPI(t)
	created := a.createParcel()
	accepted := a.accept(created.ID.String())
	missionPath := "/api/v1/missions/" + accepted.Mission.ID.String()

	rec := a.do(http.MethodPost, missionPath+"/cancel", a.carrier, api.CancelRequest{Reason: "flat tyre"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	cancelled := decode[api.Transition](t, rec)
	assert.Equal(t, "CANCELLED", cancelled.Mission.Status)
	assert.Equal(t, "PENDING", cancelled.Parcel.Status)
	assert.Nil(t, cancelled.Parcel.CarrierID)

	rec = a.do(http.MethodPost, missionPath+"/depart", a.carrier, api.StartJourneyRequest{OriginLat: ptr(48.85), OriginLon: ptr(2.35)})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code, rec.Body.String())
}

func Test_API_StartJourneyEstimatesArrival(t *testing.T) {
	a := newTestAPI(t)
	created := a.createParcel()
	accepted := a.accept(created.ID.String())

	rec := a.do(http.MethodPost, "/api/v1/missions/"+accepted.Mission.ID.String()+"/depart", a.carrier,
		api.StartJourneyRequest{OriginLat: ptr(48.8606), OriginLon: ptr(2.3376)})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	departed := decode[api.Transition](t, rec)
	assert.Equal(t, "IN_PROGRESS", departed.Mission.Status)
	require.NotNil(t, departed.Mission.EstimatedArrival)
	assert.False(t, departed.Mission.EstimatedArrival.Before(t0))

	rec = a.do(http.MethodPost, "/api/v1/missions/"+accepted.Mission.ID.String()+"/depart", a.carrier,
		map[string]any{"originLat": 120.0, "originLon": 2.0})
	assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
}

func Test_API_RejectsBadTokens(t *testing.T) {
	a := newTestAPI(t)

	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   a.vendor.String(),
		Issuer:    jwtIssuer,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
	}).SignedString([]byte(jwtSecret))
	require.NoError(t, err)

	tests := map[string]string{
		"wrong secret":   token(t, a.vendor.String(), "other-secret"),
		"expired":        expired,
		"subject not id": token(t, "vendor-42", jwtSecret),
		"garbage":        "abc.def.ghi",
	}
	for name, raw := range tests {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/parcels/"+kernel.NewUUID().String()+"/delivery-status", nil)
			req.Header.Set(echo.HeaderAuthorization, "Bearer "+raw)
			rec := httptest.NewRecorder()
			a.e.ServeHTTP(rec, req)
			assert.Equal(t, http.StatusUnauthorized, rec.Code, rec.Body.String())
		})
	}
}

func Test_API_SchedulerSecret(t *testing.T) {
	a := newTestAPI(t)

	for name, secret := range map[string]string{"missing": "", "wrong": "nope"} {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/internal/sweeps/delivery-confirmations", nil)
			if secret != "" {
				req.Header.Set(handoffhttp.SchedulerSecretHeader, secret)
			}
			rec := httptest.NewRecorder()
			a.e.ServeHTTP(rec, req)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}

	req := httptest.NewRequest(http.MethodPost, "/internal/sweeps/delivery-confirmations?batchSize=-1", nil)
	req.Header.Set(handoffhttp.SchedulerSecretHeader, schedulerSecret)
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
}

func Test_API_OperationalRoutes(t *testing.T) {
	a := newTestAPI(t)

	for _, path := range []string{"/health", "/metrics", "/openapi.json"} {
		rec := httptest.NewRecorder()
		a.e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}

	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/openapi.json", nil))
	assert.Contains(t, rec.Body.String(), "/parcels/{parcelId}/delivery-status")
}

func Test_API_SpecIsValid(t *testing.T) {
	doc, err := api.LoadSpec(t.Context())
	require.NoError(t, err)
	assert.NotNil(t, doc.Paths.Find("/api/v1/parcels/{parcelId}/delivery/confirm"))
	assert.NotNil(t, doc.Paths.Find("/internal/sweeps/delivery-confirmations"))
}
