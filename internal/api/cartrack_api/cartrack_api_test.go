package cartrack_api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/BearBump/CarTrack/internal/broker/messages"
	"github.com/BearBump/CarTrack/internal/models"
	"github.com/BearBump/CarTrack/internal/services/auth"
	"github.com/BearBump/CarTrack/internal/services/leads"
	"github.com/BearBump/CarTrack/internal/services/notify"
	"github.com/BearBump/CarTrack/internal/services/shipments"
	"github.com/BearBump/CarTrack/internal/services/showcase"
	"github.com/BearBump/CarTrack/internal/services/statuses"
	"github.com/BearBump/CarTrack/internal/services/templates"
	"github.com/BearBump/CarTrack/internal/storage/memstore"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
)

type recordingPublisher struct {
	mu   sync.Mutex
	msgs []messages.NotificationRequested
}

func (p *recordingPublisher) Publish(ctx context.Context, topic string, key, value []byte) error {
	var m messages.NotificationRequested
	if err := json.Unmarshal(value, &m); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.msgs = append(p.msgs, m)
	return nil
}

func (p *recordingPublisher) sent() []messages.NotificationRequested {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]messages.NotificationRequested(nil), p.msgs...)
}

type testEnv struct {
	srv   *httptest.Server
	store *memstore.Store
	pub   *recordingPublisher
	auth  *auth.Service
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store := memstore.New()
	pub := &recordingPublisher{}
	authSvc := auth.New(store, nil, "test-secret", time.Hour)
	notifier := notify.New(store, pub, "cartrack.notifications", "https://cartrack.example")

	api := New(Deps{
		Auth:      authSvc,
		Shipments: shipments.New(store, shipments.WithNotifier(notifier)),
		Statuses:  statuses.New(store),
		Templates: templates.New(store, "https://cartrack.example"),
		Leads:     leads.New(store, nil, 0, "US"),
		Showcase:  showcase.New(store),
		Notifier:  notifier,
	})
	r := chi.NewRouter()
	api.Routes(r)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	return &testEnv{srv: srv, store: store, pub: pub, auth: authSvc}
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) (*http.Response, []byte) {
	t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, e.srv.URL+path, rd)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	out, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, out
}

// login заводит пользователя и возвращает его токен и id.
func (e *testEnv) login(t *testing.T, email string, role models.Role) (string, uint64) {
	t.Helper()
	u, err := e.auth.CreateUser(context.Background(), models.UserCreateInput{
		Email:    email,
		Name:     "Operator",
		Password: "s3cret-pass",
		Role:     role,
	})
	require.NoError(t, err)

	resp, body := e.do(t, http.MethodPost, "/api/auth/login", "", loginRequest{Email: email, Password: "s3cret-pass"})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	var res auth.LoginResult
	require.NoError(t, json.Unmarshal(body, &res))
	require.NotEmpty(t, res.Token)
	return res.Token, u.ID
}

func decode[T any](t *testing.T, body []byte) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(body, &v), string(body))
	return v
}

func TestCarTrackAPI_AuthGuards(t *testing.T) {
	e := newTestEnv(t)
	staff, _ := e.login(t, "staff@example.com", models.RoleStaff)

	resp, _ := e.do(t, http.MethodGet, "/api/shipments", "", nil)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = e.do(t, http.MethodGet, "/api/shipments", "not-a-jwt", nil)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = e.do(t, http.MethodGet, "/api/statuses", staff, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body := e.do(t, http.MethodPost, "/api/admin/statuses", staff, models.StatusCreateInput{Name: "Ordered"})
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
	require.Equal(t, "forbidden", decode[errorResponse](t, body).Kind)

	resp, body = e.do(t, http.MethodGet, "/api/auth/me", staff, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, models.RoleStaff, decode[meResponse](t, body).Role)

	resp, _ = e.do(t, http.MethodPost, "/api/auth/login", "", loginRequest{Email: "staff@example.com", Password: "wrong-password"})
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestCarTrackAPI_ShipmentFlow(t *testing.T) {
	e := newTestEnv(t)
	admin, adminID := e.login(t, "admin@example.com", models.RoleAdmin)

	resp, body := e.do(t, http.MethodPost, "/api/admin/statuses", admin, models.StatusCreateInput{Name: "Ordered"})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	ordered := decode[models.Status](t, body)

	resp, body = e.do(t, http.MethodPost, "/api/admin/statuses", admin, models.StatusCreateInput{Name: "At sea", IsTransit: true, NotifyOnEntry: true})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	atSea := decode[models.Status](t, body)

	email := "ivan@example.com"
	resp, body = e.do(t, http.MethodPost, "/api/shipments", admin, models.ShipmentCreateInput{
		Manufacturer: "Toyota",
		Model:        "Land Cruiser",
		VIN:          "JTMHV05J604123456",
		OwnerName:    "Ivan Petrov",
		OwnerEmail:   &email,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	sh := decode[models.Shipment](t, body)
	require.NotEmpty(t, sh.TrackingToken)
	require.NotNil(t, sh.CreatedBy)
	require.Equal(t, adminID, *sh.CreatedBy)

	base := fmt.Sprintf("/api/shipments/%d", sh.ID)
	resp, body = e.do(t, http.MethodPost, base+"/status", admin, shipments.TransitionInput{StatusID: ordered.ID})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	require.Empty(t, e.pub.sent())

	resp, body = e.do(t, http.MethodPost, base+"/status", admin, shipments.TransitionInput{StatusID: atSea.ID})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	h := decode[models.StatusHistory](t, body)
	require.Equal(t, "At sea", h.StatusName)
	require.NotNil(t, h.ChangedBy)

	sent := e.pub.sent()
	require.Len(t, sent, 1)
	require.Equal(t, email, sent[0].To)
	require.Equal(t, sh.ID, sent[0].ShipmentID)

	resp, body = e.do(t, http.MethodGet, base+"/history", admin, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, decode[[]models.StatusHistory](t, body), 2)

	resp, body = e.do(t, http.MethodGet, "/api/shipments?q=land&statusId="+fmt.Sprint(atSea.ID), admin, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, decode[[]models.Shipment](t, body), 1)

	resp, body = e.do(t, http.MethodGet, "/api/track/"+sh.TrackingToken, "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	require.NotContains(t, string(body), email)
	require.NotContains(t, string(body), "changedBy")
	pt := decode[shipments.PublicTracking](t, body)
	require.Equal(t, "***********123456", pt.VIN)
	require.Len(t, pt.Steps, 2)
	require.True(t, pt.Steps[1].IsCurrentStep)

	resp, _ = e.do(t, http.MethodGet, "/api/track/unknown-token", "", nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, body = e.do(t, http.MethodPost, base+"/email", admin, nil)
	require.Equal(t, http.StatusAccepted, resp.StatusCode, string(body))
	require.Len(t, e.pub.sent(), 2)
}

func TestCarTrackAPI_Documents(t *testing.T) {
	e := newTestEnv(t)
	admin, _ := e.login(t, "admin@example.com", models.RoleAdmin)

	resp, body := e.do(t, http.MethodPost, "/api/admin/templates", admin, models.TemplateCreateInput{
		Name:      "Sale contract",
		Type:      models.TemplateTypeContract,
		Content:   "Buyer: {{ownerName}}, VIN {{vin}}, color {{color}}",
		IsDefault: true,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	tpl := decode[models.Template](t, body)

	resp, body = e.do(t, http.MethodPost, "/api/shipments", admin, models.ShipmentCreateInput{
		Manufacturer: "BMW",
		Model:        "X5",
		VIN:          "WBA000111",
		OwnerName:    "Olga",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	sh := decode[models.Shipment](t, body)

	docPath := fmt.Sprintf("/api/shipments/%d/documents/%d", sh.ID, tpl.ID)
	resp, body = e.do(t, http.MethodGet, docPath, admin, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	doc := decode[templates.Rendered](t, body)
	require.Equal(t, "Buyer: Olga, VIN WBA000111, color N/A", doc.Content)

	resp, body = e.do(t, http.MethodGet, docPath+"/pdf", admin, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	require.True(t, bytes.HasPrefix(body, []byte("%PDF")))

	resp, body = e.do(t, http.MethodGet, "/api/templates?type=contract", admin, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, decode[[]models.Template](t, body), 1)

	resp, _ = e.do(t, http.MethodGet, "/api/templates?type=poster", admin, nil)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// без email владельца письмо не отправить
	resp, _ = e.do(t, http.MethodPost, fmt.Sprintf("/api/shipments/%d/email", sh.ID), admin, nil)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCarTrackAPI_ErrorMapping(t *testing.T) {
	e := newTestEnv(t)
	admin, adminID := e.login(t, "admin@example.com", models.RoleAdmin)

	resp, body := e.do(t, http.MethodGet, "/api/shipments/999", admin, nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	require.Equal(t, "not_found", decode[errorResponse](t, body).Kind)

	resp, _ = e.do(t, http.MethodGet, "/api/shipments/abc", admin, nil)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, body = e.do(t, http.MethodPost, "/api/shipments", admin, nil)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.Contains(t, decode[errorResponse](t, body).Error, "body is required")

	resp, _ = e.do(t, http.MethodPost, "/api/shipments", admin, models.ShipmentCreateInput{Manufacturer: "Kia"})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = e.do(t, http.MethodGet, "/api/shipments?limit=-1", admin, nil)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, body = e.do(t, http.MethodPost, "/api/admin/statuses", admin, models.StatusCreateInput{Name: "Ordered"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	st := decode[models.Status](t, body)

	resp, _ = e.do(t, http.MethodPost, "/api/admin/statuses", admin, models.StatusCreateInput{Name: "Ordered"})
	require.Equal(t, http.StatusConflict, resp.StatusCode)

	resp, body = e.do(t, http.MethodPost, "/api/shipments", admin, models.ShipmentCreateInput{
		Manufacturer: "Kia",
		Model:        "EV9",
		VIN:          "KNDAB123",
		OwnerName:    "Anna",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	sh := decode[models.Shipment](t, body)

	resp, _ = e.do(t, http.MethodPost, fmt.Sprintf("/api/shipments/%d/status", sh.ID), admin, shipments.TransitionInput{StatusID: st.ID})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, body = e.do(t, http.MethodDelete, fmt.Sprintf("/api/admin/statuses/%d", st.ID), admin, nil)
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	require.Contains(t, decode[errorResponse](t, body).Error, "1 shipment(s)")

	resp, _ = e.do(t, http.MethodDelete, fmt.Sprintf("/api/shipments/%d", sh.ID), admin, nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, _ = e.do(t, http.MethodDelete, fmt.Sprintf("/api/admin/statuses/%d", st.ID), admin, nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, _ = e.do(t, http.MethodDelete, fmt.Sprintf("/api/admin/users/%d", adminID), admin, nil)
	require.Equal(t, http.StatusConflict, resp.StatusCode)

	staff, staffID := e.login(t, "gone@example.com", models.RoleStaff)
	resp, _ = e.do(t, http.MethodDelete, fmt.Sprintf("/api/admin/users/%d", staffID), admin, nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp, _ = e.do(t, http.MethodGet, "/api/shipments", staff, nil)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestCarTrackAPI_Leads(t *testing.T) {
	e := newTestEnv(t)
	staff, _ := e.login(t, "staff@example.com", models.RoleStaff)

	resp, body := e.do(t, http.MethodPost, "/api/leads", "", models.LeadCreateInput{
		Name:           "Petr",
		Email:          "petr@example.com",
		Phone:          "+1 650-253-0000",
		DocumentStatus: models.DocumentStatusHasPassport,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	l := decode[models.Lead](t, body)
	require.Equal(t, "+16502530000", l.Phone)

	resp, _ = e.do(t, http.MethodPost, "/api/leads", "", models.LeadCreateInput{
		Name:           "Petr",
		Email:          "petr@example.com",
		Phone:          "+1 650-253-0000",
		DocumentStatus: "LOST",
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = e.do(t, http.MethodPost, "/api/leads", "", models.LeadCreateInput{
		Name:           "Petr",
		Email:          "PETR@example.com",
		Phone:          "+1 650-253-0000",
		DocumentStatus: models.DocumentStatusHasPassport,
	})
	require.Equal(t, http.StatusConflict, resp.StatusCode)

	resp, _ = e.do(t, http.MethodGet, "/api/leads", "", nil)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, body = e.do(t, http.MethodGet, "/api/leads", staff, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, decode[[]models.Lead](t, body), 1)

	contacted := true
	resp, body = e.do(t, http.MethodPatch, fmt.Sprintf("/api/leads/%d", l.ID), staff, contactedRequest{Contacted: &contacted})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	require.True(t, decode[models.Lead](t, body).Contacted)

	resp, body = e.do(t, http.MethodGet, "/api/leads?contacted=false", staff, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Empty(t, decode[[]models.Lead](t, body))

	resp, _ = e.do(t, http.MethodGet, "/api/leads?contacted=maybe", staff, nil)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, body = e.do(t, http.MethodGet, "/api/leads/export.xlsx", staff, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, xlsxContentType, resp.Header.Get("Content-Type"))
	require.True(t, bytes.HasPrefix(body, []byte("PK")))

	resp, _ = e.do(t, http.MethodPost, "/api/leads/bulk-delete", staff, idsRequest{})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, body = e.do(t, http.MethodPost, "/api/leads/bulk-delete", staff, idsRequest{IDs: []uint64{l.ID, 12345}})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	require.Equal(t, 1, decode[map[string]int](t, body)["deleted"])
}

func TestCarTrackAPI_Showcase(t *testing.T) {
	e := newTestEnv(t)
	admin, _ := e.login(t, "admin@example.com", models.RoleAdmin)

	var ids []uint64
	for i, visible := range []bool{true, false, true} {
		resp, body := e.do(t, http.MethodPost, "/api/admin/showcase", admin, models.ShowcaseCreateInput{
			Title:    fmt.Sprintf("Car %d", i),
			ImageURL: fmt.Sprintf("https://img.example/%d.jpg", i),
			Visible:  visible,
		})
		require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
		ids = append(ids, decode[models.ShowcaseItem](t, body).ID)
	}

	resp, body := e.do(t, http.MethodGet, "/api/showcase", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, decode[[]models.ShowcaseItem](t, body), 2)

	resp, body = e.do(t, http.MethodPost, "/api/admin/showcase/reorder", admin, idsRequest{IDs: []uint64{ids[2], ids[1], ids[0]}})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	items := decode[[]models.ShowcaseItem](t, body)
	require.Len(t, items, 3)
	require.Equal(t, ids[2], items[0].ID)
	require.True(t, strings.HasPrefix(items[0].Title, "Car 2"))
}
