package pgstore

import (
	"context"
	"testing"
	"time"

	"github.com/BearBump/CarTrack/internal/apperr"
	"github.com/BearBump/CarTrack/internal/models"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func newTestStorage(t *testing.T) *Storage {
	t.Helper()
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:15-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "admin",
			"POSTGRES_PASSWORD": "admin",
			"POSTGRES_DB":       "cartrack_test",
		},
		WaitingFor: wait.ForListeningPort("5432/tcp").WithStartupTimeout(60 * time.Second),
	}
	pgC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = pgC.Terminate(ctx) })

	host, err := pgC.Host(ctx)
	require.NoError(t, err)
	port, err := pgC.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	dsn := "postgres://admin:admin@" + host + ":" + port.Port() + "/cartrack_test?sslmode=disable"

	// порт уже слушает, но postgres может ещё перезапускаться после initdb
	var st *Storage
	require.Eventually(t, func() bool {
		st, err = New(dsn)
		return err == nil
	}, 30*time.Second, 500*time.Millisecond)
	t.Cleanup(st.Close)
	return st
}

func strPtr(s string) *string { return &s }

func TestPGStore_RepoFlow(t *testing.T) {
	if testing.Short() {
		t.Skip("needs docker")
	}
	ctx := context.Background()
	st := newTestStorage(t)

	// статусы: порядок назначается автоматически
	ordered, err := st.CreateStatus(ctx, models.StatusCreateInput{Name: "Ordered"})
	require.NoError(t, err)
	transit, err := st.CreateStatus(ctx, models.StatusCreateInput{Name: "In Transit", IsTransit: true})
	require.NoError(t, err)
	delivered, err := st.CreateStatus(ctx, models.StatusCreateInput{Name: "Delivered", NotifyOnEntry: true})
	require.NoError(t, err)
	require.Equal(t, 0, ordered.Order)
	require.Equal(t, 1, transit.Order)
	require.Equal(t, 2, delivered.Order)

	_, err = st.CreateStatus(ctx, models.StatusCreateInput{Name: "Ordered"})
	require.ErrorIs(t, err, apperr.ErrConflict)

	// reorder с неизвестным id откатывается целиком
	err = st.ReorderStatuses(ctx, []uint64{delivered.ID, 999999})
	require.ErrorIs(t, err, apperr.ErrNotFound)
	got, err := st.GetStatus(ctx, delivered.ID)
	require.NoError(t, err)
	require.Equal(t, 2, got.Order)

	require.NoError(t, st.ReorderStatuses(ctx, []uint64{transit.ID, ordered.ID, delivered.ID}))
	list, err := st.ListStatuses(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	require.Equal(t, transit.ID, list[0].ID)
	require.Equal(t, ordered.ID, list[1].ID)

	// отправка
	sh, err := st.CreateShipment(ctx, models.ShipmentCreateInput{
		Manufacturer: "Toyota",
		Model:        "Supra",
		VIN:          "JT2JA82J0R0012345",
		OwnerName:    "Jane Roe",
		OwnerEmail:   strPtr("jane@example.com"),
	}, "tok-1", nil)
	require.NoError(t, err)
	require.Nil(t, sh.CurrentStatusID)
	require.Empty(t, sh.Pictures)

	_, err = st.CreateShipment(ctx, models.ShipmentCreateInput{
		Manufacturer: "BMW", Model: "M3", VIN: "X", OwnerName: "A",
	}, "tok-1", nil)
	require.ErrorIs(t, err, apperr.ErrConflict)

	byToken, err := st.GetShipmentByToken(ctx, "tok-1")
	require.NoError(t, err)
	require.Equal(t, sh.ID, byToken.ID)

	// переход: указатель и история меняются вместе
	h, err := st.ApplyTransition(ctx, models.Transition{
		ShipmentID: sh.ID,
		StatusID:   ordered.ID,
		ChangedAt:  time.Now().UTC(),
		Notes:      strPtr("paid"),
	})
	require.NoError(t, err)
	require.Equal(t, "Ordered", h.StatusName)

	_, err = st.ApplyTransition(ctx, models.Transition{ShipmentID: sh.ID, StatusID: 999999, ChangedAt: time.Now().UTC()})
	require.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = st.ApplyTransition(ctx, models.Transition{ShipmentID: 999999, StatusID: transit.ID, ChangedAt: time.Now().UTC()})
	require.ErrorIs(t, err, apperr.ErrNotFound)

	cur, err := st.GetShipment(ctx, sh.ID)
	require.NoError(t, err)
	require.NotNil(t, cur.CurrentStatusID)
	require.Equal(t, ordered.ID, *cur.CurrentStatusID)

	hist, err := st.ListStatusHistory(ctx, sh.ID)
	require.NoError(t, err)
	require.Len(t, hist, 1)

	// статус в использовании не удаляется
	n, err := st.CountShipmentsWithStatus(ctx, ordered.ID)
	require.NoError(t, err)
	require.Equal(t, 1, n)
	require.ErrorIs(t, st.DeleteStatus(ctx, ordered.ID), apperr.ErrConflict)

	// поиск
	found, err := st.SearchShipments(ctx, models.ShipmentSearch{Query: "supra"})
	require.NoError(t, err)
	require.Len(t, found, 1)
	found, err = st.SearchShipments(ctx, models.ShipmentSearch{StatusID: &transit.ID})
	require.NoError(t, err)
	require.Empty(t, found)
	found, err = st.SearchShipments(ctx, models.ShipmentSearch{Query: "%"})
	require.NoError(t, err)
	require.Empty(t, found)

	// обновление не трогает токен и статус
	upd, err := st.UpdateShipment(ctx, sh.ID, models.ShipmentUpdateInput{Color: strPtr("Red"), OwnerEmail: strPtr("")})
	require.NoError(t, err)
	require.Equal(t, "tok-1", upd.TrackingToken)
	require.Equal(t, "Red", *upd.Color)
	require.Nil(t, upd.OwnerEmail)
	require.Equal(t, ordered.ID, *upd.CurrentStatusID)

	// удаление отправки уносит историю
	require.NoError(t, st.DeleteShipment(ctx, sh.ID))
	hist, err = st.ListStatusHistory(ctx, sh.ID)
	require.NoError(t, err)
	require.Empty(t, hist)
	require.NoError(t, st.DeleteStatus(ctx, ordered.ID))
}

func TestPGStore_Templates_SingleDefault(t *testing.T) {
	if testing.Short() {
		t.Skip("needs docker")
	}
	ctx := context.Background()
	st := newTestStorage(t)

	a, err := st.CreateTemplate(ctx, models.TemplateCreateInput{Name: "A", Type: models.TemplateTypeEmail, Content: "a", IsDefault: true})
	require.NoError(t, err)
	b, err := st.CreateTemplate(ctx, models.TemplateCreateInput{Name: "B", Type: models.TemplateTypeEmail, Content: "b", IsDefault: true})
	require.NoError(t, err)
	_, err = st.CreateTemplate(ctx, models.TemplateCreateInput{Name: "C", Type: models.TemplateTypeBill, Content: "c", IsDefault: true})
	require.NoError(t, err)

	def, err := st.DefaultTemplate(ctx, models.TemplateTypeEmail)
	require.NoError(t, err)
	require.Equal(t, b.ID, def.ID)

	_, err = st.SetDefaultTemplate(ctx, a.ID)
	require.NoError(t, err)
	def, err = st.DefaultTemplate(ctx, models.TemplateTypeEmail)
	require.NoError(t, err)
	require.Equal(t, a.ID, def.ID)

	typ := models.TemplateTypeEmail
	list, err := st.ListTemplates(ctx, &typ)
	require.NoError(t, err)
	require.Len(t, list, 2)

	_, err = st.DefaultTemplate(ctx, models.TemplateTypeContract)
	require.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestPGStore_LeadsUsersShowcase(t *testing.T) {
	if testing.Short() {
		t.Skip("needs docker")
	}
	ctx := context.Background()
	st := newTestStorage(t)

	l1, err := st.CreateLead(ctx, models.LeadCreateInput{Name: "A", Email: "a@x.io", Phone: "+15550001111", DocumentStatus: models.DocumentStatusNoPassport})
	require.NoError(t, err)
	l2, err := st.CreateLead(ctx, models.LeadCreateInput{Name: "B", Email: "b@x.io", Phone: "+15550002222", DocumentStatus: models.DocumentStatusHasPassport})
	require.NoError(t, err)
	_, err = st.CreateLead(ctx, models.LeadCreateInput{Name: "A2", Email: "A@X.io", Phone: "+15550003333", DocumentStatus: models.DocumentStatusNoPassport})
	require.ErrorIs(t, err, apperr.ErrConflict)

	_, err = st.SetLeadContacted(ctx, l1.ID, true)
	require.NoError(t, err)
	yes := true
	contacted, err := st.ListLeads(ctx, &yes)
	require.NoError(t, err)
	require.Len(t, contacted, 1)

	n, err := st.DeleteLeads(ctx, []uint64{l1.ID, l2.ID, 999999})
	require.NoError(t, err)
	require.Equal(t, 2, n)

	u, err := st.CreateUser(ctx, models.User{Email: "Admin@Example.com", Name: "Admin", PasswordHash: "x", Role: models.RoleAdmin})
	require.NoError(t, err)
	_, err = st.CreateUser(ctx, models.User{Email: "admin@example.com", Name: "Dup", PasswordHash: "x", Role: models.RoleStaff})
	require.ErrorIs(t, err, apperr.ErrConflict)
	byEmail, err := st.GetUserByEmail(ctx, "ADMIN@example.com")
	require.NoError(t, err)
	require.Equal(t, u.ID, byEmail.ID)

	i1, err := st.CreateShowcaseItem(ctx, models.ShowcaseCreateInput{Title: "One", ImageURL: "https://img/1.jpg", Visible: true})
	require.NoError(t, err)
	i2, err := st.CreateShowcaseItem(ctx, models.ShowcaseCreateInput{Title: "Two", ImageURL: "https://img/2.jpg"})
	require.NoError(t, err)
	require.Equal(t, i1.Order+1, i2.Order)

	visible, err := st.ListShowcaseItems(ctx, true)
	require.NoError(t, err)
	require.Len(t, visible, 1)

	require.NoError(t, st.ReorderShowcaseItems(ctx, []uint64{i2.ID, i1.ID}))
	all, err := st.ListShowcaseItems(ctx, false)
	require.NoError(t, err)
	require.Equal(t, i2.ID, all[0].ID)
}
