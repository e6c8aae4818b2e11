package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"estampa-fina/internal/alert"
	"estampa-fina/internal/model"
	"estampa-fina/internal/repository"
	"estampa-fina/internal/ws"
)

var alertNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func newAlertServiceForTest(t *testing.T) (*alertService, repository.NotificationRepository, SettingsService, *testingPublisher) {
	db := setupTestDB(t)

	seedProduct(t, db, "LOW-1", "Caneca", "20", 1, 5)
	expired := alertNow.AddDate(0, 0, -3)
	p := &model.Product{SKU: "EXP-1", Name: "Tinta", CurrentStock: 50, MinStock: 1, ExpiryDate: &expired}
	require.NoError(t, repository.NewProductRepo(db).Create(p))

	old := &model.Order{CustomerName: "Joana", Status: model.OrderAwaitingPayment, Date: alertNow.AddDate(0, 0, -10)}
	require.NoError(t, repository.NewOrderRepo(db).Create(old))
	recent := &model.Order{CustomerName: "Rui", Status: model.OrderAwaitingPayment, Date: alertNow.AddDate(0, 0, -1)}
	require.NoError(t, repository.NewOrderRepo(db).Create(recent))

	pub := &testingPublisher{}
	notifications := repository.NewNotificationRepo(db)
	settings := NewSettingsService(repository.NewSettingsRepo(db), nil, NewActivityService(repository.NewActivityLogRepo(db)), nil)
	svc := NewAlertService(repository.NewProductRepo(db), repository.NewOrderRepo(db), notifications, settings, pub).(*alertService)
	svc.now = fixedClock(alertNow)
	return svc, notifications, settings, pub
}

// testingPublisher keeps payloads so tests can inspect them.
type testingPublisher struct {
	topics   []string
	payloads []interface{}
}

func (p *testingPublisher) Publish(topic string, payload interface{}) {
	p.topics = append(p.topics, topic)
	p.payloads = append(p.payloads, payload)
}

func TestAlertService_GenerateIsIdempotent(t *testing.T) {
	svc, notifications, _, pub := newAlertServiceForTest(t)

	alerts, err := svc.Generate(context.Background())
	require.NoError(t, err)
	require.Len(t, alerts, 3)
	assert.Equal(t, alert.High, alerts[0].Severity)
	assert.Equal(t, alert.High, alerts[1].Severity)
	assert.Equal(t, alert.TypeLowStock, alerts[2].Type)
	assert.Equal(t, []string{ws.TopicNotifications, ws.TopicNotifications, ws.TopicNotifications}, pub.topics)

	again, err := svc.Generate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, alerts, again)
	assert.Len(t, pub.topics, 3, "no new pushes on a second run")

	latest, err := notifications.Latest(10)
	require.NoError(t, err)
	assert.Len(t, latest, 3)
	for _, n := range latest {
		assert.False(t, n.Read)
		assert.True(t, alertNow.Equal(n.Timestamp))
	}
}

func TestAlertService_ReadStateSurvivesRescan(t *testing.T) {
	svc, notifications, _, _ := newAlertServiceForTest(t)

	alerts, err := svc.Generate(context.Background())
	require.NoError(t, err)
	require.NoError(t, notifications.MarkRead(alerts[0].ID))

	_, err = svc.Generate(context.Background())
	require.NoError(t, err)

	n, err := notifications.FindByID(alerts[0].ID)
	require.NoError(t, err)
	assert.True(t, n.Read)
}

func TestAlertService_DisabledCategoryIsNotStored(t *testing.T) {
	svc, notifications, settings, pub := newAlertServiceForTest(t)

	off := false
	_, err := settings.Update(Actor{ID: "admin"}, &model.SettingsPatch{NotifyLowStock: &off, NotifyOverduePayment: &off})
	require.NoError(t, err)

	alerts, err := svc.Generate(context.Background())
	require.NoError(t, err)
	assert.Len(t, alerts, 3, "the returned list is not filtered")

	latest, err := notifications.Latest(10)
	require.NoError(t, err)
	require.Len(t, latest, 1)
	assert.Equal(t, string(alert.TypeExpired), latest[0].Type)
	assert.Len(t, pub.topics, 1)
}

type failingProducts struct {
	repository.ProductRepository
}

func (failingProducts) FindAll() ([]model.Product, error) {
	return nil, errors.New("connection reset")
}

func TestAlertService_ReadFailureWritesNothing(t *testing.T) {
	svc, notifications, _, pub := newAlertServiceForTest(t)
	svc.productRepo = failingProducts{svc.productRepo}

	_, err := svc.Generate(context.Background())
	assert.ErrorContains(t, err, "reading products")

	latest, err := notifications.Latest(10)
	require.NoError(t, err)
	assert.Empty(t, latest)
	assert.Empty(t, pub.topics)
}

func TestAlertService_CancelledContextWritesNothing(t *testing.T) {
	svc, notifications, _, pub := newAlertServiceForTest(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Generate(ctx)
	assert.ErrorIs(t, err, context.Canceled)

	latest, err := notifications.Latest(10)
	require.NoError(t, err)
	assert.Empty(t, latest)
	assert.Empty(t, pub.topics)
}

func TestAlertService_RunStopsWithContext(t *testing.T) {
	svc, notifications, _, _ := newAlertServiceForTest(t)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		svc.Run(ctx, time.Hour)
		close(done)
	}()

	require.Eventually(t, func() bool {
		latest, err := notifications.Latest(10)
		return err == nil && len(latest) == 3
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
