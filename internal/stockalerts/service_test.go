package stockalerts

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/shopzen/shopzen-backend/pkg/db/models"
	"github.com/shopzen/shopzen-backend/pkg/email"
	pkgerrors "github.com/shopzen/shopzen-backend/pkg/errors"
	"github.com/shopzen/shopzen-backend/pkg/events"
	"github.com/shopzen/shopzen-backend/pkg/logger"
)

type stubStores struct {
	store *models.Store
	err   error
}

func (s *stubStores) FindByID(context.Context, uuid.UUID) (*models.Store, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.store, nil
}

type fakeSubs struct {
	mu      sync.Mutex
	subs    []models.StockSubscription
	created []models.StockSubscription
	deleted []uuid.UUID

	createErr error
	listErr   error
	deleteErr error
}

func (f *fakeSubs) Create(_ context.Context, sub *models.StockSubscription) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, *sub)
	f.subs = append(f.subs, *sub)
	return nil
}

func (f *fakeSubs) ListByProduct(context.Context, uuid.UUID, uuid.UUID) ([]models.StockSubscription, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.StockSubscription, len(f.subs))
	copy(out, f.subs)
	return out, nil
}

func (f *fakeSubs) Delete(_ context.Context, _, _ uuid.UUID, id uuid.UUID) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, id)
	remaining := f.subs[:0]
	for _, sub := range f.subs {
		if sub.ID != id {
			remaining = append(remaining, sub)
		}
	}
	f.subs = remaining
	return nil
}

func (f *fakeSubs) DeleteOlderThan(context.Context, time.Time) (int64, error) {
	return 0, nil
}

type fakeMarkers struct {
	last     *time.Time
	readErr  error
	writeErr error
	recorded []time.Time
}

func (f *fakeMarkers) LastAlertAt(context.Context, uuid.UUID, uuid.UUID) (*time.Time, error) {
	if f.readErr != nil {
		return nil, f.readErr
	}
	return f.last, nil
}

func (f *fakeMarkers) RecordAlert(_ context.Context, _, _ uuid.UUID, at time.Time) error {
	if f.writeErr != nil {
		return f.writeErr
	}
	f.recorded = append(f.recorded, at)
	return nil
}

type fakeSender struct {
	mu      sync.Mutex
	sent    []email.Message
	sendErr map[string]error
}

func (f *fakeSender) Send(_ context.Context, msg email.Message) error {
	if !strings.Contains(msg.To, "@") {
		return pkgerrors.New(pkgerrors.CodeValidation, "recipient address is not a valid email")
	}
	if err, ok := f.sendErr[msg.To]; ok && err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, msg)
	return nil
}

func testStore() *models.Store {
	return &models.Store{
		ID:                 uuid.New(),
		Name:               "Maple & Main",
		NameSlug:           "maple-and-main",
		BackInStockEnabled: true,
	}
}

func restockChange() events.ProductUpdated {
	return events.ProductUpdated{
		Before: &events.ProductSnapshot{StockQty: qty(0)},
		After: events.ProductSnapshot{
			Name:       "Walnut Desk Organizer",
			PriceCents: 4999,
			StockQty:   qty(12),
		},
	}
}

func subscription(addr string) models.StockSubscription {
	return models.StockSubscription{ID: uuid.New(), Email: addr}
}

type notifierFixture struct {
	notifier *Notifier
	stores   *stubStores
	subs     *fakeSubs
	markers  *fakeMarkers
	sender   *fakeSender
	now      time.Time
}

func newNotifierFixture(t *testing.T) *notifierFixture {
	t.Helper()
	fx := &notifierFixture{
		stores:  &stubStores{store: testStore()},
		subs:    &fakeSubs{},
		markers: &fakeMarkers{},
		sender:  &fakeSender{},
		now:     time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC),
	}
	notifier, err := NewNotifier(NotifierOptions{
		Stores:            fx.stores,
		Subscriptions:     fx.subs,
		Markers:           fx.markers,
		Sender:            fx.sender,
		Logger:            logger.New(logger.Options{ServiceName: "test", Output: io.Discard}),
		CooldownWindow:    60 * time.Minute,
		StorefrontBaseURL: "https://shopzen.io",
		Now:               func() time.Time { return fx.now },
	})
	if err != nil {
		t.Fatalf("NewNotifier: %v", err)
	}
	fx.notifier = notifier
	return fx
}

func (fx *notifierFixture) handle(t *testing.T, change events.ProductUpdated) error {
	t.Helper()
	return fx.notifier.HandleProductUpdate(context.Background(), fx.stores.store.ID, uuid.New(), change)
}

func TestNotifierSkipsNonQualifyingChange(t *testing.T) {
	fx := newNotifierFixture(t)
	fx.subs.subs = []models.StockSubscription{subscription("a@example.com")}

	change := restockChange()
	change.Before = &events.ProductSnapshot{StockQty: qty(5)}

	if err := fx.handle(t, change); err != nil {
		t.Fatalf("HandleProductUpdate: %v", err)
	}
	if len(fx.sender.sent) != 0 || len(fx.subs.deleted) != 0 || len(fx.markers.recorded) != 0 {
		t.Fatalf("expected no side effects, got %d sends %d deletes %d markers",
			len(fx.sender.sent), len(fx.subs.deleted), len(fx.markers.recorded))
	}
}

func TestNotifierFeatureDisabledNoSideEffects(t *testing.T) {
	fx := newNotifierFixture(t)
	fx.stores.store.BackInStockEnabled = false
	fx.subs.subs = []models.StockSubscription{subscription("a@example.com")}

	if err := fx.handle(t, restockChange()); err != nil {
		t.Fatalf("HandleProductUpdate: %v", err)
	}
	if len(fx.sender.sent) != 0 || len(fx.subs.deleted) != 0 || len(fx.markers.recorded) != 0 {
		t.Fatal("expected no side effects when feature disabled")
	}
}

func TestNotifierFirstBatchSendsAndPurges(t *testing.T) {
	fx := newNotifierFixture(t)
	fx.subs.subs = []models.StockSubscription{
		subscription("a@example.com"),
		subscription("b@example.com"),
		subscription("c@example.com"),
	}

	if err := fx.handle(t, restockChange()); err != nil {
		t.Fatalf("HandleProductUpdate: %v", err)
	}
	if len(fx.sender.sent) != 3 {
		t.Fatalf("expected 3 emails, got %d", len(fx.sender.sent))
	}
	if len(fx.subs.deleted) != 3 {
		t.Fatalf("expected 3 deletions, got %d", len(fx.subs.deleted))
	}
	if len(fx.markers.recorded) != 1 || !fx.markers.recorded[0].Equal(fx.now) {
		t.Fatalf("expected one marker at %v, got %v", fx.now, fx.markers.recorded)
	}
}

func TestNotifierCooldownActiveSkips(t *testing.T) {
	fx := newNotifierFixture(t)
	last := fx.now.Add(-10 * time.Minute)
	fx.markers.last = &last
	fx.subs.subs = []models.StockSubscription{subscription("a@example.com")}

	if err := fx.handle(t, restockChange()); err != nil {
		t.Fatalf("HandleProductUpdate: %v", err)
	}
	if len(fx.sender.sent) != 0 || len(fx.subs.deleted) != 0 || len(fx.markers.recorded) != 0 {
		t.Fatal("expected cooldown to suppress the batch")
	}
}

func TestNotifierCooldownExpiredRecordsMarkerDespiteSendFailure(t *testing.T) {
	fx := newNotifierFixture(t)
	last := fx.now.Add(-61 * time.Minute)
	fx.markers.last = &last
	fx.subs.subs = []models.StockSubscription{
		subscription("ok@example.com"),
		subscription("down@example.com"),
	}
	fx.sender.sendErr = map[string]error{
		"down@example.com": pkgerrors.New(pkgerrors.CodeDependency, "smtp unavailable"),
	}

	if err := fx.handle(t, restockChange()); err != nil {
		t.Fatalf("HandleProductUpdate: %v", err)
	}
	if len(fx.sender.sent) != 1 {
		t.Fatalf("expected 1 delivered email, got %d", len(fx.sender.sent))
	}
	if len(fx.subs.deleted) != 2 {
		t.Fatalf("expected both subscriptions purged, got %d", len(fx.subs.deleted))
	}
	if len(fx.markers.recorded) != 1 {
		t.Fatalf("expected marker recorded despite failure, got %v", fx.markers.recorded)
	}
}

func TestNotifierInvalidEmailPurgedWithoutSend(t *testing.T) {
	fx := newNotifierFixture(t)
	fx.subs.subs = []models.StockSubscription{
		subscription("valid@x.com"),
		subscription("not-an-email"),
	}

	if err := fx.handle(t, restockChange()); err != nil {
		t.Fatalf("HandleProductUpdate: %v", err)
	}
	if len(fx.sender.sent) != 1 || fx.sender.sent[0].To != "valid@x.com" {
		t.Fatalf("expected exactly one email to the valid address, got %v", fx.sender.sent)
	}
	if len(fx.subs.deleted) != 2 {
		t.Fatalf("expected both entries purged, got %d", len(fx.subs.deleted))
	}
	if len(fx.markers.recorded) != 1 {
		t.Fatal("expected marker recorded")
	}
}

func TestNotifierRedeliverySeesEmptyList(t *testing.T) {
	fx := newNotifierFixture(t)
	fx.subs.subs = []models.StockSubscription{subscription("a@example.com")}
	storeID := fx.stores.store.ID
	productID := uuid.New()
	change := restockChange()

	if err := fx.notifier.HandleProductUpdate(context.Background(), storeID, productID, change); err != nil {
		t.Fatalf("first invocation: %v", err)
	}
	// Pretend the marker write was lost so only the purge protects us.
	fx.markers.last = nil
	if err := fx.notifier.HandleProductUpdate(context.Background(), storeID, productID, change); err != nil {
		t.Fatalf("second invocation: %v", err)
	}
	if len(fx.sender.sent) != 1 {
		t.Fatalf("expected redelivery to send nothing, got %d total sends", len(fx.sender.sent))
	}
}

func TestNotifierStoreReadFailureAborts(t *testing.T) {
	fx := newNotifierFixture(t)
	fx.stores.err = errors.New("store lookup down")
	fx.subs.subs = []models.StockSubscription{subscription("a@example.com")}

	if err := fx.handle(t, restockChange()); err == nil {
		t.Fatal("expected error")
	}
	if len(fx.sender.sent) != 0 || len(fx.subs.deleted) != 0 {
		t.Fatal("expected no side effects on store read failure")
	}
}

func TestNotifierMarkerReadFailureAbortsBeforeSending(t *testing.T) {
	fx := newNotifierFixture(t)
	fx.markers.readErr = errors.New("marker store down")
	fx.subs.subs = []models.StockSubscription{subscription("a@example.com")}

	if err := fx.handle(t, restockChange()); err == nil {
		t.Fatal("expected error")
	}
	if len(fx.sender.sent) != 0 || len(fx.subs.deleted) != 0 || len(fx.markers.recorded) != 0 {
		t.Fatal("expected abort before any send or purge")
	}
}

func TestNotifierNoSubscribersNoMarker(t *testing.T) {
	fx := newNotifierFixture(t)

	if err := fx.handle(t, restockChange()); err != nil {
		t.Fatalf("HandleProductUpdate: %v", err)
	}
	if len(fx.markers.recorded) != 0 {
		t.Fatal("expected no marker without subscribers")
	}
}

func TestNotifierDeleteFailureStillRecordsMarker(t *testing.T) {
	fx := newNotifierFixture(t)
	fx.subs.subs = []models.StockSubscription{subscription("a@example.com")}
	fx.subs.deleteErr = errors.New("delete hiccup")

	if err := fx.handle(t, restockChange()); err != nil {
		t.Fatalf("HandleProductUpdate: %v", err)
	}
	if len(fx.markers.recorded) != 1 {
		t.Fatal("expected marker recorded despite delete failures")
	}
}

func TestAlertMessageContents(t *testing.T) {
	store := testStore()
	customPath := "maple"
	store.CustomPath = &customPath
	change := restockChange()

	msg := buildAlertMessage(store, change.After, "https://shopzen.io/", subscription("a@example.com"))

	if msg.Subject != "It's Back! Walnut Desk Organizer is back in stock!" {
		t.Fatalf("unexpected subject %q", msg.Subject)
	}
	for _, want := range []string{"Maple &amp; Main", "$49.99", "https://shopzen.io/maple"} {
		if !strings.Contains(msg.HTML, want) {
			t.Errorf("body missing %q", want)
		}
	}
}

func TestFormatPrice(t *testing.T) {
	cases := map[int64]string{
		0:     "$0.00",
		5:     "$0.05",
		4999:  "$49.99",
		10000: "$100.00",
	}
	for cents, want := range cases {
		if got := formatPrice(cents); got != want {
			t.Errorf("formatPrice(%d) = %q, want %q", cents, got, want)
		}
	}
}
