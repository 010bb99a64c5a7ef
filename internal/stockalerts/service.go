package stockalerts

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/shopzen/shopzen-backend/pkg/db/models"
	"github.com/shopzen/shopzen-backend/pkg/email"
	pkgerrors "github.com/shopzen/shopzen-backend/pkg/errors"
	"github.com/shopzen/shopzen-backend/pkg/events"
	"github.com/shopzen/shopzen-backend/pkg/logger"
)

// DefaultCooldownWindow suppresses repeat alert batches for the same product.
const DefaultCooldownWindow = 60 * time.Minute

// StoreReader looks up store configuration.
type StoreReader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Store, error)
}

// dispatchOutcome classifies one subscriber's processing result.
type dispatchOutcome int

const (
	outcomeSent dispatchOutcome = iota
	outcomeSendFailed
	outcomeInvalidEmail
)

// dispatchPolicy makes the at-most-once contract explicit: every processed
// subscriber is purged, whatever the delivery outcome, so a redelivered event
// can never email the same subscriber twice.
var dispatchPolicy = map[dispatchOutcome]struct {
	sendAttempted bool
	purge         bool
}{
	outcomeSent:         {sendAttempted: true, purge: true},
	outcomeSendFailed:   {sendAttempted: true, purge: true},
	outcomeInvalidEmail: {sendAttempted: false, purge: true},
}

// Notifier orchestrates one alert batch per qualifying product restock.
type Notifier struct {
	stores   StoreReader
	subs     SubscriptionRepository
	markers  MarkerRepository
	sender   email.Sender
	metrics  *Metrics
	logg     *logger.Logger
	cooldown time.Duration
	baseURL  string
	now      func() time.Time
}

// NotifierOptions wires the notifier's dependencies.
type NotifierOptions struct {
	Stores            StoreReader
	Subscriptions     SubscriptionRepository
	Markers           MarkerRepository
	Sender            email.Sender
	Metrics           *Metrics
	Logger            *logger.Logger
	CooldownWindow    time.Duration
	StorefrontBaseURL string
	Now               func() time.Time
}

// NewNotifier validates dependencies and applies defaults.
func NewNotifier(opts NotifierOptions) (*Notifier, error) {
	if opts.Stores == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "store reader required")
	}
	if opts.Subscriptions == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "subscription repository required")
	}
	if opts.Markers == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "marker repository required")
	}
	if opts.Sender == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "email sender required")
	}
	if opts.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "logger required")
	}
	cooldown := opts.CooldownWindow
	if cooldown <= 0 {
		cooldown = DefaultCooldownWindow
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Notifier{
		stores:   opts.Stores,
		subs:     opts.Subscriptions,
		markers:  opts.Markers,
		sender:   opts.Sender,
		metrics:  opts.Metrics,
		logg:     opts.Logger,
		cooldown: cooldown,
		baseURL:  opts.StorefrontBaseURL,
		now:      now,
	}, nil
}

// HandleProductUpdate processes one product change event. Gate checks that
// fail (not a restock, feature off, cooldown active, nobody subscribed) end
// the invocation silently. A store-config or marker read failure aborts
// before anything is sent.
func (n *Notifier) HandleProductUpdate(ctx context.Context, storeID, productID uuid.UUID, change events.ProductUpdated) error {
	ctx = n.logg.WithStoreID(ctx, storeID.String())
	ctx = n.logg.WithProductID(ctx, productID.String())

	if !Qualifies(change.Before, change.After) {
		n.metrics.IncSuppressed(reasonWrongMove)
		return nil
	}

	store, err := n.stores.FindByID(ctx, storeID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reading store config")
	}
	if !store.BackInStockEnabled {
		n.logg.Info(ctx, "back-in-stock alerts disabled for store")
		n.metrics.IncSuppressed(reasonDisabled)
		return nil
	}

	last, err := n.markers.LastAlertAt(ctx, storeID, productID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reading alert marker")
	}
	if last != nil && n.now().UTC().Sub(last.UTC()) < n.cooldown {
		n.logg.Info(ctx, "alert cooldown active, skipping batch")
		n.metrics.IncSuppressed(reasonCooldown)
		return nil
	}

	subs, err := n.subs.ListByProduct(ctx, storeID, productID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "listing subscribers")
	}
	if len(subs) == 0 {
		n.metrics.IncSuppressed(reasonNoSubs)
		return nil
	}

	// Fan out one send per subscriber and wait for every attempt to settle
	// before purging or touching the marker.
	outcomes := make([]dispatchOutcome, len(subs))
	var wg sync.WaitGroup
	for i, sub := range subs {
		wg.Add(1)
		go func(i int, sub models.StockSubscription) {
			defer wg.Done()
			outcomes[i] = n.dispatch(ctx, store, change.After, sub)
		}(i, sub)
	}
	wg.Wait()

	attempted := 0
	var deleteErr error
	for i, sub := range subs {
		policy := dispatchPolicy[outcomes[i]]
		if policy.sendAttempted {
			attempted++
		}
		if policy.purge {
			if err := n.subs.Delete(ctx, storeID, productID, sub.ID); err != nil {
				deleteErr = multierr.Append(deleteErr, err)
			}
		}
	}
	if deleteErr != nil {
		// Best effort: a leftover subscription means at most one extra email
		// on the next restock, never a duplicate within this one.
		n.logg.Error(ctx, "purging processed subscriptions failed", deleteErr)
	}

	if attempted == 0 {
		return nil
	}
	if err := n.markers.RecordAlert(ctx, storeID, productID, n.now().UTC()); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "recording alert marker")
	}
	n.metrics.IncBatch(storeID.String())
	n.logg.Info(n.logg.WithFields(ctx, map[string]any{
		"subscribers": len(subs),
		"attempted":   attempted,
	}), "alert batch dispatched")
	return nil
}

func (n *Notifier) dispatch(ctx context.Context, store *models.Store, after events.ProductSnapshot, sub models.StockSubscription) dispatchOutcome {
	msg := buildAlertMessage(store, after, n.baseURL, sub)
	err := n.sender.Send(ctx, msg)
	if err == nil {
		n.metrics.IncEmail(outcomeLabelSent)
		return outcomeSent
	}
	if typed := pkgerrors.As(err); typed != nil && typed.Code() == pkgerrors.CodeValidation {
		n.logg.Warn(n.logg.WithField(ctx, "subscription_id", sub.ID.String()), "subscriber email invalid, purging without send")
		n.metrics.IncEmail(outcomeLabelInvalid)
		return outcomeInvalidEmail
	}
	n.logg.Error(n.logg.WithField(ctx, "subscription_id", sub.ID.String()), "alert email send failed", err)
	n.metrics.IncEmail(outcomeLabelFailed)
	return outcomeSendFailed
}
