package billing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/cvparse/resume-extractor/constants"
	"github.com/cvparse/resume-extractor/internal/common"
	"github.com/cvparse/resume-extractor/internal/repository"
)

// Ledger reconciles billing webhook events into per-user credit balances and
// plan state. It only consumes provider events; it never calls back out to
// the provider.
type Ledger struct {
	users  repository.UserRepository
	cfg    common.BillingConfig
	logger *slog.Logger
}

func NewLedger(users repository.UserRepository, cfg common.BillingConfig, logger *slog.Logger) *Ledger {
	if logger == nil {
		logger = slog.Default()
	}
	return &Ledger{users: users, cfg: cfg, logger: logger}
}

// planForPrice maps a provider price ID onto a plan tier. Unknown price IDs
// fall back to FREE, mirroring the provider-side configuration.
func (l *Ledger) planForPrice(priceID string) constants.PlanType {
	if priceID != "" {
		switch priceID {
		case l.cfg.PriceIDPro:
			return constants.PlanPro
		case l.cfg.PriceIDBasic:
			return constants.PlanBasic
		}
	}
	return constants.PlanFree
}

// HandleEvent dispatches one webhook event. Events referencing unknown users
// or subscriptions are logged and acknowledged: the provider retries on
// error, and a user we cannot resolve will not appear on retry either.
func (l *Ledger) HandleEvent(ctx context.Context, ev Event) error {
	l.logger.Info("webhook.event.received", "event_id", ev.ID, "type", ev.Type)

	switch ev.Type {
	case EventInvoicePaid:
		return l.handleInvoicePaid(ctx, ev)
	case EventSubscriptionCreated:
		return l.handleSubscriptionCreated(ctx, ev)
	case EventSubscriptionUpdated:
		return l.handleSubscriptionUpdated(ctx, ev)
	case EventSubscriptionDeleted:
		return l.handleSubscriptionDeleted(ctx, ev)
	case EventCheckoutCompleted:
		return l.handleCheckoutCompleted(ctx, ev)
	default:
		l.logger.Info("webhook.event.unhandled", "type", ev.Type)
		return nil
	}
}

func (l *Ledger) handleInvoicePaid(ctx context.Context, ev Event) error {
	var inv Invoice
	if err := json.Unmarshal(ev.Data.Object, &inv); err != nil {
		return fmt.Errorf("decode invoice: %w", err)
	}
	if inv.Subscription == "" {
		l.logger.Info("webhook.invoice.no_subscription", "invoice_id", inv.ID)
		return nil
	}

	user, err := l.users.GetBySubscriptionID(ctx, inv.Subscription)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			l.logger.Warn("webhook.invoice.user_not_found", "subscription_id", inv.Subscription)
			return nil
		}
		return err
	}

	plan := l.planForPrice(inv.PriceID())
	credits := constants.PlanCredits[plan]
	if credits <= 0 {
		return nil
	}
	if err := l.users.AddCredits(ctx, user.ID, credits, plan); err != nil {
		return fmt.Errorf("add credits: %w", err)
	}
	l.logger.Info("webhook.invoice.credits_added",
		"user_id", user.ID, "plan", plan, "credits", credits)
	return nil
}

func (l *Ledger) handleSubscriptionCreated(ctx context.Context, ev Event) error {
	var sub Subscription
	if err := json.Unmarshal(ev.Data.Object, &sub); err != nil {
		return fmt.Errorf("decode subscription: %w", err)
	}

	// checkout.session.completed normally binds the subscription first;
	// this is the backup path via metadata when it did not fire.
	raw := sub.Metadata["userId"]
	if raw == "" {
		l.logger.Info("webhook.subscription.no_user_metadata", "subscription_id", sub.ID)
		return nil
	}
	userID, err := uuid.Parse(raw)
	if err != nil {
		l.logger.Warn("webhook.subscription.bad_user_metadata", "subscription_id", sub.ID, "user_id", raw)
		return nil
	}

	user, err := l.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			l.logger.Warn("webhook.subscription.user_not_found", "user_id", userID)
			return nil
		}
		return err
	}
	if user.SubscriptionID != nil && *user.SubscriptionID != "" {
		return nil
	}

	plan := l.planForPrice(sub.PriceID())
	if err := l.users.SetSubscription(ctx, user.ID, sub.ID, plan); err != nil {
		return fmt.Errorf("bind subscription: %w", err)
	}
	if credits := constants.PlanCredits[plan]; credits > 0 {
		if err := l.users.AddCredits(ctx, user.ID, credits, plan); err != nil {
			return fmt.Errorf("add credits: %w", err)
		}
	}
	l.logger.Info("webhook.subscription.created", "user_id", user.ID, "plan", plan)
	return nil
}

func (l *Ledger) handleSubscriptionUpdated(ctx context.Context, ev Event) error {
	var sub Subscription
	if err := json.Unmarshal(ev.Data.Object, &sub); err != nil {
		return fmt.Errorf("decode subscription: %w", err)
	}

	user, err := l.users.GetBySubscriptionID(ctx, sub.ID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			l.logger.Warn("webhook.subscription.user_not_found", "subscription_id", sub.ID)
			return nil
		}
		return err
	}

	plan := l.planForPrice(sub.PriceID())
	if err := l.users.SetPlan(ctx, user.ID, plan); err != nil {
		return fmt.Errorf("update plan: %w", err)
	}
	l.logger.Info("webhook.subscription.updated", "user_id", user.ID, "plan", plan)
	return nil
}

func (l *Ledger) handleSubscriptionDeleted(ctx context.Context, ev Event) error {
	var sub Subscription
	if err := json.Unmarshal(ev.Data.Object, &sub); err != nil {
		return fmt.Errorf("decode subscription: %w", err)
	}

	user, err := l.users.GetBySubscriptionID(ctx, sub.ID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			l.logger.Warn("webhook.subscription.user_not_found", "subscription_id", sub.ID)
			return nil
		}
		return err
	}

	if err := l.users.ClearSubscription(ctx, user.ID); err != nil {
		return fmt.Errorf("clear subscription: %w", err)
	}
	l.logger.Info("webhook.subscription.deleted", "user_id", user.ID)
	return nil
}

func (l *Ledger) handleCheckoutCompleted(ctx context.Context, ev Event) error {
	var sess CheckoutSession
	if err := json.Unmarshal(ev.Data.Object, &sess); err != nil {
		return fmt.Errorf("decode checkout session: %w", err)
	}

	raw := sess.Metadata["userId"]
	if raw == "" {
		l.logger.Info("webhook.checkout.no_user_metadata", "session_id", sess.ID)
		return nil
	}
	userID, err := uuid.Parse(raw)
	if err != nil {
		l.logger.Warn("webhook.checkout.bad_user_metadata", "session_id", sess.ID, "user_id", raw)
		return nil
	}
	if sess.Subscription == "" {
		l.logger.Info("webhook.checkout.no_subscription", "session_id", sess.ID)
		return nil
	}

	plan := constants.PlanType(sess.Metadata["planType"])
	if _, ok := constants.PlanCredits[plan]; !ok {
		plan = constants.PlanBasic
	}

	if err := l.users.SetSubscription(ctx, userID, sess.Subscription, plan); err != nil {
		return fmt.Errorf("bind subscription: %w", err)
	}
	credits := constants.PlanCredits[plan]
	if err := l.users.AddCredits(ctx, userID, credits, plan); err != nil {
		return fmt.Errorf("add credits: %w", err)
	}
	l.logger.Info("webhook.checkout.completed",
		"user_id", userID, "plan", plan, "credits", credits)
	return nil
}
