// Package service runs the order screening workflow: exclusion check,
// history-based evaluation, flagging, the store's response action, the
// notification record and the history recompute.
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ecomprotect/sentinel/internal/clock"
	exclusiondomain "github.com/ecomprotect/sentinel/internal/exclusion/domain"
	notificationdomain "github.com/ecomprotect/sentinel/internal/notification/domain"
	"github.com/ecomprotect/sentinel/internal/observability"
	orderdomain "github.com/ecomprotect/sentinel/internal/order/domain"
	"github.com/ecomprotect/sentinel/internal/risk/domain"
	riskhistorydomain "github.com/ecomprotect/sentinel/internal/riskhistory/domain"
	settingsdomain "github.com/ecomprotect/sentinel/internal/settings/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// ScreenResult is the outcome of screening a newly created order.
type ScreenResult struct {
	Order         orderdomain.Order
	Evaluation    domain.Evaluation
	Flagged       bool
	ActionApplied *settingsdomain.ActionType
}

// Engine screens pending orders against the store's configured policy.
type Engine interface {
	Screen(ctx context.Context, orderID string) (ScreenResult, error)
}

type Params struct {
	fx.In

	Log        *zap.Logger
	Clock      clock.Clock
	Orders     orderdomain.Service
	Settings   settingsdomain.Service
	Exclusions exclusiondomain.Service
	History    riskhistorydomain.Service
	Notifier   notificationdomain.Service
	Metrics    *observability.Metrics
}

type engine struct {
	log        *zap.Logger
	clock      clock.Clock
	orders     orderdomain.Service
	settings   settingsdomain.Service
	exclusions exclusiondomain.Service
	history    riskhistorydomain.Service
	notifier   notificationdomain.Service
	metrics    *observability.Metrics
}

func New(p Params) Engine {
	return &engine{
		log:        p.Log.Named("risk.engine"),
		clock:      p.Clock,
		orders:     p.Orders,
		settings:   p.Settings,
		exclusions: p.Exclusions,
		history:    p.History,
		notifier:   p.Notifier,
		metrics:    p.Metrics,
	}
}

func (e *engine) Screen(ctx context.Context, orderID string) (ScreenResult, error) {
	start := e.clock.Now()
	defer func() {
		e.metrics.ObserveScreenLatency(e.clock.Now().Sub(start))
	}()

	order, err := e.orders.GetByID(ctx, orderID)
	if err != nil {
		return ScreenResult{}, err
	}
	if order.Status != orderdomain.StatusPending {
		return ScreenResult{Order: order}, domain.ErrNotPending
	}

	settings, err := e.settings.Get(ctx)
	if err != nil {
		return ScreenResult{}, err
	}

	eval, err := e.evaluate(ctx, order, settings)
	if err != nil {
		return ScreenResult{}, err
	}

	result := ScreenResult{Order: order, Evaluation: eval}
	if eval.HasLevel {
		e.metrics.IncrementEvaluation(string(eval.Level))
	} else {
		e.metrics.IncrementEvaluation("none")
	}

	if !eval.HasLevel || !eval.Level.AtLeast(domain.FlagFloor(settings.MatchSensitivity)) {
		if _, err := e.history.Recompute(ctx, order.CustomerEmail); err != nil {
			return ScreenResult{}, err
		}
		return result, nil
	}

	flagged, err := e.orders.Flag(ctx, orderID, orderdomain.FlagDetails{
		Score:  eval.Score,
		Level:  eval.Level,
		Reason: eval.Reason,
	})
	if err != nil {
		return ScreenResult{}, err
	}
	result.Order = flagged
	result.Flagged = true

	// A configured delay leaves the response to the ops workflow.
	if settings.ActionDelayHours == nil || *settings.ActionDelayHours <= 0 {
		acted, err := e.orders.ApplyAction(ctx, orderID, settings.ActionType, eval.Reason)
		if err != nil {
			return ScreenResult{}, err
		}
		result.Order = acted
		action := settings.ActionType
		result.ActionApplied = &action
	}

	e.notify(ctx, result.Order, settings, eval)

	if _, err := e.history.Recompute(ctx, order.CustomerEmail); err != nil {
		return ScreenResult{}, err
	}

	e.log.Info("order flagged",
		zap.String("order_id", orderID),
		zap.String("risk_level", string(eval.Level)),
		zap.Int("risk_score", eval.Score),
	)
	return result, nil
}

// evaluate runs the pure scoring over the exclusion check and the
// customer's existing aggregate.
func (e *engine) evaluate(ctx context.Context, order orderdomain.Order, settings settingsdomain.StoreSettings) (domain.Evaluation, error) {
	var address, phone string
	if order.CustomerAddress != nil {
		address = order.CustomerAddress.Data().Line()
	}
	if order.CustomerPhone != nil {
		phone = *order.CustomerPhone
	}

	excluded, err := e.exclusions.Match(ctx, order.CustomerEmail, address, phone)
	if err != nil {
		return domain.Evaluation{}, err
	}

	input := domain.EvaluationInput{
		Excluded:            excluded,
		LostParcelThreshold: settings.LostParcelThreshold,
		LossRateThreshold:   settings.LossRateThreshold,
		Sensitivity:         settings.MatchSensitivity,
	}
	history, err := e.history.Get(ctx, order.CustomerEmail)
	if err != nil {
		return domain.Evaluation{}, err
	}
	if history != nil {
		input.TotalOrders = history.TotalOrders
		input.LostOrders = history.LostOrders
	}

	return domain.Evaluate(input), nil
}

func (e *engine) notify(ctx context.Context, order orderdomain.Order, settings settingsdomain.StoreSettings, eval domain.Evaluation) {
	if !settings.EmailNotificationsEnabled {
		return
	}

	recipients := decodeRecipients(settings.NotificationRecipients)
	if len(recipients) == 0 {
		return
	}

	subject := fmt.Sprintf("Order %s flagged as %s risk", order.OrderNumber, eval.Level)
	content := buildNotificationContent(order, settings, eval)
	for _, recipient := range recipients {
		_, err := e.notifier.Enqueue(ctx, notificationdomain.EnqueueRequest{
			RecipientEmail: recipient,
			RecipientType:  notificationdomain.RecipientStoreAdmin,
			Subject:        subject,
			Content:        content,
		})
		if err != nil {
			// Notification rows are advisory; a failed write never undoes
			// the flag.
			e.log.Warn("notification enqueue failed",
				zap.String("order_id", order.ID.String()),
				zap.Error(err),
			)
		}
	}
}

func buildNotificationContent(order orderdomain.Order, settings settingsdomain.StoreSettings, eval domain.Evaluation) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Order %s was flagged with risk level %s (score %d).\n", order.OrderNumber, eval.Level, eval.Score)
	if settings.IncludeOrderDetails {
		fmt.Fprintf(&b, "Customer: %s %s <%s>\n", order.CustomerFirstName, order.CustomerLastName, order.CustomerEmail)
		fmt.Fprintf(&b, "Value: %.2f %s\n", order.OrderValue, order.Currency)
	}
	if settings.IncludeReasonForFlag && eval.Reason != "" {
		fmt.Fprintf(&b, "Reason: %s\n", eval.Reason)
	}
	if settings.IncludeRecommendedAction {
		fmt.Fprintf(&b, "Recommended action: %s\n", settings.ActionType)
	}
	return b.String()
}

func decodeRecipients(raw []byte) []string {
	if len(raw) == 0 {
		return nil
	}
	var recipients []string
	if err := json.Unmarshal(raw, &recipients); err != nil {
		return nil
	}
	out := recipients[:0]
	for _, r := range recipients {
		if trimmed := strings.TrimSpace(r); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
