package service

import (
	"context"

	"shelfsense_backend/internal/alerts/domain"

	"golang.org/x/sync/errgroup"
)

// notifyOutcomes delivers notifications for the alerts a committed batch
// produced: the assigned staff member (when still active) and every active
// manager-class employee. Delivery is fire-and-forget — failures are logged
// and swallowed, and the committed alerts are never affected. Updates only
// notify when the policy opts in.
func (s *Service) notifyOutcomes(ctx context.Context, outcomes []rackOutcome) {
	if s.dispatcher == nil {
		return
	}

	// Detached from the request context: delivery must not be cancelled by
	// the caller going away after the batch committed.
	ctx = context.WithoutCancel(ctx)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)

	for i := range outcomes {
		outcome := outcomes[i]
		if !outcome.created && !s.policy.NotifyOnUpdate {
			continue
		}

		recipients := s.alertRecipients(gctx, outcome.alert)
		if len(recipients) == 0 {
			continue
		}

		for _, recipient := range recipients {
			recipient := recipient
			alert := outcome.alert
			g.Go(func() error {
				if err := s.dispatcher.Notify(gctx, recipient, alert); err != nil {
					s.log.NotifyError(recipient, alert.ID, err)
				}
				return nil
			})
		}

		if err := s.store.SetNotified(ctx, outcome.alert.ID, recipients); err != nil {
			s.log.DatabaseError("alerts.notify.set_notified", err)
		}
	}

	_ = g.Wait()
}

// alertRecipients computes who should hear about an alert. Directory
// failures degrade to a smaller recipient set rather than failing delivery.
func (s *Service) alertRecipients(ctx context.Context, alert domain.Alert) []string {
	if s.directory == nil {
		return nil
	}

	seen := make(map[string]bool)
	var recipients []string

	if alert.AssignedStaffID != nil {
		active, err := s.directory.IsActive(ctx, *alert.AssignedStaffID)
		if err != nil {
			s.log.Warn("assigned staff lookup failed", "employee_id", *alert.AssignedStaffID, "error", err)
		} else if active {
			seen[*alert.AssignedStaffID] = true
			recipients = append(recipients, *alert.AssignedStaffID)
		}
	}

	managers, err := s.directory.ActiveManagerIDs(ctx)
	if err != nil {
		s.log.Warn("manager directory lookup failed", "error", err)
		return recipients
	}
	for _, id := range managers {
		if !seen[id] {
			seen[id] = true
			recipients = append(recipients, id)
		}
	}

	return recipients
}
