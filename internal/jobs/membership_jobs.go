package jobs

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"mutuelle-membership/internal/domain"
	"mutuelle-membership/internal/logger"
)

// maxListedRequests caps how many request ids one notification spells out.
const maxListedRequests = 20

// NotifyStaleCorrectionCodes raises one admin notification listing requests
// under review whose correction code can no longer be used.
func (jr *JobRunner) NotifyStaleCorrectionCodes() {
	jr.runWithRecovery("NotifyStaleCorrectionCodes", func(ctx context.Context) {
		requests, err := jr.requests.ListByStatus(ctx, domain.RequestStatusUnderReview)
		if err != nil {
			logger.Error("Failed to list requests under review", "error", err)
			return
		}

		now := jr.now()
		var expired, used []string
		for i := range requests {
			req := &requests[i]
			switch domain.CheckCode(req, "", now) {
			case domain.CodeCheckAlreadyUsed:
				used = append(used, req.ID)
			case domain.CodeCheckExpired:
				expired = append(expired, req.ID)
			}
		}

		stale := len(expired) + len(used)
		logger.Info("Scanned correction codes",
			"under_review", len(requests),
			"expired", len(expired),
			"used", len(used))
		if stale == 0 {
			return
		}

		ids := append(append([]string{}, expired...), used...)
		sort.Strings(ids)
		listed := ids
		if len(listed) > maxListedRequests {
			listed = listed[:maxListedRequests]
		}

		message := fmt.Sprintf("%d request(s) under review need a new security code: %s",
			stale, strings.Join(listed, ", "))
		if len(ids) > len(listed) {
			message += fmt.Sprintf(" and %d more", len(ids)-len(listed))
		}

		metadata := map[string]string{
			"expired":     fmt.Sprintf("%d", len(expired)),
			"used":        fmt.Sprintf("%d", len(used)),
			"request_ids": strings.Join(ids, ","),
		}
		err = jr.notifier.CreateNotification(ctx,
			domain.NotificationModuleMembership,
			"",
			domain.NotificationTypeStaleCodes,
			"Security codes to renew",
			message,
			metadata)
		if err != nil {
			logger.Error("Failed to create stale code notification", "count", stale, "error", err)
			return
		}
		logger.Info("Stale correction codes reported", "count", stale)
	})
}

// LogRequestStatistics logs the current request counters.
func (jr *JobRunner) LogRequestStatistics() {
	jr.runWithRecovery("LogRequestStatistics", func(ctx context.Context) {
		stats, err := jr.requests.GetStatistics(ctx)
		if err != nil {
			logger.Error("Failed to load request statistics", "error", err)
			return
		}
		logger.Info("Membership request statistics",
			"total", stats.Total,
			"pending", stats.Pending,
			"under_review", stats.UnderReview,
			"approved", stats.Approved,
			"rejected", stats.Rejected,
			"paid", stats.Paid,
			"unpaid", stats.Unpaid,
			"approved_rate", stats.ApprovedRate,
			"paid_rate", stats.PaidRate)
	})
}
