package domain

// RequestStatistics summarizes the request collection.
type RequestStatistics struct {
	Total       int64 `json:"total"`
	Pending     int64 `json:"pending"`
	UnderReview int64 `json:"underReview"`
	Approved    int64 `json:"approved"`
	Rejected    int64 `json:"rejected"`
	Paid        int64 `json:"paid"`
	Unpaid      int64 `json:"unpaid"`

	PendingRate     float64 `json:"pendingRate"`
	UnderReviewRate float64 `json:"underReviewRate"`
	ApprovedRate    float64 `json:"approvedRate"`
	RejectedRate    float64 `json:"rejectedRate"`
	PaidRate        float64 `json:"paidRate"`
}

// Add accounts for count requests with the given status and payment flag.
func (s *RequestStatistics) Add(status RequestStatus, paid bool, count int64) {
	s.Total += count
	switch status {
	case RequestStatusPending:
		s.Pending += count
	case RequestStatusUnderReview:
		s.UnderReview += count
	case RequestStatusApproved:
		s.Approved += count
	case RequestStatusRejected:
		s.Rejected += count
	}
	if paid {
		s.Paid += count
	} else {
		s.Unpaid += count
	}
}

// ComputeRates fills the percentage fields. All rates are 0 when Total is 0.
func (s *RequestStatistics) ComputeRates() {
	s.PendingRate = percent(s.Pending, s.Total)
	s.UnderReviewRate = percent(s.UnderReview, s.Total)
	s.ApprovedRate = percent(s.Approved, s.Total)
	s.RejectedRate = percent(s.Rejected, s.Total)
	s.PaidRate = percent(s.Paid, s.Total)
}

func percent(part, total int64) float64 {
	if total <= 0 {
		return 0
	}
	return float64(part) * 100 / float64(total)
}
