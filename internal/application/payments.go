package application

import "github.com/example/tutor-scheduler/internal/persistence"

// SummarizePayments folds a lesson collection into per-status counts and
// amount totals.
//
// Every lesson counts toward Total regardless of status, but cancelled
// lessons are excluded from all amount fields, so
// PaidAmount + PendingAmount == TotalAmount always holds. Percentages are
// relative to Total and reported as zero for an empty collection.
func SummarizePayments(lessons []persistence.Lesson) PaymentSummary {
	summary := PaymentSummary{Total: len(lessons)}

	for _, lesson := range lessons {
		switch lesson.PaymentStatus {
		case persistence.PaymentPaid:
			summary.Paid++
			summary.PaidAmount += lesson.Price
			summary.TotalAmount += lesson.Price
		case persistence.PaymentCancelled:
			summary.Cancelled++
		default:
			summary.Pending++
			summary.PendingAmount += lesson.Price
			summary.TotalAmount += lesson.Price
		}
	}

	if summary.Total > 0 {
		summary.PaidPercent = float64(summary.Paid) / float64(summary.Total) * 100
		summary.PendingPercent = float64(summary.Pending) / float64(summary.Total) * 100
	}
	return summary
}
