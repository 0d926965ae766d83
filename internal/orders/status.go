package orders

import (
	"slices"

	"patchwork_back_end/internal/models"
)

// transitions liste les statuts atteignables depuis chaque statut.
// Les statuts absents (rejected, cancelled, refunded) sont terminaux.
var transitions = map[string][]string{
	models.OrderPendingReview: {models.OrderApproved, models.OrderRejected, models.OrderCancelled},
	models.OrderApproved:      {models.OrderInProduction, models.OrderCancelled, models.OrderRefunded},
	models.OrderInProduction:  {models.OrderShipped, models.OrderRefunded},
	models.OrderShipped:       {models.OrderDelivered, models.OrderRefunded},
	models.OrderDelivered:     {models.OrderRefunded},
}

var knownStatuses = []string{
	models.OrderPendingReview, models.OrderApproved, models.OrderRejected, models.OrderInProduction,
	models.OrderShipped, models.OrderDelivered, models.OrderCancelled, models.OrderRefunded,
}

func CanTransition(from, to string) bool {
	return slices.Contains(transitions[from], to)
}

func IsKnownStatus(status string) bool {
	return slices.Contains(knownStatuses, status)
}

// Refundable indique si un remboursement peut être demandé pour ce statut
func Refundable(status string) bool {
	return CanTransition(status, models.OrderRefunded)
}
