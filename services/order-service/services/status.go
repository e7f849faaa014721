package services

import "github.com/Khizarkk7/storefront-backend/services/order-service/models"

var transitions = map[string][]string{
	models.StatusPendingPayment: {models.StatusConfirmed, models.StatusCancelled},
	models.StatusPendingCOD:     {models.StatusConfirmed, models.StatusCancelled},
	models.StatusConfirmed:      {models.StatusProcessing, models.StatusCancelled},
	models.StatusProcessing:     {models.StatusShipped, models.StatusCancelled},
	models.StatusShipped:        {models.StatusDelivered},
}

// CanTransition reports whether an order may move from one status to
// another. Delivered and cancelled are terminal.
func CanTransition(from, to string) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Customers and shop admins may cancel only before processing starts.
var cancellable = map[string]bool{
	models.StatusPendingPayment: true,
	models.StatusPendingCOD:     true,
	models.StatusConfirmed:      true,
}

func ValidStatus(s string) bool {
	switch s {
	case models.StatusPendingPayment, models.StatusPendingCOD, models.StatusConfirmed,
		models.StatusProcessing, models.StatusShipped, models.StatusDelivered, models.StatusCancelled:
		return true
	}
	return false
}

// paymentBranch maps a payment method to the initial order and payment
// status. ok is false for unknown methods.
func paymentBranch(method string) (orderStatus, paymentStatus string, requiresPayment, ok bool) {
	switch method {
	case models.MethodCOD:
		return models.StatusPendingCOD, models.PaymentPendingCOD, false, true
	case models.MethodCard, models.MethodJazzCash, models.MethodEasypaisa:
		return models.StatusPendingPayment, models.PaymentPending, true, true
	}
	return "", "", false, false
}
