package orderRepo

import "meserte/models"

// OrderRepository is the billing core's view of the food-ordering
// collaborator. Order creation and menu management live elsewhere; billing
// only reads pending room-service charges and settles them at checkout.
type OrderRepository interface {
	// FindPendingChargesForRoom returns the room's food orders that are still
	// payment-pending.
	FindPendingChargesForRoom(roomNumber string) ([]models.FoodOrder, error)
	// MarkChargesSettled flips all of the room's pending food orders to
	// payment-completed.
	MarkChargesSettled(roomNumber string) error
}
