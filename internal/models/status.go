package models

import "fmt"

// OrderStatus represents the lifecycle status of an order
type OrderStatus string

const (
	StatusNew            OrderStatus = "NEW"
	StatusPreparing      OrderStatus = "PREPARING"
	StatusOutForDelivery OrderStatus = "OUT_FOR_DELIVERY"
	StatusDelivered      OrderStatus = "DELIVERED"
)

// ErrInvalidStatus is returned when a status name does not match one
// of the enumerated values.
type ErrInvalidStatus struct {
	Name string
}

func (e *ErrInvalidStatus) Error() string {
	return fmt.Sprintf("invalid status: %s", e.Name)
}

// ParseStatus maps a status name to its OrderStatus value. Names must
// match one of the four enumerated values exactly.
func ParseStatus(name string) (OrderStatus, error) {
	switch OrderStatus(name) {
	case StatusNew, StatusPreparing, StatusOutForDelivery, StatusDelivered:
		return OrderStatus(name), nil
	default:
		return "", &ErrInvalidStatus{Name: name}
	}
}
