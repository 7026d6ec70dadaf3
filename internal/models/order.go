package models

// Pricing holds the shared fees applied to every order total. One
// instance is created at startup and injected into each order; it is
// written only during startup, never during request handling.
type Pricing struct {
	DeliveryFee    float64
	ServiceFeeRate float64
}

// StatusObserver is notified synchronously whenever an order's status
// is set. Observers are stateless; the order only holds a reference.
type StatusObserver interface {
	Update(order *Order)
}

// Order is the aggregate representing one customer purchase: its
// lines, lifecycle status, discount policy and attached observers.
// Derived values (subtotal, discount, final total) are recomputed on
// every call and never cached, so replacing the policy or adding lines
// after construction changes the next query consistently.
type Order struct {
	id        int
	lines     []OrderLine
	status    OrderStatus
	policy    DiscountPolicy
	observers []StatusObserver
	pricing   *Pricing
}

// NewOrder creates an order in status NEW with no discount
func NewOrder(id int, pricing *Pricing) *Order {
	return &Order{
		id:      id,
		status:  StatusNew,
		policy:  NoDiscount{},
		pricing: pricing,
	}
}

// ID returns the order identifier assigned by the store
func (o *Order) ID() int {
	return o.id
}

// Status returns the current lifecycle status
func (o *Order) Status() OrderStatus {
	return o.status
}

// Lines returns the order lines in insertion order
func (o *Order) Lines() []OrderLine {
	return o.lines
}

// AddLine appends a line for the given item. There is no upper bound
// on lines or quantity, and non-positive quantities are accepted.
func (o *Order) AddLine(item MenuItem, quantity int) {
	o.lines = append(o.lines, OrderLine{Item: item, Quantity: quantity})
}

// Subtotal returns the sum of all line totals
func (o *Order) Subtotal() float64 {
	total := 0.0
	for _, line := range o.lines {
		total += line.LineTotal()
	}
	return total
}

// Discount returns the discount computed by the current policy
func (o *Order) Discount() float64 {
	return o.policy.ComputeDiscount(o)
}

// TotalFinal returns subtotal plus service fee and delivery fee minus
// the discount. The result is not clamped at zero.
func (o *Order) TotalFinal() float64 {
	serviceFee := o.Subtotal() * o.pricing.ServiceFeeRate
	return o.Subtotal() + serviceFee + o.pricing.DeliveryFee - o.Discount()
}

// SetDiscountPolicy replaces the order's discount policy wholesale;
// it takes effect on the next Discount or TotalFinal call.
func (o *Order) SetDiscountPolicy(policy DiscountPolicy) {
	o.policy = policy
}

// DiscountPolicy returns the currently attached policy
func (o *Order) DiscountPolicy() DiscountPolicy {
	return o.policy
}

// Attach appends an observer. Attaching the same observer twice is
// allowed and yields two notifications per transition.
func (o *Order) Attach(observer StatusObserver) {
	o.observers = append(o.observers, observer)
}

// Detach removes the first matching observer. Detaching an observer
// that was never attached is a no-op.
func (o *Order) Detach(observer StatusObserver) {
	for i, obs := range o.observers {
		if obs == observer {
			o.observers = append(o.observers[:i], o.observers[i+1:]...)
			return
		}
	}
}

// ObserverCount returns the number of attached observers
func (o *Order) ObserverCount() int {
	return len(o.observers)
}

// SetStatus overwrites the status unconditionally and then notifies
// every attached observer synchronously, in attachment order. Every
// status is reachable from every other, and re-setting the current
// status notifies again.
func (o *Order) SetStatus(status OrderStatus) {
	o.status = status
	for _, obs := range o.observers {
		obs.Update(o)
	}
}

// LineSnapshot is the serializable view of one order line
type LineSnapshot struct {
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
	Total    float64 `json:"total"`
}

// OrderSnapshot is the serializable view of an order with its
// computed totals.
type OrderSnapshot struct {
	ID         int            `json:"id"`
	Status     string         `json:"status"`
	Items      []LineSnapshot `json:"items"`
	Subtotal   float64        `json:"subtotal"`
	Discount   float64        `json:"discount"`
	TotalFinal float64        `json:"total_final"`
}

// Snapshot returns the serializable view of the order
func (o *Order) Snapshot() OrderSnapshot {
	items := make([]LineSnapshot, 0, len(o.lines))
	for _, line := range o.lines {
		items = append(items, LineSnapshot{
			Name:     line.Item.Name,
			Price:    line.Item.Price,
			Quantity: line.Quantity,
			Total:    line.LineTotal(),
		})
	}
	return OrderSnapshot{
		ID:         o.id,
		Status:     string(o.status),
		Items:      items,
		Subtotal:   o.Subtotal(),
		Discount:   o.Discount(),
		TotalFinal: o.TotalFinal(),
	}
}
