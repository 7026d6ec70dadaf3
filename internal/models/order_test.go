package models

import (
	"math"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestSubtotal(t *testing.T) {
	pricing := &Pricing{DeliveryFee: 5.0, ServiceFeeRate: 0.10}

	t.Run("empty order", func(t *testing.T) {
		o := NewOrder(1, pricing)
		if got := o.Subtotal(); got != 0 {
			t.Errorf("Subtotal() = %v, want 0", got)
		}
	})

	t.Run("sums line totals", func(t *testing.T) {
		o := NewOrder(1, pricing)
		o.AddLine(MenuItem{Name: "Margherita", Price: 30.0}, 1)
		o.AddLine(MenuItem{Name: "Calabresa", Price: 35.0}, 2)
		if got := o.Subtotal(); got != 100.0 {
			t.Errorf("Subtotal() = %v, want 100", got)
		}
	})

	t.Run("zero and negative quantities accepted", func(t *testing.T) {
		o := NewOrder(1, pricing)
		o.AddLine(MenuItem{Name: "Margherita", Price: 30.0}, 0)
		o.AddLine(MenuItem{Name: "Calabresa", Price: 35.0}, -1)
		if got := o.Subtotal(); got != -35.0 {
			t.Errorf("Subtotal() = %v, want -35", got)
		}
	})
}

func TestTotalFinal(t *testing.T) {
	tests := []struct {
		name    string
		pricing Pricing
		policy  DiscountPolicy
		want    float64
	}{
		{
			name:    "default fees no discount",
			pricing: Pricing{DeliveryFee: 5.0, ServiceFeeRate: 0.10},
			policy:  NoDiscount{},
			want:    100 + 10 + 5,
		},
		{
			name:    "overridden fees with percentage coupon",
			pricing: Pricing{DeliveryFee: 7.0, ServiceFeeRate: 0.08},
			policy:  PercentageCoupon{Rate: 0.1},
			want:    100 + 8.0 + 7.0 - 10.0,
		},
		{
			name:    "minimum spend reached",
			pricing: Pricing{DeliveryFee: 5.0, ServiceFeeRate: 0.10},
			policy:  MinimumSpend{Threshold: 100, Amount: 10},
			want:    100 + 10 + 5 - 10,
		},
		{
			name:    "discount may drive total negative",
			pricing: Pricing{DeliveryFee: 5.0, ServiceFeeRate: 0.10},
			policy:  PercentageCoupon{Rate: 2.0},
			want:    100 + 10 + 5 - 200,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pricing := tt.pricing
			o := NewOrder(1, &pricing)
			o.AddLine(MenuItem{Name: "Margherita", Price: 30.0}, 1)
			o.AddLine(MenuItem{Name: "Calabresa", Price: 35.0}, 2)
			o.SetDiscountPolicy(tt.policy)
			if got := o.TotalFinal(); !almostEqual(got, tt.want) {
				t.Errorf("TotalFinal() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDerivedValuesNeverCached(t *testing.T) {
	pricing := &Pricing{DeliveryFee: 5.0, ServiceFeeRate: 0.10}
	o := NewOrder(1, pricing)
	o.AddLine(MenuItem{Name: "Margherita", Price: 30.0}, 1)
	o.SetDiscountPolicy(PercentageCoupon{Rate: 0.1})

	if got := o.Discount(); !almostEqual(got, 3.0) {
		t.Fatalf("Discount() = %v, want 3", got)
	}

	// Adding a line after the first query must change the next result.
	o.AddLine(MenuItem{Name: "Calabresa", Price: 35.0}, 2)
	if got := o.Discount(); !almostEqual(got, 10.0) {
		t.Errorf("Discount() after AddLine = %v, want 10", got)
	}

	// Replacing the policy takes effect without rebuilding the order.
	o.SetDiscountPolicy(MinimumSpend{Threshold: 100, Amount: 25})
	if got := o.Discount(); !almostEqual(got, 25.0) {
		t.Errorf("Discount() after policy replacement = %v, want 25", got)
	}
	if got := o.TotalFinal(); !almostEqual(got, 100+10+5-25) {
		t.Errorf("TotalFinal() after policy replacement = %v, want 90", got)
	}
}

// recordingObserver records the statuses it sees, tagged with an id so
// notification order can be asserted.
type recordingObserver struct {
	id   string
	seen *[]string
}

func (r *recordingObserver) Update(order *Order) {
	*r.seen = append(*r.seen, r.id+":"+string(order.Status()))
}

func TestSetStatusNotifiesInAttachmentOrder(t *testing.T) {
	pricing := &Pricing{DeliveryFee: 5.0, ServiceFeeRate: 0.10}
	o := NewOrder(7, pricing)

	var seen []string
	first := &recordingObserver{id: "kitchen", seen: &seen}
	second := &recordingObserver{id: "customer", seen: &seen}
	o.Attach(first)
	o.Attach(second)

	o.SetStatus(StatusPreparing)

	want := []string{"kitchen:PREPARING", "customer:PREPARING"}
	if len(seen) != len(want) {
		t.Fatalf("observers saw %v, want %v", seen, want)
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Errorf("notification %d = %q, want %q", i, seen[i], want[i])
		}
	}
}

func TestSetStatusRepeatedStatusNotifiesAgain(t *testing.T) {
	pricing := &Pricing{DeliveryFee: 5.0, ServiceFeeRate: 0.10}
	o := NewOrder(7, pricing)

	var seen []string
	o.Attach(&recordingObserver{id: "obs", seen: &seen})

	o.SetStatus(StatusPreparing)
	o.SetStatus(StatusPreparing)

	if len(seen) != 2 {
		t.Errorf("observer notified %d times, want 2", len(seen))
	}
}

func TestAttachSameObserverTwice(t *testing.T) {
	pricing := &Pricing{DeliveryFee: 5.0, ServiceFeeRate: 0.10}
	o := NewOrder(7, pricing)

	var seen []string
	obs := &recordingObserver{id: "obs", seen: &seen}
	o.Attach(obs)
	o.Attach(obs)

	o.SetStatus(StatusDelivered)

	if len(seen) != 2 {
		t.Errorf("doubly attached observer notified %d times, want 2", len(seen))
	}
}

func TestDetach(t *testing.T) {
	pricing := &Pricing{DeliveryFee: 5.0, ServiceFeeRate: 0.10}
	o := NewOrder(7, pricing)

	var seen []string
	attached := &recordingObserver{id: "attached", seen: &seen}
	stranger := &recordingObserver{id: "stranger", seen: &seen}
	o.Attach(attached)

	// Detaching an observer that was never attached is a no-op.
	o.Detach(stranger)
	o.SetStatus(StatusPreparing)
	if len(seen) != 1 {
		t.Fatalf("observer notified %d times after stranger detach, want 1", len(seen))
	}

	o.Detach(attached)
	o.SetStatus(StatusDelivered)
	if len(seen) != 1 {
		t.Errorf("detached observer still notified: %v", seen)
	}
}

func TestStatusTransitionsUnrestricted(t *testing.T) {
	pricing := &Pricing{DeliveryFee: 5.0, ServiceFeeRate: 0.10}
	o := NewOrder(7, pricing)

	if o.Status() != StatusNew {
		t.Fatalf("initial status = %v, want NEW", o.Status())
	}

	// Every status is reachable from every other, including regressing
	// from DELIVERED.
	o.SetStatus(StatusDelivered)
	o.SetStatus(StatusNew)
	if o.Status() != StatusNew {
		t.Errorf("status after regression = %v, want NEW", o.Status())
	}
}

func TestSnapshot(t *testing.T) {
	pricing := &Pricing{DeliveryFee: 7.0, ServiceFeeRate: 0.08}
	o := NewOrder(42, pricing)
	o.AddLine(MenuItem{Name: "Margherita", Price: 30.0}, 1)
	o.AddLine(MenuItem{Name: "Calabresa", Price: 35.0}, 2)
	o.SetDiscountPolicy(PercentageCoupon{Rate: 0.1})

	snap := o.Snapshot()
	if snap.ID != 42 {
		t.Errorf("snapshot id = %d, want 42", snap.ID)
	}
	if snap.Status != "NEW" {
		t.Errorf("snapshot status = %q, want NEW", snap.Status)
	}
	if len(snap.Items) != 2 {
		t.Fatalf("snapshot has %d items, want 2", len(snap.Items))
	}
	if snap.Items[1].Total != 70.0 {
		t.Errorf("second line total = %v, want 70", snap.Items[1].Total)
	}
	if snap.Subtotal != 100.0 {
		t.Errorf("snapshot subtotal = %v, want 100", snap.Subtotal)
	}
	if !almostEqual(snap.Discount, 10.0) {
		t.Errorf("snapshot discount = %v, want 10", snap.Discount)
	}
	if !almostEqual(snap.TotalFinal, 105.0) {
		t.Errorf("snapshot total_final = %v, want 105", snap.TotalFinal)
	}
}
