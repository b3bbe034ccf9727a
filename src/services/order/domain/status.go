package domain

import "fmt"

// Status is the preparation state of an order. Only the package-level values
// exist; the zero Status is invalid.
type Status struct {
	name string
}

var (
	StatusPending   = Status{"pending"}
	StatusPreparing = Status{"preparing"}
	StatusReady     = Status{"ready"}
	StatusServed    = Status{"served"}
	StatusCancelled = Status{"cancelled"}
)

var statuses = []Status{StatusPending, StatusPreparing, StatusReady, StatusServed, StatusCancelled}

// Statuses returns every valid status in lifecycle order.
func Statuses() []Status {
	return append([]Status(nil), statuses...)
}

func ParseStatus(name string) (Status, error) {
	for _, s := range statuses {
		if s.name == name {
			return s, nil
		}
	}
	return Status{}, fmt.Errorf("unknown order status %q", name)
}

func (s Status) String() string { return s.name }

func (s Status) IsValid() bool { return s.name != "" }

// Terminal reports whether no transition leaves s.
func (s Status) Terminal() bool {
	return s.IsValid() && len(transitions[s]) == 0
}

func (s Status) MarshalText() ([]byte, error) {
	if !s.IsValid() {
		return nil, fmt.Errorf("cannot marshal invalid order status")
	}
	return []byte(s.name), nil
}

func (s *Status) UnmarshalText(text []byte) error {
	parsed, err := ParseStatus(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// PaymentStatus is independent of Status.
type PaymentStatus struct {
	name string
}

var (
	PaymentUnpaid = PaymentStatus{"unpaid"}
	PaymentPaid   = PaymentStatus{"paid"}
)

func ParsePaymentStatus(name string) (PaymentStatus, error) {
	switch name {
	case PaymentUnpaid.name:
		return PaymentUnpaid, nil
	case PaymentPaid.name:
		return PaymentPaid, nil
	}
	return PaymentStatus{}, fmt.Errorf("unknown payment status %q", name)
}

// PaymentStatusOf maps the paid flag used by callers onto the variant.
func PaymentStatusOf(paid bool) PaymentStatus {
	if paid {
		return PaymentPaid
	}
	return PaymentUnpaid
}

func (p PaymentStatus) String() string { return p.name }

func (p PaymentStatus) IsValid() bool { return p.name != "" }

func (p PaymentStatus) MarshalText() ([]byte, error) {
	if !p.IsValid() {
		return nil, fmt.Errorf("cannot marshal invalid payment status")
	}
	return []byte(p.name), nil
}

func (p *PaymentStatus) UnmarshalText(text []byte) error {
	parsed, err := ParsePaymentStatus(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}
