package order

import (
	"errors"
	"fmt"
	"strings"

	"dispatch/internal/pkg/errs"
)

// Priority ranks orders for dispatchers. It has no effect on the lifecycle.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// Validate rejects unknown priorities.
func (p Priority) Validate() error {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return nil
	default:
		return errs.NewValueIsInvalidErrorWithCause("priority", fmt.Errorf("%q is not a valid priority", string(p)))
	}
}

// Customer is the party receiving the delivery.
type Customer struct {
	Name    string `json:"name"`
	Phone   string `json:"phone,omitempty"`
	Email   string `json:"email,omitempty"`
	Address string `json:"address,omitempty"`
}

// Cargo describes what is being moved.
type Cargo struct {
	Description string  `json:"description,omitempty"`
	Weight      float64 `json:"weight"`
	Quantity    int     `json:"quantity"`
}

// Details holds the customer and cargo attributes of an order. They are set at
// creation and never change afterwards.
type Details struct {
	Customer        Customer `json:"customer"`
	PickupAddress   string   `json:"pickupAddress"`
	DeliveryAddress string   `json:"deliveryAddress"`
	Cargo           Cargo    `json:"cargo"`
	Priority        Priority `json:"priority"`
	Distance        float64  `json:"distance"`
	Cost            float64  `json:"cost"`
	Notes           string   `json:"notes,omitempty"`
}

// Normalize trims text fields and defaults an empty priority to medium.
func (d Details) Normalize() Details {
	d.Customer.Name = strings.TrimSpace(d.Customer.Name)
	d.PickupAddress = strings.TrimSpace(d.PickupAddress)
	d.DeliveryAddress = strings.TrimSpace(d.DeliveryAddress)
	if d.Priority == "" {
		d.Priority = PriorityMedium
	}
	return d
}

// Validate checks every attribute and reports all problems at once.
func (d Details) Validate() error {
	var problems []error

	if d.Customer.Name == "" {
		problems = append(problems, errs.NewValueIsRequiredError("customer.name"))
	}
	if d.PickupAddress == "" {
		problems = append(problems, errs.NewValueIsRequiredError("pickupAddress"))
	}
	if d.DeliveryAddress == "" {
		problems = append(problems, errs.NewValueIsRequiredError("deliveryAddress"))
	}
	if d.Cargo.Weight < 0 {
		problems = append(problems, errs.NewValueIsInvalidErrorWithCause(
			"cargo.weight", fmt.Errorf("%v is negative", d.Cargo.Weight)))
	}
	if d.Cargo.Quantity < 1 {
		problems = append(problems, errs.NewValueIsInvalidErrorWithCause(
			"cargo.quantity", fmt.Errorf("%d is not greater than 0", d.Cargo.Quantity)))
	}
	if d.Distance < 0 {
		problems = append(problems, errs.NewValueIsInvalidErrorWithCause(
			"distance", fmt.Errorf("%v is negative", d.Distance)))
	}
	if d.Cost < 0 {
		problems = append(problems, errs.NewValueIsInvalidErrorWithCause(
			"cost", fmt.Errorf("%v is negative", d.Cost)))
	}
	problems = append(problems, d.Priority.Validate())

	return errors.Join(problems...)
}
