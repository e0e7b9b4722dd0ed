// Package orderrepo maps order aggregates to the orders table.
package orderrepo

import (
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"

	"github.com/google/uuid"
)

// OrderDTO is the row layout of an order. Details are flattened into
// prefixed columns so the summary query can aggregate over cost.
type OrderDTO struct {
	ID              uuid.UUID   `gorm:"type:uuid;primaryKey"`
	Customer        CustomerDTO `gorm:"embedded;embeddedPrefix:customer_"`
	PickupAddress   string
	DeliveryAddress string
	Cargo           CargoDTO `gorm:"embedded;embeddedPrefix:cargo_"`
	Priority        string   `gorm:"size:16"`
	Distance        float64
	Cost            float64
	Notes           string
	Status          int        `gorm:"index"`
	VehicleID       *uuid.UUID `gorm:"type:uuid;index"`
	DriverID        *uuid.UUID `gorm:"type:uuid;index"`
	Version         int64
}

func (OrderDTO) TableName() string {
	return "orders"
}

type CustomerDTO struct {
	Name    string
	Phone   string
	Email   string
	Address string
}

type CargoDTO struct {
	Description string
	Weight      float64
	Quantity    int
}

func fromDomain(o *order.Order) OrderDTO {
	details := o.Details()

	return OrderDTO{
		ID: o.ID().Bytes(),
		Customer: CustomerDTO{
			Name:    details.Customer.Name,
			Phone:   details.Customer.Phone,
			Email:   details.Customer.Email,
			Address: details.Customer.Address,
		},
		PickupAddress:   details.PickupAddress,
		DeliveryAddress: details.DeliveryAddress,
		Cargo: CargoDTO{
			Description: details.Cargo.Description,
			Weight:      details.Cargo.Weight,
			Quantity:    details.Cargo.Quantity,
		},
		Priority:  string(details.Priority),
		Distance:  details.Distance,
		Cost:      details.Cost,
		Notes:     details.Notes,
		Status:    int(o.Status()),
		VehicleID: nullableID(o.AssignedVehicle()),
		DriverID:  nullableID(o.AssignedDriver()),
		Version:   o.Version(),
	}
}

// toDomain rebuilds the aggregate through RestoreOrder, so a row that breaks
// the status/assignment rule is rejected.
func toDomain(dto OrderDTO) (*order.Order, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	vehicleID, err := fromNullableID(dto.VehicleID)
	if err != nil {
		return nil, err
	}
	driverID, err := fromNullableID(dto.DriverID)
	if err != nil {
		return nil, err
	}

	details := order.Details{
		Customer: order.Customer{
			Name:    dto.Customer.Name,
			Phone:   dto.Customer.Phone,
			Email:   dto.Customer.Email,
			Address: dto.Customer.Address,
		},
		PickupAddress:   dto.PickupAddress,
		DeliveryAddress: dto.DeliveryAddress,
		Cargo: order.Cargo{
			Description: dto.Cargo.Description,
			Weight:      dto.Cargo.Weight,
			Quantity:    dto.Cargo.Quantity,
		},
		Priority: order.Priority(dto.Priority),
		Distance: dto.Distance,
		Cost:     dto.Cost,
		Notes:    dto.Notes,
	}

	return order.RestoreOrder(id, details, order.Status(dto.Status), vehicleID, driverID, dto.Version)
}

func nullableID(id kernel.UUID) *uuid.UUID {
	if id.IsZero() {
		return nil
	}
	raw := id.Bytes()
	return &raw
}

func fromNullableID(raw *uuid.UUID) (kernel.UUID, error) {
	if raw == nil {
		return kernel.UUID{}, nil
	}
	return kernel.UUIDFromBytes(raw[:])
}
