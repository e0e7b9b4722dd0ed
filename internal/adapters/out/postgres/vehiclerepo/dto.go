// Package vehiclerepo maps vehicles to the vehicles table.
package vehiclerepo

import (
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/vehicle"

	"github.com/google/uuid"
)

type VehicleDTO struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey"`
	PlateNumber     string    `gorm:"size:32;uniqueIndex"`
	Make            string
	Model           string
	Year            int
	Type            string `gorm:"size:16"`
	Capacity        float64
	CapacityUnit    string `gorm:"size:8"`
	FuelType        string `gorm:"size:16"`
	FuelConsumption float64
	Mileage         float64
	Status          int        `gorm:"index"`
	DriverID        *uuid.UUID `gorm:"type:uuid"`
	OrderID         *uuid.UUID `gorm:"type:uuid"`
	Version         int64
}

func (VehicleDTO) TableName() string {
	return "vehicles"
}

func fromDomain(v *vehicle.Vehicle) VehicleDTO {
	specs := v.Specs()

	return VehicleDTO{
		ID:              v.ID().Bytes(),
		PlateNumber:     specs.PlateNumber,
		Make:            specs.Make,
		Model:           specs.Model,
		Year:            specs.Year,
		Type:            string(specs.Type),
		Capacity:        specs.Capacity,
		CapacityUnit:    string(specs.CapacityUnit),
		FuelType:        string(specs.FuelType),
		FuelConsumption: specs.FuelConsumption,
		Mileage:         specs.Mileage,
		Status:          int(v.Status()),
		DriverID:        nullableID(v.AssignedDriver()),
		OrderID:         nullableID(v.ActiveOrder()),
		Version:         v.Version(),
	}
}

func toDomain(dto VehicleDTO) (*vehicle.Vehicle, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	driverID, err := fromNullableID(dto.DriverID)
	if err != nil {
		return nil, err
	}
	orderID, err := fromNullableID(dto.OrderID)
	if err != nil {
		return nil, err
	}

	specs := vehicle.Specs{
		PlateNumber:     dto.PlateNumber,
		Make:            dto.Make,
		Model:           dto.Model,
		Year:            dto.Year,
		Type:            vehicle.Type(dto.Type),
		Capacity:        dto.Capacity,
		CapacityUnit:    vehicle.CapacityUnit(dto.CapacityUnit),
		FuelType:        vehicle.FuelType(dto.FuelType),
		FuelConsumption: dto.FuelConsumption,
		Mileage:         dto.Mileage,
	}

	return vehicle.RestoreVehicle(id, specs, vehicle.Status(dto.Status), driverID, orderID, dto.Version)
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
