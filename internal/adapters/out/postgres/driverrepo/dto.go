// Package driverrepo maps drivers to the drivers table.
package driverrepo

import (
	"time"

	"dispatch/internal/core/domain/model/driver"
	"dispatch/internal/core/domain/model/kernel"

	"github.com/google/uuid"
)

type DriverDTO struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name            string
	Phone           string
	LicenseNumber   string `gorm:"size:64;uniqueIndex"`
	LicenseType     string `gorm:"size:16"`
	LicenseExpiry   time.Time
	ExperienceYears int
	Rating          float64
	Status          int        `gorm:"index"`
	VehicleID       *uuid.UUID `gorm:"type:uuid"`
	OrderID         *uuid.UUID `gorm:"type:uuid"`
	Version         int64
}

func (DriverDTO) TableName() string {
	return "drivers"
}

func fromDomain(d *driver.Driver) DriverDTO {
	profile := d.Profile()

	return DriverDTO{
		ID:              d.ID().Bytes(),
		Name:            profile.Name,
		Phone:           profile.Phone,
		LicenseNumber:   profile.License.Number,
		LicenseType:     profile.License.Type,
		LicenseExpiry:   profile.License.Expiry,
		ExperienceYears: profile.ExperienceYears,
		Rating:          profile.Rating,
		Status:          int(d.Status()),
		VehicleID:       nullableID(d.CurrentVehicle()),
		OrderID:         nullableID(d.ActiveOrder()),
		Version:         d.Version(),
	}
}

func toDomain(dto DriverDTO) (*driver.Driver, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	vehicleID, err := fromNullableID(dto.VehicleID)
	if err != nil {
		return nil, err
	}
	orderID, err := fromNullableID(dto.OrderID)
	if err != nil {
		return nil, err
	}

	profile := driver.Profile{
		Name:  dto.Name,
		Phone: dto.Phone,
		License: driver.License{
			Number: dto.LicenseNumber,
			Type:   dto.LicenseType,
			Expiry: dto.LicenseExpiry.UTC(),
		},
		ExperienceYears: dto.ExperienceYears,
		Rating:          dto.Rating,
	}

	return driver.RestoreDriver(id, profile, driver.Status(dto.Status), vehicleID, orderID, dto.Version)
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
