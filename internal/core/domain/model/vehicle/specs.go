package vehicle

import (
	"errors"
	"fmt"
	"strings"

	"dispatch/internal/pkg/errs"
)

type Type string

const (
	TypeTruck      Type = "truck"
	TypeVan        Type = "van"
	TypeCar        Type = "car"
	TypeMotorcycle Type = "motorcycle"
)

type CapacityUnit string

const (
	UnitKilogram    CapacityUnit = "kg"
	UnitTon         CapacityUnit = "ton"
	UnitCubicMeters CapacityUnit = "m3"
)

type FuelType string

const (
	FuelDiesel   FuelType = "diesel"
	FuelPetrol   FuelType = "petrol"
	FuelElectric FuelType = "electric"
	FuelHybrid   FuelType = "hybrid"
)

const (
	minYear = 1950
	maxYear = 2100
)

// Specs are the descriptive attributes of a vehicle. Dispatch never changes them.
type Specs struct {
	PlateNumber     string       `json:"plateNumber"`
	Make            string       `json:"make"`
	Model           string       `json:"model"`
	Year            int          `json:"year"`
	Type            Type         `json:"type"`
	Capacity        float64      `json:"capacity"`
	CapacityUnit    CapacityUnit `json:"capacityUnit"`
	FuelType        FuelType     `json:"fuelType"`
	FuelConsumption float64      `json:"fuelConsumption"`
	Mileage         float64      `json:"mileage"`
}

// Normalize upper-cases the plate and fills defaults for truck, kg and diesel.
func (s Specs) Normalize() Specs {
	s.PlateNumber = strings.ToUpper(strings.TrimSpace(s.PlateNumber))
	s.Make = strings.TrimSpace(s.Make)
	s.Model = strings.TrimSpace(s.Model)
	if s.Type == "" {
		s.Type = TypeTruck
	}
	if s.CapacityUnit == "" {
		s.CapacityUnit = UnitKilogram
	}
	if s.FuelType == "" {
		s.FuelType = FuelDiesel
	}
	return s
}

func (s Specs) Validate() error {
	var problems []error

	if s.PlateNumber == "" {
		problems = append(problems, errs.NewValueIsRequiredError("plateNumber"))
	}
	if s.Make == "" {
		problems = append(problems, errs.NewValueIsRequiredError("make"))
	}
	if s.Model == "" {
		problems = append(problems, errs.NewValueIsRequiredError("model"))
	}
	if s.Year < minYear || s.Year > maxYear {
		problems = append(problems, errs.NewValueIsOutOfRangeError("year", s.Year, minYear, maxYear))
	}
	switch s.Type {
	case TypeTruck, TypeVan, TypeCar, TypeMotorcycle:
	default:
		problems = append(problems, errs.NewValueIsInvalidErrorWithCause("type", fmt.Errorf("%q is not a vehicle type", s.Type)))
	}
	switch s.CapacityUnit {
	case UnitKilogram, UnitTon, UnitCubicMeters:
	default:
		problems = append(problems, errs.NewValueIsInvalidErrorWithCause("capacityUnit", fmt.Errorf("%q is not a capacity unit", s.CapacityUnit)))
	}
	switch s.FuelType {
	case FuelDiesel, FuelPetrol, FuelElectric, FuelHybrid:
	default:
		problems = append(problems, errs.NewValueIsInvalidErrorWithCause("fuelType", fmt.Errorf("%q is not a fuel type", s.FuelType)))
	}
	if s.Capacity <= 0 {
		problems = append(problems, errs.NewValueIsInvalidErrorWithCause("capacity", fmt.Errorf("%v is not greater than 0", s.Capacity)))
	}
	if s.FuelConsumption < 0 {
		problems = append(problems, errs.NewValueIsInvalidErrorWithCause("fuelConsumption", fmt.Errorf("%v is negative", s.FuelConsumption)))
	}
	if s.Mileage < 0 {
		problems = append(problems, errs.NewValueIsInvalidErrorWithCause("mileage", fmt.Errorf("%v is negative", s.Mileage)))
	}

	return errors.Join(problems...)
}
