package driver

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"dispatch/internal/pkg/errs"
)

const (
	minRating = 0.0
	maxRating = 5.0
)

// License holds the driving licence details of a driver.
type License struct {
	Number string    `json:"licenseNumber"`
	Type   string    `json:"licenseType"`
	Expiry time.Time `json:"licenseExpiry"`
}

// Profile holds the personal attributes of a driver.
type Profile struct {
	Name            string  `json:"name"`
	Phone           string  `json:"phone,omitempty"`
	License         License `json:"license"`
	ExperienceYears int     `json:"experience"`
	Rating          float64 `json:"rating"`
}

func (p Profile) Normalize() Profile {
	p.Name = strings.TrimSpace(p.Name)
	p.Phone = strings.TrimSpace(p.Phone)
	p.License.Number = strings.ToUpper(strings.TrimSpace(p.License.Number))
	p.License.Type = strings.ToUpper(strings.TrimSpace(p.License.Type))
	p.License.Expiry = p.License.Expiry.UTC()
	return p
}

func (p Profile) Validate() error {
	var problems []error

	if p.Name == "" {
		problems = append(problems, errs.NewValueIsRequiredError("name"))
	}
	if p.License.Number == "" {
		problems = append(problems, errs.NewValueIsRequiredError("licenseNumber"))
	}
	if p.License.Expiry.IsZero() {
		problems = append(problems, errs.NewValueIsRequiredError("licenseExpiry"))
	}
	if p.ExperienceYears < 0 {
		problems = append(problems, errs.NewValueIsInvalidErrorWithCause(
			"experience", fmt.Errorf("%d is negative", p.ExperienceYears)))
	}
	if p.Rating < minRating || p.Rating > maxRating {
		problems = append(problems, errs.NewValueIsOutOfRangeError("rating", p.Rating, minRating, maxRating))
	}

	return errors.Join(problems...)
}

// LicenseExpired reports whether the licence is no longer valid at now.
func (p Profile) LicenseExpired(now time.Time) bool {
	return !p.License.Expiry.After(now)
}
