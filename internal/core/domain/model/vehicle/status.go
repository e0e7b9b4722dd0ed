package vehicle

import (
	"fmt"
	"strings"

	"dispatch/internal/pkg/errs"
)

// Status is the availability of a vehicle.
type Status int

const (
	Unknown Status = iota
	Available
	InUse
	Maintenance
	OutOfService
)

var statusNames = map[Status]string{
	Available:    "available",
	InUse:        "in-use",
	Maintenance:  "maintenance",
	OutOfService: "out-of-service",
}

// ParseStatus converts a wire name into a Status.
func ParseStatus(s string) (Status, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for status, n := range statusNames {
		if n == name {
			return status, nil
		}
	}
	return Unknown, errs.NewValueIsInvalidErrorWithCause("status", fmt.Errorf("%q is not a valid vehicle status", s))
}

func (s Status) Validate() error {
	if _, ok := statusNames[s]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("status", fmt.Errorf("%d is not a valid vehicle status", s))
	}
	return nil
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return "unknown"
}

// IsAdministrative reports whether an operator may set the status directly.
// InUse is only reachable through an assignment.
func (s Status) IsAdministrative() bool {
	return s == Available || s == Maintenance || s == OutOfService
}

func (s Status) MarshalText() ([]byte, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return []byte(s.String()), nil
}

func (s *Status) UnmarshalText(text []byte) error {
	parsed, err := ParseStatus(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
