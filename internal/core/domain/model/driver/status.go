package driver

import (
	"fmt"
	"strings"

	"dispatch/internal/pkg/errs"
)

// Status is the availability of a driver.
type Status int

const (
	Unknown Status = iota
	Available
	OnDuty
	OffDuty
	OnLeave
)

var statusNames = map[Status]string{
	Available: "available",
	OnDuty:    "on-duty",
	OffDuty:   "off-duty",
	OnLeave:   "on-leave",
}

func ParseStatus(s string) (Status, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for status, n := range statusNames {
		if n == name {
			return status, nil
		}
	}
	return Unknown, errs.NewValueIsInvalidErrorWithCause("status", fmt.Errorf("%q is not a valid driver status", s))
}

func (s Status) Validate() error {
	if _, ok := statusNames[s]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("status", fmt.Errorf("%d is not a valid driver status", s))
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
// OnDuty is only reachable through an assignment.
func (s Status) IsAdministrative() bool {
	return s == Available || s == OffDuty || s == OnLeave
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
