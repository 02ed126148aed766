package app

import (
	"fmt"

	"github.com/dkeye/pairsignal/internal/domain"
)

type BackpressureAction int

const (
	DropMessage BackpressureAction = iota
	CloseConnection
)

// Policy decides what happens to a connection whose send buffer is full.
type Policy interface {
	OnBackPressure(id domain.ConnID) BackpressureAction
}

type SimplePolicy struct {
	Action BackpressureAction
}

func (p SimplePolicy) OnBackPressure(domain.ConnID) BackpressureAction {
	return p.Action
}

// ParsePolicy maps the config value ("drop" or "close") to a Policy.
func ParsePolicy(name string) (Policy, error) {
	switch name {
	case "", "drop":
		return SimplePolicy{Action: DropMessage}, nil
	case "close":
		return SimplePolicy{Action: CloseConnection}, nil
	default:
		return nil, fmt.Errorf("unknown backpressure policy %q", name)
	}
}
