package traject

import (
	"errors"

	"github.com/Deltares-research/VrtoolDashboard-sub000/internal/reliability"
)

// #region errors
// Configuration errors are fatal and never retried.
var (
	ErrUnknownStrategy  = errors.New("unknown strategy")
	ErrUnknownMechanism = errors.New("unknown mechanism")
	ErrAxisMismatch     = errors.New("assessment time axes do not match")
	ErrInvalidAxis      = reliability.ErrInvalidAxis
	ErrUnknownSection   = errors.New("unknown section")
	ErrUnknownTraject   = errors.New("unknown traject")
	ErrInvalidProject   = errors.New("invalid project")
	ErrInvalidStep      = errors.New("invalid optimizer step")
)

// ErrDegenerateCost marks a reinforced section whose cost is zero or negative.
var ErrDegenerateCost = errors.New("section cost must be positive")

// #endregion errors
