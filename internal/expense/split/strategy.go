// Package split turns an expense amount and a list of share holders into
// per-user share amounts.
package split

import (
	"errors"
	"fmt"
	"math"
)

// SplitType defines the type of split strategy
type SplitType string

const (
	SplitTypeManual     SplitType = "MANUAL"
	SplitTypeEven       SplitType = "EVEN"
	SplitTypePercentage SplitType = "PERCENTAGE"
)

// SplitInput represents a share holder with optional values
type SplitInput struct {
	UserID     int64
	Percentage *float64 // PERCENTAGE
	Amount     *float64 // MANUAL
}

// SplitOutput is the calculated share of a single user
type SplitOutput struct {
	UserID int64
	Amount float64
}

// Strategy is implemented by every split type
type Strategy interface {
	// Calculate computes the share of every participant except the payer
	Calculate(totalAmount float64, payerID int64, participants []SplitInput) ([]SplitOutput, error)

	Type() SplitType

	// Validate checks if the inputs are valid for this strategy
	Validate(totalAmount float64, participants []SplitInput) error
}

// Factory creates split strategies based on the requested type
type Factory struct{}

// NewSplitStrategyFactory creates a new factory instance
func NewSplitStrategyFactory() *Factory {
	return &Factory{}
}

// Create returns the strategy for splitType. An empty type selects MANUAL.
func (f *Factory) Create(splitType SplitType) (Strategy, error) {
	switch splitType {
	case SplitTypeManual, "":
		return &ManualStrategy{}, nil
	case SplitTypeEven:
		return &EvenStrategy{}, nil
	case SplitTypePercentage:
		return &PercentageStrategy{}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownSplitType, splitType)
	}
}

var (
	ErrUnknownSplitType     = errors.New("unknown split type")
	ErrNoParticipants       = errors.New("at least one participant is required")
	ErrInvalidPercentages   = errors.New("percentages must sum to 100")
	ErrNegativeAmount       = errors.New("amounts cannot be negative")
	ErrMissingPercentage    = errors.New("percentage value required for all participants")
	ErrMissingAmount        = errors.New("amount required for all participants")
	ErrPercentageOutOfRange = errors.New("percentage must be between 0 and 100")
	ErrDuplicateParticipant = errors.New("each participant can only appear once")
)

func roundToTwoDecimals(value float64) float64 {
	return math.Round(value*100) / 100
}

// filterPayer removes the payer from participants (they don't owe themselves)
func filterPayer(payerID int64, participants []SplitInput) []SplitInput {
	filtered := make([]SplitInput, 0, len(participants))
	for _, p := range participants {
		if p.UserID != payerID {
			filtered = append(filtered, p)
		}
	}
	return filtered
}

func includes(payerID int64, participants []SplitInput) bool {
	for _, p := range participants {
		if p.UserID == payerID {
			return true
		}
	}
	return false
}

func checkDuplicates(participants []SplitInput) error {
	seen := make(map[int64]bool, len(participants))
	for _, p := range participants {
		if seen[p.UserID] {
			return ErrDuplicateParticipant
		}
		seen[p.UserID] = true
	}
	return nil
}
