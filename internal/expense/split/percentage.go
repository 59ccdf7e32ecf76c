package split

import "math"

// PercentageStrategy divides the expense based on each participant's percentage
type PercentageStrategy struct{}

func (s *PercentageStrategy) Type() SplitType {
	return SplitTypePercentage
}

// Validate requires a percentage for everyone, summing to 100
func (s *PercentageStrategy) Validate(totalAmount float64, participants []SplitInput) error {
	if len(participants) == 0 {
		return ErrNoParticipants
	}
	if totalAmount < 0 {
		return ErrNegativeAmount
	}
	if err := checkDuplicates(participants); err != nil {
		return err
	}

	var totalPercentage float64
	for _, p := range participants {
		if p.Percentage == nil {
			return ErrMissingPercentage
		}
		if *p.Percentage < 0 || *p.Percentage > 100 {
			return ErrPercentageOutOfRange
		}
		totalPercentage += *p.Percentage
	}

	// 99.99 to 100.01 is accepted
	if math.Abs(totalPercentage-100) > 0.01 {
		return ErrInvalidPercentages
	}

	return nil
}

// Calculate gives every debtor their percentage of the total. The last debtor
// absorbs the rounding difference.
func (s *PercentageStrategy) Calculate(totalAmount float64, payerID int64, participants []SplitInput) ([]SplitOutput, error) {
	if err := s.Validate(totalAmount, participants); err != nil {
		return nil, err
	}

	debtors := filterPayer(payerID, participants)
	if len(debtors) == 0 {
		return []SplitOutput{}, nil
	}

	outputs := make([]SplitOutput, len(debtors))
	var totalCalculated float64
	for i, debtor := range debtors {
		amount := roundToTwoDecimals(totalAmount * *debtor.Percentage / 100)
		totalCalculated += amount
		outputs[i] = SplitOutput{UserID: debtor.UserID, Amount: amount}
	}

	payerPercentage := 0.0
	for _, p := range participants {
		if p.UserID == payerID {
			payerPercentage = *p.Percentage
			break
		}
	}
	expectedFromDebtors := roundToTwoDecimals(totalAmount * (100 - payerPercentage) / 100)
	difference := roundToTwoDecimals(expectedFromDebtors - totalCalculated)

	if difference != 0 {
		last := len(outputs) - 1
		outputs[last].Amount = roundToTwoDecimals(outputs[last].Amount + difference)
	}

	return outputs, nil
}
