package split

// ManualStrategy takes the amount entered for each participant as is. The
// amounts do not have to add up to the expense total.
type ManualStrategy struct{}

func (s *ManualStrategy) Type() SplitType {
	return SplitTypeManual
}

// Validate requires a non-negative amount for everyone. An empty list is
// allowed and produces an expense without shares.
func (s *ManualStrategy) Validate(totalAmount float64, participants []SplitInput) error {
	if totalAmount < 0 {
		return ErrNegativeAmount
	}
	if err := checkDuplicates(participants); err != nil {
		return err
	}
	for _, p := range participants {
		if p.Amount == nil {
			return ErrMissingAmount
		}
		if *p.Amount < 0 {
			return ErrNegativeAmount
		}
	}
	return nil
}

// Calculate returns the entered amounts for everyone except the payer
func (s *ManualStrategy) Calculate(totalAmount float64, payerID int64, participants []SplitInput) ([]SplitOutput, error) {
	if err := s.Validate(totalAmount, participants); err != nil {
		return nil, err
	}

	debtors := filterPayer(payerID, participants)
	outputs := make([]SplitOutput, len(debtors))
	for i, debtor := range debtors {
		outputs[i] = SplitOutput{UserID: debtor.UserID, Amount: roundToTwoDecimals(*debtor.Amount)}
	}
	return outputs, nil
}
