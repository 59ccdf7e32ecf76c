package split

// EvenStrategy divides the expense equally among all participants
type EvenStrategy struct{}

func (s *EvenStrategy) Type() SplitType {
	return SplitTypeEven
}

// Validate checks if the inputs are valid for an even split
func (s *EvenStrategy) Validate(totalAmount float64, participants []SplitInput) error {
	if len(participants) == 0 {
		return ErrNoParticipants
	}
	if totalAmount < 0 {
		return ErrNegativeAmount
	}
	return checkDuplicates(participants)
}

// Calculate divides the total evenly. When the payer is listed their share
// counts toward the division but no row is produced for it. Leftover cents go
// to the first debtor.
func (s *EvenStrategy) Calculate(totalAmount float64, payerID int64, participants []SplitInput) ([]SplitOutput, error) {
	if err := s.Validate(totalAmount, participants); err != nil {
		return nil, err
	}

	debtors := filterPayer(payerID, participants)
	if len(debtors) == 0 {
		return []SplitOutput{}, nil
	}

	sharePerPerson := roundToTwoDecimals(totalAmount / float64(len(participants)))

	expectedFromDebtors := totalAmount
	if includes(payerID, participants) {
		expectedFromDebtors -= sharePerPerson
	}
	totalDistributed := sharePerPerson * float64(len(debtors))
	roundingDifference := roundToTwoDecimals(expectedFromDebtors - totalDistributed)

	outputs := make([]SplitOutput, len(debtors))
	for i, debtor := range debtors {
		amount := sharePerPerson
		if i == 0 && roundingDifference != 0 {
			amount = roundToTwoDecimals(amount + roundingDifference)
		}
		outputs[i] = SplitOutput{UserID: debtor.UserID, Amount: amount}
	}

	return outputs, nil
}
