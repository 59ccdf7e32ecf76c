package expense

import (
	"time"

	"github.com/fkhayef/eventplanner/internal/expense/split"
)

// Expense is a cost paid by one member of an event
type Expense struct {
	ID          int64
	EventID     int64
	Title       string
	Amount      float64
	PaidByID    int64
	CreatedByID int64
	SplitType   split.SplitType
	IsSettled   bool
	CreatedAt   time.Time

	// Populated via JOIN
	PaidByUsername string

	Shares []*Share
}

// Share is the part of an expense one user owes the payer
type Share struct {
	ID          int64
	ExpenseID   int64
	UserID      int64
	ShareAmount float64
	IsPaid      bool

	// Populated via JOIN
	Username string
	EventID  int64
	PaidByID int64
}

// ShareInput describes one share holder of a new expense
type ShareInput struct {
	UserID     int64    `json:"user_id" validate:"required,gt=0"`
	Amount     *float64 `json:"amount,omitempty" validate:"omitempty,gte=0"`
	Percentage *float64 `json:"percentage,omitempty" validate:"omitempty,gte=0,lte=100"`
}

// ToSplitInput converts to the split package's input type
func (p *ShareInput) ToSplitInput() split.SplitInput {
	return split.SplitInput{
		UserID:     p.UserID,
		Percentage: p.Percentage,
		Amount:     p.Amount,
	}
}
