package expense

// CreateExpenseRequest represents the request to add an expense to an event
type CreateExpenseRequest struct {
	Title     string        `json:"title" validate:"required,max=200"`
	Amount    float64       `json:"amount" validate:"required,gt=0"`
	PaidByID  int64         `json:"paid_by_id" validate:"required,gt=0"`
	SplitType string        `json:"split_type" validate:"omitempty,oneof=MANUAL EVEN PERCENTAGE"`
	Shares    []*ShareInput `json:"shares" validate:"omitempty,dive"`
}

// ExpenseResponse represents the response for an expense
type ExpenseResponse struct {
	ID             int64            `json:"id"`
	EventID        int64            `json:"event_id"`
	Title          string           `json:"title"`
	Amount         float64          `json:"amount"`
	PaidByID       int64            `json:"paid_by_id"`
	PaidByUsername string           `json:"paid_by_username,omitempty"`
	CreatedByID    int64            `json:"created_by_id"`
	SplitType      string           `json:"split_type"`
	IsSettled      bool             `json:"is_settled"`
	CreatedAt      string           `json:"created_at"`
	Shares         []*ShareResponse `json:"shares"`
}

// ShareResponse represents the response for a share
type ShareResponse struct {
	ID          int64   `json:"id"`
	ExpenseID   int64   `json:"expense_id"`
	UserID      int64   `json:"user_id"`
	Username    string  `json:"username,omitempty"`
	ShareAmount float64 `json:"share_amount"`
	IsPaid      bool    `json:"is_paid"`
}

// ToResponse converts an Expense model to an ExpenseResponse DTO
func (e *Expense) ToResponse() *ExpenseResponse {
	shares := make([]*ShareResponse, len(e.Shares))
	for i, s := range e.Shares {
		shares[i] = s.ToResponse()
	}
	return &ExpenseResponse{
		ID:             e.ID,
		EventID:        e.EventID,
		Title:          e.Title,
		Amount:         e.Amount,
		PaidByID:       e.PaidByID,
		PaidByUsername: e.PaidByUsername,
		CreatedByID:    e.CreatedByID,
		SplitType:      string(e.SplitType),
		IsSettled:      e.IsSettled,
		CreatedAt:      e.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
		Shares:         shares,
	}
}

// ToResponse converts a Share model to a ShareResponse DTO
func (s *Share) ToResponse() *ShareResponse {
	return &ShareResponse{
		ID:          s.ID,
		ExpenseID:   s.ExpenseID,
		UserID:      s.UserID,
		Username:    s.Username,
		ShareAmount: s.ShareAmount,
		IsPaid:      s.IsPaid,
	}
}
