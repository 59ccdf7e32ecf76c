package settlement

import "fmt"

// MemberBalanceResponse represents one member's balance
type MemberBalanceResponse struct {
	UserID     int64   `json:"user_id"`
	Username   string  `json:"username"`
	Paid       float64 `json:"total_paid"`
	Owed       float64 `json:"total_owed"`
	Receivable float64 `json:"total_receivable"`
	Balance    float64 `json:"balance"`
}

// DebtResponse represents a netted debt between two users
type DebtResponse struct {
	FromUserID   int64   `json:"from_user_id"`
	FromUsername string  `json:"from_username"`
	ToUserID     int64   `json:"to_user_id"`
	ToUsername   string  `json:"to_username"`
	Amount       float64 `json:"amount"`
	Message      string  `json:"message"` // e.g. "bob owes alice 12.50"
}

// BalancesResponse is the payload of GET /api/events/{id}/balances/
type BalancesResponse struct {
	EventID     int64                    `json:"event_id"`
	YourBalance float64                  `json:"your_balance"`
	Members     []*MemberBalanceResponse `json:"members"`
	Debts       []*DebtResponse          `json:"debts"`
}

// SettleResponse is returned after settling an expense
type SettleResponse struct {
	ExpenseID int64 `json:"expense_id"`
	EventID   int64 `json:"event_id"`
	IsSettled bool  `json:"is_settled"`
}

// ToResponse converts Balances to the API shape from the viewer's perspective
func (b *Balances) ToResponse(viewerID int64) *BalancesResponse {
	resp := &BalancesResponse{
		EventID: b.EventID,
		Members: make([]*MemberBalanceResponse, len(b.Members)),
		Debts:   make([]*DebtResponse, len(b.Debts)),
	}
	if m := b.For(viewerID); m != nil {
		resp.YourBalance = m.Balance
	}
	for i, m := range b.Members {
		resp.Members[i] = &MemberBalanceResponse{
			UserID:     m.UserID,
			Username:   m.Username,
			Paid:       m.Paid,
			Owed:       m.Owed,
			Receivable: m.Receivable,
			Balance:    m.Balance,
		}
	}
	for i, d := range b.Debts {
		var message string
		switch viewerID {
		case d.FromID:
			message = fmt.Sprintf("You owe %s %.2f", d.ToUsername, d.Amount)
		case d.ToID:
			message = fmt.Sprintf("%s owes you %.2f", d.FromUsername, d.Amount)
		default:
			message = fmt.Sprintf("%s owes %s %.2f", d.FromUsername, d.ToUsername, d.Amount)
		}
		resp.Debts[i] = &DebtResponse{
			FromUserID:   d.FromID,
			FromUsername: d.FromUsername,
			ToUserID:     d.ToID,
			ToUsername:   d.ToUsername,
			Amount:       d.Amount,
			Message:      message,
		}
	}
	return resp
}
