package settlement

// Payment is what one member paid for the unsettled expenses of an event
type Payment struct {
	UserID   int64
	Username string
	Amount   float64
}

// Debt is an amount one user owes another
type Debt struct {
	FromID       int64
	FromUsername string
	ToID         int64
	ToUsername   string
	Amount       float64
}

// MemberBalance summarizes one member's position in an event.
// Balance is positive when others owe the member.
type MemberBalance struct {
	UserID     int64
	Username   string
	Paid       float64
	Owed       float64
	Receivable float64
	Balance    float64
}

// Balances is the ledger read model of an event
type Balances struct {
	EventID int64
	Members []*MemberBalance
	// Debts are netted per pair of users
	Debts []*Debt
}

// ExpenseRef is the part of an expense needed to settle it
type ExpenseRef struct {
	ID          int64
	EventID     int64
	Title       string
	PaidByID    int64
	CreatedByID int64
	IsSettled   bool
}
