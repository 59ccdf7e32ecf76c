package settlement

import (
	"math"
	"sort"
)

func toCents(v float64) int64 {
	return int64(math.Round(v * 100))
}

func fromCents(c int64) float64 {
	return float64(c) / 100
}

type pair struct{ lo, hi int64 }

// Compute builds the balances of an event from what each member paid and the
// unpaid shares (share holder owes payer). Amounts are summed in cents.
func Compute(eventID int64, payments []*Payment, shares []*Debt) *Balances {
	type acc struct {
		username               string
		paid, owed, receivable int64
	}
	members := make(map[int64]*acc)
	member := func(id int64, name string) *acc {
		a, ok := members[id]
		if !ok {
			a = &acc{username: name}
			members[id] = a
		}
		return a
	}

	for _, p := range payments {
		member(p.UserID, p.Username).paid += toCents(p.Amount)
	}

	net := make(map[pair]int64) // positive: lo owes hi
	names := make(map[int64]string)
	for _, s := range shares {
		if s.FromID == s.ToID {
			continue
		}
		c := toCents(s.Amount)
		member(s.FromID, s.FromUsername).owed += c
		member(s.ToID, s.ToUsername).receivable += c
		names[s.FromID], names[s.ToID] = s.FromUsername, s.ToUsername

		if s.FromID < s.ToID {
			net[pair{s.FromID, s.ToID}] += c
		} else {
			net[pair{s.ToID, s.FromID}] -= c
		}
	}

	b := &Balances{EventID: eventID, Members: []*MemberBalance{}, Debts: []*Debt{}}
	for id, a := range members {
		b.Members = append(b.Members, &MemberBalance{
			UserID:     id,
			Username:   a.username,
			Paid:       fromCents(a.paid),
			Owed:       fromCents(a.owed),
			Receivable: fromCents(a.receivable),
			Balance:    fromCents(a.receivable - a.owed),
		})
	}
	sort.Slice(b.Members, func(i, j int) bool {
		if b.Members[i].Username != b.Members[j].Username {
			return b.Members[i].Username < b.Members[j].Username
		}
		return b.Members[i].UserID < b.Members[j].UserID
	})

	for p, c := range net {
		switch {
		case c > 0:
			b.Debts = append(b.Debts, &Debt{FromID: p.lo, FromUsername: names[p.lo], ToID: p.hi, ToUsername: names[p.hi], Amount: fromCents(c)})
		case c < 0:
			b.Debts = append(b.Debts, &Debt{FromID: p.hi, FromUsername: names[p.hi], ToID: p.lo, ToUsername: names[p.lo], Amount: fromCents(-c)})
		}
	}
	sort.Slice(b.Debts, func(i, j int) bool {
		if b.Debts[i].FromID != b.Debts[j].FromID {
			return b.Debts[i].FromID < b.Debts[j].FromID
		}
		return b.Debts[i].ToID < b.Debts[j].ToID
	})

	return b
}

// For returns the balance of one member, or nil when they are not involved
func (b *Balances) For(userID int64) *MemberBalance {
	for _, m := range b.Members {
		if m.UserID == userID {
			return m
		}
	}
	return nil
}
