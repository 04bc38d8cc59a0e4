package defi

// event represents a single, atomic mutation of the ledger state.
// Operations are planned as a list of events, and a list is only applied once
// every precondition holds.
type event interface {
	apply(s *state, j *changeJournal)
}

// state is the mutable part of a Ledger.
type state struct {
	balances map[string]Quantity
	votes    map[string]string
}

// --- Token Events ---

// creditToken increases the balance of a token, creating the entry if absent.
type creditToken struct {
	token  string
	amount Quantity
}

func (e creditToken) apply(s *state, j *changeJournal) {
	before := s.balances[e.token]
	s.balances[e.token] = before.Add(e.amount)
	j.record(e.token, before, s.balances[e.token])
}

// debitToken decreases the balance of a token. The entry is kept at zero.
type debitToken struct {
	token  string
	amount Quantity
}

func (e debitToken) apply(s *state, j *changeJournal) {
	before := s.balances[e.token]
	s.balances[e.token] = before.Sub(e.amount)
	j.record(e.token, before, s.balances[e.token])
}

// --- Governance Events ---

// castVote records or replaces the vote on a proposal.
type castVote struct {
	proposal string
	choice   string
}

func (e castVote) apply(s *state, _ *changeJournal) {
	s.votes[e.proposal] = e.choice
}

// Change is the net effect of an operation on one token balance.
type Change struct {
	Token  string   `json:"token"`
	Before Quantity `json:"before"`
	After  Quantity `json:"after"`
}

// Delta returns After - Before.
func (c Change) Delta() Quantity { return c.After.Sub(c.Before) }

// changeJournal collects the balance changes of one operation, merging
// events on the same token in order of first appearance.
type changeJournal struct {
	changes []Change
}

func (j *changeJournal) record(token string, before, after Quantity) {
	for i := range j.changes {
		if j.changes[i].Token == token {
			j.changes[i].After = after
			return
		}
	}
	j.changes = append(j.changes, Change{Token: token, Before: before, After: after})
}
