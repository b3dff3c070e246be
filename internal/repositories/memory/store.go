// Package memory provides in-memory repository implementations backed
// by a single store. They mirror the guarded-write semantics of the
// database layer and are used by the service tests.
package memory

import (
	"sort"
	"sync"

	"camillo/internal/models"
)

// Store holds all records behind one mutex so compound operations are
// atomic the same way the database transactions are.
type Store struct {
	mu sync.Mutex

	users        map[uint]*models.User
	investments  map[uint]*models.Investment
	transactions map[uint]*models.Transaction
	deposits     map[uint]*models.DepositRequest
	trades       map[uint]*models.Trade

	nextUserID        uint
	nextInvestmentID  uint
	nextTransactionID uint
	nextDepositID     uint
	nextTradeID       uint
}

func NewStore() *Store {
	return &Store{
		users:        make(map[uint]*models.User),
		investments:  make(map[uint]*models.Investment),
		transactions: make(map[uint]*models.Transaction),
		deposits:     make(map[uint]*models.DepositRequest),
		trades:       make(map[uint]*models.Trade),
	}
}

func (s *Store) Users() *UserRepository               { return &UserRepository{s: s} }
func (s *Store) Investments() *InvestmentRepository   { return &InvestmentRepository{s: s} }
func (s *Store) Transactions() *TransactionRepository { return &TransactionRepository{s: s} }
func (s *Store) Deposits() *DepositRepository         { return &DepositRepository{s: s} }
func (s *Store) Trades() *TradeRepository             { return &TradeRepository{s: s} }

func copyUser(u *models.User) *models.User {
	c := *u
	return &c
}

func copyInvestment(i *models.Investment) *models.Investment {
	c := *i
	return &c
}

func copyTransaction(t *models.Transaction) *models.Transaction {
	c := *t
	return &c
}

func sortInvestmentsDesc(out []models.Investment) {
	sort.Slice(out, func(a, b int) bool {
		return out[a].CreatedAt.After(out[b].CreatedAt)
	})
}

func sortTransactionsDesc(out []models.Transaction) {
	sort.Slice(out, func(a, b int) bool {
		return out[a].CreatedAt.After(out[b].CreatedAt)
	})
}
