// Package memory provides an in-memory Store implementation with
// real transaction semantics: writes inside a Transaction scope land
// on a copy of the state and are only published on commit, so a
// mid-transaction error observes full rollback. A single mutex
// serializes transactions, which also serializes balance mutation per
// account. It backs the service tests and local development.
package memory

import (
	"context"
	"sort"
	"sync"

	"cajero/internal/models"
	"cajero/internal/repositories"

	"github.com/shopspring/decimal"
)

type state struct {
	accounts    map[uint]*models.Account
	numbers     map[string]uint
	customers   map[uint]*models.Customer
	transfers   []models.Transfer
	withdrawals map[uint]*models.CardlessWithdrawal
	folios      map[string]uint

	accountSeq    uint
	transferSeq   uint
	withdrawalSeq uint
}

func newState() *state {
	return &state{
		accounts:    make(map[uint]*models.Account),
		numbers:     make(map[string]uint),
		customers:   make(map[uint]*models.Customer),
		withdrawals: make(map[uint]*models.CardlessWithdrawal),
		folios:      make(map[string]uint),
	}
}

func (s *state) clone() *state {
	c := newState()
	for id, a := range s.accounts {
		cp := *a
		c.accounts[id] = &cp
	}
	for n, id := range s.numbers {
		c.numbers[n] = id
	}
	for id, cu := range s.customers {
		cp := *cu
		c.customers[id] = &cp
	}
	c.transfers = append(c.transfers, s.transfers...)
	for id, w := range s.withdrawals {
		cp := *w
		c.withdrawals[id] = &cp
	}
	for f, id := range s.folios {
		c.folios[f] = id
	}
	c.accountSeq = s.accountSeq
	c.transferSeq = s.transferSeq
	c.withdrawalSeq = s.withdrawalSeq
	return c
}

// Store is the root in-memory store.
type Store struct {
	mu sync.Mutex
	st *state
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{st: newState()}
}

// AddCustomer seeds a customer record; test and dev helper.
func (s *Store) AddCustomer(customer *models.Customer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *customer
	s.st.customers[cp.ID] = &cp
}

// session abstracts where a repository reads and writes state: the
// root store locks per call, a transaction-scoped store works on its
// private copy under the already-held lock.
type session interface {
	do(fn func(*state) error) error
}

func (s *Store) do(fn func(*state) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.st)
}

func (s *Store) Accounts() repositories.AccountRepository { return &accountRepo{s: s} }
func (s *Store) Customers() repositories.CustomerRepository {
	return &customerRepo{s: s}
}
func (s *Store) Transfers() repositories.TransferRepository { return &transferRepo{s: s} }
func (s *Store) Withdrawals() repositories.WithdrawalRepository {
	return &withdrawalRepo{s: s}
}

// Transaction runs fn against a copy of the state and publishes the
// copy only if fn succeeds.
func (s *Store) Transaction(_ context.Context, fn func(repositories.Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	work := s.st.clone()
	if err := fn(&txStore{st: work}); err != nil {
		return err
	}
	s.st = work
	return nil
}

// txStore is a Store bound to one open transaction. Nested
// Transaction calls join the scope, mirroring gorm's savepoint
// behaviour as far as the core relies on it.
type txStore struct {
	st *state
}

func (t *txStore) do(fn func(*state) error) error { return fn(t.st) }

func (t *txStore) Accounts() repositories.AccountRepository { return &accountRepo{s: t} }
func (t *txStore) Customers() repositories.CustomerRepository {
	return &customerRepo{s: t}
}
func (t *txStore) Transfers() repositories.TransferRepository { return &transferRepo{s: t} }
func (t *txStore) Withdrawals() repositories.WithdrawalRepository {
	return &withdrawalRepo{s: t}
}

func (t *txStore) Transaction(_ context.Context, fn func(repositories.Store) error) error {
	return fn(t)
}

type accountRepo struct {
	s session
}

func (r *accountRepo) Create(account *models.Account) error {
	return r.s.do(func(st *state) error {
		if _, exists := st.numbers[account.Number]; exists {
			return repositories.ErrDuplicateNumber
		}
		st.accountSeq++
		account.ID = st.accountSeq
		// Same rule the gorm hook enforces: accounts open empty.
		account.Balance = decimal.Zero
		if account.Status == "" {
			account.Status = models.AccountStatusActive
		}
		cp := *account
		st.accounts[cp.ID] = &cp
		st.numbers[cp.Number] = cp.ID
		return nil
	})
}

func (r *accountRepo) FindByID(id uint) (*models.Account, error) {
	var out *models.Account
	err := r.s.do(func(st *state) error {
		a, ok := st.accounts[id]
		if !ok {
			return repositories.ErrAccountNotFound
		}
		cp := *a
		out = &cp
		return nil
	})
	return out, err
}

func (r *accountRepo) FindByNumber(number string) (*models.Account, error) {
	var out *models.Account
	err := r.s.do(func(st *state) error {
		id, ok := st.numbers[number]
		if !ok {
			return repositories.ErrAccountNotFound
		}
		cp := *st.accounts[id]
		out = &cp
		return nil
	})
	return out, err
}

func (r *accountRepo) FindByIDForUpdate(id uint) (*models.Account, error) {
	return r.FindByID(id)
}

func (r *accountRepo) FindByNumberForUpdate(number string) (*models.Account, error) {
	return r.FindByNumber(number)
}

func (r *accountRepo) Save(account *models.Account) error {
	return r.s.do(func(st *state) error {
		if _, ok := st.accounts[account.ID]; !ok {
			return repositories.ErrAccountNotFound
		}
		cp := *account
		st.accounts[cp.ID] = &cp
		return nil
	})
}

func (r *accountRepo) ListActiveByCustomer(customerID uint) ([]models.Account, error) {
	var out []models.Account
	err := r.s.do(func(st *state) error {
		for _, a := range st.accounts {
			if a.CustomerID == customerID && a.Active() {
				out = append(out, *a)
			}
		}
		sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
		return nil
	})
	return out, err
}

type customerRepo struct {
	s session
}

func (r *customerRepo) FindByID(id uint) (*models.Customer, error) {
	var out *models.Customer
	err := r.s.do(func(st *state) error {
		c, ok := st.customers[id]
		if !ok {
			return repositories.ErrCustomerNotFound
		}
		cp := *c
		out = &cp
		return nil
	})
	return out, err
}

type transferRepo struct {
	s session
}

func (r *transferRepo) Create(transfer *models.Transfer) error {
	return r.s.do(func(st *state) error {
		st.transferSeq++
		transfer.ID = st.transferSeq
		st.transfers = append(st.transfers, *transfer)
		return nil
	})
}

func (r *transferRepo) ListByAccount(number string, limit, offset int) ([]models.Transfer, error) {
	var out []models.Transfer
	err := r.s.do(func(st *state) error {
		for _, t := range st.transfers {
			if t.SourceNumber == number || t.DestinationNumber == number {
				out = append(out, t)
			}
		}
		sort.Slice(out, func(i, j int) bool { return out[i].ExecutedAt.After(out[j].ExecutedAt) })
		if offset > len(out) {
			offset = len(out)
		}
		out = out[offset:]
		if limit > 0 && limit < len(out) {
			out = out[:limit]
		}
		return nil
	})
	return out, err
}

type withdrawalRepo struct {
	s session
}

func (r *withdrawalRepo) Create(ticket *models.CardlessWithdrawal) error {
	return r.s.do(func(st *state) error {
		if _, exists := st.folios[ticket.Folio]; exists {
			return repositories.ErrDuplicateNumber
		}
		st.withdrawalSeq++
		ticket.ID = st.withdrawalSeq
		cp := *ticket
		st.withdrawals[cp.ID] = &cp
		st.folios[cp.Folio] = cp.ID
		return nil
	})
}

func (r *withdrawalRepo) FindByFolio(folio string) (*models.CardlessWithdrawal, error) {
	var out *models.CardlessWithdrawal
	err := r.s.do(func(st *state) error {
		id, ok := st.folios[folio]
		if !ok {
			return repositories.ErrWithdrawalNotFound
		}
		cp := *st.withdrawals[id]
		out = &cp
		return nil
	})
	return out, err
}

func (r *withdrawalRepo) FindByFolioForUpdate(folio string) (*models.CardlessWithdrawal, error) {
	return r.FindByFolio(folio)
}

func (r *withdrawalRepo) Save(ticket *models.CardlessWithdrawal) error {
	return r.s.do(func(st *state) error {
		if _, ok := st.withdrawals[ticket.ID]; !ok {
			return repositories.ErrWithdrawalNotFound
		}
		cp := *ticket
		st.withdrawals[cp.ID] = &cp
		return nil
	})
}
