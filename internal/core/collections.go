package core

import (
	"encoding/json"
	"fmt"
	"slices"
)

// Collection names a stored record set. The values are the store keys.
type Collection string

const (
	CollAccounts           Collection = "accounts"
	CollCreditCards        Collection = "creditCards"
	CollTransactions       Collection = "transactions"
	CollCategories         Collection = "categories"
	CollFormalDebts        Collection = "formalDebts"
	CollCommitments        Collection = "commitments"
	CollReceivables        Collection = "receivables"
	CollPaymentRecords     Collection = "paymentRecords"
	CollStocks             Collection = "stocks"
	CollCrypto             Collection = "crypto"
	CollRetirementAccounts Collection = "retirementAccounts"
	CollRetirementHoldings Collection = "retirementHoldings"
	CollContributions      Collection = "retirementContributions"
	CollOtherAssets        Collection = "otherAssets"
	CollRecurringEvents    Collection = "recurringEvents"
	CollHomes              Collection = "homes"
	CollHomeImprovements   Collection = "homeImprovements"
)

// AllCollections lists every collection the ledger owns, in load order.
var AllCollections = []Collection{
	CollAccounts,
	CollCreditCards,
	CollTransactions,
	CollCategories,
	CollFormalDebts,
	CollCommitments,
	CollReceivables,
	CollPaymentRecords,
	CollStocks,
	CollCrypto,
	CollRetirementAccounts,
	CollRetirementHoldings,
	CollContributions,
	CollOtherAssets,
	CollRecurringEvents,
	CollHomes,
	CollHomeImprovements,
}

// Collections is the full in-memory record set of one ledger.
type Collections struct {
	Accounts           []Account
	CreditCards        []CreditCard
	Transactions       []Transaction
	Categories         []Category
	FormalDebts        []FormalDebt
	Commitments        []Commitment
	Receivables        []Receivable
	PaymentRecords     []PaymentRecord
	Stocks             []Holding
	Crypto             []Holding
	RetirementAccounts []RetirementAccount
	RetirementHoldings []Holding
	Contributions      []Contribution
	OtherAssets        []OtherAsset
	RecurringEvents    []RecurringEvent
	Homes              []Home
	HomeImprovements   []HomeImprovement
}

// Clone returns a deep copy whose records can be mutated independently.
func (c *Collections) Clone() *Collections {
	payments := slices.Clone(c.PaymentRecords)
	for i := range payments {
		if b := payments[i].Breakdown; b != nil {
			copied := *b
			payments[i].Breakdown = &copied
		}
	}
	return &Collections{
		Accounts:           slices.Clone(c.Accounts),
		CreditCards:        slices.Clone(c.CreditCards),
		Transactions:       slices.Clone(c.Transactions),
		Categories:         slices.Clone(c.Categories),
		FormalDebts:        slices.Clone(c.FormalDebts),
		Commitments:        slices.Clone(c.Commitments),
		Receivables:        slices.Clone(c.Receivables),
		PaymentRecords:     payments,
		Stocks:             slices.Clone(c.Stocks),
		Crypto:             slices.Clone(c.Crypto),
		RetirementAccounts: slices.Clone(c.RetirementAccounts),
		RetirementHoldings: slices.Clone(c.RetirementHoldings),
		Contributions:      slices.Clone(c.Contributions),
		OtherAssets:        slices.Clone(c.OtherAssets),
		RecurringEvents:    slices.Clone(c.RecurringEvents),
		Homes:              slices.Clone(c.Homes),
		HomeImprovements:   slices.Clone(c.HomeImprovements),
	}
}

func (c *Collections) field(name Collection) (any, error) {
	switch name {
	case CollAccounts:
		return &c.Accounts, nil
	case CollCreditCards:
		return &c.CreditCards, nil
	case CollTransactions:
		return &c.Transactions, nil
	case CollCategories:
		return &c.Categories, nil
	case CollFormalDebts:
		return &c.FormalDebts, nil
	case CollCommitments:
		return &c.Commitments, nil
	case CollReceivables:
		return &c.Receivables, nil
	case CollPaymentRecords:
		return &c.PaymentRecords, nil
	case CollStocks:
		return &c.Stocks, nil
	case CollCrypto:
		return &c.Crypto, nil
	case CollRetirementAccounts:
		return &c.RetirementAccounts, nil
	case CollRetirementHoldings:
		return &c.RetirementHoldings, nil
	case CollContributions:
		return &c.Contributions, nil
	case CollOtherAssets:
		return &c.OtherAssets, nil
	case CollRecurringEvents:
		return &c.RecurringEvents, nil
	case CollHomes:
		return &c.Homes, nil
	case CollHomeImprovements:
		return &c.HomeImprovements, nil
	}
	return nil, fmt.Errorf("unknown collection %q", name)
}

// Encode serializes one collection. A nil slice encodes as an empty array.
func (c *Collections) Encode(name Collection) (json.RawMessage, error) {
	ptr, err := c.field(name)
	if err != nil {
		return nil, err
	}
	data, err := json.Marshal(ptr)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", name, err)
	}
	if string(data) == "null" {
		return json.RawMessage("[]"), nil
	}
	return data, nil
}

// Decode replaces one collection from its serialized form.
// Empty input leaves the collection empty.
func (c *Collections) Decode(name Collection, data json.RawMessage) error {
	ptr, err := c.field(name)
	if err != nil {
		return err
	}
	if len(data) == 0 || string(data) == "null" {
		return nil
	}
	if err := json.Unmarshal(data, ptr); err != nil {
		return fmt.Errorf("decode %s: %w", name, err)
	}
	return nil
}

// AccountByID returns the bank account with id.
func (c *Collections) AccountByID(id string) (Account, bool) {
	i := slices.IndexFunc(c.Accounts, func(a Account) bool { return a.ID == id })
	if i < 0 {
		return Account{}, false
	}
	return c.Accounts[i], true
}

// CardByID returns the credit card with id.
func (c *Collections) CardByID(id string) (CreditCard, bool) {
	i := slices.IndexFunc(c.CreditCards, func(cc CreditCard) bool { return cc.ID == id })
	if i < 0 {
		return CreditCard{}, false
	}
	return c.CreditCards[i], true
}

// DebtByID returns the formal debt with id.
func (c *Collections) DebtByID(id string) (FormalDebt, bool) {
	i := slices.IndexFunc(c.FormalDebts, func(d FormalDebt) bool { return d.ID == id })
	if i < 0 {
		return FormalDebt{}, false
	}
	return c.FormalDebts[i], true
}

// SubAccounts returns the children of parentID in stored order.
func (c *Collections) SubAccounts(parentID string) []Account {
	var out []Account
	for _, a := range c.Accounts {
		if a.ParentID == parentID {
			out = append(out, a)
		}
	}
	return out
}

// PaymentsFor returns the payment records of one item in stored order.
func (c *Collections) PaymentsFor(itemID string) []PaymentRecord {
	var out []PaymentRecord
	for _, p := range c.PaymentRecords {
		if p.ItemID == itemID {
			out = append(out, p)
		}
	}
	return out
}

// TransactionsFor returns the transactions posted to one account or card.
func (c *Collections) TransactionsFor(accountID string) []Transaction {
	var out []Transaction
	for _, t := range c.Transactions {
		if t.AccountID == accountID {
			out = append(out, t)
		}
	}
	return out
}

// Unallocated is the part of a parent balance not assigned to a sub-account.
func (c *Collections) Unallocated(parentID string) Money {
	parent, ok := c.AccountByID(parentID)
	if !ok {
		return Money{}
	}
	bal := parent.Balance
	for _, sub := range c.SubAccounts(parentID) {
		bal = bal.Sub(sub.Balance)
	}
	return bal
}
