package core

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the calendar-day format used in stored documents.
const DateLayout = "2006-01-02"

const (
	Checking     AccountType = "Checking"
	Savings      AccountType = "Savings"
	OtherAccount AccountType = "Other"
)

const (
	StatusActive   ItemStatus = "active"
	StatusArchived ItemStatus = "archived"
)

const (
	PaymentRegular PaymentType = "regular"
	PaymentExtra   PaymentType = "extra"
)

const (
	AssetHome  AssetType = "home"
	AssetOther AssetType = "otherAsset"
)

const (
	TraditionalIRA  RetirementAccountType = "Traditional IRA"
	RothIRA         RetirementAccountType = "Roth IRA"
	SEPIRA          RetirementAccountType = "SEP IRA"
	SimpleIRA       RetirementAccountType = "SIMPLE IRA"
	Plan401k        RetirementAccountType = "401(k)"
	Roth401k        RetirementAccountType = "Roth 401(k)"
	Plan403b        RetirementAccountType = "403(b)"
	ThriftSavings   RetirementAccountType = "Thrift Savings Plan"
	OtherRetirement RetirementAccountType = "Other"
)

const (
	Daily    Frequency = "Daily"
	Weekly   Frequency = "Weekly"
	BiWeekly Frequency = "Bi-Weekly"
	Monthly  Frequency = "Monthly"
	Yearly   Frequency = "Yearly"
)

const (
	Income  EventType = "income"
	Expense EventType = "expense"
)

type (
	AccountType           string
	RetirementAccountType string
	ItemStatus            string
	PaymentType           string
	AssetType             string
	Frequency             string
	EventType             string

	// Date is a calendar day at UTC midnight.
	Date struct {
		time.Time
	}

	Account struct {
		ID       string      `json:"id"`
		Name     string      `json:"name"`
		Type     AccountType `json:"type"`
		Balance  Money       `json:"balance"`
		ParentID string      `json:"parentId,omitempty"` // set on sub-accounts
	}

	CreditCard struct {
		ID             string          `json:"id"`
		Name           string          `json:"name"`
		Issuer         string          `json:"issuer"`
		CreditLimit    Money           `json:"creditLimit"`
		Balance        Money           `json:"balance"` // amount owed
		APR            decimal.Decimal `json:"apr"`
		MinimumPayment Money           `json:"minimumPayment"`
	}

	// Transaction amounts are signed. On a bank account positive is income.
	// On a card positive is a purchase and negative a payment or refund.
	Transaction struct {
		ID          string `json:"id"`
		AccountID   string `json:"accountId"`
		Amount      Money  `json:"amount"`
		Date        Date   `json:"date"`
		Description string `json:"description"`
		Payee       string `json:"payee,omitempty"`
		Category    string `json:"category"`
		IsInternal  bool   `json:"isInternal,omitempty"`
		TransferID  string `json:"transferId,omitempty"`
	}

	Category struct {
		ID        string `json:"id"`
		Name      string `json:"name"`
		AccountID string `json:"accountId"`
	}

	FormalDebt struct {
		ID                  string          `json:"id"`
		Name                string          `json:"name"`
		Description         string          `json:"description"`
		TotalAmount         Money           `json:"totalAmount"` // original principal
		InterestRate        decimal.Decimal `json:"interestRate"`
		NextPaymentDate     Date            `json:"nextPaymentDate"`
		Status              ItemStatus      `json:"status"`
		PaidOffDate         Date            `json:"paidOffDate"`
		CreationDate        Date            `json:"creationDate"`
		LinkedAssetID       string          `json:"linkedAssetId,omitempty"`
		AssetType           AssetType       `json:"assetType,omitempty"`
		LoanTermYears       int             `json:"loanTermYears,omitempty"`
		LoanOriginationDate Date            `json:"loanOriginationDate"`
		MonthlyPayment      Money           `json:"monthlyPayment"` // P&I
		MonthlyTax          Money           `json:"monthlyTax"`
		MonthlyInsurance    Money           `json:"monthlyInsurance"`
		MonthlyPMI          Money           `json:"monthlyPMI"`
	}

	Commitment struct {
		ID           string     `json:"id"`
		Name         string     `json:"name"`
		Amount       Money      `json:"amount"`
		DueDate      Date       `json:"dueDate"`
		Status       ItemStatus `json:"status"`
		PaidOffDate  Date       `json:"paidOffDate"`
		CreationDate Date       `json:"creationDate"`
	}

	Receivable struct {
		ID           string     `json:"id"`
		Name         string     `json:"name"`
		From         string     `json:"from"`
		Amount       Money      `json:"amount"`
		DueDate      Date       `json:"dueDate"`
		Status       ItemStatus `json:"status"`
		PaidOffDate  Date       `json:"paidOffDate"`
		CreationDate Date       `json:"creationDate"`
	}

	Breakdown struct {
		Principal Money `json:"principal"`
		Interest  Money `json:"interest"`
		Escrow    Money `json:"escrow"`
		Total     Money `json:"total"`
	}

	// PaymentRecord is a payment against a debt, commitment or receivable.
	// Breakdown is only set on mortgage payments and is owned by the
	// amortization engine; treat it as immutable.
	PaymentRecord struct {
		ID            string      `json:"id"`
		ItemID        string      `json:"itemId"`
		AccountID     string      `json:"accountId"`
		Amount        Money       `json:"amount"`
		Date          Date        `json:"date"`
		TransactionID string      `json:"transactionId,omitempty"`
		PaymentType   PaymentType `json:"paymentType,omitempty"`
		Breakdown     *Breakdown  `json:"breakdown,omitempty"`
	}

	// Holding.AccountID links a retirement holding to its retirement account.
	Holding struct {
		ID        string          `json:"id"`
		Symbol    string          `json:"symbol"`
		Name      string          `json:"name"`
		Quantity  decimal.Decimal `json:"quantity"`
		Price     Money           `json:"price"`
		CostBasis Money           `json:"costBasis"`
		AccountID string          `json:"accountId,omitempty"`
	}

	RetirementAccount struct {
		ID   string                `json:"id"`
		Name string                `json:"name"`
		Type RetirementAccountType `json:"type"`
	}

	Contribution struct {
		ID        string `json:"id"`
		AccountID string `json:"accountId"` // retirement account
		Amount    Money  `json:"amount"`
		Date      Date   `json:"date"`
	}

	OtherAsset struct {
		ID           string `json:"id"`
		Name         string `json:"name"`
		Description  string `json:"description"`
		CurrentValue Money  `json:"currentValue"`
		CostBasis    Money  `json:"costBasis"`
	}

	RecurringEvent struct {
		ID        string    `json:"id"`
		Name      string    `json:"name"`
		Type      EventType `json:"type"`
		Amount    Money     `json:"amount"`
		Frequency Frequency `json:"frequency"`
		StartDate Date      `json:"startDate"`
		AccountID string    `json:"accountId"`
	}

	Home struct {
		ID            string `json:"id"`
		Name          string `json:"name"`
		PurchasePrice Money  `json:"purchasePrice"`
		PurchaseDate  Date   `json:"purchaseDate"`
		CurrentValue  Money  `json:"currentValue"`
		LinkedDebtID  string `json:"linkedDebtId,omitempty"`
		DownPayment   Money  `json:"downPayment"`
		ClosingCosts  Money  `json:"closingCosts"`
	}

	HomeImprovement struct {
		ID          string `json:"id"`
		HomeID      string `json:"homeId"`
		Description string `json:"description"`
		Cost        Money  `json:"cost"`
		Date        Date   `json:"date"`
	}
)

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf returns the calendar day of t in t's own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return NewDate(y, int(m), d)
}

// ParseDate parses "2006-01-02". Full RFC 3339 timestamps are accepted too.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(DateLayout, s); err == nil {
		return DateOf(t), nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return DateOf(t), nil
}

func (d Date) Validate() error {
	if d.IsZero() {
		return errors.New("date cannot be zero")
	}
	_, month, day := d.Date()
	if day < 1 || day > 31 {
		return ErrInvalidDay
	}
	if month < 1 || month > 12 {
		return ErrInvalidMonth
	}
	return nil
}

// Day returns the day of the month
func (d Date) Day() int {
	return d.Time.Day()
}

// Month returns the month
func (d Date) Month() int {
	return int(d.Time.Month())
}

// Year returns the year
func (d Date) Year() int {
	return d.Time.Year()
}

// IsEmpty returns true for the zero date used by optional fields.
func (d Date) IsEmpty() bool {
	return d.IsZero()
}

func (d Date) AddDays(n int) Date     { return Date{Time: d.Time.AddDate(0, 0, n)} }
func (d Date) Before(o Date) bool     { return d.Time.Before(o.Time) }
func (d Date) After(o Date) bool      { return d.Time.After(o.Time) }
func (d Date) Equal(o Date) bool      { return d.Time.Equal(o.Time) }
func (d Date) Weekday() time.Weekday  { return d.Time.Weekday() }
func (d Date) DaysSince(o Date) int   { return int(d.Time.Sub(o.Time).Hours() / 24) }
func (d Date) Compare(o Date) int     { return d.Time.Compare(o.Time) }

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateLayout)
}

// LastDayOfMonth returns the number of days in d's month.
func (d Date) LastDayOfMonth() int {
	return time.Date(d.Year(), d.Time.Month()+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// MarshalJSON encodes the zero date as null.
func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.Format(DateLayout))
}

func (d *Date) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*d = Date{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return ErrInvalidDate
	}
	if s == "" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// IsSubAccount reports whether the account has a parent.
func (a Account) IsSubAccount() bool { return a.ParentID != "" }

func (a Account) Validate() error {
	if strings.TrimSpace(a.Name) == "" {
		return Invalid("name", ErrEmptyName)
	}
	switch a.Type {
	case Checking, Savings, OtherAccount:
	default:
		return Invalid("type", errors.New("invalid account type"))
	}
	return nil
}

func (c CreditCard) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return Invalid("name", ErrEmptyName)
	}
	if c.CreditLimit.IsNegative() {
		return Invalid("creditLimit", ErrInvalidAmount)
	}
	return nil
}

// IsTransferLeg reports whether the transaction is half of a linked pair.
func (t Transaction) IsTransferLeg() bool { return t.TransferID != "" }

func (t Transaction) Validate() error {
	if strings.TrimSpace(t.AccountID) == "" {
		return Invalid("accountId", ErrMissingAccount)
	}
	if t.Amount.IsZero() {
		return Invalid("amount", ErrInvalidAmount)
	}
	if err := t.Date.Validate(); err != nil {
		return Invalid("date", err)
	}
	if len(t.Description) > 200 {
		return Invalid("description", errors.New("description too long (max 200 characters)"))
	}
	return nil
}

// IsMortgage reports whether payments on this debt are amortized.
func (d FormalDebt) IsMortgage() bool { return d.AssetType == AssetHome }

func (d FormalDebt) IsActive() bool { return d.Status != StatusArchived }

// Escrow returns the fixed monthly tax, insurance and PMI portion.
func (d FormalDebt) Escrow() Money {
	return Sum(d.MonthlyTax, d.MonthlyInsurance, d.MonthlyPMI)
}

// StartDate is when the balance was first owed.
func (d FormalDebt) StartDate() Date {
	if !d.LoanOriginationDate.IsZero() {
		return d.LoanOriginationDate
	}
	return d.CreationDate
}

// Label is the human-facing name of the debt.
func (d FormalDebt) Label() string {
	if d.Description != "" {
		return d.Description
	}
	return d.Name
}

func (d FormalDebt) Validate() error {
	if strings.TrimSpace(d.Label()) == "" {
		return Invalid("description", ErrEmptyName)
	}
	if !d.TotalAmount.IsPositive() {
		return Invalid("totalAmount", ErrInvalidAmount)
	}
	if d.InterestRate.IsNegative() {
		return Invalid("interestRate", errors.New("interest rate cannot be negative"))
	}
	return nil
}

func (c Commitment) IsActive() bool { return c.Status != StatusArchived }

func (c Commitment) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return Invalid("name", ErrEmptyName)
	}
	if !c.Amount.IsPositive() {
		return Invalid("amount", ErrInvalidAmount)
	}
	return nil
}

func (r Receivable) IsActive() bool { return r.Status != StatusArchived }

func (r Receivable) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return Invalid("name", ErrEmptyName)
	}
	if !r.Amount.IsPositive() {
		return Invalid("amount", ErrInvalidAmount)
	}
	return nil
}

// Principal returns the part of the payment that reduced the balance owed.
// Mortgage payments without a breakdown have not been amortized yet and
// count in full.
func (p PaymentRecord) Principal() Money {
	if p.Breakdown != nil {
		return p.Breakdown.Principal
	}
	return p.Amount
}

// Value is quantity times current price.
func (h Holding) Value() Money { return h.Price.Mul(h.Quantity) }

func (h Holding) Validate() error {
	if strings.TrimSpace(h.Symbol) == "" {
		return Invalid("symbol", ErrEmptyName)
	}
	if h.Quantity.IsNegative() {
		return Invalid("quantity", errors.New("quantity cannot be negative"))
	}
	return nil
}

// RetirementAccountTypes lists the supported plan types.
var RetirementAccountTypes = []RetirementAccountType{
	TraditionalIRA, RothIRA, SEPIRA, SimpleIRA, Plan401k, Roth401k, Plan403b, ThriftSavings, OtherRetirement,
}

func (a RetirementAccount) Validate() error {
	if strings.TrimSpace(a.Name) == "" {
		return Invalid("name", ErrEmptyName)
	}
	if !slices.Contains(RetirementAccountTypes, a.Type) {
		return Invalid("type", fmt.Errorf("unknown retirement account type %q", a.Type))
	}
	return nil
}

func (c Contribution) Validate() error {
	if !c.Amount.IsPositive() {
		return Invalid("amount", ErrInvalidAmount)
	}
	if err := c.Date.Validate(); err != nil {
		return Invalid("date", err)
	}
	return nil
}

func (e RecurringEvent) Validate() error {
	if strings.TrimSpace(e.Name) == "" {
		return Invalid("name", ErrEmptyName)
	}
	if !e.Amount.IsPositive() {
		return Invalid("amount", ErrInvalidAmount)
	}
	switch e.Type {
	case Income, Expense:
	default:
		return Invalid("type", errors.New("event type must be income or expense"))
	}
	switch e.Frequency {
	case Daily, Weekly, BiWeekly, Monthly, Yearly:
	default:
		return Invalid("frequency", ErrInvalidFrequency)
	}
	if err := e.StartDate.Validate(); err != nil {
		return Invalid("startDate", err)
	}
	return nil
}

// Signed returns the amount with the sign of its effect on the balance.
func (e RecurringEvent) Signed() Money {
	if e.Type == Expense {
		return e.Amount.Neg()
	}
	return e.Amount
}

func (h Home) Validate() error {
	if strings.TrimSpace(h.Name) == "" {
		return Invalid("name", ErrEmptyName)
	}
	if h.PurchasePrice.IsNegative() || h.CurrentValue.IsNegative() {
		return Invalid("value", ErrInvalidAmount)
	}
	return nil
}

// PrincipalOf returns how much of p reduced the balance of d. Only
// mortgage payments are split; on other debts the whole amount counts.
func (d FormalDebt) PrincipalOf(p PaymentRecord) Money {
	if d.IsMortgage() {
		return p.Principal()
	}
	return p.Amount
}
