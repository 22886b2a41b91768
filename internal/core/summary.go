package core

// CategoryAmount represents an amount aggregated by category name.
type CategoryAmount struct {
	Name   string
	Amount Money
}

// MonthOverview summarizes the transactions of one account for a year+month.
type MonthOverview struct {
	Year       int
	Month      int // 1-12
	Income     Money
	Spending   Money // positive
	Net        Money
	ByCategory []CategoryAmount // signed sums, largest outflow first
}
