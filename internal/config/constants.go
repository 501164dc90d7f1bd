package config

const (
	// DefaultDatabasePath is the default path for the circulation database
	DefaultDatabasePath = "./circulation.db"

	DefaultLoanPeriodDays = 14
	DefaultFineRatePerDay = 5
)
