package investment

import "time"

// Investment terms
const (
	MinimumInvestment = int64(1000)
	ProfitRate        = 0.6

	NormalPeriod      = 24 * time.Hour
	TestPeriod        = time.Minute
	AdminCreditPeriod = time.Hour
)
