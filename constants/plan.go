package constants

// PlanType is the subscription tier reconciled from billing webhook events.
type PlanType string

const (
	PlanFree  PlanType = "FREE"
	PlanBasic PlanType = "BASIC"
	PlanPro   PlanType = "PRO"
)

// PlanCredits is the number of credits granted per billing cycle for each plan.
var PlanCredits = map[PlanType]int{
	PlanFree:  1000,
	PlanBasic: 10000,
	PlanPro:   20000,
}

// CreditsPerFile is the credit cost of one extraction.
const CreditsPerFile = 100
