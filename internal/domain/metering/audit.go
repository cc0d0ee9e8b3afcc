package metering

import "github.com/shopspring/decimal"

// DefaultAuditThreshold flags a consumption 50% above the property's average
var DefaultAuditThreshold = decimal.NewFromFloat(1.5)

// ConsumptionCheck is the outcome of auditing one reading
type ConsumptionCheck struct {
	Reading Reading
	Average decimal.Decimal
	Alert   bool
}

// AuditConsumption compares a reading against the average consumption of the
// property's other readings. It alerts when that average is positive and the
// reading exceeds average*threshold.
func AuditConsumption(r Reading, others []Reading, threshold decimal.Decimal) ConsumptionCheck {
	sum := decimal.Zero
	n := int64(0)
	for _, o := range others {
		if o.ID == r.ID || o.PropertyID != r.PropertyID {
			continue
		}
		sum = sum.Add(o.Consumption)
		n++
	}

	check := ConsumptionCheck{Reading: r, Average: decimal.Zero}
	if n == 0 {
		return check
	}
	check.Average = sum.Div(decimal.NewFromInt(n))
	check.Alert = check.Average.IsPositive() && r.Consumption.GreaterThan(check.Average.Mul(threshold))
	return check
}
