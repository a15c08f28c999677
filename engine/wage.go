/*
wage.go - HourBucket to PayrollRecord

PURPOSE:
  Prices an employee's hour bucket under the single active wage rule.

PRICING:
  regularPay  = regular  * wage
  overtimePay = overtime * wage * overtimeRate
  nightPay    = night    * wage * (nightRate   - 1)   overlay premium
  holidayPay  = holiday  * wage * (holidayRate - 1)   overlay premium
  totalPay    = sum of the four

  Night and holiday hours are already counted once at base (or overtime)
  rate inside regular/overtime, so the overlays add only the premium part.
  Amounts are computed in decimal and never rounded mid-chain.

RULE RESOLUTION:
  Exactly one rule must be active. Zero -> ErrNoActiveWageRule, more than
  one -> ErrAmbiguousWageRule. A rule whose conditions are unmet degrades
  to base pay: every premium multiplier is treated as 1.0.

SEE ALSO:
  - hours.go: Produces the bucket priced here
  - report.go: Drives this per employee per period
*/
package engine

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// RULE RESOLUTION
// =============================================================================

// ActiveRule resolves the single active rule out of the full rule list.
func ActiveRule(rules []WageRule) (*WageRule, error) {
	var active *WageRule
	for i := range rules {
		if !rules[i].Active {
			continue
		}
		if active != nil {
			return nil, ErrAmbiguousWageRule
		}
		active = &rules[i]
	}
	if active == nil {
		return nil, ErrNoActiveWageRule
	}
	return active, nil
}

// conditionsMet evaluates the rule's predicate set against the bucket and
// period. An absent predicate passes.
func conditionsMet(rule WageRule, bucket HourBucket, period Period) bool {
	c := rule.Conditions
	if c.MinHours != nil && bucket.Total() < *c.MinHours {
		return false
	}
	if len(c.Weekdays) > 0 {
		hit := false
		for _, wd := range period.Weekdays() {
			if containsWeekday(c.Weekdays, wd) {
				hit = true
				break
			}
		}
		if !hit {
			return false
		}
	}
	return true
}

// =============================================================================
// PRICING
// =============================================================================

// ApplyWageRule prices a bucket for one employee under the rule. The rule is
// assumed already resolved as active; condition evaluation happens here.
func ApplyWageRule(emp Employee, bucket HourBucket, rule WageRule, kind PayrollKind, period Period) PayrollRecord {
	otRate := rule.OvertimeRate
	nightRate := rule.NightRate
	holidayRate := rule.HolidayRate
	if !conditionsMet(rule, bucket, period) {
		otRate, nightRate, holidayRate = 1.0, 1.0, 1.0
	}

	wage := emp.HourlyWage

	regularPay := wage.Mul(decimal.NewFromFloat(bucket.Regular))
	overtimePay := wage.Mul(decimal.NewFromFloat(bucket.Overtime)).
		Mul(decimal.NewFromFloat(otRate))
	nightPay := wage.Mul(decimal.NewFromFloat(bucket.Night)).
		Mul(premium(nightRate))
	holidayPay := wage.Mul(decimal.NewFromFloat(bucket.Holiday)).
		Mul(premium(holidayRate))

	return PayrollRecord{
		EmployeeID:  emp.ID,
		Kind:        kind,
		Period:      period,
		Hours:       bucket,
		RegularPay:  regularPay,
		OvertimePay: overtimePay,
		NightPay:    nightPay,
		HolidayPay:  holidayPay,
		TotalPay:    regularPay.Add(overtimePay).Add(nightPay).Add(holidayPay),
	}
}

// premium converts a multiplier into its overlay premium factor, floored at
// zero so a sub-1.0 rate never subtracts pay.
func premium(rate float64) decimal.Decimal {
	if rate <= 1.0 {
		return decimal.Zero
	}
	return decimal.NewFromFloat(rate - 1.0)
}
