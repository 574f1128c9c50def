package payroll

import (
	"time"

	"github.com/Vishal6374/hr-harmony-sub000/internal/workrules"
)

// slipInput is everything the money math needs about one employee-month.
type slipInput struct {
	MonthlySalary   int64
	DaysInMonth     int
	AbsentDays      int
	HalfDays        int
	Reimbursements  int64
	OtherDeductions int64
}

type slipAmounts struct {
	Basic           int64
	Allowances      int64
	Gross           int64
	LossOfPay       int64
	PF              int64
	Tax             int64
	OtherDeductions int64
	TotalDeductions int64
	Net             int64
}

// computeSlip derives every slip amount from the input and the company
// rules. Integer cents throughout; each intermediate rounds half up so the
// same input always yields the same output.
func computeSlip(in slipInput, rules workrules.Rules) slipAmounts {
	daily := divRound(in.MonthlySalary, int64(in.DaysInMonth))

	lop := daily*int64(in.AbsentDays) + divRound(daily*int64(in.HalfDays), 2)
	basic := mulBps(in.MonthlySalary, rules.BasicPctBps)
	pf := mulBps(basic, rules.PFRateBps)
	tax := mulBps(in.MonthlySalary, slabRate(in.MonthlySalary, rules.TaxSlabs))

	gross := in.MonthlySalary + in.Reimbursements
	deductions := lop + pf + tax + in.OtherDeductions

	return slipAmounts{
		Basic:           basic,
		Allowances:      in.MonthlySalary - basic,
		Gross:           gross,
		LossOfPay:       lop,
		PF:              pf,
		Tax:             tax,
		OtherDeductions: in.OtherDeductions,
		TotalDeductions: deductions,
		Net:             gross - deductions,
	}
}

// slabRate picks the marginal rate of the slab the monthly salary falls in.
// MaxSalary zero means the slab is open-ended.
func slabRate(salary int64, slabs []workrules.TaxSlab) int64 {
	for _, s := range slabs {
		if salary >= s.MinSalary && (s.MaxSalary == 0 || salary < s.MaxSalary) {
			return s.RateBps
		}
	}
	return 0
}

func mulBps(v, bps int64) int64 {
	return divRound(v*bps, 10_000)
}

// divRound divides rounding half away from zero.
func divRound(num, den int64) int64 {
	if den == 0 {
		return 0
	}
	if (num < 0) != (den < 0) {
		return (num - den/2) / den
	}
	return (num + den/2) / den
}

func daysInMonth(month, year int) int {
	return time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
