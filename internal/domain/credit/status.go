package credit

// RecomputeStatus derives the credit-level status from the aggregate state of
// its installments. Refinanced credits are immutable and open credits are
// cycle-driven, so both are returned unchanged. Runs after any installment
// mutation.
func RecomputeStatus(c *Credit, installments []Installment) CreditStatus {
	if c.Status == CreditStatusRefinanced || c.Status == CreditStatusVoided || c.IsOpen() {
		return c.Status
	}
	if len(installments) == 0 {
		return c.Status
	}

	allPaid := true
	allUnpaidOverdue := true
	for idx := range installments {
		switch installments[idx].Status {
		case InstallmentStatusPaid, InstallmentStatusRefinanced, InstallmentStatusVoid:
			continue
		case InstallmentStatusOverdue:
			allPaid = false
		default:
			allPaid = false
			allUnpaidOverdue = false
		}
	}

	switch {
	case allPaid:
		return CreditStatusPaid
	case allUnpaidOverdue:
		return CreditStatusOverdue
	default:
		return CreditStatusPending
	}
}
