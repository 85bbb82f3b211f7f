package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Phase identifies the settlement phase of a balance or posting.
type Phase string

const (
	PhaseCommitted Phase = "COMMITTED"
	PhasePending   Phase = "PENDING"
)

// Address identifies a named balance bucket on an account.
type Address string

const (
	// AddressDefault is the customer's available balance.
	AddressDefault Address = "DEFAULT"
	// AddressAccruedPayable holds interest accrued but not yet applied.
	AddressAccruedPayable Address = "ACCRUED_PAYABLE"
	// AddressAccruedReceivable is the asset-side counterpart of AddressAccruedPayable.
	AddressAccruedReceivable Address = "ACCRUED_RECEIVABLE"
	// AddressAppliedInterestTracker accumulates lifetime applied interest.
	AddressAppliedInterestTracker Address = "APPLIED_INTEREST_TRACKER"
	// AddressEarlyWithdrawalsTracker accumulates withdrawals counted against
	// the fee-free allowance.
	AddressEarlyWithdrawalsTracker Address = "EARLY_WITHDRAWALS_TRACKER"
	// AddressInternalContra is the suspense address balancing tracker-only postings.
	AddressInternalContra Address = "INTERNAL_CONTRA"
)

// Instruction-detail keys recognised by the engine.
const (
	DetailPaymentType   = "payment_type"
	DetailForceOverride = "force_override"
)

// Posting is one signed movement on an account address.
// Amounts are liability-side positive: a credit to the customer is positive.
type Posting struct {
	AccountID    string
	Address      Address
	Denomination string
	Phase        Phase
	Amount       decimal.Decimal
}

// PostingBatch is an ordered list of movements submitted as one instruction,
// plus free-text instruction-detail metadata. All movements in a batch commit
// atomically or not at all.
type PostingBatch struct {
	ID                  string
	ClientTransactionID string
	ValueDate           time.Time
	InsertedAt          time.Time
	Details             map[string]string
	Postings            []Posting
}

// Validate checks the double-entry invariant: signed amounts must sum to
// zero per denomination.
func (b *PostingBatch) Validate() error {
	sums := make(map[string]decimal.Decimal)
	for _, p := range b.Postings {
		sums[p.Denomination] = sums[p.Denomination].Add(p.Amount)
	}

	for denom, sum := range sums {
		if !sum.IsZero() {
			return NewConfigurationError("postings for %s sum to %s, want 0", denom, sum)
		}
	}

	return nil
}

// Detail returns an instruction-detail value, or "" when absent.
func (b *PostingBatch) Detail(key string) string {
	if b.Details == nil {
		return ""
	}

	return b.Details[key]
}

// PaymentType returns the free-text payment channel of the instruction.
func (b *PostingBatch) PaymentType() string {
	return b.Detail(DetailPaymentType)
}

// ForceOverride reports whether the batch carries the override flag that
// skips all validation.
func (b *PostingBatch) ForceOverride() bool {
	return b.Detail(DetailForceOverride) == "true"
}

// CustomerMovements returns the postings that touch the given account's
// DEFAULT address in the given denomination.
func (b *PostingBatch) CustomerMovements(accountID, denomination string) []Posting {
	var out []Posting
	for _, p := range b.Postings {
		if p.AccountID == accountID && p.Address == AddressDefault && p.Denomination == denomination {
			out = append(out, p)
		}
	}

	return out
}

// NetMovement returns the signed net effect of the batch on the given
// account's available balance. Positive is a deposit, negative a withdrawal.
func (b *PostingBatch) NetMovement(accountID, denomination string) decimal.Decimal {
	net := decimal.Zero
	for _, p := range b.CustomerMovements(accountID, denomination) {
		net = net.Add(p.Amount)
	}

	return net
}

// BalanceKey addresses one balance within an account's ledger state.
type BalanceKey struct {
	Address      Address
	Denomination string
	Phase        Phase
}

// Balances is a snapshot of an account's ledger state keyed by
// (address, denomination, phase). Missing keys read as zero.
type Balances map[BalanceKey]decimal.Decimal

// Committed returns the committed-phase balance at an address.
func (b Balances) Committed(addr Address, denomination string) decimal.Decimal {
	return b[BalanceKey{Address: addr, Denomination: denomination, Phase: PhaseCommitted}]
}

// Available returns the customer's committed available balance.
func (b Balances) Available(denomination string) decimal.Decimal {
	return b.Committed(AddressDefault, denomination)
}

// AccruedPayable returns unapplied accrued interest owed to the customer.
func (b Balances) AccruedPayable(denomination string) decimal.Decimal {
	return b.Committed(AddressAccruedPayable, denomination)
}

// AccruedReceivable returns unapplied accrued interest owed by the customer.
func (b Balances) AccruedReceivable(denomination string) decimal.Decimal {
	return b.Committed(AddressAccruedReceivable, denomination)
}

// EarlyWithdrawals returns the early-withdrawals tracker balance.
func (b Balances) EarlyWithdrawals(denomination string) decimal.Decimal {
	return b.Committed(AddressEarlyWithdrawalsTracker, denomination)
}

// AppliedInterest returns the lifetime applied-interest tracker balance.
func (b Balances) AppliedInterest(denomination string) decimal.Decimal {
	return b.Committed(AddressAppliedInterestTracker, denomination)
}

// ApplyBatch returns a copy of the snapshot with the batch's postings for
// the given account applied. The receiver is not mutated.
func (b Balances) ApplyBatch(batch *PostingBatch, accountID string) Balances {
	next := make(Balances, len(b)+len(batch.Postings))
	for k, v := range b {
		next[k] = v
	}

	for _, p := range batch.Postings {
		if p.AccountID != accountID {
			continue
		}

		key := BalanceKey{Address: p.Address, Denomination: p.Denomination, Phase: p.Phase}
		next[key] = next[key].Add(p.Amount)
	}

	return next
}
