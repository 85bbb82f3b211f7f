package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/iho/depositcore/internal/domain"
	"github.com/iho/depositcore/internal/usecase"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "depositcore-cli",
		Short: "Deposit engine offline tools",
		Long:  "Evaluate posting batches, daily accruals and application schedules against a product configuration, without a running service.",
	}

	rootCmd.AddCommand(evaluateCmd(), accrueCmd(), projectCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadProduct(path string) (*domain.ProductConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var raw domain.RawProductConfig
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("malformed product file %s: %w", path, err)
	}

	return domain.ParseProductConfig(raw)
}

// scenarioFile is the offline stand-in for account state and the proposed
// batch: what the service would read from its stores, in one JSON file.
type scenarioFile struct {
	AccountID string            `json:"account_id"`
	OpenedAt  time.Time         `json:"opened_at"`
	Flags     []scenarioFlag    `json:"flags"`
	ValueDate *time.Time        `json:"value_date"`
	Details   map[string]string `json:"details"`
	Balances  []balanceLine     `json:"balances"`
	Postings  []scenarioPosting `json:"postings"`
}

type scenarioFlag struct {
	Name        string    `json:"name"`
	ActivatedAt time.Time `json:"activated_at"`
	ExpiresAt   time.Time `json:"expires_at"`
}

type balanceLine struct {
	Address      string          `json:"address"`
	Denomination string          `json:"denomination"`
	Phase        string          `json:"phase"`
	Amount       decimal.Decimal `json:"amount"`
}

type scenarioPosting struct {
	AccountID    string          `json:"account_id"`
	Address      string          `json:"address"`
	Denomination string          `json:"denomination"`
	Phase        string          `json:"phase"`
	Amount       decimal.Decimal `json:"amount"`
}

func loadScenario(path string) (*scenarioFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var s scenarioFile
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("malformed scenario file %s: %w", path, err)
	}
	if s.AccountID == "" {
		s.AccountID = "offline"
	}

	return &s, nil
}

func buildEvaluation(cfg *domain.ProductConfig, s *scenarioFile) (*usecase.Evaluation, error) {
	now := time.Now().UTC()
	valueDate := now
	if s.ValueDate != nil {
		valueDate = s.ValueDate.UTC()
	}

	flags := make([]domain.TierFlag, 0, len(s.Flags))
	for _, f := range s.Flags {
		flags = append(flags, domain.TierFlag{
			Name:        f.Name,
			ActivatedAt: f.ActivatedAt,
			ExpiresAt:   f.ExpiresAt,
		})
	}

	account := &domain.Account{
		ID:           s.AccountID,
		ProductID:    cfg.ID,
		Denomination: cfg.Denomination,
		OpenedAt:     s.OpenedAt,
		Flags:        flags,
	}

	balances := make(domain.Balances, len(s.Balances))
	for _, l := range s.Balances {
		key := domain.BalanceKey{
			Address:      domain.Address(l.Address),
			Denomination: l.Denomination,
			Phase:        domain.Phase(l.Phase),
		}
		if key.Address == "" {
			key.Address = domain.AddressDefault
		}
		if key.Denomination == "" {
			key.Denomination = cfg.Denomination
		}
		if key.Phase == "" {
			key.Phase = domain.PhaseCommitted
		}
		balances[key] = balances[key].Add(l.Amount)
	}

	postings := make([]domain.Posting, 0, len(s.Postings))
	for _, p := range s.Postings {
		posting := domain.Posting{
			AccountID:    p.AccountID,
			Address:      domain.Address(p.Address),
			Denomination: p.Denomination,
			Phase:        domain.Phase(p.Phase),
			Amount:       p.Amount,
		}
		if posting.AccountID == "" {
			posting.AccountID = account.ID
		}
		if posting.Address == "" {
			posting.Address = domain.AddressDefault
		}
		if posting.Denomination == "" {
			posting.Denomination = cfg.Denomination
		}
		if posting.Phase == "" {
			posting.Phase = domain.PhaseCommitted
		}
		postings = append(postings, posting)
	}

	batch := &domain.PostingBatch{
		ID:                  "offline",
		ClientTransactionID: "offline",
		ValueDate:           valueDate,
		InsertedAt:          now,
		Details:             s.Details,
		Postings:            postings,
	}
	if err := batch.Validate(); err != nil {
		return nil, err
	}

	return &usecase.Evaluation{
		Account:  account,
		Config:   cfg,
		Batch:    batch,
		Balances: balances,
		Tier:     cfg.Tiers.Resolve(account.Flags, valueDate),
		Calendar: domain.NewCalendar(nil),
		Now:      valueDate,
	}, nil
}

type evaluateOutput struct {
	Accepted         bool             `json:"accepted"`
	Tier             string           `json:"tier"`
	RejectionKind    string           `json:"rejection_kind,omitempty"`
	RejectionReason  string           `json:"rejection_reason,omitempty"`
	Charges          []chargeOutput   `json:"charges,omitempty"`
	TrackerIncrement decimal.Decimal  `json:"tracker_increment"`
	Forfeited        decimal.Decimal  `json:"forfeited"`
	FullyWithdrawn   bool             `json:"fully_withdrawn"`
	SidePostings     []domain.Posting `json:"side_postings,omitempty"`
}

type chargeOutput struct {
	FeeType     string          `json:"fee_type"`
	PaymentType string          `json:"payment_type,omitempty"`
	Amount      decimal.Decimal `json:"amount"`
}

func evaluateCmd() *cobra.Command {
	var productPath, scenarioPath string

	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Run a posting batch through the product's rule chain",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadProduct(productPath)
			if err != nil {
				return err
			}

			scenario, err := loadScenario(scenarioPath)
			if err != nil {
				return err
			}

			ev, err := buildEvaluation(cfg, scenario)
			if err != nil {
				return err
			}

			out, err := evaluate(cfg, ev)
			if err != nil {
				return err
			}

			printJSON(out)
			return nil
		},
	}

	cmd.Flags().StringVar(&productPath, "product", "", "Product configuration JSON file")
	cmd.Flags().StringVar(&scenarioPath, "scenario", "", "Scenario JSON file (account state + batch)")
	cmd.MarkFlagRequired("product")
	cmd.MarkFlagRequired("scenario")

	return cmd
}

func evaluate(cfg *domain.ProductConfig, ev *usecase.Evaluation) (*evaluateOutput, error) {
	out := &evaluateOutput{Tier: ev.Tier}

	rejection, err := usecase.NewChain(cfg).Validate(ev)
	if err != nil {
		return nil, err
	}
	if rejection != nil {
		out.RejectionKind = string(rejection.Kind)
		out.RejectionReason = rejection.Reason
		return out, nil
	}

	assessment, err := usecase.NewFeeCalculator(cfg).AssessFees(ev)
	if err != nil {
		return nil, err
	}
	tracker := usecase.NewWithdrawalTracker(cfg).OnWithdrawal(ev)

	out.Accepted = true
	out.TrackerIncrement = tracker.TrackerIncrement
	out.Forfeited = tracker.Forfeited
	out.FullyWithdrawn = tracker.FullyWithdrawn
	out.SidePostings = append(assessment.Postings, tracker.Postings...)
	for _, c := range assessment.Charges {
		out.Charges = append(out.Charges, chargeOutput{
			FeeType:     c.FeeType,
			PaymentType: c.PaymentType,
			Amount:      c.Amount,
		})
	}

	return out, nil
}

type accrueOutput struct {
	Tier       string          `json:"tier"`
	Rate       decimal.Decimal `json:"rate"`
	Balance    decimal.Decimal `json:"balance"`
	DaysInYear int             `json:"days_in_year"`
	Accrued    decimal.Decimal `json:"accrued"`
}

func accrueCmd() *cobra.Command {
	var productPath, balanceStr, tier, atStr string

	cmd := &cobra.Command{
		Use:   "accrue",
		Short: "Compute one day's interest accrual for a balance",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadProduct(productPath)
			if err != nil {
				return err
			}

			balance, err := decimal.NewFromString(balanceStr)
			if err != nil {
				return fmt.Errorf("bad balance %q: %w", balanceStr, err)
			}

			at := time.Now().UTC()
			if atStr != "" {
				at, err = time.Parse(time.RFC3339, atStr)
				if err != nil {
					return fmt.Errorf("bad time %q: %w", atStr, err)
				}
			}

			out, err := accrue(cfg, balance, tier, at)
			if err != nil {
				return err
			}

			printJSON(out)
			return nil
		},
	}

	cmd.Flags().StringVar(&productPath, "product", "", "Product configuration JSON file")
	cmd.Flags().StringVar(&balanceStr, "balance", "", "End-of-day balance to accrue on")
	cmd.Flags().StringVar(&tier, "tier", "", "Tier name (defaults to the product's default tier)")
	cmd.Flags().StringVar(&atStr, "at", "", "Accrual time, RFC 3339 (defaults to now)")
	cmd.MarkFlagRequired("product")
	cmd.MarkFlagRequired("balance")

	return cmd
}

func accrue(cfg *domain.ProductConfig, balance decimal.Decimal, tier string, at time.Time) (*accrueOutput, error) {
	if tier == "" {
		tier = cfg.Tiers.Default
	}

	table, err := cfg.Rates.TableAt(at)
	if err != nil {
		return nil, err
	}

	rate, err := table.Resolve(tier, balance)
	if err != nil {
		return nil, err
	}

	return &accrueOutput{
		Tier:       tier,
		Rate:       rate,
		Balance:    balance,
		DaysInYear: cfg.Accrual.DaysInYear,
		Accrued:    domain.DailyAccrual(balance, rate, cfg.Accrual.DaysInYear, cfg.Accrual.Precision),
	}, nil
}

func projectCmd() *cobra.Command {
	var productPath, fromStr string
	var count int

	cmd := &cobra.Command{
		Use:   "project",
		Short: "Project upcoming interest application dates",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadProduct(productPath)
			if err != nil {
				return err
			}

			from := time.Now().UTC()
			if fromStr != "" {
				from, err = time.Parse(time.RFC3339, fromStr)
				if err != nil {
					return fmt.Errorf("bad time %q: %w", fromStr, err)
				}
			}

			printJSON(project(cfg, from, count))
			return nil
		},
	}

	cmd.Flags().StringVar(&productPath, "product", "", "Product configuration JSON file")
	cmd.Flags().StringVar(&fromStr, "from", "", "Projection start, RFC 3339 (defaults to now)")
	cmd.Flags().IntVar(&count, "count", 6, "Number of occurrences to project")
	cmd.MarkFlagRequired("product")

	return cmd
}

func project(cfg *domain.ProductConfig, from time.Time, count int) []time.Time {
	cal := domain.NewCalendar(nil)
	occurrences := make([]time.Time, 0, count)

	at := from
	for i := 0; i < count; i++ {
		at = cfg.Application.Schedule.Next(at, cal)
		occurrences = append(occurrences, at)
	}

	return occurrences
}

func printJSON(v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to encode output: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(string(data))
}
