package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"creator-marketplace/internal/domain/offer"
	"creator-marketplace/internal/domain/pricing"
	"creator-marketplace/internal/domain/withdrawal"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Policy is the business tuning that ops may change without a release.
type Policy struct {
	Pricing     pricing.Policy
	OfferTTL    time.Duration
	Withdrawals withdrawal.Limits
}

func DefaultPolicy() Policy {
	return Policy{
		Pricing:     pricing.DefaultPolicy(),
		OfferTTL:    offer.DefaultTTL,
		Withdrawals: withdrawal.DefaultLimits(),
	}
}

// policyFile mirrors the YAML schema. Rates and amounts are strings so no
// float rounding creeps into money.
type policyFile struct {
	Fees struct {
		AcceptanceRate string `yaml:"acceptance_rate"`
		ReleaseRate    string `yaml:"release_rate"`
	} `yaml:"fees"`
	Offers struct {
		TTL time.Duration `yaml:"ttl"`
	} `yaml:"offers"`
	Withdrawals struct {
		MaxPending int               `yaml:"max_pending"`
		Minimums   map[string]string `yaml:"minimums"`
	} `yaml:"withdrawals"`
}

// LoadPolicyFile reads path and overrides the fields it sets on base.
func LoadPolicyFile(path string, base Policy) (Policy, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Policy{}, fmt.Errorf("read policy file: %w", err)
	}
	return ParsePolicy(raw, base)
}

func ParsePolicy(raw []byte, base Policy) (Policy, error) {
	var f policyFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return Policy{}, fmt.Errorf("parse policy file: %w", err)
	}

	out := base
	// copy the map so base is never mutated
	out.Withdrawals.Minimums = make(map[withdrawal.Method]decimal.Decimal, len(base.Withdrawals.Minimums))
	for k, v := range base.Withdrawals.Minimums {
		out.Withdrawals.Minimums[k] = v
	}

	if f.Fees.AcceptanceRate != "" {
		d, err := decimal.NewFromString(f.Fees.AcceptanceRate)
		if err != nil {
			return Policy{}, fmt.Errorf("fees.acceptance_rate: %w", err)
		}
		out.Pricing.AcceptanceRate = d
	}
	if f.Fees.ReleaseRate != "" {
		d, err := decimal.NewFromString(f.Fees.ReleaseRate)
		if err != nil {
			return Policy{}, fmt.Errorf("fees.release_rate: %w", err)
		}
		out.Pricing.ReleaseRate = d
	}
	if f.Offers.TTL > 0 {
		out.OfferTTL = f.Offers.TTL
	}
	if f.Withdrawals.MaxPending > 0 {
		out.Withdrawals.MaxPending = f.Withdrawals.MaxPending
	}
	for k, v := range f.Withdrawals.Minimums {
		d, err := decimal.NewFromString(v)
		if err != nil {
			return Policy{}, fmt.Errorf("withdrawals.minimums.%s: %w", k, err)
		}
		out.Withdrawals.Minimums[withdrawal.Method(k)] = d
	}
	return out, out.Validate()
}

func (p Policy) Validate() error {
	if !p.Pricing.Valid() {
		return errors.New("fee rates must be within [0, 1)")
	}
	if p.OfferTTL <= 0 {
		return errors.New("offer ttl must be positive")
	}
	if p.Withdrawals.MaxPending < 1 {
		return errors.New("withdrawals.max_pending must be at least 1")
	}
	for m, v := range p.Withdrawals.Minimums {
		if v.IsNegative() {
			return fmt.Errorf("withdrawals.minimums.%s must not be negative", m)
		}
	}
	return nil
}
