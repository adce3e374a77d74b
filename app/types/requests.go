package types

import (
	"errors"
	"strings"
	"time"
)

type CreatePresetRequest struct {
	PlanID          uint64 `json:"plan_id"`
	StartDate       string `json:"start_date"`
	NextBillingDate string `json:"next_billing_date"`
	Notes           string `json:"notes,omitempty"`
}

func (r *CreatePresetRequest) Validate() error {
	if r.PlanID == 0 {
		return errors.New("plan_id is required")
	}
	if err := validateDate(r.StartDate, "start_date", true); err != nil {
		return err
	}
	return validateDate(r.NextBillingDate, "next_billing_date", true)
}

type CreateCustomRequest struct {
	CustomName         string  `json:"custom_name"`
	CustomCategoryID   uint64  `json:"custom_category_id"`
	CustomPrice        float64 `json:"custom_price"`
	CustomCurrency     string  `json:"custom_currency"`
	CustomBillingCycle string  `json:"custom_billing_cycle"`
	StartDate          string  `json:"start_date"`
	NextBillingDate    string  `json:"next_billing_date"`
	Notes              string  `json:"notes,omitempty"`
}

func (r *CreateCustomRequest) Validate() error {
	if strings.TrimSpace(r.CustomName) == "" {
		return errors.New("custom_name is required")
	}
	if r.CustomCategoryID == 0 {
		return errors.New("custom_category_id is required")
	}
	if r.CustomPrice <= 0 {
		return errors.New("custom_price must be positive")
	}
	if strings.TrimSpace(r.CustomCurrency) == "" {
		return errors.New("custom_currency is required")
	}
	if strings.TrimSpace(r.CustomBillingCycle) == "" {
		return errors.New("custom_billing_cycle is required")
	}
	if err := validateDate(r.StartDate, "start_date", true); err != nil {
		return err
	}
	return validateDate(r.NextBillingDate, "next_billing_date", true)
}

type UpdateSubscriptionRequest struct {
	CustomPrice     *float64 `json:"custom_price,omitempty"`
	NextBillingDate *string  `json:"next_billing_date,omitempty"`
	Status          *string  `json:"status,omitempty"`
	Notes           *string  `json:"notes,omitempty"`
}

func (r *UpdateSubscriptionRequest) Validate() error {
	if r.CustomPrice == nil && r.NextBillingDate == nil && r.Status == nil && r.Notes == nil {
		return errors.New("at least one field is required")
	}
	if r.CustomPrice != nil && *r.CustomPrice <= 0 {
		return errors.New("custom_price must be positive")
	}
	if r.NextBillingDate != nil {
		if err := validateDate(*r.NextBillingDate, "next_billing_date", true); err != nil {
			return err
		}
	}
	if r.Status != nil {
		switch *r.Status {
		case "active", "cancelled", "expired", "paused":
		default:
			return errors.New("status must be one of active, cancelled, expired, paused")
		}
	}
	return nil
}

// ParseDate accepts the two date formats the backend emits: RFC3339
// timestamps and bare dates.
func ParseDate(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

func validateDate(value, field string, required bool) error {
	if strings.TrimSpace(value) == "" {
		if required {
			return errors.New(field + " is required")
		}
		return nil
	}
	if _, err := ParseDate(value); err != nil {
		return errors.New(field + " must be RFC3339 or YYYY-MM-DD")
	}
	return nil
}
