package domain

import (
	"encoding/json"
	"errors"
	"fmt"
)

type CustomerCategory string

const (
	CategoryLocalResident CustomerCategory = "local-resident"
	CategoryBulkClub      CustomerCategory = "bulk-club"
)

func ToCustomerCategory(s string) (CustomerCategory, error) {
	switch category := CustomerCategory(s); category {
	case CategoryLocalResident, CategoryBulkClub:
		return category, nil
	}

	return "", errors.New("invalid customer category")
}

func CustomerCategories() []CustomerCategory {
	return []CustomerCategory{CategoryLocalResident, CategoryBulkClub}
}

// CustomerDetails is implemented only by LocalResident and BulkClub.
type CustomerDetails interface {
	Category() CustomerCategory
	PhoneNumber() string
	isCustomerDetails()
}

// LocalResident orders are delivered to a single eligible postal region.
type LocalResident struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	Pincode string `json:"pincode"`
}

func (LocalResident) Category() CustomerCategory { return CategoryLocalResident }
func (c LocalResident) PhoneNumber() string      { return c.Phone }
func (LocalResident) isCustomerDetails()         {}

// BulkClub orders come from university clubs and must meet a minimum quantity.
type BulkClub struct {
	ClubName      string `json:"clubName"`
	CollegeName   string `json:"collegeName"`
	ContactPerson string `json:"contactPerson"`
	Phone         string `json:"clubPhone"`
	Address       string `json:"clubAddress"`
}

func (BulkClub) Category() CustomerCategory { return CategoryBulkClub }
func (c BulkClub) PhoneNumber() string      { return c.Phone }
func (BulkClub) isCustomerDetails()         {}

func MarshalCustomerDetails(details CustomerDetails) ([]byte, error) {
	if details == nil {
		return nil, errors.New("customer details are nil")
	}

	data, err := json.Marshal(details)
	if err != nil {
		return nil, fmt.Errorf("json.Marshal: %w", err)
	}

	return data, nil
}

func UnmarshalCustomerDetails(category CustomerCategory, data []byte) (CustomerDetails, error) {
	switch category {
	case CategoryLocalResident:
		var d LocalResident
		if err := json.Unmarshal(data, &d); err != nil {
			return nil, fmt.Errorf("json.Unmarshal[%s]: %w", category, err)
		}
		return d, nil
	case CategoryBulkClub:
		var d BulkClub
		if err := json.Unmarshal(data, &d); err != nil {
			return nil, fmt.Errorf("json.Unmarshal[%s]: %w", category, err)
		}
		return d, nil
	}

	return nil, fmt.Errorf("category[%s]: invalid customer category", category)
}
