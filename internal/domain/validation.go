package domain

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/samber/lo"
)

const (
	FieldName          = "name"
	FieldPhone         = "phone"
	FieldAddress       = "address"
	FieldPincode       = "pincode"
	FieldClubName      = "clubName"
	FieldCollegeName   = "collegeName"
	FieldContactPerson = "contactPerson"
	FieldClubPhone     = "clubPhone"
	FieldClubAddress   = "clubAddress"

	FieldCustomerType = "customerType"
	FieldQuantity     = "quantity"
	FieldItems        = "items"
)

const (
	DefaultRegion          = "Sri City"
	DefaultMinClubQuantity = 20
)

// DefaultPincodes are the postal codes of the Sri City delivery region.
var DefaultPincodes = []string{"517646", "517645", "517644", "517643", "517642", "517641"}

const invalidPhoneMessage = "Please enter a valid 10-digit phone number"

// Indian mobile numbers: ten digits starting with 6-9, no country code or separators.
var phonePattern = regexp.MustCompile(`^[6-9][0-9]{9}$`)

// ItemCounter is satisfied by Cart and Order.
type ItemCounter interface {
	TotalItems() int
}

// Rules holds the eligibility configuration for both customer categories.
type Rules struct {
	Region          string
	Pincodes        []string
	MinClubQuantity int
}

func DefaultRules() Rules {
	return Rules{
		Region:          DefaultRegion,
		Pincodes:        append([]string(nil), DefaultPincodes...),
		MinClubQuantity: DefaultMinClubQuantity,
	}
}

func (r Rules) Check() error {
	if len(r.Pincodes) == 0 {
		return errors.New("pincodes are empty")
	}
	if r.MinClubQuantity < 1 {
		return errors.New("minimum club quantity must be positive")
	}
	return nil
}

type fieldCheck struct {
	field    string
	value    string
	required string
	format   func(string) string
}

// Validate returns nil when the order is eligible, otherwise a *ValidationError
// holding every violated rule.
func (r Rules) Validate(details CustomerDetails, counter ItemCounter) error {
	errs := FieldErrors{}

	switch d := details.(type) {
	case LocalResident:
		r.runChecks(errs, []fieldCheck{
			{field: FieldName, value: d.Name, required: "Name is required"},
			{field: FieldPhone, value: d.Phone, required: "Phone number is required", format: checkPhone},
			{field: FieldAddress, value: d.Address, required: "Address is required"},
			{field: FieldPincode, value: d.Pincode, required: "Pincode is required", format: r.checkPincode},
		})
	case BulkClub:
		r.runChecks(errs, []fieldCheck{
			{field: FieldClubName, value: d.ClubName, required: "Club name is required"},
			{field: FieldCollegeName, value: d.CollegeName, required: "College name is required"},
			{field: FieldContactPerson, value: d.ContactPerson, required: "Contact person name is required"},
			{field: FieldClubPhone, value: d.Phone, required: "Phone number is required", format: checkPhone},
			{field: FieldClubAddress, value: d.Address, required: "College address is required"},
		})

		if counter == nil || counter.TotalItems() < r.MinClubQuantity {
			errs[FieldQuantity] = r.minQuantityMessage()
		}
	default:
		errs[FieldCustomerType] = "Customer type is required"
	}

	if len(errs) > 0 {
		return &ValidationError{Fields: errs}
	}

	return nil
}

// ValidateField re-checks a single form field and returns its message, or "" if valid.
func (r Rules) ValidateField(details CustomerDetails, counter ItemCounter, field string) string {
	var vErr *ValidationError
	if err := r.Validate(details, counter); errors.As(err, &vErr) {
		return vErr.Fields[field]
	}
	return ""
}

func (r Rules) runChecks(errs FieldErrors, checks []fieldCheck) {
	for _, c := range checks {
		if strings.TrimSpace(c.value) == "" {
			errs[c.field] = c.required
			continue
		}

		if c.format == nil {
			continue
		}

		if msg := c.format(c.value); msg != "" {
			errs[c.field] = msg
		}
	}
}

func (r Rules) checkPincode(pincode string) string {
	if lo.Contains(r.Pincodes, pincode) {
		return ""
	}
	return fmt.Sprintf("Invalid %s pincode", r.Region)
}

func (r Rules) minQuantityMessage() string {
	return fmt.Sprintf("Club orders require minimum %d items", r.MinClubQuantity)
}

func checkPhone(phone string) string {
	if phonePattern.MatchString(phone) {
		return ""
	}
	return invalidPhoneMessage
}
