package checkout

import (
	"regexp"
	"strings"

	"gearhub/internal/model"
)

// ContactInput is the raw payload for the contact step.
type ContactInput struct {
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Phone     string `json:"phone"`
}

// AddressInput is the raw payload for an address step.
type AddressInput struct {
	Street     string `json:"street"`
	Apartment  string `json:"apartment"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
}

// BillingInput is the raw payload for the billing step. When
// SameAsShipping is false every address sub-field becomes required.
type BillingInput struct {
	SameAsShipping bool          `json:"sameAsShipping"`
	Address        *AddressInput `json:"address"`
}

// PaymentInput is the raw payload for the payment step. CardNumber and
// CardCVV are used for validation only and are never stored.
type PaymentInput struct {
	Method     string `json:"method"`
	CardNumber string `json:"cardNumber"`
	CardCVV    string `json:"cardCvv"`
	CardExpiry string `json:"cardExpiry"` // MM/YY
}

var (
	emailPattern  = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	phonePattern  = regexp.MustCompile(`^\+?[0-9 ()-]{7,17}$`)
	expiryPattern = regexp.MustCompile(`^(0[1-9]|1[0-2])/[0-9]{2}$`)
	digitsOnly    = regexp.MustCompile(`^[0-9]+$`)
)

// ValidateContact validates and normalises the contact step input.
func ValidateContact(in ContactInput) (*model.ContactInfo, *model.ValidationError) {
	fields := map[string]string{}

	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" {
		fields["email"] = "email is required"
	} else if !emailPattern.MatchString(email) {
		fields["email"] = "email is not valid"
	}

	first := strings.TrimSpace(in.FirstName)
	if first == "" {
		fields["firstName"] = "first name is required"
	}
	last := strings.TrimSpace(in.LastName)
	if last == "" {
		fields["lastName"] = "last name is required"
	}

	phone := strings.TrimSpace(in.Phone)
	if phone != "" && !phonePattern.MatchString(phone) {
		fields["phone"] = "phone number is not valid"
	}

	if len(fields) > 0 {
		return nil, &model.ValidationError{Fields: fields}
	}

	return &model.ContactInfo{
		Email:     email,
		FirstName: first,
		LastName:  last,
		Phone:     phone,
	}, nil
}

// ValidateAddress validates and normalises an address input. The prefix
// is prepended to field names in validation errors so billing and
// shipping failures stay distinguishable.
func ValidateAddress(in AddressInput, prefix string) (*model.Address, *model.ValidationError) {
	fields := map[string]string{}

	street := strings.TrimSpace(in.Street)
	if street == "" {
		fields[prefix+"street"] = "street address is required"
	}
	city := strings.TrimSpace(in.City)
	if city == "" {
		fields[prefix+"city"] = "city is required"
	}
	state := strings.TrimSpace(in.State)
	if state == "" {
		fields[prefix+"state"] = "state is required"
	}
	postal := strings.TrimSpace(in.PostalCode)
	if postal == "" {
		fields[prefix+"postalCode"] = "postal code is required"
	}
	country := strings.TrimSpace(in.Country)
	if country == "" {
		country = "United States"
	}

	if len(fields) > 0 {
		return nil, &model.ValidationError{Fields: fields}
	}

	return &model.Address{
		Street:     street,
		Apartment:  strings.TrimSpace(in.Apartment),
		City:       city,
		State:      state,
		PostalCode: postal,
		Country:    country,
	}, nil
}

// ValidateBilling validates the billing step input into a BillingChoice.
func ValidateBilling(in BillingInput) (*BillingChoice, *model.ValidationError) {
	if in.SameAsShipping {
		return &BillingChoice{SameAsShipping: true}, nil
	}

	if in.Address == nil {
		return nil, &model.ValidationError{Fields: map[string]string{
			"address": "billing address is required when not using the shipping address",
		}}
	}

	addr, verr := ValidateAddress(*in.Address, "billing.")
	if verr != nil {
		return nil, verr
	}
	return &BillingChoice{Address: addr}, nil
}

// ValidatePayment validates the payment step. Card fields are checked and
// then dropped: only the method and the last four digits survive.
func ValidatePayment(in PaymentInput) (*PaymentSelection, *model.ValidationError) {
	fields := map[string]string{}

	method := model.PaymentMethod(strings.TrimSpace(in.Method))
	if !model.ValidPaymentMethod(method) {
		fields["method"] = "payment method is not supported"
	}

	sel := &PaymentSelection{Method: method}

	if method == model.PaymentMethodCreditCard {
		number := strings.ReplaceAll(strings.TrimSpace(in.CardNumber), " ", "")
		switch {
		case number == "":
			fields["cardNumber"] = "card number is required"
		case !digitsOnly.MatchString(number) || len(number) < 13 || len(number) > 19:
			fields["cardNumber"] = "card number is not valid"
		case !luhnValid(number):
			fields["cardNumber"] = "card number failed verification"
		default:
			sel.CardLast4 = number[len(number)-4:]
		}

		cvv := strings.TrimSpace(in.CardCVV)
		if cvv == "" {
			fields["cardCvv"] = "security code is required"
		} else if !digitsOnly.MatchString(cvv) || len(cvv) < 3 || len(cvv) > 4 {
			fields["cardCvv"] = "security code is not valid"
		}

		if expiry := strings.TrimSpace(in.CardExpiry); !expiryPattern.MatchString(expiry) {
			fields["cardExpiry"] = "expiry must be in MM/YY format"
		}
	}

	if len(fields) > 0 {
		return nil, &model.ValidationError{Fields: fields}
	}
	return sel, nil
}

// luhnValid implements the Luhn checksum over a digit string.
func luhnValid(number string) bool {
	sum := 0
	double := false
	for i := len(number) - 1; i >= 0; i-- {
		d := int(number[i] - '0')
		if double {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		double = !double
	}
	return sum%10 == 0
}
