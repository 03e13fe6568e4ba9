package model

import (
	"testing"
	"time"
)

func hasFieldCode(errs []FieldError, field, code string) bool {
	for _, e := range errs {
		if e.Field == field && e.Code == code {
			return true
		}
	}
	return false
}

func TestRegisterForm_Validate_Valid(t *testing.T) {
	form := RegisterForm{
		Email:           "user@example.com",
		Password:        "Secret1",
		ConfirmPassword: "Secret1",
		Name:            "Taro",
	}
	if errs := form.Validate(); len(errs) != 0 {
		t.Errorf("expected no errors, got %v", errs)
	}
}

func TestRegisterForm_Validate_PasswordRules(t *testing.T) {
	tests := []struct {
		name     string
		password string
		code     string
	}{
		{"too short", "Ab1", FieldCodeTooShort},
		{"no uppercase", "secret1", FieldCodeMissingUpper},
		{"no lowercase", "SECRET1", FieldCodeMissingLower},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := RegisterForm{
				Email:           "user@example.com",
				Password:        tt.password,
				ConfirmPassword: tt.password,
			}
			errs := form.Validate()
			if !hasFieldCode(errs, "password", tt.code) {
				t.Errorf("expected password error %s, got %v", tt.code, errs)
			}
		})
	}
}

func TestRegisterForm_Validate_ConfirmMismatch(t *testing.T) {
	form := RegisterForm{
		Email:           "user@example.com",
		Password:        "Secret1",
		ConfirmPassword: "Secret2",
	}
	errs := form.Validate()
	if !hasFieldCode(errs, "confirmPassword", FieldCodeMismatch) {
		t.Errorf("expected confirmPassword mismatch, got %v", errs)
	}
}

func TestRegisterForm_Validate_InvalidEmail(t *testing.T) {
	for _, email := range []string{"", "no-at-mark", "@example.com", "user@", "user@nodot"} {
		form := RegisterForm{Email: email, Password: "Secret1", ConfirmPassword: "Secret1"}
		errs := form.Validate()
		if !hasFieldCode(errs, "email", FieldCodeRequired) && !hasFieldCode(errs, "email", FieldCodeInvalidEmail) {
			t.Errorf("email %q: expected email error, got %v", email, errs)
		}
	}
}

func TestVehicleForm_Validate_MissingCategory(t *testing.T) {
	form := VehicleForm{
		VehicleName: "Toyota Prius",
		OwnerName:   "Taro",
		PricePerDay: 50,
		Location:    "Dhaka",
	}
	errs := form.Validate()
	if !hasFieldCode(errs, "category", FieldCodeRequired) {
		t.Errorf("expected category required error, got %v", errs)
	}
}

func TestVehicleForm_Validate_InvalidCategory(t *testing.T) {
	form := VehicleForm{
		VehicleName: "Toyota Prius",
		OwnerName:   "Taro",
		Category:    "Spaceship",
		PricePerDay: 50,
		Location:    "Dhaka",
	}
	errs := form.Validate()
	if !hasFieldCode(errs, "category", FieldCodeInvalidCategory) {
		t.Errorf("expected invalid category error, got %v", errs)
	}
}

func TestVehicleForm_Validate_NegativePrice(t *testing.T) {
	form := VehicleForm{
		VehicleName: "Toyota Prius",
		OwnerName:   "Taro",
		Category:    "Sedan",
		PricePerDay: -10,
		Location:    "Dhaka",
	}
	errs := form.Validate()
	if !hasFieldCode(errs, "pricePerDay", FieldCodeNegativePrice) {
		t.Errorf("expected negative price error, got %v", errs)
	}
}

func TestBookingForm_Validate_PastDate(t *testing.T) {
	now := time.Date(2025, 6, 15, 10, 30, 0, 0, time.UTC)

	form := BookingForm{VehicleID: "v1", BookingDate: "2025-06-14"}
	errs := form.Validate(now)
	if !hasFieldCode(errs, "bookingDate", FieldCodePastDate) {
		t.Errorf("expected past date error, got %v", errs)
	}
}

func TestBookingForm_Validate_TodayAllowed(t *testing.T) {
	now := time.Date(2025, 6, 15, 23, 59, 0, 0, time.UTC)

	form := BookingForm{VehicleID: "v1", BookingDate: "2025-06-15"}
	if errs := form.Validate(now); len(errs) != 0 {
		t.Errorf("booking for today should be allowed, got %v", errs)
	}
}

func TestBookingForm_Validate_InvalidDate(t *testing.T) {
	form := BookingForm{VehicleID: "v1", BookingDate: "15/06/2025"}
	errs := form.Validate(time.Now())
	if !hasFieldCode(errs, "bookingDate", FieldCodeInvalidDate) {
		t.Errorf("expected invalid date error, got %v", errs)
	}
}

func TestVehicleQuery_Params_Canonical(t *testing.T) {
	q := VehicleQuery{Category: "SUV", Location: "Dhaka", SortBy: "price", SortOrder: "desc"}
	got := q.Params().Encode()
	want := "category=SUV&location=Dhaka&sortBy=price&sortOrder=desc"
	if got != want {
		t.Errorf("Params().Encode() = %q, want %q", got, want)
	}
}

func TestVehicleQuery_Params_EmptyOmitted(t *testing.T) {
	q := VehicleQuery{}
	if got := q.Params().Encode(); got != "" {
		t.Errorf("empty query should produce empty params, got %q", got)
	}
}

func TestVehicleQuery_Params_DefaultSortOrder(t *testing.T) {
	q := VehicleQuery{SortBy: "date"}
	params := q.Params()
	if params.Get("sortOrder") != "asc" {
		t.Errorf("sortOrder = %q, want asc", params.Get("sortOrder"))
	}
}

func TestVehicleQuery_Validate(t *testing.T) {
	tests := []struct {
		name    string
		query   VehicleQuery
		wantErr bool
	}{
		{"empty", VehicleQuery{}, false},
		{"valid full", VehicleQuery{Category: "Van", SortBy: "price", SortOrder: "asc"}, false},
		{"bad category", VehicleQuery{Category: "Boat"}, true},
		{"bad sort field", VehicleQuery{SortBy: "name"}, true},
		{"bad sort order", VehicleQuery{SortBy: "price", SortOrder: "up"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.query.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
