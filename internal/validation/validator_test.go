// Propdock - PropertyFinder Listings Management and Publishing
// Copyright 2026 Omar K. (okhalidi)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/okhalidi/propdock

package validation

import (
	"strings"
	"testing"

	"github.com/okhalidi/propdock/internal/models"
)

func validListing() *models.Listing {
	return &models.Listing{
		Title:        "Marina view 2BR",
		PropertyType: models.PropertyApartment,
		OfferingType: models.OfferingSale,
		Price:        &models.Price{Amount: 1500000, Currency: "AED"},
		Location:     &models.Location{City: "Dubai", Community: "Dubai Marina"},
	}
}

func TestValidateStruct(t *testing.T) {
	t.Run("valid listing passes", func(t *testing.T) {
		if err := ValidateStruct(validListing()); err != nil {
			t.Errorf("ValidateStruct() = %v, want nil", err)
		}
	})

	t.Run("missing title", func(t *testing.T) {
		listing := validListing()
		listing.Title = ""

		err := ValidateStruct(listing)
		if err == nil {
			t.Fatal("expected validation error")
		}
		if !strings.Contains(err.Error(), "Title is required") {
			t.Errorf("error = %q, want Title is required", err.Error())
		}
	})

	t.Run("bad offering type", func(t *testing.T) {
		listing := validListing()
		listing.OfferingType = "lease"

		err := ValidateStruct(listing)
		if err == nil {
			t.Fatal("expected validation error")
		}
		if got := err.Errors()[0].Tag(); got != "oneof" {
			t.Errorf("tag = %q, want oneof", got)
		}
	})

	t.Run("multiple failures collected", func(t *testing.T) {
		listing := validListing()
		listing.Title = ""
		listing.OfferingType = ""

		err := ValidateStruct(listing)
		if err == nil {
			t.Fatal("expected validation error")
		}
		if len(err.Errors()) < 2 {
			t.Errorf("got %d errors, want at least 2", len(err.Errors()))
		}

		apiErr := err.ToAPIError()
		if apiErr.Code != "VALIDATION_ERROR" {
			t.Errorf("code = %q, want VALIDATION_ERROR", apiErr.Code)
		}
		if _, ok := apiErr.Details["fields"]; !ok {
			t.Error("expected fields detail for multiple errors")
		}
	})
}

func TestValidateListing(t *testing.T) {
	t.Run("valid listing", func(t *testing.T) {
		if err := ValidateListing(validListing()); err != nil {
			t.Errorf("ValidateListing() = %v, want nil", err)
		}
	})

	t.Run("unknown property type", func(t *testing.T) {
		listing := validListing()
		listing.PropertyType = "ZZ"

		err := ValidateListing(listing)
		if err == nil {
			t.Fatal("expected validation error")
		}
		if got := err.Errors()[0].Tag(); got != "property_type" {
			t.Errorf("tag = %q, want property_type", got)
		}
	})

	t.Run("bad permit number", func(t *testing.T) {
		listing := validListing()
		listing.PermitNumber = "permit with spaces"

		err := ValidateListing(listing)
		if err == nil {
			t.Fatal("expected validation error")
		}
	})

	t.Run("permit with slash accepted", func(t *testing.T) {
		listing := validListing()
		listing.PermitNumber = "DLD/2026/12345"

		if err := ValidateListing(listing); err != nil {
			t.Errorf("ValidateListing() = %v, want nil", err)
		}
	})

	t.Run("missing price", func(t *testing.T) {
		listing := validListing()
		listing.Price = nil

		err := ValidateListing(listing)
		if err == nil {
			t.Fatal("expected validation error")
		}
	})

	t.Run("frequency on sale listing", func(t *testing.T) {
		listing := validListing()
		listing.Price.Frequency = models.RentYearly

		err := ValidateListing(listing)
		if err == nil {
			t.Fatal("expected validation error")
		}
	})

	t.Run("out of range latitude", func(t *testing.T) {
		listing := validListing()
		listing.Location.Latitude = models.Float(123.4)

		err := ValidateListing(listing)
		if err == nil {
			t.Fatal("expected validation error")
		}
		if got := err.Errors()[0].Tag(); got != "latitude" {
			t.Errorf("tag = %q, want latitude", got)
		}
	})
}
