// Propdock - PropertyFinder Listings Management and Publishing
// Copyright 2026 Omar K. (okhalidi)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/okhalidi/propdock

package validation

import (
	"github.com/okhalidi/propdock/internal/models"
)

// ValidateListing checks a listing document before it is sent to the portal.
// Tag-level validation runs first, then the cross-field rules the tags
// cannot express: property type code membership, permit format, rental
// frequency and location coordinates.
func ValidateListing(listing *models.Listing) *RequestValidationError {
	if err := ValidateStruct(listing); err != nil {
		return err
	}

	var errs []ValidationError

	if !models.ValidPropertyType(listing.PropertyType) {
		errs = append(errs, ValidationError{
			field:   "PropertyType",
			tag:     "property_type",
			value:   string(listing.PropertyType),
			message: "PropertyType must be a known property type code",
		})
	}

	if listing.PermitNumber != "" && !permitPattern.MatchString(listing.PermitNumber) {
		errs = append(errs, ValidationError{
			field:   "PermitNumber",
			tag:     "permit",
			value:   listing.PermitNumber,
			message: "PermitNumber must be a valid permit number",
		})
	}

	if listing.Price == nil {
		errs = append(errs, ValidationError{
			field:   "Price",
			tag:     "required",
			message: "Price is required",
		})
	}

	// Frequency only makes sense on rentals.
	if listing.OfferingType == models.OfferingSale && listing.Price != nil && listing.Price.Frequency != "" {
		errs = append(errs, ValidationError{
			field:   "Price.Frequency",
			tag:     "frequency",
			value:   string(listing.Price.Frequency),
			message: "Price.Frequency is only valid for rent listings",
		})
	}

	if loc := listing.Location; loc != nil {
		if loc.Latitude != nil && (*loc.Latitude < -90 || *loc.Latitude > 90) {
			errs = append(errs, ValidationError{
				field:   "Location.Latitude",
				tag:     "latitude",
				value:   *loc.Latitude,
				message: "Location.Latitude must be a valid latitude (-90 to 90)",
			})
		}
		if loc.Longitude != nil && (*loc.Longitude < -180 || *loc.Longitude > 180) {
			errs = append(errs, ValidationError{
				field:   "Location.Longitude",
				tag:     "longitude",
				value:   *loc.Longitude,
				message: "Location.Longitude must be a valid longitude (-180 to 180)",
			})
		}
	}

	if len(errs) == 0 {
		return nil
	}
	return &RequestValidationError{errors: errs}
}
