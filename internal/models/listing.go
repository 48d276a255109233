// Propdock - PropertyFinder Listings Management and Publishing
// Copyright 2026 Omar K. (okhalidi)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/okhalidi/propdock

/*
listing.go - Property Listing Domain Model

Defines the listing document sent to and received from the PropertyFinder
Enterprise API, together with the enum sets the API accepts. Field names in
the JSON form follow the API's wire format; optional numerics are pointers so
that zero values (a studio has 0 bedrooms) survive the omitempty rules.
*/

package models

// PropertyType is the two-letter property category code.
type PropertyType string

// Property type codes accepted by the listings API.
const (
	PropertyApartment           PropertyType = "AP"
	PropertyVilla               PropertyType = "VH"
	PropertyTownhouse           PropertyType = "TH"
	PropertyPenthouse           PropertyType = "PH"
	PropertyCompound            PropertyType = "CO"
	PropertyDuplex              PropertyType = "DU"
	PropertyFullFloor           PropertyType = "FF"
	PropertyHalfFloor           PropertyType = "HF"
	PropertyWholeBuilding       PropertyType = "WB"
	PropertyBulkUnits           PropertyType = "BU"
	PropertyBungalow            PropertyType = "BG"
	PropertyHotelApartment      PropertyType = "HA"
	PropertyLoft                PropertyType = "LP"
	PropertyOffice              PropertyType = "OF"
	PropertyRetail              PropertyType = "RE"
	PropertyWarehouse           PropertyType = "WH"
	PropertyShop                PropertyType = "SH"
	PropertyLand                PropertyType = "LA"
	PropertyLabourCamp          PropertyType = "LC"
	PropertyCommercialBuilding  PropertyType = "CB"
	PropertyCommercialVilla     PropertyType = "CV"
	PropertyCommercialFloor     PropertyType = "CF"
	PropertyIndustrialLand      PropertyType = "IL"
	PropertyMixedUseLand        PropertyType = "ML"
	PropertyShowroom            PropertyType = "SR"
	PropertyCommercialPlot      PropertyType = "CP"
	PropertyResidentialPlot     PropertyType = "RP"
	PropertyResidentialFloor    PropertyType = "RF"
	PropertyResidentialBuilding PropertyType = "RB"
)

// OfferingType distinguishes sale from rental listings.
type OfferingType string

const (
	OfferingSale OfferingType = "sale"
	OfferingRent OfferingType = "rent"
)

// CompletionStatus describes construction state.
type CompletionStatus string

const (
	CompletionReady     CompletionStatus = "ready"
	CompletionOffPlan   CompletionStatus = "off_plan"
	CompletionCompleted CompletionStatus = "completed"
)

// FurnishingStatus describes furnishing state.
type FurnishingStatus string

const (
	Furnished       FurnishingStatus = "furnished"
	Unfurnished     FurnishingStatus = "unfurnished"
	PartlyFurnished FurnishingStatus = "partly_furnished"
)

// ListingStatus is the lifecycle state of a listing on the portal.
type ListingStatus string

const (
	StatusDraft       ListingStatus = "draft"
	StatusLive        ListingStatus = "live"
	StatusUnpublished ListingStatus = "unpublished"
	StatusExpired     ListingStatus = "expired"
	StatusDeleted     ListingStatus = "deleted"
)

// RentFrequency is the rental payment cadence.
type RentFrequency string

const (
	RentYearly  RentFrequency = "yearly"
	RentMonthly RentFrequency = "monthly"
	RentWeekly  RentFrequency = "weekly"
	RentDaily   RentFrequency = "daily"
)

// ValidPropertyType reports whether code is a known property type.
func ValidPropertyType(code PropertyType) bool {
	switch code {
	case PropertyApartment, PropertyVilla, PropertyTownhouse, PropertyPenthouse,
		PropertyCompound, PropertyDuplex, PropertyFullFloor, PropertyHalfFloor,
		PropertyWholeBuilding, PropertyBulkUnits, PropertyBungalow,
		PropertyHotelApartment, PropertyLoft, PropertyOffice, PropertyRetail,
		PropertyWarehouse, PropertyShop, PropertyLand, PropertyLabourCamp,
		PropertyCommercialBuilding, PropertyCommercialVilla, PropertyCommercialFloor,
		PropertyIndustrialLand, PropertyMixedUseLand, PropertyShowroom,
		PropertyCommercialPlot, PropertyResidentialPlot, PropertyResidentialFloor,
		PropertyResidentialBuilding:
		return true
	}
	return false
}

// Location is the listing address block.
type Location struct {
	City         string   `json:"city" validate:"required"`
	Community    string   `json:"community" validate:"required"`
	SubCommunity string   `json:"sub_community,omitempty"`
	Building     string   `json:"building,omitempty"`
	Street       string   `json:"street,omitempty"`
	Latitude     *float64 `json:"latitude,omitempty"`
	Longitude    *float64 `json:"longitude,omitempty"`
}

// Price is the listing price block. Frequency is set for rentals only.
type Price struct {
	Amount    float64       `json:"amount" validate:"required,gt=0"`
	Currency  string        `json:"currency"`
	Frequency RentFrequency `json:"frequency,omitempty"`
}

// Agent identifies the agent assigned to a listing.
type Agent struct {
	ID    string `json:"id,omitempty"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

// Listing is the full property listing document.
type Listing struct {
	ID          string `json:"id,omitempty"`
	Title       string `json:"title" validate:"required"`
	TitleAR     string `json:"title_ar,omitempty"`
	Description string `json:"description"`

	DescriptionAR string       `json:"description_ar,omitempty"`
	PropertyType  PropertyType `json:"property_type" validate:"required"`
	OfferingType  OfferingType `json:"offering_type" validate:"required,oneof=sale rent"`
	Price         *Price       `json:"price,omitempty"`
	Location      *Location    `json:"location,omitempty"`

	Bedrooms  *int     `json:"bedrooms,omitempty"`
	Bathrooms *int     `json:"bathrooms,omitempty"`
	Size      *float64 `json:"size,omitempty"`
	PlotSize  *float64 `json:"plot_size,omitempty"`

	ReferenceNumber  string           `json:"reference_number,omitempty"`
	PermitNumber     string           `json:"permit_number,omitempty"`
	CompletionStatus CompletionStatus `json:"completion_status,omitempty"`
	Furnishing       FurnishingStatus `json:"furnishing,omitempty"`
	Parking          *int             `json:"parking,omitempty"`
	YearBuilt        *int             `json:"year_built,omitempty"`

	Images         []string `json:"images,omitempty"`
	VideoURL       string   `json:"video_url,omitempty"`
	VirtualTourURL string   `json:"virtual_tour_url,omitempty"`

	Amenities        []string `json:"amenities,omitempty"`
	PrivateAmenities []string `json:"private_amenities,omitempty"`

	Agent   *Agent `json:"agent,omitempty"`
	AgentID string `json:"agent_id,omitempty"`

	Status   ListingStatus `json:"status,omitempty"`
	Featured bool          `json:"featured"`

	RentFrequency RentFrequency `json:"rent_frequency,omitempty"`
	Cheques       *int          `json:"cheques,omitempty"`

	// ExternalReference is the caller's own reference, echoed by the API.
	ExternalReference string `json:"external_reference,omitempty"`
}

// Reference returns the identifier used for per-item bulk reporting:
// the reference number when set, otherwise the listing id, otherwise
// the external reference.
func (l *Listing) Reference() string {
	switch {
	case l.ReferenceNumber != "":
		return l.ReferenceNumber
	case l.ID != "":
		return l.ID
	default:
		return l.ExternalReference
	}
}

// ListingState is the publish-state document returned by the state endpoint.
type ListingState struct {
	ID          string        `json:"id"`
	Status      ListingStatus `json:"status"`
	PublishedAt string        `json:"published_at,omitempty"`
	ExpiresAt   string        `json:"expires_at,omitempty"`
	Reason      string        `json:"reason,omitempty"`
}

// Int returns a pointer to v. Convenience for building listings in place.
func Int(v int) *int { return &v }

// Float returns a pointer to v.
func Float(v float64) *float64 { return &v }
