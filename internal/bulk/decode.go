// Propdock - PropertyFinder Listings Management and Publishing
// Copyright 2026 Omar K. (okhalidi)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/okhalidi/propdock

/*
decode.go - Bulk Input Decoding

Reads listing batches from JSON or CSV. JSON input is an array of listing
documents in the API wire format. CSV input is the flat spreadsheet layout
agencies export from their CRMs: one listing per row, nested blocks (price,
location) flattened into prefixed-free columns, list fields comma-separated
inside a single cell.
*/

package bulk

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/goccy/go-json"

	"github.com/okhalidi/propdock/internal/models"
)

// DecodeJSON reads a JSON array of listings.
func DecodeJSON(r io.Reader) ([]models.Listing, error) {
	var listings []models.Listing
	if err := json.NewDecoder(r).Decode(&listings); err != nil {
		return nil, fmt.Errorf("decode listings: %w", err)
	}
	return listings, nil
}

// DecodeCSV reads listings from CSV. The first row is the header; column
// names match the JSON field names of the listing document. Rows missing
// both city and community are rejected with their line number so the
// operator can fix the export.
func DecodeCSV(r io.Reader) ([]models.Listing, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("csv input is empty")
	}
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.TrimSpace(strings.ToLower(name))] = i
	}

	var listings []models.Listing
	line := 1
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("read csv line %d: %w", line, err)
		}

		listing, err := csvRowToListing(cols, record)
		if err != nil {
			return nil, fmt.Errorf("csv line %d: %w", line, err)
		}
		listings = append(listings, *listing)
	}

	return listings, nil
}

// csvRowToListing maps one CSV record onto a listing document.
func csvRowToListing(cols map[string]int, record []string) (*models.Listing, error) {
	field := func(name string) string {
		i, ok := cols[name]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	listing := &models.Listing{
		Title:             field("title"),
		TitleAR:           field("title_ar"),
		Description:       field("description"),
		DescriptionAR:     field("description_ar"),
		ReferenceNumber:   field("reference_number"),
		PermitNumber:      field("permit_number"),
		VideoURL:          field("video_url"),
		VirtualTourURL:    field("virtual_tour_url"),
		ExternalReference: field("external_reference"),
		AgentID:           field("agent_id"),

		PropertyType:     models.PropertyType(field("property_type")),
		OfferingType:     models.OfferingType(field("offering_type")),
		CompletionStatus: models.CompletionStatus(field("completion_status")),
		Furnishing:       models.FurnishingStatus(field("furnishing")),
		RentFrequency:    models.RentFrequency(field("rent_frequency")),
	}

	// Malformed numeric cells are skipped, not fatal: partial rows are
	// common in agency exports and the validator catches anything required.
	listing.Bedrooms = csvInt(field("bedrooms"))
	listing.Bathrooms = csvInt(field("bathrooms"))
	listing.Parking = csvInt(field("parking"))
	listing.YearBuilt = csvInt(field("year_built"))
	listing.Cheques = csvInt(field("cheques"))
	listing.Size = csvFloat(field("size"))
	listing.PlotSize = csvFloat(field("plot_size"))

	if raw := field("price"); raw != "" {
		amount, err := strconv.ParseFloat(raw, 64)
		if err == nil {
			currency := field("currency")
			if currency == "" {
				currency = "AED"
			}
			listing.Price = &models.Price{
				Amount:    amount,
				Currency:  currency,
				Frequency: listing.RentFrequency,
			}
		}
	}

	city, community := field("city"), field("community")
	if city == "" && community == "" {
		return nil, fmt.Errorf("row has no location (city and community are empty)")
	}
	listing.Location = &models.Location{
		City:         city,
		Community:    community,
		SubCommunity: field("sub_community"),
		Building:     field("building"),
		Street:       field("street"),
		Latitude:     csvFloat(field("latitude")),
		Longitude:    csvFloat(field("longitude")),
	}

	listing.Images = splitList(field("images"))
	listing.Amenities = splitList(field("amenities"))
	listing.Featured = csvBool(field("featured"))

	return listing, nil
}

func csvInt(s string) *int {
	if s == "" {
		return nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return nil
	}
	return &v
}

func csvFloat(s string) *float64 {
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}

func csvBool(s string) bool {
	switch strings.ToLower(s) {
	case "true", "1", "yes":
		return true
	}
	return false
}

// splitList splits a comma-separated cell into trimmed non-empty values.
func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if v := strings.TrimSpace(p); v != "" {
			out = append(out, v)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
