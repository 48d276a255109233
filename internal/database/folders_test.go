// Propdock - PropertyFinder Listings Management and Publishing
// Copyright 2026 Omar K. (okhalidi)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/okhalidi/propdock

package database

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/okhalidi/propdock/internal/models"
)

func TestFolderCRUD(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	ownerID := uuid.NewString()

	folder := &models.Folder{
		Name:        "Marina Exclusives",
		Description: "High-floor marina stock",
		OwnerID:     ownerID,
	}

	t.Run("create and fetch", func(t *testing.T) {
		if err := db.CreateFolder(ctx, folder); err != nil {
			t.Fatalf("CreateFolder() error = %v", err)
		}

		fetched, err := db.GetFolder(ctx, folder.ID)
		if err != nil {
			t.Fatalf("GetFolder() error = %v", err)
		}
		if fetched.Name != "Marina Exclusives" || fetched.OwnerID != ownerID {
			t.Errorf("unexpected folder: %+v", fetched)
		}
		if len(fetched.ListingRefs) != 0 {
			t.Errorf("expected empty folder, got %v", fetched.ListingRefs)
		}
	})

	t.Run("membership", func(t *testing.T) {
		for _, ref := range []string{"REF-001", "REF-002"} {
			if err := db.AddListingToFolder(ctx, folder.ID, ref); err != nil {
				t.Fatalf("AddListingToFolder(%s) error = %v", ref, err)
			}
		}
		// Re-adding is a no-op.
		if err := db.AddListingToFolder(ctx, folder.ID, "REF-001"); err != nil {
			t.Fatalf("duplicate AddListingToFolder() error = %v", err)
		}

		fetched, err := db.GetFolder(ctx, folder.ID)
		if err != nil {
			t.Fatalf("GetFolder() error = %v", err)
		}
		if len(fetched.ListingRefs) != 2 {
			t.Errorf("expected 2 refs, got %v", fetched.ListingRefs)
		}

		if err := db.RemoveListingFromFolder(ctx, folder.ID, "REF-001"); err != nil {
			t.Fatalf("RemoveListingFromFolder() error = %v", err)
		}
		fetched, _ = db.GetFolder(ctx, folder.ID)
		if len(fetched.ListingRefs) != 1 || fetched.ListingRefs[0] != "REF-002" {
			t.Errorf("expected only REF-002, got %v", fetched.ListingRefs)
		}
	})

	t.Run("add to unknown folder", func(t *testing.T) {
		err := db.AddListingToFolder(ctx, uuid.NewString(), "REF-009")
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("list by owner", func(t *testing.T) {
		other := &models.Folder{Name: "Other", OwnerID: uuid.NewString()}
		if err := db.CreateFolder(ctx, other); err != nil {
			t.Fatalf("CreateFolder() error = %v", err)
		}

		folders, err := db.ListFolders(ctx, ownerID)
		if err != nil {
			t.Fatalf("ListFolders() error = %v", err)
		}
		if len(folders) != 1 {
			t.Errorf("expected 1 folder for owner, got %d", len(folders))
		}

		all, err := db.ListFolders(ctx, "")
		if err != nil {
			t.Fatalf("ListFolders(all) error = %v", err)
		}
		if len(all) != 2 {
			t.Errorf("expected 2 folders total, got %d", len(all))
		}
	})

	t.Run("delete removes membership", func(t *testing.T) {
		if err := db.DeleteFolder(ctx, folder.ID); err != nil {
			t.Fatalf("DeleteFolder() error = %v", err)
		}
		if _, err := db.GetFolder(ctx, folder.ID); !errors.Is(err, ErrNotFound) {
			t.Errorf("expected ErrNotFound after delete, got %v", err)
		}
	})
}
