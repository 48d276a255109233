// Propdock - PropertyFinder Listings Management and Publishing
// Copyright 2026 Omar K. (okhalidi)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/okhalidi/propdock

/*
folders.go - Listing Folders

Folders group listings for dashboard organization. Membership rows store the
listing reference rather than the portal id so folders survive a listing
being deleted and re-created on the portal under the same reference.
*/

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/okhalidi/propdock/internal/models"
)

// CreateFolder inserts a new folder.
func (db *DB) CreateFolder(ctx context.Context, folder *models.Folder) error {
	if folder.ID == "" {
		folder.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	folder.CreatedAt = now
	folder.UpdatedAt = now

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO folders (id, name, description, owner_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		folder.ID, folder.Name, folder.Description, folder.OwnerID,
		folder.CreatedAt, folder.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create folder: %w", err)
	}
	return nil
}

// GetFolder returns a folder with its listing references populated.
func (db *DB) GetFolder(ctx context.Context, id string) (*models.Folder, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT id, name, description, owner_id, created_at, updated_at
		 FROM folders WHERE id = ?`, id)

	folder, err := scanFolder(row)
	if err != nil {
		return nil, err
	}

	refs, err := db.folderListingRefs(ctx, id)
	if err != nil {
		return nil, err
	}
	folder.ListingRefs = refs
	return folder, nil
}

// ListFolders returns all folders for an owner, without membership rows.
// Pass an empty owner id to list every folder.
func (db *DB) ListFolders(ctx context.Context, ownerID string) ([]models.Folder, error) {
	query := `SELECT id, name, description, owner_id, created_at, updated_at
		 FROM folders ORDER BY name`
	args := []any{}
	if ownerID != "" {
		query = `SELECT id, name, description, owner_id, created_at, updated_at
		 FROM folders WHERE owner_id = ? ORDER BY name`
		args = append(args, ownerID)
	}

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list folders: %w", err)
	}
	defer rows.Close()

	var folders []models.Folder
	for rows.Next() {
		folder, err := scanFolder(rows)
		if err != nil {
			return nil, err
		}
		folders = append(folders, *folder)
	}
	return folders, rows.Err()
}

// UpdateFolder renames a folder or changes its description.
func (db *DB) UpdateFolder(ctx context.Context, folder *models.Folder) error {
	folder.UpdatedAt = time.Now().UTC()

	res, err := db.conn.ExecContext(ctx,
		`UPDATE folders SET name = ?, description = ?, updated_at = ? WHERE id = ?`,
		folder.Name, folder.Description, folder.UpdatedAt, folder.ID)
	if err != nil {
		return fmt.Errorf("update folder: %w", err)
	}
	return requireRowAffected(res, "folder")
}

// DeleteFolder removes a folder and its membership rows.
func (db *DB) DeleteFolder(ctx context.Context, id string) error {
	if _, err := db.conn.ExecContext(ctx,
		`DELETE FROM folder_listings WHERE folder_id = ?`, id); err != nil {
		return fmt.Errorf("delete folder listings: %w", err)
	}

	res, err := db.conn.ExecContext(ctx, `DELETE FROM folders WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete folder: %w", err)
	}
	return requireRowAffected(res, "folder")
}

// AddListingToFolder adds a listing reference to a folder. Adding a
// reference that is already present is a no-op.
func (db *DB) AddListingToFolder(ctx context.Context, folderID, listingRef string) error {
	if _, err := db.GetFolder(ctx, folderID); err != nil {
		return err
	}

	_, err := db.conn.ExecContext(ctx,
		`INSERT OR IGNORE INTO folder_listings (folder_id, listing_ref, added_at)
		 VALUES (?, ?, ?)`,
		folderID, listingRef, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("add listing to folder: %w", err)
	}
	return nil
}

// RemoveListingFromFolder removes a listing reference from a folder.
func (db *DB) RemoveListingFromFolder(ctx context.Context, folderID, listingRef string) error {
	res, err := db.conn.ExecContext(ctx,
		`DELETE FROM folder_listings WHERE folder_id = ? AND listing_ref = ?`,
		folderID, listingRef)
	if err != nil {
		return fmt.Errorf("remove listing from folder: %w", err)
	}
	return requireRowAffected(res, "folder listing")
}

func (db *DB) folderListingRefs(ctx context.Context, folderID string) ([]string, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT listing_ref FROM folder_listings WHERE folder_id = ? ORDER BY added_at`,
		folderID)
	if err != nil {
		return nil, fmt.Errorf("folder listing refs: %w", err)
	}
	defer rows.Close()

	var refs []string
	for rows.Next() {
		var ref string
		if err := rows.Scan(&ref); err != nil {
			return nil, fmt.Errorf("scan listing ref: %w", err)
		}
		refs = append(refs, ref)
	}
	return refs, rows.Err()
}

func scanFolder(scanner rowScanner) (*models.Folder, error) {
	folder := &models.Folder{}
	var description sql.NullString

	err := scanner.Scan(
		&folder.ID, &folder.Name, &description, &folder.OwnerID,
		&folder.CreatedAt, &folder.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan folder: %w", err)
	}

	if description.Valid {
		folder.Description = description.String
	}
	return folder, nil
}
