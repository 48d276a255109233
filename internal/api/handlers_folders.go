// Propdock - PropertyFinder Listings Management and Publishing
// Copyright 2026 Omar K. (okhalidi)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/okhalidi/propdock

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/okhalidi/propdock/internal/auth"
	"github.com/okhalidi/propdock/internal/models"
)

type folderRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type folderListingRequest struct {
	ListingRef string `json:"listing_ref"`
}

// ListFolders returns the caller's folders. Managers and admins see all
// folders.
func (h *Handler) ListFolders(w http.ResponseWriter, r *http.Request) {
	rw := respond(w, r)

	ownerID := ""
	claims := auth.ClaimsFromContext(r.Context())
	if claims != nil && !models.RoleAtLeast(claims.Role, models.RoleManager) {
		ownerID = claims.UserID
	}

	folders, err := h.db.ListFolders(r.Context(), ownerID)
	if err != nil {
		rw.DatabaseError(err)
		return
	}
	rw.Success(folders)
}

// CreateFolder creates a listing folder owned by the caller.
func (h *Handler) CreateFolder(w http.ResponseWriter, r *http.Request) {
	rw := respond(w, r)

	var req folderRequest
	if err := decodeBody(r, &req); err != nil {
		rw.BadRequest(err.Error())
		return
	}
	if req.Name == "" {
		rw.BadRequest("name is required")
		return
	}

	folder := &models.Folder{
		Name:        req.Name,
		Description: req.Description,
	}
	if claims := auth.ClaimsFromContext(r.Context()); claims != nil {
		folder.OwnerID = claims.UserID
	}

	if err := h.db.CreateFolder(r.Context(), folder); err != nil {
		rw.DatabaseError(err)
		return
	}
	rw.Created(folder)
}

// GetFolder returns one folder with its listing references.
func (h *Handler) GetFolder(w http.ResponseWriter, r *http.Request) {
	rw := respond(w, r)

	folder, err := h.db.GetFolder(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		rw.DatabaseError(err)
		return
	}
	if !h.canTouchFolder(r, folder) {
		rw.Forbidden("not your folder")
		return
	}
	rw.Success(folder)
}

// UpdateFolder renames a folder.
func (h *Handler) UpdateFolder(w http.ResponseWriter, r *http.Request) {
	rw := respond(w, r)

	folder, err := h.db.GetFolder(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		rw.DatabaseError(err)
		return
	}
	if !h.canTouchFolder(r, folder) {
		rw.Forbidden("not your folder")
		return
	}

	var req folderRequest
	if err := decodeBody(r, &req); err != nil {
		rw.BadRequest(err.Error())
		return
	}
	if req.Name != "" {
		folder.Name = req.Name
	}
	folder.Description = req.Description

	if err := h.db.UpdateFolder(r.Context(), folder); err != nil {
		rw.DatabaseError(err)
		return
	}
	rw.Success(folder)
}

// DeleteFolder removes a folder and its membership rows. The listings
// themselves are untouched.
func (h *Handler) DeleteFolder(w http.ResponseWriter, r *http.Request) {
	rw := respond(w, r)

	folder, err := h.db.GetFolder(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		rw.DatabaseError(err)
		return
	}
	if !h.canTouchFolder(r, folder) {
		rw.Forbidden("not your folder")
		return
	}

	if err := h.db.DeleteFolder(r.Context(), folder.ID); err != nil {
		rw.DatabaseError(err)
		return
	}
	rw.NoContent()
}

// AddFolderListing assigns a listing reference to a folder.
func (h *Handler) AddFolderListing(w http.ResponseWriter, r *http.Request) {
	rw := respond(w, r)

	folder, err := h.db.GetFolder(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		rw.DatabaseError(err)
		return
	}
	if !h.canTouchFolder(r, folder) {
		rw.Forbidden("not your folder")
		return
	}

	var req folderListingRequest
	if err := decodeBody(r, &req); err != nil {
		rw.BadRequest(err.Error())
		return
	}
	if req.ListingRef == "" {
		rw.BadRequest("listing_ref is required")
		return
	}

	if err := h.db.AddListingToFolder(r.Context(), folder.ID, req.ListingRef); err != nil {
		rw.DatabaseError(err)
		return
	}

	folder, err = h.db.GetFolder(r.Context(), folder.ID)
	if err != nil {
		rw.DatabaseError(err)
		return
	}
	rw.Success(folder)
}

// RemoveFolderListing removes a listing reference from a folder.
func (h *Handler) RemoveFolderListing(w http.ResponseWriter, r *http.Request) {
	rw := respond(w, r)

	folder, err := h.db.GetFolder(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		rw.DatabaseError(err)
		return
	}
	if !h.canTouchFolder(r, folder) {
		rw.Forbidden("not your folder")
		return
	}

	if err := h.db.RemoveListingFromFolder(r.Context(), folder.ID, chi.URLParam(r, "ref")); err != nil {
		rw.DatabaseError(err)
		return
	}
	rw.NoContent()
}

// canTouchFolder allows the owner, managers and admins.
func (h *Handler) canTouchFolder(r *http.Request, folder *models.Folder) bool {
	claims := auth.ClaimsFromContext(r.Context())
	if claims == nil {
		return false
	}
	return folder.OwnerID == claims.UserID || models.RoleAtLeast(claims.Role, models.RoleManager)
}
