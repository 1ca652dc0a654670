// Archivist: A CLI tool for uploading manga chapters to ImgChest and
// maintaining Cubari-compatible reader metadata.
// Copyright (C) 2025 Archivist Authors
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program. If not, see <http://www.gnu.org/licenses/>.

package network

import (
	"Archivist/pkg/engine/core"
	"Archivist/pkg/errors"
	"context"
	"encoding/json"
	"net/http"
)

type userData struct {
	ID   json.Number `json:"id"`
	Name string      `json:"name"`
}

type postData struct {
	ID string `json:"id"`
}

// TestAuth performs an authenticated read-only call and reports
// whether the credentials are valid. Auth failure is a false return,
// never an error.
func (c *Client) TestAuth(ctx context.Context) bool {
	envelope, err := c.request(ctx, http.MethodGet, "/user/me", nil, "")
	if err != nil {
		c.Logger.Debug("auth test failed: %v", err)
		return false
	}

	var user userData
	if err := json.Unmarshal(envelope.Data, &user); err != nil {
		c.Logger.Debug("auth test returned malformed user data: %v", err)
		return false
	}
	return user.ID.String() != ""
}

// CreateAlbum uploads the first batch of a chapter as a new album and
// returns the album identity.
func (c *Client) CreateAlbum(ctx context.Context, title string, batch core.Batch) (core.Album, error) {
	if len(batch.Images) == 0 {
		return core.Album{}, errors.New("no images provided for album creation")
	}

	fields := map[string]string{}
	if title != "" {
		fields["title"] = title
	}
	payload, contentType, err := encodeBatch(fields, batch)
	if err != nil {
		return core.Album{}, err
	}

	envelope, err := c.request(ctx, http.MethodPost, "/post", payload, contentType)
	if err != nil {
		return core.Album{}, err
	}

	var post postData
	if err := json.Unmarshal(envelope.Data, &post); err != nil || post.ID == "" {
		return core.Album{}, errors.Remote("/post", http.StatusOK, "response missing album id", errors.ErrBadRequest)
	}

	return core.Album{ID: post.ID, URL: core.AlbumURL(post.ID)}, nil
}

// AddImages appends a batch to an existing album.
func (c *Client) AddImages(ctx context.Context, albumID string, batch core.Batch) error {
	if len(batch.Images) == 0 {
		return nil
	}

	payload, contentType, err := encodeBatch(nil, batch)
	if err != nil {
		return err
	}

	_, err = c.request(ctx, http.MethodPost, "/post/"+albumID+"/add", payload, contentType)
	return err
}

// DeleteAlbum removes an album from the host. Used by the re-upload
// flow before a replacement album is created.
func (c *Client) DeleteAlbum(ctx context.Context, albumID string) error {
	_, err := c.request(ctx, http.MethodDelete, "/post/"+albumID, nil, "")
	return err
}
