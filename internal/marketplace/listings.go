package marketplace

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

// Listings returns every published listing.
func (c *Client) Listings(ctx context.Context) ([]Listing, error) {
	var listings []Listing
	if err := c.do(ctx, http.MethodGet, "/listing", nil, nil, &listings); err != nil {
		return nil, err
	}
	return listings, nil
}

// SearchListings filters by free-text query and/or category. Both
// parameters are optional; with neither set it behaves like Listings.
func (c *Client) SearchListings(ctx context.Context, query string, categoryID int64) ([]Listing, error) {
	params := url.Values{}
	if query != "" {
		params.Set("q", query)
	}
	if categoryID > 0 {
		params.Set("category", strconv.FormatInt(categoryID, 10))
	}
	if len(params) == 0 {
		return c.Listings(ctx)
	}
	var listings []Listing
	if err := c.do(ctx, http.MethodGet, "/listing/search", params, nil, &listings); err != nil {
		return nil, err
	}
	return listings, nil
}

// Listing fetches one listing with its seller and category expanded.
func (c *Client) Listing(ctx context.Context, id int64) (*Listing, error) {
	var listing Listing
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/listing/%d", id), nil, nil, &listing); err != nil {
		return nil, err
	}
	return &listing, nil
}

// MyListings returns the listings owned by the authenticated user.
func (c *Client) MyListings(ctx context.Context) ([]Listing, error) {
	var listings []Listing
	if err := c.do(ctx, http.MethodGet, "/listing/my-listings", nil, nil, &listings); err != nil {
		return nil, err
	}
	return listings, nil
}

// CreateListing publishes a new listing for the authenticated user.
func (c *Client) CreateListing(ctx context.Context, params ListingParams) (*Listing, error) {
	var created Listing
	if err := c.do(ctx, http.MethodPost, "/listing", nil, params, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// UpdateListing replaces the listing's editable fields.
func (c *Client) UpdateListing(ctx context.Context, id int64, params ListingParams) (*Listing, error) {
	var updated Listing
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/listing/%d", id), nil, params, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteListing removes a listing owned by the authenticated user.
func (c *Client) DeleteListing(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/listing/%d", id), nil, nil, nil)
}

// Categories returns the category catalog used by the filter bar.
func (c *Client) Categories(ctx context.Context) ([]Category, error) {
	var categories []Category
	if err := c.do(ctx, http.MethodGet, "/category", nil, nil, &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

// User fetches a profile by id.
func (c *Client) User(ctx context.Context, id int64) (*User, error) {
	var user User
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/users/%d", id), nil, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateUser updates the caller's own profile fields.
func (c *Client) UpdateUser(ctx context.Context, id int64, params UpdateUserParams) (*User, error) {
	var updated User
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/users/%d", id), nil, params, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}
