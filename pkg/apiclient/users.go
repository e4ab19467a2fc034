package apiclient

import (
	"context"
	"net/url"
)

type User struct {
	Username    string  `json:"username"`
	Name        string  `json:"name"`
	Email       string  `json:"email"`
	Avatar      *string `json:"avatar"`
	Description string  `json:"description,omitempty"`
}

type Share struct {
	URL   string `json:"url"`
	Title string `json:"title"`
}

// UploadResult is the answer of POST /upload.
type UploadResult struct {
	Message  string `json:"message"`
	Filename string `json:"filename"`
	Path     string `json:"path"`
}

func userPath(username string) string {
	return "/users/" + url.PathEscape(username) + "/"
}

func (c *Client) GetProfile(ctx context.Context, username string) (*User, error) {
	var u User
	if err := c.Get(ctx, userPath(username), nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *Client) UpdateDescription(ctx context.Context, username, description string) (*User, error) {
	var u User
	if err := c.Patch(ctx, userPath(username), map[string]string{"description": description}, &u); err != nil {
		return nil, err
	}
	c.ClearCacheFor(userPath(username), nil)
	return &u, nil
}

func (c *Client) UpdateAvatar(ctx context.Context, username string, avatar File) (*User, error) {
	var u User
	if err := c.PostFiles(ctx, userPath(username)+"avatar/", "avatar", []File{avatar}, &u); err != nil {
		return nil, err
	}
	c.ClearCacheFor(userPath(username), nil)
	return &u, nil
}

func (c *Client) ShareProfile(ctx context.Context, username string) (*Share, error) {
	var s Share
	if err := c.Get(ctx, userPath(username)+"share/", nil, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// Upload sends one file to POST /upload (field "file").
func (c *Client) Upload(ctx context.Context, f File) (*UploadResult, error) {
	var r UploadResult
	if err := c.PostFiles(ctx, "/upload", "file", []File{f}, &r); err != nil {
		return nil, err
	}
	return &r, nil
}
