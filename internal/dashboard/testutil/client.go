package testutil

import (
	"bytes"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
)

// Client is a browser stand-in: it keeps cookies, so every request lands
// in the same workspace, and echoes the CSRF cookie like the page does.
type Client struct {
	t    testing.TB
	base string
	http *http.Client
}

// Response is a fully read response.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// NewClient returns a client for ts that does not follow redirects.
func NewClient(t testing.TB, ts *httptest.Server) *Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("cookie jar: %v", err)
	}
	return &Client{
		t:    t,
		base: ts.URL,
		http: &http.Client{
			Jar: jar,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

// Get issues a plain browser navigation.
func (c *Client) Get(path string) Response {
	return c.do(http.MethodGet, path, nil, "", false)
}

// HXGet issues an htmx request.
func (c *Client) HXGet(path string) Response {
	return c.do(http.MethodGet, path, nil, "", true)
}

// HXPost submits form values the way htmx does.
func (c *Client) HXPost(path string, form url.Values) Response {
	return c.do(http.MethodPost, path, strings.NewReader(form.Encode()), "application/x-www-form-urlencoded", true)
}

// HXDelete issues an htmx DELETE.
func (c *Client) HXDelete(path string) Response {
	return c.do(http.MethodDelete, path, nil, "", true)
}

// PostForm submits a plain form with the CSRF field instead of the header.
func (c *Client) PostForm(path string, form url.Values) Response {
	c.t.Helper()
	values := url.Values{}
	for k, v := range form {
		values[k] = v
	}
	values.Set("csrf_token", c.CSRFToken())
	return c.do(http.MethodPost, path, strings.NewReader(values.Encode()), "application/x-www-form-urlencoded", false)
}

// HXUpload posts a multipart file the way the avatar form does.
func (c *Client) HXUpload(path, field, filename string, data []byte) Response {
	c.t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile(field, filename)
	if err != nil {
		c.t.Fatalf("multipart: %v", err)
	}
	if _, err := part.Write(data); err != nil {
		c.t.Fatalf("multipart: %v", err)
	}
	if err := mw.Close(); err != nil {
		c.t.Fatalf("multipart: %v", err)
	}
	return c.do(http.MethodPost, path, &buf, mw.FormDataContentType(), true)
}

// CSRFToken returns the token cookie, fetching the dashboard first when
// none was issued yet.
func (c *Client) CSRFToken() string {
	c.t.Helper()
	if token := c.cookie("dashboard_csrf"); token != "" {
		return token
	}
	c.Get("/")
	token := c.cookie("dashboard_csrf")
	if token == "" {
		c.t.Fatalf("no csrf cookie issued")
	}
	return token
}

func (c *Client) cookie(name string) string {
	u, err := url.Parse(c.base)
	if err != nil {
		c.t.Fatalf("parse base url: %v", err)
	}
	for _, ck := range c.http.Jar.Cookies(u) {
		if ck.Name == name {
			return ck.Value
		}
	}
	return ""
}

func (c *Client) do(method, path string, body io.Reader, contentType string, htmx bool) Response {
	c.t.Helper()
	var token string
	if htmx && method != http.MethodGet {
		token = c.CSRFToken()
	}
	req, err := http.NewRequest(method, c.base+path, body)
	if err != nil {
		c.t.Fatalf("new request: %v", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if htmx {
		req.Header.Set("HX-Request", "true")
		if token != "" {
			req.Header.Set("X-CSRF-Token", token)
		}
	}
	resp, err := c.http.Do(req)
	if err != nil {
		c.t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		c.t.Fatalf("read body: %v", err)
	}
	return Response{StatusCode: resp.StatusCode, Header: resp.Header, Body: data}
}
