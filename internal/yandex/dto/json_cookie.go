package dto

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"github.com/tebeka/selenium"
)

// CookieExpiry is a Unix timestamp that tolerates the shapes cookie exports
// use: integers, fractional seconds, numeric strings or null.
type CookieExpiry struct {
	Unix uint
}

// UnmarshalJSON parses 1735689600, 1735689600.123 or "1735689600".
func (ce *CookieExpiry) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		ce.Unix = 0
		return nil
	}

	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("cookie expiry %s: not a number", data)
		}
		if f, err = strconv.ParseFloat(s, 64); err != nil {
			return fmt.Errorf("cookie expiry %q: %w", s, err)
		}
	}

	if f < 0 {
		f = 0
	}
	ce.Unix = uint(math.Floor(f))
	return nil
}

// JSONCookie represents one cookie in an exported cookie file.
//
// Both the WebDriver get_cookies() dump ("expiry") and the browser
// extension export ("expirationDate") are accepted.
type JSONCookie struct {
	Name           string        `json:"name"`
	Value          string        `json:"value"`
	Domain         string        `json:"domain"`
	Path           string        `json:"path"`
	Secure         bool          `json:"secure"`
	HTTPOnly       bool          `json:"httpOnly"`
	SameSite       string        `json:"sameSite"`
	Expiry         *CookieExpiry `json:"expiry"`
	ExpirationDate *CookieExpiry `json:"expirationDate"`
}

// ToCookie converts JSONCookie to a selenium.Cookie.
//
// Session cookies (no expiry) keep Expiry at zero, which the driver treats
// as "expires with the session". An empty path defaults to "/".
func (jc *JSONCookie) ToCookie() selenium.Cookie {
	var expiry uint
	switch {
	case jc.Expiry != nil:
		expiry = jc.Expiry.Unix
	case jc.ExpirationDate != nil:
		expiry = jc.ExpirationDate.Unix
	}

	path := jc.Path
	if path == "" {
		path = "/"
	}

	return selenium.Cookie{
		Name:   jc.Name,
		Value:  jc.Value,
		Domain: jc.Domain,
		Path:   path,
		Secure: jc.Secure,
		Expiry: expiry,
	}
}

// ParseCookies decodes a JSON array of cookies.
func ParseCookies(data []byte) ([]selenium.Cookie, error) {
	var raw []JSONCookie
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse cookie JSON: %w", err)
	}

	cookies := make([]selenium.Cookie, 0, len(raw))
	for i := range raw {
		if raw[i].Name == "" {
			continue
		}
		cookies = append(cookies, raw[i].ToCookie())
	}
	return cookies, nil
}
