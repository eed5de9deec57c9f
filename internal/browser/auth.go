package browser

import (
	"fmt"

	"github.com/tebeka/selenium"
)

// Authorise opens url and installs cookies for its domain.
//
// Browsers only accept cookies for the current document's domain, so the
// page must be loaded first; callers reload it afterwards to pick the session
// up.
func Authorise(s Session, url string, cookies []selenium.Cookie) error {
	if err := s.Get(url); err != nil {
		return fmt.Errorf("open %s: %w", url, err)
	}
	for i := range cookies {
		if err := s.AddCookie(&cookies[i]); err != nil {
			return fmt.Errorf("add cookie %q: %w", cookies[i].Name, err)
		}
	}
	return nil
}
