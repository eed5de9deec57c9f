package browser

import (
	"fmt"

	"github.com/tebeka/selenium"
)

// Element is the subset of a page element the scrapers use.
//
// Every method is a round trip to the WebDriver and may fail with a stale
// reference once the page re-renders the element; see IsStale.
type Element interface {
	Click() error
	Text() (string, error)
	Attribute(name string) (string, error)
	IsEnabled() (bool, error)
	FindAll(by, value string) ([]Element, error)
	// InView returns the element's top-left corner in viewport coordinates,
	// scrolling it into view first.
	InView() (x, y int, err error)
}

// Session is a live browser session.
//
// Session is implemented over a selenium.WebDriver by NewSession and by fakes
// in tests. Lookups follow the WebDriver locator strategies (selenium.ByXPATH,
// selenium.ByCSSSelector, ...).
type Session interface {
	Get(url string) error
	AddCookie(cookie *selenium.Cookie) error
	FindAll(by, value string) ([]Element, error)
	// ScrollFrom scrolls the nearest scrollable ancestor under origin by
	// (dx, dy) pixels, the way a mouse wheel over origin would.
	ScrollFrom(origin Element, dx, dy int) error
	PageSource() (string, error)
	Screenshot() ([]byte, error)
	Quit() error
}

// scrollFromScript finds the scroll container under a viewport point and scrolls it.
const scrollFromScript = `
var el = document.elementFromPoint(arguments[0], arguments[1]);
while (el && el !== document.body && el.scrollHeight <= el.clientHeight) {
	el = el.parentElement;
}
if (!el || el === document.body) {
	el = document.scrollingElement || document.documentElement;
}
el.scrollBy(arguments[2], arguments[3]);
return true;`

type wdSession struct {
	wd selenium.WebDriver
}

// NewSession adapts a selenium.WebDriver to Session.
func NewSession(wd selenium.WebDriver) Session {
	return &wdSession{wd: wd}
}

func (s *wdSession) Get(url string) error {
	return s.wd.Get(url)
}

func (s *wdSession) AddCookie(cookie *selenium.Cookie) error {
	return s.wd.AddCookie(cookie)
}

func (s *wdSession) FindAll(by, value string) ([]Element, error) {
	found, err := s.wd.FindElements(by, value)
	if err != nil {
		return nil, err
	}
	return wrapElements(found), nil
}

func (s *wdSession) ScrollFrom(origin Element, dx, dy int) error {
	x, y, err := origin.InView()
	if err != nil {
		return fmt.Errorf("locate scroll origin: %w", err)
	}
	// Aim one pixel inside the element so elementFromPoint hits it.
	_, err = s.wd.ExecuteScript(scrollFromScript, []interface{}{x + 1, y + 1, dx, dy})
	return err
}

func (s *wdSession) PageSource() (string, error) {
	return s.wd.PageSource()
}

func (s *wdSession) Screenshot() ([]byte, error) {
	return s.wd.Screenshot()
}

func (s *wdSession) Quit() error {
	return s.wd.Quit()
}

type wdElement struct {
	we selenium.WebElement
}

func wrapElements(found []selenium.WebElement) []Element {
	out := make([]Element, len(found))
	for i, we := range found {
		out[i] = &wdElement{we: we}
	}
	return out
}

func (e *wdElement) Click() error {
	return e.we.Click()
}

func (e *wdElement) Text() (string, error) {
	return e.we.Text()
}

func (e *wdElement) Attribute(name string) (string, error) {
	return e.we.GetAttribute(name)
}

func (e *wdElement) IsEnabled() (bool, error) {
	return e.we.IsEnabled()
}

func (e *wdElement) FindAll(by, value string) ([]Element, error) {
	found, err := e.we.FindElements(by, value)
	if err != nil {
		return nil, err
	}
	return wrapElements(found), nil
}

func (e *wdElement) InView() (int, int, error) {
	p, err := e.we.LocationInView()
	if err != nil {
		return 0, 0, err
	}
	return p.X, p.Y, nil
}
