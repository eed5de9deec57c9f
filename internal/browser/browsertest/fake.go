// Package browsertest provides in-memory fakes of browser.Session and
// browser.Element for scraper tests.
package browsertest

import (
	"errors"
	"sync"

	"github.com/tebeka/selenium"

	"github.com/VArrow2001/shuffle-audit/internal/browser"
)

// Element is a fake page element.
type Element struct {
	TextValue string
	Attrs     map[string]string
	// Stale makes every method fail with browser.ErrStale.
	Stale bool
	// StaleOnRead passes the IsEnabled probe but fails Text and Attribute
	// with browser.ErrStale, like an element re-rendered right after the probe.
	StaleOnRead bool
	// Children maps a locator value to the elements FindAll returns for it.
	Children map[string][]browser.Element
	X, Y     int

	// OnClick runs after a successful click.
	OnClick func()

	mu     sync.Mutex
	clicks int
}

// NewElement returns an element with the given text and attributes.
func NewElement(text string, attrs map[string]string) *Element {
	return &Element{TextValue: text, Attrs: attrs}
}

// Clicks returns how many times the element was clicked.
func (e *Element) Clicks() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.clicks
}

func (e *Element) Click() error {
	if e.Stale {
		return browser.ErrStale
	}
	e.mu.Lock()
	e.clicks++
	e.mu.Unlock()
	if e.OnClick != nil {
		e.OnClick()
	}
	return nil
}

func (e *Element) Text() (string, error) {
	if e.Stale || e.StaleOnRead {
		return "", browser.ErrStale
	}
	return e.TextValue, nil
}

func (e *Element) Attribute(name string) (string, error) {
	if e.Stale || e.StaleOnRead {
		return "", browser.ErrStale
	}
	return e.Attrs[name], nil
}

func (e *Element) IsEnabled() (bool, error) {
	if e.Stale {
		return false, browser.ErrStale
	}
	return true, nil
}

func (e *Element) FindAll(by, value string) ([]browser.Element, error) {
	if e.Stale {
		return nil, browser.ErrStale
	}
	return e.Children[value], nil
}

func (e *Element) InView() (int, int, error) {
	if e.Stale {
		return 0, 0, browser.ErrStale
	}
	return e.X, e.Y, nil
}

// Session is a fake browser session.
//
// Lookups are scripted per locator value: each FindAll call consumes the next
// scripted result, and the last one repeats once the script runs out. An
// unscripted locator matches nothing.
type Session struct {
	// FindHook, when set, answers every lookup instead of the scripts.
	FindHook func(by, value string) ([]browser.Element, error)

	// OnGet runs after each navigation.
	OnGet func(url string)

	// OnScroll runs after each scroll.
	OnScroll func()

	// Shot is returned by Screenshot.
	Shot []byte

	mu      sync.Mutex
	scripts map[string][][]browser.Element
	sources []string
	visited []string
	cookies []selenium.Cookie
	scrolls int
	quit    bool
}

// NewSession returns an empty fake session.
func NewSession() *Session {
	return &Session{scripts: make(map[string][][]browser.Element)}
}

// Script queues results for lookups of value.
func (s *Session) Script(value string, results ...[]browser.Element) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scripts[value] = append(s.scripts[value], results...)
}

// Sources queues page sources; the last one repeats.
func (s *Session) Sources(pages ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sources = append(s.sources, pages...)
}

// Visited returns every URL passed to Get.
func (s *Session) Visited() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.visited...)
}

// Cookies returns every cookie added.
func (s *Session) Cookies() []selenium.Cookie {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]selenium.Cookie(nil), s.cookies...)
}

// Scrolls returns the number of ScrollFrom calls.
func (s *Session) Scrolls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scrolls
}

// Quitted reports whether Quit was called.
func (s *Session) Quitted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.quit
}

func (s *Session) Get(url string) error {
	s.mu.Lock()
	s.visited = append(s.visited, url)
	s.mu.Unlock()
	if s.OnGet != nil {
		s.OnGet(url)
	}
	return nil
}

func (s *Session) AddCookie(cookie *selenium.Cookie) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cookies = append(s.cookies, *cookie)
	return nil
}

func (s *Session) FindAll(by, value string) ([]browser.Element, error) {
	if s.FindHook != nil {
		return s.FindHook(by, value)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	queue := s.scripts[value]
	if len(queue) == 0 {
		return nil, nil
	}
	next := queue[0]
	if len(queue) > 1 {
		s.scripts[value] = queue[1:]
	}
	return next, nil
}

func (s *Session) ScrollFrom(origin browser.Element, dx, dy int) error {
	if _, _, err := origin.InView(); err != nil {
		return err
	}
	s.mu.Lock()
	s.scrolls++
	s.mu.Unlock()
	if s.OnScroll != nil {
		s.OnScroll()
	}
	return nil
}

func (s *Session) PageSource() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.sources) == 0 {
		return "", errors.New("no page source scripted")
	}
	page := s.sources[0]
	if len(s.sources) > 1 {
		s.sources = s.sources[1:]
	}
	return page, nil
}

func (s *Session) Screenshot() ([]byte, error) {
	if s.Shot == nil {
		return nil, errors.New("no screenshot scripted")
	}
	return s.Shot, nil
}

func (s *Session) Quit() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.quit = true
	return nil
}

// Elements is shorthand for building a lookup result.
func Elements(els ...*Element) []browser.Element {
	out := make([]browser.Element, len(els))
	for i, el := range els {
		out[i] = el
	}
	return out
}
