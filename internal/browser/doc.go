// Package browser wraps a Selenium WebDriver session for page scraping.
//
// The package handles:
//   - Starting a local chromedriver or connecting to a remote executor
//   - Element lookup with polling (WaitFor, WaitForOne)
//   - Filtering out stale element references (LiveOnly, IsStale)
//   - Cookie-based authorisation
//   - Wheel-like scrolling from an element
//
// # Basic Usage
//
//	drv, err := browser.Start(ctx, cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer drv.Close()
//
//	btn, err := browser.WaitForOne(ctx, drv, selenium.ByXPATH, `//button`, 0,
//	    browser.WaitOptions{MaxWait: 5 * time.Second})
//
// # Testing
//
// Scrapers depend on the Session and Element interfaces rather than on
// selenium.WebDriver, so they can be exercised against in-memory fakes.
package browser
