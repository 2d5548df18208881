// Package crawler discovers product pages on the menu site and drives the
// sequential scraping batch that turns them into a persisted catalog file.
package crawler
