// Package extract scrapes one rendered product page into a catalog record.
//
// A page is processed in three steps: the product heading is awaited, the
// nutrition accordion is expanded, and every nutrition entry is parsed into an
// EntryResult. Failures past the first step only shorten the record.
package extract
