// Package transpress republishes articles from a source content feed to a
// destination CMS. Each article is stripped of boilerplate, translated with
// its heading structure intact, has its links and images rehomed, and is
// published with its original timestamps. Already-published articles are
// tracked so that no source article is republished twice.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., sqlite/, goquery/, wordpress/).
package transpress
