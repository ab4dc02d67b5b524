// Package scan drives the repository scan: it walks a directory tree for git
// repositories, classifies each one on a bounded worker pool, and reports
// matching repository paths according to the active reporting mode.
package scan
