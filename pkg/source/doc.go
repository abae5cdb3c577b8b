// Package source reads certificate report rows and resolves user tax codes
// from the learning platform's PostgreSQL database.
package source
