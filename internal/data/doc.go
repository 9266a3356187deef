// Package data defines the in-memory customer table, its CSV encoding and the
// synthetic credit-card dataset generator.
package data
