// Package models defines the server-side entities persisted by the
// repositories.
package models
