// Package aggregates defines the coded errors shared by every layer.
//
// Services return these codes; the HTTP layer maps them onto statuses.
package aggregates
