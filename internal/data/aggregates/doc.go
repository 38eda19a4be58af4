// Package aggregates owns transaction boundaries for multi-row writes and
// maps storage failures onto the coded errors services return.
package aggregates
