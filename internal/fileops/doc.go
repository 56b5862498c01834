// SPDX-License-Identifier: MPL-2.0

// Package fileops implements the analyze, convert and process file
// commands. Every operation works on a list of paths concurrently and
// returns one result per path in argument order.
package fileops
