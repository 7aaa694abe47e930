// Package utils provides small parsing and conversion helpers shared by the
// configuration layer and the reconciliation engine.
package utils
