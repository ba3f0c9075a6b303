package models

// FireGroup is one station's share of a fire operation: the selected
// New items that resolved to that station.
type FireGroup struct {
	Station Station
	Items   []OrderItem
}
