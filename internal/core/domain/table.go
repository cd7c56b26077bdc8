package domain

import "time"

type TableStatus string

const (
	TableAvailable   TableStatus = "available"
	TableOccupied    TableStatus = "occupied"
	TableReserved    TableStatus = "reserved"
	TableMaintenance TableStatus = "maintenance"
)

type Table struct {
	ID             int64
	Number         string
	Name           string
	Capacity       int
	Location       string
	Status         TableStatus
	QRCode         string
	Description    string
	CreatedAt      time.Time
	CurrentOrderID *int64
}

type TableStats struct {
	Total       int
	Available   int
	Occupied    int
	Reserved    int
	Maintenance int
}
