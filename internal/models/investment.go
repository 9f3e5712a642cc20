package models

// Investment represents a tradable instrument in the catalog.
// Catalog entries are reference data maintained through the pipeline
// endpoints; users hold them through Asset rows.
type Investment struct {
	Base
	Name string `gorm:"not null" json:"name"`
	Type string `gorm:"size:50;not null" json:"type"` // e.g. stock, crypto, fund
}
