package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// StoredScale is the number of fractional digits the database keeps for
// amounts, rates and pricing inputs.
const StoredScale = 8

// FitsStoredScale reports whether v is stored without rounding.
func FitsStoredScale(v decimal.Decimal) bool {
	return v.Equal(v.Truncate(StoredScale))
}

// AuditFields records who created and last changed a currency, rate, rule or quote.
// Actors are dashboard user IDs or system actors such as "system:rate-sync".
type AuditFields struct {
	CreatedAt     time.Time `json:"createdAt"`
	CreatedBy     string    `json:"createdBy"`
	LastUpdatedAt time.Time `json:"lastUpdatedAt"`
	LastUpdatedBy string    `json:"lastUpdatedBy"`
}

// Touch stamps the last update.
func (a *AuditFields) Touch(userID string, now time.Time) {
	a.LastUpdatedAt = now
	a.LastUpdatedBy = userID
}
