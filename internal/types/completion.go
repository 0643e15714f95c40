package types

// Completion is a stored alternate version of a Concern's context. Rows are
// append-only: created after a successful provider call, never updated.
// CreatedAt is a millisecond-epoch string, matching the wire format the site
// already stores.
type Completion struct {
	ID         string `gorm:"column:id;primaryKey" json:"id"`
	CreatedAt  string `gorm:"column:created_at;not null" json:"createdAt"`
	ConcernID  string `gorm:"column:concern_id;index;not null" json:"concernID"`
	Completion string `gorm:"column:completion;not null" json:"completion"`
}
