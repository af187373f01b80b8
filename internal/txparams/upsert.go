package txparams

import "gorm.io/gorm/clause"

// upsertClause makes Set idempotent on the (tx_id, sub_tx_id, param_id)
// unique index: a repeated write with the same key overwrites the value in
// place, however many times that key is written.
func upsertClause() clause.OnConflict {
	return clause.OnConflict{
		Columns:   []clause.Column{{Name: "tx_id"}, {Name: "sub_tx_id"}, {Name: "param_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}
}
