package model

// AllModels returns every table that needs auto-migration. Add new tables
// here only; nothing else needs to change.
func AllModels() []interface{} {
	return []interface{}{
		&TxRecord{},
		&TxParameterRow{},
		&Coin{},
		&Address{},
		&NonceSlot{},
	}
}
