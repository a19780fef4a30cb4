package explorer

const AddressesTableName = "addresses"

var WalletActivityColumns = []ColumnDef{
	{Name: "address_id", Type: "TEXT PRIMARY KEY"},
	{Name: "first_seen_tick", Type: "BIGINT NOT NULL"},
	{Name: "first_seen_timestamp", Type: "BIGINT NOT NULL DEFAULT 0"},
	{Name: "address_type", Type: "TEXT NOT NULL DEFAULT 'wallet'"},
	{Name: "label", Type: "TEXT"},
	{Name: "tx_count", Type: "BIGINT NOT NULL DEFAULT 0"},
	{Name: "last_active_tick", Type: "BIGINT NOT NULL"},
}

// WalletActivity is the per-address summary maintained by the indexer.
type WalletActivity struct {
	AddressID          string  `json:"address_id" db:"address_id"`
	FirstSeenTick      int64   `json:"first_seen_tick" db:"first_seen_tick"`
	FirstSeenTimestamp int64   `json:"first_seen_timestamp" db:"first_seen_timestamp"`
	AddressType        string  `json:"address_type" db:"address_type"`
	Label              *string `json:"label" db:"label"`
	TxCount            int64   `json:"tx_count" db:"tx_count"`
	LastActiveTick     int64   `json:"last_active_tick" db:"last_active_tick"`
}

func (w WalletActivity) Validate() error {
	if w.AddressID == "" {
		return invalid(AddressesTableName, "address_id", "is empty")
	}
	if w.TxCount < 0 {
		return invalid(AddressesTableName, "tx_count", "is negative: %d", w.TxCount)
	}
	if w.LastActiveTick < w.FirstSeenTick {
		return invalid(AddressesTableName, "last_active_tick", "%d precedes first_seen_tick %d", w.LastActiveTick, w.FirstSeenTick)
	}
	return nil
}
