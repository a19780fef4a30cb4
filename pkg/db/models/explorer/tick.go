package explorer

const TicksTableName = "ticks"

var TickColumns = []ColumnDef{
	{Name: "tick_number", Type: "BIGINT PRIMARY KEY"},
	{Name: "timestamp", Type: "BIGINT"},
	{Name: "epoch", Type: "INTEGER"},
	{Name: "transaction_count", Type: "INTEGER NOT NULL DEFAULT 0"},
	{Name: "fetched_at", Type: "BIGINT"},
	{Name: "qx_count", Type: "INTEGER NOT NULL DEFAULT 0"},
	{Name: "qearn_count", Type: "INTEGER NOT NULL DEFAULT 0"},
	{Name: "ccf_count", Type: "INTEGER NOT NULL DEFAULT 0"},
	{Name: "qbay_count", Type: "INTEGER NOT NULL DEFAULT 0"},
	{Name: "heartbeat_count", Type: "INTEGER NOT NULL DEFAULT 0"},
	{Name: "user_count", Type: "INTEGER NOT NULL DEFAULT 0"},
}

// Tick is a ticked block with per-category transaction counts.
type Tick struct {
	TickNumber       int64  `json:"tick_number" db:"tick_number"`
	Timestamp        *int64 `json:"timestamp" db:"timestamp"`
	Epoch            *int32 `json:"epoch" db:"epoch"`
	TransactionCount int32  `json:"transaction_count" db:"transaction_count"`
	FetchedAt        *int64 `json:"fetched_at" db:"fetched_at"`
	QXCount          int32  `json:"qx_count" db:"qx_count"`
	QEARNCount       int32  `json:"qearn_count" db:"qearn_count"`
	CCFCount         int32  `json:"ccf_count" db:"ccf_count"`
	QBAYCount        int32  `json:"qbay_count" db:"qbay_count"`
	HeartbeatCount   int32  `json:"heartbeat_count" db:"heartbeat_count"`
	UserCount        int32  `json:"user_count" db:"user_count"`
}

func (t Tick) Validate() error {
	if t.TickNumber < 0 {
		return invalid(TicksTableName, "tick_number", "is negative: %d", t.TickNumber)
	}
	for name, v := range map[string]int32{
		"transaction_count": t.TransactionCount,
		"qx_count":          t.QXCount,
		"qearn_count":       t.QEARNCount,
		"ccf_count":         t.CCFCount,
		"qbay_count":        t.QBAYCount,
		"heartbeat_count":   t.HeartbeatCount,
		"user_count":        t.UserCount,
	} {
		if v < 0 {
			return invalid(TicksTableName, name, "is negative: %d", v)
		}
	}
	return nil
}
