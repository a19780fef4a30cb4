package explorer

const TransactionsTableName = "transactions"

// Transaction categories as assigned by the indexer.
const (
	CategoryDefi      = "defi"
	CategoryNFT       = "nft"
	CategoryHeartbeat = "heartbeat"
	CategorySystem    = "system"
	CategoryUser      = "user"
)

// Smart contract names carried in contract_name.
const (
	ContractQX    = "QX"
	ContractQEARN = "QEARN"
	ContractCCF   = "CCF"
	ContractQBAY  = "QBAY"
)

var validCategories = map[string]bool{
	CategoryDefi:      true,
	CategoryNFT:       true,
	CategoryHeartbeat: true,
	CategorySystem:    true,
	CategoryUser:      true,
}

var TransactionColumns = []ColumnDef{
	{Name: "tx_id", Type: "TEXT PRIMARY KEY"},
	{Name: "tick_number", Type: "BIGINT NOT NULL"},
	{Name: "source_id", Type: "TEXT NOT NULL"},
	{Name: "dest_id", Type: "TEXT NOT NULL"},
	{Name: "amount", Type: "BIGINT NOT NULL DEFAULT 0"},
	{Name: "timestamp", Type: "BIGINT NOT NULL DEFAULT 0"},
	{Name: "category", Type: "TEXT NOT NULL"},
	{Name: "contract_name", Type: "TEXT"},
	{Name: "event", Type: "TEXT"},
	{Name: "decoded_summary", Type: "TEXT"},
}

// Transaction is a generic on-chain transfer or contract call.
type Transaction struct {
	TxID           string  `json:"tx_id" db:"tx_id"`
	TickNumber     int64   `json:"tick_number" db:"tick_number"`
	SourceID       string  `json:"source_id" db:"source_id"`
	DestID         string  `json:"dest_id" db:"dest_id"`
	Amount         int64   `json:"amount" db:"amount"`
	Timestamp      int64   `json:"timestamp" db:"timestamp"` // unix milliseconds
	Category       string  `json:"category" db:"category"`
	ContractName   *string `json:"contract_name" db:"contract_name"`
	Event          *string `json:"event" db:"event"`
	DecodedSummary *string `json:"decoded_summary" db:"decoded_summary"`
}

func (t Transaction) Validate() error {
	if t.TxID == "" {
		return invalid(TransactionsTableName, "tx_id", "is empty")
	}
	if t.TickNumber < 0 {
		return invalid(TransactionsTableName, "tick_number", "is negative: %d", t.TickNumber)
	}
	if t.Amount < 0 {
		return invalid(TransactionsTableName, "amount", "is negative: %d", t.Amount)
	}
	if !validCategories[t.Category] {
		return invalid(TransactionsTableName, "category", "unknown value %q", t.Category)
	}
	return nil
}
