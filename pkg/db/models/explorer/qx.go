package explorer

const QXTransactionsTableName = "qx_transactions"

// QX exchange events.
const (
	QXEventBuy        = "Buy"
	QXEventSell       = "Sell"
	QXEventTransfer   = "Transfer"
	QXEventIssueAsset = "IssueAsset"
	QXEventCancelBuy  = "CancelBuy"
	QXEventCancelSell = "CancelSell"
)

var validQXEvents = map[string]bool{
	QXEventBuy:        true,
	QXEventSell:       true,
	QXEventTransfer:   true,
	QXEventIssueAsset: true,
	QXEventCancelBuy:  true,
	QXEventCancelSell: true,
}

var QXTradeColumns = []ColumnDef{
	{Name: "tx_id", Type: "TEXT NOT NULL"},
	{Name: "tick_number", Type: "BIGINT NOT NULL"},
	{Name: "source_id", Type: "TEXT NOT NULL"},
	{Name: "timestamp", Type: "BIGINT NOT NULL DEFAULT 0"},
	{Name: "event", Type: "TEXT NOT NULL"},
	{Name: "asset_name", Type: "TEXT NOT NULL"},
	{Name: "issuer_hex", Type: "TEXT"},
	{Name: "price", Type: "BIGINT"},
	{Name: "shares", Type: "BIGINT"},
	{Name: "receiver_hex", Type: "TEXT"},
	{Name: "money_flew", Type: "BOOLEAN NOT NULL DEFAULT FALSE"},
}

// QXTrade is a decoded QX exchange event. Price is in QU per share.
type QXTrade struct {
	TxID        string  `json:"tx_id" db:"tx_id"`
	TickNumber  int64   `json:"tick_number" db:"tick_number"`
	SourceID    string  `json:"source_id" db:"source_id"`
	Timestamp   int64   `json:"timestamp" db:"timestamp"`
	Event       string  `json:"event" db:"event"`
	AssetName   string  `json:"asset_name" db:"asset_name"`
	IssuerHex   *string `json:"issuer_hex" db:"issuer_hex"`
	Price       *int64  `json:"price" db:"price"`
	Shares      *int64  `json:"shares" db:"shares"`
	ReceiverHex *string `json:"receiver_hex" db:"receiver_hex"`
	MoneyFlew   bool    `json:"money_flew" db:"money_flew"`
}

// IsTrade reports whether the event is a Buy or a Sell.
func (t QXTrade) IsTrade() bool {
	return t.Event == QXEventBuy || t.Event == QXEventSell
}

// IsPricedTrade reports whether the event is a Buy or Sell that carries a price.
func (t QXTrade) IsPricedTrade() bool {
	return t.IsTrade() && t.Price != nil
}

func (t QXTrade) Validate() error {
	if t.TxID == "" {
		return invalid(QXTransactionsTableName, "tx_id", "is empty")
	}
	if t.AssetName == "" {
		return invalid(QXTransactionsTableName, "asset_name", "is empty")
	}
	if !validQXEvents[t.Event] {
		return invalid(QXTransactionsTableName, "event", "unknown value %q", t.Event)
	}
	if t.Shares != nil && *t.Shares < 0 {
		return invalid(QXTransactionsTableName, "shares", "is negative: %d", *t.Shares)
	}
	if t.Price != nil && *t.Price < 0 {
		return invalid(QXTransactionsTableName, "price", "is negative: %d", *t.Price)
	}
	return nil
}
