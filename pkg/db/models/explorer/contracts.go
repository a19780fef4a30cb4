package explorer

const (
	QEARNTransactionsTableName = "qearn_transactions"
	CCFTransactionsTableName   = "ccf_transactions"
	QBAYTransactionsTableName  = "qbay_transactions"
)

const (
	QEARNEventLock   = "lock"
	QEARNEventUnlock = "unlock"

	CCFEventSetProposal = "SetProposal"
	CCFEventVote        = "Vote"
)

// QBAY payment methods.
const (
	PaymentCFB   = 0
	PaymentQUBIC = 1
)

var QEARNTransactionColumns = []ColumnDef{
	{Name: "tx_id", Type: "TEXT NOT NULL"},
	{Name: "tick_number", Type: "BIGINT NOT NULL"},
	{Name: "source_id", Type: "TEXT NOT NULL"},
	{Name: "timestamp", Type: "BIGINT"},
	{Name: "event", Type: "TEXT NOT NULL"},
	{Name: "amount", Type: "BIGINT NOT NULL DEFAULT 0"},
	{Name: "locked_epoch", Type: "INTEGER"},
	{Name: "money_flew", Type: "BOOLEAN NOT NULL DEFAULT FALSE"},
}

// QEARNTransaction is a staking lock or unlock.
type QEARNTransaction struct {
	TxID        string `json:"tx_id" db:"tx_id"`
	TickNumber  int64  `json:"tick_number" db:"tick_number"`
	SourceID    string `json:"source_id" db:"source_id"`
	Timestamp   *int64 `json:"timestamp" db:"timestamp"`
	Event       string `json:"event" db:"event"`
	Amount      int64  `json:"amount" db:"amount"`
	LockedEpoch *int32 `json:"locked_epoch" db:"locked_epoch"`
	MoneyFlew   bool   `json:"money_flew" db:"money_flew"`
}

func (t QEARNTransaction) Validate() error {
	if t.TxID == "" {
		return invalid(QEARNTransactionsTableName, "tx_id", "is empty")
	}
	if t.Event != QEARNEventLock && t.Event != QEARNEventUnlock {
		return invalid(QEARNTransactionsTableName, "event", "unknown value %q", t.Event)
	}
	if t.Amount < 0 {
		return invalid(QEARNTransactionsTableName, "amount", "is negative: %d", t.Amount)
	}
	return nil
}

var CCFTransactionColumns = []ColumnDef{
	{Name: "tx_id", Type: "TEXT NOT NULL"},
	{Name: "tick_number", Type: "BIGINT NOT NULL"},
	{Name: "source_id", Type: "TEXT NOT NULL"},
	{Name: "timestamp", Type: "BIGINT"},
	{Name: "event", Type: "TEXT NOT NULL"},
	{Name: "proposal_type", Type: "INTEGER"},
	{Name: "epoch", Type: "INTEGER"},
	{Name: "url", Type: "TEXT"},
	{Name: "transfer_dest_hex", Type: "TEXT"},
	{Name: "transfer_amount", Type: "BIGINT"},
	{Name: "proposal_index", Type: "INTEGER"},
	{Name: "option_index", Type: "INTEGER"},
	{Name: "vote_text", Type: "TEXT"},
	{Name: "money_flew", Type: "BOOLEAN NOT NULL DEFAULT FALSE"},
}

// CCFTransaction is a community fund proposal or vote.
type CCFTransaction struct {
	TxID            string  `json:"tx_id" db:"tx_id"`
	TickNumber      int64   `json:"tick_number" db:"tick_number"`
	SourceID        string  `json:"source_id" db:"source_id"`
	Timestamp       *int64  `json:"timestamp" db:"timestamp"`
	Event           string  `json:"event" db:"event"`
	ProposalType    *int32  `json:"proposal_type" db:"proposal_type"`
	Epoch           *int32  `json:"epoch" db:"epoch"`
	URL             *string `json:"url" db:"url"`
	TransferDestHex *string `json:"transfer_dest_hex" db:"transfer_dest_hex"`
	TransferAmount  *int64  `json:"transfer_amount" db:"transfer_amount"`
	ProposalIndex   *int32  `json:"proposal_index" db:"proposal_index"`
	OptionIndex     *int32  `json:"option_index" db:"option_index"`
	VoteText        *string `json:"vote_text" db:"vote_text"`
	MoneyFlew       bool    `json:"money_flew" db:"money_flew"`
}

func (t CCFTransaction) Validate() error {
	if t.TxID == "" {
		return invalid(CCFTransactionsTableName, "tx_id", "is empty")
	}
	if t.Event != CCFEventSetProposal && t.Event != CCFEventVote {
		return invalid(CCFTransactionsTableName, "event", "unknown value %q", t.Event)
	}
	return nil
}

var QBAYTransactionColumns = []ColumnDef{
	{Name: "tx_id", Type: "TEXT NOT NULL"},
	{Name: "tick_number", Type: "BIGINT NOT NULL"},
	{Name: "source_id", Type: "TEXT NOT NULL"},
	{Name: "timestamp", Type: "BIGINT"},
	{Name: "event", Type: "TEXT NOT NULL"},
	{Name: "nft_id", Type: "BIGINT"},
	{Name: "collection_id", Type: "BIGINT"},
	{Name: "price", Type: "BIGINT"},
	{Name: "payment_method", Type: "SMALLINT"},
	{Name: "volume", Type: "BIGINT"},
	{Name: "royalty", Type: "INTEGER"},
	{Name: "max_size", Type: "INTEGER"},
	{Name: "uri", Type: "TEXT"},
	{Name: "receiver_hex", Type: "TEXT"},
	{Name: "ask_price", Type: "BIGINT"},
	{Name: "possessed_nft", Type: "BIGINT"},
	{Name: "another_nft", Type: "BIGINT"},
	{Name: "money_flew", Type: "BOOLEAN NOT NULL DEFAULT FALSE"},
}

// QBAYTransaction is an NFT marketplace event (mint, buy, transfer, listInMarket, cancelSale, ...).
type QBAYTransaction struct {
	TxID          string  `json:"tx_id" db:"tx_id"`
	TickNumber    int64   `json:"tick_number" db:"tick_number"`
	SourceID      string  `json:"source_id" db:"source_id"`
	Timestamp     *int64  `json:"timestamp" db:"timestamp"`
	Event         string  `json:"event" db:"event"`
	NFTID         *int64  `json:"nft_id" db:"nft_id"`
	CollectionID  *int64  `json:"collection_id" db:"collection_id"`
	Price         *int64  `json:"price" db:"price"`
	PaymentMethod *int16  `json:"payment_method" db:"payment_method"`
	Volume        *int64  `json:"volume" db:"volume"`
	Royalty       *int32  `json:"royalty" db:"royalty"`
	MaxSize       *int32  `json:"max_size" db:"max_size"`
	URI           *string `json:"uri" db:"uri"`
	ReceiverHex   *string `json:"receiver_hex" db:"receiver_hex"`
	AskPrice      *int64  `json:"ask_price" db:"ask_price"`
	PossessedNFT  *int64  `json:"possessed_nft" db:"possessed_nft"`
	AnotherNFT    *int64  `json:"another_nft" db:"another_nft"`
	MoneyFlew     bool    `json:"money_flew" db:"money_flew"`
}

func (t QBAYTransaction) Validate() error {
	if t.TxID == "" {
		return invalid(QBAYTransactionsTableName, "tx_id", "is empty")
	}
	if t.Event == "" {
		return invalid(QBAYTransactionsTableName, "event", "is empty")
	}
	if t.PaymentMethod != nil && *t.PaymentMethod != PaymentCFB && *t.PaymentMethod != PaymentQUBIC {
		return invalid(QBAYTransactionsTableName, "payment_method", "unknown value %d", *t.PaymentMethod)
	}
	return nil
}
