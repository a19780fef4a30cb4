package memory

import "github.com/qubic-network/qubicx/pkg/db/models/explorer"

// Identities used by Sample.
const (
	Alice    = "KEMUBCRDLSBQGBCNNCHCRNBSDHUUSBSSMBHBREJNERDSJRVFDSSUGLDRWCSB"
	Bob      = "TGPVRNYKOSOLJHZFWYHCSJQPKXOJTCDQNFYKEPNBVCYRSZKKWLTPSZOCCIPW"
	Carol    = "VCBXWJUSVOJWMVLAOLFTDPBGYJEXHMMPCFOMRIENRIWNLVMHECFEHVHAPSFI"
	Dave     = "JAENRLTSKEWQTUVXBOYVZRMMMMDPUMBGCGOFDKTBDASERDLTACGTMEUILTLP"
	Exchange = "DDPOPPJCEDXKXIPWFQAGQLEWRAYQJUCWIQLFLYHRRYQKUHTZZYGZHMXZHGQP"

	QXAddress    = "LXAAZIPIGWTLOZXLLCHDHPGKGPTTAPULZUCVDMZWYGPFNZUKCZXMOMXCXFFE"
	QEARNAddress = "AESOZUETTPVLERREAAZXUDQXENGGAIGJQHYSKIRNEBXLOVSQNQEREQQAOYFT"
	QBAYAddress  = "AYZEFEPTXDRBKVQQRPZYDRBHGIBYDQORAYCOKTQTQGWIOQRZPQHWQIRGOEND"
)

const sampleEpoch = int32(180)

const sampleBaseMillis = int64(1_760_400_000_000)

// Sample is a small, internally consistent dataset covering ticks 30000100 to 30000105
// (30000103 is not stored). It backs STORE_DRIVER=memory when no fixture file is given.
func Sample() Fixture {
	str := func(s string) *string { return &s }
	i64 := func(v int64) *int64 { return &v }
	i32 := func(v int32) *int32 { return &v }
	i16 := func(v int16) *int16 { return &v }
	ts := func(tick int64) int64 { return sampleBaseMillis + (tick-30_000_100)*1000 }

	tx := func(id string, tick int64, from, to string, amount int64, category string) explorer.Transaction {
		return explorer.Transaction{TxID: id, TickNumber: tick, SourceID: from, DestID: to, Amount: amount, Timestamp: ts(tick), Category: category}
	}
	call := func(t explorer.Transaction, contract, event, summary string) explorer.Transaction {
		t.ContractName, t.Event, t.DecodedSummary = str(contract), str(event), str(summary)
		return t
	}
	qx := func(id string, tick int64, from, event, asset string, price, shares *int64) explorer.QXTrade {
		return explorer.QXTrade{TxID: id, TickNumber: tick, SourceID: from, Timestamp: ts(tick), Event: event, AssetName: asset,
			IssuerHex: str("0000000000000000000000000000000000000000000000000000000000000000"), Price: price, Shares: shares,
			MoneyFlew: price != nil}
	}
	tick := func(n int64, total, qxN, qearnN, qbayN, heartbeat, user int32) explorer.Tick {
		return explorer.Tick{TickNumber: n, Timestamp: i64(ts(n)), Epoch: i32(sampleEpoch), TransactionCount: total,
			FetchedAt: i64(ts(n) + 2500), QXCount: qxN, QEARNCount: qearnN, QBAYCount: qbayN, HeartbeatCount: heartbeat, UserCount: user}
	}

	return Fixture{
		Ticks: []explorer.Tick{
			tick(30_000_100, 2, 0, 0, 0, 0, 2),
			tick(30_000_101, 2, 2, 0, 0, 0, 0),
			tick(30_000_102, 2, 0, 1, 0, 1, 0),
			tick(30_000_104, 2, 0, 0, 1, 0, 0),
			tick(30_000_105, 2, 0, 0, 0, 0, 2),
		},
		Transactions: []explorer.Transaction{
			tx("sampletx01", 30_000_100, Alice, Bob, 2_500_000, explorer.CategoryUser),
			tx("sampletx02", 30_000_100, Exchange, Carol, 8_000_000_000, explorer.CategoryUser),
			call(tx("sampletx03", 30_000_101, Alice, QXAddress, 120_000, explorer.CategoryDefi),
				explorer.ContractQX, "AddToBidOrder", "Buy 100 CFB @ 1,200 QU"),
			call(tx("sampletx04", 30_000_101, Bob, QXAddress, 0, explorer.CategoryDefi),
				explorer.ContractQX, "AddToAskOrder", "Sell 30 CFB @ 1,150 QU"),
			call(tx("sampletx05", 30_000_102, Carol, QEARNAddress, 10_000_000, explorer.CategoryDefi),
				explorer.ContractQEARN, explorer.QEARNEventLock, "Lock 10,000,000 QU"),
			tx("sampletx06", 30_000_102, Dave, Dave, 0, explorer.CategoryHeartbeat),
			tx("sampletx07", 30_000_104, QXAddress, Alice, 1_000, explorer.CategorySystem),
			call(tx("sampletx08", 30_000_104, Dave, QBAYAddress, 5_000_000, explorer.CategoryNFT),
				explorer.ContractQBAY, "buy", "Buy NFT #42 for 5,000,000 QU"),
			tx("sampletx09", 30_000_105, Alice, Dave, 1_000_000, explorer.CategoryUser),
			tx("sampletx10", 30_000_105, Carol, Alice, 50, explorer.CategoryUser),
		},
		QXTrades: []explorer.QXTrade{
			qx("sampleqx01", 30_000_090, Alice, explorer.QXEventBuy, "CFB", i64(1000), i64(200)),
			qx("sampleqx02", 30_000_095, Bob, explorer.QXEventSell, "CFB", i64(1100), i64(50)),
			qx("sampleqx03", 30_000_101, Alice, explorer.QXEventBuy, "CFB", i64(1200), i64(100)),
			qx("sampleqx04", 30_000_100, Bob, explorer.QXEventSell, "CFB", i64(1150), i64(30)),
			qx("sampleqx05", 30_000_098, Carol, explorer.QXEventBuy, "QUTIL", i64(40), i64(1000)),
			qx("sampleqx06", 30_000_102, Carol, explorer.QXEventSell, "QUTIL", i64(45), i64(400)),
			qx("sampleqx07", 30_000_099, Dave, explorer.QXEventTransfer, "GARTH", nil, i64(10)),
			qx("sampleqx08", 30_000_080, Exchange, explorer.QXEventIssueAsset, "GARTH", nil, i64(1_000_000)),
			qx("sampleqx09", 30_000_104, Alice, explorer.QXEventBuy, "GARTH", i64(7), i64(500)),
			qx("sampleqx10", 30_000_105, Bob, explorer.QXEventCancelBuy, "CFB", i64(900), i64(10)),
		},
		QEARNTransactions: []explorer.QEARNTransaction{
			{TxID: "sampleqe01", TickNumber: 30_000_102, SourceID: Carol, Timestamp: i64(ts(30_000_102)),
				Event: explorer.QEARNEventLock, Amount: 10_000_000, LockedEpoch: i32(sampleEpoch), MoneyFlew: true},
			{TxID: "sampleqe02", TickNumber: 30_000_090, SourceID: Alice, Timestamp: i64(ts(30_000_090)),
				Event: explorer.QEARNEventUnlock, Amount: 5_000_000, LockedEpoch: i32(175), MoneyFlew: true},
		},
		CCFTransactions: []explorer.CCFTransaction{
			{TxID: "sampleccf01", TickNumber: 30_000_050, SourceID: Bob, Timestamp: i64(ts(30_000_050)),
				Event: explorer.CCFEventSetProposal, ProposalType: i32(1), Epoch: i32(sampleEpoch),
				URL:             str("https://github.com/qubic/proposal/blob/main/2025/ccf-marketing.md"),
				TransferDestHex: str("8f3c1d2e4b5a69788796a5b4c3d2e1f00f1e2d3c4b5a69788796a5b4c3d2e1f0"),
				TransferAmount:  i64(100_000_000_000)},
			{TxID: "sampleccf02", TickNumber: 30_000_101, SourceID: Carol, Timestamp: i64(ts(30_000_101)),
				Event: explorer.CCFEventVote, Epoch: i32(sampleEpoch), ProposalIndex: i32(3), OptionIndex: i32(1),
				VoteText: str("yes")},
		},
		QBAYTransactions: []explorer.QBAYTransaction{
			{TxID: "sampleqb01", TickNumber: 30_000_104, SourceID: Dave, Timestamp: i64(ts(30_000_104)),
				Event: "buy", NFTID: i64(42), CollectionID: i64(7), Price: i64(5_000_000),
				PaymentMethod: i16(explorer.PaymentQUBIC), MoneyFlew: true},
			{TxID: "sampleqb02", TickNumber: 30_000_060, SourceID: Alice, Timestamp: i64(ts(30_000_060)),
				Event: "mint", CollectionID: i64(7), Volume: i64(1), Royalty: i32(5),
				URI: str("ipfs://bafybeigdyrzt5sfp7udm7hu76uh7y26nf3efuylqabf3oclgtqy55fbzdi/42.json")},
			{TxID: "sampleqb03", TickNumber: 30_000_100, SourceID: Bob, Timestamp: i64(ts(30_000_100)),
				Event: "listInMarket", NFTID: i64(17), Price: i64(2_500_000), PaymentMethod: i16(explorer.PaymentCFB)},
		},
		Addresses: []explorer.WalletActivity{
			{AddressID: Alice, FirstSeenTick: 30_000_010, FirstSeenTimestamp: ts(30_000_010), AddressType: "wallet", TxCount: 3, LastActiveTick: 30_000_105},
			{AddressID: Bob, FirstSeenTick: 30_000_050, FirstSeenTimestamp: ts(30_000_050), AddressType: "wallet", TxCount: 1, LastActiveTick: 30_000_101},
			{AddressID: Carol, FirstSeenTick: 30_000_020, FirstSeenTimestamp: ts(30_000_020), AddressType: "wallet", TxCount: 2, LastActiveTick: 30_000_105},
			{AddressID: QXAddress, FirstSeenTick: 1, FirstSeenTimestamp: 0, AddressType: "contract", Label: str("QX"), TxCount: 1, LastActiveTick: 30_000_104},
		},
	}
}
