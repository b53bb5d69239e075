package state

var (
	// one row per monitor identity, holding the last fully processed height
	monitorStateTable = `CREATE TABLE IF NOT EXISTS monitor_state (
		identity VARCHAR(64) PRIMARY KEY NOT NULL,
		cursor BIGINT UNSIGNED NOT NULL,
		updatedAt BIGINT NOT NULL,
		CONSTRAINT chk_identity CHECK (identity != ''),
		CONSTRAINT chk_cursor CHECK (cursor >= 0)
	);`

	// table that records every settlement issued on the opposite chain,
	// keyed by the originating occurrence
	settlementTable = `CREATE TABLE IF NOT EXISTS settlement (
		sourceChain VARCHAR(64) NOT NULL,
		sourceRef VARCHAR(128) NOT NULL,
		kind VARCHAR(10) NOT NULL,
		targetTx VARCHAR(128),
		recipient CHAR(42) NOT NULL,
		amount TEXT NOT NULL,
		nonce BIGINT,
		createdAt BIGINT NOT NULL,
		PRIMARY KEY (sourceChain, sourceRef),
		CONSTRAINT chk_kind CHECK (kind IN ('redeem', 'mint', 'refund', 'skipped', 'pending')),
		CONSTRAINT chk_targetTx CHECK (kind IN ('skipped', 'pending') OR targetTx IS NOT NULL),
		CONSTRAINT chk_pending CHECK (kind != 'pending' OR nonce IS NOT NULL OR targetTx IS NOT NULL)
	);`
)
