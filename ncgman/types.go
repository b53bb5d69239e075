package ncgman

// GraphQL scalars of the headless node. The variable type names sent
// to the server are taken from these type names.
type (
	ID         string
	ByteString string
	Address    string
	Long       int64
	TxId       string
	String     string
)

// TransferHistory is one entry of transferNCGHistories.
type TransferHistory struct {
	BlockHash string
	TxId      string
	Sender    string
	Recipient string
	Amount    string
	Memo      *string
}
