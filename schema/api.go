package schema

// mutating calls carry the caller address, a unix-ms nonce and a secp256k1
// signature over SignMessage; the server recovers the signer and matches it
// against Caller.

type RegisterReq struct {
	Caller  string `json:"caller"`
	Name    string `json:"name"`
	Data    string `json:"data"`
	Payment string `json:"payment"` // decimal string
	Nonce   int64  `json:"nonce"`   // unix ms
	Sig     string `json:"sig"`     // hex
}

type UpdateReq struct {
	Caller string `json:"caller"`
	Name   string `json:"name"`
	Data   string `json:"data"`
	Nonce  int64  `json:"nonce"`
	Sig    string `json:"sig"`
}

type TransferReq struct {
	Caller   string `json:"caller"`
	Name     string `json:"name"`
	NewOwner string `json:"newOwner"`
	Nonce    int64  `json:"nonce"`
	Sig      string `json:"sig"`
}

type DepositReq struct {
	From   string `json:"from"`
	Amount string `json:"amount"`
	Direct bool   `json:"direct"`
	Nonce  int64  `json:"nonce"`
	Sig    string `json:"sig"`
}

type SetFeeReq struct {
	Caller string `json:"caller"`
	Fee    string `json:"fee"`
	Nonce  int64  `json:"nonce"`
	Sig    string `json:"sig"`
}

type PauseReq struct {
	Caller string `json:"caller"`
	Nonce  int64  `json:"nonce"`
	Sig    string `json:"sig"`
}

type WithdrawReq struct {
	Caller string `json:"caller"`
	To     string `json:"to"`
	Nonce  int64  `json:"nonce"`
	Sig    string `json:"sig"`
}

type RespRecord struct {
	Name      string `json:"name"`
	Owner     string `json:"owner"`
	Data      string `json:"data"`
	CreatedAt int64  `json:"createdAt"`
	UpdatedAt int64  `json:"updatedAt"`
}

type RespAvailable struct {
	Name      string `json:"name"`
	Available bool   `json:"available"`
}

type RespOwnedNames struct {
	Owner string   `json:"owner"`
	Names []string `json:"names"` // full history, a name repeats if transferred back
}

type RespFee struct {
	Fee string `json:"fee"`
}

type RespBalance struct {
	Address string `json:"address"`
	Balance string `json:"balance"`
}

type RespInfo struct {
	Admin       string `json:"admin"`
	Fee         string `json:"fee"`
	Paused      bool   `json:"paused"`
	Balance     string `json:"balance"`
	RecordCount int64  `json:"recordCount"`
	EventSeq    uint64 `json:"eventSeq"`
}

type RespMutate struct {
	Name     string `json:"name,omitempty"`
	EventSeq uint64 `json:"eventSeq"`
	Refund   string `json:"refund,omitempty"`
}

type RespReindex struct {
	Indexed       int `json:"indexed"`
	FlushedEvents int `json:"flushedEvents"`
	Failed        int `json:"failed"`
}

type RespDeposit struct {
	ReceiptId string `json:"receiptId"`
	Balance   string `json:"balance"`
}

type RespErr struct {
	Err string `json:"error"`
}
