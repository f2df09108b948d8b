package sdk

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/everFinance/arnames/schema"
	"github.com/everFinance/goether"
)

// SDK wraps Client with a wallet. Every mutating call personal-signs the
// canonical message for its action, so the server can recover the caller.
type SDK struct {
	Signer *goether.Signer
	Cli    *Client
}

func NewSDK(arnamesUrl string, signer *goether.Signer) *SDK {
	return &SDK{
		Signer: signer,
		Cli:    NewClient(arnamesUrl),
	}
}

func (s *SDK) Register(name, data, payment string) (schema.RespMutate, error) {
	nonce := time.Now().UnixMilli()
	sig, err := s.sign(schema.SignMessage("register", name, s.Signer.Address, data+":"+payment, nonce))
	if err != nil {
		return schema.RespMutate{}, err
	}
	resp := schema.RespMutate{}
	err = s.Cli.postJSON("/name/register", schema.RegisterReq{
		Caller:  s.Signer.Address.Hex(),
		Name:    name,
		Data:    data,
		Payment: payment,
		Nonce:   nonce,
		Sig:     sig,
	}, &resp)
	return resp, err
}

func (s *SDK) Update(name, data string) (schema.RespMutate, error) {
	nonce := time.Now().UnixMilli()
	sig, err := s.sign(schema.SignMessage("update", name, s.Signer.Address, data, nonce))
	if err != nil {
		return schema.RespMutate{}, err
	}
	resp := schema.RespMutate{}
	err = s.Cli.postJSON("/name/update", schema.UpdateReq{
		Caller: s.Signer.Address.Hex(),
		Name:   name,
		Data:   data,
		Nonce:  nonce,
		Sig:    sig,
	}, &resp)
	return resp, err
}

func (s *SDK) Transfer(name, newOwner string) (schema.RespMutate, error) {
	nonce := time.Now().UnixMilli()
	// sign the checksummed form, the server verifies against it
	sig, err := s.sign(schema.SignMessage("transfer", name, s.Signer.Address, common.HexToAddress(newOwner).Hex(), nonce))
	if err != nil {
		return schema.RespMutate{}, err
	}
	resp := schema.RespMutate{}
	err = s.Cli.postJSON("/name/transfer", schema.TransferReq{
		Caller:   s.Signer.Address.Hex(),
		Name:     name,
		NewOwner: newOwner,
		Nonce:    nonce,
		Sig:      sig,
	}, &resp)
	return resp, err
}

func (s *SDK) Deposit(amount string, direct bool) (schema.RespDeposit, error) {
	nonce := time.Now().UnixMilli()
	sig, err := s.sign(schema.SignMessage("deposit", "", s.Signer.Address, amount, nonce))
	if err != nil {
		return schema.RespDeposit{}, err
	}
	resp := schema.RespDeposit{}
	err = s.Cli.postJSON("/deposit", schema.DepositReq{
		From:   s.Signer.Address.Hex(),
		Amount: amount,
		Direct: direct,
		Nonce:  nonce,
		Sig:    sig,
	}, &resp)
	return resp, err
}

// admin calls, rejected by the server unless the signer is the admin

func (s *SDK) SetFee(fee string) (schema.RespMutate, error) {
	nonce := time.Now().UnixMilli()
	sig, err := s.sign(schema.SignMessage("setFee", "", s.Signer.Address, fee, nonce))
	if err != nil {
		return schema.RespMutate{}, err
	}
	resp := schema.RespMutate{}
	err = s.Cli.postJSON("/admin/fee", schema.SetFeeReq{
		Caller: s.Signer.Address.Hex(),
		Fee:    fee,
		Nonce:  nonce,
		Sig:    sig,
	}, &resp)
	return resp, err
}

func (s *SDK) Pause() error {
	return s.togglePause("pause", "/admin/pause")
}

func (s *SDK) Unpause() error {
	return s.togglePause("unpause", "/admin/unpause")
}

func (s *SDK) togglePause(action, path string) error {
	nonce := time.Now().UnixMilli()
	sig, err := s.sign(schema.SignMessage(action, "", s.Signer.Address, "", nonce))
	if err != nil {
		return err
	}
	resp := map[string]bool{}
	return s.Cli.postJSON(path, schema.PauseReq{
		Caller: s.Signer.Address.Hex(),
		Nonce:  nonce,
		Sig:    sig,
	}, &resp)
}

func (s *SDK) Withdraw(to string) (schema.RespMutate, error) {
	nonce := time.Now().UnixMilli()
	sig, err := s.sign(schema.SignMessage("withdraw", "", s.Signer.Address, common.HexToAddress(to).Hex(), nonce))
	if err != nil {
		return schema.RespMutate{}, err
	}
	resp := schema.RespMutate{}
	err = s.Cli.postJSON("/admin/withdraw", schema.WithdrawReq{
		Caller: s.Signer.Address.Hex(),
		To:     to,
		Nonce:  nonce,
		Sig:    sig,
	}, &resp)
	return resp, err
}

func (s *SDK) Reindex() (schema.RespReindex, error) {
	nonce := time.Now().UnixMilli()
	sig, err := s.sign(schema.SignMessage("reindex", "", s.Signer.Address, "", nonce))
	if err != nil {
		return schema.RespReindex{}, err
	}
	resp := schema.RespReindex{}
	err = s.Cli.postJSON("/admin/reindex", schema.PauseReq{
		Caller: s.Signer.Address.Hex(),
		Nonce:  nonce,
		Sig:    sig,
	}, &resp)
	return resp, err
}

func (s *SDK) sign(msg string) (string, error) {
	sig, err := s.Signer.SignMsg([]byte(msg))
	if err != nil {
		return "", err
	}
	return hexutil.Encode(sig), nil
}
