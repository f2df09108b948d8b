package arnames

import (
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/everFinance/arnames/schema"
)

// sigFreshWindow bounds how stale a signed nonce may be. Together with the
// replay cache it stops a captured request from being submitted twice.
const sigFreshWindow = 5 * time.Minute

func (s *Arnames) verifyCallSig(msg, sigHex string, caller common.Address, nonce int64) error {
	now := time.Now().UnixMilli()
	if nonce > now+int64(time.Minute/time.Millisecond) || now-nonce > int64(sigFreshWindow/time.Millisecond) {
		return schema.ErrStaleSig
	}

	signer, err := RecoverSigner(msg, sigHex)
	if err != nil {
		return err
	}
	if signer != caller {
		return schema.ErrBadSig
	}

	// one signature, one call
	key := replayCacheKey(sigHex)
	if _, err := s.localCache.Cache.Get(key); err == nil {
		return schema.ErrStaleSig
	}
	if err := s.localCache.Cache.Set(key, []byte{0x01}); err != nil {
		log.Error("set replay cache failed", "err", err)
	}
	return nil
}

// RecoverSigner recovers the address that personal-signed msg. The signature
// is the 65 byte r||s||v form produced by eth wallets, with v of 27/28
// normalized before recovery.
func RecoverSigner(msg, sigHex string) (common.Address, error) {
	sig, err := hexutil.Decode(sigHex)
	if err != nil {
		return common.Address{}, schema.ErrBadSig
	}
	if len(sig) != 65 {
		return common.Address{}, schema.ErrBadSig
	}
	if sig[64] >= 27 {
		sig = append([]byte{}, sig...)
		sig[64] -= 27
	}
	pub, err := crypto.SigToPub(accounts.TextHash([]byte(msg)), sig)
	if err != nil {
		return common.Address{}, schema.ErrBadSig
	}
	return crypto.PubkeyToAddress(*pub), nil
}

func replayCacheKey(sigHex string) string {
	return "sig_" + strings.ToLower(sigHex)
}
