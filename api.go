package arnames

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/ethereum/go-ethereum/common"
	arnamesCommon "github.com/everFinance/arnames/common"
	"github.com/everFinance/arnames/schema"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tidwall/gjson"
)

func (s *Arnames) runAPI(port string) {
	r := s.engine
	r.Use(arnamesCommon.CORSMiddleware())
	r.Use(arnamesCommon.LimiterMiddleware(600, "M", s.config.GetIPWhiteList()))
	v1 := r.Group("/")
	{
		// mutating calls, wallet signed
		v1.POST("/name/register", s.register)
		v1.POST("/name/update", s.updateName)
		v1.POST("/name/transfer", s.transferName)
		v1.POST("/deposit", s.deposit)

		// admin controls
		v1.POST("/admin/fee", s.setFee)
		v1.POST("/admin/pause", s.pauseRegistry)
		v1.POST("/admin/unpause", s.unpauseRegistry)
		v1.POST("/admin/withdraw", s.withdraw)
		v1.POST("/admin/reindex", s.reindex)

		// queries, available while paused
		v1.GET("/name/:name", s.getRecord)
		v1.GET("/name/:name/available", s.getAvailable)
		v1.GET("/owned/:address", s.getOwnedNames)
		v1.GET("/owned/:address/current", s.getCurrentNames)
		v1.GET("/fee", s.getFee)
		v1.GET("/balance/:address", s.getBookBalance)
		v1.GET("/events", s.getEvents)
		v1.GET("/info", s.getInfo)
	}

	if err := r.Run(port); err != nil {
		panic(err)
	}
}

func (s *Arnames) register(c *gin.Context) {
	req := schema.RegisterReq{}
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, err.Error())
		return
	}
	caller, ok := parseAddress(req.Caller)
	if !ok {
		errorResponse(c, schema.ErrNullAddress.Error())
		return
	}
	payment, err := decimal.NewFromString(req.Payment)
	if err != nil {
		errorResponse(c, schema.ErrBadAmount.Error())
		return
	}

	msg := schema.SignMessage("register", req.Name, caller, req.Data+":"+req.Payment, req.Nonce)
	if err := s.verifyCallSig(msg, req.Sig, caller, req.Nonce); err != nil {
		errorResponse(c, err.Error())
		return
	}

	ev, refund, err := s.registry.Register(caller, req.Name, req.Data, payment)
	if err != nil {
		registryErrorResponse(c, err)
		return
	}
	s.localCache.Cache.Del(recordCacheKey(req.Name))

	c.JSON(http.StatusOK, schema.RespMutate{
		Name:     req.Name,
		EventSeq: ev.Seq,
		Refund:   refund.String(),
	})
}

func (s *Arnames) updateName(c *gin.Context) {
	req := schema.UpdateReq{}
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, err.Error())
		return
	}
	caller, ok := parseAddress(req.Caller)
	if !ok {
		errorResponse(c, schema.ErrNullAddress.Error())
		return
	}

	msg := schema.SignMessage("update", req.Name, caller, req.Data, req.Nonce)
	if err := s.verifyCallSig(msg, req.Sig, caller, req.Nonce); err != nil {
		errorResponse(c, err.Error())
		return
	}

	ev, err := s.registry.Update(caller, req.Name, req.Data)
	if err != nil {
		registryErrorResponse(c, err)
		return
	}
	s.localCache.Cache.Del(recordCacheKey(req.Name))

	c.JSON(http.StatusOK, schema.RespMutate{Name: req.Name, EventSeq: ev.Seq})
}

func (s *Arnames) transferName(c *gin.Context) {
	req := schema.TransferReq{}
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, err.Error())
		return
	}
	caller, ok := parseAddress(req.Caller)
	if !ok {
		errorResponse(c, schema.ErrNullAddress.Error())
		return
	}
	newOwner, ok := parseAddress(req.NewOwner)
	if !ok {
		errorResponse(c, schema.ErrNullAddress.Error())
		return
	}

	msg := schema.SignMessage("transfer", req.Name, caller, newOwner.Hex(), req.Nonce)
	if err := s.verifyCallSig(msg, req.Sig, caller, req.Nonce); err != nil {
		errorResponse(c, err.Error())
		return
	}

	ev, err := s.registry.Transfer(caller, req.Name, newOwner)
	if err != nil {
		registryErrorResponse(c, err)
		return
	}
	s.localCache.Cache.Del(recordCacheKey(req.Name))

	c.JSON(http.StatusOK, schema.RespMutate{Name: req.Name, EventSeq: ev.Seq})
}

// deposit funds the caller's account book; direct deposits fall straight
// through into the registry balance.
func (s *Arnames) deposit(c *gin.Context) {
	req := schema.DepositReq{}
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, err.Error())
		return
	}
	from, ok := parseAddress(req.From)
	if !ok {
		errorResponse(c, schema.ErrNullAddress.Error())
		return
	}
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		errorResponse(c, schema.ErrBadAmount.Error())
		return
	}

	msg := schema.SignMessage("deposit", "", from, req.Amount, req.Nonce)
	if err := s.verifyCallSig(msg, req.Sig, from, req.Nonce); err != nil {
		errorResponse(c, err.Error())
		return
	}

	if err := s.book.TopUp(from, amount); err != nil {
		errorResponse(c, err.Error())
		return
	}
	if err := s.store.SaveAccountBalance(from, s.book.BalanceOf(from)); err != nil {
		log.Error("save account balance failed", "err", err, "from", from.Hex())
	}
	if req.Direct {
		if err := s.registry.Deposit(from, amount); err != nil {
			registryErrorResponse(c, err)
			return
		}
	}

	receipt := schema.DepositReceipt{
		ReceiptId: uuid.NewString(),
		From:      from.Hex(),
		Amount:    amount.String(),
		Direct:    req.Direct,
	}
	if err := s.wdb.InsertReceipt(receipt); err != nil {
		log.Error("insert deposit receipt failed", "err", err, "receiptId", receipt.ReceiptId)
	}

	c.JSON(http.StatusOK, schema.RespDeposit{
		ReceiptId: receipt.ReceiptId,
		Balance:   s.book.BalanceOf(from).String(),
	})
}

func (s *Arnames) setFee(c *gin.Context) {
	req := schema.SetFeeReq{}
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, err.Error())
		return
	}
	caller, ok := parseAddress(req.Caller)
	if !ok {
		errorResponse(c, schema.ErrNullAddress.Error())
		return
	}
	newFee, err := decimal.NewFromString(req.Fee)
	if err != nil {
		errorResponse(c, schema.ErrBadAmount.Error())
		return
	}

	msg := schema.SignMessage("setFee", "", caller, req.Fee, req.Nonce)
	if err := s.verifyCallSig(msg, req.Sig, caller, req.Nonce); err != nil {
		errorResponse(c, err.Error())
		return
	}

	ev, err := s.registry.SetRegistrationFee(caller, newFee)
	if err != nil {
		registryErrorResponse(c, err)
		return
	}
	c.JSON(http.StatusOK, schema.RespMutate{EventSeq: ev.Seq})
}

func (s *Arnames) pauseRegistry(c *gin.Context) {
	s.togglePause(c, "pause")
}

func (s *Arnames) unpauseRegistry(c *gin.Context) {
	s.togglePause(c, "unpause")
}

func (s *Arnames) togglePause(c *gin.Context, action string) {
	req := schema.PauseReq{}
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, err.Error())
		return
	}
	caller, ok := parseAddress(req.Caller)
	if !ok {
		errorResponse(c, schema.ErrNullAddress.Error())
		return
	}

	msg := schema.SignMessage(action, "", caller, "", req.Nonce)
	if err := s.verifyCallSig(msg, req.Sig, caller, req.Nonce); err != nil {
		errorResponse(c, err.Error())
		return
	}

	var err error
	if action == "pause" {
		err = s.registry.Pause(caller)
	} else {
		err = s.registry.Unpause(caller)
	}
	if err != nil {
		registryErrorResponse(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"paused": action == "pause"})
}

func (s *Arnames) withdraw(c *gin.Context) {
	req := schema.WithdrawReq{}
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, err.Error())
		return
	}
	caller, ok := parseAddress(req.Caller)
	if !ok {
		errorResponse(c, schema.ErrNullAddress.Error())
		return
	}
	to, ok := parseAddress(req.To)
	if !ok {
		errorResponse(c, schema.ErrNullAddress.Error())
		return
	}

	msg := schema.SignMessage("withdraw", "", caller, to.Hex(), req.Nonce)
	if err := s.verifyCallSig(msg, req.Sig, caller, req.Nonce); err != nil {
		errorResponse(c, err.Error())
		return
	}

	ev, err := s.registry.Withdraw(caller, to)
	if err != nil {
		registryErrorResponse(c, err)
		return
	}
	c.JSON(http.StatusOK, schema.RespMutate{EventSeq: ev.Seq})
}

func (s *Arnames) reindex(c *gin.Context) {
	req := schema.PauseReq{}
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, err.Error())
		return
	}
	caller, ok := parseAddress(req.Caller)
	if !ok {
		errorResponse(c, schema.ErrNullAddress.Error())
		return
	}

	msg := schema.SignMessage("reindex", "", caller, "", req.Nonce)
	if err := s.verifyCallSig(msg, req.Sig, caller, req.Nonce); err != nil {
		errorResponse(c, err.Error())
		return
	}
	if caller != s.registry.State().Admin {
		errorResponse(c, schema.ErrNotAdmin.Error())
		return
	}

	report, err := s.Reindex()
	if err != nil {
		internalErrorResponse(c, err.Error())
		return
	}
	c.JSON(http.StatusOK, report)
}

func (s *Arnames) getRecord(c *gin.Context) {
	name := c.Param("name")

	if cached, err := s.localCache.Cache.Get(recordCacheKey(name)); err == nil {
		c.Data(http.StatusOK, "application/json; charset=utf-8", cached)
		return
	}

	record := s.registry.GetRecord(name)
	resp := schema.RespRecord{
		Name:      name,
		Owner:     record.Owner.Hex(),
		Data:      record.Data,
		CreatedAt: record.CreatedAt,
		UpdatedAt: record.UpdatedAt,
	}
	body, err := json.Marshal(&resp)
	if err != nil {
		internalErrorResponse(c, err.Error())
		return
	}
	if record.IsRegistered() {
		// only settled records are cacheable, mutation invalidates
		if err := s.localCache.Cache.Set(recordCacheKey(name), body); err != nil {
			log.Error("set record cache failed", "err", err, "name", name)
		}
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", body)
}

func (s *Arnames) getAvailable(c *gin.Context) {
	name := c.Param("name")
	c.JSON(http.StatusOK, schema.RespAvailable{
		Name:      name,
		Available: s.registry.IsAvailable(name),
	})
}

func (s *Arnames) getOwnedNames(c *gin.Context) {
	addr, ok := parseAddress(c.Param("address"))
	if !ok {
		errorResponse(c, schema.ErrNullAddress.Error())
		return
	}
	c.JSON(http.StatusOK, schema.RespOwnedNames{
		Owner: addr.Hex(),
		Names: s.registry.GetOwnedNames(addr),
	})
}

// getCurrentNames serves the current-ownership view from the sql index; the
// core's history log keeps names the account no longer holds.
func (s *Arnames) getCurrentNames(c *gin.Context) {
	addr, ok := parseAddress(c.Param("address"))
	if !ok {
		errorResponse(c, schema.ErrNullAddress.Error())
		return
	}
	rows, err := s.wdb.GetRecordsByOwner(addr.Hex())
	if err != nil {
		internalErrorResponse(c, err.Error())
		return
	}
	names := make([]string, 0, len(rows))
	for _, row := range rows {
		names = append(names, row.Name)
	}
	c.JSON(http.StatusOK, schema.RespOwnedNames{Owner: addr.Hex(), Names: names})
}

func (s *Arnames) getFee(c *gin.Context) {
	c.JSON(http.StatusOK, schema.RespFee{Fee: s.registry.RegistrationFee().String()})
}

func (s *Arnames) getBookBalance(c *gin.Context) {
	addr, ok := parseAddress(c.Param("address"))
	if !ok {
		errorResponse(c, schema.ErrNullAddress.Error())
		return
	}
	c.JSON(http.StatusOK, schema.RespBalance{
		Address: addr.Hex(),
		Balance: s.book.BalanceOf(addr).String(),
	})
}

func (s *Arnames) getEvents(c *gin.Context) {
	fromSeq, _ := strconv.ParseUint(c.DefaultQuery("fromSeq", "0"), 10, 64)
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "100"))
	if err != nil || limit <= 0 || limit > 1000 {
		limit = 100
	}
	action := c.Query("action")

	logs, err := s.wdb.GetEventLogs(fromSeq, action, limit)
	if err != nil {
		internalErrorResponse(c, err.Error())
		return
	}

	// optional name filter on the stored payload
	if name := c.Query("name"); name != "" {
		filtered := make([]schema.EventLog, 0, len(logs))
		for _, lg := range logs {
			if gjson.GetBytes(lg.Payload, "name").String() == name {
				filtered = append(filtered, lg)
			}
		}
		logs = filtered
	}
	c.JSON(http.StatusOK, logs)
}

func (s *Arnames) getInfo(c *gin.Context) {
	st := s.registry.State()
	c.JSON(http.StatusOK, schema.RespInfo{
		Admin:       st.Admin.Hex(),
		Fee:         st.RegistrationFee.String(),
		Paused:      st.Paused,
		Balance:     st.Balance.String(),
		RecordCount: s.registry.RecordCount(),
		EventSeq:    st.EventSeq,
	})
}

func recordCacheKey(name string) string {
	return "record_" + name
}

func parseAddress(addrStr string) (common.Address, bool) {
	if !common.IsHexAddress(addrStr) {
		return common.Address{}, false
	}
	addr := common.HexToAddress(addrStr)
	if addr == (common.Address{}) {
		return addr, false
	}
	return addr, true
}

func errorResponse(c *gin.Context, err string) {
	// client error
	c.JSON(http.StatusBadRequest, schema.RespErr{
		Err: err,
	})
}

func internalErrorResponse(c *gin.Context, err string) {
	c.JSON(http.StatusInternalServerError, schema.RespErr{
		Err: err,
	})
}

// registryErrorResponse keeps the paused rejection distinguishable from the
// permanent ones, so callers know to retry after unpause.
func registryErrorResponse(c *gin.Context, err error) {
	if err == schema.ErrRegistryPaused {
		c.JSON(http.StatusServiceUnavailable, schema.RespErr{Err: err.Error()})
		return
	}
	errorResponse(c, err.Error())
}
