package sdk

import (
	"errors"
	"fmt"
	"net/url"

	"github.com/everFinance/arnames/schema"
	"gopkg.in/h2non/gentleman.v2"
	"gopkg.in/h2non/gentleman.v2/plugins/body"
)

// Client is the unauthenticated half of the sdk; queries need no wallet.
type Client struct {
	SCli *gentleman.Client
}

func NewClient(arnamesUrl string) *Client {
	return &Client{
		SCli: gentleman.New().URL(arnamesUrl),
	}
}

func (c *Client) GetRecord(name string) (schema.RespRecord, error) {
	record := schema.RespRecord{}
	err := c.getJSON(fmt.Sprintf("/name/%s", url.PathEscape(name)), &record)
	return record, err
}

func (c *Client) IsAvailable(name string) (bool, error) {
	resp := schema.RespAvailable{}
	err := c.getJSON(fmt.Sprintf("/name/%s/available", url.PathEscape(name)), &resp)
	return resp.Available, err
}

// GetOwnedNames returns the full ownership history of the address, so a
// transferred-away name still shows up.
func (c *Client) GetOwnedNames(address string) ([]string, error) {
	resp := schema.RespOwnedNames{}
	err := c.getJSON(fmt.Sprintf("/owned/%s", address), &resp)
	return resp.Names, err
}

func (c *Client) GetCurrentNames(address string) ([]string, error) {
	resp := schema.RespOwnedNames{}
	err := c.getJSON(fmt.Sprintf("/owned/%s/current", address), &resp)
	return resp.Names, err
}

func (c *Client) GetFee() (string, error) {
	resp := schema.RespFee{}
	err := c.getJSON("/fee", &resp)
	return resp.Fee, err
}

func (c *Client) GetBalance(address string) (string, error) {
	resp := schema.RespBalance{}
	err := c.getJSON(fmt.Sprintf("/balance/%s", address), &resp)
	return resp.Balance, err
}

func (c *Client) GetInfo() (schema.RespInfo, error) {
	info := schema.RespInfo{}
	err := c.getJSON("/info", &info)
	return info, err
}

func (c *Client) GetEvents(fromSeq uint64, action string, limit int) ([]schema.EventLog, error) {
	logs := make([]schema.EventLog, 0)
	req := c.SCli.Get()
	req.AddPath("/events")
	req.SetQuery("fromSeq", fmt.Sprintf("%d", fromSeq))
	req.SetQuery("limit", fmt.Sprintf("%d", limit))
	if action != "" {
		req.SetQuery("action", action)
	}
	resp, err := req.Send()
	if err != nil {
		return nil, err
	}
	defer resp.Close()
	if !resp.Ok {
		return nil, errors.New(fmt.Sprintf("resp failed: %s", resp.String()))
	}
	err = resp.JSON(&logs)
	return logs, err
}

func (c *Client) getJSON(path string, out interface{}) error {
	req := c.SCli.Get()
	req.AddPath(path)
	resp, err := req.Send()
	if err != nil {
		return err
	}
	defer resp.Close()
	if !resp.Ok {
		return errors.New(fmt.Sprintf("resp failed: %s", resp.String()))
	}
	return resp.JSON(out)
}

func (c *Client) postJSON(path string, payload, out interface{}) error {
	req := c.SCli.Post()
	req.AddPath(path)
	req.Use(body.JSON(payload))
	resp, err := req.Send()
	if err != nil {
		return err
	}
	defer resp.Close()
	if !resp.Ok {
		return errors.New(fmt.Sprintf("resp failed: %s", resp.String()))
	}
	return resp.JSON(out)
}
