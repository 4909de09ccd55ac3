// Package handlers implements the OMA-DM command handlers: Get, Replace,
// Exec and Alert, each consulting the DM tree's ACL before acting and
// producing the outbound SyncML element(s) the session queues for
// transmission.
package handlers

import "github.com/oma-dm/goclient/pkg/syncml"

// Element is the outbound queue's tagged sum type, implemented by
// *AlertElement, *ReplaceElement, *ResultsElement and *StatusElement. The
// session package tags each with its CmdID/MsgID via a type switch rather
// than a shared accessor, matching the reference's element-kind dispatch.
type Element interface {
	element()
}

// AlertElement carries a session-lifecycle or user-interaction alert.
type AlertElement struct {
	CmdID int
	MsgID int
	Code  string
	Items []syncml.AlertItem
}

func (*AlertElement) element() {}

// ReplaceElement carries one or more node overwrites, e.g. device info on
// session start.
type ReplaceElement struct {
	CmdID int
	MsgID int
	Items []syncml.ReplaceItem
}

func (*ReplaceElement) element() {}

// ResultsElement answers a Get with the requested node data.
type ResultsElement struct {
	CmdID  int
	MsgID  int
	MsgRef int
	CmdRef int
	Items  []syncml.ResultsItem
}

func (*ResultsElement) element() {}

// StatusElement acknowledges a prior inbound command. Chal is non-nil only
// when this status asks the peer to re-authenticate with a fresh nonce.
type StatusElement struct {
	CmdID     int
	MsgID     int
	MsgRef    int
	CmdRef    int
	Cmd       string
	Code      int
	TargetRef string
	Chal      *syncml.Chal
}

func (*StatusElement) element() {}

// ToWire converts e into the syncml.Command the codec encodes, stamping
// CmdID/MsgRef/CmdRef as decimal strings.
func ToWire(e Element) syncml.Command {
	switch v := e.(type) {
	case *AlertElement:
		return syncml.Alert{CmdID: itoa(v.CmdID), Data: v.Code, Item: v.Items}
	case *ReplaceElement:
		return syncml.Replace{CmdID: itoa(v.CmdID), Item: v.Items}
	case *ResultsElement:
		return syncml.Results{CmdID: itoa(v.CmdID), MsgRef: itoa(v.MsgRef), CmdRef: itoa(v.CmdRef), Item: v.Items}
	case *StatusElement:
		return syncml.Status{
			CmdID:     itoa(v.CmdID),
			MsgRef:    itoa(v.MsgRef),
			CmdRef:    itoa(v.CmdRef),
			Cmd:       v.Cmd,
			TargetRef: v.TargetRef,
			Data:      itoa(v.Code),
			Chal:      v.Chal,
		}
	default:
		return nil
	}
}
