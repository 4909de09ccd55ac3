package handlers

import (
	"context"
	"strings"

	"github.com/oma-dm/goclient/pkg/dmtree"
	"github.com/oma-dm/goclient/pkg/syncml"
)

// HandleGet consults the tree's ACL (principal is the server's ServerID)
// and, if allowed, reads uri. An interior node's value is the slash-joined
// list of its children's names; a leaf returns its raw value, format and
// MIME-like type. Always returns a StatusElement acknowledging the Get;
// ResultsElement is nil on failure.
func HandleGet(ctx context.Context, tree *dmtree.Tree, principal string, msgRef, cmdRef int, uri string) (*ResultsElement, *StatusElement) {
	node, err := tree.Get(ctx, uri, principal)
	status := &StatusElement{MsgRef: msgRef, CmdRef: cmdRef, Cmd: "Get", TargetRef: uri, Code: StatusCodeFor(err)}
	if err != nil {
		return nil, status
	}

	data := string(node.Value)
	if node.IsInterior() {
		data = strings.Join(node.Children, "/")
	}

	results := &ResultsElement{
		MsgRef: msgRef,
		CmdRef: cmdRef,
		Items: []syncml.ResultsItem{
			{
				Source: syncml.LocURI{LocURI: uri},
				Meta:   &syncml.ItemMeta{Format: string(node.Format), Type: node.MIMEType},
				Data:   data,
			},
		},
	}
	return results, status
}

// HandleReplace consults ACL and writes each item's value at its target
// URI, returning a single status summarizing the first failure, or success
// if every item wrote cleanly.
func HandleReplace(ctx context.Context, tree *dmtree.Tree, principal string, msgRef, cmdRef int, items []syncml.ReplaceItem) *StatusElement {
	var targetRef string
	var err error
	for _, item := range items {
		format := dmtree.FormatChr
		mimeType := ""
		if item.Meta != nil {
			if item.Meta.Format != "" {
				format = dmtree.Format(item.Meta.Format)
			}
			mimeType = item.Meta.Type
		}
		if err = tree.Set(ctx, item.Target.LocURI, []byte(item.Data), format, mimeType, principal); err != nil {
			targetRef = item.Target.LocURI
			break
		}
	}
	return &StatusElement{MsgRef: msgRef, CmdRef: cmdRef, Cmd: "Replace", TargetRef: targetRef, Code: StatusCodeFor(err)}
}

// HandleExec consults ACL and invokes the managed object's exec function
// at uri, returning the resulting status.
func HandleExec(ctx context.Context, tree *dmtree.Tree, principal string, msgRef, cmdRef int, uri, correlator string, data []byte) *StatusElement {
	err := tree.Exec(ctx, uri, data, correlator, principal)
	return &StatusElement{MsgRef: msgRef, CmdRef: cmdRef, Cmd: "Exec", TargetRef: uri, Code: StatusCodeFor(err)}
}

// AckAlert acknowledges an inbound Alert with a plain success status; the
// session package is responsible for any state transition or UI callback
// the alert's code triggers.
func AckAlert(msgRef, cmdRef int) *StatusElement {
	return &StatusElement{MsgRef: msgRef, CmdRef: cmdRef, Cmd: "Alert", Code: StatusOK}
}
