// Package account resolves a DM server account — the device identity,
// server URL, and client/server credential descriptors — from the DM
// tree's DMAcc subtree, per spec §4.2.
package account

import (
	"context"
	"crypto/md5"
	"encoding/hex"

	"github.com/oma-dm/goclient/internal/dmerrors"
	"github.com/oma-dm/goclient/internal/logger"
	"github.com/oma-dm/goclient/pkg/credential"
	"github.com/oma-dm/goclient/pkg/dmtree"
)

const dmAccURN = "urn:oma:mo:oma-dm-dmacc:1.0"

const (
	levelClient = "CLCRED" // client-to-server credential
	levelServer = "SRVCRED" // server-to-client credential

	imeiLen      = 14
	imeiCheckLen = 15
)

// Account is a resolved DM server account.
type Account struct {
	ID              string // ./DevInfo/DevId
	ServerID        string
	ServerURI       string // ./<account>/AppAddr/Addr
	DMTreeURI       string // base URI of this account's subtree
	ToServerCred    *credential.Descriptor
	ToServerCredURI string // base URI of the CLCRED AppAuth entry, for nonce writeback
	ToClientCred    *credential.Descriptor
	ToClientCredURI string // base URI of the SRVCRED AppAuth entry, for nonce writeback
}

// treeReader is the subset of *dmtree.Tree the resolver needs; a named
// interface keeps this package testable without a full Tree.
type treeReader interface {
	Get(ctx context.Context, uri, principal string) (*dmtree.Node, error)
	FindSubtree(ctx context.Context, root, urn, childName, childValue string) (string, error)
}

// Resolve locates the account whose ServerID matches serverID and
// materializes its credential descriptors, applying the IMEI-derived
// secret fallback. principal is the caller identity used for the
// read-side ACL checks Get performs (typically "self" or the server's own
// identity once known).
func Resolve(ctx context.Context, tree treeReader, serverID, principal string) (*Account, error) {
	accountURI, err := tree.FindSubtree(ctx, "", dmAccURN, "ServerID", serverID)
	if err != nil {
		return nil, dmerrors.NewCommandFailedError("", "no account registered for server "+serverID)
	}

	devID, err := getString(ctx, tree, "./DevInfo/DevId", principal)
	if err != nil {
		return nil, err
	}

	serverURI, err := getString(ctx, tree, accountURI+"/AppAddr/Addr", principal)
	if err != nil {
		return nil, err
	}

	acct := &Account{
		ID:        devID,
		ServerID:  serverID,
		ServerURI: serverURI,
		DMTreeURI: accountURI,
	}

	authBase := accountURI + "/AppAuth"

	if subURI, ferr := tree.FindSubtree(ctx, authBase, "", "AAuthLevel", levelClient); ferr == nil {
		desc, err := fillCredentials(ctx, tree, subURI, principal)
		if err != nil {
			return nil, err
		}
		if err := applyIMEIFallback(desc); err != nil {
			return nil, err
		}
		acct.ToServerCred = desc
		acct.ToServerCredURI = subURI
	} else {
		logger.WarnCtx(ctx, "no client-to-server credential configured; direction pre-accepted",
			logger.ServerID(serverID), logger.Direction(string(credential.ToServer)))
	}

	if subURI, ferr := tree.FindSubtree(ctx, authBase, "", "AAuthLevel", levelServer); ferr == nil {
		desc, err := fillCredentials(ctx, tree, subURI, principal)
		if err != nil {
			return nil, err
		}
		acct.ToClientCred = desc
		acct.ToClientCredURI = subURI
	} else {
		logger.WarnCtx(ctx, "no server-to-client credential configured; direction pre-accepted",
			logger.ServerID(serverID), logger.Direction(string(credential.ToClient)))
	}

	return acct, nil
}

// fillCredentials reads AAuthType, AAuthName, AAuthSecret, AAuthData (in
// that order) from uri. A NotFound on any individual child is non-fatal —
// it leaves that field at its zero value — but any other read error
// aborts the whole resolution, matching prv_fill_credentials.
func fillCredentials(ctx context.Context, tree treeReader, uri, principal string) (*credential.Descriptor, error) {
	desc := &credential.Descriptor{}

	typeStr, err := getOptionalString(ctx, tree, uri+"/AAuthType", principal)
	if err != nil {
		return nil, err
	}
	desc.Type = credential.ParseAuthType(typeStr)

	name, err := getOptionalString(ctx, tree, uri+"/AAuthName", principal)
	if err != nil {
		return nil, err
	}
	desc.Name = name

	secret, err := getOptionalString(ctx, tree, uri+"/AAuthSecret", principal)
	if err != nil {
		return nil, err
	}
	desc.Secret = secret

	data, err := getOptionalBytes(ctx, tree, uri+"/AAuthData", principal)
	if err != nil {
		return nil, err
	}
	desc.Data = data

	return desc, nil
}

// applyIMEIFallback implements spec §4.2 step 6: when the client's secret
// is empty but a name is present, treat the name as an IMEI and derive the
// secret from it.
func applyIMEIFallback(desc *credential.Descriptor) error {
	if desc.Secret != "" || desc.Name == "" {
		return nil
	}

	switch len(desc.Name) {
	case imeiLen:
		check, ok := luhnCheckDigit(desc.Name)
		if !ok {
			return dmerrors.NewCommandFailedError("", "invalid IMEI")
		}
		desc.Secret = md5Hex(desc.Name + string(check))
	case imeiCheckLen:
		desc.Secret = md5Hex(desc.Name)
	default:
		return dmerrors.NewCommandFailedError("", "invalid IMEI")
	}
	return nil
}

func md5Hex(s string) string {
	sum := md5.Sum([]byte(s))
	return hex.EncodeToString(sum[:])
}

func getString(ctx context.Context, tree treeReader, uri, principal string) (string, error) {
	node, err := tree.Get(ctx, uri, principal)
	if err != nil {
		return "", err
	}
	return string(node.Value), nil
}

// getOptionalString returns "" (not an error) when uri is NotFound.
func getOptionalString(ctx context.Context, tree treeReader, uri, principal string) (string, error) {
	node, err := tree.Get(ctx, uri, principal)
	if err != nil {
		if dmerrors.IsNotFound(err) {
			return "", nil
		}
		return "", err
	}
	return string(node.Value), nil
}

func getOptionalBytes(ctx context.Context, tree treeReader, uri, principal string) ([]byte, error) {
	node, err := tree.Get(ctx, uri, principal)
	if err != nil {
		if dmerrors.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return node.Value, nil
}
