// Package wallet provides the signing side of the client. The wallet
// connection lifecycle itself is external; the core only consumes a Signer,
// which may decline a transaction the way a wallet user rejects a prompt.
package wallet

import (
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
)

// ErrSigningDeclined is returned when the signer refuses to sign. It is a
// distinct, non-alarming outcome and must never be conflated with a
// contract or transport failure.
var ErrSigningDeclined = errors.New("signing declined")

// Signer produces signed transactions for the active account
type Signer interface {
	Address() common.Address
	SignTx(tx *ethtypes.Transaction, chainID *big.Int) (*ethtypes.Transaction, error)
}

// KeySigner signs with a locally held private key
type KeySigner struct {
	key  *ecdsa.PrivateKey
	addr common.Address
}

// NewKeySigner parses a hex private key, with or without 0x prefix
func NewKeySigner(hexKey string) (*KeySigner, error) {
	h := strings.TrimPrefix(strings.TrimSpace(hexKey), "0x")
	if h == "" {
		return nil, errors.New("private key is empty")
	}
	key, err := crypto.HexToECDSA(h)
	if err != nil {
		return nil, fmt.Errorf("parse private key: %w", err)
	}
	return &KeySigner{
		key:  key,
		addr: crypto.PubkeyToAddress(key.PublicKey),
	}, nil
}

// Address returns the account derived from the key
func (s *KeySigner) Address() common.Address {
	return s.addr
}

// SignTx signs tx for the given chain
func (s *KeySigner) SignTx(tx *ethtypes.Transaction, chainID *big.Int) (*ethtypes.Transaction, error) {
	signed, err := ethtypes.SignTx(tx, ethtypes.LatestSignerForChainID(chainID), s.key)
	if err != nil {
		return nil, fmt.Errorf("sign tx: %w", err)
	}
	return signed, nil
}
