package host

import (
	"crypto/rand"
	"fmt"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"golang.org/x/crypto/ed25519"
)

// Account is a test invoker identity. Contract platforms address
// accounts by their ed25519 public key; the simulator does the same.
type Account struct {
	Name string
	pub  ed25519.PublicKey
	priv ed25519.PrivateKey
}

// NewTestAccount generates a fresh keypair for use as an invoker.
func NewTestAccount(name string) (*Account, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("generate account %s: %w", name, err)
	}
	return &Account{Name: name, pub: pub, priv: priv}, nil
}

// Address returns the hex form of the public key.
func (a *Account) Address() string {
	return hexutil.Encode(a.pub)
}

// Sign signs an invocation payload.
func (a *Account) Sign(payload []byte) []byte {
	return ed25519.Sign(a.priv, payload)
}

// Verify checks a signature produced by this account.
func (a *Account) Verify(payload, sig []byte) bool {
	return ed25519.Verify(a.pub, payload, sig)
}
