package wallet

import (
	crand "crypto/rand"
	"fmt"
	"io"

	"github.com/ethereum/go-ethereum/rlp"
	"golang.org/x/crypto/blake2s"
	"golang.org/x/crypto/chacha20poly1305"

	"github.com/kysee/shielded/types"
)

// The at-rest coin store: the tracked coin list, RLP-encoded and sealed
// with ChaCha20-Poly1305 under a key derived from the spending key. Losing
// the blob loses nothing irrecoverable; coins can be rebuilt from public
// info plus the ciphertext log.

const storeLabel = "shielded-wallet-store-v1"

// SealCoins encrypts the tracked coin list for storage.
func (w *Wallet) SealCoins() ([]byte, error) {
	plain, err := rlp.EncodeToBytes(w.coins)
	if err != nil {
		return nil, err
	}
	aead, err := chacha20poly1305.New(w.storeKey())
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, chacha20poly1305.NonceSize)
	if _, err := io.ReadFull(crand.Reader, nonce); err != nil {
		return nil, err
	}
	return append(nonce, aead.Seal(nil, nonce, plain, nil)...), nil
}

// OpenCoins decrypts a sealed blob and replaces the tracked coin list.
func (w *Wallet) OpenCoins(blob []byte) error {
	if len(blob) < chacha20poly1305.NonceSize {
		return fmt.Errorf("wallet: sealed store too short")
	}
	aead, err := chacha20poly1305.New(w.storeKey())
	if err != nil {
		return err
	}
	nonce, sealed := blob[:chacha20poly1305.NonceSize], blob[chacha20poly1305.NonceSize:]
	plain, err := aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return fmt.Errorf("wallet: open sealed store: %w", err)
	}
	var coins []*types.Coin
	if err := rlp.DecodeBytes(plain, &coins); err != nil {
		return err
	}
	w.coins = coins
	return nil
}

func (w *Wallet) storeKey() []byte {
	h, _ := blake2s.New256(nil)
	h.Write(w.sk[:])
	h.Write([]byte(storeLabel))
	return h.Sum(nil)
}
