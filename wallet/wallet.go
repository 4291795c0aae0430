// Package wallet is the client side of the shielded pool: it owns the
// spending and receiving keys, tracks live coins, and builds the payloads
// and proofs the ledger consumes.
package wallet

import (
	"bytes"
	crand "crypto/rand"
	"fmt"

	"github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/constraint"

	"github.com/kysee/shielded/circuit"
	"github.com/kysee/shielded/crypto"
	"github.com/kysee/shielded/ledger"
	"github.com/kysee/shielded/types"
	"github.com/kysee/shielded/utils"
)

type Wallet struct {
	params *crypto.Params
	sk     [32]byte
	recv   *crypto.ReceivingKey

	coins []*types.Coin
}

func NewWallet(p *crypto.Params) (*Wallet, error) {
	recv, err := crypto.NewReceivingKey(crand.Reader)
	if err != nil {
		return nil, err
	}
	return &Wallet{
		params: p,
		sk:     utils.RandField(),
		recv:   recv,
	}, nil
}

// PublicKey is the stable coin pseudonym pk = PRF(sk, 0).
func (w *Wallet) PublicKey() [32]byte {
	return crypto.PublicKey(&w.params.Hash, w.sk)
}

// ReceivingPk is the static X25519 key senders encrypt values to.
func (w *Wallet) ReceivingPk() [32]byte { return w.recv.Pk }

// Address packs both public keys, base58check-encoded.
func (w *Wallet) Address() string {
	return types.EncodeAddress(w.PublicKey(), w.recv.Pk)
}

func (w *Wallet) AddCoin(c *types.Coin) { w.coins = append(w.coins, c) }

func (w *Wallet) Coins() []*types.Coin {
	out := make([]*types.Coin, len(w.coins))
	copy(out, w.coins)
	return out
}

// DelCoin drops a coin (after it was spent) by commitment.
func (w *Wallet) DelCoin(cm [32]byte) {
	for i, c := range w.coins {
		if bytes.Equal(c.Cm[:], cm[:]) {
			w.coins = append(w.coins[:i], w.coins[i+1:]...)
			return
		}
	}
}

// Balance sums the values of the tracked live coins.
func (w *Wallet) Balance() uint64 {
	var sum uint64
	for _, c := range w.coins {
		sum += c.Value
	}
	return sum
}

// BuildMint constructs a fresh coin and the mint payload opening its
// commitment in public. The coin is tracked immediately; it only becomes
// live once the ledger accepts the payload.
func (w *Wallet) BuildMint(value uint64) (*types.Coin, *types.MintPayload) {
	c := types.NewCoin(w.params, w.sk, value)
	w.AddCoin(c)
	return c, &types.MintPayload{Amount: value, Cm: c.Cm, K: c.K, S: c.S}
}

// BuildTransfer spends two of the wallet's coins toward two receiver
// addresses, producing the full transfer payload (proof included) and the
// receivers' coin public info to hand over off-band.
func (w *Wallet) BuildTransfer(
	l *ledger.LedgerState,
	ccs constraint.ConstraintSystem, pk groth16.ProvingKey,
	spend [2]*types.Coin, toAddr [2]string, amounts [2]uint64,
) (*types.TransferPayload, [2]*types.CoinPublicInfo, error) {
	var pubInfos [2]*types.CoinPublicInfo

	if spend[0].Value+spend[1].Value != amounts[0]+amounts[1] {
		return nil, pubInfos, fmt.Errorf("wallet: transfer does not conserve value")
	}

	spends, err := w.spendWitnesses(l, spend)
	if err != nil {
		return nil, pubInfos, err
	}

	var tx types.TransferPayload
	var outs [2]*circuit.OutputWitness
	for i := 0; i < 2; i++ {
		slot, out, info, err := w.outputFor(toAddr[i], amounts[i])
		if err != nil {
			return nil, pubInfos, err
		}
		tx.Receivers[i] = *slot
		outs[i] = out
		pubInfos[i] = info
	}
	for i := 0; i < 2; i++ {
		tx.Senders[i] = types.SenderSlot{
			K:    spend[i].K,
			Sn:   spend[i].Sn,
			Root: spends[i].Root,
		}
	}

	tx.Proof, err = circuit.ProveTransfer(w.params, ccs, pk, spends, outs)
	if err != nil {
		return nil, pubInfos, err
	}
	return &tx, pubInfos, nil
}

// BuildReclaim spends two coins, withdrawing amount to the public balance
// and keeping the change as a new shielded coin owned by this wallet. The
// change coin is returned fully formed and tracked.
func (w *Wallet) BuildReclaim(
	l *ledger.LedgerState,
	ccs constraint.ConstraintSystem, pk groth16.ProvingKey,
	spend [2]*types.Coin, amount uint64,
) (*types.ReclaimPayload, *types.Coin, error) {
	total := spend[0].Value + spend[1].Value
	if amount > total {
		return nil, nil, fmt.Errorf("wallet: reclaim amount exceeds coin values")
	}

	spends, err := w.spendWitnesses(l, spend)
	if err != nil {
		return nil, nil, err
	}

	slot, out, info, err := w.outputFor(w.Address(), total-amount)
	if err != nil {
		return nil, nil, err
	}

	rx := &types.ReclaimPayload{
		Amount:   amount,
		Receiver: *slot,
	}
	for i := 0; i < 2; i++ {
		rx.Senders[i] = types.SenderSlot{
			K:    spend[i].K,
			Sn:   spend[i].Sn,
			Root: spends[i].Root,
		}
	}
	rx.Proof, err = circuit.ProveReclaim(w.params, ccs, pk, spends, amount, out)
	if err != nil {
		return nil, nil, err
	}

	change := types.AdoptCoin(w.params, w.sk, info, total-amount)
	w.AddCoin(change)
	return rx, change, nil
}

func (w *Wallet) spendWitnesses(l *ledger.LedgerState, spend [2]*types.Coin) ([2]*circuit.SpendWitness, error) {
	var spends [2]*circuit.SpendWitness
	for i := 0; i < 2; i++ {
		root, path, err := l.ProveCommitment(spend[i].Cm)
		if err != nil {
			return spends, err
		}
		spends[i] = &circuit.SpendWitness{Coin: spend[i], Root: root, Path: path}
	}
	return spends, nil
}

// outputFor builds one receiver slot: a coin commitment for the address's
// pseudonym and the encrypted value block for its receiving key.
func (w *Wallet) outputFor(addr string, value uint64) (*types.ReceiverSlot, *circuit.OutputWitness, *types.CoinPublicInfo, error) {
	pkR, recvPk, err := types.DecodeAddress(addr)
	if err != nil {
		return nil, nil, nil, err
	}
	rho, r, s := utils.RandField(), utils.RandField(), utils.RandField()
	k := crypto.AddressCommitment(&w.params.Commit, pkR, rho, r)
	out := &circuit.OutputWitness{Value: value, K: k, S: s}
	cm := out.Cm(w.params)

	ephPk, cipher, err := crypto.EncryptValue(crand.Reader, recvPk, value)
	if err != nil {
		return nil, nil, nil, err
	}
	slot := &types.ReceiverSlot{K: k, Cm: cm, Cipher: cipher, EphemeralPk: ephPk}
	info := &types.CoinPublicInfo{Pk: pkR, Rho: rho, S: s, R: r, K: k}
	return slot, out, info, nil
}

// TryDecryptValue attempts to recover a transferred value from one
// ciphertext-log entry with this wallet's receiving key.
func (w *Wallet) TryDecryptValue(entry types.CiphertextEntry) (uint64, error) {
	return crypto.DecryptValue(entry.Cipher, entry.EphemeralPk, w.recv.Sk)
}

// AdoptReceived rebuilds and tracks a coin received off-band: the sender
// hands over the coin public info, the value comes from the ciphertext
// channel.
func (w *Wallet) AdoptReceived(info *types.CoinPublicInfo, value uint64) *types.Coin {
	c := types.AdoptCoin(w.params, w.sk, info, value)
	w.AddCoin(c)
	return c
}
